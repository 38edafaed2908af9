// Package storage implements the upload policy layer of the portal: byte
// signature sniffing for uploaded files, preview derivation, and the
// deterministic on-disk layout of stored assets under one upload root.
package storage

import (
	"bytes"
	"io"
	"strings"
)

// HeadLen is how many leading bytes signature checks need.
const HeadLen = 16

var allowedImageExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

var pngMagic = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

// LooksLikeImage reports whether head carries a genuine image signature of
// an allowed kind AND ext is on the allow-list. Both checks must pass: a
// script renamed to .png fails the signature, a real image with a stray
// extension fails the allow-list.
func LooksLikeImage(head []byte, ext string) bool {
	if !allowedImageExts[strings.ToLower(ext)] {
		return false
	}
	if len(head) >= 3 && bytes.Equal(head[:3], []byte{0xFF, 0xD8, 0xFF}) {
		return true // JPEG
	}
	if len(head) >= 8 && bytes.Equal(head[:8], pngMagic) {
		return true
	}
	if len(head) >= 6 && (bytes.Equal(head[:6], []byte("GIF87a")) || bytes.Equal(head[:6], []byte("GIF89a"))) {
		return true
	}
	if len(head) >= 12 && bytes.Equal(head[:4], []byte("RIFF")) && bytes.Equal(head[8:12], []byte("WEBP")) {
		return true
	}
	return false
}

// LooksLikePDF accepts a .pdf extension or a %PDF- byte prefix.
func LooksLikePDF(head []byte, ext string) bool {
	if strings.ToLower(ext) == ".pdf" {
		return true
	}
	return bytes.HasPrefix(head, []byte("%PDF-"))
}

// Head reads the first HeadLen bytes of f and rewinds it, so the caller can
// still stream the full content afterwards.
func Head(f io.ReadSeeker) ([]byte, error) {
	head := make([]byte, HeadLen)
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, err
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}
	return head[:n], nil
}
