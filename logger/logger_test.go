package logger

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLogBeforeInit(t *testing.T) {
	logger = nil

	// Must not panic without InitLogger
	assert.NotPanics(t, func() {
		Warningf("geocode %q failed: %v", "nowhere", "timeout")
		Info("plain entry")
	})

	logs := GetLogs(10, "info")
	assert.NotEmpty(t, logs)
	found := false
	for _, line := range logs {
		if strings.Contains(line, "geocode") {
			found = true
		}
	}
	assert.True(t, found)
}
