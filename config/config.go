// Package config exposes the environment-driven settings of the homehub
// portal: listen address, database and upload locations, thumbnail tuning
// and the geocoder timeout.
package config

import (
	_ "embed"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

//go:embed version
var version string

//go:embed name
var name string

type LogLevel string

const (
	Debug  LogLevel = "debug"
	Info   LogLevel = "info"
	Notice LogLevel = "notice"
	Warn   LogLevel = "warn"
	Error  LogLevel = "error"
)

func GetVersion() string {
	return strings.TrimSpace(version)
}

func GetName() string {
	return strings.TrimSpace(name)
}

func GetLogLevel() LogLevel {
	if IsDebug() {
		return Debug
	}
	logLevel := os.Getenv("HUB_LOG_LEVEL")
	if logLevel == "" {
		return Info
	}
	return LogLevel(logLevel)
}

func IsDebug() bool {
	return os.Getenv("HUB_DEBUG") == "true"
}

func GetListen() string {
	listen := os.Getenv("HUB_LISTEN")
	if listen == "" {
		listen = "127.0.0.1"
	}
	return listen
}

func GetPort() int {
	return envInt("HUB_PORT", 8000)
}

// GetWebDomain restricts serving to one host when set. Empty means any host.
func GetWebDomain() string {
	return os.Getenv("HUB_WEB_DOMAIN")
}

// GetSessionSecret returns the cookie-signing secret. Empty means a random
// secret is generated at startup, which invalidates sessions on restart.
func GetSessionSecret() string {
	return os.Getenv("HUB_SESSION_SECRET")
}

func GetSessionMaxAge() time.Duration {
	return time.Duration(envInt("HUB_SESSION_HOURS", 12)) * time.Hour
}

func GetDBFolderPath() string {
	dbFolderPath := os.Getenv("HUB_DB_FOLDER")
	if dbFolderPath == "" {
		dbFolderPath = "/opt/homehub"
	}
	return dbFolderPath
}

func GetDBPath() string {
	return fmt.Sprintf("%s/%s.db", GetDBFolderPath(), GetName())
}

func GetLogFolder() string {
	logFolderPath := os.Getenv("HUB_LOG_FOLDER")
	if logFolderPath == "" {
		logFolderPath = "/var/log"
	}
	return logFolderPath
}

// GetUploadRoot is the single filesystem root every stored asset lives under.
func GetUploadRoot() string {
	uploadRoot := os.Getenv("HUB_UPLOAD_ROOT")
	if uploadRoot == "" {
		uploadRoot = fmt.Sprintf("%s/uploads", GetDBFolderPath())
	}
	return uploadRoot
}

func GetThumbMaxPx() int {
	return envInt("HUB_THUMB_MAX_PX", 512)
}

func GetThumbQuality() int {
	return envInt("HUB_THUMB_QUALITY", 82)
}

// GetGeocodeTimeout bounds the external geocoding call so a slow service
// cannot hang a request.
func GetGeocodeTimeout() time.Duration {
	return time.Duration(envInt("HUB_GEOCODE_TIMEOUT_SEC", 8)) * time.Second
}

// GetMaxUploadBytes caps a single multipart request body.
func GetMaxUploadBytes() int64 {
	return int64(envInt("HUB_MAX_UPLOAD_MB", 512)) << 20
}

func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
