package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const logStamp = "20060102_150405"

// SessionLogName names the log file for one session. The device is folded into the
// name so logs pulled from several handsets can share a directory.
func SessionLogName(appName, device string, sessionStart time.Time) string {
	stamp := sessionStart.Format(logStamp)
	if d := sanitizeDevice(device); d != "" {
		return fmt.Sprintf("%s.%s.%s.log", appName, d, stamp)
	}
	return fmt.Sprintf("%s.%s.log", appName, stamp)
}

func sanitizeDevice(device string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		case r == ' ' || r == '.' || r == '/' || r == '\\' || r == ':':
			return '_'
		}
		return -1
	}, strings.TrimSpace(device))
}

// OpenSessionLog creates logsDir if needed and opens the session log for append. A
// file already at that path is kept as <path>.old.
func OpenSessionLog(logsDir, appName, device string, sessionStart time.Time) (*os.File, string, error) {
	if err := os.MkdirAll(logsDir, 0755); err != nil {
		return nil, "", fmt.Errorf("create logs dir: %w", err)
	}
	path := filepath.Join(logsDir, SessionLogName(appName, device, sessionStart))
	if _, err := os.Stat(path); err == nil {
		if err := os.Rename(path, path+".old"); err != nil {
			return nil, path, fmt.Errorf("keep previous log: %w", err)
		}
	}
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		return nil, path, fmt.Errorf("open log file: %w", err)
	}
	return f, path, nil
}
