package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"
)

// DefaultDocumentName is used when no file has been chosen yet.
const DefaultDocumentName = "Default"

var ErrInvalidEncoding = errors.New("storage: file is not valid UTF-8")

// Resolve maps a document path onto the data directory. Absolute paths are
// returned unchanged. The name is used as given, surrounding spaces included.
func Resolve(dataDir, path string) string {
	if path == "" {
		path = DefaultDocumentName
	}
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(dataDir, path)
}

// MostRecentFile returns the regular file in dir with the latest
// modification time, or "" when there is none. On equal times the entry
// listed first wins.
func MostRecentFile(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}
	best := time.Unix(0, 0)
	target := ""
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(best) {
			best = info.ModTime()
			target = filepath.Join(dir, entry.Name())
		}
	}
	return target, nil
}

func ReadText(path string) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(raw) {
		return "", fmt.Errorf("%w: %s", ErrInvalidEncoding, path)
	}
	return string(raw), nil
}

// WriteText overwrites path with contents, creating parent directories.
func WriteText(path, contents string) (int, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return 0, fmt.Errorf("create parent dir: %w", err)
		}
	}
	data := []byte(contents)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return 0, err
	}
	return len(data), nil
}

// SplitLines splits file contents on "\n" without trimming. The empty
// element after a trailing newline is dropped.
func SplitLines(data string) []string {
	if data == "" {
		return nil
	}
	lines := strings.Split(data, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
