package media

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// ReadLines reads one path per line, trimming surrounding space and
// skipping blank lines.
func ReadLines(r io.Reader) ([]string, error) {
	var out []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		out = append(out, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ReadListFile reads a track list from path. M3U and PLS files are parsed
// in their own format, anything else is taken as one path per line.
func ReadListFile(path string) ([]string, error) {
	if IsPlaylistExt(filepath.Ext(path)) {
		return ParseLocalPlaylist(path)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("reading track list: %w", err)
	}
	defer f.Close()
	lines, err := ReadLines(f)
	if err != nil {
		return nil, fmt.Errorf("reading track list: %w", err)
	}
	return lines, nil
}

// ParseLocalPlaylist parses a local .m3u/.m3u8/.pls file into local paths.
// Relative entries are resolved against the playlist file directory and
// URL entries are dropped.
func ParseLocalPlaylist(path string) ([]string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if !IsPlaylistExt(ext) {
		return nil, fmt.Errorf("unsupported playlist format %s", ext)
	}

	absPlaylistPath, err := filepath.Abs(path)
	if err != nil {
		absPlaylistPath = path
	}

	data, err := os.ReadFile(absPlaylistPath)
	if err != nil {
		return nil, fmt.Errorf("reading playlist: %w", err)
	}
	if !utf8.Valid(data) {
		return nil, fmt.Errorf("playlist is not valid UTF-8")
	}

	baseDir := filepath.Dir(absPlaylistPath)
	text := strings.TrimPrefix(string(data), "\uFEFF")
	scanner := bufio.NewScanner(strings.NewReader(text))

	switch ext {
	case ".pls":
		return parsePLS(scanner, baseDir), nil
	default:
		return parseM3U(scanner, baseDir), nil
	}
}

func parseM3U(scanner *bufio.Scanner, baseDir string) []string {
	entries := make([]string, 0)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if p, ok := resolveEntry(line, baseDir); ok {
			entries = append(entries, p)
		}
	}
	return entries
}

func parsePLS(scanner *bufio.Scanner, baseDir string) []string {
	entries := make([]string, 0)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		eq := strings.Index(line, "=")
		if eq <= 0 {
			continue
		}
		key := strings.TrimSpace(line[:eq])
		val := strings.TrimSpace(line[eq+1:])
		if val == "" || !isPLSFileKey(key) {
			continue
		}
		if p, ok := resolveEntry(val, baseDir); ok {
			entries = append(entries, p)
		}
	}
	return entries
}

func isPLSFileKey(key string) bool {
	rest, ok := strings.CutPrefix(strings.ToLower(key), "file")
	if !ok || rest == "" {
		return false
	}
	for i := 0; i < len(rest); i++ {
		if rest[i] < '0' || rest[i] > '9' {
			return false
		}
	}
	return true
}

// resolveEntry turns a playlist entry into a clean local path.
func resolveEntry(raw, baseDir string) (string, bool) {
	raw = strings.Trim(raw, `"`)
	if raw == "" || strings.Contains(raw, "://") {
		return "", false
	}
	p := filepath.Clean(raw)
	if filepath.IsAbs(p) {
		return p, true
	}
	return filepath.Join(baseDir, p), true
}
