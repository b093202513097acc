// Package logging builds the application slog logger: JSON to stdout, plus an
// optional dated file per day with old files pruned beyond a retention limit.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

const fileDateFormat = "02_01_2006"

// Config controls logger construction
type Config struct {
	// Dir is the log file directory; empty means stdout only
	Dir string
	// MaxFiles is how many dated files to keep, oldest pruned first
	MaxFiles int
	Level    string
}

// New builds the logger. The returned closer releases the log file and is a
// no-op for stdout-only setups.
func New(cfg Config) (*slog.Logger, func() error, error) {
	level := parseLevel(cfg.Level)
	opts := &slog.HandlerOptions{Level: level}

	if cfg.Dir == "" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts)), func() error { return nil }, nil
	}

	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("creating log directory: %w", err)
	}

	name := time.Now().Format(fileDateFormat) + ".log"
	f, err := os.OpenFile(filepath.Join(cfg.Dir, name), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file: %w", err)
	}

	if cfg.MaxFiles > 0 {
		if err := pruneOld(cfg.Dir, cfg.MaxFiles); err != nil {
			f.Close()
			return nil, nil, err
		}
	}

	w := io.MultiWriter(os.Stdout, f)
	return slog.New(slog.NewJSONHandler(w, opts)), f.Close, nil
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// pruneOld removes dated log files beyond the retention limit, oldest first.
// Files whose names don't parse as dates are left alone.
func pruneOld(dir string, maxFiles int) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("reading log directory: %w", err)
	}

	type dated struct {
		name string
		day  time.Time
	}
	var files []dated
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".log") {
			continue
		}
		day, err := time.Parse(fileDateFormat, strings.TrimSuffix(e.Name(), ".log"))
		if err != nil {
			continue
		}
		files = append(files, dated{name: e.Name(), day: day})
	}

	if len(files) <= maxFiles {
		return nil
	}

	sort.Slice(files, func(i, j int) bool { return files[i].day.Before(files[j].day) })
	for _, f := range files[:len(files)-maxFiles] {
		if err := os.Remove(filepath.Join(dir, f.name)); err != nil {
			return fmt.Errorf("pruning log file %s: %w", f.name, err)
		}
	}

	return nil
}
