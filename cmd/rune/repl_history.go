package main

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
)

const maxHistoryEntries = 1000

// replHistory persists liner's history between sessions.
type replHistory struct {
	file string
	last string
}

func newReplHistory() *replHistory {
	return &replHistory{file: historyFilePath()}
}

// historyFilePath returns the path to the history file, respecting
// XDG_DATA_HOME (default ~/.local/share/rune/history).
func historyFilePath() string {
	dir := os.Getenv("XDG_DATA_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return filepath.Join(os.TempDir(), "rune_history")
		}
		dir = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dir, "rune", "history")
}

// Load reads history from the file. Should be called once at startup.
func (h *replHistory) Load(ln *liner.State) {
	f, err := os.Open(h.file)
	if err != nil {
		return
	}
	defer f.Close()
	_, _ = ln.ReadHistory(f)
}

// Add appends an input, flattened to one line, skipping consecutive
// duplicates.
func (h *replHistory) Add(ln *liner.State, src string) {
	line := strings.Join(strings.Fields(src), " ")
	if line == h.last {
		return
	}
	h.last = line
	ln.AppendHistory(line)
}

// Save writes the most recent entries back to the file.
func (h *replHistory) Save(ln *liner.State) {
	_ = os.MkdirAll(filepath.Dir(h.file), 0755)

	var buf strings.Builder
	if _, err := ln.WriteHistory(&buf); err != nil {
		return
	}
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) > maxHistoryEntries {
		lines = lines[len(lines)-maxHistoryEntries:]
	}
	_ = os.WriteFile(h.file, []byte(strings.Join(lines, "\n")+"\n"), 0644)
}
