package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ketiboldiais/amicus/pkg/ioctx"
	"github.com/ketiboldiais/amicus/pkg/rune"
)

func testCommand(stdout, stderr *bytes.Buffer) *cobra.Command {
	cmd := &cobra.Command{}
	cmd.Flags().Int("max-iterations", rune.DefaultMaxLoopIterations, "")
	cmd.SetContext(ioctx.WithStreams(context.Background(), ioctx.Streams{Out: stdout, Err: stderr}))
	return cmd
}

func TestIncomplete(t *testing.T) {
	tests := []struct {
		src  string
		want bool
	}{
		{"fn f(x) {", true},
		{"let x = ", true},
		{`"open`, true},
		{"let x = 1;", false},
		{"let = 1;", false},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			_, err := rune.Parse(tt.src)
			if !tt.want && err == nil {
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.want, incomplete(err))
		})
	}
}

func TestSplitWord(t *testing.T) {
	head, word := splitWord("let x = sim")
	assert.Equal(t, "let x = ", head)
	assert.Equal(t, "sim", word)

	head, word = splitWord(":he")
	assert.Equal(t, "", head)
	assert.Equal(t, ":he", word)
}

func TestHistoryFilePath(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/data")
	assert.Equal(t, filepath.Join("/data", "rune", "history"), historyFilePath())
}

func TestCheckFiles(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.rune")
	bad := filepath.Join(dir, "bad.rune")
	require.NoError(t, os.WriteFile(good, []byte("let x = 1;\nprint x;\n"), 0o644))
	require.NoError(t, os.WriteFile(bad, []byte("let x = x;\n"), 0o644))

	var stdout, stderr bytes.Buffer
	cmd := testCommand(&stdout, &stderr)
	cfg := Config{NoColor: true}

	require.NoError(t, checkFiles(cmd, cfg, []string{good}))
	assert.Equal(t, "1 files ok\n", stdout.String())

	err := checkFiles(cmd, cfg, []string{good, bad})
	require.ErrorContains(t, err, "1 of 2 files failed")
	assert.Contains(t, stderr.String(), "cannot read \"x\" in its own initializer")
	assert.Contains(t, stderr.String(), "bad.rune:1")
}

func TestLoadConfigFlagsWin(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, rune.ConfigFileName), []byte("max_loop_iterations = 5\n"), 0o644))

	var stdout, stderr bytes.Buffer
	cmd := testCommand(&stdout, &stderr)

	cfg, err := loadConfig(cmd, Config{}, dir)
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.MaxLoopIterations)

	require.NoError(t, cmd.Flags().Set("max-iterations", "9"))
	cfg, err = loadConfig(cmd, Config{MaxIterations: 9}, dir)
	require.NoError(t, err)
	assert.Equal(t, 9, cfg.MaxLoopIterations)
}

func TestPaintStripsWithoutColor(t *testing.T) {
	styled := errorStyle.Render("boom")
	assert.Equal(t, "boom", paint(Config{NoColor: true}, styled))
}

func TestServeEngineStats(t *testing.T) {
	_, err := rune.New(rune.DefaultConfig()).Compile(context.Background(), "let x = ;")
	require.Error(t, err)

	rec := httptest.NewRecorder()
	serveEngineStats(rec, httptest.NewRequest(http.MethodGet, "/debug/rune", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/plain; charset=utf-8", rec.Header().Get("Content-Type"))
	body := rec.Body.String()
	assert.Contains(t, body, "compiles ")
	assert.Contains(t, body, "errors.syntax_error ")
}
