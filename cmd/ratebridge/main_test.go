package main

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sourceCSV = `Coverage,Term,Deductible,Rate Cost
Basic,12,0,100.50
Basic,12,50,110
Basic,12,100,120
Premium,24,100,200.75
`

const templateCSV = "Coverage,Term,PlanDeduct,Deduct0,Deduct50,Deduct100,Deduct200\n"

type harness struct {
	dir    string
	stdout *bytes.Buffer
	stderr *bytes.Buffer
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	dir := t.TempDir()
	t.Setenv("RATEBRIDGE_STORE_PATH", filepath.Join(dir, "mappings.yaml"))
	t.Setenv("LOG_LEVEL", "error")

	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	require.NoError(t, os.WriteFile(filepath.Join(dir, "rates.csv"), []byte(sourceCSV), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "template.csv"), []byte(templateCSV), 0o644))

	return &harness{dir: dir, stdout: &bytes.Buffer{}, stderr: &bytes.Buffer{}}
}

func (h *harness) path(name string) string {
	return filepath.Join(h.dir, name)
}

func (h *harness) run(args ...string) int {
	h.stdout.Reset()
	h.stderr.Reset()

	return run(context.Background(), args, deps{
		Stdin:  strings.NewReader(""),
		Stdout: h.stdout,
		Stderr: h.stderr,
	})
}

func TestRunUsage(t *testing.T) {
	h := newHarness(t)

	assert.Equal(t, 2, h.run())
	assert.Contains(t, h.stderr.String(), "Commands:")

	assert.Equal(t, 2, h.run("frobnicate"))
	assert.Contains(t, h.stderr.String(), `unknown command "frobnicate"`)

	assert.Equal(t, 0, h.run("help"))
	assert.Contains(t, h.stdout.String(), "Commands:")
}

func TestRunConvert(t *testing.T) {
	h := newHarness(t)
	out := h.path("out.csv")

	code := h.run("run",
		"-source", h.path("rates.csv"),
		"-template", h.path("template.csv"),
		"-out", out,
		"-name", "acme",
	)
	require.Equal(t, 0, code, h.stderr.String())
	assert.Contains(t, h.stdout.String(), "2 rows written")

	data, err := os.ReadFile(out)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], strings.TrimSpace(templateCSV)))
	assert.Contains(t, string(data), "Basic")
	assert.Contains(t, string(data), "Premium")

	require.Equal(t, 0, h.run("templates", "list"))
	assert.Equal(t, "acme\n", h.stdout.String())

	require.Equal(t, 0, h.run("recent", "-n", "5"))
	assert.Contains(t, h.stdout.String(), "acme")

	assert.Equal(t, 1, h.run("templates", "delete", "acmee"))
	assert.Contains(t, h.stderr.String(), `did you mean "acme"?`)

	require.Equal(t, 0, h.run("templates", "delete", "acme"))
	assert.Equal(t, 1, h.run("templates", "delete", "acme"))
	assert.Contains(t, h.stderr.String(), `no template named "acme"`)
}

func TestRunConvertRequiresPaths(t *testing.T) {
	h := newHarness(t)

	assert.Equal(t, 1, h.run("run"))
	assert.Contains(t, h.stderr.String(), "-source is required")

	assert.Equal(t, 1, h.run("run", "-source", h.path("rates.csv")))
	assert.Contains(t, h.stderr.String(), "-out is required")
}

func TestAnalyze(t *testing.T) {
	h := newHarness(t)

	require.Equal(t, 0, h.run("analyze", "-source", h.path("rates.csv")), h.stderr.String())

	out := h.stdout.String()
	assert.Contains(t, out, "4 rows, 4 fields")
	assert.Contains(t, out, "Rate Cost")
	assert.Contains(t, out, "cached: false")
}

func TestLogsGoToStderr(t *testing.T) {
	h := newHarness(t)
	t.Setenv("LOG_LEVEL", "debug")

	require.Equal(t, 0, h.run("analyze", "-source", h.path("rates.csv")), h.stderr.String())

	assert.NotContains(t, h.stdout.String(), "level=")
	assert.Contains(t, h.stderr.String(), "level=DEBUG")
	assert.Contains(t, h.stdout.String(), "FIELD")
}

func TestSuggestWritesReviewFile(t *testing.T) {
	h := newHarness(t)
	review := h.path("review.yaml")

	code := h.run("suggest",
		"-source", h.path("rates.csv"),
		"-template", h.path("template.csv"),
		"-o", review,
	)
	require.Equal(t, 0, code, h.stderr.String())
	assert.Contains(t, h.stdout.String(), "Mapped:")

	data, err := os.ReadFile(review)
	require.NoError(t, err)
	assert.Contains(t, string(data), "target: RateCost")
	assert.Contains(t, string(data), "rates.csv")
}

func TestTemplatesUsage(t *testing.T) {
	h := newHarness(t)

	assert.Equal(t, 0, h.run("templates"))
	assert.Contains(t, h.stdout.String(), "no saved templates")

	assert.Equal(t, 1, h.run("templates", "rename"))
	assert.Contains(t, h.stderr.String(), "usage: templates")
}
