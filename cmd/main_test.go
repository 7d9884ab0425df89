package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const scenarioLog = "2024-01-01 entry 1\n" +
	"2024-01-01 entry 2\n" +
	"2024-01-01 entry 3\n" +
	"2024-01-02 entry 4\n" +
	"2024-01-02 entry 5\n" +
	"2024-01-03 entry 6\n"

// syncBuffer is a bytes.Buffer safe for one writer and one reader.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

type fixture struct {
	dir   string
	input string
}

// newFixture writes the scenario log into a temp dir and points HOME there so
// no real config file is picked up.
func newFixture(t *testing.T) fixture {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)

	input := filepath.Join(dir, "logs_2024.log")
	require.NoError(t, os.WriteFile(input, []byte(scenarioLog), 0o644))
	return fixture{dir: dir, input: input}
}

func run(t *testing.T, args ...string) (code int, stdout, stderr string) {
	t.Helper()
	var out, errOut bytes.Buffer
	code = execute(context.Background(), append([]string{}, args...), &out, &errOut)
	return code, out.String(), errOut.String()
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(b)
}

func TestExecute_ExtractsDate(t *testing.T) {
	fx := newFixture(t)
	outDir := filepath.Join(fx.dir, "output")

	code, stdout, stderr := run(t, "--input", fx.input, "--output-dir", outDir, "2024-01-02")
	require.Equal(t, exitOK, code, stderr)

	artifact := filepath.Join(outDir, "2024-01-02_logs.txt")
	assert.Equal(t, fmt.Sprintf("2 lines for 2024-01-02 written to %s\n", artifact), stdout)
	assert.Equal(t, "2024-01-02 entry 4\n2024-01-02 entry 5\n", readFile(t, artifact))
}

func TestExecute_ExplicitOutput(t *testing.T) {
	fx := newFixture(t)
	artifact := filepath.Join(fx.dir, "nested", "first.txt")

	code, _, stderr := run(t, "-i", fx.input, "-o", artifact, "--chunk-size", "3", "2024-01-01")
	require.Equal(t, exitOK, code, stderr)
	assert.Equal(t, "2024-01-01 entry 1\n2024-01-01 entry 2\n2024-01-01 entry 3\n", readFile(t, artifact))
}

func TestExecute_NoMatch(t *testing.T) {
	fx := newFixture(t)
	artifact := filepath.Join(fx.dir, "none.txt")

	code, stdout, stderr := run(t, "-i", fx.input, "-o", artifact, "2023-12-31")
	require.Equal(t, exitOK, code, stderr)
	assert.Equal(t, fmt.Sprintf("0 lines for 2023-12-31 written to %s\n", artifact), stdout)
	assert.Contains(t, stderr, "no lines matched date")
	assert.Empty(t, readFile(t, artifact))
}

func TestExecute_UsageErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "no arguments", args: []string{}},
		{name: "two dates", args: []string{"2024-01-01", "2024-01-02"}},
		{name: "wrong shape", args: []string{"01/02/2024"}},
		{name: "not a calendar day", args: []string{"2024-02-30"}},
		{name: "unknown flag", args: []string{"--bogus", "2024-01-02"}},
		{name: "invalid chunk size", args: []string{"--chunk-size", "0", "2024-01-02"}},
		{name: "invalid log format", args: []string{"--log-format", "xml", "2024-01-02"}},
		{name: "missing config file", args: []string{"--config", "/nonexistent/log-find-date.ini", "2024-01-02"}},
		{name: "watch on s3", args: []string{"--watch", "-i", "s3://bucket/app.log", "2024-01-02"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fx := newFixture(t)
			artifactDir := filepath.Join(fx.dir, "output")

			code, stdout, stderr := run(t, append([]string{"--output-dir", artifactDir}, tt.args...)...)
			assert.Equal(t, exitUsage, code)
			assert.Empty(t, stdout)
			assert.Contains(t, stderr, "--help")
			assert.NoDirExists(t, artifactDir)
		})
	}
}

func TestExecute_MissingInput(t *testing.T) {
	fx := newFixture(t)

	code, stdout, stderr := run(t, "-i", filepath.Join(fx.dir, "missing.log"), "--output-dir", fx.dir, "2024-01-02")
	assert.Equal(t, exitError, code)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "missing.log")
}

func TestExecute_ConfigPrecedence(t *testing.T) {
	fx := newFixture(t)

	fileDir := filepath.Join(fx.dir, "from-file")
	envDir := filepath.Join(fx.dir, "from-env")
	flagDir := filepath.Join(fx.dir, "from-flag")

	ini := fmt.Sprintf("[input]\nfile = %s\n\n[output]\ndir = %s\n", fx.input, fileDir)
	require.NoError(t, os.WriteFile(filepath.Join(fx.dir, ".log-find-date.ini"), []byte(ini), 0o644))

	code, _, stderr := run(t, "2024-01-03")
	require.Equal(t, exitOK, code, stderr)
	assert.FileExists(t, filepath.Join(fileDir, "2024-01-03_logs.txt"))

	t.Setenv("LOG_FIND_DATE_OUTPUT_DIR", envDir)
	code, _, stderr = run(t, "2024-01-03")
	require.Equal(t, exitOK, code, stderr)
	assert.FileExists(t, filepath.Join(envDir, "2024-01-03_logs.txt"))

	code, _, stderr = run(t, "--output-dir", flagDir, "2024-01-03")
	require.Equal(t, exitOK, code, stderr)
	assert.Equal(t, "2024-01-03 entry 6\n", readFile(t, filepath.Join(flagDir, "2024-01-03_logs.txt")))
}

func TestExecute_TOMLConfig(t *testing.T) {
	fx := newFixture(t)
	outDir := filepath.Join(fx.dir, "toml-out")

	path := filepath.Join(fx.dir, "config.toml")
	toml := fmt.Sprintf("input = %q\noutput_dir = %q\nlog_format = \"json\"\n", fx.input, outDir)
	require.NoError(t, os.WriteFile(path, []byte(toml), 0o644))

	code, _, stderr := run(t, "--config", path, "2024-01-02")
	require.Equal(t, exitOK, code, stderr)
	assert.Contains(t, stderr, `"run_id"`)
	assert.FileExists(t, filepath.Join(outDir, "2024-01-02_logs.txt"))
}

func TestExecute_Version(t *testing.T) {
	code, stdout, _ := run(t, "--version")
	assert.Equal(t, exitOK, code)
	assert.Contains(t, stdout, runtime.GOOS+"/"+runtime.GOARCH)
}

func TestExecute_Watch(t *testing.T) {
	fx := newFixture(t)
	artifact := filepath.Join(fx.dir, "watched.txt")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var stdout, stderr syncBuffer
	done := make(chan int, 1)
	go func() {
		done <- execute(ctx, []string{"--watch", "--debounce", "20ms", "-i", fx.input, "-o", artifact, "2024-01-03"}, &stdout, &stderr)
	}()

	require.Eventually(t, func() bool {
		return strings.Contains(stdout.String(), "1 lines for 2024-01-03")
	}, 5*time.Second, 20*time.Millisecond)

	// Keep appending until the watcher is registered and picks a write up.
	require.Eventually(t, func() bool {
		f, err := os.OpenFile(fx.input, os.O_APPEND|os.O_WRONLY, 0o644)
		require.NoError(t, err)
		_, err = f.WriteString("2024-01-03 appended\n")
		require.NoError(t, err)
		require.NoError(t, f.Close())

		return strings.Count(stdout.String(), "\n") > 1
	}, 5*time.Second, 100*time.Millisecond)

	reruns := strings.Split(strings.TrimSpace(stdout.String()), "\n")[1:]
	assert.False(t, strings.HasPrefix(reruns[0], "1 lines"), "a rerun sees the appended lines")
	assert.Contains(t, reruns[0], "for 2024-01-03 written to "+artifact)

	cancel()
	select {
	case code := <-done:
		assert.Equal(t, exitOK, code, stderr.String())
	case <-time.After(5 * time.Second):
		t.Fatal("watch mode did not stop after cancel")
	}
}
