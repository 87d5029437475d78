package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"timeweave/internal/export"
	"timeweave/internal/temporal"
)

type cliEnv struct {
	dir      string
	cacheDir string
}

func setupCLIEnv(t *testing.T) *cliEnv {
	t.Helper()
	base := t.TempDir()
	home := filepath.Join(base, "home")
	if err := os.MkdirAll(home, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", home)
	t.Setenv("XDG_CACHE_HOME", "")
	cacheDir := filepath.Join(base, "cache")
	t.Setenv("TIMEWEAVE_CACHE_DIR", cacheDir)
	work := filepath.Join(base, "work")
	if err := os.MkdirAll(work, 0o755); err != nil {
		t.Fatalf("mkdir work: %v", err)
	}
	t.Chdir(work)
	return &cliEnv{dir: work, cacheDir: cacheDir}
}

func (e *cliEnv) write(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(e.dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--log-level", "error"}, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}

const holaTokens = `[
  {"text": "Hola", "time_start": 0.0, "time_end": 0.4},
  {"text": "mundo", "time_start": 0.5, "time_end": 0.9},
  {"text": ".", "time_start": 0.9, "time_end": 0.95}
]`

func TestIndexWritesJSONAndUsesCache(t *testing.T) {
	env := setupCLIEnv(t)
	text := env.write(t, "hola.txt", "Hola mundo.\n")
	stamps := env.write(t, "hola.json", holaTokens)

	stdout, stderr, err := runCLI(t, "index", "--text", text, "--timestamps", stamps)
	if err != nil {
		t.Fatalf("index: %v", err)
	}
	index, err := export.ReadIndexJSON(strings.NewReader(stdout))
	if err != nil {
		t.Fatalf("stdout is not an index: %v\n%s", err, stdout)
	}
	if len(index.Words) != 3 || index.RunID != "hola" || index.Engine != "tokens" {
		t.Fatalf("unexpected index %+v", index)
	}
	requireContains(t, stderr, "Words")

	again, stderr, err := runCLI(t, "index", "--text", text, "--timestamps", stamps)
	if err != nil {
		t.Fatalf("second index: %v", err)
	}
	if again != stdout {
		t.Fatalf("cached output differs:\n%s\n%s", stdout, again)
	}
	requireContains(t, stderr, "yes")

	out, _, err := runCLI(t, "cache", "stats")
	if err != nil {
		t.Fatalf("cache stats: %v", err)
	}
	requireContains(t, out, "Entries:   1")

	out, _, err = runCLI(t, "cache", "clear")
	if err != nil {
		t.Fatalf("cache clear: %v", err)
	}
	requireContains(t, out, "Removed 1 entries")
}

func TestIndexUniformTimingToFiles(t *testing.T) {
	env := setupCLIEnv(t)
	text := env.write(t, "uno.txt", "Uno dos tres. Cuatro cinco seis.")
	output := filepath.Join(env.dir, "out", "uno.json")
	srt := filepath.Join(env.dir, "out", "uno.srt")

	stdout, _, err := runCLI(t, "index", "--no-cache", "--text", text, "--duration", "3", "--output", output, "--srt", srt)
	if err != nil {
		t.Fatalf("index: %v", err)
	}
	if stdout != "" {
		t.Fatalf("stdout must stay empty with --output, got %q", stdout)
	}
	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	index, err := export.ReadIndexJSON(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("ReadIndexJSON: %v", err)
	}
	if index.Engine != "uniform" || len(index.Sentences) != 2 {
		t.Fatalf("unexpected index %+v", index)
	}
	subtitles, err := os.ReadFile(srt)
	if err != nil {
		t.Fatalf("read srt: %v", err)
	}
	if !strings.HasPrefix(string(subtitles), "1\n00:00:00,000 --> ") {
		t.Fatalf("unexpected srt:\n%s", subtitles)
	}
	if _, err := os.Stat(env.cacheDir); err == nil {
		t.Fatal("--no-cache must not create the cache")
	}
}

func TestIndexReportsAlignmentFailure(t *testing.T) {
	env := setupCLIEnv(t)
	text := env.write(t, "fox.txt", "The quick brown fox jumps")
	stamps := env.write(t, "fox.json", `[{"text":"Быстрая","time_start":0,"time_end":1},{"text":"лиса","time_start":1,"time_end":2}]`)

	stdout, _, err := runCLI(t, "index", "--text", text, "--timestamps", stamps)
	if !errors.Is(err, temporal.ErrAlignment) {
		t.Fatalf("expected alignment error, got %v", err)
	}
	requireContains(t, err.Error(), "hint:")
	if stdout != "" {
		t.Fatalf("no index may be written on failure, got %q", stdout)
	}
}

func TestIndexRequiresTimestampsOrDuration(t *testing.T) {
	env := setupCLIEnv(t)
	text := env.write(t, "a.txt", "Hola")
	if _, _, err := runCLI(t, "index", "--text", text); err == nil {
		t.Fatal("expected error without timestamps or duration")
	}
}

func TestBatchRunsJobsIndependently(t *testing.T) {
	env := setupCLIEnv(t)
	env.write(t, "in/hola.txt", "Hola mundo.")
	env.write(t, "in/hola.json", holaTokens)
	env.write(t, "in/fox.txt", "The quick brown fox")
	env.write(t, "in/fox.json", `[{"text":"Быстрая","time_start":0,"time_end":1}]`)
	manifest := env.write(t, "batch.toml", `
[[job]]
name = "hola"
text = "in/hola.txt"
timestamps = "in/hola.json"
output = "out/hola.json"
srt = "out/hola.srt"

[[job]]
text = "in/fox.txt"
timestamps = "in/fox.json"
output = "out/fox.json"

[[job]]
name = "missing"
text = "in/missing.txt"
duration = 2.0
output = "out/missing.json"
`)

	stdout, _, err := runCLI(t, "batch", manifest)
	if err == nil || !strings.Contains(err.Error(), "2 of 3 jobs failed") {
		t.Fatalf("expected partial failure, got %v", err)
	}
	requireContains(t, stdout, "hola")
	requireContains(t, stdout, "fox")
	requireContains(t, stdout, "missing")
	for _, name := range []string{"out/hola.json", "out/hola.srt"} {
		if _, err := os.Stat(filepath.Join(env.dir, name)); err != nil {
			t.Fatalf("expected %s: %v", name, err)
		}
	}
	if _, err := os.Stat(filepath.Join(env.dir, "out/fox.json")); err == nil {
		t.Fatal("failed job must not write output")
	}
}

func TestBatchRejectsInvalidManifest(t *testing.T) {
	env := setupCLIEnv(t)
	for name, content := range map[string]string{
		"empty.toml":   ``,
		"no-out.toml":  "[[job]]\ntext = \"a.txt\"\ntimestamps = \"a.json\"\n",
		"unknown.toml": "[[job]]\ntext = \"a.txt\"\nduration = 1.0\noutput = \"a.json\"\nspeed = 2\n",
	} {
		if _, _, err := runCLI(t, "batch", env.write(t, name, content)); err == nil {
			t.Errorf("%s: expected manifest error", name)
		}
	}
}

func TestInspectLayers(t *testing.T) {
	env := setupCLIEnv(t)
	text := env.write(t, "hola.txt", "Hola mundo.")
	stamps := env.write(t, "hola.json", holaTokens)
	output := filepath.Join(env.dir, "hola.index.json")
	if _, _, err := runCLI(t, "index", "--text", text, "--timestamps", stamps, "--output", output); err != nil {
		t.Fatalf("index: %v", err)
	}

	out, _, err := runCLI(t, "inspect", output, "--layer", "cues")
	if err != nil {
		t.Fatalf("inspect cues: %v", err)
	}
	requireContains(t, out, "== Cues (1) ==")
	requireContains(t, out, "Hola mundo.")
	requireContains(t, out, "00:00:00,950")

	out, _, err = runCLI(t, "inspect", output, "--layer", "words", "--json")
	if err != nil {
		t.Fatalf("inspect words json: %v", err)
	}
	requireContains(t, out, `"text": "mundo"`)

	out, _, err = runCLI(t, "inspect", output)
	if err != nil {
		t.Fatalf("inspect summary: %v", err)
	}
	requireContains(t, out, "== Summary ==")

	if _, _, err := runCLI(t, "inspect", output, "--layer", "letters"); err == nil {
		t.Fatal("expected unknown layer error")
	}
}

func TestConfigCommands(t *testing.T) {
	env := setupCLIEnv(t)

	out, _, err := runCLI(t, "config", "validate")
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Configuration valid")
	requireContains(t, out, "defaults were used")

	target := filepath.Join(env.dir, "timeweave.toml")
	out, _, err = runCLI(t, "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	if _, _, err := runCLI(t, "config", "init", "--path", target); err == nil {
		t.Fatal("expected refusal to overwrite")
	}

	out, _, err = runCLI(t, "config", "validate")
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, target)

	out, _, err = runCLI(t, "config", "show")
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	requireContains(t, out, "[alignment]")
	requireContains(t, out, "[logging]")

	bad := env.write(t, "bad.toml", "[subtitles]\nmax_chars = 0\n")
	if _, _, err := runCLI(t, "--config", bad, "config", "show"); err == nil {
		t.Fatal("expected invalid config to be rejected")
	}
}
