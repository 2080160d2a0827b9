package main

import (
	"bytes"
	"context"
	"io/ioutil"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"github.com/timescale/tsbs-quick/internal/loadrun"
	"github.com/timescale/tsbs-quick/pkg/loadconfig"
)

// buildScript stands in for the real tsbs build: it drops shell versions of
// the generator and loader into the output directory. Both record their
// arguments next to themselves.
const buildScript = `#!/bin/sh
set -e
out="$2"
mkdir -p "$out"
echo "$1" > "$out/built-from.txt"
cat > "$out/tsbs_generate_data" <<'EOS'
#!/bin/sh
printf '%s\n' "$@" > "$(dirname "$0")/generator-args.txt"
echo "cpu,hostname=host_0 usage_user=58i 1686441600000000000"
echo "cpu,hostname=host_1 usage_user=2i 1686441600000000000"
EOS
cat > "$out/tsbs_load_greptime" <<'EOS'
#!/bin/sh
printf '%s\n' "$@" > "$(dirname "$0")/loader-args.txt"
echo "loaded 2 rows"
if [ -n "$FAIL_LOAD" ]; then
  echo "connection refused" >&2
  exit 1
fi
EOS
chmod +x "$out/tsbs_generate_data" "$out/tsbs_load_greptime"
`

type env struct {
	dir       string
	workspace string
	script    string
}

func newEnv(t *testing.T) env {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("requires /bin/sh")
	}
	dir := t.TempDir()
	script := filepath.Join(dir, "build_tsbs.sh")
	require.NoError(t, ioutil.WriteFile(script, []byte(buildScript), 0755))
	return env{dir: dir, workspace: filepath.Join(dir, "workspace"), script: script}
}

func (e env) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	args = append(args,
		"--workspace="+e.workspace,
		"--source-dir="+filepath.Join(e.dir, "tsbs"),
		"--build-script="+e.script,
	)
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func readLines(t *testing.T, path string) []string {
	t.Helper()
	raw, err := ioutil.ReadFile(path)
	require.NoError(t, err)
	return strings.Split(strings.TrimSpace(string(raw)), "\n")
}

func TestNoSubcommandPrintsHelp(t *testing.T) {
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{"generate", "greptime", "--workspace"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("help missing %q:\n%s", want, out.String())
		}
	}
}

func TestGenerateThenGreptime(t *testing.T) {
	e := newEnv(t)

	out, err := e.run(t, "generate")
	require.NoError(t, err, out)
	dataset := filepath.Join(e.workspace, "bench-data.lp")
	if lines := readLines(t, dataset); len(lines) != 2 {
		t.Errorf("incorrect dataset: %v", lines)
	}
	bin := filepath.Join(e.workspace, "bin")
	genArgs := readLines(t, filepath.Join(bin, "generator-args.txt"))
	if diff := cmp.Diff([]string{
		"--use-case=cpu-only",
		"--seed=123",
		"--scale=4000",
		"--timestamp-start=2023-06-11T00:00:00Z",
		"--timestamp-end=2023-06-14T00:00:00Z",
		"--log-interval=10s",
		"--format=influx",
	}, genArgs); diff != "" {
		t.Errorf("incorrect generator args (-want +got):\n%s", diff)
	}
	if got := readLines(t, filepath.Join(bin, "built-from.txt")); got[0] != filepath.Join(e.dir, "tsbs") {
		t.Errorf("build script got source dir %v", got)
	}

	out, err = e.run(t, "greptime")
	require.NoError(t, err, out)
	if !strings.Contains(out, "[load greptime] loaded 2 rows") {
		t.Errorf("loader output not streamed:\n%s", out)
	}

	want := loadconfig.BenchConfig{
		File:      dataset,
		URLs:      "http://localhost:4000",
		Gzip:      false,
		BatchSize: "100",
		Workers:   4,
	}
	persisted, err := loadconfig.Load(filepath.Join(e.workspace, "tsbs_load_greptime.yaml"))
	require.NoError(t, err)
	if diff := cmp.Diff(want, persisted); diff != "" {
		t.Errorf("incorrect persisted config (-want +got):\n%s", diff)
	}
	loadArgs := readLines(t, filepath.Join(bin, "loader-args.txt"))
	if diff := cmp.Diff(loadrun.Args(want), loadArgs); diff != "" {
		t.Errorf("incorrect loader args (-want +got):\n%s", diff)
	}
}

func TestGenerateOutputName(t *testing.T) {
	e := newEnv(t)
	out, err := e.run(t, "generate", "-o", "small.lp")
	require.NoError(t, err, out)
	if !strings.Contains(out, "Dataset ready: "+filepath.Join(e.workspace, "small.lp")) {
		t.Errorf("dataset path not reported:\n%s", out)
	}
}

func TestGreptimeLoadFailure(t *testing.T) {
	e := newEnv(t)
	_, err := e.run(t, "generate")
	require.NoError(t, err)

	t.Setenv("FAIL_LOAD", "1")
	_, err = e.run(t, "greptime")
	if !errors.Is(err, loadrun.ErrLoadRunFailure) {
		t.Fatalf("expected ErrLoadRunFailure, got %v", err)
	}
	if !strings.Contains(err.Error(), "load greptime exited with code 1: connection refused") {
		t.Errorf("diagnostic missing from error: %v", err)
	}
}

func TestSettingsFile(t *testing.T) {
	e := newEnv(t)
	settings := filepath.Join(e.dir, "settings.yaml")
	require.NoError(t, ioutil.WriteFile(settings, []byte("workspace: "+filepath.Join(e.dir, "other")+"\n"), 0644))

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{
		"generate",
		"--config=" + settings,
		"--build-script=" + e.script,
	})
	require.NoError(t, cmd.Execute(), out.String())
	if _, err := ioutil.ReadFile(filepath.Join(e.dir, "other", "bench-data.lp")); err != nil {
		t.Errorf("settings file workspace not used: %v", err)
	}
}
