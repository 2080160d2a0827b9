package loadconfig

import (
	"bytes"
	"io/ioutil"
	"log"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"github.com/timescale/tsbs-quick/internal/utils"
	"gopkg.in/yaml.v2"
)

func newTestReconciler(t *testing.T) *Reconciler {
	t.Helper()
	r, err := NewReconciler(nil, log.New(&bytes.Buffer{}, "", 0))
	require.NoError(t, err)
	return r
}

// rawDocument reads path without going through Parse so assertions are made
// against what is actually on disk.
func rawDocument(t *testing.T, path string) map[string]interface{} {
	t.Helper()
	raw, err := ioutil.ReadFile(path)
	require.NoError(t, err)
	var m map[string]interface{}
	require.NoError(t, yaml.Unmarshal(raw, &m))
	return m
}

func lookup(m interface{}, keys ...string) interface{} {
	for _, k := range keys {
		mm, ok := m.(map[interface{}]interface{})
		if !ok {
			if top, ok := m.(map[string]interface{}); ok {
				m = top[k]
				continue
			}
			return nil
		}
		m = mm[k]
	}
	return m
}

func TestReconcileCreatesFromTemplate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tsbs_load_greptime.yaml")
	r := newTestReconciler(t)

	got, err := r.Reconcile(path, "a.lp")
	require.NoError(t, err)

	want := DefaultBenchConfig()
	want.File = "a.lp"
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("returned config mismatch (-want +got):\n%s", diff)
	}

	doc := rawDocument(t, path)
	checks := []struct {
		keys []string
		want interface{}
	}{
		{[]string{"data-source", "file", "location"}, "a.lp"},
		{[]string{"loader", "db-specific", "urls"}, "http://localhost:4000"},
		{[]string{"loader", "db-specific", "gzip"}, false},
		{[]string{"loader", "runner", "batch-size"}, "100"},
		{[]string{"loader", "runner", "workers"}, 4},
		{[]string{"schema-version"}, 1},
	}
	for _, c := range checks {
		if got := lookup(doc, c.keys...); got != c.want {
			t.Errorf("%v: got %#v want %#v", c.keys, got, c.want)
		}
	}
}

func TestReconcilePersistedWins(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tsbs_load_greptime.yaml")
	r := newTestReconciler(t)

	_, err := r.Reconcile(path, "a.lp")
	require.NoError(t, err)
	before, err := ioutil.ReadFile(path)
	require.NoError(t, err)

	got, err := r.Reconcile(path, "b.lp")
	require.NoError(t, err)
	if got.File != "a.lp" {
		t.Errorf("override applied to persisted config: got %s want a.lp", got.File)
	}

	after, err := ioutil.ReadFile(path)
	require.NoError(t, err)
	if !bytes.Equal(before, after) {
		t.Errorf("persisted document was rewritten:\nbefore:\n%s\nafter:\n%s", before, after)
	}
}

func TestReconcileKeepsHandEditedDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tsbs_load_greptime.yaml")
	edited := BenchConfig{File: "/big.lp", URLs: "http://db:4000", Gzip: true, BatchSize: "3000", Workers: 6}
	require.NoError(t, Write(path, edited))

	got, err := newTestReconciler(t).Reconcile(path, "small.lp")
	require.NoError(t, err)
	if diff := cmp.Diff(edited, got); diff != "" {
		t.Errorf("persisted config not returned verbatim (-want +got):\n%s", diff)
	}
}

func TestReconcileMalformedPersisted(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tsbs_load_greptime.yaml")
	require.NoError(t, ioutil.WriteFile(path, []byte("loader:\n  runner: {workers: many}\n"), 0644))

	_, err := newTestReconciler(t).Reconcile(path, "a.lp")
	if !errors.Is(err, ErrConfigLoadFailure) {
		t.Errorf("expected ErrConfigLoadFailure, got %v", err)
	}
}

func TestRefreshReplacesPersisted(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tsbs_load_greptime.yaml")
	r := newTestReconciler(t)

	_, err := r.Reconcile(path, "a.lp")
	require.NoError(t, err)

	got, err := r.Refresh(path, "b.lp")
	require.NoError(t, err)
	if got.File != "b.lp" {
		t.Errorf("refresh did not apply override: got %s", got.File)
	}

	again, err := r.Reconcile(path, "c.lp")
	require.NoError(t, err)
	if again.File != "b.lp" {
		t.Errorf("refreshed document not persisted: got %s", again.File)
	}
}

func TestNewReconcilerCustomTemplate(t *testing.T) {
	template := []byte(`
data-source: {file: {location: ""}}
loader:
  db-specific: {urls: "http://greptime:4000", gzip: true}
  runner: {batch-size: "3000", workers: 8}
`)
	r, err := NewReconciler(template, log.New(&bytes.Buffer{}, "", 0))
	require.NoError(t, err)

	got, err := r.Reconcile(filepath.Join(t.TempDir(), "c.yaml"), "a.lp")
	require.NoError(t, err)
	want := BenchConfig{File: "a.lp", URLs: "http://greptime:4000", Gzip: true, BatchSize: "3000", Workers: 8}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("custom template not honored (-want +got):\n%s", diff)
	}

	if _, err := NewReconciler([]byte("loader: {}"), nil); !errors.Is(err, ErrConfigLoadFailure) {
		t.Errorf("expected ErrConfigLoadFailure for broken template, got %v", err)
	}
}

func TestReconcileEmptyInputFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "c.yaml")
	_, err := newTestReconciler(t).Reconcile(path, "")
	if !errors.Is(err, ErrConfigLoadFailure) {
		t.Errorf("expected ErrConfigLoadFailure, got %v", err)
	}
	if _, statErr := ioutil.ReadFile(path); statErr == nil {
		t.Errorf("invalid document was written")
	}
}

func TestReconcileLosesCreateRace(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tsbs_load_greptime.yaml")
	winner := BenchConfig{File: "winner.lp", URLs: "http://db:4000", Gzip: true, BatchSize: "3000", Workers: 6}

	orig := createExclusive
	defer func() { createExclusive = orig }()
	createExclusive = func(p string, perm os.FileMode, write utils.WriterFunc) (bool, error) {
		// Another invocation finishes its write first.
		require.NoError(t, Write(p, winner))
		return orig(p, perm, write)
	}

	got, err := newTestReconciler(t).Reconcile(path, "loser.lp")
	require.NoError(t, err)
	if diff := cmp.Diff(winner, got); diff != "" {
		t.Errorf("winner's document not returned (-want +got):\n%s", diff)
	}
	onDisk, err := Load(path)
	require.NoError(t, err)
	if diff := cmp.Diff(winner, onDisk); diff != "" {
		t.Errorf("winner's document was overwritten (-want +got):\n%s", diff)
	}
}

func TestReconcileConcurrentFirstWrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tsbs_load_greptime.yaml")
	r := newTestReconciler(t)

	inputs := []string{"a.lp", "b.lp", "c.lp", "d.lp", "e.lp", "f.lp", "g.lp", "h.lp"}
	got := make([]BenchConfig, len(inputs))
	errs := make([]error, len(inputs))
	var wg sync.WaitGroup
	for i, in := range inputs {
		wg.Add(1)
		go func(i int, in string) {
			defer wg.Done()
			got[i], errs[i] = r.Reconcile(path, in)
		}(i, in)
	}
	wg.Wait()

	onDisk, err := Load(path)
	require.NoError(t, err)
	for i := range inputs {
		require.NoError(t, errs[i])
		if got[i].File != onDisk.File {
			t.Errorf("%s: got %s, persisted document has %s", inputs[i], got[i].File, onDisk.File)
		}
	}
}
