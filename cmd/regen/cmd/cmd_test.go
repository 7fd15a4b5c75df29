package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/regen/catalog"
	"github.com/teranos/regen/config"
	"github.com/teranos/regen/entity"
	"github.com/teranos/regen/errors"
)

var flappyCatalog = filepath.Join("..", "..", "..", "catalog", "testdata", "flappy.yaml")

// isolate keeps user and project config files out of a command run.
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	chdir(t, t.TempDir())
	config.Reset()
	t.Cleanup(config.Reset)
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	RootCmd.SetOut(&out)
	RootCmd.SetErr(&out)
	RootCmd.SetArgs(args)
	err := RootCmd.Execute()
	return out.String(), err
}

func TestSelectEntities(t *testing.T) {
	c, err := catalog.Load(flappyCatalog)
	require.NoError(t, err)

	refs, err := selectEntities(c, []string{"simulate", "State"}, false)
	require.NoError(t, err)
	assert.Equal(t, []entity.Ref{"__main__.simulate", "__main__.State"}, refs)

	all, err := selectEntities(c, nil, true)
	require.NoError(t, err)
	assert.Len(t, all, 7)

	_, err = selectEntities(c, nil, false)
	require.Error(t, err)

	_, err = selectEntities(c, []string{"Nope", "State"}, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown entities: Nope")
	hints := errors.GetAllHints(err)
	require.Len(t, hints, 1)
	assert.Contains(t, hints[0], "FlappyHybridSim")
}

func TestRenderConfig(t *testing.T) {
	cfg := &config.Config{
		Output:  config.OutputConfig{Dir: "generated", Extension: ".py", TypingModule: "typing"},
		Catalog: config.CatalogConfig{Path: "sim.yaml", MainModule: "__main__"},
	}

	tests := []struct {
		format   string
		contains string
	}{
		{"toml", "[output]"},
		{"yaml", "dir: generated"},
		{"json", `"dir": "generated"`},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			out, err := renderConfig(cfg, tt.format)
			require.NoError(t, err)
			assert.Contains(t, out, tt.contains)
		})
	}

	_, err := renderConfig(cfg, "ini")
	require.Error(t, err)
}

func TestExportAndCheckCommands(t *testing.T) {
	catalogPath, err := filepath.Abs(flappyCatalog)
	require.NoError(t, err)
	isolate(t)
	out := filepath.Join(t.TempDir(), "generated")
	report := filepath.Join(t.TempDir(), "report.toml")

	_, err = execute(t, "export", "simulate", "--catalog", catalogPath, "-o", out, "--report", report)
	require.NoError(t, err)

	entries, err := os.ReadDir(out)
	require.NoError(t, err)
	var files []string
	for _, e := range entries {
		files = append(files, e.Name())
	}
	sort.Strings(files)
	assert.Equal(t, []string{
		"box.py", "flappy_hybrid_sim.py", "flappy_level.py", "simulate.py",
		"state.py", "state_derivative.py", "system_parameters.py",
	}, files)
	assert.FileExists(t, report)

	_, err = execute(t, "check", "simulate", "--catalog", catalogPath, "-o", out)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(out, "box.py"), []byte("# edited\n"), 0644))
	_, err = execute(t, "check", "simulate", "--catalog", catalogPath, "-o", out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "out of date")
}

func TestWatchCommand_BrokenCatalogFailsFast(t *testing.T) {
	isolate(t)
	broken := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(broken, []byte(`{version: "9.0", entities: []}`), 0644))

	done := make(chan error, 1)
	go func() {
		_, err := execute(t, "watch", "--all", "--catalog", broken, "-o", filepath.Join(t.TempDir(), "out"))
		done <- err
	}()

	select {
	case err := <-done:
		require.Error(t, err)
		assert.Contains(t, err.Error(), "initial export failed")
		assert.Contains(t, err.Error(), "not supported")
	case <-time.After(10 * time.Second):
		t.Fatal("watch kept running on a catalog that does not load")
	}
}

func TestListCommand_NoSource(t *testing.T) {
	isolate(t)
	_, err := execute(t, "list")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no entity source configured")
}

func TestVersionCommand(t *testing.T) {
	isolate(t)
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "regen dev")
	assert.Contains(t, out, "Platform:")
}
