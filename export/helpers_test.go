package export

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/teranos/regen/catalog"
	"github.com/teranos/regen/entity"
)

// scopeManifest is a small top-level scope exercising every kind of reference.
const scopeManifest = `
version: "1.0"
imports:
  - {alias: np, module: numpy}
  - {alias: integrate, module: scipy.integrate}
externals:
  - {name: Path, module: pathlib}
  - {name: ndarray, module: numpy}
entities:
  - {name: Owner, kind: class}
  - {name: FooBar, kind: class}
  - name: Vec
    kind: record
    fields: [x, y]
`

func loadCatalog(t *testing.T, manifest string) *catalog.Catalog {
	t.Helper()
	c, err := catalog.Parse([]byte(manifest), catalog.FormatYAML)
	require.NoError(t, err)
	return c
}

func lookup(t *testing.T, c *catalog.Catalog, name string) entity.Ref {
	t.Helper()
	ref, ok := c.Lookup(name)
	require.True(t, ok, "entity %s not in catalog", name)
	return ref
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func listDir(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func newExporter(t *testing.T, in entity.Introspector, options ...Option) (*Exporter, string) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "out")
	e, err := New(in, Options{OutputDir: dir}, options...)
	require.NoError(t, err)
	return e, dir
}
