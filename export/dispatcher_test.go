package export

import (
	"context"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/teranos/regen/catalog"
	"github.com/teranos/regen/entity"
	"github.com/teranos/regen/errors"
	"github.com/teranos/regen/logger"
)

func loadFlappy(t *testing.T) *catalog.Catalog {
	t.Helper()
	c, err := catalog.Load(filepath.Join("..", "catalog", "testdata", "flappy.yaml"))
	require.NoError(t, err)
	return c
}

func outcomeNames(outcomes []Outcome) []string {
	var names []string
	for _, o := range outcomes {
		names = append(names, o.Entity)
	}
	return names
}

func TestExport_FlappyClosure(t *testing.T) {
	c := loadFlappy(t)
	e, dir := newExporter(t, c)

	summary, err := e.Export(context.Background(), lookup(t, c, "simulate"))
	require.NoError(t, err)
	require.NoError(t, summary.Err())

	files := listDir(t, dir)
	sort.Strings(files)
	assert.Equal(t, []string{
		"box.py",
		"flappy_hybrid_sim.py",
		"flappy_level.py",
		"simulate.py",
		"state.py",
		"state_derivative.py",
		"system_parameters.py",
	}, files)

	// Every entity is written exactly once, root first
	written := outcomeNames(summary.Written)
	require.Len(t, written, 7)
	assert.Equal(t, "simulate", written[0])
	seen := make(map[string]bool)
	for _, name := range written {
		assert.False(t, seen[name], "%s written twice", name)
		seen[name] = true
	}

	assert.Equal(t, []string{"FlappyHybridSim.__repr__"}, outcomeNames(summary.Skipped))
	assert.True(t, errors.Is(summary.Skipped[0].Err, errors.ErrSourceUnavailable))
	assert.Empty(t, summary.Failed)
	assert.NotEmpty(t, summary.RunID)

	sim := readFile(t, filepath.Join(dir, "flappy_hybrid_sim.py"))
	assert.Contains(t, sim, "import numpy as np\n")
	assert.Contains(t, sim, "from scipy import integrate\n")
	assert.Contains(t, sim, "from .state_derivative import StateDerivative\n")
	assert.Contains(t, sim, "class FlappyHybridSim:\n")
	assert.Contains(t, sim, "    cur_params: Union[None, SystemParameters]\n")
	assert.Contains(t, sim, "    atol: Any\n")
	assert.NotContains(t, sim, "__repr__")

	box := readFile(t, filepath.Join(dir, "box.py"))
	assert.Equal(t, `from typing import Any, NamedTuple, Tuple

class Box(NamedTuple):
    top_left: Tuple[float, float]
    width: Any
    height: Any
`, box)
}

func TestExport_CycleTerminates(t *testing.T) {
	c := loadCatalog(t, `
version: "1.0"
entities:
  - name: A
    kind: class
    annotations: [{name: b, type: "Optional[B]"}]
  - name: B
    kind: class
    annotations: [{name: a, type: A}]
`)
	e, dir := newExporter(t, c)
	summary, err := e.Export(context.Background(), lookup(t, c, "A"))
	require.NoError(t, err)

	assert.Equal(t, []string{"A", "B"}, outcomeNames(summary.Written))
	assert.ElementsMatch(t, []string{"a.py", "b.py"}, listDir(t, dir))
	assert.Contains(t, readFile(t, filepath.Join(dir, "a.py")), "from .b import B\n")
	assert.Contains(t, readFile(t, filepath.Join(dir, "b.py")), "from .a import A\n")
}

func TestExport_DestinationCollisions(t *testing.T) {
	tests := []struct {
		name   string
		first  string
		second string
		file   string
	}{
		{"leading case", "FooBar", "fooBar", "foo_bar.py"},
		{"accent folding", "Cafe", "Café", "cafe.py"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := loadCatalog(t, `
version: "1.0"
entities:
  - name: `+tt.first+`
    kind: class
    annotations: [{name: other, type: `+tt.second+`}]
  - {name: `+tt.second+`, kind: class}
`)
			e, dir := newExporter(t, c)
			summary, err := e.Export(context.Background(), lookup(t, c, tt.first))
			require.NoError(t, err)

			assert.Equal(t, []string{tt.first}, outcomeNames(summary.Written))
			require.Len(t, summary.Failed, 1)
			assert.Equal(t, tt.second, summary.Failed[0].Entity)
			assert.True(t, errors.Is(summary.Failed[0].Err, errors.ErrDestinationCollision))

			assert.Equal(t, []string{tt.file}, listDir(t, dir))
			assert.Contains(t, readFile(t, filepath.Join(dir, tt.file)), "class "+tt.first+":")
			assert.True(t, errors.Is(summary.Err(), errors.ErrDestinationCollision))
		})
	}
}

func TestExport_UnderscoreKeepsModulesApart(t *testing.T) {
	c := loadCatalog(t, `
version: "1.0"
entities:
  - name: FooBar
    kind: class
    annotations: [{name: other, type: Foo_Bar}]
  - {name: Foo_Bar, kind: class}
  - {name: ODESolver, kind: class}
`)
	e, dir := newExporter(t, c)
	summary, err := e.ExportAll(context.Background(), []entity.Ref{lookup(t, c, "FooBar"), lookup(t, c, "ODESolver")})
	require.NoError(t, err)

	assert.Empty(t, summary.Failed)
	assert.ElementsMatch(t, []string{"foo_bar.py", "foo__bar.py", "o_d_e_solver.py"}, listDir(t, dir))
	assert.Contains(t, readFile(t, filepath.Join(dir, "foo_bar.py")), "from .foo__bar import Foo_Bar\n")
}

func TestExport_InferredGlobalsAreExported(t *testing.T) {
	c := loadCatalog(t, `
version: "1.0"
entities:
  - name: report
    kind: function
    source: |
      def report(x):
          return f"{fmt_value(x)}"
  - name: fmt_value
    kind: function
    source: "def fmt_value(v): return str(v)"
  - name: make
    kind: function
    source: |
      def make(s: State = None):
          return s
  - name: State
    kind: record
    fields: [x]
`)
	tests := []struct {
		root    string
		files   []string
		imports string
	}{
		{"report", []string{"report.py", "fmt_value.py"}, "from .fmt_value import fmt_value\n"},
		{"make", []string{"make.py", "state.py"}, "from .state import State\n"},
	}
	for _, tt := range tests {
		t.Run(tt.root, func(t *testing.T) {
			e, dir := newExporter(t, c)
			summary, err := e.Export(context.Background(), lookup(t, c, tt.root))
			require.NoError(t, err)

			assert.Empty(t, summary.Failed)
			assert.ElementsMatch(t, tt.files, listDir(t, dir))
			assert.Contains(t, readFile(t, filepath.Join(dir, tt.root+".py")), tt.imports)
		})
	}
}

func TestExport_Unclassifiable(t *testing.T) {
	c := loadCatalog(t, scopeManifest)
	e, dir := newExporter(t, c)

	summary, err := e.Export(context.Background(), "import:np")
	require.NoError(t, err)

	assert.Empty(t, summary.Written)
	require.Len(t, summary.Failed, 1)
	assert.Equal(t, "unclassifiable", summary.Failed[0].Kind)
	assert.True(t, errors.Is(summary.Failed[0].Err, errors.ErrUnclassifiableEntity))
	assert.NoDirExists(t, dir)
}

func TestExport_FailingSiblingDoesNotStopRoot(t *testing.T) {
	c := loadCatalog(t, `
version: "1.0"
entities:
  - name: Root
    kind: class
    annotations:
      - {name: broken, type: Broken}
      - {name: fine, type: Fine}
  - {name: Broken, kind: function}
  - {name: Fine, kind: record, fields: [v]}
`)
	e, dir := newExporter(t, c)
	summary, err := e.Export(context.Background(), lookup(t, c, "Root"))
	require.NoError(t, err)

	assert.Equal(t, []string{"Root", "Fine"}, outcomeNames(summary.Written))
	assert.Equal(t, []string{"Broken"}, outcomeNames(summary.Failed))
	assert.ElementsMatch(t, []string{"root.py", "fine.py"}, listDir(t, dir))

	err = summary.Err()
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrSourceUnavailable))
	assert.Contains(t, err.Error(), "Broken")
}

func TestExport_WarningsAreLogged(t *testing.T) {
	c := loadCatalog(t, `
version: "1.0"
entities:
  - {name: Left, kind: class}
  - {name: Right, kind: class}
  - {name: Mixed, kind: class, bases: [Left, Right]}
`)
	core, logs := observer.New(zapcore.WarnLevel)
	e, dir := newExporter(t, c, WithLogger(zap.New(core).Sugar()))

	summary, err := e.Export(context.Background(), lookup(t, c, "Mixed"))
	require.NoError(t, err)

	// Degraded inheritance still writes the module, with no bases
	assert.Equal(t, "class Mixed:\n    pass\n", readFile(t, filepath.Join(dir, "mixed.py")))
	require.Len(t, summary.Written, 1)
	require.Len(t, summary.Written[0].Warnings, 1)
	assert.True(t, errors.Is(summary.Written[0].Warnings[0], errors.ErrUnsupportedInheritance))

	warnings := logs.FilterMessage("Exported with warning").All()
	require.Len(t, warnings, 1)
	fields := warnings[0].ContextMap()
	assert.Equal(t, "__main__.Mixed", fields[logger.FieldEntity])
	assert.Equal(t, "export", fields[logger.FieldComponent])
	assert.Equal(t, summary.RunID, fields[logger.FieldRunID])
}

func TestExport_CancelledContext(t *testing.T) {
	c := loadFlappy(t)
	e, dir := newExporter(t, c)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	summary, err := e.Export(ctx, lookup(t, c, "simulate"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Empty(t, summary.Written)
	assert.NoDirExists(t, dir)
}

func TestExportAll_SharesRunState(t *testing.T) {
	c := loadFlappy(t)
	e, dir := newExporter(t, c)

	summary, err := e.ExportAll(context.Background(), []entity.Ref{
		lookup(t, c, "State"),
		lookup(t, c, "simulate"),
		lookup(t, c, "State"),
	})
	require.NoError(t, err)

	assert.Len(t, summary.Written, 7)
	assert.Equal(t, "State", summary.Written[0].Entity)
	assert.Len(t, listDir(t, dir), 7)
}

func TestExport_FormatterFailureIsWarning(t *testing.T) {
	c := loadCatalog(t, counterManifest)
	dir := filepath.Join(t.TempDir(), "out")
	e, err := New(c, Options{OutputDir: dir, FormatCommand: "false"}, WithLogger(zap.NewNop().Sugar()))
	require.NoError(t, err)

	summary, err := e.Export(context.Background(), lookup(t, c, "Counter"))
	require.NoError(t, err)

	require.Len(t, summary.Written, 1)
	require.Len(t, summary.Written[0].Warnings, 1)
	assert.Contains(t, summary.Written[0].Warnings[0].Error(), "formatter false failed")
	assert.FileExists(t, filepath.Join(dir, "counter.py"))
	assert.Empty(t, summary.Failed)
}

func TestNew_Defaults(t *testing.T) {
	c := loadCatalog(t, counterManifest)
	e, err := New(c, Options{})
	require.NoError(t, err)

	assert.Equal(t, DefaultOutputDir, e.Writer().Dir)
	assert.Equal(t, DefaultExtension, e.Writer().Extension)
	assert.Equal(t, entity.TypingModule, e.opts.TypingModule)
	assert.Equal(t, filepath.Join(DefaultOutputDir, "counter.py"), e.Writer().Path(".counter"))

	_, err = New(c, Options{FormatCommand: `black "unterminated`})
	require.Error(t, err)
}
