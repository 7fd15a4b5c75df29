package export

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/regen/entity"
	"github.com/teranos/regen/errors"
)

func TestImportTable(t *testing.T) {
	table := NewImportTable()
	table.Add("typing", "Union")
	table.Add("typing", "Any")
	table.Add("typing", "Any")
	table.Add(".vec", "Vec")
	table.Add(entity.BuiltinsModule, "int")
	table.Add("pathlib", "")

	assert.Equal(t, []string{".vec", "typing"}, table.Modules())
	assert.Equal(t, []string{"Any", "Union"}, table.Symbols("typing"))
	assert.False(t, table.Has(entity.BuiltinsModule, "int"))
	assert.True(t, table.Has(".vec", "Vec"))

	other := NewImportTable()
	other.Add("typing", "List")
	other.Add("numpy", "ndarray")
	table.Merge(other)
	table.Merge(nil)

	assert.Equal(t, []string{".vec", "numpy", "typing"}, table.Modules())
	assert.Equal(t, []string{"Any", "List", "Union"}, table.Symbols("typing"))
	assert.Equal(t, 3, table.Len())
}

func TestDeferredSet(t *testing.T) {
	set := NewDeferredSet()
	assert.True(t, set.Add("b"))
	assert.True(t, set.Add("a"))
	assert.False(t, set.Add("b"))

	other := NewDeferredSet()
	other.Add("c")
	other.Add("a")
	set.Merge(other)

	assert.Equal(t, []entity.Ref{"b", "a", "c"}, set.Refs())
	assert.True(t, set.Contains("c"))
	assert.False(t, set.Contains("d"))
	assert.Equal(t, 3, set.Len())

	// Refs returns a copy
	refs := set.Refs()
	refs[0] = "z"
	assert.Equal(t, entity.Ref("b"), set.Refs()[0])
}

func TestRegisterReference(t *testing.T) {
	c := loadCatalog(t, scopeManifest)
	owner := lookup(t, c, "Owner")
	fooBar := lookup(t, c, "FooBar")

	tests := []struct {
		name       string
		symbol     string
		ref        entity.Ref
		origin     string
		importedAs string
		deferred   bool
	}{
		{"builtin", "len", "builtins.len", "", "len", false},
		{"external", "Path", "pathlib.Path", "pathlib", "Path", false},
		{"sibling", "FooBar", fooBar, ".foo_bar", "FooBar", true},
		{"self", "Owner", owner, "", "Owner", false},
		{"bare module", "np", "import:np", entity.DefaultMainModule, "np", false},
		{"submodule", "integrate", "import:integrate", "scipy", "integrate", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scope := &referenceScope{in: c, self: owner, imports: NewImportTable(), deferred: NewDeferredSet()}
			origin, importedAs, err := scope.register(tt.symbol, tt.ref)
			require.NoError(t, err)
			assert.Equal(t, tt.origin, origin)
			assert.Equal(t, tt.importedAs, importedAs)
			assert.Equal(t, tt.deferred, scope.deferred.Contains(tt.ref))
			if tt.origin == "" {
				assert.Equal(t, 0, scope.imports.Len())
			}
		})
	}
}

func TestRegisterReference_ModuleAliases(t *testing.T) {
	c := loadCatalog(t, `
version: "1.0"
imports:
  - {alias: numpy, module: numpy}
  - {alias: np, module: numpy}
  - {alias: integrate, module: scipy.integrate}
  - {alias: ode, module: scipy.integrate}
entities:
  - {name: Owner, kind: class}
`)
	owner := lookup(t, c, "Owner")
	scope := &referenceScope{in: c, self: owner, imports: NewImportTable(), deferred: NewDeferredSet()}

	for _, alias := range []string{"numpy", "np", "integrate", "ode"} {
		_, _, err := scope.register(alias, entity.Ref("import:"+alias))
		require.NoError(t, err)
	}
	assert.Equal(t, []string{"numpy", "numpy as np"}, scope.imports.Symbols(entity.DefaultMainModule))
	assert.Equal(t, []string{"integrate", "integrate as ode"}, scope.imports.Symbols("scipy"))
}

func TestRegisterReference_Unresolvable(t *testing.T) {
	c := loadCatalog(t, scopeManifest)
	owner := lookup(t, c, "Owner")
	scope := &referenceScope{in: c, self: owner, imports: NewImportTable(), deferred: NewDeferredSet()}

	_, _, err := scope.register("mystery", "nowhere.mystery")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrUnresolvableReference))
	assert.Equal(t, 0, scope.imports.Len())
}
