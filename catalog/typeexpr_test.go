package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/regen/entity"
	"github.com/teranos/regen/errors"
)

func identity(name string) (entity.Ref, error) {
	if name == "ghost" {
		return "", errors.Unresolvable(name, "not declared in the catalog")
	}
	return entity.Ref(name), nil
}

func TestParseType(t *testing.T) {
	tests := []struct {
		expr string
		want string
	}{
		{"int", "int"},
		{"None", "None"},
		{"List[int]", "List[int]"},
		{"list[Vec]", "List[Vec]"},
		{"list", "list"},
		{"List", "List"},
		{"tuple[float, float, float, int]", "Tuple[float, float, float, int]"},
		{"Dict[str, Optional[Vec]]", "Dict[str, Optional[Vec]]"},
		{"None | SystemParameters", "Union[None, SystemParameters]"},
		{"int | str | None", "Union[int, str, None]"},
		{"Union[List[int], Tuple[str]]", "Union[List[int], Tuple[str]]"},
		{"np.ndarray[float]", "np.ndarray[float]"},
		{"  Optional[ List[ int ] ]  ", "Optional[List[int]]"},
		{"Optional['Vec']", "Optional[Vec]"},
		{`"List[Vec]"`, "List[Vec]"},
		{"(int | None)", "Union[int, None]"},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			d, err := ParseType(tt.expr, identity)
			require.NoError(t, err)
			assert.Equal(t, tt.want, d.String())
		})
	}
}

func TestParseType_UnionKeepsWrittenOrder(t *testing.T) {
	d, err := ParseType("B | A", identity)
	require.NoError(t, err)
	require.Equal(t, entity.CtorUnion, d.Ctor)
	assert.Equal(t, entity.Ref("B"), d.Args[0].Symbol)
	assert.Equal(t, entity.Ref("A"), d.Args[1].Symbol)
}

func TestParseType_Errors(t *testing.T) {
	tests := []struct {
		expr     string
		contains string
	}{
		{"", "empty type expression"},
		{"List[int", "syntax error"},
		{"List[int]]", "syntax error"},
		{"Optional[int, str]", "Optional takes 1"},
		{"Optional", "Optional takes 1"},
		{"Dict[str]", "Dict takes 2"},
		{"None[int]", "None takes no arguments"},
		{"[int]", "expected a type name"},
		{"make(int)", "expected a type name"},
		{"int + str", "unsupported operator"},
		{"int; str", "expected a single type expression"},
		{"List[ghost]", "ghost"},
		{"ghost", "ghost"},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			_, err := ParseType(tt.expr, identity)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.contains)
		})
	}
}
