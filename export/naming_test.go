package export

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToSnakeCase(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"FooBar", "foo_bar"},
		{"Foo_Bar", "foo__bar"},
		{"FlappyHybridSim", "flappy_hybrid_sim"},
		{"ODESolver", "o_d_e_solver"},
		{"HTTPServer", "h_t_t_p_server"},
		{"getValue", "get_value"},
		{"ID", "i_d"},
		{"Café", "café"},
		{"simulate", "simulate"},
		{"solve_system", "solve_system"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, ToSnakeCase(tt.input))
		})
	}
}

func TestModuleName(t *testing.T) {
	assert.Equal(t, ".foo_bar", ModuleName("FooBar"))
	assert.Equal(t, "foo_bar", FileStem(".foo_bar"))
	assert.Equal(t, "typing", FileStem("typing"))
}

func TestCollisionKey(t *testing.T) {
	assert.Equal(t, collisionKey(ModuleName("FooBar")), collisionKey(ModuleName("fooBar")))
	assert.NotEqual(t, collisionKey(ModuleName("FooBar")), collisionKey(ModuleName("Foo_Bar")))
	assert.Equal(t, collisionKey(ModuleName("Café")), collisionKey(ModuleName("Cafe")))
	assert.NotEqual(t, collisionKey(ModuleName("FooBar")), collisionKey(ModuleName("FooBaz")))
}
