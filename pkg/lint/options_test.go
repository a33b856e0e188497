package lint

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetOption(t *testing.T) {
	opts := map[string]any{
		"name":    "plan",
		"enabled": true,
	}

	name, ok := GetOption[string](opts, "name")
	assert.True(t, ok)
	assert.Equal(t, "plan", name)

	_, ok = GetOption[int](opts, "name")
	assert.False(t, ok, "mistyped lookup must miss")

	_, ok = GetOption[string](opts, "absent")
	assert.False(t, ok)

	_, ok = GetOption[string](nil, "name")
	assert.False(t, ok)
}

func TestGetIntOption(t *testing.T) {
	tests := []struct {
		name string
		opts map[string]any
		want int
	}{
		{"int", map[string]any{"n": 3}, 3},
		{"int64", map[string]any{"n": int64(4)}, 4},
		{"float64 from json", map[string]any{"n": float64(5)}, 5},
		{"missing", map[string]any{}, 7},
		{"mistyped", map[string]any{"n": "many"}, 7},
		{"nil map", nil, 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GetIntOption(tt.opts, "n", 7))
		})
	}
}

func TestGetStringSliceOption(t *testing.T) {
	opts := map[string]any{
		"typed": []string{"a", "b"},
		"yaml":  []any{"c", "d", 5},
	}
	assert.Equal(t, []string{"a", "b"}, GetStringSliceOption(opts, "typed"))
	assert.Equal(t, []string{"c", "d"}, GetStringSliceOption(opts, "yaml"), "non-strings are dropped")
	assert.Nil(t, GetStringSliceOption(opts, "absent"))
	assert.Nil(t, GetStringSliceOption(nil, "typed"))
}

func TestGetBoolAndStringOptions(t *testing.T) {
	opts := map[string]any{"flag": true, "mode": "loose"}
	assert.True(t, GetBoolOption(opts, "flag", false))
	assert.False(t, GetBoolOption(opts, "absent", false))
	assert.Equal(t, "loose", GetStringOption(opts, "mode", "strict"))
	assert.Equal(t, "strict", GetStringOption(opts, "absent", "strict"))
}
