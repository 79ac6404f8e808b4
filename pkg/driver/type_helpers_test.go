package driver

import (
	"testing"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTypeConversionError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      *TypeConversionError
		expected string
	}{
		{
			name:     "with field",
			err:      NewTypeConversionError("string", "int64", "vertex_id"),
			expected: `type conversion error for field "vertex_id": expected string, got int64`,
		},
		{
			name:     "without field",
			err:      NewTypeConversionError("dbtype.Node", "<nil>", ""),
			expected: "type conversion error: expected dbtype.Node, got <nil>",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestAsStringSlice(t *testing.T) {
	t.Parallel()

	got, ok := AsStringSlice([]any{"a", "b"})
	require.True(t, ok)
	assert.Equal(t, []string{"a", "b"}, got)

	got, ok = AsStringSlice([]string{"x"})
	require.True(t, ok)
	assert.Equal(t, []string{"x"}, got)

	_, ok = AsStringSlice([]any{"a", 1})
	assert.False(t, ok)

	_, ok = AsStringSlice(42)
	assert.False(t, ok)
}

func TestAsProperties(t *testing.T) {
	t.Parallel()

	props, ok := AsProperties(`{"weight": 2}`)
	require.True(t, ok)
	assert.Equal(t, float64(2), props["weight"])

	props, ok = AsProperties(map[string]any{"k": "v"})
	require.True(t, ok)
	assert.Equal(t, "v", props["k"])

	props, ok = AsProperties("")
	require.True(t, ok)
	assert.Nil(t, props)

	_, ok = AsProperties("{not json")
	assert.False(t, ok)
}

func TestVertexFromDBNode(t *testing.T) {
	t.Parallel()

	v := vertexFromDBNode(dbtype.Node{
		ElementId: "4:abc:1",
		Labels:    []string{"Person"},
		Props:     map[string]any{IDProperty: "alice", "age": int64(30)},
	})
	assert.Equal(t, "alice", v.ID)
	assert.Equal(t, []string{"Person"}, v.Labels)
	assert.Equal(t, int64(30), v.Properties["age"])
	assert.NotContains(t, v.Properties, IDProperty)

	anon := vertexFromDBNode(dbtype.Node{ElementId: "4:abc:2"})
	assert.Equal(t, "4:abc:2", anon.ID)
}

func TestEdgeFromDBRelationship(t *testing.T) {
	t.Parallel()

	e := edgeFromDBRelationship(dbtype.Relationship{
		ElementId:      "5:abc:9",
		StartElementId: "4:abc:1",
		EndElementId:   "4:abc:2",
		Type:           "KNOWS",
		Props:          map[string]any{IDProperty: "e1"},
	}, "alice", "")

	assert.Equal(t, "e1", e.ID)
	assert.Equal(t, "KNOWS", e.Type)
	assert.Equal(t, "alice", e.StartID)
	assert.Equal(t, "4:abc:2", e.EndID)
}
