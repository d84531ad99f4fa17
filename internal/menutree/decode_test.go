package menutree

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/menus/pkg/types"
)

func TestDecodeAcceptsWellFormedInput(t *testing.T) {
	raw := `[
		{"title": "Home", "url": "/"},
		{"title": "Genres", "extra": {"nested": [1, 2, {"x": null}]}, "children": [
			{"title": "Action", "type": "CATEGORY", "referenceId": "cat-1"},
			{"title": "Fantasy", "children": []}
		]},
		{"children": null, "icon": null}
	]`

	nodes, err := Decode([]byte(raw))
	require.NoError(t, err)
	require.Len(t, nodes, 3)
	assert.Equal(t, "Home", nodes[0].Title)
	assert.Equal(t, "/", nodes[0].URL)
	require.Len(t, nodes[1].Children, 2)
	assert.Equal(t, "CATEGORY", nodes[1].Children[0].Type)
	assert.Equal(t, "cat-1", nodes[1].Children[0].ReferenceID)
	assert.Empty(t, nodes[1].Children[1].Children)
	assert.Empty(t, nodes[2].Children)
}

func TestDecodeEmptyArray(t *testing.T) {
	nodes, err := Decode([]byte(" [ ] "))
	require.NoError(t, err)
	assert.NotNil(t, nodes)
	assert.Empty(t, nodes)
}

func TestDecodeRejectsMalformedInput(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantMsg string
	}{
		{name: "empty body", raw: ``, wantMsg: "malformed JSON"},
		{name: "null", raw: `null`, wantMsg: "must be an array"},
		{name: "object", raw: `{"title":"Home"}`, wantMsg: "must be an array"},
		{name: "string", raw: `"items"`, wantMsg: "must be an array"},
		{name: "number", raw: `42`, wantMsg: "must be an array"},
		{name: "truncated", raw: `[{"title":"Home"}`, wantMsg: "malformed JSON"},
		{name: "null element", raw: `[null]`, wantMsg: "node 0 is not an object"},
		{name: "scalar element", raw: `[{"title":"a"}, 3]`, wantMsg: "node 1 is not an object"},
		{name: "nested array element", raw: `[[]]`, wantMsg: "node 0 is not an object"},
		{name: "children object", raw: `[{"children":{}}]`, wantMsg: "node 0: children must be an array"},
		{name: "children string", raw: `[{"children":"x"}]`, wantMsg: "children must be an array"},
		{name: "nested bad child", raw: `[{"title":"a"},{"children":[{"title":"b"},"c"]}]`, wantMsg: "node 1.1 is not an object"},
		{name: "title number", raw: `[{"title":7}]`, wantMsg: "node 0: title must be a string"},
		{name: "type object", raw: `[{"children":[{"type":{}}]}]`, wantMsg: "node 0.0: type must be a string"},
		{name: "trailing data", raw: `[] []`, wantMsg: "unexpected data"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nodes, err := Decode([]byte(tt.raw))
			assert.Nil(t, nodes)
			require.ErrorIs(t, err, types.ErrInvalidItems)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestDecodeDeepNesting(t *testing.T) {
	const depth = 2000
	raw := strings.Repeat(`[{"title":"n","children":`, depth) + `[]` + strings.Repeat(`}]`, depth)

	nodes, err := Decode([]byte(raw))
	require.NoError(t, err)

	flat := Normalize(nodes)
	require.Len(t, flat, depth)
	assert.Equal(t, depth-1, flat[depth-1].Depth)
	assert.Equal(t, depth-2, flat[depth-1].Parent)
}
