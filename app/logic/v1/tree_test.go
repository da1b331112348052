package v1

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTreeNodesWithNodesKey(t *testing.T) {
	raw := `{"nodes": [
		{"id": "root", "label": "Python", "description": "程式語言", "parentId": null},
		{"id": "n1", "label": "變數", "description": "", "parentId": "root"}
	]}`

	nodes, err := parseTreeNodes(raw)
	require.NoError(t, err)
	require.Len(t, nodes, 2)
	assert.Equal(t, "root", nodes[0].ID)
	assert.Nil(t, nodes[0].ParentID)
	require.NotNil(t, nodes[1].ParentID)
	assert.Equal(t, "root", *nodes[1].ParentID)
}

func TestParseTreeNodesStripsCodeFence(t *testing.T) {
	raw := "```json\n{\"nodes\": [{\"id\": \"root\", \"label\": \"X\", \"description\": \"\", \"parentId\": null}]}\n```"

	nodes, err := parseTreeNodes(raw)
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	assert.Equal(t, "root", nodes[0].ID)
}

func TestParseTreeNodesBareList(t *testing.T) {
	raw := `[{"id": "root", "label": "X", "description": "", "parentId": null}]`

	nodes, err := parseTreeNodes(raw)
	require.NoError(t, err)
	assert.Len(t, nodes, 1)
}

func TestParseTreeNodesAnyListValue(t *testing.T) {
	// 模型偶尔自创字段名，任意数组值也要能解析
	raw := `{"tree": [{"id": "root", "label": "X", "description": "", "parentId": null}]}`

	nodes, err := parseTreeNodes(raw)
	require.NoError(t, err)
	assert.Len(t, nodes, 1)
}

func TestParseTreeNodesInvalid(t *testing.T) {
	_, err := parseTreeNodes("not json at all")
	assert.Error(t, err)

	_, err = parseTreeNodes(`{"message": "sorry"}`)
	assert.Error(t, err)

	_, err = parseTreeNodes("")
	assert.Error(t, err)
}

func TestValidateTreeSingleRoot(t *testing.T) {
	nodes, err := parseTreeNodes(`{"nodes": [
		{"id": "root", "label": "A", "description": "", "parentId": null},
		{"id": "n1", "label": "B", "description": "", "parentId": "root"},
		{"id": "n2", "label": "C", "description": "", "parentId": "n1"}
	]}`)
	require.NoError(t, err)
	assert.NoError(t, validateTree(nodes))
}

func TestValidateTreeRejectsMultipleRoots(t *testing.T) {
	nodes, err := parseTreeNodes(`{"nodes": [
		{"id": "r1", "label": "A", "description": "", "parentId": null},
		{"id": "r2", "label": "B", "description": "", "parentId": null}
	]}`)
	require.NoError(t, err)
	assert.Error(t, validateTree(nodes))
}

func TestValidateTreeRejectsNoRoot(t *testing.T) {
	nodes, err := parseTreeNodes(`{"nodes": [
		{"id": "n1", "label": "A", "description": "", "parentId": "n2"},
		{"id": "n2", "label": "B", "description": "", "parentId": "n1"}
	]}`)
	require.NoError(t, err)
	assert.Error(t, validateTree(nodes))
}

func TestValidateTreeRejectsDuplicateIDs(t *testing.T) {
	nodes, err := parseTreeNodes(`{"nodes": [
		{"id": "root", "label": "A", "description": "", "parentId": null},
		{"id": "root", "label": "B", "description": "", "parentId": null}
	]}`)
	require.NoError(t, err)
	assert.Error(t, validateTree(nodes))
}

func TestValidateTreeToleratesDanglingParent(t *testing.T) {
	// 悬空 parentId 只告警，不拒绝整棵树
	nodes, err := parseTreeNodes(`{"nodes": [
		{"id": "root", "label": "A", "description": "", "parentId": null},
		{"id": "n1", "label": "B", "description": "", "parentId": "ghost"}
	]}`)
	require.NoError(t, err)
	assert.NoError(t, validateTree(nodes))
}
