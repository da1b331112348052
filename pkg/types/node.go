package types

// KnowledgeNode 知识树节点，以扁平化邻接表形式返回给调用方
// 根节点的 ParentID 为 null，每棵树有且只有一个根节点
type KnowledgeNode struct {
	ID          string  `json:"id"`
	Label       string  `json:"label"`
	Description string  `json:"description"`
	ParentID    *string `json:"parentId"`
}

// NodeContext 会话所处的节点上下文，由前端随每次请求传入
type NodeContext struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	Description string `json:"description"`
}
