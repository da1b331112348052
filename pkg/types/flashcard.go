package types

// Flashcard 闪卡，仅由对话引擎的工具调用产生，创建后不可修改
type Flashcard struct {
	ID        string `json:"id" db:"id"`
	OwnerID   string `json:"owner_id" db:"owner_id"`
	TreeID    string `json:"tree_id" db:"tree_id"`
	NodeID    string `json:"node_id" db:"node_id"`
	Front     string `json:"front" db:"front"`
	Back      string `json:"back" db:"back"`
	CreatedAt int64  `json:"created_at" db:"created_at"`
}
