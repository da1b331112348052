package types

import (
	"encoding/json"

	sq "github.com/Masterminds/squirrel"
	"github.com/pgvector/pgvector-go"
)

// EmbeddingDimension 向量维度，由 embedding 模型决定（text-embedding-004 输出 768 维）
const EmbeddingDimension = 768

const (
	VECTOR_SOURCE_NOTE = "note"
	VECTOR_SOURCE_FILE = "file"
)

// NodeVector 节点向量记录
// 同一 (node_id, source_type) 的记录在重新摄取时整体替换，不做原地更新
type NodeVector struct {
	ID         string          `json:"id" db:"id"`
	OwnerID    string          `json:"owner_id" db:"owner_id"`
	TreeID     string          `json:"tree_id" db:"tree_id"`
	NodeID     string          `json:"node_id" db:"node_id"`
	Content    string          `json:"content" db:"content"`
	SourceType string          `json:"source_type" db:"source_type"` // note | file
	Embedding  pgvector.Vector `json:"embedding" db:"embedding"`
	Metadata   json.RawMessage `json:"metadata" db:"metadata"` // 文件路径、chunk 序号等
	CreatedAt  int64           `json:"created_at" db:"created_at"`
}

// VectorMatch 相似度检索结果
type VectorMatch struct {
	ID         string  `json:"id" db:"id"`
	NodeID     string  `json:"node_id" db:"node_id"`
	Content    string  `json:"content" db:"content"`
	Similarity float32 `json:"similarity" db:"similarity"`
}

type MatchVectorOptions struct {
	OwnerID string
	NodeID  string
}

func (opts MatchVectorOptions) Apply(query *sq.SelectBuilder) {
	if opts.OwnerID != "" {
		*query = query.Where(sq.Eq{"owner_id": opts.OwnerID})
	}
	if opts.NodeID != "" {
		*query = query.Where(sq.Eq{"node_id": opts.NodeID})
	}
}
