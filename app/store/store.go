package store

import (
	"context"

	"github.com/pgvector/pgvector-go"

	"github.com/feynman-ai/feynman-ai/pkg/sqlstore"
	"github.com/feynman-ai/feynman-ai/pkg/types"
)

// NodeVectorStore 定义节点向量存储的方法集合
type NodeVectorStore interface {
	sqlstore.SqlCommons
	Create(ctx context.Context, data types.NodeVector) error
	BatchCreate(ctx context.Context, datas []types.NodeVector) error
	// Match 余弦相似度检索，只返回相似度不低于 threshold 的记录
	Match(ctx context.Context, opts types.MatchVectorOptions, vector pgvector.Vector, threshold float32, limit uint64) ([]types.VectorMatch, error)
	// DeleteByNodeSource 删除节点下某来源的全部向量，重新摄取前清场
	DeleteByNodeSource(ctx context.Context, nodeID, sourceType string) error
	DeleteAll(ctx context.Context, ownerID string) error
	Total(ctx context.Context, opts types.MatchVectorOptions) (int64, error)
}

// FlashcardStore 定义闪卡存储的方法集合
type FlashcardStore interface {
	sqlstore.SqlCommons
	Create(ctx context.Context, data types.Flashcard) error
	Get(ctx context.Context, ownerID, id string) (*types.Flashcard, error)
	ListFlashcards(ctx context.Context, ownerID, treeID, nodeID string, page, pageSize uint64) ([]types.Flashcard, error)
	Delete(ctx context.Context, ownerID, id string) error
	// Probe 健康检查用的廉价查询
	Probe(ctx context.Context) error
}

type Store interface {
	NodeVectorStore() NodeVectorStore
	FlashcardStore() FlashcardStore
	Transaction(ctx context.Context, next func(ctx context.Context) error) error
}
