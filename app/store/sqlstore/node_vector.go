package sqlstore

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/pgvector/pgvector-go"

	"github.com/feynman-ai/feynman-ai/pkg/types"
)

type NodeVectorStore struct {
	CommonFields
}

func NewNodeVectorStore(provider SqlProviderAchieve) *NodeVectorStore {
	repo := &NodeVectorStore{}
	repo.SetProvider(provider)
	repo.SetTable(types.TABLE_NODE_VECTOR)
	repo.SetAllColumns("id", "owner_id", "tree_id", "node_id", "content", "source_type", "embedding", "metadata", "created_at")
	return repo
}

// Create 创建新的节点向量记录
func (s *NodeVectorStore) Create(ctx context.Context, data types.NodeVector) error {
	if data.CreatedAt == 0 {
		data.CreatedAt = time.Now().Unix()
	}
	query := sq.Insert(s.GetTable()).
		Columns("id", "owner_id", "tree_id", "node_id", "content", "source_type", "embedding", "metadata", "created_at").
		Values(data.ID, data.OwnerID, data.TreeID, data.NodeID, data.Content, data.SourceType, data.Embedding, data.Metadata, data.CreatedAt)

	queryString, args, err := query.ToSql()
	if err != nil {
		return ErrorSqlBuild(err)
	}

	_, err = s.GetMaster(ctx).Exec(queryString, args...)
	return err
}

// BatchCreate 批量创建节点向量记录
func (s *NodeVectorStore) BatchCreate(ctx context.Context, datas []types.NodeVector) error {
	if len(datas) == 0 {
		return nil
	}
	query := sq.Insert(s.GetTable()).
		Columns("id", "owner_id", "tree_id", "node_id", "content", "source_type", "embedding", "metadata", "created_at")

	for _, data := range datas {
		if data.CreatedAt == 0 {
			data.CreatedAt = time.Now().Unix()
		}
		query = query.Values(data.ID, data.OwnerID, data.TreeID, data.NodeID, data.Content, data.SourceType, data.Embedding, data.Metadata, data.CreatedAt)
	}

	queryString, args, err := query.ToSql()
	if err != nil {
		return ErrorSqlBuild(err)
	}

	_, err = s.GetMaster(ctx).Exec(queryString, args...)
	return err
}

// Match 余弦相似度检索。
// pgvector supported distance functions are:
// <-> - L2 distance
// <#> - (negative) inner product
// <=> - cosine distance
// <+> - L1 distance (added in 0.7.0)
func (s *NodeVectorStore) Match(ctx context.Context, opts types.MatchVectorOptions, vector pgvector.Vector, threshold float32, limit uint64) ([]types.VectorMatch, error) {
	query := sq.Select("id", "node_id", "content").
		Column(sq.Expr("1 - (embedding <=> ?) AS similarity", vector)).
		From(s.GetTable()).
		Where(sq.Expr("1 - (embedding <=> ?) >= ?", vector, threshold)).
		OrderBy("similarity DESC").
		Limit(limit)
	opts.Apply(&query)

	queryString, args, err := query.ToSql()
	if err != nil {
		return nil, ErrorSqlBuild(err)
	}

	var res []types.VectorMatch
	if err = s.GetReplica(ctx).Select(&res, queryString, args...); err != nil {
		return nil, err
	}
	return res, nil
}

// DeleteByNodeSource 删除节点下指定来源的全部向量
func (s *NodeVectorStore) DeleteByNodeSource(ctx context.Context, nodeID, sourceType string) error {
	query := sq.Delete(s.GetTable()).Where(sq.Eq{"node_id": nodeID, "source_type": sourceType})

	queryString, args, err := query.ToSql()
	if err != nil {
		return ErrorSqlBuild(err)
	}

	_, err = s.GetMaster(ctx).Exec(queryString, args...)
	return err
}

func (s *NodeVectorStore) DeleteAll(ctx context.Context, ownerID string) error {
	query := sq.Delete(s.GetTable()).Where(sq.Eq{"owner_id": ownerID})

	queryString, args, err := query.ToSql()
	if err != nil {
		return ErrorSqlBuild(err)
	}

	_, err = s.GetMaster(ctx).Exec(queryString, args...)
	return err
}

func (s *NodeVectorStore) Total(ctx context.Context, opts types.MatchVectorOptions) (int64, error) {
	query := sq.Select("COUNT(*)").From(s.GetTable())
	opts.Apply(&query)

	queryString, args, err := query.ToSql()
	if err != nil {
		return 0, ErrorSqlBuild(err)
	}

	var total int64
	if err = s.GetReplica(ctx).Get(&total, queryString, args...); err != nil {
		return 0, err
	}
	return total, nil
}
