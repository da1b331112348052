package sqlstore

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/feynman-ai/feynman-ai/pkg/types"
)

type FlashcardStore struct {
	CommonFields
}

func NewFlashcardStore(provider SqlProviderAchieve) *FlashcardStore {
	repo := &FlashcardStore{}
	repo.SetProvider(provider)
	repo.SetTable(types.TABLE_FLASHCARD)
	repo.SetAllColumns("id", "owner_id", "tree_id", "node_id", "front", "back", "created_at")
	return repo
}

// Create 创建新的闪卡记录
func (s *FlashcardStore) Create(ctx context.Context, data types.Flashcard) error {
	if data.CreatedAt == 0 {
		data.CreatedAt = time.Now().Unix()
	}
	query := sq.Insert(s.GetTable()).
		Columns("id", "owner_id", "tree_id", "node_id", "front", "back", "created_at").
		Values(data.ID, data.OwnerID, data.TreeID, data.NodeID, data.Front, data.Back, data.CreatedAt)

	queryString, args, err := query.ToSql()
	if err != nil {
		return ErrorSqlBuild(err)
	}

	_, err = s.GetMaster(ctx).Exec(queryString, args...)
	return err
}

// Get 根据ID获取闪卡记录
func (s *FlashcardStore) Get(ctx context.Context, ownerID, id string) (*types.Flashcard, error) {
	query := sq.Select(s.GetAllColumns()...).From(s.GetTable()).Where(sq.Eq{"owner_id": ownerID, "id": id})

	queryString, args, err := query.ToSql()
	if err != nil {
		return nil, ErrorSqlBuild(err)
	}

	var res types.Flashcard
	if err = s.GetReplica(ctx).Get(&res, queryString, args...); err != nil {
		return nil, err
	}
	return &res, nil
}

// ListFlashcards 分页获取闪卡记录列表，treeID/nodeID 为空时不参与过滤
func (s *FlashcardStore) ListFlashcards(ctx context.Context, ownerID, treeID, nodeID string, page, pageSize uint64) ([]types.Flashcard, error) {
	query := sq.Select(s.GetAllColumns()...).From(s.GetTable()).
		Where(sq.Eq{"owner_id": ownerID}).
		Limit(pageSize).Offset((page - 1) * pageSize).
		OrderBy("created_at DESC")
	if treeID != "" {
		query = query.Where(sq.Eq{"tree_id": treeID})
	}
	if nodeID != "" {
		query = query.Where(sq.Eq{"node_id": nodeID})
	}

	queryString, args, err := query.ToSql()
	if err != nil {
		return nil, ErrorSqlBuild(err)
	}

	var res []types.Flashcard
	if err = s.GetReplica(ctx).Select(&res, queryString, args...); err != nil {
		return nil, err
	}
	return res, nil
}

// Probe 取一条记录验证存储可达，结果本身不关心
func (s *FlashcardStore) Probe(ctx context.Context) error {
	query := sq.Select("id").From(s.GetTable()).Limit(1)

	queryString, args, err := query.ToSql()
	if err != nil {
		return ErrorSqlBuild(err)
	}

	var ids []string
	return s.GetReplica(ctx).Select(&ids, queryString, args...)
}

// Delete 删除闪卡记录
func (s *FlashcardStore) Delete(ctx context.Context, ownerID, id string) error {
	query := sq.Delete(s.GetTable()).Where(sq.Eq{"owner_id": ownerID, "id": id})

	queryString, args, err := query.ToSql()
	if err != nil {
		return ErrorSqlBuild(err)
	}

	_, err = s.GetMaster(ctx).Exec(queryString, args...)
	return err
}
