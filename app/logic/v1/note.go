package v1

import (
	"context"
	"net/http"
	"strings"

	"github.com/pgvector/pgvector-go"

	"github.com/feynman-ai/feynman-ai/app/core"
	"github.com/feynman-ai/feynman-ai/pkg/ai"
	"github.com/feynman-ai/feynman-ai/pkg/errors"
	"github.com/feynman-ai/feynman-ai/pkg/i18n"
	"github.com/feynman-ai/feynman-ai/pkg/retry"
	"github.com/feynman-ai/feynman-ai/pkg/types"
	"github.com/feynman-ai/feynman-ai/pkg/utils"
)

type NoteLogic struct {
	ctx  context.Context
	core *core.Core
}

func NewNoteLogic(ctx context.Context, core *core.Core) *NoteLogic {
	return &NoteLogic{
		ctx:  ctx,
		core: core,
	}
}

type SyncNoteArgs struct {
	UserID  string
	TreeID  string
	NodeID  string
	Content string
}

// SyncNote 用户保存笔记后重建该节点的笔记向量。
// 同一节点的 note 向量只保留最新一份，先删后插
func (l *NoteLogic) SyncNote(args SyncNoteArgs) error {
	if args.NodeID == "" || strings.TrimSpace(args.Content) == "" {
		return errors.New("NoteLogic.SyncNote.check", i18n.ERROR_INVALIDARGUMENT, nil).Code(http.StatusBadRequest)
	}

	opts := retry.Generation(ai.IsOverloaded).WithOnRetry(func(int) { l.core.Metrics().AIRetryInc("embedding") })
	vector, err := retry.Do(l.ctx, opts, func(ctx context.Context) ([]float32, error) {
		return l.core.Srv().AI().EmbeddingForDocument(ctx, "", args.Content)
	})
	if err != nil || len(vector) == 0 {
		l.core.Metrics().AIErrorInc("embedding")
		return errors.New("NoteLogic.SyncNote.EmbeddingForDocument", i18n.ERROR_EMBEDDING, err)
	}

	err = l.core.Store().Transaction(l.ctx, func(ctx context.Context) error {
		if err := l.core.Store().NodeVectorStore().DeleteByNodeSource(ctx, args.NodeID, types.VECTOR_SOURCE_NOTE); err != nil {
			return err
		}
		return l.core.Store().NodeVectorStore().Create(ctx, types.NodeVector{
			ID:         utils.GenRandomID(),
			OwnerID:    args.UserID,
			TreeID:     args.TreeID,
			NodeID:     args.NodeID,
			Content:    args.Content,
			SourceType: types.VECTOR_SOURCE_NOTE,
			Embedding:  pgvector.NewVector(vector),
			Metadata:   []byte("{}"),
		})
	})
	if err != nil {
		return errors.New("NoteLogic.SyncNote.NodeVectorStore", i18n.ERROR_INTERNAL, err)
	}
	return nil
}
