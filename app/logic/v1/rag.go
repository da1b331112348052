package v1

import (
	"context"
	"log/slog"
	"strings"

	"github.com/pgvector/pgvector-go"
	"github.com/samber/lo"

	"github.com/feynman-ai/feynman-ai/app/core"
	"github.com/feynman-ai/feynman-ai/pkg/types"
)

type RagLogic struct {
	ctx  context.Context
	core *core.Core
}

func NewRagLogic(ctx context.Context, core *core.Core) *RagLogic {
	return &RagLogic{
		ctx:  ctx,
		core: core,
	}
}

// SearchRelevantNotes 检索与提问相关的节点笔记。
// 检索是对话的辅助信息，任何一步失败都降级为空串，不打断对话。
func (l *RagLogic) SearchRelevantNotes(query, ownerID, nodeID string) string {
	vector, err := l.core.Srv().AI().EmbeddingForQuery(l.ctx, query)
	if err != nil || len(vector) == 0 {
		slog.Warn("RagLogic.SearchRelevantNotes embedding failed", slog.Any("error", err))
		return ""
	}

	cfg := l.core.Cfg().Retrieval
	matches, err := l.core.Store().NodeVectorStore().Match(l.ctx, types.MatchVectorOptions{
		OwnerID: ownerID,
		NodeID:  nodeID,
	}, pgvector.NewVector(vector), cfg.MatchThreshold, cfg.MatchCount)
	if err != nil {
		slog.Warn("RagLogic.SearchRelevantNotes vector search failed", slog.Any("error", err))
		return ""
	}
	if len(matches) == 0 {
		return ""
	}

	lines := lo.Map(matches, func(item types.VectorMatch, _ int) string {
		return "- " + item.Content
	})
	context := strings.Join(lines, "\n")
	slog.Debug("rag hit", slog.Int("matches", len(matches)), slog.String("node_id", nodeID))
	return context
}
