package sqlstore

import (
	"context"
	"math/rand"
	"os"
	"testing"
	"time"

	"github.com/pgvector/pgvector-go"

	"github.com/feynman-ai/feynman-ai/pkg/types"
	"github.com/feynman-ai/feynman-ai/pkg/utils"
)

type PGConfig struct {
	DSN string `toml:"dsn"`
}

func (m *PGConfig) FromENV() {
	m.DSN = os.Getenv("TUTOR_API_POSTGRESQL_DSN")
}

func (m PGConfig) FormatDSN() string {
	return m.DSN
}

func setupTestProvider(t *testing.T) *Provider {
	cfg := PGConfig{}
	cfg.FromENV()
	if cfg.DSN == "" {
		t.Skip("TUTOR_API_POSTGRESQL_DSN not set")
	}

	provider := MustSetup(cfg)
	if err := provider.Install(); err != nil {
		t.Fatal(err)
	}
	return provider
}

func randomEmbedding() pgvector.Vector {
	vals := make([]float32, types.EmbeddingDimension)
	for i := range vals {
		vals[i] = rand.Float32()
	}
	return pgvector.NewVector(vals)
}

func TestNodeVectorMatch(t *testing.T) {
	utils.SetupIDWorker(1)
	provider := setupTestProvider(t)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*20)
	defer cancel()

	ownerID := "test-owner-" + utils.GenUniqIDStr()
	nodeID := "node-1"
	embedding := randomEmbedding()

	data := types.NodeVector{
		ID:         utils.GenRandomID(),
		OwnerID:    ownerID,
		TreeID:     "tree-1",
		NodeID:     nodeID,
		Content:    "閃卡是一種主動回憶工具",
		SourceType: types.VECTOR_SOURCE_NOTE,
		Embedding:  embedding,
		Metadata:   []byte("{}"),
	}
	if err := provider.NodeVectorStore().Create(ctx, data); err != nil {
		t.Fatal(err)
	}
	defer func() {
		if err := provider.NodeVectorStore().DeleteAll(ctx, ownerID); err != nil {
			t.Error(err)
		}
	}()

	// 同一向量检索自身，相似度应为 1
	res, err := provider.NodeVectorStore().Match(ctx, types.MatchVectorOptions{
		OwnerID: ownerID,
		NodeID:  nodeID,
	}, embedding, 0.3, 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(res) != 1 {
		t.Fatalf("expected 1 match, got %d", len(res))
	}
	if res[0].Content != data.Content {
		t.Fatalf("unexpected content: %s", res[0].Content)
	}
	if res[0].Similarity < 0.99 {
		t.Fatalf("expected similarity close to 1, got %f", res[0].Similarity)
	}
}

func TestNodeVectorDeleteByNodeSource(t *testing.T) {
	utils.SetupIDWorker(1)
	provider := setupTestProvider(t)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*20)
	defer cancel()

	ownerID := "test-owner-" + utils.GenUniqIDStr()
	nodeID := "node-2"

	var batch []types.NodeVector
	for i := 0; i < 3; i++ {
		batch = append(batch, types.NodeVector{
			ID:         utils.GenRandomID(),
			OwnerID:    ownerID,
			TreeID:     "tree-1",
			NodeID:     nodeID,
			Content:    "file chunk",
			SourceType: types.VECTOR_SOURCE_FILE,
			Embedding:  randomEmbedding(),
			Metadata:   []byte("{}"),
		})
	}
	batch = append(batch, types.NodeVector{
		ID:         utils.GenRandomID(),
		OwnerID:    ownerID,
		TreeID:     "tree-1",
		NodeID:     nodeID,
		Content:    "note",
		SourceType: types.VECTOR_SOURCE_NOTE,
		Embedding:  randomEmbedding(),
		Metadata:   []byte("{}"),
	})
	if err := provider.NodeVectorStore().BatchCreate(ctx, batch); err != nil {
		t.Fatal(err)
	}
	defer func() {
		if err := provider.NodeVectorStore().DeleteAll(ctx, ownerID); err != nil {
			t.Error(err)
		}
	}()

	// 只清除 file 来源，note 向量不受影响
	if err := provider.NodeVectorStore().DeleteByNodeSource(ctx, nodeID, types.VECTOR_SOURCE_FILE); err != nil {
		t.Fatal(err)
	}

	total, err := provider.NodeVectorStore().Total(ctx, types.MatchVectorOptions{OwnerID: ownerID})
	if err != nil {
		t.Fatal(err)
	}
	if total != 1 {
		t.Fatalf("expected 1 remaining vector, got %d", total)
	}
}
