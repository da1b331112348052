package v1

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/feynman-ai/feynman-ai/app/core"
	"github.com/feynman-ai/feynman-ai/app/core/srv"
	"github.com/feynman-ai/feynman-ai/pkg/ai"
	"github.com/feynman-ai/feynman-ai/pkg/types"
	"github.com/feynman-ai/feynman-ai/pkg/utils"
)

// fakeDriver 可编程的模型替身，对话与生成结果由测试用例注入
type fakeDriver struct {
	chatResp     ai.ChatResponse
	chatErr      error
	generateResp ai.GenerateResponse
	generateErr  error
	// embedDoc 不为空时接管文档嵌入，用于模拟单块失败
	embedDoc func(content string) ([]float32, error)
}

func (d *fakeDriver) Chat(ctx context.Context, req ai.ChatRequest) (ai.ChatResponse, error) {
	return d.chatResp, d.chatErr
}

func (d *fakeDriver) GenerateJSON(ctx context.Context, prompt string) (ai.GenerateResponse, error) {
	return d.generateResp, d.generateErr
}

func (d *fakeDriver) EmbeddingForQuery(ctx context.Context, content string) ([]float32, error) {
	return make([]float32, types.EmbeddingDimension), nil
}

func (d *fakeDriver) EmbeddingForDocument(ctx context.Context, title, content string) ([]float32, error) {
	if d.embedDoc != nil {
		return d.embedDoc(content)
	}
	return make([]float32, types.EmbeddingDimension), nil
}

func (d *fakeDriver) DescribeImage(ctx context.Context, mimeType string, data []byte) (string, error) {
	return "", nil
}

func (d *fakeDriver) TranscribeAudio(ctx context.Context, mimeType string, data []byte) (string, error) {
	return "", nil
}

func (d *fakeDriver) Lang() string {
	return ai.MODEL_BASE_LANGUAGE_CN
}

var (
	testCoreOnce sync.Once
	testCore     *core.Core
)

// setupTestCore 用环境里的库连接拉起 Core，模型驱动换成测试替身
func setupTestCore(t *testing.T) *core.Core {
	if os.Getenv("TUTOR_API_POSTGRESQL_DSN") == "" {
		t.Skip("TUTOR_API_POSTGRESQL_DSN not set")
	}

	testCoreOnce.Do(func() {
		utils.SetupIDWorker(1)
		if os.Getenv("TUTOR_GEMINI_API_KEY") == "" {
			os.Setenv("TUTOR_GEMINI_API_KEY", "test-key")
		}
		if os.Getenv("TUTOR_API_SECRET") == "" {
			os.Setenv("TUTOR_API_SECRET", "test-secret")
		}
		testCore = core.MustSetupCore(core.LoadBaseConfigFromENV())
	})
	return testCore
}

func applyFakeDriver(c *core.Core, d *fakeDriver) {
	srv.ApplyAI(d)(c.Srv())
}

func TestChatToolCallCreatesFlashcard(t *testing.T) {
	c := setupTestCore(t)
	applyFakeDriver(c, &fakeDriver{
		chatResp: ai.ChatResponse{
			Message: "這個比喻很到位！",
			ToolCalls: []ai.FlashcardArgs{
				{Front: "reduce 是什麼模式", Back: "累加器模式"},
			},
		},
	})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*20)
	defer cancel()

	ownerID := "test-owner-" + utils.GenUniqIDStr()
	reply, err := NewChatLogic(ctx, c).Chat(ChatArgs{
		UserID:  ownerID,
		TreeID:  "tree-1",
		Message: "我懂了，reduce就是累加器模式",
		NodeContext: types.NodeContext{
			ID:    "node-reduce",
			Label: "Reduce",
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(reply, "已為您生成閃卡！正面：reduce 是什麼模式") {
		t.Fatalf("expected flashcard confirmation suffix, got: %s", reply)
	}

	cards, err := c.Store().FlashcardStore().ListFlashcards(ctx, ownerID, "", "", 1, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(cards) != 1 {
		t.Fatalf("expected exactly 1 flashcard, got %d", len(cards))
	}
	if cards[0].Front != "reduce 是什麼模式" || cards[0].Back != "累加器模式" {
		t.Fatalf("flashcard content mismatch: %+v", cards[0])
	}

	if err := c.Store().FlashcardStore().Delete(ctx, ownerID, cards[0].ID); err != nil {
		t.Error(err)
	}
}

func TestChatEmptyReplyFallback(t *testing.T) {
	c := setupTestCore(t)
	applyFakeDriver(c, &fakeDriver{
		chatResp: ai.ChatResponse{},
	})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*20)
	defer cancel()

	reply, err := NewChatLogic(ctx, c).Chat(ChatArgs{
		UserID:  "test-owner-" + utils.GenUniqIDStr(),
		TreeID:  "tree-1",
		Message: "在嗎",
	})
	if err != nil {
		t.Fatal(err)
	}
	if reply != FALLBACK_REPLY_EMPTY {
		t.Fatalf("expected empty-reply fallback, got: %s", reply)
	}
}

func TestGenerateTreeFromModelPayload(t *testing.T) {
	c := setupTestCore(t)
	applyFakeDriver(c, &fakeDriver{
		generateResp: ai.GenerateResponse{
			Received: `{"nodes":[
				{"id":"root","label":"Binary Search","description":"折半查找","parentId":null},
				{"id":"impl","label":"Implementation","description":"邊界處理","parentId":"root"}
			]}`,
		},
	})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*20)
	defer cancel()

	nodes, err := NewTreeLogic(ctx, c).GenerateTree("Binary Search")
	if err != nil {
		t.Fatal(err)
	}
	if len(nodes) != 2 {
		t.Fatalf("expected 2 nodes, got %d", len(nodes))
	}
	if nodes[0].ID != "root" || nodes[0].Label != "Binary Search" || nodes[0].ParentID != nil {
		t.Fatalf("unexpected root node: %+v", nodes[0])
	}
	if nodes[1].ID != "impl" || nodes[1].ParentID == nil || *nodes[1].ParentID != "root" {
		t.Fatalf("unexpected child node: %+v", nodes[1])
	}
}

// 同一文件重复摄取，旧一代向量整体被替换，不会累积
func TestIngestChunksReingestKeepsOneGeneration(t *testing.T) {
	c := setupTestCore(t)
	applyFakeDriver(c, &fakeDriver{})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*30)
	defer cancel()

	ownerID := "test-owner-" + utils.GenUniqIDStr()
	args := ProcessFileArgs{
		UserID:   ownerID,
		TreeID:   "tree-1",
		NodeID:   "node-" + utils.GenUniqIDStr(),
		FilePath: "uploads/lecture.pdf",
	}
	defer func() {
		if err := c.Store().NodeVectorStore().DeleteAll(ctx, ownerID); err != nil {
			t.Error(err)
		}
	}()

	chunks := []string{"第一塊", "第二塊", "第三塊"}
	logic := NewFileLogic(ctx, c)
	for run := 0; run < 2; run++ {
		result, err := logic.ingestChunks(args, chunks)
		if err != nil {
			t.Fatal(err)
		}
		if result.ChunksProcessed != len(chunks) {
			t.Fatalf("run %d: expected %d processed chunks, got %d", run, len(chunks), result.ChunksProcessed)
		}
	}

	total, err := c.Store().NodeVectorStore().Total(ctx, types.MatchVectorOptions{OwnerID: ownerID})
	if err != nil {
		t.Fatal(err)
	}
	if total != int64(len(chunks)) {
		t.Fatalf("expected %d vectors after re-ingest, got %d", len(chunks), total)
	}
}

// 单块嵌入失败只计入 Failures，其余分块照常落库
func TestIngestChunksRecordsPerChunkFailures(t *testing.T) {
	c := setupTestCore(t)
	applyFakeDriver(c, &fakeDriver{
		embedDoc: func(content string) ([]float32, error) {
			if content == "壞塊" {
				return nil, fmt.Errorf("embedding dimension mismatch")
			}
			return make([]float32, types.EmbeddingDimension), nil
		},
	})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*30)
	defer cancel()

	ownerID := "test-owner-" + utils.GenUniqIDStr()
	args := ProcessFileArgs{
		UserID:   ownerID,
		TreeID:   "tree-1",
		NodeID:   "node-" + utils.GenUniqIDStr(),
		FilePath: "uploads/lecture.pdf",
	}
	defer func() {
		if err := c.Store().NodeVectorStore().DeleteAll(ctx, ownerID); err != nil {
			t.Error(err)
		}
	}()

	result, err := NewFileLogic(ctx, c).ingestChunks(args, []string{"第一塊", "壞塊", "第三塊"})
	if err != nil {
		t.Fatal(err)
	}
	if result.ChunksProcessed != 2 || result.TotalChunks != 3 {
		t.Fatalf("unexpected counts: %+v", result)
	}
	if len(result.Failures) != 1 {
		t.Fatalf("expected 1 failure, got %d", len(result.Failures))
	}
	if result.Failures[0].ChunkIndex != 1 || result.Failures[0].Reason != "embedding dimension mismatch" {
		t.Fatalf("unexpected failure entry: %+v", result.Failures[0])
	}

	total, err := c.Store().NodeVectorStore().Total(ctx, types.MatchVectorOptions{OwnerID: ownerID})
	if err != nil {
		t.Fatal(err)
	}
	if total != 2 {
		t.Fatalf("expected 2 stored vectors, got %d", total)
	}
}

// 同一节点重复同步笔记，向量只保留最新一代
func TestSyncNoteReplacesPriorVectors(t *testing.T) {
	c := setupTestCore(t)
	applyFakeDriver(c, &fakeDriver{})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*20)
	defer cancel()

	ownerID := "test-owner-" + utils.GenUniqIDStr()
	nodeID := "node-" + utils.GenUniqIDStr()
	defer func() {
		if err := c.Store().NodeVectorStore().DeleteAll(ctx, ownerID); err != nil {
			t.Error(err)
		}
	}()

	logic := NewNoteLogic(ctx, c)
	for _, content := range []string{"第一版筆記", "第二版筆記"} {
		err := logic.SyncNote(SyncNoteArgs{
			UserID:  ownerID,
			TreeID:  "tree-1",
			NodeID:  nodeID,
			Content: content,
		})
		if err != nil {
			t.Fatal(err)
		}
	}

	total, err := c.Store().NodeVectorStore().Total(ctx, types.MatchVectorOptions{OwnerID: ownerID})
	if err != nil {
		t.Fatal(err)
	}
	if total != 1 {
		t.Fatalf("expected 1 vector after re-sync, got %d", total)
	}
}
