package v1

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/pgvector/pgvector-go"

	"github.com/feynman-ai/feynman-ai/app/core"
	"github.com/feynman-ai/feynman-ai/pkg/ai"
	"github.com/feynman-ai/feynman-ai/pkg/chunker"
	"github.com/feynman-ai/feynman-ai/pkg/errors"
	"github.com/feynman-ai/feynman-ai/pkg/i18n"
	"github.com/feynman-ai/feynman-ai/pkg/pdf"
	"github.com/feynman-ai/feynman-ai/pkg/retry"
	"github.com/feynman-ai/feynman-ai/pkg/types"
	"github.com/feynman-ai/feynman-ai/pkg/utils"
)

type FileLogic struct {
	ctx  context.Context
	core *core.Core
}

func NewFileLogic(ctx context.Context, core *core.Core) *FileLogic {
	return &FileLogic{
		ctx:  ctx,
		core: core,
	}
}

type ProcessFileArgs struct {
	UserID   string
	TreeID   string
	NodeID   string
	FilePath string
	FileType string
}

// ChunkFailure 单个分块的失败原因，随结果返回给调用方
type ChunkFailure struct {
	ChunkIndex int    `json:"chunk_index"`
	Reason     string `json:"reason"`
}

type IngestResult struct {
	ChunksProcessed int            `json:"chunks_processed"`
	TotalChunks     int            `json:"total_chunks"`
	FilePath        string         `json:"file_path"`
	Failures        []ChunkFailure `json:"failures"`
}

type chunkMetadata struct {
	FilePath   string `json:"file_path"`
	ChunkIndex int    `json:"chunk_index"`
}

// ProcessFile 下载文件、解析文本、切块并重建该节点的文件向量。
// 单个分块失败只计入损耗，整体流程继续
func (l *FileLogic) ProcessFile(args ProcessFileArgs) (*IngestResult, error) {
	if args.NodeID == "" || args.FilePath == "" {
		return nil, errors.New("FileLogic.ProcessFile.check", i18n.ERROR_INVALIDARGUMENT, nil).Code(http.StatusBadRequest)
	}
	if l.core.ObjectStorage() == nil {
		return nil, errors.New("FileLogic.ProcessFile.ObjectStorage", i18n.ERROR_INTERNAL, fmt.Errorf("object storage not configured"))
	}

	ingestTimer := l.core.Metrics().IngestTimer(types.VECTOR_SOURCE_FILE)
	defer ingestTimer.ObserveDuration()

	obj, err := l.core.ObjectStorage().GetObject(l.ctx, args.FilePath)
	if err != nil {
		return nil, errors.New("FileLogic.ProcessFile.GetObject", i18n.ERROR_INTERNAL, err)
	}
	slog.Info("file downloaded", slog.String("path", args.FilePath), slog.Int("bytes", len(obj.File)))

	if args.FileType != "application/pdf" {
		return nil, errors.New("FileLogic.ProcessFile.filetype", i18n.ERROR_UNSUPPORTED, fmt.Errorf("unsupported file type: %s", args.FileType)).Code(http.StatusBadRequest)
	}

	text, err := l.extractPDFText(obj.File)
	if err != nil {
		return nil, errors.New("FileLogic.ProcessFile.extractPDFText", i18n.ERROR_INTERNAL, err)
	}
	if strings.TrimSpace(text) == "" {
		return nil, errors.New("FileLogic.ProcessFile.empty", i18n.ERROR_EMPTY_CONTENT, nil).Code(http.StatusBadRequest)
	}

	cfg := l.core.Cfg().Ingest
	chunks := chunker.Split(text, cfg.ChunkSize, cfg.ChunkOverlap)
	if len(chunks) == 0 {
		return nil, errors.New("FileLogic.ProcessFile.chunk", i18n.ERROR_EMPTY_CONTENT, nil).Code(http.StatusBadRequest)
	}

	result, err := l.ingestChunks(args, chunks)
	if err != nil {
		return nil, err
	}

	slog.Info("file processing completed",
		slog.String("path", args.FilePath),
		slog.Int("processed", result.ChunksProcessed),
		slog.Int("failed", len(result.Failures)),
		slog.Int("total", result.TotalChunks))
	return result, nil
}

// ingestChunks 重建该节点的文件向量：先清掉旧一代，再逐块嵌入、分批落库。
// 单块失败记入 Failures 后继续，整体只在存储出错时才失败
func (l *FileLogic) ingestChunks(args ProcessFileArgs, chunks []string) (*IngestResult, error) {
	cfg := l.core.Cfg().Ingest

	if err := l.core.Store().NodeVectorStore().DeleteByNodeSource(l.ctx, args.NodeID, types.VECTOR_SOURCE_FILE); err != nil {
		return nil, errors.New("FileLogic.ingestChunks.DeleteByNodeSource", i18n.ERROR_INTERNAL, err)
	}

	result := &IngestResult{
		TotalChunks: len(chunks),
		FilePath:    args.FilePath,
	}

	opts := retry.Generation(ai.IsOverloaded).WithOnRetry(func(int) { l.core.Metrics().AIRetryInc("embedding") })
	var batch []types.NodeVector
	for i, chunk := range chunks {
		vector, err := retry.Do(l.ctx, opts, func(ctx context.Context) ([]float32, error) {
			return l.core.Srv().AI().EmbeddingForDocument(ctx, "", chunk)
		})
		if err != nil || len(vector) == 0 {
			slog.Warn("failed to embed chunk", slog.Int("index", i), slog.Any("error", err))
			l.core.Metrics().IngestChunkInc("failed", 1)
			reason := "empty embedding"
			if err != nil {
				reason = err.Error()
			}
			result.Failures = append(result.Failures, ChunkFailure{ChunkIndex: i, Reason: reason})
			continue
		}

		meta, _ := json.Marshal(chunkMetadata{FilePath: args.FilePath, ChunkIndex: i})
		batch = append(batch, types.NodeVector{
			ID:         utils.GenRandomID(),
			OwnerID:    args.UserID,
			TreeID:     args.TreeID,
			NodeID:     args.NodeID,
			Content:    chunk,
			SourceType: types.VECTOR_SOURCE_FILE,
			Embedding:  pgvector.NewVector(vector),
			Metadata:   meta,
		})
		result.ChunksProcessed++

		// 每攒够一批落库一次，并停顿以避开 embedding 限流
		if len(batch) >= cfg.BatchSize {
			if err = l.core.Store().NodeVectorStore().BatchCreate(l.ctx, batch); err != nil {
				return nil, errors.New("FileLogic.ingestChunks.BatchCreate", i18n.ERROR_INTERNAL, err)
			}
			l.core.Metrics().IngestChunkInc("stored", len(batch))
			batch = batch[:0]
			time.Sleep(time.Duration(cfg.BatchPauseSeconds) * time.Second)
		}
	}

	if len(batch) > 0 {
		if err := l.core.Store().NodeVectorStore().BatchCreate(l.ctx, batch); err != nil {
			return nil, errors.New("FileLogic.ingestChunks.BatchCreate", i18n.ERROR_INTERNAL, err)
		}
		l.core.Metrics().IngestChunkInc("stored", len(batch))
	}

	return result, nil
}

// extractPDFText 混合解析：优先文本层，扫描页走视觉识别。
// 每页文本前置页码标记，便于检索结果回溯页面
func (l *FileLogic) extractPDFText(data []byte) (string, error) {
	pages, err := pdf.ExtractPages(data)
	if err != nil {
		return "", err
	}

	b := strings.Builder{}
	for _, page := range pages {
		if !page.NeedsOCR() {
			b.WriteString(fmt.Sprintf("\n--- 第 %d 頁 ---\n%s\n", page.Number, page.Text))
			continue
		}

		slog.Info("page appears to be scanned, using vision ocr", slog.Int("page", page.Number))
		visionText := l.ocrPage(data, page.Number)
		if visionText != "" {
			b.WriteString(fmt.Sprintf("\n--- 第 %d 頁 (Vision OCR) ---\n%s\n", page.Number, visionText))
		} else {
			b.WriteString(fmt.Sprintf("\n--- 第 %d 頁 (無法識別) ---\n", page.Number))
		}
	}
	return b.String(), nil
}

// ocrPage 提取扫描页内嵌的位图并交给视觉模型转录，失败降级为空串
func (l *FileLogic) ocrPage(data []byte, pageNumber int) string {
	images, err := pdf.ExtractPageImages(data, pageNumber)
	if err != nil || len(images) == 0 {
		slog.Warn("page image extraction failed", slog.Int("page", pageNumber), slog.Any("error", err))
		return ""
	}

	// 取最大的一张，扫描页通常整页就是一张图
	img := images[0]
	opts := retry.Media(ai.IsOverloaded).WithOnRetry(func(int) { l.core.Metrics().AIRetryInc("vision") })
	text, err := retry.Do(l.ctx, opts, func(ctx context.Context) (string, error) {
		return l.core.Srv().AI().DescribeImage(ctx, img.MIME(), img.Data)
	})
	if err != nil {
		slog.Warn("vision ocr failed", slog.Int("page", pageNumber), slog.Any("error", err))
		l.core.Metrics().AIErrorInc("vision")
		return ""
	}
	return strings.TrimSpace(text)
}
