package ai

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/sashabaranov/go-openai"
	"google.golang.org/api/googleapi"

	"github.com/feynman-ai/feynman-ai/pkg/types"
)

const (
	MODEL_BASE_LANGUAGE_CN = "cn"
	MODEL_BASE_LANGUAGE_EN = "en"
)

// FLASHCARD_TOOL_NAME 对话模型可调用的唯一工具
const FLASHCARD_TOOL_NAME = "create_flashcard_tool"

// FlashcardArgs 模型发起建卡调用时携带的参数，
// 在驱动层解析完成，上层不接触原始 funcall 结构
type FlashcardArgs struct {
	Front string
	Back  string
}

type ChatRequest struct {
	SystemInstruction string
	History           []types.ChatTurn
	Message           string
	// EnableFlashcardTool 控制是否向模型暴露建卡工具
	EnableFlashcardTool bool
}

type ChatResponse struct {
	// Message 模型回复的文本部分，思考片段已被驱动层丢弃
	Message   string
	ToolCalls []FlashcardArgs
	Usage     *openai.Usage
}

type GenerateResponse struct {
	Received string
	Usage    *openai.Usage
}

type ChatAI interface {
	Chat(ctx context.Context, req ChatRequest) (ChatResponse, error)
}

// GenerateAI 单轮生成，要求模型输出 JSON
type GenerateAI interface {
	GenerateJSON(ctx context.Context, prompt string) (GenerateResponse, error)
}

type Embedder interface {
	EmbeddingForQuery(ctx context.Context, content string) ([]float32, error)
	EmbeddingForDocument(ctx context.Context, title, content string) ([]float32, error)
}

type VisionAI interface {
	DescribeImage(ctx context.Context, mimeType string, data []byte) (string, error)
}

type TranscribeAI interface {
	TranscribeAudio(ctx context.Context, mimeType string, data []byte) (string, error)
}

type Driver interface {
	ChatAI
	GenerateAI
	Embedder
	VisionAI
	TranscribeAI
	Lang() string
}

// IsOverloaded 判断远端模型是否过载。
// 过载错误值得退避重试，其余错误直接上抛。
func IsOverloaded(err error) bool {
	if err == nil {
		return false
	}
	var gerr *googleapi.Error
	if errors.As(err, &gerr) && gerr.Code == http.StatusServiceUnavailable {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "503") || strings.Contains(msg, "overloaded")
}
