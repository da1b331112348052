package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/sashabaranov/go-openai"
	"google.golang.org/api/option"

	"github.com/feynman-ai/feynman-ai/pkg/ai"
)

const (
	NAME = "gemini"

	DEFAULT_CHAT_MODEL       = "gemini-2.5-flash"
	DEFAULT_EMBEDDING_MODEL  = "text-embedding-004"
	DEFAULT_VISION_MODEL     = "gemini-2.5-flash"
	DEFAULT_TRANSCRIBE_MODEL = "gemini-2.0-flash"

	// 生成温度压低，知识结构与建卡判定都要求稳定输出
	generationTemperature = 0.3
)

type Config struct {
	ChatModel       string `toml:"chat_model"`
	EmbeddingModel  string `toml:"embedding_model"`
	VisionModel     string `toml:"vision_model"`
	TranscribeModel string `toml:"transcribe_model"`
}

func (c *Config) applyDefaults() {
	if c.ChatModel == "" {
		c.ChatModel = DEFAULT_CHAT_MODEL
	}
	if c.EmbeddingModel == "" {
		c.EmbeddingModel = DEFAULT_EMBEDDING_MODEL
	}
	if c.VisionModel == "" {
		c.VisionModel = DEFAULT_VISION_MODEL
	}
	if c.TranscribeModel == "" {
		c.TranscribeModel = DEFAULT_TRANSCRIBE_MODEL
	}
}

type Driver struct {
	client *genai.Client
	cfg    Config
}

func New(token string, cfg Config) *Driver {
	client, err := genai.NewClient(context.Background(), option.WithAPIKey(token))
	if err != nil {
		panic(err)
	}
	cfg.applyDefaults()

	return &Driver{
		client: client,
		cfg:    cfg,
	}
}

func (s *Driver) Lang() string {
	return ai.MODEL_BASE_LANGUAGE_CN
}

func (s *Driver) embedding(ctx context.Context, title, content string) ([]float32, error) {
	slog.Debug("Embedding", slog.String("driver", NAME))
	em := s.client.EmbeddingModel(s.cfg.EmbeddingModel)
	if title != "" {
		em.TaskType = genai.TaskTypeRetrievalDocument
	} else {
		em.TaskType = genai.TaskTypeRetrievalQuery
	}

	res, err := em.EmbedContentWithTitle(ctx, title, genai.Text(content))
	if err != nil {
		return nil, err
	}
	return res.Embedding.Values, nil
}

func (s *Driver) EmbeddingForQuery(ctx context.Context, content string) ([]float32, error) {
	return s.embedding(ctx, "", content)
}

func (s *Driver) EmbeddingForDocument(ctx context.Context, title, content string) ([]float32, error) {
	return s.embedding(ctx, title, content)
}

// GenerateJSON 单轮生成，要求模型直接输出 JSON 文本
func (s *Driver) GenerateJSON(ctx context.Context, prompt string) (ai.GenerateResponse, error) {
	model := s.client.GenerativeModel(s.cfg.ChatModel)
	model.SetTemperature(generationTemperature)
	model.ResponseMIMEType = "application/json"

	var result ai.GenerateResponse
	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return result, err
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return result, errors.New("empty response content")
	}

	b := strings.Builder{}
	for _, part := range resp.Candidates[0].Content.Parts {
		if resp.Candidates[0].FinishReason != genai.FinishReasonStop {
			slog.Warn("GenerateJSON, ai finished without stop", slog.String("reason", resp.Candidates[0].FinishReason.String()))
		}
		if txt, ok := part.(genai.Text); ok {
			b.WriteString(string(txt))
		}
	}

	result.Received = b.String()
	result.Usage = usageFrom(resp)
	return result, nil
}

func flashcardTool() *genai.Tool {
	return &genai.Tool{
		FunctionDeclarations: []*genai.FunctionDeclaration{{
			Name:        ai.FLASHCARD_TOOL_NAME,
			Description: ai.FLASHCARD_TOOL_DESC_CN,
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"front": {
						Type:        genai.TypeString,
						Description: ai.FLASHCARD_FRONT_DESC_CN,
					},
					"back": {
						Type:        genai.TypeString,
						Description: ai.FLASHCARD_BACK_DESC_CN,
					},
				},
				Required: []string{"front", "back"},
			},
		}},
	}
}

// Chat 带历史的多轮对话，工具调用参数在此处解析完成。
// 思考模型可能返回非文本片段，除 Text 与 FunctionCall 外一律忽略。
func (s *Driver) Chat(ctx context.Context, req ai.ChatRequest) (ai.ChatResponse, error) {
	model := s.client.GenerativeModel(s.cfg.ChatModel)
	model.SetTemperature(generationTemperature)
	if req.SystemInstruction != "" {
		model.SystemInstruction = genai.NewUserContent(genai.Text(req.SystemInstruction))
	}
	if req.EnableFlashcardTool {
		model.Tools = []*genai.Tool{flashcardTool()}
	}

	session := model.StartChat()
	for _, turn := range req.History {
		session.History = append(session.History, &genai.Content{
			Role:  turn.NormalizeRole(),
			Parts: []genai.Part{genai.Text(turn.Content)},
		})
	}

	var result ai.ChatResponse
	resp, err := session.SendMessage(ctx, genai.Text(req.Message))
	if err != nil {
		return result, fmt.Errorf("session.SendMessage: %w", err)
	}

	// 安全拦截时 Content 可能为空
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return result, nil
	}

	b := strings.Builder{}
	for _, part := range resp.Candidates[0].Content.Parts {
		switch v := part.(type) {
		case genai.Text:
			b.WriteString(string(v))
		case genai.FunctionCall:
			if v.Name != ai.FLASHCARD_TOOL_NAME {
				slog.Warn("Chat, unexpected function call", slog.String("name", v.Name))
				continue
			}
			args := ai.FlashcardArgs{}
			if front, ok := v.Args["front"].(string); ok {
				args.Front = front
			}
			if back, ok := v.Args["back"].(string); ok {
				args.Back = back
			}
			result.ToolCalls = append(result.ToolCalls, args)
		}
	}

	result.Message = b.String()
	result.Usage = usageFrom(resp)
	return result, nil
}

func (s *Driver) DescribeImage(ctx context.Context, mimeType string, data []byte) (string, error) {
	slog.Debug("DescribeImage", slog.String("driver", NAME), slog.String("mime", mimeType))
	model := s.client.GenerativeModel(s.cfg.VisionModel)

	resp, err := model.GenerateContent(ctx,
		genai.Text(ai.PROMPT_VISION_OCR_CN),
		genai.Blob{MIMEType: mimeType, Data: data},
	)
	if err != nil {
		return "", err
	}
	return textFrom(resp), nil
}

func (s *Driver) TranscribeAudio(ctx context.Context, mimeType string, data []byte) (string, error) {
	slog.Debug("TranscribeAudio", slog.String("driver", NAME), slog.String("mime", mimeType))
	model := s.client.GenerativeModel(s.cfg.TranscribeModel)

	resp, err := model.GenerateContent(ctx,
		genai.Text(ai.PROMPT_TRANSCRIBE_AUDIO_CN),
		genai.Blob{MIMEType: mimeType, Data: data},
	)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(textFrom(resp)), nil
}

func textFrom(resp *genai.GenerateContentResponse) string {
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	b := strings.Builder{}
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			b.WriteString(string(txt))
		}
	}
	return b.String()
}

func usageFrom(resp *genai.GenerateContentResponse) *openai.Usage {
	if resp.UsageMetadata == nil {
		return nil
	}
	return &openai.Usage{
		PromptTokens:     int(resp.UsageMetadata.PromptTokenCount),
		CompletionTokens: int(resp.UsageMetadata.CandidatesTokenCount),
		TotalTokens:      int(resp.UsageMetadata.TotalTokenCount),
	}
}

var _ ai.Driver = (*Driver)(nil)
