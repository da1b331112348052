package v1

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/feynman-ai/feynman-ai/app/core"
	"github.com/feynman-ai/feynman-ai/pkg/ai"
	"github.com/feynman-ai/feynman-ai/pkg/errors"
	"github.com/feynman-ai/feynman-ai/pkg/i18n"
	"github.com/feynman-ai/feynman-ai/pkg/retry"
	"github.com/feynman-ai/feynman-ai/pkg/types"
	"github.com/feynman-ai/feynman-ai/pkg/utils"
)

// 兜底回复，思考模型偶尔既不给文本也不调工具
const (
	FALLBACK_REPLY_FLASHCARD = "重點我幫你記下來了！(✨ 系統生成閃卡)"
	FALLBACK_REPLY_EMPTY     = "（AI 似乎正在深度思考，請試著繼續你的思路...）"
)

type ChatLogic struct {
	ctx  context.Context
	core *core.Core
}

func NewChatLogic(ctx context.Context, core *core.Core) *ChatLogic {
	return &ChatLogic{
		ctx:  ctx,
		core: core,
	}
}

type ChatArgs struct {
	UserID      string
	TreeID      string
	Message     string
	History     []types.ChatTurn
	NodeContext types.NodeContext
}

// Chat 单轮辅导对话。模型可自主调用建卡工具，
// 工具执行结果以系统提示的形式拼接在回复末尾。
func (l *ChatLogic) Chat(args ChatArgs) (string, error) {
	if strings.TrimSpace(args.Message) == "" {
		return "", errors.New("ChatLogic.Chat.check", i18n.ERROR_INVALIDARGUMENT, nil).Code(http.StatusBadRequest)
	}

	// 检索相关笔记，失败时降级为无参考资料
	var ragContext string
	if args.UserID != "" && args.NodeContext.ID != "" {
		ragContext = NewRagLogic(l.ctx, l.core).SearchRelevantNotes(args.Message, args.UserID, args.NodeContext.ID)
	}

	req := ai.ChatRequest{
		SystemInstruction:   ai.BuildChatSystemInstruction(args.NodeContext.Label, args.NodeContext.Description, ragContext),
		History:             args.History,
		Message:             ai.WrapChatMessage(args.Message),
		EnableFlashcardTool: true,
	}

	timer := l.core.Metrics().AIRequestTimer("chat")
	opts := retry.Generation(ai.IsOverloaded).WithOnRetry(func(int) { l.core.Metrics().AIRetryInc("chat") })
	resp, err := retry.Do(l.ctx, opts, func(ctx context.Context) (ai.ChatResponse, error) {
		return l.core.Srv().AI().Chat(ctx, req)
	})
	timer.ObserveDuration()
	if err != nil {
		l.core.Metrics().AIErrorInc("chat")
		if ai.IsOverloaded(err) {
			return "", errors.New("ChatLogic.Chat.Chat", i18n.ERROR_AI_OVERLOADED, err).Code(http.StatusServiceUnavailable)
		}
		return "", errors.New("ChatLogic.Chat.Chat", i18n.ERROR_AI_FAILED, err)
	}

	finalText := resp.Message
	for _, call := range resp.ToolCalls {
		finalText += l.executeCreateFlashcard(call, args)
	}

	if strings.TrimSpace(finalText) == "" {
		if len(resp.ToolCalls) > 0 {
			finalText = FALLBACK_REPLY_FLASHCARD
		} else {
			slog.Warn("model returned empty response without tool call")
			finalText = FALLBACK_REPLY_EMPTY
		}
	}

	return finalText, nil
}

// executeCreateFlashcard 落库一张闪卡并返回拼接到回复的系统提示
func (l *ChatLogic) executeCreateFlashcard(call ai.FlashcardArgs, args ChatArgs) string {
	slog.Info("executing flashcard tool", slog.String("front", call.Front))

	if args.UserID == "" || args.TreeID == "" || args.NodeContext.ID == "" {
		return flashcardFailedSuffix("missing parameters")
	}
	if call.Front == "" || call.Back == "" {
		return flashcardFailedSuffix("missing card content")
	}

	err := l.core.Store().FlashcardStore().Create(l.ctx, types.Flashcard{
		ID:      utils.GenRandomID(),
		OwnerID: args.UserID,
		TreeID:  args.TreeID,
		NodeID:  args.NodeContext.ID,
		Front:   call.Front,
		Back:    call.Back,
	})
	if err != nil {
		slog.Error("failed to create flashcard", slog.Any("error", err))
		return flashcardFailedSuffix(err.Error())
	}

	return fmt.Sprintf("\n\n(✨ 系統提示：已為您生成閃卡！正面：%s)", call.Front)
}

func flashcardFailedSuffix(reason string) string {
	return fmt.Sprintf("\n\n(⚠️ 系統提示：閃卡創建失敗 - %s)", reason)
}
