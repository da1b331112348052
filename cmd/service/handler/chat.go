package handler

import (
	"github.com/gin-gonic/gin"

	v1 "github.com/feynman-ai/feynman-ai/app/logic/v1"
	"github.com/feynman-ai/feynman-ai/app/response"
	"github.com/feynman-ai/feynman-ai/pkg/types"
	"github.com/feynman-ai/feynman-ai/pkg/utils"
)

// ChatRequest 匿名对话合法，user_id/tree_id 缺失时只影响建卡，不拒绝请求
type ChatRequest struct {
	UserID      string            `json:"user_id"`
	TreeID      string            `json:"tree_id"`
	Message     string            `json:"message" binding:"required"`
	History     []types.ChatTurn  `json:"history"`
	NodeContext types.NodeContext `json:"node_context"`
}

type ChatResponse struct {
	Reply string `json:"reply"`
}

func (s *HttpSrv) Chat(c *gin.Context) {
	var req ChatRequest
	if err := utils.BindArgsWithGin(c, &req); err != nil {
		response.APIError(c, err)
		return
	}

	reply, err := v1.NewChatLogic(c, s.Core).Chat(v1.ChatArgs{
		UserID:      req.UserID,
		TreeID:      req.TreeID,
		Message:     req.Message,
		History:     req.History,
		NodeContext: req.NodeContext,
	})
	if err != nil {
		response.APIError(c, err)
		return
	}

	response.APISuccess(c, ChatResponse{
		Reply: reply,
	})
}
