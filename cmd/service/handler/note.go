package handler

import (
	"github.com/gin-gonic/gin"

	v1 "github.com/feynman-ai/feynman-ai/app/logic/v1"
	"github.com/feynman-ai/feynman-ai/app/response"
	"github.com/feynman-ai/feynman-ai/pkg/utils"
)

type SyncNoteRequest struct {
	UserID  string `json:"user_id" binding:"required"`
	TreeID  string `json:"tree_id" binding:"required"`
	NodeID  string `json:"node_id" binding:"required"`
	Content string `json:"content" binding:"required"`
}

func (s *HttpSrv) SyncNote(c *gin.Context) {
	var req SyncNoteRequest
	if err := utils.BindArgsWithGin(c, &req); err != nil {
		response.APIError(c, err)
		return
	}

	err := v1.NewNoteLogic(c, s.Core).SyncNote(v1.SyncNoteArgs{
		UserID:  req.UserID,
		TreeID:  req.TreeID,
		NodeID:  req.NodeID,
		Content: req.Content,
	})
	if err != nil {
		response.APIError(c, err)
		return
	}

	response.APISuccess(c, nil)
}
