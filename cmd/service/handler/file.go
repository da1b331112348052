package handler

import (
	"github.com/gin-gonic/gin"

	v1 "github.com/feynman-ai/feynman-ai/app/logic/v1"
	"github.com/feynman-ai/feynman-ai/app/response"
	"github.com/feynman-ai/feynman-ai/pkg/utils"
)

type ProcessFileRequest struct {
	UserID   string `json:"user_id" binding:"required"`
	TreeID   string `json:"tree_id" binding:"required"`
	NodeID   string `json:"node_id" binding:"required"`
	FilePath string `json:"file_path" binding:"required"`
	FileType string `json:"file_type"`
}

func (s *HttpSrv) ProcessFile(c *gin.Context) {
	var req ProcessFileRequest
	if err := utils.BindArgsWithGin(c, &req); err != nil {
		response.APIError(c, err)
		return
	}

	result, err := v1.NewFileLogic(c, s.Core).ProcessFile(v1.ProcessFileArgs{
		UserID:   req.UserID,
		TreeID:   req.TreeID,
		NodeID:   req.NodeID,
		FilePath: req.FilePath,
		FileType: req.FileType,
	})
	if err != nil {
		response.APIError(c, err)
		return
	}

	response.APISuccess(c, result)
}
