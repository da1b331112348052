package handler

import (
	"github.com/gin-gonic/gin"

	v1 "github.com/feynman-ai/feynman-ai/app/logic/v1"
	"github.com/feynman-ai/feynman-ai/app/response"
	"github.com/feynman-ai/feynman-ai/pkg/types"
	"github.com/feynman-ai/feynman-ai/pkg/utils"
)

type GenerateTreeRequest struct {
	Topic string `json:"topic" binding:"required"`
}

type GenerateTreeResponse struct {
	Nodes []types.KnowledgeNode `json:"nodes"`
}

func (s *HttpSrv) GenerateTree(c *gin.Context) {
	var req GenerateTreeRequest
	if err := utils.BindArgsWithGin(c, &req); err != nil {
		response.APIError(c, err)
		return
	}

	nodes, err := v1.NewTreeLogic(c, s.Core).GenerateTree(req.Topic)
	if err != nil {
		response.APIError(c, err)
		return
	}

	response.APISuccess(c, GenerateTreeResponse{
		Nodes: nodes,
	})
}
