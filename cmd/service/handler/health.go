package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Health 健康检查，存储异常时降级为 warning 而不是直接 500，
// 便于探针区分「进程活着」与「依赖不可用」。始终返回 200
func (s *HttpSrv) Health(c *gin.Context) {
	result := gin.H{
		"status":           "ok",
		"storageReachable": true,
		"ai":               s.Core.GetAIStatus(),
	}

	if err := s.Core.Store().FlashcardStore().Probe(c.Request.Context()); err != nil {
		result["status"] = "warning"
		result["storageReachable"] = false
		result["error"] = err.Error()
	}

	c.JSON(http.StatusOK, result)
}
