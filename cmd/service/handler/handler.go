package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/feynman-ai/feynman-ai/app/core"
)

type HttpSrv struct {
	Core   *core.Core
	Engine *gin.Engine
}
