package middleware

import (
	"crypto/subtle"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/feynman-ai/feynman-ai/app/core"
	"github.com/feynman-ai/feynman-ai/app/response"
	"github.com/feynman-ai/feynman-ai/pkg/errors"
	"github.com/feynman-ai/feynman-ai/pkg/i18n"
	"github.com/feynman-ai/feynman-ai/pkg/safe"
)

const API_SECRET_HEADER_KEY = "X-API-Secret"

func I18n() gin.HandlerFunc {
	var allowList []string
	for k := range i18n.ALLOW_LANG {
		allowList = append(allowList, k)
	}
	l := i18n.NewLocalizer(allowList...)

	return response.ProvideResponseLocalizer(l)
}

func Cors(c *gin.Context) {
	method := c.Request.Method
	origin := c.Request.Header.Get("Origin")
	if origin != "" {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE, UPDATE")
		c.Header("Access-Control-Allow-Headers", "Origin, X-Requested-With, Content-Type, Accept, Authorization, X-API-Secret")
		c.Header("Access-Control-Expose-Headers", "Content-Length, Access-Control-Allow-Origin, Access-Control-Allow-Headers, Cache-Control, Content-Language, Content-Type")
		c.Header("Access-Control-Allow-Credentials", "true")
	}
	if method == "OPTIONS" {
		c.AbortWithStatus(http.StatusNoContent)
	}
	c.Next()
}

// VerifyAPISecret 服务间共享密钥鉴权，头缺失或不匹配一律 403。
// 密钥非空由启动时的配置校验保证
func VerifyAPISecret(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		got := c.Request.Header.Get(API_SECRET_HEADER_KEY)
		if subtle.ConstantTimeCompare([]byte(got), []byte(secret)) != 1 {
			response.APIError(c, errors.New("middleware.VerifyAPISecret", i18n.ERROR_FORBIDDEN, nil).Code(http.StatusForbidden))
			return
		}
	}
}

// RequestMetrics 按路由记录响应耗时与错误计数
func RequestMetrics(core *core.Core) gin.HandlerFunc {
	return func(c *gin.Context) {
		timer := core.Metrics().ApiResponseTimer(c.FullPath())
		c.Next()
		timer.ObserveDuration()

		if status := c.Writer.Status(); status >= http.StatusBadRequest {
			core.Metrics().ApiErrorInc(c.Request.Method, c.FullPath(), status)
		}
	}
}

func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				slog.Error("panic recovered",
					slog.Any("recover", r),
					slog.String("path", c.Request.URL.Path),
					slog.String("stack", safe.GetStack()),
				)
				response.APIError(c, errors.New("middleware.Recovery", i18n.ERROR_INTERNAL, fmt.Errorf("%v", r)))
			}
		}()
		c.Next()
	}
}
