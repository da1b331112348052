package service

import (
	"github.com/feynman-ai/feynman-ai/app/core"
	"github.com/feynman-ai/feynman-ai/app/response"
	"github.com/feynman-ai/feynman-ai/cmd/service/handler"
	"github.com/feynman-ai/feynman-ai/cmd/service/middleware"
	"github.com/feynman-ai/feynman-ai/pkg/metrics"
)

func serve(core *core.Core) {
	httpSrv := &handler.HttpSrv{
		Core:   core,
		Engine: core.HttpEngine(),
	}
	setupHttpRouter(httpSrv)

	core.HttpEngine().Run(core.Cfg().Addr)
}

func setupHttpRouter(s *handler.HttpSrv) {
	s.Engine.Use(middleware.I18n(), response.NewResponse())
	s.Engine.Use(middleware.Cors)
	s.Engine.Use(middleware.Recovery())
	s.Engine.Use(middleware.RequestMetrics(s.Core))

	// 健康检查与指标不走鉴权
	s.Engine.GET("/health", s.Health)
	s.Engine.GET("/metrics", metrics.DefaultExportHandler())

	apiV1 := s.Engine.Group("/api/v1", middleware.VerifyAPISecret(s.Core.Cfg().Security.APISecret))
	{
		apiV1.POST("/sync-note", s.SyncNote)
		apiV1.POST("/generate-tree", s.GenerateTree)
		apiV1.POST("/process-file", s.ProcessFile)
		apiV1.POST("/chat", s.Chat)
		apiV1.POST("/transcribe-audio", s.TranscribeAudio)
	}
}
