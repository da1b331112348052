package core

import (
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/feynman-ai/feynman-ai/app/core/srv"
	"github.com/feynman-ai/feynman-ai/app/store/sqlstore"
	"github.com/feynman-ai/feynman-ai/pkg/ai/gemini"
	s3storage "github.com/feynman-ai/feynman-ai/pkg/object-storage/s3"
)

type Core struct {
	cfg CoreConfig
	srv *srv.Srv

	stores        *sqlstore.Provider
	objectStorage *s3storage.S3
	httpClient    *http.Client
	httpEngine    *gin.Engine

	metrics *Metrics
}

func MustSetupCore(cfg CoreConfig) *Core {
	cfg.applyDefaults()
	// 共享密钥缺失时拒绝启动，避免鉴权静默失效
	if cfg.Security.APISecret == "" {
		panic("security.api_secret is required (TUTOR_API_SECRET)")
	}
	{
		var writer io.Writer = os.Stdout
		if cfg.Log.Path != "" {
			writer = &lumberjack.Logger{
				Filename:   cfg.Log.Path,
				MaxSize:    500, // megabytes
				MaxBackups: 3,
				MaxAge:     28,   //days
				Compress:   true, // disabled by default
			}
		}
		l := slog.New(slog.NewJSONHandler(writer, &slog.HandlerOptions{
			Level: cfg.Log.SlogLevel(),
		}))
		slog.SetDefault(l)
	}

	core := &Core{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: time.Second * 3},
		metrics:    NewMetrics("tutor", "core"),
		httpEngine: gin.New(),
	}

	setupSqlStore(core)
	setupObjectStorage(core)

	core.srv = srv.SetupSrvs(
		srv.ApplyAI(gemini.New(cfg.AI.Token, cfg.AI.Gemini)),
	)

	return core
}

func setupSqlStore(core *Core) {
	core.stores = sqlstore.MustSetup(core.cfg.Postgres)
	// 执行数据库表初始化
	if err := core.stores.Install(); err != nil {
		panic(err)
	}
	slog.Info("setupSqlStore done")
}

func setupObjectStorage(core *Core) {
	s3cfg := core.cfg.ObjectStorage.S3
	if s3cfg == nil {
		slog.Warn("object storage not configured, file ingestion disabled")
		return
	}
	core.objectStorage = s3storage.NewS3Client(s3cfg.Endpoint, s3cfg.Region, s3cfg.Bucket, s3cfg.AccessKey, s3cfg.SecretKey)
}

func (s *Core) Cfg() CoreConfig {
	return s.cfg
}

func (s *Core) HttpEngine() *gin.Engine {
	return s.httpEngine
}

func (s *Core) Metrics() *Metrics {
	return s.metrics
}

func (s *Core) Store() *sqlstore.Provider {
	return s.stores
}

func (s *Core) ObjectStorage() *s3storage.S3 {
	return s.objectStorage
}

func (s *Core) Srv() *srv.Srv {
	return s.srv
}

// GetAIStatus 获取AI系统状态
func (s *Core) GetAIStatus() map[string]interface{} {
	return s.srv.GetAIStatus()
}
