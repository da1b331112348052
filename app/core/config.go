package core

import (
	"log/slog"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/feynman-ai/feynman-ai/pkg/ai/gemini"
)

func MustLoadBaseConfig(path string) CoreConfig {
	if path == "" {
		return LoadBaseConfigFromENV()
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	conf := &CoreConfig{}
	conf.SetConfigBytes(raw)

	if err = toml.Unmarshal(raw, conf); err != nil {
		panic(err)
	}

	conf.applyDefaults()
	return *conf
}

func (c CoreConfig) LoadCustomConfig(cfg any) error {
	if len(c.bytes) == 0 {
		return nil
	}
	return toml.Unmarshal(c.bytes, cfg)
}

func LoadBaseConfigFromENV() CoreConfig {
	var c CoreConfig
	c.FromENV()
	c.applyDefaults()
	return c
}

type CoreConfig struct {
	Addr     string   `toml:"addr"`
	Log      Log      `toml:"log"`
	Postgres PGConfig `toml:"postgres"`

	ObjectStorage ObjectStorageDriver `toml:"object_storage"`

	AI AIConfig `toml:"ai"`

	Security Security `toml:"security"`

	Ingest    IngestConfig    `toml:"ingest"`
	Retrieval RetrievalConfig `toml:"retrieval"`

	bytes []byte `toml:"-"`
}

func (c *CoreConfig) SetConfigBytes(raw []byte) {
	c.bytes = raw
}

func (c *CoreConfig) applyDefaults() {
	c.Ingest.applyDefaults()
	c.Retrieval.applyDefaults()
}

type AIConfig struct {
	// Token Gemini API key
	Token  string        `toml:"token"`
	Gemini gemini.Config `toml:"gemini"`
}

type ObjectStorageDriver struct {
	Driver string    `toml:"driver"`
	S3     *S3Config `toml:"s3"`
}

type S3Config struct {
	Bucket    string `toml:"bucket"`
	Region    string `toml:"region"`
	Endpoint  string `toml:"endpoint"`
	AccessKey string `toml:"access_key"`
	SecretKey string `toml:"secret_key"`
}

type Security struct {
	// APISecret 服务间调用的共享密钥，请求方通过 X-API-Secret 头携带
	APISecret string `toml:"api_secret"`
}

// IngestConfig 文件摄取的批次与切分参数
type IngestConfig struct {
	ChunkSize    int `toml:"chunk_size"`
	ChunkOverlap int `toml:"chunk_overlap"`
	BatchSize    int `toml:"batch_size"`
	// BatchPauseSeconds 批次之间的停顿，避免触发 embedding 限流
	BatchPauseSeconds int `toml:"batch_pause_seconds"`
}

func (c *IngestConfig) applyDefaults() {
	if c.ChunkSize <= 0 {
		c.ChunkSize = 1000
	}
	if c.ChunkOverlap <= 0 {
		c.ChunkOverlap = 100
	}
	if c.BatchSize <= 0 {
		c.BatchSize = 10
	}
	if c.BatchPauseSeconds <= 0 {
		c.BatchPauseSeconds = 1
	}
}

// RetrievalConfig 对话检索参数，门槛压低以提高短笔记的召回率
type RetrievalConfig struct {
	MatchThreshold float32 `toml:"match_threshold"`
	MatchCount     uint64  `toml:"match_count"`
}

func (c *RetrievalConfig) applyDefaults() {
	if c.MatchThreshold <= 0 {
		c.MatchThreshold = 0.3
	}
	if c.MatchCount == 0 {
		c.MatchCount = 3
	}
}

func (c *CoreConfig) FromENV() {
	c.Addr = os.Getenv("TUTOR_API_SERVICE_ADDRESS")
	c.Log.FromENV()
	c.Postgres.FromENV()
	c.AI.Token = os.Getenv("TUTOR_GEMINI_API_KEY")
	c.Security.APISecret = os.Getenv("TUTOR_API_SECRET")

	if bucket := os.Getenv("TUTOR_S3_BUCKET"); bucket != "" {
		c.ObjectStorage = ObjectStorageDriver{
			Driver: "s3",
			S3: &S3Config{
				Bucket:    bucket,
				Region:    os.Getenv("TUTOR_S3_REGION"),
				Endpoint:  os.Getenv("TUTOR_S3_ENDPOINT"),
				AccessKey: os.Getenv("TUTOR_S3_ACCESS_KEY"),
				SecretKey: os.Getenv("TUTOR_S3_SECRET_KEY"),
			},
		}
	}
}

type PGConfig struct {
	DSN string `toml:"dsn"`
}

func (m *PGConfig) FromENV() {
	m.DSN = os.Getenv("TUTOR_API_POSTGRESQL_DSN")
}

func (c PGConfig) FormatDSN() string {
	return c.DSN
}

type Log struct {
	Level string `toml:"level"`
	Path  string `toml:"path"`
}

func (l *Log) FromENV() {
	l.Level = os.Getenv("TUTOR_API_LOG_LEVEL")
	l.Path = os.Getenv("TUTOR_API_LOG_PATH")
}

func (l *Log) SlogLevel() slog.Level {
	switch strings.ToLower(l.Level) {
	case "info":
		return slog.LevelInfo
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelDebug
	}
}
