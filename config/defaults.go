package config

import (
	"time"

	"github.com/BaSui01/rfpflow/batch"
	"github.com/BaSui01/rfpflow/internal/cache"
	"github.com/BaSui01/rfpflow/prompt"
	"github.com/BaSui01/rfpflow/retrieval"
	"github.com/BaSui01/rfpflow/synthesis"
)

// DefaultConfig 返回带默认值的完整配置
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPPort:        8080,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    120 * time.Second,
			ShutdownTimeout: 15 * time.Second,
		},
		Database: DatabaseConfig{
			Host:            "localhost",
			Port:            5432,
			User:            "rfpflow",
			Name:            "rfpflow",
			SSLMode:         "disable",
			MaxOpenConns:    20,
			MaxIdleConns:    5,
			ConnMaxLifetime: time.Hour,
		},
		Redis: cache.DefaultConfig(),
		Retrieval: RetrievalConfig{
			TopK:           retrieval.DefaultTopK,
			MinScore:       retrieval.DefaultMinScore,
			CacheTTL:       retrieval.DefaultCacheTTL,
			EmbeddingModel: retrieval.DefaultEmbeddingModel,
		},
		Synthesis: SynthesisConfig{
			Strategy:    "llm",
			Provider:    "openai",
			Timeout:     synthesis.DefaultTimeout,
			TokenBudget: prompt.DefaultTokenBudget,
		},
		Batch: batch.DefaultConfig(),
		Log: LogConfig{
			Level:        "info",
			Format:       "json",
			OutputPaths:  []string{"stdout"},
			EnableCaller: true,
		},
		Telemetry: TelemetryConfig{
			Enabled:     false,
			ServiceName: "rfpflow",
			SampleRate:  1.0,
		},
	}
}
