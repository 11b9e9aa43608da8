package retrieval

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/BaSui01/rfpflow/providers"
	"github.com/BaSui01/rfpflow/types"
)

// DefaultEmbeddingModel 默认嵌入模型。
const DefaultEmbeddingModel = "text-embedding-3-small"

// Embedder 文本向量化接口。
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
}

// OpenAIEmbedder 调用 OpenAI Embeddings API 生成向量。
type OpenAIEmbedder struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
	logger  *zap.Logger
}

// EmbedderOptions OpenAIEmbedder 构造参数。
type EmbedderOptions struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// NewOpenAIEmbedder 创建嵌入客户端。
func NewOpenAIEmbedder(opts EmbedderOptions, logger *zap.Logger) *OpenAIEmbedder {
	if opts.BaseURL == "" {
		opts.BaseURL = providers.DefaultOpenAIBaseURL
	}
	if opts.Model == "" {
		opts.Model = DefaultEmbeddingModel
	}
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OpenAIEmbedder{
		apiKey:  opts.APIKey,
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		model:   opts.Model,
		client:  &http.Client{Timeout: opts.Timeout},
		logger:  logger,
	}
}

type embeddingRequest struct {
	Model string `json:"model"`
	Input string `json:"input"`
}

type embeddingResponse struct {
	Data []struct {
		Embedding []float64 `json:"embedding"`
	} `json:"data"`
}

type embeddingErrorResponse struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Embed 生成单条文本的向量。
func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	if strings.TrimSpace(text) == "" {
		return nil, types.NewError(types.ErrInvalidInput, "text cannot be empty")
	}

	payload, _ := json.Marshal(embeddingRequest{Model: e.model, Input: text})
	endpoint := fmt.Sprintf("%s/embeddings", e.baseURL)

	req, _ := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	req.Header.Set("Authorization", "Bearer "+e.apiKey)
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := e.client.Do(req)
	if err != nil {
		return nil, providers.MapTransportError(err, "openai")
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		data, _ := io.ReadAll(resp.Body)
		var er embeddingErrorResponse
		msg := string(data)
		if json.Unmarshal(data, &er) == nil && er.Error.Message != "" {
			msg = er.Error.Message
		}
		return nil, providers.MapHTTPError(resp.StatusCode, msg, "openai")
	}

	var er embeddingResponse
	if err := json.NewDecoder(resp.Body).Decode(&er); err != nil {
		return nil, types.NewError(types.ErrRetrievalUnavailable, "malformed embedding response").
			WithCause(err).WithRetryable(true)
	}
	if len(er.Data) == 0 {
		return nil, types.NewError(types.ErrRetrievalUnavailable, "empty embedding response").
			WithRetryable(true)
	}

	e.logger.Debug("embedding generated",
		zap.String("model", e.model),
		zap.Int("dims", len(er.Data[0].Embedding)),
		zap.Duration("latency", time.Since(start)),
	)
	return er.Data[0].Embedding, nil
}
