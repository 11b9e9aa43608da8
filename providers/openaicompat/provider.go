// Package openaicompat 实现 OpenAI Chat Completions 协议的通用适配器。
// OpenAI 与 DeepSeek 的请求/响应格式完全一致，仅 BaseURL、默认模型与
// API Key 不同，因此共用同一实现，按构造参数区分。
package openaicompat

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

	"github.com/BaSui01/rfpflow/llm"
	"github.com/BaSui01/rfpflow/providers"
	"github.com/BaSui01/rfpflow/types"
)

// Options 适配器构造参数。
type Options struct {
	Name         string        // Provider 标识（openai / deepseek）
	APIKey       string
	BaseURL      string        // 例如 https://api.openai.com/v1
	DefaultModel string        // 请求未指定时使用
	Timeout      time.Duration // 单次调用硬超时
}

// Provider OpenAI 兼容适配器。
type Provider struct {
	opts   Options
	client *http.Client
	logger *zap.Logger
}

// New 创建 OpenAI 兼容 Provider。
func New(opts Options, logger *zap.Logger) *Provider {
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.BaseURL == "" {
		opts.BaseURL = "https://api.openai.com/v1"
	}
	return &Provider{
		opts:   opts,
		client: &http.Client{Timeout: opts.Timeout},
		logger: logger,
	}
}

func (p *Provider) Name() string { return p.opts.Name }

// OpenAI 协议的请求/响应结构
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float32       `json:"temperature,omitempty"`
}

type chatChoice struct {
	Index        int         `json:"index"`
	FinishReason string      `json:"finish_reason,omitempty"`
	Message      chatMessage `json:"message"`
}

type chatResponse struct {
	ID      string       `json:"id"`
	Model   string       `json:"model"`
	Choices []chatChoice `json:"choices"`
	Usage   struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

type errorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code"`
	} `json:"error"`
}

func (p *Provider) buildHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+p.opts.APIKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
}

func (p *Provider) Completion(ctx context.Context, req *llm.ChatRequest) (*llm.ChatResponse, error) {
	if req == nil || len(req.Messages) == 0 {
		return nil, types.NewError(types.ErrInvalidInput, "messages cannot be empty").
			WithProvider(p.Name())
	}

	timeout := p.opts.Timeout
	if req.Timeout > 0 {
		timeout = req.Timeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	messages := make([]chatMessage, 0, len(req.Messages))
	for _, m := range req.Messages {
		messages = append(messages, chatMessage{Role: string(m.Role), Content: m.Content})
	}

	body := chatRequest{
		Model:       chooseModel(req, p.opts.DefaultModel),
		Messages:    messages,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	}

	payload, _ := json.Marshal(body)
	endpoint := fmt.Sprintf("%s/chat/completions", strings.TrimRight(p.opts.BaseURL, "/"))

	httpReq, _ := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	p.buildHeaders(httpReq)

	start := time.Now()
	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, providers.MapTransportError(err, p.Name())
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		msg := readErrMsg(resp.Body)
		return nil, providers.MapHTTPError(resp.StatusCode, msg, p.Name())
	}

	var cr chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return nil, types.NewError(types.ErrProviderUnavailable, "malformed provider response").
			WithCause(err).WithRetryable(true).WithProvider(p.Name())
	}
	if len(cr.Choices) == 0 {
		return nil, types.NewError(types.ErrProviderUnavailable, "empty response from provider").
			WithRetryable(true).WithProvider(p.Name())
	}

	p.logger.Debug("completion succeeded",
		zap.String("provider", p.Name()),
		zap.String("model", cr.Model),
		zap.Duration("latency", time.Since(start)),
		zap.Int("total_tokens", cr.Usage.TotalTokens),
	)

	return &llm.ChatResponse{
		ID:           cr.ID,
		Provider:     p.Name(),
		Model:        cr.Model,
		Content:      strings.TrimSpace(cr.Choices[0].Message.Content),
		FinishReason: cr.Choices[0].FinishReason,
		Usage: llm.ChatUsage{
			PromptTokens:     cr.Usage.PromptTokens,
			CompletionTokens: cr.Usage.CompletionTokens,
			TotalTokens:      cr.Usage.TotalTokens,
		},
		CreatedAt: time.Now(),
	}, nil
}

func (p *Provider) HealthCheck(ctx context.Context) (*llm.HealthStatus, error) {
	start := time.Now()
	endpoint := fmt.Sprintf("%s/models", strings.TrimRight(p.opts.BaseURL, "/"))
	httpReq, _ := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	p.buildHeaders(httpReq)

	resp, err := p.client.Do(httpReq)
	latency := time.Since(start)
	if err != nil {
		return &llm.HealthStatus{Healthy: false, Latency: latency}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg := readErrMsg(resp.Body)
		return &llm.HealthStatus{Healthy: false, Latency: latency},
			fmt.Errorf("%s health check failed: status=%d msg=%s", p.Name(), resp.StatusCode, msg)
	}
	return &llm.HealthStatus{Healthy: true, Latency: latency}, nil
}

func chooseModel(req *llm.ChatRequest, defaultModel string) string {
	if req != nil && req.Model != "" {
		return req.Model
	}
	return defaultModel
}

func readErrMsg(body io.Reader) string {
	data, _ := io.ReadAll(body)
	var er errorResponse
	if err := json.Unmarshal(data, &er); err == nil && er.Error.Message != "" {
		if er.Error.Code != "" {
			return fmt.Sprintf("%s (code: %s)", er.Error.Message, er.Error.Code)
		}
		return er.Error.Message
	}
	return string(data)
}
