// Package claude 实现 Anthropic Claude 的 LLM Provider。
// Claude API 与 OpenAI 的主要差异：
// 1. 认证使用 x-api-key 请求头而非 Bearer Token
// 2. system 消息单独传递
// 3. 响应 content 为数组形式
// 4. max_tokens 为必填字段
package claude

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

// Provider Anthropic Claude 适配器。
type Provider struct {
	cfg    providers.ClaudeConfig
	client *http.Client
	logger *zap.Logger
}

// New 创建 Claude Provider。
func New(cfg providers.ClaudeConfig, logger *zap.Logger) *Provider {
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second // Claude 响应可能较慢
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.anthropic.com"
	}
	return &Provider{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}
}

func (p *Provider) Name() string { return "anthropic" }

type claudeMessage struct {
	Role    string `json:"role"` // user 或 assistant
	Content string `json:"content"`
}

type claudeRequest struct {
	Model       string          `json:"model"`
	Messages    []claudeMessage `json:"messages"`
	System      string          `json:"system,omitempty"` // system 消息单独传递
	MaxTokens   int             `json:"max_tokens"`
	Temperature float32         `json:"temperature,omitempty"`
}

type claudeContent struct {
	Type string `json:"type"` // text
	Text string `json:"text,omitempty"`
}

type claudeResponse struct {
	ID         string          `json:"id"`
	Role       string          `json:"role"`
	Content    []claudeContent `json:"content"`
	Model      string          `json:"model"`
	StopReason string          `json:"stop_reason"`
	Usage      *struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage,omitempty"`
}

type claudeErrorResp struct {
	Type  string `json:"type"`
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

func (p *Provider) buildHeaders(req *http.Request) {
	// Claude 使用 x-api-key 认证
	req.Header.Set("x-api-key", p.cfg.APIKey)
	req.Header.Set("anthropic-version", "2023-06-01")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
}

// convertMessages 将统一格式转换为 Claude 格式：
// system 消息提取到 system 字段，其余保持原顺序。
func convertMessages(msgs []llm.Message) (string, []claudeMessage) {
	var system string
	var out []claudeMessage

	for _, m := range msgs {
		if m.Role == llm.RoleSystem {
			if system != "" {
				system += "\n\n"
			}
			system += m.Content
			continue
		}
		if m.Content == "" {
			continue
		}
		out = append(out, claudeMessage{Role: string(m.Role), Content: m.Content})
	}
	return system, out
}

func (p *Provider) Completion(ctx context.Context, req *llm.ChatRequest) (*llm.ChatResponse, error) {
	if req == nil || len(req.Messages) == 0 {
		return nil, types.NewError(types.ErrInvalidInput, "messages cannot be empty").
			WithProvider(p.Name())
	}

	timeout := p.cfg.Timeout
	if req.Timeout > 0 {
		timeout = req.Timeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	system, messages := convertMessages(req.Messages)

	body := claudeRequest{
		Model:       chooseModel(req, p.cfg.Model),
		Messages:    messages,
		System:      system,
		MaxTokens:   chooseMaxTokens(req),
		Temperature: req.Temperature,
	}

	payload, _ := json.Marshal(body)
	endpoint := fmt.Sprintf("%s/v1/messages", strings.TrimRight(p.cfg.BaseURL, "/"))

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
		return nil, mapError(resp.StatusCode, msg, p.Name())
	}

	var cr claudeResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return nil, types.NewError(types.ErrProviderUnavailable, "malformed provider response").
			WithCause(err).WithRetryable(true).WithProvider(p.Name())
	}

	var content strings.Builder
	for _, block := range cr.Content {
		if block.Type == "text" {
			content.WriteString(block.Text)
		}
	}
	if content.Len() == 0 {
		return nil, types.NewError(types.ErrProviderUnavailable, "empty response from provider").
			WithRetryable(true).WithProvider(p.Name())
	}

	p.logger.Debug("completion succeeded",
		zap.String("provider", p.Name()),
		zap.String("model", cr.Model),
		zap.Duration("latency", time.Since(start)),
	)

	out := &llm.ChatResponse{
		ID:           cr.ID,
		Provider:     p.Name(),
		Model:        cr.Model,
		Content:      strings.TrimSpace(content.String()),
		FinishReason: cr.StopReason,
		CreatedAt:    time.Now(),
	}
	if cr.Usage != nil {
		out.Usage = llm.ChatUsage{
			PromptTokens:     cr.Usage.InputTokens,
			CompletionTokens: cr.Usage.OutputTokens,
			TotalTokens:      cr.Usage.InputTokens + cr.Usage.OutputTokens,
		}
	}
	return out, nil
}

func (p *Provider) HealthCheck(ctx context.Context) (*llm.HealthStatus, error) {
	start := time.Now()
	endpoint := fmt.Sprintf("%s/v1/models", strings.TrimRight(p.cfg.BaseURL, "/"))
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
			fmt.Errorf("anthropic health check failed: status=%d msg=%s", resp.StatusCode, msg)
	}
	return &llm.HealthStatus{Healthy: true, Latency: latency}, nil
}

func readErrMsg(body io.Reader) string {
	data, _ := io.ReadAll(body)
	var er claudeErrorResp
	if err := json.Unmarshal(data, &er); err == nil && er.Error.Message != "" {
		return fmt.Sprintf("%s (type: %s)", er.Error.Message, er.Error.Type)
	}
	return string(data)
}

// mapError 在通用映射之上处理 Claude 特有的状态码。
func mapError(status int, msg string, provider string) *types.Error {
	if status == 529 { // Claude 特有的过载状态码
		return types.NewError(types.ErrProviderUnavailable, msg).
			WithHTTPStatus(status).WithRetryable(true).WithProvider(provider)
	}
	return providers.MapHTTPError(status, msg, provider)
}

func chooseModel(req *llm.ChatRequest, defaultModel string) string {
	if req != nil && req.Model != "" {
		return req.Model
	}
	if defaultModel != "" {
		return defaultModel
	}
	return "claude-3-7-sonnet-20250219"
}

func chooseMaxTokens(req *llm.ChatRequest) int {
	if req != nil && req.MaxTokens > 0 {
		return req.MaxTokens
	}
	// Claude 要求必须提供 max_tokens
	return 4000
}
