package providers

import "time"

// 各 Provider 的默认参数。
const (
	DefaultOpenAIBaseURL   = "https://api.openai.com/v1"
	DefaultOpenAIModel     = "gpt-4"
	DefaultDeepSeekBaseURL = "https://api.deepseek.com/v1"
	DefaultDeepSeekModel   = "deepseek-chat"
	DefaultTimeout         = 30 * time.Second
)

// Normalize 填充缺省 BaseURL、模型与超时。
func (c *Config) Normalize() {
	if c.OpenAI.BaseURL == "" {
		c.OpenAI.BaseURL = DefaultOpenAIBaseURL
	}
	if c.OpenAI.Model == "" {
		c.OpenAI.Model = DefaultOpenAIModel
	}
	if c.OpenAI.Timeout == 0 {
		c.OpenAI.Timeout = DefaultTimeout
	}
	if c.DeepSeek.BaseURL == "" {
		c.DeepSeek.BaseURL = DefaultDeepSeekBaseURL
	}
	if c.DeepSeek.Model == "" {
		c.DeepSeek.Model = DefaultDeepSeekModel
	}
	if c.DeepSeek.Timeout == 0 {
		c.DeepSeek.Timeout = DefaultTimeout
	}
	if c.Claude.Timeout == 0 {
		c.Claude.Timeout = DefaultTimeout
	}
}

// Enabled 报告某 Provider 是否配置了 API Key。
func (c *Config) Enabled() (openai, deepseek, anthropic bool) {
	return c.OpenAI.APIKey != "", c.DeepSeek.APIKey != "", c.Claude.APIKey != ""
}
