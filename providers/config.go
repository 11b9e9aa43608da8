// Package providers 装配具体的 LLM 适配器并提供各 Provider 的配置结构。
package providers

import "time"

// OpenAIConfig OpenAI Provider 配置
type OpenAIConfig struct {
	APIKey  string        `json:"api_key" yaml:"api_key" env:"API_KEY"`
	BaseURL string        `json:"base_url" yaml:"base_url" env:"BASE_URL"`
	Model   string        `json:"model,omitempty" yaml:"model,omitempty" env:"MODEL"`
	Timeout time.Duration `json:"timeout,omitempty" yaml:"timeout,omitempty" env:"TIMEOUT"`
}

// DeepSeekConfig DeepSeek Provider 配置（OpenAI 兼容协议）
type DeepSeekConfig struct {
	APIKey  string        `json:"api_key" yaml:"api_key" env:"API_KEY"`
	BaseURL string        `json:"base_url" yaml:"base_url" env:"BASE_URL"`
	Model   string        `json:"model,omitempty" yaml:"model,omitempty" env:"MODEL"`
	Timeout time.Duration `json:"timeout,omitempty" yaml:"timeout,omitempty" env:"TIMEOUT"`
}

// ClaudeConfig Anthropic Claude Provider 配置
type ClaudeConfig struct {
	APIKey  string        `json:"api_key" yaml:"api_key" env:"API_KEY"`
	BaseURL string        `json:"base_url" yaml:"base_url" env:"BASE_URL"`
	Model   string        `json:"model,omitempty" yaml:"model,omitempty" env:"MODEL"`
	Timeout time.Duration `json:"timeout,omitempty" yaml:"timeout,omitempty" env:"TIMEOUT"`
}

// Config 汇总所有 Provider 配置。
type Config struct {
	OpenAI   OpenAIConfig   `json:"openai" yaml:"openai" env:"OPENAI"`
	DeepSeek DeepSeekConfig `json:"deepseek" yaml:"deepseek" env:"DEEPSEEK"`
	Claude   ClaudeConfig   `json:"anthropic" yaml:"anthropic" env:"ANTHROPIC"`
}
