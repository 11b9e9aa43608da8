package llm

import "context"

// Provider 定义了统一的 LLM 适配接口。每个实现对接一个外部后端
// （OpenAI 兼容、Anthropic 等），负责归一化请求/响应/错误形态：
// 网络与鉴权失败、超时、上下文超长都映射到 types.Error 的统一错误码。
//
// 适配器内部不做任何重试；重试策略（若有）由上层调度器负责。
type Provider interface {
	// Completion 发起同步聊天请求，返回完整响应。
	// 每次调用受 ChatRequest.Timeout（或适配器默认值）约束。
	Completion(ctx context.Context, req *ChatRequest) (*ChatResponse, error)

	// HealthCheck 执行轻量级健康检查，返回延迟与可用性信息。
	HealthCheck(ctx context.Context) (*HealthStatus, error)

	// Name 返回 Provider 的唯一标识。
	Name() string
}
