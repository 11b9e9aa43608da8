package api

import (
	"github.com/BaSui01/rfpflow/types"
)

// =============================================================================
// 生成类型
// =============================================================================

// GenerateRequest 单条需求生成请求。
type GenerateRequest struct {
	// 需求 ID
	RequirementID int64 `json:"requirement_id" example:"42"`
	// Provider 选择: openai, deepseek, anthropic 或 moa
	Model string `json:"model" example:"moa"`
}

// GenerateResponse 单条需求生成响应。
type GenerateResponse struct {
	// 需求 ID
	RequirementID int64 `json:"requirement_id"`
	// 最终答案
	FinalAnswer string `json:"final_answer,omitempty"`
	// 是否经过多 Provider 合成
	SynthesisUsed bool `json:"synthesis_used"`
	// 条目状态: succeeded, failed
	Status types.ItemStatus `json:"status"`
	// 失败时的错误码
	ErrorKind types.ErrorCode `json:"error_kind,omitempty"`
	// 各 Provider 的调用记录（按调用顺序）
	Providers []types.ProviderResult `json:"providers"`
	// 命中的相似历史问答
	SimilarQuestions []types.SimilarityMatch `json:"similar_questions"`
}

// =============================================================================
// 批量任务类型
// =============================================================================

// BatchRequest 批量生成提交请求。
type BatchRequest struct {
	// 需求 ID 列表，按列表顺序逐条处理
	RequirementIDs []int64 `json:"requirement_ids"`
	// Provider 选择: openai, deepseek, anthropic 或 moa
	Model string `json:"model" example:"moa"`
}

// BatchSubmitResponse 批量任务提交响应。
type BatchSubmitResponse struct {
	// 任务 ID，用于查询进度与取消
	JobID string `json:"job_id"`
}

// CancelResponse 批量任务取消响应。
type CancelResponse struct {
	// 任务 ID
	JobID string `json:"job_id"`
	// 取消请求是否被接受（幂等，重复取消同样返回 true）
	Cancelled bool `json:"cancelled"`
}

// =============================================================================
// 相似检索类型
// =============================================================================

// SimilarResponse 相似历史问答查询响应。
type SimilarResponse struct {
	// 查询的需求 ID
	RequirementID int64 `json:"requirement_id"`
	// 按相似度降序排列的匹配结果
	Matches []types.SimilarityMatch `json:"matches"`
}

// =============================================================================
// 健康检查类型
// =============================================================================

// HealthResponse 健康检查响应。
type HealthResponse struct {
	// 状态: ok, degraded
	Status string `json:"status"`
	// 版本号
	Version string `json:"version,omitempty"`
	// 各依赖组件状态
	Components map[string]string `json:"components,omitempty"`
}
