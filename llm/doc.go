// Package llm 定义统一的 LLM 适配层：聊天请求/响应类型、Provider 接口
// 以及按 ProviderID 索引的注册表。具体的 HTTP 适配器实现见 providers 子包。
package llm
