// Package handlers 实现 HTTP 处理器：单条生成、批量任务、
// 相似检索与健康检查，统一使用 Response 信封包装成功与错误。
package handlers
