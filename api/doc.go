// Package api 定义 HTTP 层的请求与响应 DTO。
// 处理器实现位于 api/handlers 子包。
package api
