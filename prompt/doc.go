// Package prompt 构建 RFP 回答生成与多模型合成所需的对话消息，
// 并在发送前做 Token 预算检查。
package prompt
