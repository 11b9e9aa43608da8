// Package generate 编排单条需求的回答生成流水线：
// 加载需求 → 检索相似问答 → 构建 Prompt → 调用选定的 Provider →
// 多候选时合成 → 持久化结果。
//
// 检索是尽力而为的辅助：基础设施故障时降级为空匹配集继续生成。
// Provider 调用互相隔离，单个失败不阻断其余；全部失败才算条目失败。
package generate
