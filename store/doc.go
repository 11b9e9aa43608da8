// Package store 持久化需求条目与生成结果。
//
// 生产实现 GormStore 读写 excel_requirement_responses 表：
// 每个 Provider 的候选回答落在独立列，最终回答与相似问答引用
// 随之一并更新。MemoryStore 为测试用内存实现。
package store
