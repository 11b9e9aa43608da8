// Package retrieval 提供历史问答的相似度检索：
// 基于向量余弦相似度查找与当前需求语义相近的既往回答，
// 供 Prompt 构建时作为上下文素材。
//
// 提供三种实现：
//   - MemoryRetriever：内存实现，用于测试与小规模数据。
//   - PGVectorRetriever：基于 PostgreSQL pgvector 扩展的生产实现。
//   - CachedRetriever：在任意 Retriever 之上增加 Redis 缓存。
//
// 检索属于尽力而为的辅助能力：基础设施故障时调用方可降级为
// 空匹配集继续生成，而不是让整条需求失败。
package retrieval
