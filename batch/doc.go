// Package batch 实现批量生成作业的调度：
// 作业内条目严格串行处理，作业之间以信号量限制并发；
// 支持随时取消（剩余条目标记跳过）与任意频率的进度轮询。
//
// 单条失败不中断批次，部分成功是常态，终态进度携带
// succeeded/failed/skipped_cancelled 的逐项分解。
package batch
