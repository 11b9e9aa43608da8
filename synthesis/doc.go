// Package synthesis 将多个 Provider 的候选回答合成为最终回答。
//
// 两种策略：
//   - LLMEngine：调用合成模型对候选回答取长补短，生成单一高质量回答；
//     合成失败时降级为首个成功候选。
//   - FirstAnswerEngine：直接取调用顺序中首个成功候选，零额外开销。
//
// 两种策略对单一成功候选都满足恒等律：候选即结果，不做任何加工。
package synthesis
