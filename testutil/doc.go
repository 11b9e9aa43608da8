// =============================================================================
// 🧪 测试工具包
// =============================================================================
// 提供测试上下文、轮询断言等通用辅助，以及 mocks 子包中的
// Provider / Retriever / Store 模拟实现。
// =============================================================================
package testutil
