// rfpflow 是 RFP 应答生成编排服务的主入口。
// 支持 serve、version、health 子命令。
package main
