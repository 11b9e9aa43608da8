/*
包 metrics 提供基于 Prometheus 的全链路指标采集能力，覆盖
HTTP、Provider、批次、缓存与数据库五大维度。

# 概述

本包通过 Collector 统一注册和记录 Prometheus 指标，所有指标按
namespace 隔离，支持多维度 label 分组，便于 Grafana 等工具进行
可视化与告警。测试可通过 NewCollectorWithRegistry 使用独立注册表。

# 主要能力

  - HTTP 指标：请求总数与耗时，按 method/path/status 分组，
    状态码归类为 2xx/3xx/4xx/5xx。
  - Provider 指标：请求总数、耗时、Token 用量（prompt/completion），
    按 provider 分组。
  - 批次指标：作业终态计数、条目状态计数、单条生成耗时、
    运行中作业 Gauge 与合成降级计数。
  - 缓存指标：命中与未命中计数，按 cache_type 分组。
  - 数据库指标：活跃/空闲连接数 Gauge。
*/
package metrics
