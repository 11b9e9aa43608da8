// Package config 提供配置加载：默认值 → YAML 文件 → 环境变量，
// 逐层覆盖，最后统一校验。
package config
