/*
包 cache 封装 go-redis 客户端，为检索结果等热路径数据提供统一的
缓存读写接口。

# 核心类型

  - Manager：缓存管理器，持有 Redis 客户端与连接池配置，
    提供 Get/Set/Delete 基础操作与 GetJSON/SetJSON 序列化方法。
  - Config：缓存配置，包含地址、密码、连接池大小、默认 TTL
    与健康检查间隔等参数。

# 错误语义

缓存未命中返回哨兵错误 ErrCacheMiss，调用方通过 IsCacheMiss
判断后回源。其余错误均视为基础设施故障。
*/
package cache
