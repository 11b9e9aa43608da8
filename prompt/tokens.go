package prompt

import (
	"sync"
	"unicode/utf8"

	"github.com/pkoukk/tiktoken-go"
)

// TokenCounter 基于 cl100k_base 编码估算 Token 数。
// 编码表加载失败时退化为按字符数 / 4 的粗略估算。
type TokenCounter struct {
	once sync.Once
	enc  *tiktoken.Tiktoken
}

// NewTokenCounter 创建计数器。编码表延迟加载。
func NewTokenCounter() *TokenCounter {
	return &TokenCounter{}
}

// Count 返回文本的估算 Token 数。
func (c *TokenCounter) Count(text string) int {
	if text == "" {
		return 0
	}
	c.once.Do(func() {
		enc, err := tiktoken.GetEncoding("cl100k_base")
		if err == nil {
			c.enc = enc
		}
	})
	if c.enc != nil {
		return len(c.enc.Encode(text, nil, nil))
	}
	// 英文文本平均每 Token 约 4 个字符
	n := utf8.RuneCountInString(text) / 4
	if n == 0 {
		n = 1
	}
	return n
}
