package tokenizer

import (
	"fmt"
	"strings"
	"sync"
)

// Tokenizer 是统一的 token 计量接口.
type Tokenizer interface {
	// CountTokens 返回给定文本的 token 数.
	CountTokens(text string) (int, error)

	// Encode 将文本转换为 token ID 列表.
	Encode(text string) ([]int, error)

	// Decode 将 token ID 转换回文本.
	Decode(tokens []int) (string, error)

	// MaxTokens 返回模型的最大上下文长度.
	MaxTokens() int

	// Name 返回分词器的名称.
	Name() string
}

// 全局分词器注册表.
var (
	modelTokenizers   = make(map[string]Tokenizer)
	modelTokenizersMu sync.RWMutex
)

// Register 为给定的模型名称注册分词器.
func Register(model string, t Tokenizer) {
	modelTokenizersMu.Lock()
	defer modelTokenizersMu.Unlock()
	modelTokenizers[model] = t
}

// ForModel 返回为给定模型注册的分词器，支持前缀匹配
// (如 "gpt-4o" 匹配 "gpt-4o-mini")。未命中时返回错误。
func ForModel(model string) (Tokenizer, error) {
	modelTokenizersMu.RLock()
	defer modelTokenizersMu.RUnlock()

	if t, ok := modelTokenizers[model]; ok {
		return t, nil
	}

	// 尝试前缀匹配，取最长的前缀。
	var found Tokenizer
	best := 0
	for prefix, t := range modelTokenizers {
		if len(prefix) > best && strings.HasPrefix(model, prefix) {
			found = t
			best = len(prefix)
		}
	}
	if found != nil {
		return found, nil
	}

	return nil, fmt.Errorf("no tokenizer registered for model %q", model)
}

// ForModelOrEstimate 与 ForModel 相同，但在未注册时退回到估算器.
func ForModelOrEstimate(model string) Tokenizer {
	if t, err := ForModel(model); err == nil {
		return t
	}
	return NewEstimator(model, 0)
}
