// 版权所有 2025 StreamCache Authors. 版权所有。
// 此源代码的使用由 MIT 许可规范,该许可可以是
// 在LICENSE文件中找到。

// 包 tokenizer 为流式累积的文本提供 token 计量能力。
// 提供基于 tiktoken 的精确计数与基于字符统计的估算回退，
// 两者都实现 stream.TokenCounter，可直接用于 Accumulator.CountTokens。
package tokenizer
