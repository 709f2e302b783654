// 版权所有 2025 StreamCache Authors. 版权所有。
// 此源代码的使用由 MIT 许可规范,该许可可以是
// 在LICENSE文件中找到。

// 包 openai 将 OpenAI Responses 流式接口适配为 stream.Upstream[string]，
// 逐事件产出文本增量，供 stream.Source 缓存与重放。
package openai
