// 版权所有 2025 StreamCache Authors. 版权所有。
// 此源代码的使用由 MIT 许可规范,该许可可以是
// 在LICENSE文件中找到。

// 包 gemini 将 Google Gemini 流式生成接口适配为 stream.Upstream[string]，
// 逐响应产出文本增量，供 stream.Source 缓存与重放。
package gemini
