// 版权所有 2025 StreamCache Authors. 版权所有。
// 此源代码的使用由 MIT 许可规范,该许可可以是
// 在LICENSE文件中找到。

/*
包 stream 提供面向 LLM 流式输出场景的可重放多消费者缓存原语。

# 概述

大语言模型的流式响应由单一上游逐步产出 token，而上层往往需要多个
互不相干的消费者同时读取同一逻辑流（UI 渲染、日志落盘、工具参数累积、
JSON 物化等）。本包围绕这一需求提供一组可组合的构建块：

  - Iterator — 可追加迭代器：生产者推入（Append/Complete），任意数量的
    消费者通过独立游标拉取，迟到的消费者从头重放。
  - Cursor — 消费者的独立读取位置，先重放缓存再跟随实时追加。
  - Source — 缓存异步源：包装一个拉取式上游，内部仅运行一个驱动任务，
    无论挂了多少消费者，上游只被完整迭代一次。
  - Accumulator — 文本特化：聚合片段为最终字符串，并支持封口后的
    JSON 解析。

# 核心语义

  - 追加只增不减；封口（seal）单向且不可逆；封口后拒绝任何写入。
  - 所有游标观察到的序列与追加顺序完全一致，无重排、无重复、无遗漏。
  - 挂起的读取在下一次 Append 或 Complete 时全部被唤醒，不丢失唤醒。
  - 上游失败被记录为终态错误，对现在与将来的每个消费者原样重现。

# 主要能力

  - 迟到重放：任何时刻创建的游标都从第一个条目开始。
  - 取消安全：放弃游标或取消等待对日志、生产者和其他消费者零副作用。
  - 可观测：Source 支持 zap 日志、OpenTelemetry 追踪与 Prometheus 指标。
*/
package stream
