// Package testutil 提供通用的测试辅助：带超时的上下文与可编排的上游测试替身。
package testutil
