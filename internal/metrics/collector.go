package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

// =============================================================================
// 📊 流缓存指标收集器
// =============================================================================

// Collector 流缓存指标收集器
type Collector struct {
	// 驱动任务指标
	itemsTotal    prometheus.Counter
	sealsTotal    *prometheus.CounterVec
	driveDuration prometheus.Histogram
	itemsPerDrive prometheus.Histogram

	// 消费侧指标
	cursorsTotal prometheus.Counter

	logger *zap.Logger
}

// 按命名空间缓存收集器；promauto 在默认注册表上重复注册会 panic。
var (
	collectors   = make(map[string]*Collector)
	collectorsMu sync.Mutex
)

// ForNamespace 返回给定命名空间的收集器，同一命名空间共享一个实例。
func ForNamespace(namespace string, logger *zap.Logger) *Collector {
	collectorsMu.Lock()
	defer collectorsMu.Unlock()

	if c, ok := collectors[namespace]; ok {
		return c
	}
	c := newCollector(namespace, logger)
	collectors[namespace] = c
	return c
}

// newCollector 创建指标收集器
func newCollector(namespace string, logger *zap.Logger) *Collector {
	c := &Collector{
		logger: logger.With(zap.String("component", "metrics")),
	}

	c.itemsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stream_items_total",
			Help:      "Total number of items cached from upstream sources",
		},
	)

	c.sealsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stream_seals_total",
			Help:      "Total number of sealed streams by outcome",
		},
		[]string{"outcome"},
	)

	c.driveDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stream_drive_duration_seconds",
			Help:      "Duration of a full upstream drain",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30, 60},
		},
	)

	c.itemsPerDrive = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stream_items_per_drive",
			Help:      "Number of items produced by a single upstream drain",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
		},
	)

	c.cursorsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stream_cursors_total",
			Help:      "Total number of cursors created against cached sources",
		},
	)

	return c
}

// RecordItem 记录一个从上游缓存的条目
func (c *Collector) RecordItem() {
	c.itemsTotal.Inc()
}

// RecordSeal 记录一次封口及其结果
func (c *Collector) RecordSeal(outcome string, items int, duration time.Duration) {
	c.sealsTotal.WithLabelValues(outcome).Inc()
	c.driveDuration.Observe(duration.Seconds())
	c.itemsPerDrive.Observe(float64(items))
}

// RecordCursor 记录一次游标创建
func (c *Collector) RecordCursor() {
	c.cursorsTotal.Inc()
}
