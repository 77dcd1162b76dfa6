// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector はメトリクス収集のインターフェース。
// ハンドラー、サービス層、ワーカーから利用する。
type MetricsCollector interface {
	RecordHTTPStatus(statusCode int)
	RecordRequestLatency(duration time.Duration)
	RecordStatementCreated()
	RecordStatementDeleted()
	RecordSummarySuccess()
	RecordSummaryFailure(reason string)
	RecordSummaryLatency(duration time.Duration)
	RecordSessionsPurged(count int)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	httpStatus        *prometheus.CounterVec
	requestLatency    prometheus.Histogram
	statementsCreated prometheus.Counter
	statementsDeleted prometheus.Counter
	summarySuccess    prometheus.Counter
	summaryFail       *prometheus.CounterVec
	summaryLatency    prometheus.Histogram
	sessionsPurged    prometheus.Counter
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "polilog_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		requestLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "polilog_request_latency_seconds",
			Help:    "HTTPリクエストのレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}),
		statementsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "polilog_statements_created_total",
			Help: "作成された発言の合計数",
		}),
		statementsDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "polilog_statements_deleted_total",
			Help: "削除（ソフトデリート）された発言の合計数",
		}),
		summarySuccess: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "polilog_summary_success_total",
			Help: "要約生成成功の合計数",
		}),
		summaryFail: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "polilog_summary_fail_total",
			Help: "要約生成失敗の合計数（原因別）",
		}, []string{"reason"}),
		summaryLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "polilog_summary_latency_seconds",
			Help:    "要約API呼び出しのレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}),
		sessionsPurged: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "polilog_sessions_purged_total",
			Help: "クリーンアップで削除された期限切れセッションの合計数",
		}),
	}

	reg.MustRegister(
		c.httpStatus,
		c.requestLatency,
		c.statementsCreated,
		c.statementsDeleted,
		c.summarySuccess,
		c.summaryFail,
		c.summaryLatency,
		c.sessionsPurged,
	)

	return c
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordRequestLatency はリクエストのレイテンシを記録する。
func (c *Collector) RecordRequestLatency(duration time.Duration) {
	c.requestLatency.Observe(duration.Seconds())
}

// RecordStatementCreated は発言の作成を記録する。
func (c *Collector) RecordStatementCreated() {
	c.statementsCreated.Inc()
}

// RecordStatementDeleted は発言の削除を記録する。
func (c *Collector) RecordStatementDeleted() {
	c.statementsDeleted.Inc()
}

// RecordSummarySuccess は要約生成の成功を記録する。
func (c *Collector) RecordSummarySuccess() {
	c.summarySuccess.Inc()
}

// RecordSummaryFailure は要約生成の失敗を原因別に記録する。
func (c *Collector) RecordSummaryFailure(reason string) {
	c.summaryFail.WithLabelValues(reason).Inc()
}

// RecordSummaryLatency は要約API呼び出しのレイテンシを記録する。
func (c *Collector) RecordSummaryLatency(duration time.Duration) {
	c.summaryLatency.Observe(duration.Seconds())
}

// RecordSessionsPurged は削除された期限切れセッション数を記録する。
func (c *Collector) RecordSessionsPurged(count int) {
	c.sessionsPurged.Add(float64(count))
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// SetupMetricsRoute は/metricsエンドポイントを提供するHTTPハンドラーを返す。
// Prometheusスクレイプに対応する。
func SetupMetricsRoute(gatherer prometheus.Gatherer) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler(gatherer))
	return mux
}
