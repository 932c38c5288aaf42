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
// ハンドラー、ストリームハブ、ワーカーから利用する。
type MetricsCollector interface {
	RecordTestimonialSubmission(outcome string)
	RecordAuthOperation(operation, outcome string)
	SetStreamSubscribers(count int)
	RecordHTTPStatus(statusCode int)
	RecordFetchSuccess(sourceID string)
	RecordFetchFailure(sourceID string, reason string)
	RecordFetchLatency(duration time.Duration)
	RecordTipsUpserted(count int)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	submissions       *prometheus.CounterVec
	authOperations    *prometheus.CounterVec
	streamSubscribers prometheus.Gauge
	httpStatus        *prometheus.CounterVec
	fetchSuccess      prometheus.Counter
	fetchFail         prometheus.Counter
	fetchLatency      prometheus.Histogram
	tipsUpserted      prometheus.Counter
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "seniortech_testimonial_submissions_total",
			Help: "体験談投稿の結果別合計数",
		}, []string{"outcome"}),
		authOperations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "seniortech_auth_operations_total",
			Help: "認証操作の種別・結果別合計数",
		}, []string{"operation", "outcome"}),
		streamSubscribers: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "seniortech_stream_subscribers",
			Help: "接続中のSSE購読者数",
		}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "seniortech_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		fetchSuccess: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "seniortech_tip_fetch_success_total",
			Help: "ティップスソースフェッチ成功の合計数",
		}),
		fetchFail: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "seniortech_tip_fetch_fail_total",
			Help: "ティップスソースフェッチ失敗の合計数",
		}),
		fetchLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "seniortech_tip_fetch_latency_seconds",
			Help:    "ティップスソースフェッチのレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}),
		tipsUpserted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "seniortech_tips_upserted_total",
			Help: "アップサートされたティップス記事の合計数",
		}),
	}

	reg.MustRegister(
		c.submissions,
		c.authOperations,
		c.streamSubscribers,
		c.httpStatus,
		c.fetchSuccess,
		c.fetchFail,
		c.fetchLatency,
		c.tipsUpserted,
	)

	return c
}

// RecordTestimonialSubmission は体験談投稿の結果を記録する。
// outcomeは "accepted" または "rejected"。
func (c *Collector) RecordTestimonialSubmission(outcome string) {
	c.submissions.WithLabelValues(outcome).Inc()
}

// RecordAuthOperation は認証操作の結果を記録する。
// operationは "signup"/"signin"/"signout"/"bootstrap"、outcomeは "success"/"failure"。
func (c *Collector) RecordAuthOperation(operation, outcome string) {
	c.authOperations.WithLabelValues(operation, outcome).Inc()
}

// SetStreamSubscribers は現在のSSE購読者数を記録する。
func (c *Collector) SetStreamSubscribers(count int) {
	c.streamSubscribers.Set(float64(count))
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordFetchSuccess はソースフェッチ成功を記録する。
func (c *Collector) RecordFetchSuccess(sourceID string) {
	c.fetchSuccess.Inc()
}

// RecordFetchFailure はソースフェッチ失敗を記録する。
func (c *Collector) RecordFetchFailure(sourceID string, reason string) {
	c.fetchFail.Inc()
}

// RecordFetchLatency はソースフェッチのレイテンシを記録する。
func (c *Collector) RecordFetchLatency(duration time.Duration) {
	c.fetchLatency.Observe(duration.Seconds())
}

// RecordTipsUpserted はアップサートされた記事数を記録する。
func (c *Collector) RecordTipsUpserted(count int) {
	c.tipsUpserted.Add(float64(count))
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
