package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dahuaptz",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests.",
		},
		[]string{"service", "method", "path", "status"},
	)
	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "dahuaptz",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path", "status"},
	)
	cameraRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dahuaptz",
			Subsystem: "camera",
			Name:      "requests_total",
			Help:      "PTZ requests sent to cameras.",
		},
		[]string{"camera", "operation", "success"},
	)
	cameraDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "dahuaptz",
			Subsystem: "camera",
			Name:      "request_duration_seconds",
			Help:      "PTZ request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"camera", "operation", "success"},
	)
	cameraUp = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "dahuaptz",
			Subsystem: "camera",
			Name:      "up",
			Help:      "Whether the last health check of a registered camera succeeded.",
		},
		[]string{"camera"},
	)
)

// RegisterMetrics はメトリクスをデフォルトレジストリに登録する（複数回呼び出し可）
func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(httpRequests, httpDuration, cameraRequests, cameraDuration, cameraUp)
	})
}

// RecordHTTPRequest は制御サーバーが受けたリクエストを記録する
func RecordHTTPRequest(service, method, path string, status int, duration time.Duration) {
	RegisterMetrics()
	statusLabel := strconv.Itoa(status)
	httpRequests.WithLabelValues(service, method, path, statusLabel).Inc()
	httpDuration.WithLabelValues(service, method, path, statusLabel).Observe(duration.Seconds())
}

// RecordCameraRequest はカメラへ送ったリクエストを記録する
func RecordCameraRequest(camera, operation string, success bool, duration time.Duration) {
	RegisterMetrics()
	successLabel := strconv.FormatBool(success)
	cameraRequests.WithLabelValues(camera, operation, successLabel).Inc()
	cameraDuration.WithLabelValues(camera, operation, successLabel).Observe(duration.Seconds())
}

// SetCameraUp は登録カメラの死活状態を記録する
func SetCameraUp(camera string, up bool) {
	RegisterMetrics()
	value := 0.0
	if up {
		value = 1
	}
	cameraUp.WithLabelValues(camera).Set(value)
}

// ForgetCamera は削除されたカメラの死活メトリクスを消す
func ForgetCamera(camera string) {
	cameraUp.DeleteLabelValues(camera)
}
