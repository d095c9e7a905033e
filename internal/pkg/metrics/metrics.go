// Package metrics 定义 Prometheus 指标。
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// UserRegisteredTotal 注册成功总数。
	UserRegisteredTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "curiohub_user_registered_total",
		Help: "Total number of successful registrations.",
	})

	// LoginFailureTotal 登录失败总数。
	LoginFailureTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "curiohub_login_failure_total",
		Help: "Total number of failed login attempts.",
	})

	// PasswordResetRequestedTotal 发起密码重置的次数。
	PasswordResetRequestedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "curiohub_password_reset_requested_total",
		Help: "Total number of password reset requests with email dispatched.",
	})

	// PasswordResetCompletedTotal 完成密码重置的次数。
	PasswordResetCompletedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "curiohub_password_reset_completed_total",
		Help: "Total number of consumed reset tokens.",
	})

	// UploadBytesTotal 上传到媒体存储的字节数。
	UploadBytesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "curiohub_upload_bytes_total",
		Help: "Total bytes uploaded to the media store.",
	})

	// UploadDedupHitTotal 命中内容去重缓存、未触发真实上传的次数。
	UploadDedupHitTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "curiohub_upload_dedup_hit_total",
		Help: "Total uploads answered from the content dedup cache.",
	})
)

var registerOnce sync.Once

// InitMetrics 把所有指标注册到默认 Registry。重复调用是安全的。
func InitMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			UserRegisteredTotal,
			LoginFailureTotal,
			PasswordResetRequestedTotal,
			PasswordResetCompletedTotal,
			UploadBytesTotal,
			UploadDedupHitTotal,
		)
	})
}
