package metrics

import (
	"context"
	"log"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// AppMetrics holds the application's metric instruments.
type AppMetrics struct {
	PostsCreatedTotal      metric.Int64Counter
	LikesToggledTotal      metric.Int64Counter
	ProfileUpdatesTotal    metric.Int64Counter
	LoginAttemptsTotal     metric.Int64Counter
	UploadDurationSeconds  metric.Float64Histogram
	UploadErrorsTotal      metric.Int64Counter
	DbQueryDurationSeconds metric.Float64Histogram
	DbQueryErrorsTotal     metric.Int64Counter
}

var (
	appMetrics *AppMetrics
	once       sync.Once
)

// InitAppMetrics creates the instruments once from the global MeterProvider.
// Call it after the provider is installed, otherwise the no-op provider is used.
func InitAppMetrics() {
	once.Do(func() {
		meter := otel.GetMeterProvider().Meter("LinkSphere")
		m := &AppMetrics{}
		var err error

		m.PostsCreatedTotal, err = meter.Int64Counter(
			"posts_created_total",
			metric.WithDescription("Total number of posts created"),
			metric.WithUnit("{post}"),
		)
		must(err, "posts_created_total")

		m.LikesToggledTotal, err = meter.Int64Counter(
			"likes_toggled_total",
			metric.WithDescription("Total number of like toggles, by resulting state"),
			metric.WithUnit("{toggle}"),
		)
		must(err, "likes_toggled_total")

		m.ProfileUpdatesTotal, err = meter.Int64Counter(
			"profile_updates_total",
			metric.WithDescription("Total number of successful profile updates"),
			metric.WithUnit("{update}"),
		)
		must(err, "profile_updates_total")

		m.LoginAttemptsTotal, err = meter.Int64Counter(
			"login_attempts_total",
			metric.WithDescription("Total number of login attempts, by outcome"),
			metric.WithUnit("{attempt}"),
		)
		must(err, "login_attempts_total")

		m.UploadDurationSeconds, err = meter.Float64Histogram(
			"media_upload_duration_seconds",
			metric.WithDescription("Duration of media uploads in seconds"),
			metric.WithUnit("s"),
		)
		must(err, "media_upload_duration_seconds")

		m.UploadErrorsTotal, err = meter.Int64Counter(
			"media_upload_errors_total",
			metric.WithDescription("Total number of failed media uploads"),
			metric.WithUnit("{error}"),
		)
		must(err, "media_upload_errors_total")

		m.DbQueryDurationSeconds, err = meter.Float64Histogram(
			"db_query_duration_seconds",
			metric.WithDescription("Duration of database queries in seconds"),
			metric.WithUnit("s"),
		)
		must(err, "db_query_duration_seconds")

		m.DbQueryErrorsTotal, err = meter.Int64Counter(
			"db_query_errors_total",
			metric.WithDescription("Total number of database query errors"),
			metric.WithUnit("{error}"),
		)
		must(err, "db_query_errors_total")

		appMetrics = m
	})
}

func must(err error, name string) {
	if err != nil {
		log.Fatalf("Metrics: Failed to create %s: %v", name, err)
	}
}

// Get returns the process-wide instruments, creating them on first use.
func Get() *AppMetrics {
	InitAppMetrics()
	return appMetrics
}

// ObserveQuery records the latency of one repository call and counts failures.
func (m *AppMetrics) ObserveQuery(ctx context.Context, op string, start time.Time, err error) {
	attrs := metric.WithAttributes(attribute.String("operation", op))
	m.DbQueryDurationSeconds.Record(ctx, time.Since(start).Seconds(), attrs)
	if err != nil {
		m.DbQueryErrorsTotal.Add(ctx, 1, attrs)
	}
}
