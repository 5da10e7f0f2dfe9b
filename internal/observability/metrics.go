package observability

import (
	"context"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/yungbote/careerladder-backend/internal/platform/envutil"
	"github.com/yungbote/careerladder-backend/internal/platform/logger"
)

type Metrics struct {
	apiRequests *family
	apiLatency  *histogram
	apiInflight *family
	apiReqTotal *family
	apiReqError *family

	aggregateOps       *family
	aggregateLatency   *histogram
	aggregateConflicts *family
	aggregateRetries   *family

	threadsClosed *family
	rateLimited   *family

	dbStats   *family
	redisUp   *family
	redisPing *family
}

var (
	initOnce sync.Once
	instance *Metrics
)

func Enabled() bool {
	return envutil.Bool("METRICS_ENABLED", false)
}

func Current() *Metrics {
	return instance
}

func scrapeInterval() time.Duration {
	return envutil.Duration("METRICS_SCRAPE_INTERVAL_SECONDS", 10*time.Second)
}

// Init returns nil when METRICS_ENABLED is off; every method is nil-safe.
func Init(log *logger.Logger) *Metrics {
	if !Enabled() {
		return nil
	}
	initOnce.Do(func() {
		instance = newMetrics()
		if log != nil {
			log.Info("Observability metrics enabled")
		}
	})
	return instance
}

var (
	apiBuckets       = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5}
	aggregateBuckets = []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1}
)

func newMetrics() *Metrics {
	return &Metrics{
		apiRequests: newFamily(kindCounter, "cl_api_requests_total", "Total API requests by method/route/status.", "method", "route", "status"),
		apiLatency:  newHistogram("cl_api_request_duration_seconds", "API request latency in seconds by method/route/status.", apiBuckets, "method", "route", "status"),
		apiInflight: newFamily(kindGauge, "cl_api_inflight_requests", "In-flight API requests."),
		apiReqTotal: newFamily(kindCounter, "cl_api_requests_total_all", "Total API requests (all)."),
		apiReqError: newFamily(kindCounter, "cl_api_requests_error_total", "Total API requests with 5xx status."),

		aggregateOps:       newFamily(kindCounter, "cl_aggregate_operations_total", "Aggregate writes by operation/status.", "operation", "status"),
		aggregateLatency:   newHistogram("cl_aggregate_operation_duration_seconds", "Aggregate write latency in seconds by operation.", aggregateBuckets, "operation"),
		aggregateConflicts: newFamily(kindCounter, "cl_aggregate_conflicts_total", "Aggregate writes rejected as conflicts.", "operation"),
		aggregateRetries:   newFamily(kindCounter, "cl_aggregate_retryable_total", "Aggregate writes failing with retryable errors.", "operation"),

		threadsClosed: newFamily(kindCounter, "cl_skill_threads_closed_total", "Skill threads closed without a decision by reason.", "reason"),
		rateLimited:   newFamily(kindCounter, "cl_rate_limited_total", "Requests rejected by the rate limiter by route.", "route"),

		dbStats:   newFamily(kindGauge, "cl_db_stats", "Database connection pool stats.", "metric"),
		redisUp:   newFamily(kindGauge, "cl_redis_up", "Redis connectivity (1=up, 0=down)."),
		redisPing: newFamily(kindGauge, "cl_redis_ping_seconds", "Redis ping latency in seconds."),
	}
}

func (m *Metrics) StartServer(ctx context.Context, log *logger.Logger, addr string) {
	if m == nil {
		return
	}
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           http.HandlerFunc(m.WriteHTTP),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		_ = srv.Shutdown(shutdownCtx)
		cancel()
	}()
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			if log != nil {
				log.Error("metrics server failed", "error", err, "addr", addr)
			}
		}
	}()
}

func (m *Metrics) WriteHTTP(w http.ResponseWriter, r *http.Request) {
	if m == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	_ = m.WritePrometheus(w)
}

type promWriter interface {
	write(w io.Writer) error
}

func (m *Metrics) WritePrometheus(w io.Writer) error {
	if m == nil {
		return nil
	}
	for _, series := range []promWriter{
		m.apiRequests, m.apiLatency, m.apiInflight, m.apiReqTotal, m.apiReqError,
		m.aggregateOps, m.aggregateLatency, m.aggregateConflicts, m.aggregateRetries,
		m.threadsClosed, m.rateLimited,
		m.dbStats, m.redisUp, m.redisPing,
	} {
		if err := series.write(w); err != nil {
			return err
		}
	}
	return nil
}

func (m *Metrics) ObserveAPI(method, route, status string, dur time.Duration) {
	if m == nil {
		return
	}
	if method == "" {
		method = "UNKNOWN"
	}
	if route == "" {
		route = "unknown"
	}
	if status == "" {
		status = "0"
	}
	m.apiRequests.add(1, method, route, status)
	m.apiLatency.observe(dur.Seconds(), method, route, status)
	m.apiReqTotal.add(1)
	if isServerErrorStatus(status) {
		m.apiReqError.add(1)
	}
}

func (m *Metrics) ApiInflightInc() {
	if m == nil {
		return
	}
	m.apiInflight.add(1)
}

func (m *Metrics) ApiInflightDec() {
	if m == nil {
		return
	}
	m.apiInflight.add(-1)
}

func (m *Metrics) ObserveAggregateOperation(op, status string, dur time.Duration) {
	if m == nil {
		return
	}
	m.aggregateOps.add(1, op, status)
	m.aggregateLatency.observe(dur.Seconds(), op)
}

func (m *Metrics) IncAggregateConflict(op string) {
	if m == nil {
		return
	}
	m.aggregateConflicts.add(1, op)
}

func (m *Metrics) IncAggregateRetry(op string) {
	if m == nil {
		return
	}
	m.aggregateRetries.add(1, op)
}

func (m *Metrics) AddThreadsClosed(reason string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.threadsClosed.add(float64(n), reason)
}

func (m *Metrics) IncRateLimited(route string) {
	if m == nil {
		return
	}
	m.rateLimited.add(1, route)
}

func (m *Metrics) StartDBCollector(ctx context.Context, log *logger.Logger, db *gorm.DB) {
	if m == nil || db == nil {
		return
	}
	interval := scrapeInterval()
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				sqlDB, err := db.DB()
				if err != nil {
					if log != nil {
						log.Warn("metrics: db stats unavailable", "error", err)
					}
					continue
				}
				stats := sqlDB.Stats()
				m.dbStats.set(float64(stats.OpenConnections), "open_connections")
				m.dbStats.set(float64(stats.InUse), "in_use")
				m.dbStats.set(float64(stats.Idle), "idle")
				m.dbStats.set(float64(stats.WaitCount), "wait_count")
				m.dbStats.set(stats.WaitDuration.Seconds(), "wait_duration_seconds")
			}
		}
	}()
}

// StartRedisCollector pings the shared client; the caller owns its lifecycle.
func (m *Metrics) StartRedisCollector(ctx context.Context, log *logger.Logger, rdb redis.UniversalClient) {
	if m == nil || rdb == nil {
		return
	}
	interval := scrapeInterval()
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				start := time.Now()
				if err := rdb.Ping(ctx).Err(); err != nil {
					m.redisUp.set(0)
					if log != nil {
						log.Warn("metrics: redis ping failed", "error", err)
					}
					continue
				}
				m.redisUp.set(1)
				m.redisPing.set(time.Since(start).Seconds())
			}
		}
	}()
}

func isServerErrorStatus(status string) bool {
	status = strings.TrimSpace(status)
	return len(status) == 3 && status[0] == '5'
}

const (
	kindCounter = "counter"
	kindGauge   = "gauge"
)

var labelEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`)

// family is one counter or gauge metric keyed by its label values.
type family struct {
	name   string
	help   string
	kind   string
	labels []string

	mu      sync.Mutex
	samples map[string]*sample
}

type sample struct {
	labels []string
	value  float64
}

func newFamily(kind, name, help string, labels ...string) *family {
	return &family{name: name, help: help, kind: kind, labels: labels, samples: map[string]*sample{}}
}

func (f *family) add(v float64, values ...string) {
	f.mu.Lock()
	f.at(values).value += v
	f.mu.Unlock()
}

func (f *family) set(v float64, values ...string) {
	f.mu.Lock()
	f.at(values).value = v
	f.mu.Unlock()
}

// at must be called with f.mu held.
func (f *family) at(values []string) *sample {
	key := strings.Join(values, "\xff")
	s, ok := f.samples[key]
	if !ok {
		s = &sample{labels: append([]string(nil), values...)}
		f.samples[key] = s
	}
	return s
}

func (f *family) write(w io.Writer) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	var b strings.Builder
	writeHeader(&b, f.name, f.help, f.kind)
	for _, key := range sortedKeys(f.samples) {
		s := f.samples[key]
		b.WriteString(f.name)
		b.WriteString(renderLabels(f.labels, s.labels))
		b.WriteByte(' ')
		b.WriteString(strconv.FormatFloat(s.value, 'g', -1, 64))
		b.WriteByte('\n')
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// histogram keeps cumulative bucket counts per label set.
type histogram struct {
	name   string
	help   string
	labels []string
	bounds []float64

	mu     sync.Mutex
	series map[string]*histSeries
}

type histSeries struct {
	labels []string
	counts []uint64
	sum    float64
	count  uint64
}

func newHistogram(name, help string, bounds []float64, labels ...string) *histogram {
	return &histogram{name: name, help: help, labels: labels, bounds: bounds, series: map[string]*histSeries{}}
}

func (h *histogram) observe(v float64, values ...string) {
	key := strings.Join(values, "\xff")
	h.mu.Lock()
	defer h.mu.Unlock()
	s, ok := h.series[key]
	if !ok {
		s = &histSeries{labels: append([]string(nil), values...), counts: make([]uint64, len(h.bounds))}
		h.series[key] = s
	}
	for i, bound := range h.bounds {
		if v <= bound {
			s.counts[i]++
		}
	}
	s.sum += v
	s.count++
}

func (h *histogram) write(w io.Writer) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	var b strings.Builder
	writeHeader(&b, h.name, h.help, "histogram")
	for _, key := range sortedKeys(h.series) {
		s := h.series[key]
		for i, bound := range h.bounds {
			le := strconv.FormatFloat(bound, 'g', -1, 64)
			b.WriteString(h.name + "_bucket" + renderLabels(h.labels, s.labels, "le", le))
			b.WriteString(" " + strconv.FormatUint(s.counts[i], 10) + "\n")
		}
		b.WriteString(h.name + "_bucket" + renderLabels(h.labels, s.labels, "le", "+Inf"))
		b.WriteString(" " + strconv.FormatUint(s.count, 10) + "\n")
		b.WriteString(h.name + "_sum" + renderLabels(h.labels, s.labels))
		b.WriteString(" " + strconv.FormatFloat(s.sum, 'g', -1, 64) + "\n")
		b.WriteString(h.name + "_count" + renderLabels(h.labels, s.labels))
		b.WriteString(" " + strconv.FormatUint(s.count, 10) + "\n")
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func writeHeader(b *strings.Builder, name, help, kind string) {
	b.WriteString("# HELP " + name + " " + help + "\n")
	b.WriteString("# TYPE " + name + " " + kind + "\n")
}

// renderLabels pairs names with values; extra holds trailing name/value pairs such as le.
func renderLabels(names, values []string, extra ...string) string {
	if len(names) == 0 && len(extra) == 0 {
		return ""
	}
	pairs := make([]string, 0, len(names)+len(extra)/2)
	for i, name := range names {
		val := "unknown"
		if i < len(values) && values[i] != "" {
			val = values[i]
		}
		pairs = append(pairs, name+`="`+labelEscaper.Replace(val)+`"`)
	}
	for i := 0; i+1 < len(extra); i += 2 {
		pairs = append(pairs, extra[i]+`="`+labelEscaper.Replace(extra[i+1])+`"`)
	}
	return "{" + strings.Join(pairs, ",") + "}"
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
