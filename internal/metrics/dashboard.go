package metrics

import (
	"bufio"
	"errors"
	"net"
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	dto "github.com/prometheus/client_model/go"
)

// Metric family names.
const (
	HTTPRequestsTotal = "launchdash_http_requests_total"
	CallbacksTotal    = "launchdash_callbacks_total"
	WSSessions        = "launchdash_ws_sessions"
	DatasetRecords    = "launchdash_dataset_records"
	DatasetSites      = "launchdash_dataset_sites"
	ConfigReloads     = "launchdash_config_reloads_total"
)

// labelNames lists the variable labels of each vector family in declaration order.
var labelNames = map[string][]string{
	HTTPRequestsTotal: {"route", "code"},
	CallbacksTotal:    {"output", "result"},
}

// Dashboard is the metric set the server exports. Each Dashboard owns its
// registry, so tests and servers never share series.
type Dashboard struct {
	reg     *prometheus.Registry
	handler http.Handler

	Requests  *prometheus.CounterVec // route, code
	Callbacks *prometheus.CounterVec // output, result
	Sessions  prometheus.Gauge
	Records   prometheus.Gauge
	Sites     prometheus.Gauge
	Reloads   prometheus.Counter
}

// NewDashboard registers the dashboard families, plus the Go runtime
// collector, on a fresh registry.
func NewDashboard() *Dashboard {
	reg := prometheus.NewRegistry()
	d := &Dashboard{
		reg: reg,
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: HTTPRequestsTotal,
			Help: "HTTP requests served, by route and status code.",
		}, labelNames[HTTPRequestsTotal]),
		Callbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: CallbacksTotal,
			Help: "Chart callback evaluations, by output and result.",
		}, labelNames[CallbacksTotal]),
		Sessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: WSSessions,
			Help: "Open WebSocket callback sessions.",
		}),
		Records: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: DatasetRecords,
			Help: "Launch records loaded.",
		}),
		Sites: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: DatasetSites,
			Help: "Distinct launch sites in the dataset.",
		}),
		Reloads: prometheus.NewCounter(prometheus.CounterOpts{
			Name: ConfigReloads,
			Help: "Successful configuration reloads.",
		}),
	}
	reg.MustRegister(
		d.Requests, d.Callbacks,
		d.Sessions, d.Records, d.Sites, d.Reloads,
		collectors.NewGoCollector(),
	)
	d.handler = promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
	return d
}

// Gather snapshots every registered family.
func (d *Dashboard) Gather() ([]*dto.MetricFamily, error) {
	return d.reg.Gather()
}

// Value returns the current value of one series, or 0 if it was never touched.
// labelValues follow the order the family declares its labels in.
func (d *Dashboard) Value(name string, labelValues ...string) float64 {
	mfs, err := d.reg.Gather()
	if err != nil {
		return 0
	}
	want := make(map[string]string, len(labelValues))
	for i, l := range labelNames[name] {
		if i < len(labelValues) {
			want[l] = labelValues[i]
		}
	}
	for _, mf := range mfs {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			if !labelsMatch(m, want) {
				continue
			}
			if c := m.GetCounter(); c != nil {
				return c.GetValue()
			}
			return m.GetGauge().GetValue()
		}
	}
	return 0
}

func labelsMatch(m *dto.Metric, want map[string]string) bool {
	if len(m.GetLabel()) != len(want) {
		return false
	}
	for _, lp := range m.GetLabel() {
		if v, ok := want[lp.GetName()]; !ok || v != lp.GetValue() {
			return false
		}
	}
	return true
}

// ServeHTTP writes every family in the Prometheus exposition format.
func (d *Dashboard) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	d.handler.ServeHTTP(w, r)
}

// Instrument counts every request h serves under route.
func (d *Dashboard) Instrument(route string, h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		h.ServeHTTP(rec, r)
		d.Requests.WithLabelValues(route, strconv.Itoa(rec.status)).Inc()
	})
}

// statusRecorder captures the response status. It forwards Hijack and Flush
// so WebSocket upgrades and streamed bodies keep working.
type statusRecorder struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (s *statusRecorder) WriteHeader(code int) {
	if !s.wroteHeader {
		s.status = code
		s.wroteHeader = true
	}
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Write(b []byte) (int, error) {
	s.wroteHeader = true
	return s.ResponseWriter.Write(b)
}

func (s *statusRecorder) Flush() {
	if f, ok := s.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (s *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := s.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("metrics: underlying ResponseWriter does not support hijacking")
	}
	// A hijacked connection is an upgrade; record it as such.
	s.status = http.StatusSwitchingProtocols
	s.wroteHeader = true
	return h.Hijack()
}

func (s *statusRecorder) Unwrap() http.ResponseWriter {
	return s.ResponseWriter
}
