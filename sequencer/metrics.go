package sequencer

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

// Metrics exposes the sequencer's health over Prometheus gauges and a
// /healthz liveness check.
type Metrics struct {
	seq *Sequencer
	log *logrus.Logger

	registry        *prometheus.Registry
	blockHeight     prometheus.Gauge
	systemsGauge    prometheus.Gauge
	txAppliedTotal  prometheus.Counter
	txRejectedTotal prometheus.Counter
}

// NewMetrics builds the gauge/counter set for seq. Call RecordApply after
// every Submit to keep counters current.
func NewMetrics(seq *Sequencer, log *logrus.Logger) *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		seq: seq,
		log: log,
		blockHeight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "fvl_block_height",
			Help: "Current block number of the sequencer.",
		}),
		systemsGauge: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "fvl_systems_deployed",
			Help: "Number of systems currently deployed in world state.",
		}),
		txAppliedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fvl_transactions_applied_total",
			Help: "Transactions that cleared admission, successful or not.",
		}),
		txRejectedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fvl_transactions_rejected_total",
			Help: "Transactions rejected at admission (bad nonce, unknown target).",
		}),
		registry: reg,
	}
	reg.MustRegister(m.blockHeight, m.systemsGauge, m.txAppliedTotal, m.txRejectedTotal)
	return m
}

// RecordApply updates the applied/rejected counters and refreshes the
// gauges from the sequencer's live world. Call it after every Submit.
func (m *Metrics) RecordApply(admitted bool) {
	if admitted {
		m.txAppliedTotal.Inc()
	} else {
		m.txRejectedTotal.Inc()
	}
	w := m.seq.World()
	m.blockHeight.Set(float64(w.BlockNumber))
	m.systemsGauge.Set(float64(len(w.Systems)))
}

// Router returns a chi router serving /metrics and /healthz.
func (m *Metrics) Router() chi.Router {
	r := chi.NewRouter()
	r.Handle("/metrics", promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})
	return r
}

// Serve starts the metrics/health HTTP server and blocks until ctx is
// cancelled, then shuts it down gracefully.
func (m *Metrics) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: m.Router()}
	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		return srv.Shutdown(context.Background())
	case err := <-errCh:
		return err
	}
}
