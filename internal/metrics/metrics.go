// Package metrics exposes prometheus counters for replay decoding.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/reallyoldfogie/wows-replay-go/internal/logging"
)

const namespace = "wowsr"

var (
	// Registry holds every collector of this package. It is separate from
	// the global prometheus registry so that importing the module never
	// pollutes the host application's metrics.
	Registry = prometheus.NewRegistry()

	PacketsDecoded = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "packets_decoded_total",
		Help:      "Packets read from replay streams, by packet type.",
	}, []string{"type"})

	ValueDecodeFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "value_decode_failures_total",
		Help:      "Values replaced by the empty value because the bytes did not match the schema.",
	}, []string{"shape"})

	UnresolvedPayloads = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "unresolved_payloads_total",
		Help:      "Entity method or property packets whose entity, method or property could not be resolved.",
	})

	CatalogLoads = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "catalog_loads_total",
		Help:      "Entity catalog loads from disk, by result.",
	}, []string{"result"})

	ReplaysOpened = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "replays_opened_total",
		Help:      "Replay open attempts, by result.",
	}, []string{"result"})
)

func init() {
	Registry.MustRegister(PacketsDecoded, ValueDecodeFailures, UnresolvedPayloads, CatalogLoads, ReplaysOpened)
}

// Result maps an error to the "result" label value.
func Result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// Handler returns the HTTP handler serving Registry.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// StartHTTP serves /metrics on addr in a separate goroutine.
func StartHTTP(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler())
	go func() {
		logging.Log.Infof("metrics available at %s/metrics", addr)
		if err := http.ListenAndServe(addr, mux); err != nil {
			logging.Log.Errorf("metrics server: %v", err)
		}
	}()
}
