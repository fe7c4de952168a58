// Package instrument exposes relay counters to Prometheus.
package instrument

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	receiveTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "blindrelay_receive_total",
			Help: "Number of inbound invitation submissions by result",
		},
		[]string{"result"},
	)
	fetchTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "blindrelay_fetch_total",
			Help: "Number of invitation fetches by result",
		},
		[]string{"result"},
	)
	expiredTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "blindrelay_expired_total",
			Help: "Number of stored invitations dropped by the TTL sweeper",
		},
	)

	initOnce sync.Once
)

// Init registers the relay metrics with the default registry. Safe to call
// more than once.
func Init() {
	initOnce.Do(func() {
		prometheus.MustRegister(receiveTotal)
		prometheus.MustRegister(fetchTotal)
		prometheus.MustRegister(expiredTotal)
	})
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Received counts one Receive outcome.
func Received(result string) {
	receiveTotal.With(prometheus.Labels{"result": result}).Inc()
}

// Fetched counts one Fetch outcome.
func Fetched(result string) {
	fetchTotal.With(prometheus.Labels{"result": result}).Inc()
}

// Expired counts records removed by the sweeper.
func Expired(n int) {
	expiredTotal.Add(float64(n))
}
