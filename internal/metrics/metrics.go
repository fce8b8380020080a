// Package metrics exposes this server's Prometheus collectors:
// connection lifecycle, per-operation latency, and write-cache
// activity.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ActiveConnections tracks TCP connections currently being served.
	ActiveConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "nfs4d_active_connections",
		Help: "Number of NFSv4.0 TCP connections currently open.",
	})

	// ConnectionsAccepted counts every TCP connection ever accepted.
	ConnectionsAccepted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "nfs4d_connections_accepted_total",
		Help: "Total number of NFSv4.0 TCP connections accepted.",
	})

	// OperationDuration records per-op latency, labeled by RFC 7530
	// mnemonic (GETATTR, READ, WRITE, ...) and resulting nfsstat4.
	OperationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name: "nfs4d_operation_duration_seconds",
		Help: "Duration of dispatched NFSv4.0 operations.",
		Buckets: []float64{
			0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1,
		},
	}, []string{"op", "status"})

	// WriteCacheFlushBytes records the size of every Write Cache commit.
	WriteCacheFlushBytes = promauto.NewHistogram(prometheus.HistogramOpts{
		Name: "nfs4d_write_cache_flush_bytes",
		Help: "Size in bytes of each Write Cache buffer flushed on COMMIT.",
		Buckets: []float64{
			4096, 32768, 131072, 524288, 1048576, 4194304,
		},
	})

	// ActiveClients mirrors the Client Manager's tracked-record count.
	ActiveClients = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "nfs4d_active_clients",
		Help: "Number of client records tracked by the Client Manager.",
	})
)

// ObserveOperation records one dispatched operation's latency, labeled
// by its RFC 7530 mnemonic and resulting status.
func ObserveOperation(op string, status uint32, started time.Time) {
	OperationDuration.WithLabelValues(op, statusLabel(status)).Observe(time.Since(started).Seconds())
}

func statusLabel(status uint32) string {
	if status == 0 {
		return "OK"
	}
	return "ERR"
}
