package inventory

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/henriquesergio1/it-asset-360-sub000/internal/audit"
)

// Metrics agrupa contadores do ciclo de vida. Um *Metrics nil é válido e
// descarta as medições.
type Metrics struct {
	operations *prometheus.CounterVec
	entries    *prometheus.CounterVec
}

// NewMetrics registra os contadores no registry informado.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "itasset",
			Name:      "operations_total",
			Help:      "Operações de inventário executadas, por resultado.",
		}, []string{"operation", "result"}),
		entries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "itasset",
			Name:      "audit_entries_total",
			Help:      "Eventos gravados no histórico, por entidade e ação.",
		}, []string{"asset_type", "action"}),
	}
	if reg != nil {
		reg.MustRegister(m.operations, m.entries)
	}
	return m
}

func (m *Metrics) observe(operation string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	switch {
	case err == nil:
	case IsStorage(err):
		result = "storage_error"
	case KindOf(err) != 0:
		result = "rejected"
	default:
		result = "error"
	}
	m.operations.WithLabelValues(operation, result).Inc()
}

func (m *Metrics) recorded(entries []audit.Entry) {
	if m == nil {
		return
	}
	for _, e := range entries {
		m.entries.WithLabelValues(string(e.AssetType), string(e.Action)).Inc()
	}
}
