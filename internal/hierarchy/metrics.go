package hierarchy

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/GoPowerDNS-Admin/GoRoles-Admin/internal/roles"
)

const resultOK = "ok"

// operations counts engine mutations by outcome.
var operations = promauto.NewCounterVec( //nolint:gochecknoglobals
	prometheus.CounterOpts{
		Name: "roles_hierarchy_operations_total",
		Help: "Number of role hierarchy operations, differentiated by operation and result.",
	},
	[]string{"operation", "result"},
)

func observe(operation string, err error) {
	result := resultOK
	if err != nil {
		result = string(roles.KindOf(err))
	}

	operations.WithLabelValues(operation, result).Inc()
}
