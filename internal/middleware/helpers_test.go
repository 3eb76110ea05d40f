package middleware

import (
	"testing"

	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/require"

	"github.com/vyrodovalexey/jsonapi-path-support/internal/observability"
)

// counterValue returns the value of the counter or gauge with the given
// name and labels, or zero when no such series exists.
func counterValue(t *testing.T, metrics *observability.Metrics, name string, labels map[string]string) float64 {
	t.Helper()

	families, err := metrics.Registry().Gather()
	require.NoError(t, err)

	for _, family := range families {
		if family.GetName() != name {
			continue
		}
		for _, m := range family.GetMetric() {
			if labelsMatch(m, labels) {
				if c := m.GetCounter(); c != nil {
					return c.GetValue()
				}
				return m.GetGauge().GetValue()
			}
		}
	}
	return 0
}

func labelsMatch(m *dto.Metric, labels map[string]string) bool {
	for _, pair := range m.GetLabel() {
		if want, ok := labels[pair.GetName()]; ok && want != pair.GetValue() {
			return false
		}
	}
	return true
}
