package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, c.Write(&m))
	return m.GetCounter().GetValue()
}

func TestCollectorsCount(t *testing.T) {
	before := counterValue(t, LedgerRetriesTotal)
	LedgerRetriesTotal.Inc()
	assert.Equal(t, before+1, counterValue(t, LedgerRetriesTotal))

	c := SyncRunsTotal.WithLabelValues("ok")
	start := counterValue(t, c)
	c.Add(2)
	assert.Equal(t, start+2, counterValue(t, c))
}

func TestCollectorsAreRegistered(t *testing.T) {
	families, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)

	names := make(map[string]bool, len(families))
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["kidbank_ledger_retries_total"])
}
