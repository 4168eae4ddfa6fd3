package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObservers(t *testing.T) {
	Init(nil)

	ObserveFuelEstimate("estimate", nil)
	ObserveFuelEstimate("estimate", errors.New("bad distance"))
	ObserveFuelEstimate("compare", nil)

	assert.Equal(t, 1.0, testutil.ToFloat64(fuelEstimates.WithLabelValues("estimate", ResultSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(fuelEstimates.WithLabelValues("estimate", ResultError)))
	assert.Equal(t, 1.0, testutil.ToFloat64(fuelEstimates.WithLabelValues("compare", ResultSuccess)))

	ObserveLedgerAggregation("summary", 120, 5*time.Millisecond, nil)
	ObserveLedgerAggregation("summary", 3, time.Millisecond, errors.New("cross tenant"))

	assert.Equal(t, 1.0, testutil.ToFloat64(ledgerAggregations.WithLabelValues("summary", ResultSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(ledgerAggregations.WithLabelValues("summary", ResultError)))
	assert.Equal(t, 120.0, testutil.ToFloat64(ledgerEventsFolded))

	ObserveImport("fuelcard", 4, nil)
	ObserveImport("", 0, errors.New("unknown format"))

	assert.Equal(t, 4.0, testutil.ToFloat64(statementImportLines.WithLabelValues("fuelcard")))
	assert.Equal(t, 1.0, testutil.ToFloat64(statementImports.WithLabelValues("unknown", ResultError)))

	ObserveExport("xlsx", time.Millisecond, nil)

	assert.Equal(t, 1.0, testutil.ToFloat64(statementExports.WithLabelValues("xlsx", ResultSuccess)))
}
