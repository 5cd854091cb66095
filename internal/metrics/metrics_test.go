package metrics

import (
	"bytes"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteText(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "bdgeo_test_total", Help: "test"}, []string{"op"})
	reg.MustRegister(c)
	c.WithLabelValues("divisions").Add(3)

	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, reg))

	assert.Contains(t, buf.String(), "# TYPE bdgeo_test_total counter")
	assert.Contains(t, buf.String(), `bdgeo_test_total{op="divisions"} 3`)
}

func TestWriteText_Default(t *testing.T) {
	LookupsTotal.WithLabelValues("divisions").Inc()

	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, nil))

	assert.Contains(t, buf.String(), "bdgeo_lookups_total")
}
