package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecorder_Resolution(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := NewRecorder(reg)

	r.Resolution("frontend", true)
	r.Resolution("frontend", true)
	r.Resolution("admin", false)

	if got := testutil.ToFloat64(r.resolutions.WithLabelValues("frontend", "override")); got != 2 {
		t.Errorf("frontend override count = %v, want 2", got)
	}
	if got := testutil.ToFloat64(r.resolutions.WithLabelValues("admin", "default")); got != 1 {
		t.Errorf("admin default count = %v, want 1", got)
	}
}
