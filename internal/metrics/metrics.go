// Package metrics exposes resolution counters over Prometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/osomworks/themerouter/internal/resolve"
)

// Recorder counts resolution outcomes, labeled by request classification
// and whether a theme override was applied. It implements
// resolve.Recorder.
type Recorder struct {
	resolutions *prometheus.CounterVec
}

var _ resolve.Recorder = (*Recorder)(nil)

// NewRecorder builds a Recorder and registers its collectors with reg.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		resolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "themerouter",
			Name:      "resolutions_total",
			Help:      "Theme resolutions by request classification and outcome.",
		}, []string{"classification", "outcome"}),
	}
	reg.MustRegister(r.resolutions)
	return r
}

// Resolution implements resolve.Recorder.
func (r *Recorder) Resolution(classification string, overridden bool) {
	outcome := "default"
	if overridden {
		outcome = "override"
	}
	r.resolutions.WithLabelValues(classification, outcome).Inc()
}
