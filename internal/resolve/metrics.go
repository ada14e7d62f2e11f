package resolve

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	classifications = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gpxroute",
		Subsystem: "resolve",
		Name:      "classifications_total",
	}, []string{"outcome"})
	selections = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gpxroute",
		Subsystem: "resolve",
		Name:      "selections_total",
	}, []string{"label"})
	cancellations = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "gpxroute",
		Subsystem: "resolve",
		Name:      "cancelled_selections_total",
	})
)
