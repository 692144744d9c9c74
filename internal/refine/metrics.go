package refine

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	outcomeHit       = "hit"
	outcomeMiss      = "miss"
	outcomeAbandoned = "abandoned"
)

// probesTotal counts reference-platform probes.
// Labels: outcome (hit, miss, abandoned)
var probesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "dishscout",
	Subsystem: "refine",
	Name:      "probes_total",
	Help:      "Query refinement probes by outcome",
}, []string{"outcome"})
