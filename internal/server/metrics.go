package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	solvesStarted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fjord_solves_started_total",
		Help: "Number of solve jobs accepted.",
	})

	solvesCompleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fjord_solves_completed_total",
		Help: "Number of solve jobs that finished with a best solution.",
	})

	solvesFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fjord_solves_failed_total",
		Help: "Number of solve jobs that ended in an error.",
	})
)
