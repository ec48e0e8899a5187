package queueengine

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	verdictsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "glacic_dpi",
		Subsystem: "queueengine",
		Name:      "verdicts_total",
		Help:      "Verdicts issued per kernel queue, partitioned by outcome.",
	}, []string{"queue_id", "verdict"})

	receiveErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "glacic_dpi",
		Subsystem: "queueengine",
		Name:      "receive_errors_total",
		Help:      "Non-fatal receive-loop errors observed per kernel queue (e.g. ENOBUFS).",
	}, []string{"queue_id"})
)

func init() {
	prometheus.MustRegister(verdictsTotal, receiveErrorsTotal)
}

func observeVerdict(queueID uint16, verdict Verdict) {
	label := "drop"
	if verdict == Accept {
		label = "accept"
	}
	verdictsTotal.WithLabelValues(strconv.Itoa(int(queueID)), label).Inc()
}

func observeReceiveError(queueID uint16) {
	receiveErrorsTotal.WithLabelValues(strconv.Itoa(int(queueID))).Inc()
}
