package otp

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var outcomes = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "hrportal_otp_outcomes_total",
	Help: "One-time code issuance and verification outcomes.",
}, []string{"outcome"})

func observe(outcome string) {
	outcomes.WithLabelValues(outcome).Inc()
}
