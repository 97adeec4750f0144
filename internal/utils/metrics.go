package utils

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var DBQueryDurationSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "db_query_duration_seconds",
	Help:    "Duration of database queries in seconds.",
	Buckets: prometheus.DefBuckets,
}, []string{"query_type", "repository", "status"})

var DBQueryErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "db_query_errors_total",
	Help: "Total number of failed database queries.",
}, []string{"query_type", "repository"})

var OTPIssuedTotal = promauto.NewCounter(prometheus.CounterOpts{
	Name: "vote_otp_issued_total",
	Help: "Total number of voting OTPs generated and persisted.",
})

var VotesCastTotal = promauto.NewCounter(prometheus.CounterOpts{
	Name: "votes_cast_total",
	Help: "Total number of ballots finalized.",
})
