package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	skipExisting = "existing_entry"
	skipConflict = "conflict"
)

var (
	labourGenerated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fieldops_labour_generated_total",
		Help: "Automatic labour entries inserted for completed assignments.",
	})
	labourSkipped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fieldops_labour_generation_skipped_total",
		Help: "Automatic labour generation calls that inserted nothing.",
	}, []string{"reason"})
	jobStatusRecomputed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fieldops_job_status_recomputed_total",
		Help: "Job status recomputations by resulting status.",
	}, []string{"status"})
)
