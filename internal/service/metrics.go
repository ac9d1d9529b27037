package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var transitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "storefront_request_transitions_total",
	Help: "Resolved action requests by action type and final status",
}, []string{"action_type", "status"})
