package http

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	registrationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "celf_registrations_total",
		Help: "Accounts created, by provisioning path.",
	}, []string{"path"})

	requestStatusTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "celf_request_status_transitions_total",
		Help: "Request status transitions applied, by target status.",
	}, []string{"status"})

	invitesIssuedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "celf_invites_issued_total",
		Help: "Invites created or rotated.",
	})
)
