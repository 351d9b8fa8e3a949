// Package metrics expõe os contadores Prometheus do portal.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	LoginAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "portal_login_attempts_total",
		Help: "Tentativas de login por resultado (success, failure).",
	}, []string{"result"})

	AccountsProvisioned = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "portal_accounts_provisioned_total",
		Help: "Contas criadas por origem (self, admin, bootstrap).",
	}, []string{"origin"})

	SubmissionsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "portal_submissions_created_total",
		Help: "Formulários enviados.",
	})

	StatusTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "portal_submission_status_transitions_total",
		Help: "Mudanças de status de formulário por status final.",
	}, []string{"status"})

	BlockedDenials = promauto.NewCounter(prometheus.CounterOpts{
		Name: "portal_blocked_denials_total",
		Help: "Requisições negadas pela flag de bloqueio.",
	})
)
