package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	BookingRequestsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "lifeline", Name: "booking_requests_created_total",
		Help: "Total booking requests created"})

	BookingTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "lifeline", Name: "booking_transitions_total",
		Help: "Booking request status transitions"},
		[]string{"to", "actor"})

	SchedulerFires = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "lifeline", Name: "scheduler_fires_total",
		Help: "Deferred actions fired"})

	SchedulerCancels = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "lifeline", Name: "scheduler_cancels_total",
		Help: "Deferred actions cancelled before firing"})

	NotificationsSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "lifeline", Name: "notifications_total",
		Help: "Email notifications attempted"},
		[]string{"outcome"})
)
