package stats

import "github.com/prometheus/client_golang/prometheus"

var (
	domainEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "signaling_relay_domain_events_total",
			Help: "Domain events consumed from the event bus, by event name.",
		},
		[]string{"event"},
	)
	chatDeliveries = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "signaling_relay_chat_deliveries_total",
			Help: "Chat frames handed to room members.",
		},
	)
)

func init() {
	prometheus.MustRegister(domainEvents, chatDeliveries)
}

func observe(event string) {
	domainEvents.WithLabelValues(event).Inc()
}
