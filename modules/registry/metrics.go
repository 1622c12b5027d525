package registry

import "github.com/prometheus/client_golang/prometheus"

var (
	roomsGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "signaling_relay_rooms",
			Help: "Current number of rooms with at least one member.",
		},
	)
	membersGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "signaling_relay_room_members",
			Help: "Current number of members across all rooms.",
		},
	)
	joinFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "signaling_relay_join_failures_total",
			Help: "Rejected join attempts by reason.",
		},
		[]string{"reason"},
	)
)

func init() {
	prometheus.MustRegister(roomsGauge, membersGauge, joinFailures)
}

func setGauges(rooms, members int) {
	roomsGauge.Set(float64(rooms))
	membersGauge.Set(float64(members))
}

func incJoinFailure(reason string) {
	joinFailures.WithLabelValues(reason).Inc()
}
