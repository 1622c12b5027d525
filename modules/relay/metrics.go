package relay

import "github.com/prometheus/client_golang/prometheus"

var (
	connectionsGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "signaling_relay_connections",
			Help: "Current number of live connections.",
		},
	)
	framesDelivered = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "signaling_relay_frames_delivered_total",
			Help: "Frames queued to a live connection, by event.",
		},
		[]string{"event"},
	)
	framesDropped = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "signaling_relay_frames_dropped_total",
			Help: "Frames dropped because the target was gone or saturated, by event.",
		},
		[]string{"event"},
	)
)

func init() {
	prometheus.MustRegister(connectionsGauge, framesDelivered, framesDropped)
}

func setConnections(n int) {
	connectionsGauge.Set(float64(n))
}

func addDelivered(event string, n int) {
	if n > 0 {
		framesDelivered.WithLabelValues(event).Add(float64(n))
	}
}

func addDropped(event string, n int) {
	if n > 0 {
		framesDropped.WithLabelValues(event).Add(float64(n))
	}
}
