package gateway

import (
	"strings"
	"time"
)

// Config holds the transport settings of the gateway.
type Config struct {
	Port            string
	AllowedOrigins  string
	SendBuffer      int
	MaxMessageBytes int64
	PongWait        time.Duration
	WriteWait       time.Duration
}

// DefaultConfig returns the settings used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		Port:            "3000",
		AllowedOrigins:  "*",
		SendBuffer:      256,
		MaxMessageBytes: 64 * 1024,
		PongWait:        60 * time.Second,
		WriteWait:       10 * time.Second,
	}
}

// pingPeriod must stay below PongWait so a healthy peer is never timed out.
func (c Config) pingPeriod() time.Duration {
	return (c.PongWait * 9) / 10
}

func (c Config) origins() []string {
	var result []string
	for _, o := range strings.Split(c.AllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			result = append(result, o)
		}
	}
	if len(result) == 0 {
		return []string{"*"}
	}
	return result
}
