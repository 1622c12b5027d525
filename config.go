package main

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/example/signaling-relay/modules/gateway"
	"github.com/example/signaling-relay/modules/session"
	"golang.org/x/time/rate"
)

// appConfig is the process configuration read from the environment.
type appConfig struct {
	Gateway         gateway.Config
	Session         session.Config
	ShutdownTimeout time.Duration
}

func loadConfig() appConfig {
	gw := gateway.DefaultConfig()
	gw.Port = getEnv("PORT", gw.Port)
	gw.AllowedOrigins = getEnv("CORS_ALLOWED_ORIGINS", gw.AllowedOrigins)
	gw.SendBuffer = getEnvInt("SEND_BUFFER", gw.SendBuffer)
	gw.MaxMessageBytes = int64(getEnvInt("MAX_MESSAGE_BYTES", int(gw.MaxMessageBytes)))
	gw.PongWait = getEnvDuration("PONG_WAIT", gw.PongWait)

	sess := session.DefaultConfig()
	sess.ChatRate = rate.Limit(getEnvFloat("CHAT_RATE", float64(sess.ChatRate)))
	sess.ChatBurst = getEnvInt("CHAT_BURST", sess.ChatBurst)

	return appConfig{
		Gateway:         gw,
		Session:         sess,
		ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 30*time.Second),
	}
}

// getEnv returns environment variable value or default.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt returns environment variable as int or default.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil && intVal > 0 {
			return intVal
		}
		log.Printf("Warning: invalid int value for %s: %s, using default: %d", key, value, defaultValue)
	}
	return defaultValue
}

// getEnvFloat returns environment variable as a positive float or default.
func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil && floatVal > 0 {
			return floatVal
		}
		log.Printf("Warning: invalid float value for %s: %s, using default: %g", key, value, defaultValue)
	}
	return defaultValue
}

// getEnvDuration returns environment variable as duration or default.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil && duration > 0 {
			return duration
		}
		log.Printf("Warning: invalid duration value for %s: %s, using default: %s", key, value, defaultValue)
	}
	return defaultValue
}
