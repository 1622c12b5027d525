package main

import (
	"context"
	"log"
	"os"

	"github.com/example/signaling-relay/modules/gateway"
	"github.com/example/signaling-relay/modules/registry"
	"github.com/example/signaling-relay/modules/relay"
	"github.com/example/signaling-relay/modules/session"
	"github.com/example/signaling-relay/modules/stats"
	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/go-monolith/mono"
)

func main() {
	cfg := loadConfig()

	app, err := mono.NewMonoApplication(
		mono.WithShutdownTimeout(cfg.ShutdownTimeout),
		mono.WithLogLevel(mono.LogLevelInfo),
		mono.WithLogFormat(mono.LogFormatText),
	)
	if err != nil {
		log.Fatalf("Failed to create application: %v", err)
	}

	logger := app.Logger()
	logger.Info("Starting signaling relay",
		"port", cfg.Gateway.Port,
		"sendBuffer", cfg.Gateway.SendBuffer,
		"maxMessageBytes", cfg.Gateway.MaxMessageBytes,
		"pongWait", cfg.Gateway.PongWait,
		"chatRate", float64(cfg.Session.ChatRate),
		"chatBurst", cfg.Session.ChatBurst)

	// Create modules. The registry and relay are shared in-process because
	// joins, leaves and fan-out must be synchronous.
	registryModule := registry.NewModule(logger.WithModule("registry"))
	relayModule := relay.NewModule(registryModule.Registry(), logger.WithModule("relay"))
	sessionModule := session.NewModule(
		registryModule.Registry(),
		relayModule.Relay(),
		cfg.Session,
		logger.WithModule("session"),
	)
	statsModule := stats.NewModule(logger.WithModule("stats"))
	gatewayModule := gateway.NewModule(cfg.Gateway, logger.WithModule("gateway"))

	gatewayModule.SetSessionManager(sessionModule.Manager())

	// Register modules with the framework.
	// - registry: room state + list-rooms/get-room services
	// - relay: connection table and frame delivery
	// - session: connection lifecycle, event emitter
	// - stats: event consumer + get-stats service
	// - gateway: Fiber HTTP/WebSocket server, depends on registry and stats
	app.Register(registryModule)
	app.Register(relayModule)
	app.Register(sessionModule)
	app.Register(statsModule)
	app.Register(gatewayModule)

	if err := app.Start(context.Background()); err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}

	logger.Info("Application started",
		"websocket", "ws://localhost:"+cfg.Gateway.Port+"/ws",
		"api", "http://localhost:"+cfg.Gateway.Port+"/api/v1/rooms",
		"metrics", "http://localhost:"+cfg.Gateway.Port+"/metrics")

	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		cfg.ShutdownTimeout,
		map[string]gfshutdown.Operation{
			"mono-app": func(ctx context.Context) error {
				logger.Info("Graceful shutdown initiated")
				return app.Stop(ctx)
			},
		},
	)

	exitCode := <-wait
	log.Printf("Application exited with code: %d", exitCode)
	os.Exit(exitCode)
}
