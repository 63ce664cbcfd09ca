package main

import (
	"context"
	"errors"
	"io/fs"
	"log"
	"os"
	"time"

	"github.com/example/channel-board-demo/modules/activity"
	"github.com/example/channel-board-demo/modules/api"
	"github.com/example/channel-board-demo/modules/channel"
	"github.com/example/channel-board-demo/modules/search"
	"github.com/example/channel-board-demo/modules/session"
	"github.com/example/channel-board-demo/modules/slots"
	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/go-monolith/mono"
	"github.com/joho/godotenv"
)

const shutdownTimeout = 30 * time.Second

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("Warning: could not read .env: %v", err)
	}
	cfg := loadConfig()

	log.Println("=== Channel Board Demo ===")
	log.Printf("Storage driver: %s", cfg.Slots.Driver)
	log.Printf("HTTP Port: %d", cfg.HTTPPort)

	logLevel := mono.LogLevelInfo
	if cfg.LogLevel == "error" {
		logLevel = mono.LogLevelError
	}

	app, err := mono.NewMonoApplication(
		mono.WithShutdownTimeout(shutdownTimeout),
		mono.WithLogLevel(logLevel),
		mono.WithLogFormat(mono.LogFormatText),
	)
	if err != nil {
		log.Fatalf("Failed to create mono application: %v", err)
	}
	logger := app.Logger()

	// Plugins start before and stop after every regular module.
	slotsPlugin := slots.NewPluginModule(cfg.Slots, logger)
	if err := app.RegisterPlugin(slotsPlugin, "slots"); err != nil {
		log.Fatalf("Failed to register slots plugin: %v", err)
	}

	apiModule := api.NewModule(api.Config{Port: cfg.HTTPPort, ClientToken: cfg.Token}, logger)
	apiModule.AddHealthCheck("slots", slotsPlugin)

	// Independent modules first, then modules with dependencies
	modules := []mono.Module{
		session.NewModule(logger),
		search.NewModule(logger),
		activity.NewModule(logger),
		channel.NewModule(logger),
		apiModule,
	}
	for _, m := range modules {
		if err := app.Register(m); err != nil {
			log.Fatalf("Failed to register module %s: %v", m.Name(), err)
		}
	}

	if err := app.Start(context.Background()); err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}

	printStartupInfo(cfg.HTTPPort)

	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		shutdownTimeout,
		map[string]gfshutdown.Operation{
			"mono-app": func(ctx context.Context) error {
				log.Println("Graceful shutdown initiated...")
				return app.Stop(ctx)
			},
		},
	)

	exitCode := <-wait
	log.Printf("Application exited with code: %d", exitCode)
	os.Exit(exitCode)
}

func printStartupInfo(port int) {
	log.Println("")
	log.Println("Application started successfully!")
	log.Printf("Open http://localhost:%d", port)
	log.Println("")
	log.Println("Screens:")
	log.Println("  GET    /auth[?mode=signup]             - Login / signup view")
	log.Println("  POST   /auth/login                     - Log in (any password)")
	log.Println("  POST   /auth/signup                    - Sign up (any password)")
	log.Println("  POST   /auth/logout                    - Log out")
	log.Println("  GET    /                               - Channel board")
	log.Println("  GET    /search?q=                      - Search public channels")
	log.Println("")
	log.Println("REST API Endpoints:")
	log.Println("  GET    /api/v1/channels                - List channels")
	log.Println("  POST   /api/v1/channels                - Create a channel")
	log.Println("  DELETE /api/v1/channels/:id            - Delete an owned channel")
	log.Println("  POST   /api/v1/channels/:id/select     - Make a channel active")
	log.Println("  GET    /api/v1/channels/:id/messages   - List messages")
	log.Println("  POST   /api/v1/channels/:id/messages   - Post a message")
	log.Println("  POST   /api/v1/messages                - Post to the active channel")
	log.Println("  GET    /api/v1/activity                - Recent activity")
	log.Println("  GET    /health                         - Health check")
	log.Println("")
	log.Println("Press Ctrl+C to shutdown gracefully")
}
