// Command martian-robots runs the Martian robots simulator.
//
// It supports three commands:
//  1. "serve" (default) – runs the HTTP server exposing the REST API, WebSocket replays, and an /mcp HTTP endpoint
//  2. "stdio-mcp" – runs an MCP stdio server and spins up an internal HTTP API if none is available
//  3. "simulate" – runs a mission file (or stdin) and prints one line per robot
//
// Flags control host/port, the mission directory, the settings file, debug
// logging, and optional ngrok tunneling for easy external access during development.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"
	"github.com/urfave/cli/v3"
	"github.com/wricardo/martian-robots/api"
	"github.com/wricardo/martian-robots/game/config"
	"github.com/wricardo/martian-robots/game/engine"
	"github.com/wricardo/martian-robots/game/protocol"
	"github.com/wricardo/martian-robots/game/service"
	"github.com/wricardo/martian-robots/game/session"
	"github.com/wricardo/martian-robots/transport/mcp"
	"github.com/wricardo/martian-robots/transport/websocket"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Martian Robots Simulator"
)

// main loads .env, then hands off to the CLI.
func main() {
	// Load .env file if it exists (ignore error if not found)
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			log.Printf("Warning: Error loading .env file: %v", err)
		}
	} else {
		log.Println("Loaded environment variables from .env file")
	}

	if err := newApp().Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

// newApp builds the command tree. Flags on the root are visible to every command.
func newApp() *cli.Command {
	return &cli.Command{
		Name:    "martian-robots",
		Usage:   AppName,
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "host",
				Value:   "localhost",
				Usage:   "HTTP server host",
				Sources: cli.EnvVars("HOST"),
			},
			&cli.IntFlag{
				Name:    "port",
				Value:   8080,
				Usage:   "HTTP server port",
				Sources: cli.EnvVars("PORT"),
			},
			&cli.StringFlag{
				Name:    "mission-dir",
				Usage:   "Directory containing mission files (overrides missions.dir)",
				Sources: cli.EnvVars("MISSION_DIR"),
			},
			&cli.StringFlag{
				Name:    "config",
				Usage:   "Settings file (default: marsrover.{toml,yaml,json} in the working directory)",
				Sources: cli.EnvVars("MARS_CONFIG"),
			},
			&cli.BoolFlag{
				Name:    "debug",
				Usage:   "Enable debug logging",
				Sources: cli.EnvVars("DEBUG"),
			},
			&cli.BoolFlag{
				Name:    "ngrok",
				Usage:   "Enable ngrok tunnel",
				Sources: cli.EnvVars("NGROK_ENABLED"),
			},
			&cli.StringFlag{
				Name:    "ngrok-auth",
				Usage:   "Ngrok auth token",
				Sources: cli.EnvVars("NGROK_AUTHTOKEN", "NGROK_AUTH_TOKEN"),
			},
			&cli.StringFlag{
				Name:    "ngrok-domain",
				Usage:   "Custom ngrok domain (optional)",
				Sources: cli.EnvVars("NGROK_DOMAIN"),
			},
		},
		Action: runServe,
		Commands: []*cli.Command{
			{
				Name:    "serve",
				Aliases: []string{"server", "http"},
				Usage:   "Run HTTP server with API, WebSocket, and MCP endpoint",
				Action:  runServe,
			},
			{
				Name:    "stdio-mcp",
				Aliases: []string{"mcp-stdio", "mcp"},
				Usage:   "Run MCP stdio server with internal HTTP server",
				Action:  runStdioMCP,
			},
			{
				Name:      "simulate",
				Usage:     "Run a mission and print the results",
				ArgsUsage: "[file]",
				Action:    runSimulate,
			},
		},
	}
}

// setupLogging applies the --debug flag
func setupLogging(cmd *cli.Command) {
	if cmd.Bool("debug") {
		log.SetFlags(log.LstdFlags | log.Lshortfile)
	} else {
		log.SetFlags(log.LstdFlags)
	}
}

// loadSettings reads the settings file and applies flag overrides
func loadSettings(cmd *cli.Command) (config.Settings, error) {
	settings, err := config.LoadSettings(cmd.String("config"))
	if err != nil {
		return config.Settings{}, err
	}
	if dir := cmd.String("mission-dir"); dir != "" {
		settings.Missions.Dir = dir
	}
	return settings, nil
}

// initializeServices wires the mission catalogue, session manager and simulation service.
// The mission directory is created when it does not exist yet.
func initializeServices(settings config.Settings) (service.SimulationService, *session.Manager, error) {
	rules, err := settings.EngineRules()
	if err != nil {
		return nil, nil, err
	}

	if dir := settings.Missions.Dir; dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, nil, fmt.Errorf("failed to create mission directory: %w", err)
		}
	}

	missionManager, err := config.NewManagerWithLimits(settings.Missions.Dir, settings.Limits())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create mission manager: %w", err)
	}

	if name := settings.Missions.Default; name != "" && name != config.DefaultMissionName {
		if err := missionManager.SetDefault(name); err != nil {
			return nil, nil, fmt.Errorf("missions.default: %w", err)
		}
	}

	sessionManager := session.NewManager()

	simulationService := service.NewSimulationService(sessionManager, missionManager, service.Options{
		Rules:  rules,
		Limits: settings.Limits(),
	})

	log.Printf("Loaded %d missions from %q (scent mode: %s)", missionManager.Count(), settings.Missions.Dir, rules.ScentMode)
	return simulationService, sessionManager, nil
}

// newMCPHandler answers single JSON-RPC messages posted to /mcp
func newMCPHandler(mcpClient *mcp.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		response := mcpClient.GetMCPServer().HandleMessage(r.Context(), body)

		w.Header().Set("Content-Type", "application/json")
		responseData, err := json.Marshal(response)
		if err != nil {
			http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
			return
		}
		w.Write(responseData)
	}
}

// runServe starts the HTTP server with REST API, WebSocket hub, and an /mcp proxy endpoint.
// If ngrok is enabled, it also provisions a public tunnel.
func runServe(ctx context.Context, cmd *cli.Command) error {
	setupLogging(cmd)
	log.Printf("Starting %s v%s (mode: serve)", AppName, Version)

	settings, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	simulationService, sessionManager, err := initializeServices(settings)
	if err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}

	// Cancelled on SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	sessionManager.StartCleanup(ctx, settings.Sessions.CleanupInterval, settings.Sessions.TTL)

	hub := websocket.NewHub()
	go hub.Run(ctx)

	apiServer := api.NewServer(simulationService, hub)

	addr := fmt.Sprintf("%s:%d", cmd.String("host"), int(cmd.Int("port")))
	mcpClient := mcp.NewClient(fmt.Sprintf("http://%s", addr))

	mainRouter := http.NewServeMux()
	mainRouter.Handle("/", apiServer)
	mainRouter.HandleFunc("/mcp", newMCPHandler(mcpClient))

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      mainRouter,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	var wg sync.WaitGroup
	serveErr := make(chan error, 1)

	wg.Add(1)
	go func() {
		defer wg.Done()

		log.Printf("HTTP server listening on %s", addr)
		log.Printf("REST API: http://%s/api", addr)
		log.Printf("WebSocket: ws://%s/ws?session=<session_id>", addr)
		log.Printf("MCP endpoint: http://%s/mcp", addr)

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
			stop()
		}
	}()

	if cmd.Bool("ngrok") {
		wg.Add(1)
		go func() {
			defer wg.Done()
			runNgrok(ctx, cmd.String("ngrok-auth"), cmd.String("ngrok-domain"), mainRouter)
		}()
	}

	<-ctx.Done()
	log.Println("Shutting down...")

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}

	wg.Wait()
	log.Println("Server stopped")

	select {
	case err := <-serveErr:
		return fmt.Errorf("HTTP server failed: %w", err)
	default:
		return nil
	}
}

// runNgrok exposes handler through an ngrok tunnel until ctx is cancelled
func runNgrok(ctx context.Context, authToken, domain string, handler http.Handler) {
	if authToken == "" {
		log.Println("WARNING: Ngrok enabled but no auth token provided (use --ngrok-auth, NGROK_AUTHTOKEN, or NGROK_AUTH_TOKEN env var)")
		return
	}

	log.Println("Starting ngrok tunnel...")

	var tunnel ngrokConfig.Tunnel
	if domain != "" {
		tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(domain))
		log.Printf("Using custom ngrok domain: %s", domain)
	} else {
		tunnel = ngrokConfig.HTTPEndpoint()
	}

	tun, err := ngrok.Listen(ctx, tunnel, ngrok.WithAuthtoken(authToken))
	if err != nil {
		log.Printf("Failed to start ngrok tunnel: %v", err)
		return
	}

	go func() {
		<-ctx.Done()
		if err := tun.Close(); err != nil {
			log.Printf("Failed to close ngrok tunnel: %v", err)
		}
	}()

	ngrokURL := tun.URL()
	log.Printf("🚀 Ngrok tunnel established: %s", ngrokURL)
	log.Printf("  REST API (ngrok): %s/api", ngrokURL)
	log.Printf("  WebSocket (ngrok): %s/ws?session=<session_id>", ngrokURL)
	log.Printf("  MCP endpoint (ngrok): %s/mcp", ngrokURL)

	if err := http.Serve(tun, handler); err != nil && !errors.Is(err, http.ErrServerClosed) && ctx.Err() == nil {
		log.Printf("Ngrok server error: %v", err)
	}
	log.Println("Ngrok tunnel closed")
}

// runStdioMCP runs an MCP stdio server.
// It tries to reuse an external API at the configured host/port; if unavailable, it
// starts a minimal internal HTTP API bound to a random loopback port and targets that.
func runStdioMCP(ctx context.Context, cmd *cli.Command) error {
	setupLogging(cmd)

	externalURL := fmt.Sprintf("http://%s:%d", cmd.String("host"), int(cmd.Int("port")))
	baseURL := externalURL

	log.Printf("Checking for external API server at %s...", externalURL)
	testClient := &http.Client{Timeout: 2 * time.Second}
	resp, err := testClient.Get(externalURL + "/healthz")
	if err == nil && resp.StatusCode < 500 {
		resp.Body.Close()
		log.Printf("External API server found at %s, using it for MCP", externalURL)
	} else {
		log.Printf("No external API server found, starting internal HTTP server")

		settings, err := loadSettings(cmd)
		if err != nil {
			return err
		}
		simulationService, sessionManager, err := initializeServices(settings)
		if err != nil {
			return fmt.Errorf("failed to initialize services: %w", err)
		}
		sessionManager.StartCleanup(ctx, settings.Sessions.CleanupInterval, settings.Sessions.TTL)

		listener, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			return fmt.Errorf("failed to get available port: %w", err)
		}

		internalAddr := listener.Addr().String()
		log.Printf("Starting internal HTTP server on %s for MCP stdio", internalAddr)

		hub := websocket.NewHub()
		go hub.Run(ctx)

		httpServer := &http.Server{Handler: api.NewServer(simulationService, hub)}
		defer httpServer.Close()

		go func() {
			if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Printf("Internal HTTP server error: %v", err)
			}
		}()

		baseURL = fmt.Sprintf("http://%s", internalAddr)
	}

	mcpClient := mcp.NewClient(baseURL)
	log.Printf("MCP stdio server ready (API: %s)", baseURL)

	if err := server.ServeStdio(mcpClient.GetMCPServer()); err != nil {
		return fmt.Errorf("MCP stdio server error: %w", err)
	}
	return nil
}

// runSimulate reads a mission from the named file, or stdin when the
// argument is missing or "-", and prints the results.
func runSimulate(ctx context.Context, cmd *cli.Command) error {
	setupLogging(cmd)

	settings, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	in := io.Reader(os.Stdin)
	if name := cmd.Args().First(); name != "" && name != "-" {
		f, err := os.Open(name)
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}

	return simulateMission(in, os.Stdout, settings)
}

// simulateMission parses and runs one mission, writing the output lines to w
func simulateMission(r io.Reader, w io.Writer, settings config.Settings) error {
	rules, err := settings.EngineRules()
	if err != nil {
		return err
	}

	input, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("read mission: %w", err)
	}

	mission, err := protocol.NewParser(settings.Limits()).Parse(string(input))
	if err != nil {
		return err
	}

	results := engine.Run(mission.Grid, mission.Robots, rules.ScentMode)
	_, err = fmt.Fprintln(w, protocol.FormatResults(results))
	return err
}
