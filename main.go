package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/nstehr/soy/agent"
	"github.com/nstehr/soy/config"
	"github.com/nstehr/soy/ipc"
	"github.com/nstehr/soy/journal"
	"github.com/nstehr/soy/rules"
)

const banner = `
███████╗ ██████╗ ██╗   ██╗
██╔════╝██╔═══██╗╚██╗ ██╔╝
███████╗██║   ██║ ╚████╔╝
╚════██║██║   ██║  ╚██╔╝
███████║╚██████╔╝   ██║
╚══════╝ ╚═════╝    ╚═╝

Worker Economy Sidecar`

var (
	configPath string
	logLevel   string
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "soy",
		Short:        "Worker economy sidecar for SC2 bots",
		SilenceUsage: true,
		RunE:         runServe,
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to YAML config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Override the configured log level")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Listen for bridge connections (default)",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	})
	rootCmd.AddCommand(replayCmd())

	if err := rootCmd.Execute(); err != nil {
		color.Red("Error: %v", err)
		os.Exit(1)
	}
}

// setupLogging installs the default logger. The flag wins over the file.
func setupLogging(cfg config.Config) error {
	level, err := cfg.Level()
	if err != nil {
		return err
	}
	if logLevel != "" {
		if err := level.UnmarshalText([]byte(logLevel)); err != nil {
			return fmt.Errorf("--log-level: %w", err)
		}
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	})))
	return nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := setupLogging(cfg); err != nil {
		return err
	}

	color.New(color.FgCyan, color.Bold).Println(banner)
	slog.Info("starting soy", "transport", cfg.Transport, "race", cfg.Race, "plan", cfg.Plan.Name)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := &server{cfg: cfg, agents: make(map[*agent.Agent]struct{})}
	go srv.reloadOnHangup(ctx)

	switch cfg.Transport {
	case config.TransportWebsocket:
		return srv.listenWebsocket(ctx)
	default:
		return srv.listenUnix(ctx)
	}
}

// server tracks live sessions so a reloaded plan reaches all of them.
type server struct {
	cfg config.Config

	mu     sync.Mutex
	agents map[*agent.Agent]struct{}
}

func (s *server) listenUnix(ctx context.Context) error {
	path := s.cfg.Socket

	// Unix sockets leave behind a file on unclean shutdown; remove it so we can rebind.
	if err := os.RemoveAll(path); err != nil {
		return fmt.Errorf("clean up socket %s: %w", path, err)
	}
	listener, err := net.Listen("unix", path)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", path, err)
	}
	defer os.Remove(path)

	slog.Info("listening on domain socket", "path", path)

	go func() {
		<-ctx.Done()
		listener.Close()
	}()

	for {
		conn, err := listener.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				slog.Info("shutting down")
				return nil
			default:
				slog.Error("failed to accept connection", "error", err)
				continue
			}
		}
		slog.Info("new connection accepted")
		go s.serve(ipc.NewFramedTransport(conn))
	}
}

func (s *server) listenWebsocket(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.Handle("/", ipc.WebsocketHandler(s.serve, s.cfg.ReadTimeout))
	httpSrv := &http.Server{
		Addr:              s.cfg.Listen,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("listening for websocket bridges", "addr", s.cfg.Listen)
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// serve runs one bridge session until its transport closes.
func (s *server) serve(t ipc.Transport) {
	c := ipc.NewConnection(t, nil)
	opts := agent.Options{Race: s.cfg.DefaultRace(), Plan: s.plan()}

	if s.cfg.JournalDir != "" {
		w, err := journal.Create(s.cfg.JournalDir)
		if err != nil {
			slog.Warn("journal disabled for session", "error", err)
		} else {
			slog.Info("journaling session", "path", w.Path(), "session", w.Session())
			opts.Journal = w
			defer func() {
				if err := w.Close(); err != nil {
					slog.Error("failed to close journal", "path", w.Path(), "error", err)
				}
			}()
		}
	}

	a := agent.New(c, opts)
	s.track(a)
	defer s.untrack(a)

	c.RegisterHandler(ipc.TypeHello, a.HandleHello)
	c.RegisterHandler(ipc.TypeTick, a.HandleTick)
	c.ReadLoop()
}

func (s *server) track(a *agent.Agent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.agents[a] = struct{}{}
}

func (s *server) untrack(a *agent.Agent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.agents, a)
}

func (s *server) plan() rules.Plan {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg.Plan
}

// reloadOnHangup re-reads the plan from the config file on SIGHUP and
// swaps it into every live session. Other settings need a restart.
func (s *server) reloadOnHangup(ctx context.Context) {
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)

	for {
		select {
		case <-ctx.Done():
			return
		case <-hup:
		}
		cfg, err := config.Load(configPath)
		if err != nil {
			slog.Error("plan reload failed", "error", err)
			continue
		}

		s.mu.Lock()
		s.cfg.Plan = cfg.Plan
		live := make([]*agent.Agent, 0, len(s.agents))
		for a := range s.agents {
			live = append(live, a)
		}
		s.mu.Unlock()

		for _, a := range live {
			if err := a.SetPlan(cfg.Plan); err != nil {
				slog.Error("plan swap failed", "player", a.Player(), "error", err)
			}
		}
		slog.Info("plan reloaded", "plan", cfg.Plan.Name, "sessions", len(live))
	}
}
