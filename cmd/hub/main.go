package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"github.com/arcadehub/gamehub/internal/adminhttp"
	"github.com/arcadehub/gamehub/internal/config"
	"github.com/arcadehub/gamehub/internal/hub"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		slog.Error("hub exited with error", "error", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "hub",
		Short: "Game distribution and matchmaking hub",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(configPath)
		},
	}
	defaultConfig := "hub.yaml"
	if env := os.Getenv("HUB_CONFIG"); env != "" {
		defaultConfig = env
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfig, "path to the hub's YAML config file (default from HUB_CONFIG if set)")
	return cmd
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	setLogLevel(cfg.LogLevel)

	promptForPort(cfg)

	srv, err := hub.NewServer(cfg)
	if err != nil {
		return fmt.Errorf("constructing hub server: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	adminSrv := &http.Server{
		Addr:    cfg.AdminBindAddress,
		Handler: adminhttp.NewRouter(srv.Reactor()),
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("admin status surface listening", "address", cfg.AdminBindAddress)
		if err := adminSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("admin http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		return adminSrv.Close()
	})
	g.Go(func() error {
		return srv.Run(gctx)
	})

	return g.Wait()
}

// promptForPort asks for a listen port on an interactive terminal, leaving
// the configured default untouched in non-interactive contexts (tests,
// containers, piped input).
func promptForPort(cfg *config.Hub) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return
	}
	fmt.Printf("Listen port [%d]: ", cfg.Port)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return
	}
	port, err := strconv.Atoi(line)
	if err != nil || port <= 0 || port > 65535 {
		slog.Warn("ignoring invalid port entry, using configured default", "input", line, "default", cfg.Port)
		return
	}
	cfg.Port = port
}

func setLogLevel(level string) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		l = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: l})))
}
