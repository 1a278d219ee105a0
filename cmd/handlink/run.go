package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ayusman/handlink/internal/action"
	"github.com/ayusman/handlink/internal/app"
	"github.com/ayusman/handlink/internal/config"
	"github.com/ayusman/handlink/internal/logging"
	"github.com/ayusman/handlink/internal/metric"
	"github.com/ayusman/handlink/internal/plugin"
	"github.com/ayusman/handlink/internal/server"
	"github.com/ayusman/handlink/internal/store"
	"github.com/ayusman/handlink/internal/tray"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Connect to the tracking service and deliver input actions",
		Long: `Connects to the tracking service, loads the plugin chain from the plugin
directory and keeps the session running until interrupted. With --addr a
local HTTP server exposes state, sessions, metrics and a WebSocket feed of
delivered input actions.`,
	}
	cmd.Flags().String("url", "", "Tracking service WebSocket URL")
	cmd.Flags().String("addr", "", "Listen address of the status server, empty to disable")
	cmd.Flags().String("db", "", "Analytics SQLite path, empty to disable")
	cmd.Flags().Bool("tray", false, "Show the system tray icon")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("url") {
			cfg.Service.URL, _ = cmd.Flags().GetString("url")
		}
		if cmd.Flags().Changed("addr") {
			cfg.Server.Addr, _ = cmd.Flags().GetString("addr")
		}
		if cmd.Flags().Changed("db") {
			cfg.Store.Path, _ = cmd.Flags().GetString("db")
		}
		if cmd.Flags().Changed("tray") {
			cfg.Tray.Enabled, _ = cmd.Flags().GetBool("tray")
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return run(ctx, cfg)
	}
	return cmd
}

func run(ctx context.Context, cfg *config.Config) error {
	log := logging.NewLogger("main")
	reg := metric.NewRegistry()

	var st *store.Store
	if cfg.Store.Path != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.Store.Path), 0755); err != nil {
			return fmt.Errorf("failed to create data directory: %w", err)
		}
		var err error
		st, err = store.New(cfg.Store.Path)
		if err != nil {
			return fmt.Errorf("failed to initialize store: %w", err)
		}
		defer st.Close()
	}

	sess := app.New(app.Config{
		ServiceURL:       cfg.Service.URL,
		HandshakeTimeout: cfg.Service.HandshakeTimeout,
		APIVersion:       cfg.Service.APIVersion,
		TickInterval:     cfg.Loop.TickInterval,
		PluginDir:        cfg.Plugins.Dir,
		Store:            st,
		FlushInterval:    cfg.Store.FlushInterval,
		Application:      "handlink",
		Metrics:          reg.Metrics,
	})
	if err := sess.LoadPlugins(); err != nil {
		return fmt.Errorf("failed to load plugins: %w", err)
	}
	log.WithField("plugins", sess.Plugins()).Info("Plugin chain installed")

	sess.OnPluginFault(func(fe *plugin.FaultError) {
		log.WithError(fe).Warn("Plugin failed, sample dropped")
	})

	if cfg.Server.Addr != "" {
		srv := server.New(server.Config{
			StaticDir: findWebDir(),
			Store:     st,
			State:     sess,
			Gatherer:  reg.Prometheus(),
			Log:       logging.NewLogger("server"),
		})
		sess.OnInputAction(srv.Feed().Publish)

		httpSrv := &http.Server{Addr: cfg.Server.Addr, Handler: srv}
		go func() {
			log.WithField("addr", cfg.Server.Addr).Info("Starting status server")
			if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.WithError(err).Error("Status server failed")
			}
		}()
		defer httpSrv.Close()
	}

	if !cfg.Tray.Enabled {
		return sess.Run(ctx)
	}

	t := tray.New()
	wireTray(t, sess, cfg.Server.Addr)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	t.OnQuit(cancel)

	if err := sess.Start(ctx); err != nil {
		sess.Stop()
		return err
	}
	go func() {
		<-ctx.Done()
		t.Quit()
	}()
	// systray needs the main goroutine on some platforms.
	t.Run()
	cancel()
	sess.Stop()
	return nil
}

// wireTray mirrors session state into the tray menu.
func wireTray(t *tray.Tray, sess *app.Session, addr string) {
	log := logging.NewLogger("tray")

	t.OnToggle(sess.SetEnabled)
	t.OnStatus(func() {
		if addr == "" {
			log.Info("Status server is disabled")
			return
		}
		log.WithField("url", "http://"+addr+"/api/state").Info("Status page")
	})

	sess.OnTrackingServiceChange(t.SetTrackingState)
	sess.OnHandFound(func() { t.SetHandPresence(action.HandFound) })
	sess.OnHandsLost(func() { t.SetHandPresence(action.HandsLost) })
	sess.OnInputAction(t.SetLastAction)
}

// findWebDir searches for the web directory in common locations.
// It checks: "web", "../web" and ~/.handlink/web.
// Returns the first existing directory or empty string if none found.
func findWebDir() string {
	for _, p := range []string{"web", "../web"} {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			if abs, err := filepath.Abs(p); err == nil {
				return abs
			}
			return p
		}
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	homeWebDir := filepath.Join(homeDir, ".handlink", "web")
	if info, err := os.Stat(homeWebDir); err == nil && info.IsDir() {
		return homeWebDir
	}
	return ""
}
