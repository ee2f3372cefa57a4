package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Simi445/DMS-K8S/internal/alerts"
	"github.com/Simi445/DMS-K8S/internal/notify"
	"github.com/Simi445/DMS-K8S/internal/realtime"
)

func newWatchCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Watch for overconsumption alerts in the foreground",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd, configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to config file")
	return cmd
}

func runWatch(cmd *cobra.Command, configPath string) error {
	a, err := newApp(configPath)
	if err != nil {
		return err
	}
	defer a.close()
	claims, err := a.requireSession()
	if err != nil {
		return err
	}

	notifiers, err := notify.FromConfig(a.cfg.Notify)
	if err != nil {
		return err
	}

	var recorder alerts.Recorder
	if st, err := a.openStore(); err == nil {
		recorder = st
	} else {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: alert archive disabled: %v\n", err)
	}

	channel, err := realtime.Dial(cmd.Context(), realtime.Opts{
		BaseURL:    a.cfg.Server.BaseURL,
		SocketPath: a.cfg.Server.SocketPath,
	})
	if err != nil {
		return err
	}
	defer channel.Close()

	out := cmd.OutOrStdout()
	listener, err := alerts.NewListener(alerts.ListenerOpts{
		Channel:   channel,
		UserID:    fmt.Sprintf("%d", claims.AuthID),
		Notifiers: notifiers,
		Recorder:  recorder,
		OnChange: func(alert *alerts.Alert) {
			if alert == nil {
				fmt.Fprintln(out, "[alert cleared]")
				return
			}
			fmt.Fprintf(out, "[ALERT] %s\n", alert.Message)
		},
	})
	if err != nil {
		return err
	}

	listener.Start()
	defer listener.Stop()

	fmt.Fprintf(out, "Watching alerts for user %d (%d notifier(s) configured). Ctrl-C to stop.\n",
		claims.AuthID, len(notifiers))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case <-cmd.Context().Done():
	}
	fmt.Fprintln(out, "Stopping.")
	return nil
}
