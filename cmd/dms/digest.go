package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Simi445/DMS-K8S/internal/digest"
	"github.com/Simi445/DMS-K8S/internal/notify"
)

func newDigestCmd() *cobra.Command {
	var (
		configPath string
		schedule   string
		daemon     bool
	)

	cmd := &cobra.Command{
		Use:   "digest",
		Short: "Send an activity digest to the configured notifiers",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDigest(cmd, configPath, schedule, daemon)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to config file")
	cmd.Flags().StringVar(&schedule, "schedule", "", "cron schedule (default from config)")
	cmd.Flags().BoolVar(&daemon, "daemon", false, "keep running and fire on the schedule")
	return cmd
}

func runDigest(cmd *cobra.Command, configPath, schedule string, daemon bool) error {
	a, err := newApp(configPath)
	if err != nil {
		return err
	}
	defer a.close()

	st, err := a.openStore()
	if err != nil {
		return err
	}

	notifiers, err := notify.FromConfig(a.cfg.Notify)
	if err != nil {
		return err
	}
	if len(notifiers) == 0 {
		fmt.Fprintln(cmd.ErrOrStderr(), "warning: no notifiers configured; digest will be logged only")
	}

	if schedule == "" {
		schedule = a.cfg.Digest.Schedule
	}

	scheduler, err := digest.NewScheduler(digest.SchedulerOpts{
		Store:     st,
		Notifiers: notifiers,
		Schedule:  schedule,
	})
	if err != nil {
		return err
	}

	if !daemon {
		return scheduler.RunOnce(cmd.Context())
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		select {
		case <-quit:
			cancel()
		case <-ctx.Done():
		}
	}()

	fmt.Fprintf(cmd.OutOrStdout(), "Digest daemon running on schedule %q\n", schedule)
	err = scheduler.Run(ctx)
	if err == context.Canceled {
		return nil
	}
	return err
}
