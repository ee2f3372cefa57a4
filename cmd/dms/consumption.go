package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Simi445/DMS-K8S/internal/api"
	"github.com/Simi445/DMS-K8S/internal/consumption"
)

func newConsumptionCmd() *cobra.Command {
	var (
		configPath string
		userID     int64
		date       string
		chart      string
	)

	cmd := &cobra.Command{
		Use:   "consumption",
		Short: "Show a device owner's hourly consumption chart",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConsumption(cmd, configPath, userID, date, chart)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to config file")
	cmd.Flags().Int64Var(&userID, "user", 0, "user id to chart (required)")
	cmd.Flags().StringVar(&date, "date", "", "day to chart, YYYY-MM-DD (default today)")
	cmd.Flags().StringVar(&chart, "chart", "line", "chart style: line or bar")
	cmd.MarkFlagRequired("user")
	return cmd
}

func runConsumption(cmd *cobra.Command, configPath string, userID int64, date, chart string) error {
	a, err := newApp(configPath)
	if err != nil {
		return err
	}
	defer a.close()
	if _, err := a.requireSession(); err != nil {
		return err
	}

	style, err := consumption.ParseStyle(chart)
	if err != nil {
		return err
	}

	day := time.Now()
	if date != "" {
		day, err = time.Parse(api.DateLayout, date)
		if err != nil {
			return fmt.Errorf("invalid date %q: want %s", date, api.DateLayout)
		}
	}

	samples, err := a.client.Consumptions(cmd.Context(), userID, day)
	if err != nil {
		return err
	}

	buckets := consumption.HourlyAverages(samples)
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Consumption for user %d on %s\n\n", userID, day.Format(api.DateLayout))
	fmt.Fprintln(out, consumption.Render(buckets, style))

	hour, value := consumption.Peak(buckets)
	if hour < 0 {
		fmt.Fprintln(out, "No consumption recorded.")
		return nil
	}
	fmt.Fprintf(out, "Total: %.2f kWh, peak %.2f kWh at %02d:00\n", consumption.Total(buckets), value, hour)
	return nil
}
