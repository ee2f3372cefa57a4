package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Simi445/DMS-K8S/internal/api"
	"github.com/Simi445/DMS-K8S/internal/forms"
)

func newDevicesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "devices",
		Short: "Device management commands",
	}

	cmd.AddCommand(newDevicesListCmd())
	cmd.AddCommand(newDevicesAddCmd())
	cmd.AddCommand(newDevicesEditCmd())
	cmd.AddCommand(newDevicesDeleteCmd())
	return cmd
}

func newDevicesListCmd() *cobra.Command {
	var (
		configPath string
		userID     int64
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List devices, optionally filtered by owner",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDevicesList(cmd, configPath, userID)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to config file")
	cmd.Flags().Int64Var(&userID, "user", 0, "only devices owned by this user id")
	return cmd
}

func runDevicesList(cmd *cobra.Command, configPath string, userID int64) error {
	a, err := newApp(configPath)
	if err != nil {
		return err
	}
	defer a.close()
	if _, err := a.requireSession(); err != nil {
		return err
	}

	var devices []api.Device
	if userID != 0 {
		devices, err = a.client.DevicesByUser(cmd.Context(), userID)
	} else {
		devices, err = a.client.Devices(cmd.Context())
	}
	if err != nil {
		return err
	}

	if st, err := a.openStore(); err == nil {
		if err := st.CacheDevices(devices); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: cache devices: %v\n", err)
		}
	}

	if len(devices) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No devices.")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tSTATUS\tMAX kWh\tOWNER")
	for _, d := range devices {
		owner := "unassigned"
		if d.UserID != nil {
			owner = fmt.Sprintf("%d", *d.UserID)
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%.2f\t%s\n", d.DeviceID, d.Name, d.Status, float64(d.MaxConsumption), owner)
	}
	return w.Flush()
}

func newDevicesAddCmd() *cobra.Command {
	var (
		configPath string
		form       forms.DeviceForm
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Register a new device",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(configPath)
			if err != nil {
				return err
			}
			defer a.close()
			if _, err := a.requireSession(); err != nil {
				return err
			}

			req, err := form.ToAddRequest()
			if err != nil {
				return err
			}
			if err := a.client.AddDevice(cmd.Context(), req); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added device %s\n", form.Name)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to config file")
	cmd.Flags().StringVarP(&form.Name, "name", "n", "", "device name (required)")
	cmd.Flags().StringVar(&form.Status, "status", "active", "device status")
	cmd.Flags().StringVar(&form.MaxConsumption, "max", "", "maximum hourly consumption in kWh (required)")
	cmd.Flags().StringVar(&form.AssignedTo, "owner", "", "user id of the owner (empty leaves the device unassigned)")
	cmd.MarkFlagRequired("name")
	cmd.MarkFlagRequired("max")
	return cmd
}

func newDevicesEditCmd() *cobra.Command {
	var (
		configPath string
		deviceID   int64
		form       forms.DeviceForm
	)

	cmd := &cobra.Command{
		Use:   "edit",
		Short: "Edit a device's fields",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(configPath)
			if err != nil {
				return err
			}
			defer a.close()
			if _, err := a.requireSession(); err != nil {
				return err
			}

			req, err := form.ToEditRequest(deviceID)
			if err != nil {
				return err
			}
			if err := a.client.EditDevice(cmd.Context(), req); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated device %d\n", deviceID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to config file")
	cmd.Flags().Int64Var(&deviceID, "id", 0, "device id (required)")
	cmd.Flags().StringVarP(&form.Name, "name", "n", "", "new name (required)")
	cmd.Flags().StringVar(&form.Status, "status", "", "new status (required)")
	cmd.Flags().StringVar(&form.MaxConsumption, "max", "", "new maximum hourly consumption in kWh (required)")
	cmd.Flags().StringVar(&form.AssignedTo, "owner", "", "user id of the owner (empty unassigns the device)")
	cmd.MarkFlagRequired("id")
	cmd.MarkFlagRequired("name")
	cmd.MarkFlagRequired("status")
	cmd.MarkFlagRequired("max")
	return cmd
}

func newDevicesDeleteCmd() *cobra.Command {
	var (
		configPath string
		deviceID   int64
	)

	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete a device",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(configPath)
			if err != nil {
				return err
			}
			defer a.close()
			if _, err := a.requireSession(); err != nil {
				return err
			}

			if err := a.client.DeleteDevice(cmd.Context(), deviceID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted device %d\n", deviceID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to config file")
	cmd.Flags().Int64Var(&deviceID, "id", 0, "device id (required)")
	cmd.MarkFlagRequired("id")
	return cmd
}
