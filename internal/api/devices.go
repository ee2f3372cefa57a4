package api

import (
	"context"
	"fmt"
)

// UnassignedOwner is the assignedTo sentinel for devices without an owner.
const UnassignedOwner = "no_user"

// AddDeviceRequest is the payload for POST /add-device.
type AddDeviceRequest struct {
	Name           string `json:"name"`
	Status         string `json:"status"`
	MaxConsumption string `json:"maxConsumption"`
	AssignedTo     string `json:"assignedTo"` // user id or UnassignedOwner
}

// EditDeviceRequest is the payload for PUT /edit-device.
type EditDeviceRequest struct {
	DeviceID       int64  `json:"device_id"`
	Name           string `json:"name"`
	Status         string `json:"status"`
	MaxConsumption string `json:"maxConsumption"`
	AssignedTo     string `json:"assignedTo"`
}

// Devices lists every device. Admin-only on the server side.
func (c *Client) Devices(ctx context.Context) ([]Device, error) {
	var resp struct {
		Devices []Device `json:"devices"`
	}
	if err := c.do(ctx, "GET", "/devices", nil, &resp, true); err != nil {
		return nil, err
	}
	return resp.Devices, nil
}

// DevicesByUser lists devices owned by one user.
func (c *Client) DevicesByUser(ctx context.Context, userID int64) ([]Device, error) {
	var resp struct {
		Devices []Device `json:"devices"`
	}
	path := fmt.Sprintf("/devices/%d", userID)
	if err := c.do(ctx, "GET", path, nil, &resp, true); err != nil {
		return nil, err
	}
	return resp.Devices, nil
}

// AddDevice creates a device.
func (c *Client) AddDevice(ctx context.Context, req AddDeviceRequest) error {
	return c.do(ctx, "POST", "/add-device", req, nil, true)
}

// EditDevice updates a device.
func (c *Client) EditDevice(ctx context.Context, req EditDeviceRequest) error {
	return c.do(ctx, "PUT", "/edit-device", req, nil, true)
}

// DeleteDevice removes a device.
func (c *Client) DeleteDevice(ctx context.Context, deviceID int64) error {
	body := struct {
		DeviceID int64 `json:"device_id"`
	}{DeviceID: deviceID}
	return c.do(ctx, "DELETE", "/delete-device", body, nil, true)
}
