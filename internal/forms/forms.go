// Package forms validates user input before it reaches the network. Each
// form mirrors one mutation endpoint: required-field checks and the
// registration password confirmation run client-side; everything else is the
// server's call.
package forms

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/Simi445/DMS-K8S/internal/api"
)

// MaxDeviceConsumption caps the device consumption limit, matching the
// portal form's input bounds.
const MaxDeviceConsumption = 5000

// ErrPasswordMismatch is the registration confirm-password failure. The
// message text is surfaced verbatim to the user.
var ErrPasswordMismatch = fmt.Errorf("Passwords do not match")

// RegisterForm collects the registration fields.
type RegisterForm struct {
	Username        string
	Email           string
	Role            string
	Password        string
	ConfirmPassword string
}

// Validate checks the form and returns the request to send. The confirm
// password never leaves the client.
func (f RegisterForm) Validate() (api.RegisterRequest, error) {
	var zero api.RegisterRequest
	if err := required(map[string]string{
		"username": f.Username,
		"email":    f.Email,
		"role":     f.Role,
		"password": f.Password,
	}); err != nil {
		return zero, err
	}
	if f.Password != f.ConfirmPassword {
		return zero, ErrPasswordMismatch
	}
	if f.Role != "user" && f.Role != "admin" {
		return zero, fmt.Errorf("forms: role must be user or admin")
	}
	return api.RegisterRequest{
		Username: f.Username,
		Email:    f.Email,
		Role:     f.Role,
		Password: f.Password,
	}, nil
}

// LoginForm collects the login fields.
type LoginForm struct {
	Username string
	Password string
}

// Validate checks the form and returns the request to send.
func (f LoginForm) Validate() (api.LoginRequest, error) {
	var zero api.LoginRequest
	if err := required(map[string]string{
		"username": f.Username,
		"password": f.Password,
	}); err != nil {
		return zero, err
	}
	return api.LoginRequest{Username: f.Username, Password: f.Password}, nil
}

// DeviceForm collects the add/edit device fields. AssignedTo is a user id,
// or empty/"no_user" for unassigned.
type DeviceForm struct {
	Name           string
	Status         string
	MaxConsumption string
	AssignedTo     string
}

// Validate checks the form fields shared by add and edit.
func (f DeviceForm) validate() error {
	if err := required(map[string]string{
		"name":   f.Name,
		"status": f.Status,
	}); err != nil {
		return err
	}
	if f.Status != "active" && f.Status != "inactive" {
		return fmt.Errorf("forms: status must be active or inactive")
	}
	if f.MaxConsumption != "" {
		v, err := strconv.ParseFloat(f.MaxConsumption, 64)
		if err != nil {
			return fmt.Errorf("forms: max consumption %q is not a number", f.MaxConsumption)
		}
		if v < 0 || v > MaxDeviceConsumption {
			return fmt.Errorf("forms: max consumption must be between 0 and %d", MaxDeviceConsumption)
		}
	}
	return nil
}

// assignedTo normalizes the owner field to the wire sentinel.
func (f DeviceForm) assignedTo() string {
	if strings.TrimSpace(f.AssignedTo) == "" {
		return api.UnassignedOwner
	}
	return f.AssignedTo
}

// ToAddRequest validates and builds the add-device payload.
func (f DeviceForm) ToAddRequest() (api.AddDeviceRequest, error) {
	if err := f.validate(); err != nil {
		return api.AddDeviceRequest{}, err
	}
	return api.AddDeviceRequest{
		Name:           f.Name,
		Status:         f.Status,
		MaxConsumption: f.MaxConsumption,
		AssignedTo:     f.assignedTo(),
	}, nil
}

// ToEditRequest validates and builds the edit-device payload.
func (f DeviceForm) ToEditRequest(deviceID int64) (api.EditDeviceRequest, error) {
	if err := f.validate(); err != nil {
		return api.EditDeviceRequest{}, err
	}
	return api.EditDeviceRequest{
		DeviceID:       deviceID,
		Name:           f.Name,
		Status:         f.Status,
		MaxConsumption: f.MaxConsumption,
		AssignedTo:     f.assignedTo(),
	}, nil
}

// UserForm collects the admin edit-user fields.
type UserForm struct {
	Username string
	Email    string
	Role     string
}

// ToEditRequest validates and builds the edit-user payload.
func (f UserForm) ToEditRequest(authID int64) (api.EditUserRequest, error) {
	var zero api.EditUserRequest
	if err := required(map[string]string{
		"username": f.Username,
		"email":    f.Email,
		"role":     f.Role,
	}); err != nil {
		return zero, err
	}
	return api.EditUserRequest{
		AuthID:   authID,
		Username: f.Username,
		Email:    f.Email,
		Role:     f.Role,
	}, nil
}

// required reports the first empty field, in stable order.
func required(fields map[string]string) error {
	var missing []string
	for name, v := range fields {
		if strings.TrimSpace(v) == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	sort.Strings(missing)
	return fmt.Errorf("forms: required: %s", strings.Join(missing, ", "))
}
