package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Simi445/DMS-K8S/internal/api"
)

func TestUsersCmd_Help(t *testing.T) {
	out, err := runCLI(t, "users", "--help")
	if err != nil {
		t.Fatalf("users --help failed: %v", err)
	}
	for _, sub := range []string{"list", "add", "edit", "delete"} {
		if !strings.Contains(out, sub) {
			t.Errorf("expected help to list %q subcommand, got: %s", sub, out)
		}
	}
}

func TestNewUsersEditCmd(t *testing.T) {
	cmd := newUsersEditCmd()
	if cmd.Use != "edit" {
		t.Errorf("Use = %q, want %q", cmd.Use, "edit")
	}
	for _, name := range []string{"id", "username", "email", "role", "config"} {
		if cmd.Flags().Lookup(name) == nil {
			t.Errorf("expected --%s flag", name)
		}
	}
}

func TestUsersAddCmd_RegistersOnce(t *testing.T) {
	var posts int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" || r.URL.Path != "/register" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		posts++
		var req api.RegisterRequest
		json.NewDecoder(r.Body).Decode(&req)
		if req.Username != "bob" || req.Role != "user" {
			t.Errorf("payload = %+v", req)
		}
		json.NewEncoder(w).Encode(map[string]string{"token": "new-account-token"})
	}))
	defer srv.Close()

	adminToken := portalToken(t, 1, "root", "admin")
	cfg := writeConfig(t, srv.URL, adminToken)
	out, err := runCLI(t, "users", "add", "-c", cfg,
		"-u", "bob", "--email", "b@x.com", "--password", "secret12")
	if err != nil {
		t.Fatalf("users add failed: %v", err)
	}
	if posts != 1 {
		t.Errorf("posts = %d, want exactly 1", posts)
	}
	if !strings.Contains(out, "Created user bob") {
		t.Errorf("output = %q", out)
	}
}

func TestUsersEditCmd_PutsOnce(t *testing.T) {
	var puts int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "PUT" || r.URL.Path != "/edit-user" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		puts++
		var req api.EditUserRequest
		json.NewDecoder(r.Body).Decode(&req)
		if req.AuthID != 11 || req.Role != "admin" {
			t.Errorf("payload = %+v", req)
		}
		json.NewEncoder(w).Encode(map[string]string{"ok": "User updated"})
	}))
	defer srv.Close()

	cfg := writeConfig(t, srv.URL, portalToken(t, 1, "root", "admin"))
	out, err := runCLI(t, "users", "edit", "-c", cfg, "--id", "11",
		"-u", "alice", "--email", "a@x.com", "--role", "admin")
	if err != nil {
		t.Fatalf("users edit failed: %v", err)
	}
	if puts != 1 {
		t.Errorf("puts = %d, want exactly 1", puts)
	}
	if !strings.Contains(out, "Updated user 11") {
		t.Errorf("output = %q", out)
	}
}

func TestUsersDeleteCmd_DeletesOnce(t *testing.T) {
	var deletes int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "DELETE" || r.URL.Path != "/delete-user" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		deletes++
		var body map[string]int64
		json.NewDecoder(r.Body).Decode(&body)
		if body["auth_id"] != 11 {
			t.Errorf("body = %v", body)
		}
		json.NewEncoder(w).Encode(map[string]string{"ok": "User deleted"})
	}))
	defer srv.Close()

	cfg := writeConfig(t, srv.URL, portalToken(t, 1, "root", "admin"))
	if _, err := runCLI(t, "users", "delete", "-c", cfg, "--id", "11"); err != nil {
		t.Fatalf("users delete failed: %v", err)
	}
	if deletes != 1 {
		t.Errorf("deletes = %d, want exactly 1", deletes)
	}
}

func TestUsersEditCmd_MissingRequiredFlags(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("no request expected, got %s %s", r.Method, r.URL.Path)
	}))
	defer srv.Close()

	cfg := writeConfig(t, srv.URL, portalToken(t, 1, "root", "admin"))
	if _, err := runCLI(t, "users", "edit", "-c", cfg, "--id", "11"); err == nil {
		t.Fatal("expected error for missing required flags")
	}
}

func TestUsersListCmd_Table(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/users" {
			t.Errorf("path = %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"users": []map[string]any{
				{"user_id": 1, "auth_id": 11, "username": "alice", "email": "a@x.com", "role": "admin"},
			},
		})
	}))
	defer srv.Close()

	cfg := writeConfig(t, srv.URL, portalToken(t, 1, "root", "admin"))
	out, err := runCLI(t, "users", "list", "-c", cfg)
	if err != nil {
		t.Fatalf("users list failed: %v", err)
	}
	if !strings.Contains(out, "alice") || !strings.Contains(out, "admin") {
		t.Errorf("output = %q", out)
	}
}
