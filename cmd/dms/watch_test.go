package main

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestNewWatchCmd(t *testing.T) {
	cmd := newWatchCmd()
	if cmd.Use != "watch" {
		t.Errorf("Use = %q, want %q", cmd.Use, "watch")
	}
	cfgFlag := cmd.Flags().Lookup("config")
	if cfgFlag == nil {
		t.Fatal("expected --config flag")
	}
	if cfgFlag.DefValue != "dms.yaml" {
		t.Errorf("--config default = %q, want %q", cfgFlag.DefValue, "dms.yaml")
	}
}

func TestWatchCmd_Help(t *testing.T) {
	out, err := runCLI(t, "watch", "--help")
	if err != nil {
		t.Fatalf("watch --help failed: %v", err)
	}
	if !strings.Contains(out, "overconsumption") {
		t.Errorf("expected help to mention overconsumption, got: %s", out)
	}
}

func TestWatchCmd_NotLoggedIn(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("no request expected, got %s %s", r.Method, r.URL.Path)
	}))
	defer srv.Close()

	cfg := writeConfig(t, srv.URL, "")
	_, err := runCLI(t, "watch", "-c", cfg)
	if err == nil {
		t.Fatal("expected error without a session")
	}
	if !strings.Contains(err.Error(), "not logged in") {
		t.Errorf("error = %q, want to mention not logged in", err)
	}
}

func TestWatchCmd_MissingConfig(t *testing.T) {
	if _, err := runCLI(t, "watch", "-c", "/nonexistent/dms.yaml"); err == nil {
		t.Fatal("expected error for missing config file")
	}
}
