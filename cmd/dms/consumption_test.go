package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestNewConsumptionCmd(t *testing.T) {
	cmd := newConsumptionCmd()
	if cmd.Use != "consumption" {
		t.Errorf("Use = %q, want %q", cmd.Use, "consumption")
	}
	for _, name := range []string{"user", "date", "chart", "config"} {
		if cmd.Flags().Lookup(name) == nil {
			t.Errorf("expected --%s flag", name)
		}
	}
	if got := cmd.Flags().Lookup("chart").DefValue; got != "line" {
		t.Errorf("--chart default = %q, want %q", got, "line")
	}
}

func TestConsumptionCmd_MissingUser(t *testing.T) {
	if _, err := runCLI(t, "consumption", "-c", "/nonexistent/dms.yaml"); err == nil {
		t.Fatal("expected error for missing --user")
	}
}

func TestConsumptionCmd_RendersChart(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/consumptions" {
			t.Errorf("path = %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("user_id") != "3" || q.Get("date") != "2026-02-14" {
			t.Errorf("query = %v", q)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"consumptions": []map[string]any{
				{"device_id": 5, "auth_id": 3, "consumption": "10", "timestamp": "2026-02-14T05:30:00+00:00"},
				{"device_id": 5, "auth_id": 3, "consumption": "20", "timestamp": "2026-02-14T05:45:00+00:00"},
			},
		})
	}))
	defer srv.Close()

	cfg := writeConfig(t, srv.URL, portalToken(t, 1, "root", "admin"))
	out, err := runCLI(t, "consumption", "-c", cfg, "--user", "3",
		"--date", "2026-02-14", "--chart", "bar")
	if err != nil {
		t.Fatalf("consumption failed: %v", err)
	}
	if !strings.Contains(out, "Consumption for user 3 on 2026-02-14") {
		t.Errorf("output = %q", out)
	}
	if !strings.Contains(out, "peak 15.00 kWh at 05:00") {
		t.Errorf("output = %q", out)
	}
}

func TestConsumptionCmd_BadStyle(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("no request expected, got %s %s", r.Method, r.URL.Path)
	}))
	defer srv.Close()

	cfg := writeConfig(t, srv.URL, portalToken(t, 1, "root", "admin"))
	if _, err := runCLI(t, "consumption", "-c", cfg, "--user", "3", "--chart", "pie"); err == nil {
		t.Fatal("expected error for unknown chart style")
	}
}
