package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// portalToken builds an HS256 token the way the portal's auth service does.
func portalToken(t *testing.T, authID int64, username, role string) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"auth_id":  float64(authID),
		"username": username,
		"role":     role,
		"exp":      time.Now().Add(24 * time.Hour).Unix(),
	})
	signed, err := tok.SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

// writeConfig writes a dms.yaml pointing at baseURL, with the token file and
// store DSN inside a fresh temp dir. A non-empty token fakes a live login.
func writeConfig(t *testing.T, baseURL, token string) string {
	t.Helper()
	dir := t.TempDir()
	tokenFile := filepath.Join(dir, "token")
	if token != "" {
		if err := os.WriteFile(tokenFile, []byte(token+"\n"), 0o600); err != nil {
			t.Fatalf("write token file: %v", err)
		}
	}

	cfg := fmt.Sprintf("server:\n  base_url: %s\ntoken_file: %s\nstore:\n  driver: sqlite\n  dsn: %s\n",
		baseURL, tokenFile, filepath.Join(dir, "dms.db"))
	path := filepath.Join(dir, "dms.yaml")
	if err := os.WriteFile(path, []byte(cfg), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

// runCLI executes the root command with args and returns its combined output.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}
