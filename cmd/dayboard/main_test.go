package main

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"dayboard/internal/api"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"WARN":  slog.LevelWarn,
		"error": slog.LevelError,
		"info":  slog.LevelInfo,
		"":      slog.LevelInfo,
	}
	for in, want := range tests {
		if got := parseLevel(in); got != want {
			t.Errorf("parseLevel(%q) = %v; want %v", in, got, want)
		}
	}
}

func TestSetupLoggerJSON(t *testing.T) {
	var buf bytes.Buffer
	setupLogger(&buf, "info", "json").Info("hello", "k", "v")
	if !strings.Contains(buf.String(), `"msg":"hello"`) {
		t.Fatalf("output = %s", buf.String())
	}
}

func TestSessionCommand(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("GOOGLE_CLIENT_ID", "cid")
	t.Setenv("GOOGLE_CLIENT_SECRET", "secret")
	t.Setenv("SESSION_SECRET", "0123456789abcdef0123")

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"session", "--user", "u42"})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	userID, err := api.ParseSession([]byte("0123456789abcdef0123"), strings.TrimSpace(out.String()))
	if err != nil {
		t.Fatalf("ParseSession: %v", err)
	}
	if userID != "u42" {
		t.Fatalf("user = %q", userID)
	}
}
