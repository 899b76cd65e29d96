package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestNewWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "bot.log")
	l, closer, err := New("debug", path)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if l.GetLevel() != log.DebugLevel {
		t.Fatalf("unexpected level %v", l.GetLevel())
	}
	l.Info("catcher started", "phone", "111")
	if err := closer.Close(); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "catcher started") {
		t.Fatalf("log line missing from file: %q", data)
	}
}

func TestNewRejectsLevel(t *testing.T) {
	if _, _, err := New("loud", ""); err == nil {
		t.Fatal("expected an error for an unknown level")
	}
}
