package logging

import (
	"testing"

	log "github.com/sirupsen/logrus"
)

func TestSetup(t *testing.T) {
	defer log.SetLevel(log.InfoLevel)

	if err := Setup("debug", "json"); err != nil {
		t.Fatalf("setup failed: %v", err)
	}
	if log.GetLevel() != log.DebugLevel {
		t.Fatalf("expected debug level, got %s", log.GetLevel())
	}
	if _, ok := log.StandardLogger().Formatter.(*log.JSONFormatter); !ok {
		t.Fatal("expected json formatter")
	}

	if err := Setup("loud", "text"); err == nil {
		t.Fatal("expected error for unknown level")
	}
}
