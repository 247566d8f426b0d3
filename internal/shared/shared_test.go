package shared

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	tu "github.com/desertthunder/photon/internal/testing"
)

func TestLogger(t *testing.T) {
	t.Run("SetLogLevelName", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(&buf)

		if err := SetLogLevelName(logger, "warn"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if logger.GetLevel() != log.WarnLevel {
			t.Errorf("expected warn level, got %v", logger.GetLevel())
		}

		logger.Info("hidden")
		if strings.Contains(buf.String(), "hidden") {
			t.Error("info should be filtered at warn level")
		}

		if err := SetLogLevelName(logger, "loud"); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
		if logger.GetLevel() != log.WarnLevel {
			t.Error("unknown level should leave level unchanged")
		}
	})

	t.Run("NewFileLogger", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nested", "photon.log")
		logger, err := NewFileLogger(path)
		if err != nil {
			t.Fatalf("NewFileLogger() error = %v", err)
		}

		logger.Info("written to file")
		tu.AssertFileExists(t, path)
		if !strings.Contains(tu.MustReadFile(t, path), "written to file") {
			t.Error("expected log line in file")
		}
	})

	t.Run("GenerateID", func(t *testing.T) {
		a, b := GenerateID(), GenerateID()
		if a == b || len(a) != 36 {
			t.Errorf("unexpected ids %q %q", a, b)
		}
	})
}
