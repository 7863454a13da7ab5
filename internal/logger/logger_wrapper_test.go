package logger

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/leandrodaf/midi-octave-shifter/sdk/contracts"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newObserved() (contracts.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return NewFromZap(zap.New(core)), logs
}

func TestZapLoggerWritesFields(t *testing.T) {
	log, logs := newObserved()

	log.Info("note shifted",
		log.Field().Int("from", 60),
		log.Field().Uint8("to", 72),
		log.Field().String("device", "keys"),
		log.Field().Error("error", errors.New("boom")),
	)

	entries := logs.FilterMessage("note shifted").All()
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	ctx := entries[0].ContextMap()
	if ctx["from"] != int64(60) {
		t.Errorf("from = %v, want 60", ctx["from"])
	}
	if ctx["to"] != uint8(72) {
		t.Errorf("to = %v, want 72", ctx["to"])
	}
	if ctx["device"] != "keys" {
		t.Errorf("device = %v, want keys", ctx["device"])
	}
	if ctx["error"] != "boom" {
		t.Errorf("error = %v, want boom", ctx["error"])
	}
}

func TestZapLoggerSetLevel(t *testing.T) {
	log, logs := newObserved()

	log.SetLevel(contracts.WarnLevel)
	log.Debug("debug")
	log.Info("info")
	log.Warn("warn")
	log.Error("error")

	if got := logs.Len(); got != 2 {
		t.Fatalf("got %d entries, want 2", got)
	}
	if logs.All()[0].Level != zapcore.WarnLevel {
		t.Errorf("first level = %v, want warn", logs.All()[0].Level)
	}

	log.SetLevel(contracts.DebugLevel)
	log.Debug("debug again")
	if logs.FilterMessage("debug again").Len() != 1 {
		t.Error("debug entry missing after lowering level")
	}
}

func TestZapLoggerIgnoresForeignFields(t *testing.T) {
	log, logs := newObserved()

	log.Info("msg", nil, zapField{})

	if n := len(logs.All()[0].Context); n != 0 {
		t.Errorf("got %d context fields, want 0", n)
	}
}

func TestSetDestination(t *testing.T) {
	l := NewZapLogger()

	if err := l.SetDestination(contracts.FileLog); err == nil {
		t.Error("file destination without path should fail")
	}
	if err := l.SetDestination("syslog"); err == nil {
		t.Error("unknown destination should fail")
	}

	path := filepath.Join(t.TempDir(), "shift.log")
	if err := l.SetDestination(contracts.FileLog, path); err != nil {
		t.Fatalf("SetDestination: %v", err)
	}
	l.Info("to file")
	_ = l.Sync()
}

func TestNopLogger(t *testing.T) {
	l := NewNopLogger()
	l.Info("dropped", l.Field().Bool("ok", true))
	if err := l.Sync(); err != nil {
		t.Errorf("Sync: %v", err)
	}
}
