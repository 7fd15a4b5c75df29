package logger

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestInitialize(t *testing.T) {
	tests := []struct {
		name       string
		jsonOutput bool
		wantErr    bool
	}{
		{
			name:       "JSON output mode",
			jsonOutput: true,
			wantErr:    false,
		},
		{
			name:       "Console output mode",
			jsonOutput: false,
			wantErr:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			Logger = nil
			JSONOutput = false

			err := Initialize(tt.jsonOutput)
			if (err != nil) != tt.wantErr {
				t.Errorf("Initialize() error = %v, wantErr %v", err, tt.wantErr)
				return
			}

			if Logger == nil {
				t.Error("Initialize() did not set global Logger")
			}
			if JSONOutput != tt.jsonOutput {
				t.Errorf("Initialize() JSONOutput = %v, want %v", JSONOutput, tt.jsonOutput)
			}

			Cleanup()
			Logger = zap.NewNop().Sugar()
		})
	}
}

func TestVerbosityToLevel(t *testing.T) {
	tests := []struct {
		verbosity int
		want      zapcore.Level
	}{
		{-1, zapcore.WarnLevel},
		{VerbosityUser, zapcore.WarnLevel},
		{VerbosityInfo, zapcore.InfoLevel},
		{VerbosityDebug, zapcore.DebugLevel},
		{7, zapcore.DebugLevel},
	}

	for _, tt := range tests {
		t.Run(LevelName(tt.verbosity), func(t *testing.T) {
			if got := VerbosityToLevel(tt.verbosity); got != tt.want {
				t.Errorf("VerbosityToLevel(%d) = %v, want %v", tt.verbosity, got, tt.want)
			}
		})
	}
}

func TestInitializeWithVerbosityFiltersLevels(t *testing.T) {
	defer func() { Logger = zap.NewNop().Sugar() }()

	if err := InitializeWithVerbosity(false, VerbosityUser); err != nil {
		t.Fatalf("InitializeWithVerbosity() error = %v", err)
	}
	if Logger.Desugar().Core().Enabled(zapcore.InfoLevel) {
		t.Error("info should be disabled without -v")
	}
	if !Logger.Desugar().Core().Enabled(zapcore.WarnLevel) {
		t.Error("warnings should always be enabled")
	}
}

func TestPackageFunctionsUseGlobalLogger(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	Logger = zap.New(core).Sugar()
	defer func() { Logger = zap.NewNop().Sugar() }()

	Infow("written", FieldEntity, "Vec2")
	Warnw("skipped method", FieldMember, "__repr__")
	Debugw("deferred", FieldDeferred, 2)
	Errorw("failed", FieldError, "boom")
	Infof("%d modules", 3)

	if logs.Len() != 5 {
		t.Fatalf("expected 5 entries, got %d", logs.Len())
	}
	if got := logs.FilterField(zap.String(FieldEntity, "Vec2")).Len(); got != 1 {
		t.Errorf("expected one entry for entity field, got %d", got)
	}
}

func TestNilLoggerIsSafe(t *testing.T) {
	Logger = nil
	defer func() { Logger = zap.NewNop().Sugar() }()

	Infow("test", "key", "value")
	Warnw("test", "key", "value")
	Debugw("test", "key", "value")
	Errorw("test", "key", "value")
	Infof("test %s", "format")
	Cleanup()
}

func TestChildLogger(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	child := ChildLogger(zap.New(core).Sugar(), FieldRunID, "run-1")
	child.Infow("hello")

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected one entry, got %d", len(entries))
	}
	if entries[0].ContextMap()[FieldRunID] != "run-1" {
		t.Errorf("run id missing from child logger context: %v", entries[0].ContextMap())
	}
}
