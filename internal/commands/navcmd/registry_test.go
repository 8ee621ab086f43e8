package navcmd

import (
	"testing"

	"github.com/goliatone/go-navigation/internal/commands"
	"github.com/goliatone/go-navigation/internal/commands/fixtures"
	"github.com/goliatone/go-navigation/internal/filesource"
	"github.com/goliatone/go-navigation/internal/logging"
	command "github.com/goliatone/go-command"
)

func TestRegisterNavigationCommandsHandlerOptionsApplied(t *testing.T) {
	invalidateApplied := false
	syncApplied := false
	seedApplied := false

	_, err := RegisterNavigationCommands(nil, newSectionService(), &stubSyncer{}, nil, FeatureGates{},
		WithInvalidateHandlerOptions(func(h *commands.Handler[InvalidateMenuCacheCommand]) {
			invalidateApplied = true
		}),
		WithSyncHandlerOptions(func(h *commands.Handler[SyncFileSourceCommand]) {
			syncApplied = true
		}),
		WithSeedHandlerOptions(func(h *commands.Handler[SeedMenuCommand]) {
			seedApplied = true
		}),
	)
	if err != nil {
		t.Fatalf("register navigation commands: %v", err)
	}
	if !invalidateApplied {
		t.Fatal("expected invalidate handler options applied")
	}
	if !syncApplied {
		t.Fatal("expected sync handler options applied")
	}
	if !seedApplied {
		t.Fatal("expected seed handler options applied")
	}
}

func TestRegisterNavigationCommandsRegistersHandlers(t *testing.T) {
	reg := fixtures.NewRecordingRegistry()

	set, err := RegisterNavigationCommands(reg, newSectionService(), &stubSyncer{}, nil, FeatureGates{})
	if err != nil {
		t.Fatalf("register navigation commands: %v", err)
	}
	if set == nil {
		t.Fatal("expected handler set returned")
	}
	if set.InvalidateCache == nil || set.SeedMenu == nil || set.SyncFileSource == nil {
		t.Fatalf("expected all handlers, got %#v", set)
	}
	if len(reg.Handlers) != 3 {
		t.Fatalf("expected three handlers registered, got %d", len(reg.Handlers))
	}
	if reg.Handlers[0] != set.InvalidateCache {
		t.Fatalf("expected invalidate handler registered first, got %#v", reg.Handlers[0])
	}
	if reg.Handlers[1] != set.SeedMenu {
		t.Fatalf("expected seed handler registered second, got %#v", reg.Handlers[1])
	}
	if reg.Handlers[2] != set.SyncFileSource {
		t.Fatalf("expected sync handler registered third, got %#v", reg.Handlers[2])
	}
}

func TestRegisterNavigationCommandsNilSyncerSkipsSyncHandler(t *testing.T) {
	reg := fixtures.NewRecordingRegistry()

	set, err := RegisterNavigationCommands(reg, newSectionService(), nil, nil, FeatureGates{})
	if err != nil {
		t.Fatalf("register navigation commands: %v", err)
	}
	if set.SyncFileSource != nil {
		t.Fatal("expected no sync handler without syncer")
	}
	if set.InvalidateCache == nil || set.SeedMenu == nil {
		t.Fatalf("expected invalidate and seed handlers, got %#v", set)
	}
	if len(reg.Handlers) != 2 {
		t.Fatalf("expected two handlers registered, got %d", len(reg.Handlers))
	}
}

func TestRegisterNavigationCommandsNilServiceError(t *testing.T) {
	if _, err := RegisterNavigationCommands(nil, nil, nil, nil, FeatureGates{}); err == nil {
		t.Fatal("expected error when service nil")
	}
}

func TestRegisterFileSourceCronRegistersHandler(t *testing.T) {
	syncer := &stubSyncer{
		result: &filesource.SyncResult{},
	}
	handler := NewSyncFileSourceHandler(syncer, logging.NoOp(), FeatureGates{
		FileSourceEnabled: func() bool { return true },
	})
	recorder := fixtures.NewCronRecorder()

	cfg := command.HandlerConfig{Expression: "@daily"}
	msg := SyncFileSourceCommand{Directory: "content"}

	if err := RegisterFileSourceCron(recorder.Registrar(), handler, cfg, msg); err != nil {
		t.Fatalf("register file source cron: %v", err)
	}

	if len(recorder.Registrations) != 1 {
		t.Fatalf("expected one cron registration, got %d", len(recorder.Registrations))
	}
	reg := recorder.Registrations[0]
	if reg.Config.Expression != cfg.Expression {
		t.Fatalf("expected cron expression %q, got %q", cfg.Expression, reg.Config.Expression)
	}
	if reg.Handler == nil {
		t.Fatal("expected cron handler function recorded")
	}
	if err := reg.Handler(); err != nil {
		t.Fatalf("executing cron handler: %v", err)
	}
	if len(syncer.calls) != 1 {
		t.Fatalf("expected sync call executed, got %d", len(syncer.calls))
	}
}

func TestRegisterFileSourceCronNoOpWhenRegistrarNil(t *testing.T) {
	syncer := &stubSyncer{}
	handler := NewSyncFileSourceHandler(syncer, logging.NoOp(), FeatureGates{})
	if err := RegisterFileSourceCron(nil, handler, command.HandlerConfig{}, SyncFileSourceCommand{Directory: "content"}); err != nil {
		t.Fatalf("expected nil error when registrar nil, got %v", err)
	}
	if len(syncer.calls) != 0 {
		t.Fatalf("expected no sync calls when registrar nil, got %d", len(syncer.calls))
	}
}

func TestRegisterFileSourceCronNoOpWhenHandlerNil(t *testing.T) {
	recorder := fixtures.NewCronRecorder()
	if err := RegisterFileSourceCron(recorder.Registrar(), nil, command.HandlerConfig{}, SyncFileSourceCommand{Directory: "content"}); err != nil {
		t.Fatalf("expected nil error when handler nil, got %v", err)
	}
	if len(recorder.Registrations) != 0 {
		t.Fatalf("expected no registrations when handler nil, got %d", len(recorder.Registrations))
	}
}
