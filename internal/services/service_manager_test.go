package services

import (
	"context"
	"testing"

	"github.com/examflow-ng/paper-service/internal/events"
	"github.com/examflow-ng/paper-service/internal/validator"
)

func TestServiceManager_Lifecycle(t *testing.T) {
	logger := testLogger()
	repo := newMemRepository()
	publisher := events.NewMockEventPublisher(logger)
	provider := &fakeProvider{response: "[]"}

	manager := NewServiceManager(repo, provider, publisher, logger, validator.New(), ServiceManagerConfig{
		JWTSecret: "test-secret",
	})

	ctx := context.Background()
	if err := manager.Initialize(ctx); err != nil {
		t.Fatalf("initialize failed: %v", err)
	}

	if manager.Auth() == nil || manager.Paper() == nil || manager.AI() == nil ||
		manager.User() == nil || manager.QuestionBank() == nil || manager.School() == nil ||
		manager.Dashboard() == nil || manager.ImportExport() == nil || manager.Autosave() == nil {
		t.Fatal("initialized manager returned a nil service")
	}

	if err := manager.HealthCheck(ctx); err != nil {
		t.Errorf("health check failed: %v", err)
	}

	if err := manager.Shutdown(ctx); err != nil {
		t.Errorf("shutdown failed: %v", err)
	}
	// A second shutdown is a no-op.
	if err := manager.Shutdown(ctx); err != nil {
		t.Errorf("repeated shutdown failed: %v", err)
	}
}

func TestServiceManager_PanicsBeforeInitialize(t *testing.T) {
	manager := NewServiceManager(newMemRepository(), &fakeProvider{}, events.NewMockEventPublisher(testLogger()), testLogger(), validator.New(), ServiceManagerConfig{})

	defer func() {
		if recover() == nil {
			t.Error("expected a panic on access before Initialize")
		}
	}()
	manager.Paper()
}
