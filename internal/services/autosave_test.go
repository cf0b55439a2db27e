package services

import (
	"context"
	"testing"
	"time"
)

func TestAutosaveManager_Debounce(t *testing.T) {
	env := newPaperTestEnv(t)
	ctx := context.Background()
	paper := env.createPaper(t)

	manager := NewAutosaveManager(env.papers, testLogger(), 20*time.Millisecond)

	snapshot, err := env.papers.GetByID(ctx, env.teacher, paper.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}

	// Three rapid edits coalesce into one write of the last snapshot.
	snapshot.Header.Term = "First"
	manager.Schedule(env.teacher, snapshot.ExamPaper)
	snapshot.Header.Term = "Second"
	manager.Schedule(env.teacher, snapshot.ExamPaper)
	snapshot.Header.Term = "Final Term"
	manager.Schedule(env.teacher, snapshot.ExamPaper)

	if !manager.Pending(paper.ID) {
		t.Fatal("expected a pending write before the delay elapses")
	}

	deadline := time.Now().Add(2 * time.Second)
	for manager.Pending(paper.ID) {
		if time.Now().After(deadline) {
			t.Fatal("autosave never fired")
		}
		time.Sleep(5 * time.Millisecond)
	}
	// Give the fired goroutine a moment to finish the save.
	time.Sleep(20 * time.Millisecond)

	saved, err := env.papers.GetByID(ctx, env.teacher, paper.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if saved.Header.Term != "Final Term" {
		t.Errorf("expected last snapshot to win, got %q", saved.Header.Term)
	}
	if saved.Version != 2 {
		t.Errorf("three schedules should produce one write, version = %d", saved.Version)
	}
}

func TestAutosaveManager_Flush(t *testing.T) {
	env := newPaperTestEnv(t)
	ctx := context.Background()
	paper := env.createPaper(t)

	// A long delay: nothing fires on its own during the test.
	manager := NewAutosaveManager(env.papers, testLogger(), time.Hour)

	snapshot, err := env.papers.GetByID(ctx, env.teacher, paper.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	snapshot.Header.Term = "Flushed"
	manager.Schedule(env.teacher, snapshot.ExamPaper)

	if err := manager.Flush(ctx, paper.ID); err != nil {
		t.Fatalf("flush failed: %v", err)
	}
	if manager.Pending(paper.ID) {
		t.Error("flush should clear the pending entry")
	}

	saved, err := env.papers.GetByID(ctx, env.teacher, paper.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if saved.Header.Term != "Flushed" {
		t.Errorf("flush did not persist: %q", saved.Header.Term)
	}

	// Flushing a paper with nothing queued is a no-op.
	if err := manager.Flush(ctx, paper.ID); err != nil {
		t.Errorf("idle flush should be nil, got %v", err)
	}
}

func TestAutosaveManager_StopFlushesPending(t *testing.T) {
	env := newPaperTestEnv(t)
	ctx := context.Background()
	paper := env.createPaper(t)

	manager := NewAutosaveManager(env.papers, testLogger(), time.Hour)

	snapshot, err := env.papers.GetByID(ctx, env.teacher, paper.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	snapshot.Header.Term = "Shutdown Save"
	manager.Schedule(env.teacher, snapshot.ExamPaper)

	manager.Stop(ctx)

	saved, err := env.papers.GetByID(ctx, env.teacher, paper.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if saved.Header.Term != "Shutdown Save" {
		t.Errorf("stop did not flush: %q", saved.Header.Term)
	}

	// Schedules after Stop are dropped.
	snapshot.Header.Term = "Too Late"
	manager.Schedule(env.teacher, snapshot.ExamPaper)
	if manager.Pending(paper.ID) {
		t.Error("stopped manager must not accept new schedules")
	}
}
