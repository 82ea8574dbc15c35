package service

import (
	"errors"
	"testing"
	"time"

	"stemquest/internal/game"
	"stemquest/internal/models"
	"stemquest/internal/nav"
)

type fakeStudentReader struct {
	student *models.Student
}

func (f *fakeStudentReader) GetStudent(id int64) (*models.Student, error) {
	if f.student == nil || f.student.ID != id {
		return nil, nil
	}
	s := *f.student
	return &s, nil
}

type fakeHistoryStore struct {
	entries []models.GameHistoryEntry
}

func (f *fakeHistoryStore) Append(studentID int64, gameID, subjectID string, score float64) (*models.GameHistoryEntry, error) {
	entry := models.GameHistoryEntry{
		StudentID: studentID,
		GameID:    gameID,
		SubjectID: subjectID,
		Score:     score,
		CreatedAt: time.Now(),
	}
	f.entries = append(f.entries, entry)
	return &entry, nil
}

func (f *fakeHistoryStore) RecentForStudent(studentID int64, limit int) ([]models.GameHistoryEntry, error) {
	if len(f.entries) <= limit {
		return f.entries, nil
	}
	return f.entries[len(f.entries)-limit:], nil
}

func (f *fakeHistoryStore) SubjectPerformance(studentID int64) ([]models.SubjectPerformance, error) {
	return nil, nil
}

type fakeCatalogReader struct {
	subjects map[string]models.Subject
	topics   map[string]models.Topic
}

func (f *fakeCatalogReader) GetSubject(id string) (*models.Subject, error) {
	if s, ok := f.subjects[id]; ok {
		return &s, nil
	}
	return nil, nil
}

func (f *fakeCatalogReader) GetTopic(id string) (*models.Topic, error) {
	if t, ok := f.topics[id]; ok {
		return &t, nil
	}
	return nil, nil
}

type fakeAssignmentStore struct {
	completedTopics []string
	listErr         error
}

func (f *fakeAssignmentStore) ListForStudent(studentID int64) ([]models.Assignment, error) {
	return nil, f.listErr
}

func (f *fakeAssignmentStore) MarkCompletedByTopic(studentID int64, topicID string) error {
	f.completedTopics = append(f.completedTopics, topicID)
	return nil
}

func playFixture(t *testing.T, student *models.Student, store *fakeProgressStore) (*PlayService, *fakeHistoryStore, *fakeAssignmentStore) {
	t.Helper()

	registry := game.NewRegistry()
	registry.AddGame("math", student.Grade, "fractions", "fraction-match")
	registry.AddTopicOverview("science", student.Grade, "science-overview")

	history := &fakeHistoryStore{}
	assignments := &fakeAssignmentStore{}
	catalog := &fakeCatalogReader{
		subjects: map[string]models.Subject{
			"math":    {ID: "math", Name: "Mathematics"},
			"science": {ID: "science", Name: "Science"},
		},
		topics: map[string]models.Topic{
			"fractions": {ID: "fractions", SubjectID: "math", Name: "Fractions", Grade: student.Grade},
			"cells":     {ID: "cells", SubjectID: "science", Name: "Cells", Grade: student.Grade},
		},
	}

	svc := NewPlayService(store, &fakeStudentReader{student: student}, history, catalog, assignments, registry, nil)
	return svc, history, assignments
}

// navigateToGame walks the student from the dashboard into a running game.
func navigateToGame(t *testing.T, svc *PlayService, studentID int64) {
	t.Helper()
	if _, err := svc.StartLearning(studentID); err != nil {
		t.Fatalf("StartLearning: %v", err)
	}
	if _, err := svc.ChooseSubject(studentID, "math"); err != nil {
		t.Fatalf("ChooseSubject: %v", err)
	}
	if _, err := svc.ChooseTopic(studentID, "fractions"); err != nil {
		t.Fatalf("ChooseTopic: %v", err)
	}
	if _, err := svc.ChooseGame(studentID, "fraction-match"); err != nil {
		t.Fatalf("ChooseGame: %v", err)
	}
}

func TestCompleteGameFullFlow(t *testing.T) {
	student := &models.Student{ID: 1, Username: "brave-dragon", Grade: 7, CurrentScore: 30, GamesPlayed: 3}
	store := newFakeProgressStore()
	store.score = 30
	store.gamesPlayed = 3

	svc, history, assignments := playFixture(t, student, store)
	if _, err := svc.BeginSession(1); err != nil {
		t.Fatalf("BeginSession: %v", err)
	}
	navigateToGame(t, svc, 1)

	result, err := svc.CompleteGame(1, 7, 10)
	if err != nil {
		t.Fatalf("CompleteGame: %v", err)
	}

	if result.Percent != 70 {
		t.Errorf("expected normalized score 70, got %v", result.Percent)
	}
	if result.PointsAwarded != game.PointsPerGame {
		t.Errorf("expected %d points awarded, got %d", game.PointsPerGame, result.PointsAwarded)
	}
	if store.score != 40 || store.gamesPlayed != 4 {
		t.Errorf("expected persisted (40, 4), got (%d, %d)", store.score, store.gamesPlayed)
	}
	if result.Stats.Points != 40 || result.Stats.GamesPlayed != 4 {
		t.Errorf("expected reconciled stats (40, 4), got (%d, %d)", result.Stats.Points, result.Stats.GamesPlayed)
	}
	if result.Nav.View != nav.ViewDashboard {
		t.Errorf("expected return to dashboard, got %v", result.Nav.View)
	}
	if result.Nav.CurrentGame != "" || result.Nav.SelectedSubject != nil {
		t.Error("expected selection cleared after completion")
	}

	if len(history.entries) != 1 {
		t.Fatalf("expected 1 history entry, got %d", len(history.entries))
	}
	if history.entries[0].Score != 70 || history.entries[0].GameID != "fraction-match" || history.entries[0].SubjectID != "math" {
		t.Errorf("unexpected history entry %+v", history.entries[0])
	}

	if len(assignments.completedTopics) != 1 || assignments.completedTopics[0] != "fractions" {
		t.Errorf("expected assignment for fractions marked complete, got %v", assignments.completedTopics)
	}

	// Streak advanced exactly once via the played-today accrue.
	if store.accrueCalls != 1 {
		t.Errorf("expected 1 accrue call, got %d", store.accrueCalls)
	}
}

func TestCompleteGameClampsOverflow(t *testing.T) {
	student := &models.Student{ID: 1, Username: "swift-otter", Grade: 7}
	store := newFakeProgressStore()
	svc, history, _ := playFixture(t, student, store)

	if _, err := svc.BeginSession(1); err != nil {
		t.Fatalf("BeginSession: %v", err)
	}
	navigateToGame(t, svc, 1)

	result, err := svc.CompleteGame(1, 15, 10)
	if err != nil {
		t.Fatalf("CompleteGame: %v", err)
	}
	if result.Percent != 100 {
		t.Errorf("expected clamped score 100, got %v", result.Percent)
	}
	if history.entries[0].Score != 100 {
		t.Errorf("expected history score 100, got %v", history.entries[0].Score)
	}
}

func TestCompleteGameRequiresRunningGame(t *testing.T) {
	student := &models.Student{ID: 1, Username: "calm-fox", Grade: 8}
	store := newFakeProgressStore()
	svc, _, _ := playFixture(t, student, store)

	if _, err := svc.BeginSession(1); err != nil {
		t.Fatalf("BeginSession: %v", err)
	}

	if _, err := svc.CompleteGame(1, 5, 10); !errors.Is(err, nav.ErrInvalidTransition) {
		t.Errorf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestCompleteGameWithoutSession(t *testing.T) {
	student := &models.Student{ID: 1, Username: "calm-fox", Grade: 8}
	store := newFakeProgressStore()
	svc, _, _ := playFixture(t, student, store)

	if _, err := svc.CompleteGame(1, 5, 10); !errors.Is(err, ErrNoPlaySession) {
		t.Errorf("expected ErrNoPlaySession, got %v", err)
	}
}

func TestDashboardZeroGamesShowsZeroPoints(t *testing.T) {
	// A stale score on the row must not leak through when no games
	// have been played.
	student := &models.Student{ID: 1, Username: "keen-owl", Grade: 9, CurrentScore: 50, GamesPlayed: 0}
	store := newFakeProgressStore()
	store.score = 50
	store.gamesPlayed = 0

	svc, _, _ := playFixture(t, student, store)
	if _, err := svc.BeginSession(1); err != nil {
		t.Fatalf("BeginSession: %v", err)
	}

	dash, err := svc.Dashboard(1)
	if err != nil {
		t.Fatalf("Dashboard: %v", err)
	}
	if dash.Stats.Points != 0 {
		t.Errorf("expected 0 points with no games played, got %d", dash.Stats.Points)
	}
}

func TestDashboardKeepsLocalStatsOnReadFailure(t *testing.T) {
	// A storage outage is no update, not a fresh slate: the mirror
	// loaded from the student row stays on display.
	student := &models.Student{ID: 1, Username: "keen-owl", Grade: 9, CurrentScore: 30, GamesPlayed: 3}
	store := newFakeProgressStore()
	store.readErr = true

	svc, _, _ := playFixture(t, student, store)
	if _, err := svc.BeginSession(1); err != nil {
		t.Fatalf("BeginSession: %v", err)
	}

	dash, err := svc.Dashboard(1)
	if err != nil {
		t.Fatalf("Dashboard: %v", err)
	}
	if dash.Stats.Points != 30 || dash.Stats.GamesPlayed != 3 {
		t.Errorf("expected local stats (30, 3) kept on read failure, got (%d, %d)", dash.Stats.Points, dash.Stats.GamesPlayed)
	}
}

func TestCompleteGameDuringReadOutagePersistsLocalStats(t *testing.T) {
	// With storage unreadable, the read-add-write falls back to the
	// local mirror so the real score is never clobbered with 0+10.
	student := &models.Student{ID: 1, Username: "keen-owl", Grade: 9, CurrentScore: 30, GamesPlayed: 3}
	store := newFakeProgressStore()
	store.score = 30
	store.gamesPlayed = 3
	store.readErr = true

	svc, _, _ := playFixture(t, student, store)
	if _, err := svc.BeginSession(1); err != nil {
		t.Fatalf("BeginSession: %v", err)
	}
	navigateToGame(t, svc, 1)

	result, err := svc.CompleteGame(1, 8, 10)
	if err != nil {
		t.Fatalf("CompleteGame: %v", err)
	}
	if store.score != 40 || store.gamesPlayed != 4 {
		t.Errorf("expected persisted (40, 4) from local mirror, got (%d, %d)", store.score, store.gamesPlayed)
	}
	if result.Stats.Points != 40 || result.Stats.GamesPlayed != 4 {
		t.Errorf("expected stats (40, 4), got (%d, %d)", result.Stats.Points, result.Stats.GamesPlayed)
	}
}

func TestCompleteGamePersistsDespiteWriteFailure(t *testing.T) {
	student := &models.Student{ID: 1, Username: "bold-hawk", Grade: 10, CurrentScore: 30, GamesPlayed: 3}
	store := newFakeProgressStore()
	store.score = 30
	store.gamesPlayed = 3
	store.failWrite = true

	svc, history, _ := playFixture(t, student, store)
	if _, err := svc.BeginSession(1); err != nil {
		t.Fatalf("BeginSession: %v", err)
	}
	navigateToGame(t, svc, 1)

	// The write fails, but completion still records history, advances
	// the streak and returns the student to the dashboard.
	result, err := svc.CompleteGame(1, 8, 10)
	if err != nil {
		t.Fatalf("CompleteGame: %v", err)
	}
	if result.Nav.View != nav.ViewDashboard {
		t.Errorf("expected dashboard after completion, got %v", result.Nav.View)
	}
	if len(history.entries) != 1 {
		t.Errorf("expected history recorded, got %d entries", len(history.entries))
	}
	// The optimistic increment stays on display even though the server
	// is now behind; a later successful round-trip converges them.
	if result.Stats.Points != 40 || result.Stats.GamesPlayed != 4 {
		t.Errorf("expected optimistic stats (40, 4) kept, got (%d, %d)", result.Stats.Points, result.Stats.GamesPlayed)
	}
	if store.score != 30 || store.gamesPlayed != 3 {
		t.Errorf("expected stored values unchanged (30, 3), got (%d, %d)", store.score, store.gamesPlayed)
	}
}

func TestBackNavigation(t *testing.T) {
	student := &models.Student{ID: 1, Username: "wise-crow", Grade: 7}
	store := newFakeProgressStore()
	svc, _, _ := playFixture(t, student, store)

	if _, err := svc.BeginSession(1); err != nil {
		t.Fatalf("BeginSession: %v", err)
	}
	if _, err := svc.StartLearning(1); err != nil {
		t.Fatalf("StartLearning: %v", err)
	}
	if _, err := svc.ChooseSubject(1, "math"); err != nil {
		t.Fatalf("ChooseSubject: %v", err)
	}

	state, err := svc.Back(1, "subjects")
	if err != nil {
		t.Fatalf("Back: %v", err)
	}
	if state.View != nav.ViewSubjects || state.SelectedSubject != nil {
		t.Errorf("expected subjects view with cleared selection, got %+v", state)
	}

	state, err = svc.Back(1, "dashboard")
	if err != nil {
		t.Fatalf("Back: %v", err)
	}
	if state.View != nav.ViewDashboard {
		t.Errorf("expected dashboard, got %v", state.View)
	}
}

func TestChooseUnknownSubject(t *testing.T) {
	student := &models.Student{ID: 1, Username: "wise-crow", Grade: 7}
	store := newFakeProgressStore()
	svc, _, _ := playFixture(t, student, store)

	if _, err := svc.BeginSession(1); err != nil {
		t.Fatalf("BeginSession: %v", err)
	}
	if _, err := svc.StartLearning(1); err != nil {
		t.Fatalf("StartLearning: %v", err)
	}
	if _, err := svc.ChooseSubject(1, "history"); err == nil {
		t.Error("expected error for unknown subject")
	}
}

func TestBeginSessionReconcilesFromStorage(t *testing.T) {
	// The student row is stale; storage holds the authoritative values
	// and wins on sign-in.
	student := &models.Student{ID: 1, Username: "wise-crow", Grade: 7, CurrentScore: 30, GamesPlayed: 3}
	store := newFakeProgressStore()
	store.score = 50
	store.gamesPlayed = 5

	svc, _, _ := playFixture(t, student, store)
	session, err := svc.BeginSession(1)
	if err != nil {
		t.Fatalf("BeginSession: %v", err)
	}

	stats := session.Stats()
	if stats.Points != 50 || stats.GamesPlayed != 5 {
		t.Errorf("expected stats reconciled to (50, 5) on sign-in, got (%d, %d)", stats.Points, stats.GamesPlayed)
	}
}

func TestBeginSessionReusesExisting(t *testing.T) {
	student := &models.Student{ID: 1, Username: "wise-crow", Grade: 7}
	store := newFakeProgressStore()
	svc, _, _ := playFixture(t, student, store)

	first, err := svc.BeginSession(1)
	if err != nil {
		t.Fatalf("BeginSession: %v", err)
	}
	if _, err := svc.StartLearning(1); err != nil {
		t.Fatalf("StartLearning: %v", err)
	}

	second, err := svc.BeginSession(1)
	if err != nil {
		t.Fatalf("BeginSession: %v", err)
	}
	if first != second {
		t.Error("expected the same session across repeated sign-ins")
	}
	if second.Nav.State().View != nav.ViewSubjects {
		t.Error("expected navigation state preserved across re-sign-in")
	}
}
