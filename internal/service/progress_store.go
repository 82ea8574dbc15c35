package service

import (
	"stemquest/internal/repository"
)

// ProgressStore is the persistence boundary for a student's score and
// played-game count. A failed read means no update is available, not
// zeros: callers keep whatever values they already hold.
type ProgressStore interface {
	// Read returns (score, gamesPlayed).
	Read(studentID int64) (int, int, error)
	// Write overwrites both values unconditionally (last write wins).
	Write(studentID int64, score, gamesPlayed int) error
	// AccrueMinutes adds playtime minutes and, when playedToday is set,
	// advances the daily streak.
	AccrueMinutes(studentID int64, minutes int, playedToday bool) error
}

// RepoProgressStore backs ProgressStore with the students table.
type RepoProgressStore struct {
	studentRepo *repository.StudentRepository
}

// NewRepoProgressStore creates a progress store over the student repository.
func NewRepoProgressStore(studentRepo *repository.StudentRepository) *RepoProgressStore {
	return &RepoProgressStore{studentRepo: studentRepo}
}

func (s *RepoProgressStore) Read(studentID int64) (int, int, error) {
	return s.studentRepo.ReadScoreAndCount(studentID)
}

func (s *RepoProgressStore) Write(studentID int64, score, gamesPlayed int) error {
	return s.studentRepo.WriteScoreAndCount(studentID, score, gamesPlayed)
}

func (s *RepoProgressStore) AccrueMinutes(studentID int64, minutes int, playedToday bool) error {
	return s.studentRepo.AccrueDailyActivity(studentID, minutes, playedToday)
}
