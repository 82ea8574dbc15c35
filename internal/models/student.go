package models

import "time"

// Student represents a student profile. Score, games-played, streak and time
// columns are server-authoritative; clients mirror them optimistically.
type Student struct {
	ID               int64      `json:"id"`
	EducatorID       int64      `json:"educatorId"`
	Username         string     `json:"username"`
	Grade            int        `json:"grade"` // 6-12
	AvatarColor      string     `json:"avatarColor"`
	PasswordHash     string     `json:"-"`
	CurrentScore     int        `json:"currentScore"`
	GamesPlayed      int        `json:"gamesPlayed"`
	DailyStreak      int        `json:"dailyStreak"`
	LastPlayedDate   *time.Time `json:"lastPlayedDate,omitempty"`
	TotalTimeMinutes int        `json:"totalTimeMinutes"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}

// PlayerStats mirrors a subset of the student record for immediate feedback
// during a play session. It is initialized from the student row, updated
// optimistically on game completion, and reconciled against authoritative
// values after each persist round-trip.
type PlayerStats struct {
	Points         int             `json:"points"`
	GamesPlayed    int             `json:"gamesPlayed"`
	Streak         int             `json:"streak"`
	TimeSpent      int             `json:"timeSpent"` // minutes
	Achievements   map[string]bool `json:"achievements"`
	CompletedGames map[string]bool `json:"completedGames"`
}

// NewPlayerStats builds the local stats mirror from a student record.
// A student who has never played shows 0 points regardless of any stale
// preset score on the row.
func NewPlayerStats(s *Student) PlayerStats {
	points := s.CurrentScore
	if s.GamesPlayed == 0 {
		points = 0
	}
	return PlayerStats{
		Points:         points,
		GamesPlayed:    s.GamesPlayed,
		Streak:         s.DailyStreak,
		TimeSpent:      s.TotalTimeMinutes,
		Achievements:   make(map[string]bool),
		CompletedGames: make(map[string]bool),
	}
}
