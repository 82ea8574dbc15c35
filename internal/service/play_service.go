package service

import (
	"errors"
	"fmt"
	"log"
	"sync"

	"stemquest/internal/game"
	"stemquest/internal/models"
	"stemquest/internal/nav"
)

// ErrNoPlaySession is returned when an operation needs a live play
// session and the student does not have one.
var ErrNoPlaySession = errors.New("no active play session")

// PlaySession holds the per-student state of one sign-in: the
// navigation machine and the optimistic stats mirror shown to the
// student between persist round-trips.
type PlaySession struct {
	StudentID int64
	Nav       *nav.Machine

	mu    sync.Mutex
	stats models.PlayerStats
}

// Stats returns a copy of the session's stats mirror.
func (p *PlaySession) Stats() models.PlayerStats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stats
}

// CompletionResult is what a finished game reports back to the student.
type CompletionResult struct {
	Percent       float64            `json:"percent"`
	PointsAwarded int                `json:"pointsAwarded"`
	Stats         models.PlayerStats `json:"stats"`
	Nav           nav.State          `json:"nav"`
}

// StudentReader is the slice of the student repository the play flow needs.
type StudentReader interface {
	GetStudent(id int64) (*models.Student, error)
}

// HistoryStore records and reads completed-game history.
type HistoryStore interface {
	Append(studentID int64, gameID, subjectID string, score float64) (*models.GameHistoryEntry, error)
	RecentForStudent(studentID int64, limit int) ([]models.GameHistoryEntry, error)
	SubjectPerformance(studentID int64) ([]models.SubjectPerformance, error)
}

// CatalogReader looks up subjects and topics for navigation.
type CatalogReader interface {
	GetSubject(id string) (*models.Subject, error)
	GetTopic(id string) (*models.Topic, error)
}

// AssignmentStore is the slice of the assignment repository the play flow needs.
type AssignmentStore interface {
	ListForStudent(studentID int64) ([]models.Assignment, error)
	MarkCompletedByTopic(studentID int64, topicID string) error
}

// PlayService orchestrates a student's play flow: session lifecycle,
// navigation, game completion, and the dashboard read model.
type PlayService struct {
	progress       ProgressStore
	studentRepo    StudentReader
	historyRepo    HistoryStore
	catalogRepo    CatalogReader
	assignmentRepo AssignmentStore
	registry       nav.GameResolver
	timers         *TimerManager

	mu       sync.Mutex
	sessions map[int64]*PlaySession
}

// NewPlayService creates the play orchestrator.
func NewPlayService(
	progress ProgressStore,
	studentRepo StudentReader,
	historyRepo HistoryStore,
	catalogRepo CatalogReader,
	assignmentRepo AssignmentStore,
	registry nav.GameResolver,
	timers *TimerManager,
) *PlayService {
	return &PlayService{
		progress:       progress,
		studentRepo:    studentRepo,
		historyRepo:    historyRepo,
		catalogRepo:    catalogRepo,
		assignmentRepo: assignmentRepo,
		registry:       registry,
		timers:         timers,
		sessions:       make(map[int64]*PlaySession),
	}
}

// BeginSession opens (or reuses) a play session for the student,
// reconciles its stats mirror against storage and starts their
// playtime timer. Called on student sign-in.
func (s *PlayService) BeginSession(studentID int64) (*PlaySession, error) {
	student, err := s.studentRepo.GetStudent(studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load student: %w", err)
	}
	if student == nil {
		return nil, errors.New("student not found")
	}

	s.mu.Lock()
	session, ok := s.sessions[studentID]
	if !ok {
		session = &PlaySession{
			StudentID: studentID,
			Nav:       nav.NewMachine(s.registry, student.Grade),
			stats:     models.NewPlayerStats(student),
		}
		s.sessions[studentID] = session
	}
	s.mu.Unlock()

	s.reconcile(session)

	if s.timers != nil {
		s.timers.Start(studentID)
	}
	return session, nil
}

// EndSession closes the student's play session and stops their timer,
// flushing any pending minutes. Safe to call for students without a
// session.
func (s *PlayService) EndSession(studentID int64) {
	s.mu.Lock()
	delete(s.sessions, studentID)
	s.mu.Unlock()
	if s.timers != nil {
		s.timers.Stop(studentID)
	}
}

// Session returns the student's live play session.
func (s *PlayService) Session(studentID int64) (*PlaySession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[studentID]
	if !ok {
		return nil, ErrNoPlaySession
	}
	return session, nil
}

// Heartbeat records student activity for the idle cutoff.
func (s *PlayService) Heartbeat(studentID int64) {
	if s.timers != nil {
		s.timers.Heartbeat(studentID)
	}
}

// Dashboard is the read model for the student's home view: reconciled
// stats, the last few completed games, and pending assignments.
type Dashboard struct {
	Stats       models.PlayerStats        `json:"stats"`
	Recent      []models.GameHistoryEntry `json:"recentGames"`
	Assignments []models.Assignment       `json:"assignments"`
	Nav         nav.State                 `json:"nav"`
}

// Dashboard builds the student's dashboard. Stats come from storage so
// the mirror is reconciled against authoritative values on every visit.
func (s *PlayService) Dashboard(studentID int64) (*Dashboard, error) {
	session, err := s.Session(studentID)
	if err != nil {
		return nil, err
	}

	s.reconcile(session)

	recent, err := s.historyRepo.RecentForStudent(studentID, models.RecentHistoryLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to load recent games: %w", err)
	}

	assignments, err := s.assignmentRepo.ListForStudent(studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load assignments: %w", err)
	}

	session.mu.Lock()
	stats := session.stats
	navState := session.Nav.State()
	session.mu.Unlock()

	return &Dashboard{
		Stats:       stats,
		Recent:      recent,
		Assignments: assignments,
		Nav:         navState,
	}, nil
}

// StartLearning moves the student from the dashboard to subject selection.
func (s *PlayService) StartLearning(studentID int64) (nav.State, error) {
	return s.transition(studentID, func(m *nav.Machine) error {
		return m.SelectStartLearning()
	})
}

// OpenAssignments moves the student to the assignments view.
func (s *PlayService) OpenAssignments(studentID int64) (nav.State, error) {
	return s.transition(studentID, func(m *nav.Machine) error {
		return m.SelectAssignments()
	})
}

// ChooseSubject records the subject and moves to topic selection.
func (s *PlayService) ChooseSubject(studentID int64, subjectID string) (nav.State, error) {
	subject, err := s.catalogRepo.GetSubject(subjectID)
	if err != nil {
		return nav.State{}, fmt.Errorf("failed to load subject: %w", err)
	}
	if subject == nil {
		return nav.State{}, fmt.Errorf("unknown subject %q", subjectID)
	}
	return s.transition(studentID, func(m *nav.Machine) error {
		return m.SubjectChosen(*subject)
	})
}

// ChooseTopic records the topic. For direct-to-quiz subjects this lands
// straight in the generic quiz; otherwise it shows the game list.
func (s *PlayService) ChooseTopic(studentID int64, topicID string) (nav.State, error) {
	topic, err := s.catalogRepo.GetTopic(topicID)
	if err != nil {
		return nav.State{}, fmt.Errorf("failed to load topic: %w", err)
	}
	if topic == nil {
		return nav.State{}, fmt.Errorf("unknown topic %q", topicID)
	}
	return s.transition(studentID, func(m *nav.Machine) error {
		return m.TopicChosen(*topic)
	})
}

// StartQuiz jumps directly into the generic quiz for a topic, skipping
// the game list. Used by assignment links.
func (s *PlayService) StartQuiz(studentID int64, topicID string) (nav.State, error) {
	topic, err := s.catalogRepo.GetTopic(topicID)
	if err != nil {
		return nav.State{}, fmt.Errorf("failed to load topic: %w", err)
	}
	if topic == nil {
		return nav.State{}, fmt.Errorf("unknown topic %q", topicID)
	}
	return s.transition(studentID, func(m *nav.Machine) error {
		return m.StartQuizDirect(*topic)
	})
}

// ChooseGame starts the named game for the selected topic.
func (s *PlayService) ChooseGame(studentID int64, gameID string) (nav.State, error) {
	return s.transition(studentID, func(m *nav.Machine) error {
		return m.GameChosen(gameID)
	})
}

// OpenOverallPerformance moves to the cross-subject performance view.
func (s *PlayService) OpenOverallPerformance(studentID int64) (nav.State, error) {
	return s.transition(studentID, func(m *nav.Machine) error {
		return m.RequestOverallPerformance()
	})
}

// Back navigates one level out. target is "subjects", "topics" or
// "dashboard"; anything else falls back to the dashboard.
func (s *PlayService) Back(studentID int64, target string) (nav.State, error) {
	return s.transition(studentID, func(m *nav.Machine) error {
		switch target {
		case "subjects":
			m.BackToSubjects()
		case "topics":
			m.BackToTopics()
		default:
			m.BackToDashboard()
		}
		return nil
	})
}

// CompleteGame runs the full completion flow for the game the student
// is currently playing: normalize the raw result, award the fixed
// per-game points optimistically, persist with a read-add-write,
// re-read to reconcile, record history, advance the daily streak, mark
// any matching assignment done, and return to the dashboard.
func (s *PlayService) CompleteGame(studentID int64, rawScore, total float64) (*CompletionResult, error) {
	session, err := s.Session(studentID)
	if err != nil {
		return nil, err
	}

	session.mu.Lock()
	state := session.Nav.State()
	if state.View != nav.ViewPlaying || state.CurrentGame == "" {
		session.mu.Unlock()
		return nil, fmt.Errorf("%w: no game in progress", nav.ErrInvalidTransition)
	}

	percent := game.Normalize(rawScore, total)

	// Optimistic mirror update for immediate feedback.
	session.stats.Points += game.PointsPerGame
	session.stats.GamesPlayed++
	session.stats.CompletedGames[state.CurrentGame] = true
	session.mu.Unlock()

	// Read-add-write against storage, then re-read to reconcile. A
	// concurrent completion for the same student can interleave here;
	// the re-read makes the mirror converge on whatever storage holds.
	// When storage is unreadable the local mirror is the best-known
	// truth, so its values are written instead. A failed write keeps
	// the optimistic mirror as-is; storage catches up on a later
	// successful round-trip.
	score, games, readErr := s.progress.Read(studentID)
	newScore, newGames := score+game.PointsPerGame, games+1
	if readErr != nil {
		log.Printf("progress read failed for student %d, persisting local stats: %v", studentID, readErr)
		session.mu.Lock()
		newScore, newGames = session.stats.Points, session.stats.GamesPlayed
		session.mu.Unlock()
	}
	if err := s.progress.Write(studentID, newScore, newGames); err != nil {
		log.Printf("progress write failed for student %d: %v", studentID, err)
	} else {
		s.reconcile(session)
	}

	subjectID := ""
	if state.SelectedSubject != nil {
		subjectID = state.SelectedSubject.ID
	}
	if _, err := s.historyRepo.Append(studentID, state.CurrentGame, subjectID, percent); err != nil {
		log.Printf("failed to record game history for student %d: %v", studentID, err)
	}

	// One completed game counts as today's play for the streak.
	if err := s.progress.AccrueMinutes(studentID, 0, true); err != nil {
		log.Printf("failed to advance streak for student %d: %v", studentID, err)
	}

	if state.SelectedTopic != nil {
		if err := s.assignmentRepo.MarkCompletedByTopic(studentID, state.SelectedTopic.ID); err != nil {
			log.Printf("failed to mark assignment complete for student %d: %v", studentID, err)
		}
	}

	session.mu.Lock()
	if err := session.Nav.GameCompleted(); err != nil {
		session.mu.Unlock()
		return nil, err
	}
	result := &CompletionResult{
		Percent:       percent,
		PointsAwarded: game.PointsPerGame,
		Stats:         session.stats,
		Nav:           session.Nav.State(),
	}
	session.mu.Unlock()
	return result, nil
}

// CurrentResolution resolves the student's current selection against
// the game registry. The second return is false when nothing is
// selected yet.
func (s *PlayService) CurrentResolution(studentID int64) (game.Resolution, bool) {
	session, err := s.Session(studentID)
	if err != nil {
		return game.Resolution{}, false
	}
	session.mu.Lock()
	defer session.mu.Unlock()
	return session.Nav.Resolution()
}

// OverallPerformance aggregates the student's history by subject.
func (s *PlayService) OverallPerformance(studentID int64) ([]models.SubjectPerformance, error) {
	return s.historyRepo.SubjectPerformance(studentID)
}

// reconcile replaces the mirror's persisted fields with authoritative
// storage values. A failed read is no update, not zeros: the mirror
// keeps its local values until storage is readable again. A student
// whose stored games-played is zero shows zero points no matter what
// the score column says.
func (s *PlayService) reconcile(session *PlaySession) {
	score, games, readErr := s.progress.Read(session.StudentID)
	if readErr != nil {
		log.Printf("progress read failed for student %d, keeping local stats: %v", session.StudentID, readErr)
	}

	student, err := s.studentRepo.GetStudent(session.StudentID)

	session.mu.Lock()
	if readErr == nil {
		if games == 0 {
			score = 0
		}
		session.stats.Points = score
		session.stats.GamesPlayed = games
	}
	if err == nil && student != nil {
		session.stats.Streak = student.DailyStreak
		session.stats.TimeSpent = student.TotalTimeMinutes
	}
	session.mu.Unlock()
}

func (s *PlayService) transition(studentID int64, fn func(*nav.Machine) error) (nav.State, error) {
	session, err := s.Session(studentID)
	if err != nil {
		return nav.State{}, err
	}
	session.mu.Lock()
	defer session.mu.Unlock()
	if err := fn(session.Nav); err != nil {
		return session.Nav.State(), err
	}
	return session.Nav.State(), nil
}
