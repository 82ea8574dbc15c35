package nav

import (
	"errors"
	"fmt"

	"stemquest/internal/game"
	"stemquest/internal/models"
)

// View identifies which screen the student is on. Views are mutually
// exclusive; transitions always clear the fields that stop being relevant.
type View string

const (
	ViewDashboard          View = "dashboard"
	ViewSubjects           View = "subjects"
	ViewTopics             View = "topics"
	ViewGames              View = "games"
	ViewPlaying            View = "playing"
	ViewAssignments        View = "assignments"
	ViewOverallPerformance View = "overall-performance"
)

// ErrInvalidTransition is returned when an event is not valid from the
// current view. Clients driving the machine out of order get this rather
// than a corrupted state.
var ErrInvalidTransition = errors.New("invalid navigation transition")

// GameResolver is the piece of the game registry the machine depends on
type GameResolver interface {
	Resolve(subjectID string, grade int, topicID string) game.Resolution
	DirectToQuiz(subjectID string, grade int) bool
}

// State is the current navigation position and in-progress selection.
// SelectedTopic is only meaningful when SelectedSubject is set, and
// CurrentGame only when View == ViewPlaying.
type State struct {
	View            View            `json:"view"`
	SelectedSubject *models.Subject `json:"selectedSubject,omitempty"`
	SelectedTopic   *models.Topic   `json:"selectedTopic,omitempty"`
	CurrentGame     string          `json:"currentGame,omitempty"`
}

// Machine owns one student's navigation state and mediates all transitions
type Machine struct {
	resolver GameResolver
	grade    int
	state    State
}

// NewMachine creates a navigation machine starting at the dashboard
func NewMachine(resolver GameResolver, grade int) *Machine {
	return &Machine{
		resolver: resolver,
		grade:    grade,
		state:    State{View: ViewDashboard},
	}
}

// State returns a copy of the current navigation state
func (m *Machine) State() State {
	return m.state
}

// SelectStartLearning moves from the dashboard to subject selection
func (m *Machine) SelectStartLearning() error {
	if m.state.View != ViewDashboard {
		return m.invalid("selectStartLearning")
	}
	m.state.View = ViewSubjects
	return nil
}

// SelectAssignments moves from the dashboard to the assignments view
func (m *Machine) SelectAssignments() error {
	if m.state.View != ViewDashboard {
		return m.invalid("selectAssignments")
	}
	m.state.View = ViewAssignments
	return nil
}

// SubjectChosen records the subject and moves to topic selection
func (m *Machine) SubjectChosen(subject models.Subject) error {
	if m.state.View != ViewSubjects {
		return m.invalid("subjectChosen")
	}
	m.state.SelectedSubject = &subject
	m.state.View = ViewTopics
	return nil
}

// TopicChosen records the topic and moves either to the game-selection list
// or, for direct-to-quiz subject/grade pairs, straight into the generic quiz.
func (m *Machine) TopicChosen(topic models.Topic) error {
	if m.state.View != ViewTopics || m.state.SelectedSubject == nil {
		return m.invalid("topicChosen")
	}
	m.state.SelectedTopic = &topic

	if m.resolver.DirectToQuiz(m.state.SelectedSubject.ID, m.grade) {
		m.state.CurrentGame = game.GenericQuizComponent
		m.state.View = ViewPlaying
		return nil
	}

	m.state.View = ViewGames
	return nil
}

// StartQuizDirect launches the generic quiz engine for a topic immediately
func (m *Machine) StartQuizDirect(topic models.Topic) error {
	if m.state.View != ViewTopics || m.state.SelectedSubject == nil {
		return m.invalid("startQuizDirect")
	}
	m.state.SelectedTopic = &topic
	m.state.CurrentGame = game.GenericQuizComponent
	m.state.View = ViewPlaying
	return nil
}

// RequestOverallPerformance moves from topics to the overall-performance view
func (m *Machine) RequestOverallPerformance() error {
	if m.state.View != ViewTopics {
		return m.invalid("requestOverallPerformance")
	}
	m.state.View = ViewOverallPerformance
	return nil
}

// GameChosen records the chosen game and enters the playing view
func (m *Machine) GameChosen(gameID string) error {
	if m.state.View != ViewGames {
		return m.invalid("gameChosen")
	}
	m.state.CurrentGame = gameID
	m.state.View = ViewPlaying
	return nil
}

// GameCompleted returns to the dashboard after a finished game, clearing the
// whole selection. Score persistence is the orchestrator's job, not the
// machine's.
func (m *Machine) GameCompleted() error {
	if m.state.View != ViewPlaying {
		return m.invalid("gameCompleted")
	}
	m.clearSelection()
	m.state.View = ViewDashboard
	return nil
}

// BackToSubjects returns to subject selection from any view
func (m *Machine) BackToSubjects() {
	m.clearSelection()
	m.state.View = ViewSubjects
}

// BackToTopics returns to topic selection, keeping the selected subject.
// With no subject selected there is nothing to show, so it degrades to
// subject selection.
func (m *Machine) BackToTopics() {
	m.state.SelectedTopic = nil
	m.state.CurrentGame = ""
	if m.state.SelectedSubject == nil {
		m.state.View = ViewSubjects
		return
	}
	m.state.View = ViewTopics
}

// BackToDashboard returns to the dashboard from any view, clearing the
// selection. Idempotent: a second call leaves the state unchanged.
func (m *Machine) BackToDashboard() {
	m.clearSelection()
	m.state.View = ViewDashboard
}

// Resolution resolves the current selection against the game registry.
// Only meaningful from the games or playing views.
func (m *Machine) Resolution() (game.Resolution, bool) {
	if m.state.SelectedSubject == nil || m.state.SelectedTopic == nil {
		return game.Resolution{}, false
	}
	return m.resolver.Resolve(m.state.SelectedSubject.ID, m.grade, m.state.SelectedTopic.ID), true
}

func (m *Machine) clearSelection() {
	m.state.SelectedSubject = nil
	m.state.SelectedTopic = nil
	m.state.CurrentGame = ""
}

func (m *Machine) invalid(event string) error {
	return fmt.Errorf("%w: %s from view %s", ErrInvalidTransition, event, m.state.View)
}
