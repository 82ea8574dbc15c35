package game

import (
	"encoding/json"
	"fmt"
	"os"
)

// GenericQuizComponent is the universal backstop game: a quiz engine
// parameterized by subject, topic and grade.
const GenericQuizComponent = "topic-quiz"

// ResolutionKind tags which tier of the registry resolved a lookup
type ResolutionKind int

const (
	// KindSpecificGame is an exact subject+grade+topic bespoke mini-game
	KindSpecificGame ResolutionKind = iota
	// KindTopicOverview is a consolidated all-topics view for a subject+grade pair
	KindTopicOverview
	// KindGenericEngine is the generic topic-driven quiz engine
	KindGenericEngine
)

// EngineParams parameterize the generic quiz engine
type EngineParams struct {
	SubjectID string `json:"subjectId"`
	TopicID   string `json:"topicId"`
	Grade     int    `json:"grade"`
}

// Resolution is the result of a registry lookup: which component to launch
// and, for the generic engine, its parameters.
type Resolution struct {
	Kind      ResolutionKind `json:"kind"`
	Component string         `json:"component"`
	Params    EngineParams   `json:"params,omitempty"`
}

type tripleKey struct {
	subject string
	grade   int
	topic   string
}

type pairKey struct {
	subject string
	grade   int
}

// Registry maps (subject, grade, topic) triples to game components.
// The content catalog grew incrementally: some subject/grade combinations
// received bespoke games, some a consolidated topic-overview experience,
// and the rest rely on the generic engine, so coverage is not uniform.
type Registry struct {
	games        map[tripleKey]string
	overviews    map[pairKey]string
	directToQuiz map[pairKey]bool
}

// registryFile mirrors the structure of configs/registry.json
type registryFile struct {
	Games []struct {
		Subject   string `json:"subject"`
		Grade     int    `json:"grade"`
		Topic     string `json:"topic"`
		Component string `json:"component"`
	} `json:"games"`
	TopicOverviews []struct {
		Subject   string `json:"subject"`
		Grade     int    `json:"grade"`
		Component string `json:"component"`
	} `json:"topicOverviews"`
	DirectToQuiz []struct {
		Subject string `json:"subject"`
		Grade   int    `json:"grade"`
	} `json:"directToQuiz"`
}

// LoadRegistry reads and validates the game registry from a JSON file
func LoadRegistry(path string) (*Registry, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read registry file: %w", err)
	}

	var file registryFile
	if err := json.Unmarshal(content, &file); err != nil {
		return nil, fmt.Errorf("failed to parse registry file: %w", err)
	}

	r := &Registry{
		games:        make(map[tripleKey]string),
		overviews:    make(map[pairKey]string),
		directToQuiz: make(map[pairKey]bool),
	}

	for _, entry := range file.Games {
		if err := validateGrade(entry.Grade); err != nil {
			return nil, fmt.Errorf("game %q: %w", entry.Component, err)
		}
		if entry.Subject == "" || entry.Topic == "" || entry.Component == "" {
			return nil, fmt.Errorf("game entry with empty subject, topic or component")
		}
		key := tripleKey{entry.Subject, entry.Grade, entry.Topic}
		if _, exists := r.games[key]; exists {
			return nil, fmt.Errorf("duplicate game entry for %s/%d/%s", entry.Subject, entry.Grade, entry.Topic)
		}
		r.games[key] = entry.Component
	}

	for _, entry := range file.TopicOverviews {
		if err := validateGrade(entry.Grade); err != nil {
			return nil, fmt.Errorf("overview %q: %w", entry.Component, err)
		}
		if entry.Subject == "" || entry.Component == "" {
			return nil, fmt.Errorf("overview entry with empty subject or component")
		}
		r.overviews[pairKey{entry.Subject, entry.Grade}] = entry.Component
	}

	for _, entry := range file.DirectToQuiz {
		if err := validateGrade(entry.Grade); err != nil {
			return nil, fmt.Errorf("direct-to-quiz %s: %w", entry.Subject, err)
		}
		r.directToQuiz[pairKey{entry.Subject, entry.Grade}] = true
	}

	return r, nil
}

// NewRegistry builds an empty registry; used by tests and as a fallback
// when no registry file is configured.
func NewRegistry() *Registry {
	return &Registry{
		games:        make(map[tripleKey]string),
		overviews:    make(map[pairKey]string),
		directToQuiz: make(map[pairKey]bool),
	}
}

// AddGame registers a bespoke mini-game for an exact subject/grade/topic triple
func (r *Registry) AddGame(subjectID string, grade int, topicID, component string) {
	r.games[tripleKey{subjectID, grade, topicID}] = component
}

// AddTopicOverview registers a consolidated topic view for a subject/grade pair
func (r *Registry) AddTopicOverview(subjectID string, grade int, component string) {
	r.overviews[pairKey{subjectID, grade}] = component
}

// SetDirectToQuiz marks a subject/grade pair as launching the generic quiz
// immediately, skipping manual game selection.
func (r *Registry) SetDirectToQuiz(subjectID string, grade int) {
	r.directToQuiz[pairKey{subjectID, grade}] = true
}

// Resolve finds the game component for a subject/grade/topic. Precedence:
// exact bespoke match, then the subject+grade topic-overview, then the
// generic engine. No lookup ever fails; the generic engine is the backstop.
func (r *Registry) Resolve(subjectID string, grade int, topicID string) Resolution {
	if component, ok := r.games[tripleKey{subjectID, grade, topicID}]; ok {
		return Resolution{Kind: KindSpecificGame, Component: component}
	}

	if component, ok := r.overviews[pairKey{subjectID, grade}]; ok {
		return Resolution{Kind: KindTopicOverview, Component: component}
	}

	return Resolution{
		Kind:      KindGenericEngine,
		Component: GenericQuizComponent,
		Params: EngineParams{
			SubjectID: subjectID,
			TopicID:   topicID,
			Grade:     grade,
		},
	}
}

// DirectToQuiz reports whether the subject/grade pair skips the game list
// and launches the generic quiz engine directly on topic selection.
func (r *Registry) DirectToQuiz(subjectID string, grade int) bool {
	return r.directToQuiz[pairKey{subjectID, grade}]
}

func validateGrade(grade int) error {
	if grade < 6 || grade > 12 {
		return fmt.Errorf("grade %d out of range 6-12", grade)
	}
	return nil
}
