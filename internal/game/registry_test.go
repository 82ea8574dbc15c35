package game

import (
	"os"
	"path/filepath"
	"testing"
)

func testRegistry() *Registry {
	r := NewRegistry()
	r.AddGame("science", 6, "circuits", "circuit-builder")
	r.AddGame("science", 6, "magnets", "magnet-match")
	r.AddTopicOverview("math", 7, "math-7-overview")
	r.SetDirectToQuiz("history", 8)
	return r
}

func TestResolvePrecedence(t *testing.T) {
	r := testRegistry()

	tests := []struct {
		name      string
		subject   string
		grade     int
		topic     string
		kind      ResolutionKind
		component string
	}{
		{
			name:      "exact match wins",
			subject:   "science",
			grade:     6,
			topic:     "circuits",
			kind:      KindSpecificGame,
			component: "circuit-builder",
		},
		{
			name:      "overview pair ignores topic",
			subject:   "math",
			grade:     7,
			topic:     "fractions",
			kind:      KindTopicOverview,
			component: "math-7-overview",
		},
		{
			name:      "unknown triple falls back to generic engine",
			subject:   "science",
			grade:     9,
			topic:     "cells",
			kind:      KindGenericEngine,
			component: GenericQuizComponent,
		},
		{
			name:      "known subject unknown topic falls back",
			subject:   "science",
			grade:     6,
			topic:     "volcanoes",
			kind:      KindGenericEngine,
			component: GenericQuizComponent,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := r.Resolve(tt.subject, tt.grade, tt.topic)
			if res.Kind != tt.kind {
				t.Errorf("Resolve() kind = %v, want %v", res.Kind, tt.kind)
			}
			if res.Component != tt.component {
				t.Errorf("Resolve() component = %q, want %q", res.Component, tt.component)
			}
		})
	}
}

func TestResolveGenericEngineParams(t *testing.T) {
	r := testRegistry()

	res := r.Resolve("science", 9, "cells")
	if res.Params.SubjectID != "science" || res.Params.TopicID != "cells" || res.Params.Grade != 9 {
		t.Errorf("generic engine params = %+v, want subject/topic/grade carried through", res.Params)
	}
}

func TestDirectToQuiz(t *testing.T) {
	r := testRegistry()

	if !r.DirectToQuiz("history", 8) {
		t.Error("DirectToQuiz(history, 8) = false, want true")
	}
	if r.DirectToQuiz("history", 9) {
		t.Error("DirectToQuiz(history, 9) = true, want false")
	}
	if r.DirectToQuiz("science", 6) {
		t.Error("DirectToQuiz(science, 6) = true, want false")
	}
}

func TestLoadRegistry(t *testing.T) {
	content := `{
		"games": [
			{"subject": "science", "grade": 6, "topic": "circuits", "component": "circuit-builder"}
		],
		"topicOverviews": [
			{"subject": "math", "grade": 7, "component": "math-7-overview"}
		],
		"directToQuiz": [
			{"subject": "history", "grade": 8}
		]
	}`

	path := filepath.Join(t.TempDir(), "registry.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write registry file: %v", err)
	}

	r, err := LoadRegistry(path)
	if err != nil {
		t.Fatalf("LoadRegistry() error = %v", err)
	}

	if res := r.Resolve("science", 6, "circuits"); res.Kind != KindSpecificGame {
		t.Errorf("expected specific game, got kind %v", res.Kind)
	}
	if res := r.Resolve("math", 7, "anything"); res.Kind != KindTopicOverview {
		t.Errorf("expected topic overview, got kind %v", res.Kind)
	}
	if !r.DirectToQuiz("history", 8) {
		t.Error("expected history/8 to be direct-to-quiz")
	}
}

func TestLoadRegistryRejectsBadEntries(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name:    "grade out of range",
			content: `{"games": [{"subject": "science", "grade": 3, "topic": "x", "component": "y"}]}`,
		},
		{
			name:    "empty component",
			content: `{"games": [{"subject": "science", "grade": 6, "topic": "x", "component": ""}]}`,
		},
		{
			name: "duplicate triple",
			content: `{"games": [
				{"subject": "science", "grade": 6, "topic": "x", "component": "a"},
				{"subject": "science", "grade": 6, "topic": "x", "component": "b"}
			]}`,
		},
		{
			name:    "invalid json",
			content: `{`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "registry.json")
			if err := os.WriteFile(path, []byte(tt.content), 0o644); err != nil {
				t.Fatalf("failed to write registry file: %v", err)
			}
			if _, err := LoadRegistry(path); err == nil {
				t.Error("LoadRegistry() expected error, got nil")
			}
		})
	}
}
