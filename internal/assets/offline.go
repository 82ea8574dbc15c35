package assets

import (
	"encoding/json"
	"fmt"
	"html"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// OfflineLessons serves the downloadable lesson pages students keep for
// offline study. A JSON map file pins curated filenames per topic;
// topics without a curated page get a generated placeholder that is
// cached on disk after the first request.
type OfflineLessons struct {
	assetDir string

	mu      sync.RWMutex
	byTopic map[string]string // topic ID -> filename
}

type assetMapFile struct {
	Topics map[string]string `json:"topics"`
}

// NewOfflineLessons loads the topic-to-filename map and prepares the
// asset directory.
func NewOfflineLessons(mapPath, assetDir string) (*OfflineLessons, error) {
	data, err := os.ReadFile(mapPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read offline asset map: %w", err)
	}

	var file assetMapFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse offline asset map: %w", err)
	}

	if err := os.MkdirAll(assetDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create asset directory: %w", err)
	}

	byTopic := file.Topics
	if byTopic == nil {
		byTopic = make(map[string]string)
	}

	return &OfflineLessons{
		assetDir: assetDir,
		byTopic:  byTopic,
	}, nil
}

// All returns a copy of the full topic-to-filename map so clients can
// download every lesson up front.
func (s *OfflineLessons) All() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]string, len(s.byTopic))
	for topic, filename := range s.byTopic {
		out[topic] = filename
	}
	return out
}

// Filename returns the lesson filename for a topic, generating and
// caching a placeholder page when no curated one exists.
func (s *OfflineLessons) Filename(topicID, topicName string) (string, error) {
	s.mu.RLock()
	filename, ok := s.byTopic[topicID]
	s.mu.RUnlock()

	if !ok {
		filename = sanitizeFilename(topicID) + ".html"
	}

	path := filepath.Join(s.assetDir, filename)
	if _, err := os.Stat(path); err == nil {
		return filename, nil
	}

	if err := s.writePlaceholder(path, topicName); err != nil {
		return "", fmt.Errorf("failed to generate lesson page: %w", err)
	}

	s.mu.Lock()
	s.byTopic[topicID] = filename
	s.mu.Unlock()

	return filename, nil
}

// Path resolves a filename inside the asset directory, rejecting
// anything that would escape it.
func (s *OfflineLessons) Path(filename string) (string, error) {
	cleaned := filepath.Base(filepath.Clean(filename))
	if cleaned != filename || cleaned == "." || cleaned == ".." {
		return "", fmt.Errorf("invalid asset filename %q", filename)
	}
	return filepath.Join(s.assetDir, cleaned), nil
}

func (s *OfflineLessons) writePlaceholder(path, topicName string) error {
	title := html.EscapeString(topicName)
	if title == "" {
		title = "Study Guide"
	}
	page := fmt.Sprintf(`<!DOCTYPE html>
<html lang="en">
<head><meta charset="utf-8"><title>%s</title></head>
<body>
<h1>%s</h1>
<p>This study guide works without an internet connection. Review the key
ideas below, then come back online to play the games for this topic.</p>
</body>
</html>
`, title, title)
	return os.WriteFile(path, []byte(page), 0o644)
}

func sanitizeFilename(name string) string {
	sanitized := strings.ToLower(strings.TrimSpace(name))
	sanitized = strings.ReplaceAll(sanitized, " ", "_")
	sanitized = strings.ReplaceAll(sanitized, string(filepath.Separator), "_")
	return sanitized
}
