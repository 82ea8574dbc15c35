package assets

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeAssetMap(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "offline_assets.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write asset map: %v", err)
	}
	return path
}

func TestNewOfflineLessonsLoadsMap(t *testing.T) {
	dir := t.TempDir()
	mapPath := writeAssetMap(t, dir, `{"topics": {"fractions": "fractions_intro.html"}}`)

	lessons, err := NewOfflineLessons(mapPath, filepath.Join(dir, "assets"))
	if err != nil {
		t.Fatalf("NewOfflineLessons: %v", err)
	}

	all := lessons.All()
	if all["fractions"] != "fractions_intro.html" {
		t.Errorf("expected curated filename, got %q", all["fractions"])
	}
}

func TestFilenameGeneratesPlaceholderOnMiss(t *testing.T) {
	dir := t.TempDir()
	mapPath := writeAssetMap(t, dir, `{"topics": {}}`)
	assetDir := filepath.Join(dir, "assets")

	lessons, err := NewOfflineLessons(mapPath, assetDir)
	if err != nil {
		t.Fatalf("NewOfflineLessons: %v", err)
	}

	filename, err := lessons.Filename("cells", "Cells")
	if err != nil {
		t.Fatalf("Filename: %v", err)
	}
	if filename != "cells.html" {
		t.Errorf("expected cells.html, got %q", filename)
	}

	data, err := os.ReadFile(filepath.Join(assetDir, filename))
	if err != nil {
		t.Fatalf("expected generated page on disk: %v", err)
	}
	if !strings.Contains(string(data), "Cells") {
		t.Error("expected generated page to carry the topic name")
	}

	// A second request reuses the cached file and map entry.
	again, err := lessons.Filename("cells", "Cells")
	if err != nil {
		t.Fatalf("Filename second call: %v", err)
	}
	if again != filename {
		t.Errorf("expected cached filename %q, got %q", filename, again)
	}
	if lessons.All()["cells"] != filename {
		t.Error("expected generated file recorded in the map")
	}
}

func TestPathRejectsTraversal(t *testing.T) {
	dir := t.TempDir()
	mapPath := writeAssetMap(t, dir, `{"topics": {}}`)

	lessons, err := NewOfflineLessons(mapPath, filepath.Join(dir, "assets"))
	if err != nil {
		t.Fatalf("NewOfflineLessons: %v", err)
	}

	if _, err := lessons.Path("../secret.html"); err == nil {
		t.Error("expected traversal rejected")
	}
	if _, err := lessons.Path("lesson.html"); err != nil {
		t.Errorf("expected plain filename accepted, got %v", err)
	}
}

func TestNewOfflineLessonsRejectsBadMap(t *testing.T) {
	dir := t.TempDir()
	mapPath := writeAssetMap(t, dir, `not json`)

	if _, err := NewOfflineLessons(mapPath, filepath.Join(dir, "assets")); err == nil {
		t.Error("expected error for malformed map")
	}
}
