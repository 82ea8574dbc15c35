package database

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
)

// catalogFile mirrors the structure of configs/catalog.json
type catalogFile struct {
	Subjects []struct {
		ID          string `json:"id"`
		Name        string `json:"name"`
		Description string `json:"description"`
		Topics      []struct {
			ID          string `json:"id"`
			Name        string `json:"name"`
			Description string `json:"description"`
			Grade       int    `json:"grade"`
		} `json:"topics"`
	} `json:"subjects"`
}

// SeedCatalog populates the subjects and topics tables from a JSON catalog
// file. The catalog is externally maintained; seeding only happens when the
// tables are empty so local edits survive restarts.
func (db *DB) SeedCatalog(path string) error {
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM subjects").Scan(&count); err != nil {
		return fmt.Errorf("failed to check subjects count: %w", err)
	}
	if count > 0 {
		log.Printf("Catalog already populated with %d subjects", count)
		return nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read catalog file: %w", err)
	}

	var catalog catalogFile
	if err := json.Unmarshal(content, &catalog); err != nil {
		return fmt.Errorf("failed to parse catalog file: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	subjectsAdded := 0
	topicsAdded := 0
	for _, subject := range catalog.Subjects {
		_, err := tx.Exec(
			"INSERT INTO subjects (id, name, description) VALUES (?, ?, ?)",
			subject.ID, subject.Name, subject.Description,
		)
		if err != nil {
			return fmt.Errorf("failed to insert subject %s: %w", subject.ID, err)
		}
		subjectsAdded++

		for _, topic := range subject.Topics {
			_, err := tx.Exec(
				"INSERT INTO topics (id, subject_id, name, description, grade) VALUES (?, ?, ?, ?, ?)",
				topic.ID, subject.ID, topic.Name, topic.Description, topic.Grade,
			)
			if err != nil {
				return fmt.Errorf("failed to insert topic %s: %w", topic.ID, err)
			}
			topicsAdded++
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit catalog seed: %w", err)
	}

	log.Printf("Catalog seeded: %d subjects, %d topics", subjectsAdded, topicsAdded)
	return nil
}
