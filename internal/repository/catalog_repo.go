package repository

import (
	"database/sql"

	"stemquest/internal/database"
	"stemquest/internal/models"
)

// CatalogRepository reads the externally maintained subject/topic catalog
type CatalogRepository struct {
	db *database.DB
}

// NewCatalogRepository creates a new catalog repository
func NewCatalogRepository(db *database.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

// ListSubjects retrieves all subjects
func (r *CatalogRepository) ListSubjects() ([]models.Subject, error) {
	query := "SELECT id, name, description FROM subjects ORDER BY name ASC"

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subjects []models.Subject
	for rows.Next() {
		var subject models.Subject
		if err := rows.Scan(&subject.ID, &subject.Name, &subject.Description); err != nil {
			return nil, err
		}
		subjects = append(subjects, subject)
	}

	return subjects, rows.Err()
}

// GetSubject retrieves a subject by ID; returns nil, nil when not found
func (r *CatalogRepository) GetSubject(id string) (*models.Subject, error) {
	query := "SELECT id, name, description FROM subjects WHERE id = ?"

	subject := &models.Subject{}
	err := r.db.QueryRow(query, id).Scan(&subject.ID, &subject.Name, &subject.Description)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return subject, nil
}

// ListTopics retrieves topics for a subject and grade
func (r *CatalogRepository) ListTopics(subjectID string, grade int) ([]models.Topic, error) {
	query := `
		SELECT id, subject_id, name, description, grade
		FROM topics
		WHERE subject_id = ? AND grade = ?
		ORDER BY name ASC
	`

	rows, err := r.db.Query(query, subjectID, grade)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var topics []models.Topic
	for rows.Next() {
		var topic models.Topic
		err := rows.Scan(&topic.ID, &topic.SubjectID, &topic.Name, &topic.Description, &topic.Grade)
		if err != nil {
			return nil, err
		}
		topics = append(topics, topic)
	}

	return topics, rows.Err()
}

// GetTopic retrieves a topic by ID; returns nil, nil when not found
func (r *CatalogRepository) GetTopic(id string) (*models.Topic, error) {
	query := "SELECT id, subject_id, name, description, grade FROM topics WHERE id = ?"

	topic := &models.Topic{}
	err := r.db.QueryRow(query, id).Scan(&topic.ID, &topic.SubjectID, &topic.Name, &topic.Description, &topic.Grade)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return topic, nil
}
