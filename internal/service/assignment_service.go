package service

import (
	"errors"
	"fmt"
	"time"

	"stemquest/internal/models"
	"stemquest/internal/repository"
)

var ErrAssignmentNotFound = errors.New("assignment not found")

// AssignmentService lets educators assign topics to their students.
type AssignmentService struct {
	assignmentRepo *repository.AssignmentRepository
	catalogRepo    *repository.CatalogRepository
	studentRepo    *repository.StudentRepository
}

// NewAssignmentService creates a new assignment service
func NewAssignmentService(assignmentRepo *repository.AssignmentRepository, catalogRepo *repository.CatalogRepository, studentRepo *repository.StudentRepository) *AssignmentService {
	return &AssignmentService{
		assignmentRepo: assignmentRepo,
		catalogRepo:    catalogRepo,
		studentRepo:    studentRepo,
	}
}

// Assign creates an assignment of a topic to one of the educator's students
func (s *AssignmentService) Assign(educatorID, studentID int64, topicID, note string, dueAt *time.Time) (*models.Assignment, error) {
	student, err := s.studentRepo.GetStudent(studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get student: %w", err)
	}
	if student == nil || student.EducatorID != educatorID {
		return nil, ErrStudentNotFound
	}

	topic, err := s.catalogRepo.GetTopic(topicID)
	if err != nil {
		return nil, fmt.Errorf("failed to get topic: %w", err)
	}
	if topic == nil {
		return nil, fmt.Errorf("unknown topic %q", topicID)
	}

	assignment, err := s.assignmentRepo.Create(educatorID, studentID, topic.SubjectID, topic.ID, note, dueAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create assignment: %w", err)
	}
	return assignment, nil
}

// ListForEducator returns all assignments the educator has created
func (s *AssignmentService) ListForEducator(educatorID int64) ([]models.Assignment, error) {
	return s.assignmentRepo.ListForEducator(educatorID)
}

// ListForStudent returns a student's assignments, pending first
func (s *AssignmentService) ListForStudent(studentID int64) ([]models.Assignment, error) {
	return s.assignmentRepo.ListForStudent(studentID)
}

// Delete removes an assignment after checking it belongs to the educator
func (s *AssignmentService) Delete(educatorID, assignmentID int64) error {
	assignments, err := s.assignmentRepo.ListForEducator(educatorID)
	if err != nil {
		return fmt.Errorf("failed to list assignments: %w", err)
	}
	for _, a := range assignments {
		if a.ID == assignmentID {
			return s.assignmentRepo.Delete(assignmentID)
		}
	}
	return ErrAssignmentNotFound
}
