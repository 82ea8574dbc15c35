package service

import (
	"errors"
	"fmt"

	"stemquest/internal/credentials"
	"stemquest/internal/models"
	"stemquest/internal/repository"
	"stemquest/internal/security"
	"stemquest/internal/validation"
)

var ErrStudentNotFound = errors.New("student not found")

// EnrolledStudent is what an educator gets back from enrolling: the
// student record plus the one-time plaintext password to hand over.
type EnrolledStudent struct {
	Student  *models.Student `json:"student"`
	Password string          `json:"password"`
}

// StudentService manages the student roster and student sign-in.
type StudentService struct {
	studentRepo *repository.StudentRepository
	tokens      *security.PlayTokenIssuer
}

// NewStudentService creates a new student service
func NewStudentService(studentRepo *repository.StudentRepository, tokens *security.PlayTokenIssuer) *StudentService {
	return &StudentService{
		studentRepo: studentRepo,
		tokens:      tokens,
	}
}

// Enroll creates a student under an educator with generated kid-friendly
// credentials. The plaintext password is returned exactly once.
func (s *StudentService) Enroll(educatorID int64, grade int, avatarColor string) (*EnrolledStudent, error) {
	if err := validation.ValidateGrade(grade); err != nil {
		return nil, err
	}

	username, err := s.uniqueUsername()
	if err != nil {
		return nil, err
	}

	password, err := credentials.GenerateStudentPassword()
	if err != nil {
		return nil, fmt.Errorf("failed to generate password: %w", err)
	}

	passwordHash, err := security.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	student, err := s.studentRepo.CreateStudent(educatorID, username, grade, avatarColor, passwordHash)
	if err != nil {
		return nil, fmt.Errorf("failed to create student: %w", err)
	}

	return &EnrolledStudent{Student: student, Password: password}, nil
}

// uniqueUsername generates usernames until one is free. The word-pair
// space is large enough that a handful of tries always suffices.
func (s *StudentService) uniqueUsername() (string, error) {
	for attempt := 0; attempt < 10; attempt++ {
		username, err := credentials.GenerateStudentUsername()
		if err != nil {
			return "", fmt.Errorf("failed to generate username: %w", err)
		}
		existing, err := s.studentRepo.GetStudentByUsername(username)
		if err != nil {
			return "", fmt.Errorf("failed to check username: %w", err)
		}
		if existing == nil {
			return username, nil
		}
	}
	return "", errors.New("could not find a free username")
}

// SignIn authenticates a student and issues a play token.
func (s *StudentService) SignIn(username, password string) (string, *models.Student, error) {
	student, err := s.studentRepo.GetStudentByUsername(username)
	if err != nil {
		return "", nil, fmt.Errorf("failed to get student: %w", err)
	}
	if student == nil {
		return "", nil, ErrInvalidCredentials
	}

	if !security.CheckPassword(student.PasswordHash, password) {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(student.ID, student.Username)
	if err != nil {
		return "", nil, err
	}
	return token, student, nil
}

// VerifyToken resolves a play token to its student.
func (s *StudentService) VerifyToken(token string) (*models.Student, error) {
	studentID, err := s.tokens.Verify(token)
	if err != nil {
		return nil, err
	}
	student, err := s.studentRepo.GetStudent(studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get student: %w", err)
	}
	if student == nil {
		return nil, ErrStudentNotFound
	}
	return student, nil
}

// Roster lists an educator's students.
func (s *StudentService) Roster(educatorID int64) ([]models.Student, error) {
	return s.studentRepo.ListStudentsByEducator(educatorID)
}

// Get returns one student, verifying they belong to the educator.
func (s *StudentService) Get(educatorID, studentID int64) (*models.Student, error) {
	student, err := s.studentRepo.GetStudent(studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get student: %w", err)
	}
	if student == nil || student.EducatorID != educatorID {
		return nil, ErrStudentNotFound
	}
	return student, nil
}

// Update changes a student's profile fields.
func (s *StudentService) Update(educatorID, studentID int64, username string, grade int, avatarColor string) error {
	if _, err := s.Get(educatorID, studentID); err != nil {
		return err
	}
	if err := validation.ValidateStudentUsername(username); err != nil {
		return err
	}
	if err := validation.ValidateGrade(grade); err != nil {
		return err
	}
	return s.studentRepo.UpdateStudent(studentID, username, grade, avatarColor)
}

// ResetPassword issues a fresh generated password for a student and
// returns the plaintext once.
func (s *StudentService) ResetPassword(educatorID, studentID int64) (string, error) {
	if _, err := s.Get(educatorID, studentID); err != nil {
		return "", err
	}

	password, err := credentials.GenerateStudentPassword()
	if err != nil {
		return "", fmt.Errorf("failed to generate password: %w", err)
	}
	passwordHash, err := security.HashPassword(password)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.studentRepo.UpdateStudentPassword(studentID, passwordHash); err != nil {
		return "", fmt.Errorf("failed to update password: %w", err)
	}
	return password, nil
}

// Remove deletes a student and their history.
func (s *StudentService) Remove(educatorID, studentID int64) error {
	if _, err := s.Get(educatorID, studentID); err != nil {
		return err
	}
	return s.studentRepo.DeleteStudent(studentID)
}
