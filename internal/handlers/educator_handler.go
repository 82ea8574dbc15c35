package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"stemquest/internal/models"
	"stemquest/internal/repository"
	"stemquest/internal/service"
	"stemquest/internal/validation"
)

// EducatorHandler serves the educator console: roster management,
// assignments, per-student progress and admin maintenance.
type EducatorHandler struct {
	studentService    *service.StudentService
	assignmentService *service.AssignmentService
	historyRepo       *repository.HistoryRepository
	backupService     *service.BackupService
	reportService     *service.ReportService
}

// NewEducatorHandler creates a new educator handler
func NewEducatorHandler(studentService *service.StudentService, assignmentService *service.AssignmentService, historyRepo *repository.HistoryRepository, backupService *service.BackupService, reportService *service.ReportService) *EducatorHandler {
	return &EducatorHandler{
		studentService:    studentService,
		assignmentService: assignmentService,
		historyRepo:       historyRepo,
		backupService:     backupService,
		reportService:     reportService,
	}
}

type enrollRequest struct {
	Grade       int    `json:"grade"`
	AvatarColor string `json:"avatarColor"`
}

// EnrollStudent creates a student with generated credentials
func (h *EducatorHandler) EnrollStudent(w http.ResponseWriter, r *http.Request) {
	educator := GetEducatorFromContext(r.Context())

	var req enrollRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidRequestBody, "", err)
		return
	}

	enrolled, err := h.studentService.Enroll(educator.ID, req.Grade, req.AvatarColor)
	if err != nil {
		var vErr *validation.ValidationError
		if errors.As(err, &vErr) {
			respondWithError(w, http.StatusBadRequest, vErr.Error(), "", nil)
			return
		}
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "enrollment failed", err)
		return
	}

	respondJSON(w, http.StatusCreated, enrolled)
}

// Roster lists the educator's students
func (h *EducatorHandler) Roster(w http.ResponseWriter, r *http.Request) {
	educator := GetEducatorFromContext(r.Context())

	students, err := h.studentService.Roster(educator.ID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "failed to list students", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"students": students})
}

// StudentProgress returns one student's record with recent history and
// per-subject performance
func (h *EducatorHandler) StudentProgress(w http.ResponseWriter, r *http.Request) {
	educator := GetEducatorFromContext(r.Context())

	studentID, err := pathID(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid student id", "", nil)
		return
	}

	student, err := h.studentService.Get(educator.ID, studentID)
	if err != nil {
		h.respondStudentError(w, err)
		return
	}

	recent, err := h.historyRepo.RecentForStudent(studentID, models.RecentHistoryLimit)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "failed to load history", err)
		return
	}

	performance, err := h.historyRepo.SubjectPerformance(studentID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "failed to load performance", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"student":     student,
		"recentGames": recent,
		"performance": performance,
	})
}

type updateStudentRequest struct {
	Username    string `json:"username"`
	Grade       int    `json:"grade"`
	AvatarColor string `json:"avatarColor"`
}

// UpdateStudent changes a student's profile
func (h *EducatorHandler) UpdateStudent(w http.ResponseWriter, r *http.Request) {
	educator := GetEducatorFromContext(r.Context())

	studentID, err := pathID(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid student id", "", nil)
		return
	}

	var req updateStudentRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidRequestBody, "", err)
		return
	}

	if err := h.studentService.Update(educator.ID, studentID, req.Username, req.Grade, req.AvatarColor); err != nil {
		var vErr *validation.ValidationError
		if errors.As(err, &vErr) {
			respondWithError(w, http.StatusBadRequest, vErr.Error(), "", nil)
			return
		}
		h.respondStudentError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// ResetStudentPassword issues a fresh password and returns it once
func (h *EducatorHandler) ResetStudentPassword(w http.ResponseWriter, r *http.Request) {
	educator := GetEducatorFromContext(r.Context())

	studentID, err := pathID(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid student id", "", nil)
		return
	}

	password, err := h.studentService.ResetPassword(educator.ID, studentID)
	if err != nil {
		h.respondStudentError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"password": password})
}

// DeleteStudent removes a student
func (h *EducatorHandler) DeleteStudent(w http.ResponseWriter, r *http.Request) {
	educator := GetEducatorFromContext(r.Context())

	studentID, err := pathID(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid student id", "", nil)
		return
	}

	if err := h.studentService.Remove(educator.ID, studentID); err != nil {
		h.respondStudentError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

type createAssignmentRequest struct {
	StudentID int64      `json:"studentId"`
	TopicID   string     `json:"topicId"`
	Note      string     `json:"note"`
	DueAt     *time.Time `json:"dueAt"`
}

// CreateAssignment assigns a topic to a student
func (h *EducatorHandler) CreateAssignment(w http.ResponseWriter, r *http.Request) {
	educator := GetEducatorFromContext(r.Context())

	var req createAssignmentRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidRequestBody, "", err)
		return
	}

	assignment, err := h.assignmentService.Assign(educator.ID, req.StudentID, req.TopicID, req.Note, req.DueAt)
	if err != nil {
		h.respondStudentError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, assignment)
}

// Assignments lists the educator's assignments
func (h *EducatorHandler) Assignments(w http.ResponseWriter, r *http.Request) {
	educator := GetEducatorFromContext(r.Context())

	assignments, err := h.assignmentService.ListForEducator(educator.ID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "failed to list assignments", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"assignments": assignments})
}

// DeleteAssignment removes one of the educator's assignments
func (h *EducatorHandler) DeleteAssignment(w http.ResponseWriter, r *http.Request) {
	educator := GetEducatorFromContext(r.Context())

	assignmentID, err := pathID(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid assignment id", "", nil)
		return
	}

	if err := h.assignmentService.Delete(educator.ID, assignmentID); err != nil {
		if errors.Is(err, service.ErrAssignmentNotFound) {
			respondWithError(w, http.StatusNotFound, "Assignment not found", "", nil)
			return
		}
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "failed to delete assignment", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// ExportBackup streams a full JSON backup (admin only)
func (h *EducatorHandler) ExportBackup(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", "attachment; filename=stemquest-backup.json")
	if err := h.backupService.ExportToWriter(w); err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "backup export failed", err)
	}
}

// ImportBackup restores from an uploaded JSON backup (admin only)
func (h *EducatorHandler) ImportBackup(w http.ResponseWriter, r *http.Request) {
	if err := h.backupService.ImportFromReader(http.MaxBytesReader(w, r.Body, 64<<20)); err != nil {
		respondWithError(w, http.StatusBadRequest, "Backup import failed", "backup import failed", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// SendReports triggers the weekly progress report run (admin only)
func (h *EducatorHandler) SendReports(w http.ResponseWriter, r *http.Request) {
	if err := h.reportService.SendAll(r.Context()); err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "report run failed", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (h *EducatorHandler) respondStudentError(w http.ResponseWriter, err error) {
	if errors.Is(err, service.ErrStudentNotFound) {
		respondWithError(w, http.StatusNotFound, "Student not found", "", nil)
		return
	}
	respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "student operation failed", err)
}

func pathID(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(r.PathValue(name), 10, 64)
}
