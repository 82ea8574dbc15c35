package handlers

import (
	"errors"
	"net/http"

	"stemquest/internal/game"
	"stemquest/internal/models"
	"stemquest/internal/nav"
	"stemquest/internal/repository"
	"stemquest/internal/service"
)

// PlayHandler serves the student-facing play flow: sign-in, dashboard,
// navigation, the session heartbeat and game completion.
type PlayHandler struct {
	studentService *service.StudentService
	playService    *service.PlayService
	catalogRepo    *repository.CatalogRepository
	chat           service.ChatResponder
}

// NewPlayHandler creates a new play handler
func NewPlayHandler(studentService *service.StudentService, playService *service.PlayService, catalogRepo *repository.CatalogRepository, chat service.ChatResponder) *PlayHandler {
	return &PlayHandler{
		studentService: studentService,
		playService:    playService,
		catalogRepo:    catalogRepo,
		chat:           chat,
	}
}

type studentLoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type studentLoginResponse struct {
	Token   string          `json:"token"`
	Student *models.Student `json:"student"`
	Nav     nav.State       `json:"nav"`
}

// Login signs a student in, opens their play session and starts the
// playtime timer
func (h *PlayHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req studentLoginRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidRequestBody, "", err)
		return
	}

	token, student, err := h.studentService.SignIn(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			respondWithError(w, http.StatusUnauthorized, "Invalid username or password", "", nil)
			return
		}
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "student login failed", err)
		return
	}

	session, err := h.playService.BeginSession(student.ID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "failed to open play session", err)
		return
	}

	respondJSON(w, http.StatusOK, studentLoginResponse{
		Token:   token,
		Student: student,
		Nav:     session.Nav.State(),
	})
}

// Logout ends the play session, flushing pending playtime
func (h *PlayHandler) Logout(w http.ResponseWriter, r *http.Request) {
	student := GetStudentFromContext(r.Context())
	h.playService.EndSession(student.ID)
	respondJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// Dashboard returns the student's home view
func (h *PlayHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	student := GetStudentFromContext(r.Context())

	dashboard, err := h.playService.Dashboard(student.ID)
	if err != nil {
		h.respondFlowError(w, "failed to build dashboard", err)
		return
	}
	respondJSON(w, http.StatusOK, dashboard)
}

// Heartbeat keeps the playtime timer alive
func (h *PlayHandler) Heartbeat(w http.ResponseWriter, r *http.Request) {
	student := GetStudentFromContext(r.Context())
	h.playService.Heartbeat(student.ID)
	respondJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

type navResponse struct {
	Nav         nav.State        `json:"nav"`
	Resolution  *game.Resolution `json:"resolution,omitempty"`
	Placeholder string           `json:"placeholder,omitempty"`
}

// StartLearning moves from the dashboard to subject selection
func (h *PlayHandler) StartLearning(w http.ResponseWriter, r *http.Request) {
	student := GetStudentFromContext(r.Context())
	state, err := h.playService.StartLearning(student.ID)
	h.respondNav(w, student, state, err)
}

// OpenAssignments moves to the assignments view
func (h *PlayHandler) OpenAssignments(w http.ResponseWriter, r *http.Request) {
	student := GetStudentFromContext(r.Context())
	state, err := h.playService.OpenAssignments(student.ID)
	h.respondNav(w, student, state, err)
}

// ChooseSubject records a subject selection
func (h *PlayHandler) ChooseSubject(w http.ResponseWriter, r *http.Request) {
	student := GetStudentFromContext(r.Context())
	state, err := h.playService.ChooseSubject(student.ID, r.PathValue("subject"))
	h.respondNav(w, student, state, err)
}

// ChooseTopic records a topic selection
func (h *PlayHandler) ChooseTopic(w http.ResponseWriter, r *http.Request) {
	student := GetStudentFromContext(r.Context())
	state, err := h.playService.ChooseTopic(student.ID, r.PathValue("topic"))
	h.respondNav(w, student, state, err)
}

// StartQuiz jumps straight into the generic quiz for a topic
func (h *PlayHandler) StartQuiz(w http.ResponseWriter, r *http.Request) {
	student := GetStudentFromContext(r.Context())
	state, err := h.playService.StartQuiz(student.ID, r.PathValue("topic"))
	h.respondNav(w, student, state, err)
}

// ChooseGame starts a specific game
func (h *PlayHandler) ChooseGame(w http.ResponseWriter, r *http.Request) {
	student := GetStudentFromContext(r.Context())
	state, err := h.playService.ChooseGame(student.ID, r.PathValue("game"))
	h.respondNav(w, student, state, err)
}

// Back navigates one level out; ?to=subjects|topics|dashboard
func (h *PlayHandler) Back(w http.ResponseWriter, r *http.Request) {
	student := GetStudentFromContext(r.Context())
	state, err := h.playService.Back(student.ID, r.URL.Query().Get("to"))
	h.respondNav(w, student, state, err)
}

type completeGameRequest struct {
	Score float64 `json:"score"`
	Total float64 `json:"total"`
}

// CompleteGame reports a finished game and returns the updated stats
func (h *PlayHandler) CompleteGame(w http.ResponseWriter, r *http.Request) {
	student := GetStudentFromContext(r.Context())

	var req completeGameRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidRequestBody, "", err)
		return
	}

	result, err := h.playService.CompleteGame(student.ID, req.Score, req.Total)
	if err != nil {
		h.respondFlowError(w, "game completion failed", err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// OverallPerformance returns the per-subject aggregates and moves the
// student to the performance view
func (h *PlayHandler) OverallPerformance(w http.ResponseWriter, r *http.Request) {
	student := GetStudentFromContext(r.Context())

	state, err := h.playService.OpenOverallPerformance(student.ID)
	if err != nil {
		h.respondFlowError(w, "failed to open performance view", err)
		return
	}

	performance, err := h.playService.OverallPerformance(student.ID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "failed to aggregate performance", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"nav":         state,
		"performance": performance,
	})
}

// Subjects lists the subject catalog
func (h *PlayHandler) Subjects(w http.ResponseWriter, r *http.Request) {
	subjects, err := h.catalogRepo.ListSubjects()
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "failed to list subjects", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"subjects": subjects})
}

// Topics lists a subject's topics for the student's grade
func (h *PlayHandler) Topics(w http.ResponseWriter, r *http.Request) {
	student := GetStudentFromContext(r.Context())

	topics, err := h.catalogRepo.ListTopics(r.PathValue("subject"), student.Grade)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "failed to list topics", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"topics": topics})
}

type chatRequest struct {
	Message string `json:"message"`
}

// Chat answers a help-chat message with a canned reply
func (h *PlayHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidRequestBody, "", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"reply": h.chat.Respond(req.Message)})
}

func (h *PlayHandler) respondNav(w http.ResponseWriter, student *models.Student, state nav.State, err error) {
	if err != nil {
		h.respondFlowError(w, "navigation failed", err)
		return
	}

	resp := navResponse{Nav: state}
	// Game selection and play views need to know which component the
	// registry resolved for the current selection. Playing with nothing
	// resolved renders a neutral holding screen on the client.
	if state.View == nav.ViewGames || state.View == nav.ViewPlaying {
		if resolution, ok := h.playService.CurrentResolution(student.ID); ok {
			resp.Resolution = &resolution
		} else if state.View == nav.ViewPlaying {
			resp.Placeholder = "preparing"
		}
	}
	respondJSON(w, http.StatusOK, resp)
}

func (h *PlayHandler) respondFlowError(w http.ResponseWriter, logMsg string, err error) {
	switch {
	case errors.Is(err, service.ErrNoPlaySession):
		respondWithError(w, http.StatusConflict, "No active play session, sign in again", "", nil)
	case errors.Is(err, nav.ErrInvalidTransition):
		respondWithError(w, http.StatusConflict, "That move is not allowed right now", "", nil)
	default:
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, logMsg, err)
	}
}
