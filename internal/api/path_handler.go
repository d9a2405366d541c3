package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/bandpath/internal/api/shared"
	"github.com/phrazzld/bandpath/internal/domain"
	"github.com/phrazzld/bandpath/internal/grading"
	"github.com/phrazzld/bandpath/internal/platform/logger"
	"github.com/phrazzld/bandpath/internal/service/auth"
	"github.com/phrazzld/bandpath/internal/service/learningpath"
)

// CreatePathRequest is the body of POST /paths.
type CreatePathRequest struct {
	CurrentScore *float64 `json:"current_score" validate:"required,gte=0,lte=9"`
	TargetScore  *float64 `json:"target_score"  validate:"required,gte=0,lte=9"`
	TargetDate   string   `json:"target_date"   validate:"required,datetime=2006-01-02"`
}

// RecordProgressRequest is the body of POST /paths/{id}/progress. An empty
// date means today.
type RecordProgressRequest struct {
	Date             string                       `json:"date,omitempty"          validate:"omitempty,datetime=2006-01-02"`
	EssaysCompleted  int                          `json:"essays_completed"        validate:"gte=0"`
	LessonsCompleted int                          `json:"lessons_completed"       validate:"gte=0"`
	DrillsCompleted  int                          `json:"drills_completed"        validate:"gte=0"`
	MinutesSpent     int                          `json:"minutes_spent"           validate:"gte=0"`
	AverageScore     *float64                     `json:"average_score,omitempty" validate:"omitempty,gte=0,lte=9"`
	SubScores        map[domain.FocusArea]float64 `json:"sub_scores,omitempty"    validate:"omitempty,dive,gte=0,lte=9"`
}

// RecordEssayRequest is the body of POST /paths/{id}/essays.
type RecordEssayRequest struct {
	Date         string             `json:"date,omitempty"          validate:"omitempty,datetime=2006-01-02"`
	Prompt       string             `json:"prompt,omitempty"        validate:"max=4000"`
	Text         string             `json:"text"                    validate:"required,max=20000"`
	Format       domain.TopicFormat `json:"format,omitempty"`
	MinutesSpent int                `json:"minutes_spent,omitempty" validate:"gte=0"`
}

// EvaluateRequest is the optional body of POST /paths/{id}/evaluate.
type EvaluateRequest struct {
	AsOf string `json:"as_of,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

// ChangeTargetRequest is the body of PUT /paths/{id}/target.
type ChangeTargetRequest struct {
	TargetScore *float64 `json:"target_score,omitempty" validate:"omitempty,gte=0,lte=9"`
	TargetDate  *string  `json:"target_date,omitempty"  validate:"omitempty,datetime=2006-01-02"`
}

// EvaluationResponse reports the outcome of a daily evaluation.
type EvaluationResponse struct {
	Adjusted   bool                   `json:"adjusted"`
	Adjustment *domain.PathAdjustment `json:"adjustment,omitempty"`
}

// TasksResponse wraps today's task list.
type TasksResponse struct {
	Date  string             `json:"date"`
	Tasks []domain.TodayTask `json:"tasks"`
}

// AdjustmentsResponse wraps a path's adjustment history.
type AdjustmentsResponse struct {
	Adjustments []domain.PathAdjustment `json:"adjustments"`
}

// PathHandler serves the learning path routes.
type PathHandler struct {
	service learningpath.Service
	logger  *slog.Logger
	now     func() time.Time
}

// NewPathHandler creates a PathHandler.
func NewPathHandler(service learningpath.Service, logger *slog.Logger) *PathHandler {
	if service == nil {
		// ALLOW-PANIC: constructor enforcing required dependency
		panic("service cannot be nil for PathHandler")
	}
	if logger == nil {
		// ALLOW-PANIC: constructor enforcing required dependency
		panic("logger cannot be nil for PathHandler")
	}
	return &PathHandler{
		service: service,
		logger:  logger.With(slog.String("component", "path_handler")),
		now:     time.Now,
	}
}

// Routes mounts the handler under r. Authentication is the caller's concern.
func (h *PathHandler) Routes(r chi.Router) {
	r.Post("/paths", h.CreatePath)
	r.Get("/paths/active", h.GetActivePath)
	r.Route("/paths/{id}", func(r chi.Router) {
		r.Get("/", h.GetPath)
		r.Get("/phase", h.GetActivePhase)
		r.Get("/tasks/today", h.GetTodayTasks)
		r.Post("/progress", h.RecordProgress)
		r.Get("/progress", h.GetProgressSummary)
		r.Post("/essays", h.RecordEssay)
		r.Post("/evaluate", h.RunDailyEvaluation)
		r.Get("/adjustments", h.GetAdjustmentHistory)
		r.Put("/target", h.ChangeTarget)
		r.Post("/topics/{topicID}/complete", h.CompleteTopic)
		r.Post("/pause", h.PausePath)
		r.Post("/resume", h.ResumePath)
	})
}

// CreatePath handles POST /paths.
func (h *PathHandler) CreatePath(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := shared.UserIDFromContext(r.Context())
	if !ok {
		HandleAPIError(w, r, auth.ErrMissingUserID, "")
		return
	}

	var req CreatePathRequest
	if !decodeAndValidate(w, r, &req, false) {
		return
	}

	current, err := parseScore("current_score", *req.CurrentScore)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	target, err := parseScore("target_score", *req.TargetScore)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	targetDate, err := parseOptionalDay("target_date", req.TargetDate)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	path, err := h.service.CreatePlan(r.Context(), userID, learningpath.CreatePlanRequest{
		CurrentScore: current,
		TargetScore:  target,
		TargetDate:   targetDate,
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create learning path")
		return
	}

	log.Debug("learning path created",
		slog.String("user_id", userID.String()),
		slog.String("path_id", path.ID.String()))
	w.Header().Set("Location", "/api/paths/"+path.ID.String())
	shared.RespondWithJSON(w, r, http.StatusCreated, path)
}

// GetActivePath handles GET /paths/active.
func (h *PathHandler) GetActivePath(w http.ResponseWriter, r *http.Request) {
	userID, ok := shared.UserIDFromContext(r.Context())
	if !ok {
		HandleAPIError(w, r, auth.ErrMissingUserID, "")
		return
	}

	path, err := h.service.GetActivePath(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get active learning path")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, path)
}

// GetPath handles GET /paths/{id}.
func (h *PathHandler) GetPath(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	userID, pathID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	path, err := h.service.GetPath(r.Context(), userID, pathID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get learning path")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, path)
}

// GetActivePhase handles GET /paths/{id}/phase. It answers 204 when no
// phase is in progress.
func (h *PathHandler) GetActivePhase(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	userID, pathID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	phase, err := h.service.GetActivePhase(r.Context(), userID, pathID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get active phase")
		return
	}
	if phase == nil {
		log.Debug("no active phase", slog.String("path_id", pathID.String()))
		w.WriteHeader(http.StatusNoContent)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, phase)
}

// GetTodayTasks handles GET /paths/{id}/tasks/today.
func (h *PathHandler) GetTodayTasks(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	userID, pathID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	tasks, err := h.service.GetTodayTasks(r.Context(), userID, pathID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get today's tasks")
		return
	}
	if tasks == nil {
		tasks = []domain.TodayTask{}
	}
	shared.RespondWithJSON(w, r, http.StatusOK, TasksResponse{
		Date:  domain.Day(h.now()).Format(domain.DateLayout),
		Tasks: tasks,
	})
}

// RecordProgress handles POST /paths/{id}/progress.
func (h *PathHandler) RecordProgress(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	userID, pathID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	var req RecordProgressRequest
	if !decodeAndValidate(w, r, &req, false) {
		return
	}
	day, err := parseOptionalDay("date", req.Date)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	record, err := h.service.RecordProgress(r.Context(), userID, pathID, day, domain.ProgressStats{
		EssaysCompleted:  req.EssaysCompleted,
		LessonsCompleted: req.LessonsCompleted,
		DrillsCompleted:  req.DrillsCompleted,
		MinutesSpent:     req.MinutesSpent,
		AverageScore:     req.AverageScore,
		SubScores:        req.SubScores,
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to record progress")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, record)
}

// GetProgressSummary handles GET /paths/{id}/progress.
func (h *PathHandler) GetProgressSummary(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	userID, pathID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	summary, err := h.service.GetProgressSummary(r.Context(), userID, pathID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get progress")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, summary)
}

// RecordEssay handles POST /paths/{id}/essays.
func (h *PathHandler) RecordEssay(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	userID, pathID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	var req RecordEssayRequest
	if !decodeAndValidate(w, r, &req, false) {
		return
	}
	day, err := parseOptionalDay("date", req.Date)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	result, err := h.service.RecordEssay(r.Context(), userID, pathID, day, grading.Submission{
		Prompt:       req.Prompt,
		Text:         req.Text,
		Format:       req.Format,
		MinutesSpent: req.MinutesSpent,
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to grade essay")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, result)
}

// RunDailyEvaluation handles POST /paths/{id}/evaluate.
func (h *PathHandler) RunDailyEvaluation(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	userID, pathID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	var req EvaluateRequest
	if !decodeAndValidate(w, r, &req, true) {
		return
	}
	asOf, err := parseOptionalDay("as_of", req.AsOf)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	adj, err := h.service.RunDailyEvaluation(r.Context(), userID, pathID, asOf)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to evaluate learning path")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, EvaluationResponse{Adjusted: adj != nil, Adjustment: adj})
}

// GetAdjustmentHistory handles GET /paths/{id}/adjustments.
func (h *PathHandler) GetAdjustmentHistory(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	userID, pathID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	history, err := h.service.GetAdjustmentHistory(r.Context(), userID, pathID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get adjustment history")
		return
	}
	if history == nil {
		history = []domain.PathAdjustment{}
	}
	shared.RespondWithJSON(w, r, http.StatusOK, AdjustmentsResponse{Adjustments: history})
}

// ChangeTarget handles PUT /paths/{id}/target.
func (h *PathHandler) ChangeTarget(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	userID, pathID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	var req ChangeTargetRequest
	if !decodeAndValidate(w, r, &req, false) {
		return
	}

	var change learningpath.ChangeTargetRequest
	if req.TargetScore != nil {
		score, err := parseScore("target_score", *req.TargetScore)
		if err != nil {
			HandleAPIError(w, r, err, "")
			return
		}
		change.TargetScore = &score
	}
	if req.TargetDate != nil {
		day, err := parseOptionalDay("target_date", *req.TargetDate)
		if err != nil {
			HandleAPIError(w, r, err, "")
			return
		}
		if !day.IsZero() {
			change.TargetDate = &day
		}
	}

	adj, err := h.service.ChangeTarget(r.Context(), userID, pathID, change)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to change target")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, adj)
}

// CompleteTopic handles POST /paths/{id}/topics/{topicID}/complete.
func (h *PathHandler) CompleteTopic(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	userID, pathID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}
	topicID := chi.URLParam(r, "topicID")
	if topicID == "" {
		HandleAPIError(w, r, domain.NewValidationError("topicID", "is required", nil), "")
		return
	}

	phase, err := h.service.CompleteTopic(r.Context(), userID, pathID, topicID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to complete topic")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, phase)
}

// PausePath handles POST /paths/{id}/pause.
func (h *PathHandler) PausePath(w http.ResponseWriter, r *http.Request) {
	h.setStatus(w, r, h.service.PausePath, "Failed to pause learning path")
}

// ResumePath handles POST /paths/{id}/resume.
func (h *PathHandler) ResumePath(w http.ResponseWriter, r *http.Request) {
	h.setStatus(w, r, h.service.ResumePath, "Failed to resume learning path")
}

type statusFunc func(ctx context.Context, userID, pathID uuid.UUID) (*domain.LearningPath, error)

func (h *PathHandler) setStatus(w http.ResponseWriter, r *http.Request, fn statusFunc, fallback string) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	userID, pathID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	path, err := fn(r.Context(), userID, pathID)
	if err != nil {
		HandleAPIError(w, r, err, fallback)
		return
	}
	log.Debug("learning path status set",
		slog.String("path_id", path.ID.String()),
		slog.String("status", string(path.Status)))
	shared.RespondWithJSON(w, r, http.StatusOK, path)
}
