package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/focusnest/prep-service/internal/progress"
	"github.com/focusnest/prep-service/internal/tracker"
	sharedauth "github.com/focusnest/prep-service/shared-libs/auth"
	"github.com/focusnest/prep-service/shared-libs/dto"
	apperrors "github.com/focusnest/prep-service/shared-libs/errors"
)

const (
	serviceTimeout = 10 * time.Second
	maxBodyBytes   = 1 << 20
)

// Service is the journey API the handlers drive. *tracker.Service satisfies it.
type Service interface {
	AddTask(ctx context.Context, userID string, draft tracker.TaskDraft) (progress.Task, error)
	ToggleTask(ctx context.Context, userID, taskID string) (tracker.ToggleResult, error)
	DeleteTask(ctx context.Context, userID, taskID string) error
	ListTasks(ctx context.Context, userID, slot string) ([]progress.Task, error)
	GetProgress(ctx context.Context, userID string) (tracker.ProgressView, error)
	ListMilestones(ctx context.Context, userID string) ([]progress.MilestoneGroup, error)
	ListAchievements(ctx context.Context, userID string) ([]progress.Achievement, error)
	GetGoals(ctx context.Context, userID string) (*progress.Goals, error)
	UpdateGoals(ctx context.Context, userID string, goals progress.Goals) (progress.Goals, error)
	ResetJourney(ctx context.Context, userID string) (tracker.Journey, error)
	Summary(ctx context.Context, userID string) (progress.Summary, error)
	CurrentStreak(ctx context.Context, userID string) (progress.CurrentStreak, error)
	WeeklyStreak(ctx context.Context, userID string, anchor time.Time) (progress.WeeklyStreak, error)
	MonthlyStreak(ctx context.Context, userID string, year int, month time.Month) (progress.MonthlyStreak, error)
}

type handler struct {
	service Service
}

type goalsResponse struct {
	Configured bool            `json:"configured"`
	Goals      *progress.Goals `json:"goals"`
}

type resetResponse struct {
	StartedAt  time.Time            `json:"started_at"`
	Milestones []progress.Milestone `json:"milestones"`
}

// RegisterRoutes registers the journey routes.
func RegisterRoutes(r chi.Router, svc Service) {
	h := &handler{service: svc}

	r.Route("/v1/tasks", func(r chi.Router) {
		r.Get("/", h.listTasks)
		r.Post("/", h.createTask)
		r.Post("/{id}/toggle", h.toggleTask)
		r.Delete("/{id}", h.deleteTask)
	})

	r.Get("/v1/progress", h.getProgress)
	r.Get("/v1/milestones", h.listMilestones)
	r.Get("/v1/achievements", h.listAchievements)
	r.Get("/v1/goals", h.getGoals)
	r.Put("/v1/goals", h.updateGoals)
	r.Post("/v1/journey/reset", h.resetJourney)
	r.Get("/v1/summary", h.getSummary)

	r.Route("/v1/streaks", func(r chi.Router) {
		r.Get("/current", h.getCurrentStreak)
		r.Get("/week", h.getWeeklyStreak)
		r.Get("/month", h.getMonthlyStreak)
	})
}

func (h *handler) listTasks(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), serviceTimeout)
	defer cancel()

	tasks, err := h.service.ListTasks(ctx, userID, queryFirst(r, "time_slot", "timeSlot", "slot"))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.NewList(tasks))
}

func (h *handler) createTask(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var draft tracker.TaskDraft
	if err := decodeJSON(w, r, &draft); err != nil {
		writeError(w, r, apperrors.CodeBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), serviceTimeout)
	defer cancel()

	task, err := h.service.AddTask(ctx, userID, draft)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, task)
}

func (h *handler) toggleTask(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		writeError(w, r, apperrors.CodeBadRequest, "task ID required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), serviceTimeout)
	defer cancel()

	res, err := h.service.ToggleTask(ctx, userID, id)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	if res.Task == nil {
		writeError(w, r, apperrors.CodeNotFound, "task not found")
		return
	}
	if res.Unlocked == nil {
		res.Unlocked = []progress.Achievement{}
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *handler) deleteTask(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		writeError(w, r, apperrors.CodeBadRequest, "task ID required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), serviceTimeout)
	defer cancel()

	if err := h.service.DeleteTask(ctx, userID, id); err != nil {
		respondServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) getProgress(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), serviceTimeout)
	defer cancel()

	view, err := h.service.GetProgress(ctx, userID)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *handler) listMilestones(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), serviceTimeout)
	defer cancel()

	groups, err := h.service.ListMilestones(ctx, userID)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.NewList(groups))
}

func (h *handler) listAchievements(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), serviceTimeout)
	defer cancel()

	achievements, err := h.service.ListAchievements(ctx, userID)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.NewList(achievements))
}

func (h *handler) getGoals(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), serviceTimeout)
	defer cancel()

	goals, err := h.service.GetGoals(ctx, userID)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, goalsResponse{Configured: goals != nil, Goals: goals})
}

func (h *handler) updateGoals(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var goals progress.Goals
	if err := decodeJSON(w, r, &goals); err != nil {
		writeError(w, r, apperrors.CodeBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), serviceTimeout)
	defer cancel()

	saved, err := h.service.UpdateGoals(ctx, userID, goals)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, goalsResponse{Configured: true, Goals: &saved})
}

func (h *handler) resetJourney(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), serviceTimeout)
	defer cancel()

	j, err := h.service.ResetJourney(ctx, userID)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resetResponse{StartedAt: j.StartedAt, Milestones: j.Milestones})
}

func (h *handler) getSummary(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), serviceTimeout)
	defer cancel()

	summary, err := h.service.Summary(ctx, userID)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (h *handler) getCurrentStreak(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), serviceTimeout)
	defer cancel()

	streak, err := h.service.CurrentStreak(ctx, userID)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, streak)
}

// getWeeklyStreak accepts an optional date=YYYY-MM-DD selecting the week.
func (h *handler) getWeeklyStreak(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var anchor time.Time
	if raw := r.URL.Query().Get("date"); raw != "" {
		parsed, err := time.Parse(progress.DayLayout, raw)
		if err != nil {
			writeError(w, r, apperrors.CodeBadRequest, "invalid date format, use YYYY-MM-DD")
			return
		}
		// Noon keeps the anchor on the same calendar day in any configured zone.
		anchor = parsed.Add(12 * time.Hour)
	}

	ctx, cancel := context.WithTimeout(r.Context(), serviceTimeout)
	defer cancel()

	streak, err := h.service.WeeklyStreak(ctx, userID, anchor)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, streak)
}

// getMonthlyStreak accepts optional month (1-12) and year; both default to the current month.
func (h *handler) getMonthlyStreak(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var (
		month int
		year  int
	)
	if ms := r.URL.Query().Get("month"); ms != "" {
		m, err := strconv.Atoi(ms)
		if err != nil || m < 1 || m > 12 {
			writeError(w, r, apperrors.CodeBadRequest, "invalid month (1-12)")
			return
		}
		month = m
	}
	if ys := r.URL.Query().Get("year"); ys != "" {
		y, err := strconv.Atoi(ys)
		if err != nil || y < 1970 || y > 2100 {
			writeError(w, r, apperrors.CodeBadRequest, "invalid year (1970-2100)")
			return
		}
		year = y
	}
	if (month == 0) != (year == 0) {
		writeError(w, r, apperrors.CodeBadRequest, "month and year must be given together")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), serviceTimeout)
	defer cancel()

	streak, err := h.service.MonthlyStreak(ctx, userID, year, time.Month(month))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, streak)
}

func respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, tracker.ErrNotFound):
		writeError(w, r, apperrors.CodeNotFound, "task not found")
	case errors.Is(err, tracker.ErrMissingUserID):
		writeError(w, r, apperrors.CodeUnauthorized, "missing user ID")
	case errors.Is(err, tracker.ErrInvalidInput):
		msg := strings.TrimSpace(err.Error())
		if i := strings.Index(msg, ":"); i >= 0 {
			msg = strings.TrimSpace(msg[i+1:])
		}
		writeError(w, r, apperrors.CodeBadRequest, msg)
	case errors.Is(err, context.DeadlineExceeded):
		writeError(w, r, apperrors.CodeTimeout, "request timed out")
	default:
		writeError(w, r, apperrors.CodeInternal, "internal server error")
	}
}

// requireUser resolves the caller from the verified token, falling back to the internal header.
func requireUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	if user, ok := sharedauth.UserFromContext(r.Context()); ok && user.UserID != "" {
		return user.UserID, true
	}
	if v := headerUserID(r); v != "" {
		return v, true
	}
	writeError(w, r, apperrors.CodeUnauthorized, "missing user ID")
	return "", false
}

func headerUserID(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get("X-User-ID"))
}

func queryFirst(r *http.Request, keys ...string) string {
	q := r.URL.Query()
	for _, key := range keys {
		if v := q.Get(key); v != "" {
			return v
		}
	}
	return ""
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return errors.New("invalid JSON payload")
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, r *http.Request, code, message string) {
	writeJSON(w, apperrors.ToStatusCode(code), apperrors.ErrorResponse{
		Code:      code,
		Message:   message,
		RequestID: middleware.GetReqID(r.Context()),
	})
}
