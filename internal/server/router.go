package server

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/discilogo/discilogo/internal/habits"
	"github.com/discilogo/discilogo/internal/notes"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const defaultRecentLimit = 10

var (
	errMissingHabitService = errors.New("habit service dependency required")
	errMissingNoteService  = errors.New("note service dependency required")
)

// Dependencies lists the collaborators the HTTP layer is wired with.
type Dependencies struct {
	HabitService *habits.Service
	NoteService  *notes.Service
	Logger       *zap.Logger
	RecentLimit  int
}

// NewHTTPHandler builds the gin router exposing the habit tracker API.
func NewHTTPHandler(deps Dependencies) (http.Handler, error) {
	if deps.HabitService == nil {
		return nil, errMissingHabitService
	}
	if deps.NoteService == nil {
		return nil, errMissingNoteService
	}

	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	recentLimit := deps.RecentLimit
	if recentLimit <= 0 {
		recentLimit = defaultRecentLimit
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{"Content-Type"},
		MaxAge:       12 * time.Hour,
	}))

	handler := &httpHandler{
		habitService: deps.HabitService,
		noteService:  deps.NoteService,
		logger:       logger,
		recentLimit:  recentLimit,
	}

	router.GET("/healthz", handler.handleHealth)

	router.POST("/habits", handler.handleCreateHabit)
	router.GET("/habits", handler.handleListHabits)
	router.GET("/habits/pending", handler.handlePendingHabits)
	router.POST("/habits/:id/archive", handler.handleArchiveHabit)
	router.DELETE("/habits/:id", handler.handleDeleteHabit)

	router.POST("/logs", handler.handleCreateLog)
	router.GET("/logs/today", handler.handleTodayLogs)
	router.GET("/logs/recent", handler.handleRecentLogs)
	router.GET("/streak", handler.handleStreak)

	router.POST("/notes", handler.handleCreateNote)
	router.GET("/notes", handler.handleListNotes)
	router.DELETE("/notes/:id", handler.handleDeleteNote)

	return router, nil
}

type httpHandler struct {
	habitService *habits.Service
	noteService  *notes.Service
	logger       *zap.Logger
	recentLimit  int
}

type habitPayload struct {
	ID           string    `json:"id"`
	QuestionText string    `json:"question_text"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
}

type logEntryPayload struct {
	ID         string    `json:"id"`
	Date       string    `json:"date"`
	HabitID    string    `json:"habit_id"`
	Question   string    `json:"question"`
	Status     bool      `json:"status"`
	ExcuseNote string    `json:"excuse_note,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

type notePayload struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

func habitPayloads(found []habits.Habit) []habitPayload {
	payloads := make([]habitPayload, 0, len(found))
	for _, habit := range found {
		payloads = append(payloads, habitPayload{
			ID:           habit.ID,
			QuestionText: habit.QuestionText,
			IsActive:     habit.IsActive,
			CreatedAt:    habit.CreatedAt,
		})
	}
	return payloads
}

func logEntryPayloads(entries []habits.LogEntry) []logEntryPayload {
	payloads := make([]logEntryPayload, 0, len(entries))
	for _, entry := range entries {
		payloads = append(payloads, logEntryPayload{
			ID:         entry.ID,
			Date:       entry.Date,
			HabitID:    entry.HabitID,
			Question:   entry.HabitQuestionSnapshot,
			Status:     entry.Status,
			ExcuseNote: entry.ExcuseNote,
			Timestamp:  entry.Timestamp,
		})
	}
	return payloads
}

// respondStoreError maps the store taxonomy onto HTTP statuses. Nothing is
// retried here; the client owns the retry decision.
func (h *httpHandler) respondStoreError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, habits.ErrValidation) || errors.Is(err, notes.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
	case errors.Is(err, habits.ErrNotFound) || errors.Is(err, notes.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found"})
	case errors.Is(err, habits.ErrConnectivity) || errors.Is(err, notes.ErrConnectivity):
		h.logger.Error("store unreachable", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "storage_unavailable"})
	default:
		h.logger.Error("store operation failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
	}
}

func (h *httpHandler) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type createHabitPayload struct {
	QuestionText string `json:"question_text"`
}

func (h *httpHandler) handleCreateHabit(c *gin.Context) {
	var request createHabitPayload
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}

	id, err := h.habitService.AddHabit(c.Request.Context(), request.QuestionText)
	if err != nil {
		h.respondStoreError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

func (h *httpHandler) handleListHabits(c *gin.Context) {
	var (
		found []habits.Habit
		err   error
	)
	if c.Query("active") == "true" {
		found, err = h.habitService.ActiveHabits(c.Request.Context())
	} else {
		found, err = h.habitService.AllHabits(c.Request.Context())
	}
	if err != nil {
		h.respondStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"habits": habitPayloads(found)})
}

func (h *httpHandler) handlePendingHabits(c *gin.Context) {
	pending, err := h.habitService.PendingHabitsToday(c.Request.Context())
	if err != nil {
		h.respondStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"habits": habitPayloads(pending)})
}

func (h *httpHandler) handleArchiveHabit(c *gin.Context) {
	if err := h.habitService.ArchiveHabit(c.Request.Context(), c.Param("id")); err != nil {
		h.respondStoreError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *httpHandler) handleDeleteHabit(c *gin.Context) {
	if err := h.habitService.DeleteHabit(c.Request.Context(), c.Param("id")); err != nil {
		h.respondStoreError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type createLogPayload struct {
	HabitID    string `json:"habit_id"`
	Question   string `json:"question"`
	Status     bool   `json:"status"`
	ExcuseNote string `json:"excuse_note"`
}

func (h *httpHandler) handleCreateLog(c *gin.Context) {
	var request createLogPayload
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}

	id, err := h.habitService.LogHabit(c.Request.Context(), request.HabitID, request.Question, request.Status, request.ExcuseNote)
	if err != nil {
		h.respondStoreError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

func (h *httpHandler) handleTodayLogs(c *gin.Context) {
	entries, err := h.habitService.TodayLogs(c.Request.Context())
	if err != nil {
		h.respondStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"logs": logEntryPayloads(entries)})
}

func (h *httpHandler) handleRecentLogs(c *gin.Context) {
	limit := h.recentLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
			return
		}
		limit = parsed
	}

	entries, err := h.habitService.RecentLogs(c.Request.Context(), limit)
	if err != nil {
		h.respondStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"logs": logEntryPayloads(entries)})
}

func (h *httpHandler) handleStreak(c *gin.Context) {
	streak, err := h.habitService.Streak(c.Request.Context())
	if err != nil {
		h.respondStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"streak": streak})
}

type createNotePayload struct {
	Content string `json:"content"`
}

func (h *httpHandler) handleCreateNote(c *gin.Context) {
	var request createNotePayload
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}

	id, err := h.noteService.AddNote(c.Request.Context(), request.Content)
	if err != nil {
		h.respondStoreError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

func (h *httpHandler) handleListNotes(c *gin.Context) {
	found, err := h.noteService.Notes(c.Request.Context())
	if err != nil {
		h.respondStoreError(c, err)
		return
	}
	payloads := make([]notePayload, 0, len(found))
	for _, note := range found {
		payloads = append(payloads, notePayload{ID: note.ID, Content: note.Content, CreatedAt: note.CreatedAt})
	}
	c.JSON(http.StatusOK, gin.H{"notes": payloads})
}

func (h *httpHandler) handleDeleteNote(c *gin.Context) {
	if err := h.noteService.DeleteNote(c.Request.Context(), c.Param("id")); err != nil {
		h.respondStoreError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
