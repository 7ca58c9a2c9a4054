package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/discilogo/discilogo/internal/habits"
	"github.com/discilogo/discilogo/internal/notes"
	"github.com/gin-gonic/gin"
	sqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

type adjustableClock struct {
	current time.Time
}

func (c *adjustableClock) Now() time.Time {
	return c.current
}

func (c *adjustableClock) Advance(d time.Duration) {
	c.current = c.current.Add(d)
}

func newTestRouter(t *testing.T) (http.Handler, *adjustableClock) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:server_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&habits.Habit{}, &habits.LogEntry{}, &notes.Note{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	clock := &adjustableClock{current: time.Date(2026, time.August, 31, 9, 0, 0, 0, time.UTC)}

	habitService, err := habits.NewService(habits.ServiceConfig{
		Database:   db,
		Clock:      clock.Now,
		IDProvider: habits.NewUUIDProvider(),
	})
	if err != nil {
		t.Fatalf("failed to construct habit service: %v", err)
	}
	noteService, err := notes.NewService(notes.ServiceConfig{
		Database:   db,
		Clock:      clock.Now,
		IDProvider: habits.NewUUIDProvider(),
	})
	if err != nil {
		t.Fatalf("failed to construct note service: %v", err)
	}

	handler, err := NewHTTPHandler(Dependencies{
		HabitService: habitService,
		NoteService:  noteService,
	})
	if err != nil {
		t.Fatalf("failed to construct handler: %v", err)
	}

	return handler, clock
}

func doRequest(t *testing.T, handler http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	request := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		request.Header.Set("Content-Type", "application/json")
	}

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)
	return recorder
}

func decodeBody(t *testing.T, recorder *httptest.ResponseRecorder, target any) {
	t.Helper()
	if err := json.NewDecoder(bytes.NewReader(recorder.Body.Bytes())).Decode(target); err != nil {
		t.Fatalf("failed to decode response %q: %v", recorder.Body.String(), err)
	}
}

func createHabit(t *testing.T, handler http.Handler, question string) string {
	t.Helper()

	payload, err := json.Marshal(map[string]string{"question_text": question})
	if err != nil {
		t.Fatalf("failed to marshal payload: %v", err)
	}
	recorder := doRequest(t, handler, http.MethodPost, "/habits", string(payload))
	if recorder.Code != http.StatusCreated {
		t.Fatalf("expected created status, got %d: %s", recorder.Code, recorder.Body.String())
	}

	var response struct {
		ID string `json:"id"`
	}
	decodeBody(t, recorder, &response)
	return response.ID
}

func logHabit(t *testing.T, handler http.Handler, habitID, question string, status bool, excuse string) {
	t.Helper()

	payload, err := json.Marshal(map[string]any{
		"habit_id":    habitID,
		"question":    question,
		"status":      status,
		"excuse_note": excuse,
	})
	if err != nil {
		t.Fatalf("failed to marshal payload: %v", err)
	}
	recorder := doRequest(t, handler, http.MethodPost, "/logs", string(payload))
	if recorder.Code != http.StatusCreated {
		t.Fatalf("expected created status, got %d: %s", recorder.Code, recorder.Body.String())
	}
}
