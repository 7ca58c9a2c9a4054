package integration_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	sqlite "github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/discilogo/discilogo/internal/habits"
	"github.com/discilogo/discilogo/internal/notes"
	"github.com/discilogo/discilogo/internal/server"
)

const jsonContentType = "application/json"

type testClock struct {
	current time.Time
}

func (c *testClock) Now() time.Time {
	return c.current
}

func newTestHandler(t *testing.T) (http.Handler, *testClock) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:integration_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&habits.Habit{}, &habits.LogEntry{}, &notes.Note{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	clock := &testClock{current: time.Date(2026, time.August, 29, 8, 0, 0, 0, time.UTC)}

	habitService, err := habits.NewService(habits.ServiceConfig{
		Database:   db,
		Clock:      clock.Now,
		IDProvider: habits.NewUUIDProvider(),
		Logger:     zap.NewNop(),
	})
	if err != nil {
		t.Fatalf("failed to build habit service: %v", err)
	}

	noteService, err := notes.NewService(notes.ServiceConfig{
		Database:   db,
		Clock:      clock.Now,
		IDProvider: habits.NewUUIDProvider(),
		Logger:     zap.NewNop(),
	})
	if err != nil {
		t.Fatalf("failed to build note service: %v", err)
	}

	handler, err := server.NewHTTPHandler(server.Dependencies{
		HabitService: habitService,
		NoteService:  noteService,
		Logger:       zap.NewNop(),
	})
	if err != nil {
		t.Fatalf("failed to build handler: %v", err)
	}

	return handler, clock
}

func postJSON(t *testing.T, handler http.Handler, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("failed to marshal payload: %v", err)
	}
	request := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	request.Header.Set("Content-Type", jsonContentType)
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)
	return recorder
}

func getJSON(t *testing.T, handler http.Handler, path string, target any) {
	t.Helper()
	request := httptest.NewRequest(http.MethodGet, path, nil)
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)
	if recorder.Code != http.StatusOK {
		t.Fatalf("GET %s returned %d: %s", path, recorder.Code, recorder.Body.String())
	}
	if err := json.Unmarshal(recorder.Body.Bytes(), target); err != nil {
		t.Fatalf("failed to decode GET %s response: %v", path, err)
	}
}

func TestThreeDayAccountabilityFlow(t *testing.T) {
	handler, clock := newTestHandler(t)

	var created struct {
		ID string `json:"id"`
	}
	recorder := postJSON(t, handler, "/habits", map[string]string{"question_text": "Did you exercise?"})
	if recorder.Code != http.StatusCreated {
		t.Fatalf("create habit returned %d: %s", recorder.Code, recorder.Body.String())
	}
	if err := json.Unmarshal(recorder.Body.Bytes(), &created); err != nil {
		t.Fatalf("failed to decode create response: %v", err)
	}
	exercise := created.ID

	clock.current = clock.current.Add(time.Minute)
	recorder = postJSON(t, handler, "/habits", map[string]string{"question_text": "Did you read?"})
	if err := json.Unmarshal(recorder.Body.Bytes(), &created); err != nil {
		t.Fatalf("failed to decode create response: %v", err)
	}
	reading := created.ID

	var pending struct {
		Habits []struct {
			ID           string `json:"id"`
			QuestionText string `json:"question_text"`
		} `json:"habits"`
	}

	// Answer everything with a yes for three consecutive days.
	for day := 0; day < 3; day++ {
		getJSON(t, handler, "/habits/pending", &pending)
		if len(pending.Habits) != 2 {
			t.Fatalf("day %d: expected 2 pending habits, got %d", day, len(pending.Habits))
		}
		for _, habit := range pending.Habits {
			recorder := postJSON(t, handler, "/logs", map[string]any{
				"habit_id": habit.ID,
				"question": habit.QuestionText,
				"status":   true,
			})
			if recorder.Code != http.StatusCreated {
				t.Fatalf("log habit returned %d: %s", recorder.Code, recorder.Body.String())
			}
			clock.current = clock.current.Add(time.Minute)
		}

		getJSON(t, handler, "/habits/pending", &pending)
		if len(pending.Habits) != 0 {
			t.Fatalf("day %d: expected empty pending queue after answering, got %d", day, len(pending.Habits))
		}

		clock.current = clock.current.Add(24 * time.Hour)
	}

	var streak struct {
		Streak int `json:"streak"`
	}
	getJSON(t, handler, "/streak", &streak)
	if streak.Streak != 3 {
		t.Fatalf("expected streak of 3, got %d", streak.Streak)
	}

	// A failure on the fourth day resets the streak.
	recorder = postJSON(t, handler, "/logs", map[string]any{
		"habit_id":    exercise,
		"question":    "Did you exercise?",
		"status":      false,
		"excuse_note": "caught a cold",
	})
	if recorder.Code != http.StatusCreated {
		t.Fatalf("log habit returned %d: %s", recorder.Code, recorder.Body.String())
	}

	getJSON(t, handler, "/streak", &streak)
	if streak.Streak != 0 {
		t.Fatalf("expected streak reset to 0, got %d", streak.Streak)
	}

	// Archiving stops prompting but keeps history; deleting removes it.
	request := httptest.NewRequest(http.MethodPost, "/habits/"+reading+"/archive", nil)
	archiveRecorder := httptest.NewRecorder()
	handler.ServeHTTP(archiveRecorder, request)
	if archiveRecorder.Code != http.StatusNoContent {
		t.Fatalf("archive returned %d", archiveRecorder.Code)
	}

	getJSON(t, handler, "/habits/pending", &pending)
	for _, habit := range pending.Habits {
		if habit.ID == reading {
			t.Fatalf("archived habit must not be pending")
		}
	}

	var recent struct {
		Logs []struct {
			HabitID string `json:"habit_id"`
		} `json:"logs"`
	}
	getJSON(t, handler, "/logs/recent?limit=50", &recent)
	kept := 0
	for _, entry := range recent.Logs {
		if entry.HabitID == reading {
			kept++
		}
	}
	if kept != 3 {
		t.Fatalf("expected archived habit to keep its 3 entries, got %d", kept)
	}

	request = httptest.NewRequest(http.MethodDelete, "/habits/"+reading, nil)
	deleteRecorder := httptest.NewRecorder()
	handler.ServeHTTP(deleteRecorder, request)
	if deleteRecorder.Code != http.StatusNoContent {
		t.Fatalf("delete returned %d", deleteRecorder.Code)
	}

	getJSON(t, handler, "/logs/recent?limit=50", &recent)
	for _, entry := range recent.Logs {
		if entry.HabitID == reading {
			t.Fatalf("deleted habit's entries must cascade away")
		}
	}
}
