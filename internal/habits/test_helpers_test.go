package habits

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

type staticIDGenerator struct {
	ids   []string
	index int
}

func (g *staticIDGenerator) NewID() (string, error) {
	if g.index >= len(g.ids) {
		return "", errors.New("exhausted ids")
	}
	id := g.ids[g.index]
	g.index++
	return id, nil
}

type adjustableClock struct {
	current time.Time
}

func (c *adjustableClock) Now() time.Time {
	return c.current
}

func (c *adjustableClock) Advance(d time.Duration) {
	c.current = c.current.Add(d)
}

func (c *adjustableClock) Set(moment time.Time) {
	c.current = moment
}

func newTestService(t *testing.T, ids []string) (*Service, *adjustableClock, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:habits_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&Habit{}, &LogEntry{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	clock := &adjustableClock{current: time.Date(2026, time.August, 31, 9, 0, 0, 0, time.UTC)}
	service, err := NewService(ServiceConfig{
		Database:   db,
		Clock:      clock.Now,
		IDProvider: &staticIDGenerator{ids: ids},
	})
	if err != nil {
		t.Fatalf("failed to construct habit service: %v", err)
	}

	return service, clock, db
}

func mustAddHabit(t *testing.T, service *Service, question string) string {
	t.Helper()
	id, err := service.AddHabit(context.Background(), question)
	if err != nil {
		t.Fatalf("unexpected add habit error: %v", err)
	}
	return id
}

func mustLogHabit(t *testing.T, service *Service, habitID, question string, status bool, excuse string) string {
	t.Helper()
	id, err := service.LogHabit(context.Background(), habitID, question, status, excuse)
	if err != nil {
		t.Fatalf("unexpected log habit error: %v", err)
	}
	return id
}

func sequentialIDs(prefix string, count int) []string {
	ids := make([]string, 0, count)
	for i := 1; i <= count; i++ {
		ids = append(ids, fmt.Sprintf("%s-%d", prefix, i))
	}
	return ids
}
