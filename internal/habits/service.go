package habits

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	errMissingDatabase   = errors.New("habits: database handle is required")
	errMissingIDProvider = errors.New("habits: id provider is required")
)

// ServiceConfig describes the dependencies required by the habit store.
type ServiceConfig struct {
	Database   *gorm.DB
	Clock      func() time.Time
	IDProvider IDProvider
	Logger     *zap.Logger
}

// Service is the sole authority over persisted habits and log entries. All
// operations are synchronous round trips against the store; no mutable state
// is cached between calls.
type Service struct {
	db     *gorm.DB
	now    func() time.Time
	ids    IDProvider
	logger *zap.Logger
}

// NewService constructs the habit store from its injected dependencies.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Database == nil {
		return nil, errMissingDatabase
	}
	if cfg.IDProvider == nil {
		return nil, errMissingIDProvider
	}
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		db:     cfg.Database,
		now:    clock,
		ids:    cfg.IDProvider,
		logger: logger,
	}, nil
}

// today returns the clock's current calendar date.
func (s *Service) today() string {
	return s.now().Format(DateLayout)
}

// AddHabit creates a new active habit for the given question text.
func (s *Service) AddHabit(ctx context.Context, questionText string) (string, error) {
	trimmed := strings.TrimSpace(questionText)
	if trimmed == "" {
		return "", fmt.Errorf("%w: question text is empty", ErrValidation)
	}

	id, err := s.ids.NewID()
	if err != nil {
		return "", fmt.Errorf("habits: issue id: %w", err)
	}

	habit := Habit{
		ID:           id,
		QuestionText: trimmed,
		IsActive:     true,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.db.WithContext(ctx).Create(&habit).Error; err != nil {
		return "", storageError("create habit", err)
	}

	s.logger.Info("habit created", zap.String("habit_id", id))
	return id, nil
}

// ActiveHabits returns all active habits, oldest-created first.
func (s *Service) ActiveHabits(ctx context.Context) ([]Habit, error) {
	var found []Habit
	err := s.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("created_at ASC").
		Find(&found).Error
	if err != nil {
		return nil, storageError("list active habits", err)
	}
	return found, nil
}

// AllHabits returns every habit, active ones first, each group ordered by
// creation time ascending.
func (s *Service) AllHabits(ctx context.Context) ([]Habit, error) {
	var found []Habit
	err := s.db.WithContext(ctx).
		Order("is_active DESC, created_at ASC").
		Find(&found).Error
	if err != nil {
		return nil, storageError("list habits", err)
	}
	return found, nil
}

// ArchiveHabit soft-deletes a habit: daily prompting stops, history remains.
// Archiving an already archived habit is a no-op.
func (s *Service) ArchiveHabit(ctx context.Context, habitID string) error {
	result := s.db.WithContext(ctx).
		Model(&Habit{}).
		Where("id = ?", habitID).
		Update("is_active", false)
	if result.Error != nil {
		return storageError("archive habit", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: habit %s", ErrNotFound, habitID)
	}

	s.logger.Info("habit archived", zap.String("habit_id", habitID))
	return nil
}

// DeleteHabit permanently removes a habit and, by cascade, every log entry
// that references it.
func (s *Service) DeleteHabit(ctx context.Context, habitID string) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("habit_id = ?", habitID).Delete(&LogEntry{}).Error; err != nil {
			return err
		}
		result := tx.Where("id = ?", habitID).Delete(&Habit{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("%w: habit %s", ErrNotFound, habitID)
		}
		return nil
	})
	if err == nil {
		s.logger.Info("habit deleted", zap.String("habit_id", habitID))
		return nil
	}
	if errors.Is(err, ErrNotFound) {
		return err
	}
	return fmt.Errorf("%w: delete habit: %v", ErrConnectivity, err)
}

// LogHabit records today's answer to a habit. A failed answer requires a
// non-empty excuse note; on success any provided excuse is discarded. The
// store does not enforce one-entry-per-day itself: callers avoid duplicates by
// drawing from PendingHabitsToday.
func (s *Service) LogHabit(ctx context.Context, habitID, questionSnapshot string, status bool, excuseNote string) (string, error) {
	if strings.TrimSpace(habitID) == "" {
		return "", fmt.Errorf("%w: habit id is empty", ErrValidation)
	}
	snapshot := strings.TrimSpace(questionSnapshot)
	if snapshot == "" {
		return "", fmt.Errorf("%w: question snapshot is empty", ErrValidation)
	}
	excuse := strings.TrimSpace(excuseNote)
	if !status && excuse == "" {
		return "", fmt.Errorf("%w: failed answer requires an excuse note", ErrValidation)
	}
	if status {
		excuse = ""
	}

	id, err := s.ids.NewID()
	if err != nil {
		return "", fmt.Errorf("habits: issue id: %w", err)
	}

	recordedAt := s.now()
	entry := LogEntry{
		ID:                    id,
		Date:                  recordedAt.Format(DateLayout),
		HabitID:               habitID,
		HabitQuestionSnapshot: snapshot,
		Status:                status,
		ExcuseNote:            excuse,
		Timestamp:             recordedAt.UTC(),
	}
	if err := s.db.WithContext(ctx).Create(&entry).Error; err != nil {
		return "", storageError("create log entry", err)
	}

	s.logger.Info("habit logged",
		zap.String("habit_id", habitID),
		zap.String("date", entry.Date),
		zap.Bool("status", status))
	return id, nil
}

// PendingHabitsToday returns the active habits that have no log entry dated
// today, in ActiveHabits order.
func (s *Service) PendingHabitsToday(ctx context.Context) ([]Habit, error) {
	active, err := s.ActiveHabits(ctx)
	if err != nil {
		return nil, err
	}

	var loggedIDs []string
	err = s.db.WithContext(ctx).
		Model(&LogEntry{}).
		Where("date = ?", s.today()).
		Pluck("habit_id", &loggedIDs).Error
	if err != nil {
		return nil, storageError("list today's logged habits", err)
	}

	logged := make(map[string]struct{}, len(loggedIDs))
	for _, id := range loggedIDs {
		logged[id] = struct{}{}
	}

	pending := make([]Habit, 0, len(active))
	for _, habit := range active {
		if _, answered := logged[habit.ID]; !answered {
			pending = append(pending, habit)
		}
	}
	return pending, nil
}

// TodayLogs returns today's log entries ordered by creation time ascending.
func (s *Service) TodayLogs(ctx context.Context) ([]LogEntry, error) {
	var entries []LogEntry
	err := s.db.WithContext(ctx).
		Where("date = ?", s.today()).
		Order("timestamp ASC").
		Find(&entries).Error
	if err != nil {
		return nil, storageError("list today's logs", err)
	}
	return entries, nil
}

// RecentLogs returns up to limit most recent log entries, newest first.
func (s *Service) RecentLogs(ctx context.Context, limit int) ([]LogEntry, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("%w: limit must be positive, got %d", ErrValidation, limit)
	}

	var entries []LogEntry
	err := s.db.WithContext(ctx).
		Order("timestamp DESC").
		Limit(limit).
		Find(&entries).Error
	if err != nil {
		return nil, storageError("list recent logs", err)
	}
	return entries, nil
}

// Streak returns the number of consecutive most-recent recorded dates on which
// every log entry was a success. The count walks recorded dates only; see
// currentStreak for the gap semantics.
func (s *Service) Streak(ctx context.Context) (int, error) {
	var entries []LogEntry
	err := s.db.WithContext(ctx).
		Select("date", "status").
		Find(&entries).Error
	if err != nil {
		return 0, storageError("load log history", err)
	}
	return currentStreak(tallyByDate(entries)), nil
}
