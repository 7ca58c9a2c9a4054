package notes

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
	errMissingDatabase   = errors.New("notes: database handle is required")
	errMissingIDProvider = errors.New("notes: id provider is required")
)

// IDProvider issues unique identifiers for newly created notes.
type IDProvider interface {
	NewID() (string, error)
}

// ServiceConfig describes the dependencies required by the note store.
type ServiceConfig struct {
	Database   *gorm.DB
	Clock      func() time.Time
	IDProvider IDProvider
	Logger     *zap.Logger
}

// Service owns persisted notes.
type Service struct {
	db     *gorm.DB
	now    func() time.Time
	ids    IDProvider
	logger *zap.Logger
}

// NewService constructs the note store from its injected dependencies.
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
	return &Service{db: cfg.Database, now: clock, ids: cfg.IDProvider, logger: logger}, nil
}

// AddNote appends a new note.
func (s *Service) AddNote(ctx context.Context, content string) (string, error) {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return "", fmt.Errorf("%w: content is empty", ErrValidation)
	}

	id, err := s.ids.NewID()
	if err != nil {
		return "", fmt.Errorf("notes: issue id: %w", err)
	}

	note := Note{ID: id, Content: trimmed, CreatedAt: s.now().UTC()}
	if err := s.db.WithContext(ctx).Create(&note).Error; err != nil {
		return "", fmt.Errorf("%w: create note: %v", ErrConnectivity, err)
	}

	s.logger.Info("note created", zap.String("note_id", id))
	return id, nil
}

// Notes returns every note, most recent first.
func (s *Service) Notes(ctx context.Context) ([]Note, error) {
	var found []Note
	err := s.db.WithContext(ctx).
		Order("created_at DESC").
		Find(&found).Error
	if err != nil {
		return nil, fmt.Errorf("%w: list notes: %v", ErrConnectivity, err)
	}
	return found, nil
}

// DeleteNote permanently removes a note.
func (s *Service) DeleteNote(ctx context.Context, noteID string) error {
	result := s.db.WithContext(ctx).Where("id = ?", noteID).Delete(&Note{})
	if result.Error != nil {
		return fmt.Errorf("%w: delete note: %v", ErrConnectivity, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: note %s", ErrNotFound, noteID)
	}

	s.logger.Info("note deleted", zap.String("note_id", noteID))
	return nil
}
