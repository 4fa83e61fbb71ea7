// Package store persists rooms and their tracked sessions with gorm.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"

	"github.com/dkeye/roomgate/internal/core"
	"github.com/dkeye/roomgate/internal/domain"
)

type RoomStore struct {
	db *gorm.DB
}

func NewRoomStore(db *gorm.DB) *RoomStore {
	return &RoomStore{db: db}
}

// Migrate creates the room and session tables.
func (s *RoomStore) Migrate() error {
	return s.db.AutoMigrate(&domain.Room{}, &domain.Session{})
}

func (s *RoomStore) Create(ctx context.Context, room *domain.Room) error {
	if err := s.db.WithContext(ctx).Create(room).Error; err != nil {
		if isDuplicateEntry(err) {
			return core.ErrDuplicateMeetingID
		}
		return fmt.Errorf("store: create room %s: %w", room.ID, err)
	}
	return nil
}

// isDuplicateEntry recognizes the mysql unique-constraint violation
// (error 1062) on the server+meeting index.
func isDuplicateEntry(err error) bool {
	var myErr *mysql.MySQLError
	return errors.As(err, &myErr) && myErr.Number == 1062
}

func (s *RoomStore) FindByID(ctx context.Context, id domain.RoomID) (*domain.Room, error) {
	var room domain.Room
	err := s.db.WithContext(ctx).First(&room, "id = ?", string(id)).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, core.ErrRoomNotFound
		}
		return nil, fmt.Errorf("store: find room %s: %w", id, err)
	}
	return &room, nil
}

func (s *RoomStore) SetCreateTime(ctx context.Context, id domain.RoomID, createTime string) error {
	res := s.db.WithContext(ctx).
		Model(&domain.Room{}).
		Where("id = ?", string(id)).
		Update("create_time", createTime)
	if res.Error != nil {
		return fmt.Errorf("store: set create time for room %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return core.ErrRoomNotFound
	}
	return nil
}

func (s *RoomStore) AddSession(ctx context.Context, session *domain.Session) error {
	if err := s.db.WithContext(ctx).Create(session).Error; err != nil {
		return fmt.Errorf("store: add session for room %s: %w", session.RoomID, err)
	}
	return nil
}

// FinishSessions marks every tracked session of the room as ended. All of
// them: a remote side with no record of the meeting invalidates any session
// we ever started, not just the latest.
func (s *RoomStore) FinishSessions(ctx context.Context, id domain.RoomID) error {
	err := s.db.WithContext(ctx).
		Model(&domain.Session{}).
		Where("room_id = ? AND ended = ?", string(id), false).
		Update("ended", true).Error
	if err != nil {
		return fmt.Errorf("store: finish sessions for room %s: %w", id, err)
	}
	return nil
}

func (s *RoomStore) Delete(ctx context.Context, id domain.RoomID) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("room_id = ?", string(id)).Delete(&domain.Session{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", string(id)).Delete(&domain.Room{}).Error
	})
	if err != nil {
		return fmt.Errorf("store: delete room %s: %w", id, err)
	}
	return nil
}
