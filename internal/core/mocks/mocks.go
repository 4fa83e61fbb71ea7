// Package mocks provides testify mocks for the core contracts.
package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/dkeye/roomgate/internal/core"
	"github.com/dkeye/roomgate/internal/domain"
)

type MeetingClient struct {
	mock.Mock
}

func (m *MeetingClient) GetMeetingInfo(ctx context.Context, meetingID string, meta core.CallMeta) (*core.MeetingInfo, error) {
	args := m.Called(ctx, meetingID, meta)
	if info := args.Get(0); info != nil {
		return info.(*core.MeetingInfo), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MeetingClient) CreateMeeting(ctx context.Context, room *domain.Room, opts core.CreateOptions, meta core.CallMeta) (string, error) {
	args := m.Called(ctx, room, opts, meta)
	return args.String(0), args.Error(1)
}

func (m *MeetingClient) EndMeeting(ctx context.Context, meetingID, moderatorKey string, meta core.CallMeta) error {
	args := m.Called(ctx, meetingID, moderatorKey, meta)
	return args.Error(0)
}

func (m *MeetingClient) FetchToken(ctx context.Context, meetingID string) (string, error) {
	args := m.Called(ctx, meetingID)
	return args.String(0), args.Error(1)
}

func (m *MeetingClient) JoinURL(ctx context.Context, meetingID, username string, role domain.Role, opts core.JoinOptions) (string, error) {
	args := m.Called(ctx, meetingID, username, role, opts)
	return args.String(0), args.Error(1)
}

func (m *MeetingClient) FetchRecordings(ctx context.Context, meetingID string) ([]domain.Recording, error) {
	args := m.Called(ctx, meetingID)
	if recs := args.Get(0); recs != nil {
		return recs.([]domain.Recording), args.Error(1)
	}
	return nil, args.Error(1)
}

type RoomStore struct {
	mock.Mock
}

func (m *RoomStore) Create(ctx context.Context, room *domain.Room) error {
	args := m.Called(ctx, room)
	return args.Error(0)
}

func (m *RoomStore) FindByID(ctx context.Context, id domain.RoomID) (*domain.Room, error) {
	args := m.Called(ctx, id)
	if room := args.Get(0); room != nil {
		return room.(*domain.Room), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *RoomStore) SetCreateTime(ctx context.Context, id domain.RoomID, createTime string) error {
	args := m.Called(ctx, id, createTime)
	return args.Error(0)
}

func (m *RoomStore) AddSession(ctx context.Context, s *domain.Session) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *RoomStore) FinishSessions(ctx context.Context, id domain.RoomID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *RoomStore) Delete(ctx context.Context, id domain.RoomID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type StatusCache struct {
	mock.Mock
}

func (m *StatusCache) Put(ctx context.Context, id domain.RoomID, snap core.StatusSnapshot) error {
	args := m.Called(ctx, id, snap)
	return args.Error(0)
}

func (m *StatusCache) Get(ctx context.Context, id domain.RoomID) (core.StatusSnapshot, bool, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(core.StatusSnapshot), args.Bool(1), args.Error(2)
}

func (m *StatusCache) Drop(ctx context.Context, id domain.RoomID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type AccessPolicy struct {
	mock.Mock
}

func (m *AccessPolicy) CanCreate(room *domain.Room, role domain.Role) bool {
	args := m.Called(room, role)
	return args.Bool(0)
}

type Scheduler struct {
	mock.Mock
}

func (m *Scheduler) ScheduleReconcile(ctx context.Context, id domain.RoomID, delay time.Duration) error {
	args := m.Called(ctx, id, delay)
	return args.Error(0)
}
