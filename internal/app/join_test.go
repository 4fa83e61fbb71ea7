package app

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dkeye/roomgate/internal/core"
	"github.com/dkeye/roomgate/internal/core/mocks"
	"github.com/dkeye/roomgate/internal/domain"
)

func testRoom() *domain.Room {
	return &domain.Room{
		ID:           "room-1",
		ServerID:     "srv-1",
		Name:         "Weekly Sync",
		MeetingID:    "weekly-sync-abc",
		AttendeeKey:  "att-key",
		ModeratorKey: "mod-key",
	}
}

func testOrchestrator(client *mocks.MeetingClient, store *mocks.RoomStore, policy *mocks.AccessPolicy) *Orchestrator {
	return &Orchestrator{
		Client:       client,
		Store:        store,
		Policy:       policy,
		MobileScheme: "bigbluebutton",
	}
}

func infoRunning(running bool) *core.MeetingInfo {
	return &core.MeetingInfo{Running: running, CreateTime: "1700000000000"}
}

func TestJoinDeniesWithoutRole(t *testing.T) {
	client := new(mocks.MeetingClient)
	o := testOrchestrator(client, new(mocks.RoomStore), new(mocks.AccessPolicy))

	res := o.Join(context.Background(), testRoom(), "alice", "", "", DeviceHints{}, core.CallMeta{})

	require.True(t, res.Denied)
	assert.Equal(t, core.DenyAccess, res.Reason)
	client.AssertNotCalled(t, "GetMeetingInfo", mock.Anything, mock.Anything, mock.Anything)
}

func TestJoinDeniesBlankUsernameBeforeAnyRemoteCall(t *testing.T) {
	client := new(mocks.MeetingClient)
	o := testOrchestrator(client, new(mocks.RoomStore), new(mocks.AccessPolicy))

	res := o.Join(context.Background(), testRoom(), "   ", domain.RoleModerator, "", DeviceHints{}, core.CallMeta{})

	require.True(t, res.Denied)
	assert.Equal(t, core.DenyAccess, res.Reason)
	client.AssertNotCalled(t, "GetMeetingInfo", mock.Anything, mock.Anything, mock.Anything)
	client.AssertNotCalled(t, "CreateMeeting", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestJoinDeniedByPolicyMakesNoFurtherCalls(t *testing.T) {
	client := new(mocks.MeetingClient)
	policy := new(mocks.AccessPolicy)
	room := testRoom()
	o := testOrchestrator(client, new(mocks.RoomStore), policy)

	client.On("GetMeetingInfo", mock.Anything, room.MeetingID, mock.Anything).Return(infoRunning(false), nil).Once()
	policy.On("CanCreate", room, domain.RoleAttendee).Return(false).Once()

	res := o.Join(context.Background(), room, "alice", domain.RoleAttendee, "", DeviceHints{}, core.CallMeta{})

	require.True(t, res.Denied)
	assert.Equal(t, core.DenyCannotCreate, res.Reason)
	client.AssertNotCalled(t, "CreateMeeting", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	client.AssertNotCalled(t, "FetchToken", mock.Anything, mock.Anything)
	client.AssertNotCalled(t, "JoinURL", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	policy.AssertExpectations(t)
}

func TestJoinRunningMeetingNeverCreates(t *testing.T) {
	client := new(mocks.MeetingClient)
	policy := new(mocks.AccessPolicy)
	room := testRoom()
	room.CreateTime = "1700000000000"
	o := testOrchestrator(client, new(mocks.RoomStore), policy)

	client.On("GetMeetingInfo", mock.Anything, room.MeetingID, mock.Anything).Return(infoRunning(true), nil).Once()
	client.On("FetchToken", mock.Anything, room.MeetingID).Return("", nil).Once()
	client.On("JoinURL", mock.Anything, room.MeetingID, "alice", domain.RoleAttendee, core.JoinOptions{
		CreateTime: "1700000000000",
	}).Return("https://host/join?x=1", nil).Once()

	res := o.Join(context.Background(), room, "alice", domain.RoleAttendee, "", DeviceHints{}, core.CallMeta{})

	require.False(t, res.Denied)
	assert.Equal(t, "https://host/join?x=1", res.URL)
	client.AssertNotCalled(t, "CreateMeeting", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	policy.AssertNotCalled(t, "CanCreate", mock.Anything, mock.Anything)
}

func TestJoinCreatesSessionWhenAllowed(t *testing.T) {
	client := new(mocks.MeetingClient)
	store := new(mocks.RoomStore)
	policy := new(mocks.AccessPolicy)
	sched := new(mocks.Scheduler)
	room := testRoom()
	o := testOrchestrator(client, store, policy)
	o.Sched = sched

	client.On("GetMeetingInfo", mock.Anything, room.MeetingID, mock.Anything).Return(infoRunning(false), nil).Once()
	policy.On("CanCreate", room, domain.RoleModerator).Return(true).Once()
	client.On("CreateMeeting", mock.Anything, room, mock.Anything, mock.Anything).Return("1700000099000", nil).Once()
	store.On("SetCreateTime", mock.Anything, room.ID, "1700000099000").Return(nil).Once()
	store.On("AddSession", mock.Anything, mock.MatchedBy(func(s *domain.Session) bool {
		return s.RoomID == room.ID && s.CreateTime == "1700000099000" && !s.Ended
	})).Return(nil).Once()
	sched.On("ScheduleReconcile", mock.Anything, room.ID, mock.Anything).Return(nil).Once()
	client.On("FetchToken", mock.Anything, room.MeetingID).Return("tok-1", nil).Once()
	client.On("JoinURL", mock.Anything, room.MeetingID, "bob", domain.RoleModerator, core.JoinOptions{
		ConfigToken:    "tok-1",
		CreateTime:     "1700000099000",
		ExternalUserID: "u-42",
	}).Return("https://host/join?y=2", nil).Once()

	res := o.Join(context.Background(), room, "bob", domain.RoleModerator, "u-42", DeviceHints{}, core.CallMeta{})

	require.False(t, res.Denied)
	assert.Equal(t, "https://host/join?y=2", res.URL)
	assert.Equal(t, "1700000099000", room.CreateTime)
	client.AssertExpectations(t)
	store.AssertExpectations(t)
	sched.AssertExpectations(t)
}

func TestJoinRefusedURLMeansNotRunning(t *testing.T) {
	client := new(mocks.MeetingClient)
	room := testRoom()
	room.CreateTime = "1700000000000"
	o := testOrchestrator(client, new(mocks.RoomStore), new(mocks.AccessPolicy))

	client.On("GetMeetingInfo", mock.Anything, room.MeetingID, mock.Anything).Return(infoRunning(true), nil).Once()
	client.On("FetchToken", mock.Anything, room.MeetingID).Return("", nil).Once()
	client.On("JoinURL", mock.Anything, room.MeetingID, "alice", domain.RoleAttendee, mock.Anything).Return("", nil).Once()

	res := o.Join(context.Background(), room, "alice", domain.RoleAttendee, "", DeviceHints{}, core.CallMeta{})

	require.True(t, res.Denied)
	assert.Equal(t, core.DenyNotRunning, res.Reason)
	assert.Empty(t, res.URL)
}

func TestJoinRemoteErrorMessageIsBounded(t *testing.T) {
	client := new(mocks.MeetingClient)
	room := testRoom()
	o := testOrchestrator(client, new(mocks.RoomStore), new(mocks.AccessPolicy))

	long := strings.Repeat("x", 300)
	client.On("GetMeetingInfo", mock.Anything, room.MeetingID, mock.Anything).
		Return(nil, &core.RemoteError{Kind: core.RemoteOther, Key: "internalError", Message: long}).Once()

	res := o.Join(context.Background(), room, "alice", domain.RoleModerator, "", DeviceHints{}, core.CallMeta{})

	require.True(t, res.Denied)
	assert.Equal(t, core.DenyRemoteError, res.Reason)
	assert.Len(t, []rune(res.Message), 201)
}

func TestJoinUnknownMeetingCountsAsNotRunning(t *testing.T) {
	client := new(mocks.MeetingClient)
	store := new(mocks.RoomStore)
	policy := new(mocks.AccessPolicy)
	room := testRoom()
	o := testOrchestrator(client, store, policy)

	client.On("GetMeetingInfo", mock.Anything, room.MeetingID, mock.Anything).
		Return(nil, &core.RemoteError{Kind: core.RemoteNotFound, Key: "notFound", Message: "no meeting"}).Once()
	policy.On("CanCreate", room, domain.RoleModerator).Return(true).Once()
	client.On("CreateMeeting", mock.Anything, room, mock.Anything, mock.Anything).Return("1700000111000", nil).Once()
	store.On("SetCreateTime", mock.Anything, room.ID, "1700000111000").Return(nil).Once()
	store.On("AddSession", mock.Anything, mock.Anything).Return(nil).Once()
	client.On("FetchToken", mock.Anything, room.MeetingID).Return("", nil).Once()
	client.On("JoinURL", mock.Anything, room.MeetingID, "alice", domain.RoleModerator, mock.Anything).
		Return("https://host/join", nil).Once()

	res := o.Join(context.Background(), room, "alice", domain.RoleModerator, "", DeviceHints{}, core.CallMeta{})

	require.False(t, res.Denied)
	client.AssertExpectations(t)
}

func TestCreateOptionsCarryRoomConfiguration(t *testing.T) {
	room := &domain.Room{
		RecordMeeting:           true,
		Duration:                45,
		DefaultLayout:           "presentation",
		AutoStartRecording:      true,
		AllowStartStopRecording: true,
		WelcomeMessage:          "welcome!",
		ModeratorOnlyMessage:    "mods only",
		MaxParticipants:         12,
		LogoutURL:               "https://host/bye",
	}

	opts := createOptions(room)

	assert.Equal(t, core.CreateOptions{
		Record:                  true,
		Duration:                45,
		DefaultLayout:           "presentation",
		AutoStartRecording:      true,
		AllowStartStopRecording: true,
		WelcomeMessage:          "welcome!",
		ModeratorOnlyMessage:    "mods only",
		MaxParticipants:         12,
		LogoutURL:               "https://host/bye",
	}, opts)
}

func TestJoinMobileSchemeSwap(t *testing.T) {
	client := new(mocks.MeetingClient)
	room := testRoom()
	room.CreateTime = "1700000000000"
	o := testOrchestrator(client, new(mocks.RoomStore), new(mocks.AccessPolicy))

	client.On("GetMeetingInfo", mock.Anything, room.MeetingID, mock.Anything).Return(infoRunning(true), nil)
	client.On("FetchToken", mock.Anything, room.MeetingID).Return("", nil)
	client.On("JoinURL", mock.Anything, room.MeetingID, "alice", domain.RoleAttendee, mock.Anything).
		Return("https://host/join?x=1", nil)

	res := o.Join(context.Background(), room, "alice", domain.RoleAttendee, "", DeviceHints{MobileClient: true}, core.CallMeta{})
	require.False(t, res.Denied)
	assert.Equal(t, "bigbluebutton://host/join?x=1", res.URL)

	res = o.Join(context.Background(), room, "alice", domain.RoleAttendee, "", DeviceHints{MobileClient: true, ForceDesktop: true}, core.CallMeta{})
	require.False(t, res.Denied)
	assert.Equal(t, "https://host/join?x=1", res.URL)
}
