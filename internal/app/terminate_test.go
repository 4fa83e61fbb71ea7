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
)

func TestTerminateDeletesLocallyDespiteRemoteError(t *testing.T) {
	client := new(mocks.MeetingClient)
	store := new(mocks.RoomStore)
	room := testRoom()
	o := &Orchestrator{Client: client, Store: store}

	client.On("GetMeetingInfo", mock.Anything, room.MeetingID, mock.Anything).Return(infoRunning(true), nil).Once()
	client.On("EndMeeting", mock.Anything, room.MeetingID, room.ModeratorKey, mock.Anything).
		Return(&core.RemoteError{Kind: core.RemoteOther, Key: "internalError", Message: strings.Repeat("e", 300)}).Once()
	store.On("Delete", mock.Anything, room.ID).Return(nil).Once()

	success, message := o.Terminate(context.Background(), room, core.CallMeta{})

	require.False(t, success)
	store.AssertExpectations(t)
	// remote text is bounded before it reaches the message
	assert.Contains(t, message, strings.Repeat("e", 201))
	assert.NotContains(t, message, strings.Repeat("e", 202))
}

func TestTerminateNotRunningSkipsEnd(t *testing.T) {
	client := new(mocks.MeetingClient)
	store := new(mocks.RoomStore)
	room := testRoom()
	o := &Orchestrator{Client: client, Store: store}

	client.On("GetMeetingInfo", mock.Anything, room.MeetingID, mock.Anything).Return(infoRunning(false), nil).Once()
	store.On("Delete", mock.Anything, room.ID).Return(nil).Once()

	success, _ := o.Terminate(context.Background(), room, core.CallMeta{})

	require.True(t, success)
	client.AssertNotCalled(t, "EndMeeting", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	store.AssertExpectations(t)
}

func TestEndNotRunningIsNonFatal(t *testing.T) {
	client := new(mocks.MeetingClient)
	room := testRoom()
	o := &Orchestrator{Client: client, Store: new(mocks.RoomStore)}

	client.On("GetMeetingInfo", mock.Anything, room.MeetingID, mock.Anything).Return(infoRunning(false), nil).Once()

	ended, message := o.End(context.Background(), room, core.CallMeta{})

	require.False(t, ended)
	assert.Contains(t, message, "not running")
	client.AssertNotCalled(t, "EndMeeting", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestEndRunningMeeting(t *testing.T) {
	client := new(mocks.MeetingClient)
	sched := new(mocks.Scheduler)
	room := testRoom()
	o := &Orchestrator{Client: client, Store: new(mocks.RoomStore), Sched: sched}

	client.On("GetMeetingInfo", mock.Anything, room.MeetingID, mock.Anything).Return(infoRunning(true), nil).Once()
	client.On("EndMeeting", mock.Anything, room.MeetingID, room.ModeratorKey, mock.Anything).Return(nil).Once()
	sched.On("ScheduleReconcile", mock.Anything, room.ID, mock.Anything).Return(nil).Once()

	ended, _ := o.End(context.Background(), room, core.CallMeta{})

	require.True(t, ended)
	client.AssertExpectations(t)
	sched.AssertExpectations(t)
}

func TestEndReportsRemoteErrorWithoutRaising(t *testing.T) {
	client := new(mocks.MeetingClient)
	room := testRoom()
	o := &Orchestrator{Client: client, Store: new(mocks.RoomStore)}

	client.On("GetMeetingInfo", mock.Anything, room.MeetingID, mock.Anything).
		Return(nil, &core.RemoteError{Kind: core.RemoteOther, Key: "timeout", Message: "upstream timed out"}).Once()

	ended, message := o.End(context.Background(), room, core.CallMeta{})

	require.False(t, ended)
	assert.Equal(t, "upstream timed out", message)
}
