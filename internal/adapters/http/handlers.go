package http

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/roomgate/internal/app"
	"github.com/dkeye/roomgate/internal/core"
	"github.com/dkeye/roomgate/internal/domain"
)

const roomKey = "room"

// roomMiddleware resolves the :id path param into a room record.
func (h *Handlers) roomMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		room, err := h.Store.FindByID(c.Request.Context(), domain.RoomID(c.Param("id")))
		if err != nil {
			if errors.Is(err, core.ErrRoomNotFound) {
				c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "room not found"})
				return
			}
			log.Error().Err(err).Str("module", "adapters.http").Msg("room lookup failed")
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}
		c.Set(roomKey, room)
		c.Next()
	}
}

func roomFrom(c *gin.Context) *domain.Room {
	return c.MustGet(roomKey).(*domain.Room)
}

func callMeta(c *gin.Context) core.CallMeta {
	return core.CallMeta{ForwardedFor: c.ClientIP()}
}

func deviceHints(c *gin.Context) app.DeviceHints {
	ua := c.GetHeader("User-Agent")
	return app.DeviceHints{
		MobileClient: isMobileUA(ua),
		AutoJoin:     boolValue(c, "auto_join"),
		ForceDesktop: boolValue(c, "desktop"),
	}
}

func isMobileUA(ua string) bool {
	for _, marker := range []string{"Mobile", "Android", "iPhone", "iPad"} {
		if strings.Contains(ua, marker) {
			return true
		}
	}
	return false
}

func boolValue(c *gin.Context, name string) bool {
	switch strings.ToLower(c.Query(name)) {
	case "1", "true", "yes":
		return true
	}
	return false
}

type createRoomRequest struct {
	Name                    string `json:"name" binding:"required"`
	ServerID                string `json:"server_id"`
	MeetingID               string `json:"meeting_id"`
	AttendeeKey             string `json:"attendee_key"`
	ModeratorKey            string `json:"moderator_key"`
	AnyoneCanStart          bool   `json:"anyone_can_start"`
	RecordMeeting           bool   `json:"record_meeting"`
	Duration                int    `json:"duration"`
	DefaultLayout           string `json:"default_layout"`
	AutoStartRecording      bool   `json:"auto_start_recording"`
	AllowStartStopRecording bool   `json:"allow_start_stop_recording"`
	WelcomeMessage          string `json:"welcome_message"`
	ModeratorOnlyMessage    string `json:"moderator_only_message"`
	MaxParticipants         int    `json:"max_participants"`
	LogoutURL               string `json:"logout_url"`
}

// handleCreateRoom registers a room. A blank meeting id is defaulted from
// the room name, like the rest of the room configuration it is immutable
// once a session exists.
func (h *Handlers) handleCreateRoom(c *gin.Context) {
	var req createRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing or invalid name"})
		return
	}

	meetingID := strings.TrimSpace(req.MeetingID)
	if meetingID == "" {
		meetingID = domain.DefaultMeetingID(req.Name)
	}

	room := &domain.Room{
		ID:                      domain.RoomID(uuid.NewString()),
		ServerID:                domain.ServerID(req.ServerID),
		Name:                    req.Name,
		MeetingID:               meetingID,
		AttendeeKey:             req.AttendeeKey,
		ModeratorKey:            req.ModeratorKey,
		AnyoneCanStart:          req.AnyoneCanStart,
		RecordMeeting:           req.RecordMeeting,
		Duration:                req.Duration,
		DefaultLayout:           req.DefaultLayout,
		AutoStartRecording:      req.AutoStartRecording,
		AllowStartStopRecording: req.AllowStartStopRecording,
		WelcomeMessage:          req.WelcomeMessage,
		ModeratorOnlyMessage:    req.ModeratorOnlyMessage,
		MaxParticipants:         req.MaxParticipants,
		LogoutURL:               req.LogoutURL,
	}
	if err := h.Store.Create(c.Request.Context(), room); err != nil {
		if errors.Is(err, core.ErrDuplicateMeetingID) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "meeting id already taken"})
			return
		}
		log.Error().Err(err).Str("module", "adapters.http").Msg("room create failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "room created", "room": room})
}

// handleJoin resolves the role from the supplied key and joins the user.
// Mobile clients go through the intermediary page first unless auto_join
// or desktop overrides it.
func (h *Handlers) handleJoin(c *gin.Context) {
	room := roomFrom(c)

	username := strings.TrimSpace(c.DefaultQuery("name", c.PostForm("name")))
	key := c.DefaultQuery("key", c.PostForm("key"))
	externalID := c.DefaultQuery("user_id", c.PostForm("user_id"))

	role, ok := domain.ResolveRole(room, key)
	if !ok {
		h.denyJoin(c, room, "access denied")
		return
	}

	dev := deviceHints(c)
	if dev.MobileClient && !dev.AutoJoin && !dev.ForceDesktop {
		c.Redirect(http.StatusFound, joinMobilePath(room, username, key))
		return
	}

	res := h.Orch.Join(c.Request.Context(), room, username, role, externalID, dev, callMeta(c))
	if res.Denied {
		h.denyJoin(c, room, res.Message)
		return
	}
	c.Redirect(http.StatusFound, res.URL)
}

// denyJoin flashes the reason and sends the user back to the invite page.
func (h *Handlers) denyJoin(c *gin.Context, room *domain.Room, message string) {
	setFlash(c, message)
	c.Redirect(http.StatusFound, fmt.Sprintf("/rooms/%s/invite", room.ID))
}

// handleInvite is the landing page context: room identity, the last known
// status snapshot and any pending flash message.
func (h *Handlers) handleInvite(c *gin.Context) {
	room := roomFrom(c)

	resp := gin.H{
		"id":         room.ID,
		"name":       room.Name,
		"meeting_id": room.MeetingID,
	}
	if msg := takeFlash(c); msg != "" {
		resp["message"] = msg
	}
	if h.Cache != nil {
		if snap, ok, err := h.Cache.Get(c.Request.Context(), room.ID); err == nil && ok {
			resp["running"] = snap.Running
		}
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handlers) handleRunning(c *gin.Context) {
	room := roomFrom(c)

	running, err := h.Orch.Running(c.Request.Context(), room, callMeta(c))
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"running": "false", "error": remoteMessage(err)})
		return
	}
	c.JSON(http.StatusOK, gin.H{"running": fmt.Sprintf("%t", running)})
}

func (h *Handlers) handleEnd(c *gin.Context) {
	room := roomFrom(c)

	ended, message := h.Orch.End(c.Request.Context(), room, callMeta(c))
	if !ended {
		c.JSON(http.StatusInternalServerError, gin.H{"message": message})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": message})
}

func (h *Handlers) handleDestroy(c *gin.Context) {
	room := roomFrom(c)

	success, message := h.Orch.Terminate(c.Request.Context(), room, callMeta(c))
	if !success {
		c.JSON(http.StatusInternalServerError, gin.H{"message": message})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": message})
}

// handleJoinMobile exposes the URL pair for the intermediary mobile page:
// straight in with the mobile scheme, or back with the desktop override.
func (h *Handlers) handleJoinMobile(c *gin.Context) {
	room := roomFrom(c)
	username := strings.TrimSpace(c.Query("name"))
	key := c.Query("key")

	c.JSON(http.StatusOK, gin.H{
		"join_mobile":  roomPath(room, "join", username, key, "auto_join"),
		"join_desktop": roomPath(room, "join", username, key, "desktop"),
	})
}

func joinMobilePath(room *domain.Room, username, key string) string {
	return roomPath(room, "join_mobile", username, key, "")
}

func roomPath(room *domain.Room, action, username, key, flag string) string {
	q := url.Values{}
	q.Set("name", username)
	q.Set("key", key)
	if flag != "" {
		q.Set(flag, "1")
	}
	return fmt.Sprintf("/rooms/%s/%s?%s", room.ID, action, q.Encode())
}

func (h *Handlers) handleFetchRecordings(c *gin.Context) {
	room := roomFrom(c)

	recordings, err := h.Orch.FetchRecordings(c.Request.Context(), room)
	if err != nil {
		if errors.Is(err, app.ErrNoServer) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "the room has no server configured"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"message": remoteMessage(err)})
		return
	}
	c.JSON(http.StatusOK, gin.H{"recordings": recordings})
}

func remoteMessage(err error) string {
	var re *core.RemoteError
	if errors.As(err, &re) {
		return re.UserMessage()
	}
	return core.TruncateMessage(err.Error())
}

const flashKey = "flash"

func setFlash(c *gin.Context, message string) {
	s := sessions.Default(c)
	s.Set(flashKey, message)
	if err := s.Save(); err != nil {
		log.Warn().Err(err).Str("module", "adapters.http").Msg("failed to save flash")
	}
}

func takeFlash(c *gin.Context) string {
	s := sessions.Default(c)
	v := s.Get(flashKey)
	if v == nil {
		return ""
	}
	s.Delete(flashKey)
	if err := s.Save(); err != nil {
		log.Warn().Err(err).Str("module", "adapters.http").Msg("failed to clear flash")
	}
	msg, _ := v.(string)
	return msg
}
