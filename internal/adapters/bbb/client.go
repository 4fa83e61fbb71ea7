// Package bbb is the transport adapter for a BigBlueButton-compatible
// meeting API: checksum-signed GET calls returning XML. It owns failure
// classification; nothing above it ever looks at wire error keys.
package bbb

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/roomgate/internal/core"
	"github.com/dkeye/roomgate/internal/domain"
)

const (
	returncodeSuccess = "SUCCESS"

	roleModerator = "MODERATOR"
	roleViewer    = "VIEWER"
)

type Client struct {
	BaseURL string
	Secret  string
	HTTP    *http.Client
}

func NewClient(baseURL, secret string) *Client {
	return &Client{
		BaseURL: baseURL,
		Secret:  secret,
		HTTP:    &http.Client{Timeout: 10 * time.Second},
	}
}

// checksum signs action+query with the shared secret, per the API contract.
func (c *Client) checksum(action, query string) string {
	sum := sha1.Sum([]byte(action + query + c.Secret))
	return hex.EncodeToString(sum[:])
}

func (c *Client) signedURL(action string, params url.Values) string {
	query := params.Encode()
	return fmt.Sprintf("%s/api/%s?%s&checksum=%s", c.BaseURL, action, query, c.checksum(action, query))
}

// apiResponse is the envelope every call shares.
type apiResponse struct {
	ReturnCode string `xml:"returncode"`
	MessageKey string `xml:"messageKey"`
	Message    string `xml:"message"`
}

func (r *apiResponse) envelope() *apiResponse { return r }

type responder interface {
	envelope() *apiResponse
}

// call executes a signed GET and decodes the XML body into out. Transport
// failures and FAILED returncodes both come back as *core.RemoteError.
func (c *Client) call(ctx context.Context, action string, params url.Values, meta core.CallMeta, out responder) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.signedURL(action, params), nil)
	if err != nil {
		return &core.RemoteError{Kind: core.RemoteOther, Message: err.Error()}
	}
	if meta.ForwardedFor != "" {
		req.Header.Set("X-Forwarded-For", meta.ForwardedFor)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return &core.RemoteError{Kind: core.RemoteOther, Message: err.Error()}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return &core.RemoteError{Kind: core.RemoteOther, Message: err.Error()}
	}
	if err := xml.Unmarshal(body, out); err != nil {
		return &core.RemoteError{Kind: core.RemoteOther, Message: fmt.Sprintf("bad response for %s: %v", action, err)}
	}

	env := out.envelope()
	if env.ReturnCode != returncodeSuccess {
		log.Debug().Str("module", "adapters.bbb").Str("action", action).Str("key", env.MessageKey).Msg("api call failed")
		return &core.RemoteError{
			Kind:    core.ClassifyKey(env.MessageKey),
			Key:     env.MessageKey,
			Message: env.Message,
		}
	}
	return nil
}

type meetingInfoResponse struct {
	apiResponse
	MeetingName      string `xml:"meetingName"`
	MeetingID        string `xml:"meetingID"`
	Running          bool   `xml:"running"`
	CreateTime       string `xml:"createTime"`
	ParticipantCount int    `xml:"participantCount"`
	ModeratorCount   int    `xml:"moderatorCount"`
}

func (c *Client) GetMeetingInfo(ctx context.Context, meetingID string, meta core.CallMeta) (*core.MeetingInfo, error) {
	params := url.Values{}
	params.Set("meetingID", meetingID)

	var resp meetingInfoResponse
	if err := c.call(ctx, "getMeetingInfo", params, meta, &resp); err != nil {
		return nil, err
	}
	return &core.MeetingInfo{
		MeetingID:        resp.MeetingID,
		Name:             resp.MeetingName,
		Running:          resp.Running,
		CreateTime:       resp.CreateTime,
		ParticipantCount: resp.ParticipantCount,
		ModeratorCount:   resp.ModeratorCount,
	}, nil
}

type createResponse struct {
	apiResponse
	MeetingID  string `xml:"meetingID"`
	CreateTime string `xml:"createTime"`
}

func (c *Client) CreateMeeting(ctx context.Context, room *domain.Room, opts core.CreateOptions, meta core.CallMeta) (string, error) {
	params := url.Values{}
	params.Set("meetingID", room.MeetingID)
	params.Set("name", room.Name)
	params.Set("attendeePW", room.AttendeeKey)
	params.Set("moderatorPW", room.ModeratorKey)
	params.Set("record", strconv.FormatBool(opts.Record))
	if opts.Duration > 0 {
		params.Set("duration", strconv.Itoa(opts.Duration))
	}
	if opts.DefaultLayout != "" {
		params.Set("meta_layout", opts.DefaultLayout)
	}
	params.Set("autoStartRecording", strconv.FormatBool(opts.AutoStartRecording))
	params.Set("allowStartStopRecording", strconv.FormatBool(opts.AllowStartStopRecording))
	if opts.WelcomeMessage != "" {
		params.Set("welcome", opts.WelcomeMessage)
	}
	if opts.MaxParticipants > 0 {
		params.Set("maxParticipants", strconv.Itoa(opts.MaxParticipants))
	}
	if opts.LogoutURL != "" {
		params.Set("logoutURL", opts.LogoutURL)
	}
	if opts.ModeratorOnlyMessage != "" {
		params.Set("moderatorOnlyMessage", opts.ModeratorOnlyMessage)
	}

	var resp createResponse
	if err := c.call(ctx, "create", params, meta, &resp); err != nil {
		return "", err
	}
	return resp.CreateTime, nil
}

func (c *Client) EndMeeting(ctx context.Context, meetingID, moderatorKey string, meta core.CallMeta) error {
	params := url.Values{}
	params.Set("meetingID", meetingID)
	params.Set("password", moderatorKey)

	var resp struct{ apiResponse }
	return c.call(ctx, "end", params, meta, &resp)
}

type configTokenResponse struct {
	apiResponse
	ConfigToken string `xml:"configToken"`
}

// FetchToken asks for a per-meeting configuration token. Servers without
// the config API answer with a failed returncode and no classified key for
// it; treat that as "no extra configuration" rather than an error.
func (c *Client) FetchToken(ctx context.Context, meetingID string) (string, error) {
	params := url.Values{}
	params.Set("meetingID", meetingID)

	var resp configTokenResponse
	if err := c.call(ctx, "getConfigToken", params, core.CallMeta{}, &resp); err != nil {
		var re *core.RemoteError
		if errors.As(err, &re) && re.Key == "unsupportedRequest" {
			return "", nil
		}
		return "", err
	}
	return resp.ConfigToken, nil
}

// JoinURL builds the signed join URL after confirming the session is still
// up. An unknown or stopped meeting yields ("", nil): the join is refused,
// not failed.
func (c *Client) JoinURL(ctx context.Context, meetingID, username string, role domain.Role, opts core.JoinOptions) (string, error) {
	info, err := c.GetMeetingInfo(ctx, meetingID, core.CallMeta{})
	if err != nil {
		var re *core.RemoteError
		if errors.As(err, &re) && re.Kind == core.RemoteNotFound {
			return "", nil
		}
		return "", err
	}
	if !info.Running {
		return "", nil
	}

	params := url.Values{}
	params.Set("meetingID", meetingID)
	params.Set("fullName", username)
	if role == domain.RoleModerator {
		params.Set("role", roleModerator)
	} else {
		params.Set("role", roleViewer)
	}
	params.Set("redirect", "true")
	if opts.ConfigToken != "" {
		params.Set("configToken", opts.ConfigToken)
	}
	if opts.CreateTime != "" {
		params.Set("createTime", opts.CreateTime)
	}
	if opts.ExternalUserID != "" {
		params.Set("userID", opts.ExternalUserID)
	}
	return c.signedURL("join", params), nil
}

type recordingsResponse struct {
	apiResponse
	Recordings []struct {
		RecordID  string `xml:"recordID"`
		MeetingID string `xml:"meetingID"`
		Name      string `xml:"name"`
		Published bool   `xml:"published"`
		State     string `xml:"state"`
		StartTime int64  `xml:"startTime"`
		EndTime   int64  `xml:"endTime"`
		Playback  struct {
			Formats []struct {
				URL string `xml:"url"`
			} `xml:"format"`
		} `xml:"playback"`
	} `xml:"recordings>recording"`
}

func (c *Client) FetchRecordings(ctx context.Context, meetingID string) ([]domain.Recording, error) {
	params := url.Values{}
	params.Set("meetingID", meetingID)

	var resp recordingsResponse
	if err := c.call(ctx, "getRecordings", params, core.CallMeta{}, &resp); err != nil {
		return nil, err
	}

	out := make([]domain.Recording, 0, len(resp.Recordings))
	for _, r := range resp.Recordings {
		rec := domain.Recording{
			RecordID:  r.RecordID,
			MeetingID: r.MeetingID,
			Name:      r.Name,
			Published: r.Published,
			State:     r.State,
			StartTime: time.UnixMilli(r.StartTime),
			EndTime:   time.UnixMilli(r.EndTime),
		}
		if len(r.Playback.Formats) > 0 {
			rec.PlaybackURL = r.Playback.Formats[0].URL
		}
		out = append(out, rec)
	}
	return out, nil
}
