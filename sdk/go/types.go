package sdk

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// ErrEmptyUserID is returned when a method is called with a blank user id.
var ErrEmptyUserID = errors.New("userID is required")

// ErrAlreadyClaimed is returned by Claim when the daily reward was
// already collected today.
var ErrAlreadyClaimed = errors.New("daily reward already claimed today")

// ClaimResult is the response of a successful daily claim.
type ClaimResult struct {
	Day     int  `json:"day"`
	Streak  int  `json:"streak"`
	Reset   bool `json:"reset"`
	Rewards int  `json:"rewards"`
}

// GoalGrant describes a playtime goal crossed by an AdvancePlaytime call.
type GoalGrant struct {
	Module    string `json:"module"`
	Threshold int    `json:"threshold"`
}

// HourlyResult is the response of an hourly bonus roll.
type HourlyResult struct {
	Matched    bool    `json:"matched"`
	Multiplier float64 `json:"multiplier"`
}

// UserStatus reports whether the user has claimed today.
type UserStatus struct {
	ClaimedToday bool `json:"claimed_today"`
}

// BoardEntry is one row of the streak leaderboard.
type BoardEntry struct {
	User   string
	Streak int
}

// HealthStatus mirrors the /healthz payload.
type HealthStatus struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// APIError is a structured error returned by the server.
type APIError struct {
	StatusCode int    `json:"-"`
	Code       string `json:"code"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d (%s): %s", e.StatusCode, e.Code, e.Message)
}

// decodeJSON decodes a JSON body into out, returning an *APIError for
// non-2xx responses.
func decodeJSON(resp *http.Response, out any) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 400 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		if err := json.Unmarshal(body, apiErr); err != nil || apiErr.Message == "" {
			apiErr.Code = "unknown"
			apiErr.Message = string(body)
		}
		return apiErr
	}
	return json.Unmarshal(body, out)
}

// decodeJSONAny decodes the body regardless of the HTTP status. Used for
// endpoints whose error responses still carry the regular payload.
func decodeJSONAny(resp *http.Response, out any) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	return json.Unmarshal(body, out)
}
