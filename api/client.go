package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/iamMohdZiya/appAttendence/logger"
	"github.com/iamMohdZiya/appAttendence/models"
)

// APIError is a non-2xx response from the backend, carrying the
// server's message when one was present.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server returned %d", e.Status)
	}
	return fmt.Sprintf("server returned %d: %s", e.Status, e.Message)
}

// TokenSource supplies the bearer token and device fingerprint attached
// to outgoing requests. The local store implements it.
type TokenSource interface {
	Token() (string, error)
	DeviceID() (string, error)
}

// Client talks to the Presenzo backend. All calls attach the stored
// bearer token when one exists; none of them retry.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenSource
	log     *logrus.Logger
}

func NewClient(baseURL string, timeout time.Duration, tokens TokenSource) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		tokens:  tokens,
		log:     logger.Logger,
	}
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.tokens != nil {
		if token, err := c.tokens.Token(); err == nil && token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		if device, err := c.tokens.DeviceID(); err == nil && device != "" {
			req.Header.Set("X-Device-Fingerprint", device)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request to %s failed: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}
		var payload struct {
			Message string `json:"message"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&payload); err == nil {
			apiErr.Message = payload.Message
		}
		return apiErr
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode %s response: %w", path, err)
		}
	}
	return nil
}

// Login authenticates and returns the user including the issued token.
func (c *Client) Login(ctx context.Context, email, password string) (models.User, error) {
	var user models.User
	err := c.do(ctx, http.MethodPost, "/auth/login", models.LoginRequest{
		Email:    email,
		Password: password,
	}, &user)
	return user, err
}

// UpdateProfile updates name/email and optionally the password, and
// returns the refreshed profile.
func (c *Client) UpdateProfile(ctx context.Context, req models.UpdateProfileRequest) (models.User, error) {
	var user models.User
	err := c.do(ctx, http.MethodPut, "/auth/profile", req, &user)
	return user, err
}

// MyCourses lists the courses assigned to the authenticated faculty.
func (c *Client) MyCourses(ctx context.Context) ([]models.Course, error) {
	var courses []models.Course
	err := c.do(ctx, http.MethodGet, "/session/my-courses", nil, &courses)
	return courses, err
}

// ActiveSessions lists sessions a student can currently join.
func (c *Client) ActiveSessions(ctx context.Context) ([]models.ActiveSession, error) {
	var sessions []models.ActiveSession
	err := c.do(ctx, http.MethodGet, "/session/active", nil, &sessions)
	return sessions, err
}

// StartSession opens a live session for a course at the given position.
func (c *Client) StartSession(ctx context.Context, courseID string, lat, lng float64) (models.StartSessionResponse, error) {
	var resp models.StartSessionResponse
	err := c.do(ctx, http.MethodPost, "/session/start", models.StartSessionRequest{
		CourseID: courseID,
		Lat:      lat,
		Lng:      lng,
	}, &resp)
	return resp, err
}

// RotateCode fetches a fresh rotating code for the session.
func (c *Client) RotateCode(ctx context.Context, sessionID string) (string, error) {
	var resp models.RotateCodeResponse
	err := c.do(ctx, http.MethodGet, "/session/"+url.PathEscape(sessionID)+"/qr", nil, &resp)
	return resp.Code, err
}

// SessionRoster fetches the full check-in list for the session.
func (c *Client) SessionRoster(ctx context.Context, sessionID string) (models.Roster, error) {
	var roster models.Roster
	err := c.do(ctx, http.MethodGet, "/attendance/session/"+url.PathEscape(sessionID), nil, &roster)
	return roster, err
}

// EndSession tells the server the session is closed.
func (c *Client) EndSession(ctx context.Context, sessionID string) error {
	return c.do(ctx, http.MethodPost, "/session/end", models.EndSessionRequest{SessionID: sessionID}, nil)
}

// MarkAttendance submits a scanned code with the student's position.
func (c *Client) MarkAttendance(ctx context.Context, req models.MarkAttendanceRequest) (models.MarkAttendanceResponse, error) {
	var resp models.MarkAttendanceResponse
	err := c.do(ctx, http.MethodPost, "/attendance/mark", req, &resp)
	return resp, err
}

// History fetches the student's full attendance history.
func (c *Client) History(ctx context.Context) ([]models.AttendanceRecord, error) {
	var records []models.AttendanceRecord
	err := c.do(ctx, http.MethodGet, "/attendance/history", nil, &records)
	return records, err
}

// FacultyReport fetches present records for a date range, optionally
// filtered to one course. Dates are YYYY-MM-DD.
func (c *Client) FacultyReport(ctx context.Context, startDate, endDate, courseID string) ([]models.AttendanceRecord, error) {
	q := url.Values{}
	q.Set("startDate", startDate)
	q.Set("endDate", endDate)
	if courseID != "" {
		q.Set("courseId", courseID)
	}
	var records []models.AttendanceRecord
	err := c.do(ctx, http.MethodGet, "/attendance/faculty-report?"+q.Encode(), nil, &records)
	return records, err
}
