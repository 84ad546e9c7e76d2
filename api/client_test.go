package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/iamMohdZiya/appAttendence/models"
)

type staticTokens struct {
	token  string
	device string
}

func (s staticTokens) Token() (string, error)    { return s.token, nil }
func (s staticTokens) DeviceID() (string, error) { return s.device, nil }

func newTestBackend(t *testing.T, register func(*gin.Engine)) *Client {
	t.Helper()
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	register(engine)
	server := httptest.NewServer(engine)
	t.Cleanup(server.Close)
	return NewClient(server.URL+"/api", 5*time.Second, staticTokens{token: "tok-1", device: "dev-1"})
}

func TestRequestsCarryAuthHeaders(t *testing.T) {
	var gotAuth, gotDevice string
	client := newTestBackend(t, func(e *gin.Engine) {
		e.GET("/api/session/my-courses", func(c *gin.Context) {
			gotAuth = c.GetHeader("Authorization")
			gotDevice = c.GetHeader("X-Device-Fingerprint")
			c.JSON(http.StatusOK, []models.Course{})
		})
	})

	if _, err := client.MyCourses(context.Background()); err != nil {
		t.Fatalf("MyCourses() failed: %v", err)
	}
	if gotAuth != "Bearer tok-1" {
		t.Fatalf("Authorization = %q, want Bearer tok-1", gotAuth)
	}
	if gotDevice != "dev-1" {
		t.Fatalf("X-Device-Fingerprint = %q, want dev-1", gotDevice)
	}
}

func TestStartSessionRoundTrip(t *testing.T) {
	client := newTestBackend(t, func(e *gin.Engine) {
		e.POST("/api/session/start", func(c *gin.Context) {
			var req models.StartSessionRequest
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"message": "bad body"})
				return
			}
			if req.CourseID != "c-cs101" || req.Lat != 12.9 || req.Lng != 77.6 {
				c.JSON(http.StatusBadRequest, gin.H{"message": "wrong payload"})
				return
			}
			c.JSON(http.StatusOK, models.StartSessionResponse{SessionID: "S1", QRCode: "AB12"})
		})
	})

	resp, err := client.StartSession(context.Background(), "c-cs101", 12.9, 77.6)
	if err != nil {
		t.Fatalf("StartSession() failed: %v", err)
	}
	if resp.SessionID != "S1" || resp.QRCode != "AB12" {
		t.Fatalf("unexpected response %+v", resp)
	}
}

func TestRosterDecodesInOrder(t *testing.T) {
	client := newTestBackend(t, func(e *gin.Engine) {
		e.GET("/api/attendance/session/S1", func(c *gin.Context) {
			c.JSON(http.StatusOK, []gin.H{
				{"_id": "a1", "student": gin.H{"name": "Arun", "rollNo": "STU001"}, "status": "Present"},
				{"_id": "a2", "student": gin.H{}, "status": "Pending"},
			})
		})
	})

	roster, err := client.SessionRoster(context.Background(), "S1")
	if err != nil {
		t.Fatalf("SessionRoster() failed: %v", err)
	}
	if len(roster) != 2 || roster[0].ID != "a1" || roster[1].ID != "a2" {
		t.Fatalf("unexpected roster %+v", roster)
	}
	if roster[1].DisplayName() != "Unknown" || roster[1].DisplayRoll() != "No ID" {
		t.Fatalf("missing-identity fallback broken: %q %q",
			roster[1].DisplayName(), roster[1].DisplayRoll())
	}
}

func TestServerRejectionBecomesAPIError(t *testing.T) {
	client := newTestBackend(t, func(e *gin.Engine) {
		e.POST("/api/attendance/mark", func(c *gin.Context) {
			c.JSON(http.StatusConflict, gin.H{"message": "Attendance already marked"})
		})
	})

	_, err := client.MarkAttendance(context.Background(), models.MarkAttendanceRequest{SessionID: "S1"})
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %v, want *APIError", err)
	}
	if apiErr.Status != http.StatusConflict || apiErr.Message != "Attendance already marked" {
		t.Fatalf("unexpected APIError %+v", apiErr)
	}
}

func TestNetworkFailureIsNotAPIError(t *testing.T) {
	client := NewClient("http://127.0.0.1:1", time.Second, nil)
	_, err := client.MyCourses(context.Background())
	if err == nil {
		t.Fatal("expected a transport error")
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		t.Fatalf("transport failure surfaced as APIError: %v", err)
	}
}
