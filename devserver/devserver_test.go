package devserver

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/iamMohdZiya/appAttendence/api"
	"github.com/iamMohdZiya/appAttendence/models"
)

type tokenBox struct {
	mu    sync.Mutex
	token string
}

func (b *tokenBox) set(token string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.token = token
}

func (b *tokenBox) Token() (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.token, nil
}

func (b *tokenBox) DeviceID() (string, error) { return "dev-test", nil }

func newClient(t *testing.T, baseURL string) (*api.Client, *tokenBox) {
	t.Helper()
	box := &tokenBox{}
	return api.NewClient(baseURL+"/api", 5*time.Second, box), box
}

func login(t *testing.T, client *api.Client, box *tokenBox, email string) models.User {
	t.Helper()
	user, err := client.Login(context.Background(), email, "password")
	if err != nil {
		t.Fatalf("login %s failed: %v", email, err)
	}
	box.set(user.Token)
	return user
}

func TestFullSessionLifecycle(t *testing.T) {
	server := httptest.NewServer(New().Engine())
	defer server.Close()
	ctx := context.Background()

	faculty, facultyTok := newClient(t, server.URL)
	login(t, faculty, facultyTok, "jane@college.edu")

	courses, err := faculty.MyCourses(ctx)
	if err != nil || len(courses) == 0 {
		t.Fatalf("MyCourses() = %v, %v", courses, err)
	}

	started, err := faculty.StartSession(ctx, courses[0].ID, 12.9716, 77.5946)
	if err != nil {
		t.Fatalf("StartSession() failed: %v", err)
	}
	if started.SessionID == "" || started.QRCode == "" {
		t.Fatalf("incomplete start response %+v", started)
	}

	rotated, err := faculty.RotateCode(ctx, started.SessionID)
	if err != nil {
		t.Fatalf("RotateCode() failed: %v", err)
	}
	if rotated == started.QRCode {
		t.Fatal("rotation returned the same code")
	}

	student, studentTok := newClient(t, server.URL)
	login(t, student, studentTok, "arun@college.edu")

	active, err := student.ActiveSessions(ctx)
	if err != nil || len(active) != 1 || active[0].SessionID != started.SessionID {
		t.Fatalf("ActiveSessions() = %v, %v", active, err)
	}

	// the superseded code is still inside its grace window
	resp, err := student.MarkAttendance(ctx, models.MarkAttendanceRequest{
		SessionID:   started.SessionID,
		ScannedCode: started.QRCode,
		Location:    models.LatLng{Lat: 12.9716, Lng: 77.5946},
		Accuracy:    10,
	})
	if err != nil {
		t.Fatalf("MarkAttendance() failed: %v", err)
	}
	if resp.Status != models.StatusPresent {
		t.Fatalf("status = %v (%s), want Present", resp.Status, resp.Message)
	}

	// double marking is refused
	_, err = student.MarkAttendance(ctx, models.MarkAttendanceRequest{
		SessionID:   started.SessionID,
		ScannedCode: rotated,
		Location:    models.LatLng{Lat: 12.9716, Lng: 77.5946},
		Accuracy:    10,
	})
	var apiErr *api.APIError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusConflict {
		t.Fatalf("second mark = %v, want 409", err)
	}

	// a student far away is rejected
	far, farTok := newClient(t, server.URL)
	login(t, far, farTok, "priya@college.edu")
	resp, err = far.MarkAttendance(ctx, models.MarkAttendanceRequest{
		SessionID:   started.SessionID,
		ScannedCode: rotated,
		Location:    models.LatLng{Lat: 13.1000, Lng: 77.5946},
		Accuracy:    10,
	})
	if err != nil {
		t.Fatalf("MarkAttendance() failed: %v", err)
	}
	if resp.Status != models.StatusRejected {
		t.Fatalf("far-away status = %v, want Rejected", resp.Status)
	}

	roster, err := faculty.SessionRoster(ctx, started.SessionID)
	if err != nil {
		t.Fatalf("SessionRoster() failed: %v", err)
	}
	if len(roster) != 2 || roster[0].Student.RollNo != "STU001" || roster[1].Student.RollNo != "STU002" {
		t.Fatalf("roster = %+v, want arun then priya", roster)
	}
	if roster.PresentCount() != 1 {
		t.Fatalf("present count = %d, want 1", roster.PresentCount())
	}

	history, err := student.History(ctx)
	if err != nil || len(history) != 1 || history[0].Status != models.StatusPresent {
		t.Fatalf("History() = %+v, %v", history, err)
	}

	if err := faculty.EndSession(ctx, started.SessionID); err != nil {
		t.Fatalf("EndSession() failed: %v", err)
	}
	active, err = student.ActiveSessions(ctx)
	if err != nil || len(active) != 0 {
		t.Fatalf("ActiveSessions() after end = %v, %v", active, err)
	}

	// marking against an ended session fails
	_, err = far.MarkAttendance(ctx, models.MarkAttendanceRequest{
		SessionID:   started.SessionID,
		ScannedCode: rotated,
		Location:    models.LatLng{Lat: 12.9716, Lng: 77.5946},
		Accuracy:    10,
	})
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusNotFound {
		t.Fatalf("mark after end = %v, want 404", err)
	}

	today := time.Now().Format("2006-01-02")
	report, err := faculty.FacultyReport(ctx, today, today, "")
	if err != nil {
		t.Fatalf("FacultyReport() failed: %v", err)
	}
	if len(report) != 1 || report[0].Student.RollNo != "STU001" {
		t.Fatalf("report = %+v, want the single Present record", report)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	server := httptest.NewServer(New().Engine())
	defer server.Close()

	client, _ := newClient(t, server.URL)
	_, err := client.Login(context.Background(), "jane@college.edu", "wrong")
	var apiErr *api.APIError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusUnauthorized {
		t.Fatalf("login error = %v, want 401", err)
	}
}

func TestRequestsWithoutTokenAreRejected(t *testing.T) {
	server := httptest.NewServer(New().Engine())
	defer server.Close()

	client, _ := newClient(t, server.URL)
	_, err := client.MyCourses(context.Background())
	var apiErr *api.APIError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusUnauthorized {
		t.Fatalf("unauthenticated call = %v, want 401", err)
	}
}

func TestCodeGraceWindow(t *testing.T) {
	sess := &liveSession{Current: rotatingCode{Code: "NEW123", CreatedAt: time.Now()}}
	now := time.Now()
	sess.Past = []rotatingCode{
		{Code: "OLD111", ExpiredAt: now.Add(-codeGrace - time.Second)},
		{Code: "OLD222", ExpiredAt: now.Add(-codeGrace / 2)},
	}

	if ok, _ := sess.validCode("NEW123", now); !ok {
		t.Fatal("current code rejected")
	}
	if ok, _ := sess.validCode("OLD222", now); !ok {
		t.Fatal("code inside grace window rejected")
	}
	if ok, err := sess.validCode("OLD111", now); ok || err == nil {
		t.Fatal("expired code accepted")
	}
	if ok, err := sess.validCode("NOPE", now); ok || err == nil {
		t.Fatal("unknown code accepted")
	}
}

func TestDistanceMeters(t *testing.T) {
	// roughly 111m per 0.001 degrees of latitude
	d := distanceMeters(12.9716, 77.5946, 12.9726, 77.5946)
	if d < 100 || d > 125 {
		t.Fatalf("distance = %.1f, want ~111m", d)
	}
	if d := distanceMeters(12.9716, 77.5946, 12.9716, 77.5946); d != 0 {
		t.Fatalf("identical points have distance %.1f", d)
	}
}
