package store

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/iamMohdZiya/appAttendence/models"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "presenzo.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	return s
}

func TestSaveAndLoadUser(t *testing.T) {
	s := openTestStore(t)

	if _, err := s.User(); !errors.Is(err, ErrNoCredentials) {
		t.Fatalf("User() on empty store = %v, want ErrNoCredentials", err)
	}

	saved := models.User{
		ID:    "u1",
		Name:  "Jane Rivers",
		Email: "jane@college.edu",
		Role:  models.RoleFaculty,
		Token: "tok-1",
	}
	if err := s.SaveUser(saved); err != nil {
		t.Fatalf("SaveUser() failed: %v", err)
	}

	got, err := s.User()
	if err != nil {
		t.Fatalf("User() failed: %v", err)
	}
	if got != saved {
		t.Fatalf("User() = %+v, want %+v", got, saved)
	}
	token, err := s.Token()
	if err != nil || token != "tok-1" {
		t.Fatalf("Token() = %q, %v", token, err)
	}
}

func TestProfileUpdateKeepsToken(t *testing.T) {
	s := openTestStore(t)
	if err := s.SaveUser(models.User{ID: "u1", Name: "Jane", Token: "tok-1"}); err != nil {
		t.Fatalf("SaveUser() failed: %v", err)
	}

	// profile endpoints return the user without a token
	if err := s.SaveUser(models.User{ID: "u1", Name: "Jane R."}); err != nil {
		t.Fatalf("SaveUser() failed: %v", err)
	}
	got, err := s.User()
	if err != nil {
		t.Fatalf("User() failed: %v", err)
	}
	if got.Name != "Jane R." || got.Token != "tok-1" {
		t.Fatalf("got %+v, want updated name with kept token", got)
	}
}

func TestDeviceIDSurvivesLogout(t *testing.T) {
	s := openTestStore(t)
	device, err := s.DeviceID()
	if err != nil || device == "" {
		t.Fatalf("DeviceID() = %q, %v", device, err)
	}

	if err := s.SaveUser(models.User{ID: "u1", Token: "tok-1"}); err != nil {
		t.Fatalf("SaveUser() failed: %v", err)
	}
	if err := s.Clear(); err != nil {
		t.Fatalf("Clear() failed: %v", err)
	}

	if _, err := s.Token(); !errors.Is(err, ErrNoCredentials) {
		t.Fatalf("Token() after Clear = %v, want ErrNoCredentials", err)
	}
	again, err := s.DeviceID()
	if err != nil || again != device {
		t.Fatalf("DeviceID() after Clear = %q, want %q", again, device)
	}
}
