package scan

import (
	"context"
	"errors"
	"testing"

	"github.com/iamMohdZiya/appAttendence/location"
	"github.com/iamMohdZiya/appAttendence/models"
)

type fakeAPI struct {
	req  models.MarkAttendanceRequest
	resp models.MarkAttendanceResponse
	err  error
}

func (f *fakeAPI) MarkAttendance(ctx context.Context, req models.MarkAttendanceRequest) (models.MarkAttendanceResponse, error) {
	f.req = req
	return f.resp, f.err
}

func TestMarkSubmitsCodeWithFix(t *testing.T) {
	api := &fakeAPI{resp: models.MarkAttendanceResponse{
		Status:  models.StatusPresent,
		Message: "Attendance marked successfully",
	}}
	loc := location.Static{Granted: true, Fix: location.Fix{Lat: 12.9, Lng: 77.6, Accuracy: 8}}

	resp, err := NewScanner(api, loc).Mark(context.Background(), "S1", "AB12")
	if err != nil {
		t.Fatalf("Mark() failed: %v", err)
	}
	if resp.Status != models.StatusPresent {
		t.Fatalf("status = %v, want Present", resp.Status)
	}
	want := models.MarkAttendanceRequest{
		SessionID:   "S1",
		ScannedCode: "AB12",
		Location:    models.LatLng{Lat: 12.9, Lng: 77.6},
		Accuracy:    8,
	}
	if api.req != want {
		t.Fatalf("request = %+v, want %+v", api.req, want)
	}
}

func TestMarkRequiresPermission(t *testing.T) {
	api := &fakeAPI{}
	_, err := NewScanner(api, location.Static{Granted: false}).Mark(context.Background(), "S1", "AB12")
	if !errors.Is(err, location.ErrPermissionDenied) {
		t.Fatalf("Mark() error = %v, want ErrPermissionDenied", err)
	}
	if api.req.SessionID != "" {
		t.Fatal("server was called despite denied permission")
	}
}

func TestMarkRejectedIsNotAnError(t *testing.T) {
	api := &fakeAPI{resp: models.MarkAttendanceResponse{
		Status:  models.StatusRejected,
		Message: "You are too far from the classroom",
	}}
	loc := location.Static{Granted: true}

	resp, err := NewScanner(api, loc).Mark(context.Background(), "S1", "AB12")
	if err != nil {
		t.Fatalf("Mark() failed: %v", err)
	}
	if resp.Status != models.StatusRejected {
		t.Fatalf("status = %v, want Rejected", resp.Status)
	}
}
