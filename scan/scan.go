package scan

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/iamMohdZiya/appAttendence/location"
	"github.com/iamMohdZiya/appAttendence/logger"
	"github.com/iamMohdZiya/appAttendence/models"
)

// API is the slice of the backend client the scan flow uses.
type API interface {
	MarkAttendance(ctx context.Context, req models.MarkAttendanceRequest) (models.MarkAttendanceResponse, error)
}

// Scanner is the student check-in flow: a scanned code plus a fresh
// location fix submitted for server-side verification. The client does
// none of the verification itself.
type Scanner struct {
	api API
	loc location.Provider
	log *logrus.Logger
}

func NewScanner(apiClient API, loc location.Provider) *Scanner {
	return &Scanner{api: apiClient, loc: loc, log: logger.Logger}
}

// Mark submits one scanned code for the session. A rejected scan comes
// back as a response with a non-Present status, not an error, so the
// caller can offer a rescan; errors mean the attempt never reached a
// verdict.
func (s *Scanner) Mark(ctx context.Context, sessionID, scannedCode string) (models.MarkAttendanceResponse, error) {
	if err := s.loc.RequestPermission(ctx); err != nil {
		return models.MarkAttendanceResponse{}, err
	}
	fix, err := s.loc.Current(ctx)
	if err != nil {
		return models.MarkAttendanceResponse{}, fmt.Errorf("could not acquire location: %w", err)
	}

	resp, err := s.api.MarkAttendance(ctx, models.MarkAttendanceRequest{
		SessionID:   sessionID,
		ScannedCode: scannedCode,
		Location:    models.LatLng{Lat: fix.Lat, Lng: fix.Lng},
		Accuracy:    fix.Accuracy,
	})
	if err != nil {
		return models.MarkAttendanceResponse{}, err
	}
	s.log.WithFields(logrus.Fields{
		"session": sessionID,
		"status":  resp.Status,
	}).Info("attendance submitted")
	return resp, nil
}
