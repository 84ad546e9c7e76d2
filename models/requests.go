package models

import "time"

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type StartSessionRequest struct {
	CourseID string  `json:"courseId"`
	Lat      float64 `json:"lat"`
	Lng      float64 `json:"lng"`
}

type StartSessionResponse struct {
	SessionID string `json:"sessionId"`
	QRCode    string `json:"qrCode"`
}

type RotateCodeResponse struct {
	Code string `json:"code"`
}

type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type MarkAttendanceRequest struct {
	SessionID   string  `json:"sessionId"`
	ScannedCode string  `json:"scannedCode"`
	Location    LatLng  `json:"location"`
	Accuracy    float64 `json:"accuracy"`
}

type MarkAttendanceResponse struct {
	Status  AttendanceStatus `json:"status"`
	Message string           `json:"message"`
}

type EndSessionRequest struct {
	SessionID string `json:"sessionId"`
}

type UpdateProfileRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password,omitempty"`
}

// SessionRef is the session context embedded in history and report rows.
type SessionRef struct {
	ID     string `json:"_id"`
	Course Course `json:"course"`
}

// AttendanceRecord is one row of the student history or faculty report.
type AttendanceRecord struct {
	ID        string           `json:"_id"`
	Session   SessionRef       `json:"session"`
	Student   Student          `json:"student"`
	Status    AttendanceStatus `json:"status"`
	CreatedAt time.Time        `json:"createdAt"`
}
