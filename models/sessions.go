package models

import "time"

// AttendanceStatus is the server-side verification outcome for one
// check-in. The client never computes it, only displays it.
type AttendanceStatus string

const (
	StatusPresent  AttendanceStatus = "Present"
	StatusPending  AttendanceStatus = "Pending"
	StatusRejected AttendanceStatus = "Rejected"
)

// Session is one live attendance-taking window. It exists only between
// a successful start call and termination.
type Session struct {
	ID          string
	CurrentCode string
	Course      Course
	Active      bool
}

// Course identifies a course a faculty member teaches.
type Course struct {
	ID         string `json:"_id"`
	CourseCode string `json:"courseCode"`
	Name       string `json:"name"`
}

// Student is the displayable identity attached to a roster entry. Both
// fields may be missing; use DisplayName/DisplayRoll when rendering.
type Student struct {
	Name   string `json:"name"`
	RollNo string `json:"rollNo"`
}

// RosterEntry is one participant's observed check-in state at last poll.
type RosterEntry struct {
	ID         string           `json:"_id"`
	Student    Student          `json:"student"`
	Status     AttendanceStatus `json:"status"`
	ObservedAt time.Time        `json:"createdAt"`
}

func (e RosterEntry) DisplayName() string {
	if e.Student.Name == "" {
		return "Unknown"
	}
	return e.Student.Name
}

func (e RosterEntry) DisplayRoll() string {
	if e.Student.RollNo == "" {
		return "No ID"
	}
	return e.Student.RollNo
}

// Roster is the ordered check-in list for a session, in server response
// order. Every poll replaces it wholesale; the client never merges.
type Roster []RosterEntry

// PresentCount counts entries the server has verified as Present.
func (r Roster) PresentCount() int {
	n := 0
	for _, e := range r {
		if e.Status == StatusPresent {
			n++
		}
	}
	return n
}

// Present returns the verified entries, preserving order.
func (r Roster) Present() Roster {
	out := make(Roster, 0, len(r))
	for _, e := range r {
		if e.Status == StatusPresent {
			out = append(out, e)
		}
	}
	return out
}

// ActiveSession is a joinable session as listed on the student dashboard.
type ActiveSession struct {
	SessionID string `json:"_id"`
	Course    Course `json:"course"`
}
