package reports

import (
	"context"
	"fmt"
	"time"

	"github.com/iamMohdZiya/appAttendence/models"
)

// API is the slice of the backend client the history and report flows use.
type API interface {
	History(ctx context.Context) ([]models.AttendanceRecord, error)
	FacultyReport(ctx context.Context, startDate, endDate, courseID string) ([]models.AttendanceRecord, error)
}

// History fetches the student's full attendance history.
func History(ctx context.Context, api API) ([]models.AttendanceRecord, error) {
	return api.History(ctx)
}

// UniqueCourses extracts the distinct courses appearing in a history,
// in first-seen order, skipping records whose course is missing.
func UniqueCourses(records []models.AttendanceRecord) []models.Course {
	seen := make(map[string]bool)
	var courses []models.Course
	for _, rec := range records {
		course := rec.Session.Course
		if course.ID == "" || seen[course.ID] {
			continue
		}
		seen[course.ID] = true
		courses = append(courses, course)
	}
	return courses
}

// FilterByCourse keeps records belonging to the given course. An empty
// courseID keeps everything.
func FilterByCourse(records []models.AttendanceRecord, courseID string) []models.AttendanceRecord {
	if courseID == "" {
		return records
	}
	var out []models.AttendanceRecord
	for _, rec := range records {
		if rec.Session.Course.ID == courseID {
			out = append(out, rec)
		}
	}
	return out
}

// FacultyReport fetches present records for a date range, optionally
// filtered to one course. Dates must be YYYY-MM-DD.
func FacultyReport(ctx context.Context, api API, startDate, endDate, courseID string) ([]models.AttendanceRecord, error) {
	if err := validateDate(startDate); err != nil {
		return nil, err
	}
	if err := validateDate(endDate); err != nil {
		return nil, err
	}
	return api.FacultyReport(ctx, startDate, endDate, courseID)
}

func validateDate(s string) error {
	if _, err := time.Parse("2006-01-02", s); err != nil {
		return fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
	}
	return nil
}
