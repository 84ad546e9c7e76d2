package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/iamMohdZiya/appAttendence/models"
)

// ErrNoRows is returned when there is nothing worth exporting. Callers
// treat it as an informational outcome, not a failure.
var ErrNoRows = errors.New("no rows to export")

// Sink receives the final roster snapshot when a session ends. Export
// failures never affect the session lifecycle.
type Sink interface {
	ExportSession(course models.Course, roster models.Roster) (string, error)
}

// CSVExporter writes snapshots as CSV files into Dir, mirroring what the
// mobile app hands to the platform share sheet.
type CSVExporter struct {
	Dir string
}

// ExportSession writes the Present rows of a session roster. Returns the
// written file path, or ErrNoRows when no one was verified present.
func (x CSVExporter) ExportSession(course models.Course, roster models.Roster) (string, error) {
	present := roster.Present()
	if len(present) == 0 {
		return "", ErrNoRows
	}

	name := fmt.Sprintf("Session_%s_%d.csv", course.CourseCode, time.Now().UnixMilli())
	path := filepath.Join(x.Dir, name)

	rows := make([][]string, 0, len(present)+1)
	rows = append(rows, []string{"Student Name", "Roll No", "Status", "Time"})
	for _, e := range present {
		rows = append(rows, []string{
			e.DisplayName(),
			e.DisplayRoll(),
			string(e.Status),
			e.ObservedAt.Local().Format("15:04:05"),
		})
	}
	if err := writeCSV(path, rows); err != nil {
		return "", err
	}
	return path, nil
}

// ExportReport writes a faculty report for the given date range.
func (x CSVExporter) ExportReport(records []models.AttendanceRecord, startDate, endDate string) (string, error) {
	if len(records) == 0 {
		return "", ErrNoRows
	}

	name := fmt.Sprintf("Attendance_Report_%s_to_%s.csv", startDate, endDate)
	path := filepath.Join(x.Dir, name)

	rows := make([][]string, 0, len(records)+1)
	rows = append(rows, []string{"Date", "Course", "Student Name", "Roll No", "Status"})
	for _, rec := range records {
		course := rec.Session.Course.CourseCode
		if course == "" {
			course = "N/A"
		}
		rows = append(rows, []string{
			rec.CreatedAt.Local().Format("2006-01-02"),
			course,
			rec.Student.Name,
			rec.Student.RollNo,
			string(rec.Status),
		})
	}
	if err := writeCSV(path, rows); err != nil {
		return "", err
	}
	return path, nil
}

func writeCSV(path string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to write export file: %w", err)
	}
	w.Flush()
	return w.Error()
}
