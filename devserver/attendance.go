package devserver

import (
	"math"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/iamMohdZiya/appAttendence/models"
)

const (
	// Students further than this from where the session was started
	// are rejected.
	maxDistanceMeters = 150.0

	// Fixes coarser than this cannot prove presence either way; the
	// record stays Pending for the faculty to resolve.
	maxAccuracyMeters = 50.0
)

func (s *Server) markAttendance(c *gin.Context) {
	acct := currentAccount(c)
	if acct.Role != models.RoleStudent {
		c.JSON(http.StatusForbidden, gin.H{"message": "Students only"})
		return
	}
	var req models.MarkAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[req.SessionID]
	if !ok || !sess.Active {
		c.JSON(http.StatusNotFound, gin.H{"message": "Session is not active"})
		return
	}
	for _, rec := range s.records {
		if rec.Session.ID == sess.ID && rec.Student.RollNo == acct.RollNo && rec.Status == models.StatusPresent {
			c.JSON(http.StatusConflict, gin.H{"message": "Attendance already marked"})
			return
		}
	}

	now := time.Now()
	status := models.StatusPresent
	message := "Attendance marked successfully"

	if ok, err := sess.validCode(req.ScannedCode, now); !ok {
		status = models.StatusRejected
		message = "Invalid QR: " + err.Error()
	} else if distanceMeters(sess.Lat, sess.Lng, req.Location.Lat, req.Location.Lng) > maxDistanceMeters {
		status = models.StatusRejected
		message = "You are too far from the classroom"
	} else if req.Accuracy > maxAccuracyMeters {
		status = models.StatusPending
		message = "Location accuracy too low, attendance pending review"
	}

	s.records = append(s.records, models.AttendanceRecord{
		ID: uuid.NewString(),
		Session: models.SessionRef{
			ID:     sess.ID,
			Course: sess.Course,
		},
		Student: models.Student{
			Name:   acct.Name,
			RollNo: acct.RollNo,
		},
		Status:    status,
		CreatedAt: now,
	})

	c.JSON(http.StatusOK, models.MarkAttendanceResponse{Status: status, Message: message})
}

func (s *Server) sessionRoster(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := c.Param("id")
	if _, ok := s.sessions[id]; !ok {
		c.JSON(http.StatusNotFound, gin.H{"message": "Session not found"})
		return
	}
	roster := make(models.Roster, 0)
	for _, rec := range s.records {
		if rec.Session.ID == id {
			roster = append(roster, models.RosterEntry{
				ID:         rec.ID,
				Student:    rec.Student,
				Status:     rec.Status,
				ObservedAt: rec.CreatedAt,
			})
		}
	}
	c.JSON(http.StatusOK, roster)
}

func (s *Server) history(c *gin.Context) {
	acct := currentAccount(c)
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.AttendanceRecord, 0)
	for _, rec := range s.records {
		if rec.Student.RollNo == acct.RollNo {
			out = append(out, rec)
		}
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) facultyReport(c *gin.Context) {
	acct := currentAccount(c)
	if acct.Role != models.RoleFaculty {
		c.JSON(http.StatusForbidden, gin.H{"message": "Faculty only"})
		return
	}
	start, err1 := time.ParseInLocation("2006-01-02", c.Query("startDate"), time.Local)
	end, err2 := time.ParseInLocation("2006-01-02", c.Query("endDate"), time.Local)
	if err1 != nil || err2 != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid date range"})
		return
	}
	end = end.Add(24 * time.Hour)
	courseID := c.Query("courseId")

	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.AttendanceRecord, 0)
	for _, rec := range s.records {
		if rec.Status != models.StatusPresent {
			continue
		}
		if courseID != "" && rec.Session.Course.ID != courseID {
			continue
		}
		if rec.CreatedAt.Before(start) || !rec.CreatedAt.Before(end) {
			continue
		}
		out = append(out, rec)
	}
	c.JSON(http.StatusOK, out)
}

// distanceMeters is the haversine distance between two coordinates.
func distanceMeters(lat1, lng1, lat2, lng2 float64) float64 {
	const earthRadius = 6371000.0
	rad := func(deg float64) float64 { return deg * math.Pi / 180 }

	dLat := rad(lat2 - lat1)
	dLng := rad(lng2 - lng1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rad(lat1))*math.Cos(rad(lat2))*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadius * math.Asin(math.Sqrt(a))
}
