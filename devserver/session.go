package devserver

import (
	"fmt"
	"math/rand"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/iamMohdZiya/appAttendence/models"
)

// codeGrace is how long an archived code is still accepted after the
// next rotation, covering a scan submitted just as the code changed.
const codeGrace = 45 * time.Second

type rotatingCode struct {
	Code      string
	CreatedAt time.Time
	ExpiredAt time.Time // zero while the code is current
}

// liveSession is one active attendance window. Current holds the code
// being displayed; Past archives superseded codes so a scan racing a
// rotation can still validate.
type liveSession struct {
	ID       string
	Course   models.Course
	Faculty  string
	Lat, Lng float64
	Current  rotatingCode
	Past     []rotatingCode
	Active   bool
	Started  time.Time
}

func newCode() rotatingCode {
	const letters = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	b := make([]byte, 6)
	for i := range b {
		b[i] = letters[rand.Intn(len(letters))]
	}
	return rotatingCode{Code: string(b), CreatedAt: time.Now()}
}

func (s *Server) startSession(c *gin.Context) {
	acct := currentAccount(c)
	if acct.Role != models.RoleFaculty {
		c.JSON(http.StatusForbidden, gin.H{"message": "Faculty only"})
		return
	}
	var req models.StartSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var course models.Course
	for _, candidate := range s.courses {
		if candidate.ID == req.CourseID {
			course = candidate
		}
	}
	if course.ID == "" {
		c.JSON(http.StatusNotFound, gin.H{"message": "Course not found"})
		return
	}

	sess := &liveSession{
		ID:      uuid.NewString(),
		Course:  course,
		Faculty: acct.ID,
		Lat:     req.Lat,
		Lng:     req.Lng,
		Current: newCode(),
		Active:  true,
		Started: time.Now(),
	}
	s.sessions[sess.ID] = sess

	c.JSON(http.StatusOK, models.StartSessionResponse{
		SessionID: sess.ID,
		QRCode:    sess.Current.Code,
	})
}

// rotateCode archives the current code and issues a fresh one.
func (s *Server) rotateCode(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[c.Param("id")]
	if !ok || !sess.Active {
		c.JSON(http.StatusNotFound, gin.H{"message": "Session not found"})
		return
	}
	expired := sess.Current
	expired.ExpiredAt = time.Now()
	sess.Past = append(sess.Past, expired)
	sess.Current = newCode()

	c.JSON(http.StatusOK, models.RotateCodeResponse{Code: sess.Current.Code})
}

func (s *Server) endSession(c *gin.Context) {
	var req models.EndSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request"})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[req.SessionID]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"message": "Session not found"})
		return
	}
	sess.Active = false
	c.JSON(http.StatusOK, gin.H{"message": "Session ended"})
}

func (s *Server) activeSessions(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	active := make([]models.ActiveSession, 0)
	for _, sess := range s.sessions {
		if sess.Active {
			active = append(active, models.ActiveSession{
				SessionID: sess.ID,
				Course:    sess.Course,
			})
		}
	}
	c.JSON(http.StatusOK, active)
}

// validCode reports whether code matches the session's current code or
// a recently archived one still inside its grace window.
func (sess *liveSession) validCode(code string, now time.Time) (bool, error) {
	if sess.Current.Code == code {
		return true, nil
	}
	for _, past := range sess.Past {
		if past.Code != code {
			continue
		}
		if now.Sub(past.ExpiredAt) <= codeGrace {
			return true, nil
		}
		return false, fmt.Errorf("code expired")
	}
	return false, fmt.Errorf("code is not valid for this session")
}
