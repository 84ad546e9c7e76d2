// Package devserver is an in-memory stand-in for the Presenzo backend.
// It implements the REST contract the client consumes so the client can
// be exercised end to end without the production service. State lives
// in maps for the process lifetime; nothing is persisted.
package devserver

import (
	"net/http"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/iamMohdZiya/appAttendence/models"
)

type account struct {
	models.User
	Password string
}

// Server holds all in-memory backend state.
type Server struct {
	mu       sync.Mutex
	accounts map[string]*account // account ID -> account
	tokens   map[string]string   // bearer token -> account ID
	courses  []models.Course
	sessions map[string]*liveSession
	// records is the append-only attendance log; insertion order is
	// roster order.
	records []models.AttendanceRecord
}

// New returns a server seeded with one faculty account, a handful of
// students and two courses.
func New() *Server {
	s := &Server{
		accounts: make(map[string]*account),
		tokens:   make(map[string]string),
		sessions: make(map[string]*liveSession),
	}
	s.courses = []models.Course{
		{ID: "c-cs101", CourseCode: "CS101", Name: "Intro to Computer Science"},
		{ID: "c-ma201", CourseCode: "MA201", Name: "Linear Algebra"},
	}
	s.seedAccount("u-fac1", "Jane Rivers", "jane@college.edu", models.RoleFaculty, "")
	s.seedAccount("u-stu1", "Arun Mehta", "arun@college.edu", models.RoleStudent, "STU001")
	s.seedAccount("u-stu2", "Priya Nair", "priya@college.edu", models.RoleStudent, "STU002")
	s.seedAccount("u-stu3", "Sam Lee", "sam@college.edu", models.RoleStudent, "STU003")
	return s
}

func (s *Server) seedAccount(id, name, email, role, rollNo string) {
	s.accounts[id] = &account{
		User: models.User{
			ID:     id,
			Name:   name,
			Email:  email,
			Role:   role,
			RollNo: rollNo,
		},
		Password: "password",
	}
}

// Engine builds the gin router serving the contract under /api.
func (s *Server) Engine() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	api := router.Group("/api")
	api.POST("/auth/login", s.login)

	authed := api.Group("")
	authed.Use(s.requireAuth)
	authed.PUT("/auth/profile", s.updateProfile)
	authed.GET("/session/my-courses", s.myCourses)
	authed.GET("/session/active", s.activeSessions)
	authed.POST("/session/start", s.startSession)
	authed.GET("/session/:id/qr", s.rotateCode)
	authed.POST("/session/end", s.endSession)
	authed.GET("/attendance/session/:id", s.sessionRoster)
	authed.POST("/attendance/mark", s.markAttendance)
	authed.GET("/attendance/history", s.history)
	authed.GET("/attendance/faculty-report", s.facultyReport)
	return router
}

// Run serves the stub backend on the given address.
func (s *Server) Run(addr string) error {
	return s.Engine().Run(addr)
}

func (s *Server) requireAuth(c *gin.Context) {
	header := c.GetHeader("Authorization")
	token, found := strings.CutPrefix(header, "Bearer ")
	if !found || token == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Missing token"})
		return
	}
	s.mu.Lock()
	id, ok := s.tokens[token]
	acct := s.accounts[id]
	s.mu.Unlock()
	if !ok || acct == nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Invalid token"})
		return
	}
	c.Set("account", acct)
	c.Next()
}

func currentAccount(c *gin.Context) *account {
	v, _ := c.Get("account")
	acct, _ := v.(*account)
	return acct
}

func (s *Server) login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request"})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, acct := range s.accounts {
		if acct.Email == req.Email && acct.Password == req.Password {
			token := uuid.NewString()
			s.tokens[token] = acct.ID
			user := acct.User
			user.Token = token
			c.JSON(http.StatusOK, user)
			return
		}
	}
	c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid Credentials"})
}

func (s *Server) updateProfile(c *gin.Context) {
	acct := currentAccount(c)
	var req models.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request"})
		return
	}
	s.mu.Lock()
	if req.Name != "" {
		acct.Name = req.Name
	}
	if req.Email != "" {
		acct.Email = req.Email
	}
	if req.Password != "" {
		acct.Password = req.Password
	}
	user := acct.User
	s.mu.Unlock()
	c.JSON(http.StatusOK, user)
}

func (s *Server) myCourses(c *gin.Context) {
	acct := currentAccount(c)
	if acct.Role != models.RoleFaculty {
		c.JSON(http.StatusForbidden, gin.H{"message": "Faculty only"})
		return
	}
	s.mu.Lock()
	courses := append([]models.Course(nil), s.courses...)
	s.mu.Unlock()
	c.JSON(http.StatusOK, courses)
}
