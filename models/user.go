package models

// User is the authenticated account as returned by login and profile
// endpoints. Token is present on login responses only.
type User struct {
	ID     string `json:"_id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	RollNo string `json:"rollNo,omitempty"`
	Token  string `json:"token,omitempty"`
}

const (
	RoleFaculty = "faculty"
	RoleStudent = "student"
	RoleAdmin   = "admin"
)
