package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/iamMohdZiya/appAttendence/models"
)

// ErrNoCredentials is returned when no login has been stored yet.
var ErrNoCredentials = errors.New("not logged in")

// Credential is the single stored login: the bearer token plus the
// last-known profile, refreshed on login and profile update.
type Credential struct {
	gorm.Model
	UserID string
	Name   string
	Email  string
	Role   string
	RollNo string
	Token  string
}

// Device holds the fingerprint generated on first open. It never
// changes for the lifetime of the install.
type Device struct {
	gorm.Model
	Fingerprint string `gorm:"index"`
}

// Store is the local persistent store backing the client: auth token,
// last-known user profile, device fingerprint.
type Store struct {
	db *gorm.DB
	mu sync.Mutex
}

// Open connects to the sqlite store at path, creating parent
// directories and migrating the schema as needed.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("failed to create store directory: %w", err)
		}
	}
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to open local store: %w", err)
	}
	if err := db.AutoMigrate(&Credential{}, &Device{}); err != nil {
		return nil, fmt.Errorf("failed to migrate local store: %w", err)
	}
	s := &Store{db: db}
	if err := s.ensureDevice(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) ensureDevice() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var dev Device
	err := s.db.First(&dev).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		dev = Device{Fingerprint: uuid.NewString()}
		return s.db.Create(&dev).Error
	}
	return err
}

// SaveUser replaces the stored credential with the given user. The
// token field must be set; profile updates that carry no token keep
// the existing one.
func (s *Store) SaveUser(u models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	token := u.Token
	if token == "" {
		var prev Credential
		if err := s.db.First(&prev).Error; err == nil {
			token = prev.Token
		}
	}
	if err := s.db.Where("1 = 1").Delete(&Credential{}).Error; err != nil {
		return err
	}
	return s.db.Create(&Credential{
		UserID: u.ID,
		Name:   u.Name,
		Email:  u.Email,
		Role:   u.Role,
		RollNo: u.RollNo,
		Token:  token,
	}).Error
}

// User returns the last-known profile, or ErrNoCredentials.
func (s *Store) User() (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var cred Credential
	err := s.db.First(&cred).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.User{}, ErrNoCredentials
	}
	if err != nil {
		return models.User{}, err
	}
	return models.User{
		ID:     cred.UserID,
		Name:   cred.Name,
		Email:  cred.Email,
		Role:   cred.Role,
		RollNo: cred.RollNo,
		Token:  cred.Token,
	}, nil
}

// Token returns the stored bearer token, or ErrNoCredentials.
func (s *Store) Token() (string, error) {
	u, err := s.User()
	if err != nil {
		return "", err
	}
	return u.Token, nil
}

// DeviceID returns the install's fingerprint.
func (s *Store) DeviceID() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var dev Device
	if err := s.db.First(&dev).Error; err != nil {
		return "", err
	}
	return dev.Fingerprint, nil
}

// Clear removes the stored credential. The device fingerprint survives
// logout.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Where("1 = 1").Delete(&Credential{}).Error
}
