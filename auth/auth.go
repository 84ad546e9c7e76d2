package auth

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/iamMohdZiya/appAttendence/logger"
	"github.com/iamMohdZiya/appAttendence/models"
)

// ErrAdminNotSupported is returned when an admin account signs in.
// Admins manage the product from the web portal; the mobile client
// refuses the role rather than showing a broken dashboard.
var ErrAdminNotSupported = errors.New("admin accounts must use the web portal")

// API is the slice of the backend client the auth flows use.
type API interface {
	Login(ctx context.Context, email, password string) (models.User, error)
	UpdateProfile(ctx context.Context, req models.UpdateProfileRequest) (models.User, error)
}

// Store is the local credential store the auth flows write to.
type Store interface {
	SaveUser(u models.User) error
	User() (models.User, error)
	Clear() error
}

// Manager binds the auth endpoints to the local store: login persists
// the token and profile, logout wipes them, profile updates refresh
// the stored copy.
type Manager struct {
	api   API
	store Store
	log   *logrus.Logger
}

func NewManager(apiClient API, store Store) *Manager {
	return &Manager{api: apiClient, store: store, log: logger.Logger}
}

// Login authenticates and persists the credential. Admin logins are
// refused and nothing is stored for them.
func (m *Manager) Login(ctx context.Context, email, password string) (models.User, error) {
	user, err := m.api.Login(ctx, email, password)
	if err != nil {
		return models.User{}, err
	}
	switch user.Role {
	case models.RoleFaculty, models.RoleStudent:
	default:
		return models.User{}, ErrAdminNotSupported
	}
	if err := m.store.SaveUser(user); err != nil {
		return models.User{}, err
	}
	m.log.WithFields(logrus.Fields{"email": user.Email, "role": user.Role}).Info("logged in")
	return user, nil
}

// UpdateProfile pushes name/email (and optionally a new password) to
// the server and refreshes the stored profile. The stored token is
// kept.
func (m *Manager) UpdateProfile(ctx context.Context, req models.UpdateProfileRequest) (models.User, error) {
	user, err := m.api.UpdateProfile(ctx, req)
	if err != nil {
		return models.User{}, err
	}
	if err := m.store.SaveUser(user); err != nil {
		return models.User{}, err
	}
	return user, nil
}

// CurrentUser returns the locally stored profile.
func (m *Manager) CurrentUser() (models.User, error) {
	return m.store.User()
}

// Logout wipes the stored credential.
func (m *Manager) Logout() error {
	return m.store.Clear()
}
