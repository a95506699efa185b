package services

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/atkinsj/dumpbin/internal/auth"
	"github.com/atkinsj/dumpbin/internal/models"
)

// ErrUsernameTaken is returned by CreateUser when the username is already
// registered (case-insensitively).
var ErrUsernameTaken = errors.New("username already taken")

// UserServiceProvider defines the interface for user services.
type UserServiceProvider interface {
	GetUserByID(id int64) (models.User, error)
	GetUserByUsername(username string) (models.User, error)
	CreateUser(username, email, password string) (models.User, error)
	AuthenticateUser(username, password string) (models.User, error)
	UpdateProfile(id int64, email, website, newPassword string, avatar []byte) (models.User, error)
	GetAvatar(username string) ([]byte, error)
	UsernameExists(username string) (bool, error)
}

// UserService provides business logic for user management.
type UserService struct {
	db        *sql.DB
	passwords auth.CredentialVerifier
	events    EventServiceProvider
}

// NewUserService creates a new UserService.
func NewUserService(db *sql.DB, passwords auth.CredentialVerifier, events EventServiceProvider) *UserService {
	return &UserService{db: db, passwords: passwords, events: events}
}

const userColumns = "id, username, email, password_hash, website, views, joined"

// GetUserByID retrieves a single user by their ID. The avatar blob is not
// loaded; use GetAvatar for that.
func (s *UserService) GetUserByID(id int64) (models.User, error) {
	row := s.db.QueryRow("SELECT "+userColumns+" FROM users WHERE id = ?", id)
	return scanUser(row)
}

// GetUserByUsername retrieves a single user by username. The lookup is
// case-insensitive (the username column collates NOCASE).
func (s *UserService) GetUserByUsername(username string) (models.User, error) {
	row := s.db.QueryRow("SELECT "+userColumns+" FROM users WHERE username = ?", username)
	return scanUser(row)
}

// CreateUser registers a new account, hashing the credential.
func (s *UserService) CreateUser(username, email, password string) (models.User, error) {
	if username == "" || password == "" {
		return models.User{}, fmt.Errorf("username and password are required")
	}

	hash, err := s.passwords.Hash(password)
	if err != nil {
		return models.User{}, fmt.Errorf("failed to hash password: %w", err)
	}

	joined := time.Now().UTC()
	res, err := s.db.Exec(
		"INSERT INTO users (username, email, password_hash, website, views, joined) VALUES (?, ?, ?, '', 0, ?)",
		username, email, hash, joined,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return models.User{}, ErrUsernameTaken
		}
		return models.User{}, err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return models.User{}, err
	}

	s.events.CreateEvent("user.register", "info", fmt.Sprintf("User '%s' registered.", username), nil)

	return models.User{ID: id, Username: username, Email: email, Joined: joined}, nil
}

// AuthenticateUser verifies a user's credentials. The returned record has
// its credential cleared.
func (s *UserService) AuthenticateUser(username, password string) (models.User, error) {
	user, err := s.GetUserByUsername(username)
	if err != nil {
		return models.User{}, models.ErrUnauthenticated
	}

	if !s.passwords.Verify(user.PasswordHash, password) {
		return models.User{}, models.ErrUnauthenticated
	}

	user.PasswordHash = ""
	return user, nil
}

// UpdateProfile stores new profile fields for a user. newPassword and
// avatar are optional; empty values leave the current ones in place. The
// avatar is expected to be an already-processed PNG.
func (s *UserService) UpdateProfile(id int64, email, website, newPassword string, avatar []byte) (models.User, error) {
	if _, err := s.db.Exec("UPDATE users SET email = ?, website = ? WHERE id = ?", email, website, id); err != nil {
		return models.User{}, err
	}

	if newPassword != "" {
		hash, err := s.passwords.Hash(newPassword)
		if err != nil {
			return models.User{}, fmt.Errorf("failed to hash password: %w", err)
		}
		if _, err := s.db.Exec("UPDATE users SET password_hash = ? WHERE id = ?", hash, id); err != nil {
			return models.User{}, err
		}
	}

	if avatar != nil {
		if _, err := s.db.Exec("UPDATE users SET avatar = ? WHERE id = ?", avatar, id); err != nil {
			return models.User{}, err
		}
	}

	return s.GetUserByID(id)
}

// GetAvatar returns the stored avatar PNG for a user, or nil if the user
// has never uploaded one.
func (s *UserService) GetAvatar(username string) ([]byte, error) {
	var avatar []byte
	err := s.db.QueryRow("SELECT avatar FROM users WHERE username = ?", username).Scan(&avatar)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, models.ErrNotFound
		}
		return nil, err
	}
	return avatar, nil
}

// UsernameExists reports whether the username is registered.
func (s *UserService) UsernameExists(username string) (bool, error) {
	var one int
	err := s.db.QueryRow("SELECT 1 FROM users WHERE username = ?", username).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func scanUser(row rowScanner) (models.User, error) {
	var user models.User
	err := row.Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.Website, &user.Views, &user.Joined)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.User{}, models.ErrNotFound
		}
		return models.User{}, err
	}
	return user, nil
}
