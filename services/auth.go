package services

import (
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"tawsky/models"
)

// AuthService owns user registration, credential verification and user
// lookup. It never stores or returns plaintext passwords.
type AuthService struct {
	db     *sql.DB
	genres *GenreService
}

func NewAuthService(db *sql.DB, genres *GenreService) *AuthService {
	return &AuthService{db: db, genres: genres}
}

// RegisterParams carries the signup form fields.
type RegisterParams struct {
	Username        string
	Email           string
	Password        string
	ConfirmPassword string
	FavoriteGenres  []string
}

// Register validates the signup input, checks username/email
// uniqueness and creates the user with a bcrypt password hash.
func (s *AuthService) Register(p RegisterParams) (*models.User, error) {
	p.Username = strings.TrimSpace(p.Username)
	p.Email = strings.TrimSpace(p.Email)

	if p.Username == "" || p.Email == "" || p.Password == "" {
		return nil, fmt.Errorf("%w: username, email and password are required", ErrValidation)
	}
	if p.Password != p.ConfirmPassword {
		return nil, fmt.Errorf("%w: passwords do not match", ErrValidation)
	}

	var count int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM users WHERE email = $1", p.Email).Scan(&count); err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	if count > 0 {
		return nil, fmt.Errorf("%w: email already exists", ErrConflict)
	}

	if err := s.db.QueryRow("SELECT COUNT(*) FROM users WHERE username = $1", p.Username).Scan(&count); err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	if count > 0 {
		return nil, fmt.Errorf("%w: username already exists", ErrConflict)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(p.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	var user models.User
	err = s.db.QueryRow(
		`INSERT INTO users (username, email, password_hash)
		 VALUES ($1, $2, $3)
		 RETURNING id, username, email, password_hash, is_admin, created_at, last_login`,
		p.Username, p.Email, string(hashedPassword),
	).Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.IsAdmin,
		&user.CreatedAt,
		&user.LastLogin,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to register user: %w", err)
	}

	if len(p.FavoriteGenres) > 0 {
		if err := s.genres.SetUserFavorites(user.ID, p.FavoriteGenres); err != nil {
			// The account itself is created; favorites are best-effort.
			slog.Warn("Failed to store favorite genres", "user_id", user.ID, "error", err)
		} else {
			user.FavoriteGenres = p.FavoriteGenres
		}
	}

	return &user, nil
}

// Authenticate looks the user up by email and verifies the password.
// On success last_login is refreshed.
func (s *AuthService) Authenticate(email, password string) (*models.User, error) {
	var user models.User
	err := s.db.QueryRow(
		"SELECT id, username, email, password_hash, is_admin, created_at, last_login FROM users WHERE email = $1",
		email,
	).Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.IsAdmin,
		&user.CreatedAt,
		&user.LastLogin,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%w: unknown email", ErrBadCredentials)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, fmt.Errorf("%w: password mismatch", ErrBadCredentials)
	}

	if _, err := s.db.Exec("UPDATE users SET last_login = CURRENT_TIMESTAMP WHERE id = $1", user.ID); err != nil {
		slog.Warn("Failed to update last_login", "user_id", user.ID, "error", err)
	}

	return &user, nil
}

func (s *AuthService) GetUserByID(userID int64) (*models.User, error) {
	var user models.User
	err := s.db.QueryRow(
		"SELECT id, username, email, password_hash, is_admin, created_at, last_login FROM users WHERE id = $1",
		userID,
	).Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.IsAdmin,
		&user.CreatedAt,
		&user.LastLogin,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%w: user %d", ErrNotFound, userID)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	genres, err := s.genres.UserFavorites(user.ID)
	if err == nil {
		user.FavoriteGenres = genres
	}

	return &user, nil
}
