package models

import (
	"database/sql"
	"time"
)

type User struct {
	ID             int64        `db:"id"`
	Username       string       `db:"username"`
	Email          string       `db:"email"`
	PasswordHash   string       `db:"password_hash"`
	IsAdmin        bool         `db:"is_admin"`
	FavoriteGenres []string     `db:"-"`
	CreatedAt      time.Time    `db:"created_at"`
	LastLogin      sql.NullTime `db:"last_login"`
}
