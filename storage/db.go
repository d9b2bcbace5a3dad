package storage

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"time"

	"cotizador/models"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

var db *sql.DB

func InitDB() *sql.DB {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment")
	}
	user := os.Getenv("DB_USER")
	password := os.Getenv("DB_PASSWORD")
	dbname := os.Getenv("DB_NAME")
	host := os.Getenv("DB_HOST")
	port := os.Getenv("DB_PORT")

	connStr := fmt.Sprintf("user=%s password=%s dbname=%s host=%s port=%s sslmode=disable",
		user, password, dbname, host, port)

	var err error
	db, err = sql.Open("postgres", connStr)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Connection pool settings for light server load
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(2 * time.Minute)

	if err := db.Ping(); err != nil {
		log.Fatal("Failed to ping database:", err)
	}

	return db
}

func GetDB() *sql.DB {
	return db
}

// GetUserByEmail fetches a user by email for login. sql.ErrNoRows
// propagates when the email is unknown.
func GetUserByEmail(db *sql.DB, email string) (models.User, error) {
	var u models.User
	err := db.QueryRow(`SELECT id, name, email, password, role, can_modify_prices, created_at, updated_at
		FROM users WHERE email = $1`, email).
		Scan(&u.ID, &u.Name, &u.Email, &u.Password, &u.Role, &u.CanModifyPrices, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

// SaveSession stores a refresh session for a user.
func SaveSession(db *sql.DB, session *models.Session) error {
	_, err := db.Exec(`INSERT INTO sessions (id, user_id, expires_at, created_at) VALUES ($1, $2, $3, $4)`,
		session.ID, session.UserID, session.ExpiresAt, time.Now())
	return err
}

// GetSession loads a non-expired session by id. sql.ErrNoRows when the
// session is unknown or already expired.
func GetSession(db *sql.DB, id string) (models.Session, error) {
	var s models.Session
	err := db.QueryRow(`SELECT id, user_id, expires_at, created_at FROM sessions WHERE id = $1 AND expires_at > NOW()`, id).
		Scan(&s.ID, &s.UserID, &s.ExpiresAt, &s.CreatedAt)
	return s, err
}

// DeleteSession removes a session on logout.
func DeleteSession(db *sql.DB, id string) error {
	_, err := db.Exec(`DELETE FROM sessions WHERE id = $1`, id)
	return err
}

// CleanupExpiredSessions removes sessions past their expiry. Run by the
// daily maintenance cron job.
func CleanupExpiredSessions(db *sql.DB) error {
	res, err := db.Exec(`DELETE FROM sessions WHERE expires_at <= NOW()`)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n > 0 {
		log.Printf("Cleaned up %d expired sessions", n)
	}
	return nil
}
