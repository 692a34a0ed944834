package database

import (
	"context"
	"database/sql"
	"time"
)

// schema mirrors migrations/schema.sql so a fresh database bootstraps
// itself on startup.  Every statement is idempotent.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS rooms (
		id        BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		name      VARCHAR(100)    NOT NULL,
		capacity  INT UNSIGNED    NOT NULL,
		PRIMARY KEY (id),
		UNIQUE KEY uq_rooms_name (name)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS reservations (
		id         BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		room_id    BIGINT UNSIGNED NOT NULL,
		user_name  VARCHAR(100)    NOT NULL,
		start_time DATETIME        NOT NULL,
		end_time   DATETIME        NOT NULL,
		created_at TIMESTAMP       NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (id),
		KEY idx_reservations_room_window (room_id, start_time, end_time),
		KEY idx_reservations_user (user_name, start_time),
		CONSTRAINT fk_reservations_room FOREIGN KEY (room_id)
			REFERENCES rooms (id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// EnsureSchema creates the rooms and reservations tables when they do
// not exist yet.
func EnsureSchema(db *sql.DB) error {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
