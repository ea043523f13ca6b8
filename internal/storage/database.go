package storage

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/eliswilliam/CINEHOME/internal/config"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/mattn/go-sqlite3"
)

// Open connects to the configured database for the given driver type.
func Open(dbType string, cfg *config.Config) (*sql.DB, error) {
	dbCfg, ok := cfg.Databases[dbType]
	if !ok {
		return nil, fmt.Errorf("database config for %s not found", dbType)
	}

	var (
		db  *sql.DB
		err error
	)

	switch strings.ToLower(dbType) {
	case "sqlite", "sqlite3":
		if dbCfg.DSN == "" {
			return nil, fmt.Errorf("sqlite dsn must be provided")
		}
		db, err = sql.Open("sqlite3", dbCfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("open sqlite database: %w", err)
		}
		if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
			db.Close()
			return nil, fmt.Errorf("enable sqlite foreign keys: %w", err)
		}
	case "mysql":
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?%s",
			dbCfg.Username,
			dbCfg.Password,
			dbCfg.Host,
			dbCfg.Port,
			dbCfg.DBName,
			dbCfg.Params,
		)
		db, err = sql.Open("mysql", dsn)
		if err != nil {
			return nil, fmt.Errorf("open mysql database: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported driver: %s", dbType)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return db, nil
}

// Migrate ensures the required tables are present.
func Migrate(db *sql.DB, driver string) error {
	var stmts []string
	switch strings.ToLower(driver) {
	case "sqlite", "sqlite3":
		stmts = []string{
			`CREATE TABLE IF NOT EXISTS users (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				email TEXT NOT NULL UNIQUE,
				username TEXT UNIQUE,
				password_hash TEXT NOT NULL,
				created_at DATETIME NOT NULL
			)`,
			`CREATE TABLE IF NOT EXISTS user_tokens (
				token TEXT PRIMARY KEY,
				user_id INTEGER NOT NULL,
				created_at DATETIME NOT NULL,
				expires_at DATETIME NOT NULL,
				FOREIGN KEY(user_id) REFERENCES users(id) ON DELETE CASCADE
			)`,
			`CREATE INDEX IF NOT EXISTS idx_user_tokens_user ON user_tokens(user_id)`,
			`CREATE TABLE IF NOT EXISTS posts (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				author TEXT NOT NULL,
				handle TEXT NOT NULL,
				avatar TEXT NOT NULL,
				text TEXT NOT NULL,
				movie_id TEXT,
				movie_title TEXT,
				movie_poster TEXT,
				rating INTEGER NOT NULL DEFAULT 0,
				created_at DATETIME NOT NULL
			)`,
			`CREATE INDEX IF NOT EXISTS idx_posts_handle ON posts(handle, created_at DESC)`,
			`CREATE INDEX IF NOT EXISTS idx_posts_created_at ON posts(created_at DESC)`,
			`CREATE TABLE IF NOT EXISTS post_likes (
				post_id INTEGER NOT NULL,
				handle TEXT NOT NULL,
				PRIMARY KEY (post_id, handle),
				FOREIGN KEY(post_id) REFERENCES posts(id) ON DELETE CASCADE
			)`,
			`CREATE TABLE IF NOT EXISTS post_saves (
				post_id INTEGER NOT NULL,
				handle TEXT NOT NULL,
				PRIMARY KEY (post_id, handle),
				FOREIGN KEY(post_id) REFERENCES posts(id) ON DELETE CASCADE
			)`,
			`CREATE TABLE IF NOT EXISTS comments (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				post_id INTEGER NOT NULL,
				author TEXT NOT NULL,
				handle TEXT NOT NULL,
				avatar TEXT NOT NULL,
				text TEXT NOT NULL,
				created_at DATETIME NOT NULL,
				FOREIGN KEY(post_id) REFERENCES posts(id) ON DELETE CASCADE
			)`,
			`CREATE INDEX IF NOT EXISTS idx_comments_post ON comments(post_id)`,
			`CREATE TABLE IF NOT EXISTS comment_likes (
				comment_id INTEGER NOT NULL,
				handle TEXT NOT NULL,
				PRIMARY KEY (comment_id, handle),
				FOREIGN KEY(comment_id) REFERENCES comments(id) ON DELETE CASCADE
			)`,
		}
	case "mysql":
		stmts = []string{
			`CREATE TABLE IF NOT EXISTS users (
				id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
				email VARCHAR(255) NOT NULL UNIQUE,
				username VARCHAR(255) UNIQUE,
				password_hash VARCHAR(255) NOT NULL,
				created_at DATETIME NOT NULL,
				PRIMARY KEY (id)
			) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
			`CREATE TABLE IF NOT EXISTS user_tokens (
				token VARCHAR(255) NOT NULL PRIMARY KEY,
				user_id BIGINT UNSIGNED NOT NULL,
				created_at DATETIME NOT NULL,
				expires_at DATETIME NOT NULL,
				INDEX idx_user_tokens_user (user_id),
				CONSTRAINT fk_user_tokens_user FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
			) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
			`CREATE TABLE IF NOT EXISTS posts (
				id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
				author VARCHAR(255) NOT NULL,
				handle VARCHAR(255) NOT NULL,
				avatar VARCHAR(255) NOT NULL,
				text TEXT NOT NULL,
				movie_id VARCHAR(64),
				movie_title VARCHAR(255),
				movie_poster VARCHAR(255),
				rating INT NOT NULL DEFAULT 0,
				created_at DATETIME NOT NULL,
				PRIMARY KEY (id),
				INDEX idx_posts_handle (handle, created_at),
				INDEX idx_posts_created_at (created_at)
			) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
			`CREATE TABLE IF NOT EXISTS post_likes (
				post_id BIGINT UNSIGNED NOT NULL,
				handle VARCHAR(255) NOT NULL,
				PRIMARY KEY (post_id, handle),
				CONSTRAINT fk_post_likes_post FOREIGN KEY (post_id) REFERENCES posts(id) ON DELETE CASCADE
			) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
			`CREATE TABLE IF NOT EXISTS post_saves (
				post_id BIGINT UNSIGNED NOT NULL,
				handle VARCHAR(255) NOT NULL,
				PRIMARY KEY (post_id, handle),
				CONSTRAINT fk_post_saves_post FOREIGN KEY (post_id) REFERENCES posts(id) ON DELETE CASCADE
			) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
			`CREATE TABLE IF NOT EXISTS comments (
				id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
				post_id BIGINT UNSIGNED NOT NULL,
				author VARCHAR(255) NOT NULL,
				handle VARCHAR(255) NOT NULL,
				avatar VARCHAR(255) NOT NULL,
				text TEXT NOT NULL,
				created_at DATETIME NOT NULL,
				PRIMARY KEY (id),
				INDEX idx_comments_post (post_id),
				CONSTRAINT fk_comments_post FOREIGN KEY (post_id) REFERENCES posts(id) ON DELETE CASCADE
			) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
			`CREATE TABLE IF NOT EXISTS comment_likes (
				comment_id BIGINT UNSIGNED NOT NULL,
				handle VARCHAR(255) NOT NULL,
				PRIMARY KEY (comment_id, handle),
				CONSTRAINT fk_comment_likes_comment FOREIGN KEY (comment_id) REFERENCES comments(id) ON DELETE CASCADE
			) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
		}
	default:
		return fmt.Errorf("unsupported driver for migration: %s", driver)
	}

	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migrate (%s): %w", driver, err)
		}
	}
	return nil
}
