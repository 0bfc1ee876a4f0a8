package database

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	"blogicum/config"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
	"golang.org/x/crypto/bcrypt"
)

var DB *sql.DB // Глобальная переменная для подключения к БД

// InitDB инициализирует подключение к базе данных и создает необходимые таблицы.
func InitDB(cfg *config.Config) error {
	var err error
	DB, err = sql.Open("sqlite3", cfg.Database.DSN)
	if err != nil {
		return fmt.Errorf("error opening database: %w", err)
	}

	if err = DB.Ping(); err != nil {
		return fmt.Errorf("error connecting to database: %w", err)
	}

	log.Printf("Successfully connected to SQLite database using DSN: %s", cfg.Database.DSN)

	return createTables()
}

// createTables создает все необходимые таблицы в базе данных.
func createTables() error {
	schema := `
	PRAGMA foreign_keys = ON;

	CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		email TEXT NOT NULL UNIQUE,
		username TEXT NOT NULL UNIQUE COLLATE NOCASE,
		password TEXT NOT NULL,
		first_name TEXT NOT NULL DEFAULT '',
		last_name TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS categories (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		slug TEXT NOT NULL UNIQUE,
		is_published BOOLEAN NOT NULL DEFAULT 1
	);

	CREATE TABLE IF NOT EXISTS locations (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		is_published BOOLEAN NOT NULL DEFAULT 1
	);

	CREATE TABLE IF NOT EXISTS posts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		author_id INTEGER NOT NULL,
		category_id INTEGER NOT NULL,
		location_id INTEGER,
		title TEXT NOT NULL,
		text TEXT NOT NULL,
		pub_date DATETIME NOT NULL,
		is_published BOOLEAN NOT NULL DEFAULT 1,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (author_id) REFERENCES users(id) ON DELETE CASCADE,
		FOREIGN KEY (category_id) REFERENCES categories(id) ON DELETE RESTRICT,
		FOREIGN KEY (location_id) REFERENCES locations(id) ON DELETE SET NULL
	);

	CREATE TABLE IF NOT EXISTS comments (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		post_id INTEGER NOT NULL,
		author_id INTEGER NOT NULL,
		text TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (post_id) REFERENCES posts(id) ON DELETE CASCADE,
		FOREIGN KEY (author_id) REFERENCES users(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS sessions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL,
		uuid TEXT NOT NULL UNIQUE,
		expires DATETIME NOT NULL,
		FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
	);

	-- Helpful indexes
	CREATE INDEX IF NOT EXISTS idx_users_email ON users(email);
	CREATE INDEX IF NOT EXISTS idx_users_username_nocase ON users(username COLLATE NOCASE);
	CREATE INDEX IF NOT EXISTS idx_categories_slug ON categories(slug);
	CREATE INDEX IF NOT EXISTS idx_posts_pub_date ON posts(pub_date);
	CREATE INDEX IF NOT EXISTS idx_posts_author_pub ON posts(author_id, pub_date);
	CREATE INDEX IF NOT EXISTS idx_posts_category_pub ON posts(category_id, pub_date);
	CREATE INDEX IF NOT EXISTS idx_comments_post_created ON comments(post_id, created_at);
	CREATE INDEX IF NOT EXISTS idx_sessions_uuid ON sessions(uuid);
	`

	_, err := DB.Exec(schema)
	if err != nil {
		return fmt.Errorf("error creating tables: %w", err)
	}

	log.Println("Database tables created or already exist.")

	return insertDefaultCategories()
}

// insertDefaultCategories добавляет стандартные категории и места, если их нет.
func insertDefaultCategories() error {
	categories := [][2]string{
		{"Путешествия", "travel"},
		{"Еда", "food"},
		{"Кино", "movies"},
		{"Музыка", "music"},
	}
	for _, c := range categories {
		_, err := DB.Exec("INSERT OR IGNORE INTO categories (title, slug) VALUES (?, ?)", c[0], c[1])
		if err != nil {
			return fmt.Errorf("error inserting category '%s': %w", c[0], err)
		}
	}

	locations := []string{"Москва", "Санкт-Петербург", "Новосибирск"}
	for _, name := range locations {
		var exists bool
		if err := DB.QueryRow("SELECT EXISTS(SELECT 1 FROM locations WHERE name = ?)", name).Scan(&exists); err != nil {
			return fmt.Errorf("error checking location '%s': %w", name, err)
		}
		if exists {
			continue
		}
		if _, err := DB.Exec("INSERT INTO locations (name) VALUES (?)", name); err != nil {
			return fmt.Errorf("error inserting location '%s': %w", name, err)
		}
	}

	log.Println("Default categories and locations ensured.")
	return nil
}

// CleanupExpiredSessions удаляет просроченные сессии из БД.
func CleanupExpiredSessions() {
	ticker := time.NewTicker(30 * time.Minute) // Проверять каждые 30 минут
	defer ticker.Stop()

	for range ticker.C {
		result, err := DB.Exec("DELETE FROM sessions WHERE expires < ?", time.Now())
		if err != nil {
			log.Printf("Error cleaning up expired sessions: %v", err)
			continue
		}
		rowsAffected, _ := result.RowsAffected()
		if rowsAffected > 0 {
			log.Printf("Cleaned up %d expired sessions.", rowsAffected)
		}
	}
}

// HashPassword хеширует пароль с использованием bcrypt.
func HashPassword(password string) (string, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashedPassword), nil
}

// CheckPasswordHash сравнивает хешированный пароль с обычным.
func CheckPasswordHash(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}
