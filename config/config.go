package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// PostsPerPage — единый размер страницы для всех списков постов.
const PostsPerPage = 10

// Config содержит все конфигурационные параметры приложения.
type Config struct {
	Server struct {
		Port         string
		CookieSecure bool
	}
	Database struct {
		DSN string // например: "blogicum.db?_foreign_keys=on"
	}
	Session struct {
		Expiration time.Duration
	}
	Redis struct {
		Addr string // пусто — кеш отключен
	}
	Elastic struct {
		URL string // пусто — поисковый индекс отключен, поиск идет через БД
	}
}

// AppConfig - это глобальная переменная для хранения загруженной конфигурации,
// доступная для всего приложения.
var AppConfig *Config

// LoadConfig загружает конфигурацию из .env и переменных окружения
// или устанавливает значения по умолчанию. Вызывается один раз в main.go.
func LoadConfig() {
	// .env не обязателен: в проде всё приходит из окружения
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded configuration from .env file.")
	}

	AppConfig = &Config{}

	// --- Конфигурация Сервера ---
	AppConfig.Server.Port = getEnv("BLOGICUM_PORT", "8080")
	AppConfig.Server.CookieSecure = getEnv("BLOGICUM_COOKIE_SECURE", "false") == "true"

	// --- Конфигурация Базы Данных ---
	dbName := getEnv("BLOGICUM_DB_NAME", "blogicum.db")
	AppConfig.Database.DSN = dbName + "?_foreign_keys=on"

	// --- Конфигурация Сессий ---
	sessionHours, err := strconv.Atoi(getEnv("BLOGICUM_SESSION_HOURS", "24"))
	if err != nil {
		log.Printf("WARNING: Invalid session duration specified. Using default 24 hours. Error: %v", err)
		sessionHours = 24
	}
	AppConfig.Session.Expiration = time.Duration(sessionHours) * time.Hour

	// --- Кеш и поиск (необязательные) ---
	AppConfig.Redis.Addr = getEnv("BLOGICUM_REDIS_ADDR", "")
	AppConfig.Elastic.URL = getEnv("BLOGICUM_ELASTIC_URL", "")

	log.Println("Configuration loaded successfully.")
}

// getEnv - это вспомогательная функция для чтения переменной окружения.
// Если переменная не установлена, возвращается значение по умолчанию (fallback).
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
