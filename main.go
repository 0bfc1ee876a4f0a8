package main

import (
	"log"

	"blogicum/config"
	"blogicum/internal/cache"
	"blogicum/internal/database"
	"blogicum/internal/handlers"
	"blogicum/internal/search"
	"blogicum/internal/server"
)

func main() {
	// 1. Загружаем конфигурацию приложения
	config.LoadConfig()

	// 2. Инициализируем соединение с базой данных
	err := database.InitDB(config.AppConfig)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize database: %v", err)
	}

	// 3. Откладываем закрытие соединения с базой данных
	defer func() {
		if err := database.DB.Close(); err != nil {
			log.Printf("ERROR: Failed to close database connection: %v", err)
		} else {
			log.Println("Database connection closed successfully.")
		}
	}()

	// 4. Подключаем необязательные кеш и поисковый индекс
	postCache, err := cache.New(config.AppConfig.Redis.Addr)
	if err != nil {
		log.Printf("WARNING: Redis unavailable, post cache disabled: %v", err)
	} else if postCache != nil {
		log.Println("Post cache enabled.")
	}
	handlers.PostCache = postCache

	searchIndex, err := search.New(config.AppConfig.Elastic.URL)
	if err != nil {
		log.Printf("WARNING: Elasticsearch unavailable, falling back to database search: %v", err)
	} else if searchIndex != nil {
		log.Println("Search index enabled.")
	}
	handlers.SearchIndex = searchIndex

	// 5. Запускаем веб-сервер
	server.StartServer()
}
