package middleware

import (
	"log"
	"net"
	"net/http"
	"sync"
	"time"
)

const (
	maxRequests = 300         // Максимальное количество запросов за окно
	window      = time.Minute // Окно времени для сброса счетчика
)

// clientState хранит состояние rate limiter'а для каждого клиента
type clientState struct {
	lastRequest  time.Time
	requestCount int
	mu           sync.Mutex
}

var (
	clients = make(map[string]*clientState)
	mu      sync.Mutex // Мьютекс для доступа к map clients
	once    sync.Once
)

// RateLimitMiddleware ограничивает количество запросов от одного IP-адреса.
func RateLimitMiddleware(next http.Handler) http.Handler {
	// Запускаем горутину для очистки старых записей только один раз
	once.Do(func() {
		go cleanupClientStates()
	})

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			log.Printf("Error splitting host port: %v", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		mu.Lock()
		state, exists := clients[ip]
		if !exists {
			state = &clientState{}
			clients[ip] = state
		}
		mu.Unlock()

		state.mu.Lock()
		defer state.mu.Unlock()

		if time.Since(state.lastRequest) > window {
			// Сбросить счетчик, если окно времени прошло
			state.requestCount = 0
			state.lastRequest = time.Now()
		}

		state.requestCount++

		if state.requestCount > maxRequests {
			http.Error(w, "Too Many Requests", http.StatusTooManyRequests)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// cleanupClientStates периодически очищает map от старых записей, чтобы избежать утечек памяти
func cleanupClientStates() {
	for range time.Tick(window) { // Очищаем map каждое `window`
		mu.Lock()
		for ip, state := range clients {
			state.mu.Lock()
			// Удаляем, если не было активности в течение 2-х окон
			if time.Since(state.lastRequest) > 2*window {
				delete(clients, ip)
			}
			state.mu.Unlock()
		}
		mu.Unlock()
	}
}
