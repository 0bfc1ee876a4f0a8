package server

import (
	"log"
	"net/http"
	"time"

	"blogicum/config"
	"blogicum/internal/database"
	"blogicum/internal/handlers"
	"blogicum/internal/middleware"

	"github.com/gorilla/mux"
)

func applyMiddleware(h http.Handler, m ...func(http.Handler) http.Handler) http.Handler {
	for i := len(m) - 1; i >= 0; i-- {
		h = m[i](h)
	}
	return h
}

// NewRouter регистрирует все маршруты приложения.
func NewRouter() *mux.Router {
	r := mux.NewRouter()
	r.StrictSlash(true)
	r.NotFoundHandler = http.HandlerFunc(handlers.Render404)

	r.HandleFunc("/login", handlers.LoginHandler)
	r.HandleFunc("/register", handlers.RegisterHandler)
	r.Handle("/logout", middleware.RequireAuthMiddleware(http.HandlerFunc(handlers.LogoutHandler)))

	r.HandleFunc("/category/{category_slug}/", handlers.CategoryHandler)

	// Фиксированные пути регистрируются раньше параметризованных
	r.Handle("/posts/create/", middleware.RequireAuthMiddleware(http.HandlerFunc(handlers.CreatePostHandler)))
	r.HandleFunc("/posts/search/", handlers.SearchHandler)
	r.HandleFunc("/posts/{post_id:[0-9]+}/", handlers.PostDetailHandler)

	// Мутации: первый ярус — аутентификация, второй — владелец ресурса
	r.Handle("/posts/{post_id}/edit/",
		middleware.RequireAuthMiddleware(handlers.OwnPost(handlers.EditPostHandler)))
	r.Handle("/posts/{post_id}/delete/",
		middleware.RequireAuthMiddleware(handlers.OwnPost(handlers.DeletePostHandler)))
	r.Handle("/posts/{post_id}/comment/{comment_id}/edit/",
		middleware.RequireAuthMiddleware(handlers.OwnComment(handlers.EditCommentHandler)))
	r.Handle("/posts/{post_id}/comment/{comment_id}/delete/",
		middleware.RequireAuthMiddleware(handlers.OwnComment(handlers.DeleteCommentHandler)))

	r.Handle("/profile/edit/", middleware.RequireAuthMiddleware(http.HandlerFunc(handlers.ProfileEditHandler)))
	r.HandleFunc("/profile/{username}/", handlers.ProfileHandler)

	r.HandleFunc("/", handlers.IndexHandler)

	return r
}

// Handler собирает маршрутизатор с глобальными middleware.
func Handler() http.Handler {
	return applyMiddleware(NewRouter(),
		middleware.LoggerMiddleware,
		middleware.SecureHeadersMiddleware,
		middleware.RateLimitMiddleware,
		middleware.MethodOverrideMiddleware,
		middleware.AuthMiddleware,
	)
}

func StartServer() {
	go database.CleanupExpiredSessions()

	cfg := config.AppConfig
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      Handler(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	log.Printf("Server starting on http://localhost%s", srv.Addr)
	if err := srv.ListenAndServe(); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}
