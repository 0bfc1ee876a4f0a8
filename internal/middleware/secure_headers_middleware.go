package middleware

import "net/http"

// SecureHeadersMiddleware добавляет безопасные HTTP-заголовки для защиты от различных атак.
func SecureHeadersMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Content Security Policy (CSP)
		w.Header().Set("Content-Security-Policy", "default-src 'self'; style-src 'self' 'unsafe-inline'; img-src 'self' data:; object-src 'none'")

		// X-Frame-Options: Защита от clickjacking.
		w.Header().Set("X-Frame-Options", "DENY")

		// X-Content-Type-Options: Предотвращает Mime-Type Sniffing.
		w.Header().Set("X-Content-Type-Options", "nosniff")

		// Referrer-Policy: Управляет информацией, отправляемой в заголовке Referer.
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		next.ServeHTTP(w, r)
	})
}
