// Package middleware содержит HTTP middleware сервиса: идентификатор запроса,
// логирование, gzip сжатие ответов и CORS.
package middleware

import (
	"context"
	"net/http"
	"unicode"

	"github.com/google/uuid"
)

// contextKey используется как ключ для значений в контексте
type contextKey string

const (
	// RequestIDKey используется как ключ для хранения ID запроса в контексте
	RequestIDKey contextKey = "request_id"
	// RequestIDHeader заголовок, в котором передается ID запроса
	RequestIDHeader = "X-Request-ID"

	maxRequestIDLength = 64
)

// GenerateRequestID генерирует уникальный ID запроса
func GenerateRequestID() string {
	return uuid.New().String()
}

// WithRequestID присваивает запросу идентификатор. Корректный ID из заголовка
// X-Request-ID клиента сохраняется, иначе генерируется новый.
// ID возвращается клиенту в том же заголовке.
func WithRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(RequestIDHeader)
		if !validRequestID(requestID) {
			requestID = GenerateRequestID()
		}

		w.Header().Set(RequestIDHeader, requestID)
		ctx := context.WithValue(r.Context(), RequestIDKey, requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequestIDFromContext извлекает ID запроса из контекста
func RequestIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(RequestIDKey).(string); ok {
		return id
	}
	return ""
}

// validRequestID проверяет, что ID непустой, ограниченной длины
// и состоит из печатных ASCII символов без пробелов
func validRequestID(id string) bool {
	if id == "" || len(id) > maxRequestIDLength {
		return false
	}
	for _, r := range id {
		if r > unicode.MaxASCII || !unicode.IsPrint(r) || unicode.IsSpace(r) {
			return false
		}
	}
	return true
}
