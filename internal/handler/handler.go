package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/InQaaaaGit/userpet_api.git/internal/middleware"
	"github.com/InQaaaaGit/userpet_api.git/internal/models"
	"github.com/InQaaaaGit/userpet_api.git/internal/service"
)

const (
	contentTypeJSON = "application/json"

	invalidResultsMessage = "invalid results parameter"
	internalErrorMessage  = "Internal server error"
)

// Aggregator определяет интерфейс сервиса агрегации пользователей с питомцами
type Aggregator interface {
	Aggregate(ctx context.Context, count int, nationality string) ([]models.UserWithPet, error)
}

type Handler struct {
	aggregator   Aggregator
	defaultCount int
	logger       *zap.Logger
}

// NewHandler создает обработчики. defaultCount подставляется, если параметр results не передан.
func NewHandler(aggregator Aggregator, defaultCount int, logger *zap.Logger) *Handler {
	return &Handler{
		aggregator:   aggregator,
		defaultCount: defaultCount,
		logger:       logger,
	}
}

// HandleUsersWithPet обрабатывает GET /api/users-with-pet?results=<int>&nat=<string>
func (h *Handler) HandleUsersWithPet(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	query := r.URL.Query()

	count := h.defaultCount
	if raw := strings.TrimSpace(query.Get("results")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			h.logger.Info("Invalid results parameter", zap.String("results", raw))
			http.Error(w, invalidResultsMessage, http.StatusBadRequest)
			return
		}
		count = parsed
	}
	nationality := strings.TrimSpace(query.Get("nat"))

	users, err := h.aggregator.Aggregate(r.Context(), count, nationality)
	if err != nil {
		if errors.Is(err, service.ErrAggregation) {
			h.logger.Error("Aggregation failed",
				zap.String("request_id", middleware.RequestIDFromContext(r.Context())),
				zap.Error(err))
		} else {
			h.logger.Error("Unexpected aggregation error", zap.Error(err))
		}
		http.Error(w, internalErrorMessage, http.StatusInternalServerError)
		return
	}
	if users == nil {
		users = []models.UserWithPet{}
	}

	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(users); err != nil {
		h.logger.Error("Error writing JSON response", zap.Error(err))
	}
}

// WithLogging добавляет логирование запросов
func (h *Handler) WithLogging(next http.Handler) http.Handler {
	return middleware.LoggerMiddleware(h.logger)(next)
}

// WithGzip добавляет поддержку gzip сжатия ответов
func (h *Handler) WithGzip(next http.Handler) http.Handler {
	return middleware.GzipMiddleware(next)
}
