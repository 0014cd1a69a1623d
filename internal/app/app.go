// Package app собирает приложение: внешние источники, агрегатор,
// HTTP обработчики, маршруты и middleware.
package app

import (
	"net/http"
	"net/http/pprof"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/InQaaaaGit/userpet_api.git/internal/config"
	"github.com/InQaaaaGit/userpet_api.git/internal/handler"
	"github.com/InQaaaaGit/userpet_api.git/internal/metrics"
	"github.com/InQaaaaGit/userpet_api.git/internal/middleware"
	"github.com/InQaaaaGit/userpet_api.git/internal/service"
	"github.com/InQaaaaGit/userpet_api.git/internal/source"
	"github.com/InQaaaaGit/userpet_api.git/internal/upstream"
)

// App представляет основное приложение сервиса пользователей с питомцами.
// Инкапсулирует конфигурацию, HTTP роутер, логгер и обработчики запросов.
type App struct {
	config  *config.Config   // Конфигурация приложения
	router  *chi.Mux         // HTTP роутер для обработки запросов
	logger  *zap.Logger      // Логгер для записи событий приложения
	handler *handler.Handler // Обработчики HTTP запросов
	metrics *metrics.Metrics // Метрики Prometheus
}

// NewApp создает приложение и связывает его зависимости.
//
// Параметры:
//   - cfg: конфигурация с адресами внешних API и границами количества записей
//   - logger: логгер приложения; nil заменяется на no-op логгер
func NewApp(cfg *config.Config, logger *zap.Logger) *App {
	if logger == nil {
		logger = zap.NewNop()
	}

	m := metrics.New()
	client := upstream.NewClient(cfg.UpstreamTimeout, logger, m)

	users := source.NewUserSource(client, cfg.UserAPIURL, cfg.Seed, logger)
	images := source.NewPetImageSource(client, cfg.ImageAPIURL, logger)

	limits := service.CountLimits{
		Min:     cfg.MinCount,
		Max:     cfg.MaxCount,
		Default: cfg.DefaultCount,
	}
	aggregator := service.NewAggregator(users, images, limits, logger, m)

	a := &App{
		config:  cfg,
		router:  chi.NewRouter(),
		logger:  logger,
		handler: handler.NewHandler(aggregator, cfg.DefaultCount, logger),
		metrics: m,
	}
	a.setupRoutes()
	return a
}

// setupRoutes регистрирует middleware и маршруты.
// CORS стоит перед gzip, чтобы preflight запросы завершались до сжатия.
func (a *App) setupRoutes() {
	a.router.Use(middleware.WithRequestID)
	a.router.Use(a.handler.WithLogging)
	a.router.Use(chimiddleware.Recoverer)
	a.router.Use(middleware.CORS())
	a.router.Use(a.handler.WithGzip)

	a.router.Get("/api/users-with-pet", a.handler.HandleUsersWithPet)
	a.router.Get("/ping", a.handler.HandlePing)
	a.router.Head("/ping", a.handler.HandlePing)
	a.router.Method(http.MethodGet, "/metrics", a.metrics.Handler())

	// Профилирование (только при ENABLE_PPROF)
	if a.config.EnablePprof {
		a.router.Route("/debug/pprof", func(r chi.Router) {
			r.HandleFunc("/", pprof.Index)
			r.HandleFunc("/cmdline", pprof.Cmdline)
			r.HandleFunc("/profile", pprof.Profile)
			r.HandleFunc("/symbol", pprof.Symbol)
			r.HandleFunc("/trace", pprof.Trace)
			r.Handle("/{name}", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				pprof.Handler(chi.URLParam(r, "name")).ServeHTTP(w, r)
			}))
		})
	}
}

// Router возвращает HTTP обработчик приложения
func (a *App) Router() http.Handler {
	return a.router
}

// GetServer создает и возвращает настроенный HTTP сервер.
// WriteTimeout превышает таймаут внешних API, чтобы ответ успевал уйти клиенту.
func (a *App) GetServer() *http.Server {
	return &http.Server{
		Addr:              a.config.ServerAddress,
		Handler:           a.router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      a.config.UpstreamTimeout + 10*time.Second,
		IdleTimeout:       120 * time.Second,
	}
}
