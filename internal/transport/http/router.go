// transport/http собирает публичный HTTP-роутер accounts-сервиса.
// Здесь выполняется только маппинг HTTP <-> доменный слой (service);
// вся бизнес-логика и проверки находятся в пакете service.
package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/pribylovaa/accounts-service/internal/service"
	"github.com/pribylovaa/accounts-service/internal/transport/http/handlers"
	"github.com/pribylovaa/accounts-service/internal/transport/http/middleware"
)

// Options — параметры сборки HTTP-роутера.
type Options struct {
	Logger     *slog.Logger
	Timeout    time.Duration         // общий дедлайн запроса; <=0 — без дедлайна.
	RefreshTTL time.Duration         // срок жизни refresh-cookie.
	ClientURL  string                // redirect после активации.
	Metrics    prometheus.Registerer // nil — метрики не регистрируются.
}

// NewRouter собирает http.Handler с chi и подключёнными middleware/роутами.
func NewRouter(svc *service.Service, opts Options) http.Handler {
	root := chi.NewRouter()

	// Middleware (внешний -> внутренний).
	root.Use(
		middleware.Recover(),            // безопасно ловим паники
		middleware.RequestID(),          // формируем/прокидываем X-Request-Id (до логирования!)
		middleware.Logging(opts.Logger), // кладём request-scoped логгер в контекст и логируем
	)
	if opts.Metrics != nil {
		root.Use(middleware.Metrics(opts.Metrics))
	}
	if opts.Timeout > 0 {
		root.Use(middleware.Timeout(opts.Timeout)) // общий дедлайн запроса
	}

	h := handlers.New(svc, opts.RefreshTTL, opts.ClientURL)

	registerRoutes(root, h, svc)
	return root
}

// registerRoutes — единая точка регистрации всех REST-эндпойнтов.
// Пути и методы повторяют историческое API сервиса.
func registerRoutes(r chi.Router, h *handlers.Handlers, svc *service.Service) {
	// Открытые маршруты.
	r.Post("/signup", h.SignUp)
	r.Post("/signin", h.SignIn)
	r.Post("/logout", h.LogOut)
	r.Get("/refresh", h.Refresh)
	r.Get("/activate/{link}", h.Activate)
	r.Delete("/user/{id}", h.DeleteUser)

	// Маршруты за гейтом по access-токену.
	r.Group(func(pr chi.Router) {
		pr.Use(middleware.Authenticate(svc))

		pr.Get("/users", h.Users)
		pr.Get("/user/{id}", h.UserByID)
		pr.Get("/me", h.Me)
	})
}
