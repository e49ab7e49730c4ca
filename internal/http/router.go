package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/henriquesergio1/it-asset-360-sub000/internal/auth"
	"github.com/henriquesergio1/it-asset-360-sub000/internal/config"
	httpmiddleware "github.com/henriquesergio1/it-asset-360-sub000/internal/http/middleware"
	"github.com/henriquesergio1/it-asset-360-sub000/internal/inventory"
	"github.com/henriquesergio1/it-asset-360-sub000/internal/storage"
)

// Deps reúne as dependências do roteador. Redis e Registry são opcionais.
type Deps struct {
	Config    *config.Config
	Service   *inventory.Service
	Storage   storage.Uploader
	JWT       *auth.JWTManager
	Operators *auth.Directory
	Redis     *redis.Client
	Registry  *prometheus.Registry
}

type Handler struct {
	service     *inventory.Service
	storage     storage.Uploader
	jwt         *auth.JWTManager
	operators   *auth.Directory
	redis       *redis.Client
	presignTTL  time.Duration
	uploadMax   int64
	authLimiter *httpmiddleware.RateLimiter
	apiLimiter  *httpmiddleware.RateLimiter
}

// NewRouter devolve roteador configurado.
func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	uploader := deps.Storage
	if uploader == nil {
		uploader = storage.NoopUploader{}
	}

	h := &Handler{
		service:     deps.Service,
		storage:     uploader,
		jwt:         deps.JWT,
		operators:   deps.Operators,
		redis:       deps.Redis,
		presignTTL:  cfg.Storage.PresignTTL,
		uploadMax:   cfg.UploadMaxBytes,
		authLimiter: httpmiddleware.NewRateLimiter(cfg.RateLimitAuth.RequestsPerSecond, cfg.RateLimitAuth.Burst),
		apiLimiter:  httpmiddleware.NewRateLimiter(cfg.RateLimitAPI.RequestsPerSecond, cfg.RateLimitAPI.Burst),
	}

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	if deps.Registry != nil {
		r.Use(httpmiddleware.NewHTTPMetrics(deps.Registry).Handler)
	}
	r.Use(httpmiddleware.Logging)
	r.Use(httpmiddleware.Recover)
	r.Use(httpmiddleware.CORS(cfg.AllowOrigins))

	r.Get("/health", h.Health)
	r.Get("/ready", h.Ready)
	if deps.Registry != nil {
		r.Handle("/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
	}

	r.With(httpmiddleware.IPRateLimit(h.authLimiter)).Post("/auth/login", h.Login)

	r.Group(func(private chi.Router) {
		private.Use(httpmiddleware.Auth(h.jwt))
		private.Use(httpmiddleware.OperatorRateLimit(h.apiLimiter))

		private.Get("/me", h.Me)
		private.Get("/lookups", h.Lookups)

		private.Route("/devices", func(d chi.Router) {
			d.Get("/", h.ListDevices)
			d.Post("/", h.CreateDevice)
			d.Route("/{id}", func(one chi.Router) {
				one.Get("/", h.GetDevice)
				one.Put("/", h.UpdateDevice)
				one.Post("/checkout", h.checkout(inventory.AssetDevice))
				one.Post("/checkin", h.checkin(inventory.AssetDevice))
				one.Post("/retire", h.RetireDevice)
				one.Post("/restore", h.RestoreDevice)
				one.Post("/maintenance", h.ToggleMaintenance)
				one.Put("/sim", h.SetLinkedSim)
				one.Post("/invoice", h.UploadInvoice)
				one.Get("/invoice", h.GetInvoice)
				one.Get("/pendencies", h.pendencies(inventory.AssetDevice))
				one.Post("/pendencies/resolve", h.resolvePendency(inventory.AssetDevice))
				one.Get("/history", h.History)
			})
		})

		private.Route("/sims", func(s chi.Router) {
			s.Get("/", h.ListSims)
			s.Post("/", h.CreateSim)
			s.Route("/{id}", func(one chi.Router) {
				one.Get("/", h.GetSim)
				one.Put("/", h.UpdateSim)
				one.Delete("/", h.DeleteSim)
				one.Post("/checkout", h.checkout(inventory.AssetSimCard))
				one.Post("/checkin", h.checkin(inventory.AssetSimCard))
				one.Get("/pendencies", h.pendencies(inventory.AssetSimCard))
				one.Post("/pendencies/resolve", h.resolvePendency(inventory.AssetSimCard))
				one.Get("/history", h.History)
			})
		})

		private.Route("/users", func(u chi.Router) {
			u.Get("/", h.ListUsers)
			u.Post("/", h.CreateUser)
			u.Route("/{id}", func(one chi.Router) {
				one.Get("/", h.GetUser)
				one.Put("/", h.UpdateUser)
				one.Post("/active", h.ToggleUserActive)
				one.Get("/terms", h.ListUserTerms)
				one.Get("/history", h.History)
			})
		})

		private.Route("/terms/{id}", func(t chi.Router) {
			t.Get("/", h.GetTerm)
			t.Post("/file", h.UploadTermFile)
			t.Get("/file", h.GetTermFile)
		})

		private.Route("/accounts", func(a chi.Router) {
			a.Get("/", h.ListAccounts)
			a.Post("/", h.CreateAccount)
			a.Get("/{id}", h.GetAccount)
			a.Put("/{id}", h.UpdateAccount)
			a.Delete("/{id}", h.DeleteAccount)
		})

		private.Route("/catalog/{kind}", func(c chi.Router) {
			c.Get("/", h.ListCatalog)
			c.Post("/", h.CreateCatalogItem)
			c.Get("/{id}", h.GetCatalogItem)
			c.Put("/{id}", h.UpdateCatalogItem)
			c.Delete("/{id}", h.DeleteCatalogItem)
		})

		private.Route("/logs", func(l chi.Router) {
			l.Get("/", h.ListLogs)
			l.Delete("/", h.ClearLogs)
			l.Get("/{id}", h.GetLog)
		})
	})

	return r
}

// Health responde status simples.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Ready valida conexões com o armazenamento e com o Redis, quando configurado.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	storeErr := h.service.Ping(ctx)
	var redisErr error
	if h.redis != nil {
		redisErr = h.redis.Ping(ctx).Err()
	}

	if storeErr != nil || redisErr != nil {
		WriteError(w, http.StatusServiceUnavailable, "INTERNAL", "dependências indisponíveis", map[string]any{
			"store": errorString(storeErr),
			"redis": errorString(redisErr),
		})
		return
	}

	WriteJSON(w, http.StatusOK, map[string]bool{"ready": true})
}

func errorString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

func actorFrom(r *http.Request) inventory.Actor {
	return inventory.Actor{Name: httpmiddleware.GetOperator(r.Context())}
}
