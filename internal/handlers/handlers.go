package handlers

import (
	"context"
	"net/http"

	"inkwell/internal/engine"
	"inkwell/internal/middleware"
	"inkwell/internal/utils"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Pinger is the store's liveness check used by /health.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Options are the HTTP-level settings taken from config.
type Options struct {
	AllowedOrigins []string
	RateLimitRPM   int
	MetricsEnabled bool
}

// Server holds all server dependencies
type Server struct {
	Engine   *engine.Engine
	DB       Pinger
	Metrics  *utils.MetricsCollector
	Gatherer prometheus.Gatherer
	Options  Options
}

// NewServer creates a new Server instance with the given components
func NewServer(eng *engine.Engine, db Pinger, metrics *utils.MetricsCollector, gatherer prometheus.Gatherer, opts Options) *Server {
	return &Server{
		Engine:   eng,
		DB:       db,
		Metrics:  metrics,
		Gatherer: gatherer,
		Options:  opts,
	}
}

// Routes builds the chi router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.RequestID)
	r.Use(middleware.RequestContext)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORSMiddleware(middleware.DefaultCORSConfig(s.Options.AllowedOrigins)))
	r.Use(middleware.AccessLog(s.Metrics))

	r.Get("/health", s.HandleHealth())
	if s.Options.MetricsEnabled && s.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.RateLimit(s.Options.RateLimitRPM))
		r.Use(middleware.OptionalAuth)

		// Public reads; the viewer is used when present.
		r.Get("/feed", s.HandleFeed())
		r.Get("/tags", s.HandleListTags())
		r.Get("/articles", s.HandleListArticles())
		r.Get("/articles/{slug}", s.HandleGetArticle())
		r.Get("/articles/{slug}/comments", s.HandleCommentThread())
		r.Get("/users/{slug}", s.HandleUserProfile())

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)

			r.Post("/articles", s.HandleCreateArticle())
			r.Get("/articles/drafts", s.HandleDrafts())
			r.Patch("/articles/{slug}", s.HandleUpdateArticle())
			r.Delete("/articles/{slug}", s.HandleDeleteArticle())
			r.Post("/articles/{slug}/like", s.HandleLike())
			r.Delete("/articles/{slug}/unlike", s.HandleUnlike())
			r.Post("/articles/{slug}/save", s.HandleSave())
			r.Delete("/articles/{slug}/unsave", s.HandleUnsave())
			r.Post("/articles/{slug}/comments", s.HandleCreateComment())

			r.Delete("/comments/{id}", s.HandleDeleteComment())
			r.Post("/comments/{id}/vote", s.HandleVote())
			r.Delete("/comments/{id}/vote", s.HandleUnvote())

			r.Post("/tags/{slug}/follow", s.HandleFollowTag())
			r.Delete("/tags/{slug}/unfollow", s.HandleUnfollowTag())

			r.Get("/users/me/saved", s.HandleSavedArticles())
			r.Post("/users/{slug}/follow", s.HandleFollowUser())
			r.Delete("/users/{slug}/unfollow", s.HandleUnfollowUser())

			r.Post("/reports", s.HandleCreateReport())
			r.Get("/reports", s.HandleListReports())
			r.Get("/reports/{id}", s.HandleGetReport())
			r.Post("/reports/{id}/resolve", s.HandleResolveReport())

			r.Get("/notifications", s.HandleNotifications())
			r.Post("/notifications/mark-all", s.HandleMarkAllNotifications())
			r.Post("/notifications/{id}/mark", s.HandleMarkNotification())
		})
	})

	return r
}
