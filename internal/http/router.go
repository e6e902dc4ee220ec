package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/toryoki/jobhub/internal/auth"
	"github.com/toryoki/jobhub/internal/cache"
	"github.com/toryoki/jobhub/internal/config"
	"github.com/toryoki/jobhub/internal/http/handlers"
	"github.com/toryoki/jobhub/internal/http/middlewares"
	"github.com/toryoki/jobhub/internal/mail"
	"github.com/toryoki/jobhub/internal/observability"
	"github.com/toryoki/jobhub/internal/repo/postgres"
)

const maxBodySize = 10 << 10 // matches the upstream proxy limit

// Deps carries everything the router wires together.
type Deps struct {
	Log       *slog.Logger
	Cfg       config.Config
	Pool      *pgxpool.Pool
	Prom      *observability.Prom
	Metrics   http.Handler
	Mailer    mail.Mailer
	MailQueue handlers.MailEnqueuer
}

// NewRouter assembles the full HTTP surface.
func NewRouter(d Deps) *gin.Engine {
	if d.Cfg.IsProd() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(
		gin.Recovery(),
		RequestID(),
		RequestLogger(d.Log),
		otelgin.Middleware("jobhub-api"),
		d.Prom.GinHandleMiddleware(),
		middlewares.SecurityHeaders(),
		middlewares.CORS(d.Cfg.CORSAllowedOrigins),
		middlewares.RequireJSON(),
		middlewares.MaxBodyBytes(maxBodySize),
	)

	users := postgres.NewUsersRepo(d.Pool, d.Prom)
	postings := postgres.NewPostingsRepo(d.Pool, d.Prom)

	tokens := auth.NewManager(d.Cfg.JWTSecret, d.Cfg.JWTExpiry())
	guard := middlewares.NewAuthMiddleware(tokens, users)

	authHandler := handlers.NewAuthHandler(users, tokens, d.Mailer, d.MailQueue, d.Cfg, d.Log)
	usersHandler := handlers.NewUsersHandler(users, d.Cfg)
	postingsHandler := handlers.NewPostingsHandler(postings, cache.New(5*time.Second), d.Cfg)
	healthHandler := handlers.NewHealthHandler(func(ctx context.Context) error {
		return d.Pool.Ping(ctx)
	})

	r.GET("/healthz", healthHandler.Healthz)
	r.GET("/readyz", healthHandler.Readyz)
	if d.Metrics != nil {
		r.GET("/metrics", gin.WrapH(d.Metrics))
	}

	limiter := middlewares.NewRateLimiter(100, time.Hour)

	userRoutes := r.Group("/users", limiter.LimitByIP())
	{
		userRoutes.POST("/signup", authHandler.SignUp)
		userRoutes.POST("/login", authHandler.Login)
		userRoutes.POST("/forgotPassword", authHandler.ForgotPassword)
		userRoutes.POST("/resetPassword/:token", authHandler.ResetPassword)

		protected := userRoutes.Group("", guard.Protect())
		{
			protected.POST("/updatePassword", authHandler.UpdatePassword)
			protected.GET("/me", usersHandler.GetMe)
			protected.PATCH("/updateMe", usersHandler.UpdateMe)
			protected.DELETE("/deleteMe", usersHandler.DeleteMe)
		}
	}

	postingRoutes := r.Group("/postings", guard.Protect())
	{
		postingRoutes.GET("", postingsHandler.List)
		postingRoutes.POST("",
			middlewares.RestrictTo(auth.RoleAdmin, auth.RoleHRLead, auth.RoleHR),
			postingsHandler.Create,
		)
	}

	r.NoRoute(func(c *gin.Context) {
		handlers.RespondNotFound(c, "Can't find "+c.Request.URL.Path+" on this server!")
	})

	return r
}
