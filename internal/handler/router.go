package handler

import (
	"embed"
	"html/template"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"

	"examportal/internal/auth"
	"examportal/internal/httpmiddleware"
)

//go:embed templates/*.html
var templateFS embed.FS

// NewRouter wires middleware and routes. limiter guards the form posts that
// write or authenticate.
func NewRouter(h *Handler, limiter httpmiddleware.Limiter) *gin.Engine {
	r := gin.New()
	r.MaxMultipartMemory = 8 << 20
	r.SetHTMLTemplate(template.Must(template.ParseFS(templateFS, "templates/*.html")))

	r.Use(gin.Recovery())
	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		SkipPaths: []string{"/healthz", "/metrics"},
	}))
	r.Use(httpmiddleware.RequestID())
	r.Use(cors.New(corsConfig(h.cfg.CORSOrigins)))
	r.Use(httpmiddleware.SecurityHeaders())

	sessionStore := cookie.NewStore([]byte(h.cfg.SessionSecret))
	sessionStore.Options(sessions.Options{
		Path:     "/",
		MaxAge:   int(h.cfg.SessionTTL / time.Second),
		HttpOnly: true,
		Secure:   h.cfg.Production(),
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions(h.cfg.SessionName, sessionStore))

	rl := httpmiddleware.RateLimit(limiter)

	r.GET("/healthz", h.Healthz)
	r.GET("/metrics", gin.WrapH(h.metrics.Handler()))
	r.Static("/static", h.cfg.StaticDir)

	r.GET("/", h.Index)
	r.POST("/register", rl, h.Register)
	r.GET("/result", h.ResultPage)
	r.POST("/result", h.LookupResult)
	r.GET("/login", h.LoginPage)
	r.POST("/login", rl, h.Login)
	r.GET("/logout", h.Logout)

	admin := r.Group("/", auth.RequireAdmin(h.cfg.JWTSigningKey, h.cfg.JWTIssuer))
	admin.GET("/admin", h.Dashboard)
	admin.POST("/update_exam", h.UpdateExam)
	admin.POST("/update_logo", h.UpdateLogo)
	admin.POST("/update_result/:id", h.UpdateResult)
	admin.GET("/delete_student/:id", h.DeleteStudent)
	admin.POST("/change_password", h.ChangePassword)
	admin.GET("/download", h.Download)

	return r
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders:    []string{"Content-Disposition", httpmiddleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           24 * time.Hour,
	}
	for _, o := range origins {
		if o == "*" {
			cfg.AllowAllOrigins = true
			return cfg
		}
	}
	cfg.AllowOrigins = origins
	return cfg
}
