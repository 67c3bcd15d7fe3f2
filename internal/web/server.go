// Package web serves the public portfolio and the admin media manager.
package web

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/handlers"
	"github.com/gorilla/sessions"

	"github.com/Zachkp/design-portfolio/internal/auth"
	"github.com/Zachkp/design-portfolio/internal/catalog"
	"github.com/Zachkp/design-portfolio/internal/contact"
	"github.com/Zachkp/design-portfolio/internal/media"
	"github.com/Zachkp/design-portfolio/internal/storage"
	"github.com/Zachkp/design-portfolio/internal/visits"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

const eventsPath = "/session/events"

type Deps struct {
	Media   *media.Service
	Auth    *auth.Service
	Catalog *catalog.Catalog
	Mailer  contact.Mailer
	// Local is set when objects are kept on disk and served by this process.
	Local *storage.Local
	// Visits is nil when page views are not recorded.
	Visits *visits.Tracker
	Log    *slog.Logger

	SessionKey   []byte
	SecureCookie bool
	AllowSignUp  bool
}

type Server struct {
	engine   *gin.Engine
	media    *media.Service
	auth     *auth.Service
	catalog  *catalog.Catalog
	mailer   contact.Mailer
	sessions sessions.Store
	visits   *visits.Tracker
	hasher   *visits.Hasher
	log      *slog.Logger

	allowSignUp bool
	// keepalive paces event stream pings and the session checks riding on them.
	keepalive time.Duration
}

func New(d Deps) (*Server, error) {
	tmpl, err := template.New("").Funcs(templateFuncs).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	static, err := fs.Sub(staticFS, "static")
	if err != nil {
		return nil, err
	}
	var hasher *visits.Hasher
	if d.Visits != nil {
		hasher = d.Visits.Hasher()
	} else if hasher, err = visits.NewHasher(); err != nil {
		return nil, err
	}

	store := sessions.NewCookieStore(d.SessionKey)
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(d.Auth.TTL().Seconds()),
		HttpOnly: true,
		Secure:   d.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	}

	s := &Server{
		engine:      gin.New(),
		media:       d.Media,
		auth:        d.Auth,
		catalog:     d.Catalog,
		mailer:      d.Mailer,
		sessions:    store,
		visits:      d.Visits,
		hasher:      hasher,
		log:         d.Log,
		allowSignUp: d.AllowSignUp,
		keepalive:   30 * time.Second,
	}

	r := s.engine
	r.Use(gin.Recovery(), requestLogger(d.Log), s.trackVisits(), s.loadSession())
	r.SetHTMLTemplate(tmpl)
	r.MaxMultipartMemory = 8 << 20

	r.StaticFS("/static", http.FS(static))
	if d.Local != nil {
		r.Static(d.Local.RoutePrefix(), d.Local.Dir())
	}

	r.GET("/", s.index)
	r.GET("/projects", s.projects)
	r.GET("/api/media", s.listMedia)
	r.POST("/contact", s.contact)
	r.GET("/health", s.health)
	r.GET(eventsPath, s.sessionEvents)

	r.GET("/admin-login", s.loginPage)
	r.POST("/admin-login", s.login)
	r.POST("/admin-logout", s.logout)

	admin := r.Group("/admin", s.requireSession())
	admin.GET("", s.adminPage)
	admin.POST("/media", s.uploadMedia)
	admin.POST("/media/:id/delete", s.deleteMedia)
	admin.POST("/media/:id/order", s.reorderMedia)
	admin.GET("/stats", s.visitStats)
	admin.POST("/stats/cleanup", s.cleanupVisits)

	return s, nil
}

// Handler is the engine wrapped with compression and proxy header handling.
func (s *Server) Handler() http.Handler {
	compressed := handlers.CompressHandler(s.engine)
	return handlers.ProxyHeaders(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Event streams must reach the client unbuffered.
		if r.URL.Path == eventsPath {
			s.engine.ServeHTTP(w, r)
			return
		}
		compressed.ServeHTTP(w, r)
	}))
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
