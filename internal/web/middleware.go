package web

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Zachkp/design-portfolio/internal/domain"
)

func requestLogger(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		if c.Request.URL.Path == "/health" {
			return
		}
		log.Info("request completed",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
}

const (
	ctxToken   = "token"
	ctxSession = "session"
)

// loadSession resolves the session cookie to a live auth session, if any.
func (s *Server) loadSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		if isAsset(c.Request.URL.Path) {
			c.Next()
			return
		}
		cookie := s.cookieSession(c)
		token, _ := cookie.Values[tokenKey].(string)
		if token != "" {
			sess, err := s.auth.Session(c.Request.Context(), token)
			switch {
			case err == nil:
				c.Set(ctxSession, sess)
			case domain.IsNotFound(err):
				delete(cookie.Values, tokenKey)
				s.saveCookie(c, cookie)
			default:
				s.log.Error("session lookup failed", "error", err)
			}
		}
		c.Set(ctxToken, token)
		c.Next()
	}
}

func isAsset(path string) bool {
	return strings.HasPrefix(path, "/static/") || strings.HasPrefix(path, "/storage/")
}

func currentSession(c *gin.Context) *domain.Session {
	if v, ok := c.Get(ctxSession); ok {
		return v.(*domain.Session)
	}
	return nil
}

func currentToken(c *gin.Context) string {
	return c.GetString(ctxToken)
}

// requireSession sends visitors without a session to the login page.
func (s *Server) requireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		if currentSession(c) != nil {
			c.Next()
			return
		}
		if c.GetHeader("HX-Request") == "true" {
			c.Header("HX-Redirect", "/admin-login")
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		c.Redirect(http.StatusFound, "/admin-login")
		c.Abort()
	}
}

// hashIP keeps client addresses out of the logs.
func (s *Server) hashIP(ip string) string {
	return s.hasher.Hash(ip)
}

var untrackedPrefixes = []string{"/static/", "/storage/", "/admin", "/session/", "/api/", "/health", "/favicon"}

// trackVisits records successful full-page views. Fragments, assets, the admin area and
// visitors sending Do Not Track are skipped.
func (s *Server) trackVisits() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		if s.visits == nil || !isPageView(c) {
			return
		}
		s.visits.Track(c.ClientIP(), c.GetHeader("User-Agent"), c.Request.URL.Path)
	}
}

func isPageView(c *gin.Context) bool {
	if c.Request.Method != http.MethodGet || c.Writer.Status() >= http.StatusBadRequest {
		return false
	}
	if c.GetHeader("DNT") == "1" || c.GetHeader("HX-Request") == "true" {
		return false
	}
	path := c.Request.URL.Path
	for _, prefix := range untrackedPrefixes {
		if strings.HasPrefix(path, prefix) {
			return false
		}
	}
	return true
}
