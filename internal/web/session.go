package web

import (
	"encoding/gob"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/sessions"
)

const (
	cookieName = "portfolio_session"
	tokenKey   = "token"
)

// Notice is a transient notification shown once after a redirect.
type Notice struct {
	Kind string
	Text string
}

func init() {
	gob.Register(Notice{})
}

func successNotice(text string) Notice { return Notice{Kind: "success", Text: text} }
func errorNotice(text string) Notice   { return Notice{Kind: "error", Text: text} }

// cookieSession never fails: an unreadable cookie yields a fresh session.
func (s *Server) cookieSession(c *gin.Context) *sessions.Session {
	sess, err := s.sessions.Get(c.Request, cookieName)
	if err != nil {
		s.log.Debug("discarding unreadable session cookie", "error", err)
	}
	return sess
}

func (s *Server) saveCookie(c *gin.Context, sess *sessions.Session) {
	if err := sess.Save(c.Request, c.Writer); err != nil {
		s.log.Error("failed to save session cookie", "error", err)
	}
}

func (s *Server) flash(c *gin.Context, n Notice) {
	sess := s.cookieSession(c)
	sess.AddFlash(n)
	s.saveCookie(c, sess)
}

// notices pops the pending flashes.
func (s *Server) notices(c *gin.Context) []Notice {
	sess := s.cookieSession(c)
	flashes := sess.Flashes()
	if len(flashes) == 0 {
		return nil
	}
	s.saveCookie(c, sess)
	out := make([]Notice, 0, len(flashes))
	for _, f := range flashes {
		if n, ok := f.(Notice); ok {
			out = append(out, n)
		}
	}
	return out
}
