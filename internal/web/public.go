package web

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Zachkp/design-portfolio/internal/catalog"
	"github.com/Zachkp/design-portfolio/internal/contact"
	"github.com/Zachkp/design-portfolio/internal/domain"
)

func parseCategory(q string) (domain.Category, bool) {
	if q == "" {
		return domain.CategoryAll, true
	}
	return domain.ParseCategory(q)
}

func (s *Server) sessionView(c *gin.Context) SessionView {
	sess := currentSession(c)
	aff := catalog.NewAdminAffordance(currentToken(c), sess != nil)
	v := SessionView{State: aff.State()}
	if sess != nil {
		v.Email = sess.Email
	}
	return v
}

func (s *Server) index(c *gin.Context) {
	active, ok := parseCategory(c.Query("category"))
	if !ok {
		active = domain.CategoryAll
	}
	notices := s.notices(c)

	items, err := s.media.List(c.Request.Context(), "")
	if err != nil {
		s.log.Error("failed to load media", "error", err)
		notices = append(notices, errorNotice("Couldn't load project media. "+domain.UserMessage(err)))
	}
	cards := catalog.BuildCards(s.catalog.Projects(), items, active)
	c.HTML(http.StatusOK, "index.html", newIndexPage(newGrid(cards, active), s.sessionView(c), notices))
}

// projects renders the grid for one category tab. On failure nothing is swapped so
// the grid already on the page stays as it was.
func (s *Server) projects(c *gin.Context) {
	active, ok := parseCategory(c.Query("category"))
	if !ok {
		s.toast(c, errorNotice("Unknown category."))
		c.Status(http.StatusBadRequest)
		return
	}
	items, err := s.media.List(c.Request.Context(), "")
	if err != nil {
		s.log.Error("failed to load media", "error", err)
		s.toast(c, errorNotice(domain.UserMessage(err)))
		c.Status(http.StatusBadGateway)
		return
	}
	cards := catalog.BuildCards(s.catalog.Projects(), items, active)
	c.HTML(http.StatusOK, "projects-grid", newGrid(cards, active))
}

// toast asks htmx to show n without swapping the response in.
func (s *Server) toast(c *gin.Context, n Notice) {
	payload, err := json.Marshal(map[string]Notice{"showToast": n})
	if err != nil {
		s.log.Error("failed to encode toast", "error", err)
		return
	}
	c.Header("HX-Reswap", "none")
	c.Header("HX-Trigger", string(payload))
}

type result struct {
	Ok     bool   `json:"ok"`
	Err    string `json:"error,omitempty"`
	Result any    `json:"result,omitempty"`
}

func (s *Server) listMedia(c *gin.Context) {
	items, err := s.media.List(c.Request.Context(), c.Query("filter"))
	if err != nil {
		s.log.Error("failed to list media", "error", err)
		c.JSON(http.StatusBadGateway, result{Ok: false, Err: domain.UserMessage(err)})
		return
	}
	c.JSON(http.StatusOK, result{Ok: true, Result: items})
}

func (s *Server) contact(c *gin.Context) {
	var msg contact.Message
	if err := c.ShouldBind(&msg); err != nil {
		c.HTML(http.StatusOK, "contact-error.html", gin.H{"error": "Sorry, there was an error sending your message. Please try again later."})
		return
	}
	if err := msg.Validate(); err != nil {
		c.HTML(http.StatusOK, "contact-error.html", gin.H{"error": domain.UserMessage(err)})
		return
	}
	if err := s.mailer.Send(c.Request.Context(), msg); err != nil {
		c.HTML(http.StatusOK, "contact-error.html", gin.H{
			"error": "Sorry, there was an error sending your message. Please try again later.",
		})
		return
	}
	c.HTML(http.StatusOK, "contact-success.html", gin.H{
		"success": "Thank you for your message! I'll get back to you soon.",
	})
}

// sessionEvents streams the viewer's admin state until the client goes away. The token
// is checked on every keepalive so a session that runs out while the page sits idle is
// reported as expired.
func (s *Server) sessionEvents(c *gin.Context) {
	token := currentToken(c)
	aff := catalog.NewAdminAffordance(token, currentSession(c) != nil)
	changes := make(chan catalog.AdminState, 4)
	stop := aff.Watch(s.auth, func(st catalog.AdminState) {
		select {
		case changes <- st:
		default:
		}
	})
	defer stop()

	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")
	c.SSEvent("state", aff.State().String())
	c.Writer.Flush()

	keepalive := time.NewTicker(s.keepalive)
	defer keepalive.Stop()
	ctx := c.Request.Context()
	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case st := <-changes:
			c.SSEvent("state", st.String())
			return true
		case <-keepalive.C:
			if aff.State() == catalog.Authenticated {
				// An expired token is published to the watcher above.
				if _, err := s.auth.Check(ctx, token); err != nil && !domain.IsNotFound(err) {
					s.log.Warn("session check failed", "error", err)
				}
			}
			c.SSEvent("ping", "")
			return true
		}
	})
}
