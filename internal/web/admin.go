package web

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/gin-gonic/gin"

	"github.com/Zachkp/design-portfolio/internal/domain"
	"github.com/Zachkp/design-portfolio/internal/media"
)

func (s *Server) loginPage(c *gin.Context) {
	if currentSession(c) != nil {
		c.Redirect(http.StatusFound, "/admin")
		return
	}
	c.HTML(http.StatusOK, "admin-login.html", loginPage{
		SignUp:      s.allowSignUp && c.Query("mode") == "signup",
		AllowSignUp: s.allowSignUp,
	})
}

func (s *Server) login(c *gin.Context) {
	email := strings.TrimSpace(c.PostForm("email"))
	password := c.PostForm("password")
	ctx := c.Request.Context()

	if c.PostForm("mode") == "signup" {
		page := loginPage{SignUp: true, AllowSignUp: s.allowSignUp, Email: email}
		if _, err := s.auth.SignUp(ctx, email, password); err != nil {
			page.Error = domain.UserMessage(err)
			c.HTML(statusFor(err), "admin-login.html", page)
			return
		}
		s.log.Info("admin account created", "client", s.hashIP(c.ClientIP()))
		c.HTML(http.StatusOK, "admin-login.html", loginPage{
			AllowSignUp: s.allowSignUp,
			Email:       email,
			Success:     "Account created! You can now sign in.",
		})
		return
	}

	sess, err := s.auth.SignIn(ctx, email, password)
	if err != nil {
		s.log.Warn("failed admin login attempt", "client", s.hashIP(c.ClientIP()))
		c.HTML(statusFor(err), "admin-login.html", loginPage{
			AllowSignUp: s.allowSignUp,
			Email:       email,
			Error:       domain.UserMessage(err),
		})
		return
	}

	cookie := s.cookieSession(c)
	cookie.Values[tokenKey] = sess.Token
	cookie.AddFlash(successNotice("Logged in successfully!"))
	s.saveCookie(c, cookie)
	s.log.Info("admin login successful", "client", s.hashIP(c.ClientIP()))
	c.Redirect(http.StatusSeeOther, "/admin")
}

func (s *Server) logout(c *gin.Context) {
	next := "/"
	if c.PostForm("next") == "/admin-login" {
		next = "/admin-login"
	}
	cookie := s.cookieSession(c)
	if err := s.auth.SignOut(c.Request.Context(), currentToken(c)); err != nil {
		s.log.Error("sign out failed", "error", err)
		cookie.AddFlash(errorNotice("Logout failed: " + domain.UserMessage(err)))
		s.saveCookie(c, cookie)
		c.Redirect(http.StatusSeeOther, next)
		return
	}
	delete(cookie.Values, tokenKey)
	cookie.AddFlash(successNotice("Logged out successfully!"))
	s.saveCookie(c, cookie)
	s.log.Info("admin logout", "client", s.hashIP(c.ClientIP()))
	c.Redirect(http.StatusSeeOther, next)
}

func statusFor(err error) int {
	var verr *domain.ValidationError
	var gerr *domain.GatewayError
	switch {
	case errors.As(err, &verr):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrSignUpDisabled):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict
	case errors.As(err, &gerr):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func (s *Server) adminPage(c *gin.Context) {
	selected, ok := s.catalog.Lookup(c.Query("project"))
	if !ok {
		selected = s.catalog.First()
	}
	page := adminPage{
		Email:    currentSession(c).Email,
		Projects: s.catalog.Projects(),
		Selected: selected,
		Accept:   media.AcceptAttr,
		MaxSize:  humanize.IBytes(uint64(media.MaxFileSize)),
		Notices:  s.notices(c),
	}
	items, err := s.media.List(c.Request.Context(), selected.Slug)
	if err != nil {
		s.log.Error("failed to load media", "project", selected.Slug, "error", err)
		page.Notices = append(page.Notices, errorNotice("Couldn't load media. "+domain.UserMessage(err)))
	}
	page.Items = items
	if s.visits != nil {
		stats, err := s.visits.Stats(c.Request.Context())
		if err != nil {
			s.log.Error("failed to load visitor stats", "error", err)
		}
		page.Stats = stats
	}
	c.HTML(http.StatusOK, "admin.html", page)
}

func (s *Server) visitStats(c *gin.Context) {
	if s.visits == nil {
		c.JSON(http.StatusNotFound, result{Ok: false, Err: "Visitor tracking is disabled."})
		return
	}
	stats, err := s.visits.Stats(c.Request.Context())
	if err != nil {
		s.log.Error("failed to load visitor stats", "error", err)
		c.JSON(http.StatusBadGateway, result{Ok: false, Err: domain.UserMessage(err)})
		return
	}
	c.JSON(http.StatusOK, result{Ok: true, Result: stats})
}

// cleanupVisits runs the retention cleanup now instead of waiting for the daily pass.
func (s *Server) cleanupVisits(c *gin.Context) {
	if s.visits == nil {
		c.JSON(http.StatusNotFound, result{Ok: false, Err: "Visitor tracking is disabled."})
		return
	}
	removed, err := s.visits.Cleanup(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadGateway, result{Ok: false, Err: domain.UserMessage(err)})
		return
	}
	s.log.Info("visitor cleanup requested by admin", "removed", removed, "client", s.hashIP(c.ClientIP()))
	c.JSON(http.StatusOK, result{Ok: true, Result: gin.H{"removed": removed}})
}

func adminURL(project string) string {
	return "/admin?project=" + url.QueryEscape(project)
}

// uploadBodyLimit leaves room for the other form fields next to a maximum size file.
const uploadBodyLimit = media.MaxFileSize + 1<<20

func (s *Server) uploadMedia(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, uploadBodyLimit)
	fh, err := c.FormFile("file")
	project := c.PostForm("project")
	back := adminURL(project)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) || strings.Contains(err.Error(), "request body too large") {
			s.flash(c, errorNotice(domain.UserMessage(media.TooLargeError())))
		} else {
			s.flash(c, errorNotice("Please choose a file to upload."))
		}
		c.Redirect(http.StatusSeeOther, back)
		return
	}
	f, err := fh.Open()
	if err != nil {
		s.flash(c, errorNotice("The selected file could not be read."))
		c.Redirect(http.StatusSeeOther, back)
		return
	}
	defer f.Close()

	item, err := s.media.Upload(c.Request.Context(), media.UploadRequest{
		File:        f,
		FileName:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Project:     project,
		Title:       c.PostForm("title"),
		Description: c.PostForm("description"),
	})
	if err != nil {
		s.log.Warn("upload failed", "project", project, "error", err)
		s.flash(c, failure("Upload failed: ", err))
		c.Redirect(http.StatusSeeOther, back)
		return
	}
	s.flash(c, successNotice("File uploaded successfully!"))
	c.Redirect(http.StatusSeeOther, adminURL(item.ProjectSlug))
}

func (s *Server) deleteMedia(c *gin.Context) {
	back := adminURL(c.PostForm("project"))
	if err := s.media.Delete(c.Request.Context(), c.Param("id"), c.PostForm("file_url")); err != nil {
		s.log.Warn("delete failed", "id", c.Param("id"), "error", err)
		s.flash(c, failure("Delete failed: ", err))
		c.Redirect(http.StatusSeeOther, back)
		return
	}
	s.flash(c, successNotice("File deleted successfully!"))
	c.Redirect(http.StatusSeeOther, back)
}

func (s *Server) reorderMedia(c *gin.Context) {
	back := adminURL(c.PostForm("project"))
	order, err := strconv.Atoi(c.PostForm("order"))
	if err != nil {
		s.flash(c, errorNotice("Display order must be a whole number."))
		c.Redirect(http.StatusSeeOther, back)
		return
	}
	if err := s.media.Reorder(c.Request.Context(), c.Param("id"), order); err != nil {
		s.flash(c, failure("Reorder failed: ", err))
		c.Redirect(http.StatusSeeOther, back)
		return
	}
	s.flash(c, successNotice("Display order updated."))
	c.Redirect(http.StatusSeeOther, back)
}

// failure prefixes gateway errors; validation messages are shown as they are.
func failure(prefix string, err error) Notice {
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		return errorNotice(verr.Message)
	}
	return errorNotice(prefix + domain.UserMessage(err))
}
