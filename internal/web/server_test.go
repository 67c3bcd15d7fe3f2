package web

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/Zachkp/design-portfolio/internal/auth"
	"github.com/Zachkp/design-portfolio/internal/catalog"
	"github.com/Zachkp/design-portfolio/internal/contact"
	"github.com/Zachkp/design-portfolio/internal/domain"
	"github.com/Zachkp/design-portfolio/internal/media"
	"github.com/Zachkp/design-portfolio/internal/repository/sqlite"
	"github.com/Zachkp/design-portfolio/internal/storage"
	"github.com/Zachkp/design-portfolio/internal/visits"
)

const (
	adminEmail    = "admin@example.com"
	adminPassword = "correct-horse"
)

var pngHeader = "\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00"

func init() {
	gin.SetMode(gin.TestMode)
}

type envOptions struct {
	allowSignUp bool
	trackVisits bool
	wrapRepo    func(domain.MediaRepository) domain.MediaRepository
	sessionTTL  time.Duration
	keepalive   time.Duration
}

type testEnv struct {
	ts     *httptest.Server
	client *http.Client
	auth   *auth.Service
	media  *media.Service
	visits *visits.Tracker
}

func newTestEnv(t *testing.T, opts envOptions) *testEnv {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	db, err := sqlite.Open("file:" + filepath.Join(t.TempDir(), "web.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	var repo domain.MediaRepository = sqlite.NewMediaRepository(db)
	if opts.wrapRepo != nil {
		repo = opts.wrapRepo(repo)
	}
	local, err := storage.NewLocal(t.TempDir(), "", "project-media")
	require.NoError(t, err)

	cat := catalog.Default()
	ttl := time.Hour
	if opts.sessionTTL > 0 {
		ttl = opts.sessionTTL
	}
	authSvc := auth.NewService(
		sqlite.NewUserRepository(db),
		auth.NewMemoryTokenStore(ttl),
		auth.NewBroker(),
		auth.Options{AllowSignUp: opts.allowSignUp, BcryptCost: bcrypt.MinCost},
		log,
	)
	_, err = authSvc.Register(context.Background(), adminEmail, adminPassword)
	require.NoError(t, err)
	mediaSvc := media.NewService(repo, local, cat, log)

	var tracker *visits.Tracker
	if opts.trackVisits {
		hasher, err := visits.NewHasher()
		require.NoError(t, err)
		tracker = visits.NewTracker(sqlite.NewVisitRepository(db), hasher, time.Hour, log)
		t.Cleanup(tracker.Wait)
	}

	s, err := New(Deps{
		Media:       mediaSvc,
		Auth:        authSvc,
		Catalog:     cat,
		Mailer:      contact.NewLogMailer(log),
		Local:       local,
		Visits:      tracker,
		Log:         log,
		SessionKey:  []byte(strings.Repeat("k", 32)),
		AllowSignUp: opts.allowSignUp,
	})
	require.NoError(t, err)
	if opts.keepalive > 0 {
		s.keepalive = opts.keepalive
	}

	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	return &testEnv{
		ts:     ts,
		client: &http.Client{Jar: jar, Timeout: 10 * time.Second},
		auth:   authSvc,
		media:  mediaSvc,
		visits: tracker,
	}
}

// noFollow shares the cookie jar but stops at the first response.
func (e *testEnv) noFollow() *http.Client {
	return &http.Client{
		Jar:     e.client.Jar,
		Timeout: e.client.Timeout,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func (e *testEnv) get(t *testing.T, path string) (*http.Response, string) {
	t.Helper()
	resp, err := e.client.Get(e.ts.URL + path)
	require.NoError(t, err)
	return resp, readBody(t, resp)
}

func (e *testEnv) postForm(t *testing.T, path string, form url.Values) (*http.Response, string) {
	t.Helper()
	resp, err := e.client.PostForm(e.ts.URL+path, form)
	require.NoError(t, err)
	return resp, readBody(t, resp)
}

func (e *testEnv) login(t *testing.T) {
	t.Helper()
	resp, body := e.postForm(t, "/admin-login", url.Values{
		"email":    {adminEmail},
		"password": {adminPassword},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, body, "MEDIA MANAGER")
}

func (e *testEnv) upload(t *testing.T, project, title, fileName, content string) (*http.Response, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	require.NoError(t, w.WriteField("project", project))
	require.NoError(t, w.WriteField("title", title))
	fw, err := w.CreateFormFile("file", fileName)
	require.NoError(t, err)
	_, err = fw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	resp, err := e.client.Post(e.ts.URL+"/admin/media", w.FormDataContentType(), &buf)
	require.NoError(t, err)
	return resp, readBody(t, resp)
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}

type failingRepo struct {
	domain.MediaRepository
}

func (failingRepo) List(context.Context, domain.MediaFilter) ([]domain.MediaItem, error) {
	return nil, errors.New("connection refused")
}

func TestIndexRendersEverySection(t *testing.T) {
	env := newTestEnv(t, envOptions{})

	resp, body := env.get(t, "/")

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	for _, want := range []string{
		"CREATIVE DESIGNER",
		"SKILLS",
		"TOOLS",
		"PROJECTS",
		"Brand Identity System",
		"Packaging Design",
		"Send Message",
		"Admin Login",
	} {
		assert.Contains(t, body, want)
	}
	assert.NotContains(t, body, `action="/admin-logout"`)
}

func TestIndexShowsLogoutWhenSignedIn(t *testing.T) {
	env := newTestEnv(t, envOptions{})
	env.login(t)

	_, body := env.get(t, "/")

	assert.Contains(t, body, `action="/admin-logout"`)
	assert.Contains(t, body, `data-state="authenticated"`)
	assert.NotContains(t, body, "Admin Login")
}

func TestProjectsFragmentFiltersByCategory(t *testing.T) {
	env := newTestEnv(t, envOptions{})

	resp, body := env.get(t, "/projects?category=Posters")

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Event Poster Series")
	assert.Contains(t, body, "Concert Posters")
	assert.NotContains(t, body, "Brand Identity System")
	assert.NotContains(t, body, "<html")
}

func TestProjectsUnknownCategoryKeepsGrid(t *testing.T) {
	env := newTestEnv(t, envOptions{})

	resp, _ := env.get(t, "/projects?category=Sculpture")

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "none", resp.Header.Get("HX-Reswap"))
	assert.Contains(t, resp.Header.Get("HX-Trigger"), "showToast")
}

func TestProjectsListFailureRaisesToast(t *testing.T) {
	env := newTestEnv(t, envOptions{wrapRepo: func(r domain.MediaRepository) domain.MediaRepository {
		return failingRepo{r}
	}})

	resp, _ := env.get(t, "/projects?category=All")

	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.Equal(t, "none", resp.Header.Get("HX-Reswap"))

	var trigger map[string]Notice
	require.NoError(t, json.Unmarshal([]byte(resp.Header.Get("HX-Trigger")), &trigger))
	assert.Equal(t, "error", trigger["showToast"].Kind)
	assert.Contains(t, trigger["showToast"].Text, "connection refused")
}

func TestIndexStillRendersWhenListFails(t *testing.T) {
	env := newTestEnv(t, envOptions{wrapRepo: func(r domain.MediaRepository) domain.MediaRepository {
		return failingRepo{r}
	}})

	resp, body := env.get(t, "/")

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "load project media")
	assert.Contains(t, body, "Brand Identity System")
}

func TestListMediaEnvelope(t *testing.T) {
	env := newTestEnv(t, envOptions{})

	resp, body := env.get(t, "/api/media?filter=All")

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var res struct {
		Ok     bool               `json:"ok"`
		Result []domain.MediaItem `json:"result"`
	}
	require.NoError(t, json.Unmarshal([]byte(body), &res))
	assert.True(t, res.Ok)
	assert.Empty(t, res.Result)
}

func TestContactForm(t *testing.T) {
	env := newTestEnv(t, envOptions{})

	_, body := env.postForm(t, "/contact", url.Values{"name": {"Ada"}, "email": {"not-an-email"}, "message": {"Hi"}})
	assert.Contains(t, body, "contact-error")
	assert.Contains(t, body, "Please enter a valid email address.")

	_, body = env.postForm(t, "/contact", url.Values{"name": {"Ada"}, "email": {"ada@example.com"}, "message": {"Hi"}})
	assert.Contains(t, body, "contact-success")
	assert.Contains(t, body, "Thank you for your message!")
}

func TestAdminRequiresSession(t *testing.T) {
	env := newTestEnv(t, envOptions{})
	client := env.noFollow()

	resp, err := client.Get(env.ts.URL + "/admin")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/admin-login", resp.Header.Get("Location"))

	req, err := http.NewRequest(http.MethodGet, env.ts.URL+"/admin", nil)
	require.NoError(t, err)
	req.Header.Set("HX-Request", "true")
	resp, err = client.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "/admin-login", resp.Header.Get("HX-Redirect"))
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	env := newTestEnv(t, envOptions{})

	resp, body := env.postForm(t, "/admin-login", url.Values{
		"email":    {adminEmail},
		"password": {"wrong-password"},
	})

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Contains(t, body, "Invalid login credentials.")
	assert.Contains(t, body, adminEmail)
}

func TestLoginFlashAndRedirect(t *testing.T) {
	env := newTestEnv(t, envOptions{})

	resp, err := env.noFollow().PostForm(env.ts.URL+"/admin-login", url.Values{
		"email":    {adminEmail},
		"password": {adminPassword},
	})
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/admin", resp.Header.Get("Location"))

	_, body := env.get(t, "/admin")
	assert.Contains(t, body, "Logged in successfully!")
	assert.Contains(t, body, adminEmail)

	// Flashes are shown once.
	_, body = env.get(t, "/admin")
	assert.NotContains(t, body, "Logged in successfully!")

	_, body = env.get(t, "/admin-login")
	assert.Contains(t, body, "MEDIA MANAGER")
}

func TestSignUp(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		env := newTestEnv(t, envOptions{})

		_, body := env.get(t, "/admin-login?mode=signup")
		assert.Contains(t, body, "ADMIN LOGIN")
		assert.NotContains(t, body, "mode=signup")

		resp, body := env.postForm(t, "/admin-login", url.Values{
			"mode":     {"signup"},
			"email":    {"new@example.com"},
			"password": {"long-enough"},
		})
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
		assert.Contains(t, body, "Sign up is disabled.")
	})

	t.Run("enabled", func(t *testing.T) {
		env := newTestEnv(t, envOptions{allowSignUp: true})

		_, body := env.get(t, "/admin-login?mode=signup")
		assert.Contains(t, body, "CREATE ACCOUNT")

		resp, body := env.postForm(t, "/admin-login", url.Values{
			"mode":     {"signup"},
			"email":    {"new@example.com"},
			"password": {"long-enough"},
		})
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, body, "Account created! You can now sign in.")

		resp, body = env.postForm(t, "/admin-login", url.Values{
			"mode":     {"signup"},
			"email":    {"new@example.com"},
			"password": {"long-enough"},
		})
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
		assert.Contains(t, body, "already exists")

		resp, body = env.postForm(t, "/admin-login", url.Values{
			"email":    {"new@example.com"},
			"password": {"long-enough"},
		})
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, body, "MEDIA MANAGER")
	})
}

func TestUploadListDelete(t *testing.T) {
	env := newTestEnv(t, envOptions{})
	env.login(t)
	ctx := context.Background()

	resp, body := env.upload(t, "concert-posters", "Gig poster", "poster.png", pngHeader)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "File uploaded successfully!")
	assert.Contains(t, body, "Gig poster")

	items, err := env.media.List(ctx, "concert-posters")
	require.NoError(t, err)
	require.Len(t, items, 1)
	item := items[0]
	assert.Equal(t, domain.FileTypeImage, item.FileType)
	assert.True(t, strings.HasPrefix(item.FileURL, "/storage/project-media/concert-posters/"))

	resp, served := env.get(t, item.FileURL)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, pngHeader, served)

	_, body = env.get(t, "/projects?category=Posters")
	assert.Contains(t, body, item.FileURL)

	_, body = env.postForm(t, "/admin/media/"+item.ID+"/delete", url.Values{
		"file_url": {item.FileURL},
		"project":  {"concert-posters"},
	})
	assert.Contains(t, body, "File deleted successfully!")
	assert.Contains(t, body, "No media uploaded for this project yet.")

	items, err = env.media.List(ctx, "concert-posters")
	require.NoError(t, err)
	assert.Empty(t, items)

	resp, _ = env.get(t, item.FileURL)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestUploadRejectsUnsupportedFile(t *testing.T) {
	env := newTestEnv(t, envOptions{})
	env.login(t)

	_, body := env.upload(t, "concert-posters", "Notes", "notes.txt", "just some text")

	assert.Contains(t, body, "Invalid file type. Please upload images, videos, or PDFs only.")
	items, err := env.media.List(context.Background(), "concert-posters")
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestDeleteUnknownItem(t *testing.T) {
	env := newTestEnv(t, envOptions{})
	env.login(t)

	_, body := env.postForm(t, "/admin/media/missing/delete", url.Values{
		"file_url": {"https://elsewhere.example.com/x.png"},
		"project":  {"logo-collection"},
	})

	assert.Contains(t, body, "Delete failed: ")
}

func TestReorder(t *testing.T) {
	env := newTestEnv(t, envOptions{})
	env.login(t)
	env.upload(t, "logo-collection", "First", "a.png", pngHeader)

	items, err := env.media.List(context.Background(), "logo-collection")
	require.NoError(t, err)
	require.Len(t, items, 1)

	_, body := env.postForm(t, "/admin/media/"+items[0].ID+"/order", url.Values{
		"order":   {"abc"},
		"project": {"logo-collection"},
	})
	assert.Contains(t, body, "Display order must be a whole number.")

	_, body = env.postForm(t, "/admin/media/"+items[0].ID+"/order", url.Values{
		"order":   {"5"},
		"project": {"logo-collection"},
	})
	assert.Contains(t, body, "Display order updated.")

	items, err = env.media.List(context.Background(), "logo-collection")
	require.NoError(t, err)
	assert.Equal(t, 5, items[0].DisplayOrder)
}

func TestLogout(t *testing.T) {
	env := newTestEnv(t, envOptions{})
	env.login(t)

	_, body := env.postForm(t, "/admin-logout", nil)
	assert.Contains(t, body, "Logged out successfully!")
	assert.Contains(t, body, "Admin Login")

	resp, err := env.noFollow().Get(env.ts.URL + "/admin")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusFound, resp.StatusCode)
}

func TestLogoutFromAdminReturnsToLogin(t *testing.T) {
	env := newTestEnv(t, envOptions{})
	env.login(t)

	resp, err := env.noFollow().PostForm(env.ts.URL+"/admin-logout", url.Values{"next": {"/admin-login"}})
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/admin-login", resp.Header.Get("Location"))
}

func TestSessionEventsFollowSignOut(t *testing.T) {
	env := newTestEnv(t, envOptions{})
	env.login(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, env.ts.URL+eventsPath, nil)
	require.NoError(t, err)
	resp, err := env.client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", strings.Split(resp.Header.Get("Content-Type"), ";")[0])

	nextState := stateReader(resp.Body)

	require.Equal(t, "authenticated", nextState())

	_, body := env.postForm(t, "/admin-logout", nil)
	require.Contains(t, body, "Logged out successfully!")

	assert.Equal(t, "anonymous", nextState())
}

func TestSessionEventsReportExpiry(t *testing.T) {
	env := newTestEnv(t, envOptions{sessionTTL: 500 * time.Millisecond, keepalive: 50 * time.Millisecond})
	env.login(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, env.ts.URL+eventsPath, nil)
	require.NoError(t, err)
	resp, err := env.client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	nextState := stateReader(resp.Body)
	require.Equal(t, "authenticated", nextState())

	start := time.Now()
	assert.Equal(t, "anonymous", nextState(), "no request is made while the page sits idle")
	assert.GreaterOrEqual(t, time.Since(start), 300*time.Millisecond, "pings alone do not keep the session alive past its TTL")
}

// stateReader returns the data of each successive "state" event on an event stream.
func stateReader(r io.Reader) func() string {
	scanner := bufio.NewScanner(r)
	return func() string {
		event := ""
		for scanner.Scan() {
			line := scanner.Text()
			switch {
			case strings.HasPrefix(line, "event:"):
				event = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
			case strings.HasPrefix(line, "data:") && event == "state":
				return strings.TrimSpace(strings.TrimPrefix(line, "data:"))
			}
		}
		return ""
	}
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t, envOptions{})

	resp, body := env.get(t, "/health")

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ok"}`, body)
}

func TestVisitTracking(t *testing.T) {
	env := newTestEnv(t, envOptions{trackVisits: true})

	env.get(t, "/")
	env.get(t, "/?category=Posters")

	dnt, err := http.NewRequest(http.MethodGet, env.ts.URL+"/", nil)
	require.NoError(t, err)
	dnt.Header.Set("DNT", "1")
	resp, err := env.client.Do(dnt)
	require.NoError(t, err)
	readBody(t, resp)

	fragment, err := http.NewRequest(http.MethodGet, env.ts.URL+"/projects?category=All", nil)
	require.NoError(t, err)
	fragment.Header.Set("HX-Request", "true")
	resp, err = env.client.Do(fragment)
	require.NoError(t, err)
	readBody(t, resp)

	env.get(t, "/health")
	env.get(t, "/static/css/site.css")
	env.get(t, "/projects?category=Sculpture")
	env.login(t)
	env.visits.Wait()

	resp, body := env.get(t, "/admin/stats")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var res struct {
		Ok     bool              `json:"ok"`
		Result domain.VisitStats `json:"result"`
	}
	require.NoError(t, json.Unmarshal([]byte(body), &res))
	assert.True(t, res.Ok)
	assert.Equal(t, int64(2), res.Result.Total)
	assert.Equal(t, int64(1), res.Result.Unique)
	for _, v := range res.Result.Recent {
		assert.Equal(t, "/", v.Path)
		assert.NotContains(t, v.HashedIP, "127.0.0.1")
	}

	_, body = env.get(t, "/admin")
	assert.Contains(t, body, "Visitors today")

	resp, body = env.postForm(t, "/admin/stats/cleanup", url.Values{})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"ok":true,"result":{"removed":0}}`, body, "recent visits are within retention")
}

func TestVisitStatsDisabled(t *testing.T) {
	env := newTestEnv(t, envOptions{})
	env.login(t)

	resp, body := env.get(t, "/admin/stats")

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, body, "Visitor tracking is disabled.")

	_, body = env.get(t, "/admin")
	assert.NotContains(t, body, "Visitors today")

	resp, _ = env.postForm(t, "/admin/stats/cleanup", url.Values{})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
