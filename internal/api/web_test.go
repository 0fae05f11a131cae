package api

import (
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/inklet/inklet/config"
	"github.com/inklet/inklet/internal/api/handler"
	"github.com/inklet/inklet/internal/metrics"
	"github.com/inklet/inklet/internal/model"
	"github.com/inklet/inklet/internal/repository"
	"github.com/inklet/inklet/internal/service"
)

type testServer struct {
	*httptest.Server
	db *gorm.DB
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.User{}, &model.Post{}, &model.Reaction{}))

	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	reactionRepo := repository.NewReactionRepository(db)

	auth := service.NewAuthService(userRepo, bcrypt.MinCost)
	posts := service.NewPostService(postRepo)
	reactions := service.NewReactionService(reactionRepo, postRepo, nil, nil)

	store := sessions.NewCookieStore([]byte("test-session-secret"))
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	h := handler.New(auth, posts, reactions, store, m, "test-token-secret", time.Hour)

	cfg := &config.Config{}
	cfg.Server.Mode = "test"
	cfg.Server.TemplatesGlob = "../../web/templates/*.html"
	cfg.Auth.TokenSecret = "test-token-secret"
	cfg.RateLimit.LoginRPS = 1000
	cfg.RateLimit.LoginBurst = 1000

	r := NewRouter(RouterOptions{
		Config:   cfg,
		Handler:  h,
		Auth:     auth,
		Store:    store,
		Metrics:  m,
		Gatherer: reg,
	})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return &testServer{Server: srv, db: db}
}

// newClient keeps cookies and stops at the first redirect so tests can
// assert on Location headers.
func newClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{
		Jar: jar,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func get(t *testing.T, c *http.Client, url string) (*http.Response, string) {
	t.Helper()
	resp, err := c.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

func postForm(t *testing.T, c *http.Client, url string, form url.Values) (*http.Response, string) {
	t.Helper()
	resp, err := c.PostForm(url, form)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

func signup(t *testing.T, c *http.Client, base, username, password string) {
	t.Helper()
	resp, _ := postForm(t, c, base+"/auth/register", url.Values{
		"username": {username}, "password": {password},
	})
	require.Equal(t, http.StatusFound, resp.StatusCode)
	require.Equal(t, "/auth/login", resp.Header.Get("Location"))
}

func login(t *testing.T, c *http.Client, base, username, password string) {
	t.Helper()
	resp, _ := postForm(t, c, base+"/auth/login", url.Values{
		"username": {username}, "password": {password},
	})
	require.Equal(t, http.StatusFound, resp.StatusCode)
	require.Equal(t, "/", resp.Header.Get("Location"))
}

func createPost(t *testing.T, c *http.Client, base, title, body string) string {
	t.Helper()
	resp, _ := postForm(t, c, base+"/post/create", url.Values{
		"title": {title}, "body": {body},
	})
	require.Equal(t, http.StatusFound, resp.StatusCode)
	require.Equal(t, "/", resp.Header.Get("Location"))
	return title
}

func postIDByTitle(t *testing.T, db *gorm.DB, title string) string {
	t.Helper()
	var p model.Post
	require.NoError(t, db.Where("title = ?", title).First(&p).Error)
	return p.ID
}

func TestLoginRequiredRedirects(t *testing.T) {
	srv := newTestServer(t)
	c := newClient(t)

	paths := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/post/create"},
		{http.MethodPost, "/post/create"},
		{http.MethodGet, "/post/xyz/update"},
		{http.MethodPost, "/post/xyz/update"},
		{http.MethodPost, "/post/xyz/delete"},
		{http.MethodGet, "/post/xyz/react"},
		{http.MethodGet, "/post/xyz/unreact"},
	}
	for _, p := range paths {
		req, err := http.NewRequest(p.method, srv.URL+p.path, nil)
		require.NoError(t, err)
		resp, err := c.Do(req)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusFound, resp.StatusCode, "%s %s", p.method, p.path)
		assert.Equal(t, "/auth/login", resp.Header.Get("Location"), "%s %s", p.method, p.path)
	}
}

func TestRegisterValidationMessages(t *testing.T) {
	srv := newTestServer(t)
	c := newClient(t)

	resp, body := postForm(t, c, srv.URL+"/auth/register", url.Values{"password": {"pw"}})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Username is required.")

	resp, body = postForm(t, c, srv.URL+"/auth/register", url.Values{"username": {"alice"}})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Password is required.")

	signup(t, c, srv.URL, "alice", "pw")
	resp, body = postForm(t, c, srv.URL+"/auth/register", url.Values{
		"username": {"alice"}, "password": {"other"},
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "User alice is already registered.")
}

func TestLoginFlow(t *testing.T) {
	srv := newTestServer(t)
	c := newClient(t)
	signup(t, c, srv.URL, "alice", "pw")

	resp, body := postForm(t, c, srv.URL+"/auth/login", url.Values{
		"username": {"nobody"}, "password": {"pw"},
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Incorrect username.")

	resp, body = postForm(t, c, srv.URL+"/auth/login", url.Values{
		"username": {"alice"}, "password": {"wrong"},
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Incorrect password.")

	login(t, c, srv.URL, "alice", "pw")

	_, body = get(t, c, srv.URL+"/")
	assert.Contains(t, body, "Log Out")
	assert.Contains(t, body, "alice")
}

func TestLogout(t *testing.T) {
	srv := newTestServer(t)
	c := newClient(t)
	signup(t, c, srv.URL, "alice", "pw")
	login(t, c, srv.URL, "alice", "pw")

	resp, _ := get(t, c, srv.URL+"/auth/logout")
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))

	_, body := get(t, c, srv.URL+"/")
	assert.Contains(t, body, "Log In")
	assert.NotContains(t, body, "Log Out")
}

func TestCreatePost(t *testing.T) {
	srv := newTestServer(t)
	c := newClient(t)
	signup(t, c, srv.URL, "alice", "pw")
	login(t, c, srv.URL, "alice", "pw")

	// a missing title re-renders the form with the message and stores nothing
	resp, body := postForm(t, c, srv.URL+"/post/create", url.Values{"body": {"no title"}})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Title is required.")
	var cnt int64
	require.NoError(t, srv.db.Model(&model.Post{}).Count(&cnt).Error)
	assert.EqualValues(t, 0, cnt)

	createPost(t, c, srv.URL, "first post", "hello world")

	_, body = get(t, c, srv.URL+"/")
	assert.Contains(t, body, "first post")
	assert.Contains(t, body, "by alice")
	assert.Contains(t, body, "hello world")
}

func TestEditLinkOnlyForAuthor(t *testing.T) {
	srv := newTestServer(t)
	alice := newClient(t)
	signup(t, alice, srv.URL, "alice", "pw")
	login(t, alice, srv.URL, "alice", "pw")
	createPost(t, alice, srv.URL, "alice post", "body")
	id := postIDByTitle(t, srv.db, "alice post")

	_, body := get(t, alice, srv.URL+"/")
	assert.Contains(t, body, "/post/"+id+"/update")

	bob := newClient(t)
	signup(t, bob, srv.URL, "bob", "pw")
	login(t, bob, srv.URL, "bob", "pw")
	_, body = get(t, bob, srv.URL+"/")
	assert.NotContains(t, body, "/post/"+id+"/update")

	anon := newClient(t)
	_, body = get(t, anon, srv.URL+"/")
	assert.Contains(t, body, "alice post")
	assert.NotContains(t, body, "/post/"+id+"/update")
}

func TestUpdateAuthorization(t *testing.T) {
	srv := newTestServer(t)
	alice := newClient(t)
	signup(t, alice, srv.URL, "alice", "pw")
	login(t, alice, srv.URL, "alice", "pw")
	createPost(t, alice, srv.URL, "original", "body")
	id := postIDByTitle(t, srv.db, "original")

	bob := newClient(t)
	signup(t, bob, srv.URL, "bob", "pw")
	login(t, bob, srv.URL, "bob", "pw")

	resp, _ := get(t, bob, srv.URL+"/post/"+id+"/update")
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp, _ = postForm(t, bob, srv.URL+"/post/"+id+"/update", url.Values{"title": {"hacked"}})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp, _ = postForm(t, bob, srv.URL+"/post/"+id+"/delete", nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, _ = get(t, bob, srv.URL+"/post/"+uuid.New().String()+"/update")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp, _ = postForm(t, bob, srv.URL+"/post/"+uuid.New().String()+"/delete", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestUpdatePreservesIdentity(t *testing.T) {
	srv := newTestServer(t)
	c := newClient(t)
	signup(t, c, srv.URL, "alice", "pw")
	login(t, c, srv.URL, "alice", "pw")
	createPost(t, c, srv.URL, "before", "old body")
	id := postIDByTitle(t, srv.db, "before")

	var before model.Post
	require.NoError(t, srv.db.First(&before, "id = ?", id).Error)

	resp, _ := postForm(t, c, srv.URL+"/post/"+id+"/update", url.Values{
		"title": {"after"}, "body": {"new body"},
	})
	require.Equal(t, http.StatusFound, resp.StatusCode)
	require.Equal(t, "/", resp.Header.Get("Location"))

	var after model.Post
	require.NoError(t, srv.db.First(&after, "id = ?", id).Error)
	assert.Equal(t, "after", after.Title)
	assert.Equal(t, "new body", after.Body)
	assert.Equal(t, before.ID, after.ID)
	assert.Equal(t, before.AuthorID, after.AuthorID)
	assert.True(t, before.CreatedAt.Equal(after.CreatedAt))
}

func TestDeleteCascades(t *testing.T) {
	srv := newTestServer(t)
	c := newClient(t)
	signup(t, c, srv.URL, "alice", "pw")
	login(t, c, srv.URL, "alice", "pw")
	createPost(t, c, srv.URL, "doomed", "body")
	id := postIDByTitle(t, srv.db, "doomed")

	resp, body := get(t, c, srv.URL+"/post/"+id+"/react")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "success")

	resp, _ = postForm(t, c, srv.URL+"/post/"+id+"/delete", nil)
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))

	resp, _ = get(t, c, srv.URL+"/post/"+id)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	var reactionCnt int64
	require.NoError(t, srv.db.Model(&model.Reaction{}).Where("post_id = ?", id).Count(&reactionCnt).Error)
	assert.EqualValues(t, 0, reactionCnt)
}

func TestReactionToggle(t *testing.T) {
	srv := newTestServer(t)
	alice := newClient(t)
	signup(t, alice, srv.URL, "alice", "pw")
	login(t, alice, srv.URL, "alice", "pw")
	createPost(t, alice, srv.URL, "likeable", "body")
	id := postIDByTitle(t, srv.db, "likeable")

	// the thumb starts unclicked
	_, body := get(t, alice, srv.URL+"/post/"+id)
	assert.NotContains(t, body, "fa-clicked")

	resp, body := get(t, alice, srv.URL+"/post/"+id+"/react")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "success")

	_, body = get(t, alice, srv.URL+"/post/"+id)
	assert.Contains(t, body, "fa fa-thumbs-up fa-clicked")
	assert.Contains(t, body, "/post/"+id+"/unreact")

	// reacting again keeps a single row
	resp, _ = get(t, alice, srv.URL+"/post/"+id+"/react")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var cnt int64
	require.NoError(t, srv.db.Model(&model.Reaction{}).Where("post_id = ?", id).Count(&cnt).Error)
	assert.EqualValues(t, 1, cnt)

	resp, body = get(t, alice, srv.URL+"/post/"+id+"/unreact")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "success")

	_, body = get(t, alice, srv.URL+"/post/"+id)
	assert.NotContains(t, body, "fa-clicked")
	require.NoError(t, srv.db.Model(&model.Reaction{}).Where("post_id = ?", id).Count(&cnt).Error)
	assert.EqualValues(t, 0, cnt)

	resp, _ = get(t, alice, srv.URL+"/post/"+uuid.New().String()+"/react")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestReactRequiresLogin(t *testing.T) {
	srv := newTestServer(t)
	alice := newClient(t)
	signup(t, alice, srv.URL, "alice", "pw")
	login(t, alice, srv.URL, "alice", "pw")
	createPost(t, alice, srv.URL, "likeable", "body")
	id := postIDByTitle(t, srv.db, "likeable")

	anon := newClient(t)
	resp, _ := get(t, anon, srv.URL+"/post/"+id+"/react")
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/auth/login", resp.Header.Get("Location"))

	var cnt int64
	require.NoError(t, srv.db.Model(&model.Reaction{}).Where("post_id = ?", id).Count(&cnt).Error)
	assert.EqualValues(t, 0, cnt)
}

func TestDetailVisibleLoggedOut(t *testing.T) {
	srv := newTestServer(t)
	alice := newClient(t)
	signup(t, alice, srv.URL, "alice", "pw")
	login(t, alice, srv.URL, "alice", "pw")
	createPost(t, alice, srv.URL, "public post", "anyone can read")
	id := postIDByTitle(t, srv.db, "public post")

	anon := newClient(t)
	resp, body := get(t, anon, srv.URL+"/post/"+id)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "public post")
	assert.Contains(t, body, "anyone can read")
}

func TestFeedOrdersNewestFirst(t *testing.T) {
	srv := newTestServer(t)
	c := newClient(t)
	signup(t, c, srv.URL, "alice", "pw")
	login(t, c, srv.URL, "alice", "pw")

	// seed directly so the timestamps are unambiguous
	old := &model.Post{ID: uuid.New().String(), AuthorID: userIDByName(t, srv.db, "alice"),
		Title: "older", Body: "b", CreatedAt: time.Now().Add(-time.Hour)}
	require.NoError(t, srv.db.Create(old).Error)
	latest := &model.Post{ID: uuid.New().String(), AuthorID: old.AuthorID,
		Title: "newer", Body: "b", CreatedAt: time.Now()}
	require.NoError(t, srv.db.Create(latest).Error)

	_, body := get(t, c, srv.URL+"/")
	assert.Less(t, strings.Index(body, "newer"), strings.Index(body, "older"))
}

func userIDByName(t *testing.T, db *gorm.DB, username string) string {
	t.Helper()
	var u model.User
	require.NoError(t, db.Where("username = ?", username).First(&u).Error)
	return u.ID
}

func TestOperationalEndpoints(t *testing.T) {
	srv := newTestServer(t)
	c := newClient(t)

	resp, body := get(t, c, srv.URL+"/healthz")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body)

	// a page view first, so the request counter has something to report
	_, _ = get(t, c, srv.URL+"/")
	resp, body = get(t, c, srv.URL+"/metrics")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "inklet_requests_total")
}
