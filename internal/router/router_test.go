package router

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/narrative-weaver/config"
	"github.com/oksasatya/narrative-weaver/internal/container"
	"github.com/oksasatya/narrative-weaver/internal/domain/repository"
	"github.com/oksasatya/narrative-weaver/pkg/helpers"
	"github.com/oksasatya/narrative-weaver/pkg/validation"
)

func init() {
	gin.SetMode(gin.TestMode)
	validation.Init()
}

type countingGenerator struct {
	calls atomic.Int32
	text  string
	err   error
}

func (g *countingGenerator) Generate(context.Context, string) (string, error) {
	g.calls.Add(1)
	return g.text, g.err
}

type envelope struct {
	Status  int             `json:"status"`
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type apiClient struct {
	t      *testing.T
	engine *gin.Engine
	c      *container.Container
}

func newAPI(t *testing.T) (*apiClient, *countingGenerator) {
	t.Helper()
	cfg := config.Load()
	cfg.StoreDriver = container.StoreMemory
	cfg.HTTPLogEnabled = false
	c := container.New(cfg, helpers.NewNopLogger())
	gen := &countingGenerator{text: "A thoughtful summary."}
	c.Generator = gen
	return &apiClient{t: t, engine: NewEngine(c), c: c}, gen
}

func (a *apiClient) do(method, path, token string, body any) *httptest.ResponseRecorder {
	a.t.Helper()
	var rd *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(a.t, err)
		rd = bytes.NewReader(b)
	} else {
		rd = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) (envelope, T) {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	var data T
	if len(env.Data) > 0 {
		require.NoError(t, json.Unmarshal(env.Data, &data))
	}
	return env, data
}

type authData struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Token string `json:"token"`
}

type entryData struct {
	ID      string `json:"id"`
	User    string `json:"user"`
	Text    string `json:"text"`
	Feeling string `json:"feeling"`
}

func (a *apiClient) register(name, email string) authData {
	a.t.Helper()
	w := a.do(http.MethodPost, "/api/users/register", "", map[string]string{"name": name, "email": email, "password": "password1"})
	require.Equal(a.t, http.StatusCreated, w.Code, w.Body.String())
	_, data := decode[authData](a.t, w)
	return data
}

func (a *apiClient) createEntry(token, text, feeling string) entryData {
	a.t.Helper()
	w := a.do(http.MethodPost, "/api/diary", token, map[string]string{"text": text, "feeling": feeling})
	require.Equal(a.t, http.StatusCreated, w.Code, w.Body.String())
	_, data := decode[entryData](a.t, w)
	return data
}

func TestAccountFlow(t *testing.T) {
	api, _ := newAPI(t)

	ann := api.register("Ann", "ann@example.com")
	assert.NotEmpty(t, ann.Token)

	w := api.do(http.MethodPost, "/api/users/register", "", map[string]string{"name": "Ann", "email": "ANN@example.com", "password": "password1"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	env, _ := decode[any](t, w)
	assert.Equal(t, "User already exists", env.Message)

	w = api.do(http.MethodPost, "/api/users/login", "", map[string]string{"email": "ann@example.com", "password": "wrong-password"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = api.do(http.MethodPost, "/api/users/login", "", map[string]string{"email": "ann@example.com", "password": "password1"})
	require.Equal(t, http.StatusOK, w.Code)
	_, login := decode[authData](t, w)
	assert.Equal(t, ann.ID, login.ID)

	w = api.do(http.MethodPut, "/api/users/profile", login.Token, map[string]string{"gender": "female", "dateOfBirth": "1990-05-01"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	_, profile := decode[map[string]any](t, w)
	assert.Equal(t, "female", profile["gender"])
	assert.Equal(t, "1990-05-01", profile["dateOfBirth"])
	assert.NotEmpty(t, profile["token"])
	assert.NotContains(t, profile, "password")

	w = api.do(http.MethodPut, "/api/users/change-password", login.Token, map[string]string{"currentPassword": "password1", "newPassword": "password2"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	api.createEntry(login.Token, "first entry", "")
	w = api.do(http.MethodDelete, "/api/users/profile", login.Token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = api.do(http.MethodPost, "/api/users/login", "", map[string]string{"email": "ann@example.com", "password": "password2"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w = api.do(http.MethodGet, "/api/users/profile", login.Token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestDeletedAccountTokenIsRejected(t *testing.T) {
	api, _ := newAPI(t)
	ann := api.register("Ann", "ann@example.com")
	api.createEntry(ann.Token, "before", "")

	w := api.do(http.MethodDelete, "/api/users/profile", ann.Token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = api.do(http.MethodPost, "/api/diary", ann.Token, map[string]string{"text": "after"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	env, _ := decode[any](t, w)
	assert.Equal(t, "Not authorized", env.Message)

	left, err := api.c.Entries.List(context.Background(), repository.EntryQuery{OwnerID: ann.ID})
	require.NoError(t, err)
	assert.Empty(t, left)
}

func TestRequestValidation(t *testing.T) {
	api, _ := newAPI(t)

	w := api.do(http.MethodPost, "/api/users/register", "", map[string]string{"name": "Ann", "email": "not-an-email", "password": "short"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	env, _ := decode[any](t, w)
	assert.Equal(t, "invalid payload: email: must be a valid email address; password: must be at least 8 characters long", env.Message)

	w = api.do(http.MethodPost, "/api/users/login", "", map[string]string{"email": "ann@example.com"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	ann := api.register("Ann", "ann@example.com")

	w = api.do(http.MethodPut, "/api/users/profile", ann.Token, map[string]string{"email": "nope"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = api.do(http.MethodPut, "/api/users/profile", ann.Token, map[string]string{"email": "", "name": "Ann B"})
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = api.do(http.MethodPut, "/api/users/change-password", ann.Token, map[string]string{"currentPassword": "password1", "newPassword": "short"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = api.do(http.MethodPost, "/api/export", ann.Token, map[string]string{"format": "odt"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	env, _ = decode[any](t, w)
	assert.Equal(t, "invalid payload: format: must be one of: pdf, docx", env.Message)

	e := api.createEntry(ann.Token, "text", "")
	w = api.do(http.MethodPut, "/api/diary/"+e.ID, ann.Token, map[string]string{"image": "not a url"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = api.do(http.MethodPut, "/api/diary/"+e.ID, ann.Token, map[string]string{"image": "https://cdn.example.com/a.png"})
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestDiaryRequiresAuth(t *testing.T) {
	api, _ := newAPI(t)
	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/api/diary"},
		{http.MethodPost, "/api/diary"},
		{http.MethodPut, "/api/diary/x"},
		{http.MethodDelete, "/api/diary/x"},
		{http.MethodGet, "/api/ai/summary"},
		{http.MethodGet, "/api/ai/deeper-analysis"},
		{http.MethodPost, "/api/export"},
	} {
		w := api.do(tc.method, tc.path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, tc.path)
	}
	w := api.do(http.MethodGet, "/api/diary", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestDiaryCRUDAndOwnership(t *testing.T) {
	api, _ := newAPI(t)
	ann := api.register("Ann", "ann@example.com")
	bob := api.register("Bob", "bob@example.com")

	w := api.do(http.MethodPost, "/api/diary", ann.Token, map[string]string{"text": "  "})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	env, _ := decode[any](t, w)
	assert.Equal(t, "Text field is required", env.Message)

	e := api.createEntry(ann.Token, "walked by the sea", "Happy")
	assert.Equal(t, ann.ID, e.User)
	api.createEntry(ann.Token, "office day", "")

	w = api.do(http.MethodGet, "/api/diary", ann.Token, nil)
	_, list := decode[[]entryData](t, w)
	require.Len(t, list, 2)
	assert.Equal(t, "office day", list[0].Text)

	w = api.do(http.MethodGet, "/api/diary", bob.Token, nil)
	_, bobs := decode[[]entryData](t, w)
	assert.Empty(t, bobs)

	w = api.do(http.MethodPut, "/api/diary/"+e.ID, bob.Token, map[string]string{"text": "hijack"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	env, _ = decode[any](t, w)
	assert.Equal(t, "Not authorized", env.Message)

	w = api.do(http.MethodDelete, "/api/diary/"+e.ID, bob.Token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = api.do(http.MethodPut, "/api/diary/missing", ann.Token, map[string]string{"text": "x"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = api.do(http.MethodPut, "/api/diary/"+e.ID, ann.Token, map[string]string{"text": "", "feeling": "Calm"})
	require.Equal(t, http.StatusOK, w.Code)
	_, updated := decode[entryData](t, w)
	assert.Equal(t, "walked by the sea", updated.Text)
	assert.Equal(t, "Calm", updated.Feeling)

	w = api.do(http.MethodGet, "/api/diary/search?q=SEA", ann.Token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	_, found := decode[[]entryData](t, w)
	require.Len(t, found, 1)
	assert.Equal(t, e.ID, found[0].ID)

	w = api.do(http.MethodDelete, "/api/diary/"+e.ID, ann.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	env, _ = decode[any](t, w)
	assert.Equal(t, "Entry removed", env.Message)
	w = api.do(http.MethodDelete, "/api/diary/"+e.ID, ann.Token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestImageUploadWithoutStorage(t *testing.T) {
	api, _ := newAPI(t)
	ann := api.register("Ann", "ann@example.com")

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("image", "photo.png")
	require.NoError(t, err)
	_, _ = part.Write([]byte("not really a png"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/diary/images", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+ann.Token)
	w := httptest.NewRecorder()
	api.engine.ServeHTTP(w, req)

	// CreateFormFile labels parts application/octet-stream.
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSummaryEndpoints(t *testing.T) {
	api, gen := newAPI(t)
	ann := api.register("Ann", "ann@example.com")

	w := api.do(http.MethodGet, "/api/ai/summary?range=7days", ann.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	_, empty := decode[map[string]string](t, w)
	assert.Equal(t, "No diary entries were found for the selected period. Write some more to get a summary!", empty["summary"])
	assert.Zero(t, gen.calls.Load())

	api.createEntry(ann.Token, "a good day", "Happy")

	w = api.do(http.MethodGet, "/api/ai/summary?range=7days", ann.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	_, got := decode[map[string]string](t, w)
	assert.Equal(t, "A thoughtful summary.", got["summary"])

	w = api.do(http.MethodGet, "/api/ai/deeper-analysis", ann.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	_, deeper := decode[map[string]string](t, w)
	assert.Equal(t, "A thoughtful summary.", deeper["analysis"])
	assert.EqualValues(t, 2, gen.calls.Load())

	w = api.do(http.MethodGet, "/api/ai/summary?range=custom&customStartDate=2024-01-01", ann.Token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	gen.err = errors.New("upstream 503")
	w = api.do(http.MethodGet, "/api/ai/summary", ann.Token, nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	env, _ := decode[any](t, w)
	assert.Equal(t, "Error generating summary.", env.Message)
	assert.NotContains(t, w.Body.String(), "upstream 503")
}

func TestExportEndpoint(t *testing.T) {
	api, _ := newAPI(t)
	ann := api.register("Ann", "ann@example.com")

	w := api.do(http.MethodPost, "/api/export", ann.Token, map[string]string{"format": "pdf", "range": "all"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = api.do(http.MethodPost, "/api/export", ann.Token, map[string]string{"format": "odt", "range": "all"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	api.createEntry(ann.Token, "exported text", "Calm")

	w = api.do(http.MethodPost, "/api/export", ann.Token, map[string]string{"format": "pdf", "range": "month"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Equal(t, "attachment; filename=MyDiary.pdf", w.Header().Get("Content-Disposition"))
	assert.True(t, strings.HasPrefix(w.Body.String(), "%PDF-"))

	w = api.do(http.MethodPost, "/api/export", ann.Token, map[string]string{"format": "DOCX"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "attachment; filename=MyDiary.docx", w.Header().Get("Content-Disposition"))
	assert.True(t, strings.HasPrefix(w.Body.String(), "PK"))
}

func TestHealthAndMetrics(t *testing.T) {
	api, _ := newAPI(t)

	w := api.do(http.MethodGet, "/api/health", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"ok":true}`, w.Body.String())

	w = api.do(http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "narrative_weaver_http_requests_total")
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}
