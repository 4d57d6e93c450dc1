package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	aipkg "SignBridge/internal/ai"
	"SignBridge/internal/maintenance"
	"SignBridge/internal/models"
	"SignBridge/internal/pipeline"
	"SignBridge/internal/service"
	"SignBridge/pkg/cache"
	"SignBridge/pkg/config"
	"SignBridge/pkg/middleware"
	"SignBridge/pkg/util"
)

type fakeStore struct {
	objects map[string][]byte
}

func (f *fakeStore) Write(_ context.Context, key string, r io.Reader, _ int64, _ string) error {
	data, _ := io.ReadAll(r)
	f.objects[key] = data
	return nil
}

func (f *fakeStore) Read(context.Context, string) (io.ReadCloser, int64, error) {
	return nil, 0, context.DeadlineExceeded
}

func (f *fakeStore) Delete(_ context.Context, key string) error {
	delete(f.objects, key)
	return nil
}

func (f *fakeStore) Exists(_ context.Context, key string) (bool, error) {
	_, ok := f.objects[key]
	return ok, nil
}

func (f *fakeStore) PublicURL(key string) string {
	return "http://storage.local/audio-recordings/" + key
}

func newTestServer(t *testing.T) (*httptest.Server, *Handlers) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	config.GlobalConfig = &config.Config{
		APIPrefix:     "/api",
		AdminPrefix:   "/admin",
		AuthPrefix:    "/auth",
		SessionSecret: "test-secret",
	}

	db, err := util.NewDatabase("", "file:"+uuid.NewString()+"?mode=memory&cache=shared")
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.AuthIdentity{}, &models.AudioFile{}))

	appCache := cache.NewGoCache(cache.LocalConfig{DefaultExpiration: time.Minute, CleanupInterval: time.Minute})
	t.Cleanup(func() { appCache.Close() })

	store := &fakeStore{objects: make(map[string][]byte)}
	uploads := service.NewUploadService(db, store)
	accounts := service.NewAccountService(db, appCache)

	aiLog := logrus.New()
	aiLog.SetOutput(io.Discard)
	// no key configured: the pipeline degrades to simulated content
	aiClient := aipkg.NewClient(aipkg.Config{}, aiLog)

	hub := NewHub()
	limiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{Rate: "100-S"}, nil)

	h := NewHandlers(Deps{
		DB:          db,
		Accounts:    accounts,
		Uploads:     uploads,
		AIClient:    aiClient,
		VoiceToSign: pipeline.NewVoiceToSign(uploads, aiClient, hub),
		SignToVoice: pipeline.NewSignToVoice(nil, hub),
		Maintenance: maintenance.NewRunner(db),
		Hub:         hub,
		Limiter:     limiter,
	})

	engine := gin.New()
	h.Register(engine)
	srv := httptest.NewServer(engine)
	t.Cleanup(srv.Close)
	return srv, h
}

func doJSON(t *testing.T, method, url, cookie string, payload any) *http.Response {
	t.Helper()
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, url, body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if cookie != "" {
		req.Header.Set("Cookie", cookie)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func signUp(t *testing.T, srv *httptest.Server, email string) string {
	t.Helper()
	resp := doJSON(t, http.MethodPost, srv.URL+"/api/auth/signup", "", map[string]string{
		"email":    email,
		"password": "motdepasse",
		"fullName": "Test User",
		"role":     models.RoleSourd,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	cookie := resp.Header.Get("Set-Cookie")
	require.NotEmpty(t, cookie)
	resp.Body.Close()
	return strings.Split(cookie, ";")[0]
}

func TestSignUpAndSession(t *testing.T) {
	srv, _ := newTestServer(t)
	cookie := signUp(t, srv, "alice@example.com")

	resp := doJSON(t, http.MethodGet, srv.URL+"/api/auth/session", cookie, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	data := body["data"].(map[string]any)
	assert.Equal(t, "alice@example.com", data["Email"])
	assert.Equal(t, models.RoleSourd, data["UserRole"])
}

func TestSignInRejectsBadPassword(t *testing.T) {
	srv, _ := newTestServer(t)
	signUp(t, srv, "bob@example.com")

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/auth/signin", "", map[string]string{
		"email":    "bob@example.com",
		"password": "mauvais",
	})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestSignOutClearsSession(t *testing.T) {
	srv, _ := newTestServer(t)
	cookie := signUp(t, srv, "carol@example.com")

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/auth/signout", cookie, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	cleared := strings.Split(resp.Header.Get("Set-Cookie"), ";")[0]
	resp.Body.Close()

	resp = doJSON(t, http.MethodGet, srv.URL+"/api/auth/session", cleared, nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAudioRoutesRequireAuth(t *testing.T) {
	srv, _ := newTestServer(t)
	resp := doJSON(t, http.MethodGet, srv.URL+"/api/audio/list", "", nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func uploadAudio(t *testing.T, srv *httptest.Server, cookie, path string) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", "mémo.m4a")
	require.NoError(t, err)
	part.Write([]byte("fake-audio-bytes"))
	require.NoError(t, w.Close())

	req, err := http.NewRequest(http.MethodPost, srv.URL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Cookie", cookie)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func TestAudioUploadAndList(t *testing.T) {
	srv, _ := newTestServer(t)
	cookie := signUp(t, srv, "dave@example.com")

	resp := uploadAudio(t, srv, cookie, "/api/audio/upload")
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, http.MethodGet, srv.URL+"/api/audio/list", cookie, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	files := body["data"].([]any)
	require.Len(t, files, 1)
}

// Without an AI key the pipeline still answers with the simulated
// transcription and the default emoji sequence.
func TestVoiceToSignDegradesWithoutKey(t *testing.T) {
	srv, _ := newTestServer(t)
	cookie := signUp(t, srv, "erin@example.com")

	resp := uploadAudio(t, srv, cookie, "/api/pipeline/voice-to-sign")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	data := body["data"].(map[string]any)

	transcription := data["transcription"].(map[string]any)
	assert.Equal(t, pipeline.SampleTranscription, transcription["text"])
	assert.Equal(t, string(pipeline.SourceFallback), data["transcriptionSource"])
}

func TestRecordingStateGuard(t *testing.T) {
	srv, _ := newTestServer(t)
	cookie := signUp(t, srv, "frank@example.com")

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/pipeline/recording/start", cookie, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, http.MethodPost, srv.URL+"/api/pipeline/recording/start", cookie, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, http.MethodPost, srv.URL+"/api/pipeline/recording/cancel", cookie, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, http.MethodGet, srv.URL+"/api/pipeline/state", cookie, nil)
	body := decodeBody(t, resp)
	data := body["data"].(map[string]any)
	assert.Equal(t, string(pipeline.StateIdle), data["state"])
}

func TestSignToVoiceEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)
	cookie := signUp(t, srv, "grace@example.com")

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/pipeline/sign-to-voice", cookie, map[string]int{"ticks": 0})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	data := body["data"].(map[string]any)
	assert.NotEmpty(t, data["text"])
	assert.NotEmpty(t, data["emojis"])
}

func TestMaintenanceEndpoint(t *testing.T) {
	srv, h := newTestServer(t)
	cookie := signUp(t, srv, "heidi@example.com")

	// plant a duplicate out of band
	require.NoError(t, h.db.Create(&models.User{
		ID: "dup", Email: "heidi@example.com", UserRole: models.RoleSourd,
		CreatedAt: time.Now().Add(time.Hour),
	}).Error)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/admin/maintenance/run", cookie, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	data := body["data"].(map[string]any)
	assert.Equal(t, float64(1), data["duplicatesRemoved"])
}

func TestRateLimitConfigRoundTrip(t *testing.T) {
	srv, _ := newTestServer(t)
	cookie := signUp(t, srv, "ivan@example.com")

	resp := doJSON(t, http.MethodPut, srv.URL+"/api/admin/ratelimit", cookie, middleware.RateLimiterConfig{
		Rate: "5-S", AddHeaders: true,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, http.MethodGet, srv.URL+"/api/admin/ratelimit", cookie, nil)
	body := decodeBody(t, resp)
	data := body["data"].(map[string]any)
	assert.Equal(t, "5-S", data["rate"])
}
