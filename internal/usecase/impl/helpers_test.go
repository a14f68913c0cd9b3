package impl

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"pickup/config"
	"pickup/internal/domain/entity"
	"pickup/internal/domain/service"
	"pickup/internal/infra/api"
	"pickup/internal/infra/auth"
	"pickup/internal/infra/tokenstore"
	mockService "pickup/internal/mocks/service"

	"github.com/stretchr/testify/require"
)

// fakeAPI is an in-process stand-in for the remote booking API. Handlers
// are keyed by "METHOD /api/path/".
type fakeAPI struct {
	t      *testing.T
	server *httptest.Server

	mu       sync.Mutex
	handlers map[string]http.HandlerFunc
	calls    map[string]int
	auth     map[string]string
	bodies   map[string][]byte
}

func newFakeAPI(t *testing.T) *fakeAPI {
	t.Helper()

	f := &fakeAPI{
		t:        t,
		handlers: map[string]http.HandlerFunc{},
		calls:    map[string]int{},
		auth:     map[string]string{},
		bodies:   map[string][]byte{},
	}
	f.server = httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.server.Close)

	return f
}

func (f *fakeAPI) serve(w http.ResponseWriter, r *http.Request) {
	key := r.Method + " " + r.URL.Path

	f.mu.Lock()
	f.calls[key]++
	f.auth[key] = r.Header.Get("Authorization")
	handler, ok := f.handlers[key]
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		body, _ := io.ReadAll(r.Body)
		f.bodies[key] = body
	}
	f.mu.Unlock()

	if !ok {
		http.Error(w, `{"detail":"Not found."}`, http.StatusNotFound)

		return
	}
	handler(w, r)
}

// Handle registers h for method and path (relative to /api/).
func (f *fakeAPI) Handle(method, path string, h http.HandlerFunc) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handlers[method+" /api/"+path] = h
}

// Reply registers a fixed JSON answer.
func (f *fakeAPI) Reply(method, path string, status int, body string) {
	f.Handle(method, path, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	})
}

func (f *fakeAPI) Calls(method, path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.calls[method+" /api/"+path]
}

func (f *fakeAPI) Auth(method, path string) string {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.auth[method+" /api/"+path]
}

func (f *fakeAPI) Body(method, path string) []byte {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.bodies[method+" /api/"+path]
}

// testServices is one independent client session against a fakeAPI.
type testServices struct {
	api     *fakeAPI
	tokens  *tokenstore.Memory
	gateway service.Gateway
	session *sessionService
	catalog *catalogService
	logger  *slog.Logger
	cfg     *config.Config
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func createTestServices(t *testing.T, token string) *testServices {
	t.Helper()

	fake := newFakeAPI(t)
	logger := discardLogger()
	tokens := tokenstore.NewMemory(token)

	client, err := api.New(config.APIConfig{BaseURL: fake.server.URL + "/api/"}, tokens, logger, nil)
	require.NoError(t, err)

	cfg := &config.Config{
		Payment: &config.PaymentConfig{
			KeyID:        "rzp_test_key",
			Currency:     "INR",
			MerchantName: "Garbage Management System",
			ThemeColor:   "#667eea",
		},
		Maps: &config.MapsConfig{},
	}

	session := NewSessionService(SessionParams{
		Gateway:   client,
		Tokens:    tokens,
		Inspector: auth.NewJWTInspector(),
		Logger:    logger,
	}).(*sessionService)

	catalog := NewCatalogService(CatalogParams{
		Config:  cfg,
		Gateway: client,
		Session: session,
		Logger:  logger,
	}).(*catalogService)

	return &testServices{
		api:     fake,
		tokens:  tokens,
		gateway: client,
		session: session,
		catalog: catalog,
		logger:  logger,
		cfg:     cfg,
	}
}

// loggedIn makes the session hold user without a network round trip.
func (s *testServices) loggedIn(user *entity.User) *testServices {
	if _, ok := s.tokens.Token(); !ok {
		_ = s.tokens.Save("T1")
	}
	s.session.SetUser(user)

	return s
}

func (s *testServices) bookingService(t *testing.T, geo service.Geolocator, attachments service.AttachmentSource) *bookingService {
	t.Helper()

	if geo == nil {
		geo = mockService.NewMockGeolocator(t)
	}
	if attachments == nil {
		attachments = mockService.NewMockAttachmentSource(t)
	}

	srv := NewBookingService(BookingParams{
		Gateway:     s.gateway,
		Session:     s.session,
		Catalog:     s.catalog,
		Geolocator:  geo,
		Attachments: attachments,
		Logger:      s.logger,
	}).(*bookingService)
	srv.now = func() time.Time { return time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC) }

	return srv
}

var testUser = &entity.User{ID: 7, Email: "a@b.com", Name: "Asha", Phone: "555", Address: "12 Park Road"}

const testUserJSON = `{"id":7,"email":"a@b.com","name":"Asha","phone":"555","address":"12 Park Road"}`
