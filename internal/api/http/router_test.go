package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	nethttp "net/http"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/missing-persons-service/internal/api/http/handlers"
	"github.com/spec-kit/missing-persons-service/internal/auth"
	"github.com/spec-kit/missing-persons-service/internal/config"
	"github.com/spec-kit/missing-persons-service/internal/events"
	"github.com/spec-kit/missing-persons-service/internal/observability"
	"github.com/spec-kit/missing-persons-service/internal/repository/memstore"
	"github.com/spec-kit/missing-persons-service/internal/service"
)

// newTestApp assembles the full HTTP stack over the in-memory store, the
// same wiring the server entrypoint uses for the memory driver.
func newTestApp(t *testing.T) *fiber.App {
	t.Helper()

	authCfg := config.AuthConfig{
		BcryptCost:            bcrypt.MinCost,
		SessionTTLHours:       1,
		CookieName:            "registry_session",
		CookieHashKey:         "0123456789abcdef0123456789abcdef",
		JWTSecret:             "test-secret",
		AccessTokenTTLMinutes: 5,
	}

	store := memstore.New()
	logger := zap.NewNop()
	dispatcher := events.NewInMemoryDispatcher()

	sessionMgr := auth.NewSessionManager(authCfg, store.Sessions(), nil)
	tokenMgr := auth.NewTokenManager(authCfg.JWTSecret, authCfg.AccessTokenTTL())

	personService := service.NewPersonService(store.Persons(), dispatcher, logger)

	app := fiber.New()
	RegisterMiddlewares(app, logger, observability.NewMetrics(), 5*time.Second)
	RegisterRoutes(app, RouteConfig{
		Health:         handlers.NewHealthHandler("test", "dev", nil, nil),
		Users:          handlers.NewUsersHandler(service.NewAuthService(authCfg, store.Users()), sessionMgr, tokenMgr),
		Persons:        handlers.NewPersonsHandler(personService),
		Stories:        handlers.NewStoriesHandler(service.NewStoryService(store.Stories(), dispatcher)),
		Statistics:     handlers.NewStatisticsHandler(personService),
		AuthMiddleware: auth.NewAuthMiddleware(sessionMgr, tokenMgr, store.Users()),
	})
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body any, decorate ...func(*nethttp.Request)) *nethttp.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}
	req, err := nethttp.NewRequest(method, path, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, d := range decorate {
		d(req)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *nethttp.Response, dest any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dest))
}

func withCookie(cookie *nethttp.Cookie) func(*nethttp.Request) {
	return func(req *nethttp.Request) { req.AddCookie(cookie) }
}

func withBearer(token string) func(*nethttp.Request) {
	return func(req *nethttp.Request) { req.Header.Set("Authorization", "Bearer "+token) }
}

type authBody struct {
	User struct {
		ID       int    `json:"id"`
		Username string `json:"username"`
	} `json:"user"`
	Auth struct {
		Token string `json:"token"`
	} `json:"auth"`
}

type errorBody struct {
	Error struct {
		Code    string         `json:"code"`
		Message string         `json:"message"`
		Details map[string]any `json:"details"`
	} `json:"error"`
}

// registerUser creates an account and returns the session cookie, the
// bearer token and the user id.
func registerUser(t *testing.T, app *fiber.App, username string) (*nethttp.Cookie, string, int) {
	t.Helper()

	resp := doJSON(t, app, nethttp.MethodPost, "/api/register", fiber.Map{
		"username": username,
		"password": "s3cret-pass",
		"email":    username + "@example.com",
		"name":     "Reporter " + username,
	})
	require.Equal(t, nethttp.StatusCreated, resp.StatusCode)

	var cookie *nethttp.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == "registry_session" {
			cookie = c
		}
	}
	require.NotNil(t, cookie, "register must set the session cookie")

	var body authBody
	decodeBody(t, resp, &body)
	require.NotEmpty(t, body.Auth.Token)
	require.NotZero(t, body.User.ID)
	return cookie, body.Auth.Token, body.User.ID
}

func casePayload(name string) fiber.Map {
	return fiber.Map{
		"name":         name,
		"age":          34,
		"gender":       "female",
		"lastLocation": "São Paulo",
		"lastSeenDate": "2024-03-15",
		"contactName":  "João Silva",
		"contactPhone": "11999990000",
	}
}

func TestHealthLive(t *testing.T) {
	app := newTestApp(t)

	resp := doJSON(t, app, nethttp.MethodGet, "/health/live", nil)
	assert.Equal(t, nethttp.StatusOK, resp.StatusCode)
}

func TestRegisterCreateFetchRoundTrip(t *testing.T) {
	app := newTestApp(t)
	cookie, _, userID := registerUser(t, app, "asilva")

	resp := doJSON(t, app, nethttp.MethodPost, "/api/missing-persons", casePayload("Ana Silva"), withCookie(cookie))
	require.Equal(t, nethttp.StatusCreated, resp.StatusCode)

	var created map[string]any
	decodeBody(t, resp, &created)
	assert.Equal(t, "Ana Silva", created["name"])
	assert.Equal(t, "missing", created["status"])
	assert.Equal(t, float64(userID), created["reportedBy"])

	id := int(created["id"].(float64))
	resp = doJSON(t, app, nethttp.MethodGet, fmt.Sprintf("/api/missing-persons/%d", id), nil)
	require.Equal(t, nethttp.StatusOK, resp.StatusCode)

	var fetched map[string]any
	decodeBody(t, resp, &fetched)
	assert.Equal(t, created["name"], fetched["name"])
	assert.Equal(t, created["lastSeenDate"], fetched["lastSeenDate"])
	assert.Equal(t, created["id"], fetched["id"])
}

func TestGetUnknownCaseNotFound(t *testing.T) {
	app := newTestApp(t)

	resp := doJSON(t, app, nethttp.MethodGet, "/api/missing-persons/999", nil)
	require.Equal(t, nethttp.StatusNotFound, resp.StatusCode)

	var body errorBody
	decodeBody(t, resp, &body)
	assert.Equal(t, "NOT_FOUND", body.Error.Code)
}

func TestSearchMalformedParamsRejected(t *testing.T) {
	app := newTestApp(t)

	resp := doJSON(t, app, nethttp.MethodGet, "/api/missing-persons?age=abc&lastSeenDate=not-a-date", nil)
	require.Equal(t, nethttp.StatusBadRequest, resp.StatusCode)

	var body errorBody
	decodeBody(t, resp, &body)
	assert.Equal(t, "VALIDATION_FAILED", body.Error.Code)
	assert.Contains(t, body.Error.Details, "age")
	assert.Contains(t, body.Error.Details, "lastSeenDate")
}

func TestSearchFiltersResults(t *testing.T) {
	app := newTestApp(t)
	cookie, _, _ := registerUser(t, app, "asilva")

	resp := doJSON(t, app, nethttp.MethodPost, "/api/missing-persons", casePayload("Ana Silva"), withCookie(cookie))
	require.Equal(t, nethttp.StatusCreated, resp.StatusCode)
	resp.Body.Close()
	resp = doJSON(t, app, nethttp.MethodPost, "/api/missing-persons", casePayload("Bruno Costa"), withCookie(cookie))
	require.Equal(t, nethttp.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, app, nethttp.MethodGet, "/api/missing-persons?name=bruno", nil)
	require.Equal(t, nethttp.StatusOK, resp.StatusCode)

	var results []map[string]any
	decodeBody(t, resp, &results)
	require.Len(t, results, 1)
	assert.Equal(t, "Bruno Costa", results[0]["name"])
}

func TestCreateRequiresAuthentication(t *testing.T) {
	app := newTestApp(t)

	resp := doJSON(t, app, nethttp.MethodPost, "/api/missing-persons", casePayload("Ana Silva"))
	require.Equal(t, nethttp.StatusUnauthorized, resp.StatusCode)

	var body errorBody
	decodeBody(t, resp, &body)
	assert.Equal(t, "UNAUTHORIZED", body.Error.Code)
}

func TestCreateInvalidPayloadRejected(t *testing.T) {
	app := newTestApp(t)
	cookie, _, _ := registerUser(t, app, "asilva")

	resp := doJSON(t, app, nethttp.MethodPost, "/api/missing-persons", fiber.Map{
		"name": "Ana Silva",
		"age":  -3,
	}, withCookie(cookie))
	require.Equal(t, nethttp.StatusBadRequest, resp.StatusCode)

	var body errorBody
	decodeBody(t, resp, &body)
	assert.Equal(t, "VALIDATION_FAILED", body.Error.Code)
	assert.Contains(t, body.Error.Details, "age")
	assert.Contains(t, body.Error.Details, "lastLocation")
}

func TestUpdateByNonOwnerForbidden(t *testing.T) {
	app := newTestApp(t)
	ownerCookie, _, _ := registerUser(t, app, "owner")
	otherCookie, _, _ := registerUser(t, app, "other")

	resp := doJSON(t, app, nethttp.MethodPost, "/api/missing-persons", casePayload("Ana Silva"), withCookie(ownerCookie))
	require.Equal(t, nethttp.StatusCreated, resp.StatusCode)
	var created map[string]any
	decodeBody(t, resp, &created)
	id := int(created["id"].(float64))

	resp = doJSON(t, app, nethttp.MethodPut, fmt.Sprintf("/api/missing-persons/%d", id), casePayload("Hijacked"), withCookie(otherCookie))
	require.Equal(t, nethttp.StatusForbidden, resp.StatusCode)

	var body errorBody
	decodeBody(t, resp, &body)
	assert.Equal(t, "FORBIDDEN", body.Error.Code)

	resp = doJSON(t, app, nethttp.MethodGet, fmt.Sprintf("/api/missing-persons/%d", id), nil)
	var fetched map[string]any
	decodeBody(t, resp, &fetched)
	assert.Equal(t, "Ana Silva", fetched["name"])
}

func TestSuccessStoryFlipsCaseAndCountsInStatistics(t *testing.T) {
	app := newTestApp(t)
	cookie, _, _ := registerUser(t, app, "asilva")

	resp := doJSON(t, app, nethttp.MethodPost, "/api/missing-persons", casePayload("Ana Silva"), withCookie(cookie))
	require.Equal(t, nethttp.StatusCreated, resp.StatusCode)
	var created map[string]any
	decodeBody(t, resp, &created)
	id := int(created["id"].(float64))

	resp = doJSON(t, app, nethttp.MethodPost, "/api/success-stories", fiber.Map{
		"title":           "Reunited after two weeks",
		"description":     "Found safe at a relative's home.",
		"missingPersonId": id,
	}, withCookie(cookie))
	require.Equal(t, nethttp.StatusCreated, resp.StatusCode)
	var story map[string]any
	decodeBody(t, resp, &story)
	assert.Equal(t, float64(id), story["missingPersonId"])

	resp = doJSON(t, app, nethttp.MethodGet, fmt.Sprintf("/api/missing-persons/%d", id), nil)
	var fetched map[string]any
	decodeBody(t, resp, &fetched)
	assert.Equal(t, "found", fetched["status"])

	resp = doJSON(t, app, nethttp.MethodGet, "/api/statistics", nil)
	require.Equal(t, nethttp.StatusOK, resp.StatusCode)
	var stats map[string]any
	decodeBody(t, resp, &stats)
	assert.Equal(t, float64(1), stats["totalMissingPersons"])
	assert.Equal(t, float64(1), stats["foundPersons"])

	resp = doJSON(t, app, nethttp.MethodGet, "/api/success-stories", nil)
	require.Equal(t, nethttp.StatusOK, resp.StatusCode)
	var stories []map[string]any
	decodeBody(t, resp, &stories)
	require.Len(t, stories, 1)
	assert.Equal(t, "Reunited after two weeks", stories[0]["title"])
}

func TestSuccessStoryForUnknownCaseNotFound(t *testing.T) {
	app := newTestApp(t)
	cookie, _, _ := registerUser(t, app, "asilva")

	resp := doJSON(t, app, nethttp.MethodPost, "/api/success-stories", fiber.Map{
		"title":           "Reunited",
		"description":     "Found safe.",
		"missingPersonId": 42,
	}, withCookie(cookie))
	require.Equal(t, nethttp.StatusNotFound, resp.StatusCode)

	var body errorBody
	decodeBody(t, resp, &body)
	assert.Equal(t, "NOT_FOUND", body.Error.Code)
}

func TestBearerTokenAuthentication(t *testing.T) {
	app := newTestApp(t)
	_, token, userID := registerUser(t, app, "asilva")

	resp := doJSON(t, app, nethttp.MethodPost, "/api/missing-persons", casePayload("Ana Silva"), withBearer(token))
	require.Equal(t, nethttp.StatusCreated, resp.StatusCode)

	var created map[string]any
	decodeBody(t, resp, &created)
	assert.Equal(t, float64(userID), created["reportedBy"])

	resp = doJSON(t, app, nethttp.MethodGet, "/api/user", nil, withBearer(token))
	require.Equal(t, nethttp.StatusOK, resp.StatusCode)
	var me map[string]any
	decodeBody(t, resp, &me)
	assert.Equal(t, "asilva", me["username"])
}

func TestBearerTokenTamperedRejected(t *testing.T) {
	app := newTestApp(t)
	_, token, _ := registerUser(t, app, "asilva")

	resp := doJSON(t, app, nethttp.MethodGet, "/api/user", nil, withBearer(token+"x"))
	assert.Equal(t, nethttp.StatusUnauthorized, resp.StatusCode)
}

func TestLoginWrongPasswordUnauthorized(t *testing.T) {
	app := newTestApp(t)
	registerUser(t, app, "asilva")

	resp := doJSON(t, app, nethttp.MethodPost, "/api/login", fiber.Map{
		"username": "asilva",
		"password": "wrong",
	})
	require.Equal(t, nethttp.StatusUnauthorized, resp.StatusCode)

	var body errorBody
	decodeBody(t, resp, &body)
	assert.Equal(t, "UNAUTHORIZED", body.Error.Code)
}

func TestDuplicateUsernameConflict(t *testing.T) {
	app := newTestApp(t)
	registerUser(t, app, "asilva")

	resp := doJSON(t, app, nethttp.MethodPost, "/api/register", fiber.Map{
		"username": "asilva",
		"password": "another-pass",
		"email":    "second@example.com",
		"name":     "Second",
	})
	require.Equal(t, nethttp.StatusConflict, resp.StatusCode)

	var body errorBody
	decodeBody(t, resp, &body)
	assert.Equal(t, "CONFLICT", body.Error.Code)
}

func TestLogoutInvalidatesSession(t *testing.T) {
	app := newTestApp(t)
	cookie, _, _ := registerUser(t, app, "asilva")

	resp := doJSON(t, app, nethttp.MethodGet, "/api/user", nil, withCookie(cookie))
	require.Equal(t, nethttp.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, app, nethttp.MethodPost, "/api/logout", nil, withCookie(cookie))
	require.Equal(t, nethttp.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, app, nethttp.MethodGet, "/api/user", nil, withCookie(cookie))
	assert.Equal(t, nethttp.StatusUnauthorized, resp.StatusCode)
}
