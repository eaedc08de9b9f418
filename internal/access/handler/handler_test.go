package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rfdist/internal/distribution/models"
	distservice "rfdist/internal/distribution/service"
	diststore "rfdist/internal/distribution/store"
	programmodels "rfdist/internal/program/models"
	progstore "rfdist/internal/program/store"
	usermodels "rfdist/internal/user/models"
	userstore "rfdist/internal/user/store"
	id "rfdist/pkg/domain"
	"rfdist/pkg/requestcontext"
)

type testEnv struct {
	router  chi.Router
	service *distservice.Service
	program *programmodels.Program
	user    *usermodels.User
}

func newTestEnv(t *testing.T, now time.Time) *testEnv {
	t.Helper()
	ctx := context.Background()

	programs := progstore.NewInMemoryStore()
	users := userstore.NewInMemoryStore()
	distributions := diststore.NewInMemoryStore()

	program, err := programmodels.NewProgram(
		id.ProgramID(uuid.New()), "warehouse-door-7", "",
		[]byte(`{"sectors":[{"block":1,"data":"ff00"}]}`),
		id.OperatorID(uuid.New()), now,
	)
	require.NoError(t, err)
	require.NoError(t, programs.Create(ctx, program))

	user, err := usermodels.NewUser(id.UserID(uuid.New()), "mlopez", "", "", now)
	require.NoError(t, err)
	require.NoError(t, users.Create(ctx, user))

	svc := distservice.New(distributions, programs, users)

	router := chi.NewRouter()
	New(svc, slog.Default()).Register(router)

	return &testEnv{router: router, service: svc, program: program, user: user}
}

func (e *testEnv) do(t *testing.T, method, path string, now time.Time) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	req = req.WithContext(requestcontext.WithTime(req.Context(), now))
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) issue(t *testing.T, now time.Time) *models.Distribution {
	t.Helper()
	d, err := e.service.Issue(requestcontext.WithTime(context.Background(), now), e.program.ID, e.user.ID)
	require.NoError(t, err)
	return d
}

type envelope struct {
	Success     bool            `json:"success"`
	Message     string          `json:"message"`
	ProgramName string          `json:"program_name"`
	SectorData  json.RawMessage `json:"sector_data"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&env))
	return env
}

func TestFetchProgram(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("valid token returns generic name and payload", func(t *testing.T) {
		env := newTestEnv(t, now)
		d := env.issue(t, now)

		rec := env.do(t, http.MethodGet, "/api/program/"+d.Token, now.Add(time.Hour))
		require.Equal(t, http.StatusOK, rec.Code)

		body := decode(t, rec)
		assert.True(t, body.Success)
		assert.Equal(t, "RF Access Programming", body.ProgramName)
		assert.JSONEq(t, string(env.program.SectorData), string(body.SectorData))
	})

	t.Run("unknown token is 404", func(t *testing.T) {
		env := newTestEnv(t, now)

		rec := env.do(t, http.MethodGet, "/api/program/bogus-token", now)
		require.Equal(t, http.StatusNotFound, rec.Code)

		body := decode(t, rec)
		assert.False(t, body.Success)
		assert.Equal(t, "invalid token", body.Message)
	})

	t.Run("expired token is 400", func(t *testing.T) {
		env := newTestEnv(t, now)
		d := env.issue(t, now)

		rec := env.do(t, http.MethodGet, "/api/program/"+d.Token, now.Add(models.TokenTTL+time.Minute))
		require.Equal(t, http.StatusBadRequest, rec.Code)

		body := decode(t, rec)
		assert.False(t, body.Success)
		assert.Equal(t, "program expired", body.Message)
	})

	t.Run("token whose program row is gone is 404", func(t *testing.T) {
		programs := progstore.NewInMemoryStore()
		users := userstore.NewInMemoryStore()
		distributions := diststore.NewInMemoryStore()

		d := models.New(
			id.DistributionID(uuid.New()),
			id.ProgramID(uuid.New()),
			id.UserID(uuid.New()),
			"dangling-token",
			now,
		)
		require.NoError(t, distributions.Create(context.Background(), d))

		router := chi.NewRouter()
		New(distservice.New(distributions, programs, users), slog.Default()).Register(router)

		req := httptest.NewRequest(http.MethodGet, "/api/program/dangling-token", nil)
		req = req.WithContext(requestcontext.WithTime(req.Context(), now))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusNotFound, rec.Code)
		body := decode(t, rec)
		assert.False(t, body.Success)
		assert.Equal(t, "program not found", body.Message)
	})

	t.Run("used token is 400", func(t *testing.T) {
		env := newTestEnv(t, now)
		d := env.issue(t, now)

		rec := env.do(t, http.MethodPost, "/api/programming-complete/"+d.Token, now)
		require.Equal(t, http.StatusOK, rec.Code)

		rec = env.do(t, http.MethodGet, "/api/program/"+d.Token, now)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "program already used", decode(t, rec).Message)
	})
}

func TestProgrammingComplete(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("completes and acknowledges", func(t *testing.T) {
		env := newTestEnv(t, now)
		d := env.issue(t, now)

		rec := env.do(t, http.MethodPost, "/api/programming-complete/"+d.Token, now)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, decode(t, rec).Success)
	})

	t.Run("repeat completion still succeeds", func(t *testing.T) {
		env := newTestEnv(t, now)
		d := env.issue(t, now)

		for i := 0; i < 2; i++ {
			rec := env.do(t, http.MethodPost, "/api/programming-complete/"+d.Token, now.Add(time.Duration(i)*time.Hour))
			require.Equal(t, http.StatusOK, rec.Code)
		}
	})

	t.Run("expired token still completes", func(t *testing.T) {
		env := newTestEnv(t, now)
		d := env.issue(t, now)

		rec := env.do(t, http.MethodPost, "/api/programming-complete/"+d.Token, now.Add(models.TokenTTL+time.Hour))
		require.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("unknown token is 404", func(t *testing.T) {
		env := newTestEnv(t, now)

		rec := env.do(t, http.MethodPost, "/api/programming-complete/bogus", now)
		require.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "invalid token", decode(t, rec).Message)
	})
}

func TestLifecycleOverHTTP(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	env := newTestEnv(t, now)
	d := env.issue(t, now)

	rec := env.do(t, http.MethodGet, "/api/program/"+d.Token, now.Add(23*time.Hour))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/programming-complete/"+d.Token, now.Add(23*time.Hour))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/program/"+d.Token, now.Add(23*time.Hour))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "program already used", decode(t, rec).Message)

	rec = env.do(t, http.MethodGet, "/api/program/bogus-token", now)
	require.Equal(t, http.StatusNotFound, rec.Code)
}
