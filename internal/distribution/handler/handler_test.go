package handler

import (
	"bytes"
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
		id.ProgramID(uuid.New()), "side-gate", "",
		[]byte(`{"sectors":[]}`), id.OperatorID(uuid.New()), now,
	)
	require.NoError(t, err)
	require.NoError(t, programs.Create(ctx, program))

	user, err := usermodels.NewUser(id.UserID(uuid.New()), "kchen", "", "", now)
	require.NoError(t, err)
	require.NoError(t, users.Create(ctx, user))

	svc := distservice.New(distributions, programs, users)

	router := chi.NewRouter()
	New(svc, slog.Default()).Register(router)

	return &testEnv{router: router, program: program, user: user}
}

func (e *testEnv) post(t *testing.T, body any, now time.Time) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/distributions", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req = req.WithContext(requestcontext.WithTime(req.Context(), now))
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func TestHandleIssue(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("issues and returns the token", func(t *testing.T) {
		env := newTestEnv(t, now)

		rec := env.post(t, map[string]string{
			"program_id": env.program.ID.String(),
			"user_id":    env.user.ID.String(),
		}, now)
		require.Equal(t, http.StatusCreated, rec.Code)

		var resp struct {
			Token     string    `json:"token"`
			ExpiresAt time.Time `json:"expires_at"`
		}
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.NotEmpty(t, resp.Token)
		assert.Equal(t, now.Add(24*time.Hour), resp.ExpiresAt.UTC())
	})

	t.Run("malformed program id is 400", func(t *testing.T) {
		env := newTestEnv(t, now)

		rec := env.post(t, map[string]string{
			"program_id": "not-a-uuid",
			"user_id":    env.user.ID.String(),
		}, now)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown user is 404", func(t *testing.T) {
		env := newTestEnv(t, now)

		rec := env.post(t, map[string]string{
			"program_id": env.program.ID.String(),
			"user_id":    uuid.NewString(),
		}, now)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("invalid JSON body is 400", func(t *testing.T) {
		env := newTestEnv(t, now)

		req := httptest.NewRequest(http.MethodPost, "/distributions", bytes.NewReader([]byte("{")))
		rec := httptest.NewRecorder()
		env.router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHandleList(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	env := newTestEnv(t, now)

	rec := env.post(t, map[string]string{
		"program_id": env.program.ID.String(),
		"user_id":    env.user.ID.String(),
	}, now)
	require.Equal(t, http.StatusCreated, rec.Code)

	// List well past expiry: the stored status is still pending but the
	// operator view derives expired.
	req := httptest.NewRequest(http.MethodGet, "/distributions", nil)
	req = req.WithContext(requestcontext.WithTime(req.Context(), now.Add(25*time.Hour)))
	listRec := httptest.NewRecorder()
	env.router.ServeHTTP(listRec, req)
	require.Equal(t, http.StatusOK, listRec.Code)

	var resp struct {
		Distributions []struct {
			Status string `json:"status"`
			Token  string `json:"token"`
		} `json:"distributions"`
	}
	require.NoError(t, json.NewDecoder(listRec.Body).Decode(&resp))
	require.Len(t, resp.Distributions, 1)
	assert.Equal(t, "expired", resp.Distributions[0].Status)
	assert.Empty(t, resp.Distributions[0].Token, "listing must not leak tokens")
}
