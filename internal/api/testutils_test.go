package api_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/router"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/testhelpers"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const testImage = "data:image/png;base64,aGVsbG8="

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:             "test-secret",
		TokenTTL:              time.Hour,
		PageSize:              6,
		AllowAnonymousRecipes: true,
		CORSAllowedOrigins:    []string{"http://localhost:3000"},
	}
}

// testApp is the full router on a private sqlite database
type testApp struct {
	t      *testing.T
	db     *gorm.DB
	router *gin.Engine
	auth   service.IAuthService
}

func newTestApp(t *testing.T, configure ...func(*config.Config)) *testApp {
	t.Helper()
	cfg := testConfig()
	for _, fn := range configure {
		fn(cfg)
	}
	db := testhelpers.SetupTestDatabase(t)
	deps := router.NewDependencies(cfg, db, nil, nil)
	return &testApp{t: t, db: db, router: router.SetupRouter(deps), auth: deps.AuthService}
}

func (a *testApp) token(user *models.User) string {
	a.t.Helper()
	token, err := a.auth.GenerateToken(user)
	require.NoError(a.t, err)
	return token
}

func (a *testApp) do(method, path, token string, body any) *httptest.ResponseRecorder {
	a.t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(a.t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	a.router.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out), rr.Body.String())
	return out
}

func requireStatus(t *testing.T, rr *httptest.ResponseRecorder, status int) {
	t.Helper()
	require.Equal(t, status, rr.Code, rr.Body.String())
}
