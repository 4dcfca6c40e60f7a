package identity

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carbon-connect/marketplace-backend/internal/ledger"
)

const testSecret = "unit-test-secret"

func signToken(t *testing.T, secret string, subject string, role string, active bool, expiresAt time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Role:   role,
		Active: active,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	})
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func testRouter() (*gin.Engine, *Caller) {
	gin.SetMode(gin.TestMode)
	captured := &Caller{}
	router := gin.New()
	router.Use(Middleware(testSecret))
	router.GET("/whoami", func(c *gin.Context) {
		caller, ok := CallerFrom(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		*captured = caller
		c.Status(http.StatusOK)
	})
	return router, captured
}

func perform(router *gin.Engine, authorization string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	return recorder
}

func TestMiddlewareAcceptsValidToken(t *testing.T) {
	router, captured := testRouter()
	userID := uuid.New()
	token := signToken(t, testSecret, userID.String(), "seller", true, time.Now().Add(time.Hour))

	recorder := perform(router, "Bearer "+token)

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, userID, captured.UserID)
	assert.Equal(t, ledger.RoleSeller, captured.Role)
	assert.True(t, captured.Active)
}

func TestMiddlewareRejectsMissingHeader(t *testing.T) {
	router, _ := testRouter()

	recorder := perform(router, "")

	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}

func TestMiddlewareRejectsWrongSecret(t *testing.T) {
	router, _ := testRouter()
	token := signToken(t, "other-secret", uuid.NewString(), "buyer", true, time.Now().Add(time.Hour))

	recorder := perform(router, "Bearer "+token)

	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}

func TestMiddlewareRejectsExpiredToken(t *testing.T) {
	router, _ := testRouter()
	token := signToken(t, testSecret, uuid.NewString(), "buyer", true, time.Now().Add(-time.Hour))

	recorder := perform(router, "Bearer "+token)

	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}

func TestMiddlewareRejectsInactiveAccount(t *testing.T) {
	router, _ := testRouter()
	token := signToken(t, testSecret, uuid.NewString(), "buyer", false, time.Now().Add(time.Hour))

	recorder := perform(router, "Bearer "+token)

	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}

func TestMiddlewareRejectsBadSubject(t *testing.T) {
	router, _ := testRouter()
	token := signToken(t, testSecret, "not-a-uuid", "buyer", true, time.Now().Add(time.Hour))

	recorder := perform(router, "Bearer "+token)

	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}
