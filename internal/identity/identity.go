package identity

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"carbon-connect/marketplace-backend/internal/ledger"
)

const callerKey = "identity.caller"

// Caller is the authenticated identity passed explicitly into every core
// operation.
type Caller struct {
	UserID uuid.UUID
	Role   ledger.Role
	Active bool
}

type claims struct {
	Role   string `json:"role"`
	Active bool   `json:"active"`
	jwt.RegisteredClaims
}

// Middleware authenticates the request from a Bearer token and stores the
// Caller in the gin context. Token issuance belongs to the auth collaborator;
// this only decodes.
func Middleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}

		var cl claims
		token, err := jwt.ParseWithClaims(strings.TrimPrefix(header, "Bearer "), &cl,
			func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
				}
				return []byte(secret), nil
			})
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		userID, err := uuid.Parse(cl.Subject)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid subject"})
			return
		}
		if !cl.Active {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "account inactive"})
			return
		}

		c.Set(callerKey, Caller{
			UserID: userID,
			Role:   ledger.Role(cl.Role),
			Active: cl.Active,
		})
		c.Next()
	}
}

// CallerFrom returns the authenticated caller stored by Middleware.
func CallerFrom(c *gin.Context) (Caller, bool) {
	v, ok := c.Get(callerKey)
	if !ok {
		return Caller{}, false
	}
	caller, ok := v.(Caller)
	return caller, ok
}
