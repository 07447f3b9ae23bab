package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/GTDGit/gtd_market/internal/utils"
	"github.com/GTDGit/gtd_market/pkg/account"
)

const actorKey = "actor"

// Authenticator resolves a bearer token to an actor.
type Authenticator interface {
	Authenticate(token string) (account.Actor, error)
}

// AuthMiddleware attaches the calling actor to the request context.
type AuthMiddleware struct {
	auth Authenticator
}

// NewAuthMiddleware constructs a new AuthMiddleware.
func NewAuthMiddleware(auth Authenticator) *AuthMiddleware {
	return &AuthMiddleware{auth: auth}
}

// Optional lets guests through. A token that is present but invalid is
// still rejected so a stale session is noticed by the client.
func (m *AuthMiddleware) Optional() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			c.Set(actorKey, account.Guest())
			c.Next()
			return
		}
		m.authenticate(c, token)
	}
}

// Required rejects guests with 401.
func (m *AuthMiddleware) Required() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			utils.Error(c, 401, "UNAUTHORIZED", "Missing authorization header")
			c.Abort()
			return
		}
		m.authenticate(c, token)
	}
}

func (m *AuthMiddleware) authenticate(c *gin.Context, token string) {
	actor, err := m.auth.Authenticate(token)
	if err != nil {
		utils.Error(c, 401, "INVALID_TOKEN", "Invalid or expired token")
		c.Abort()
		return
	}
	c.Set(actorKey, actor)
	c.Set("user_id", actor.ID)
	c.Next()
}

// bearerToken reads the Authorization header. Event streams cannot set
// headers, so a token query parameter is accepted as well.
func bearerToken(c *gin.Context) (string, bool) {
	if h := c.GetHeader("Authorization"); h != "" {
		parts := strings.SplitN(h, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
			return "", false
		}
		return strings.TrimSpace(parts[1]), true
	}
	if t := c.Query("token"); t != "" {
		return t, true
	}
	return "", false
}

// GetActor returns the actor set by AuthMiddleware, or a guest.
func GetActor(c *gin.Context) account.Actor {
	v, ok := c.Get(actorKey)
	if !ok {
		return account.Guest()
	}
	actor, _ := v.(account.Actor)
	return actor
}
