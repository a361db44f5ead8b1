package middleware

import (
	"net/http"
	"os"
	"strings"

	"croppo/internal/permission"
	"croppo/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// identityKey is the gin context key the authenticated identity is stored under.
const identityKey = "identity"

func GetJWTSecret() []byte {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		if os.Getenv("GIN_MODE") == "release" {
			panic("FATAL: JWT_SECRET environment variable is required in production mode")
		}
		secret = "default_super_secret_key" // Development fallback only, DO NOT use in production
	}
	return []byte(secret)
}

// SetTokenCookies sets access_token and refresh_token as HttpOnly cookies
func SetTokenCookies(c *gin.Context, accessToken, refreshToken string) {
	// Production (cross-origin): SameSiteNoneMode + Secure=true
	// Development (same-site):   SameSiteLaxMode  + Secure=false
	sameSite := http.SameSiteLaxMode
	secure := false
	if os.Getenv("GIN_MODE") == "release" {
		sameSite = http.SameSiteNoneMode
		secure = true
	}

	c.SetSameSite(sameSite)
	// access_token: 24h, path=/, domain="", secure, HttpOnly
	c.SetCookie("access_token", accessToken, 3600*24, "/", "", secure, true)
	// refresh_token: 7 days, path=/, domain="", secure, HttpOnly
	c.SetCookie("refresh_token", refreshToken, 3600*24*7, "/", "", secure, true)
}

// ClearTokenCookies removes access_token and refresh_token cookies
func ClearTokenCookies(c *gin.Context) {
	sameSite := http.SameSiteLaxMode
	secure := false
	if os.Getenv("GIN_MODE") == "release" {
		sameSite = http.SameSiteNoneMode
		secure = true
	}

	c.SetSameSite(sameSite)
	c.SetCookie("access_token", "", -1, "/", "", secure, true)
	c.SetCookie("refresh_token", "", -1, "/", "", secure, true)
}

// identityFromToken parses and validates the JWT, returning the identity it
// carries.
func identityFromToken(tokenString string) (*permission.Identity, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return GetJWTSecret(), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, jwt.ErrTokenUnverifiable
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, jwt.ErrTokenInvalidClaims
	}

	sub, _ := claims["sub"].(string)
	id, err := uuid.Parse(sub)
	if err != nil {
		return nil, jwt.ErrTokenInvalidClaims
	}

	name, _ := claims["name"].(string)
	role, _ := claims["role"].(string)
	active, _ := claims["active"].(bool)

	return &permission.Identity{
		ID:     id,
		Name:   name,
		Role:   permission.Role(role),
		Active: active,
	}, nil
}

// extractToken reads the access token from the cookie or the Authorization
// header.
func extractToken(c *gin.Context) (string, bool) {
	tokenString, err := c.Cookie("access_token")
	if err == nil && tokenString != "" {
		return tokenString, true
	}

	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", false
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", false
	}
	return parts[1], true
}

// Authenticate validates the JWT and stores the identity in the gin context.
func Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, ok := extractToken(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Authorization is missing"))
			return
		}

		identity, err := identityFromToken(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid token: "+err.Error()))
			return
		}
		if !identity.Active {
			c.AbortWithStatusJSON(http.StatusForbidden, response.Error(http.StatusForbidden, "Account is inactive"))
			return
		}

		c.Set(identityKey, identity)
		c.Next()
	}
}

// CurrentIdentity returns the authenticated identity from the gin context,
// or nil when the request is unauthenticated.
func CurrentIdentity(c *gin.Context) *permission.Identity {
	v, ok := c.Get(identityKey)
	if !ok {
		return nil
	}
	identity, _ := v.(*permission.Identity)
	return identity
}

// RequirePermission validates the JWT and checks the static permission
// matrix for the given module/action. Admin passes through its wildcard
// entry; unknown roles fail closed.
func RequirePermission(module permission.Module, action permission.Action) gin.HandlerFunc {
	authenticate := Authenticate()
	return func(c *gin.Context) {
		authenticate(c)
		if c.IsAborted() {
			return
		}

		gate := permission.NewGate(CurrentIdentity(c))
		if gate.Cannot(module, action) {
			c.AbortWithStatusJSON(http.StatusForbidden, response.Error(http.StatusForbidden,
				"Access denied: missing permission '"+action.String()+"' on '"+module.String()+"'"))
			return
		}

		c.Next()
	}
}

// RequireRole validates the JWT and checks if the user's role exists in the
// allowedRoles list. Admin always passes.
func RequireRole(allowedRoles ...permission.Role) gin.HandlerFunc {
	authenticate := Authenticate()
	return func(c *gin.Context) {
		authenticate(c)
		if c.IsAborted() {
			return
		}

		identity := CurrentIdentity(c)
		if identity.Role != permission.RoleAdmin {
			roleAllowed := false
			for _, role := range allowedRoles {
				if identity.Role == role {
					roleAllowed = true
					break
				}
			}
			if !roleAllowed {
				c.AbortWithStatusJSON(http.StatusForbidden, response.Error(http.StatusForbidden, "Access denied: insufficient permissions"))
				return
			}
		}

		c.Next()
	}
}

// RequireApprover validates the JWT and requires approve rights on the
// approval-requests module. Equivalent to RequirePermission on
// approvalRequests/approve; kept as a named middleware because the approval
// routes read better with it.
func RequireApprover() gin.HandlerFunc {
	return RequirePermission(permission.ModuleApprovalRequests, permission.ActionApprove)
}
