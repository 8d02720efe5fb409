package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	logger "github.com/ygfuyfffdf-max/v0-crypto-dashboard-design-sub016/logging"
)

// Context keys set by Authenticate.
const (
	UserIDKey     = "userID"
	UserGroupsKey = "userGroups"
)

// OperatorClaims are the claims carried by operator tokens.
type OperatorClaims struct {
	jwt.RegisteredClaims
	Groups   []string `json:"groups"`
	Username string   `json:"username,omitempty"`
}

// Authenticate verifies an HS256 bearer token and stores the subject and
// groups on the context.
func Authenticate(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := c.GetHeader("Authorization")
		if tokenString == "" {
			logger.Warn("No Authorization token provided", zap.String("path", c.Request.URL.Path))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		claims, err := ParseToken(tokenString, secret)
		if err != nil {
			logger.Warn("Rejected token", zap.Error(err), zap.String("ip", c.ClientIP()))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		c.Set(UserIDKey, claims.Subject)
		c.Set(UserGroupsKey, claims.Groups)
		c.Next()
	}
}

// GroupAuthMiddleware lets the request through when the authenticated
// caller belongs to at least one of requiredGroups.
func GroupAuthMiddleware(requiredGroups []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		groups, _ := c.Get(UserGroupsKey)
		userGroups, _ := groups.([]string)
		if !isUserInGroups(userGroups, requiredGroups) {
			logger.Warn("User does not have the required groups",
				zap.String("user", c.GetString(UserIDKey)),
				zap.Strings("required", requiredGroups))
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
			return
		}
		c.Next()
	}
}

func ParseToken(tokenString string, secret []byte) (*OperatorClaims, error) {
	tokenString = strings.TrimSpace(strings.TrimPrefix(tokenString, "Bearer "))
	if len(secret) == 0 {
		return nil, errors.New("no signing secret configured")
	}

	token, err := jwt.ParseWithClaims(tokenString, &OperatorClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*OperatorClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token or wrong claims type")
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("token has no subject")
	}
	return claims, nil
}

func isUserInGroups(userGroups, requiredGroups []string) bool {
	for _, group := range requiredGroups {
		for _, userGroup := range userGroups {
			if userGroup == group {
				return true
			}
		}
	}
	return false
}
