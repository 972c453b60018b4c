package main

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const (
	operatorName = "operator"
	tokenTTL     = 24 * time.Hour
)

var errInvalidCredentials = errors.New("invalid credentials")

// checkOperatorPassword compares password against the configured bcrypt hash.
func checkOperatorPassword(hash []byte, password string) error {
	if len(hash) == 0 {
		return errInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(hash, []byte(password)); err != nil {
		return errInvalidCredentials
	}
	return nil
}

func issueToken(secret []byte, now time.Time) (string, time.Time, error) {
	exp := now.Add(tokenTTL)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"username": operatorName,
		"role":     operatorName,
		"exp":      exp.Unix(),
	})
	s, err := token.SignedString(secret)
	return s, exp, err
}

func jwtAuthMiddleware(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if len(authHeader) < 8 || authHeader[:7] != "Bearer " {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid Authorization header"})
			return
		}
		token, err := jwt.Parse(authHeader[7:], func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrInvalidKeyType
			}
			return secret, nil
		})
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid claims"})
			return
		}
		role, _ := claims["role"].(string)
		if role != operatorName {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "operator role required"})
			return
		}
		username, _ := claims["username"].(string)
		c.Set("username", username)
		c.Set("role", role)
		c.Next()
	}
}

// requireOperator guards calibration writes. Without a configured password
// hash the routes stay open, matching a single-operator local setup.
func (a *app) requireOperator() gin.HandlerFunc {
	if len(a.operatorHash) == 0 {
		return func(c *gin.Context) { c.Next() }
	}
	return jwtAuthMiddleware(a.jwtSecret)
}

func (a *app) loginHandler(c *gin.Context) {
	if len(a.operatorHash) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "operator login not configured"})
		return
	}
	var req struct {
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := checkOperatorPassword(a.operatorHash, req.Password); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}
	tokenString, exp, err := issueToken(a.jwtSecret, time.Now())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "login successful", "token": tokenString, "expires_at": exp.UTC()})
}
