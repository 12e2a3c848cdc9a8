package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"craftmarket/internal/auth"
	"craftmarket/internal/market"
	"craftmarket/internal/store"
)

const minPasswordLen = 6

func RegisterHandler(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Username string `json:"username"`
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "malformed request body"})
			return
		}
		if len(req.Password) < minPasswordLen {
			ve := market.NewValidationError()
			ve.Add("password", "must be at least 6 characters")
			renderError(c, ve)
			return
		}
		hash, err := auth.HashPassword(req.Password)
		if err != nil {
			renderError(c, err)
			return
		}
		user, err := st.CreateUser(c.Request.Context(), req.Username, req.Email, hash)
		if err != nil {
			renderError(c, err)
			return
		}
		c.JSON(http.StatusCreated, user)
	}
}

func LoginHandler(st *store.Store, signingKey []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Username string `json:"username"`
			Password string `json:"password"`
		}
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "malformed request body"})
			return
		}
		user, err := st.GetUserByUsername(c.Request.Context(), req.Username)
		if err != nil || !auth.CheckPassword(user.Password, req.Password) {
			renderError(c, market.ErrInvalidCredentials)
			return
		}
		tok, err := auth.NewToken(signingKey, user.ID, auth.TokenTTL)
		if err != nil {
			renderError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"token": tok, "user": user})
	}
}

func MeHandler(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid, ok := requireUser(c)
		if !ok {
			return
		}
		user, err := st.GetUserByID(c.Request.Context(), uid)
		if err != nil {
			renderError(c, err)
			return
		}
		c.JSON(http.StatusOK, user)
	}
}
