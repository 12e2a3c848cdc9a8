package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"craftmarket/internal/auth"
	"craftmarket/internal/market"
	"craftmarket/internal/store"
)

func UpdateProfileHandler(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid, ok := requireUser(c)
		if !ok {
			return
		}
		var req struct {
			Username string `json:"username"`
			Email    string `json:"email"`
		}
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "malformed request body"})
			return
		}
		user, err := st.UpdateProfile(c.Request.Context(), uid, req.Username, req.Email)
		if err != nil {
			renderError(c, err)
			return
		}
		c.JSON(http.StatusOK, user)
	}
}

func UpdatePasswordHandler(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid, ok := requireUser(c)
		if !ok {
			return
		}
		var req struct {
			CurrentPassword string `json:"currentPassword"`
			NewPassword     string `json:"newPassword"`
		}
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "malformed request body"})
			return
		}
		if len(req.NewPassword) < minPasswordLen {
			ve := market.NewValidationError()
			ve.Add("newPassword", "must be at least 6 characters")
			renderError(c, ve)
			return
		}
		user, err := st.GetUserByID(c.Request.Context(), uid)
		if err != nil {
			renderError(c, err)
			return
		}
		if !auth.CheckPassword(user.Password, req.CurrentPassword) {
			renderError(c, market.ErrWrongPassword)
			return
		}
		hash, err := auth.HashPassword(req.NewPassword)
		if err != nil {
			renderError(c, err)
			return
		}
		if err := st.UpdatePassword(c.Request.Context(), uid, hash); err != nil {
			renderError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
