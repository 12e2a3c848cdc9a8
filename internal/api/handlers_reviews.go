package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"craftmarket/internal/store"
)

func CreateReviewHandler(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid, ok := requireUser(c)
		if !ok {
			return
		}
		id, err := strconv.ParseInt(c.Param("id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid plugin id"})
			return
		}
		var req struct {
			Rating  int    `json:"rating"`
			Comment string `json:"comment"`
		}
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "malformed request body"})
			return
		}

		review, err := st.SubmitReview(c.Request.Context(), uid, id, req.Rating, req.Comment)
		if err != nil {
			renderError(c, err)
			return
		}
		detail, err := st.GetPackage(c.Request.Context(), id, uid)
		if err != nil {
			renderError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{
			"review":        review,
			"averageRating": detail.AverageRating,
			"reviewCount":   detail.ReviewCount,
		})
	}
}
