package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"craftmarket/internal/blob"
	"craftmarket/internal/store"
)

// DownloadHandler serves the distribution gate. The entitlement check and the
// counter bump happen atomically in the store; the handler only translates
// the granted blob reference into a redirect.
func DownloadHandler(st *store.Store, blobs blob.Store) gin.HandlerFunc {
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
		ver, err := st.RequestDownload(c.Request.Context(), uid, id, c.Query("version"))
		if err != nil {
			renderError(c, err)
			return
		}
		c.Redirect(http.StatusFound, blobs.URL(ver.BlobKey))
	}
}
