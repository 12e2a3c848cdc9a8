package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"craftmarket/internal/blob"
	"craftmarket/internal/payment"
	"craftmarket/internal/store"
)

func SetupRouter(st *store.Store, blobs blob.Store, payments payment.Charger, signingKey []byte) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), RequestLogger(), AuthMiddleware(signingKey))

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	api := r.Group("/api")

	// identity
	api.POST("/auth/register", RegisterHandler(st))
	api.POST("/auth/login", LoginHandler(st, signingKey))
	api.GET("/auth/me", MeHandler(st))
	api.PUT("/users/profile", UpdateProfileHandler(st))
	api.PUT("/users/password", UpdatePasswordHandler(st))

	// catalog
	api.GET("/plugins", ListPluginsHandler(st))
	api.GET("/plugins/user", MyPluginsHandler(st))
	api.GET("/plugins/:id", GetPluginHandler(st))
	api.POST("/plugins", CreatePluginHandler(st, blobs))
	api.POST("/plugins/:id/versions", AddVersionHandler(st, blobs))

	// distribution
	api.GET("/plugins/:id/download", DownloadHandler(st, blobs))

	// entitlements
	api.POST("/purchases", CreatePurchaseHandler(st, payments))
	api.GET("/purchases", MyPurchasesHandler(st))

	// reviews
	api.POST("/plugins/:id/reviews", CreateReviewHandler(st))

	return r
}
