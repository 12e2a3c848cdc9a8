package api

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"craftmarket/internal/blob"
	"craftmarket/internal/market"
	"craftmarket/internal/store"
)

func ListPluginsHandler(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		filter := store.ListFilter{
			Category: c.Query("category"),
			Sort:     c.DefaultQuery("sort", "newest"),
			Query:    c.Query("q"),
		}
		pkgs, err := st.ListPackages(c.Request.Context(), filter)
		if err != nil {
			renderError(c, err)
			return
		}
		c.JSON(http.StatusOK, pkgs)
	}
}

func GetPluginHandler(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseInt(c.Param("id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid plugin id"})
			return
		}
		detail, err := st.GetPackage(c.Request.Context(), id, currentUser(c))
		if err != nil {
			renderError(c, err)
			return
		}
		c.JSON(http.StatusOK, detail)
	}
}

func MyPluginsHandler(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid, ok := requireUser(c)
		if !ok {
			return
		}
		pkgs, err := st.ListPackagesByAuthor(c.Request.Context(), uid)
		if err != nil {
			renderError(c, err)
			return
		}
		c.JSON(http.StatusOK, pkgs)
	}
}

// CreatePluginHandler accepts a multipart form: package metadata plus the
// plugin jar and a thumbnail image. Files are uploaded to the blob store
// first; the catalog only ever records their keys.
func CreatePluginHandler(st *store.Store, blobs blob.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid, ok := requireUser(c)
		if !ok {
			return
		}

		price, err := strconv.ParseFloat(c.DefaultPostForm("price", "0"), 64)
		if err != nil {
			ve := market.NewValidationError()
			ve.Add("price", "must be a number")
			renderError(c, ve)
			return
		}

		blobKey, err := uploadFormFile(c, blobs, "pluginFile", "plugins")
		if err != nil {
			renderError(c, err)
			return
		}
		thumbKey, err := uploadFormFile(c, blobs, "thumbnailFile", "thumbnails")
		if err != nil {
			renderError(c, err)
			return
		}

		in := store.CreatePackageInput{
			Name:         c.PostForm("name"),
			Description:  c.PostForm("description"),
			Category:     c.PostForm("category"),
			Price:        price,
			Features:     strings.Join(c.PostFormArray("features"), "\n"),
			Requirements: c.PostForm("requirements"),
			ThumbnailKey: thumbKey,
			Version: store.VersionInput{
				VersionNumber:    c.DefaultPostForm("version", "1.0.0"),
				MinecraftVersion: c.PostForm("minecraftVersion"),
				BlobKey:          blobKey,
			},
		}
		pkg, err := st.CreatePackage(c.Request.Context(), uid, in)
		if err != nil {
			renderError(c, err)
			return
		}
		c.JSON(http.StatusCreated, pkg)
	}
}

func AddVersionHandler(st *store.Store, blobs blob.Store) gin.HandlerFunc {
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

		blobKey, err := uploadFormFile(c, blobs, "pluginFile", "plugins")
		if err != nil {
			renderError(c, err)
			return
		}

		in := store.VersionInput{
			VersionNumber:    c.PostForm("version"),
			Changelog:        c.PostForm("changelog"),
			MinecraftVersion: c.PostForm("minecraftVersion"),
			BlobKey:          blobKey,
		}
		ver, err := st.AddVersion(c.Request.Context(), id, uid, in)
		if err != nil {
			renderError(c, err)
			return
		}
		c.JSON(http.StatusCreated, ver)
	}
}

// uploadFormFile stores an uploaded file and returns its blob key. A missing
// file is not an error here; the store reports it together with the other
// validation failures.
func uploadFormFile(c *gin.Context, blobs blob.Store, field, prefix string) (string, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		return "", nil
	}
	f, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer f.Close()

	key := fmt.Sprintf("%s/%s-%s", prefix, uuid.NewString(), filepath.Base(fh.Filename))
	if _, err := blobs.Put(c.Request.Context(), key, f, fh.Header.Get("Content-Type")); err != nil {
		return "", err
	}
	return key, nil
}
