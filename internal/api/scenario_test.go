package api

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func uploadTestPlugin(t *testing.T, ts *testServer, token, name, price string) int64 {
	t.Helper()
	w := ts.doMultipart(t, "/api/plugins", token, map[string]string{
		"name":             name,
		"description":      "a test plugin",
		"category":         "Utility",
		"price":            price,
		"version":          "1.0.0",
		"minecraftVersion": "1.20",
	}, map[string]string{
		"pluginFile":    name + ".jar",
		"thumbnailFile": name + ".png",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	id, ok := decodeBody(t, w)["id"].(float64)
	require.True(t, ok)
	return int64(id)
}

// The full buyer journey: download denied before purchase, allowed after,
// counters move, one review allowed, a second one rejected.
func TestScenario_PurchaseDownloadReview(t *testing.T) {
	ts := newTestServer(t)
	_, authorTok := ts.seedUser(t, "authorA")
	_, buyerTok := ts.seedUser(t, "buyerB")

	pluginID := uploadTestPlugin(t, ts, authorTok, "EssentialsX", "4.99")
	path := "/api/plugins/" + itoa(pluginID)

	w := ts.doJSON(t, http.MethodGet, path+"/download", buyerTok, nil)
	assert.Equal(t, http.StatusForbidden, w.Code, "download before purchase is denied")

	w = ts.doJSON(t, http.MethodPost, "/api/purchases", buyerTok, gin.H{"pluginId": pluginID})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, 1, ts.charger.callCount())

	w = ts.doJSON(t, http.MethodGet, path+"/download", buyerTok, nil)
	require.Equal(t, http.StatusFound, w.Code)
	assert.Contains(t, w.Header().Get("Location"), "http://blobs.test/plugins/")

	w = ts.doJSON(t, http.MethodGet, path, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	detail := decodeBody(t, w)
	assert.Equal(t, float64(1), detail["downloadCount"])

	w = ts.doJSON(t, http.MethodPost, path+"/reviews", buyerTok, gin.H{
		"rating": 5, "comment": "great",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	body := decodeBody(t, w)
	assert.Equal(t, float64(5), body["averageRating"])
	assert.Equal(t, float64(1), body["reviewCount"])

	w = ts.doJSON(t, http.MethodPost, path+"/reviews", buyerTok, gin.H{
		"rating": 4, "comment": "still great",
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	// re-purchase is a benign no-op and never charges again
	w = ts.doJSON(t, http.MethodPost, "/api/purchases", buyerTok, gin.H{"pluginId": pluginID})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, ts.charger.callCount())
}

func TestPurchase_PaymentDeclined(t *testing.T) {
	ts := newTestServer(t)
	_, authorTok := ts.seedUser(t, "author")
	_, buyerTok := ts.seedUser(t, "buyer")
	pluginID := uploadTestPlugin(t, ts, authorTok, "Declined", "9.99")

	ts.charger.decline = true
	w := ts.doJSON(t, http.MethodPost, "/api/purchases", buyerTok, gin.H{"pluginId": pluginID})
	assert.Equal(t, http.StatusPaymentRequired, w.Code)

	// a declined charge grants nothing
	w = ts.doJSON(t, http.MethodGet, "/api/plugins/"+itoa(pluginID)+"/download", buyerTok, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestPurchase_FreePluginSkipsCharge(t *testing.T) {
	ts := newTestServer(t)
	_, authorTok := ts.seedUser(t, "author")
	_, buyerTok := ts.seedUser(t, "buyer")
	pluginID := uploadTestPlugin(t, ts, authorTok, "Freebie", "0")

	w := ts.doJSON(t, http.MethodPost, "/api/purchases", buyerTok, gin.H{"pluginId": pluginID})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Zero(t, ts.charger.callCount())
}

func TestPurchase_AuthorAlreadyOwns(t *testing.T) {
	ts := newTestServer(t)
	_, authorTok := ts.seedUser(t, "author")
	pluginID := uploadTestPlugin(t, ts, authorTok, "Own", "4.99")

	w := ts.doJSON(t, http.MethodPost, "/api/purchases", authorTok, gin.H{"pluginId": pluginID})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decodeBody(t, w)["alreadyOwned"])
	assert.Zero(t, ts.charger.callCount())
}

func TestCreatePlugin_ValidationAggregatesFields(t *testing.T) {
	ts := newTestServer(t)
	_, token := ts.seedUser(t, "author")

	w := ts.doMultipart(t, "/api/plugins", token, map[string]string{
		"name":     "",
		"category": "Bogus",
		"price":    "-3",
	}, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	fields, ok := decodeBody(t, w)["fields"].(map[string]interface{})
	require.True(t, ok, w.Body.String())
	for _, f := range []string{"name", "price", "category", "pluginFile", "thumbnailFile"} {
		assert.Contains(t, fields, f)
	}
}

func TestAddVersion_OnlyAuthor(t *testing.T) {
	ts := newTestServer(t)
	_, authorTok := ts.seedUser(t, "author")
	_, otherTok := ts.seedUser(t, "other")
	pluginID := uploadTestPlugin(t, ts, authorTok, "Versioned", "0")
	path := "/api/plugins/" + itoa(pluginID) + "/versions"

	w := ts.doMultipart(t, path, otherTok, map[string]string{"version": "1.1.0"},
		map[string]string{"pluginFile": "v11.jar"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = ts.doMultipart(t, path, authorTok, map[string]string{
		"version": "1.1.0", "changelog": "fixes", "minecraftVersion": "1.21",
	}, map[string]string{"pluginFile": "v11.jar"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "1.1.0", decodeBody(t, w)["versionNumber"])
}

func TestAnonymousAccess(t *testing.T) {
	ts := newTestServer(t)
	_, authorTok := ts.seedUser(t, "author")
	pluginID := uploadTestPlugin(t, ts, authorTok, "Public", "0")

	w := ts.doJSON(t, http.MethodGet, "/api/plugins", "", nil)
	assert.Equal(t, http.StatusOK, w.Code, "catalog browse needs no token")

	w = ts.doJSON(t, http.MethodGet, "/api/plugins/"+itoa(pluginID), "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = ts.doJSON(t, http.MethodGet, "/api/plugins/"+itoa(pluginID)+"/download", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = ts.doJSON(t, http.MethodPost, "/api/purchases", "", gin.H{"pluginId": pluginID})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = ts.doJSON(t, http.MethodPost, "/api/plugins/"+itoa(pluginID)+"/reviews", "", gin.H{
		"rating": 5, "comment": "nope",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestMyPluginsAndPurchases(t *testing.T) {
	ts := newTestServer(t)
	_, authorTok := ts.seedUser(t, "author")
	_, buyerTok := ts.seedUser(t, "buyer")
	pluginID := uploadTestPlugin(t, ts, authorTok, "Mine", "0")

	w := ts.doJSON(t, http.MethodGet, "/api/plugins/user", authorTok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Mine")

	w = ts.doJSON(t, http.MethodPost, "/api/purchases", buyerTok, gin.H{"pluginId": pluginID})
	require.Equal(t, http.StatusCreated, w.Code)

	w = ts.doJSON(t, http.MethodGet, "/api/purchases", buyerTok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), itoa(pluginID))
}

func TestGetPlugin_NotFound(t *testing.T) {
	ts := newTestServer(t)
	w := ts.doJSON(t, http.MethodGet, "/api/plugins/424242", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
