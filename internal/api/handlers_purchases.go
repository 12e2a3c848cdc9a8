package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"craftmarket/internal/payment"
	"craftmarket/internal/store"
)

// CreatePurchaseHandler confirms the charge with the payment provider and
// only then records the entitlement. Re-purchases are benign no-ops: the
// author case and the existing-purchase case both return the current state
// without charging again.
func CreatePurchaseHandler(st *store.Store, payments payment.Charger) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid, ok := requireUser(c)
		if !ok {
			return
		}
		var req struct {
			PluginID int64 `json:"pluginId"`
		}
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "malformed request body"})
			return
		}

		detail, err := st.GetPackage(c.Request.Context(), req.PluginID, uid)
		if err != nil {
			renderError(c, err)
			return
		}
		if detail.Owned {
			var existing interface{}
			if purchases, err := st.ListPurchases(c.Request.Context(), uid); err == nil {
				for _, p := range purchases {
					if p.PackageID == req.PluginID {
						existing = p
						break
					}
				}
			}
			c.JSON(http.StatusOK, gin.H{"alreadyOwned": true, "purchase": existing})
			return
		}

		if detail.Price > 0 {
			user, err := st.GetUserByID(c.Request.Context(), uid)
			if err != nil {
				renderError(c, err)
				return
			}
			// the reference id lets the provider deduplicate retried charges
			_, err = payments.Charge(c.Request.Context(), payment.ChargeRequest{
				ReferenceID: fmt.Sprintf("plugin-%d-user-%d", req.PluginID, uid),
				Amount:      detail.Price,
				Email:       user.Email,
				Comments:    fmt.Sprintf("Purchase of %s", detail.Name),
			})
			if err != nil {
				renderError(c, err)
				return
			}
		}

		purchase, created, err := st.Grant(c.Request.Context(), uid, req.PluginID)
		if err != nil {
			renderError(c, err)
			return
		}
		status := http.StatusCreated
		if !created {
			status = http.StatusOK
		}
		c.JSON(status, purchase)
	}
}

func MyPurchasesHandler(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid, ok := requireUser(c)
		if !ok {
			return
		}
		purchases, err := st.ListPurchases(c.Request.Context(), uid)
		if err != nil {
			renderError(c, err)
			return
		}
		c.JSON(http.StatusOK, purchases)
	}
}
