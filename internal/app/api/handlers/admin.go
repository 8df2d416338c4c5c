package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/connectd/billing/internal/app/service/eventlog"
	"github.com/connectd/billing/internal/app/service/substore"
	"github.com/connectd/billing/pkg/response"
)

type PairDeviceRequest struct {
	ConnectionID   string `json:"connection_id"`
	SerialNumber   string `json:"serial_number"`
	OwnerAccountID string `json:"owner_account_id"`
}

type UnpairDeviceRequest struct {
	ConnectionID string `json:"connection_id"`
}

// @Summary      Pair Device (Admin)
// @Description  Records a device pairing so serial-based authorization can resolve the owning account.
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        request body handlers.PairDeviceRequest true "Pairing request"
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/admin/pair_device [post]
func ApiPairDevice(store substore.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req PairDeviceRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		if req.ConnectionID == "" || req.SerialNumber == "" || req.OwnerAccountID == "" {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, "missing connection_id or serial_number or owner_account_id"))
			return
		}
		pairing, err := store.PairDevice(c.Request.Context(), req.ConnectionID, req.SerialNumber, req.OwnerAccountID)
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(pairing))
	}
}

// @Summary      Unpair Device (Admin)
// @Description  Closes the active pairing for a connection id.
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        request body handlers.UnpairDeviceRequest true "Unpair request"
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/admin/unpair_device [post]
func ApiUnpairDevice(store substore.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req UnpairDeviceRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		if req.ConnectionID == "" {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, "missing connection_id"))
			return
		}
		if err := store.UnpairDevice(c.Request.Context(), req.ConnectionID); err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT[any](nil))
	}
}

// @Summary      List Webhook Events (Admin)
// @Description  Retrieves a paginated and filterable list of recorded webhook deliveries.
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        request body eventlog.ScanRequest true "List request with filters, pagination, and sorting"
// @Success      200  {object}  handlers.RespListWebhookEvents
// @Router       /api/v1/admin/list_webhook_events [post]
func ApiListWebhookEvents(svc *eventlog.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req eventlog.ScanRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		res, err := svc.Scan(c.Request.Context(), &req)
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(res))
	}
}

func RegisterAdminRoutes(r gin.IRouter, store substore.Store, events *eventlog.Service) {
	r.POST("/pair_device", ApiPairDevice(store))
	r.POST("/unpair_device", ApiUnpairDevice(store))
	r.POST("/list_webhook_events", ApiListWebhookEvents(events))
}
