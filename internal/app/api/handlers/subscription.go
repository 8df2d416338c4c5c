package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/connectd/billing/internal/app/service/authgate"
	"github.com/connectd/billing/internal/app/service/facade"
	"github.com/connectd/billing/pkg/types"
)

// OperationResponse is the flat response shape of the subscription surface.
type OperationResponse struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

type CancelRequest struct {
	SubscriptionID      string                     `json:"subscriptionId"`
	CancellationDetails *types.CancellationDetails `json:"cancellationDetails"`
}

type UpdatePlanRequest struct {
	SubscriptionID     string `json:"subscriptionId"`
	NewPriceID         string `json:"newPriceId"`
	ProrationDate      *int64 `json:"prorationDate"`
	BillingCycleAnchor *int64 `json:"billingCycleAnchor"`
}

type ReleaseScheduleRequest struct {
	SubscriptionID     string `json:"subscriptionId"`
	PreserveCancelDate bool   `json:"preserve_cancel_date"`
}

type ActivateRequest struct {
	Serial  string `json:"serial"`
	PriceID string `json:"priceId"`
}

func bearerToken(c *gin.Context) string {
	h := c.GetHeader("Authorization")
	token := strings.TrimPrefix(h, "Bearer ")
	if token == h {
		return ""
	}
	return token
}

func failJSON(c *gin.Context, status int, msg string) {
	c.JSON(status, OperationResponse{Success: false, Error: msg})
}

// writeOpResult maps façade results and error kinds onto HTTP statuses. A
// session-expired error becomes a distinct 401 so the caller knows to
// re-authenticate instead of retrying.
func writeOpResult(c *gin.Context, res *facade.Result, err error) {
	switch {
	case err == nil:
		c.JSON(http.StatusOK, res)
	case errors.Is(err, facade.ErrSessionExpired):
		failJSON(c, http.StatusUnauthorized, err.Error())
	case errors.Is(err, facade.ErrValidation):
		failJSON(c, http.StatusBadRequest, err.Error())
	default:
		failJSON(c, http.StatusInternalServerError, err.Error())
	}
}

// @Summary      Check subscription status
// @Description  Read-only status check by device serial number. Never creates state.
// @Tags         Subscription
// @Produce      json
// @Param        serial query string true "Device serial number"
// @Success      200  {object}  facade.CheckResult
// @Failure      400  {object}  handlers.OperationResponse
// @Router       /api/v1/subscription/check [get]
func ApiCheckSubscription(ops facade.Operations) gin.HandlerFunc {
	return func(c *gin.Context) {
		serial := c.Query("serial")
		if serial == "" {
			serial = c.Query("connectionId")
		}
		if serial == "" {
			failJSON(c, http.StatusBadRequest, "missing serial")
			return
		}
		res, err := ops.Check(c.Request.Context(), serial)
		if err != nil {
			writeOpResult(c, nil, err)
			return
		}
		c.JSON(http.StatusOK, res)
	}
}

// @Summary      Cancel subscription
// @Description  Cancels the caller's subscription, forwarding optional structured feedback to the active billing backend.
// @Tags         Subscription
// @Accept       json
// @Produce      json
// @Param        request body handlers.CancelRequest true "Cancel request"
// @Success      200  {object}  facade.Result
// @Failure      400  {object}  handlers.OperationResponse
// @Failure      401  {object}  handlers.OperationResponse
// @Router       /api/v1/subscription/cancel [post]
func ApiCancelSubscription(gate authgate.Gate, ops facade.Operations) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CancelRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			failJSON(c, http.StatusBadRequest, "malformed request body")
			return
		}
		if req.SubscriptionID == "" {
			failJSON(c, http.StatusBadRequest, "missing subscriptionId")
			return
		}
		token := bearerToken(c)
		if d := gate.AuthorizeSubscription(c.Request.Context(), req.SubscriptionID, token); !d.Authorized {
			failJSON(c, http.StatusUnauthorized, d.Reason)
			return
		}
		res, err := ops.Cancel(c.Request.Context(), &facade.CancelInput{
			SubscriptionID: req.SubscriptionID,
			Details:        req.CancellationDetails,
			BearerToken:    token,
		})
		writeOpResult(c, res, err)
	}
}

// @Summary      Update subscription plan
// @Tags         Subscription
// @Accept       json
// @Produce      json
// @Param        request body handlers.UpdatePlanRequest true "Plan update request"
// @Success      200  {object}  facade.Result
// @Failure      401  {object}  handlers.OperationResponse
// @Router       /api/v1/subscription/update_plan [post]
func ApiUpdatePlan(gate authgate.Gate, ops facade.Operations) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req UpdatePlanRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			failJSON(c, http.StatusBadRequest, "malformed request body")
			return
		}
		if req.SubscriptionID == "" {
			failJSON(c, http.StatusBadRequest, "missing subscriptionId")
			return
		}
		token := bearerToken(c)
		if d := gate.AuthorizeSubscription(c.Request.Context(), req.SubscriptionID, token); !d.Authorized {
			failJSON(c, http.StatusUnauthorized, d.Reason)
			return
		}
		res, err := ops.UpdatePlan(c.Request.Context(), &facade.UpdatePlanInput{
			SubscriptionID:     req.SubscriptionID,
			NewPriceID:         req.NewPriceID,
			ProrationDate:      req.ProrationDate,
			BillingCycleAnchor: req.BillingCycleAnchor,
			BearerToken:        token,
		})
		writeOpResult(c, res, err)
	}
}

// @Summary      Release pending schedule
// @Tags         Subscription
// @Accept       json
// @Produce      json
// @Param        request body handlers.ReleaseScheduleRequest true "Release request"
// @Success      200  {object}  facade.Result
// @Failure      401  {object}  handlers.OperationResponse
// @Router       /api/v1/subscription/release_schedule [post]
func ApiReleaseSchedule(gate authgate.Gate, ops facade.Operations) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ReleaseScheduleRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			failJSON(c, http.StatusBadRequest, "malformed request body")
			return
		}
		if req.SubscriptionID == "" {
			failJSON(c, http.StatusBadRequest, "missing subscriptionId")
			return
		}
		token := bearerToken(c)
		if d := gate.AuthorizeSubscription(c.Request.Context(), req.SubscriptionID, token); !d.Authorized {
			failJSON(c, http.StatusUnauthorized, d.Reason)
			return
		}
		res, err := ops.ReleaseSchedule(c.Request.Context(), &facade.ReleaseScheduleInput{
			SubscriptionID:     req.SubscriptionID,
			PreserveCancelDate: req.PreserveCancelDate,
			BearerToken:        token,
		})
		writeOpResult(c, res, err)
	}
}

// @Summary      Activate subscription for a paired device
// @Tags         Subscription
// @Accept       json
// @Produce      json
// @Param        request body handlers.ActivateRequest true "Activate request"
// @Success      200  {object}  facade.Result
// @Failure      401  {object}  handlers.OperationResponse
// @Router       /api/v1/subscription/activate [post]
func ApiActivateSubscription(gate authgate.Gate, ops facade.Operations) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ActivateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			failJSON(c, http.StatusBadRequest, "malformed request body")
			return
		}
		if req.Serial == "" {
			failJSON(c, http.StatusBadRequest, "missing serial")
			return
		}
		token := bearerToken(c)
		d := gate.AuthorizeSerial(c.Request.Context(), req.Serial, token)
		if !d.Authorized {
			failJSON(c, http.StatusUnauthorized, d.Reason)
			return
		}
		in := &facade.ActivateInput{Serial: req.Serial, PriceID: req.PriceID, BearerToken: token}
		if d.Claims != nil {
			in.CustomerID = d.Claims.CustomerID
		}
		res, err := ops.Activate(c.Request.Context(), in)
		writeOpResult(c, res, err)
	}
}

// @Summary      Product name for a subscription
// @Tags         Subscription
// @Produce      json
// @Param        subscriptionId query string true "Provider subscription id"
// @Success      200  {object}  facade.Result
// @Failure      401  {object}  handlers.OperationResponse
// @Router       /api/v1/subscription/product_name [get]
func ApiProductName(gate authgate.Gate, ops facade.Operations) gin.HandlerFunc {
	return func(c *gin.Context) {
		subID := c.Query("subscriptionId")
		if subID == "" {
			failJSON(c, http.StatusBadRequest, "missing subscriptionId")
			return
		}
		token := bearerToken(c)
		if d := gate.AuthorizeSubscription(c.Request.Context(), subID, token); !d.Authorized {
			failJSON(c, http.StatusUnauthorized, d.Reason)
			return
		}
		res, err := ops.ProductName(c.Request.Context(), subID, token)
		writeOpResult(c, res, err)
	}
}

func RegisterSubscriptionRoutes(r gin.IRouter, gate authgate.Gate, ops facade.Operations) {
	r.GET("/check", ApiCheckSubscription(ops))
	r.POST("/cancel", ApiCancelSubscription(gate, ops))
	r.DELETE("/cancel", ApiCancelSubscription(gate, ops))
	r.POST("/update_plan", ApiUpdatePlan(gate, ops))
	r.POST("/release_schedule", ApiReleaseSchedule(gate, ops))
	r.POST("/activate", ApiActivateSubscription(gate, ops))
	r.GET("/product_name", ApiProductName(gate, ops))
}
