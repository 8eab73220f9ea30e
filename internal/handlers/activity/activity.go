// internal/handlers/activity/activity.go
package activity

import (
	"net/http"

	"tably-service/internal/domain/activity"
	"tably-service/internal/pkg/response"
	service "tably-service/internal/service/activity"

	"github.com/gin-gonic/gin"
)

type ActivityHandler struct {
	activityService *service.Service
}

func NewActivityHandler(activityService *service.Service) *ActivityHandler {
	return &ActivityHandler{activityService: activityService}
}

// Append records one activity. Fire-and-forget: a well-formed request is
// always 202, storage trouble stays server-side.
func (h *ActivityHandler) Append(c *gin.Context) {
	customerID := c.Param("id")

	var req activity.AppendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", nil)
		return
	}

	err := h.activityService.Append(c.Request.Context(), customerID, req.DeviceID, req.BusinessID, req.Type, req.Payload)
	if err != nil {
		response.FromError(c, err, "invalid activity")
		return
	}

	response.Accepted(c, "activity recorded")
}

// List returns the customer's activity history, newest first.
func (h *ActivityHandler) List(c *gin.Context) {
	customerID := c.Param("id")
	businessID := c.Query("business_id")

	records, err := h.activityService.Query(c.Request.Context(), customerID, businessID)
	if err != nil {
		response.FromError(c, err, "failed to list activities")
		return
	}

	response.Success(c, http.StatusOK, "activities retrieved", activity.ListResponse{
		Activities: records,
		Total:      len(records),
	})
}

// ListOrders returns orders attributed to the customer.
func (h *ActivityHandler) ListOrders(c *gin.Context) {
	customerID := c.Param("id")
	businessID := c.Query("business_id")

	orders, err := h.activityService.ListOrders(c.Request.Context(), customerID, businessID)
	if err != nil {
		response.FromError(c, err, "failed to list orders")
		return
	}

	response.Success(c, http.StatusOK, "orders retrieved", orders)
}

// ListBookings returns bookings attributed to the customer.
func (h *ActivityHandler) ListBookings(c *gin.Context) {
	customerID := c.Param("id")
	businessID := c.Query("business_id")

	bookings, err := h.activityService.ListBookings(c.Request.Context(), customerID, businessID)
	if err != nil {
		response.FromError(c, err, "failed to list bookings")
		return
	}

	response.Success(c, http.StatusOK, "bookings retrieved", bookings)
}
