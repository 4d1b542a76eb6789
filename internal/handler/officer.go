package handler

import (
	"net/http"

	"fulfillment-be/internal/mapper"
	"fulfillment-be/internal/officer"
	"fulfillment-be/internal/utils"
)

type OfficerHandler struct {
	svc officer.Service
}

func NewOfficerHandler(svc officer.Service) *OfficerHandler {
	return &OfficerHandler{svc: svc}
}

type availabilityRequest struct {
	AvailabilityStatus string `json:"availabilityStatus"`
	MaxActiveOrders    *int   `json:"maxActiveOrders"`
}

// UpdateAvailability changes the calling officer's own availability.
func (h *OfficerHandler) UpdateAvailability(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	var req availabilityRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	o, err := h.svc.UpdateAvailability(
		r.Context(),
		actor.UserID,
		officer.AvailabilityStatus(req.AvailabilityStatus),
		req.MaxActiveOrders,
	)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, mapper.MapOfficer(o))
}
