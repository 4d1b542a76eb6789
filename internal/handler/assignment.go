package handler

import (
	"net/http"

	"fulfillment-be/internal/assignment"
	"fulfillment-be/internal/mapper"
	"fulfillment-be/internal/utils"

	"github.com/go-chi/chi/v5"
)

type AssignmentHandler struct {
	svc assignment.Service
}

func NewAssignmentHandler(svc assignment.Service) *AssignmentHandler {
	return &AssignmentHandler{svc: svc}
}

type assignRequest struct {
	OfficerID string `json:"officerId"`
	Notes     string `json:"notes"`
}

type respondRequest struct {
	Decision string `json:"decision"`
	Reason   string `json:"reason"`
}

func (h *AssignmentHandler) AssignOrder(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	var req assignRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	o, err := h.svc.AssignOrder(r.Context(), chi.URLParam(r, "number"), req.OfficerID, req.Notes, actor.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, mapper.MapOrder(o))
}

func (h *AssignmentHandler) AutoAssignOrder(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.AutoAssignOrder(r.Context(), chi.URLParam(r, "number"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, mapper.MapOutcome(out))
}

func (h *AssignmentHandler) RespondToAssignment(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	var req respondRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	o, err := h.svc.RespondToAssignment(
		r.Context(),
		chi.URLParam(r, "number"),
		actor.UserID,
		assignment.Decision(req.Decision),
		req.Reason,
	)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, mapper.MapOrder(o))
}

func (h *AssignmentHandler) GetAssignmentStatus(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	st, err := h.svc.GetAssignmentStatus(r.Context(), chi.URLParam(r, "number"), actor)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, mapper.MapAssignment(st))
}

func (h *AssignmentHandler) ListOfficerWorkloads(w http.ResponseWriter, r *http.Request) {
	ws, err := h.svc.ListOfficerWorkloads(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, mapper.MapWorkloads(ws))
}

func (h *AssignmentHandler) ListOrdersNeedingManualIntervention(w http.ResponseWriter, r *http.Request) {
	orders, err := h.svc.ListOrdersNeedingManualIntervention(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, mapper.MapOrders(orders))
}
