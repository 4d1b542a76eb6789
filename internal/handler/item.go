package handler

import (
	"net/http"
	"strconv"

	"fulfillment-be/internal/mapper"
	"fulfillment-be/internal/order"
	"fulfillment-be/internal/utils"

	"github.com/go-chi/chi/v5"
)

type ItemHandler struct {
	svc order.ItemService
}

func NewItemHandler(svc order.ItemService) *ItemHandler {
	return &ItemHandler{svc: svc}
}

type itemStatusRequest struct {
	Status string `json:"status"`
	Note   string `json:"note"`
}

type bulkItemStatusRequest struct {
	Updates []struct {
		ItemID uint   `json:"itemId"`
		Status string `json:"status"`
		Note   string `json:"note"`
	} `json:"updates"`
}

func (h *ItemHandler) UpdateItemStatus(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	itemID, err := strconv.ParseUint(chi.URLParam(r, "itemID"), 10, 64)
	if err != nil {
		utils.WriteJSONError(w, "invalid item id", http.StatusBadRequest)
		return
	}
	var req itemStatusRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	it, err := h.svc.UpdateItemStatus(
		r.Context(),
		chi.URLParam(r, "number"),
		uint(itemID),
		order.ItemStatus(req.Status),
		req.Note,
		actor,
	)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, mapper.MapItem(*it))
}

func (h *ItemHandler) BulkUpdateItemStatuses(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	var req bulkItemStatusRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	updates := make([]order.ItemUpdate, 0, len(req.Updates))
	for _, u := range req.Updates {
		updates = append(updates, order.ItemUpdate{ItemID: u.ItemID, Status: order.ItemStatus(u.Status), Note: u.Note})
	}

	res, err := h.svc.BulkUpdateItemStatuses(r.Context(), chi.URLParam(r, "number"), updates, actor)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, mapper.MapBulkResult(res))
}
