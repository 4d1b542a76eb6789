package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"fulfillment-be/internal/apperr"
	"fulfillment-be/internal/logger"
	"fulfillment-be/internal/order"
	"fulfillment-be/internal/utils"

	"go.uber.org/zap"
)

const maxRequestBytes = 1 << 20

// writeError maps a domain error onto an HTTP status. Unknown errors are
// logged and hidden behind a generic 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		utils.WriteJSONError(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, apperr.ErrForbidden):
		utils.WriteJSONError(w, err.Error(), http.StatusForbidden)
	case errors.Is(err, apperr.ErrInvalidState):
		writeStateError(w, err)
	case errors.Is(err, apperr.ErrValidation):
		utils.WriteJSONError(w, err.Error(), http.StatusUnprocessableEntity)
	default:
		logger.FromCtx(r.Context()).Error("request failed",
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		utils.WriteJSONError(w, "internal server error", http.StatusInternalServerError)
	}
}

func writeStateError(w http.ResponseWriter, err error) {
	body := map[string]string{"error": err.Error()}
	var se *apperr.StateError
	if errors.As(err, &se) {
		body["currentState"] = se.Current
	}
	utils.WriteJSON(w, http.StatusBadRequest, body)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		utils.WriteJSONError(w, "invalid request body", http.StatusBadRequest)
		return false
	}
	return true
}

func actorFrom(r *http.Request) (order.Actor, bool) {
	id, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		return order.Actor{}, false
	}
	return order.Actor{UserID: id, Role: utils.GetUserRoleFromContext(r.Context())}, true
}

func requireActor(w http.ResponseWriter, r *http.Request) (order.Actor, bool) {
	actor, ok := actorFrom(r)
	if !ok {
		utils.WriteJSONError(w, "unauthorized", http.StatusUnauthorized)
	}
	return actor, ok
}
