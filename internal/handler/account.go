package handler

import (
	"errors"
	"net/http"

	"fulfillment-be/internal/mapper"
	"fulfillment-be/internal/user"
	"fulfillment-be/internal/utils"
)

type AccountHandler struct {
	svc          user.Service
	secureCookie bool
}

func NewAccountHandler(svc user.Service, secureCookie bool) *AccountHandler {
	return &AccountHandler{svc: svc, secureCookie: secureCookie}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type createAccountRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	Role            string `json:"role"`
	MaxActiveOrders int    `json:"maxActiveOrders"`
}

// Login returns a bearer token and also sets it as the access_token cookie.
func (h *AccountHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	sess, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if errors.Is(err, user.ErrInvalidCredentials) {
		utils.WriteJSONError(w, err.Error(), http.StatusUnauthorized)
		return
	}
	if err != nil {
		writeError(w, r, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "access_token",
		Value:    sess.Token,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	utils.WriteJSON(w, http.StatusOK, mapper.MapSession(sess))
}

func (h *AccountHandler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	var req createAccountRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	u, err := h.svc.CreateAccount(r.Context(), user.CreateParams{
		Name:            req.Name,
		Email:           req.Email,
		Password:        req.Password,
		Role:            req.Role,
		MaxActiveOrders: req.MaxActiveOrders,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, mapper.MapUser(u))
}
