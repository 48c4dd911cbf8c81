package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/foliohub/apiserver/internal/services"
	"github.com/foliohub/apiserver/internal/store"
	"github.com/foliohub/apiserver/internal/validate"
)

// AccountsHandler exposes the account lifecycle as a single action-dispatch
// endpoint, the shape the dashboard client has always spoken.
type AccountsHandler struct {
	accounts *services.AccountService
}

// NewAccountsHandler constructs an AccountsHandler.
func NewAccountsHandler(accounts *services.AccountService) *AccountsHandler {
	return &AccountsHandler{accounts: accounts}
}

// AccountsRouter registers the accounts endpoint on the given router.
func AccountsRouter(r chi.Router, accounts *services.AccountService) {
	handler := NewAccountsHandler(accounts)

	r.Post("/accounts", handler.Dispatch)
}

// AccountsRequest is the JSON body of every accounts action.
type AccountsRequest struct {
	Action          string `json:"action"`
	Username        string `json:"username"`
	Password        string `json:"password"`
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// Dispatch decodes the action body and routes it to the matching operation.
// Unknown actions answer with a logical failure, not a 400, matching the
// established client contract.
func (h *AccountsHandler) Dispatch(w http.ResponseWriter, r *http.Request) {
	var req AccountsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Action == "" {
		writeError(w, http.StatusBadRequest, "Invalid request")
		return
	}

	req.Username = strings.TrimSpace(req.Username)

	switch req.Action {
	case "register":
		h.register(w, r, req)
	case "login":
		h.login(w, r, req)
	case "changePassword":
		h.changePassword(w, r, req)
	case "deleteAccount":
		h.deleteAccount(w, r, req)
	default:
		writeFailure(w, "Invalid action")
	}
}

func requireCredentials(w http.ResponseWriter, username, password string) bool {
	if username == "" || password == "" {
		writeFailure(w, "Username and password are required")
		return false
	}
	if !validate.UsernameValid(username) {
		writeFailure(w, "Username can only contain letters, numbers, and underscores")
		return false
	}
	return true
}

func (h *AccountsHandler) register(w http.ResponseWriter, r *http.Request, req AccountsRequest) {
	if !requireCredentials(w, req.Username, req.Password) {
		return
	}

	err := h.accounts.Register(r.Context(), req.Username, req.Password)
	switch {
	case err == nil:
		writeSuccess(w, "Account created successfully")
	case errors.Is(err, store.ErrExists):
		writeFailure(w, "Username already exists")
	default:
		var verr *validate.Error
		if errors.As(err, &verr) {
			writeFailure(w, verr.Message)
			return
		}
		writeFailure(w, "Failed to create account")
	}
}

func (h *AccountsHandler) login(w http.ResponseWriter, r *http.Request, req AccountsRequest) {
	if !requireCredentials(w, req.Username, req.Password) {
		return
	}

	if err := h.accounts.Login(r.Context(), req.Username, req.Password); err != nil {
		// Unknown user, wrong password, and an unreadable index all look
		// the same to the caller.
		writeFailure(w, "Invalid username or password")
		return
	}
	writeSuccess(w, "Login successful")
}

func (h *AccountsHandler) changePassword(w http.ResponseWriter, r *http.Request, req AccountsRequest) {
	if req.Username == "" || req.CurrentPassword == "" || req.NewPassword == "" {
		writeFailure(w, "Username and password are required")
		return
	}
	if !validate.UsernameValid(req.Username) {
		writeFailure(w, "Username can only contain letters, numbers, and underscores")
		return
	}

	err := h.accounts.ChangePassword(r.Context(), req.Username, req.CurrentPassword, req.NewPassword)
	switch {
	case err == nil:
		writeSuccess(w, "Password changed successfully")
	case errors.Is(err, store.ErrNotFound):
		writeFailure(w, "User not found")
	case errors.Is(err, services.ErrPasswordMismatch):
		writeFailure(w, "Current password is incorrect")
	default:
		var verr *validate.Error
		if errors.As(err, &verr) {
			writeFailure(w, verr.Message)
			return
		}
		writeFailure(w, "Failed to change password")
	}
}

func (h *AccountsHandler) deleteAccount(w http.ResponseWriter, r *http.Request, req AccountsRequest) {
	if !requireCredentials(w, req.Username, req.Password) {
		return
	}

	err := h.accounts.DeleteAccount(r.Context(), req.Username, req.Password)
	switch {
	case err == nil:
		writeSuccess(w, "Account deleted successfully. Your data will be kept for 30 days for potential recovery.")
	case errors.Is(err, store.ErrNotFound):
		writeFailure(w, "User not found")
	case errors.Is(err, services.ErrPasswordMismatch):
		writeFailure(w, "Incorrect password")
	default:
		writeFailure(w, "Failed to delete account")
	}
}
