package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/harsha33983/harshaflix/api"
	"github.com/harsha33983/harshaflix/services/accounts"
	"github.com/harsha33983/harshaflix/services/sessions"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	accounts *accounts.Service
	sessions *sessions.Service
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(accountsSvc *accounts.Service, sessionsSvc *sessions.Service) *AuthHandler {
	return &AuthHandler{
		accounts: accountsSvc,
		sessions: sessionsSvc,
	}
}

// CredentialsRequest is the body for login and signup.
type CredentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SessionResponse is returned on successful login or signup.
type SessionResponse struct {
	Token     string `json:"token"`
	ExpiresAt string `json:"expiresAt"`
	AccountID string `json:"accountId"`
	Email     string `json:"email"`
}

// AccountResponse represents account info response.
type AccountResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Signup registers a new account and opens a session for it.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req CredentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error": "invalid request body"}`, http.StatusBadRequest)
		return
	}

	account, err := h.accounts.Create(req.Email, req.Password)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, accounts.ErrEmailExists) {
			status = http.StatusConflict
		}
		writeJSONError(w, status, err.Error())
		return
	}

	session, err := h.sessions.Create(account.ID, r.Header.Get("User-Agent"), api.ClientIP(r))
	if err != nil {
		http.Error(w, `{"error": "failed to create session"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(SessionResponse{
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt.Format("2006-01-02T15:04:05Z"),
		AccountID: account.ID,
		Email:     account.Email,
	})
}

// Login authenticates a user and returns a session token.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req CredentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error": "invalid request body"}`, http.StatusBadRequest)
		return
	}

	account, err := h.accounts.Authenticate(req.Email, req.Password)
	if err != nil {
		writeJSONError(w, http.StatusUnauthorized, "invalid email or password")
		return
	}

	session, err := h.sessions.Create(account.ID, r.Header.Get("User-Agent"), api.ClientIP(r))
	if err != nil {
		http.Error(w, `{"error": "failed to create session"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(SessionResponse{
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt.Format("2006-01-02T15:04:05Z"),
		AccountID: account.ID,
		Email:     account.Email,
	})
}

// Logout invalidates the current session.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	token := extractBearerToken(r)
	if token == "" {
		http.Error(w, `{"error": "no session token"}`, http.StatusBadRequest)
		return
	}

	if err := h.sessions.Revoke(token); err != nil {
		// Session not found is OK - might already be expired
		if !errors.Is(err, sessions.ErrSessionNotFound) {
			http.Error(w, `{"error": "failed to revoke session"}`, http.StatusInternalServerError)
			return
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "logged out"})
}

// Me returns the current authenticated account info.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	token := extractBearerToken(r)
	if token == "" {
		http.Error(w, `{"error": "not authenticated"}`, http.StatusUnauthorized)
		return
	}

	session, err := h.sessions.Validate(token)
	if err != nil {
		writeJSONError(w, http.StatusUnauthorized, "invalid or expired session")
		return
	}

	account, ok := h.accounts.Get(session.AccountID)
	if !ok {
		http.Error(w, `{"error": "account not found"}`, http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(AccountResponse{ID: account.ID, Email: account.Email})
}

// Refresh extends the session expiration.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	token := extractBearerToken(r)
	if token == "" {
		http.Error(w, `{"error": "not authenticated"}`, http.StatusUnauthorized)
		return
	}

	session, err := h.sessions.Refresh(token)
	if err != nil {
		writeJSONError(w, http.StatusUnauthorized, "invalid or expired session")
		return
	}

	account, ok := h.accounts.Get(session.AccountID)
	if !ok {
		http.Error(w, `{"error": "account not found"}`, http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(SessionResponse{
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt.Format("2006-01-02T15:04:05Z"),
		AccountID: account.ID,
		Email:     account.Email,
	})
}

// ChangePasswordRequest represents password change request.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// ChangePassword changes the current account's password.
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	token := extractBearerToken(r)
	if token == "" {
		http.Error(w, `{"error": "not authenticated"}`, http.StatusUnauthorized)
		return
	}

	session, err := h.sessions.Validate(token)
	if err != nil {
		writeJSONError(w, http.StatusUnauthorized, "invalid or expired session")
		return
	}

	var req ChangePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error": "invalid request body"}`, http.StatusBadRequest)
		return
	}

	account, ok := h.accounts.Get(session.AccountID)
	if !ok {
		http.Error(w, `{"error": "account not found"}`, http.StatusNotFound)
		return
	}

	if _, err := h.accounts.Authenticate(account.Email, req.CurrentPassword); err != nil {
		writeJSONError(w, http.StatusUnauthorized, "current password is incorrect")
		return
	}

	if err := h.accounts.UpdatePassword(session.AccountID, req.NewPassword); err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "password changed"})
}

// ResetPasswordRequest asks for a temporary password by email.
type ResetPasswordRequest struct {
	Email string `json:"email"`
}

// ResetPassword replaces a forgotten password with a generated temporary one.
// The temporary password is returned in the response body; this deployment
// has no outbound mail.
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req ResetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error": "invalid request body"}`, http.StatusBadRequest)
		return
	}

	temp, err := h.accounts.ResetPassword(req.Email)
	if err != nil {
		if errors.Is(err, accounts.ErrAccountNotFound) {
			writeJSONError(w, http.StatusNotFound, "account not found")
			return
		}
		http.Error(w, `{"error": "failed to reset password"}`, http.StatusInternalServerError)
		return
	}

	// All open sessions are stale once the password changes.
	if account, ok := h.accounts.GetByEmail(req.Email); ok {
		h.sessions.RevokeAllForAccount(account.ID)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"temporaryPassword": temp})
}

// Options handles CORS preflight requests.
func (h *AuthHandler) Options(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// extractBearerToken extracts the bearer token from the Authorization header.
func extractBearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}

	return strings.TrimSpace(parts[1])
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
