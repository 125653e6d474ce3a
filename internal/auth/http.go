package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"ShopFront/pkg/kit"
)

const (
	maxBodyBytes   = 1 << 20
	minPasswordLen = 8
	tokenTTL       = 15 * time.Minute
)

type Server struct {
	Log   *zap.Logger
	Store UserStore
	JWT   *TokenMaker
}

type authResp struct {
	Token string  `json:"token"`
	User  Account `json:"user"`
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

type registerReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerReq
	if err := decodeJSON(w, r, &req); err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad json", map[string]any{"cause": err.Error()})
		return
	}

	req.Email = normalizeEmail(req.Email)
	req.Password = strings.TrimSpace(req.Password)

	if req.Email == "" || req.Password == "" {
		kit.WriteError(w, r, http.StatusBadRequest, "email/password required", nil)
		return
	}
	if len(req.Password) < minPasswordLen {
		kit.WriteError(w, r, http.StatusBadRequest, "password too short", map[string]any{"min_len": minPasswordLen})
		return
	}

	// Same default the storefront applies client-side.
	if req.Name == "" {
		req.Name = strings.SplitN(req.Email, "@", 2)[0]
	}

	id := "u_" + uuid.NewString()

	a, err := s.Store.Create(r.Context(), req.Email, req.Password, req.Name, RoleUser, id)
	if err != nil {
		if errors.Is(err, ErrEmailExists) {
			kit.WriteError(w, r, http.StatusConflict, ErrEmailExists.Error(), nil)
			return
		}
		s.Log.Error("create account", zap.Error(err))
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		return
	}

	// Registration logs the account in immediately.
	tok, err := s.JWT.New(a.ID, a.Email, a.Role, tokenTTL)
	if err != nil {
		s.Log.Error("token issue", zap.Error(err))
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		return
	}

	kit.WriteJSON(w, http.StatusCreated, authResp{Token: tok, User: a})
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginReq
	if err := decodeJSON(w, r, &req); err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad json", map[string]any{"cause": err.Error()})
		return
	}

	req.Email = normalizeEmail(req.Email)
	req.Password = strings.TrimSpace(req.Password)

	if req.Email == "" || req.Password == "" {
		kit.WriteError(w, r, http.StatusBadRequest, "email/password required", nil)
		return
	}

	a, err := s.Store.Verify(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			kit.WriteError(w, r, http.StatusUnauthorized, ErrInvalidCredentials.Error(), nil)
			return
		}
		s.Log.Error("verify", zap.Error(err))
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		return
	}
	if !a.Active {
		kit.WriteError(w, r, http.StatusForbidden, "account disabled", nil)
		return
	}

	tok, err := s.JWT.New(a.ID, a.Email, a.Role, tokenTTL)
	if err != nil {
		s.Log.Error("token issue", zap.Error(err))
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		return
	}

	kit.WriteJSON(w, http.StatusOK, authResp{Token: tok, User: a})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	id, _ := IdentityFromContext(r.Context())

	a, ok, err := s.Store.Get(r.Context(), id.ID)
	if err != nil {
		s.Log.Error("get account", zap.Error(err), zap.String("user_id", id.ID))
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		return
	}
	if !ok {
		// Token refers to an account that no longer exists.
		kit.WriteError(w, r, http.StatusUnauthorized, "unauthorized", nil)
		return
	}

	kit.WriteJSON(w, http.StatusOK, a)
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	id, _ := IdentityFromContext(r.Context())

	var patch AccountPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad json", map[string]any{"cause": err.Error()})
		return
	}

	// Only admins may change roles through the profile endpoint.
	if patch.Role != nil {
		if id.Role != RoleAdmin {
			patch.Role = nil
		} else if !ValidRole(NormalizeRole(*patch.Role)) {
			kit.WriteError(w, r, http.StatusBadRequest, "unknown role", nil)
			return
		}
	}

	a, err := s.Store.Update(r.Context(), id.ID, patch)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			kit.WriteError(w, r, http.StatusUnauthorized, "unauthorized", nil)
		case errors.Is(err, ErrEmailExists):
			kit.WriteError(w, r, http.StatusConflict, ErrEmailExists.Error(), nil)
		default:
			s.Log.Error("update account", zap.Error(err), zap.String("user_id", id.ID))
			kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		}
		return
	}

	kit.WriteJSON(w, http.StatusOK, a)
}

type changePasswordReq struct {
	Current string `json:"current"`
	Next    string `json:"next"`
}

func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	id, _ := IdentityFromContext(r.Context())

	var req changePasswordReq
	if err := decodeJSON(w, r, &req); err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad json", map[string]any{"cause": err.Error()})
		return
	}

	if len(strings.TrimSpace(req.Next)) < minPasswordLen {
		kit.WriteError(w, r, http.StatusBadRequest, "password too short", map[string]any{"min_len": minPasswordLen})
		return
	}

	err := s.Store.ChangePassword(r.Context(), id.ID, req.Current, strings.TrimSpace(req.Next))
	if err != nil {
		switch {
		case errors.Is(err, ErrWrongPassword):
			kit.WriteError(w, r, http.StatusBadRequest, ErrWrongPassword.Error(), nil)
		case errors.Is(err, ErrNotFound):
			kit.WriteError(w, r, http.StatusUnauthorized, "unauthorized", nil)
		default:
			s.Log.Error("change password", zap.Error(err), zap.String("user_id", id.ID))
			kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	out, err := s.Store.List(r.Context())
	if err != nil {
		s.Log.Error("list users", zap.Error(err))
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		return
	}
	kit.WriteJSON(w, http.StatusOK, out)
}

type setRoleReq struct {
	Role string `json:"role"`
}

func (s *Server) handleSetRole(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")

	var req setRoleReq
	if err := decodeJSON(w, r, &req); err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad json", map[string]any{"cause": err.Error()})
		return
	}

	role := NormalizeRole(req.Role)
	if !ValidRole(role) {
		kit.WriteError(w, r, http.StatusBadRequest, "unknown role", map[string]any{"role": req.Role})
		return
	}

	a, err := s.Store.SetRole(r.Context(), userID, role)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			kit.WriteError(w, r, http.StatusNotFound, "not found", map[string]any{"id": userID})
			return
		}
		s.Log.Error("set role", zap.Error(err), zap.String("user_id", userID))
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		return
	}

	kit.WriteJSON(w, http.StatusOK, a)
}

func (s *Server) handleToggleActive(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")

	a, err := s.Store.ToggleActive(r.Context(), userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			kit.WriteError(w, r, http.StatusNotFound, "not found", map[string]any{"id": userID})
			return
		}
		s.Log.Error("toggle active", zap.Error(err), zap.String("user_id", userID))
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		return
	}

	kit.WriteJSON(w, http.StatusOK, a)
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")

	if err := s.Store.Delete(r.Context(), userID); err != nil {
		if errors.Is(err, ErrNotFound) {
			kit.WriteError(w, r, http.StatusNotFound, "not found", map[string]any{"id": userID})
			return
		}
		s.Log.Error("delete user", zap.Error(err), zap.String("user_id", userID))
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
