package fixture

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	session "github.com/farmvine/go-session"
	"github.com/google/uuid"
)

func (r *Responder) handleAuth(req *http.Request, path string) (*http.Response, error) {
	switch {
	case strings.HasSuffix(path, "/auth/login"):
		return r.handleLogin(req)
	case strings.HasSuffix(path, "/auth/register"):
		return r.handleRegister(req)
	case strings.HasSuffix(path, "/auth/me"):
		return r.handleMe(req)
	case strings.HasSuffix(path, "/auth/profile"):
		return r.handleProfile(req)
	case strings.HasSuffix(path, "/auth/add-role"):
		return r.handleAddRole(req)
	case strings.HasSuffix(path, "/auth/switch-role"):
		return r.handleSwitchRole(req)
	case strings.HasSuffix(path, "/auth/logout"):
		return jsonResponse(req, http.StatusOK, map[string]any{"success": true})
	default:
		return jsonResponse(req, http.StatusNotFound, envelope("no fixture auth handler for "+path))
	}
}

// handleLogin accepts any credentials. When an identity was seeded it is
// returned as-is; otherwise a demo buyer is synthesized from the phone
// number so every dev session has someone to be.
func (r *Responder) handleLogin(req *http.Request) (*http.Response, error) {
	body, err := decodeBody(req)
	if err != nil {
		return jsonResponse(req, http.StatusUnprocessableEntity, envelope("request body is not valid JSON"))
	}

	r.mu.Lock()
	user := r.identity
	if user == nil {
		user = demoUser(str(body["phone_number"]), r.now())
		r.identity = user
	}
	r.writeIdentityLocked(user)
	r.mu.Unlock()

	token, err := r.mintToken(user, user.DefaultRole())
	if err != nil {
		return jsonResponse(req, http.StatusInternalServerError, envelope("could not issue token"))
	}

	return jsonResponse(req, http.StatusOK, session.AuthResult{Token: token, User: user})
}

// handleRegister mirrors the backend's roles requirement so client-side
// validation gaps still surface the server's field errors in dev mode.
func (r *Responder) handleRegister(req *http.Request) (*http.Response, error) {
	body, err := decodeBody(req)
	if err != nil {
		return jsonResponse(req, http.StatusUnprocessableEntity, envelope("request body is not valid JSON"))
	}

	roles := roleList(body["roles"])
	if len(roles) == 0 {
		return jsonResponse(req, http.StatusUnprocessableEntity, map[string]any{
			"message": "registration failed",
			"errors":  map[string][]string{"roles": {"at least one role is required"}},
		})
	}

	now := r.now()
	user := &session.User{
		ID:              "usr-" + uuid.NewString(),
		FullName:        str(body["full_name"]),
		Email:           str(body["email"]),
		Phone:           str(body["phone_number"]),
		Roles:           roles,
		Region:          str(body["region"]),
		DeliveryAddress: str(body["delivery_address"]),
		CreatedAt:       &now,
		UpdatedAt:       &now,
	}
	mergeDetail(body, "farm_detail", &user.FarmDetail)
	mergeDetail(body, "officer_detail", &user.OfficerDetail)

	r.mu.Lock()
	r.identity = user
	r.writeIdentityLocked(user)
	r.mu.Unlock()

	token, err := r.mintToken(user, user.DefaultRole())
	if err != nil {
		return jsonResponse(req, http.StatusInternalServerError, envelope("could not issue token"))
	}

	return jsonResponse(req, http.StatusCreated, session.AuthResult{Token: token, User: user})
}

func (r *Responder) handleMe(req *http.Request) (*http.Response, error) {
	r.mu.Lock()
	user := r.identity
	r.mu.Unlock()

	if user == nil {
		return jsonResponse(req, http.StatusUnauthorized, envelope("no active session"))
	}
	return jsonResponse(req, http.StatusOK, user)
}

// handleProfile merges the update into the identity slot, never into the
// catalog or the host's session record; the sync hook carries it outward.
func (r *Responder) handleProfile(req *http.Request) (*http.Response, error) {
	if req.Method != http.MethodPut && req.Method != http.MethodPatch {
		return jsonResponse(req, http.StatusMethodNotAllowed, envelope("method not supported"))
	}

	body, err := decodeBody(req)
	if err != nil {
		return jsonResponse(req, http.StatusUnprocessableEntity, envelope("request body is not valid JSON"))
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.identity == nil {
		return jsonResponse(req, http.StatusUnauthorized, envelope("no active session"))
	}

	updated, err := mergeUser(r.identity, body, r.now())
	if err != nil {
		return jsonResponse(req, http.StatusUnprocessableEntity, envelope("profile payload could not be applied"))
	}

	r.identity = updated
	r.writeIdentityLocked(updated)

	return jsonResponse(req, http.StatusOK, updated)
}

func (r *Responder) handleAddRole(req *http.Request) (*http.Response, error) {
	body, err := decodeBody(req)
	if err != nil {
		return jsonResponse(req, http.StatusUnprocessableEntity, envelope("request body is not valid JSON"))
	}

	role := session.Role(str(body["role"]))
	if !session.IsValidRole(role) {
		return jsonResponse(req, http.StatusUnprocessableEntity, map[string]any{
			"message": "role grant failed",
			"errors":  map[string][]string{"role": {"unknown role"}},
		})
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.identity == nil {
		return jsonResponse(req, http.StatusUnauthorized, envelope("no active session"))
	}

	if !r.identity.HasRole(role) {
		r.identity.Roles = append(r.identity.Roles, role)
	}

	if data, ok := body["role_data"].(map[string]any); ok {
		field := "farm_detail"
		if role == session.RoleOfficer {
			field = "officer_detail"
		}
		updated, err := mergeUser(r.identity, Record{field: data}, r.now())
		if err == nil {
			r.identity = updated
		}
	} else {
		now := r.now()
		r.identity.UpdatedAt = &now
	}

	r.writeIdentityLocked(r.identity)
	return jsonResponse(req, http.StatusOK, r.identity)
}

// handleSwitchRole acknowledges the switch and reissues a token naming the
// new role, exercising the client's replace-token-wholesale path.
func (r *Responder) handleSwitchRole(req *http.Request) (*http.Response, error) {
	body, err := decodeBody(req)
	if err != nil {
		return jsonResponse(req, http.StatusUnprocessableEntity, envelope("request body is not valid JSON"))
	}

	role := session.Role(str(body["role"]))

	r.mu.Lock()
	user := r.identity
	r.mu.Unlock()

	if user == nil {
		return jsonResponse(req, http.StatusUnauthorized, envelope("no active session"))
	}
	if !user.HasRole(role) {
		return jsonResponse(req, http.StatusForbidden, envelope("role is not assigned to this account"))
	}

	token, err := r.mintToken(user, role)
	if err != nil {
		return jsonResponse(req, http.StatusInternalServerError, envelope("could not issue token"))
	}

	return jsonResponse(req, http.StatusOK, map[string]any{"success": true, "token": token})
}

func (r *Responder) writeIdentityLocked(user *session.User) {
	if r.syncIdentity != nil {
		r.syncIdentity(user)
	}
}

func demoUser(phone string, now time.Time) *session.User {
	if phone == "" {
		phone = "+233200000001"
	}
	return &session.User{
		ID:        "usr-" + uuid.NewString(),
		FullName:  "Demo Buyer",
		Phone:     phone,
		Roles:     []session.Role{session.RoleBuyer},
		Region:    "Greater Accra",
		CreatedAt: &now,
		UpdatedAt: &now,
	}
}

// mergeUser applies a partial JSON update to a user through a map round
// trip so unknown keys land in place and typed fields stay typed.
func mergeUser(user *session.User, update Record, now time.Time) (*session.User, error) {
	raw, err := json.Marshal(user)
	if err != nil {
		return nil, err
	}

	base := Record{}
	if err := json.Unmarshal(raw, &base); err != nil {
		return nil, err
	}

	for key, value := range update {
		base[key] = value
	}
	base["updated_at"] = now.Format(time.RFC3339)

	merged, err := json.Marshal(base)
	if err != nil {
		return nil, err
	}

	out := &session.User{}
	if err := json.Unmarshal(merged, out); err != nil {
		return nil, err
	}
	return out, nil
}

func mergeDetail(body Record, key string, dst any) {
	data, ok := body[key].(map[string]any)
	if !ok {
		return
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return
	}
	_ = json.Unmarshal(raw, dst)
}

func str(v any) string {
	s, _ := v.(string)
	return s
}

func roleList(v any) []session.Role {
	switch roles := v.(type) {
	case []any:
		out := make([]session.Role, 0, len(roles))
		for _, role := range roles {
			if s, ok := role.(string); ok && s != "" {
				out = append(out, session.Role(s))
			}
		}
		return out
	case []string:
		out := make([]session.Role, 0, len(roles))
		for _, role := range roles {
			out = append(out, session.Role(role))
		}
		return out
	default:
		return nil
	}
}
