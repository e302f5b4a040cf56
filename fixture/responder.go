// Package fixture simulates the FarmVine backend during development: an
// http.RoundTripper that answers API calls from canned data with a fixed
// artificial latency. The Dispatcher is pointed at a Responder through its
// transport option and calling code never notices the difference.
package fixture

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	session "github.com/farmvine/go-session"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	defaultPageLimit = 20
	defaultLatency   = 500 * time.Millisecond
	defaultTokenTTL  = 24 * time.Hour
)

// defaultSigningKey signs development tokens. Real key material never
// reaches this package; the client treats tokens as opaque anyway.
var defaultSigningKey = []byte("farmvine-dev-fixtures")

// apiPrefix strips any versioned API prefix before routing.
var apiPrefix = regexp.MustCompile(`^/api(?:/v\d+)?`)

// resourceRoutes are tried in order; first match wins. The trailing
// segment, when present, is treated as an entity id.
var resourceRoutes = []struct {
	resource string
	pattern  *regexp.Regexp
}{
	{ResourceProducts, regexp.MustCompile(`(?:^|/)products(?:/([^/?]+))?/?$`)},
	{ResourceOrders, regexp.MustCompile(`(?:^|/)orders(?:/([^/?]+))?/?$`)},
	{ResourceVisits, regexp.MustCompile(`(?:^|/)visits(?:/([^/?]+))?/?$`)},
	{ResourceFarmers, regexp.MustCompile(`(?:^|/)farmers(?:/([^/?]+))?/?$`)},
}

// Responder answers API requests from the fixture catalog. The session
// identity lives in its own slot, separate from the catalog and from the
// host's SessionStore; profile writes go through an explicit sync hook.
type Responder struct {
	catalog    *Catalog
	latency    time.Duration
	onMiss     MissPolicy
	signingKey []byte
	tokenTTL   time.Duration
	now        func() time.Time
	logger     session.Logger

	mu           sync.Mutex
	identity     *session.User
	syncIdentity func(*session.User)
}

var _ http.RoundTripper = (*Responder)(nil)

// ResponderOption customizes Responder construction.
type ResponderOption func(*Responder)

// WithLatency sets the artificial delay applied to every request.
func WithLatency(latency time.Duration) ResponderOption {
	return func(r *Responder) {
		if latency >= 0 {
			r.latency = latency
		}
	}
}

// WithMissPolicy controls single-entity lookup misses. MissNotFound is the
// default; demo installs opt into MissFirstRecord explicitly.
func WithMissPolicy(policy MissPolicy) ResponderOption {
	return func(r *Responder) {
		if policy != "" {
			r.onMiss = policy
		}
	}
}

// WithSigningKey overrides the dev-token signing key.
func WithSigningKey(key []byte) ResponderOption {
	return func(r *Responder) {
		if len(key) > 0 {
			r.signingKey = key
		}
	}
}

// WithClock injects a custom clock (useful for tests).
func WithClock(clock func() time.Time) ResponderOption {
	return func(r *Responder) {
		if clock != nil {
			r.now = clock
		}
	}
}

// WithIdentity seeds the identity slot, typically from the host's
// SessionStore at startup so a persisted dev session resumes.
func WithIdentity(user *session.User) ResponderOption {
	return func(r *Responder) {
		r.identity = user
	}
}

// WithIdentitySync sets the hook called after every identity write. Hosts
// use it to mirror profile edits back into their SessionStore; the slot
// itself never doubles as the session record.
func WithIdentitySync(fn func(*session.User)) ResponderOption {
	return func(r *Responder) {
		r.syncIdentity = fn
	}
}

// WithResponderLogger overrides the logger.
func WithResponderLogger(logger session.Logger) ResponderOption {
	return func(r *Responder) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewResponder loads the embedded catalog and returns a ready transport.
func NewResponder(opts ...ResponderOption) (*Responder, error) {
	catalog, err := NewCatalog()
	if err != nil {
		return nil, err
	}

	r := &Responder{
		catalog:    catalog,
		latency:    defaultLatency,
		onMiss:     MissNotFound,
		signingKey: defaultSigningKey,
		tokenTTL:   defaultTokenTTL,
		now:        time.Now,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}

	return r, nil
}

// Catalog exposes the fixture collections for test setup.
func (r *Responder) Catalog() *Catalog {
	return r.catalog
}

// RoundTrip implements http.RoundTripper.
func (r *Responder) RoundTrip(req *http.Request) (*http.Response, error) {
	if r.latency > 0 {
		select {
		case <-req.Context().Done():
			return nil, req.Context().Err()
		case <-time.After(r.latency):
		}
	}

	path := apiPrefix.ReplaceAllString(req.URL.Path, "")

	switch {
	case strings.Contains(path, "/auth"):
		return r.handleAuth(req, path)
	case strings.Contains(path, "upload"):
		return r.handleUpload(req)
	}

	for _, route := range resourceRoutes {
		match := route.pattern.FindStringSubmatch(path)
		if match == nil {
			continue
		}
		return r.handleResource(req, route.resource, match[1])
	}

	if r.logger != nil {
		r.logger.Warn("fixture: no handler for %s %s", req.Method, path)
	}
	return jsonResponse(req, http.StatusNotFound, envelope("no fixture handler for "+path))
}

func (r *Responder) handleResource(req *http.Request, resource, id string) (*http.Response, error) {
	switch req.Method {
	case http.MethodGet:
		if id != "" {
			record, ok := r.catalog.Find(resource, id, r.onMiss)
			if !ok {
				return jsonResponse(req, http.StatusNotFound, envelope(resource+" not found"))
			}
			return jsonResponse(req, http.StatusOK, record)
		}

		page, limit := pageParams(req)
		return jsonResponse(req, http.StatusOK, r.catalog.List(resource, page, limit))

	case http.MethodPost:
		body, err := decodeBody(req)
		if err != nil {
			return jsonResponse(req, http.StatusUnprocessableEntity, envelope("request body is not valid JSON"))
		}
		return jsonResponse(req, http.StatusCreated, r.catalog.Create(resource, body))

	case http.MethodPut, http.MethodPatch:
		body, err := decodeBody(req)
		if err != nil {
			return jsonResponse(req, http.StatusUnprocessableEntity, envelope("request body is not valid JSON"))
		}
		record, ok := r.catalog.Update(resource, id, body)
		if !ok {
			return jsonResponse(req, http.StatusNotFound, envelope(resource+" not found"))
		}
		return jsonResponse(req, http.StatusOK, record)

	case http.MethodDelete:
		// Reported as success; fixture data is retained so demo
		// collections never drain.
		return jsonResponse(req, http.StatusOK, map[string]any{"success": true})

	default:
		return jsonResponse(req, http.StatusMethodNotAllowed, envelope("method not supported"))
	}
}

func (r *Responder) handleUpload(req *http.Request) (*http.Response, error) {
	if req.Method != http.MethodPost {
		return jsonResponse(req, http.StatusMethodNotAllowed, envelope("method not supported"))
	}

	return jsonResponse(req, http.StatusOK, map[string]any{
		"image_url": "https://cdn.farmvine.dev/fixtures/" + uuid.NewString() + ".jpg",
	})
}

func pageParams(req *http.Request) (int, int) {
	query := req.URL.Query()

	page, err := strconv.Atoi(query.Get("page"))
	if err != nil || page < 1 {
		page = 1
	}

	limit, err := strconv.Atoi(query.Get("limit"))
	if err != nil || limit < 1 {
		limit = defaultPageLimit
	}

	return page, limit
}

func decodeBody(req *http.Request) (Record, error) {
	if req.Body == nil {
		return Record{}, nil
	}
	defer req.Body.Close()

	raw, err := io.ReadAll(req.Body)
	if err != nil {
		return nil, err
	}

	body := Record{}
	if len(raw) == 0 {
		return body, nil
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, err
	}
	return body, nil
}

func envelope(message string) map[string]any {
	return map[string]any{"message": message}
}

func jsonResponse(req *http.Request, status int, payload any) (*http.Response, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		raw = []byte(`{"message":"fixture serialization failure"}`)
		status = http.StatusInternalServerError
	}

	header := http.Header{}
	header.Set("Content-Type", "application/json")

	return &http.Response{
		StatusCode:    status,
		Status:        http.StatusText(status),
		Header:        header,
		Body:          io.NopCloser(bytes.NewReader(raw)),
		ContentLength: int64(len(raw)),
		Request:       req,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
	}, nil
}

// mintToken issues a dev HS256 token carrying the user id and active role
// with an expiry the client can decode locally.
func (r *Responder) mintToken(user *session.User, role session.Role) (string, error) {
	now := r.now()
	claims := jwt.MapClaims{
		"sub":  user.ID,
		"role": string(role),
		"iat":  jwt.NewNumericDate(now),
		"exp":  jwt.NewNumericDate(now.Add(r.tokenTTL)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(r.signingKey)
}
