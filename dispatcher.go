package session

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
	"github.com/google/uuid"
)

// ProgressFunc receives upload progress as (sent, total) byte counts.
type ProgressFunc func(sent, total int64)

// UploadFile is a single file part for upload endpoints.
type UploadFile struct {
	Field    string
	Filename string
	Content  io.Reader
}

// Dispatcher is the single chokepoint every outbound call passes through.
// It attaches the bearer token when one exists, classifies non-2xx
// responses into the fixed error taxonomy, and fires the global
// unauthorized hook on any 401, regardless of the call site.
type Dispatcher struct {
	baseURL string
	prefix  string
	client  *http.Client
	tokens  *TokenStore
	logger  Logger
	debug   bool

	// onUnauthorized runs before the classified 401 error is returned.
	// It is global session teardown; local error handling at the call
	// site cannot suppress it.
	onUnauthorized func()
}

// DispatcherOption customizes Dispatcher construction.
type DispatcherOption func(*Dispatcher)

// WithTransport swaps the underlying RoundTripper. Development mode passes
// a fixture.Responder here; calling code never notices the difference.
func WithTransport(rt http.RoundTripper) DispatcherOption {
	return func(d *Dispatcher) {
		if rt != nil {
			d.client.Transport = rt
		}
	}
}

// WithRequestTimeout sets the fixed overall request timeout.
func WithRequestTimeout(timeout time.Duration) DispatcherOption {
	return func(d *Dispatcher) {
		if timeout > 0 {
			d.client.Timeout = timeout
		}
	}
}

// WithUnauthorizedHandler sets the global 401 hook.
func WithUnauthorizedHandler(fn func()) DispatcherOption {
	return func(d *Dispatcher) {
		d.onUnauthorized = fn
	}
}

// WithDispatcherLogger overrides the logger.
func WithDispatcherLogger(logger Logger) DispatcherOption {
	return func(d *Dispatcher) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithDebug enables request/response body logging.
func WithDebug(debug bool) DispatcherOption {
	return func(d *Dispatcher) {
		d.debug = debug
	}
}

// NewDispatcher returns a Dispatcher for the given API origin.
func NewDispatcher(cfg *Config, tokens *TokenStore, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		prefix:  cfg.APIPrefix,
		tokens:  tokens,
		logger:  defLogger{},
		client: &http.Client{
			Timeout: cfg.RequestTimeout,
		},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(d)
		}
	}

	return d
}

// Get issues a GET request and decodes the response into out.
func (d *Dispatcher) Get(ctx context.Context, path string, out any) error {
	return d.do(ctx, http.MethodGet, path, nil, out)
}

// Post issues a POST request with a JSON body.
func (d *Dispatcher) Post(ctx context.Context, path string, body, out any) error {
	return d.do(ctx, http.MethodPost, path, body, out)
}

// Put issues a PUT request with a JSON body.
func (d *Dispatcher) Put(ctx context.Context, path string, body, out any) error {
	return d.do(ctx, http.MethodPut, path, body, out)
}

// Patch issues a PATCH request with a JSON body.
func (d *Dispatcher) Patch(ctx context.Context, path string, body, out any) error {
	return d.do(ctx, http.MethodPatch, path, body, out)
}

// Delete issues a DELETE request.
func (d *Dispatcher) Delete(ctx context.Context, path string, out any) error {
	return d.do(ctx, http.MethodDelete, path, nil, out)
}

// Upload sends a single file as multipart/form-data, reporting progress as
// the body is consumed by the transport.
func (d *Dispatcher) Upload(ctx context.Context, path string, file UploadFile, progress ProgressFunc, out any) error {
	return d.UploadMany(ctx, path, []UploadFile{file}, progress, out)
}

// UploadMany sends several files in a single multipart/form-data request.
func (d *Dispatcher) UploadMany(ctx context.Context, path string, files []UploadFile, progress ProgressFunc, out any) error {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	for _, f := range files {
		part, err := writer.CreateFormFile(f.Field, f.Filename)
		if err != nil {
			return errors.Wrap(err, errors.CategoryInternal, "unable to build multipart body")
		}
		if _, err := io.Copy(part, f.Content); err != nil {
			return errors.Wrap(err, errors.CategoryInternal, "unable to read upload content")
		}
	}

	if err := writer.Close(); err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "unable to finalize multipart body")
	}

	total := int64(buf.Len())
	body := &progressReader{
		reader:   &buf,
		total:    total,
		progress: progress,
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.url(path), body)
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "unable to build upload request")
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.ContentLength = total

	return d.send(req, out)
}

func (d *Dispatcher) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return errors.Wrap(err, errors.CategoryBadInput, "unable to serialize request body")
		}
		reader = bytes.NewReader(encoded)

		if d.debug {
			d.logger.Debug("dispatch %s %s payload=%s", method, path, print.MaybePrettyJSON(body))
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, d.url(path), reader)
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "unable to build request")
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return d.send(req, out)
}

func (d *Dispatcher) send(req *http.Request, out any) error {
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())

	if token := d.tokens.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	res, err := d.client.Do(req)
	if err != nil {
		d.logger.Error("dispatch %s %s transport error: %v", req.Method, req.URL.Path, err)
		return errors.Wrap(err, ErrNetwork.Category, ErrNetwork.Message).
			WithTextCode(ErrNetwork.TextCode).
			WithCode(ErrNetwork.Code)
	}
	defer res.Body.Close()

	payload, err := io.ReadAll(res.Body)
	if err != nil {
		return errors.Wrap(err, ErrNetwork.Category, "response body could not be read").
			WithTextCode(ErrNetwork.TextCode).
			WithCode(ErrNetwork.Code)
	}

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return d.classify(req, res.StatusCode, payload)
	}

	if out == nil || len(payload) == 0 {
		return nil
	}

	if err := json.Unmarshal(payload, out); err != nil {
		return errors.Wrap(err, errors.CategoryBadInput, "response could not be decoded").
			WithTextCode(TextCodeUnknownError).
			WithCode(errors.CodeInternal)
	}

	return nil
}

func (d *Dispatcher) classify(req *http.Request, status int, payload []byte) error {
	var envelope ErrorEnvelope
	// Best effort: a non-JSON error body still classifies by status.
	_ = json.Unmarshal(payload, &envelope)

	classified := ClassifyStatus(status, envelope)

	d.logger.Warn(
		"dispatch %s %s failed status=%d code=%s",
		req.Method, req.URL.Path, status, classified.TextCode,
	)

	if status == http.StatusUnauthorized && d.onUnauthorized != nil {
		// Global teardown runs regardless of what the caller does with
		// the returned error.
		d.onUnauthorized()
	}

	return classified
}

func (d *Dispatcher) url(path string) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return d.baseURL + d.prefix + path
}

// progressReader reports bytes consumed by the transport.
type progressReader struct {
	reader   io.Reader
	sent     int64
	total    int64
	progress ProgressFunc
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.reader.Read(b)
	if n > 0 {
		p.sent += int64(n)
		if p.progress != nil {
			p.progress(p.sent, p.total)
		}
	}
	return n, err
}
