package resource

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"golang.org/x/exp/slices"
)

// Record is implemented by every type a Client can mirror.
type Record interface {
	RecordID() string
}

// Option configures a Client.
type Option func(*options)

type options struct {
	httpClient *http.Client
	logger     *slog.Logger
}

// WithHTTPClient overrides the default client (5s timeout).
func WithHTTPClient(hc *http.Client) Option {
	return func(o *options) { o.httpClient = hc }
}

// WithLogger sets the logger failed calls are reported to.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// Client is a CRUD proxy for one collection of the remote resource store
// plus a local mirror of that collection.
//
// The mirror is a cache: it reflects the server-confirmed state of every
// record touched by a successful call, and the full collection as of the
// last successful ListAll. Writes by other clients are not visible until
// the next ListAll.
//
// Calls are not queued. The mirror lock is held only while reconciling a
// response, never across the HTTP round trip, so concurrent calls for the
// same id leave the mirror holding whichever response was reconciled
// last.
type Client[T Record] struct {
	http       *http.Client
	logger     *slog.Logger
	baseURL    string
	collection string
	mirror     []T
	mu         sync.Mutex
}

// New creates a client for collection (e.g. "todos") at baseURL
// (e.g. "http://localhost:8000"). The mirror starts empty.
func New[T Record](baseURL, collection string, opts ...Option) *Client[T] {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.httpClient == nil {
		o.httpClient = newHTTPClient()
	}
	if o.logger == nil {
		o.logger = slog.New(slog.DiscardHandler)
	}
	return &Client[T]{
		http:       o.httpClient,
		logger:     o.logger.With("collection", collection),
		baseURL:    strings.TrimRight(baseURL, "/"),
		collection: collection,
		mirror:     []T{},
	}
}

// Collection returns the collection name the client talks to.
func (c *Client[T]) Collection() string { return c.collection }

func (c *Client[T]) collectionURL() string {
	return c.baseURL + "/" + c.collection
}

func (c *Client[T]) recordURL(id string) string {
	return c.collectionURL() + "/" + url.PathEscape(id)
}

func (c *Client[T]) fail(op, id string, err error) error {
	attrs := []any{"op", op, "error", err}
	if id != "" {
		attrs = append(attrs, "id", id)
	}
	c.logger.Error("resource call failed", attrs...)
	return err
}

// FetchAll returns the full remote collection without touching the mirror.
func (c *Client[T]) FetchAll(ctx context.Context) ([]T, error) {
	var list []T
	if err := doJSON(ctx, c.http, "list "+c.collection, http.MethodGet, c.collectionURL(), nil, &list, accept2xx); err != nil {
		return nil, c.fail("list", "", err)
	}
	if list == nil {
		list = []T{}
	}
	return list, nil
}

// ListAll fetches the full collection and replaces the mirror with it.
// On failure the mirror is left as it was.
func (c *Client[T]) ListAll(ctx context.Context) ([]T, error) {
	list, err := c.FetchAll(ctx)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.mirror = slices.Clone(list)
	c.mu.Unlock()

	return list, nil
}

// GetByID fetches one record. The mirror is not touched. A missing record
// is a *TransportError wrapping ErrNotFound.
func (c *Client[T]) GetByID(ctx context.Context, id string) (T, error) {
	var rec T
	if err := doJSON(ctx, c.http, "get "+c.collection, http.MethodGet, c.recordURL(id), nil, &rec, accept2xx); err != nil {
		var zero T
		return zero, c.fail("get", id, err)
	}
	return rec, nil
}

// Create sends rec, whose id the caller has already assigned, and appends
// the server's echo to the mirror.
func (c *Client[T]) Create(ctx context.Context, rec T) (T, error) {
	var created T
	if err := doJSON(ctx, c.http, "create "+c.collection, http.MethodPost, c.collectionURL(), rec, &created, accept2xx); err != nil {
		var zero T
		return zero, c.fail("create", rec.RecordID(), err)
	}

	c.mu.Lock()
	c.mirror = append(c.mirror, created)
	c.mu.Unlock()

	return created, nil
}

// Update sends rec as the full replacement for id and swaps the matching
// mirror entry for the server's echo.
func (c *Client[T]) Update(ctx context.Context, id string, rec T) (T, error) {
	var updated T
	if err := doJSON(ctx, c.http, "update "+c.collection, http.MethodPut, c.recordURL(id), rec, &updated, accept2xx); err != nil {
		var zero T
		return zero, c.fail("update", id, err)
	}

	c.mu.Lock()
	for i := range c.mirror {
		if c.mirror[i].RecordID() == id {
			c.mirror[i] = updated
		}
	}
	c.mu.Unlock()

	return updated, nil
}

// Delete removes id from the store and, on success, from the mirror.
// Only an HTTP 200 counts as success; 204 and 404 are failures too.
func (c *Client[T]) Delete(ctx context.Context, id string) error {
	if err := doJSON(ctx, c.http, "delete "+c.collection, http.MethodDelete, c.recordURL(id), nil, nil, accept200); err != nil {
		return c.fail("delete", id, err)
	}

	c.mu.Lock()
	c.mirror = slices.DeleteFunc(c.mirror, func(r T) bool { return r.RecordID() == id })
	c.mu.Unlock()

	return nil
}

// Mirror returns a copy of the local mirror in its current order.
func (c *Client[T]) Mirror() []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.mirror)
}

// Lookup returns the mirror entry for id, if any.
func (c *Client[T]) Lookup(id string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := slices.IndexFunc(c.mirror, func(r T) bool { return r.RecordID() == id })
	if i < 0 {
		var zero T
		return zero, false
	}
	return c.mirror[i], true
}
