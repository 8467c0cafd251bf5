package server

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strings"

	"golang.org/x/sync/semaphore"

	taggedcache "github.com/huykn/tagged-cache"
	"github.com/huykn/tagged-cache/cache"
	"github.com/huykn/tagged-cache/types"
)

// Response messages returned by the API.
const (
	msgStored   = "Data stored successfully"
	msgCleared  = "Cache cleared successfully"
	msgNotFound = "Key not found"
)

// Handler is the HTTP transport for a tagged cache.
type Handler struct {
	cache    cache.Cache
	logger   *slog.Logger
	json     cache.Marshaller
	msgpack  cache.Marshaller
	limiter  *semaphore.Weighted
	maxBody  int64
	instance string
}

// NewHandler creates an HTTP handler serving c.
func NewHandler(c cache.Cache, logger *slog.Logger, opts Options) *Handler {
	if logger == nil {
		logger = slog.Default()
	}

	h := &Handler{
		cache:    c,
		logger:   logger,
		json:     cache.NewJSONMarshaller(),
		msgpack:  cache.NewMsgpackMarshaller(),
		maxBody:  opts.MaxBodyBytes,
		instance: c.Stats().InstanceID,
	}
	if opts.MaxInFlight > 0 {
		h.limiter = semaphore.NewWeighted(opts.MaxInFlight)
	}
	return h
}

// Routes returns the route table wrapped in the middleware chain.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()

	// request id -> recover -> access log -> limiter -> handler
	wrap := func(handler http.HandlerFunc) http.HandlerFunc {
		return h.requestID(h.recoverer(h.accessLog(h.limit(handler))))
	}

	mux.HandleFunc("POST /cache", wrap(h.store))
	mux.HandleFunc("GET /cache/{key}", wrap(h.get))
	mux.HandleFunc("DELETE /cache/{key}", wrap(h.delete))
	mux.HandleFunc("POST /cache/revalidate", wrap(h.revalidate))

	mux.HandleFunc("GET /stats", wrap(h.stats))
	mux.HandleFunc("GET /health", h.requestID(h.health))

	return mux
}

func (h *Handler) store(w http.ResponseWriter, r *http.Request) {
	var req types.PutRequest
	if err := h.decode(w, r, &req); err != nil {
		h.respondError(w, r, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Key == "" {
		h.respondError(w, r, "key required", http.StatusBadRequest)
		return
	}

	if err := h.cache.Put(r.Context(), req.Key, req.Value, req.Tags); err != nil {
		h.failed(w, r, "store", err)
		return
	}

	h.respond(w, r, http.StatusOK, types.Message{Message: msgStored})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")

	entry, found := h.cache.Get(r.Context(), key)
	if !found {
		h.respondError(w, r, msgNotFound, http.StatusNotFound)
		return
	}

	if entry.Tags == nil {
		entry.Tags = []string{}
	}
	h.respond(w, r, http.StatusOK, entry)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.cache.Delete(r.Context(), r.PathValue("key")); err != nil {
		h.failed(w, r, "delete", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) revalidate(w http.ResponseWriter, r *http.Request) {
	var req types.RevalidateRequest
	if err := h.decode(w, r, &req); err != nil {
		h.respondError(w, r, "invalid request body", http.StatusBadRequest)
		return
	}

	// The invalidation finishes even if the client goes away.
	removed, err := h.cache.InvalidateByTags(context.WithoutCancel(r.Context()), req.Tags)
	if err != nil {
		h.failed(w, r, "revalidate", err)
		return
	}

	h.logger.Info("cache revalidated",
		"request_id", RequestIDFrom(r.Context()),
		"tags", req.Tags,
		"removed", removed)

	h.respond(w, r, http.StatusOK, types.RevalidateResponse{
		Message: msgCleared,
		Removed: removed,
	})
}

func (h *Handler) stats(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, http.StatusOK, h.cache.Stats())
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, http.StatusOK, types.HealthResponse{
		Status:   "ok",
		Version:  taggedcache.Version,
		Instance: h.instance,
	})
}

// failed maps a cache error to a response.
func (h *Handler) failed(w http.ResponseWriter, r *http.Request, op string, err error) {
	if errors.Is(err, cache.ErrCacheClosed) {
		h.respondError(w, r, "cache is closed", http.StatusServiceUnavailable)
		return
	}
	h.logger.Error(op+" failed", "request_id", RequestIDFrom(r.Context()), "error", err)
	h.respondError(w, r, op+" failed", http.StatusInternalServerError)
}

// decode reads the request body with the codec named by Content-Type.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v any) error {
	body := io.Reader(r.Body)
	if h.maxBody > 0 {
		body = http.MaxBytesReader(w, r.Body, h.maxBody)
	}

	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	return h.requestCodec(r).Unmarshal(data, v)
}

func (h *Handler) requestCodec(r *http.Request) cache.Marshaller {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err == nil && isMsgpack(mediaType) {
		return h.msgpack
	}
	return h.json
}

func (h *Handler) responseCodec(r *http.Request) cache.Marshaller {
	for _, part := range strings.Split(r.Header.Get("Accept"), ",") {
		mediaType, _, err := mime.ParseMediaType(strings.TrimSpace(part))
		if err == nil && isMsgpack(mediaType) {
			return h.msgpack
		}
	}
	return h.json
}

func isMsgpack(mediaType string) bool {
	return mediaType == "application/msgpack" || mediaType == "application/x-msgpack"
}

func (h *Handler) respond(w http.ResponseWriter, r *http.Request, status int, v any) {
	codec := h.responseCodec(r)

	data, err := codec.Marshal(v)
	if err != nil {
		h.logger.Error("failed to encode response", "request_id", RequestIDFrom(r.Context()), "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", codec.ContentType())
	w.WriteHeader(status)
	w.Write(data)
}

func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, message string, status int) {
	h.respond(w, r, status, types.ErrorResponse{Error: message})
}
