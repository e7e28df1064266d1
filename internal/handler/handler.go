package handler

import (
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"cardialink-engine/internal/engine"
	"cardialink-engine/internal/model"
	"cardialink-engine/internal/session"
)

type Options struct {
	Cookie string
	TTL    time.Duration
	// ModelEnabled is reported by the health check.
	ModelEnabled bool
}

// Handler serves the questionnaire pages and the JSON API.
type Handler struct {
	engine *engine.Engine
	store  session.Store
	opts   Options
	logger *zap.Logger
	now    func() time.Time
}

func New(e *engine.Engine, store session.Store, opts Options, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Cookie == "" {
		opts.Cookie = "cardialink_session"
	}
	if opts.TTL <= 0 {
		opts.TTL = session.DefaultTTL
	}
	return &Handler{engine: e, store: store, opts: opts, logger: logger, now: time.Now}
}

func (h *Handler) Handle(ctx *fasthttp.RequestCtx) {
	start := time.Now()
	path := string(ctx.Path())

	switch {
	case path == "/":
		redirect(ctx, "/"+model.ConditionCardiac.Slug(), fasthttp.StatusFound)
	case path == "/results":
		h.handleResults(ctx)
	case path == "/reset":
		h.handleReset(ctx)
	case path == "/api/v1/assess":
		h.handleAssess(ctx)
	case strings.HasPrefix(path, "/api/v1/score/"):
		h.handleScore(ctx, strings.TrimPrefix(path, "/api/v1/score/"))
	case path == "/api/v1/session":
		h.handleSession(ctx)
	case path == "/api/v1/health":
		h.handleHealth(ctx)
	default:
		if c, ok := stepForPath(path); ok {
			h.handleStep(ctx, c)
			break
		}
		writeError(ctx, fasthttp.StatusNotFound, "Not found: "+path)
	}

	h.logger.Debug("request",
		zap.ByteString("method", ctx.Method()),
		zap.String("path", path),
		zap.Int("status", ctx.Response.StatusCode()),
		zap.Duration("elapsed", time.Since(start)))
}

func stepForPath(path string) (model.Condition, bool) {
	for _, c := range model.Conditions {
		if path == "/"+c.Slug() {
			return c, true
		}
	}
	return "", false
}

// loadSession returns the caller's session, or nil when there is none or it
// has expired.
func (h *Handler) loadSession(ctx *fasthttp.RequestCtx) (*model.Session, error) {
	id := string(ctx.Request.Header.Cookie(h.opts.Cookie))
	if id == "" {
		return nil, nil
	}
	s, err := h.store.Load(ctx, id)
	if errors.Is(err, session.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (h *Handler) setSessionCookie(ctx *fasthttp.RequestCtx, id string) {
	c := fasthttp.AcquireCookie()
	defer fasthttp.ReleaseCookie(c)
	c.SetKey(h.opts.Cookie)
	c.SetValue(id)
	c.SetPath("/")
	c.SetHTTPOnly(true)
	c.SetSameSite(fasthttp.CookieSameSiteLaxMode)
	c.SetMaxAge(int(h.opts.TTL / time.Second))
	ctx.Response.Header.SetCookie(c)
}

func newSessionID() string {
	return uuid.New().String()
}

func redirect(ctx *fasthttp.RequestCtx, location string, status int) {
	ctx.Response.Header.Set(fasthttp.HeaderLocation, location)
	ctx.SetStatusCode(status)
}

func writeJSON(ctx *fasthttp.RequestCtx, status int, v interface{}) {
	body, err := json.Marshal(v)
	if err != nil {
		writeError(ctx, fasthttp.StatusInternalServerError, "Encoding response failed")
		return
	}
	ctx.SetContentType("application/json")
	ctx.SetStatusCode(status)
	ctx.SetBody(body)
}

func writeError(ctx *fasthttp.RequestCtx, status int, message string) {
	body, _ := json.Marshal(model.ErrorResponse{
		Status:  status,
		Message: message,
	})
	ctx.SetContentType("application/json")
	ctx.SetStatusCode(status)
	ctx.SetBody(body)
}
