package handler

import (
	"time"

	json "github.com/goccy/go-json"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"cardialink-engine/internal/model"
)

func (h *Handler) handleAssess(ctx *fasthttp.RequestCtx) {
	if !ctx.IsPost() {
		writeError(ctx, fasthttp.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req model.AssessmentRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		writeError(ctx, fasthttp.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	writeJSON(ctx, fasthttp.StatusOK, h.engine.Process(ctx, &req))
}

func (h *Handler) handleScore(ctx *fasthttp.RequestCtx, name string) {
	c, ok := model.ParseCondition(name)
	if !ok {
		writeError(ctx, fasthttp.StatusNotFound, "Unknown condition: "+name)
		return
	}
	if !ctx.IsPost() {
		writeError(ctx, fasthttp.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req model.ScoreRequest
	if len(ctx.PostBody()) > 0 {
		if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
			writeError(ctx, fasthttp.StatusBadRequest, "Invalid request body: "+err.Error())
			return
		}
	}

	writeJSON(ctx, fasthttp.StatusOK, h.engine.Score(ctx, c, req.Fields, req.ModelProbability))
}

func (h *Handler) handleSession(ctx *fasthttp.RequestCtx) {
	if !ctx.IsGet() {
		writeError(ctx, fasthttp.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	s, err := h.loadSession(ctx)
	if err != nil {
		h.logger.Error("load session", zap.Error(err))
		writeError(ctx, fasthttp.StatusServiceUnavailable, "Session store unavailable")
		return
	}
	if s == nil {
		writeError(ctx, fasthttp.StatusNotFound, "No active session")
		return
	}
	writeJSON(ctx, fasthttp.StatusOK, s)
}

func (h *Handler) handleHealth(ctx *fasthttp.RequestCtx) {
	writeJSON(ctx, fasthttp.StatusOK, model.HealthResponse{
		Status:    "ok",
		Timestamp: h.now().UTC().Format(time.RFC3339),
		Model:     h.opts.ModelEnabled,
	})
}
