package handler

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strconv"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"cardialink-engine/internal/conditions"
	"cardialink-engine/internal/model"
	"cardialink-engine/internal/session"
)

//go:embed templates/*.html
var templateFS embed.FS

var pages = template.Must(template.ParseFS(templateFS, "templates/*.html"))

type optionView struct {
	Value    string
	Label    string
	Selected bool
}

type fieldView struct {
	Name    string
	Label   string
	Min     string
	Max     string
	Step    string
	Value   string
	Options []optionView
}

type stepView struct {
	Title   string
	Action  string
	Number  int
	Total   int
	Fields  []fieldView
	Current string
}

type conditionView struct {
	Title   string
	Percent string
	Label   string
	Source  string
}

type resultsView struct {
	Conditions     []conditionView
	Composite      string
	CompositeLabel string
	Override       bool
	Tier           string
	MinPremium     int
	MaxPremium     int
	Currency       string
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func pct(p float64) string {
	return fmt.Sprintf("%.1f%%", p)
}

func newStepView(c model.Condition, s *model.Session) stepView {
	a, _ := conditions.Get(c)
	view := stepView{
		Title:  c.Title(),
		Action: "/" + c.Slug(),
		Total:  len(model.Conditions),
	}
	for i, cond := range model.Conditions {
		if cond == c {
			view.Number = i + 1
		}
	}
	if s != nil && s.Has(c) {
		view.Current = pct(s.Scores[c] * 100)
	}

	for _, f := range a.Fields() {
		step := "1"
		if f.Step > 0 {
			step = num(f.Step)
		}
		fv := fieldView{
			Name:  f.Name,
			Label: f.Label,
			Min:   num(f.Min),
			Max:   num(f.Max),
			Step:  step,
		}
		// empty when the default is outside the input range
		if f.Default >= f.Min && f.Default <= f.Max {
			fv.Value = num(f.Default)
		}
		for _, o := range f.Options {
			fv.Options = append(fv.Options, optionView{
				Value:    num(o.Value),
				Label:    o.Label,
				Selected: o.Value == f.Default,
			})
		}
		view.Fields = append(view.Fields, fv)
	}
	return view
}

func (h *Handler) render(ctx *fasthttp.RequestCtx, name string, data interface{}) {
	var buf bytes.Buffer
	if err := pages.ExecuteTemplate(&buf, name, data); err != nil {
		h.logger.Error("render page", zap.String("template", name), zap.Error(err))
		writeError(ctx, fasthttp.StatusInternalServerError, "Rendering page failed")
		return
	}
	ctx.SetContentType("text/html; charset=utf-8")
	ctx.SetStatusCode(fasthttp.StatusOK)
	ctx.SetBody(buf.Bytes())
}

func (h *Handler) handleStep(ctx *fasthttp.RequestCtx, c model.Condition) {
	switch {
	case ctx.IsGet():
		s, err := h.loadSession(ctx)
		if err != nil {
			h.logger.Error("load session", zap.Error(err))
			writeError(ctx, fasthttp.StatusServiceUnavailable, "Session store unavailable")
			return
		}
		if !session.CanView(s, c) {
			redirect(ctx, "/"+model.ConditionCardiac.Slug(), fasthttp.StatusFound)
			return
		}
		h.render(ctx, "step.html", newStepView(c, s))
	case ctx.IsPost():
		h.submitStep(ctx, c)
	default:
		writeError(ctx, fasthttp.StatusMethodNotAllowed, "Method not allowed")
	}
}

// submitStep scores the posted form, stores the score and moves the
// respondent on. The last step also stores the composite.
func (h *Handler) submitStep(ctx *fasthttp.RequestCtx, c model.Condition) {
	raw := model.RawFields{}
	ctx.PostArgs().VisitAll(func(k, v []byte) {
		raw[string(k)] = string(v)
	})

	scored := h.engine.Score(ctx, c, raw, nil)
	for _, m := range scored.Messages {
		h.logger.Info("step message",
			zap.String("condition", string(c)),
			zap.String("code", m.Code),
			zap.String("message", m.Message))
	}

	s, err := h.loadSession(ctx)
	if err != nil {
		h.logger.Error("load session", zap.Error(err))
		writeError(ctx, fasthttp.StatusServiceUnavailable, "Session store unavailable")
		return
	}
	if s == nil {
		s = model.NewSession(newSessionID())
	}

	var composite *float64
	next := session.Next(c)
	if next == "" {
		scores := make(map[model.Condition]float64, len(s.Scores)+1)
		for k, v := range s.Scores {
			scores[k] = v
		}
		scores[c] = scored.Result.Probability
		if eval := h.engine.Evaluate(scores, nil); eval.AssessmentResult.Composite != nil {
			score := eval.AssessmentResult.Composite.Score
			composite = &score
		}
	}

	patch, err := session.Record(s, c, scored.Result.Probability, scored.Result.Source, composite, h.now())
	if err != nil {
		h.logger.Error("diff session", zap.Error(err))
		writeError(ctx, fasthttp.StatusInternalServerError, "Recording score failed")
		return
	}
	if err := h.store.Save(ctx, s); err != nil {
		h.logger.Error("save session", zap.String("session_id", s.ID), zap.Error(err))
		writeError(ctx, fasthttp.StatusServiceUnavailable, "Session store unavailable")
		return
	}

	h.logger.Info("step recorded",
		zap.String("session_id", s.ID),
		zap.String("condition", string(c)),
		zap.Float64("probability", scored.Result.Probability),
		zap.String("source", string(scored.Result.Source)),
		zap.Int("revision", s.Revision),
		zap.Any("patch", patch))

	h.setSessionCookie(ctx, s.ID)
	if next == "" {
		redirect(ctx, "/results", fasthttp.StatusSeeOther)
		return
	}
	redirect(ctx, "/"+next.Slug(), fasthttp.StatusSeeOther)
}

func (h *Handler) handleResults(ctx *fasthttp.RequestCtx) {
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
	if !session.CanViewResults(s) {
		redirect(ctx, "/"+model.ConditionCardiac.Slug(), fasthttp.StatusFound)
		return
	}

	resp := h.engine.Evaluate(s.Scores, s.Sources)
	res := resp.AssessmentResult

	view := resultsView{
		Composite:      pct(res.Composite.Percent),
		CompositeLabel: res.Composite.Label,
		Override:       res.Composite.OverrideApplied,
		Tier:           res.Premium.Tier,
		MinPremium:     res.Premium.MinPremium,
		MaxPremium:     res.Premium.MaxPremium,
		Currency:       res.Premium.Currency,
	}
	for _, cr := range res.Conditions {
		view.Conditions = append(view.Conditions, conditionView{
			Title:   cr.Condition.Title(),
			Percent: pct(cr.Percent),
			Label:   cr.Label,
			Source:  string(cr.Source),
		})
	}
	h.render(ctx, "results.html", view)
}

func (h *Handler) handleReset(ctx *fasthttp.RequestCtx) {
	if !ctx.IsPost() {
		writeError(ctx, fasthttp.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	if id := string(ctx.Request.Header.Cookie(h.opts.Cookie)); id != "" {
		if err := h.store.Delete(ctx, id); err != nil {
			h.logger.Error("delete session", zap.String("session_id", id), zap.Error(err))
			writeError(ctx, fasthttp.StatusServiceUnavailable, "Session store unavailable")
			return
		}
		h.logger.Info("session reset", zap.String("session_id", id))
	}
	ctx.Response.Header.DelClientCookie(h.opts.Cookie)
	redirect(ctx, "/"+model.ConditionCardiac.Slug(), fasthttp.StatusSeeOther)
}
