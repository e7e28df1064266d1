package handler

import (
	"context"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"

	"cardialink-engine/internal/composite"
	"cardialink-engine/internal/engine"
	"cardialink-engine/internal/model"
	"cardialink-engine/internal/premium"
	"cardialink-engine/internal/scoring"
	"cardialink-engine/internal/session"
)

const cookieName = "cardialink_session"

func newHandler(t *testing.T) (*Handler, *session.MemoryStore) {
	t.Helper()
	calc, err := composite.NewCalculator(composite.DefaultWeights(), composite.DefaultOverride())
	require.NoError(t, err)
	mapper, err := premium.NewMapper(premium.TableExtended)
	require.NoError(t, err)
	scorers := scoring.NewSet(scoring.SetConfig{
		Jitter:     scoring.DefaultJitter(),
		Source:     scoring.FixedSource(0.5),
		Correction: scoring.DefaultCorrection(),
	}, nil, nil)

	store := session.NewMemoryStore(time.Minute, nil)
	h := New(engine.New(scorers, calc, mapper, nil), store, Options{Cookie: cookieName, TTL: time.Minute}, nil)
	h.now = func() time.Time { return time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC) }
	return h, store
}

type request struct {
	method string
	uri    string
	body   string
	form   bool
	cookie string
}

func do(h *Handler, r request) *fasthttp.RequestCtx {
	var req fasthttp.Request
	req.Header.SetMethod(r.method)
	req.SetRequestURI(r.uri)
	if r.form {
		req.Header.SetContentType("application/x-www-form-urlencoded")
	}
	if r.body != "" {
		req.SetBodyString(r.body)
	}
	if r.cookie != "" {
		req.Header.SetCookie(cookieName, r.cookie)
	}

	var ctx fasthttp.RequestCtx
	ctx.Init(&req, nil, nil)
	h.Handle(&ctx)
	return &ctx
}

func location(ctx *fasthttp.RequestCtx) string {
	return string(ctx.Response.Header.Peek(fasthttp.HeaderLocation))
}

func sessionCookie(t *testing.T, ctx *fasthttp.RequestCtx) string {
	t.Helper()
	var c fasthttp.Cookie
	c.SetKey(cookieName)
	require.True(t, ctx.Response.Header.Cookie(&c), "no session cookie set")
	return string(c.Value())
}

func TestRootRedirectsToFirstStep(t *testing.T) {
	h, _ := newHandler(t)

	ctx := do(h, request{method: "GET", uri: "/"})

	assert.Equal(t, fasthttp.StatusFound, ctx.Response.StatusCode())
	assert.Equal(t, "/heart", location(ctx))
}

func TestStepGating(t *testing.T) {
	h, _ := newHandler(t)

	for _, uri := range []string{"/kidney", "/diabetes", "/results"} {
		ctx := do(h, request{method: "GET", uri: uri})
		assert.Equal(t, fasthttp.StatusFound, ctx.Response.StatusCode(), uri)
		assert.Equal(t, "/heart", location(ctx), uri)
	}

	ctx := do(h, request{method: "GET", uri: "/heart"})
	assert.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
	assert.Contains(t, string(ctx.Response.Body()), `name="thalach"`)
	assert.Contains(t, string(ctx.Response.Header.ContentType()), "text/html")
}

func TestQuestionnaireFlow(t *testing.T) {
	h, store := newHandler(t)

	ctx := do(h, request{method: "POST", uri: "/heart", form: true, body: "age=65&sex=1&trestbps=150&chol=250"})
	require.Equal(t, fasthttp.StatusSeeOther, ctx.Response.StatusCode())
	assert.Equal(t, "/kidney", location(ctx))
	id := sessionCookie(t, ctx)

	ctx = do(h, request{method: "GET", uri: "/kidney", cookie: id})
	assert.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())

	ctx = do(h, request{method: "GET", uri: "/diabetes", cookie: id})
	assert.Equal(t, "/heart", location(ctx), "renal step not done yet")

	ctx = do(h, request{method: "POST", uri: "/kidney", form: true, body: "age=70&sc=2.0", cookie: id})
	assert.Equal(t, "/diabetes", location(ctx))

	ctx = do(h, request{method: "POST", uri: "/diabetes", form: true, body: "highbp=1&bmi=32&physactivity=1&fruits=1&veggies=1", cookie: id})
	assert.Equal(t, "/results", location(ctx))

	s, err := store.Load(context.Background(), id)
	require.NoError(t, err)
	// .15 + .10 + .15 + .15
	assert.InDelta(t, 0.55, s.Scores[model.ConditionCardiac], 1e-9)
	// .2 + .15
	assert.InDelta(t, 0.35, s.Scores[model.ConditionRenal], 1e-9)
	// .15 + .15
	assert.InDelta(t, 0.30, s.Scores[model.ConditionMetabolic], 1e-9)
	require.NotNil(t, s.Composite)
	assert.InDelta(t, 0.5*0.55+0.3*0.35+0.2*0.30, *s.Composite, 1e-9)
	assert.Equal(t, 3, s.Revision)

	ctx = do(h, request{method: "GET", uri: "/results", cookie: id})
	require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
	body := string(ctx.Response.Body())
	assert.Contains(t, body, "Tier: Medium-High")
	assert.Contains(t, body, "43000 to 53000 INR")
	assert.Contains(t, body, "44.0%")
}

func TestResubmissionOverwrites(t *testing.T) {
	h, _ := newHandler(t)

	ctx := do(h, request{method: "POST", uri: "/heart", form: true, body: "age=45"})
	id := sessionCookie(t, ctx)
	do(h, request{method: "POST", uri: "/heart", form: true, body: "age=65", cookie: id})

	ctx = do(h, request{method: "GET", uri: "/api/v1/session", cookie: id})
	require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())

	var s model.Session
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), &s))
	assert.Equal(t, 2, s.Revision)
	assert.InDelta(t, 0.15, s.Scores[model.ConditionCardiac], 1e-9)
	assert.Equal(t, []model.PatchOperation{{Op: "replace", Path: "/scores/cardiac", Value: 0.15}}, s.LastPatch)
}

func TestReset(t *testing.T) {
	h, store := newHandler(t)

	ctx := do(h, request{method: "POST", uri: "/heart", form: true, body: "age=45"})
	id := sessionCookie(t, ctx)

	ctx = do(h, request{method: "POST", uri: "/reset", cookie: id})
	assert.Equal(t, fasthttp.StatusSeeOther, ctx.Response.StatusCode())
	assert.Equal(t, "/heart", location(ctx))

	_, err := store.Load(context.Background(), id)
	assert.ErrorIs(t, err, session.ErrNotFound)

	ctx = do(h, request{method: "GET", uri: "/reset"})
	assert.Equal(t, fasthttp.StatusMethodNotAllowed, ctx.Response.StatusCode())
}

func TestAssessAPI(t *testing.T) {
	h, _ := newHandler(t)

	ctx := do(h, request{method: "POST", uri: "/api/v1/assess", body: `{
		"cardiac": {"age": 50},
		"model_probabilities": {"renal": 0.95, "metabolic": 0.1}
	}`})
	require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())

	var resp model.AssessmentResponse
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), &resp))
	assert.Equal(t, model.OutcomeSuccess, resp.AssessmentMetadata.AssessmentOutcome)
	assert.Equal(t, 0.9, resp.AssessmentResult.Composite.Score)
	assert.True(t, resp.AssessmentResult.Composite.OverrideApplied)
	assert.Equal(t, "Critical", resp.AssessmentResult.Premium.Tier)
}

func TestAssessAPIRejectsMalformedBody(t *testing.T) {
	h, _ := newHandler(t)

	ctx := do(h, request{method: "POST", uri: "/api/v1/assess", body: `{"cardiac":`})

	assert.Equal(t, fasthttp.StatusBadRequest, ctx.Response.StatusCode())
	var e model.ErrorResponse
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), &e))
	assert.Equal(t, fasthttp.StatusBadRequest, e.Status)
}

func TestScoreAPI(t *testing.T) {
	h, _ := newHandler(t)

	ctx := do(h, request{method: "POST", uri: "/api/v1/score/kidney", body: `{"fields":{"age":65,"bp":150}}`})
	require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())

	var resp model.ScoreResponse
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), &resp))
	assert.Equal(t, model.ConditionRenal, resp.Result.Condition)
	assert.InDelta(t, 0.35, resp.Result.Probability, 1e-9)

	ctx = do(h, request{method: "POST", uri: "/api/v1/score/cardiac", body: `{"model_probability":0.5}`})
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), &resp))
	assert.Equal(t, 0.5, resp.Result.Probability)
	assert.Equal(t, model.SourceModel, resp.Result.Source)

	ctx = do(h, request{method: "POST", uri: "/api/v1/score/liver", body: `{}`})
	assert.Equal(t, fasthttp.StatusNotFound, ctx.Response.StatusCode())
}

func TestSessionAPIWithoutSession(t *testing.T) {
	h, _ := newHandler(t)

	ctx := do(h, request{method: "GET", uri: "/api/v1/session", cookie: "unknown"})

	assert.Equal(t, fasthttp.StatusNotFound, ctx.Response.StatusCode())
}

func TestHealth(t *testing.T) {
	h, _ := newHandler(t)

	ctx := do(h, request{method: "GET", uri: "/api/v1/health"})

	require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
	var resp model.HealthResponse
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "2026-05-01T09:00:00Z", resp.Timestamp)
	assert.False(t, resp.Model)
}

func TestUnknownPath(t *testing.T) {
	h, _ := newHandler(t)

	ctx := do(h, request{method: "GET", uri: "/admin"})

	assert.Equal(t, fasthttp.StatusNotFound, ctx.Response.StatusCode())
}

func TestStepFormPrefillsOnlyInRangeDefaults(t *testing.T) {
	h, _ := newHandler(t)

	ctx := do(h, request{method: "GET", uri: "/heart"})
	assert.Contains(t, string(ctx.Response.Body()), `id="age" name="age" min="20" max="100" step="1" value="50"`)

	ctx = do(h, request{method: "POST", uri: "/heart", form: true, body: "age=50"})
	id := sessionCookie(t, ctx)

	ctx = do(h, request{method: "GET", uri: "/kidney", cookie: id})
	require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
	body := string(ctx.Response.Body())
	assert.Contains(t, body, `id="bp" name="bp" min="50" max="180" step="1" value=""`)
	assert.Contains(t, body, `id="sc" name="sc" min="0.4" max="40" step="0.1" value=""`)
}
