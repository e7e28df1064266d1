package modelclient

import (
	"context"
	"math"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/cespare/xxhash"
	json "github.com/goccy/go-json"
	"github.com/pkg/errors"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"cardialink-engine/internal/conditions"
	"cardialink-engine/internal/model"
)

// ErrUnavailable is returned, wrapped, for every failure to obtain a
// probability from the remote model.
var ErrUnavailable = errors.New("model endpoint unavailable")

const defaultTimeout = 2 * time.Second

type Config struct {
	URL     string
	Timeout time.Duration
	// Dial replaces the TCP dialer; tests use it with an in-memory listener.
	Dial fasthttp.DialFunc
}

// Client calls a trained-model service at POST {URL}/predict/{condition}.
// Successful predictions are cached per feature vector for the life of the
// process.
type Client struct {
	url     string
	timeout time.Duration
	http    *fasthttp.Client
	cache   sync.Map
	logger  *zap.Logger
}

type predictRequest struct {
	Features map[string]float64 `json:"features"`
}

type predictResponse struct {
	Probability *float64 `json:"probability"`
}

func New(cfg Config, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		url:     strings.TrimRight(cfg.URL, "/"),
		timeout: timeout,
		http: &fasthttp.Client{
			Name:                "cardialink-engine",
			Dial:                cfg.Dial,
			MaxConnsPerHost:     100,
			MaxIdleConnDuration: 90 * time.Second,
			ReadTimeout:         timeout,
			WriteTimeout:        timeout,
		},
		logger: logger.With(zap.String("model_url", cfg.URL)),
	}
}

// Predict returns the model probability for the feature vector. The value is
// returned as the model produced it; callers clamp.
func (c *Client) Predict(ctx context.Context, cond model.Condition, f conditions.Features) (float64, error) {
	key := cacheKey(cond, f)
	if p, ok := c.cache.Load(key); ok {
		return p.(float64), nil
	}

	p, err := c.fetch(ctx, cond, f)
	if err != nil {
		return 0, err
	}
	c.cache.Store(key, p)
	return p, nil
}

func (c *Client) fetch(ctx context.Context, cond model.Condition, f conditions.Features) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, errors.Wrapf(ErrUnavailable, "predict %s: %v", cond, err)
	}

	timeout := c.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if d := time.Until(deadline); d < timeout {
			timeout = d
		}
	}

	body, err := json.Marshal(predictRequest{Features: f})
	if err != nil {
		return 0, errors.Wrap(err, "encode predict request")
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.url + "/predict/" + string(cond))
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	req.SetBody(body)

	start := time.Now()
	if err := c.http.DoTimeout(req, resp, timeout); err != nil {
		return 0, errors.Wrapf(ErrUnavailable, "predict %s: %v", cond, err)
	}
	if resp.StatusCode() != fasthttp.StatusOK {
		return 0, errors.Wrapf(ErrUnavailable, "predict %s: status %d", cond, resp.StatusCode())
	}

	var pr predictResponse
	if err := json.Unmarshal(resp.Body(), &pr); err != nil {
		return 0, errors.Wrapf(ErrUnavailable, "predict %s: decode: %v", cond, err)
	}
	if pr.Probability == nil || math.IsNaN(*pr.Probability) {
		return 0, errors.Wrapf(ErrUnavailable, "predict %s: no probability in response", cond)
	}

	c.logger.Debug("model prediction",
		zap.String("condition", string(cond)),
		zap.Float64("probability", *pr.Probability),
		zap.Duration("elapsed", time.Since(start)))

	return *pr.Probability, nil
}

// cacheKey hashes the condition and the feature vector in name order.
func cacheKey(cond model.Condition, f conditions.Features) uint64 {
	names := make([]string, 0, len(f))
	for name := range f {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString(string(cond))
	for _, name := range names {
		b.WriteByte(';')
		b.WriteString(name)
		b.WriteByte('=')
		b.WriteString(strconv.FormatFloat(f[name], 'g', -1, 64))
	}
	return xxhash.Sum64([]byte(b.String()))
}
