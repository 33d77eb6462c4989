// Package relay implements probe.Strategy by routing requests through an
// intermediary content relay. The relay returns the origin body embedded in
// a JSON envelope, which lets it reach targets behind bot-mitigation edge
// networks that reject direct requests.
package relay

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/calderonlabs/lexprobe/internal/probe"
)

// Name identifies the strategy in attempt outcomes and reports.
const Name = "relay"

const defaultMinContentSize = 300

// Config controls relay behavior.
type Config struct {
	// BaseURL is the relay endpoint; the target URL is percent-encoded as
	// its "url" query parameter.
	BaseURL string
	// MinContentSize is the body length a successful fetch must exceed.
	MinContentSize int
}

// Strategy fetches through the content relay.
type Strategy struct {
	cfg    Config
	client *http.Client
}

// envelope is the relay response wrapper. Only the embedded content matters;
// a body that fails to decode is used verbatim instead.
type envelope struct {
	Contents string `json:"contents"`
}

// New builds a relay Strategy.
func New(cfg Config) *Strategy {
	if cfg.MinContentSize <= 0 {
		cfg.MinContentSize = defaultMinContentSize
	}
	return &Strategy{
		cfg: cfg,
		client: &http.Client{
			Transport: &http.Transport{
				Proxy: http.ProxyFromEnvironment,
				DialContext: (&net.Dialer{
					Timeout:   10 * time.Second,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				TLSHandshakeTimeout: 15 * time.Second,
				MaxIdleConns:        100,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// Name implements probe.Strategy.
func (s *Strategy) Name() string { return Name }

// Attempt issues one GET through the relay. Every failure mode is captured
// in the outcome; nothing propagates past the strategy boundary.
func (s *Strategy) Attempt(ctx context.Context, target string) probe.AttemptOutcome {
	start := time.Now()
	outcome := probe.AttemptOutcome{Strategy: Name}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.relayURL(target), nil)
	if err != nil {
		outcome.LatencyMs = msSince(start)
		outcome.ErrorKind = probe.ErrTransport
		return outcome
	}

	resp, err := s.client.Do(req)
	if err != nil {
		outcome.LatencyMs = msSince(start)
		outcome.ErrorKind = probe.ClassifyError(err)
		return outcome
	}
	defer resp.Body.Close() //nolint:errcheck // read-only body

	body, err := io.ReadAll(resp.Body)
	outcome.LatencyMs = msSince(start)
	if err != nil {
		outcome.ErrorKind = probe.ClassifyError(err)
		return outcome
	}
	if resp.StatusCode != http.StatusOK {
		outcome.ErrorKind = probe.ErrProtocol
		return outcome
	}

	content := unwrap(body)
	outcome.ContentSize = len(content)
	// Success requires the body to strictly exceed the minimum.
	if len(content) <= s.cfg.MinContentSize {
		outcome.ErrorKind = probe.ErrContentTooShort
		return outcome
	}
	outcome.Succeeded = true
	return outcome
}

func (s *Strategy) relayURL(target string) string {
	u, err := url.Parse(s.cfg.BaseURL)
	if err != nil {
		// Let the request constructor surface the bad base URL.
		return s.cfg.BaseURL
	}
	q := u.Query()
	q.Set("url", target)
	u.RawQuery = q.Encode()
	return u.String()
}

// unwrap extracts the embedded content field when the relay envelope
// decodes; otherwise the raw response text stands in for it.
func unwrap(body []byte) []byte {
	var env envelope
	if err := json.Unmarshal(body, &env); err == nil && env.Contents != "" {
		return []byte(env.Contents)
	}
	return body
}

func msSince(start time.Time) float64 {
	return float64(time.Since(start).Microseconds()) / 1000.0
}
