// Package direct implements probe.Strategy with a straight GET against the
// origin, presenting a crawler identity and skipping certificate
// validation. The probed population is known to run self-signed or
// misconfigured certificates, so verification failures would mask sites
// that are otherwise reachable.
package direct

import (
	"context"
	"crypto/tls"
	"net"
	"net/http"
	"time"

	"github.com/gocolly/colly/v2"

	"github.com/calderonlabs/lexprobe/internal/probe"
)

// Name identifies the strategy in attempt outcomes and reports.
const Name = "direct"

const (
	defaultUserAgent      = "Mozilla/5.0 (compatible; Googlebot/2.1; +http://www.google.com/bot.html)"
	defaultTimeout        = 10 * time.Second
	defaultMinContentSize = 300
)

// Config controls collector behavior.
type Config struct {
	UserAgent      string
	Timeout        time.Duration
	MinContentSize int
}

// Strategy fetches the origin directly using a Colly collector. Safe for
// concurrent use: every attempt builds its own collector, sharing only the
// pooled transport.
type Strategy struct {
	cfg       Config
	transport http.RoundTripper
}

// New builds a direct Strategy.
func New(cfg Config) *Strategy {
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.MinContentSize <= 0 {
		cfg.MinContentSize = defaultMinContentSize
	}

	return &Strategy{
		cfg:       cfg,
		transport: newInsecureTransport(),
	}
}

// Name implements probe.Strategy.
func (s *Strategy) Name() string { return Name }

// Attempt executes a single GET. All failure modes are captured in the
// outcome; nothing propagates past the strategy boundary.
func (s *Strategy) Attempt(ctx context.Context, target string) probe.AttemptOutcome {
	start := time.Now()
	outcome := probe.AttemptOutcome{Strategy: Name}

	var (
		statusCode int
		body       []byte
		fetchErr   error
	)

	collector := s.newCollector()
	collector.OnResponse(func(r *colly.Response) {
		statusCode = r.StatusCode
		body = append([]byte(nil), r.Body...)
	})
	collector.OnError(func(r *colly.Response, err error) {
		if r != nil {
			statusCode = r.StatusCode
		}
		fetchErr = err
	})

	done := make(chan error, 1)
	go func() {
		done <- collector.Visit(target)
	}()

	select {
	case <-ctx.Done():
		outcome.LatencyMs = msSince(start)
		outcome.ErrorKind = probe.ErrTimeout
		return outcome
	case visitErr := <-done:
		outcome.LatencyMs = msSince(start)
		if fetchErr == nil {
			fetchErr = visitErr
		}
	}

	if fetchErr != nil {
		if statusCode != 0 && statusCode != http.StatusOK {
			outcome.ErrorKind = probe.ErrProtocol
		} else {
			outcome.ErrorKind = probe.ClassifyError(fetchErr)
		}
		return outcome
	}
	if statusCode != http.StatusOK {
		outcome.ErrorKind = probe.ErrProtocol
		return outcome
	}

	outcome.ContentSize = len(body)
	// Success requires the body to strictly exceed the minimum.
	if len(body) <= s.cfg.MinContentSize {
		outcome.ErrorKind = probe.ErrContentTooShort
		return outcome
	}
	outcome.Succeeded = true
	return outcome
}

// newCollector builds a single-use collector. Collectors share their HTTP
// backend across clones, so concurrent attempts must not reuse one; only the
// pooled transport is shared. The fixed request timeout is a backstop; the
// caller's ctx deadline bounds the attempt itself.
func (s *Strategy) newCollector() *colly.Collector {
	c := colly.NewCollector(colly.Async(false))
	c.IgnoreRobotsTxt = true
	// The same URL is probed on every run; revisit checks would block it.
	c.AllowURLRevisit = true
	c.UserAgent = s.cfg.UserAgent
	c.WithTransport(s.transport)
	c.SetRequestTimeout(s.cfg.Timeout)
	return c
}

func newInsecureTransport() *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSClientConfig:     &tls.Config{InsecureSkipVerify: true}, //nolint:gosec // probed hosts use broken certs
		TLSHandshakeTimeout: 15 * time.Second,
		MaxIdleConns:        100,
		IdleConnTimeout:     90 * time.Second,
	}
}

func msSince(start time.Time) float64 {
	return float64(time.Since(start).Microseconds()) / 1000.0
}
