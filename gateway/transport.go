package gateway

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-sales-client/internal/metrics"
	"github.com/jrsteele09/go-sales-client/token"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
)

// RoundTripperFunc adapts a function to http.RoundTripper
type RoundTripperFunc func(*http.Request) (*http.Response, error)

func (f RoundTripperFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

// ChainTransport wraps base with mw; the first middleware is the outermost.
func ChainTransport(base http.RoundTripper, mw ...func(http.RoundTripper) http.RoundTripper) http.RoundTripper {
	chained := base
	// Apply middleware in reverse order
	for i := len(mw) - 1; i >= 0; i-- {
		chained = mw[i](chained)
	}
	return chained
}

// requestIDTransport tags each request with an X-Request-ID for log correlation
func requestIDTransport(next http.RoundTripper) http.RoundTripper {
	return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
		if r.Header.Get(headerRequestID) != "" {
			return next.RoundTrip(r)
		}
		r = r.Clone(r.Context())
		r.Header.Set(headerRequestID, uuid.NewString())
		return next.RoundTrip(r)
	})
}

// bearerTransport attaches the stored token, if any. A request is sent
// unauthenticated when nothing is stored or the store cannot be read.
func bearerTransport(tokens token.Reader, logger zerolog.Logger) func(http.RoundTripper) http.RoundTripper {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
			accessToken, err := tokens.AccessToken()
			if err != nil {
				logger.Error().Err(err).Str("path", r.URL.Path).Msg("reading access token, sending unauthenticated")
			}
			if accessToken == "" {
				return next.RoundTrip(r)
			}
			r = r.Clone(r.Context())
			(&oauth2.Token{AccessToken: accessToken, TokenType: "Bearer"}).SetAuthHeader(r)
			return next.RoundTrip(r)
		})
	}
}

// authFailureTransport publishes an AuthFailure for every 401 before the
// response is handed back to the caller. The token the request carried is
// not compared with the stored one, so a late 401 for a replaced token still
// ends the current session.
func (c *Client) authFailureTransport(next http.RoundTripper) http.RoundTripper {
	return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
		resp, err := next.RoundTrip(r)
		if err != nil || resp.StatusCode != http.StatusUnauthorized {
			return resp, err
		}
		c.publishAuthFailure(AuthFailure{
			Method:    r.Method,
			Path:      r.URL.Path,
			RequestID: r.Header.Get(headerRequestID),
		})
		return resp, nil
	})
}

func metricsTransport(m *metrics.Metrics) func(http.RoundTripper) http.RoundTripper {
	return func(next http.RoundTripper) http.RoundTripper {
		if m == nil {
			return next
		}
		return promhttp.InstrumentRoundTripperCounter(m.RequestsTotal,
			promhttp.InstrumentRoundTripperDuration(m.RequestDuration, next))
	}
}

func loggingTransport(logger zerolog.Logger) func(http.RoundTripper) http.RoundTripper {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
			resp, err := next.RoundTrip(r)
			event := logger.Debug().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Str("request_id", r.Header.Get(headerRequestID))
			if err != nil {
				event.Err(err).Msg("api request failed")
				return resp, err
			}
			event.Int("status", resp.StatusCode).Msg("api request")
			return resp, nil
		})
	}
}
