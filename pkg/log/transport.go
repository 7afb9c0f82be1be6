package log

import (
	"net/http"
	"time"
)

// Transport wraps an http.RoundTripper and logs every outbound call with
// the logger found in the request context. Request bodies and headers are
// never logged since they carry the provider API key.
func Transport(next http.RoundTripper) http.RoundTripper {
	if next == nil {
		next = http.DefaultTransport
	}
	return roundTripperFunc(func(r *http.Request) (*http.Response, error) {
		start := time.Now()
		l := Ctx(r.Context())

		resp, err := next.RoundTrip(r)

		evt := l.Debug()
		if err != nil {
			evt = l.Warn().Err(err)
		}
		evt = evt.
			Str(FieldMethod, r.Method).
			Str(FieldHost, r.URL.Host).
			Str(FieldPath, r.URL.Path).
			Float64(FieldLatency, float64(time.Since(start).Milliseconds()))
		if resp != nil {
			evt = evt.Int(FieldStatus, resp.StatusCode)
		}
		evt.Msg("outbound request completed")

		return resp, err
	})
}

type roundTripperFunc func(*http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}
