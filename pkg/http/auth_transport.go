package http

import "net/http"

type authTransport struct {
	header    string
	value     string
	transport http.RoundTripper
}

func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	reqCopy := req.Clone(req.Context())

	if t.value != "" {
		reqCopy.Header.Set(t.header, t.value)
	}

	return t.transport.RoundTrip(reqCopy)
}

// WithAuthToken authenticates every request with a standard bearer token.
func WithAuthToken(token string) HttpOpts {
	return WithAuthHeader("Authorization", "Bearer "+token)
}

// WithAuthHeader authenticates every request with an arbitrary header.
// Azure OpenAI uses "api-key" instead of the Authorization header; this is
// the only wire-level difference the vendor migration has to absorb.
func WithAuthHeader(header, value string) HttpOpts {
	return WithTransport(func(rt http.RoundTripper) http.RoundTripper {
		return &authTransport{
			header:    header,
			value:     value,
			transport: rt,
		}
	})
}
