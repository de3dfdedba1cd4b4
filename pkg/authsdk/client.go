package authsdk

import (
	"net/http"
	"strings"
	"time"
)

// Client talks to a tinylink server. The zero Token makes anonymous
// requests; use WithToken after Login for everything else.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	Token      string
}

// NewClient returns a Client that does not follow redirects, so Resolve can
// report the Location of a short link.
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

// WithToken returns a copy of c that authenticates with token.
func (c *Client) WithToken(token string) *Client {
	cp := *c
	cp.Token = token
	return &cp
}
