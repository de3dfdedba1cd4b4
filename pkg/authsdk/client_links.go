package authsdk

import (
	"context"
	"net/http"
	"net/url"
)

// Shorten creates a short link for longURL. If the URL is already
// shortened the error is a *LinkExistsError naming the existing code.
func (c *Client) Shorten(ctx context.Context, longURL string) (*ShortenResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/", ShortenRequest{URL: longURL})
	if err != nil {
		return nil, err
	}

	var out ShortenResponse
	if err := decodeJSON(resp, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out, nil
}

// Resolve returns the redirect target of code without following it.
func (c *Client) Resolve(ctx context.Context, code string) (string, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/"+url.PathEscape(code), nil)
	if err != nil {
		return "", err
	}
	location := resp.Header.Get("Location")
	if err := checkStatus(resp, http.StatusMovedPermanently); err != nil {
		return "", err
	}
	return location, nil
}

// ListLinks returns every link, newest first. Admin only.
func (c *Client) ListLinks(ctx context.Context) ([]LinkInfo, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/", nil)
	if err != nil {
		return nil, err
	}

	var links []LinkInfo
	if err := decodeJSON(resp, &links, http.StatusOK); err != nil {
		return nil, err
	}
	return links, nil
}

// Keys returns every short code. An empty store is reported as not found.
func (c *Client) Keys(ctx context.Context) ([]string, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/keys", nil)
	if err != nil {
		return nil, err
	}

	var keys []string
	if err := decodeJSON(resp, &keys, http.StatusOK); err != nil {
		return nil, err
	}
	return keys, nil
}

// Search looks up a short code.
func (c *Client) Search(ctx context.Context, code string) (*SearchResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/search/"+url.PathEscape(code), nil)
	if err != nil {
		return nil, err
	}

	var out SearchResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateLink points code at a new URL. Admin only.
func (c *Client) UpdateLink(ctx context.Context, code, longURL string) error {
	resp, err := c.doRequest(ctx, http.MethodPut, "/"+url.PathEscape(code), ShortenRequest{URL: longURL})
	if err != nil {
		return err
	}
	return checkStatus(resp, http.StatusOK)
}

// DeleteLink removes code. Admin only.
func (c *Client) DeleteLink(ctx context.Context, code string) error {
	resp, err := c.doRequest(ctx, http.MethodDelete, "/"+url.PathEscape(code), nil)
	if err != nil {
		return err
	}
	return checkStatus(resp, http.StatusNoContent)
}
