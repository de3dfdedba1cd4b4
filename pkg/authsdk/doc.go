/*
Package authsdk holds the wire types of the tinylink HTTP API and a small
client for it.

# Types

The request types carry go-playground/validator tags. The server checks
them with policy.NewValidator, which registers the custom tags
(account_name, strong_password, link_url, account_role).

Errors share one JSON shape:

	{"error": "invalid_request", "error_description": "invalid URL"}

APIError is that body. The server writes it with WriteError and the client
parses it back, so errors.Is works across the wire:

	_, err := client.Search(ctx, "nope1234")
	if errors.Is(err, authsdk.ErrNotFound) {
		...
	}

Shortening a URL that already has a code yields a *LinkExistsError with the
existing code.

# Client

	client := authsdk.NewClient("http://localhost:8080")

	tok, err := client.Login(ctx, "admin_user", "Sup3rSecret")
	if err != nil {
		return err
	}
	admin := client.WithToken(tok.AccessToken)

	link, err := admin.Shorten(ctx, "https://example.com/a/long/path")
	target, err := admin.Resolve(ctx, link.GeneratedURI)

The client never follows redirects, so Resolve returns the Location header
of the 301.
*/
package authsdk
