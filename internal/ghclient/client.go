package ghclient

import (
	"context"
	"fmt"
	"net/http"
	"time"

	gh "github.com/google/go-github/v57/github"
	"golang.org/x/oauth2"
)

// NewHTTPClient returns an HTTP client that sends token as a bearer
// credential on every request. It is shared by the GraphQL transport and
// the REST client.
func NewHTTPClient(ctx context.Context, token string, timeout time.Duration) (*http.Client, error) {
	if token == "" {
		return nil, fmt.Errorf("GitHub token not provided. Set the GITHUB_TOKEN environment variable")
	}

	base := &http.Client{
		Transport: &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConns:        10,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     30 * time.Second,
		},
	}
	ctx = context.WithValue(ctx, oauth2.HTTPClient, base)

	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: token},
	)
	tc := oauth2.NewClient(ctx, ts)
	tc.Timeout = timeout
	return tc, nil
}

// Client wraps the GitHub REST API for the lookups the GraphQL query does
// not cover.
type Client struct {
	client *gh.Client
}

// NewClient creates a REST client on top of an authenticated HTTP client.
// A non-empty apiURL targets a GitHub Enterprise Server instance.
func NewClient(httpClient *http.Client, apiURL string) (*Client, error) {
	client := gh.NewClient(httpClient)
	if apiURL != "" {
		var err error
		client, err = client.WithEnterpriseURLs(apiURL, apiURL)
		if err != nil {
			return nil, fmt.Errorf("invalid API URL %q: %w", apiURL, err)
		}
	}
	return &Client{client: client}, nil
}

// AuthenticatedUser returns the login that owns the token. Any failure is
// reported as ErrTransport or ErrCancelled.
func (c *Client) AuthenticatedUser(ctx context.Context) (string, error) {
	user, _, err := c.client.Users.Get(ctx, "")
	if err != nil {
		return "", fmt.Errorf("failed to get authenticated user: %w", classifyRequestError(ctx, err))
	}
	return user.GetLogin(), nil
}

// RateLimits fetches the current API quota for each resource.
func (c *Client) RateLimits(ctx context.Context) (*gh.RateLimits, error) {
	limits, _, err := c.client.RateLimit.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get rate limits: %w", classifyRequestError(ctx, err))
	}
	return limits, nil
}
