package ghclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/spiffcs/ghactivity/internal/log"
)

const userAgent = "ghactivity"

// Request is the body of a GraphQL POST. It marshals to exactly
// {"query": ..., "variables": {...}}.
type Request struct {
	Query     string `json:"query"`
	Variables any    `json:"variables"`
}

// Response is the decoded GraphQL envelope. Data is left raw so callers
// choose the shape; a JSON null decodes to the literal "null".
type Response struct {
	Data   json.RawMessage `json:"data"`
	Errors []GraphQLError  `json:"errors"`
}

// Transport performs a single GraphQL round trip.
type Transport interface {
	Send(ctx context.Context, req Request) (*Response, error)
}

// GraphQLClient is the HTTP Transport. It holds no mutable state and is safe
// for concurrent use.
type GraphQLClient struct {
	endpoint string
	http     *http.Client
}

// Ensure GraphQLClient implements Transport.
var _ Transport = (*GraphQLClient)(nil)

// NewGraphQLClient creates a Transport posting to endpoint. Authentication is
// the job of httpClient; see NewHTTPClient.
func NewGraphQLClient(endpoint string, httpClient *http.Client) *GraphQLClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &GraphQLClient{
		endpoint: endpoint,
		http:     httpClient,
	}
}

// Send posts req and decodes the envelope. It does not look at the errors
// list; Execute does.
func (c *GraphQLClient) Send(ctx context.Context, req Request) (*Response, error) {
	bodyBytes, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to encode GraphQL request: %w", ErrTransport, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create GraphQL request: %w", ErrTransport, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", userAgent)

	log.Trace("graphql request", "endpoint", c.endpoint, "bytes", len(bodyBytes))

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, classifyRequestError(ctx, err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, classifyRequestError(ctx, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	var out Response
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}

	log.Trace("graphql response", "status", resp.StatusCode, "bytes", len(respBody), "errors", len(out.Errors))
	return &out, nil
}

// Execute sends req and decodes its data into E. A non-empty errors list is
// a *ProtocolError even when data is also present; null data with no errors
// is ErrIntegrity.
func Execute[E any](ctx context.Context, t Transport, req Request) (*E, error) {
	resp, err := t.Send(ctx, req)
	if err != nil {
		return nil, err
	}

	if len(resp.Errors) > 0 {
		for _, e := range resp.Errors {
			log.Debug("graphql error", "message", e.Message, "type", e.Type)
		}
		return nil, &ProtocolError{Messages: resp.Errors}
	}

	trimmed := bytes.TrimSpace(resp.Data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, ErrIntegrity
	}

	var data E
	if err := json.Unmarshal(trimmed, &data); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	return &data, nil
}
