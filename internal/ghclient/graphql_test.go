package ghclient

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"
	"time"
	"unicode/utf8"
)

func TestGraphQLClient_Send(t *testing.T) {
	var gotBody map[string]json.RawMessage
	var gotMethod, gotContentType, gotAuth string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotContentType = r.Header.Get("Content-Type")
		gotAuth = r.Header.Get("Authorization")
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &gotBody)
		_, _ = w.Write([]byte(`{"data":{"viewer":{"login":"octocat"}}}`))
	}))
	defer srv.Close()

	httpClient, err := NewHTTPClient(context.Background(), "secret-token", 5*time.Second)
	if err != nil {
		t.Fatalf("NewHTTPClient() error = %v", err)
	}
	client := NewGraphQLClient(srv.URL, httpClient)

	resp, err := client.Send(context.Background(), Request{
		Query:     "query { viewer { login } }",
		Variables: map[string]any{"after": nil},
	})
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	if gotMethod != http.MethodPost {
		t.Errorf("method = %q, want POST", gotMethod)
	}
	if gotContentType != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", gotContentType)
	}
	if gotAuth != "Bearer secret-token" {
		t.Errorf("Authorization = %q, want bearer token", gotAuth)
	}

	keys := make([]string, 0, len(gotBody))
	for k := range gotBody {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	if strings.Join(keys, ",") != "query,variables" {
		t.Errorf("request body keys = %v, want [query variables]", keys)
	}
	if string(gotBody["variables"]) != `{"after":null}` {
		t.Errorf("variables = %s, want {\"after\":null}", gotBody["variables"])
	}

	if len(resp.Errors) != 0 {
		t.Errorf("expected no errors, got %v", resp.Errors)
	}
	if !strings.Contains(string(resp.Data), "octocat") {
		t.Errorf("data = %s, want viewer payload", resp.Data)
	}
}

func TestGraphQLClient_SendErrors(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantErr  error
		wantKind Kind
	}{
		{
			name:     "server error status",
			status:   http.StatusBadGateway,
			body:     "upstream unavailable",
			wantErr:  ErrTransport,
			wantKind: KindTransport,
		},
		{
			name:     "unauthorized",
			status:   http.StatusUnauthorized,
			body:     `{"message":"Bad credentials"}`,
			wantErr:  ErrTransport,
			wantKind: KindTransport,
		},
		{
			name:     "body is not json",
			status:   http.StatusOK,
			body:     "<html>oops</html>",
			wantErr:  ErrDecode,
			wantKind: KindDecode,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			client := NewGraphQLClient(srv.URL, srv.Client())
			_, err := client.Send(context.Background(), Request{Query: "query"})
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Send() error = %v, want %v", err, tt.wantErr)
			}
			if got := KindOf(err); got != tt.wantKind {
				t.Errorf("KindOf() = %v, want %v", got, tt.wantKind)
			}
		})
	}
}

func TestGraphQLClient_StatusErrorDetails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(strings.Repeat("x", 500)))
	}))
	defer srv.Close()

	_, err := NewGraphQLClient(srv.URL, srv.Client()).Send(context.Background(), Request{Query: "query"})

	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected *StatusError, got %T: %v", err, err)
	}
	if statusErr.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("StatusCode = %d, want %d", statusErr.StatusCode, http.StatusServiceUnavailable)
	}
	if len(statusErr.Error()) > 300 {
		t.Errorf("error message should truncate long bodies, got %d chars", len(statusErr.Error()))
	}
}

func TestStatusError_TruncatesOnRuneBoundary(t *testing.T) {
	err := &StatusError{StatusCode: http.StatusBadGateway, Body: strings.Repeat("é", 300)}
	msg := err.Error()

	if !utf8.ValidString(msg) {
		t.Fatalf("Error() split a multi-byte rune: %q", msg)
	}
	if !strings.Contains(msg, strings.Repeat("é", 200)+"...") {
		t.Errorf("expected 200 runes of body followed by ellipsis, got %q", msg)
	}
	if strings.Contains(msg, strings.Repeat("é", 201)) {
		t.Errorf("expected body to be cut at 200 runes, got %q", msg)
	}
}

func TestGraphQLClient_EncodeFailure(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		called = true
	}))
	defer srv.Close()

	req := Request{Query: "query", Variables: map[string]any{"bad": math.Inf(1)}}
	_, err := NewGraphQLClient(srv.URL, srv.Client()).Send(context.Background(), req)
	if err == nil {
		t.Fatal("expected an error for an unencodable request")
	}
	if errors.Is(err, ErrDecode) {
		t.Errorf("encode failure should not be reported as a malformed response: %v", err)
	}
	if !errors.Is(err, ErrTransport) {
		t.Errorf("expected ErrTransport, got %v", err)
	}
	if called {
		t.Error("request should not reach the server")
	}
}

func TestGraphQLClient_ConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := NewGraphQLClient(url, nil).Send(context.Background(), Request{Query: "query"})
	if !errors.Is(err, ErrTransport) {
		t.Errorf("Send() error = %v, want ErrTransport", err)
	}
}

func TestGraphQLClient_Cancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"data":{}}`))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewGraphQLClient(srv.URL, srv.Client()).Send(ctx, Request{Query: "query"})
	if KindOf(err) != KindCancelled {
		t.Errorf("KindOf() = %v, want %v (err = %v)", KindOf(err), KindCancelled, err)
	}
}

func TestNewHTTPClient_RequiresToken(t *testing.T) {
	if _, err := NewHTTPClient(context.Background(), "", time.Second); err == nil {
		t.Error("expected error for empty token")
	}
}

type viewerData struct {
	Viewer *struct {
		Login string `json:"login"`
	} `json:"viewer"`
}

func TestExecute(t *testing.T) {
	tests := []struct {
		name      string
		resp      *Response
		wantErr   error
		wantLogin string
	}{
		{
			name:      "data",
			resp:      &Response{Data: json.RawMessage(`{"viewer":{"login":"octocat"}}`)},
			wantLogin: "octocat",
		},
		{
			name:    "errors only",
			resp:    &Response{Errors: []GraphQLError{{Message: "Could not resolve to a User"}}},
			wantErr: ErrProtocol,
		},
		{
			name: "errors with partial data",
			resp: &Response{
				Data:   json.RawMessage(`{"viewer":{"login":"octocat"}}`),
				Errors: []GraphQLError{{Message: "partial"}},
			},
			wantErr: ErrProtocol,
		},
		{
			name:    "null data",
			resp:    &Response{Data: json.RawMessage("null")},
			wantErr: ErrIntegrity,
		},
		{
			name:    "missing data",
			resp:    &Response{},
			wantErr: ErrIntegrity,
		},
		{
			name:    "data of wrong shape",
			resp:    &Response{Data: json.RawMessage(`{"viewer":"octocat"}`)},
			wantErr: ErrDecode,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ft := &fakeTransport{respond: func(int, Request) (*Response, error) { return tt.resp, nil }}

			got, err := Execute[viewerData](context.Background(), ft, Request{Query: "query"})
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Execute() error = %v, want %v", err, tt.wantErr)
				}
				if got != nil {
					t.Errorf("Execute() = %v, want nil on error", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("Execute() error = %v", err)
			}
			if got.Viewer == nil || got.Viewer.Login != tt.wantLogin {
				t.Errorf("Execute() login = %v, want %q", got.Viewer, tt.wantLogin)
			}
		})
	}
}

func TestProtocolError_Messages(t *testing.T) {
	err := &ProtocolError{Messages: []GraphQLError{{Message: "first"}, {Message: "second"}}}
	if !strings.Contains(err.Error(), "first; second") {
		t.Errorf("Error() = %q, want joined messages", err.Error())
	}

	var pe *ProtocolError
	if !errors.As(error(err), &pe) || len(pe.Messages) != 2 {
		t.Errorf("errors.As should recover both messages")
	}
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"nil", nil, KindUnknown},
		{"plain", errors.New("boom"), KindUnknown},
		{"transport", &StatusError{StatusCode: 500}, KindTransport},
		{"decode", ErrDecode, KindDecode},
		{"protocol", &ProtocolError{}, KindProtocol},
		{"integrity", ErrIntegrity, KindIntegrity},
		{"cancelled", classifyRequestError(cancelledContext(), errors.New("dial")), KindCancelled},
		{"timeout", classifyRequestError(context.Background(), context.DeadlineExceeded), KindTransport},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.want {
				t.Errorf("KindOf(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func cancelledContext() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	return ctx
}
