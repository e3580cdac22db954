package api

import (
	"errors"
	"io"
	"strings"
	"sync"
	"testing"

	http "github.com/bogdanfinn/fhttp"

	apierrors "github.com/productsiksha/pmsiksha/internal/errors"
	"github.com/productsiksha/pmsiksha/internal/models"
)

// fakeDoer replays scripted responses and records every request
type fakeDoer struct {
	mu        sync.Mutex
	responses []*http.Response
	errs      []error
	calls     int

	requests []*http.Request
	bodies   []string
}

func (f *fakeDoer) Do(req *http.Request) (*http.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	body := ""
	if req.Body != nil {
		data, _ := io.ReadAll(req.Body)
		body = string(data)
	}
	f.requests = append(f.requests, req)
	f.bodies = append(f.bodies, body)

	i := f.calls
	f.calls++

	if i < len(f.errs) && f.errs[i] != nil {
		return nil, f.errs[i]
	}
	if i < len(f.responses) {
		return f.responses[i], nil
	}
	return jsonResponse(200, `{}`), nil
}

func (f *fakeDoer) lastRequest(t *testing.T) *http.Request {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.requests) == 0 {
		t.Fatal("no request was sent")
	}
	return f.requests[len(f.requests)-1]
}

func (f *fakeDoer) lastBody(t *testing.T) string {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.bodies) == 0 {
		t.Fatal("no request was sent")
	}
	return f.bodies[len(f.bodies)-1]
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

// timeoutErr satisfies net.Error
type timeoutErr struct{}

func (timeoutErr) Error() string   { return "deadline exceeded" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func newTestClient(t *testing.T, doer *fakeDoer, opts ...ClientOption) *Client {
	t.Helper()
	opts = append([]ClientOption{WithHTTPClient(doer)}, opts...)
	client, err := NewClient("https://api.test", opts...)
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	return client
}

func TestNewClient_EmptyBaseURL(t *testing.T) {
	if _, err := NewClient(""); err == nil {
		t.Error("expected error for empty base URL")
	}
}

func TestNewClient_TrimsTrailingSlash(t *testing.T) {
	doer := &fakeDoer{responses: []*http.Response{jsonResponse(200, `{"status":"healthy"}`)}}
	client, err := NewClient("https://api.test/", WithHTTPClient(doer))
	if err != nil {
		t.Fatal(err)
	}

	if _, err := client.Health(); err != nil {
		t.Fatal(err)
	}

	if got := doer.lastRequest(t).URL.String(); got != "https://api.test/api/health" {
		t.Errorf("request URL = %s", got)
	}
}

func TestDo_AttachesBearerToken(t *testing.T) {
	doer := &fakeDoer{responses: []*http.Response{jsonResponse(200, `{"category":"x","count":0,"questions":[]}`)}}
	client := newTestClient(t, doer, WithToken("jwt-abc"))

	if _, err := client.Questions("product-design", models.QuestionFilter{}); err != nil {
		t.Fatalf("Questions failed: %v", err)
	}

	if got := doer.lastRequest(t).Header.Get("Authorization"); got != "Bearer jwt-abc" {
		t.Errorf("Authorization = %q", got)
	}
}

func TestDo_MissingTokenFailsFast(t *testing.T) {
	doer := &fakeDoer{}
	client := newTestClient(t, doer)

	_, err := client.Questions("product-design", models.QuestionFilter{})
	if !errors.Is(err, apierrors.ErrNotLoggedIn) {
		t.Errorf("err = %v, want ErrNotLoggedIn", err)
	}
	if doer.calls != 0 {
		t.Error("no request should be sent without a token")
	}
}

func TestDo_UnauthorizedBecomesAuthError(t *testing.T) {
	doer := &fakeDoer{responses: []*http.Response{
		jsonResponse(401, `{"error":"Token has expired"}`),
	}}
	client := newTestClient(t, doer, WithToken("stale"))

	_, err := client.Questions("product-design", models.QuestionFilter{})
	if !apierrors.IsAuthError(err) {
		t.Errorf("err = %v, want auth error", err)
	}
	if !strings.Contains(err.Error(), "Token has expired") {
		t.Errorf("error should carry the server message, got %v", err)
	}
}

func TestDo_ServerErrorBecomesAPIError(t *testing.T) {
	doer := &fakeDoer{responses: []*http.Response{
		jsonResponse(500, `{"error":"Database connection failed"}`),
	}}
	client := newTestClient(t, doer)

	_, err := client.Health()

	var apiErr *apierrors.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %v, want APIError", err)
	}
	if apiErr.StatusCode != 500 {
		t.Errorf("StatusCode = %d", apiErr.StatusCode)
	}
	if apiErr.Message != "Database connection failed" {
		t.Errorf("Message = %q", apiErr.Message)
	}
}

func TestDo_TimeoutBecomesTimeoutError(t *testing.T) {
	doer := &fakeDoer{errs: []error{timeoutErr{}}}
	client := newTestClient(t, doer)

	_, err := client.Health()

	var tErr *apierrors.TimeoutError
	if !errors.As(err, &tErr) {
		t.Errorf("err = %v, want TimeoutError", err)
	}
}

func TestDo_TransportFailureBecomesNetworkError(t *testing.T) {
	doer := &fakeDoer{errs: []error{errors.New("connection refused")}}
	client := newTestClient(t, doer)

	_, err := client.Health()

	var nErr *apierrors.NetworkError
	if !errors.As(err, &nErr) {
		t.Fatalf("err = %v, want NetworkError", err)
	}
	if !strings.Contains(nErr.Error(), "connection refused") {
		t.Errorf("cause not preserved: %v", nErr)
	}
}

func TestSetToken(t *testing.T) {
	client := newTestClient(t, &fakeDoer{})

	client.SetToken("fresh")
	if client.Token() != "fresh" {
		t.Errorf("Token = %q", client.Token())
	}
}
