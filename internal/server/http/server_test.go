package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/brianly1003/observe/internal/domain"
	"github.com/brianly1003/observe/internal/domain/demand"
	"github.com/brianly1003/observe/internal/state"
	"github.com/brianly1003/observe/internal/testutil"
)

type fixedClients int

func (f fixedClients) ClientCount() int { return int(f) }

func newTestServer(t *testing.T, opts Options) (*Server, *state.Document) {
	t.Helper()
	doc, err := state.NewDocument([]string{"title", "color"})
	if err != nil {
		t.Fatal(err)
	}
	return NewServer("127.0.0.1", 0, doc, opts), doc
}

func do(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestServer_Health(t *testing.T) {
	s, _ := newTestServer(t, Options{})
	rec := do(t, s, http.MethodGet, "/health", "")

	testutil.AssertEqual(t, http.StatusOK, rec.Code, "status")
	testutil.AssertContains(t, rec.Body.String(), `"status":"ok"`, "body")
	testutil.AssertEqual(t, "application/json", rec.Header().Get("Content-Type"), "content type")
}

func TestServer_ListProperties(t *testing.T) {
	s, doc := newTestServer(t, Options{})
	_ = doc.Set("title", "hello")

	rec := do(t, s, http.MethodGet, "/api/properties", "")
	testutil.AssertEqual(t, http.StatusOK, rec.Code, "status")

	var body struct {
		Properties []string       `json:"properties"`
		Values     map[string]any `json:"values"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if len(body.Properties) != 2 || body.Properties[0] != "color" || body.Properties[1] != "title" {
		t.Errorf("unexpected properties %v", body.Properties)
	}
	testutil.AssertEqual(t, "hello", body.Values["title"], "title value")
}

func TestServer_GetProperty(t *testing.T) {
	s, doc := newTestServer(t, Options{})
	_ = doc.Set("color", "blue")

	color, _ := doc.PublisherFor("color")
	color.Subscribe(testutil.NewMockSubscriber("a"))

	rec := do(t, s, http.MethodGet, "/api/properties/color", "")
	testutil.AssertEqual(t, http.StatusOK, rec.Code, "status")

	var resp PropertyResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	testutil.AssertEqual(t, "color", resp.ID, "id")
	testutil.AssertEqual(t, "blue", resp.Value, "value")
	testutil.AssertEqual(t, 1, resp.Subscribers, "subscribers")
}

func TestServer_GetProperty_NotFound(t *testing.T) {
	s, _ := newTestServer(t, Options{})
	rec := do(t, s, http.MethodGet, "/api/properties/missing", "")

	testutil.AssertEqual(t, http.StatusNotFound, rec.Code, "status")
	testutil.AssertContains(t, rec.Body.String(), domain.ErrCodePropertyNotFound, "error code")
}

func TestServer_SetProperty_Notifies(t *testing.T) {
	s, doc := newTestServer(t, Options{})

	objectSub := testutil.NewMockSubscriber("object").RequestOnSubscribe(demand.Unlimited)
	doc.WillChange().Subscribe(objectSub)

	titlePub, _ := doc.PublisherFor("title")
	titleSub := testutil.NewMockSubscriber("title").RequestOnSubscribe(demand.Unlimited)
	titlePub.Subscribe(titleSub)

	colorPub, _ := doc.PublisherFor("color")
	colorSub := testutil.NewMockSubscriber("color").RequestOnSubscribe(demand.Unlimited)
	colorPub.Subscribe(colorSub)

	rec := do(t, s, http.MethodPut, "/api/properties/title", `{"value":"new"}`)
	testutil.AssertEqual(t, http.StatusOK, rec.Code, "status")

	var resp PropertyResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	testutil.AssertEqual(t, "new", resp.Value, "response value")
	testutil.AssertEqual(t, 1, resp.Subscribers, "response subscribers")

	v, _ := doc.Get("title")
	testutil.AssertEqual(t, "new", v, "stored value")
	testutil.AssertEqual(t, 1, objectSub.Received(), "object subscriber notified")
	testutil.AssertEqual(t, 1, titleSub.Received(), "title subscriber notified")
	testutil.AssertEqual(t, 0, colorSub.Received(), "color subscriber untouched")
}

func TestServer_SetProperty_Errors(t *testing.T) {
	s, _ := newTestServer(t, Options{})

	rec := do(t, s, http.MethodPut, "/api/properties/title", `{not json`)
	testutil.AssertEqual(t, http.StatusBadRequest, rec.Code, "invalid body")
	testutil.AssertContains(t, rec.Body.String(), domain.ErrCodeInvalidPayload, "error code")

	rec = do(t, s, http.MethodPut, "/api/properties/missing", `{"value":1}`)
	testutil.AssertEqual(t, http.StatusNotFound, rec.Code, "unknown property")
}

func TestServer_MethodNotAllowed(t *testing.T) {
	s, _ := newTestServer(t, Options{})
	rec := do(t, s, http.MethodDelete, "/api/properties/title", "")
	testutil.AssertEqual(t, http.StatusMethodNotAllowed, rec.Code, "status")
}

func TestServer_Stats(t *testing.T) {
	s, doc := newTestServer(t, Options{Clients: fixedClients(3)})

	doc.WillChange().Subscribe(testutil.NewMockSubscriber("a"))
	title, _ := doc.PublisherFor("title")
	title.Subscribe(testutil.NewMockSubscriber("b"))
	title.Subscribe(testutil.NewMockSubscriber("c"))

	rec := do(t, s, http.MethodGet, "/api/stats", "")
	testutil.AssertEqual(t, http.StatusOK, rec.Code, "status")

	var stats StatsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &stats); err != nil {
		t.Fatal(err)
	}
	testutil.AssertEqual(t, 3, stats.Subscribers, "total subscribers")
	testutil.AssertEqual(t, 1, stats.ObjectSubscribers, "object subscribers")
	testutil.AssertEqual(t, 2, stats.Properties["title"], "title subscribers")
	testutil.AssertEqual(t, 0, stats.Properties["color"], "color subscribers")
	testutil.AssertEqual(t, 3, stats.Clients, "clients")
}

func TestServer_CORSPreflight(t *testing.T) {
	s, _ := newTestServer(t, Options{})

	req := httptest.NewRequest(http.MethodOptions, "/api/properties", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	testutil.AssertEqual(t, http.StatusNoContent, rec.Code, "status")
	testutil.AssertEqual(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"), "origin")
}

func TestServer_WebSocketMounted(t *testing.T) {
	called := false
	ws := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusTeapot)
	})
	s, _ := newTestServer(t, Options{WebSocket: ws})

	rec := do(t, s, http.MethodGet, "/ws", "")
	testutil.AssertTrue(t, called, "websocket handler called")
	testutil.AssertEqual(t, http.StatusTeapot, rec.Code, "status")
}

func TestServer_Pprof(t *testing.T) {
	s, _ := newTestServer(t, Options{})
	rec := do(t, s, http.MethodGet, "/debug/pprof/", "")
	testutil.AssertEqual(t, http.StatusNotFound, rec.Code, "disabled by default")

	s, _ = newTestServer(t, Options{Pprof: true})
	rec = do(t, s, http.MethodGet, "/debug/pprof/", "")
	testutil.AssertEqual(t, http.StatusOK, rec.Code, "enabled")
}
