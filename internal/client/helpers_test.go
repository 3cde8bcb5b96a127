package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/fivetwenty-io/webflow/pkg/webflow"
	"github.com/stretchr/testify/require"
)

// fakeWebflow serves the collection item endpoints from memory and records
// every request it sees.
type fakeWebflow struct {
	mu sync.Mutex

	// pageLimit is the page size the server enforces, whatever the client asks.
	pageLimit int
	items     map[string][]webflow.Item
	// failListAt makes GET items at this offset answer with an error envelope.
	failListAt int

	requests []string
	bodies   []map[string]any
	nextID   int
}

func newFakeWebflow() *fakeWebflow {
	return &fakeWebflow{
		pageLimit:  100,
		items:      make(map[string][]webflow.Item),
		failListAt: -1,
	}
}

func (f *fakeWebflow) seed(collectionID string, count int, name func(i int) string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for i := range count {
		f.items[collectionID] = append(f.items[collectionID], webflow.Item{
			"_id":       fmt.Sprintf("%s-item-%d", collectionID, i),
			"name":      name(i),
			"_archived": false,
			"_draft":    false,
		})
	}
}

func (f *fakeWebflow) requestLog() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]string(nil), f.requests...)
}

func (f *fakeWebflow) count(prefix string) int {
	total := 0

	for _, request := range f.requestLog() {
		if strings.HasPrefix(request, prefix) {
			total++
		}
	}

	return total
}

func (f *fakeWebflow) ServeHTTP(writer http.ResponseWriter, request *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	entry := request.Method + " " + request.URL.Path
	if request.URL.RawQuery != "" {
		entry += "?" + request.URL.RawQuery
	}

	f.requests = append(f.requests, entry)

	parts := strings.Split(strings.Trim(request.URL.Path, "/"), "/")
	if len(parts) != 3 || parts[0] != "collections" || parts[2] != "items" {
		writer.WriteHeader(http.StatusNotFound)
		_, _ = writer.Write([]byte(`{"code": 404, "msg": "Route not found"}`))

		return
	}

	collectionID := parts[1]

	switch request.Method {
	case http.MethodGet:
		f.list(writer, request, collectionID)
	case http.MethodPost:
		f.create(writer, request, collectionID)
	default:
		writer.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (f *fakeWebflow) list(writer http.ResponseWriter, request *http.Request, collectionID string) {
	offset, _ := strconv.Atoi(request.URL.Query().Get("offset"))

	if offset == f.failListAt {
		writer.WriteHeader(http.StatusInternalServerError)
		_, _ = writer.Write([]byte(`{"code": 500, "msg": "Internal Error"}`))

		return
	}

	all := f.items[collectionID]
	end := min(offset+f.pageLimit, len(all))

	page := []webflow.Item{}
	if offset < end {
		page = all[offset:end]
	}

	_ = json.NewEncoder(writer).Encode(webflow.ItemsPage{
		Items:  page,
		Count:  len(page),
		Limit:  f.pageLimit,
		Offset: offset,
		Total:  len(all),
	})
}

func (f *fakeWebflow) create(writer http.ResponseWriter, request *http.Request, collectionID string) {
	raw, _ := io.ReadAll(request.Body)

	var body webflow.ItemFields

	_ = json.Unmarshal(raw, &body)
	f.bodies = append(f.bodies, body.Fields)

	item := webflow.Item{}
	for key, value := range body.Fields {
		item[key] = value
	}

	f.nextID++
	item["_id"] = fmt.Sprintf("created-%d", f.nextID)

	f.items[collectionID] = append(f.items[collectionID], item)

	_ = json.NewEncoder(writer).Encode(item)
}

// newTestClient builds a client against handler with a fixed token.
func newTestClient(t *testing.T, handler http.Handler, configure ...func(*webflow.Config)) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	config := &webflow.Config{
		Token:   "test-token",
		BaseURL: server.URL,
	}

	for _, fn := range configure {
		fn(config)
	}

	client, err := New(context.Background(), config)
	require.NoError(t, err)

	t.Cleanup(func() { _ = client.Close() })

	return client
}

// jsonHandler answers every request with status and body after running check.
func jsonHandler(t *testing.T, status int, body string, check func(r *http.Request, payload []byte)) http.HandlerFunc {
	t.Helper()

	return func(writer http.ResponseWriter, request *http.Request) {
		payload, _ := io.ReadAll(request.Body)

		if check != nil {
			check(request, payload)
		}

		writer.Header().Set("Content-Type", "application/json")
		writer.WriteHeader(status)
		_, _ = writer.Write([]byte(body))
	}
}
