// Package backendtest provides an in-process fake of the tablescope backend
// for tests.
package backendtest

import (
	"encoding/json"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/koustreak/tablescope/internal/schema"
)

// Backend routes.
const (
	RouteConnect   = "/connect-db"
	RouteBulk      = "/bulk-insert"
	RouteSearch    = "/comp-column-search"
	RouteTablePage = "/table-page"
)

// Reply is a canned response. A zero Status means 200. JSON takes
// precedence over Body; Error writes a plain-text body the way http.Error does.
type Reply struct {
	Status int
	JSON   any
	Body   string
	Error  string
	Delay  time.Duration
}

// Request is a recorded incoming request.
type Request struct {
	Method    string
	Path      string
	Query     string
	Body      []byte
	RequestID string
	Header    http.Header
}

// Decode unmarshals the recorded JSON body into v.
func (r Request) Decode(v any) error {
	return json.Unmarshal(r.Body, v)
}

// Server is a fake backend. Each route replays its queued replies in order;
// the last one repeats.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	replies  map[string][]Reply
	pages    map[string]string
	requests []Request
}

// New starts a fake backend with the same happy-path answers the real one
// gives. The server is closed when t finishes.
func New(t testing.TB) *Server {
	t.Helper()

	s := &Server{
		replies: map[string][]Reply{
			RouteConnect: {{JSON: map[string]any{"success": true, "message": "Connection Successful!"}}},
			RouteBulk:    {{JSON: map[string]any{"message": "Bulk insert completed"}}},
			RouteSearch:  {{JSON: map[string]any{"count": 0, "results": [][]string{}}}},
		},
		pages: map[string]string{},
	}

	r := chi.NewRouter()
	r.Use(s.record)
	r.Get(RouteConnect, s.replay(RouteConnect))
	r.Post(RouteBulk, s.replay(RouteBulk))
	r.Post(RouteSearch, s.replay(RouteSearch))
	r.Get(RouteTablePage, s.tablePage)
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "Invalid request method", http.StatusMethodNotAllowed)
	})

	s.Server = httptest.NewServer(r)
	t.Cleanup(s.Close)
	return s
}

// On replaces the reply queue for route.
func (s *Server) On(route string, replies ...Reply) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.replies[route] = replies
}

// SetPage serves page as the table page for table.
func (s *Server) SetPage(table, page string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pages[table] = page
}

// SetTable serves a rendered page for info.
func (s *Server) SetTable(info schema.TableInfo) {
	s.SetPage(info.Name, RenderTablePage(info))
}

// Requests returns the recorded requests for route.
func (s *Server) Requests(route string) []Request {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []Request
	for _, r := range s.requests {
		if r.Path == route {
			out = append(out, r)
		}
	}
	return out
}

// Count returns how many requests hit route.
func (s *Server) Count(route string) int {
	return len(s.Requests(route))
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		_ = r.Body.Close()
		r.Body = io.NopCloser(strings.NewReader(string(body)))

		s.mu.Lock()
		s.requests = append(s.requests, Request{
			Method:    r.Method,
			Path:      r.URL.Path,
			Query:     r.URL.RawQuery,
			Body:      body,
			RequestID: r.Header.Get("X-Request-ID"),
			Header:    r.Header.Clone(),
		})
		s.mu.Unlock()

		next.ServeHTTP(w, r)
	})
}

func (s *Server) next(route string) Reply {
	s.mu.Lock()
	defer s.mu.Unlock()

	queue := s.replies[route]
	if len(queue) == 0 {
		return Reply{Status: http.StatusNotFound, Error: "404 page not found"}
	}
	reply := queue[0]
	if len(queue) > 1 {
		s.replies[route] = queue[1:]
	}
	return reply
}

func (s *Server) replay(route string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		write(w, r, s.next(route))
	}
}

func (s *Server) tablePage(w http.ResponseWriter, r *http.Request) {
	table := r.URL.Query().Get("table")
	if table == "" {
		http.Error(w, "Table name required", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	page, ok := s.pages[table]
	s.mu.Unlock()

	if !ok {
		http.Error(w, fmt.Sprintf("Error Gathering Overview Data: unknown table %s", table), http.StatusFailedDependency)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = io.WriteString(w, page)
}

func write(w http.ResponseWriter, r *http.Request, reply Reply) {
	if reply.Delay > 0 {
		select {
		case <-time.After(reply.Delay):
		case <-r.Context().Done():
			return
		}
	}

	status := reply.Status
	if status == 0 {
		status = http.StatusOK
	}

	switch {
	case reply.Error != "":
		http.Error(w, reply.Error, status)
	case reply.JSON != nil:
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(reply.JSON)
	default:
		w.WriteHeader(status)
		_, _ = io.WriteString(w, reply.Body)
	}
}

// RenderTablePage renders info the way the backend's table page template does.
func RenderTablePage(info schema.TableInfo) string {
	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html><head><title>Table Overview</title></head><body>\n")
	fmt.Fprintf(&b, "<h1 id=\"t-title\">%s</h1>\n<table>\n", html.EscapeString(info.Name))
	b.WriteString("<tr><th>Column</th><th>Type</th><th>Key</th><th>Null</th><th>Default</th></tr>\n")
	for _, c := range info.Columns {
		fmt.Fprintf(&b, "<tr class=\"column-tr\"><td>%s</td><td>%s</td><td>%s</td><td>%s</td><td>%s</td></tr>\n",
			html.EscapeString(c.Name),
			html.EscapeString(c.DataType),
			html.EscapeString(c.KeyType),
			html.EscapeString(c.Nullable),
			html.EscapeString(c.Default),
		)
	}
	b.WriteString("</table>\n")
	fmt.Fprintf(&b, "<p>Rows: <span id=\"t-count\">%d</span></p>\n<table>\n", info.RowCount)
	for _, row := range info.SampleRows {
		b.WriteString("<tr class=\"rand-tr\">")
		for _, v := range row {
			fmt.Fprintf(&b, "<td>%s</td>", html.EscapeString(v))
		}
		b.WriteString("</tr>\n")
	}
	b.WriteString("</table>\n</body></html>\n")
	return b.String()
}
