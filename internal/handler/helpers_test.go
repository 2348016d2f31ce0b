package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/JuNicky/Rabobank-Technical-Assessment/internal/handler"
	"github.com/JuNicky/Rabobank-Technical-Assessment/internal/metrics"
	"github.com/JuNicky/Rabobank-Technical-Assessment/internal/repository/sqlite"
	"github.com/JuNicky/Rabobank-Technical-Assessment/internal/service"
)

type testServer struct {
	*httptest.Server
	metrics *metrics.Metrics
}

// newTestServer wires the full stack on a temp-dir database. limiter may be nil.
func newTestServer(t *testing.T, limiter handler.Limiter) *testServer {
	t.Helper()
	db, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, db.Migrate(context.Background()))
	t.Cleanup(func() { db.Close() })

	m := metrics.New()
	users := service.NewUserService(db.Users())
	books := service.NewBookService(db.Books(), db.Users())
	lending := service.NewLendingService(users, books, m)

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux, handler.Deps{
		Books:   books,
		Users:   users,
		Lending: lending,
		DB:      db,
		Metrics: m.Handler(),
		Limiter: limiter,
	})

	srv := httptest.NewServer(handler.Wrap(mux, m))
	t.Cleanup(srv.Close)
	return &testServer{Server: srv, metrics: m}
}

// do sends a request with an optional JSON body and returns the status code
// and raw response body.
func (s *testServer) do(t *testing.T, method, path string, body any) (int, []byte) {
	t.Helper()
	var rd io.Reader
	if body != nil {
		if raw, ok := body.(string); ok {
			rd = bytes.NewBufferString(raw)
		} else {
			b, err := json.Marshal(body)
			require.NoError(t, err)
			rd = bytes.NewReader(b)
		}
	}

	req, err := http.NewRequest(method, s.URL+path, rd)
	require.NoError(t, err)
	if rd != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, data
}

func decode[T any](t *testing.T, data []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(data, &v), "body: %s", data)
	return v
}

func errorMessage(t *testing.T, data []byte) string {
	t.Helper()
	return decode[map[string]string](t, data)["error"]
}

func (s *testServer) createUser(t *testing.T, name string) handler.UserDTO {
	t.Helper()
	status, data := s.do(t, http.MethodPost, "/users", map[string]any{"userName": name})
	require.Equal(t, http.StatusCreated, status, "body: %s", data)
	return decode[handler.UserDTO](t, data)
}

func (s *testServer) createBook(t *testing.T, title, author string) handler.BookDTO {
	t.Helper()
	status, data := s.do(t, http.MethodPost, "/books", map[string]any{"title": title, "author": author})
	require.Equal(t, http.StatusCreated, status, "body: %s", data)
	return decode[handler.BookDTO](t, data)
}

func itoa(id int64) string { return strconv.FormatInt(id, 10) }
