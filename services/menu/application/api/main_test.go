package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/gorilla/sessions"

	"github.com/ghuser/bizdir/pkg/app"
	"github.com/ghuser/bizdir/pkg/auth"
	"github.com/ghuser/bizdir/pkg/config"
	"github.com/ghuser/bizdir/pkg/logger"
	"github.com/ghuser/bizdir/services/menu/application/handlers"
	appsvcs "github.com/ghuser/bizdir/services/menu/application/services"
	"github.com/ghuser/bizdir/services/menu/infrastructure/persistence/memory"
)

func testLogger() logger.Logger {
	return logger.New(&config.Config{LogLevel: "error", Environment: config.EnvTesting})
}

func newRouter(t *testing.T, middlewares ...func(http.Handler) http.Handler) http.Handler {
	t.Helper()
	menu, err := appsvcs.NewMenuService(memory.NewMenuItemRepository(), nil, testLogger())
	if err != nil {
		t.Fatalf("NewMenuService: %v", err)
	}
	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		Mount(r, &appsvcs.Services{Menu: menu}, false, middlewares...)
	})
	return r
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, http.NoBody)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rr.Body).Decode(&v); err != nil {
		t.Fatalf("decode %q: %v", rr.Body.String(), err)
	}
	return v
}

func create(t *testing.T, h http.Handler, bucket, name string) handlers.ItemResponse {
	t.Helper()
	rr := do(t, h, http.MethodPost, "/api/items",
		`{"name":"`+name+`","url":"/`+strings.ToLower(name)+`","bucket":"`+bucket+`"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create %s: %d %s", name, rr.Code, rr.Body.String())
	}
	return decode[handlers.ItemResponse](t, rr)
}

func list(t *testing.T, h http.Handler, bucket string) []handlers.ItemResponse {
	t.Helper()
	rr := do(t, h, http.MethodGet, "/api/items?bucket="+bucket, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("list %s: %d %s", bucket, rr.Code, rr.Body.String())
	}
	return decode[[]handlers.ItemResponse](t, rr)
}

func itemNames(items []handlers.ItemResponse) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Name
	}
	return out
}

func TestPostItem(t *testing.T) {
	h := newRouter(t)

	rr := do(t, h, http.MethodPost, "/api/items",
		`{"name":"Home","url":"/","bucket":"header","isActive":false,"target":"_blank"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	var raw map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &raw); err != nil {
		t.Fatalf("decode: %v", err)
	}
	for _, key := range []string{"id", "name", "url", "bucket", "order", "isActive", "target", "createdAt", "updatedAt"} {
		if _, ok := raw[key]; !ok {
			t.Errorf("response missing %q", key)
		}
	}
	if raw["isActive"] != false || raw["target"] != "_blank" || raw["order"] != float64(0) {
		t.Errorf("unexpected item: %v", raw)
	}

	second := create(t, h, "header", "Blog")
	if second.Order != 1 || !second.IsActive || second.Target != "_self" {
		t.Errorf("defaults not applied: %+v", second)
	}
}

func TestPostItem_BadRequests(t *testing.T) {
	h := newRouter(t)

	tests := []struct {
		name string
		body string
	}{
		{"missing name", `{"url":"/","bucket":"header"}`},
		{"missing url", `{"name":"Home","bucket":"header"}`},
		{"missing bucket", `{"name":"Home","url":"/"}`},
		{"unknown bucket", `{"name":"Home","url":"/","bucket":"sidebar"}`},
		{"bad target", `{"name":"Home","url":"/","bucket":"header","target":"_top"}`},
		{"order not accepted", `{"name":"Home","url":"/","bucket":"header","order":5}`},
		{"bad url", `{"name":"Home","url":"ftp://x","bucket":"header"}`},
		{"malformed json", `{"name":`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := do(t, h, http.MethodPost, "/api/items", tt.body)
			if rr.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", rr.Code, rr.Body.String())
			}
			if body := decode[map[string]any](t, rr); body["error"] == "" {
				t.Error("expected error message")
			}
		})
	}
}

func TestListItems(t *testing.T) {
	h := newRouter(t)
	create(t, h, "header", "Home")
	create(t, h, "header", "Categories")
	create(t, h, "footer", "Contact")

	if diff := cmp.Diff([]string{"Home", "Categories"}, itemNames(list(t, h, "header"))); diff != "" {
		t.Errorf("header (-want +got):\n%s", diff)
	}
	if got := list(t, h, "footer-column-1"); len(got) != 0 {
		t.Errorf("expected empty list, got %v", got)
	}

	for _, q := range []string{"/api/items", "/api/items?bucket=sidebar"} {
		if rr := do(t, h, http.MethodGet, q, ""); rr.Code != http.StatusBadRequest {
			t.Errorf("GET %s: expected 400, got %d", q, rr.Code)
		}
	}
}

func TestGetItem(t *testing.T) {
	h := newRouter(t)
	home := create(t, h, "header", "Home")

	rr := do(t, h, http.MethodGet, "/api/items/"+home.ID.String(), "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if got := decode[handlers.ItemResponse](t, rr); got.ID != home.ID {
		t.Errorf("got %s", got.ID)
	}

	if rr := do(t, h, http.MethodGet, "/api/items/"+uuid.NewString(), ""); rr.Code != http.StatusNotFound {
		t.Errorf("unknown id: expected 404, got %d", rr.Code)
	}
	if rr := do(t, h, http.MethodGet, "/api/items/not-a-uuid", ""); rr.Code != http.StatusBadRequest {
		t.Errorf("malformed id: expected 400, got %d", rr.Code)
	}
}

func TestPutItem(t *testing.T) {
	h := newRouter(t)
	create(t, h, "header", "Home")
	blog := create(t, h, "header", "Blog")

	rr := do(t, h, http.MethodPut, "/api/items/"+blog.ID.String(), `{"name":"News","isActive":false}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	got := decode[handlers.ItemResponse](t, rr)
	if got.Name != "News" || got.IsActive || got.URL != blog.URL || got.Order != blog.Order {
		t.Errorf("unexpected item: %+v", got)
	}

	tests := []struct {
		name string
		path string
		body string
		want int
	}{
		{"unknown id", "/api/items/" + uuid.NewString(), `{"name":"X"}`, http.StatusNotFound},
		{"empty name", "/api/items/" + blog.ID.String(), `{"name":""}`, http.StatusBadRequest},
		{"order field", "/api/items/" + blog.ID.String(), `{"order":0}`, http.StatusBadRequest},
		{"bucket field", "/api/items/" + blog.ID.String(), `{"bucket":"footer"}`, http.StatusBadRequest},
		{"bad target", "/api/items/" + blog.ID.String(), `{"target":"_parent"}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if rr := do(t, h, http.MethodPut, tt.path, tt.body); rr.Code != tt.want {
				t.Errorf("expected %d, got %d: %s", tt.want, rr.Code, rr.Body.String())
			}
		})
	}
}

func TestDeleteItem(t *testing.T) {
	h := newRouter(t)
	create(t, h, "header", "A")
	b := create(t, h, "header", "B")
	create(t, h, "header", "C")

	if rr := do(t, h, http.MethodDelete, "/api/items/"+b.ID.String(), ""); rr.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rr.Code)
	}
	if rr := do(t, h, http.MethodDelete, "/api/items/"+b.ID.String(), ""); rr.Code != http.StatusNotFound {
		t.Errorf("second delete: expected 404, got %d", rr.Code)
	}

	got := list(t, h, "header")
	if diff := cmp.Diff([]string{"A", "C"}, itemNames(got)); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
	if got[0].Order != 0 || got[1].Order != 2 {
		t.Errorf("survivors renumbered: %d, %d", got[0].Order, got[1].Order)
	}
}

func TestMoveItem(t *testing.T) {
	h := newRouter(t)
	create(t, h, "footer", "Contact")
	home := create(t, h, "header", "Home")

	rr := do(t, h, http.MethodPost, "/api/items/"+home.ID.String()+"/move", `{"bucket":"footer"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	got := decode[handlers.ItemResponse](t, rr)
	if got.Bucket != "footer" || got.Order != 1 {
		t.Errorf("unexpected item: %+v", got)
	}
	if rr := do(t, h, http.MethodPost, "/api/items/"+home.ID.String()+"/move", `{"bucket":"aside"}`); rr.Code != http.StatusBadRequest {
		t.Errorf("unknown bucket: expected 400, got %d", rr.Code)
	}
}

func TestReorderItems(t *testing.T) {
	h := newRouter(t)
	home := create(t, h, "header", "Home")
	cats := create(t, h, "header", "Categories")
	feat := create(t, h, "header", "Featured")

	body := `{"bucket":"header","orderedIds":["` + feat.ID.String() + `","` + home.ID.String() + `","` + cats.ID.String() + `"]}`
	rr := do(t, h, http.MethodPost, "/api/items/reorder", body)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if rr.Body.Len() != 0 {
		t.Errorf("expected empty body, got %q", rr.Body.String())
	}

	got := list(t, h, "header")
	if diff := cmp.Diff([]string{"Featured", "Home", "Categories"}, itemNames(got)); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
	for i, it := range got {
		if it.Order != i {
			t.Errorf("%s: order = %d, want %d", it.Name, it.Order, i)
		}
	}

	bad := []struct {
		name string
		body string
	}{
		{"omission", `{"bucket":"header","orderedIds":["` + feat.ID.String() + `"]}`},
		{"unknown bucket", `{"bucket":"sidebar","orderedIds":[]}`},
		{"missing ids", `{"bucket":"header"}`},
		{"not a uuid", `{"bucket":"header","orderedIds":["nope"]}`},
	}
	for _, tt := range bad {
		t.Run(tt.name, func(t *testing.T) {
			if rr := do(t, h, http.MethodPost, "/api/items/reorder", tt.body); rr.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d: %s", rr.Code, rr.Body.String())
			}
		})
	}

	if diff := cmp.Diff([]string{"Featured", "Home", "Categories"}, itemNames(list(t, h, "header"))); diff != "" {
		t.Errorf("rejected reorders changed the bucket (-want +got):\n%s", diff)
	}
}

func TestListBuckets(t *testing.T) {
	h := newRouter(t)
	rr := do(t, h, http.MethodGet, "/api/buckets", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	got := decode[handlers.BucketsResponse](t, rr)
	want := []string{"header", "footer", "footer-column-1", "footer-column-2"}
	if diff := cmp.Diff(want, got.Buckets); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestMount_AdminGate(t *testing.T) {
	store := sessions.NewCookieStore(
		[]byte("test-auth-key-must-be-32-bytes!!"),
		[]byte("test-enc-key-must-be-32-bytes!!!"),
	)
	h := newRouter(t, auth.RequireAdmin(store, testLogger()))

	if rr := do(t, h, http.MethodGet, "/api/items?bucket=header", ""); rr.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous: expected 401, got %d", rr.Code)
	}

	login := httptest.NewRecorder()
	if err := auth.StartSession(login, httptest.NewRequest(http.MethodPost, "/login", http.NoBody), store,
		auth.Principal{UserID: uuid.New(), Role: auth.RoleAdmin}); err != nil {
		t.Fatalf("start session: %v", err)
	}
	req := httptest.NewRequest(http.MethodGet, "/api/items?bucket=header", http.NoBody)
	for _, c := range login.Result().Cookies() {
		req.AddCookie(c)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("admin: expected 200, got %d", rr.Code)
	}
}

func TestMenuRoutes_RequiresSessionStoreWhenGated(t *testing.T) {
	a := &app.Application{
		Config: &config.Config{RequireAdmin: true},
		Logger: testLogger(),
	}
	if err := MenuRoutes(chi.NewRouter(), a); err == nil {
		t.Fatal("expected error without a session store")
	}

	a.Config.RequireAdmin = false
	if err := MenuRoutes(chi.NewRouter(), a); err != nil {
		t.Fatalf("ungated routes: %v", err)
	}
}
