package api

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/fidellopezm03/inventory-admin/cmd/internal/db"
	"github.com/fidellopezm03/inventory-admin/cmd/internal/env"
	"github.com/fidellopezm03/inventory-admin/cmd/internal/events"
	"github.com/fidellopezm03/inventory-admin/cmd/internal/testutil"
	"github.com/fidellopezm03/inventory-admin/cmd/model"
	"github.com/fidellopezm03/inventory-admin/cmd/repository"
	"github.com/fidellopezm03/inventory-admin/cmd/service"
)

const testSecret = "api-secret"

type recordingPublisher struct {
	mu     sync.Mutex
	topics []string
}

func (p *recordingPublisher) Publish(_ context.Context, ev events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.topics = append(p.topics, ev.Type)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

type testServer struct {
	t       *testing.T
	h       http.Handler
	db      *gorm.DB
	events  *recordingPublisher
	token   string
	uploads string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gdb := testutil.OpenTestDB(t)
	if _, err := db.SeedAdmin(context.Background(), gdb, "Admin", "admin@example.com", "admin-password"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	users := repository.NewUserRepo(gdb)
	pub := &recordingPublisher{}
	uploads := t.TempDir()
	h := NewRouter(Deps{
		Env:    &env.Env{AddrClient: "http://localhost:3000", UploadDir: uploads, MaxUploadMB: 1},
		DB:     gdb,
		Auth:   service.NewAuthService(service.NewTableCredentials(users), users, service.NewSessions(testSecret, time.Hour, false)),
		Events: pub,
	})
	return &testServer{
		t:       t,
		h:       h,
		db:      gdb,
		events:  pub,
		token:   testutil.GenerateJWTHS256(t, testSecret, "1", "Admin", time.Hour),
		uploads: uploads,
	}
}

func (s *testServer) do(method, path, body string) *httptest.ResponseRecorder {
	s.t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}
	rec := httptest.NewRecorder()
	s.h.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) mustCreate(path, body string) uint {
	s.t.Helper()
	rec := s.do(http.MethodPost, path, body)
	if rec.Code != http.StatusCreated {
		s.t.Fatalf("POST %s: status=%d body=%s", path, rec.Code, rec.Body.String())
	}
	var out struct {
		ID uint `json:"id"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		s.t.Fatalf("decode: %v", err)
	}
	return out.ID
}

func (s *testServer) count(m any) int64 {
	var n int64
	if err := s.db.Model(m).Count(&n).Error; err != nil {
		s.t.Fatalf("count: %v", err)
	}
	return n
}

func decodeMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode message from %q: %v", rec.Body.String(), err)
	}
	return body.Message
}

// seed creates one row of every resource and returns their ids by path.
func (s *testServer) seed() map[string]uint {
	ids := map[string]uint{}
	ids["categories"] = s.mustCreate("/api/categories", `{"name":"Shoes"}`)
	ids["brands"] = s.mustCreate("/api/brands", `{"name":"Acme"}`)
	ids["products"] = s.mustCreate("/api/products", `{"name":"Runner","price":"49.90","categoryId":`+itoa(ids["categories"])+`}`)
	ids["variants"] = s.mustCreate("/api/variants", `{"name":"Runner 42","brandId":`+itoa(ids["brands"])+`,"categoryId":`+itoa(ids["categories"])+`,"productId":`+itoa(ids["products"])+`,"price":59.9,"quantity":4}`)
	ids["suppliers"] = s.mustCreate("/api/suppliers", `{"name":"Globex","email":"sales@globex.test"}`)
	ids["transactions"] = s.mustCreate("/api/transactions", `{"variantId":`+itoa(ids["variants"])+`,"type":"sale","quantity":2}`)
	ids["users"] = s.mustCreate("/api/users", `{"name":"Bob","email":"bob@example.com","password":"bob-password"}`)
	return ids
}

func itoa(id uint) string {
	b, _ := json.Marshal(id)
	return string(b)
}

func TestPostMissingRequiredFields(t *testing.T) {
	s := newTestServer(t)
	cases := []struct {
		path  string
		body  string
		model any
		want  string
	}{
		{"/api/users", `{"name":"x","password":"p"}`, &model.User{}, "Name, email, and password are required"},
		{"/api/categories", `{}`, &model.Category{}, "Name is required"},
		{"/api/brands", `{"name":"  "}`, &model.Brand{}, "Name is required"},
		{"/api/products", `{"name":"x","price":1}`, &model.Product{}, "Name, categoryId and price are required"},
		{"/api/variants", `{"name":"x","brandId":1,"categoryId":1,"price":1}`, &model.Variant{}, "Missing required fields"},
		{"/api/suppliers", `{"contact":"x"}`, &model.Supplier{}, "Name is required"},
		{"/api/transactions", `{"variantId":1,"quantity":1}`, &model.Transaction{}, "variantId, type and quantity are required"},
	}
	for _, tc := range cases {
		before := s.count(tc.model)
		rec := s.do(http.MethodPost, tc.path, tc.body)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: status=%d body=%s", tc.path, rec.Code, rec.Body.String())
		}
		if msg := decodeMessage(t, rec); msg != tc.want {
			t.Fatalf("%s: message=%q want %q", tc.path, msg, tc.want)
		}
		if after := s.count(tc.model); after != before {
			t.Fatalf("%s: row persisted on invalid POST", tc.path)
		}
	}
}

func TestPutUnknownIDIsNotFound(t *testing.T) {
	s := newTestServer(t)
	ids := s.seed()
	bodies := map[string]string{
		"users":        `{"name":"Zed"}`,
		"categories":   `{"name":"Other"}`,
		"brands":       `{"name":"Other"}`,
		"products":     `{"name":"Other"}`,
		"variants":     `{"quantity":9}`,
		"suppliers":    `{"name":"Other"}`,
		"transactions": `{"note":"late"}`,
	}
	for resource, body := range bodies {
		rec := s.do(http.MethodPut, "/api/"+resource+"/9999", body)
		if rec.Code != http.StatusNotFound {
			t.Fatalf("%s: status=%d body=%s", resource, rec.Code, rec.Body.String())
		}
		rec = s.do(http.MethodPut, "/api/"+resource+"/abc", body)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: invalid id status=%d", resource, rec.Code)
		}
		rec = s.do(http.MethodPut, "/api/"+resource+"/"+itoa(ids[resource]), `{}`)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: empty update status=%d", resource, rec.Code)
		}
	}

	var c model.Category
	s.db.First(&c, ids["categories"])
	if c.Name != "Shoes" {
		t.Fatalf("category changed: %q", c.Name)
	}
}

func TestDuplicates(t *testing.T) {
	s := newTestServer(t)
	s.mustCreate("/api/suppliers", `{"name":"Globex"}`)
	rec := s.do(http.MethodPost, "/api/suppliers", `{"name":"Globex"}`)
	if rec.Code != http.StatusBadRequest || decodeMessage(t, rec) != "Supplier with this name already exists" {
		t.Fatalf("supplier dup: %d %s", rec.Code, rec.Body.String())
	}
	if n := s.count(&model.Supplier{}); n != 1 {
		t.Fatalf("suppliers=%d", n)
	}

	rec = s.do(http.MethodPost, "/api/users", `{"name":"Other","email":"ADMIN@example.com","password":"other-password"}`)
	if rec.Code != http.StatusBadRequest || decodeMessage(t, rec) != "Email already exists" {
		t.Fatalf("user dup: %d %s", rec.Code, rec.Body.String())
	}
	if n := s.count(&model.User{}); n != 1 {
		t.Fatalf("users=%d", n)
	}
}

func TestListCacheInvalidatedByRelatedWrite(t *testing.T) {
	s := newTestServer(t)
	ids := s.seed()

	if rec := s.do(http.MethodGet, "/api/brands", ""); rec.Header().Get("X-Cache") != "MISS" {
		t.Fatalf("first read should miss")
	}
	if rec := s.do(http.MethodGet, "/api/brands", ""); rec.Header().Get("X-Cache") != "HIT" {
		t.Fatalf("second read should hit")
	}
	if rec := s.do(http.MethodGet, "/api/suppliers", ""); rec.Header().Get("X-Cache") != "MISS" {
		t.Fatalf("suppliers first read should miss")
	}

	rec := s.do(http.MethodPut, "/api/variants/"+itoa(ids["variants"]), `{"quantity":0,"status":"out of stock"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("update variant: %d %s", rec.Code, rec.Body.String())
	}
	var v model.Variant
	_ = json.Unmarshal(rec.Body.Bytes(), &v)
	if v.Status != model.StatusOutOfStock || v.Quantity != 0 {
		t.Fatalf("variant=%+v", v)
	}

	rec = s.do(http.MethodGet, "/api/brands", "")
	if rec.Header().Get("X-Cache") != "MISS" {
		t.Fatalf("brands should be refetched after a variant write")
	}
	var brands []model.Brand
	_ = json.Unmarshal(rec.Body.Bytes(), &brands)
	if len(brands) != 1 || len(brands[0].Variants) != 1 || brands[0].Variants[0].Status != model.StatusOutOfStock {
		t.Fatalf("brands=%+v", brands)
	}
	if rec := s.do(http.MethodGet, "/api/suppliers", ""); rec.Header().Get("X-Cache") != "HIT" {
		t.Fatalf("suppliers should stay cached")
	}
}

func TestCategoryByName(t *testing.T) {
	s := newTestServer(t)
	s.mustCreate("/api/categories", `{"name":"Outdoor"}`)

	rec := s.do(http.MethodGet, "/api/categories/byName/OUTDOOR", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d", rec.Code)
	}
	var c model.Category
	_ = json.Unmarshal(rec.Body.Bytes(), &c)
	if c.Name != "Outdoor" {
		t.Fatalf("category=%+v", c)
	}

	s.mustCreate("/api/categories", `{"name":"Épicerie"}`)
	for _, name := range []string{"Épicerie", "épicerie", "ÉPICERIE"} {
		rec := s.do(http.MethodGet, "/api/categories/byName/"+url.PathEscape(name), "")
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: status=%d", name, rec.Code)
		}
	}

	rec = s.do(http.MethodGet, "/api/categories/byName/indoor", "")
	if rec.Code != http.StatusNotFound || decodeMessage(t, rec) != "Category not found" {
		t.Fatalf("missing: %d %s", rec.Code, rec.Body.String())
	}
}

func TestDeletes(t *testing.T) {
	s := newTestServer(t)
	ids := s.seed()

	rec := s.do(http.MethodDelete, "/api/brands/"+itoa(ids["brands"]), "")
	if rec.Code != http.StatusBadRequest || decodeMessage(t, rec) != "Brand is still referenced" {
		t.Fatalf("brand delete: %d %s", rec.Code, rec.Body.String())
	}
	rec = s.do(http.MethodDelete, "/api/variants/"+itoa(ids["variants"]), "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("variant with transactions deleted: %d", rec.Code)
	}

	if rec := s.do(http.MethodDelete, "/api/transactions/"+itoa(ids["transactions"]), ""); rec.Code != http.StatusNoContent {
		t.Fatalf("transaction delete: %d", rec.Code)
	}
	rec = s.do(http.MethodDelete, "/api/variants/"+itoa(ids["variants"]), "")
	if rec.Code != http.StatusOK || decodeMessage(t, rec) != "Variant deleted successfully" {
		t.Fatalf("variant delete: %d %s", rec.Code, rec.Body.String())
	}
	rec = s.do(http.MethodGet, "/api/variants", "")
	if strings.TrimSpace(rec.Body.String()) != "[]" {
		t.Fatalf("variants=%s", rec.Body.String())
	}
	if s.count(&model.Brand{}) != 1 || s.count(&model.Category{}) != 1 {
		t.Fatalf("brand and category must survive a variant delete")
	}

	rec = s.do(http.MethodDelete, "/api/suppliers/"+itoa(ids["suppliers"]), "")
	if rec.Code != http.StatusOK || decodeMessage(t, rec) != "Supplier deleted successfully" {
		t.Fatalf("supplier delete: %d %s", rec.Code, rec.Body.String())
	}
	if rec := s.do(http.MethodDelete, "/api/suppliers/"+itoa(ids["suppliers"]), ""); rec.Code != http.StatusNotFound {
		t.Fatalf("second supplier delete: %d", rec.Code)
	}
	if rec := s.do(http.MethodDelete, "/api/users/"+itoa(ids["users"]), ""); rec.Code != http.StatusNoContent {
		t.Fatalf("user delete: %d", rec.Code)
	}

	s.events.mu.Lock()
	defer s.events.mu.Unlock()
	want := []string{"transaction.deleted", "variant.deleted", "supplier.deleted", "user.deleted"}
	got := s.events.topics[len(s.events.topics)-len(want):]
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("topics=%v", s.events.topics)
		}
	}
}

func TestWriteWithUnknownReference(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(http.MethodPost, "/api/products", `{"name":"x","price":1,"categoryId":42}`)
	if rec.Code != http.StatusBadRequest || decodeMessage(t, rec) != "Referenced record does not exist" {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}
}

func TestUserPasswordNeverReturned(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(http.MethodGet, "/api/users", "")
	if rec.Code != http.StatusOK || strings.Contains(rec.Body.String(), "password") {
		t.Fatalf("body=%s", rec.Body.String())
	}
}

func TestSignInForm(t *testing.T) {
	s := newTestServer(t)
	s.token = ""

	post := func(email, password string) *httptest.ResponseRecorder {
		form := url.Values{"email": {email}, "password": {password}}
		req := httptest.NewRequest(http.MethodPost, "/auth/signin", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		rec := httptest.NewRecorder()
		s.h.ServeHTTP(rec, req)
		return rec
	}

	rec := post("admin@example.com", "wrong")
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/auth/signin?error=CredentialsSignin" {
		t.Fatalf("wrong credentials: %d %q", rec.Code, rec.Header().Get("Location"))
	}
	if len(rec.Result().Cookies()) != 0 {
		t.Fatalf("cookie issued on failed sign-in")
	}

	rec = post("admin@example.com", "admin-password")
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/dashboard" {
		t.Fatalf("sign in: %d %q", rec.Code, rec.Header().Get("Location"))
	}
	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != service.CookieName || cookies[0].Value == "" {
		t.Fatalf("cookies=%v", cookies)
	}

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.AddCookie(cookies[0])
	dash := httptest.NewRecorder()
	s.h.ServeHTTP(dash, req)
	if dash.Code != http.StatusOK {
		t.Fatalf("dashboard: %d %s", dash.Code, dash.Body.String())
	}
	var summary model.DashboardSummary
	_ = json.Unmarshal(dash.Body.Bytes(), &summary)
	if summary.Users != 1 {
		t.Fatalf("summary=%+v", summary)
	}
}

func TestSignInJSONAndRoles(t *testing.T) {
	s := newTestServer(t)
	s.mustCreate("/api/users", `{"name":"Bob","email":"bob@example.com","password":"bob-password","role":"user"}`)
	s.token = ""

	rec := s.do(http.MethodPost, "/auth/signin", `{"email":"bob@example.com","password":"nope"}`)
	if rec.Code != http.StatusUnauthorized || decodeMessage(t, rec) != "Invalid email or password" {
		t.Fatalf("wrong password: %d %s", rec.Code, rec.Body.String())
	}

	rec = s.do(http.MethodPost, "/auth/signin", `{"email":"bob@example.com","password":"bob-password"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("sign in: %d %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Token string          `json:"token"`
		User  model.Principal `json:"user"`
	}
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.User.Role != model.RoleUser {
		t.Fatalf("user=%+v", resp.User)
	}

	s.token = resp.Token
	if rec := s.do(http.MethodGet, "/api/variants", ""); rec.Code != http.StatusForbidden {
		t.Fatalf("member api access: %d", rec.Code)
	}
	if rec := s.do(http.MethodGet, "/dashboard", ""); rec.Code != http.StatusFound || rec.Header().Get("Location") != "/" {
		t.Fatalf("member dashboard: %d %q", rec.Code, rec.Header().Get("Location"))
	}
	if rec := s.do(http.MethodGet, "/auth/session", ""); rec.Code != http.StatusOK {
		t.Fatalf("member session: %d", rec.Code)
	}
	rec = s.do(http.MethodPost, "/auth/change-password", `{"oldPassword":"bob-password","newPassword":"bob-password-2"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("change password: %d %s", rec.Code, rec.Body.String())
	}
	if rec := s.do(http.MethodGet, "/auth/signin", ""); rec.Code != http.StatusFound || rec.Header().Get("Location") != "/dashboard" {
		t.Fatalf("signed-in signin page: %d", rec.Code)
	}

	s.token = ""
	if rec := s.do(http.MethodGet, "/dashboard", ""); rec.Code != http.StatusFound || rec.Header().Get("Location") != "/auth/signin" {
		t.Fatalf("anonymous dashboard: %d", rec.Code)
	}
	if rec := s.do(http.MethodGet, "/api/variants", ""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous api: %d", rec.Code)
	}
}

func TestSignUpCreatesMember(t *testing.T) {
	s := newTestServer(t)
	s.token = ""
	rec := s.do(http.MethodPost, "/auth/signup", `{"name":"Eve","email":"eve@example.com","password":"eve-password","role":"Admin"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("sign up: %d %s", rec.Code, rec.Body.String())
	}
	var u model.User
	_ = json.Unmarshal(rec.Body.Bytes(), &u)
	if u.Role != model.RoleUser {
		t.Fatalf("role=%q", u.Role)
	}
	rec = s.do(http.MethodPost, "/auth/signup", `{"name":"Eve","email":"eve@example.com","password":"short"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("short password: %d", rec.Code)
	}
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t)
	s.token = ""
	if rec := s.do(http.MethodGet, "/healthz", ""); rec.Code != http.StatusOK {
		t.Fatalf("healthz: %d", rec.Code)
	}
}

func TestRoleChangesApplyToOpenSessions(t *testing.T) {
	s := newTestServer(t)
	eve := s.mustCreate("/api/users", `{"name":"Eve","email":"eve@example.com","password":"eve-password","role":"Admin"}`)
	adminToken := s.token

	s.token = ""
	rec := s.do(http.MethodPost, "/auth/signin", `{"email":"eve@example.com","password":"eve-password"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("sign in: %d %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Token string `json:"token"`
	}
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	eveToken := resp.Token

	s.token = eveToken
	if rec := s.do(http.MethodGet, "/api/users", ""); rec.Code != http.StatusOK {
		t.Fatalf("admin api access: %d", rec.Code)
	}

	s.token = adminToken
	if rec := s.do(http.MethodPut, "/api/users/"+itoa(eve), `{"role":"User"}`); rec.Code != http.StatusOK {
		t.Fatalf("demote: %d %s", rec.Code, rec.Body.String())
	}
	s.token = eveToken
	if rec := s.do(http.MethodGet, "/api/users", ""); rec.Code != http.StatusForbidden {
		t.Fatalf("demoted api access: %d", rec.Code)
	}
	if rec := s.do(http.MethodGet, "/dashboard", ""); rec.Code != http.StatusFound || rec.Header().Get("Location") != "/" {
		t.Fatalf("demoted dashboard: %d %q", rec.Code, rec.Header().Get("Location"))
	}

	s.token = adminToken
	if rec := s.do(http.MethodDelete, "/api/users/"+itoa(eve), ""); rec.Code != http.StatusNoContent {
		t.Fatalf("delete: %d %s", rec.Code, rec.Body.String())
	}
	s.token = eveToken
	if rec := s.do(http.MethodPost, "/api/suppliers", `{"name":"Initech","email":"sales@initech.test"}`); rec.Code != http.StatusUnauthorized {
		t.Fatalf("deleted user write: %d", rec.Code)
	}
	if rec := s.do(http.MethodGet, "/auth/session", ""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("deleted user session: %d", rec.Code)
	}
	if n := s.count(&model.Supplier{}); n != 0 {
		t.Fatalf("suppliers=%d", n)
	}
}

func (s *testServer) doMultipart(method, path string, fields map[string]string, image []byte) *httptest.ResponseRecorder {
	s.t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		_ = mw.WriteField(k, v)
	}
	if image != nil {
		part, err := mw.CreateFormFile("image", "shoe.png")
		if err != nil {
			s.t.Fatalf("form file: %v", err)
		}
		_, _ = part.Write(image)
	}
	_ = mw.Close()
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+s.token)
	rec := httptest.NewRecorder()
	s.h.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) storedImages() []string {
	s.t.Helper()
	entries, err := os.ReadDir(s.uploads)
	if err != nil {
		s.t.Fatalf("read uploads: %v", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestVariantImageLifecycle(t *testing.T) {
	s := newTestServer(t)
	ids := s.seed()
	path := "/api/variants/" + itoa(ids["variants"])

	rec := s.doMultipart(http.MethodPut, path, map[string]string{"name": "Runner 42"}, []byte("first"))
	if rec.Code != http.StatusOK {
		t.Fatalf("first image: %d %s", rec.Code, rec.Body.String())
	}
	var v model.Variant
	_ = json.Unmarshal(rec.Body.Bytes(), &v)
	first := v.ImageURL
	if imgs := s.storedImages(); len(imgs) != 1 || "/uploads/"+imgs[0] != first {
		t.Fatalf("stored=%v url=%q", imgs, first)
	}

	rec = s.doMultipart(http.MethodPut, path, map[string]string{"name": "Runner 42"}, []byte("second"))
	if rec.Code != http.StatusOK {
		t.Fatalf("second image: %d %s", rec.Code, rec.Body.String())
	}
	_ = json.Unmarshal(rec.Body.Bytes(), &v)
	if imgs := s.storedImages(); len(imgs) != 1 || "/uploads/"+imgs[0] != v.ImageURL || v.ImageURL == first {
		t.Fatalf("replaced image should be removed: stored=%v url=%q", imgs, v.ImageURL)
	}

	rec = s.doMultipart(http.MethodPut, path, map[string]string{"name": "Runner 42"}, bytes.Repeat([]byte("x"), 2<<20))
	if rec.Code != http.StatusRequestEntityTooLarge || decodeMessage(t, rec) != "Upload too large" {
		t.Fatalf("oversized upload: %d %s", rec.Code, rec.Body.String())
	}
	if imgs := s.storedImages(); len(imgs) != 1 {
		t.Fatalf("oversized upload left files: %v", imgs)
	}

	if rec := s.do(http.MethodDelete, "/api/transactions/"+itoa(ids["transactions"]), ""); rec.Code != http.StatusNoContent {
		t.Fatalf("transaction delete: %d", rec.Code)
	}
	if rec := s.do(http.MethodDelete, path, ""); rec.Code != http.StatusOK {
		t.Fatalf("variant delete: %d %s", rec.Code, rec.Body.String())
	}
	if imgs := s.storedImages(); len(imgs) != 0 {
		t.Fatalf("deleted variant left its image: %v", imgs)
	}
}
