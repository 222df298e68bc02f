package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo"
	"github.com/webuild-community/honor/database/dbtest"
	"github.com/webuild-community/honor/model"
	"github.com/webuild-community/honor/service/admin"
	"github.com/webuild-community/honor/service/item"
	"github.com/webuild-community/honor/service/user"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type testAPI struct {
	e  *echo.Echo
	db *gorm.DB
}

func setupAPI(t *testing.T) *testAPI {
	t.Helper()
	db := dbtest.New(t)
	logger := zap.NewNop()
	e := echo.New()

	adminSvc := admin.NewPGService(db, time.Hour, admin.WithHasher(admin.BcryptHasher{Cost: bcrypt.MinCost}))
	auth := NewAuthorizeHandler(e, logger, adminSvc, false)
	NewAdminHandler(e, logger, auth, user.NewPGService(db), item.NewPGService(db))
	NewPublicHandler(e, logger, user.NewPGService(db), item.NewPGService(db))
	return &testAPI{e: e, db: db}
}

func (a *testAPI) do(t *testing.T, method, path, body string, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	return rec
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == SessionCookie && c.Value != "" {
			return c
		}
	}
	t.Fatalf("no session cookie in response (status %d, body %s)", rec.Code, rec.Body.String())
	return nil
}

func (a *testAPI) login(t *testing.T) *http.Cookie {
	t.Helper()
	rec := a.do(t, http.MethodPost, "/api/register", `{"username":"root","password":"pw"}`, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("register: %d %s", rec.Code, rec.Body.String())
	}
	return sessionCookie(t, rec)
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
}

func TestAuthFlow(t *testing.T) {
	api := setupAPI(t)

	var check map[string]bool
	decode(t, api.do(t, http.MethodGet, "/api/check-auth", "", nil), &check)
	if check["loggedIn"] {
		t.Fatal("anonymous caller reported as logged in")
	}

	cookie := api.login(t)
	decode(t, api.do(t, http.MethodGet, "/api/check-auth", "", cookie), &check)
	if !check["loggedIn"] {
		t.Fatal("registered admin should be logged in")
	}

	rec := api.do(t, http.MethodPost, "/api/register", `{"username":"root","password":"other"}`, nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("duplicate register: got %d", rec.Code)
	}

	rec = api.do(t, http.MethodPost, "/api/logout", "", cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("logout: got %d", rec.Code)
	}
	decode(t, api.do(t, http.MethodGet, "/api/check-auth", "", cookie), &check)
	if check["loggedIn"] {
		t.Fatal("revoked session still accepted")
	}

	rec = api.do(t, http.MethodPost, "/api/login", `{"username":"root","password":"pw"}`, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("login: got %d %s", rec.Code, rec.Body.String())
	}
	sessionCookie(t, rec)
}

func TestLoginFailuresAreUndifferentiated(t *testing.T) {
	api := setupAPI(t)
	api.login(t)

	wrong := api.do(t, http.MethodPost, "/api/login", `{"username":"root","password":"bad"}`, nil)
	unknown := api.do(t, http.MethodPost, "/api/login", `{"username":"nobody","password":"pw"}`, nil)
	if wrong.Code != http.StatusUnauthorized || unknown.Code != http.StatusUnauthorized {
		t.Fatalf("got %d and %d, want 401", wrong.Code, unknown.Code)
	}
	if wrong.Body.String() != unknown.Body.String() {
		t.Errorf("responses differ: %s vs %s", wrong.Body.String(), unknown.Body.String())
	}
}

func TestAdminRoutesRequireSession(t *testing.T) {
	api := setupAPI(t)
	api.db.Create(&model.Item{Name: "Badge", Cost: 15, Stock: 1, IsActive: true})

	routes := []struct{ method, path, body string }{
		{http.MethodGet, "/api/users", ""},
		{http.MethodGet, "/api/items", ""},
		{http.MethodPost, "/api/items", `{"name":"x","cost":1}`},
		{http.MethodPut, "/api/users/u1", `{"points":1}`},
		{http.MethodPut, "/api/items/1", `{"cost":99}`},
		{http.MethodDelete, "/api/items/1", ""},
	}
	for _, r := range routes {
		rec := api.do(t, r.method, r.path, r.body, nil)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s %s: got %d, want 401", r.method, r.path, rec.Code)
			continue
		}
		var body errorResp
		decode(t, rec, &body)
		if !strings.HasPrefix(body.Error, "Unauthorized") {
			t.Errorf("%s %s: unexpected error %q", r.method, r.path, body.Error)
		}
	}

	var it model.Item
	api.db.First(&it)
	if it.Cost != 15 {
		t.Errorf("item mutated without session: %+v", it)
	}
}

func TestItemCRUD(t *testing.T) {
	api := setupAPI(t)
	cookie := api.login(t)

	rec := api.do(t, http.MethodPost, "/api/items", `{"name":"Badge","cost":"15","description":"Shiny"}`, cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("create: %d %s", rec.Code, rec.Body.String())
	}
	var created model.Item
	decode(t, rec, &created)
	if created.ID == 0 || created.Cost != 15 || !created.IsActive || !created.IsUnlimited() {
		t.Fatalf("unexpected created item: %+v", created)
	}

	if rec := api.do(t, http.MethodPost, "/api/items", `{"name":"Bad","cost":"abc"}`, cookie); rec.Code != http.StatusBadRequest {
		t.Errorf("non-numeric cost: got %d", rec.Code)
	}

	path := "/api/items/" + itoa(created.ID)
	rec = api.do(t, http.MethodPut, path, `{"name":"Badge","cost":20,"description":"Shiny","stock":"1","isActive":false}`, cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("update: %d %s", rec.Code, rec.Body.String())
	}
	var updated model.Item
	decode(t, rec, &updated)
	if updated.Cost != 20 || updated.Stock != 1 || updated.IsActive {
		t.Errorf("unexpected updated item: %+v", updated)
	}

	if rec := api.do(t, http.MethodPut, "/api/items/999", `{"cost":1}`, cookie); rec.Code != http.StatusNotFound {
		t.Errorf("update missing: got %d", rec.Code)
	}

	var items []model.Item
	decode(t, api.do(t, http.MethodGet, "/api/items", "", cookie), &items)
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}

	rec = api.do(t, http.MethodDelete, path, "", cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete: %d", rec.Code)
	}
	if rec := api.do(t, http.MethodDelete, path, "", cookie); rec.Code != http.StatusNotFound {
		t.Errorf("second delete: got %d", rec.Code)
	}
}

func TestUserAdmin(t *testing.T) {
	api := setupAPI(t)
	cookie := api.login(t)
	api.db.Create(&model.User{ID: "u1", Username: "ann", Points: 5})
	api.db.Create(&model.User{ID: "u2", Username: "bob", Points: 50})

	var users []model.User
	decode(t, api.do(t, http.MethodGet, "/api/users", "", cookie), &users)
	if len(users) != 2 || users[0].ID != "u2" {
		t.Fatalf("expected users sorted by points desc: %+v", users)
	}

	rec := api.do(t, http.MethodPut, "/api/users/u1", `{"points":"70"}`, cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("update user: %d %s", rec.Code, rec.Body.String())
	}
	var u model.User
	decode(t, rec, &u)
	if u.Points != 70 {
		t.Errorf("points = %d, want 70", u.Points)
	}

	if rec := api.do(t, http.MethodPut, "/api/users/ghost", `{"points":1}`, cookie); rec.Code != http.StatusNotFound {
		t.Errorf("missing user: got %d", rec.Code)
	}
	if rec := api.do(t, http.MethodPut, "/api/users/u1", `{"points":-3}`, cookie); rec.Code != http.StatusBadRequest {
		t.Errorf("negative points: got %d", rec.Code)
	}
}

func TestPublicReads(t *testing.T) {
	api := setupAPI(t)
	api.db.Create(&model.Item{Name: "Hoodie", Cost: 300, Stock: 2, IsActive: true})
	api.db.Create(&model.Item{Name: "Sticker", Cost: 10, Stock: model.UnlimitedStock, IsActive: true})
	api.db.Create(&model.Item{Name: "Retired", Cost: 1, Stock: 1, IsActive: false})
	api.db.Create(&model.User{ID: "u1", Username: "ann", Points: 5})
	api.db.Create(&model.User{ID: "u2", Username: "bob", Points: 50})

	var shop []shopItem
	decode(t, api.do(t, http.MethodGet, "/api/shop", "", nil), &shop)
	if len(shop) != 2 || shop[0].Name != "Sticker" || shop[0].StockLabel != "unlimited" || shop[1].StockLabel != "2" {
		t.Fatalf("unexpected shop: %+v", shop)
	}

	var top []model.Standing
	decode(t, api.do(t, http.MethodGet, "/api/leaderboard?limit=1", "", nil), &top)
	if len(top) != 1 || top[0].Username != "bob" {
		t.Fatalf("unexpected leaderboard: %+v", top)
	}
	if rec := api.do(t, http.MethodGet, "/api/leaderboard?limit=x", "", nil); rec.Code != http.StatusBadRequest {
		t.Errorf("bad limit: got %d", rec.Code)
	}
}

func TestIntFieldCoercion(t *testing.T) {
	cases := map[string]int64{`5`: 5, `"42"`: 42, `" 7 "`: 7, `10.0`: 10, `-1`: -1}
	for in, want := range cases {
		var f intField
		if err := json.Unmarshal([]byte(in), &f); err != nil || int64(f) != want {
			t.Errorf("%s: got %d, %v", in, f, err)
		}
	}
	for _, in := range []string{`"abc"`, `1.5`, `true`, `""`} {
		var f intField
		if err := json.Unmarshal([]byte(in), &f); err == nil {
			t.Errorf("%s: expected error", in)
		}
	}
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
