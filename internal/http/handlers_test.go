package http

import (
	"context"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Cherval/me-my-cal/internal/auth"
	"github.com/Cherval/me-my-cal/internal/localstore"
	"github.com/Cherval/me-my-cal/internal/records/sqlite"
)

const (
	testSecret   = "0123456789abcdef0123456789abcdef"
	testEmail    = "me@example.com"
	testPassword = "correct horse battery"
)

// newTestServer wires a server over a real SQLite repository and a
// temp-dir demo adapter, with one provisioned account.
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	repo, err := sqlite.NewRepository(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewRepository: %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })

	hash, err := auth.HashPassword(testPassword)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if _, err := repo.CreateUser(context.Background(), testEmail, hash); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	authSvc := auth.NewService(testSecret, time.Hour, repo)
	demo := localstore.NewAdapter(localstore.NewKV(t.TempDir()))
	registry := NewRegistry(time.Hour, authSvc, repo, nil, demo)

	srv := NewServer(":0", authSvc, registry)
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })

	return httptest.NewServer(srv.Handler)
}

func newClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookiejar: %v", err)
	}
	return &http.Client{Jar: jar}
}

func postForm(t *testing.T, client *http.Client, url string, form url.Values) *http.Response {
	t.Helper()
	resp, err := client.PostForm(url, form)
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	return resp
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return string(b)
}

func TestHealthEndpoints(t *testing.T) {
	ts := newTestServer(t)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz: %v", err)
	}
	if body := readBody(t, resp); resp.StatusCode != http.StatusOK || body != "ok" {
		t.Errorf("/healthz = %d %q, want 200 ok", resp.StatusCode, body)
	}

	resp, err = http.Get(ts.URL + "/readyz")
	if err != nil {
		t.Fatalf("GET /readyz: %v", err)
	}
	readBody(t, resp)
	if resp.StatusCode != http.StatusOK {
		t.Errorf("/readyz = %d, want 200", resp.StatusCode)
	}
}

func TestIndexWithoutSessionShowsLogin(t *testing.T) {
	ts := newTestServer(t)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/")
	if err != nil {
		t.Fatalf("GET /: %v", err)
	}
	body := readBody(t, resp)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET / = %d, want 200", resp.StatusCode)
	}
	if !strings.Contains(body, `action="/login"`) || !strings.Contains(body, `action="/demo"`) {
		t.Error("login page must offer both sign-in and demo entry")
	}
}

func TestPartialsRequireSession(t *testing.T) {
	ts := newTestServer(t)
	defer ts.Close()

	for _, path := range []string{"/ui/summary", "/ui/transactions", "/ui/charts"} {
		resp, err := http.Get(ts.URL + path)
		if err != nil {
			t.Fatalf("GET %s: %v", path, err)
		}
		readBody(t, resp)
		if resp.StatusCode != http.StatusUnauthorized {
			t.Errorf("GET %s = %d, want 401", path, resp.StatusCode)
		}
		if resp.Header.Get("HX-Redirect") != "/" {
			t.Errorf("GET %s missing HX-Redirect to login", path)
		}
	}
}

func TestDemoSessionFlow(t *testing.T) {
	ts := newTestServer(t)
	defer ts.Close()
	client := newClient(t)

	resp := postForm(t, client, ts.URL+"/demo", url.Values{})
	body := readBody(t, resp)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("POST /demo final status = %d, want 200 dashboard", resp.StatusCode)
	}
	if !strings.Contains(body, "Demo") {
		t.Error("dashboard must show the demo badge")
	}

	form := url.Values{}
	form.Set("type", "expense")
	form.Set("amount", "150")
	form.Set("category", "อาหาร/เครื่องดื่ม")
	form.Set("emoji", "🍜")
	form.Set("method", "cash")

	resp = postForm(t, client, ts.URL+"/transactions", form)
	body = readBody(t, resp)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("POST /transactions = %d: %s", resp.StatusCode, body)
	}
	if resp.Header.Get("HX-Trigger") == "" {
		t.Error("successful add must trigger a partial refresh")
	}

	resp, err := client.Get(ts.URL + "/ui/summary")
	if err != nil {
		t.Fatalf("GET /ui/summary: %v", err)
	}
	body = readBody(t, resp)
	if !strings.Contains(body, "150") {
		t.Errorf("summary must show the expense total, got: %s", body)
	}

	resp, err = client.Get(ts.URL + "/ui/transactions")
	if err != nil {
		t.Fatalf("GET /ui/transactions: %v", err)
	}
	body = readBody(t, resp)
	if !strings.Contains(body, "อาหาร/เครื่องดื่ม") {
		t.Errorf("transaction list must show the new record, got: %s", body)
	}

	// Deleting an unknown id is a silent no-op in demo mode.
	resp = postForm(t, client, ts.URL+"/transactions/delete", url.Values{"id": {"does-not-exist"}})
	readBody(t, resp)
	if resp.StatusCode != http.StatusOK {
		t.Errorf("delete of unknown id = %d, want 200", resp.StatusCode)
	}
}

func TestUpdateRejectsInvalidType(t *testing.T) {
	ts := newTestServer(t)
	defer ts.Close()
	client := newClient(t)

	readBody(t, postForm(t, client, ts.URL+"/demo", url.Values{}))

	form := url.Values{}
	form.Set("type", "expense")
	form.Set("amount", "150")
	form.Set("category", "อาหาร/เครื่องดื่ม")
	readBody(t, postForm(t, client, ts.URL+"/transactions", form))

	resp, err := client.Get(ts.URL + "/ui/transactions")
	if err != nil {
		t.Fatalf("GET /ui/transactions: %v", err)
	}
	body := readBody(t, resp)
	const marker = `name="id" value="`
	idx := strings.Index(body, marker)
	if idx < 0 {
		t.Fatalf("no record id in transaction list: %s", body)
	}
	id := body[idx+len(marker):]
	id = id[:strings.Index(id, `"`)]

	resp = postForm(t, client, ts.URL+"/transactions/update", url.Values{
		"id":   {id},
		"type": {"transfer"},
	})
	readBody(t, resp)
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("update with bad type = %d, want 422", resp.StatusCode)
	}

	// The record keeps its type and stays in the expense total.
	resp, err = client.Get(ts.URL + "/ui/summary")
	if err != nil {
		t.Fatalf("GET /ui/summary: %v", err)
	}
	body = readBody(t, resp)
	if !strings.Contains(body, "150") {
		t.Errorf("expense total must be untouched after rejected update, got: %s", body)
	}
}

func TestGridView(t *testing.T) {
	ts := newTestServer(t)
	defer ts.Close()
	client := newClient(t)

	// Without a session the table view bounces back to the login page.
	resp, err := client.Get(ts.URL + "/grid")
	if err != nil {
		t.Fatalf("GET /grid: %v", err)
	}
	body := readBody(t, resp)
	if !strings.Contains(body, "เข้าสู่ระบบ") {
		t.Errorf("GET /grid without session must land on the login page, got: %s", body)
	}

	readBody(t, postForm(t, client, ts.URL+"/demo", url.Values{}))

	form := url.Values{}
	form.Set("type", "income")
	form.Set("amount", "2,500")
	form.Set("category", "เงินเดือน")
	form.Set("bank", "KBANK")
	form.Set("method", "transfer")
	readBody(t, postForm(t, client, ts.URL+"/transactions", form))

	resp, err = client.Get(ts.URL + "/grid")
	if err != nil {
		t.Fatalf("GET /grid: %v", err)
	}
	body = readBody(t, resp)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET /grid = %d", resp.StatusCode)
	}
	for _, want := range []string{"เงินเดือน", "KBANK", "+2,500", "รายรับ"} {
		if !strings.Contains(body, want) {
			t.Errorf("grid view missing %q", want)
		}
	}
}

func TestAddRejectsInvalidAmount(t *testing.T) {
	ts := newTestServer(t)
	defer ts.Close()
	client := newClient(t)

	readBody(t, postForm(t, client, ts.URL+"/demo", url.Values{}))

	form := url.Values{}
	form.Set("type", "expense")
	form.Set("amount", "not-a-number")
	form.Set("category", "อาหาร/เครื่องดื่ม")

	resp := postForm(t, client, ts.URL+"/transactions", form)
	readBody(t, resp)
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("POST /transactions with bad amount = %d, want 422", resp.StatusCode)
	}
}

func TestLoginFlow(t *testing.T) {
	ts := newTestServer(t)
	defer ts.Close()
	client := newClient(t)

	form := url.Values{}
	form.Set("email", testEmail)
	form.Set("password", "wrong password")
	resp := postForm(t, client, ts.URL+"/login", form)
	readBody(t, resp)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("bad credentials = %d, want 401", resp.StatusCode)
	}

	form.Set("password", testPassword)
	resp = postForm(t, client, ts.URL+"/login", form)
	body := readBody(t, resp)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login final status = %d, want 200 dashboard", resp.StatusCode)
	}
	if strings.Contains(body, "Demo") {
		t.Error("signed-in dashboard must not carry the demo badge")
	}

	addForm := url.Values{}
	addForm.Set("type", "income")
	addForm.Set("amount", "99.50")
	addForm.Set("category", "เงินเดือน")
	resp = postForm(t, client, ts.URL+"/transactions", addForm)
	body = readBody(t, resp)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("add after login = %d: %s", resp.StatusCode, body)
	}

	resp, err := client.Get(ts.URL + "/ui/summary")
	if err != nil {
		t.Fatalf("GET /ui/summary: %v", err)
	}
	body = readBody(t, resp)
	if !strings.Contains(body, "99.50") {
		t.Errorf("summary must include the new income, got: %s", body)
	}

	resp = postForm(t, client, ts.URL+"/logout", url.Values{})
	body = readBody(t, resp)
	if !strings.Contains(body, `action="/login"`) {
		t.Error("logout must land on the login page")
	}
}
