package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/crypto/bcrypt"

	"storefront/internal/config"
	"storefront/internal/http/handlers"
	applog "storefront/internal/log"
	"storefront/internal/metrics"
	"storefront/internal/repos"
	"storefront/internal/services"
)

const (
	adminEmail = "admin@example.com"
	password   = "secret#123"
)

type testEnv struct {
	app *fiber.App
	db  *sqlx.DB
}

func testConfig() config.Config {
	return config.Config{
		DBDSN:         ":memory:",
		JWTSecret:     "test-secret",
		JWTTTL:        time.Hour,
		JWTIssuer:     "storefront",
		BcryptCost:    bcrypt.MinCost,
		CORSOrigins:   "*",
		SigninRateMax: 100,
		BodyLimit:     1 << 20,
	}
}

// newTestEnv builds the real app on an in-memory database with one seeded admin.
func newTestEnv(t *testing.T, tweak ...func(*config.Config)) *testEnv {
	t.Helper()
	cfg := testConfig()
	for _, f := range tweak {
		f(&cfg)
	}
	db, err := repos.OpenDB(cfg.DBDSN)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	hash, err := services.NewUserService(db, cfg.BcryptCost).Hash(password)
	if err != nil {
		t.Fatal(err)
	}
	if err := repos.SeedAdmin(context.Background(), db, adminEmail, hash); err != nil {
		t.Fatalf("seed admin: %v", err)
	}

	deps := handlers.NewDeps(db, cfg, metrics.New("storefront"))
	return &testEnv{app: handlers.NewApp(deps, cfg), db: db}
}

type response struct {
	status int
	body   map[string]any
	raw    string
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) response {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := e.app.Test(req, 5000)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)
	out := response{status: resp.StatusCode, raw: string(raw)}
	_ = json.Unmarshal(raw, &out.body)
	return out
}

// signIn returns the access token and user id for email.
func (e *testEnv) signIn(t *testing.T, email string) (string, string) {
	t.Helper()
	res := e.do(t, http.MethodPost, "/auth/signin", "", map[string]string{"email": email, "password": password})
	if res.status != http.StatusCreated {
		t.Fatalf("sign in %s: %d %s", email, res.status, res.raw)
	}
	user := res.body["user"].(map[string]any)
	return res.body["access_token"].(string), user["id"].(string)
}

// customer registers a CUSTOMER and signs them in.
func (e *testEnv) customer(t *testing.T, email string) (string, string) {
	t.Helper()
	res := e.do(t, http.MethodPost, "/user", "", map[string]string{"email": email, "password": password})
	if res.status != http.StatusCreated {
		t.Fatalf("create user %s: %d %s", email, res.status, res.raw)
	}
	return e.signIn(t, email)
}

// product creates a product as admin and returns its id.
func (e *testEnv) product(t *testing.T, adminToken, title string, price float64, stock int) string {
	t.Helper()
	res := e.do(t, http.MethodPost, "/product", adminToken, map[string]any{"title": title, "price": price, "stock": stock})
	if res.status != http.StatusCreated {
		t.Fatalf("create product: %d %s", res.status, res.raw)
	}
	return res.body["product"].(map[string]any)["id"].(string)
}

type logEntry struct {
	Level   string         `json:"level"`
	Msg     string         `json:"msg"`
	Kind    string         `json:"kind"`
	Status  int            `json:"status"`
	ReqID   string         `json:"req_id"`
	UserID  string         `json:"user_id"`
	TraceID string         `json:"trace_id"`
	Fields  map[string]any `json:"fields"`
}

type lockedBuf struct {
	mu sync.Mutex
	b  bytes.Buffer
}

func (l *lockedBuf) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.b.Write(p)
}

func (l *lockedBuf) Sync() error { return nil }

// captureLogs swaps the package logger for a JSON logger on a buffer while fn runs.
func captureLogs(t *testing.T, fn func()) []logEntry {
	t.Helper()
	buf := &lockedBuf{}
	enc := zap.NewProductionEncoderConfig()
	enc.TimeKey = "ts"
	enc.MessageKey = "msg"
	core := zapcore.NewCore(zapcore.NewJSONEncoder(enc), buf, zapcore.DebugLevel)
	restore := applog.Use(zap.New(core))
	defer restore()

	fn()

	buf.mu.Lock()
	defer buf.mu.Unlock()
	var entries []logEntry
	for _, line := range strings.Split(strings.TrimSpace(buf.b.String()), "\n") {
		var e logEntry
		if err := json.Unmarshal([]byte(line), &e); err == nil {
			entries = append(entries, e)
		}
	}
	return entries
}

func findLog(entries []logEntry, msg string) (logEntry, bool) {
	for _, e := range entries {
		if e.Msg == msg {
			return e, true
		}
	}
	return logEntry{}, false
}
