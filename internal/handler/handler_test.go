package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alexedwards/scs/v2"

	"github.com/olegiv/notary-go/internal/auth"
	"github.com/olegiv/notary-go/internal/i18n"
	"github.com/olegiv/notary-go/internal/store"
	"github.com/olegiv/notary-go/internal/testutil"
)

const testPassword = "correct-horse-battery-staple"

func newTestHandler(t *testing.T) (*Handler, *scs.SessionManager) {
	t.Helper()
	db := testutil.TestDB(t)
	sessions := scs.New()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	h := NewHandler(Deps{
		DB:         db,
		Sessions:   sessions,
		Translator: i18n.NewTranslator("en", logger),
		Registry:   testutil.TestRegistry(t),
		BaseURL:    "https://example.com",
		Logger:     logger,
	})
	return h, sessions
}

func seedUser(t *testing.T, h *Handler, email string) int64 {
	t.Helper()
	hash, err := auth.HashPassword(testPassword)
	if err != nil {
		t.Fatalf("hashing password: %v", err)
	}
	id, err := h.queries.CreateUser(context.Background(), store.CreateUserParams{
		Email:        email,
		Name:         "Test User",
		PasswordHash: hash,
		Role:         "admin",
	})
	if err != nil {
		t.Fatalf("creating user: %v", err)
	}
	return id
}

// doJSON runs a handler wrapped in the session middleware, which Login and
// Logout require.
func doJSON(sessions *scs.SessionManager, handlerFn http.HandlerFunc, method, target string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, target, &buf)
	rec := httptest.NewRecorder()
	sessions.LoadAndSave(handlerFn).ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding error response: %v (body %q)", err, rec.Body.String())
	}
	return resp
}

func TestLogin_Success(t *testing.T) {
	h, sessions := newTestHandler(t)
	seedUser(t, h, "admin@example.com")

	rec := doJSON(sessions, h.Login, http.MethodPost, "/api/v1/auth/login",
		LoginRequest{Email: "admin@example.com", Password: testPassword})

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Data UserResponse `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.Data.Email != "admin@example.com" || resp.Data.Role != "admin" {
		t.Errorf("data = %+v", resp.Data)
	}
	if len(rec.Result().Cookies()) == 0 {
		t.Error("no session cookie set")
	}
}

func TestLogin_SameResponseForUnknownAndWrongPassword(t *testing.T) {
	h, sessions := newTestHandler(t)
	seedUser(t, h, "admin@example.com")

	wrongPw := doJSON(sessions, h.Login, http.MethodPost, "/api/v1/auth/login",
		LoginRequest{Email: "admin@example.com", Password: "wrong-password-entirely"})
	unknown := doJSON(sessions, h.Login, http.MethodPost, "/api/v1/auth/login",
		LoginRequest{Email: "nobody@example.com", Password: testPassword})

	if wrongPw.Code != http.StatusUnauthorized || unknown.Code != http.StatusUnauthorized {
		t.Fatalf("codes = %d, %d; want 401, 401", wrongPw.Code, unknown.Code)
	}
	// An attacker must not be able to tell the two cases apart.
	if wrongPw.Body.String() != unknown.Body.String() {
		t.Errorf("responses differ:\n%s\n%s", wrongPw.Body.String(), unknown.Body.String())
	}
}

func TestLogin_MissingFields(t *testing.T) {
	h, sessions := newTestHandler(t)

	rec := doJSON(sessions, h.Login, http.MethodPost, "/api/v1/auth/login",
		LoginRequest{Email: "", Password: ""})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
	resp := decodeError(t, rec)
	if resp.Error.Code != "validation_error" {
		t.Errorf("code = %q", resp.Error.Code)
	}
	if _, ok := resp.Error.Details["email"]; !ok {
		t.Error("missing email field error")
	}
}

func postDocument(title, slug, status string) map[string]any {
	return map[string]any{
		"common": map[string]any{
			"slug":   slug,
			"status": status,
			"tags":   []string{},
		},
		"content": map[string]any{
			"en": map[string]any{"title": title, "content": "<p>Body</p>", "faq": []any{}},
		},
	}
}

func TestCreatePost_DerivesSlugAndCanonicalURL(t *testing.T) {
	h, sessions := newTestHandler(t)

	rec := doJSON(sessions, h.CreatePost, http.MethodPost, "/api/v1/posts",
		postDocument("Hello, World! 2024", "", ""))
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Data struct {
			Common struct {
				Slug         string `json:"slug"`
				Status       string `json:"status"`
				CanonicalURL string `json:"canonical_url"`
			} `json:"common"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.Data.Common.Slug != "hello-world-2024" {
		t.Errorf("slug = %q", resp.Data.Common.Slug)
	}
	if resp.Data.Common.Status != "draft" {
		t.Errorf("status = %q, want default draft", resp.Data.Common.Status)
	}
	if resp.Data.Common.CanonicalURL != "https://example.com/blog/hello-world-2024" {
		t.Errorf("canonical_url = %q", resp.Data.Common.CanonicalURL)
	}
}

func TestCreatePost_InvalidStatus(t *testing.T) {
	h, sessions := newTestHandler(t)

	rec := doJSON(sessions, h.CreatePost, http.MethodPost, "/api/v1/posts",
		postDocument("Title", "slug", "bogus"))
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	resp := decodeError(t, rec)
	if _, ok := resp.Error.Details["status"]; !ok {
		t.Errorf("details = %v, want status error", resp.Error.Details)
	}
}

func TestCreatePost_DuplicateSlug(t *testing.T) {
	h, sessions := newTestHandler(t)

	first := doJSON(sessions, h.CreatePost, http.MethodPost, "/api/v1/posts",
		postDocument("First", "shared-slug", "draft"))
	if first.Code != http.StatusCreated {
		t.Fatalf("first create status = %d", first.Code)
	}

	second := doJSON(sessions, h.CreatePost, http.MethodPost, "/api/v1/posts",
		postDocument("Second", "shared-slug", "draft"))
	if second.Code != http.StatusUnprocessableEntity {
		t.Fatalf("second create status = %d, want 422", second.Code)
	}
	resp := decodeError(t, second)
	if _, ok := resp.Error.Details["slug"]; !ok {
		t.Errorf("details = %v, want slug error", resp.Error.Details)
	}
}

func TestCreatePost_UnknownBundleLocale(t *testing.T) {
	h, sessions := newTestHandler(t)

	doc := postDocument("Title", "some-slug", "draft")
	doc["content"].(map[string]any)["xx"] = map[string]any{"title": "???"}
	rec := doJSON(sessions, h.CreatePost, http.MethodPost, "/api/v1/posts", doc)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
}

func TestIntakeMessage_Success(t *testing.T) {
	h, sessions := newTestHandler(t)

	rec := doJSON(sessions, h.IntakeMessage, http.MethodPost, "/api/public/messages",
		IntakeMessageRequest{
			Name:    "Visitor",
			Email:   "visitor@example.com",
			Subject: "Apostille question",
			Body:    "How long does an apostille take?",
		})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	messages, err := h.queries.ListMessages(context.Background(), store.ListMessagesParams{Limit: 10})
	if err != nil {
		t.Fatalf("listing messages: %v", err)
	}
	if len(messages) != 1 {
		t.Fatalf("got %d messages, want 1", len(messages))
	}
	if messages[0].Email != "visitor@example.com" || messages[0].IsRead {
		t.Errorf("message = %+v", messages[0])
	}
}

func TestIntakeMessage_Validation(t *testing.T) {
	h, sessions := newTestHandler(t)

	rec := doJSON(sessions, h.IntakeMessage, http.MethodPost, "/api/public/messages",
		IntakeMessageRequest{Name: "", Email: "not-an-email", Body: ""})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
	resp := decodeError(t, rec)
	for _, field := range []string{"name", "email", "body"} {
		if _, ok := resp.Error.Details[field]; !ok {
			t.Errorf("missing %q field error, details = %v", field, resp.Error.Details)
		}
	}
}

func TestNewMeta(t *testing.T) {
	meta := NewMeta(45, 2, 20)
	if meta.Pages != 3 {
		t.Errorf("Pages = %d, want 3", meta.Pages)
	}
	meta = NewMeta(40, 1, 20)
	if meta.Pages != 2 {
		t.Errorf("Pages = %d, want 2", meta.Pages)
	}
	meta = NewMeta(0, 1, 20)
	if meta.Pages != 0 {
		t.Errorf("Pages = %d, want 0", meta.Pages)
	}
}
