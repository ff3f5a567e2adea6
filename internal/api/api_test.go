package api_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/devwiki-api/internal/api"
	"github.com/devwiki-api/internal/config"
	"github.com/devwiki-api/internal/mocks"
	"github.com/devwiki-api/internal/models"
	"github.com/devwiki-api/internal/repository"
	"github.com/devwiki-api/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

const testTokenKey = "0000000000000000000000000000000000000000000000000000000000000000"

type apiHarness struct {
	router *gin.Engine
	repos  *repository.Repositories
	t      *testing.T
}

func setupTestRouter(t *testing.T) *apiHarness {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repos := mocks.NewRepositories()

	cfg := &config.Config{
		Server: config.ServerConfig{Port: "8080"},
		Auth: config.AuthConfig{
			TokenKeyHex: testTokenKey,
			TokenTTL:    time.Hour,
		},
		Page: config.PageConfig{DefaultSize: 20, MaxSize: 100},
	}

	log := zerolog.Nop()
	services, err := service.NewServices(repos, cfg, log)
	if err != nil {
		t.Fatalf("failed to create services: %v", err)
	}

	router := api.NewRouter(services, cfg, log)
	return &apiHarness{router: router, repos: repos, t: t}
}

func (h *apiHarness) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	h.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			h.t.Fatalf("failed to encode body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("failed to decode response %q: %v", w.Body.String(), err)
	}
	return out
}

// register creates an account through the API and returns its token
func (h *apiHarness) register(email string) string {
	h.t.Helper()
	w := h.do("POST", "/v1/accounts/create", "", map[string]string{
		"email":    email,
		"password": "secret",
	})
	if w.Code != http.StatusCreated {
		h.t.Fatalf("registration failed with status %d: %s", w.Code, w.Body.String())
	}
	return decode(h.t, w)["token"].(string)
}

// promote flips role flags on the account registered under email
func (h *apiHarness) promote(email string, mutate func(*models.User)) {
	h.t.Helper()
	userRepo := h.repos.User.(*mocks.MockUserRepo)
	for _, u := range userRepo.Users {
		if u.Email == email {
			mutate(u)
			return
		}
	}
	h.t.Fatalf("no user registered with email %q", email)
}

func (h *apiHarness) createArticle(token, title string) map[string]interface{} {
	h.t.Helper()
	w := h.do("POST", "/v1/articles", token, map[string]interface{}{
		"title":       title,
		"body":        "A body long enough to pass validation.",
		"update_tags": []string{"testing"},
	})
	if w.Code != http.StatusCreated {
		h.t.Fatalf("article creation failed with status %d: %s", w.Code, w.Body.String())
	}
	return decode(h.t, w)
}

func TestHealthEndpoint(t *testing.T) {
	h := setupTestRouter(t)

	w := h.do("GET", "/health", "", nil)
	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	response := decode(t, w)
	if response["status"] != "healthy" {
		t.Errorf("Expected status 'healthy', got %v", response["status"])
	}
	if response["service"] != "devwiki-api" {
		t.Errorf("Expected service name, got %v", response["service"])
	}
}

func TestMetricsEndpoint(t *testing.T) {
	h := setupTestRouter(t)
	token := h.register("metrics@example.com")
	h.createArticle(token, "Counted")

	w := h.do("GET", "/metrics", "", nil)
	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	db := decode(t, w)["database"].(map[string]interface{})
	if db["users"].(float64) != 1 {
		t.Errorf("Expected 1 user, got %v", db["users"])
	}
	if db["articles"].(float64) != 1 {
		t.Errorf("Expected 1 article, got %v", db["articles"])
	}
}

func TestArticleCreateRequiresAuth(t *testing.T) {
	h := setupTestRouter(t)

	w := h.do("POST", "/v1/articles", "", map[string]interface{}{
		"title": "Anonymous",
		"body":  "A body long enough to pass validation.",
	})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d: %s", w.Code, w.Body.String())
	}
}

func TestArticleCreateAndRetrieve(t *testing.T) {
	h := setupTestRouter(t)
	token := h.register("author@example.com")

	created := h.createArticle(token, "Hello World")
	slug, _ := created["slug"].(string)
	if slug == "" {
		t.Fatal("expected a non-empty slug")
	}
	if slug == created["id"] {
		t.Error("slug must not reuse the article id")
	}

	w := h.do("GET", "/v1/articles/"+slug, "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	detail := decode(t, w)
	if detail["title"] != "Hello World" {
		t.Errorf("Expected title, got %v", detail["title"])
	}

	// Each retrieve bumps the visit counter
	first := detail["visits"].(float64)
	w = h.do("GET", "/v1/articles/"+slug, "", nil)
	second := decode(t, w)["visits"].(float64)
	if second != first+1 {
		t.Errorf("Expected visits %v, got %v", first+1, second)
	}
}

func TestArticleCreateValidation(t *testing.T) {
	h := setupTestRouter(t)
	token := h.register("author@example.com")

	w := h.do("POST", "/v1/articles", token, map[string]interface{}{
		"title": "Short body",
		"body":  "123456789",
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d: %s", w.Code, w.Body.String())
	}
	response := decode(t, w)
	if _, ok := response["errors"]; !ok {
		t.Errorf("Expected field errors in response, got %v", response)
	}
}

func TestArticleForeignUpdateForbidden(t *testing.T) {
	h := setupTestRouter(t)
	owner := h.register("owner@example.com")
	stranger := h.register("stranger@example.com")

	created := h.createArticle(owner, "Mine")
	slug := created["slug"].(string)

	w := h.do("PATCH", "/v1/articles/"+slug, stranger, map[string]interface{}{
		"title": "Yours now",
	})
	if w.Code != http.StatusForbidden {
		t.Fatalf("Expected status 403, got %d: %s", w.Code, w.Body.String())
	}
	if detail := decode(t, w)["detail"]; detail != "You do not have permission to perform this action." {
		t.Errorf("Expected canonical denial message, got %v", detail)
	}
}

func TestArticleDeleteFlow(t *testing.T) {
	h := setupTestRouter(t)
	token := h.register("author@example.com")

	created := h.createArticle(token, "Deletable")
	slug := created["slug"].(string)

	w := h.do("DELETE", "/v1/articles/"+slug, token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	if deleted := decode(t, w)["deleted"]; deleted != "/v1/articles/deleted/"+slug {
		t.Errorf("Expected deleted view path, got %v", deleted)
	}

	// The public view no longer serves it
	w = h.do("GET", "/v1/articles/"+slug, "", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", w.Code)
	}

	// The deleted view does, for the author
	w = h.do("GET", "/v1/articles/deleted/"+slug, token, nil)
	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	// But not anonymously
	w = h.do("GET", "/v1/articles/deleted/"+slug, "", nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", w.Code)
	}
}

func TestArticleVoteEndpoint(t *testing.T) {
	h := setupTestRouter(t)
	author := h.register("author@example.com")
	voter := h.register("voter@example.com")

	created := h.createArticle(author, "Rated")
	slug := created["slug"].(string)

	w := h.do("POST", "/v1/articles/"+slug+"/vote", voter, map[string]int{"rating": 4})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	detail := decode(t, w)
	if detail["rating"].(float64) != 4 {
		t.Errorf("Expected rating 4, got %v", detail["rating"])
	}
	if detail["rate_votes"].(float64) != 1 {
		t.Errorf("Expected 1 vote, got %v", detail["rate_votes"])
	}

	// Out-of-range votes are rejected
	w = h.do("POST", "/v1/articles/"+slug+"/vote", voter, map[string]int{"rating": 7})
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", w.Code)
	}

	// Anonymous votes are rejected
	w = h.do("POST", "/v1/articles/"+slug+"/vote", "", map[string]int{"rating": 3})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", w.Code)
	}
}

func TestArticleListEnvelope(t *testing.T) {
	h := setupTestRouter(t)
	token := h.register("author@example.com")
	h.createArticle(token, "First")
	h.createArticle(token, "Second")

	w := h.do("GET", "/v1/articles?page=1&page_size=1", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	response := decode(t, w)
	if response["count"].(float64) != 2 {
		t.Errorf("Expected count 2, got %v", response["count"])
	}
	results := response["results"].([]interface{})
	if len(results) != 1 {
		t.Errorf("Expected 1 result on the page, got %d", len(results))
	}
}

func TestCommentThread(t *testing.T) {
	h := setupTestRouter(t)
	token := h.register("author@example.com")

	created := h.createArticle(token, "Discussed")
	articleID := created["id"].(string)

	w := h.do("POST", "/v1/comments", token, map[string]interface{}{
		"article": articleID,
		"content": "Top level",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %s", w.Code, w.Body.String())
	}
	parentID := decode(t, w)["id"].(string)

	w = h.do("POST", "/v1/comments", token, map[string]interface{}{
		"article": articleID,
		"content": "A reply",
		"parent":  parentID,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %s", w.Code, w.Body.String())
	}

	w = h.do("GET", "/v1/comments?article="+articleID, "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	var tree []map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &tree); err != nil {
		t.Fatalf("failed to decode tree: %v", err)
	}
	if len(tree) != 1 {
		t.Fatalf("Expected 1 top-level comment, got %d", len(tree))
	}
	children := tree[0]["children"].([]interface{})
	if len(children) != 1 {
		t.Fatalf("Expected 1 reply, got %d", len(children))
	}
	reply := children[0].(map[string]interface{})
	if reply["content"] != "A reply" {
		t.Errorf("Expected reply content, got %v", reply["content"])
	}
}

func TestCommentDelete(t *testing.T) {
	h := setupTestRouter(t)
	token := h.register("author@example.com")

	created := h.createArticle(token, "Discussed")
	articleID := created["id"].(string)

	w := h.do("POST", "/v1/comments", token, map[string]interface{}{
		"article": articleID,
		"content": "Regretted",
	})
	commentID := decode(t, w)["id"].(string)

	w = h.do("DELETE", "/v1/comments/"+commentID, token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	if msg := decode(t, w)["message"]; msg != "Comment deleted" {
		t.Errorf("Expected deletion message, got %v", msg)
	}

	w = h.do("GET", "/v1/comments?article="+articleID, "", nil)
	var tree []interface{}
	json.Unmarshal(w.Body.Bytes(), &tree)
	if len(tree) != 0 {
		t.Errorf("Expected deleted comment dropped from tree, got %d entries", len(tree))
	}
}

func TestTagEndpoints(t *testing.T) {
	h := setupTestRouter(t)
	token := h.register("author@example.com")

	w := h.do("POST", "/v1/tags", token, map[string]string{
		"title":       "golang",
		"description": "The Go programming language",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %s", w.Code, w.Body.String())
	}

	// Listing is public
	w = h.do("GET", "/v1/tags", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	var tags []map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &tags)
	if len(tags) != 1 {
		t.Errorf("Expected 1 tag, got %d", len(tags))
	}

	// Creation is not
	w = h.do("POST", "/v1/tags", "", map[string]string{"title": "anon"})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", w.Code)
	}
}

func TestLoginEndpoint(t *testing.T) {
	h := setupTestRouter(t)
	h.register("login@example.com")

	w := h.do("POST", "/v1/accounts/login", "", map[string]string{
		"email":    "login@example.com",
		"password": "secret",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	response := decode(t, w)
	if response["token"] == "" {
		t.Error("Expected a token in the login response")
	}

	w = h.do("POST", "/v1/accounts/login", "", map[string]string{
		"email":    "login@example.com",
		"password": "wrong",
	})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", w.Code)
	}
}

func TestMeEndpoint(t *testing.T) {
	h := setupTestRouter(t)
	token := h.register("me@example.com")

	w := h.do("GET", "/v1/accounts/me", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	if email := decode(t, w)["email"]; email != "me@example.com" {
		t.Errorf("Expected own email, got %v", email)
	}

	w = h.do("GET", "/v1/accounts/me", "", nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", w.Code)
	}
}

func TestInvalidTokenRejected(t *testing.T) {
	h := setupTestRouter(t)

	w := h.do("GET", "/v1/accounts/me", "v4.local.not-a-real-token", nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", w.Code)
	}
	if detail := decode(t, w)["detail"]; detail != "Invalid token." {
		t.Errorf("Expected invalid token detail, got %v", detail)
	}
}

func TestAdminAccountsEndpoint(t *testing.T) {
	h := setupTestRouter(t)
	adminToken := h.register("admin@example.com")
	userToken := h.register("user@example.com")
	h.promote("admin@example.com", func(u *models.User) { u.IsSuperuser = true })

	// Regular users are shut out
	w := h.do("GET", "/v1/admin/accounts", userToken, nil)
	if w.Code != http.StatusForbidden {
		t.Errorf("Expected status 403, got %d", w.Code)
	}

	w = h.do("GET", "/v1/admin/accounts", adminToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	if count := decode(t, w)["count"].(float64); count != 2 {
		t.Errorf("Expected 2 accounts, got %v", count)
	}

	// Admins can flip role flags
	var target string
	for _, u := range h.repos.User.(*mocks.MockUserRepo).Users {
		if u.Email == "user@example.com" {
			target = u.ID
		}
	}
	w = h.do("PATCH", "/v1/admin/accounts/"+target, adminToken, map[string]bool{"is_banned": true})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	if banned := decode(t, w)["is_banned"]; banned != true {
		t.Errorf("Expected is_banned true, got %v", banned)
	}

	// The banned user can no longer publish
	w = h.do("POST", "/v1/articles", userToken, map[string]interface{}{
		"title": "Blocked",
		"body":  "A body long enough to pass validation.",
	})
	if w.Code != http.StatusForbidden {
		t.Errorf("Expected status 403, got %d: %s", w.Code, w.Body.String())
	}
}
