package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/campusdesk/school-portal/internal/api/middleware"
	"github.com/campusdesk/school-portal/internal/core/domain"
	"github.com/campusdesk/school-portal/internal/core/session"
	"github.com/campusdesk/school-portal/internal/infrastructure/backend"
	"github.com/campusdesk/school-portal/internal/infrastructure/db/memory"
	"github.com/campusdesk/school-portal/internal/infrastructure/http/handlers"
)

// echoprometheus registers its collectors globally, so one router serves every test.
var (
	router      *echo.Echo
	backendStub *httptest.Server
)

func TestMain(m *testing.M) {
	backendStub = httptest.NewServer(http.HandlerFunc(fakeBackend))

	repo := memory.NewSessionRepository()
	mgr := session.NewManager(repo, session.NewDecoder(""), time.Hour, zerolog.Nop())
	client := backend.NewClient(backend.Config{BaseURL: backendStub.URL, Prefix: "/api/v1", Timeout: 5 * time.Second}, zerolog.Nop())

	var err error
	router, err = NewRouter(Deps{
		API:      backend.NewAPI(client),
		Sessions: mgr,
		Cookies:  middleware.NewCookieStore(middleware.CookieOptions{Secret: "0123456789abcdef0123456789abcdef", MaxAge: 3600}),
		Ready:    map[string]handlers.Pinger{"session_store_memory": mgr},
		Log:      zerolog.Nop(),
	})
	if err != nil {
		panic(err)
	}

	code := m.Run()
	backendStub.Close()
	os.Exit(code)
}

func signedToken(userID, role string) string {
	claims := session.Claims{
		UserID: userID,
		Email:  userID + "@school.test",
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("backend-secret"))
	if err != nil {
		panic(err)
	}
	return tok
}

// school is the state of the fake backend.
var school = struct {
	sync.Mutex
	courses     []domain.Course
	userLists   int
	courseLists int
}{}

func fakeBackend(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	switch r.Method + " " + r.URL.Path {
	case "POST /api/v1/auth/login":
		var body struct{ Email, Password string }
		_ = json.NewDecoder(r.Body).Decode(&body)
		http.SetCookie(w, &http.Cookie{Name: "refreshToken", Value: "rt-1", Path: "/"})
		switch body.Password {
		case "pw":
			_ = json.NewEncoder(w).Encode(map[string]string{"accessToken": signedToken("t1", "teacher")})
		case "admin-pw":
			_ = json.NewEncoder(w).Encode(map[string]string{"accessToken": signedToken("a1", "ADMIN")})
		default:
			w.WriteHeader(http.StatusUnauthorized)
		}
	case "GET /api/v1/teacher/t1/students":
		_, _ = w.Write([]byte(`[{"id":"s1","firstName":"Ada","lastName":"Lovelace","email":"ada@school.test","marks":[]}]`))
	case "GET /api/v1/admin/users":
		school.Lock()
		school.userLists++
		school.Unlock()
		_, _ = w.Write([]byte(`[{"id":"a1","firstName":"Grace","lastName":"Hopper","email":"a1@school.test","role":"ADMIN"}]`))
	case "GET /api/v1/admin/courses":
		school.Lock()
		school.courseLists++
		_ = json.NewEncoder(w).Encode(school.courses)
		school.Unlock()
	case "POST /api/v1/admin/course":
		var in domain.CourseInput
		_ = json.NewDecoder(r.Body).Decode(&in)
		school.Lock()
		school.courses = append(school.courses, domain.Course{ID: fmt.Sprintf("c%d", len(school.courses)+1), Name: in.Name})
		school.Unlock()
		w.WriteHeader(http.StatusCreated)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func do(t *testing.T, method, target string, form url.Values, cookies []*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestRouter_Health(t *testing.T) {
	if rec := do(t, http.MethodGet, "/health", nil, nil); rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec := do(t, http.MethodGet, "/health/ready", nil, nil); rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec := do(t, http.MethodGet, "/health", nil, nil); len(rec.Result().Cookies()) != 0 {
		t.Fatalf("health probes must not issue session cookies")
	}
}

func TestRouter_AnonymousIsSentToLogin(t *testing.T) {
	for _, path := range []string{"/", "/admin", "/teacher/students/s1/mark", "/student"} {
		rec := do(t, http.MethodGet, path, nil, nil)
		if rec.Code != http.StatusSeeOther || rec.Header().Get(echo.HeaderLocation) != "/login" {
			t.Fatalf("%s: expected 303 to /login, got %d %s", path, rec.Code, rec.Header().Get(echo.HeaderLocation))
		}
	}
	if rec := do(t, http.MethodGet, "/login", nil, nil); rec.Code != http.StatusOK {
		t.Fatalf("login page: expected 200, got %d", rec.Code)
	}
}

func TestRouter_APIMeAnonymous(t *testing.T) {
	rec := do(t, http.MethodGet, "/api/me", nil, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil || body["error"] == "" {
		t.Fatalf("expected JSON error envelope, got %s", rec.Body.String())
	}
}

func TestRouter_LoginFlow(t *testing.T) {
	rec := do(t, http.MethodPost, "/login", url.Values{"email": {"turing@school.test"}, "password": {"pw"}}, nil)
	if rec.Code != http.StatusSeeOther || rec.Header().Get(echo.HeaderLocation) != "/teacher" {
		t.Fatalf("expected 303 to /teacher, got %d %s", rec.Code, rec.Header().Get(echo.HeaderLocation))
	}
	cookies := rec.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatal("expected a session cookie")
	}

	rec = do(t, http.MethodGet, "/teacher", nil, cookies)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "Ada Lovelace") {
		t.Fatalf("expected roster, got %d", rec.Code)
	}

	rec = do(t, http.MethodGet, "/admin/users/new", nil, cookies)
	if rec.Code != http.StatusSeeOther || rec.Header().Get(echo.HeaderLocation) != "/teacher" {
		t.Fatalf("expected teacher to be sent back to /teacher, got %d %s", rec.Code, rec.Header().Get(echo.HeaderLocation))
	}

	rec = do(t, http.MethodGet, "/api/me", nil, cookies)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"role":"TEACHER"`) {
		t.Fatalf("expected identity, got %d %s", rec.Code, rec.Body.String())
	}

	rec = do(t, http.MethodPost, "/logout", nil, cookies)
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", rec.Code)
	}
	rec = do(t, http.MethodGet, "/teacher", nil, cookies)
	if rec.Header().Get(echo.HeaderLocation) != "/login" {
		t.Fatalf("expected /login after logout, got %s", rec.Header().Get(echo.HeaderLocation))
	}
}

func TestRouter_LoginRejected(t *testing.T) {
	rec := do(t, http.MethodPost, "/login", url.Values{"email": {"turing@school.test"}, "password": {"nope"}}, nil)
	if rec.Code != http.StatusUnauthorized || !strings.Contains(rec.Body.String(), "Invalid credentials.") {
		t.Fatalf("expected inline error, got %d", rec.Code)
	}
}

func TestRouter_AdminCreatesCourse(t *testing.T) {
	rec := do(t, http.MethodPost, "/login", url.Values{"email": {"a1@school.test"}, "password": {"admin-pw"}}, nil)
	if rec.Code != http.StatusSeeOther || rec.Header().Get(echo.HeaderLocation) != "/admin" {
		t.Fatalf("expected 303 to /admin, got %d %s", rec.Code, rec.Header().Get(echo.HeaderLocation))
	}
	cookies := rec.Result().Cookies()

	rec = do(t, http.MethodPost, "/admin/courses", url.Values{"name": {"Algebra II"}}, cookies)
	if rec.Code != http.StatusSeeOther || rec.Header().Get(echo.HeaderLocation) != "/admin" {
		t.Fatalf("expected 303 to /admin, got %d %s", rec.Code, rec.Header().Get(echo.HeaderLocation))
	}

	school.Lock()
	users, courses := school.userLists, school.courseLists
	school.Unlock()

	rec = do(t, http.MethodGet, "/admin", nil, cookies)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Algebra II") {
		t.Fatalf("expected the new course in the table: %s", rec.Body.String())
	}

	school.Lock()
	defer school.Unlock()
	if school.userLists-users != 1 || school.courseLists-courses != 1 {
		t.Fatalf("expected one fetch of each list, got users=%d courses=%d", school.userLists-users, school.courseLists-courses)
	}
}
