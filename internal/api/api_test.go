package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"expense_tracker/internal/db"
	"expense_tracker/internal/expense"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"
)

const testSecret = "test-secret"

// fakeLimiter blocks an email after max failures
type fakeLimiter struct {
	max      int
	failures map[string]int
}

func (f *fakeLimiter) Allowed(_ context.Context, email string) (bool, error) {
	return f.failures[email] < f.max, nil
}

func (f *fakeLimiter) Fail(_ context.Context, email string) error {
	f.failures[email]++
	return nil
}

func (f *fakeLimiter) Reset(_ context.Context, email string) error {
	delete(f.failures, email)
	return nil
}

// APITestSuite drives the full router against an in-memory database
type APITestSuite struct {
	suite.Suite
	gdb     *gorm.DB
	router  *gin.Engine
	limiter *fakeLimiter
}

func (s *APITestSuite) SetupSuite() {
	gin.SetMode(gin.TestMode)
}

func (s *APITestSuite) SetupTest() {
	gdb, err := db.OpenMemory()
	require.NoError(s.T(), err, "failed to create test database")
	s.gdb = gdb
	s.limiter = &fakeLimiter{max: 3, failures: map[string]int{}}
	s.router = NewRouter(Deps{
		DB:            gdb,
		Throttle:      s.limiter,
		JWTSecret:     testSecret,
		JWTTTL:        time.Hour,
		CategoryOrder: expense.ByTotal,
		CORSOrigins:   []string{"*"},
	})
}

func (s *APITestSuite) TearDownTest() {
	if sqlDB, err := s.gdb.DB(); err == nil {
		sqlDB.Close()
	}
}

func (s *APITestSuite) do(method, path, token string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.T(), json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *APITestSuite) decode(w *httptest.ResponseRecorder, dest any) {
	require.NoError(s.T(), json.Unmarshal(w.Body.Bytes(), dest), w.Body.String())
}

// signup registers and logs in, returning the access token
func (s *APITestSuite) signup(email string) string {
	w := s.do(http.MethodPost, "/api/auth/register", "", map[string]any{"email": email, "password": "hunter22", "name": "Test"})
	require.Equal(s.T(), http.StatusCreated, w.Code, w.Body.String())

	w = s.do(http.MethodPost, "/api/auth/login", "", map[string]any{"email": email, "password": "hunter22"})
	require.Equal(s.T(), http.StatusOK, w.Code, w.Body.String())
	var resp AuthResponse
	s.decode(w, &resp)
	require.NotEmpty(s.T(), resp.AccessToken)
	return resp.AccessToken
}

func (s *APITestSuite) createExpense(token string, payload map[string]any) ExpenseResponse {
	w := s.do(http.MethodPost, "/api/expenses", token, payload)
	require.Equal(s.T(), http.StatusCreated, w.Code, w.Body.String())
	var e ExpenseResponse
	s.decode(w, &e)
	return e
}

func (s *APITestSuite) list(token, query string) []ExpenseResponse {
	w := s.do(http.MethodGet, "/api/expenses"+query, token, nil)
	require.Equal(s.T(), http.StatusOK, w.Code, w.Body.String())
	var out []ExpenseResponse
	s.decode(w, &out)
	return out
}

func coffee() map[string]any {
	return map[string]any{"title": "Coffee", "amount": "3.50", "date": "2025-11-01", "category": "Food"}
}

func (s *APITestSuite) TestOwnerScenario() {
	alice := s.signup("alice@example.com")
	bob := s.signup("bob@example.com")

	created := s.createExpense(alice, coffee())
	assert.Equal(s.T(), "Coffee", created.Title)
	assert.Equal(s.T(), "3.50", created.Amount)
	assert.Equal(s.T(), "2025-11-01", created.Date.String())
	assert.Equal(s.T(), "Food", created.Category)

	mine := s.list(alice, "")
	require.Len(s.T(), mine, 1)
	assert.Equal(s.T(), created.ID, mine[0].ID)

	assert.Empty(s.T(), s.list(bob, ""))
	assert.Empty(s.T(), s.list("", ""))
}

func (s *APITestSuite) TestAnonymousPool() {
	alice := s.signup("alice@example.com")
	s.createExpense(alice, coffee())
	global := s.createExpense("", map[string]any{"title": "Rent", "amount": 900, "date": "2025-11-01", "category": "Housing"})
	assert.Equal(s.T(), "900.00", global.Amount)

	anon := s.list("", "")
	require.Len(s.T(), anon, 1)
	assert.Equal(s.T(), global.ID, anon[0].ID)

	// anonymous callers cannot touch owned records, and owners cannot touch the pool
	mine := s.list(alice, "")
	require.Len(s.T(), mine, 1)
	assert.Equal(s.T(), http.StatusNotFound, s.do(http.MethodDelete, fmt.Sprintf("/api/expenses/%d", mine[0].ID), "", nil).Code)
	assert.Equal(s.T(), http.StatusNotFound, s.do(http.MethodPut, fmt.Sprintf("/api/expenses/%d", global.ID), alice, map[string]any{"title": "x"}).Code)
}

func (s *APITestSuite) TestCreateValidationErrors() {
	w := s.do(http.MethodPost, "/api/expenses", "", map[string]any{})
	require.Equal(s.T(), http.StatusBadRequest, w.Code)
	var resp struct {
		Errors []string `json:"errors"`
	}
	s.decode(w, &resp)
	assert.Equal(s.T(), []string{
		"Missing field: title", "Missing field: amount", "Missing field: date", "Missing field: category",
	}, resp.Errors)

	w = s.do(http.MethodPost, "/api/expenses", "", map[string]any{"title": " ", "amount": "0", "date": "2025-02-30", "category": "Food"})
	require.Equal(s.T(), http.StatusBadRequest, w.Code)
	s.decode(w, &resp)
	assert.Equal(s.T(), []string{
		"title cannot be empty", "amount must be > 0", "date must be in YYYY-MM-DD format",
	}, resp.Errors)

	req := httptest.NewRequest(http.MethodPost, "/api/expenses", bytes.NewBufferString("{not json"))
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	assert.Equal(s.T(), http.StatusBadRequest, rec.Code)
}

func (s *APITestSuite) TestAmountPrecision() {
	p := coffee()
	p["amount"] = "12.345"
	e := s.createExpense("", p)
	assert.Equal(s.T(), "12.35", e.Amount)

	// JSON numbers are read as their literal digits
	req := httptest.NewRequest(http.MethodPost, "/api/expenses",
		bytes.NewBufferString(`{"title":"Tea","amount":0.1,"date":"2025-11-01","category":"Food"}`))
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	require.Equal(s.T(), http.StatusCreated, rec.Code)
	s.decode(rec, &e)
	assert.Equal(s.T(), "0.10", e.Amount)
}

func (s *APITestSuite) TestListFiltersAndPaging() {
	alice := s.signup("alice@example.com")
	s.createExpense(alice, coffee())
	s.createExpense(alice, map[string]any{"title": "Train", "amount": "20", "date": "2025-11-03", "category": "Transport"})
	s.createExpense(alice, map[string]any{"title": "Lunch", "amount": "12", "date": "2025-10-15", "category": "food"})

	got := s.list(alice, "?q=FOOD")
	require.Len(s.T(), got, 2)
	assert.Equal(s.T(), "Coffee", got[0].Title)
	assert.Equal(s.T(), "Lunch", got[1].Title)

	got = s.list(alice, "?from=2025-11-01&to=2025-11-02")
	require.Len(s.T(), got, 1)
	assert.Equal(s.T(), "Coffee", got[0].Title)

	got = s.list(alice, "?page=2&page_size=2")
	require.Len(s.T(), got, 1)
	assert.Equal(s.T(), "Lunch", got[0].Title)

	got = s.list(alice, "?page=0&page_size=1")
	require.Len(s.T(), got, 1)
	assert.Equal(s.T(), "Train", got[0].Title)

	got = s.list(alice, "?page=9223372036854775807")
	assert.Empty(s.T(), got)

	got = s.list(alice, "?page=abc&page_size=xyz")
	assert.Len(s.T(), got, 3)

	w := s.do(http.MethodGet, "/api/expenses?from=2025-02-30", alice, nil)
	assert.Equal(s.T(), http.StatusBadRequest, w.Code)
	assert.Contains(s.T(), w.Body.String(), "from must be in YYYY-MM-DD format")
}

func (s *APITestSuite) TestPageSizeClamped() {
	store := expense.NewStore(s.gdb)
	for i := 0; i < 101; i++ {
		_, err := store.Create(context.Background(), expense.ScopeFor(nil), coffee())
		require.NoError(s.T(), err)
	}

	w := s.do(http.MethodGet, "/api/expenses?page_size=500", "", nil)
	require.Equal(s.T(), http.StatusOK, w.Code)
	var got []ExpenseResponse
	s.decode(w, &got)
	assert.Len(s.T(), got, 100)
	assert.Equal(s.T(), "101", w.Header().Get("X-Total-Count"))

	assert.Len(s.T(), s.list("", ""), expense.DefaultPageSize)
}

func (s *APITestSuite) TestUpdateAndDelete() {
	alice := s.signup("alice@example.com")
	bob := s.signup("bob@example.com")
	e := s.createExpense(alice, coffee())
	path := fmt.Sprintf("/api/expenses/%d", e.ID)

	w := s.do(http.MethodPut, path, alice, map[string]any{"amount": "4.2", "category": "Drinks"})
	require.Equal(s.T(), http.StatusOK, w.Code, w.Body.String())
	var updated ExpenseResponse
	s.decode(w, &updated)
	assert.Equal(s.T(), "Coffee", updated.Title)
	assert.Equal(s.T(), "4.20", updated.Amount)
	assert.Equal(s.T(), "Drinks", updated.Category)
	assert.Equal(s.T(), "2025-11-01", updated.Date.String())

	w = s.do(http.MethodPut, path, alice, map[string]any{"amount": "-1"})
	assert.Equal(s.T(), http.StatusBadRequest, w.Code)
	assert.Contains(s.T(), w.Body.String(), "amount must be > 0")

	assert.Equal(s.T(), http.StatusNotFound, s.do(http.MethodPut, path, bob, map[string]any{"title": "x"}).Code)
	assert.Equal(s.T(), http.StatusNotFound, s.do(http.MethodPut, "/api/expenses/999", alice, map[string]any{"title": "x"}).Code)
	assert.Equal(s.T(), http.StatusNotFound, s.do(http.MethodPut, "/api/expenses/abc", alice, map[string]any{"title": "x"}).Code)

	w = s.do(http.MethodGet, path, alice, nil)
	require.Equal(s.T(), http.StatusOK, w.Code)
	var fetched ExpenseResponse
	s.decode(w, &fetched)
	assert.Equal(s.T(), "4.20", fetched.Amount)
	assert.Equal(s.T(), http.StatusNotFound, s.do(http.MethodGet, path, bob, nil).Code)

	assert.Equal(s.T(), http.StatusNotFound, s.do(http.MethodDelete, path, bob, nil).Code)
	assert.Equal(s.T(), http.StatusNoContent, s.do(http.MethodDelete, path, alice, nil).Code)
	assert.Equal(s.T(), http.StatusNotFound, s.do(http.MethodDelete, path, alice, nil).Code)
}

func (s *APITestSuite) TestMonthSummary() {
	alice := s.signup("alice@example.com")
	bob := s.signup("bob@example.com")
	s.createExpense(alice, coffee())
	s.createExpense(alice, map[string]any{"title": "Dinner", "amount": "10.00", "date": "2025-11-20", "category": "Food"})
	s.createExpense(bob, map[string]any{"title": "Bob", "amount": "99", "date": "2025-11-20", "category": "Food"})

	w := s.do(http.MethodGet, "/api/summary/month?year=2025&month=11", alice, nil)
	require.Equal(s.T(), http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(s.T(), `{"year":2025,"month":11,"total":"13.50"}`, w.Body.String())

	w = s.do(http.MethodGet, "/api/summary/month?year=2025&month=12", alice, nil)
	require.Equal(s.T(), http.StatusOK, w.Code)
	assert.JSONEq(s.T(), `{"year":2025,"month":12,"total":"0.00"}`, w.Body.String())

	assert.Equal(s.T(), http.StatusUnauthorized, s.do(http.MethodGet, "/api/summary/month?year=2025&month=11", "", nil).Code)
	assert.Equal(s.T(), http.StatusBadRequest, s.do(http.MethodGet, "/api/summary/month?year=2025", alice, nil).Code)
	assert.Equal(s.T(), http.StatusBadRequest, s.do(http.MethodGet, "/api/summary/month?year=2025&month=13", alice, nil).Code)
}

func (s *APITestSuite) TestCategorySummary() {
	alice := s.signup("alice@example.com")
	s.createExpense(alice, coffee())
	s.createExpense(alice, map[string]any{"title": "Dinner", "amount": "10.00", "date": "2025-11-20", "category": "Food"})
	s.createExpense(alice, map[string]any{"title": "Flight", "amount": "250", "date": "2025-09-01", "category": "Travel"})

	w := s.do(http.MethodGet, "/api/summary/by_category", alice, nil)
	require.Equal(s.T(), http.StatusOK, w.Code)
	assert.JSONEq(s.T(), `[{"category":"Travel","total":"250.00"},{"category":"Food","total":"13.50"}]`, w.Body.String())

	w = s.do(http.MethodGet, "/api/summary/by_category?from=2025-11-01&to=2025-11-30", alice, nil)
	require.Equal(s.T(), http.StatusOK, w.Code)
	assert.JSONEq(s.T(), `[{"category":"Food","total":"13.50"}]`, w.Body.String())

	assert.Equal(s.T(), http.StatusUnauthorized, s.do(http.MethodGet, "/api/summary/by_category", "", nil).Code)
}

func (s *APITestSuite) TestRegister() {
	w := s.do(http.MethodPost, "/api/auth/register", "", map[string]any{"email": "New@Example.com", "password": "pw123456"})
	require.Equal(s.T(), http.StatusCreated, w.Code, w.Body.String())
	var u UserResponse
	s.decode(w, &u)
	assert.Equal(s.T(), "new@example.com", u.Email)
	assert.Nil(s.T(), u.Name)

	w = s.do(http.MethodPost, "/api/auth/register", "", map[string]any{"email": "new@example.com", "password": "other"})
	assert.Equal(s.T(), http.StatusBadRequest, w.Code)
	assert.Contains(s.T(), w.Body.String(), "email already registered")

	w = s.do(http.MethodPost, "/api/auth/register", "", map[string]any{"password": "pw"})
	assert.Equal(s.T(), http.StatusBadRequest, w.Code)
	assert.Contains(s.T(), w.Body.String(), "email is required")

	w = s.do(http.MethodPost, "/api/auth/register", "", map[string]any{"email": "not-an-email", "password": "pw"})
	assert.Equal(s.T(), http.StatusBadRequest, w.Code)
}

func (s *APITestSuite) TestLogin() {
	s.signup("alice@example.com")

	w := s.do(http.MethodPost, "/api/auth/login", "", map[string]any{"email": "ALICE@example.com", "password": "hunter22"})
	require.Equal(s.T(), http.StatusOK, w.Code)
	var resp AuthResponse
	s.decode(w, &resp)
	assert.Equal(s.T(), "alice@example.com", resp.User.Email)
	require.NotNil(s.T(), resp.User.Name)
	assert.Equal(s.T(), "Test", *resp.User.Name)

	w = s.do(http.MethodPost, "/api/auth/login", "", map[string]any{"email": "alice@example.com", "password": "wrong"})
	assert.Equal(s.T(), http.StatusUnauthorized, w.Code)
	w = s.do(http.MethodPost, "/api/auth/login", "", map[string]any{"email": "nobody@example.com", "password": "wrong"})
	assert.Equal(s.T(), http.StatusUnauthorized, w.Code)
}

func (s *APITestSuite) TestLoginThrottle() {
	s.signup("alice@example.com")

	for i := 0; i < s.limiter.max; i++ {
		w := s.do(http.MethodPost, "/api/auth/login", "", map[string]any{"email": "alice@example.com", "password": "wrong"})
		require.Equal(s.T(), http.StatusUnauthorized, w.Code)
	}
	w := s.do(http.MethodPost, "/api/auth/login", "", map[string]any{"email": "alice@example.com", "password": "hunter22"})
	assert.Equal(s.T(), http.StatusTooManyRequests, w.Code)

	s.limiter.failures = map[string]int{}
	w = s.do(http.MethodPost, "/api/auth/login", "", map[string]any{"email": "alice@example.com", "password": "hunter22"})
	assert.Equal(s.T(), http.StatusOK, w.Code)
}

func (s *APITestSuite) TestInvalidTokenRejected() {
	w := s.do(http.MethodGet, "/api/expenses", "garbage", nil)
	assert.Equal(s.T(), http.StatusUnauthorized, w.Code)
}

func (s *APITestSuite) TestHealth() {
	w := s.do(http.MethodGet, "/health", "", nil)
	assert.Equal(s.T(), http.StatusOK, w.Code)
	assert.JSONEq(s.T(), `{"status":"ok","db":"connected"}`, w.Body.String())

	sqlDB, err := s.gdb.DB()
	require.NoError(s.T(), err)
	require.NoError(s.T(), sqlDB.Close())
	w = s.do(http.MethodGet, "/health", "", nil)
	assert.Equal(s.T(), http.StatusInternalServerError, w.Code)
}

func TestAPITestSuite(t *testing.T) {
	suite.Run(t, new(APITestSuite))
}
