// Package testutils runs the full HTTP stack against the in-memory ledger.
package testutils

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/amirasaad/branchledger/infra/cache"
	"github.com/amirasaad/branchledger/internal/fixtures"
	"github.com/amirasaad/branchledger/pkg/app"
	"github.com/amirasaad/branchledger/pkg/config"
	"github.com/amirasaad/branchledger/pkg/domain/user"
	"github.com/amirasaad/branchledger/webapi"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
)

// TestSecret signs the tokens of the suite.
const TestSecret = "webapi-test-secret"

// Suite provides a fresh in-memory ledger and HTTP app for every test.
type Suite struct {
	suite.Suite
	World *fixtures.World
	App   *app.App
	Fiber *fiber.App
	Cfg   *config.App
}

// Config returns the configuration used by the suite.
func Config() *config.App {
	return &config.App{
		Env:         "test",
		Auth:        &config.Auth{Jwt: &config.Jwt{Secret: TestSecret, Expiry: time.Hour}},
		RateLimit:   &config.RateLimit{MaxRequests: 10000, Window: time.Second},
		Idempotency: &config.Idempotency{Lifetime: time.Minute},
		Ledger:      &config.Ledger{MainBranch: &config.MainBranch{Name: "Head Office"}},
		Seed:        &config.Seed{},
	}
}

// SetupTest builds a new World and app.
func (s *Suite) SetupTest() {
	s.World = fixtures.NewWorld(s.T())
	if s.Cfg == nil {
		s.Cfg = Config()
	}
	deps := &config.Deps{
		Uow:     s.World.Store,
		Storage: cache.NewMemoryStorage(time.Minute),
		Logger:  fixtures.Logger(),
		Config:  s.Cfg,
	}
	s.App = app.New(deps, s.Cfg)
	s.Fiber = webapi.SetupApp(s.App)
}

// MakeRequest is a helper for making HTTP requests in tests. headers are
// key/value pairs.
func (s *Suite) MakeRequest(method, path, body, token string, headers ...string) *http.Response {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	resp, err := s.Fiber.Test(req, -1)
	s.Require().NoError(err)
	return resp
}

// Token signs a token for a stored user.
func (s *Suite) Token(userID uuid.UUID) string {
	token, err := s.App.AuthService.GenerateToken(s.World.User(s.T(), userID))
	s.Require().NoError(err)
	return token
}

// SuperToken signs a token for the super admin of the World.
func (s *Suite) SuperToken() string {
	return s.Token(s.World.Super.UserID)
}

// BranchAdmin stores a branch admin managing branchID and returns it with a token.
func (s *Suite) BranchAdmin(username string, branchID uuid.UUID) (*user.User, string) {
	u := s.World.AddUser(s.T(), username, user.RoleBranchAdmin, &branchID)
	return u, s.Token(u.ID)
}

// Envelope is the decoded success body.
type Envelope[T any] struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
	Data    T      `json:"data"`
}

// Decode reads the success envelope of resp.
func Decode[T any](s *Suite, resp *http.Response) T {
	defer resp.Body.Close() //nolint:errcheck
	var env Envelope[T]
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&env))
	return env.Data
}

// Problem is the decoded problem details body.
type Problem struct {
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail"`
	Errors any    `json:"errors"`
}

// DecodeProblem reads a problem details body.
func DecodeProblem(s *Suite, resp *http.Response) Problem {
	defer resp.Body.Close() //nolint:errcheck
	raw, err := io.ReadAll(resp.Body)
	s.Require().NoError(err)
	var p Problem
	_ = json.Unmarshal(raw, &p)
	return p
}
