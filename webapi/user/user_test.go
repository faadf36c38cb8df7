package user_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/amirasaad/branchledger/pkg/domain/ledger"
	"github.com/amirasaad/branchledger/pkg/domain/user"
	"github.com/amirasaad/branchledger/webapi/testutils"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
)

type UserTestSuite struct {
	testutils.Suite
	token string
}

func TestUserTestSuite(t *testing.T) {
	suite.Run(t, new(UserTestSuite))
}

func (s *UserTestSuite) SetupTest() {
	s.Suite.SetupTest()
	s.token = s.SuperToken()
}

func (s *UserTestSuite) status(method, path, body, token string) int {
	resp := s.MakeRequest(method, path, body, token)
	defer resp.Body.Close() //nolint:errcheck
	return resp.StatusCode
}

func (s *UserTestSuite) TestCreateUser() {
	branchID := s.World.Sub.ID
	testCases := []struct {
		desc       string
		body       string
		wantStatus int
	}{
		{
			"valid",
			fmt.Sprintf(`{"username":"alice","email":"alice@example.com","password":"pass1","confirm_password":"pass1","branch_id":%q}`, branchID),
			fiber.StatusCreated,
		},
		{
			"duplicate username",
			`{"username":"alice","password":"pass1","confirm_password":"pass1"}`,
			fiber.StatusConflict,
		},
		{
			"password mismatch",
			`{"username":"bob","password":"pass1","confirm_password":"pass2"}`,
			fiber.StatusBadRequest,
		},
		{
			"short password",
			`{"username":"bob","password":"abc","confirm_password":"abc"}`,
			fiber.StatusBadRequest,
		},
		{
			"invalid email",
			`{"username":"bob","email":"nope","password":"pass1","confirm_password":"pass1"}`,
			fiber.StatusBadRequest,
		},
		{
			"unknown branch",
			fmt.Sprintf(`{"username":"carol","password":"pass1","confirm_password":"pass1","branch_id":%q}`, uuid.New()),
			fiber.StatusNotFound,
		},
	}
	for _, tc := range testCases {
		s.Run(tc.desc, func() {
			s.Equal(tc.wantStatus, s.status(fiber.MethodPost, "/users", tc.body, s.token))
		})
	}

	resp := s.MakeRequest(fiber.MethodGet, "/users", "", s.token)
	s.Require().Equal(fiber.StatusOK, resp.StatusCode)
	users := testutils.Decode[[]user.User](&s.Suite, resp)
	s.Require().Len(users, 1)
	s.Equal("alice", users[0].Username)
	s.Equal(user.RoleBranchAdmin, users[0].Role)
	s.Equal(&branchID, users[0].BranchID)
}

func (s *UserTestSuite) TestBranchAdminPermissions() {
	admin, token := s.BranchAdmin("suba-admin", s.World.Sub.ID)
	other := s.World.AddUser(s.T(), "subb-admin", user.RoleBranchAdmin, nil)

	s.Equal(fiber.StatusOK, s.status(fiber.MethodGet, "/users/"+admin.ID.String(), "", token))
	s.Equal(fiber.StatusForbidden, s.status(fiber.MethodGet, "/users/"+other.ID.String(), "", token))
	s.Equal(fiber.StatusForbidden, s.status(fiber.MethodGet, "/users", "", token))
	s.Equal(fiber.StatusForbidden, s.status(fiber.MethodDelete, "/users/"+other.ID.String(), "", token))
	s.Equal(fiber.StatusForbidden, s.status(fiber.MethodPatch, "/users/"+other.ID.String()+"/status", "", token))
}

func (s *UserTestSuite) TestToggleStatus() {
	admin := s.World.AddUser(s.T(), "suba-admin", user.RoleBranchAdmin, &s.World.Sub.ID)

	resp := s.MakeRequest(fiber.MethodPatch, "/users/"+admin.ID.String()+"/status", "", s.token)
	s.Require().Equal(fiber.StatusOK, resp.StatusCode)
	s.False(testutils.Decode[user.User](&s.Suite, resp).IsActive)

	resp = s.MakeRequest(fiber.MethodPatch, "/users/"+admin.ID.String()+"/status", "", s.token)
	s.Require().Equal(fiber.StatusOK, resp.StatusCode)
	s.True(testutils.Decode[user.User](&s.Suite, resp).IsActive)

	path := "/users/" + s.World.Super.UserID.String() + "/status"
	s.Equal(fiber.StatusForbidden, s.status(fiber.MethodPatch, path, "", s.token))
}

func (s *UserTestSuite) TestResetPassword() {
	admin := s.World.AddUser(s.T(), "suba-admin", user.RoleBranchAdmin, &s.World.Sub.ID)
	path := "/users/" + admin.ID.String() + "/password"

	s.Equal(fiber.StatusBadRequest, s.status(fiber.MethodPut, path, `{"password":"fresh","confirm_password":"other"}`, s.token))
	s.Equal(fiber.StatusOK, s.status(fiber.MethodPut, path, `{"password":"fresh","confirm_password":"fresh"}`, s.token))

	s.Equal(fiber.StatusUnauthorized, s.status(fiber.MethodPost, "/auth/login", `{"identity":"suba-admin","password":"secret"}`, ""))
	s.Equal(fiber.StatusOK, s.status(fiber.MethodPost, "/auth/login", `{"identity":"suba-admin","password":"fresh"}`, ""))
}

func (s *UserTestSuite) TestDeleteUserReassignsRecords() {
	w := s.World
	w.Post(s.T(), w.Sub.ID, ledger.TypeIncome, "100", time.Now())
	admin, token := s.BranchAdmin("suba-admin", w.Sub.ID)

	body := fmt.Sprintf(`{"amount":"30","category_id":%q}`, w.Expenditure.ID)
	resp := s.MakeRequest(fiber.MethodPost, "/transactions/expenditure", body, token)
	s.Require().Equal(fiber.StatusCreated, resp.StatusCode)
	tx := testutils.Decode[ledger.Transaction](&s.Suite, resp)
	s.Require().NotNil(tx.CreatedBy)
	s.Equal(admin.ID, *tx.CreatedBy)

	s.Equal(fiber.StatusOK, s.status(fiber.MethodDelete, "/users/"+admin.ID.String(), "", s.token))
	s.Equal(fiber.StatusNotFound, s.status(fiber.MethodGet, "/users/"+admin.ID.String(), "", s.token))

	resp = s.MakeRequest(fiber.MethodGet, "/transactions?type=expenditure", "", s.token)
	s.Require().Equal(fiber.StatusOK, resp.StatusCode)
	page := testutils.Decode[struct {
		Transactions []ledger.Transaction `json:"transactions"`
	}](&s.Suite, resp)
	s.Require().Len(page.Transactions, 1)
	s.Require().NotNil(page.Transactions[0].CreatedBy)
	s.Equal(w.Super.UserID, *page.Transactions[0].CreatedBy)
}
