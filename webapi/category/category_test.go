package category_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/amirasaad/branchledger/pkg/domain/category"
	"github.com/amirasaad/branchledger/pkg/domain/ledger"
	"github.com/amirasaad/branchledger/webapi/testutils"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
)

type CategoryTestSuite struct {
	testutils.Suite
	token string
}

func TestCategoryTestSuite(t *testing.T) {
	suite.Run(t, new(CategoryTestSuite))
}

func (s *CategoryTestSuite) SetupTest() {
	s.Suite.SetupTest()
	s.token = s.SuperToken()
}

func (s *CategoryTestSuite) create(kind, body, token string) (*category.Category, int) {
	resp := s.MakeRequest(fiber.MethodPost, "/categories/"+kind, body, token)
	if resp.StatusCode != fiber.StatusCreated {
		resp.Body.Close() //nolint:errcheck
		return nil, resp.StatusCode
	}
	c := testutils.Decode[category.Category](&s.Suite, resp)
	return &c, resp.StatusCode
}

func names(list []category.Category) []string {
	out := make([]string, 0, len(list))
	for _, c := range list {
		out = append(out, c.Name)
	}
	return out
}

func (s *CategoryTestSuite) TestCreateCategory() {
	c, status := s.create("income", `{"name":"Tithes","description":"weekly"}`, s.token)
	s.Require().Equal(fiber.StatusCreated, status)
	s.Equal(category.KindIncome, c.Kind)
	s.Equal(category.ScopeAll, c.Scope)
	s.Equal(&s.World.Super.UserID, c.CreatedBy)

	testCases := []struct {
		desc       string
		body       string
		wantStatus int
	}{
		{"missing name", `{"description":"x"}`, fiber.StatusBadRequest},
		{"unknown scope", `{"name":"Rent","branch_type":"annex"}`, fiber.StatusBadRequest},
		{"bad branch id", `{"name":"Rent","branch_id":"nope"}`, fiber.StatusBadRequest},
		{"unknown branch", fmt.Sprintf(`{"name":"Rent","branch_id":%q}`, uuid.New()), fiber.StatusNotFound},
	}
	for _, tc := range testCases {
		s.Run(tc.desc, func() {
			_, status := s.create("expenditure", tc.body, s.token)
			s.Equal(tc.wantStatus, status)
		})
	}

	_, token := s.BranchAdmin("suba-admin", s.World.Sub.ID)
	_, status = s.create("expenditure", `{"name":"Rent"}`, token)
	s.Equal(fiber.StatusForbidden, status)
}

func (s *CategoryTestSuite) TestVisibility() {
	w := s.World
	other := w.AddBranch(s.T(), "SubB", "sub")
	_, status := s.create("expenditure", `{"name":"Payroll","branch_type":"main"}`, s.token)
	s.Require().Equal(fiber.StatusCreated, status)
	_, status = s.create("expenditure", `{"name":"Fuel","branch_type":"sub"}`, s.token)
	s.Require().Equal(fiber.StatusCreated, status)
	foreign, status := s.create("expenditure", fmt.Sprintf(`{"name":"Generator","branch_id":%q}`, other.ID), s.token)
	s.Require().Equal(fiber.StatusCreated, status)

	resp := s.MakeRequest(fiber.MethodGet, "/categories?kind=expenditure", "", s.token)
	s.Require().Equal(fiber.StatusOK, resp.StatusCode)
	all := names(testutils.Decode[[]category.Category](&s.Suite, resp))
	s.Subset(all, []string{"Utilities", "Payroll", "Fuel", "Generator"})

	_, token := s.BranchAdmin("suba-admin", w.Sub.ID)
	resp = s.MakeRequest(fiber.MethodGet, "/categories?kind=expenditure", "", token)
	s.Require().Equal(fiber.StatusOK, resp.StatusCode)
	visible := names(testutils.Decode[[]category.Category](&s.Suite, resp))
	s.Contains(visible, "Utilities")
	s.Contains(visible, "Fuel")
	s.NotContains(visible, "Payroll")
	s.NotContains(visible, "Generator")

	// A category owned by another branch cannot be used here.
	w.Post(s.T(), w.Sub.ID, ledger.TypeIncome, "100", time.Now())
	body := fmt.Sprintf(`{"amount":"10","category_id":%q}`, foreign.ID)
	resp = s.MakeRequest(fiber.MethodPost, "/transactions/expenditure", body, token)
	s.Equal(fiber.StatusUnprocessableEntity, resp.StatusCode)
	resp.Body.Close() //nolint:errcheck
}
