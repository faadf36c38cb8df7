package common

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/amirasaad/branchledger/pkg/domain"
	"github.com/amirasaad/branchledger/pkg/domain/ledger"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorToStatusCode(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{nil, fiber.StatusOK},
		{fmt.Errorf("branch: %w", domain.ErrNotFound), fiber.StatusNotFound},
		{&ledger.InsufficientFundsError{}, fiber.StatusUnprocessableEntity},
		{domain.ErrCategoryNotVisible, fiber.StatusUnprocessableEntity},
		{domain.ErrNoMainBranch, fiber.StatusUnprocessableEntity},
		{fmt.Errorf("%w: amount", domain.ErrValidation), fiber.StatusBadRequest},
		{domain.ErrAlreadyExists, fiber.StatusConflict},
		{domain.ErrUnauthorized, fiber.StatusUnauthorized},
		{domain.ErrForbidden, fiber.StatusForbidden},
		{fiber.NewError(fiber.StatusTeapot, "tea"), fiber.StatusTeapot},
		{errors.New("boom"), fiber.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ErrorToStatusCode(tt.err), fmt.Sprint(tt.err))
	}
}

func problemFor(t *testing.T, handler fiber.Handler) (int, string, ProblemDetails) {
	t.Helper()
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	app.Post("/", handler)
	req := httptest.NewRequest(http.MethodPost, "/?branch_id=nope", strings.NewReader(`{"name":""}`))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close() //nolint:errcheck
	var pd ProblemDetails
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&pd))
	return resp.StatusCode, resp.Header.Get(fiber.HeaderContentType), pd
}

func TestProblemDetailsJSON(t *testing.T) {
	t.Run("insufficient funds", func(t *testing.T) {
		status, ctype, pd := problemFor(t, func(c *fiber.Ctx) error {
			return ProblemDetailsJSON(c, "Failed", ledger.CheckSufficient(decimal.NewFromInt(5), decimal.NewFromInt(8)))
		})
		assert.Equal(t, fiber.StatusUnprocessableEntity, status)
		assert.Equal(t, "application/problem+json", ctype)
		assert.Equal(t, fiber.StatusUnprocessableEntity, pd.Status)
		assert.Equal(t, map[string]any{"current_balance": "5.00", "requested": "8.00"}, pd.Errors)
	})

	t.Run("internal errors are hidden", func(t *testing.T) {
		status, _, pd := problemFor(t, func(c *fiber.Ctx) error {
			return ProblemDetailsJSON(c, "Failed", errors.New("pq: connection refused"))
		})
		assert.Equal(t, fiber.StatusInternalServerError, status)
		assert.NotContains(t, pd.Detail, "pq")
	})

	t.Run("overrides", func(t *testing.T) {
		status, _, pd := problemFor(t, func(c *fiber.Ctx) error {
			return ProblemDetailsJSON(c, "Failed", errors.New("x"), "custom detail", fiber.StatusBadGateway)
		})
		assert.Equal(t, fiber.StatusBadGateway, status)
		assert.Equal(t, "custom detail", pd.Detail)
	})

	t.Run("returned fiber errors", func(t *testing.T) {
		status, ctype, pd := problemFor(t, func(c *fiber.Ctx) error {
			_, err := ParseUUIDQuery(c, "branch_id")
			return err
		})
		assert.Equal(t, fiber.StatusBadRequest, status)
		assert.Equal(t, "application/problem+json", ctype)
		assert.Equal(t, "Bad Request", pd.Title)
		assert.Equal(t, "branch_id must be a valid UUID", pd.Detail)
	})
}

type named struct {
	Name string `json:"name" validate:"required"`
}

func TestBindAndValidate(t *testing.T) {
	status, _, pd := problemFor(t, func(c *fiber.Ctx) error {
		input, err := BindAndValidate[named](c)
		if input == nil {
			return err
		}
		return c.SendStatus(fiber.StatusNoContent)
	})
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "Validation failed", pd.Title)
	assert.Equal(t, []any{map[string]any{"field": "Name", "rule": "required"}}, pd.Errors)
}
