package ledger

import (
	"errors"
	"time"

	"github.com/amirasaad/branchledger/pkg/domain"
	"github.com/amirasaad/branchledger/pkg/domain/ledger"
	"github.com/amirasaad/branchledger/pkg/dto"
	ledgersvc "github.com/amirasaad/branchledger/pkg/service/ledger"
	"github.com/amirasaad/branchledger/webapi/common"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
)

// Routes registers transaction and allocation endpoints. idempotent guards
// the write endpoints against replayed requests.
//
// Routes:
//   - GET    /transactions              : Filtered transactions with totals.
//   - POST   /transactions              : Record income or expenditure.
//   - POST   /transactions/income       : Record income.
//   - POST   /transactions/expenditure  : Record expenditure.
//   - DELETE /transactions/:id          : Delete a transaction.
//   - GET    /allocations               : List fund allocations.
//   - POST   /allocations               : Allocate funds from the main branch.
func Routes(
	app *fiber.App,
	ledgerSvc *ledgersvc.Service,
	protected fiber.Handler,
	idempotent fiber.Handler,
) {
	app.Get("/transactions", protected, ListTransactions(ledgerSvc))
	app.Post("/transactions", protected, idempotent, RecordTransaction(ledgerSvc, ""))
	app.Post("/transactions/income", protected, idempotent, RecordTransaction(ledgerSvc, ledger.TypeIncome))
	app.Post("/transactions/expenditure", protected, idempotent, RecordTransaction(ledgerSvc, ledger.TypeExpenditure))
	app.Delete("/transactions/:id", protected, DeleteTransaction(ledgerSvc))
	app.Get("/allocations", protected, ListAllocations(ledgerSvc))
	app.Post("/allocations", protected, idempotent, AllocateFunds(ledgerSvc))
}

// ListTransactions returns transactions newest first with the totals of the
// filtered set. Branch admins only see their branch.
// @Summary List transactions
// @Tags transactions
// @Produce json
// @Param branch_id query string false "Branch ID"
// @Param type query string false "income or expenditure"
// @Param start_date query string false "YYYY-MM-DD"
// @Param end_date query string false "YYYY-MM-DD"
// @Param limit query int false "At most 100"
// @Success 200 {object} common.Response
// @Failure 400 {object} common.ProblemDetails
// @Failure 401 {object} common.ProblemDetails
// @Router /transactions [get]
// @Security Bearer
func ListTransactions(ledgerSvc *ledgersvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := common.Principal(c)
		if err != nil {
			return err
		}
		filter := dto.TransactionFilter{
			Type:  ledger.Type(c.Query("type")),
			Limit: c.QueryInt("limit", dto.MaxTransactionRows),
		}
		branchID, err := common.ParseUUIDQuery(c, "branch_id")
		if err != nil {
			return err
		}
		if branchID != uuid.Nil {
			filter.BranchID = &branchID
		}
		start, err := common.ParseDateQuery(c, "start_date")
		if err != nil {
			return err
		}
		if !start.IsZero() {
			filter.StartDate = &start
		}
		end, err := common.ParseDateQuery(c, "end_date")
		if err != nil {
			return err
		}
		if !end.IsZero() {
			filter.EndDate = &end
		}
		page, err := ledgerSvc.ListTransactions(c.UserContext(), p, filter)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to list transactions", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Transactions fetched", page)
	}
}

// RecordTransaction returns a handler recording manual entries. An empty typ
// takes the type from the request body.
// @Summary Record a transaction
// @Description Records income or expenditure on a branch. Expenditure larger than the branch balance is refused.
// @Tags transactions
// @Accept json
// @Produce json
// @Param Idempotency-Key header string false "Replay protection key (UUID)"
// @Param request body RecordRequest true "Transaction details"
// @Success 201 {object} common.Response
// @Failure 400 {object} common.ProblemDetails
// @Failure 403 {object} common.ProblemDetails
// @Failure 404 {object} common.ProblemDetails
// @Failure 422 {object} common.ProblemDetails "Insufficient funds or category not available"
// @Router /transactions [post]
// @Router /transactions/income [post]
// @Router /transactions/expenditure [post]
// @Security Bearer
func RecordTransaction(ledgerSvc *ledgersvc.Service, typ ledger.Type) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := common.Principal(c)
		if err != nil {
			return err
		}
		input, err := common.BindAndValidate[RecordRequest](c)
		if input == nil {
			return err
		}
		in := ledgersvc.RecordInput{
			Type:        typ,
			Amount:      input.Amount,
			Description: input.Description,
			CategoryID:  uuid.MustParse(input.CategoryID),
		}
		if in.Type == "" {
			in.Type = ledger.Type(input.TransactionType)
		}
		if input.BranchID != "" {
			in.BranchID = uuid.MustParse(input.BranchID)
		}
		if input.Date != "" {
			in.Date, _ = time.Parse(common.DateLayout, input.Date)
		}
		tx, err := ledgerSvc.RecordTransaction(c.UserContext(), p, in)
		if err != nil {
			if !errors.Is(err, domain.ErrInsufficientFunds) {
				log.Errorf("Failed to record transaction: %v", err)
			}
			return common.ProblemDetailsJSON(c, "Failed to record transaction", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusCreated, "Transaction recorded", tx)
	}
}

// DeleteTransaction removes a transaction.
// @Summary Delete a transaction
// @Tags transactions
// @Produce json
// @Param id path string true "Transaction ID"
// @Success 200 {object} common.Response
// @Failure 403 {object} common.ProblemDetails
// @Failure 404 {object} common.ProblemDetails
// @Router /transactions/{id} [delete]
// @Security Bearer
func DeleteTransaction(ledgerSvc *ledgersvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := common.Principal(c)
		if err != nil {
			return err
		}
		id, err := common.ParseID(c, "id")
		if err != nil {
			return err
		}
		if err := ledgerSvc.DeleteTransaction(c.UserContext(), p, id); err != nil {
			return common.ProblemDetailsJSON(c, "Failed to delete transaction", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Transaction deleted", nil)
	}
}

// ListAllocations returns fund allocations newest first.
// @Summary List allocations
// @Tags allocations
// @Produce json
// @Param to_branch_id query string false "Receiving branch ID"
// @Param limit query int false "At most 100"
// @Success 200 {object} common.Response
// @Failure 403 {object} common.ProblemDetails
// @Router /allocations [get]
// @Security Bearer
func ListAllocations(ledgerSvc *ledgersvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := common.Principal(c)
		if err != nil {
			return err
		}
		filter := dto.AllocationFilter{Limit: c.QueryInt("limit", dto.MaxTransactionRows)}
		to, err := common.ParseUUIDQuery(c, "to_branch_id")
		if err != nil {
			return err
		}
		if to != uuid.Nil {
			filter.ToBranchID = &to
		}
		list, err := ledgerSvc.ListAllocations(c.UserContext(), p, filter)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to list allocations", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Allocations fetched", list)
	}
}

// AllocateFunds moves funds from the main branch to a sub branch.
// @Summary Allocate funds
// @Description Records the allocation with an expenditure on the main branch and an income on the receiving branch, atomically.
// @Tags allocations
// @Accept json
// @Produce json
// @Param Idempotency-Key header string false "Replay protection key (UUID)"
// @Param request body AllocateRequest true "Allocation details"
// @Success 201 {object} common.Response
// @Failure 400 {object} common.ProblemDetails
// @Failure 403 {object} common.ProblemDetails
// @Failure 404 {object} common.ProblemDetails
// @Failure 422 {object} common.ProblemDetails
// @Router /allocations [post]
// @Security Bearer
func AllocateFunds(ledgerSvc *ledgersvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := common.Principal(c)
		if err != nil {
			return err
		}
		input, err := common.BindAndValidate[AllocateRequest](c)
		if input == nil {
			return err
		}
		alloc, err := ledgerSvc.AllocateFunds(c.UserContext(), p, ledgersvc.AllocateInput{
			ToBranchID:  uuid.MustParse(input.ToBranchID),
			Amount:      input.Amount,
			Description: input.Description,
		})
		if err != nil {
			log.Errorf("Failed to allocate funds: %v", err)
			return common.ProblemDetailsJSON(c, "Failed to allocate funds", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusCreated, "Funds allocated", alloc)
	}
}
