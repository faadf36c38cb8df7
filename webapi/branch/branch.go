package branch

import (
	"github.com/amirasaad/branchledger/pkg/domain/branch"
	"github.com/amirasaad/branchledger/pkg/dto"
	branchsvc "github.com/amirasaad/branchledger/pkg/service/branch"
	ledgersvc "github.com/amirasaad/branchledger/pkg/service/ledger"
	"github.com/amirasaad/branchledger/webapi/common"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
)

// Routes registers the branch endpoints.
//
// Routes:
//   - GET    /branches                     : List branches.
//   - POST   /branches                     : Create a branch.
//   - GET    /branches/:id                 : Get a branch.
//   - GET    /branches/:id/balance         : Current balance of a branch.
//   - PUT    /branches/:id/admins          : Replace the admins of a branch.
//   - GET    /branches/:id/delete-summary  : What deleting a branch removes.
//   - DELETE /branches/:id                 : Delete a branch and its records.
func Routes(
	app *fiber.App,
	branchSvc *branchsvc.Service,
	ledgerSvc *ledgersvc.Service,
	protected fiber.Handler,
) {
	app.Get("/branches", protected, ListBranches(branchSvc))
	app.Post("/branches", protected, CreateBranch(branchSvc))
	app.Get("/branches/:id", protected, GetBranch(branchSvc))
	app.Get("/branches/:id/balance", protected, GetBalance(ledgerSvc))
	app.Put("/branches/:id/admins", protected, AssignAdmins(branchSvc))
	app.Get("/branches/:id/delete-summary", protected, DeleteSummary(branchSvc))
	app.Delete("/branches/:id", protected, DeleteBranch(branchSvc))
}

// ListBranches returns every branch, newest first.
// @Summary List branches
// @Tags branches
// @Produce json
// @Param active query bool false "Only active branches"
// @Param type query string false "Branch type (main or sub)"
// @Success 200 {object} common.Response
// @Failure 401 {object} common.ProblemDetails
// @Failure 403 {object} common.ProblemDetails
// @Router /branches [get]
// @Security Bearer
func ListBranches(branchSvc *branchsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := common.Principal(c)
		if err != nil {
			return err
		}
		filter := dto.BranchFilter{
			ActiveOnly: c.QueryBool("active"),
			Type:       branch.Type(c.Query("type")),
		}
		branches, err := branchSvc.List(c.UserContext(), p, filter)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to list branches", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Branches fetched", branches)
	}
}

// CreateBranch adds a branch.
// @Summary Create a branch
// @Tags branches
// @Accept json
// @Produce json
// @Param request body CreateBranchRequest true "Branch details"
// @Success 201 {object} common.Response
// @Failure 400 {object} common.ProblemDetails
// @Failure 403 {object} common.ProblemDetails
// @Failure 409 {object} common.ProblemDetails
// @Router /branches [post]
// @Security Bearer
func CreateBranch(branchSvc *branchsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := common.Principal(c)
		if err != nil {
			return err
		}
		input, err := common.BindAndValidate[CreateBranchRequest](c)
		if input == nil {
			return err
		}
		typ := branch.TypeSub
		if input.BranchType != "" {
			typ = branch.Type(input.BranchType)
		}
		b, err := branchSvc.Create(c.UserContext(), p, branch.Params{
			Name:           input.Name,
			Location:       input.Location,
			State:          input.State,
			Address:        input.Address,
			Type:           typ,
			AllocatedFunds: input.AllocatedFunds,
		})
		if err != nil {
			log.Errorf("Failed to create branch: %v", err)
			return common.ProblemDetailsJSON(c, "Failed to create branch", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusCreated, "Branch created", b)
	}
}

// GetBranch returns one branch.
// @Summary Get a branch
// @Tags branches
// @Produce json
// @Param id path string true "Branch ID"
// @Success 200 {object} common.Response
// @Failure 403 {object} common.ProblemDetails
// @Failure 404 {object} common.ProblemDetails
// @Router /branches/{id} [get]
// @Security Bearer
func GetBranch(branchSvc *branchsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := common.Principal(c)
		if err != nil {
			return err
		}
		id, err := common.ParseID(c, "id")
		if err != nil {
			return err
		}
		b, err := branchSvc.Get(c.UserContext(), p, id)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to get branch", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Branch fetched", b)
	}
}

// GetBalance returns income minus expenditure of a branch.
// @Summary Branch balance
// @Tags branches
// @Produce json
// @Param id path string true "Branch ID"
// @Success 200 {object} common.Response
// @Failure 403 {object} common.ProblemDetails
// @Failure 404 {object} common.ProblemDetails
// @Router /branches/{id}/balance [get]
// @Security Bearer
func GetBalance(ledgerSvc *ledgersvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := common.Principal(c)
		if err != nil {
			return err
		}
		id, err := common.ParseID(c, "id")
		if err != nil {
			return err
		}
		balance, err := ledgerSvc.GetBalance(c.UserContext(), p, id)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to get balance", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Balance fetched", fiber.Map{
			"branch_id": id,
			"balance":   balance,
		})
	}
}

// AssignAdmins replaces the admins of a branch.
// @Summary Assign branch admins
// @Tags branches
// @Accept json
// @Produce json
// @Param id path string true "Branch ID"
// @Param request body AssignAdminsRequest true "Admin IDs"
// @Success 200 {object} common.Response
// @Failure 400 {object} common.ProblemDetails
// @Failure 403 {object} common.ProblemDetails
// @Failure 404 {object} common.ProblemDetails
// @Router /branches/{id}/admins [put]
// @Security Bearer
func AssignAdmins(branchSvc *branchsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := common.Principal(c)
		if err != nil {
			return err
		}
		id, err := common.ParseID(c, "id")
		if err != nil {
			return err
		}
		input, err := common.BindAndValidate[AssignAdminsRequest](c)
		if input == nil {
			return err
		}
		ids := make([]uuid.UUID, 0, len(input.AdminIDs))
		for _, raw := range input.AdminIDs {
			ids = append(ids, uuid.MustParse(raw))
		}
		if err := branchSvc.AssignAdmins(c.UserContext(), p, id, ids); err != nil {
			return common.ProblemDetailsJSON(c, "Failed to assign admins", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Admins assigned", fiber.Map{"admin_ids": ids})
	}
}

// DeleteSummary reports what deleting a branch removes.
// @Summary Branch delete summary
// @Tags branches
// @Produce json
// @Param id path string true "Branch ID"
// @Success 200 {object} common.Response
// @Failure 403 {object} common.ProblemDetails
// @Failure 404 {object} common.ProblemDetails
// @Router /branches/{id}/delete-summary [get]
// @Security Bearer
func DeleteSummary(branchSvc *branchsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := common.Principal(c)
		if err != nil {
			return err
		}
		id, err := common.ParseID(c, "id")
		if err != nil {
			return err
		}
		summary, err := branchSvc.DeleteSummary(c.UserContext(), p, id)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to summarise branch", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Delete summary", summary)
	}
}

// DeleteBranch removes a sub branch with its transactions and allocations.
// @Summary Delete a branch
// @Tags branches
// @Produce json
// @Param id path string true "Branch ID"
// @Success 200 {object} common.Response
// @Failure 403 {object} common.ProblemDetails
// @Failure 404 {object} common.ProblemDetails
// @Router /branches/{id} [delete]
// @Security Bearer
func DeleteBranch(branchSvc *branchsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := common.Principal(c)
		if err != nil {
			return err
		}
		id, err := common.ParseID(c, "id")
		if err != nil {
			return err
		}
		if err := branchSvc.Delete(c.UserContext(), p, id); err != nil {
			log.Errorf("Failed to delete branch %s: %v", id, err)
			return common.ProblemDetailsJSON(c, "Failed to delete branch", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Branch deleted", nil)
	}
}
