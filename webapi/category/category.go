package category

import (
	"github.com/amirasaad/branchledger/pkg/domain/category"
	categorysvc "github.com/amirasaad/branchledger/pkg/service/category"
	"github.com/amirasaad/branchledger/webapi/common"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Routes registers the category endpoints.
func Routes(app *fiber.App, categorySvc *categorysvc.Service, protected fiber.Handler) {
	app.Get("/categories", protected, ListCategories(categorySvc))
	app.Post("/categories/income", protected, CreateCategory(categorySvc, category.KindIncome))
	app.Post("/categories/expenditure", protected, CreateCategory(categorySvc, category.KindExpenditure))
}

// ListCategories returns the active categories of a kind that the caller may use.
// @Summary List categories
// @Description Branch admins only see categories visible to their branch.
// @Tags categories
// @Produce json
// @Param kind query string true "income or expenditure"
// @Success 200 {object} common.Response
// @Failure 400 {object} common.ProblemDetails
// @Failure 401 {object} common.ProblemDetails
// @Router /categories [get]
// @Security Bearer
func ListCategories(categorySvc *categorysvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := common.Principal(c)
		if err != nil {
			return err
		}
		list, err := categorySvc.List(c.UserContext(), p, category.Kind(c.Query("kind")))
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to list categories", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Categories fetched", list)
	}
}

// CreateCategory returns a handler creating categories of kind.
// @Summary Create a category
// @Tags categories
// @Accept json
// @Produce json
// @Param request body CreateCategoryRequest true "Category details"
// @Success 201 {object} common.Response
// @Failure 400 {object} common.ProblemDetails
// @Failure 403 {object} common.ProblemDetails
// @Failure 404 {object} common.ProblemDetails
// @Router /categories/income [post]
// @Router /categories/expenditure [post]
// @Security Bearer
func CreateCategory(categorySvc *categorysvc.Service, kind category.Kind) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := common.Principal(c)
		if err != nil {
			return err
		}
		input, err := common.BindAndValidate[CreateCategoryRequest](c)
		if input == nil {
			return err
		}
		params := category.Params{
			Kind:        kind,
			Name:        input.Name,
			Description: input.Description,
			Scope:       category.Scope(input.BranchType),
		}
		if input.BranchID != "" {
			id := uuid.MustParse(input.BranchID)
			params.BranchID = &id
		}
		created, err := categorySvc.Create(c.UserContext(), p, params)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to create category", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusCreated, "Category created", created)
	}
}
