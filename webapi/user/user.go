package user

import (
	usersvc "github.com/amirasaad/branchledger/pkg/service/user"
	"github.com/amirasaad/branchledger/webapi/common"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
)

// Routes registers the branch admin management endpoints.
func Routes(app *fiber.App, userSvc *usersvc.Service, protected fiber.Handler) {
	app.Get("/users", protected, ListUsers(userSvc))
	app.Post("/users", protected, CreateUser(userSvc))
	app.Get("/users/:id", protected, GetUser(userSvc))
	app.Patch("/users/:id/status", protected, ToggleStatus(userSvc))
	app.Put("/users/:id/password", protected, ResetPassword(userSvc))
	app.Delete("/users/:id", protected, DeleteUser(userSvc))
}

// ListUsers returns every branch admin, newest first.
// @Summary List branch admins
// @Tags users
// @Produce json
// @Success 200 {object} common.Response
// @Failure 403 {object} common.ProblemDetails
// @Router /users [get]
// @Security Bearer
func ListUsers(userSvc *usersvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := common.Principal(c)
		if err != nil {
			return err
		}
		users, err := userSvc.ListBranchAdmins(c.UserContext(), p)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to list users", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Users fetched", users)
	}
}

// CreateUser creates a branch admin.
// @Summary Create a branch admin
// @Tags users
// @Accept json
// @Produce json
// @Param request body NewUser true "User details"
// @Success 201 {object} common.Response
// @Failure 400 {object} common.ProblemDetails
// @Failure 403 {object} common.ProblemDetails
// @Failure 409 {object} common.ProblemDetails
// @Router /users [post]
// @Security Bearer
func CreateUser(userSvc *usersvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := common.Principal(c)
		if err != nil {
			return err
		}
		input, err := common.BindAndValidate[NewUser](c)
		if input == nil {
			return err
		}
		in := usersvc.CreateInput{
			Username:        input.Username,
			Email:           input.Email,
			FirstName:       input.FirstName,
			LastName:        input.LastName,
			Phone:           input.Phone,
			Password:        input.Password,
			ConfirmPassword: input.ConfirmPassword,
		}
		if input.BranchID != "" {
			id := uuid.MustParse(input.BranchID)
			in.BranchID = &id
		}
		u, err := userSvc.CreateBranchAdmin(c.UserContext(), p, in)
		if err != nil {
			log.Errorf("Failed to create user: %v", err)
			return common.ProblemDetailsJSON(c, "Failed to create user", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusCreated, "User created", u)
	}
}

// GetUser returns one account. Branch admins may only read themselves.
// @Summary Get a user
// @Tags users
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} common.Response
// @Failure 403 {object} common.ProblemDetails
// @Failure 404 {object} common.ProblemDetails
// @Router /users/{id} [get]
// @Security Bearer
func GetUser(userSvc *usersvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := common.Principal(c)
		if err != nil {
			return err
		}
		id, err := common.ParseID(c, "id")
		if err != nil {
			return err
		}
		u, err := userSvc.Get(c.UserContext(), p, id)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to get user", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "User fetched", u)
	}
}

// ToggleStatus activates or deactivates a branch admin.
// @Summary Toggle user status
// @Tags users
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} common.Response
// @Failure 403 {object} common.ProblemDetails
// @Failure 404 {object} common.ProblemDetails
// @Router /users/{id}/status [patch]
// @Security Bearer
func ToggleStatus(userSvc *usersvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := common.Principal(c)
		if err != nil {
			return err
		}
		id, err := common.ParseID(c, "id")
		if err != nil {
			return err
		}
		u, err := userSvc.ToggleStatus(c.UserContext(), p, id)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to change user status", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "User status changed", u)
	}
}

// ResetPassword sets a new password on a branch admin.
// @Summary Reset a password
// @Tags users
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Param request body PasswordInput true "New password"
// @Success 200 {object} common.Response
// @Failure 400 {object} common.ProblemDetails
// @Failure 403 {object} common.ProblemDetails
// @Failure 404 {object} common.ProblemDetails
// @Router /users/{id}/password [put]
// @Security Bearer
func ResetPassword(userSvc *usersvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := common.Principal(c)
		if err != nil {
			return err
		}
		id, err := common.ParseID(c, "id")
		if err != nil {
			return err
		}
		input, err := common.BindAndValidate[PasswordInput](c)
		if input == nil {
			return err
		}
		if err := userSvc.ResetPassword(c.UserContext(), p, id, input.Password, input.ConfirmPassword); err != nil {
			return common.ProblemDetailsJSON(c, "Failed to reset password", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Password reset", nil)
	}
}

// DeleteUser removes a branch admin. Their records are attributed to the caller.
// @Summary Delete a branch admin
// @Tags users
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} common.Response
// @Failure 403 {object} common.ProblemDetails
// @Failure 404 {object} common.ProblemDetails
// @Router /users/{id} [delete]
// @Security Bearer
func DeleteUser(userSvc *usersvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := common.Principal(c)
		if err != nil {
			return err
		}
		id, err := common.ParseID(c, "id")
		if err != nil {
			return err
		}
		if err := userSvc.Delete(c.UserContext(), p, id); err != nil {
			log.Errorf("Failed to delete user %s: %v", id, err)
			return common.ProblemDetailsJSON(c, "Failed to delete user", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "User deleted", nil)
	}
}
