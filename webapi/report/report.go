package report

import (
	"fmt"

	reportsvc "github.com/amirasaad/branchledger/pkg/service/report"
	"github.com/amirasaad/branchledger/webapi/common"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Routes registers the dashboard and report endpoints.
func Routes(app *fiber.App, reportSvc *reportsvc.Service, protected fiber.Handler) {
	app.Get("/dashboard", protected, Dashboard(reportSvc))
	app.Get("/reports", protected, GetReport(reportSvc))
	app.Get("/reports/export", protected, ExportReport(reportSvc))
}

// Dashboard returns the landing view of the caller.
// @Summary Dashboard
// @Tags reports
// @Produce json
// @Success 200 {object} common.Response
// @Failure 400 {object} common.ProblemDetails "Branch admin without a branch"
// @Failure 401 {object} common.ProblemDetails
// @Router /dashboard [get]
// @Security Bearer
func Dashboard(reportSvc *reportsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := common.Principal(c)
		if err != nil {
			return err
		}
		d, err := reportSvc.Dashboard(c.UserContext(), p)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to load dashboard", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Dashboard", d)
	}
}

func parseFilter(c *fiber.Ctx) (reportsvc.Filter, error) {
	var f reportsvc.Filter
	start, err := common.ParseDateQuery(c, "start_date")
	if err != nil {
		return f, err
	}
	if !start.IsZero() {
		f.StartDate = &start
	}
	end, err := common.ParseDateQuery(c, "end_date")
	if err != nil {
		return f, err
	}
	if !end.IsZero() {
		f.EndDate = &end
	}
	branchID, err := common.ParseUUIDQuery(c, "branch_id")
	if err != nil {
		return f, err
	}
	if branchID != uuid.Nil {
		f.BranchID = &branchID
	}
	return f, nil
}

// GetReport summarises the ledger over a period.
// @Summary Financial report
// @Tags reports
// @Produce json
// @Param start_date query string false "YYYY-MM-DD, defaults to the first of the month"
// @Param end_date query string false "YYYY-MM-DD, defaults to today"
// @Param branch_id query string false "Branch ID (super admin only)"
// @Success 200 {object} common.Response
// @Failure 400 {object} common.ProblemDetails
// @Router /reports [get]
// @Security Bearer
func GetReport(reportSvc *reportsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := common.Principal(c)
		if err != nil {
			return err
		}
		f, err := parseFilter(c)
		if err != nil {
			return err
		}
		r, err := reportSvc.Report(c.UserContext(), p, f)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to build report", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Report", r)
	}
}

// ExportReport streams the report and its transactions as an XLSX workbook.
// @Summary Export report
// @Tags reports
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param start_date query string false "YYYY-MM-DD"
// @Param end_date query string false "YYYY-MM-DD"
// @Param branch_id query string false "Branch ID (super admin only)"
// @Success 200 {file} file
// @Failure 400 {object} common.ProblemDetails
// @Router /reports/export [get]
// @Security Bearer
func ExportReport(reportSvc *reportsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := common.Principal(c)
		if err != nil {
			return err
		}
		f, err := parseFilter(c)
		if err != nil {
			return err
		}
		data, err := reportSvc.Export(c.UserContext(), p, f)
		if err != nil {
			log.Errorf("Failed to export report: %v", err)
			return common.ProblemDetailsJSON(c, "Failed to export report", err)
		}
		c.Attachment(fmt.Sprintf("financial-report-%s.xlsx", c.Query("end_date", "current")))
		c.Set(fiber.HeaderContentType, xlsxContentType)
		return c.Send(data)
	}
}
