// Package webapi provides the HTTP API of the branch ledger. It is organized
// into sub-packages per resource:
// - auth: login
// - branch: branches, balances and admin assignment
// - category: income and expenditure categories
// - ledger: transactions and fund allocations
// - user: branch admin management
// - report: dashboard, reports and spreadsheet export
package webapi

import (
	"errors"
	"strings"
	"time"

	"github.com/amirasaad/branchledger/pkg/app"
	"github.com/amirasaad/branchledger/pkg/middleware"
	authweb "github.com/amirasaad/branchledger/webapi/auth"
	branchweb "github.com/amirasaad/branchledger/webapi/branch"
	categoryweb "github.com/amirasaad/branchledger/webapi/category"
	"github.com/amirasaad/branchledger/webapi/common"
	ledgerweb "github.com/amirasaad/branchledger/webapi/ledger"
	reportweb "github.com/amirasaad/branchledger/webapi/report"
	userweb "github.com/amirasaad/branchledger/webapi/user"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/idempotency"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
)

// IdempotencyKeyHeader carries the replay protection key of write requests.
const IdempotencyKeyHeader = "Idempotency-Key"

// SetupApp Initialize Fiber with custom configuration
func SetupApp(a *app.App) *fiber.App {
	cfg := a.Config

	fiberApp := fiber.New(fiber.Config{
		ErrorHandler: common.ErrorHandler,
	})
	fiberApp.Get("/swagger/*", swagger.New(swagger.Config{
		TryItOutEnabled:      true,
		WithCredentials:      true,
		PersistAuthorization: true,
		OAuth2RedirectUrl:    "/auth/login",
	}))

	maxRequests, window := 100, time.Minute
	if cfg.RateLimit != nil {
		maxRequests, window = cfg.RateLimit.MaxRequests, cfg.RateLimit.Window
	}
	// Uses X-Forwarded-For header when behind a proxy
	// Falls back to X-Real-IP or direct IP if needed
	fiberApp.Use(limiter.New(limiter.Config{
		Max:        maxRequests,
		Expiration: window,
		KeyGenerator: func(c *fiber.Ctx) string {
			if forwardedFor := c.Get("X-Forwarded-For"); forwardedFor != "" {
				if commaIndex := strings.Index(forwardedFor, ","); commaIndex != -1 {
					return strings.TrimSpace(forwardedFor[:commaIndex])
				}
				return strings.TrimSpace(forwardedFor)
			}
			if realIP := c.Get("X-Real-IP"); realIP != "" {
				return realIP
			}
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return common.ProblemDetailsJSON(
				c,
				"Too Many Requests",
				errors.New("rate limit exceeded"),
				fiber.StatusTooManyRequests,
			)
		},
	}))
	fiberApp.Use(recover.New())
	fiberApp.Use(logger.New())

	// Health check endpoint
	fiberApp.Get("/", func(c *fiber.Ctx) error {
		return c.SendString("Branch ledger API is running! 🚀")
	})

	var jwtCfg = cfg.Auth
	protected := middleware.Protected(jwtCfg.Jwt, a.AuthService)

	idemCfg := idempotency.Config{
		KeyHeader: IdempotencyKeyHeader,
		Storage:   a.Deps.Storage,
	}
	if cfg.Idempotency != nil && cfg.Idempotency.Lifetime > 0 {
		idemCfg.Lifetime = cfg.Idempotency.Lifetime
	}
	idempotent := idempotency.New(idemCfg)

	authweb.Routes(fiberApp, a.AuthService)
	branchweb.Routes(fiberApp, a.BranchService, a.LedgerService, protected)
	categoryweb.Routes(fiberApp, a.CategoryService, protected)
	ledgerweb.Routes(fiberApp, a.LedgerService, protected, idempotent)
	userweb.Routes(fiberApp, a.UserService, protected)
	reportweb.Routes(fiberApp, a.ReportService, protected)
	return fiberApp
}
