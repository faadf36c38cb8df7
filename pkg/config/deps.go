package config

import (
	"log/slog"

	"github.com/amirasaad/branchledger/pkg/repository"
	"github.com/gofiber/fiber/v2"
)

// Deps holds the infrastructure dependencies used to build services and the HTTP app.
type Deps struct {
	Uow     repository.UnitOfWork
	Storage fiber.Storage
	Logger  *slog.Logger
	Config  *App
}
