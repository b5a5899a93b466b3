package handler

import (
	"github.com/gofiber/fiber/v3"

	"github.com/GoPowerDNS-Admin/GoRoles-Admin/internal/config"
	"github.com/GoPowerDNS-Admin/GoRoles-Admin/internal/hierarchy"
	"github.com/GoPowerDNS-Admin/GoRoles-Admin/internal/rolequery"
	"github.com/GoPowerDNS-Admin/GoRoles-Admin/internal/web/navigation"
)

// Deps are the collaborators handlers are built from.
type Deps struct {
	Engine     *hierarchy.Engine
	Query      *rolequery.Service
	Navigation *navigation.Registry
}

// Service is the interface for a web handler service.
type Service interface {
	Init(app *fiber.App, cfg *config.Config, deps Deps) error
}
