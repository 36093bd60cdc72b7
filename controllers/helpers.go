package controllers

import (
	"errors"

	"cautela-backend/services"

	"github.com/gofiber/fiber/v2"
)

// actorFromLocals monta a identidade do ator gravada pelo
// AuthMiddleware no contexto da requisição
func actorFromLocals(c *fiber.Ctx) (services.Actor, bool) {
	userID, ok := c.Locals("user_id").(uint)
	if !ok || userID == 0 {
		return services.Actor{}, false
	}
	role, _ := c.Locals("user_role").(string)
	sector, _ := c.Locals("user_sector").(string)
	return services.Actor{ID: userID, Role: role, Sector: sector}, true
}

// statusForError traduz a taxonomia de erros do núcleo para códigos HTTP
func statusForError(err error) int {
	switch {
	case errors.Is(err, services.ErrInvalidQuantity):
		return fiber.StatusBadRequest
	case errors.Is(err, services.ErrMaterialNotFound), errors.Is(err, services.ErrCautelaNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, services.ErrInsufficientStock), errors.Is(err, services.ErrInvalidTransition):
		return fiber.StatusConflict
	case errors.Is(err, services.ErrUnauthorized):
		return fiber.StatusForbidden
	case errors.Is(err, services.ErrStorageUnavailable):
		return fiber.StatusServiceUnavailable
	}
	return fiber.StatusInternalServerError
}
