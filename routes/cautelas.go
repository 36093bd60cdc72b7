package routes

import (
	"cautela-backend/controllers"
	"cautela-backend/utils"

	"github.com/gofiber/fiber/v2"
)

// SetupCautelaRoutes configura as rotas do ciclo de vida das cautelas
func SetupCautelaRoutes(app *fiber.App, cautelaController *controllers.CautelaController) {
	cautelas := app.Group("/cautelas", utils.AuthMiddleware)

	// POST /cautelas - solicitar cautelas em lote
	cautelas.Post("/", cautelaController.CreateBatch)

	// GET /cautelas - listar cautelas (militar vê só as próprias)
	cautelas.Get("/", cautelaController.ListCautelas)

	// GET /cautelas/:id/history - trilha de auditoria da cautela
	cautelas.Get("/:id/history", cautelaController.GetHistory)

	// POST /cautelas/:id/approve - aprovar (somente fiel)
	cautelas.Post("/:id/approve", cautelaController.Approve)

	// POST /cautelas/:id/deliver - confirmar entrega física (somente fiel)
	cautelas.Post("/:id/deliver", cautelaController.Deliver)

	// POST /cautelas/:id/return - iniciar devolução (solicitante ou fiel)
	cautelas.Post("/:id/return", cautelaController.InitiateReturn)

	// POST /cautelas/:id/confirm-return - conferir devolução (somente fiel)
	cautelas.Post("/:id/confirm-return", cautelaController.ConfirmReturn)

	// POST /cautelas/:id/reject - recusar/cancelar; loss=true baixa o material (somente fiel)
	cautelas.Post("/:id/reject", cautelaController.Reject)
}
