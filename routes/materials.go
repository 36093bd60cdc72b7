package routes

import (
	"cautela-backend/controllers"
	"cautela-backend/utils"

	"github.com/gofiber/fiber/v2"
)

// SetupMaterialRoutes configura as rotas do catálogo e do estoque
func SetupMaterialRoutes(app *fiber.App, materialController *controllers.MaterialController) {
	materials := app.Group("/materiais", utils.AuthMiddleware)

	// POST /materiais - cadastrar material (somente fiel)
	materials.Post("/", materialController.CreateMaterial)

	// GET /materiais - listar disponibilidade do catálogo
	materials.Get("/", materialController.ListMaterials)

	// GET /materiais/:id/status - fotografia contábil do material
	materials.Get("/:id/status", materialController.GetMaterialStatus)

	// POST /materiais/:id/receipts - registrar entrada (somente fiel)
	materials.Post("/:id/receipts", materialController.RegisterReceipt)

	// POST /materiais/:id/write-offs - registrar baixa (somente fiel)
	materials.Post("/:id/write-offs", materialController.WriteOff)
}
