package routes

import (
	"cautela-backend/controllers"
	"cautela-backend/utils"

	"github.com/gofiber/fiber/v2"
)

// SetupReportRoutes configura as rotas de relatórios e painéis
func SetupReportRoutes(app *fiber.App, reportController *controllers.ReportController) {
	reports := app.Group("/reports", utils.AuthMiddleware)

	// GET /reports/in-field - material atualmente fora do depósito
	reports.Get("/in-field", reportController.InField)

	// GET /reports/consumption - consumo agregado por categoria ou setor (somente fiel)
	reports.Get("/consumption", reportController.Consumption)

	// GET /reports/top-requesters - ranking de solicitantes (somente fiel)
	reports.Get("/top-requesters", reportController.TopRequesters)
}
