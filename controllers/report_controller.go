package controllers

import (
	"strconv"
	"time"

	"cautela-backend/models"
	"cautela-backend/services"
	"cautela-backend/utils"

	"github.com/gofiber/fiber/v2"
)

// ReportController expõe as projeções de leitura para painéis e
// relatórios. Nenhum endpoint aqui altera estado.
type ReportController struct {
	Query *services.QueryService
}

// NewReportController cria um novo ReportController
func NewReportController(query *services.QueryService) *ReportController {
	return &ReportController{Query: query}
}

// InFieldResponse estrutura de resposta com o material em campo
type InFieldResponse struct {
	Success  bool             `json:"success"`
	Message  string           `json:"message"`
	Cautelas []models.Cautela `json:"cautelas,omitempty"`
}

// ConsumptionResponse estrutura de resposta do relatório de consumo
type ConsumptionResponse struct {
	Success bool                      `json:"success"`
	Message string                    `json:"message"`
	GroupBy string                    `json:"group_by,omitempty"`
	From    time.Time                 `json:"from,omitempty"`
	To      time.Time                 `json:"to,omitempty"`
	Rows    []services.ConsumptionRow `json:"rows,omitempty"`
}

// TopRequestersResponse estrutura de resposta do ranking de solicitantes
type TopRequestersResponse struct {
	Success bool                    `json:"success"`
	Message string                  `json:"message"`
	Rows    []services.RequesterRow `json:"rows,omitempty"`
}

// InField lista o material atualmente fora do depósito
func (rc *ReportController) InField(c *fiber.Ctx) error {
	if _, ok := actorFromLocals(c); !ok {
		return c.Status(401).JSON(InFieldResponse{Success: false, Message: "Acesso não autorizado"})
	}

	cautelas, err := rc.Query.InField()
	if err != nil {
		return c.Status(statusForError(err)).JSON(InFieldResponse{Success: false, Message: err.Error()})
	}

	return c.JSON(InFieldResponse{
		Success:  true,
		Message:  "Material em campo",
		Cautelas: cautelas,
	})
}

// Consumption agrega o consumo na janela informada, agrupado por
// categoria de material ou por setor do solicitante (somente fiel)
func (rc *ReportController) Consumption(c *fiber.Ctx) error {
	actor, ok := actorFromLocals(c)
	if !ok {
		return c.Status(401).JSON(ConsumptionResponse{Success: false, Message: "Acesso não autorizado"})
	}
	if !utils.CanPerform(actor.Role, utils.ActionManageStock) {
		return c.Status(403).JSON(ConsumptionResponse{Success: false, Message: "Relatório restrito ao fiel do material"})
	}

	from, to := parseWindow(c)

	groupBy := c.Query("group_by", "category")
	var (
		rows []services.ConsumptionRow
		err  error
	)
	switch groupBy {
	case "category":
		rows, err = rc.Query.ConsumptionByCategory(from, to)
	case "sector":
		rows, err = rc.Query.ConsumptionBySector(from, to)
	default:
		return c.Status(400).JSON(ConsumptionResponse{Success: false, Message: "group_by deve ser 'category' ou 'sector'"})
	}
	if err != nil {
		return c.Status(statusForError(err)).JSON(ConsumptionResponse{Success: false, Message: err.Error()})
	}

	return c.JSON(ConsumptionResponse{
		Success: true,
		Message: "Consumo agregado",
		GroupBy: groupBy,
		From:    from,
		To:      to,
		Rows:    rows,
	})
}

// TopRequesters retorna o ranking de solicitantes na janela (somente fiel)
func (rc *ReportController) TopRequesters(c *fiber.Ctx) error {
	actor, ok := actorFromLocals(c)
	if !ok {
		return c.Status(401).JSON(TopRequestersResponse{Success: false, Message: "Acesso não autorizado"})
	}
	if !utils.CanPerform(actor.Role, utils.ActionManageStock) {
		return c.Status(403).JSON(TopRequestersResponse{Success: false, Message: "Relatório restrito ao fiel do material"})
	}

	from, to := parseWindow(c)
	limit, _ := strconv.Atoi(c.Query("limit", "10"))

	rows, err := rc.Query.TopRequesters(from, to, limit)
	if err != nil {
		return c.Status(statusForError(err)).JSON(TopRequestersResponse{Success: false, Message: err.Error()})
	}

	return c.JSON(TopRequestersResponse{
		Success: true,
		Message: "Ranking de solicitantes",
		Rows:    rows,
	})
}

// parseWindow interpreta a janela de tempo da query; o padrão são
// os últimos 30 dias
func parseWindow(c *fiber.Ctx) (time.Time, time.Time) {
	to := time.Now()
	from := to.AddDate(0, 0, -30)

	if v, err := time.Parse(time.RFC3339, c.Query("from")); err == nil {
		from = v
	}
	if v, err := time.Parse(time.RFC3339, c.Query("to")); err == nil {
		to = v
	}
	return from, to
}
