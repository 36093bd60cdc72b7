package controllers

import (
	"strconv"
	"time"

	"cautela-backend/models"
	"cautela-backend/services"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// CautelaController expõe o ciclo de vida das cautelas
type CautelaController struct {
	DB       *gorm.DB
	Workflow *services.WorkflowService
	Audit    *services.AuditService
	Query    *services.QueryService
}

// NewCautelaController cria um novo CautelaController
func NewCautelaController(db *gorm.DB, workflow *services.WorkflowService, audit *services.AuditService, query *services.QueryService) *CautelaController {
	return &CautelaController{DB: db, Workflow: workflow, Audit: audit, Query: query}
}

// CreateCautelaRequest estrutura da solicitação em lote
type CreateCautelaRequest struct {
	Items []services.BatchItem `json:"items"`
	Note  string               `json:"note"`
}

// CreateCautelaResponse estrutura de resposta da solicitação em lote
type CreateCautelaResponse struct {
	Success bool                   `json:"success"`
	Message string                 `json:"message"`
	BatchID string                 `json:"batch_id,omitempty"`
	Results []services.BatchResult `json:"results,omitempty"`
}

// TransitionRequest estrutura de requisição de transição
type TransitionRequest struct {
	Loss bool   `json:"loss"`
	Note string `json:"note"`
}

// CautelaResponse estrutura de resposta genérica de cautela
type CautelaResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// CautelaListResponse estrutura de resposta com lista de cautelas
type CautelaListResponse struct {
	Success  bool             `json:"success"`
	Message  string           `json:"message"`
	Cautelas []models.Cautela `json:"cautelas,omitempty"`
}

// HistoryResponse estrutura de resposta com a trilha de auditoria
type HistoryResponse struct {
	Success bool                `json:"success"`
	Message string              `json:"message"`
	Events  []models.AuditEvent `json:"events,omitempty"`
}

// CreateBatch abre cautelas para os itens solicitados. Cada item tem
// resultado próprio: a falta de estoque de um não desfaz os demais.
func (cc *CautelaController) CreateBatch(c *fiber.Ctx) error {
	actor, ok := actorFromLocals(c)
	if !ok {
		return c.Status(401).JSON(CreateCautelaResponse{Success: false, Message: "Acesso não autorizado"})
	}

	var req CreateCautelaRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(CreateCautelaResponse{Success: false, Message: "Corpo da requisição inválido"})
	}
	if len(req.Items) == 0 {
		return c.Status(400).JSON(CreateCautelaResponse{Success: false, Message: "Informe ao menos um item"})
	}

	batchID, results := cc.Workflow.CreateBatch(actor.ID, req.Items, req.Note)

	return c.Status(201).JSON(CreateCautelaResponse{
		Success: true,
		Message: "Solicitação processada",
		BatchID: batchID,
		Results: results,
	})
}

// ListCautelas lista cautelas conforme o filtro. Militar comum vê
// apenas as próprias cautelas; o fiel vê todas.
func (cc *CautelaController) ListCautelas(c *fiber.Ctx) error {
	actor, ok := actorFromLocals(c)
	if !ok {
		return c.Status(401).JSON(CautelaListResponse{Success: false, Message: "Acesso não autorizado"})
	}

	filter := services.CautelaFilter{
		Status: c.Query("status"),
	}
	if v, err := strconv.ParseUint(c.Query("material_id"), 10, 32); err == nil {
		filter.MaterialID = uint(v)
	}
	if v, err := strconv.ParseUint(c.Query("requester_id"), 10, 32); err == nil {
		filter.RequesterID = uint(v)
	}
	if from, err := time.Parse(time.RFC3339, c.Query("from")); err == nil {
		filter.From = &from
	}
	if to, err := time.Parse(time.RFC3339, c.Query("to")); err == nil {
		filter.To = &to
	}

	if actor.Role != models.RoleFiel {
		filter.RequesterID = actor.ID
	}

	cautelas, err := cc.Query.ListCautelas(filter)
	if err != nil {
		return c.Status(statusForError(err)).JSON(CautelaListResponse{Success: false, Message: err.Error()})
	}

	return c.JSON(CautelaListResponse{
		Success:  true,
		Message:  "Cautelas listadas com sucesso",
		Cautelas: cautelas,
	})
}

// GetHistory retorna a trilha de auditoria de uma cautela
func (cc *CautelaController) GetHistory(c *fiber.Ctx) error {
	if _, ok := actorFromLocals(c); !ok {
		return c.Status(401).JSON(HistoryResponse{Success: false, Message: "Acesso não autorizado"})
	}

	cautelaID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(400).JSON(HistoryResponse{Success: false, Message: "ID de cautela inválido"})
	}

	var cautela models.Cautela
	if err := cc.DB.First(&cautela, cautelaID).Error; err != nil {
		return c.Status(404).JSON(HistoryResponse{Success: false, Message: "Cautela não encontrada"})
	}

	events, err := cc.Audit.History(uint(cautelaID))
	if err != nil {
		return c.Status(statusForError(err)).JSON(HistoryResponse{Success: false, Message: err.Error()})
	}

	return c.JSON(HistoryResponse{
		Success: true,
		Message: "Histórico da cautela",
		Events:  events,
	})
}

// Approve aprova uma cautela pendente (somente fiel)
func (cc *CautelaController) Approve(c *fiber.Ctx) error {
	return cc.transition(c, models.StatusApproved, "Cautela aprovada")
}

// Deliver confirma a entrega física do material (somente fiel)
func (cc *CautelaController) Deliver(c *fiber.Ctx) error {
	return cc.transition(c, models.StatusInUse, "Entrega confirmada")
}

// InitiateReturn inicia a devolução do material
func (cc *CautelaController) InitiateReturn(c *fiber.Ctx) error {
	return cc.transition(c, models.StatusPendingReturn, "Devolução iniciada")
}

// ConfirmReturn confere a devolução íntegra do material (somente fiel)
func (cc *CautelaController) ConfirmReturn(c *fiber.Ctx) error {
	return cc.transition(c, models.StatusCompleted, "Devolução conferida, cautela encerrada")
}

// Reject recusa ou cancela a cautela; com loss=true a quantidade é
// baixada definitivamente do estoque (somente fiel)
func (cc *CautelaController) Reject(c *fiber.Ctx) error {
	return cc.transition(c, models.StatusRejected, "Cautela recusada")
}

func (cc *CautelaController) transition(c *fiber.Ctx, target, okMessage string) error {
	actor, ok := actorFromLocals(c)
	if !ok {
		return c.Status(401).JSON(CautelaResponse{Success: false, Message: "Acesso não autorizado"})
	}

	cautelaID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(400).JSON(CautelaResponse{Success: false, Message: "ID de cautela inválido"})
	}

	// Corpo é opcional nas transições sem parâmetros
	var req TransitionRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return c.Status(400).JSON(CautelaResponse{Success: false, Message: "Corpo da requisição inválido"})
		}
	}

	opts := services.TransitionOptions{Loss: req.Loss, Note: req.Note}
	if err := cc.Workflow.Transition(uint(cautelaID), target, actor, opts); err != nil {
		return c.Status(statusForError(err)).JSON(CautelaResponse{Success: false, Message: err.Error()})
	}

	return c.JSON(CautelaResponse{Success: true, Message: okMessage})
}
