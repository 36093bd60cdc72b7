package controllers

import (
	"strconv"

	"cautela-backend/models"
	"cautela-backend/services"
	"cautela-backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// MaterialController expõe o catálogo e o livro-razão do estoque
type MaterialController struct {
	DB     *gorm.DB
	Ledger *services.LedgerService
	Query  *services.QueryService
}

// NewMaterialController cria um novo MaterialController
func NewMaterialController(db *gorm.DB, ledger *services.LedgerService, query *services.QueryService) *MaterialController {
	return &MaterialController{DB: db, Ledger: ledger, Query: query}
}

// CreateMaterialRequest estrutura da requisição de cadastro de material
type CreateMaterialRequest struct {
	Name     string `json:"name"`
	Category string `json:"category"`
	Location string `json:"location"`
	MinStock int    `json:"min_stock"`
}

// QuantityRequest estrutura de requisição com quantidade (entrada/baixa)
type QuantityRequest struct {
	Quantity int    `json:"quantity"`
	Note     string `json:"note"`
}

// MaterialResponse estrutura de resposta com um material
type MaterialResponse struct {
	Success  bool                 `json:"success"`
	Message  string               `json:"message"`
	Material *models.MaterialItem `json:"material,omitempty"`
}

// MaterialStatusResponse estrutura de resposta com a fotografia contábil
type MaterialStatusResponse struct {
	Success bool                 `json:"success"`
	Message string               `json:"message"`
	Status  *services.ItemStatus `json:"status,omitempty"`
}

// MaterialListResponse estrutura de resposta com a disponibilidade do catálogo
type MaterialListResponse struct {
	Success   bool                  `json:"success"`
	Message   string                `json:"message"`
	Materials []services.ItemStatus `json:"materials,omitempty"`
}

// CreateMaterial cadastra um novo material no catálogo (somente fiel)
func (mc *MaterialController) CreateMaterial(c *fiber.Ctx) error {
	actor, ok := actorFromLocals(c)
	if !ok {
		return c.Status(401).JSON(MaterialResponse{Success: false, Message: "Acesso não autorizado"})
	}
	if !utils.CanPerform(actor.Role, utils.ActionManageStock) {
		return c.Status(403).JSON(MaterialResponse{Success: false, Message: "Somente o fiel do material pode gerenciar o catálogo"})
	}

	var req CreateMaterialRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(MaterialResponse{Success: false, Message: "Corpo da requisição inválido"})
	}
	if req.Name == "" {
		return c.Status(400).JSON(MaterialResponse{Success: false, Message: "Nome do material é obrigatório"})
	}

	material := models.MaterialItem{
		Name:     req.Name,
		Category: req.Category,
		Location: req.Location,
		MinStock: req.MinStock,
		IsActive: true,
	}
	if err := mc.DB.Create(&material).Error; err != nil {
		return c.Status(500).JSON(MaterialResponse{Success: false, Message: "Erro ao cadastrar material"})
	}

	return c.Status(201).JSON(MaterialResponse{
		Success:  true,
		Message:  "Material cadastrado com sucesso",
		Material: &material,
	})
}

// ListMaterials lista a disponibilidade de todos os materiais ativos
func (mc *MaterialController) ListMaterials(c *fiber.Ctx) error {
	statuses, err := mc.Query.ItemsAvailability()
	if err != nil {
		return c.Status(statusForError(err)).JSON(MaterialListResponse{Success: false, Message: err.Error()})
	}
	return c.JSON(MaterialListResponse{
		Success:   true,
		Message:   "Materiais listados com sucesso",
		Materials: statuses,
	})
}

// GetMaterialStatus retorna a fotografia contábil de um material
func (mc *MaterialController) GetMaterialStatus(c *fiber.Ctx) error {
	materialID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(400).JSON(MaterialStatusResponse{Success: false, Message: "ID de material inválido"})
	}

	status, err := mc.Ledger.Status(uint(materialID))
	if err != nil {
		return c.Status(statusForError(err)).JSON(MaterialStatusResponse{Success: false, Message: err.Error()})
	}

	return c.JSON(MaterialStatusResponse{
		Success: true,
		Message: "Status do material",
		Status:  status,
	})
}

// RegisterReceipt registra a entrada de unidades no estoque (somente fiel)
func (mc *MaterialController) RegisterReceipt(c *fiber.Ctx) error {
	return mc.ledgerMutation(c, mc.Ledger.RegisterReceipt, "Entrada registrada com sucesso")
}

// WriteOff dá baixa definitiva de unidades livres do estoque (somente fiel)
func (mc *MaterialController) WriteOff(c *fiber.Ctx) error {
	return mc.ledgerMutation(c, mc.Ledger.WriteOff, "Baixa registrada com sucesso")
}

func (mc *MaterialController) ledgerMutation(c *fiber.Ctx, op func(uint, int) error, okMessage string) error {
	actor, ok := actorFromLocals(c)
	if !ok {
		return c.Status(401).JSON(MaterialStatusResponse{Success: false, Message: "Acesso não autorizado"})
	}
	if !utils.CanPerform(actor.Role, utils.ActionManageStock) {
		return c.Status(403).JSON(MaterialStatusResponse{Success: false, Message: "Somente o fiel do material pode movimentar o estoque"})
	}

	materialID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(400).JSON(MaterialStatusResponse{Success: false, Message: "ID de material inválido"})
	}

	var req QuantityRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(MaterialStatusResponse{Success: false, Message: "Corpo da requisição inválido"})
	}

	if err := op(uint(materialID), req.Quantity); err != nil {
		return c.Status(statusForError(err)).JSON(MaterialStatusResponse{Success: false, Message: err.Error()})
	}

	status, err := mc.Ledger.Status(uint(materialID))
	if err != nil {
		return c.Status(statusForError(err)).JSON(MaterialStatusResponse{Success: false, Message: err.Error()})
	}

	return c.JSON(MaterialStatusResponse{
		Success: true,
		Message: okMessage,
		Status:  status,
	})
}
