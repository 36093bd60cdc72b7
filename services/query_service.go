package services

import (
	"time"

	"cautela-backend/models"

	"gorm.io/gorm"
)

// QueryService reúne as projeções de leitura consumidas por painéis
// e relatórios. Nenhum método altera estado; todas as consultas
// podem rodar contra uma réplica de leitura.
type QueryService struct {
	DB *gorm.DB
}

// NewQueryService cria uma nova instância de QueryService
func NewQueryService(db *gorm.DB) *QueryService {
	return &QueryService{DB: db}
}

// CautelaFilter filtra a listagem de cautelas
type CautelaFilter struct {
	Status      string
	MaterialID  uint
	RequesterID uint
	From        *time.Time
	To          *time.Time
}

// ConsumptionRow é uma linha agregada de consumo
type ConsumptionRow struct {
	Label         string `json:"label"`
	TotalQuantity int    `json:"total_quantity"`
	Cautelas      int64  `json:"cautelas"`
}

// RequesterRow é uma linha do ranking de solicitantes
type RequesterRow struct {
	UserID        uint   `json:"user_id"`
	Name          string `json:"name"`
	Rank          string `json:"rank"`
	Sector        string `json:"sector"`
	Cautelas      int64  `json:"cautelas"`
	TotalQuantity int    `json:"total_quantity"`
}

// ItemsAvailability retorna a fotografia contábil de todos os
// materiais ativos, com o indicador de estoque crítico
func (s *QueryService) ItemsAvailability() ([]ItemStatus, error) {
	var items []models.MaterialItem
	if err := s.DB.Where("is_active = ?", true).Order("name ASC").Find(&items).Error; err != nil {
		return nil, wrapStorage(err)
	}

	statuses := make([]ItemStatus, 0, len(items))
	for i := range items {
		statuses = append(statuses, *statusFromItem(&items[i]))
	}
	return statuses, nil
}

// ListCautelas lista cautelas segundo o filtro informado
func (s *QueryService) ListCautelas(filter CautelaFilter) ([]models.Cautela, error) {
	query := s.DB.Model(&models.Cautela{}).
		Preload("Material").
		Preload("Requester")

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.MaterialID != 0 {
		query = query.Where("material_id = ?", filter.MaterialID)
	}
	if filter.RequesterID != 0 {
		query = query.Where("requester_id = ?", filter.RequesterID)
	}
	if filter.From != nil {
		query = query.Where("created_at >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("created_at <= ?", *filter.To)
	}

	var cautelas []models.Cautela
	if err := query.Order("created_at DESC, id DESC").Find(&cautelas).Error; err != nil {
		return nil, wrapStorage(err)
	}
	return cautelas, nil
}

// InField lista o material atualmente fora do depósito:
// cautelas entregues e ainda não resolvidas
func (s *QueryService) InField() ([]models.Cautela, error) {
	var cautelas []models.Cautela
	err := s.DB.Where("status IN ?", []string{models.StatusInUse, models.StatusPendingReturn}).
		Preload("Material").
		Preload("Requester").
		Order("created_at ASC").
		Find(&cautelas).Error
	if err != nil {
		return nil, wrapStorage(err)
	}
	return cautelas, nil
}

// ConsumptionByCategory agrega o material efetivamente entregue na
// janela, agrupado pela categoria do material
func (s *QueryService) ConsumptionByCategory(from, to time.Time) ([]ConsumptionRow, error) {
	var rows []ConsumptionRow
	err := s.DB.Table("cautelas").
		Select("material_items.category AS label, SUM(cautelas.quantity) AS total_quantity, COUNT(*) AS cautelas").
		Joins("JOIN material_items ON material_items.id = cautelas.material_id").
		Where("cautelas.delivered_by IS NOT NULL AND cautelas.created_at BETWEEN ? AND ?", from, to).
		Group("material_items.category").
		Order("total_quantity DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, wrapStorage(err)
	}
	return rows, nil
}

// ConsumptionBySector agrega o material efetivamente entregue na
// janela, agrupado pelo setor do solicitante
func (s *QueryService) ConsumptionBySector(from, to time.Time) ([]ConsumptionRow, error) {
	var rows []ConsumptionRow
	err := s.DB.Table("cautelas").
		Select("users.sector AS label, SUM(cautelas.quantity) AS total_quantity, COUNT(*) AS cautelas").
		Joins("JOIN users ON users.id = cautelas.requester_id").
		Where("cautelas.delivered_by IS NOT NULL AND cautelas.created_at BETWEEN ? AND ?", from, to).
		Group("users.sector").
		Order("total_quantity DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, wrapStorage(err)
	}
	return rows, nil
}

// TopRequesters retorna o ranking de solicitantes na janela
func (s *QueryService) TopRequesters(from, to time.Time, limit int) ([]RequesterRow, error) {
	if limit <= 0 {
		limit = 10
	}

	var rows []RequesterRow
	err := s.DB.Table("cautelas").
		Select("users.id AS user_id, users.name, users.rank, users.sector, COUNT(*) AS cautelas, SUM(cautelas.quantity) AS total_quantity").
		Joins("JOIN users ON users.id = cautelas.requester_id").
		Where("cautelas.created_at BETWEEN ? AND ?", from, to).
		Group("users.id, users.name, users.rank, users.sector").
		Order("cautelas DESC, total_quantity DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, wrapStorage(err)
	}
	return rows, nil
}
