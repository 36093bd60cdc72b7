package services

import (
	"errors"

	"cautela-backend/models"

	"gorm.io/gorm"
)

// LedgerService é o livro-razão do estoque: entradas e baixas são
// contadores monotônicos e toda atualização condicionada à
// disponibilidade é feita em um único UPDATE guardado, nunca com
// leitura seguida de escrita.
type LedgerService struct {
	DB *gorm.DB
}

// NewLedgerService cria uma nova instância de LedgerService
func NewLedgerService(db *gorm.DB) *LedgerService {
	return &LedgerService{DB: db}
}

// ItemStatus é a fotografia contábil de um material
type ItemStatus struct {
	MaterialID      uint   `json:"material_id"`
	Name            string `json:"name"`
	Category        string `json:"category"`
	ReceivedTotal   int    `json:"received_total"`
	WrittenOffTotal int    `json:"written_off_total"`
	ReservedTotal   int    `json:"reserved_total"`
	AvailableFree   int    `json:"available_free"`
	Critical        bool   `json:"critical"`
}

// RegisterReceipt registra a entrada de qty unidades no estoque
func (s *LedgerService) RegisterReceipt(materialID uint, qty int) error {
	if qty <= 0 {
		return ErrInvalidQuantity
	}

	res := s.DB.Model(&models.MaterialItem{}).
		Where("id = ?", materialID).
		Update("received_total", gorm.Expr("received_total + ?", qty))
	if res.Error != nil {
		return wrapStorage(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrMaterialNotFound
	}
	return nil
}

// WriteOff dá baixa definitiva de qty unidades livres (saída por
// perda, dano ou descarte). Unidades reservadas por cautelas ativas
// não podem ser baixadas por aqui; para isso existe a conversão de
// reserva em baixa no ReservationService.
func (s *LedgerService) WriteOff(materialID uint, qty int) error {
	if qty <= 0 {
		return ErrInvalidQuantity
	}

	// UPDATE guardado: só consome o que está livre no instante da escrita
	res := s.DB.Model(&models.MaterialItem{}).
		Where("id = ? AND received_total - written_off_total - reserved_total >= ?", materialID, qty).
		Update("written_off_total", gorm.Expr("written_off_total + ?", qty))
	if res.Error != nil {
		return wrapStorage(res.Error)
	}
	if res.RowsAffected == 0 {
		// Distingue material inexistente de estoque insuficiente
		var exists int64
		if err := s.DB.Model(&models.MaterialItem{}).Where("id = ?", materialID).Count(&exists).Error; err != nil {
			return wrapStorage(err)
		}
		if exists == 0 {
			return ErrMaterialNotFound
		}
		return ErrInsufficientStock
	}
	return nil
}

// Status retorna a fotografia contábil atual de um material
func (s *LedgerService) Status(materialID uint) (*ItemStatus, error) {
	var item models.MaterialItem
	if err := s.DB.First(&item, materialID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMaterialNotFound
		}
		return nil, wrapStorage(err)
	}
	return statusFromItem(&item), nil
}

func statusFromItem(item *models.MaterialItem) *ItemStatus {
	return &ItemStatus{
		MaterialID:      item.ID,
		Name:            item.Name,
		Category:        item.Category,
		ReceivedTotal:   item.ReceivedTotal,
		WrittenOffTotal: item.WrittenOffTotal,
		ReservedTotal:   item.ReservedTotal,
		AvailableFree:   item.AvailableFree(),
		Critical:        item.IsCritical(),
	}
}
