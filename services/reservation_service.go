package services

import (
	"errors"

	"cautela-backend/models"

	"gorm.io/gorm"
)

// ReservationService serializa as disputas pelo estoque livre de um
// material. A garantia central: a soma das reservas ativas mais o
// total baixado nunca excede o total recebido. Duas reservas
// concorrentes sobre a última unidade disputam o mesmo UPDATE
// guardado, e exatamente uma vence.
//
// Os métodos recebem o *gorm.DB da transação do chamador: reserva,
// liberação e conversão em baixa sempre acontecem na mesma unidade
// atômica que a mudança de status da cautela.
type ReservationService struct {
	DB *gorm.DB
}

// NewReservationService cria uma nova instância de ReservationService
func NewReservationService(db *gorm.DB) *ReservationService {
	return &ReservationService{DB: db}
}

// TryReserve tenta reservar qty unidades do material para a cautela.
// Em caso de estoque insuficiente nada é mutado.
func (s *ReservationService) TryReserve(tx *gorm.DB, materialID, cautelaID uint, qty int) error {
	if qty <= 0 {
		return ErrInvalidQuantity
	}

	res := tx.Model(&models.MaterialItem{}).
		Where("id = ? AND is_active = ? AND received_total - written_off_total - reserved_total >= ?",
			materialID, true, qty).
		Update("reserved_total", gorm.Expr("reserved_total + ?", qty))
	if res.Error != nil {
		return wrapStorage(res.Error)
	}
	if res.RowsAffected == 0 {
		var exists int64
		if err := tx.Model(&models.MaterialItem{}).
			Where("id = ? AND is_active = ?", materialID, true).
			Count(&exists).Error; err != nil {
			return wrapStorage(err)
		}
		if exists == 0 {
			return ErrMaterialNotFound
		}
		return ErrInsufficientStock
	}

	reservation := models.Reservation{
		MaterialID: materialID,
		CautelaID:  cautelaID,
		Quantity:   qty,
		Active:     true,
	}
	if err := tx.Create(&reservation).Error; err != nil {
		return wrapStorage(err)
	}
	return nil
}

// Release devolve a quantidade reservada ao estoque livre.
// Idempotente: liberar uma reserva já liberada (ou inexistente)
// é um no-op, não um erro.
func (s *ReservationService) Release(tx *gorm.DB, cautelaID uint) error {
	var reservation models.Reservation
	err := tx.Where("cautela_id = ? AND active = ?", cautelaID, true).First(&reservation).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return wrapStorage(err)
	}

	// Desativa somente se ainda estiver ativa; se outra liberação
	// chegou antes, não decrementa de novo
	res := tx.Model(&models.Reservation{}).
		Where("id = ? AND active = ?", reservation.ID, true).
		Update("active", false)
	if res.Error != nil {
		return wrapStorage(res.Error)
	}
	if res.RowsAffected == 0 {
		return nil
	}

	if err := tx.Model(&models.MaterialItem{}).
		Where("id = ?", reservation.MaterialID).
		Update("reserved_total", gorm.Expr("reserved_total - ?", reservation.Quantity)).Error; err != nil {
		return wrapStorage(err)
	}
	return nil
}

// ConvertToWriteOff converte a reserva da cautela em baixa definitiva:
// a quantidade sai de reserved_total e entra em written_off_total no
// mesmo UPDATE. Usada quando o material cautelado é declarado perdido
// ou avariado.
func (s *ReservationService) ConvertToWriteOff(tx *gorm.DB, cautelaID uint) error {
	var reservation models.Reservation
	err := tx.Where("cautela_id = ? AND active = ?", cautelaID, true).First(&reservation).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// Sem reserva ativa não há o que baixar: a cautela não está
		// mais de posse do estoque
		return ErrInvalidTransition
	}
	if err != nil {
		return wrapStorage(err)
	}

	res := tx.Model(&models.Reservation{}).
		Where("id = ? AND active = ?", reservation.ID, true).
		Update("active", false)
	if res.Error != nil {
		return wrapStorage(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrInvalidTransition
	}

	if err := tx.Model(&models.MaterialItem{}).
		Where("id = ?", reservation.MaterialID).
		Updates(map[string]interface{}{
			"reserved_total":    gorm.Expr("reserved_total - ?", reservation.Quantity),
			"written_off_total": gorm.Expr("written_off_total + ?", reservation.Quantity),
		}).Error; err != nil {
		return wrapStorage(err)
	}
	return nil
}
