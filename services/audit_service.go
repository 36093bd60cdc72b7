package services

import (
	"cautela-backend/models"

	"gorm.io/gorm"
)

// AuditService mantém a trilha de auditoria das cautelas.
// Append é a única operação de escrita; não existe atualização
// nem remoção de eventos.
type AuditService struct {
	DB *gorm.DB
}

// NewAuditService cria uma nova instância de AuditService
func NewAuditService(db *gorm.DB) *AuditService {
	return &AuditService{DB: db}
}

// Append registra uma transição dentro da transação do chamador
func (s *AuditService) Append(tx *gorm.DB, cautelaID, actorID uint, fromStatus, toStatus, note string) error {
	event := models.AuditEvent{
		CautelaID:  cautelaID,
		ActorID:    actorID,
		FromStatus: fromStatus,
		ToStatus:   toStatus,
		Note:       note,
	}
	if err := tx.Create(&event).Error; err != nil {
		return wrapStorage(err)
	}
	return nil
}

// History retorna a sequência ordenada de eventos de uma cautela
func (s *AuditService) History(cautelaID uint) ([]models.AuditEvent, error) {
	var events []models.AuditEvent
	err := s.DB.Where("cautela_id = ?", cautelaID).
		Order("created_at ASC, id ASC").
		Preload("Actor").
		Find(&events).Error
	if err != nil {
		return nil, wrapStorage(err)
	}
	return events, nil
}
