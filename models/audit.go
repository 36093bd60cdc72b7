package models

import (
	"time"

	"gorm.io/gorm"
)

// AuditEvent registra uma transição de estado de uma cautela.
// A trilha é append-only: não existe operação de atualização ou
// remoção, e o modelo propositalmente não tem UpdatedAt.
type AuditEvent struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	CautelaID  uint      `json:"cautela_id" gorm:"not null;index"`
	ActorID    uint      `json:"actor_id" gorm:"not null"`
	FromStatus string    `json:"from_status" gorm:"size:20"` // vazio no evento de criação
	ToStatus   string    `json:"to_status" gorm:"not null;size:20"`
	Note       string    `json:"note" gorm:"type:text"`
	CreatedAt  time.Time `json:"created_at"`

	// Associações
	Actor *User `json:"actor,omitempty" gorm:"foreignKey:ActorID"`
}

// BeforeCreate hook para definir o horário de criação
func (e *AuditEvent) BeforeCreate(tx *gorm.DB) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	return nil
}
