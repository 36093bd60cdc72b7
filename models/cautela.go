package models

import (
	"time"

	"gorm.io/gorm"
)

// Status do ciclo de vida de uma cautela
const (
	StatusPending       = "PENDING"        // aguardando aprovação do fiel
	StatusApproved      = "APPROVED"       // aprovada, aguardando entrega física
	StatusInUse         = "IN_USE"         // material entregue, em poder do militar
	StatusPendingReturn = "PENDING_RETURN" // devolução iniciada, aguardando conferência
	StatusCompleted     = "COMPLETED"      // devolvida íntegra (terminal)
	StatusRejected      = "REJECTED"       // recusada ou cancelada (terminal)
)

// IsTerminal indica se o status não admite mais transições
func IsTerminal(status string) bool {
	return status == StatusCompleted || status == StatusRejected
}

// Cautela representa a custódia de material por um militar.
// Registros nunca são apagados fisicamente: estados terminais
// permanecem para fins de auditoria.
type Cautela struct {
	ID           uint       `json:"id" gorm:"primaryKey"`
	BatchID      string     `json:"batch_id" gorm:"size:36;index"` // Protocolo do lote de solicitação
	MaterialID   uint       `json:"material_id" gorm:"not null;index"`
	RequesterID  uint       `json:"requester_id" gorm:"not null;index"`
	Quantity     int        `json:"quantity" gorm:"not null"`
	Status       string     `json:"status" gorm:"not null;size:20;index;default:'PENDING'"`
	AuthorizedBy *uint      `json:"authorized_by"` // Fiel que aprovou
	DeliveredBy  *uint      `json:"delivered_by"`  // Fiel que entregou o material
	ReceivedBy   *uint      `json:"received_by"`   // Fiel que conferiu a devolução
	Loss         bool       `json:"loss" gorm:"default:false"` // true quando recusada com perda/avaria
	Note         string     `json:"note" gorm:"type:text"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	ClosedAt     *time.Time `json:"closed_at"` // Preenchido ao atingir estado terminal

	// Associações
	Material  *MaterialItem `json:"material,omitempty" gorm:"foreignKey:MaterialID"`
	Requester *User         `json:"requester,omitempty" gorm:"foreignKey:RequesterID"`
}

// Reservation é a promessa de estoque vinculada a uma cautela.
// Exatamente uma reserva por cautela; a soma das reservas ativas
// de um material é o reserved_total dele.
type Reservation struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	MaterialID uint      `json:"material_id" gorm:"not null;index"`
	CautelaID  uint      `json:"cautela_id" gorm:"not null;uniqueIndex"`
	Quantity   int       `json:"quantity" gorm:"not null"`
	Active     bool      `json:"active" gorm:"not null;default:true;index"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// BeforeCreate hook para definir o horário de criação
func (c *Cautela) BeforeCreate(tx *gorm.DB) error {
	c.CreatedAt = time.Now()
	c.UpdatedAt = time.Now()
	return nil
}

// BeforeUpdate hook para atualizar o horário de modificação
func (c *Cautela) BeforeUpdate(tx *gorm.DB) error {
	c.UpdatedAt = time.Now()
	return nil
}

// BeforeCreate hook para definir o horário de criação
func (r *Reservation) BeforeCreate(tx *gorm.DB) error {
	r.CreatedAt = time.Now()
	r.UpdatedAt = time.Now()
	return nil
}

// BeforeUpdate hook para atualizar o horário de modificação
func (r *Reservation) BeforeUpdate(tx *gorm.DB) error {
	r.UpdatedAt = time.Now()
	return nil
}
