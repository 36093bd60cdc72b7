package models

import (
	"time"

	"gorm.io/gorm"
)

// MaterialItem representa um item do estoque de material da unidade.
// Os totais são contadores monotônicos: entradas e baixas nunca diminuem.
// A quantidade livre é derivada, nunca armazenada:
// available_free = received_total - written_off_total - reserved_total
type MaterialItem struct {
	ID              uint      `json:"id" gorm:"primaryKey"`
	Name            string    `json:"name" gorm:"not null;size:255;uniqueIndex"`
	Category        string    `json:"category" gorm:"size:100"` // Ex: "Equipamento Individual"
	Location        string    `json:"location" gorm:"size:255"` // Localização física no depósito
	MinStock        int       `json:"min_stock" gorm:"default:0"` // Abaixo disso o estoque é crítico
	ReceivedTotal   int       `json:"received_total" gorm:"not null;default:0"`    // Total acumulado de entradas
	WrittenOffTotal int       `json:"written_off_total" gorm:"not null;default:0"` // Total acumulado de baixas (saída)
	ReservedTotal   int       `json:"reserved_total" gorm:"not null;default:0"`    // Soma das reservas ativas
	IsActive        bool      `json:"is_active" gorm:"default:true"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// AvailableFree retorna a quantidade livre para novas cautelas
func (m *MaterialItem) AvailableFree() int {
	return m.ReceivedTotal - m.WrittenOffTotal - m.ReservedTotal
}

// IsCritical indica se o estoque livre está abaixo do mínimo configurado
func (m *MaterialItem) IsCritical() bool {
	return m.AvailableFree() <= m.MinStock
}

// BeforeCreate hook para definir o horário de criação
func (m *MaterialItem) BeforeCreate(tx *gorm.DB) error {
	m.CreatedAt = time.Now()
	m.UpdatedAt = time.Now()
	return nil
}

// BeforeUpdate hook para atualizar o horário de modificação
func (m *MaterialItem) BeforeUpdate(tx *gorm.DB) error {
	m.UpdatedAt = time.Now()
	return nil
}
