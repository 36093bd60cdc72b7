package main

import (
	"testing"

	"cautela-backend/models"
	"cautela-backend/services"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

// assertConservation verifica a propriedade de conservação do estoque:
// recebido = livre + reservado + baixado, reservado coerente com as
// reservas ativas e livre nunca negativo
func assertConservation(t *testing.T, db *gorm.DB, materialID uint) {
	t.Helper()

	var material models.MaterialItem
	assert.NoError(t, db.First(&material, materialID).Error)

	var reservedSum int
	db.Model(&models.Reservation{}).
		Where("material_id = ? AND active = ?", materialID, true).
		Select("COALESCE(SUM(quantity), 0)").
		Scan(&reservedSum)

	assert.Equal(t, reservedSum, material.ReservedTotal, "reserved_total deve igualar a soma das reservas ativas")
	assert.GreaterOrEqual(t, material.AvailableFree(), 0, "estoque livre nunca pode ser negativo")
	assert.LessOrEqual(t, material.WrittenOffTotal+material.ReservedTotal, material.ReceivedTotal)
}

func TestRegisterReceipt(t *testing.T) {
	db := setupTestDB()
	s := setupTestServices(db)
	materialID := createTestMaterial(db, "Cantil", 0)

	err := s.Ledger.RegisterReceipt(materialID, 10)
	assert.NoError(t, err)

	status, err := s.Ledger.Status(materialID)
	assert.NoError(t, err)
	assert.Equal(t, 10, status.ReceivedTotal)
	assert.Equal(t, 10, status.AvailableFree)
	assertConservation(t, db, materialID)
}

func TestRegisterReceiptInvalidQuantity(t *testing.T) {
	db := setupTestDB()
	s := setupTestServices(db)
	materialID := createTestMaterial(db, "Cantil", 0)

	assert.ErrorIs(t, s.Ledger.RegisterReceipt(materialID, 0), services.ErrInvalidQuantity)
	assert.ErrorIs(t, s.Ledger.RegisterReceipt(materialID, -3), services.ErrInvalidQuantity)

	status, _ := s.Ledger.Status(materialID)
	assert.Equal(t, 0, status.ReceivedTotal)
}

func TestRegisterReceiptMaterialNotFound(t *testing.T) {
	db := setupTestDB()
	s := setupTestServices(db)

	assert.ErrorIs(t, s.Ledger.RegisterReceipt(9999, 5), services.ErrMaterialNotFound)
}

func TestWriteOff(t *testing.T) {
	db := setupTestDB()
	s := setupTestServices(db)
	materialID := createTestMaterial(db, "Pá", 10)

	err := s.Ledger.WriteOff(materialID, 4)
	assert.NoError(t, err)

	status, _ := s.Ledger.Status(materialID)
	assert.Equal(t, 10, status.ReceivedTotal)
	assert.Equal(t, 4, status.WrittenOffTotal)
	assert.Equal(t, 6, status.AvailableFree)
	assertConservation(t, db, materialID)
}

func TestWriteOffInsufficientStock(t *testing.T) {
	db := setupTestDB()
	s := setupTestServices(db)
	materialID := createTestMaterial(db, "Pá", 3)

	assert.ErrorIs(t, s.Ledger.WriteOff(materialID, 5), services.ErrInsufficientStock)

	// Falha não deixa mutação parcial
	status, _ := s.Ledger.Status(materialID)
	assert.Equal(t, 0, status.WrittenOffTotal)
	assert.Equal(t, 3, status.AvailableFree)
}

func TestWriteOffCannotConsumeReservedStock(t *testing.T) {
	db := setupTestDB()
	s := setupTestServices(db)
	_, militarID, _ := createTestUsers(db)
	materialID := createTestMaterial(db, "Rádio HT", 5)

	// Reserva 4 das 5 unidades
	_, err := s.Workflow.Create(materialID, militarID, 4, "", "")
	assert.NoError(t, err)

	// Só uma unidade está livre; baixa de 2 deve falhar
	assert.ErrorIs(t, s.Ledger.WriteOff(materialID, 2), services.ErrInsufficientStock)
	assert.NoError(t, s.Ledger.WriteOff(materialID, 1))

	status, _ := s.Ledger.Status(materialID)
	assert.Equal(t, 0, status.AvailableFree)
	assert.Equal(t, 4, status.ReservedTotal)
	assert.Equal(t, 1, status.WrittenOffTotal)
	assertConservation(t, db, materialID)
}

func TestWriteOffInvalidQuantity(t *testing.T) {
	db := setupTestDB()
	s := setupTestServices(db)
	materialID := createTestMaterial(db, "Corda", 10)

	assert.ErrorIs(t, s.Ledger.WriteOff(materialID, 0), services.ErrInvalidQuantity)
	assert.ErrorIs(t, s.Ledger.WriteOff(materialID, -1), services.ErrInvalidQuantity)
}
