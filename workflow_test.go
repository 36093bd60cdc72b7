package main

import (
	"testing"

	"cautela-backend/models"
	"cautela-backend/services"

	"github.com/stretchr/testify/assert"
)

// Ciclo completo sem perda: o estoque volta exatamente ao ponto de partida
func TestWorkflowRoundTrip(t *testing.T) {
	db := setupTestDB()
	s := setupTestServices(db)
	fielID, militarID, _ := createTestUsers(db)
	materialID := createTestMaterial(db, "Cantil", 10)

	cautela, err := s.Workflow.Create(materialID, militarID, 3, "instrução", "")
	assert.NoError(t, err)
	assert.Equal(t, models.StatusPending, cautela.Status)

	fiel := fielActor(fielID)
	militar := militarActor(militarID)

	assert.NoError(t, s.Workflow.Transition(cautela.ID, models.StatusApproved, fiel, services.TransitionOptions{}))
	assert.NoError(t, s.Workflow.Transition(cautela.ID, models.StatusInUse, fiel, services.TransitionOptions{}))
	assert.NoError(t, s.Workflow.Transition(cautela.ID, models.StatusPendingReturn, militar, services.TransitionOptions{}))
	assert.NoError(t, s.Workflow.Transition(cautela.ID, models.StatusCompleted, fiel, services.TransitionOptions{Note: "material íntegro"}))

	var final models.Cautela
	assert.NoError(t, db.First(&final, cautela.ID).Error)
	assert.Equal(t, models.StatusCompleted, final.Status)
	assert.NotNil(t, final.AuthorizedBy)
	assert.Equal(t, fielID, *final.AuthorizedBy)
	assert.NotNil(t, final.DeliveredBy)
	assert.NotNil(t, final.ReceivedBy)
	assert.NotNil(t, final.ClosedAt)
	assert.False(t, final.Loss)

	// Contadores monotônicos intactos, estoque livre restaurado
	status, _ := s.Ledger.Status(materialID)
	assert.Equal(t, 10, status.ReceivedTotal)
	assert.Equal(t, 0, status.WrittenOffTotal)
	assert.Equal(t, 0, status.ReservedTotal)
	assert.Equal(t, 10, status.AvailableFree)
	assertConservation(t, db, materialID)
}

// Caminho de perda: a quantidade sai do estoque em definitivo
func TestWorkflowLossPath(t *testing.T) {
	db := setupTestDB()
	s := setupTestServices(db)
	fielID, militarID, _ := createTestUsers(db)
	materialID := createTestMaterial(db, "Rádio HT", 10)

	cautela, err := s.Workflow.Create(materialID, militarID, 2, "", "")
	assert.NoError(t, err)

	fiel := fielActor(fielID)
	militar := militarActor(militarID)

	assert.NoError(t, s.Workflow.Transition(cautela.ID, models.StatusApproved, fiel, services.TransitionOptions{}))
	assert.NoError(t, s.Workflow.Transition(cautela.ID, models.StatusInUse, fiel, services.TransitionOptions{}))
	assert.NoError(t, s.Workflow.Transition(cautela.ID, models.StatusPendingReturn, militar, services.TransitionOptions{}))
	assert.NoError(t, s.Workflow.Transition(cautela.ID, models.StatusRejected, fiel,
		services.TransitionOptions{Loss: true, Note: "rádio extraviado em exercício"}))

	var final models.Cautela
	assert.NoError(t, db.First(&final, cautela.ID).Error)
	assert.Equal(t, models.StatusRejected, final.Status)
	assert.True(t, final.Loss)
	assert.NotNil(t, final.ClosedAt)

	status, _ := s.Ledger.Status(materialID)
	assert.Equal(t, 10, status.ReceivedTotal)
	assert.Equal(t, 2, status.WrittenOffTotal)
	assert.Equal(t, 0, status.ReservedTotal)
	assert.Equal(t, 8, status.AvailableFree)
	assertConservation(t, db, materialID)
}

// Recusa de devolução sem perda: libera o estoque, nada é baixado
func TestWorkflowReturnRejectedWithoutLoss(t *testing.T) {
	db := setupTestDB()
	s := setupTestServices(db)
	fielID, militarID, _ := createTestUsers(db)
	materialID := createTestMaterial(db, "Pá", 6)

	cautela, _ := s.Workflow.Create(materialID, militarID, 2, "", "")
	fiel := fielActor(fielID)
	militar := militarActor(militarID)

	assert.NoError(t, s.Workflow.Transition(cautela.ID, models.StatusApproved, fiel, services.TransitionOptions{}))
	assert.NoError(t, s.Workflow.Transition(cautela.ID, models.StatusInUse, fiel, services.TransitionOptions{}))
	assert.NoError(t, s.Workflow.Transition(cautela.ID, models.StatusPendingReturn, militar, services.TransitionOptions{}))
	assert.NoError(t, s.Workflow.Transition(cautela.ID, models.StatusRejected, fiel, services.TransitionOptions{Loss: false}))

	status, _ := s.Ledger.Status(materialID)
	assert.Equal(t, 0, status.WrittenOffTotal)
	assert.Equal(t, 6, status.AvailableFree)
	assertConservation(t, db, materialID)
}

// Transição fora de ordem é recusada sem alterar nada
func TestWorkflowInvalidTransition(t *testing.T) {
	db := setupTestDB()
	s := setupTestServices(db)
	fielID, militarID, _ := createTestUsers(db)
	materialID := createTestMaterial(db, "Corda de rapel", 4)

	cautela, _ := s.Workflow.Create(materialID, militarID, 1, "", "")
	fiel := fielActor(fielID)

	// PENDING não entrega direto
	err := s.Workflow.Transition(cautela.ID, models.StatusInUse, fiel, services.TransitionOptions{})
	assert.ErrorIs(t, err, services.ErrInvalidTransition)

	var unchanged models.Cautela
	db.First(&unchanged, cautela.ID)
	assert.Equal(t, models.StatusPending, unchanged.Status)
	assert.Nil(t, unchanged.DeliveredBy)

	status, _ := s.Ledger.Status(materialID)
	assert.Equal(t, 1, status.ReservedTotal)

	// Estado terminal não transiciona mais
	assert.NoError(t, s.Workflow.Transition(cautela.ID, models.StatusRejected, fiel, services.TransitionOptions{}))
	err = s.Workflow.Transition(cautela.ID, models.StatusApproved, fiel, services.TransitionOptions{})
	assert.ErrorIs(t, err, services.ErrInvalidTransition)
	err = s.Workflow.Transition(cautela.ID, models.StatusRejected, fiel, services.TransitionOptions{})
	assert.ErrorIs(t, err, services.ErrInvalidTransition)
}

func TestWorkflowUnauthorized(t *testing.T) {
	db := setupTestDB()
	s := setupTestServices(db)
	fielID, militar1ID, militar2ID := createTestUsers(db)
	materialID := createTestMaterial(db, "Lanterna tática", 4)

	cautela, _ := s.Workflow.Create(materialID, militar1ID, 1, "", "")
	fiel := fielActor(fielID)

	// Militar comum não aprova nem recusa
	err := s.Workflow.Transition(cautela.ID, models.StatusApproved, militarActor(militar1ID), services.TransitionOptions{})
	assert.ErrorIs(t, err, services.ErrUnauthorized)
	err = s.Workflow.Transition(cautela.ID, models.StatusRejected, militarActor(militar1ID), services.TransitionOptions{})
	assert.ErrorIs(t, err, services.ErrUnauthorized)

	assert.NoError(t, s.Workflow.Transition(cautela.ID, models.StatusApproved, fiel, services.TransitionOptions{}))
	assert.NoError(t, s.Workflow.Transition(cautela.ID, models.StatusInUse, fiel, services.TransitionOptions{}))

	// Outro militar não inicia a devolução de cautela alheia
	err = s.Workflow.Transition(cautela.ID, models.StatusPendingReturn, militarActor(militar2ID), services.TransitionOptions{})
	assert.ErrorIs(t, err, services.ErrUnauthorized)

	// O próprio solicitante inicia; o fiel também poderia
	assert.NoError(t, s.Workflow.Transition(cautela.ID, models.StatusPendingReturn, militarActor(militar1ID), services.TransitionOptions{}))
}

// Cancelamento de cautela aprovada mas não entregue libera a reserva
func TestWorkflowRejectBeforeDelivery(t *testing.T) {
	db := setupTestDB()
	s := setupTestServices(db)
	fielID, militarID, _ := createTestUsers(db)
	materialID := createTestMaterial(db, "Barraca de campanha", 3)

	cautela, _ := s.Workflow.Create(materialID, militarID, 2, "", "")
	fiel := fielActor(fielID)

	assert.NoError(t, s.Workflow.Transition(cautela.ID, models.StatusApproved, fiel, services.TransitionOptions{}))
	assert.NoError(t, s.Workflow.Transition(cautela.ID, models.StatusRejected, fiel, services.TransitionOptions{Note: "exercício cancelado"}))

	status, _ := s.Ledger.Status(materialID)
	assert.Equal(t, 3, status.AvailableFree)
	assert.Equal(t, 0, status.WrittenOffTotal)
	assertConservation(t, db, materialID)
}

// Lote com falha parcial: o item sem estoque não desfaz os demais
func TestCreateBatchPartialFailure(t *testing.T) {
	db := setupTestDB()
	s := setupTestServices(db)
	_, militarID, _ := createTestUsers(db)
	material1 := createTestMaterial(db, "Cantil", 10)
	material2 := createTestMaterial(db, "Colete tático", 1)
	material3 := createTestMaterial(db, "Capacete balístico", 5)

	batchID, results := s.Workflow.CreateBatch(militarID, []services.BatchItem{
		{MaterialID: material1, Quantity: 2},
		{MaterialID: material2, Quantity: 3}, // sem estoque
		{MaterialID: material3, Quantity: 1},
	}, "missão de patrulha")

	assert.NotEmpty(t, batchID)
	assert.Len(t, results, 3)

	assert.True(t, results[0].Success)
	assert.NotZero(t, results[0].CautelaID)
	assert.False(t, results[1].Success)
	assert.Equal(t, services.ErrInsufficientStock.Error(), results[1].Error)
	assert.True(t, results[2].Success)

	// Os sucessos ficaram de pé e compartilham o protocolo do lote
	var cautelas []models.Cautela
	db.Where("batch_id = ?", batchID).Find(&cautelas)
	assert.Len(t, cautelas, 2)

	status1, _ := s.Ledger.Status(material1)
	assert.Equal(t, 8, status1.AvailableFree)
	status2, _ := s.Ledger.Status(material2)
	assert.Equal(t, 1, status2.AvailableFree)
}

func TestCreateInvalidQuantity(t *testing.T) {
	db := setupTestDB()
	s := setupTestServices(db)
	_, militarID, _ := createTestUsers(db)
	materialID := createTestMaterial(db, "Cantil", 5)

	_, err := s.Workflow.Create(materialID, militarID, 0, "", "")
	assert.ErrorIs(t, err, services.ErrInvalidQuantity)
	_, err = s.Workflow.Create(materialID, militarID, -2, "", "")
	assert.ErrorIs(t, err, services.ErrInvalidQuantity)
}

func TestCreateMaterialNotFound(t *testing.T) {
	db := setupTestDB()
	s := setupTestServices(db)
	_, militarID, _ := createTestUsers(db)

	_, err := s.Workflow.Create(9999, militarID, 1, "", "")
	assert.ErrorIs(t, err, services.ErrMaterialNotFound)
}

func TestTransitionCautelaNotFound(t *testing.T) {
	db := setupTestDB()
	s := setupTestServices(db)
	fielID, _, _ := createTestUsers(db)

	err := s.Workflow.Transition(9999, models.StatusApproved, fielActor(fielID), services.TransitionOptions{})
	assert.ErrorIs(t, err, services.ErrCautelaNotFound)
}

// A trilha de auditoria acompanha cada transição, na ordem
func TestAuditTrail(t *testing.T) {
	db := setupTestDB()
	s := setupTestServices(db)
	fielID, militarID, _ := createTestUsers(db)
	materialID := createTestMaterial(db, "Mochila de campanha", 5)

	cautela, _ := s.Workflow.Create(materialID, militarID, 1, "solicitação inicial", "")
	fiel := fielActor(fielID)
	militar := militarActor(militarID)

	assert.NoError(t, s.Workflow.Transition(cautela.ID, models.StatusApproved, fiel, services.TransitionOptions{}))
	assert.NoError(t, s.Workflow.Transition(cautela.ID, models.StatusInUse, fiel, services.TransitionOptions{}))
	assert.NoError(t, s.Workflow.Transition(cautela.ID, models.StatusPendingReturn, militar, services.TransitionOptions{}))
	assert.NoError(t, s.Workflow.Transition(cautela.ID, models.StatusCompleted, fiel, services.TransitionOptions{Note: "conferido"}))

	events, err := s.Audit.History(cautela.ID)
	assert.NoError(t, err)
	assert.Len(t, events, 5)

	assert.Equal(t, "", events[0].FromStatus)
	assert.Equal(t, models.StatusPending, events[0].ToStatus)
	assert.Equal(t, militarID, events[0].ActorID)

	assert.Equal(t, models.StatusPending, events[1].FromStatus)
	assert.Equal(t, models.StatusApproved, events[1].ToStatus)
	assert.Equal(t, fielID, events[1].ActorID)

	assert.Equal(t, models.StatusPendingReturn, events[4].FromStatus)
	assert.Equal(t, models.StatusCompleted, events[4].ToStatus)
	assert.Equal(t, "conferido", events[4].Note)

	// Quem autorizou/entregou/recebeu responde-se pela trilha
	var delivered *models.AuditEvent
	for i := range events {
		if events[i].ToStatus == models.StatusInUse {
			delivered = &events[i]
		}
	}
	assert.NotNil(t, delivered)
	assert.Equal(t, fielID, delivered.ActorID)
}
