package services

import (
	"errors"
	"time"

	"cautela-backend/models"
	"cautela-backend/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Actor é a identidade autenticada que executa uma operação,
// fornecida pelo provedor de identidade (token JWT)
type Actor struct {
	ID     uint
	Role   string
	Sector string
}

// TransitionOptions são os parâmetros opcionais de uma transição
type TransitionOptions struct {
	Loss bool   // recusa de devolução com perda/avaria
	Note string // observação registrada na auditoria
}

// BatchItem é um item de uma solicitação em lote
type BatchItem struct {
	MaterialID uint `json:"material_id"`
	Quantity   int  `json:"quantity"`
}

// BatchResult é o resultado individual de um item do lote
type BatchResult struct {
	MaterialID uint   `json:"material_id"`
	CautelaID  uint   `json:"cautela_id,omitempty"`
	Success    bool   `json:"success"`
	Error      string `json:"error,omitempty"`
}

// WorkflowService governa o ciclo de vida de uma cautela:
// PENDING → APPROVED → IN_USE → PENDING_RETURN → COMPLETED,
// com REJECTED alcançável de qualquer estado não terminal.
// Cada transição valida o status de origem, valida o perfil do
// ator, aplica o efeito de reserva/baixa e grava a auditoria em
// uma única transação.
type WorkflowService struct {
	DB           *gorm.DB
	Reservations *ReservationService
	Audit        *AuditService
	Hub          *NotifyHub // sink de notificações, opcional
}

// NewWorkflowService cria uma nova instância de WorkflowService
func NewWorkflowService(db *gorm.DB, reservations *ReservationService, audit *AuditService, hub *NotifyHub) *WorkflowService {
	return &WorkflowService{
		DB:           db,
		Reservations: reservations,
		Audit:        audit,
		Hub:          hub,
	}
}

// transitionRule descreve de onde uma transição pode partir e qual
// ação da política de autorização ela exige
type transitionRule struct {
	from   string
	action utils.Action
}

// Tabela de transições válidas, indexada pelo status de destino.
// REJECTED não aparece aqui: é tratada à parte porque parte de
// qualquer estado não terminal.
var transitionRules = map[string]transitionRule{
	models.StatusApproved:      {from: models.StatusPending, action: utils.ActionApprove},
	models.StatusInUse:         {from: models.StatusApproved, action: utils.ActionDeliver},
	models.StatusPendingReturn: {from: models.StatusInUse, action: utils.ActionInitiateReturn},
	models.StatusCompleted:     {from: models.StatusPendingReturn, action: utils.ActionConfirmReturn},
}

// Create abre uma cautela para o solicitante. A reserva do estoque e
// a criação do registro são uma única unidade atômica: se não há
// estoque livre, nenhuma linha é persistida.
func (s *WorkflowService) Create(materialID, requesterID uint, qty int, note, batchID string) (*models.Cautela, error) {
	if qty <= 0 {
		return nil, ErrInvalidQuantity
	}

	cautela := models.Cautela{
		BatchID:     batchID,
		MaterialID:  materialID,
		RequesterID: requesterID,
		Quantity:    qty,
		Status:      models.StatusPending,
		Note:        note,
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&cautela).Error; err != nil {
			return wrapStorage(err)
		}
		if err := s.Reservations.TryReserve(tx, materialID, cautela.ID, qty); err != nil {
			return err
		}
		return s.Audit.Append(tx, cautela.ID, requesterID, "", models.StatusPending, note)
	})
	if err != nil {
		return nil, err
	}

	s.notify(&cautela, "", models.StatusPending, requesterID)
	return &cautela, nil
}

// CreateBatch processa uma solicitação com vários itens. Cada item é
// uma cautela independente com sua própria reserva: a falta de
// estoque de um item não desfaz os demais. Retorna o protocolo do
// lote e o resultado item a item.
func (s *WorkflowService) CreateBatch(requesterID uint, items []BatchItem, note string) (string, []BatchResult) {
	batchID := uuid.New().String()
	results := make([]BatchResult, 0, len(items))

	for _, item := range items {
		cautela, err := s.Create(item.MaterialID, requesterID, item.Quantity, note, batchID)
		if err != nil {
			results = append(results, BatchResult{
				MaterialID: item.MaterialID,
				Success:    false,
				Error:      err.Error(),
			})
			continue
		}
		results = append(results, BatchResult{
			MaterialID: item.MaterialID,
			CautelaID:  cautela.ID,
			Success:    true,
		})
	}

	return batchID, results
}

// Transition avança a cautela para o status de destino.
// A validação do status de origem acontece no próprio UPDATE
// (WHERE id = ? AND status = ?): transições concorrentes sobre a
// mesma cautela são linearizadas e a perdedora recebe
// ErrInvalidTransition, nunca sobrescreve em silêncio.
func (s *WorkflowService) Transition(cautelaID uint, target string, actor Actor, opts TransitionOptions) error {
	var cautela models.Cautela
	if err := s.DB.First(&cautela, cautelaID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCautelaNotFound
		}
		return wrapStorage(err)
	}

	from := cautela.Status

	var action utils.Action
	switch target {
	case models.StatusRejected:
		// Recusa/cancelamento parte de qualquer estado não terminal
		if models.IsTerminal(from) {
			return ErrInvalidTransition
		}
		action = utils.ActionReject
	default:
		rule, ok := transitionRules[target]
		if !ok {
			return ErrInvalidTransition
		}
		if from != rule.from {
			return ErrInvalidTransition
		}
		action = rule.action
	}

	if !utils.CanPerform(actor.Role, action) {
		return ErrUnauthorized
	}
	// Devolução iniciada pelo próprio militar só vale para a cautela dele
	if action == utils.ActionInitiateReturn && actor.Role == models.RoleMilitar && actor.ID != cautela.RequesterID {
		return ErrUnauthorized
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{"status": target}
		switch target {
		case models.StatusApproved:
			updates["authorized_by"] = actor.ID
		case models.StatusInUse:
			updates["delivered_by"] = actor.ID
		case models.StatusCompleted:
			updates["received_by"] = actor.ID
			updates["closed_at"] = time.Now()
		case models.StatusRejected:
			updates["closed_at"] = time.Now()
			if opts.Loss && (from == models.StatusInUse || from == models.StatusPendingReturn) {
				updates["loss"] = true
			}
		}

		res := tx.Model(&models.Cautela{}).
			Where("id = ? AND status = ?", cautelaID, from).
			Updates(updates)
		if res.Error != nil {
			return wrapStorage(res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrInvalidTransition
		}

		// Efeito sobre reserva/estoque, na mesma transação
		switch target {
		case models.StatusCompleted:
			if err := s.Reservations.Release(tx, cautelaID); err != nil {
				return err
			}
		case models.StatusRejected:
			if opts.Loss && (from == models.StatusInUse || from == models.StatusPendingReturn) {
				// Material declarado perdido: reserva vira baixa definitiva
				if err := s.Reservations.ConvertToWriteOff(tx, cautelaID); err != nil {
					return err
				}
			} else {
				if err := s.Reservations.Release(tx, cautelaID); err != nil {
					return err
				}
			}
		}

		return s.Audit.Append(tx, cautelaID, actor.ID, from, target, opts.Note)
	})
	if err != nil {
		return err
	}

	s.notify(&cautela, from, target, actor.ID)
	return nil
}

func (s *WorkflowService) notify(cautela *models.Cautela, from, to string, actorID uint) {
	if s.Hub == nil {
		return
	}
	s.Hub.NotifyTransition(TransitionPayload{
		CautelaID:   cautela.ID,
		MaterialID:  cautela.MaterialID,
		RequesterID: cautela.RequesterID,
		FromStatus:  from,
		ToStatus:    to,
		ActorID:     actorID,
		Timestamp:   time.Now(),
	})
}
