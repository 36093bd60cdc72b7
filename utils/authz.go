package utils

import "cautela-backend/models"

// Action identifica uma ação sujeita a autorização
type Action string

// Ações controladas pela política de autorização
const (
	ActionRequest        Action = "request"         // solicitar cautela
	ActionApprove        Action = "approve"         // aprovar cautela pendente
	ActionReject         Action = "reject"          // recusar/cancelar cautela
	ActionDeliver        Action = "deliver"         // confirmar entrega física
	ActionInitiateReturn Action = "initiate_return" // iniciar devolução
	ActionConfirmReturn  Action = "confirm_return"  // conferir devolução
	ActionManageStock    Action = "manage_stock"    // entradas, baixas e catálogo
)

// CanPerform é a política única de autorização do sistema: toda
// verificação de perfil passa por aqui, nenhuma lista de papéis é
// duplicada em controller ou serviço.
func CanPerform(role string, action Action) bool {
	switch action {
	case ActionRequest, ActionInitiateReturn:
		return role == models.RoleMilitar || role == models.RoleFiel
	case ActionApprove, ActionReject, ActionDeliver, ActionConfirmReturn, ActionManageStock:
		return role == models.RoleFiel
	}
	return false
}
