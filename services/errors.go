package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// Erros de negócio do núcleo de cautelas. Todos são locais e
// recuperáveis: uma operação que falha não deixa mutação parcial.
var (
	ErrInvalidQuantity    = errors.New("quantidade inválida")
	ErrMaterialNotFound   = errors.New("material não encontrado")
	ErrCautelaNotFound    = errors.New("cautela não encontrada")
	ErrInsufficientStock  = errors.New("estoque insuficiente")
	ErrInvalidTransition  = errors.New("transição de status inválida")
	ErrUnauthorized       = errors.New("ação não autorizada para o perfil")
	ErrStorageUnavailable = errors.New("banco de dados indisponível")
)

// wrapStorage converte falhas do banco em ErrStorageUnavailable,
// preservando erros de negócio já classificados. Falhas de
// persistência são elegíveis a retry pelo chamador; rejeições de
// regra de negócio não.
func wrapStorage(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrInvalidQuantity) ||
		errors.Is(err, ErrMaterialNotFound) ||
		errors.Is(err, ErrCautelaNotFound) ||
		errors.Is(err, ErrInsufficientStock) ||
		errors.Is(err, ErrInvalidTransition) ||
		errors.Is(err, ErrUnauthorized) {
		return err
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
}
