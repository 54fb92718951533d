package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound     = errors.New("recurso no encontrado")
	ErrUserNotFound = errors.New("usuario no encontrado")
	ErrInvalidInput = errors.New("entrada inválida")
	ErrDuplicate    = errors.New("recurso duplicado")
	ErrUnauthorized = errors.New("no autorizado")
	ErrForbidden    = errors.New("acceso denegado")
	ErrConflict     = errors.New("conflicto con el estado actual")

	// Precondiciones de la derivación de pagos de confirming.
	ErrPrecondition        = errors.New("precondición no satisfecha")
	ErrNotConfirming       = fmt.Errorf("%w: la factura no es de tipo confirming", ErrPrecondition)
	ErrAdvanceNotRequested = fmt.Errorf("%w: la factura no tiene solicitud de anticipo", ErrPrecondition)

	// ErrCompanyUserMissing la empresa de la factura no tiene usuario asociado (entidad relacionada faltante).
	ErrCompanyUserMissing = errors.New("la empresa de la factura no tiene usuario asociado")

	ErrInvalidTransition = errors.New("transición de estado no permitida")
	ErrSweepInProgress   = errors.New("ya hay un barrido de pagos en curso")
)

// TransitionError indica qué guarda de estado bloqueó una acción.
// No es un fallo fatal: la acción no se aplicó y no se escribió nada.
type TransitionError struct {
	Action string // send, approve, reject, expire, counter_offer, fund, ...
	From   string // estado actual de la entidad
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s: acción %q no permitida desde el estado %q", ErrInvalidTransition, e.Action, e.From)
}

func (e *TransitionError) Unwrap() error { return ErrInvalidTransition }

// NewTransitionError construye el error de guarda para la acción y el estado actual.
func NewTransitionError(action, from string) *TransitionError {
	return &TransitionError{Action: action, From: from}
}
