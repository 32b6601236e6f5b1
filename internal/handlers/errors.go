package handlers

import (
	"errors"
	"net/http"

	"elretiro/console/internal/service"
)

const msgUnexpected = "Ocurrió un error inesperado. Por favor, intente nuevamente."

type failure struct {
	status  int
	fields  map[string]string
	message string
}

// classify maps a service error onto what the user sees: inline field
// messages or a single banner message.
func classify(err error) failure {
	var formErr *service.FormError
	if errors.As(err, &formErr) {
		return failure{status: http.StatusUnprocessableEntity, fields: formErr.Fields()}
	}
	if errors.Is(err, service.ErrBusy) {
		return failure{status: http.StatusConflict, message: service.MsgBusy}
	}
	var remoteErr *service.RemoteError
	if errors.As(err, &remoteErr) {
		return failure{status: http.StatusBadGateway, message: remoteErr.Message}
	}
	return failure{status: http.StatusInternalServerError, message: msgUnexpected}
}
