package service

import (
	"elretiro/console/internal/session"
	"elretiro/console/internal/validation"
)

const (
	MsgSignInRejected = "Credenciales inválidas. Por favor, verifique su correo y contraseña."
	MsgSignInFailed   = "Ocurrió un error al intentar iniciar sesión. Por favor, intente nuevamente."
	MsgCreateFailed   = "No se pudo crear el usuario. Por favor, intente nuevamente."
	MsgBusy           = "Ya hay una solicitud en curso. Espere a que termine."
)

var ErrBusy = session.ErrBusy

// FormError means at least one field failed validation and nothing was sent
// to the backend.
type FormError struct {
	Form *validation.Form
}

func (e *FormError) Error() string {
	return "form has invalid fields"
}

func (e *FormError) Fields() map[string]string {
	return e.Form.Errors()
}

// RemoteError is a failed backend call reduced to the message shown to the user.
type RemoteError struct {
	Message string
	Err     error
}

func (e *RemoteError) Error() string {
	return e.Message
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}
