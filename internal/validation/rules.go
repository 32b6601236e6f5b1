package validation

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"elretiro/console/internal/models"
)

const (
	MsgEmailRequired    = "El correo electrónico es requerido"
	MsgEmailInvalid     = "Por favor ingrese un correo electrónico válido"
	MsgPasswordRequired = "La contraseña es requerida"
	MsgPasswordShort    = "La contraseña debe tener al menos 6 caracteres"
	MsgNameRequired     = "El nombre es requerido"
	MsgPhoneRequired    = "El teléfono es requerido"
	MsgPhoneDigits      = "El teléfono debe tener 8 dígitos"
	MsgRoleInvalid      = "Seleccione un rol válido"
)

const MinPasswordLength = 6

// emailPart excludes every whitespace character, not only ASCII: vertical
// tab, Unicode separators and the byte order mark included.
const emailPart = `[^\s\x0B\p{Z}\x{FEFF}@]+`

var (
	emailPattern = regexp.MustCompile(`^` + emailPart + `@` + emailPart + `\.` + emailPart + `$`)
	phonePattern = regexp.MustCompile(`^[0-9]{8}$`)
)

// Rule validates a single field value.
type Rule func(value string) Result

func Email(value string) Result {
	if value == "" {
		return Fail(MsgEmailRequired)
	}
	if !emailPattern.MatchString(value) {
		return Fail(MsgEmailInvalid)
	}
	return OK()
}

func Password(value string) Result {
	if value == "" {
		return Fail(MsgPasswordRequired)
	}
	if utf8.RuneCountInString(value) < MinPasswordLength {
		return Fail(MsgPasswordShort)
	}
	return OK()
}

func Phone(value string) Result {
	if value == "" {
		return Fail(MsgPhoneRequired)
	}
	if !phonePattern.MatchString(value) {
		return Fail(MsgPhoneDigits)
	}
	return OK()
}

func Role(value string) Result {
	if !models.UserRole(value).Valid() {
		return Fail(MsgRoleInvalid)
	}
	return OK()
}

// Required rejects empty and whitespace-only values with message.
func Required(message string) Rule {
	return func(value string) Result {
		if strings.TrimSpace(value) == "" {
			return Fail(message)
		}
		return OK()
	}
}
