package validation

const (
	FieldEmail       = "email"
	FieldPassword    = "password"
	FieldDisplayName = "display_name"
	FieldPhone       = "phone"
	FieldRole        = "role"
)

func LoginForm() *Form {
	return NewForm(
		Field{Name: FieldEmail, Rule: Email},
		Field{Name: FieldPassword, Rule: Password},
	)
}

func CreateUserForm() *Form {
	return NewForm(
		Field{Name: FieldEmail, Rule: Email},
		Field{Name: FieldPassword, Rule: Password},
		Field{Name: FieldDisplayName, Rule: Required(MsgNameRequired)},
		Field{Name: FieldPhone, Rule: Phone},
		Field{Name: FieldRole, Rule: Role},
	)
}
