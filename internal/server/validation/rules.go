package validation

// Fixed messages for blank input. They differ from the pattern messages so a
// client can tell "missing" from "malformed".
const (
	EmailRequiredMessage    = "El email es obligatorio"
	PasswordRequiredMessage = "La contraseña es obligatoria"
)

// RuleConfig is the raw, unvalidated form of a rule as read from configuration.
type RuleConfig struct {
	Pattern string
	Message string
}

// Rules holds the two process-wide rules used during registration.
// It is read-only after construction.
type Rules struct {
	Email    *Rule
	Password *Rule
}

// NewRules compiles both rules, failing on the first invalid one. The email
// is matched trimmed; the password is matched exactly as it will be hashed.
func NewRules(email, password RuleConfig) (*Rules, error) {
	er, err := NewRule("email", email.Pattern, email.Message, EmailRequiredMessage, TrimSpace())
	if err != nil {
		return nil, err
	}

	pr, err := NewRule("password", password.Pattern, password.Message, PasswordRequiredMessage)
	if err != nil {
		return nil, err
	}

	return &Rules{Email: er, Password: pr}, nil
}
