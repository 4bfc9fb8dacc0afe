package models

// Credential is a login identity. It is held in memory only for the
// duration of a login flow and never persisted.
type Credential struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// String renders the credential with the password redacted so accidental
// formatting never leaks it.
func (c Credential) String() string {
	return c.Username + ":[redacted]"
}
