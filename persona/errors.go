package persona

import "errors"

// Sentinel errors for persona definitions and catalogs.
var (
	ErrPersonaNotFound = errors.New("persona not found")
	ErrPersonaExists   = errors.New("persona already defined")
	ErrEmptyPersonaID  = errors.New("persona id is empty")
	ErrEmptyCatalog    = errors.New("catalog has no personas")
	ErrInvalidPersona  = errors.New("invalid persona")
)
