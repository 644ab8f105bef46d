package models

// NilGUID is the EEDM placeholder identifier sent by clients on create.
const NilGUID = "00000000-0000-0000-0000-000000000000"

// Resource is implemented by every DTO served by the API.
type Resource interface {
	Identifier() string
}

// Mutable is implemented by pointers to DTOs that accept writes.
type Mutable interface {
	SetIdentifier(id string)
}

// GUIDObject references another EEDM resource by its identifier.
type GUIDObject struct {
	ID string `json:"id" yaml:"id" validate:"required"`
}

// CodeItem holds the fields shared by most EEDM reference-data resources.
type CodeItem struct {
	ID          string `json:"id" yaml:"id"`
	Code        string `json:"code,omitempty" yaml:"code"`
	Title       string `json:"title,omitempty" yaml:"title"`
	Description string `json:"description,omitempty" yaml:"description"`
}

func (c CodeItem) Identifier() string {
	return c.ID
}
