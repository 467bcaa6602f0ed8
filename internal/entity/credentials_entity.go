package entity

// Credentials are the three Trello fields one operator needs before any board command.
type Credentials struct {
	APIKey  string `yaml:"api_key" validate:"required,alphanum"`
	Token   string `yaml:"token" validate:"required,alphanum"`
	BoardID string `yaml:"board_id" validate:"required,alphanum"`
}

type LookupStatus string

const (
	LookupFound         LookupStatus = "found"
	LookupNotConfigured LookupStatus = "not_configured"
	LookupNotFound      LookupStatus = "not_found"
)

// Lookup is the outcome of a keyed read. Value is only meaningful when Status is LookupFound.
type Lookup[T any] struct {
	Status LookupStatus
	Value  T
}

func Found[T any](value T) Lookup[T] {
	return Lookup[T]{Status: LookupFound, Value: value}
}

func NotConfigured[T any]() Lookup[T] {
	return Lookup[T]{Status: LookupNotConfigured}
}

func NotFound[T any]() Lookup[T] {
	return Lookup[T]{Status: LookupNotFound}
}

func (l Lookup[T]) Ok() bool {
	return l.Status == LookupFound
}
