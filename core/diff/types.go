package diff

// LocalItem represents a locally persisted entity with arbitrary fields.
// Adapters define the concrete type.
type LocalItem any

// RemoteItem represents a provider-side entity with arbitrary fields.
// Adapters define the concrete type.
type RemoteItem any

// Result represents the diff output for a single entity key.
type Result struct {
	// ID is the unique identifier for the entity.
	ID string `json:"id"`

	// Name is the display name of the entity.
	Name string `json:"name"`

	// LocalPresent indicates whether the entity exists locally.
	LocalPresent bool `json:"local_present"`

	// RemotePresent indicates whether the entity exists at the provider.
	RemotePresent bool `json:"remote_present"`

	// Mismatch contains descriptions of field mismatches between the two
	// sides. Each string names a field and both values,
	// e.g. "ttl: local=300 remote=1".
	Mismatch []string `json:"mismatch"`
}

// Summary provides aggregate counts for a diff.
type Summary struct {
	// Total is the number of unique entity keys across both sides.
	Total int `json:"total"`

	// MissingLocal counts entities present remotely but not locally.
	MissingLocal int `json:"missing_local"`

	// MissingRemote counts entities present locally but not remotely
	// (stale local rows).
	MissingRemote int `json:"missing_remote"`

	// Mismatches counts entities present on both sides with field
	// discrepancies.
	Mismatches int `json:"mismatches"`
}

// InSync reports whether the two sides are identical.
func (s Summary) InSync() bool {
	return s.MissingLocal == 0 && s.MissingRemote == 0 && s.Mismatches == 0
}
