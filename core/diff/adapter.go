package diff

// Adapter defines the entity-specific logic for a two-source diff.
// The engine only deals with opaque items and keys; adapters decide how to
// identify, name, and compare them.
type Adapter interface {
	// LocalKey returns the entity key for a local item.
	LocalKey(item LocalItem) string

	// RemoteKey returns the entity key for a remote item.
	RemoteKey(item RemoteItem) string

	// ResolveName returns the display name for an entity given whichever
	// items are available. Either item may be nil.
	ResolveName(local LocalItem, remote RemoteItem) string

	// CompareFields compares mapped fields between both items and returns a
	// list of mismatch descriptions. Both items are guaranteed non-nil.
	CompareFields(local LocalItem, remote RemoteItem) []string
}
