package kv

// Store is the shared database the executors run against. Implementations
// must be safe for concurrent use; callers never wrap Store operations in
// additional locks.
type Store interface {
	// Get returns the record stored under key, or (nil, nil) when the key
	// does not exist.
	Get(key string) (Record, error)
	// Put stores rec under key, overwriting any previous record.
	Put(key string, rec Record) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(key string) error
	// Close releases the store resources.
	Close() error
}
