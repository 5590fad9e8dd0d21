package publisher

// Publisher represents a sink for accepted listing records
type Publisher interface {
	// Publish delivers one self-contained listing record
	Publish(message []byte) error

	// Close closes the publisher connection
	Close() error
}
