package interfaces

// KeyGenerator produces collision-resistant storage keys. It is invoked
// again after every collision and must not return a previously issued
// value for the same file within one request.
type KeyGenerator interface {
	Key(extension string) string
}
