package archive

import "github.com/okian/hoopstate/pkg/logger"

// Option applies a configuration option to the Archive.
type Option func(*Archive)

// WithLogger sets the archive logger.
func WithLogger(l logger.Logger) Option {
	return func(a *Archive) {
		if l != nil {
			a.log = l
		}
	}
}

// WithMaxOpenConns bounds the connection pool. It is ignored for
// in-memory SQLite, which always uses a single connection.
func WithMaxOpenConns(n int) Option {
	return func(a *Archive) {
		if n > 0 {
			a.maxOpen = n
		}
	}
}
