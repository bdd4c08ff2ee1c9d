package health

import "context"

// CorpusReader reports the loaded corpus size.
type CorpusReader interface {
	Len() int
}

// CachePinger checks query cache availability.
type CachePinger interface {
	Ping(ctx context.Context) error
}
