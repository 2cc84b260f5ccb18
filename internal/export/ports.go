package export

import (
	"context"

	"deliverynav/internal/core"
)

// Ports for outbound adapters.
type (
	// RecordWriter appends one activity record to an external sink.
	RecordWriter interface {
		Append(ctx context.Context, rec core.Record, identityToken string) (rowRef string, err error)
	}
)
