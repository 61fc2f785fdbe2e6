package notification

import (
	"context"
	"time"
)

// ArchivedNotification is a raw delivery kept for audit. Every inbound
// notification is archived before any processing decision, including ones that
// later fail signature or parse checks.
type ArchivedNotification struct {
	Reference      string    `bson:"reference" json:"reference"`
	Kind           string    `bson:"kind" json:"kind"`
	SignatureValid bool      `bson:"signature_valid" json:"signature_valid"`
	Payload        []byte    `bson:"payload" json:"payload"`
	CorrelationID  string    `bson:"correlation_id" json:"correlation_id"`
	ReceivedAt     time.Time `bson:"received_at" json:"received_at"`
}

// ArchiveRepository stores raw notification deliveries
type ArchiveRepository interface {
	Archive(ctx context.Context, n *ArchivedNotification) error
	GetByReference(ctx context.Context, reference string, limit, offset int) ([]*ArchivedNotification, error)
	CountByReference(ctx context.Context, reference string) (int64, error)
}
