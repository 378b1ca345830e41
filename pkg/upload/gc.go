package upload

import (
	"context"
	"time"

	"github.com/Gaganb-30/cloud-store/internal/telemetry"
	"github.com/Gaganb-30/cloud-store/pkg/model"
)

// defaultGCBatchSize bounds how many expired sessions one GC pass
// reaps, matching the lifecycle workers' batching convention.
const defaultGCBatchSize = 100

// CollectExpiredSessions deletes temp chunks/aborts multipart uploads
// for sessions past ExpiresAt that never completed, then removes the
// session rows. Best-effort per item; one failure does not block the
// rest of the batch.
func (m *Manager) CollectExpiredSessions(ctx context.Context, now time.Time) (collected int, err error) {
	ctx, span := telemetry.StartSpan(ctx, "upload.collectExpiredSessions")
	defer span.End()

	sessions, err := m.store.ListExpiredSessions(ctx, now, defaultGCBatchSize)
	if err != nil {
		return 0, err
	}

	for _, sess := range sessions {
		switch sess.Variant {
		case model.VariantDirect:
			if sess.MultipartUploadID != "" {
				_ = m.storage.AbortMultipart(ctx, sess.StorageKey, sess.MultipartUploadID)
			}
		default:
			_ = m.storage.DeleteChunks(ctx, sess.SessionID)
		}

		if err := m.store.DeleteUploadSession(ctx, sess.SessionID); err != nil {
			continue
		}
		collected++
	}

	return collected, nil
}
