package s3store

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// enqueueDeletion queues a fully-qualified object key for batched removal,
// triggering an immediate flush once the batch size is reached.
func (p *Provider) enqueueDeletion(objKey string) {
	p.deletionQueue.mu.Lock()
	p.deletionQueue.queue = append(p.deletionQueue.queue, queuedDeletion{key: objKey})
	shouldFlush := uint(len(p.deletionQueue.queue)) >= p.deletionQueue.batchSize
	p.deletionQueue.mu.Unlock()

	if shouldFlush {
		select {
		case p.deletionQueue.flushCh <- struct{}{}:
		default:
		}
	}
}

// deletionWorker periodically batches queued deletes into DeleteObjects
// calls. It exits when Close's stop signal fires, flushing whatever
// remains first.
func (p *Provider) deletionWorker() {
	defer close(p.deletionQueue.doneCh)

	ticker := time.NewTicker(p.deletionQueue.flushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			p.flushDeletions(context.Background())
		case <-p.deletionQueue.flushCh:
			p.flushDeletions(context.Background())
		case <-p.deletionQueue.stopCh:
			p.flushDeletions(context.Background())
			return
		}
	}
}

func (p *Provider) flushDeletions(ctx context.Context) {
	p.deletionQueue.mu.Lock()
	if len(p.deletionQueue.queue) == 0 {
		p.deletionQueue.mu.Unlock()
		return
	}
	batch := p.deletionQueue.queue
	p.deletionQueue.queue = make([]queuedDeletion, 0, p.deletionQueue.batchSize)
	p.deletionQueue.mu.Unlock()

	// S3 DeleteObjects accepts at most 1000 keys per call.
	const maxDeleteObjects = 1000
	for start := 0; start < len(batch); start += maxDeleteObjects {
		end := start + maxDeleteObjects
		if end > len(batch) {
			end = len(batch)
		}
		chunk := batch[start:end]

		objects := make([]types.ObjectIdentifier, len(chunk))
		for i, d := range chunk {
			objects[i] = types.ObjectIdentifier{Key: aws.String(d.key)}
		}

		opStart := time.Now()
		_, err := p.client.DeleteObjects(ctx, &s3.DeleteObjectsInput{
			Bucket: aws.String(p.bucket),
			Delete: &types.Delete{Objects: objects},
		})
		p.observe("DeleteObjects", opStart, err)
	}
}

// Close flushes any pending buffered deletions and stops the background
// worker. Safe to call multiple times.
func (p *Provider) Close() error {
	if !p.deletionQueue.enabled {
		return nil
	}

	p.deletionQueue.closeOnce.Do(func() {
		close(p.deletionQueue.stopCh)
		select {
		case <-p.deletionQueue.doneCh:
		case <-time.After(p.deletionQueue.shutdownTimeout):
		}
	})
	return nil
}
