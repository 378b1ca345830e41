package s3store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/Gaganb-30/cloud-store/internal/telemetry"
	"github.com/Gaganb-30/cloud-store/pkg/storage"
)

// InitMultipart begins a native S3 multipart upload for the direct variant
// and returns the upload ID.
func (p *Provider) InitMultipart(ctx context.Context, key string, tier storage.Tier) (string, error) {
	ctx, span := telemetry.StartSpan(ctx, "s3store.init_multipart")
	defer span.End()

	objKey := p.objectKey(key, tier)

	start := time.Now()
	result, err := p.client.CreateMultipartUpload(ctx, &s3.CreateMultipartUploadInput{
		Bucket: aws.String(p.bucket),
		Key:    aws.String(objKey),
	})
	p.observe("CreateMultipartUpload", start, err)
	if err != nil {
		return "", &storage.Error{Op: "initMultipart", Key: key, Cause: err}
	}

	uploadID := *result.UploadId
	p.uploadSessionsMu.Lock()
	p.uploadSessions[uploadID] = &multipartUpload{key: objKey, completedParts: make([]types.CompletedPart, 0)}
	p.uploadSessionsMu.Unlock()

	if p.metrics != nil {
		p.metrics.RecordActiveUpload("s3", 1)
	}

	return uploadID, nil
}

// SignPartUpload returns a presigned PUT URL valid for ttl that a client
// can use to upload one part directly to the object store.
func (p *Provider) SignPartUpload(ctx context.Context, key string, uploadID string, partNumber int, ttl time.Duration) (string, error) {
	objKey := p.objectKey(key, storage.TierHot)

	req, err := p.presigner.PresignUploadPart(ctx, &s3.UploadPartInput{
		Bucket:     aws.String(p.bucket),
		Key:        aws.String(objKey),
		UploadId:   aws.String(uploadID),
		PartNumber: aws.Int32(int32(partNumber)),
	}, s3.WithPresignExpires(ttl))
	if err != nil {
		return "", &storage.Error{Op: "signPartUpload", Key: key, Cause: err}
	}

	return req.URL, nil
}

// uploadPart uploads one part's bytes directly (used by the proxied-chunk
// emulation below).
func (p *Provider) uploadPart(ctx context.Context, uploadID string, partNumber int, data []byte) (string, error) {
	p.uploadSessionsMu.RLock()
	upload, ok := p.uploadSessions[uploadID]
	p.uploadSessionsMu.RUnlock()
	if !ok {
		return "", fmt.Errorf("s3store: upload session %s not found", uploadID)
	}

	start := time.Now()
	result, err := p.client.UploadPart(ctx, &s3.UploadPartInput{
		Bucket:     aws.String(p.bucket),
		Key:        aws.String(upload.key),
		UploadId:   aws.String(uploadID),
		PartNumber: aws.Int32(int32(partNumber)),
		Body:       bytes.NewReader(data),
	})
	p.observe("UploadPart", start, err)
	if err != nil {
		return "", fmt.Errorf("s3store: upload part %d: %w", partNumber, err)
	}
	if p.metrics != nil {
		p.metrics.RecordBytes("UploadPart", int64(len(data)))
	}

	etag := trimETagQuotes(*result.ETag)

	upload.mu.Lock()
	upload.completedParts = append(upload.completedParts, types.CompletedPart{
		ETag:       result.ETag,
		PartNumber: aws.Int32(int32(partNumber)),
	})
	upload.mu.Unlock()

	return etag, nil
}

// CompleteMultipart finalizes a multipart upload, assembling the given
// parts in ascending part-number order. Gaps or duplicates are rejected
// with a *storage.Error.
func (p *Provider) CompleteMultipart(ctx context.Context, key string, uploadID string, parts []storage.CompletedPart) (storage.WriteResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "s3store.complete_multipart")
	defer span.End()

	for i, part := range parts {
		if part.PartNumber != i+1 {
			return storage.WriteResult{}, &storage.Error{Op: "completeMultipart", Key: key, Cause: errors.New("parts must be supplied in ascending order with no gaps or duplicates")}
		}
	}

	completed := make([]types.CompletedPart, len(parts))
	for i, part := range parts {
		completed[i] = types.CompletedPart{
			PartNumber: aws.Int32(int32(part.PartNumber)),
			ETag:       aws.String(`"` + part.ETag + `"`),
		}
	}

	objKey := p.objectKey(key, storage.TierHot)

	start := time.Now()
	_, err := p.client.CompleteMultipartUpload(ctx, &s3.CompleteMultipartUploadInput{
		Bucket:          aws.String(p.bucket),
		Key:             aws.String(objKey),
		UploadId:        aws.String(uploadID),
		MultipartUpload: &types.CompletedMultipartUpload{Parts: completed},
	})
	p.observe("CompleteMultipartUpload", start, err)
	if err != nil {
		return storage.WriteResult{}, &storage.Error{Op: "completeMultipart", Key: key, Cause: err}
	}

	p.uploadSessionsMu.Lock()
	delete(p.uploadSessions, uploadID)
	p.uploadSessionsMu.Unlock()

	if p.metrics != nil {
		p.metrics.RecordActiveUpload("s3", -1)
	}

	meta, err := p.Metadata(ctx, key, storage.TierHot)
	if err != nil {
		return storage.WriteResult{Key: key, Tier: storage.TierHot}, nil
	}
	return storage.WriteResult{Key: key, Tier: storage.TierHot, Size: meta.Size}, nil
}

// AbortMultipart cancels an in-progress multipart upload. Idempotent: a
// NoSuchUpload response is treated as success.
func (p *Provider) AbortMultipart(ctx context.Context, key string, uploadID string) error {
	p.uploadSessionsMu.RLock()
	upload, ok := p.uploadSessions[uploadID]
	p.uploadSessionsMu.RUnlock()

	objKey := p.objectKey(key, storage.TierHot)
	if ok {
		objKey = upload.key
	}

	start := time.Now()
	_, err := p.client.AbortMultipartUpload(ctx, &s3.AbortMultipartUploadInput{
		Bucket:   aws.String(p.bucket),
		Key:      aws.String(objKey),
		UploadId: aws.String(uploadID),
	})
	p.observe("AbortMultipartUpload", start, err)
	if err != nil {
		var noSuchUpload *types.NoSuchUpload
		if !errors.As(err, &noSuchUpload) {
			return &storage.Error{Op: "abortMultipart", Key: key, Cause: err}
		}
	}

	p.uploadSessionsMu.Lock()
	delete(p.uploadSessions, uploadID)
	p.uploadSessionsMu.Unlock()

	if p.metrics != nil {
		p.metrics.RecordActiveUpload("s3", -1)
	}

	return nil
}

// WriteChunk uploads one chunk of a proxied upload as a part of a
// per-session multipart upload created on first use, so the local disk and
// S3 backends share the same chunk/Assemble vocabulary even though S3 has
// a native multipart protocol underneath.
func (p *Provider) WriteChunk(ctx context.Context, sessionID string, index int, r io.Reader) error {
	uploadID, key, err := p.sessionUpload(ctx, sessionID)
	if err != nil {
		return err
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return &storage.Error{Op: "writeChunk", Key: key, Cause: err}
	}

	// S3 multipart part numbers are 1-based; chunk indices are 0-based.
	_, err = p.uploadPart(ctx, uploadID, index+1, data)
	if err != nil {
		return &storage.Error{Op: "writeChunk", Key: key, Cause: err}
	}
	return nil
}

func (p *Provider) sessionUpload(ctx context.Context, sessionID string) (uploadID, key string, err error) {
	p.chunkUploadsMu.RLock()
	uploadID, ok := p.chunkUploads[sessionID]
	p.chunkUploadsMu.RUnlock()
	if ok {
		p.uploadSessionsMu.RLock()
		upload := p.uploadSessions[uploadID]
		p.uploadSessionsMu.RUnlock()
		if upload != nil {
			return uploadID, upload.key, nil
		}
	}

	tempKey := "temp/" + sessionID
	uploadID, err = p.InitMultipart(ctx, tempKey, storage.TierHot)
	if err != nil {
		return "", "", err
	}

	p.chunkUploadsMu.Lock()
	p.chunkUploads[sessionID] = uploadID
	p.chunkUploadsMu.Unlock()

	return uploadID, p.objectKey(tempKey, storage.TierHot), nil
}

// Assemble completes the per-session multipart upload into finalKey on
// tier. Chunk part ETags accumulated by WriteChunk are submitted in order.
func (p *Provider) Assemble(ctx context.Context, sessionID, finalKey string, totalChunks int, tier storage.Tier) (storage.WriteResult, error) {
	p.chunkUploadsMu.RLock()
	uploadID, ok := p.chunkUploads[sessionID]
	p.chunkUploadsMu.RUnlock()

	if !ok {
		// No chunks were ever written (e.g. a zero-byte upload): write
		// an empty object directly.
		return p.Write(ctx, finalKey, bytes.NewReader(nil), tier)
	}

	p.uploadSessionsMu.RLock()
	upload := p.uploadSessions[uploadID]
	p.uploadSessionsMu.RUnlock()
	if upload == nil {
		return storage.WriteResult{}, &storage.Error{Op: "assemble", Key: finalKey, Cause: fmt.Errorf("upload session %s not found", uploadID)}
	}

	upload.mu.Lock()
	parts := make([]storage.CompletedPart, len(upload.completedParts))
	for i, cp := range upload.completedParts {
		parts[i] = storage.CompletedPart{PartNumber: int(*cp.PartNumber), ETag: trimETagQuotes(*cp.ETag)}
	}
	upload.mu.Unlock()

	// Retarget the multipart upload's recorded key to the caller's final
	// key: CompleteMultipart uses p.objectKey(key, tier) to address the
	// object, but the multipart upload itself was created against the
	// temp key. S3 requires Complete to target the same key it was
	// created against, so route through the original temp key and then
	// migrate into place.
	result, err := p.completeAgainstKey(ctx, upload.key, uploadID, parts)
	if err != nil {
		return storage.WriteResult{}, err
	}

	// result.Key is the fully-qualified temp key; copy it to finalKey on
	// tier, then remove the temp object.
	dstKey := p.objectKey(finalKey, tier)
	if _, err := p.client.CopyObject(ctx, &s3.CopyObjectInput{
		Bucket:     aws.String(p.bucket),
		CopySource: aws.String(p.bucket + "/" + result.Key),
		Key:        aws.String(dstKey),
	}); err != nil {
		return storage.WriteResult{}, &storage.Error{Op: "assemble", Key: finalKey, Cause: err}
	}
	_, _ = p.client.DeleteObject(ctx, &s3.DeleteObjectInput{Bucket: aws.String(p.bucket), Key: aws.String(result.Key)})

	p.chunkUploadsMu.Lock()
	delete(p.chunkUploads, sessionID)
	p.chunkUploadsMu.Unlock()

	return storage.WriteResult{Key: finalKey, Tier: tier, Size: result.Size}, nil
}

func (p *Provider) completeAgainstKey(ctx context.Context, objKey, uploadID string, parts []storage.CompletedPart) (storage.WriteResult, error) {
	sorted := make([]storage.CompletedPart, len(parts))
	copy(sorted, parts)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].PartNumber < sorted[j].PartNumber })

	completed := make([]types.CompletedPart, len(sorted))
	for i, part := range sorted {
		completed[i] = types.CompletedPart{
			PartNumber: aws.Int32(int32(part.PartNumber)),
			ETag:       aws.String(`"` + part.ETag + `"`),
		}
	}

	start := time.Now()
	_, err := p.client.CompleteMultipartUpload(ctx, &s3.CompleteMultipartUploadInput{
		Bucket:          aws.String(p.bucket),
		Key:             aws.String(objKey),
		UploadId:        aws.String(uploadID),
		MultipartUpload: &types.CompletedMultipartUpload{Parts: completed},
	})
	p.observe("CompleteMultipartUpload", start, err)
	if err != nil {
		return storage.WriteResult{}, &storage.Error{Op: "assemble", Key: objKey, Cause: err}
	}

	p.uploadSessionsMu.Lock()
	delete(p.uploadSessions, uploadID)
	p.uploadSessionsMu.Unlock()

	head, err := p.client.HeadObject(ctx, &s3.HeadObjectInput{Bucket: aws.String(p.bucket), Key: aws.String(objKey)})
	var size int64
	if err == nil && head.ContentLength != nil {
		size = *head.ContentLength
	}

	return storage.WriteResult{Key: objKey, Size: size}, nil
}

// DeleteChunks removes any temp multipart state left behind for a session
// that never completed, aborting the underlying multipart upload.
func (p *Provider) DeleteChunks(ctx context.Context, sessionID string) error {
	p.chunkUploadsMu.RLock()
	uploadID, ok := p.chunkUploads[sessionID]
	p.chunkUploadsMu.RUnlock()
	if !ok {
		return nil
	}

	tempKey := "temp/" + sessionID
	if err := p.AbortMultipart(ctx, tempKey, uploadID); err != nil {
		return err
	}

	p.chunkUploadsMu.Lock()
	delete(p.chunkUploads, sessionID)
	p.chunkUploadsMu.Unlock()

	return nil
}

var _ storage.Provider = (*Provider)(nil)
