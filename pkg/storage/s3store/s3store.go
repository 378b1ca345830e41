// Package s3store implements storage.Provider against an S3-compatible
// object store, with hot/cold tiers mapped to key prefixes and native
// multipart upload support for the direct upload variant.
package s3store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/Gaganb-30/cloud-store/internal/telemetry"
	"github.com/Gaganb-30/cloud-store/pkg/storage"
)

// Metrics is the subset of Prometheus instrumentation the S3 provider
// reports through, matching pkg/metrics's zero-overhead "nil means
// disabled" convention.
type Metrics interface {
	ObserveOperation(op string, d time.Duration, err error)
	RecordBytes(op string, n int64)
	RecordActiveUpload(backend string, delta int)
}

// retryConfig holds retry settings for transient S3 errors.
type retryConfig struct {
	maxRetries        uint
	initialBackoff    time.Duration
	maxBackoff        time.Duration
	backoffMultiplier float64
}

// multipartUpload tracks in-flight part ETags for one multipart session.
type multipartUpload struct {
	key            string
	completedParts []types.CompletedPart
	mu             sync.Mutex
}

// Provider implements storage.Provider against S3 (or an S3-compatible
// endpoint such as MinIO / R2). Hot and cold tiers are key prefixes under
// an optional base KeyPrefix.
type Provider struct {
	client    *s3.Client
	presigner *s3.PresignClient
	bucket    string
	keyPrefix string
	partSize  int64

	uploadSessions   map[string]*multipartUpload
	uploadSessionsMu sync.RWMutex

	// chunkUploads maps a proxied upload session ID to the multipart
	// upload ID backing its chunks (see WriteChunk/Assemble).
	chunkUploads   map[string]string
	chunkUploadsMu sync.RWMutex

	maxParallelUploads uint
	retry              retryConfig
	metrics            Metrics

	cachedStats struct {
		mu        sync.RWMutex
		stats     Stats
		valid     bool
		timestamp time.Time
		ttl       time.Duration
	}

	deletionQueue struct {
		enabled         bool
		queue           []queuedDeletion
		mu              sync.Mutex
		flushInterval   time.Duration
		batchSize       uint
		shutdownTimeout time.Duration
		stopCh          chan struct{}
		flushCh         chan struct{}
		doneCh          chan struct{}
		closeOnce       sync.Once
	}
}

type queuedDeletion struct {
	key string
}

// Stats summarizes approximate usage of the bucket (or the portion under
// KeyPrefix), computed by listing objects since S3 has no native quota
// counter.
type Stats struct {
	ObjectCount uint64
	TotalBytes  uint64
}

// Config configures a Provider.
type Config struct {
	Client *s3.Client
	Bucket string

	// KeyPrefix is an optional base prefix applied before the hot/cold
	// tier prefix, e.g. "filevault/" -> "filevault/hot/...".
	KeyPrefix string

	// PartSize controls the size of each multipart part. Must be between
	// 5MiB and 5GiB per S3 limits. Default: 25MiB.
	PartSize int64

	MaxParallelUploads uint
	StatsCacheTTL      time.Duration
	Metrics            Metrics

	BufferedDeletionEnabled bool
	DeletionFlushInterval   time.Duration
	DeletionBatchSize       uint
	DeletionShutdownTimeout time.Duration

	MaxRetries        uint
	InitialBackoff    time.Duration
	MaxBackoff        time.Duration
	BackoffMultiplier float64
}

const (
	minPartSize = 5 * 1024 * 1024
	maxPartSize = 5 * 1024 * 1024 * 1024
)

// NewClientFromConfig builds an S3 client from discrete connection
// parameters, for deployments that configure FileVault via flat env vars
// rather than assuming ambient AWS credential discovery.
func NewClientFromConfig(ctx context.Context, endpoint, region, accessKeyID, secretAccessKey string, forcePathStyle bool) (*s3.Client, error) {
	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(accessKeyID, secretAccessKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("s3store: load AWS config: %w", err)
	}

	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = &endpoint
		}
		o.UsePathStyle = forcePathStyle
	}), nil
}

// New creates an S3-backed storage.Provider. The bucket must already
// exist; this verifies access via HeadBucket but does not create it.
func New(ctx context.Context, cfg Config) (*Provider, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if cfg.Client == nil {
		return nil, fmt.Errorf("s3store: client is required")
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3store: bucket is required")
	}

	partSize := cfg.PartSize
	if partSize == 0 {
		partSize = 25 * 1024 * 1024
	}
	if partSize < minPartSize {
		return nil, fmt.Errorf("s3store: part size must be at least 5MiB, got %d", partSize)
	}
	if partSize > maxPartSize {
		return nil, fmt.Errorf("s3store: part size must be at most 5GiB, got %d", partSize)
	}

	maxParallelUploads := cfg.MaxParallelUploads
	if maxParallelUploads == 0 {
		maxParallelUploads = 4
	}

	if _, err := cfg.Client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(cfg.Bucket)}); err != nil {
		return nil, fmt.Errorf("s3store: access bucket %q: %w", cfg.Bucket, err)
	}

	statsCacheTTL := cfg.StatsCacheTTL
	if statsCacheTTL == 0 {
		statsCacheTTL = 5 * time.Minute
	}

	deletionFlushInterval := cfg.DeletionFlushInterval
	if deletionFlushInterval == 0 {
		deletionFlushInterval = 2 * time.Second
	}
	deletionBatchSize := cfg.DeletionBatchSize
	if deletionBatchSize == 0 {
		deletionBatchSize = 100
	}
	deletionShutdownTimeout := cfg.DeletionShutdownTimeout
	if deletionShutdownTimeout == 0 {
		deletionShutdownTimeout = 60 * time.Second
	}

	maxRetries := cfg.MaxRetries
	if maxRetries == 0 {
		maxRetries = 3
	}
	initialBackoff := cfg.InitialBackoff
	if initialBackoff == 0 {
		initialBackoff = 100 * time.Millisecond
	}
	maxBackoff := cfg.MaxBackoff
	if maxBackoff == 0 {
		maxBackoff = 2 * time.Second
	}
	backoffMultiplier := cfg.BackoffMultiplier
	if backoffMultiplier == 0 {
		backoffMultiplier = 2.0
	}

	p := &Provider{
		client:             cfg.Client,
		presigner:          s3.NewPresignClient(cfg.Client),
		bucket:             cfg.Bucket,
		keyPrefix:          cfg.KeyPrefix,
		partSize:           partSize,
		maxParallelUploads: maxParallelUploads,
		uploadSessions:     make(map[string]*multipartUpload),
		chunkUploads:       make(map[string]string),
		metrics:            cfg.Metrics,
		retry: retryConfig{
			maxRetries:        maxRetries,
			initialBackoff:    initialBackoff,
			maxBackoff:        maxBackoff,
			backoffMultiplier: backoffMultiplier,
		},
	}
	p.cachedStats.ttl = statsCacheTTL

	p.deletionQueue.enabled = cfg.BufferedDeletionEnabled
	p.deletionQueue.flushInterval = deletionFlushInterval
	p.deletionQueue.batchSize = deletionBatchSize
	p.deletionQueue.shutdownTimeout = deletionShutdownTimeout
	p.deletionQueue.queue = make([]queuedDeletion, 0, deletionBatchSize)
	p.deletionQueue.stopCh = make(chan struct{})
	p.deletionQueue.flushCh = make(chan struct{}, 1)
	p.deletionQueue.doneCh = make(chan struct{})

	if p.deletionQueue.enabled {
		go p.deletionWorker()
	}

	return p, nil
}

// objectKey returns the fully-qualified S3 key for a tier-relative key. A
// key that already carries a tier prefix is not given a second one, per
// the double-prefix-detection rule; only the base KeyPrefix is prepended.
func (p *Provider) objectKey(key string, tier storage.Tier) string {
	if storage.HasTierPrefix(key) {
		if p.keyPrefix != "" {
			return p.keyPrefix + key
		}
		return key
	}

	qualified := string(tier) + "/" + key
	if p.keyPrefix != "" {
		return p.keyPrefix + qualified
	}
	return qualified
}

func (p *Provider) observe(op string, start time.Time, err error) {
	if p.metrics != nil {
		p.metrics.ObserveOperation(op, time.Since(start), err)
	}
}

// Write uploads r as a single object (no multipart) to key on tier.
func (p *Provider) Write(ctx context.Context, key string, r io.Reader, tier storage.Tier) (storage.WriteResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "s3store.write")
	defer span.End()

	data, err := io.ReadAll(r)
	if err != nil {
		return storage.WriteResult{}, &storage.Error{Op: "write", Key: key, Cause: err}
	}

	objKey := p.objectKey(key, tier)
	start := time.Now()
	_, err = p.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(p.bucket),
		Key:    aws.String(objKey),
		Body:   bytes.NewReader(data),
	})
	p.observe("PutObject", start, err)
	if err != nil {
		return storage.WriteResult{}, &storage.Error{Op: "write", Key: key, Cause: err}
	}

	return storage.WriteResult{Key: key, Tier: tier, Size: int64(len(data))}, nil
}

// Read returns the whole object at key on tier.
func (p *Provider) Read(ctx context.Context, key string, tier storage.Tier) ([]byte, error) {
	rc, err := p.Stream(ctx, key, tier, nil)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// Stream returns a reader for key on tier, optionally scoped to a byte
// range via the HTTP Range header.
func (p *Provider) Stream(ctx context.Context, key string, tier storage.Tier, rng *storage.Range) (io.ReadCloser, error) {
	objKey := p.objectKey(key, tier)

	input := &s3.GetObjectInput{
		Bucket: aws.String(p.bucket),
		Key:    aws.String(objKey),
	}
	if rng != nil {
		end := rng.Offset + rng.Length - 1
		input.Range = aws.String(fmt.Sprintf("bytes=%d-%d", rng.Offset, end))
	}

	start := time.Now()
	out, err := p.client.GetObject(ctx, input)
	p.observe("GetObject", start, err)
	if err != nil {
		return nil, &storage.Error{Op: "stream", Key: key, Cause: err}
	}

	return out.Body, nil
}

// Delete removes the object at key on tier, or enqueues it for batched
// removal when buffered deletion is enabled.
func (p *Provider) Delete(ctx context.Context, key string, tier storage.Tier) (bool, error) {
	objKey := p.objectKey(key, tier)

	if p.deletionQueue.enabled {
		p.enqueueDeletion(objKey)
		return true, nil
	}

	start := time.Now()
	_, err := p.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(p.bucket),
		Key:    aws.String(objKey),
	})
	p.observe("DeleteObject", start, err)
	if err != nil {
		return false, &storage.Error{Op: "delete", Key: key, Cause: err}
	}
	return true, nil
}

// Exists reports whether an object is present at key on tier.
func (p *Provider) Exists(ctx context.Context, key string, tier storage.Tier) (bool, error) {
	_, err := p.Metadata(ctx, key, tier)
	if err != nil {
		var notFound *types.NotFound
		if errors.As(err, &notFound) {
			return false, nil
		}
		var noSuchKey *types.NoSuchKey
		if errors.As(err, &noSuchKey) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Metadata returns size/content-type/etag/modtime for the object at key on
// tier without reading its body.
func (p *Provider) Metadata(ctx context.Context, key string, tier storage.Tier) (storage.ObjectMetadata, error) {
	objKey := p.objectKey(key, tier)

	start := time.Now()
	out, err := p.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(p.bucket),
		Key:    aws.String(objKey),
	})
	p.observe("HeadObject", start, err)
	if err != nil {
		return storage.ObjectMetadata{}, &storage.Error{Op: "metadata", Key: key, Cause: err}
	}

	meta := storage.ObjectMetadata{}
	if out.ContentLength != nil {
		meta.Size = *out.ContentLength
	}
	if out.ContentType != nil {
		meta.ContentType = *out.ContentType
	}
	if out.ETag != nil {
		meta.ETag = trimETagQuotes(*out.ETag)
	}
	if out.LastModified != nil {
		meta.ModifiedAt = *out.LastModified
	}
	return meta, nil
}

// Migrate copies the object from one tier prefix to the other via
// CopyObject, then removes the source. On copy failure the source is
// untouched.
func (p *Provider) Migrate(ctx context.Context, key string, from, to storage.Tier) error {
	srcKey := p.objectKey(key, from)
	dstKey := p.objectKey(key, to)

	start := time.Now()
	_, err := p.client.CopyObject(ctx, &s3.CopyObjectInput{
		Bucket:     aws.String(p.bucket),
		CopySource: aws.String(p.bucket + "/" + srcKey),
		Key:        aws.String(dstKey),
	})
	p.observe("CopyObject", start, err)
	if err != nil {
		return &storage.Error{Op: "migrate", Key: key, Cause: err}
	}

	if _, err := p.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(p.bucket),
		Key:    aws.String(srcKey),
	}); err != nil {
		return &storage.Error{Op: "migrate", Key: key, Cause: err}
	}

	return nil
}

// GetStorageStats returns TTL-cached approximate usage for the bucket
// (under KeyPrefix), computed by listing objects since S3 has no native
// quota counter.
func (p *Provider) GetStorageStats(ctx context.Context) (Stats, error) {
	p.cachedStats.mu.RLock()
	if p.cachedStats.valid && time.Since(p.cachedStats.timestamp) < p.cachedStats.ttl {
		cached := p.cachedStats.stats
		p.cachedStats.mu.RUnlock()
		return cached, nil
	}
	p.cachedStats.mu.RUnlock()

	var totalSize, objectCount uint64
	paginator := s3.NewListObjectsV2Paginator(p.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(p.bucket),
		Prefix: aws.String(p.keyPrefix),
	})

	for paginator.HasMorePages() {
		if err := ctx.Err(); err != nil {
			return Stats{}, err
		}
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return Stats{}, fmt.Errorf("s3store: list objects: %w", err)
		}
		for _, obj := range page.Contents {
			if obj.Size != nil {
				totalSize += uint64(*obj.Size)
			}
			objectCount++
		}
	}

	computed := Stats{ObjectCount: objectCount, TotalBytes: totalSize}

	p.cachedStats.mu.Lock()
	p.cachedStats.stats = computed
	p.cachedStats.valid = true
	p.cachedStats.timestamp = time.Now()
	p.cachedStats.mu.Unlock()

	return computed, nil
}

func trimETagQuotes(etag string) string {
	if len(etag) >= 2 && etag[0] == '"' && etag[len(etag)-1] == '"' {
		return etag[1 : len(etag)-1]
	}
	return etag
}

