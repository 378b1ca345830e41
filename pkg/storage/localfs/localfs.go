// Package localfs implements storage.Provider over a local filesystem
// hierarchy, with hot/cold tiers mapped to subdirectories.
package localfs

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/Gaganb-30/cloud-store/internal/telemetry"
	"github.com/Gaganb-30/cloud-store/pkg/storage"
)

// Metrics receives per-operation instrumentation. Implemented by
// *metrics.StorageMetrics; a nil Metrics is valid and every call site
// guards against it.
type Metrics interface {
	ObserveOperation(op string, d time.Duration, err error)
	RecordBytes(op string, n int64)
}

// Provider is a filesystem-backed storage.Provider. Hot and cold tiers are
// top-level directories under Root; chunks of a proxied upload live under
// temp/<sessionID>/chunk_<index>.
type Provider struct {
	mu      sync.RWMutex
	root    string
	closed  bool
	metrics Metrics
}

// Config configures a Provider.
type Config struct {
	// Root is the base directory all tiers and temp uploads live under.
	Root string

	// CreateDir creates Root (and the tier subdirectories) if missing.
	// Default: true.
	CreateDir bool

	DirMode  os.FileMode
	FileMode os.FileMode

	Metrics Metrics
}

// DefaultConfig returns the default configuration for the given root.
func DefaultConfig(root string) Config {
	return Config{
		Root:      root,
		CreateDir: true,
		DirMode:   0o755,
		FileMode:  0o644,
	}
}

// New creates a filesystem provider rooted at cfg.Root.
func New(cfg Config) (*Provider, error) {
	if cfg.Root == "" {
		return nil, errors.New("localfs: root path is required")
	}
	if cfg.DirMode == 0 {
		cfg.DirMode = 0o755
	}
	if cfg.FileMode == 0 {
		cfg.FileMode = 0o644
	}

	if cfg.CreateDir {
		if err := os.MkdirAll(cfg.Root, cfg.DirMode); err != nil {
			return nil, err
		}
		for _, tier := range []storage.Tier{storage.TierHot, storage.TierCold} {
			if err := os.MkdirAll(filepath.Join(cfg.Root, string(tier)), cfg.DirMode); err != nil {
				return nil, err
			}
		}
	}

	info, err := os.Stat(cfg.Root)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("localfs: root %q is not a directory", cfg.Root)
	}

	return &Provider{root: cfg.Root, metrics: cfg.Metrics}, nil
}

func (p *Provider) observe(op string, start time.Time, err error) {
	if p.metrics == nil {
		return
	}
	p.metrics.ObserveOperation(op, time.Since(start), err)
}

func (p *Provider) tierPath(tier storage.Tier, key string) string {
	return filepath.Join(p.root, string(tier), filepath.FromSlash(key))
}

func (p *Provider) chunkPath(sessionID string, index int) string {
	return filepath.Join(p.root, "temp", sessionID, fmt.Sprintf("chunk_%06d", index))
}

// Write stores r at key on the given tier, overwriting any existing object.
func (p *Provider) Write(ctx context.Context, key string, r io.Reader, tier storage.Tier) (result storage.WriteResult, err error) {
	ctx, span := telemetry.StartSpan(ctx, "localfs.write")
	defer span.End()

	start := time.Now()
	defer func() {
		p.observe("write", start, err)
		if err == nil && p.metrics != nil {
			p.metrics.RecordBytes("write", result.Size)
		}
	}()

	if err = ctx.Err(); err != nil {
		return storage.WriteResult{}, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		err = &storage.Error{Op: "write", Key: key, Cause: errors.New("provider closed")}
		return storage.WriteResult{}, err
	}

	path := p.tierPath(tier, key)
	size, writeErr := atomicWrite(path, r)
	if writeErr != nil {
		err = &storage.Error{Op: "write", Key: key, Cause: writeErr}
		return storage.WriteResult{}, err
	}

	return storage.WriteResult{Key: key, Tier: tier, Size: size}, nil
}

func atomicWrite(path string, r io.Reader) (int64, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return 0, err
	}

	tmpPath := path + ".tmp"
	f, err := os.OpenFile(tmpPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return 0, err
	}

	n, copyErr := io.Copy(f, r)
	closeErr := f.Close()
	if copyErr != nil || closeErr != nil {
		os.Remove(tmpPath)
		if copyErr != nil {
			return 0, copyErr
		}
		return 0, closeErr
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return 0, err
	}

	return n, nil
}

// Read returns the whole object at key.
func (p *Provider) Read(ctx context.Context, key string, tier storage.Tier) (data []byte, err error) {
	start := time.Now()
	defer func() {
		p.observe("read", start, err)
		if err == nil && p.metrics != nil {
			p.metrics.RecordBytes("read", int64(len(data)))
		}
	}()

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		err = &storage.Error{Op: "read", Key: key, Cause: errors.New("provider closed")}
		return nil, err
	}

	data, err = os.ReadFile(p.tierPath(tier, key))
	if err != nil {
		if os.IsNotExist(err) {
			err = &storage.Error{Op: "read", Key: key, Cause: os.ErrNotExist}
			return nil, err
		}
		err = &storage.Error{Op: "read", Key: key, Cause: err}
		return nil, err
	}
	return data, nil
}

// Stream returns a reader for key, optionally restricted to a byte range.
func (p *Provider) Stream(ctx context.Context, key string, tier storage.Tier, rng *storage.Range) (io.ReadCloser, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return nil, &storage.Error{Op: "stream", Key: key, Cause: errors.New("provider closed")}
	}

	path := p.tierPath(tier, key)
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &storage.Error{Op: "stream", Key: key, Cause: os.ErrNotExist}
		}
		return nil, &storage.Error{Op: "stream", Key: key, Cause: err}
	}

	if rng == nil {
		return f, nil
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, &storage.Error{Op: "stream", Key: key, Cause: err}
	}
	if rng.Offset < 0 || rng.Offset >= info.Size() {
		f.Close()
		return nil, &storage.Error{Op: "stream", Key: key, Cause: errors.New("range not satisfiable")}
	}
	if _, err := f.Seek(rng.Offset, io.SeekStart); err != nil {
		f.Close()
		return nil, &storage.Error{Op: "stream", Key: key, Cause: err}
	}

	length := rng.Length
	if rng.Offset+length > info.Size() || length <= 0 {
		length = info.Size() - rng.Offset
	}

	return &limitedReadCloser{r: io.LimitReader(f, length), c: f}, nil
}

type limitedReadCloser struct {
	r io.Reader
	c io.Closer
}

func (l *limitedReadCloser) Read(p []byte) (int, error) { return l.r.Read(p) }
func (l *limitedReadCloser) Close() error               { return l.c.Close() }

// Delete removes the object at key on tier. Returns true once the object
// no longer exists, whether this call removed it or it was already gone.
func (p *Provider) Delete(ctx context.Context, key string, tier storage.Tier) (ok bool, err error) {
	start := time.Now()
	defer func() { p.observe("delete", start, err) }()

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		err = &storage.Error{Op: "delete", Key: key, Cause: errors.New("provider closed")}
		return false, err
	}

	path := p.tierPath(tier, key)
	rmErr := os.Remove(path)
	if rmErr != nil && !os.IsNotExist(rmErr) {
		err = &storage.Error{Op: "delete", Key: key, Cause: rmErr}
		return false, err
	}

	p.cleanEmptyDirs(filepath.Dir(path), filepath.Join(p.root, string(tier)))
	return true, nil
}

func (p *Provider) cleanEmptyDirs(dir, stopAt string) {
	for dir != stopAt && strings.HasPrefix(dir, stopAt) {
		if err := os.Remove(dir); err != nil {
			break
		}
		dir = filepath.Dir(dir)
	}
}

// Exists reports whether an object is present at key on tier.
func (p *Provider) Exists(ctx context.Context, key string, tier storage.Tier) (bool, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	_, err := os.Stat(p.tierPath(tier, key))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, &storage.Error{Op: "exists", Key: key, Cause: err}
}

// Metadata returns size/modtime for the object at key on tier.
func (p *Provider) Metadata(ctx context.Context, key string, tier storage.Tier) (storage.ObjectMetadata, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	info, err := os.Stat(p.tierPath(tier, key))
	if err != nil {
		if os.IsNotExist(err) {
			return storage.ObjectMetadata{}, &storage.Error{Op: "metadata", Key: key, Cause: os.ErrNotExist}
		}
		return storage.ObjectMetadata{}, &storage.Error{Op: "metadata", Key: key, Cause: err}
	}

	return storage.ObjectMetadata{
		Size:        info.Size(),
		ContentType: "application/octet-stream",
		ModifiedAt:  info.ModTime(),
	}, nil
}

// Migrate moves the object at key from one tier to the other, leaving
// exactly one copy on success. On failure the source tier is untouched.
func (p *Provider) Migrate(ctx context.Context, key string, from, to storage.Tier) (err error) {
	start := time.Now()
	defer func() { p.observe("migrate", start, err) }()

	p.mu.Lock()
	defer p.mu.Unlock()

	srcPath := p.tierPath(from, key)
	dstPath := p.tierPath(to, key)

	if err := os.MkdirAll(filepath.Dir(dstPath), 0o755); err != nil {
		return &storage.Error{Op: "migrate", Key: key, Cause: err}
	}

	if err := copyFile(srcPath, dstPath); err != nil {
		return &storage.Error{Op: "migrate", Key: key, Cause: err}
	}

	if err := os.Remove(srcPath); err != nil {
		// Source copy must remain intact on failure; a failed removal
		// here leaves two copies, which a later retry of migrate will
		// simply overwrite and retry removing.
		return &storage.Error{Op: "migrate", Key: key, Cause: err}
	}

	p.cleanEmptyDirs(filepath.Dir(srcPath), filepath.Join(p.root, string(from)))
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	tmp := dst + ".tmp"
	out, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(tmp)
		return err
	}
	if err := out.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, dst)
}

// WriteChunk stores one chunk of a proxied upload session.
func (p *Provider) WriteChunk(ctx context.Context, sessionID string, index int, r io.Reader) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	path := p.chunkPath(sessionID, index)
	if _, err := atomicWrite(path, r); err != nil {
		return &storage.Error{Op: "writeChunk", Key: sessionID, Cause: err}
	}
	return nil
}

// Assemble concatenates chunks 0..totalChunks-1 into finalKey on tier, then
// removes the temp chunk directory. Re-invoking with the same inputs after
// a final object already exists is a no-op that still cleans up chunks.
func (p *Provider) Assemble(ctx context.Context, sessionID, finalKey string, totalChunks int, tier storage.Tier) (storage.WriteResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	finalPath := p.tierPath(tier, finalKey)
	if info, err := os.Stat(finalPath); err == nil {
		p.removeSessionChunks(sessionID)
		return storage.WriteResult{Key: finalKey, Tier: tier, Size: info.Size()}, nil
	}

	if err := os.MkdirAll(filepath.Dir(finalPath), 0o755); err != nil {
		return storage.WriteResult{}, &storage.Error{Op: "assemble", Key: finalKey, Cause: err}
	}

	tmpPath := finalPath + ".tmp"
	out, err := os.OpenFile(tmpPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return storage.WriteResult{}, &storage.Error{Op: "assemble", Key: finalKey, Cause: err}
	}

	var total int64
	for i := 0; i < totalChunks; i++ {
		chunkPath := p.chunkPath(sessionID, i)
		in, err := os.Open(chunkPath)
		if err != nil {
			out.Close()
			os.Remove(tmpPath)
			return storage.WriteResult{}, &storage.Error{Op: "assemble", Key: finalKey, Cause: fmt.Errorf("missing chunk %d: %w", i, err)}
		}
		n, err := io.Copy(out, in)
		in.Close()
		if err != nil {
			out.Close()
			os.Remove(tmpPath)
			return storage.WriteResult{}, &storage.Error{Op: "assemble", Key: finalKey, Cause: err}
		}
		total += n
	}

	if err := out.Close(); err != nil {
		os.Remove(tmpPath)
		return storage.WriteResult{}, &storage.Error{Op: "assemble", Key: finalKey, Cause: err}
	}
	if err := os.Rename(tmpPath, finalPath); err != nil {
		os.Remove(tmpPath)
		return storage.WriteResult{}, &storage.Error{Op: "assemble", Key: finalKey, Cause: err}
	}

	p.removeSessionChunks(sessionID)
	return storage.WriteResult{Key: finalKey, Tier: tier, Size: total}, nil
}

func (p *Provider) removeSessionChunks(sessionID string) {
	os.RemoveAll(filepath.Join(p.root, "temp", sessionID))
}

// DeleteChunks best-effort removes any temp chunks for a session.
func (p *Provider) DeleteChunks(ctx context.Context, sessionID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.removeSessionChunks(sessionID)
	return nil
}

// InitMultipart has no native multipart protocol on local disk; it just
// mints an opaque upload ID used to namespace part files under temp/.
func (p *Provider) InitMultipart(ctx context.Context, key string, tier storage.Tier) (string, error) {
	uploadID := fmt.Sprintf("local-%d", time.Now().UnixNano())
	return uploadID, nil
}

// SignPartUpload is not supported by the local provider: there is no
// mechanism for a client to PUT directly to disk from outside the process.
// Callers that need direct/presigned uploads must use an object-store
// backed Provider.
func (p *Provider) SignPartUpload(ctx context.Context, key string, uploadID string, partNumber int, ttl time.Duration) (string, error) {
	return "", &storage.Error{Op: "signPartUpload", Key: key, Cause: errors.New("localfs: presigned uploads are not supported")}
}

// CompleteMultipart concatenates the part files written by UploadPart-style
// callers (via WriteChunk under the upload ID as session) into key.
func (p *Provider) CompleteMultipart(ctx context.Context, key string, uploadID string, parts []storage.CompletedPart) (storage.WriteResult, error) {
	for i, part := range parts {
		if part.PartNumber != i+1 {
			return storage.WriteResult{}, &storage.Error{Op: "completeMultipart", Key: key, Cause: errors.New("parts must be supplied in ascending order starting at 1")}
		}
	}

	return p.Assemble(ctx, uploadID, key, len(parts), storage.TierHot)
}

// AbortMultipart removes any part files for uploadID. Idempotent.
func (p *Provider) AbortMultipart(ctx context.Context, key string, uploadID string) error {
	return p.DeleteChunks(ctx, uploadID)
}

// Close marks the provider closed; subsequent operations fail.
func (p *Provider) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}

// HealthCheck verifies the root directory is still accessible.
func (p *Provider) HealthCheck(ctx context.Context) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return errors.New("localfs: provider closed")
	}
	_, err := os.Stat(p.root)
	return err
}

var _ storage.Provider = (*Provider)(nil)
