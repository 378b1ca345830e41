package localfs

import (
	"bytes"
	"context"
	"io"
	"os"
	"testing"

	"github.com/Gaganb-30/cloud-store/pkg/storage"
)

func newTestProvider(t *testing.T) *Provider {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "localfs-test-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}

	p, err := New(DefaultConfig(tmpDir))
	if err != nil {
		os.RemoveAll(tmpDir)
		t.Fatalf("New failed: %v", err)
	}

	t.Cleanup(func() {
		p.Close()
		os.RemoveAll(tmpDir)
	})

	return p
}

func TestProvider_WriteAndRead(t *testing.T) {
	ctx := context.Background()
	p := newTestProvider(t)

	key := "u1/uuid-1/report.pdf"
	data := []byte("hello world")

	res, err := p.Write(ctx, key, bytes.NewReader(data), storage.TierHot)
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if res.Size != int64(len(data)) {
		t.Errorf("Write size = %d, want %d", res.Size, len(data))
	}

	read, err := p.Read(ctx, key, storage.TierHot)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if string(read) != string(data) {
		t.Errorf("Read returned %q, want %q", read, data)
	}
}

func TestProvider_ReadNotFound(t *testing.T) {
	ctx := context.Background()
	p := newTestProvider(t)

	if _, err := p.Read(ctx, "nonexistent", storage.TierHot); err == nil {
		t.Error("expected error reading nonexistent key")
	}
}

func TestProvider_StreamRange(t *testing.T) {
	ctx := context.Background()
	p := newTestProvider(t)

	key := "u1/uuid-1/report.pdf"
	data := []byte("hello world")
	if _, err := p.Write(ctx, key, bytes.NewReader(data), storage.TierHot); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	rc, err := p.Stream(ctx, key, storage.TierHot, &storage.Range{Offset: 6, Length: 5})
	if err != nil {
		t.Fatalf("Stream failed: %v", err)
	}
	defer rc.Close()

	got, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if string(got) != "world" {
		t.Errorf("ranged stream = %q, want %q", got, "world")
	}
}

func TestProvider_DeleteIsIdempotent(t *testing.T) {
	ctx := context.Background()
	p := newTestProvider(t)

	key := "u1/uuid-1/report.pdf"
	if _, err := p.Write(ctx, key, bytes.NewReader([]byte("x")), storage.TierHot); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	if ok, err := p.Delete(ctx, key, storage.TierHot); err != nil || !ok {
		t.Fatalf("first Delete: ok=%v err=%v", ok, err)
	}
	if ok, err := p.Delete(ctx, key, storage.TierHot); err != nil || !ok {
		t.Fatalf("second Delete (no-op): ok=%v err=%v", ok, err)
	}
}

func TestProvider_Migrate(t *testing.T) {
	ctx := context.Background()
	p := newTestProvider(t)

	key := "u1/uuid-1/report.pdf"
	if _, err := p.Write(ctx, key, bytes.NewReader([]byte("x")), storage.TierHot); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	if err := p.Migrate(ctx, key, storage.TierHot, storage.TierCold); err != nil {
		t.Fatalf("Migrate failed: %v", err)
	}

	if exists, _ := p.Exists(ctx, key, storage.TierHot); exists {
		t.Error("expected source tier to no longer have the object")
	}
	if exists, _ := p.Exists(ctx, key, storage.TierCold); !exists {
		t.Error("expected destination tier to have the object")
	}
}

func TestProvider_AssembleChunks(t *testing.T) {
	ctx := context.Background()
	p := newTestProvider(t)

	sessionID := "session-1"
	chunks := [][]byte{[]byte("hello "), []byte("brave "), []byte("world")}
	for i, c := range chunks {
		if err := p.WriteChunk(ctx, sessionID, i, bytes.NewReader(c)); err != nil {
			t.Fatalf("WriteChunk(%d) failed: %v", i, err)
		}
	}

	res, err := p.Assemble(ctx, sessionID, "u1/uuid-1/greeting.txt", len(chunks), storage.TierHot)
	if err != nil {
		t.Fatalf("Assemble failed: %v", err)
	}

	want := "hello brave world"
	if res.Size != int64(len(want)) {
		t.Errorf("assembled size = %d, want %d", res.Size, len(want))
	}

	got, err := p.Read(ctx, "u1/uuid-1/greeting.txt", storage.TierHot)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if string(got) != want {
		t.Errorf("assembled content = %q, want %q", got, want)
	}
}

func TestProvider_AssembleIsIdempotent(t *testing.T) {
	ctx := context.Background()
	p := newTestProvider(t)

	sessionID := "session-2"
	if err := p.WriteChunk(ctx, sessionID, 0, bytes.NewReader([]byte("x"))); err != nil {
		t.Fatalf("WriteChunk failed: %v", err)
	}

	if _, err := p.Assemble(ctx, sessionID, "u1/uuid-2/f.bin", 1, storage.TierHot); err != nil {
		t.Fatalf("first Assemble failed: %v", err)
	}

	// Re-invoking after the final object already exists and chunks are
	// gone must still succeed rather than fail on missing chunk files.
	if _, err := p.Assemble(ctx, sessionID, "u1/uuid-2/f.bin", 1, storage.TierHot); err != nil {
		t.Fatalf("second Assemble (idempotent) failed: %v", err)
	}
}

func TestProvider_EmptyFileRoundTrip(t *testing.T) {
	ctx := context.Background()
	p := newTestProvider(t)

	res, err := p.Assemble(ctx, "session-empty", "u1/uuid-3/empty.bin", 0, storage.TierHot)
	if err != nil {
		t.Fatalf("Assemble with zero chunks failed: %v", err)
	}
	if res.Size != 0 {
		t.Errorf("empty assembly size = %d, want 0", res.Size)
	}

	data, err := p.Read(ctx, "u1/uuid-3/empty.bin", storage.TierHot)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if len(data) != 0 {
		t.Errorf("expected zero bytes, got %d", len(data))
	}
}
