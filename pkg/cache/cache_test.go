package cache

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	data, hit, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if hit || data != nil {
		t.Error("NullCache.Get should always return miss")
	}

	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}
	if _, hit, _ = c.Get(ctx, "key"); hit {
		t.Error("NullCache should not store data")
	}
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(filepath.Join(t.TempDir(), "nested", "cache"))
	if err != nil {
		t.Fatalf("NewFileCache() error: %v", err)
	}
	defer c.Close()

	if _, hit, err := c.Get(ctx, "svg"); hit || err != nil {
		t.Fatalf("Get(empty) = hit %v, err %v", hit, err)
	}
	if err := c.Set(ctx, "svg", []byte("<svg/>"), 0); err != nil {
		t.Fatalf("Set() error: %v", err)
	}
	data, hit, err := c.Get(ctx, "svg")
	if err != nil || !hit || string(data) != "<svg/>" {
		t.Fatalf("Get() = %q, %v, %v", data, hit, err)
	}

	if err := c.Delete(ctx, "svg"); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "svg"); hit {
		t.Error("Get() hit after Delete()")
	}
	if err := c.Delete(ctx, "svg"); err != nil {
		t.Errorf("Delete(missing) error: %v", err)
	}
}

func TestFileCache_Expiry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	if err := c.Set(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatal(err)
	}
	if _, hit, _ := c.Get(ctx, "k"); !hit {
		t.Fatal("Get() miss before expiry")
	}

	now = now.Add(2 * time.Minute)
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("Get() hit after expiry")
	}
	if _, err := os.Stat(c.path("k")); !errors.Is(err, os.ErrNotExist) {
		t.Error("expired entry not removed")
	}
}

func TestFileCache_CorruptEntry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	path := c.path("k")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, hit, err := c.Get(ctx, "k"); hit || err != nil {
		t.Errorf("Get(corrupt) = hit %v, err %v; want clean miss", hit, err)
	}
}

func TestFileCache_Clear(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	for _, k := range []string{"a", "b", "c"} {
		_ = c.Set(ctx, k, []byte(k), 0)
	}
	if n, err := c.Len(); err != nil || n != 3 {
		t.Errorf("Len() = %d, %v; want 3", n, err)
	}
	if err := c.Clear(); err != nil {
		t.Fatalf("Clear() error: %v", err)
	}
	entries, _ := os.ReadDir(c.Dir())
	if len(entries) != 0 {
		t.Errorf("Clear() left %d entries", len(entries))
	}
}

func TestScopedCache(t *testing.T) {
	ctx := context.Background()
	inner, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	a := NewScoped(inner, "book:a:")
	b := NewScoped(inner, "book:b:")

	_ = a.Set(ctx, "svg", []byte("from a"), 0)
	if _, hit, _ := b.Get(ctx, "svg"); hit {
		t.Error("scopes share entries")
	}
	if data, hit, _ := inner.Get(ctx, "book:a:svg"); !hit || string(data) != "from a" {
		t.Errorf("inner Get(prefixed) = %q, %v", data, hit)
	}

	if _, hit, _ := NewScoped(nil, "x:").Get(ctx, "svg"); hit {
		t.Error("nil inner should behave as NullCache")
	}
}

func TestGetOrCompute(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	calls := 0
	compute := func() ([]byte, error) {
		calls++
		return []byte("rendered"), nil
	}

	data, hit, err := GetOrCompute(ctx, c, "k", 0, compute)
	if err != nil || hit || string(data) != "rendered" {
		t.Fatalf("first GetOrCompute() = %q, %v, %v", data, hit, err)
	}
	data, hit, err = GetOrCompute(ctx, c, "k", 0, compute)
	if err != nil || !hit || string(data) != "rendered" {
		t.Fatalf("second GetOrCompute() = %q, %v, %v", data, hit, err)
	}
	if calls != 1 {
		t.Errorf("compute called %d times, want 1", calls)
	}

	boom := errors.New("boom")
	if _, _, err := GetOrCompute(ctx, c, "other", 0, func() ([]byte, error) { return nil, boom }); !errors.Is(err, boom) {
		t.Errorf("GetOrCompute() error = %v, want %v", err, boom)
	}
	if _, hit, _ := c.Get(ctx, "other"); hit {
		t.Error("failed compute was cached")
	}
}

func TestHash(t *testing.T) {
	h1 := Hash([]byte("hello"))
	if h1 != Hash([]byte("hello")) {
		t.Error("Hash should be deterministic")
	}
	if h1 == Hash([]byte("world")) {
		t.Error("Different inputs should produce different hashes")
	}
	if len(h1) != 64 {
		t.Errorf("Hash length should be 64, got %d", len(h1))
	}
}

func TestArtifactKey(t *testing.T) {
	dot := "digraph book { 1 -> 2; }"
	svg := ArtifactKey(dot, ArtifactKeyOpts{Format: "svg"})
	if svg != ArtifactKey(dot, ArtifactKeyOpts{Format: "svg"}) {
		t.Error("ArtifactKey should be deterministic")
	}
	if svg == ArtifactKey(dot, ArtifactKeyOpts{Format: "png"}) {
		t.Error("Different formats should produce different keys")
	}
	if ArtifactKey(dot, ArtifactKeyOpts{Format: "png", Scale: 1}) == ArtifactKey(dot, ArtifactKeyOpts{Format: "png", Scale: 2}) {
		t.Error("Different scales should produce different keys")
	}
	if svg == ArtifactKey(dot+" ", ArtifactKeyOpts{Format: "svg"}) {
		t.Error("Different DOT should produce different keys")
	}
}
