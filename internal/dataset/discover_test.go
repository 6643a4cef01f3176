package dataset

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDiscoverShardsBasic(t *testing.T) {
	dir := t.TempDir()
	mustWrite(t, filepath.Join(dir, "part-000.csv"), "")
	mustWrite(t, filepath.Join(dir, "nested", "part-001.TXT"), "")
	mustWrite(t, filepath.Join(dir, "ignore.tar"), "")

	shards, err := DiscoverShards(dir)
	if err != nil {
		t.Fatalf("DiscoverShards error: %v", err)
	}
	want := []string{
		filepath.Join(dir, "nested", "part-001.TXT"),
		filepath.Join(dir, "part-000.csv"),
	}
	if len(shards) != len(want) {
		t.Fatalf("expected %d shards, got %d", len(want), len(shards))
	}
	for i, shard := range want {
		if shards[i] != shard {
			t.Fatalf("shard[%d]=%s want %s", i, shards[i], shard)
		}
	}
}

func TestDiscoverShardsGrowth(t *testing.T) {
	dir := t.TempDir()
	mustWrite(t, filepath.Join(dir, "part-000.csv"), "")

	first, err := DiscoverShards(dir)
	if err != nil {
		t.Fatalf("first discover error: %v", err)
	}
	if len(first) != 1 {
		t.Fatalf("expected 1 shard, got %d", len(first))
	}

	mustWrite(t, filepath.Join(dir, "part-001.csv"), "")

	second, err := DiscoverShards(dir)
	if err != nil {
		t.Fatalf("second discover error: %v", err)
	}
	if len(second) != 2 {
		t.Fatalf("expected 2 shards, got %d", len(second))
	}
}

func TestResolve(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "train.data")
	mustWrite(t, file, "")

	got, err := Resolve(file)
	if err != nil {
		t.Fatalf("Resolve file error: %v", err)
	}
	if len(got) != 1 || got[0] != file {
		t.Fatalf("Resolve(%s)=%v", file, got)
	}

	if _, err := Resolve(filepath.Join(dir, "missing.csv")); err == nil {
		t.Fatal("expected error for missing path")
	}

	empty := filepath.Join(dir, "empty")
	if err := os.MkdirAll(empty, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if _, err := Resolve(empty); !errors.Is(err, ErrEmpty) {
		t.Fatalf("Resolve(empty dir) err=%v want ErrEmpty", err)
	}
}

func mustWrite(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
