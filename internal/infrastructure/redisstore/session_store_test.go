package redisstore

import (
	"context"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

// hashScripter runs patchScript against in-memory hashes. Every other
// Cmdable method is nil and panics if reached.
type hashScripter struct {
	redis.Cmdable

	mu     sync.Mutex
	hashes map[string]map[string]any
	shas   []string
}

func (h *hashScripter) EvalSha(_ context.Context, sha string, keys []string, args ...interface{}) *redis.Cmd {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.shas = append(h.shas, sha)
	hash, ok := h.hashes[keys[0]]
	if !ok {
		return redis.NewCmdResult(int64(0), nil)
	}
	for i := 0; i+1 < len(args); i += 2 {
		hash[args[i].(string)] = args[i+1]
	}
	return redis.NewCmdResult(int64(1), nil)
}

func TestPatchArgsSorted(t *testing.T) {
	got := patchArgs(map[string]any{"name": "Asha", "avatar_url": "a.png"})
	want := []any{"avatar_url", "a.png", "name", "Asha"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("args = %v, want %v", got, want)
	}
}

func TestPatchUpdatesLiveSession(t *testing.T) {
	rdb := &hashScripter{hashes: map[string]map[string]any{
		"user:session:u1": {"sid": "s1", "name": "Old"},
	}}
	s := NewSessionStore(rdb, time.Hour)

	if err := s.Patch(context.Background(), "u1", map[string]any{"name": "New"}); err != nil {
		t.Fatalf("patch: %v", err)
	}
	hash := rdb.hashes["user:session:u1"]
	if hash["name"] != "New" || hash["sid"] != "s1" {
		t.Fatalf("hash = %v", hash)
	}
	if _, ok := hash["updated_at"]; !ok {
		t.Fatal("updated_at not written")
	}
	if len(rdb.shas) != 1 || rdb.shas[0] != patchScript.Hash() {
		t.Fatalf("script calls = %v", rdb.shas)
	}
}

func TestPatchDoesNotRecreateDeletedSession(t *testing.T) {
	rdb := &hashScripter{hashes: map[string]map[string]any{}}
	s := NewSessionStore(rdb, time.Hour)

	if err := s.Patch(context.Background(), "gone", map[string]any{"name": "New"}); err != nil {
		t.Fatalf("patch: %v", err)
	}
	if _, ok := rdb.hashes["user:session:gone"]; ok {
		t.Fatal("patch recreated a deleted session")
	}
}
