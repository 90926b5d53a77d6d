package redisstore

import (
	"context"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"
)

func sessionKey(userID string) string {
	return "user:session:" + userID
}

// SessionStore keeps one session hash per user. The sid field must match the
// token's sid for the session to be valid.
type SessionStore struct {
	rdb redis.Cmdable
	ttl time.Duration
}

func NewSessionStore(rdb redis.Cmdable, ttl time.Duration) *SessionStore {
	return &SessionStore{rdb: rdb, ttl: ttl}
}

func (s *SessionStore) Save(ctx context.Context, userID string, fields map[string]any) error {
	key := sessionKey(userID)
	fields["updated_at"] = time.Now().UTC().Format(time.RFC3339Nano)
	pipe := s.rdb.TxPipeline()
	pipe.HSet(ctx, key, fields)
	pipe.Expire(ctx, key, s.ttl)
	_, err := pipe.Exec(ctx)
	return err
}

// patchScript writes ARGV field/value pairs only while the hash exists, so a
// patch racing a logout cannot resurrect the session without a TTL.
var patchScript = redis.NewScript(`
if redis.call("EXISTS", KEYS[1]) == 0 then
  return 0
end
redis.call("HSET", KEYS[1], unpack(ARGV))
return 1
`)

// Patch updates fields of an existing session without extending its TTL.
// A missing session is left missing.
func (s *SessionStore) Patch(ctx context.Context, userID string, fields map[string]any) error {
	fields["updated_at"] = time.Now().UTC().Format(time.RFC3339Nano)
	return patchScript.Run(ctx, s.rdb, []string{sessionKey(userID)}, patchArgs(fields)...).Err()
}

// patchArgs flattens fields into sorted field/value pairs.
func patchArgs(fields map[string]any) []any {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	args := make([]any, 0, 2*len(keys))
	for _, k := range keys {
		args = append(args, k, fields[k])
	}
	return args
}

func (s *SessionStore) Get(ctx context.Context, userID string) (map[string]string, error) {
	return s.rdb.HGetAll(ctx, sessionKey(userID)).Result()
}

func (s *SessionStore) Delete(ctx context.Context, userID string) error {
	return s.rdb.Del(ctx, sessionKey(userID)).Err()
}
