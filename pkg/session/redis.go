package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/servant/pkg/codec"
)

// RedisStore keeps sessions in Redis hashes: one per session token and one
// per user, plus a login index used by UserByLogin.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

var (
	_ Store     = (*RedisStore)(nil)
	_ Rotator   = (*RedisStore)(nil)
	_ UserStore = (*RedisStore)(nil)
)

// RedisOption configures a RedisStore.
type RedisOption func(*RedisStore)

// WithKeyPrefix sets the prefix of all keys. Default: "servant:".
func WithKeyPrefix(prefix string) RedisOption {
	return func(r *RedisStore) {
		r.prefix = prefix
	}
}

// WithTTL expires idle sessions after d. Every update refreshes the expiry.
// Zero keeps sessions until they are deleted (default).
func WithTTL(d time.Duration) RedisOption {
	return func(r *RedisStore) {
		r.ttl = d
	}
}

// NewRedisStore creates a store backed by client.
func NewRedisStore(client redis.UniversalClient, opts ...RedisOption) *RedisStore {
	r := &RedisStore{client: client, prefix: "servant:"}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *RedisStore) sessionKey(token string) string { return r.prefix + "session:" + token }
func (r *RedisStore) userKey(id string) string       { return r.prefix + "user:" + id }
func (r *RedisStore) loginKey(login string) string   { return r.prefix + "login:" + login }

func (r *RedisStore) Load(ctx context.Context, token string) (*Record, error) {
	fields, err := r.client.HGetAll(ctx, r.sessionKey(token)).Result()
	if err != nil {
		return nil, fmt.Errorf("session: load: %w", err)
	}
	if len(fields) == 0 {
		return nil, ErrNotFound
	}

	rec := &Record{
		Token:  token,
		UserID: fields["user_id"],
		IP:     fields["ip_address"],
		Data:   []byte(fields["session_data"]),
	}
	status, err := strconv.ParseInt(fields["auth_status"], 10, 16)
	if err != nil {
		return nil, errors.Join(ErrCorrupt, err)
	}
	rec.AuthStatus = AuthStatus(status)
	rec.LoginTime = parseUnixNano(fields["login_time"])
	rec.LastActiveAt = parseUnixNano(fields["last_activity_time"])

	u, err := r.user(ctx, rec.UserID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	rec.Login = u.Login
	rec.Name = u.Name
	rec.Permissions = u.Permissions
	return rec, nil
}

func (r *RedisStore) Insert(ctx context.Context, rec *Record) error {
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		return r.insert(ctx, pipe, rec)
	})
	if err != nil && !errors.Is(err, ErrInvalidSession) && !errors.Is(err, ErrUserNotFound) {
		return fmt.Errorf("session: insert: %w", err)
	}
	return err
}

func (r *RedisStore) insert(ctx context.Context, pipe redis.Pipeliner, rec *Record) error {
	if rec.Token == "" || rec.UserID == "" {
		return ErrInvalidSession
	}
	exists, err := r.client.Exists(ctx, r.userKey(rec.UserID)).Result()
	if err != nil {
		return err
	}
	if exists == 0 {
		return ErrUserNotFound
	}

	now := strconv.FormatInt(time.Now().UnixNano(), 10)
	key := r.sessionKey(rec.Token)
	pipe.Del(ctx, key)
	pipe.HSet(ctx, key,
		"user_id", rec.UserID,
		"auth_status", strconv.Itoa(int(rec.AuthStatus)),
		"ip_address", rec.IP,
		"session_data", rec.Data,
		"login_time", now,
		"last_activity_time", now,
	)
	if r.ttl > 0 {
		pipe.Expire(ctx, key, r.ttl)
	}
	return nil
}

// updateScript writes a session only while it still belongs to the user.
var updateScript = redis.NewScript(`
local uid = redis.call('HGET', KEYS[1], 'user_id')
if not uid or uid ~= ARGV[1] then
	return 0
end
redis.call('HSET', KEYS[1], 'auth_status', ARGV[2], 'session_data', ARGV[3], 'last_activity_time', ARGV[4])
if tonumber(ARGV[5]) > 0 then
	redis.call('PEXPIRE', KEYS[1], ARGV[5])
end
return 1
`)

func (r *RedisStore) Update(ctx context.Context, token, userID string, status AuthStatus, data []byte) (int64, error) {
	n, err := updateScript.Run(ctx, r.client,
		[]string{r.sessionKey(token)},
		userID,
		strconv.Itoa(int(status)),
		data,
		strconv.FormatInt(time.Now().UnixNano(), 10),
		r.ttl.Milliseconds(),
	).Int64()
	if err != nil {
		return 0, fmt.Errorf("session: update: %w", err)
	}
	return n, nil
}

func (r *RedisStore) Delete(ctx context.Context, token string) error {
	if err := r.client.Del(ctx, r.sessionKey(token)).Err(); err != nil {
		return fmt.Errorf("session: delete: %w", err)
	}
	return nil
}

// Rotate deletes oldToken and inserts rec in one MULTI/EXEC block.
func (r *RedisStore) Rotate(ctx context.Context, oldToken string, rec *Record) error {
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, r.sessionKey(oldToken))
		return r.insert(ctx, pipe, rec)
	})
	if err != nil && !errors.Is(err, ErrInvalidSession) && !errors.Is(err, ErrUserNotFound) {
		return fmt.Errorf("session: rotate: %w", err)
	}
	return err
}

// PutUser creates or replaces a user and its login index entry.
func (r *RedisStore) PutUser(ctx context.Context, u User) error {
	if u.ID == "" {
		return ErrInvalidSession
	}
	perms := u.Permissions
	if perms == nil {
		perms = []string{}
	}
	encoded, err := codec.Marshal(perms)
	if err != nil {
		return err
	}

	prev, err := r.user(ctx, u.ID)
	if err != nil && !errors.Is(err, ErrUserNotFound) {
		return err
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		if prev != nil && prev.Login != u.Login {
			pipe.Del(ctx, r.loginKey(prev.Login))
		}
		pipe.HSet(ctx, r.userKey(u.ID), "login", u.Login, "name", u.Name, "permissions", encoded)
		pipe.Set(ctx, r.loginKey(u.Login), u.ID, 0)
		return nil
	})
	if err != nil {
		return fmt.Errorf("session: put user: %w", err)
	}
	return nil
}

func (r *RedisStore) UserByLogin(ctx context.Context, login string) (*User, error) {
	id, err := r.client.Get(ctx, r.loginKey(login)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("session: user by login: %w", err)
	}
	return r.user(ctx, id)
}

func (r *RedisStore) user(ctx context.Context, id string) (*User, error) {
	fields, err := r.client.HGetAll(ctx, r.userKey(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("session: load user: %w", err)
	}
	if len(fields) == 0 {
		return nil, ErrUserNotFound
	}
	u := &User{ID: id, Login: fields["login"], Name: fields["name"]}
	if raw := fields["permissions"]; raw != "" {
		if err := codec.Unmarshal([]byte(raw), &u.Permissions); err != nil {
			return nil, errors.Join(ErrCorrupt, err)
		}
	}
	return u, nil
}

func parseUnixNano(s string) time.Time {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return time.Time{}
	}
	return time.Unix(0, n)
}
