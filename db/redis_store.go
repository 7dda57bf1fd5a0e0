package db

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-redis/redis/v8"
	"roster-server-go/models"
)

// Key layout under the configured prefix:
//
//	{prefix}:meta          Hash: saved_at
//	{prefix}:classes       List: class names in order
//	{prefix}:students      List: student IDs in order
//	{prefix}:student:{id}  Hash: student fields
const (
	metaSuffix     = ":meta"
	classesSuffix  = ":classes"
	studentsSuffix = ":students"
	studentInfix   = ":student:"
)

// RedisStore persists the snapshot in Redis.
type RedisStore struct {
	Client *redis.Client
	Ctx    context.Context // Base context
	Prefix string
}

// NewRedisStore creates a RedisStore keeping its keys under prefix
func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "roster"
	}
	return &RedisStore{
		Client: client,
		Ctx:    context.Background(),
		Prefix: prefix,
	}
}

func (s *RedisStore) metaKey() string     { return s.Prefix + metaSuffix }
func (s *RedisStore) classesKey() string  { return s.Prefix + classesSuffix }
func (s *RedisStore) studentsKey() string { return s.Prefix + studentsSuffix }

func (s *RedisStore) studentKey(id string) string {
	return s.Prefix + studentInfix + id
}

// Load reads the snapshot. If nothing was ever saved the default snapshot is returned.
func (s *RedisStore) Load() (models.Snapshot, error) {
	const op = "Load"
	n, err := s.Client.Exists(s.Ctx, s.metaKey()).Result()
	if err != nil {
		return models.Snapshot{}, fmt.Errorf("failed to check roster in Redis: %w", err)
	}
	if n == 0 {
		slog.Info("no saved roster in Redis, starting from defaults", "prefix", s.Prefix)
		return models.DefaultSnapshot(), nil
	}

	classes, err := s.Client.LRange(s.Ctx, s.classesKey(), 0, -1).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return models.Snapshot{}, loadError(op, "failed to get classes from Redis", err)
	}
	ids, err := s.Client.LRange(s.Ctx, s.studentsKey(), 0, -1).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return models.Snapshot{}, loadError(op, "failed to get student IDs from Redis", err)
	}

	pipe := s.Client.Pipeline()
	cmds := make([]*redis.StringStringMapCmd, len(ids))
	for i, id := range ids {
		cmds[i] = pipe.HGetAll(s.Ctx, s.studentKey(id))
	}
	if len(ids) > 0 {
		if _, err := pipe.Exec(s.Ctx); err != nil {
			return models.Snapshot{}, loadError(op, "failed to get students from Redis", err)
		}
	}

	students := make([]models.Student, 0, len(ids))
	for i, id := range ids {
		data := cmds[i].Val()
		if len(data) == 0 {
			return models.Snapshot{}, newError(op, ErrCorruptState, "student %q is listed but has no record", id)
		}
		students = append(students, models.Student{
			ID:         id,
			Name:       data["name"],
			FatherName: data["fatherName"],
			Class:      data["class"],
			Phone:      data["phone"],
			Address:    data["address"],
			AddedDate:  data["addedDate"],
		})
	}

	snapshot := normalize(models.Snapshot{Students: students, Classes: classes})
	if err := checkSnapshot(op, snapshot); err != nil {
		return models.Snapshot{}, err
	}
	return snapshot, nil
}

// Save replaces the stored snapshot in a single MULTI/EXEC transaction.
func (s *RedisStore) Save(snapshot models.Snapshot) error {
	oldIDs, err := s.Client.LRange(s.Ctx, s.studentsKey(), 0, -1).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("failed to get student IDs from Redis: %w", err)
	}

	_, err = s.Client.TxPipelined(s.Ctx, func(pipe redis.Pipeliner) error {
		stale := []string{s.classesKey(), s.studentsKey()}
		for _, id := range oldIDs {
			stale = append(stale, s.studentKey(id))
		}
		pipe.Del(s.Ctx, stale...)

		if len(snapshot.Classes) > 0 {
			pipe.RPush(s.Ctx, s.classesKey(), toInterfaces(snapshot.Classes)...)
		}
		ids := make([]string, 0, len(snapshot.Students))
		for _, st := range snapshot.Students {
			ids = append(ids, st.ID)
			pipe.HSet(s.Ctx, s.studentKey(st.ID), map[string]interface{}{
				"name":       st.Name,
				"fatherName": st.FatherName,
				"class":      st.Class,
				"phone":      st.Phone,
				"address":    st.Address,
				"addedDate":  st.AddedDate,
			})
		}
		if len(ids) > 0 {
			pipe.RPush(s.Ctx, s.studentsKey(), toInterfaces(ids)...)
		}
		pipe.HSet(s.Ctx, s.metaKey(), "saved_at", time.Now().Format(time.RFC3339))
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save roster to Redis: %w", err)
	}
	return nil
}

// loadError reports error replies from Redis (WRONGTYPE and the like) as
// corrupt state; connection problems stay plain errors.
func loadError(op, message string, err error) error {
	var replyErr redis.Error
	if errors.As(err, &replyErr) {
		return wrapError(op, ErrCorruptState, message, err)
	}
	return fmt.Errorf("%s: %w", message, err)
}

func toInterfaces(values []string) []interface{} {
	out := make([]interface{}, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}

// InitializeRedisClient creates and tests a Redis client connection
func InitializeRedisClient(addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	// Ping Redis to check connection
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		return nil, fmt.Errorf("could not connect to Redis at %s: %w", addr, err)
	}

	slog.Info("connected to Redis", "addr", addr, "db", db)
	return rdb, nil
}
