package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rocketscienceinc/gomoku-backend/internal/apperror"
	"github.com/rocketscienceinc/gomoku-backend/internal/entity"
)

const roomKeyPrefix = "room:"

// RoomRepository mirrors live room snapshots into Redis so the reporting API
// can list active rooms without touching the coordinator.
type RoomRepository interface {
	Save(ctx context.Context, snapshot entity.RoomSnapshot) error
	GetByID(ctx context.Context, id string) (*entity.RoomSnapshot, error)
	DeleteByID(ctx context.Context, id string) error
	ListActive(ctx context.Context) ([]entity.RoomSnapshot, error)
}

type dbRoom struct {
	client *redis.Client
}

func NewRoomRepository(client *redis.Client) RoomRepository {
	return &dbRoom{
		client: client,
	}
}

func (that *dbRoom) Save(ctx context.Context, snapshot entity.RoomSnapshot) error {
	roomJSON, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("could not marshal room snapshot: %w", err)
	}

	roomKey := roomKeyPrefix + snapshot.ID
	if err = that.client.Set(ctx, roomKey, roomJSON, 0).Err(); err != nil {
		return fmt.Errorf("failed to set room snapshot: %w", err)
	}

	return nil
}

func (that *dbRoom) GetByID(ctx context.Context, id string) (*entity.RoomSnapshot, error) {
	roomKey := roomKeyPrefix + id

	response, err := that.client.Get(ctx, roomKey).Result()

	if errors.Is(err, redis.Nil) {
		return nil, apperror.ErrNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get room snapshot: %w", err)
	}

	var snapshot entity.RoomSnapshot
	if err = json.Unmarshal([]byte(response), &snapshot); err != nil {
		return nil, fmt.Errorf("failed to unmarshal room snapshot: %w", err)
	}

	return &snapshot, nil
}

func (that *dbRoom) DeleteByID(ctx context.Context, id string) error {
	roomKey := roomKeyPrefix + id

	if err := that.client.Del(ctx, roomKey).Err(); err != nil {
		return fmt.Errorf("failed to delete room snapshot: %w", err)
	}

	return nil
}

// ListActive scans all mirrored rooms. The live set is small (one key per
// open room), so a full scan is fine here.
func (that *dbRoom) ListActive(ctx context.Context) ([]entity.RoomSnapshot, error) {
	var snapshots []entity.RoomSnapshot

	iter := that.client.Scan(ctx, 0, roomKeyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		response, err := that.client.Get(ctx, iter.Val()).Result()
		if errors.Is(err, redis.Nil) {
			continue // deleted between scan and get
		}
		if err != nil {
			return nil, fmt.Errorf("failed to get room snapshot: %w", err)
		}

		var snapshot entity.RoomSnapshot
		if err = json.Unmarshal([]byte(response), &snapshot); err != nil {
			return nil, fmt.Errorf("failed to unmarshal room snapshot: %w", err)
		}

		snapshots = append(snapshots, snapshot)
	}

	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan room keys: %w", err)
	}

	return snapshots, nil
}
