package queue

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"task-manager/tasks"
	"time"

	"github.com/redis/go-redis/v9"
)

type RedisCommandQueue struct {
	client    *redis.Client
	queueName string
}

var _ CommandQueue = (*RedisCommandQueue)(nil)

func NewRedisCommandQueue(url, queueName string) (*RedisCommandQueue, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid Redis URL: %w", err)
	}

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisCommandQueue{
		client:    client,
		queueName: queueName,
	}, nil
}

func (q *RedisCommandQueue) Enqueue(ctx context.Context, cmd *tasks.Command) error {
	data, err := json.Marshal(cmd)
	if err != nil {
		return fmt.Errorf("failed to marshal command: %w", err)
	}

	// Left push here, right pop in Dequeue: FIFO
	return q.client.LPush(ctx, q.queueName, data).Err()
}

func (q *RedisCommandQueue) Dequeue(ctx context.Context) (*tasks.Command, error) {
	// Blocking right pop with 0 timeout (wait until ctx is done)
	result, err := q.client.BRPop(ctx, 0, q.queueName).Result()
	if err != nil {
		if stderrors.Is(err, redis.ErrClosed) {
			return nil, ErrQueueClosed
		}
		return nil, fmt.Errorf("failed to dequeue command: %w", err)
	}

	// BRPop returns [queueName, value]
	if len(result) != 2 {
		return nil, fmt.Errorf("unexpected BRPop result format. Should have %d elements but got %d", 2, len(result))
	}

	var cmd tasks.Command
	if err := json.Unmarshal([]byte(result[1]), &cmd); err != nil {
		return nil, fmt.Errorf("failed to unmarshal command: %w", err)
	}

	return &cmd, nil
}

func (q *RedisCommandQueue) Depth(ctx context.Context) (int64, error) {
	return q.client.LLen(ctx, q.queueName).Result()
}

func (q *RedisCommandQueue) Close() error {
	return q.client.Close()
}
