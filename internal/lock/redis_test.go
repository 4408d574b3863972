package lock

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wb-go/wbf/retry"

	mocks "github.com/aliskhannn/leave-approvals/internal/mocks/lock"
)

const key = "leave-approvals:escalation-run"

func TestRedisLock_Acquire(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	client := mocks.NewMockredisClient(ctrl)
	l := NewRedisLock(client, key, time.Minute, retry.Strategy{Attempts: 1})

	client.EXPECT().SetNX(gomock.Any(), key, l.token, time.Minute).Return(redis.NewBoolResult(true, nil))

	ok, err := l.Acquire(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRedisLock_Acquire_Held(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	client := mocks.NewMockredisClient(ctrl)
	l := NewRedisLock(client, key, time.Minute, retry.Strategy{Attempts: 1})

	client.EXPECT().SetNX(gomock.Any(), key, gomock.Any(), time.Minute).Return(redis.NewBoolResult(false, nil))

	ok, err := l.Acquire(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisLock_Acquire_RetriesThenFails(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	client := mocks.NewMockredisClient(ctrl)
	l := NewRedisLock(client, key, time.Minute, retry.Strategy{Attempts: 2, Delay: time.Millisecond, Backoff: 1})

	client.EXPECT().SetNX(gomock.Any(), key, gomock.Any(), time.Minute).
		Return(redis.NewBoolResult(false, errors.New("connection refused"))).
		MinTimes(1)

	ok, err := l.Acquire(context.Background())
	assert.Error(t, err)
	assert.False(t, ok)
}

func TestRedisLock_Release(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	client := mocks.NewMockredisClient(ctrl)
	l := NewRedisLock(client, key, time.Minute, retry.Strategy{Attempts: 1})

	client.EXPECT().Eval(gomock.Any(), releaseScript, []string{key}, l.token).Return(redis.NewCmdResult(int64(1), nil))

	assert.NoError(t, l.Release(context.Background()))
}

func TestRedisLock_Release_Error(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	client := mocks.NewMockredisClient(ctrl)
	l := NewRedisLock(client, key, time.Minute, retry.Strategy{Attempts: 1})

	client.EXPECT().Eval(gomock.Any(), releaseScript, []string{key}, l.token).
		Return(redis.NewCmdResult(nil, errors.New("timeout")))

	assert.ErrorContains(t, l.Release(context.Background()), "timeout")
}
