package queue

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	membershipUsecases "github.com/siteforge/siteforge/internal/application/membership/usecases"
	"github.com/siteforge/siteforge/internal/shared/logger"
)

func setupQueue(t *testing.T) (*miniredis.Miniredis, *RedisQueue) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, NewRedisQueue(client, "test:queue:", logger.NewNop())
}

func TestRedisQueue_EnqueueUsesListPerAction(t *testing.T) {
	mr, q := setupQueue(t)
	ctx := context.Background()

	require.NoError(t, q.Enqueue(ctx, membershipUsecases.ActionCreateRenewalPayment,
		membershipUsecases.RenewalPaymentTask{MembershipID: 7, Trial: true}))
	require.NoError(t, q.Enqueue(ctx, membershipUsecases.ActionMarkMembershipExpired,
		membershipUsecases.ExpireMembershipTask{MembershipID: 8}))

	items, err := mr.List("test:queue:create_renewal_payment")
	require.NoError(t, err)
	require.Len(t, items, 1)

	var task Task
	require.NoError(t, json.Unmarshal([]byte(items[0]), &task))
	assert.Equal(t, "create_renewal_payment", task.Action)
	assert.JSONEq(t, `{"membership_id":7,"trial":true}`, string(task.Payload))

	n, err := q.Len(ctx, membershipUsecases.ActionMarkMembershipExpired)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

type recorder struct {
	mu      sync.Mutex
	renewal []membershipUsecases.RenewalPaymentTask
	expired []uint
}

func (r *recorder) renew(_ context.Context, task membershipUsecases.RenewalPaymentTask) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.renewal = append(r.renewal, task)
	return true, nil
}

func (r *recorder) expire(_ context.Context, task membershipUsecases.ExpireMembershipTask) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.expired = append(r.expired, task.MembershipID)
	if task.MembershipID == 13 {
		return false, errors.New("deadlock")
	}
	if task.MembershipID == 14 {
		panic("boom")
	}
	return true, nil
}

func (r *recorder) counts() (int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.renewal), len(r.expired)
}

func TestConsumer_DispatchesTasksInOrder(t *testing.T) {
	mr, q := setupQueue(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rec := &recorder{}
	c := NewConsumer(q, 50*time.Millisecond, logger.NewNop())
	c.Register(membershipUsecases.ActionCreateRenewalPayment, Handle(rec.renew))
	c.Register(membershipUsecases.ActionMarkMembershipExpired, Handle(rec.expire))

	for _, id := range []uint{1, 2} {
		require.NoError(t, q.Enqueue(ctx, membershipUsecases.ActionCreateRenewalPayment,
			membershipUsecases.RenewalPaymentTask{MembershipID: id}))
	}
	for _, id := range []uint{13, 14, 15} {
		require.NoError(t, q.Enqueue(ctx, membershipUsecases.ActionMarkMembershipExpired,
			membershipUsecases.ExpireMembershipTask{MembershipID: id}))
	}
	mr.Lpush("test:queue:mark_membership_expired", "not json")
	mr.Lpush("test:queue:mark_membership_expired", `{"action":"mark_membership_expired","payload":"oops"}`)

	done := make(chan error, 1)
	go func() { done <- c.Run(ctx) }()

	assert.Eventually(t, func() bool {
		renewals, expired := rec.counts()
		return renewals == 2 && expired == 3
	}, 3*time.Second, 10*time.Millisecond)

	assert.Eventually(t, func() bool {
		n, _ := q.Len(context.Background(), membershipUsecases.ActionMarkMembershipExpired)
		return n == 0
	}, 3*time.Second, 10*time.Millisecond)

	rec.mu.Lock()
	assert.Equal(t, uint(1), rec.renewal[0].MembershipID)
	assert.Equal(t, []uint{13, 14, 15}, rec.expired)
	rec.mu.Unlock()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("consumer did not stop")
	}
}

func TestConsumer_RequiresHandlers(t *testing.T) {
	_, q := setupQueue(t)
	err := NewConsumer(q, time.Second, logger.NewNop()).Run(context.Background())
	assert.Error(t, err)
}
