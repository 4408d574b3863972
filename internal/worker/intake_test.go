package worker

import (
	"context"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/wb-go/wbf/retry"

	mocks "github.com/aliskhannn/leave-approvals/internal/mocks/worker"
	"github.com/aliskhannn/leave-approvals/internal/rabbitmq/queue"
)

func TestIntake_Run_HandlesMessages(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	consumer := mocks.NewMocksubmissionConsumer(ctrl)
	handler := mocks.NewMocksubmissionHandler(ctrl)

	in := NewIntake(consumer, handler)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	strategy := retry.Strategy{Attempts: 1, Delay: time.Millisecond}
	msgs := []queue.SubmissionMessage{{RequestID: "req-1"}, {RequestID: "req-2"}}

	consumer.EXPECT().Consume(gomock.Any(), gomock.Any(), strategy).DoAndReturn(
		func(_ context.Context, out chan<- queue.SubmissionMessage, _ retry.Strategy) error {
			for _, m := range msgs {
				out <- m
			}
			return nil
		},
	)

	handled := make(chan string, len(msgs))
	handler.EXPECT().HandleMessage(gomock.Any(), gomock.Any(), strategy).
		Do(func(_ context.Context, msg queue.SubmissionMessage, _ retry.Strategy) {
			handled <- msg.RequestID
		}).
		Times(len(msgs))

	done := make(chan struct{})
	go func() {
		in.Run(ctx, strategy, 2)
		close(done)
	}()

	for range msgs {
		select {
		case <-handled:
		case <-time.After(time.Second):
			t.Fatal("message not handled")
		}
	}

	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("intake did not stop")
	}
}

func TestIntake_Run_StopsWithoutMessages(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	consumer := mocks.NewMocksubmissionConsumer(ctrl)
	handler := mocks.NewMocksubmissionHandler(ctrl)

	in := NewIntake(consumer, handler)
	strategy := retry.Strategy{Attempts: 1}

	consumer.EXPECT().Consume(gomock.Any(), gomock.Any(), strategy).Return(nil).AnyTimes()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	in.Run(ctx, strategy, 1)
}
