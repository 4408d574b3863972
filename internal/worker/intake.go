package worker

import (
	"context"
	"sync"

	"github.com/wb-go/wbf/retry"
	"github.com/wb-go/wbf/zlog"

	"github.com/aliskhannn/leave-approvals/internal/rabbitmq/queue"
)

//go:generate mockgen -source=intake.go -destination=../mocks/worker/mock.go -package=mocks
type submissionConsumer interface {
	Consume(ctx context.Context, out chan<- queue.SubmissionMessage, strategy retry.Strategy) error
}

type submissionHandler interface {
	HandleMessage(ctx context.Context, msg queue.SubmissionMessage, strategy retry.Strategy)
}

// Intake feeds leave submissions from the broker into the approval service.
type Intake struct {
	consumer submissionConsumer
	handler  submissionHandler
}

func NewIntake(c submissionConsumer, h submissionHandler) *Intake {
	return &Intake{
		consumer: c,
		handler:  h,
	}
}

// Run consumes with workerCount workers and returns once ctx is done and
// every worker has finished its current message.
func (in *Intake) Run(ctx context.Context, strategy retry.Strategy, workerCount int) {
	if workerCount <= 0 {
		workerCount = 1
	}

	msgChan := make(chan queue.SubmissionMessage)

	go func() {
		if err := in.consumer.Consume(ctx, msgChan, strategy); err != nil {
			zlog.Logger.Error().Err(err).Msg("submission consumer stopped")
		}
	}()

	var wg sync.WaitGroup
	wg.Add(workerCount)

	for i := 0; i < workerCount; i++ {
		go func(id int) {
			defer wg.Done()
			zlog.Logger.Info().Int("worker", id).Msg("intake worker started")

			for {
				select {
				case <-ctx.Done():
					zlog.Logger.Info().Int("worker", id).Msg("intake worker shutting down")
					return
				case msg := <-msgChan:
					in.handler.HandleMessage(ctx, msg, strategy)
				}
			}
		}(i)
	}

	wg.Wait()
	zlog.Logger.Info().Msg("intake stopped")
}
