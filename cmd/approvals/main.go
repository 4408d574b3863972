package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/wb-go/wbf/rabbitmq"
	"github.com/wb-go/wbf/redis"
	"github.com/wb-go/wbf/zlog"

	approvalhandler "github.com/aliskhannn/leave-approvals/internal/api/handlers/approval"
	delegationhandler "github.com/aliskhannn/leave-approvals/internal/api/handlers/delegation"
	escalationhandler "github.com/aliskhannn/leave-approvals/internal/api/handlers/escalation"
	inboxhandler "github.com/aliskhannn/leave-approvals/internal/api/handlers/inbox"
	notifhandler "github.com/aliskhannn/leave-approvals/internal/api/handlers/notification"
	"github.com/aliskhannn/leave-approvals/internal/api/router"
	"github.com/aliskhannn/leave-approvals/internal/api/server"
	"github.com/aliskhannn/leave-approvals/internal/audit"
	"github.com/aliskhannn/leave-approvals/internal/channel"
	"github.com/aliskhannn/leave-approvals/internal/config"
	"github.com/aliskhannn/leave-approvals/internal/identity"
	"github.com/aliskhannn/leave-approvals/internal/lock"
	"github.com/aliskhannn/leave-approvals/internal/metrics"
	submissionmsg "github.com/aliskhannn/leave-approvals/internal/rabbitmq/handlers/submission"
	"github.com/aliskhannn/leave-approvals/internal/rabbitmq/queue"
	approvalsvc "github.com/aliskhannn/leave-approvals/internal/service/approval"
	delegationsvc "github.com/aliskhannn/leave-approvals/internal/service/delegation"
	notifsvc "github.com/aliskhannn/leave-approvals/internal/service/notification"
	"github.com/aliskhannn/leave-approvals/internal/storage"
	"github.com/aliskhannn/leave-approvals/internal/worker"
	"github.com/aliskhannn/leave-approvals/pkg/email"
	"github.com/aliskhannn/leave-approvals/pkg/push"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	zlog.Init()
	cfg := config.Must()
	zerolog.SetGlobalLevel(cfg.Log.ZerologLevel())
	val := validator.New()

	stores, err := storage.Open(cfg)
	if err != nil {
		zlog.Logger.Fatal().Err(err).Msg("failed to open storage")
	}

	dir, err := identity.NewDirectory(cfg.Directory, cfg.Approvers)
	if err != nil {
		zlog.Logger.Fatal().Err(err).Msg("failed to load identity directory")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	var (
		publishers  []audit.Publisher
		submissions *queue.SubmissionQueue
		closers     []namedCloser
	)

	if cfg.RabbitMQ.Enabled {
		conn, err := rabbitmq.Connect(cfg.RabbitMQ.URL(), cfg.RabbitMQ.Retries, cfg.RabbitMQ.Pause)
		if err != nil {
			zlog.Logger.Fatal().Err(err).Msg("failed to connect to rabbitmq")
		}

		ch, err := conn.Channel()
		if err != nil {
			zlog.Logger.Fatal().Err(err).Msg("failed to open channel")
		}

		// closed in reverse order
		closers = append(closers,
			namedCloser{"RabbitMQ connection", conn.Close},
			namedCloser{"RabbitMQ channel", ch.Close},
		)

		feed, err := queue.NewAuditFeed(ch, queue.AuditFeedConfig{
			Exchange:   cfg.RabbitMQ.Exchange,
			Queue:      cfg.RabbitMQ.Queue,
			DLQ:        cfg.RabbitMQ.DLQ,
			RoutingKey: cfg.RabbitMQ.RoutingKey,
		}, cfg.Retry)
		if err != nil {
			zlog.Logger.Fatal().Err(err).Msg("failed to create audit feed")
		}
		publishers = append(publishers, feed)

		submissions, err = queue.NewSubmissionQueue(ch, cfg.RabbitMQ.Submissions, cfg.RabbitMQ.SubmissionsDLQ)
		if err != nil {
			zlog.Logger.Fatal().Err(err).Msg("failed to create submission queue")
		}
	}

	recorder := audit.NewRecorder(stores.Audits, publishers...)

	queueService := notifsvc.NewService(stores.Notifications, notifsvc.Limits{
		Capacity:    cfg.Queue.Capacity,
		BatchSize:   cfg.Queue.BatchSize,
		TTL:         cfg.Queue.TTL,
		MaxAttempts: cfg.Queue.MaxAttempts,
	}, notifsvc.WithMetrics(m))

	delegationService := delegationsvc.NewService(stores.Delegations, dir, nil)

	approvalService := approvalsvc.NewService(
		stores.Approvals,
		delegationService,
		dir,
		queueService,
		recorder,
		approvalsvc.WithMetrics(m),
		approvalsvc.WithLinkBase(cfg.Server.BaseURL),
	)

	var secondary []channel.Channel
	if cfg.Email.Enabled {
		emailClient := email.NewClient(
			cfg.Email.SMTPHost,
			cfg.Email.SMTPPort,
			cfg.Email.Username,
			cfg.Email.Password,
			cfg.Email.From,
		)
		secondary = append(secondary, channel.NewEmail(emailClient, dir))
	}
	if cfg.Push.Enabled {
		secondary = append(secondary, channel.NewPush(push.NewClient(cfg.Push.GatewayURL, cfg.Push.Token)))
	}

	dispatcher := worker.NewDispatcher(queueService, recorder, m, worker.DispatcherConfig{
		Interval:       cfg.Dispatcher.Interval,
		Workers:        cfg.Dispatcher.Workers,
		ChannelTimeout: cfg.Dispatcher.ChannelTimeout,
	}, channel.NewInApp(stores.Inbox), secondary...)

	escalatorOpts := []worker.EscalatorOption{worker.WithEscalationMetrics(m)}

	if cfg.Redis.Enabled {
		rdb := redis.New(cfg.Redis.Address, cfg.Redis.Password, cfg.Redis.Database)
		if err := rdb.Ping(ctx).Err(); err != nil {
			zlog.Logger.Fatal().Err(err).Msg("failed to connect to redis")
		}
		closers = append(closers, namedCloser{"redis client", rdb.Close})

		runLock := lock.NewRedisLock(rdb, cfg.Redis.LockKey, cfg.Redis.LockTTL, cfg.Retry)
		escalatorOpts = append(escalatorOpts, worker.WithRunLock(runLock))
	}

	escalator := worker.NewEscalator(stores.Approvals, delegationService, dir, queueService, recorder, worker.EscalationConfig{
		Interval:         cfg.Escalation.Interval,
		RunTimeout:       cfg.Escalation.RunTimeout,
		ApproverAfter:    cfg.Escalation.ApproverAfter,
		OversightAfter:   cfg.Escalation.OversightAfter,
		ReminderInterval: cfg.Escalation.ReminderInterval,
		OversightRoles:   cfg.Escalation.OversightRoles,
		LinkBase:         cfg.Server.BaseURL,
	}, escalatorOpts...)

	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		dispatcher.Run(ctx)
	}()
	go func() {
		defer wg.Done()
		escalator.Run(ctx)
	}()

	if submissions != nil {
		intake := worker.NewIntake(submissions, submissionmsg.NewHandler(approvalService, submissions))

		wg.Add(1)
		go func() {
			defer wg.Done()
			intake.Run(ctx, cfg.Retry, cfg.RabbitMQ.Workers)
		}()
	}

	r := router.New(router.Handlers{
		Approval:     approvalhandler.NewHandler(approvalService, val),
		Delegation:   delegationhandler.NewHandler(delegationService, val),
		Notification: notifhandler.NewHandler(queueService),
		Inbox:        inboxhandler.NewHandler(stores.Inbox),
		Escalation:   escalationhandler.NewHandler(escalator),
	}, promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	s := server.New(cfg.Server.HTTPPort, r)

	go func() {
		zlog.Logger.Info().Str("addr", cfg.Server.HTTPPort).Msg("http server started")
		if err := s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Logger.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	<-ctx.Done()
	zlog.Logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	zlog.Logger.Info().Msg("shutting down server")
	if err := s.Shutdown(shutdownCtx); err != nil {
		zlog.Logger.Error().Err(err).Msg("failed to shutdown server")
	}

	if errors.Is(shutdownCtx.Err(), context.DeadlineExceeded) {
		zlog.Logger.Info().Msg("timeout exceeded, forcing shutdown")
	}

	wg.Wait()

	if err := stores.Close(); err != nil {
		zlog.Logger.Error().Err(err).Msg("failed to close storage")
	}

	for i := len(closers) - 1; i >= 0; i-- {
		if err := closers[i].close(); err != nil {
			zlog.Logger.Error().Err(err).Msgf("failed to close %s", closers[i].name)
		}
	}
}

type namedCloser struct {
	name  string
	close func() error
}
