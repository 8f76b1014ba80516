package bootstrap

import (
	"context"
	"log"
	"time"

	"spa-booking-be/internal/config"
	"spa-booking-be/internal/controller"
	"spa-booking-be/internal/pkg/logger"
	"spa-booking-be/internal/pkg/mailer"
	"spa-booking-be/internal/repository/unitofwork"
	"spa-booking-be/internal/service"
	"spa-booking-be/pkg/events"
	"spa-booking-be/pkg/gateway"
	"spa-booking-be/pkg/locker"
	"spa-booking-be/pkg/metrics"
	pktNats "spa-booking-be/pkg/nats"
	"spa-booking-be/pkg/notify"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	AppointmentController   controller.IAppointmentController
	PaymentController       controller.IPaymentController
	CancelRequestController controller.ICancelRequestController
	RefundController        controller.IRefundController
	ReportController        controller.IReportController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	Logger   logger.ILogger
	Registry *prometheus.Registry

	closers []func()
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")
	c := &Container{Logger: sysLogger}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	c.Registry = registry

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{OutputChannelBuffer: 256},
		watermillLogger,
	)
	notifier := notify.NewBusNotifier(pubSub, notify.Topic, func(e events.Event, err error) {
		sysLogger.Warn("NOTIFY", "Failed to publish notification", map[string]interface{}{
			"type":  e.EventType(),
			"error": err.Error(),
		})
	})

	// 3. Infrastructure
	// NATS
	var eventPublisher service.EventPublisher
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	} else {
		eventPublisher = natsPub
		c.closers = append(c.closers, natsPub.Close)
	}

	// Redis
	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
	}
	c.closers = append(c.closers, func() { _ = rdb.Close() })

	orderLocker := locker.NewFallbackLocker(
		locker.NewRedisLocker(rdb, "spa:lock:"),
		locker.NewMemoryLocker(),
		func(op string, err error) {
			sysLogger.Warn("LOCK", "Redis lock unavailable, using in-process lock", map[string]interface{}{
				"op":    op,
				"error": err.Error(),
			})
		},
	)

	// Payment gateway
	var gw gateway.Gateway
	if cfg.Payment.MidtransServerKey != "" {
		gw = gateway.NewMidtransGateway(cfg.Payment.MidtransServerKey, cfg.Payment.MidtransIsProduction)
	} else {
		log.Printf("[WARN] MIDTRANS_SERVER_KEY not set, using the in-memory payment gateway")
		gw = gateway.NewFake()
	}

	depositRate, err := decimal.NewFromString(cfg.Payment.DepositRate)
	if err != nil {
		log.Printf("[WARN] Invalid DEPOSIT_RATE %q, using 0.5", cfg.Payment.DepositRate)
		depositRate = decimal.RequireFromString("0.5")
	}

	// Mailer
	var emailService mailer.IEmailService
	if cfg.SMTP.Host != "" {
		emailService = mailer.NewEmailService(
			cfg.SMTP.Host,
			cfg.SMTP.Port,
			cfg.SMTP.Email,
			cfg.SMTP.Password,
			cfg.SMTP.Email,
			cfg.SMTP.SenderName,
		)
	}

	// 4. Services
	deps := &service.Deps{
		UowFactory: uowFactory,
		Gateway:    gw,
		Notifier:   notifier,
		Locker:     orderLocker,
		Logger:     sysLogger,
		Metrics:    metrics.NewMetrics("spa_booking", registry),
		Payment: service.PaymentSettings{
			ReturnURL:   cfg.Payment.ReturnURL,
			ServerKey:   cfg.Payment.MidtransServerKey,
			DepositRate: depositRate,
			LockTTL:     time.Duration(cfg.Payment.LockTTLSec) * time.Second,
			LockWait:    2 * time.Second,
		},
	}

	appointmentService := service.NewAppointmentService(deps)
	paymentService := service.NewPaymentService(deps)
	cancelRequestService := service.NewCancelRequestService(deps)
	refundService := service.NewRefundService(deps)
	revenueService := service.NewRevenueService(deps, cfg.Report.DefaultRangeDays)

	c.ConsumerService = service.NewConsumerService(pubSub, notify.Topic, eventPublisher, emailService, sysLogger)
	c.closers = append(c.closers, func() { _ = pubSub.Close() })

	// 5. Controllers
	c.AppointmentController = controller.NewAppointmentController(appointmentService)
	c.PaymentController = controller.NewPaymentController(paymentService, sysLogger)
	c.CancelRequestController = controller.NewCancelRequestController(cancelRequestService)
	c.RefundController = controller.NewRefundController(refundService)
	c.ReportController = controller.NewReportController(revenueService)

	return c
}

// Close releases infrastructure clients in reverse order of creation.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	_ = c.Logger.Sync()
}
