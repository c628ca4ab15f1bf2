package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"cinema_booking/config"
	"cinema_booking/database"
	"cinema_booking/event"
	"cinema_booking/handler"
	"cinema_booking/helper"
	"cinema_booking/router"
	"cinema_booking/service"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/jonboulle/clockwork"
	log "github.com/sirupsen/logrus"
)

func main() {
	cfg := config.Load()
	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET is required")
	}
	if config.Config("LOG_LEVEL") == "debug" {
		log.SetLevel(log.DebugLevel)
	}

	clock := clockwork.NewRealClock()
	db := database.ConnectDB(cfg)
	if cfg.DBDriver == "sqlite" {
		database.SeedDemo(db, clock.Now().UTC())
	}

	venue := service.ResolveLocation(cfg.VenueTimeZone, time.FixedZone("ICT", 7*3600))
	holidays, err := service.LoadPricingCalendar(context.Background(), db, cfg.HolidayWeekendRate)
	if err != nil {
		log.WithError(err).Warn("Không tải được lịch ngày lễ, tính giá theo thứ trong tuần")
	}

	var (
		seatEvents service.SeatEventPublisher = event.LogPublisher{}
		payments   service.PaymentPublisher   = event.LogPublisher{}
		subscriber handler.SeatSubscriber
	)
	redisClient := event.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		log.WithError(err).Warn("Redis không khả dụng, sự kiện ghế chỉ ghi log")
	} else {
		redisPub := event.NewRedisSeatPublisher(redisClient)
		seatEvents, subscriber = redisPub, redisPub
	}
	defer redisClient.Close()

	if cfg.AMQPURL != "" {
		amqpPub := event.NewAMQPPaymentPublisher(cfg.AMQPURL, cfg.PaymentQueue)
		defer amqpPub.Close()
		payments = amqpPub
	}

	index := service.NewSeatIndex(db, clock, cfg.SeatHoldWindow, seatEvents)
	pricer := service.NewPricer(cfg.WeekdayPrice, cfg.WeekendPrice, venue, holidays)
	promotions := service.NewPromotionValidator(db, clock)
	tickets := service.NewTicketService(db, clock, index, promotions)
	sweeper := service.NewSweeper(db, clock, index, tickets, cfg.PaymentWindow)

	h := &handler.Handler{
		Bookings:   service.NewReservationCoordinator(db, clock, index, pricer, promotions, payments),
		Seats:      index,
		Promotions: promotions,
		Tickets:    tickets,
		Sweeper:    sweeper,
		Subscriber: subscriber,
	}

	helper.StartShowtimeScheduler(db, clock)
	defer helper.StopShowtimeScheduler()
	if err := helper.StartSweeperScheduler(sweeper, cfg, clock); err != nil {
		log.WithError(err).Fatal("Không khởi động được sweeper")
	}
	defer helper.StopSweeperScheduler()

	app := fiber.New()
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowOrigin,
		AllowMethods:     "GET,POST,PUT,DELETE,PATCH,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Authorization, Accept",
		AllowCredentials: true,
		ExposeHeaders:    "Set-Cookie",
		MaxAge:           600,
	}))
	router.SetupRoutes(app, h, []byte(cfg.JWTSecret))

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		log.Info("Đang tắt server...")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.WithError(err).Warn("Shutdown")
		}
	}()

	if err := app.Listen(":" + cfg.AppPort); err != nil {
		log.WithError(err).Error("Server dừng")
	}
}
