package database

import (
	"cinema_booking/config"
	"cinema_booking/model"
	"fmt"
	"log"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

func ConnectDB(cfg config.Settings) *gorm.DB {
	var (
		dialector gorm.Dialector
		err       error
	)

	switch cfg.DBDriver {
	case "sqlite":
		dialector = sqlite.Open(cfg.SQLitePath + "?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)")
	default:
		dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
			cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName)
		dialector = postgres.Open(dsn)
	}

	DB, err = gorm.Open(dialector, &gorm.Config{Logger: logger.Default.LogMode(logger.Warn)})
	if err != nil {
		panic("failed to connect database")
	}
	if cfg.DBDriver == "sqlite" {
		// sqlite chỉ cho một writer, tránh lỗi database is locked
		sqlDB, _ := DB.DB()
		sqlDB.SetMaxOpenConns(1)
	}

	fmt.Println("Connection Opened to Database")
	if err := Migrate(DB); err != nil {
		panic(fmt.Sprintf("failed to migrate database: %v", err))
	}
	fmt.Println("Database Migrated")

	// khởi tạo dữ liệu
	SeedData(DB)
	return DB
}

// OpenSQLite mở một database sqlite trong bộ nhớ, dùng cho test và chạy local
func OpenSQLite(name string) (*gorm.DB, error) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_pragma=busy_timeout(5000)", name)
	return openSQLite(dsn, 1)
}

// OpenSQLiteFile mở sqlite trên file với nhiều connection.
// Transaction bắt đầu bằng BEGIN IMMEDIATE nên các writer tranh nhau khoá ngay trong database.
func OpenSQLiteFile(path string, poolSize int) (*gorm.DB, error) {
	dsn := fmt.Sprintf("file:%s?_txlock=immediate&_pragma=busy_timeout(10000)&_pragma=journal_mode(WAL)", path)
	return openSQLite(dsn, poolSize)
}

func openSQLite(dsn string, poolSize int) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:  logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if poolSize < 1 {
		poolSize = 1
	}
	sqlDB.SetMaxOpenConns(poolSize)
	sqlDB.SetMaxIdleConns(poolSize)

	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&model.Customer{},
		&model.Cinema{},
		&model.Room{},
		&model.SeatType{},
		&model.Seat{},
		&model.Movie{},
		&model.Holiday{},
		&model.Showtime{},
		&model.ShowtimeSeat{},
		&model.Ticket{},
		&model.TicketSeat{},
		&model.Promotion{},
		&model.PromotionCondition{},
		&model.PromotionUsage{},
	)
	if err != nil {
		log.Printf("AutoMigrate lỗi: %v", err)
	}
	return err
}
