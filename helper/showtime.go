package helper

import (
	"context"
	"log"

	"cinema_booking/constants"
	"cinema_booking/model"

	"github.com/jonboulle/clockwork"
	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

var scheduler *cron.Cron

// StartShowtimeScheduler chuyển trạng thái suất chiếu theo giờ chiếu
func StartShowtimeScheduler(db *gorm.DB, clock clockwork.Clock) {
	scheduler = cron.New(cron.WithChain(
		cron.SkipIfStillRunning(cron.DefaultLogger),
	))

	// Chạy mỗi phút, suất đã bắt đầu vẫn bị chặn đặt vé theo giờ chiếu
	_, err := scheduler.AddFunc("* * * * *", func() {
		if _, _, err := UpdateShowtimeStatuses(context.Background(), db, clock); err != nil {
			log.Printf("Lỗi cập nhật suất chiếu: %v", err)
		}
	})
	if err != nil {
		log.Printf("Lỗi khởi tạo scheduler: %v", err)
		return
	}

	scheduler.Start()
	log.Println("Scheduler suất chiếu đã khởi động (mỗi phút)")
}

// UpdateShowtimeStatuses: SCHEDULED → ONGOING khi đã bắt đầu, SCHEDULED/ONGOING → ENDED khi đã kết thúc
func UpdateShowtimeStatuses(ctx context.Context, db *gorm.DB, clock clockwork.Clock) (started, ended int64, err error) {
	now := clock.Now().UTC()
	db = db.WithContext(ctx)

	res := db.Model(&model.Showtime{}).
		Where("status IN ? AND end_time <= ?", []string{constants.SHOWTIME_SCHEDULED, constants.SHOWTIME_ONGOING}, now).
		Update("status", constants.SHOWTIME_ENDED)
	if res.Error != nil {
		return 0, 0, res.Error
	}
	ended = res.RowsAffected

	res = db.Model(&model.Showtime{}).
		Where("status = ? AND start_time <= ? AND end_time > ?", constants.SHOWTIME_SCHEDULED, now, now).
		Update("status", constants.SHOWTIME_ONGOING)
	if res.Error != nil {
		return 0, ended, res.Error
	}
	started = res.RowsAffected

	if started > 0 || ended > 0 {
		log.Printf("Suất chiếu: %d bắt đầu, %d kết thúc", started, ended)
	}
	return started, ended, nil
}

// Dừng scheduler khi tắt server
func StopShowtimeScheduler() {
	if scheduler != nil {
		<-scheduler.Stop().Done()
		log.Println("Scheduler suất chiếu đã dừng")
	}
}
