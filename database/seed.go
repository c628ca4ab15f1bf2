package database

import (
	"cinema_booking/constants"
	"cinema_booking/model"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"
)

func parseDate(dateStr string) time.Time {
	t, _ := time.Parse("2006-01-02", dateStr)
	return t
}

func SeedData(db *gorm.DB) {
	seatTypes := []model.SeatType{
		{Type: "NORMAL", PriceModifier: 1},
		{Type: "VIP", PriceModifier: 1.2},
		{Type: "COUPLE", PriceModifier: 2},
	}
	for _, st := range seatTypes {
		if err := db.Where(model.SeatType{Type: st.Type}).FirstOrCreate(&st).Error; err != nil {
			log.Println("failed to seed seat type:", st.Type, "error:", err)
		}
	}

	// Ngày lễ cố định hằng năm tính giá cuối tuần, lễ âm lịch nhập theo từng năm
	holidays := []model.Holiday{
		{Name: "Tết Dương lịch", Date: parseDate("2025-01-01"), IsRecurring: true},
		{Name: "Ngày Giải phóng miền Nam", Date: parseDate("2025-04-30"), IsRecurring: true},
		{Name: "Quốc tế Lao động", Date: parseDate("2025-05-01"), IsRecurring: true},
		{Name: "Quốc khánh", Date: parseDate("2025-09-02"), IsRecurring: true},
		{Name: "Giỗ Tổ Hùng Vương 2026", Date: parseDate("2026-04-26")},
		{Name: "Mùng 1 Tết 2026", Date: parseDate("2026-02-17")},
		{Name: "Mùng 2 Tết 2026", Date: parseDate("2026-02-18")},
		{Name: "Mùng 3 Tết 2026", Date: parseDate("2026-02-19")},
	}
	for _, h := range holidays {
		if err := db.Where(model.Holiday{Name: h.Name}).FirstOrCreate(&h).Error; err != nil {
			log.Println("failed to seed holiday:", h.Name, "error:", err)
		}
	}
}

// SeedDemo tạo một rạp mẫu (1 phòng 5x10 ghế, 1 phim, 1 suất chiếu) khi database còn trống
func SeedDemo(db *gorm.DB, now time.Time) {
	var count int64
	db.Model(&model.Cinema{}).Count(&count)
	if count > 0 {
		return
	}

	var normal, vip model.SeatType
	db.Where("type = ?", "NORMAL").First(&normal)
	db.Where("type = ?", "VIP").First(&vip)

	err := db.Transaction(func(tx *gorm.DB) error {
		cinema := model.Cinema{Name: "Cinema Demo", TimeZone: "Asia/Ho_Chi_Minh"}
		if err := tx.Create(&cinema).Error; err != nil {
			return err
		}
		room := model.Room{Name: "Phòng 1", CinemaId: cinema.ID}
		if err := tx.Create(&room).Error; err != nil {
			return err
		}
		var seats []model.Seat
		for r := 0; r < 5; r++ {
			typeId := normal.ID
			if r >= 3 {
				typeId = vip.ID
			}
			for col := 1; col <= 10; col++ {
				seats = append(seats, model.Seat{Row: string(rune('A' + r)), Column: col, RoomId: room.ID, SeatTypeId: typeId})
			}
		}
		if err := tx.Create(&seats).Error; err != nil {
			return err
		}
		movie := model.Movie{Title: "Demo Movie", Duration: 120}
		if err := tx.Create(&movie).Error; err != nil {
			return err
		}
		start := now.Add(24 * time.Hour).Truncate(time.Hour)
		showtime := model.Showtime{
			StartTime: start,
			EndTime:   start.Add(time.Duration(movie.Duration) * time.Minute),
			Status:    constants.SHOWTIME_SCHEDULED,
			MovieId:   movie.ID,
			RoomId:    room.ID,
		}
		if err := tx.Create(&showtime).Error; err != nil {
			return err
		}
		return tx.Create(&model.Customer{Email: "demo@cinema.local", Phone: "0900000000", UserName: "demo", IsActive: true}).Error
	})
	if err != nil {
		log.Println("failed to seed demo data:", err)
		return
	}
	fmt.Println("Demo data seeded")
}
