package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"cinema_booking/constants"
	"cinema_booking/model"

	"github.com/jonboulle/clockwork"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// PromotionRule là quy tắc giảm giá đã qua kiểm tra
type PromotionRule struct {
	PromotionId   uint
	Code          string
	DiscountType  string
	DiscountValue decimal.Decimal
	MaxDiscount   decimal.Decimal
}

// BookingContext mô tả đơn đặt vé dùng để xét điều kiện khuyến mãi
type BookingContext struct {
	CinemaId   uint
	MovieId    uint
	ShowtimeId uint
	SeatTypes  []string
}

type PromotionValidator struct {
	db    *gorm.DB
	clock clockwork.Clock
	log   *logrus.Entry
}

func NewPromotionValidator(db *gorm.DB, clock clockwork.Clock) *PromotionValidator {
	return &PromotionValidator{db: db, clock: clock, log: logrus.WithField("component", "promotion")}
}

func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Validate kiểm tra mã theo thứ tự: tồn tại, hạn dùng, giới hạn chung, giới hạn mỗi khách, điều kiện áp dụng.
// Không ghi gì ngoài việc đánh dấu hết hạn cho mã đã quá ngày.
func (v *PromotionValidator) Validate(ctx context.Context, code string, customerId uint, booking BookingContext) (PromotionRule, error) {
	code = NormalizeCode(code)
	now := v.clock.Now().UTC()
	db := v.db.WithContext(ctx)

	if _, err := expirePromotions(db, now, code); err != nil {
		return PromotionRule{}, err
	}

	var promo model.Promotion
	err := db.Preload("Conditions").Where("code = ?", code).First(&promo).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return PromotionRule{}, &PromotionInvalidError{Code: code, Reason: ReasonNotFound}
	}
	if err != nil {
		return PromotionRule{}, persistErr("load promotion", err)
	}

	if reason, ok := checkUsable(promo, now); !ok {
		return PromotionRule{}, &PromotionInvalidError{Code: code, Reason: reason}
	}

	if promo.MaxUsagePerUser > 0 {
		used, err := countUserUsage(db, promo.ID, customerId)
		if err != nil {
			return PromotionRule{}, err
		}
		if used >= int64(promo.MaxUsagePerUser) {
			return PromotionRule{}, &PromotionInvalidError{Code: code, Reason: ReasonUserCapReached}
		}
	}

	if !appliesTo(promo, booking) {
		return PromotionRule{}, &PromotionInvalidError{Code: code, Reason: ReasonNotApplicable}
	}

	return ruleOf(promo), nil
}

// Redeem ghi nhận một lượt dùng trong transaction của đơn đặt vé.
// Việc tăng usage_count là một câu UPDATE có điều kiện, nên hai đơn tranh nhau lượt cuối chỉ một đơn thắng.
func (v *PromotionValidator) Redeem(ctx context.Context, tx *gorm.DB, rule PromotionRule, customerId, ticketId uint, discount decimal.Decimal) error {
	now := v.clock.Now().UTC()
	tx = tx.WithContext(ctx)

	res := tx.Model(&model.Promotion{}).
		Where("id = ? AND status = ? AND start_date <= ? AND end_date >= ?", rule.PromotionId, constants.PROMOTION_ACTIVE, now, now).
		Where("(max_usage = 0 OR usage_count < max_usage)").
		UpdateColumn("usage_count", gorm.Expr("usage_count + ?", 1))
	if res.Error != nil {
		return persistErr("increment promotion usage", res.Error)
	}

	var promo model.Promotion
	if err := tx.First(&promo, rule.PromotionId).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return unavailable(rule.Code, ReasonNotFound)
		}
		return persistErr("reload promotion", err)
	}

	// mã đã qua Validate, mọi lý do thất bại ở bước này đều là PromotionRace
	if res.RowsAffected == 0 {
		reason, ok := checkUsable(promo, now)
		if ok {
			reason = ReasonGlobalCapReached
		}
		return unavailable(rule.Code, reason)
	}

	// dòng promotions đã bị khoá bởi UPDATE ở trên, đếm lại theo khách là an toàn
	if promo.MaxUsagePerUser > 0 {
		used, err := countUserUsage(tx, promo.ID, customerId)
		if err != nil {
			return err
		}
		if used >= int64(promo.MaxUsagePerUser) {
			return unavailable(rule.Code, ReasonUserCapReached)
		}
	}

	usage := model.PromotionUsage{
		PromotionId:     promo.ID,
		TicketId:        ticketId,
		CustomerId:      customerId,
		DiscountApplied: discount.InexactFloat64(),
		UsedAt:          now,
	}
	if err := tx.Create(&usage).Error; err != nil {
		return persistErr("insert promotion usage", err)
	}

	v.log.WithFields(logrus.Fields{
		"code":       promo.Code,
		"customerId": customerId,
		"ticketId":   ticketId,
		"usageCount": promo.UsageCount,
	}).Info("Đã ghi nhận lượt dùng khuyến mãi")
	return nil
}

func unavailable(code string, reason RejectionReason) error {
	return fmt.Errorf("%w: %q %s", ErrPromotionRace, code, reason)
}

// Rollback xoá lượt dùng của vé và trả lại lượt cho mã
func (v *PromotionValidator) Rollback(ctx context.Context, tx *gorm.DB, ticketId uint) error {
	tx = tx.WithContext(ctx)
	var usage model.PromotionUsage
	err := tx.Where("ticket_id = ?", ticketId).First(&usage).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return persistErr("load promotion usage", err)
	}

	if err := tx.Delete(&usage).Error; err != nil {
		return persistErr("delete promotion usage", err)
	}
	if err := tx.Model(&model.Promotion{}).
		Where("id = ? AND usage_count > 0", usage.PromotionId).
		UpdateColumn("usage_count", gorm.Expr("usage_count - ?", 1)).Error; err != nil {
		return persistErr("decrement promotion usage", err)
	}
	return nil
}

// Activate đánh dấu lượt dùng đã được thanh toán
func (v *PromotionValidator) Activate(ctx context.Context, tx *gorm.DB, ticketId uint) error {
	now := v.clock.Now().UTC()
	err := tx.WithContext(ctx).Model(&model.PromotionUsage{}).
		Where("ticket_id = ? AND activated = ?", ticketId, false).
		Updates(map[string]any{"activated": true, "activated_at": now}).Error
	return persistErr("activate promotion usage", err)
}

// Usage thống kê số lượt dùng của một mã
func (v *PromotionValidator) Usage(ctx context.Context, code string) (model.PromotionUsageSummary, error) {
	db := v.db.WithContext(ctx)
	var promo model.Promotion
	err := db.Where("code = ?", NormalizeCode(code)).First(&promo).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.PromotionUsageSummary{}, ErrPromotionNotFound
	}
	if err != nil {
		return model.PromotionUsageSummary{}, persistErr("load promotion", err)
	}

	summary := model.PromotionUsageSummary{Code: promo.Code, Status: promo.Status, MaxUsage: promo.MaxUsage}
	if err := db.Model(&model.PromotionUsage{}).Where("promotion_id = ?", promo.ID).Count(&summary.Total).Error; err != nil {
		return summary, persistErr("count usage", err)
	}
	if err := db.Model(&model.PromotionUsage{}).Where("promotion_id = ? AND activated = ?", promo.ID, true).Count(&summary.Activated).Error; err != nil {
		return summary, persistErr("count activated usage", err)
	}
	return summary, nil
}

// ComputeDiscount tính tiền giảm: phần trăm làm tròn xuống, giới hạn bởi MaxDiscount và tổng tiền
func ComputeDiscount(rule PromotionRule, total decimal.Decimal) decimal.Decimal {
	var discount decimal.Decimal
	switch rule.DiscountType {
	case constants.DISCOUNT_PERCENTAGE:
		discount = total.Mul(rule.DiscountValue).Div(decimal.NewFromInt(100)).Floor()
	case constants.DISCOUNT_FIXED:
		discount = rule.DiscountValue
	}
	if rule.MaxDiscount.IsPositive() && discount.GreaterThan(rule.MaxDiscount) {
		discount = rule.MaxDiscount
	}
	if discount.IsNegative() {
		return decimal.Zero
	}
	if discount.GreaterThan(total) {
		return total
	}
	return discount
}

func checkUsable(promo model.Promotion, now time.Time) (RejectionReason, bool) {
	switch {
	case promo.Status == constants.PROMOTION_DISABLED:
		return ReasonNotFound, false
	case promo.Status == constants.PROMOTION_EXPIRED,
		now.Before(promo.StartDate), now.After(promo.EndDate):
		return ReasonExpired, false
	case promo.MaxUsage > 0 && promo.UsageCount >= promo.MaxUsage:
		return ReasonGlobalCapReached, false
	}
	return "", true
}

// appliesTo: điều kiện cùng loại là OR, khác loại là AND
func appliesTo(promo model.Promotion, booking BookingContext) bool {
	if promo.CinemaId != nil && *promo.CinemaId != booking.CinemaId {
		return false
	}
	allowed := map[string][]string{}
	for _, c := range promo.Conditions {
		allowed[c.ConditionType] = append(allowed[c.ConditionType], strings.TrimSpace(c.ConditionValue))
	}
	for kind, values := range allowed {
		switch kind {
		case constants.CONDITION_MOVIE:
			if !containsFold(values, strconv.FormatUint(uint64(booking.MovieId), 10)) {
				return false
			}
		case constants.CONDITION_SHOWTIME:
			if !containsFold(values, strconv.FormatUint(uint64(booking.ShowtimeId), 10)) {
				return false
			}
		case constants.CONDITION_SEAT_TYPE:
			for _, st := range booking.SeatTypes {
				if !containsFold(values, st) {
					return false
				}
			}
		default:
			return false
		}
	}
	return true
}

func ruleOf(promo model.Promotion) PromotionRule {
	return PromotionRule{
		PromotionId:   promo.ID,
		Code:          promo.Code,
		DiscountType:  promo.DiscountType,
		DiscountValue: decimal.NewFromFloat(promo.DiscountValue),
		MaxDiscount:   decimal.NewFromFloat(promo.MaxDiscount),
	}
}

func countUserUsage(db *gorm.DB, promotionId, customerId uint) (int64, error) {
	var used int64
	err := db.Model(&model.PromotionUsage{}).
		Where("promotion_id = ? AND customer_id = ?", promotionId, customerId).
		Count(&used).Error
	return used, persistErr("count customer usage", err)
}

// expirePromotions chuyển các mã quá hạn sang EXPIRED; code rỗng nghĩa là tất cả
func expirePromotions(db *gorm.DB, now time.Time, code string) (int64, error) {
	q := db.Model(&model.Promotion{}).
		Where("status = ? AND end_date < ?", constants.PROMOTION_ACTIVE, now)
	if code != "" {
		q = q.Where("code = ?", code)
	}
	res := q.Update("status", constants.PROMOTION_EXPIRED)
	if res.Error != nil {
		return 0, persistErr("expire promotions", res.Error)
	}
	return res.RowsAffected, nil
}

func containsFold(values []string, v string) bool {
	for _, s := range values {
		if strings.EqualFold(s, v) {
			return true
		}
	}
	return false
}
