package constants

// Trạng thái ghế theo suất chiếu
const (
	SEAT_AVAILABLE = "AVAILABLE"
	SEAT_HELD      = "HELD"
	SEAT_BOOKED    = "BOOKED"
)

// Trạng thái suất chiếu
const (
	SHOWTIME_SCHEDULED = "SCHEDULED"
	SHOWTIME_ONGOING   = "ONGOING"
	SHOWTIME_ENDED     = "ENDED"
	SHOWTIME_CANCELLED = "CANCELLED"
)

// Vòng đời vé
const (
	TICKET_PENDING   = "PENDING"
	TICKET_CONFIRMED = "CONFIRMED"
	TICKET_USED      = "USED"
	TICKET_CANCELLED = "CANCELLED"
)

const (
	PAYMENT_UNPAID   = "UNPAID"
	PAYMENT_PAID     = "PAID"
	PAYMENT_REFUNDED = "REFUNDED"
)

const (
	PROMOTION_ACTIVE   = "ACTIVE"
	PROMOTION_EXPIRED  = "EXPIRED"
	PROMOTION_DISABLED = "DISABLED"

	DISCOUNT_PERCENTAGE = "PERCENTAGE"
	DISCOUNT_FIXED      = "FIXED"

	CONDITION_MOVIE     = "movie"
	CONDITION_SEAT_TYPE = "seat_type"
	CONDITION_SHOWTIME  = "showtime"
)

const (
	ROLE_ADMIN   = "ADMIN"
	ROLE_MANAGER = "MANAGER"
	ROLE_STAFF   = "STAFF"
	// tài khoản của dịch vụ thanh toán gọi callback
	ROLE_PAYMENT = "PAYMENT"
)

var STAFF_ROLES = []string{ROLE_ADMIN, ROLE_MANAGER, ROLE_STAFF}

// Thông báo lỗi trả về client
const (
	ERROR_INTERNAL_ERROR      = "Lỗi hệ thống, vui lòng thử lại"
	DATA_INPUT_IS_NOT_NUMBER  = "Tham số phải là số"
	INVALID_INPUT             = "Dữ liệu không hợp lệ"
	SEAT_UNAVAILABLE          = "Một số ghế đã được giữ hoặc đã bán"
	PROMOTION_INVALID         = "Mã khuyến mãi không hợp lệ"
	PROMOTION_UNAVAILABLE     = "Mã khuyến mãi vừa hết lượt sử dụng, vui lòng đặt lại không dùng mã"
	LEASE_EXPIRED             = "Hết thời gian giữ ghế, vui lòng đặt lại"
	SHOWTIME_NOT_FOUND        = "Suất chiếu không tồn tại"
	SHOWTIME_NOT_BOOKABLE     = "Suất chiếu đã bắt đầu hoặc không mở bán"
	CUSTOMER_NOT_FOUND        = "Khách hàng không tồn tại hoặc đã bị khoá"
	TICKET_NOT_FOUND          = "Vé không tồn tại"
	TICKET_INVALID_TRANSITION = "Trạng thái vé không cho phép thao tác này"
	FORBIDDEN                 = "Không có quyền"
)
