package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"cinema_booking/constants"
	"cinema_booking/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeatIndex_ConcurrentHoldsOnSharedSeat(t *testing.T) {
	// Arrange
	f := newPooledFixture(t, 8)
	ctx := context.Background()
	shared := f.normal[0]
	// mỗi request gồm ghế chung và một ghế riêng
	var requests [][]uint
	for _, own := range append(append([]model.Seat{}, f.normal[1:]...), f.vip[0]) {
		requests = append(requests, pick(shared, own))
	}

	// Act
	var (
		mu     sync.Mutex
		leases []*Lease
		errs   []error
	)
	race(len(requests), func(i int) {
		lease, err := f.index.TryHold(ctx, f.showtime.ID, requests[i], fmt.Sprintf("USER_%d", i))
		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			errs = append(errs, err)
			return
		}
		leases = append(leases, lease)
	})

	// Assert
	require.Len(t, leases, 1)
	require.Len(t, errs, len(requests)-1)
	for _, err := range errs {
		var seatErr *SeatUnavailableError
		require.True(t, errors.As(err, &seatErr), "unexpected error: %v", err)
		assert.Equal(t, []uint{shared.ID}, seatErr.SeatIds)
	}

	assert.Equal(t, constants.SEAT_HELD, f.seatStatus(t, shared.ID))
	var held int64
	require.NoError(t, f.db.Model(&model.ShowtimeSeat{}).
		Where("showtime_id = ? AND status = ?", f.showtime.ID, constants.SEAT_HELD).
		Count(&held).Error)
	// chỉ hai ghế của request thắng bị giữ, ghế riêng của các request thua vẫn trống
	assert.EqualValues(t, 2, held)
}

func TestSeatIndex_PartialOverlapChangesNothing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.index.TryHold(ctx, f.showtime.ID, pick(f.normal[0]), "USER_1")
	require.NoError(t, err)

	_, err = f.index.TryHold(ctx, f.showtime.ID, pick(f.normal[0], f.normal[1], f.normal[2]), "USER_2")

	var seatErr *SeatUnavailableError
	require.ErrorAs(t, err, &seatErr)
	assert.Equal(t, []uint{f.normal[0].ID}, seatErr.SeatIds)
	assert.Equal(t, constants.SEAT_AVAILABLE, f.seatStatus(t, f.normal[1].ID))
	assert.Equal(t, constants.SEAT_AVAILABLE, f.seatStatus(t, f.normal[2].ID))
}

func TestSeatIndex_RejectsSeatsOutsideRoom(t *testing.T) {
	f := newFixture(t)

	_, err := f.index.TryHold(context.Background(), f.showtime.ID, pick(f.normal[0], f.foreign), "USER_1")

	var seatErr *SeatUnavailableError
	require.ErrorAs(t, err, &seatErr)
	assert.Equal(t, []uint{f.foreign.ID}, seatErr.SeatIds)
	assert.Equal(t, constants.SEAT_AVAILABLE, f.seatStatus(t, f.normal[0].ID))
}

func TestSeatIndex_DuplicateIdsCollapse(t *testing.T) {
	f := newFixture(t)

	lease, err := f.index.TryHold(context.Background(), f.showtime.ID,
		[]uint{f.normal[3].ID, f.normal[3].ID, f.normal[2].ID}, "USER_1")

	require.NoError(t, err)
	assert.Equal(t, pick(f.normal[2], f.normal[3]), lease.SeatIds)
	assert.True(t, baseNow.Add(5*time.Minute).Equal(lease.ExpiresAt))
}

func TestSeatIndex_EmptyAndUnknownShowtime(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.index.TryHold(ctx, f.showtime.ID, nil, "USER_1")
	assert.ErrorIs(t, err, ErrNoSeats)

	_, err = f.index.TryHold(ctx, 9999, pick(f.normal[0]), "USER_1")
	assert.ErrorIs(t, err, ErrShowtimeNotFound)
}

func TestSeatIndex_ExpiredLeaseFreesSeats(t *testing.T) {
	// Arrange
	f := newFixture(t)
	ctx := context.Background()
	lease, err := f.index.TryHold(ctx, f.showtime.ID, pick(f.normal[0], f.normal[1]), "USER_1")
	require.NoError(t, err)

	// Act
	f.clock.Advance(6 * time.Minute)
	seatMap, err := f.index.SeatMap(ctx, f.showtime.ID)

	// Assert
	require.NoError(t, err)
	for _, seat := range seatMap.Seats {
		assert.Equal(t, constants.SEAT_AVAILABLE, seat.Status, seat.Label)
	}

	// hold mới lấy được ghế của lease hết hạn
	other, err := f.index.TryHold(ctx, f.showtime.ID, pick(f.normal[0]), "USER_2")
	require.NoError(t, err)
	assert.NotEqual(t, lease.ID, other.ID)

	// lease cũ không commit được nữa
	err = f.index.Commit(ctx, f.db, lease, 1)
	assert.ErrorIs(t, err, ErrLeaseExpired)
}

func TestSeatIndex_SeatMapShowsHeldAndBooked(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	held, err := f.index.TryHold(ctx, f.showtime.ID, pick(f.normal[0]), "USER_1")
	require.NoError(t, err)
	booked, err := f.index.TryHold(ctx, f.showtime.ID, pick(f.vip[0]), "USER_2")
	require.NoError(t, err)
	require.NoError(t, f.index.Commit(ctx, f.db, booked, 42))

	seatMap, err := f.index.SeatMap(ctx, f.showtime.ID)

	require.NoError(t, err)
	require.Len(t, seatMap.Seats, 10)
	byId := map[uint]model.SeatView{}
	for _, s := range seatMap.Seats {
		byId[s.SeatId] = s
	}
	assert.Equal(t, constants.SEAT_HELD, byId[f.normal[0].ID].Status)
	assert.True(t, held.ExpiresAt.Equal(*byId[f.normal[0].ID].ExpiredAt))
	assert.Equal(t, constants.SEAT_BOOKED, byId[f.vip[0].ID].Status)
	assert.Equal(t, "VIP", byId[f.vip[0].ID].SeatType)
	assert.Equal(t, "A1", byId[f.normal[0].ID].Label)
	assert.Equal(t, constants.SEAT_AVAILABLE, byId[f.normal[1].ID].Status)
}

func TestSeatIndex_ReleaseIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	lease, err := f.index.TryHold(ctx, f.showtime.ID, pick(f.normal[0]), "USER_1")
	require.NoError(t, err)

	require.NoError(t, f.index.Release(ctx, lease))
	require.NoError(t, f.index.Release(ctx, lease))

	assert.Equal(t, constants.SEAT_AVAILABLE, f.seatStatus(t, f.normal[0].ID))
	events := f.events.seatEvents()
	require.Len(t, events, 2) // HELD rồi AVAILABLE, lần release thứ hai không phát
	assert.Equal(t, constants.SEAT_AVAILABLE, events[1].Status)
}

func TestSeatIndex_ReleaseDoesNotTouchBookedSeats(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	lease, err := f.index.TryHold(ctx, f.showtime.ID, pick(f.normal[0]), "USER_1")
	require.NoError(t, err)
	require.NoError(t, f.index.Commit(ctx, f.db, lease, 7))

	require.NoError(t, f.index.Release(ctx, lease))

	assert.Equal(t, constants.SEAT_BOOKED, f.seatStatus(t, f.normal[0].ID))
}

func TestSeatIndex_ReclaimExpired(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.index.TryHold(ctx, f.showtime.ID, pick(f.normal[0], f.normal[1]), "USER_1")
	require.NoError(t, err)
	f.clock.Advance(2 * time.Minute)
	_, err = f.index.TryHold(ctx, f.showtime.ID, pick(f.normal[2]), "USER_2")
	require.NoError(t, err)

	f.clock.Advance(4 * time.Minute)
	n, err := f.index.ReclaimExpired(ctx)

	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
	assert.Equal(t, constants.SEAT_AVAILABLE, f.seatStatus(t, f.normal[0].ID))
	assert.Equal(t, constants.SEAT_HELD, f.seatStatus(t, f.normal[2].ID))

	n, err = f.index.ReclaimExpired(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 0, n)
}
