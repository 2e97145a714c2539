package tickets

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/stadium-tickets-go/apperror"
)

func newTestService(t *testing.T, matchIDs ...int64) (Service, *MemoryStore) {
	t.Helper()
	store := NewMemoryStore()
	for _, id := range matchIDs {
		store.AddMatch(id)
	}
	return NewService(store), store
}

func price(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestRegisterSeat(t *testing.T) {
	ctx := context.Background()

	t.Run("new ticket starts FREE", func(t *testing.T) {
		svc, _ := newTestService(t, 1)

		ticket, err := svc.RegisterSeat(ctx, 1, "A", "12", price("50.00"))
		require.NoError(t, err)
		assert.Equal(t, StatusFree, ticket.Status)
		assert.Equal(t, "A", ticket.SeatRow)
		assert.Equal(t, "12", ticket.SeatNumber)
		assert.True(t, ticket.Price.Equal(price("50.00")))
		assert.NotZero(t, ticket.ID)
	})

	t.Run("match is required", func(t *testing.T) {
		svc, _ := newTestService(t, 1)

		_, err := svc.RegisterSeat(ctx, 0, "A", "12", price("50.00"))
		require.Error(t, err)
		assert.True(t, apperror.IsValidationError(err))
		assert.Contains(t, err.Error(), "match is required")
	})

	t.Run("unknown match is not found", func(t *testing.T) {
		svc, _ := newTestService(t, 1)

		_, err := svc.RegisterSeat(ctx, 99, "A", "12", price("50.00"))
		require.Error(t, err)
		assert.True(t, apperror.IsNotFound(err))
	})

	t.Run("seat coordinates are required", func(t *testing.T) {
		svc, _ := newTestService(t, 1)

		_, err := svc.RegisterSeat(ctx, 1, "", "12", price("50.00"))
		assert.True(t, apperror.IsValidationError(err))

		_, err = svc.RegisterSeat(ctx, 1, "A", "", price("50.00"))
		assert.True(t, apperror.IsValidationError(err))

		_, err = svc.RegisterSeat(ctx, 1, "ABCDEF", "12", price("50.00"))
		assert.True(t, apperror.IsValidationError(err))
	})

	t.Run("seat length counts characters, not bytes", func(t *testing.T) {
		svc, _ := newTestService(t, 1)

		// Five multibyte characters fit the VARCHAR(5) column.
		_, err := svc.RegisterSeat(ctx, 1, "ÄÖÜßÉ", "12", price("50.00"))
		assert.NoError(t, err)

		_, err = svc.RegisterSeat(ctx, 1, "ÄÖÜßÉА", "12", price("50.00"))
		assert.True(t, apperror.IsValidationError(err))
	})

	t.Run("negative price is rejected", func(t *testing.T) {
		svc, _ := newTestService(t, 1)

		_, err := svc.RegisterSeat(ctx, 1, "A", "12", price("-1.00"))
		assert.True(t, apperror.IsValidationError(err))
	})

	t.Run("duplicate seat in same match fails", func(t *testing.T) {
		svc, _ := newTestService(t, 1, 2)

		_, err := svc.RegisterSeat(ctx, 1, "A", "12", price("50.00"))
		require.NoError(t, err)

		_, err = svc.RegisterSeat(ctx, 1, "A", "12", price("60.00"))
		require.Error(t, err)
		assert.True(t, apperror.IsValidationError(err))
		assert.Contains(t, err.Error(), "seat already exists")

		// The same coordinates are fine for a different match.
		_, err = svc.RegisterSeat(ctx, 2, "A", "12", price("50.00"))
		assert.NoError(t, err)
	})
}

func TestPurchaseAndCancelLifecycle(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, 1)

	ticket, err := svc.RegisterSeat(ctx, 1, "A", "12", price("50.00"))
	require.NoError(t, err)

	sold, err := svc.Purchase(ctx, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusSold, sold.Status)

	// A sold ticket cannot be purchased again.
	_, err = svc.Purchase(ctx, ticket.ID)
	require.Error(t, err)
	assert.True(t, apperror.IsStateError(err))
	assert.Contains(t, err.Error(), "ticket is not available for purchase")

	freed, err := svc.Cancel(ctx, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusFree, freed.Status)

	// A free ticket cannot be canceled.
	_, err = svc.Cancel(ctx, ticket.ID)
	require.Error(t, err)
	assert.True(t, apperror.IsStateError(err))
	assert.Contains(t, err.Error(), "ticket is not sold, cannot be canceled")

	// The seat is purchasable again after cancellation.
	_, err = svc.Purchase(ctx, ticket.ID)
	assert.NoError(t, err)
}

func TestPurchaseUnknownTicket(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, 1)

	_, err := svc.Purchase(ctx, 42)
	assert.True(t, apperror.IsNotFound(err))

	_, err = svc.Cancel(ctx, 42)
	assert.True(t, apperror.IsNotFound(err))
}

func TestConcurrentPurchaseSingleWinner(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, 1)

	ticket, err := svc.RegisterSeat(ctx, 1, "A", "1", price("75.00"))
	require.NoError(t, err)

	const buyers = 16
	var wg sync.WaitGroup
	results := make(chan error, buyers)

	for i := 0; i < buyers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Purchase(ctx, ticket.ID)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var successes, stateErrors int
	for err := range results {
		switch {
		case err == nil:
			successes++
		case apperror.IsStateError(err):
			stateErrors++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, successes)
	assert.Equal(t, buyers-1, stateErrors)

	final, err := svc.GetByID(ctx, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusSold, final.Status)
}

func TestConcurrentRegisterSeatSingleWinner(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, 1)

	const writers = 16
	var wg sync.WaitGroup
	results := make(chan error, writers)

	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.RegisterSeat(ctx, 1, "B", "7", price("30.00"))
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var successes, validationErrors int
	for err := range results {
		switch {
		case err == nil:
			successes++
		case apperror.IsValidationError(err):
			validationErrors++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, successes)
	assert.Equal(t, writers-1, validationErrors)

	count, err := svc.CountByMatchAndStatus(ctx, 1, StatusFree)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestUpdateSeat(t *testing.T) {
	ctx := context.Background()

	t.Run("moves seat and overwrites status", func(t *testing.T) {
		svc, _ := newTestService(t, 1)
		ticket, err := svc.RegisterSeat(ctx, 1, "A", "12", price("50.00"))
		require.NoError(t, err)

		updated, err := svc.UpdateSeat(ctx, ticket.ID, "B", "3", price("65.00"), "sold")
		require.NoError(t, err)
		assert.Equal(t, "B", updated.SeatRow)
		assert.Equal(t, "3", updated.SeatNumber)
		assert.Equal(t, StatusSold, updated.Status)
		assert.True(t, updated.Price.Equal(price("65.00")))

		// The old seat is vacant again.
		_, err = svc.BySeat(ctx, 1, "A", "12")
		assert.True(t, apperror.IsNotFound(err))
	})

	t.Run("rejects unknown status", func(t *testing.T) {
		svc, _ := newTestService(t, 1)
		ticket, err := svc.RegisterSeat(ctx, 1, "A", "12", price("50.00"))
		require.NoError(t, err)

		_, err = svc.UpdateSeat(ctx, ticket.ID, "A", "12", price("50.00"), "RESERVED")
		assert.True(t, apperror.IsValidationError(err))
	})

	t.Run("cannot move onto an occupied seat", func(t *testing.T) {
		svc, _ := newTestService(t, 1)
		_, err := svc.RegisterSeat(ctx, 1, "A", "1", price("50.00"))
		require.NoError(t, err)
		second, err := svc.RegisterSeat(ctx, 1, "A", "2", price("50.00"))
		require.NoError(t, err)

		_, err = svc.UpdateSeat(ctx, second.ID, "A", "1", price("50.00"), StatusFree)
		require.Error(t, err)
		assert.True(t, apperror.IsValidationError(err))
	})

	t.Run("unknown ticket is not found", func(t *testing.T) {
		svc, _ := newTestService(t, 1)
		_, err := svc.UpdateSeat(ctx, 42, "A", "1", price("50.00"), StatusFree)
		assert.True(t, apperror.IsNotFound(err))
	})
}

func TestQueries(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, 1, 2)

	t1, err := svc.RegisterSeat(ctx, 1, "A", "1", price("50.00"))
	require.NoError(t, err)
	_, err = svc.RegisterSeat(ctx, 1, "A", "2", price("50.00"))
	require.NoError(t, err)
	_, err = svc.RegisterSeat(ctx, 2, "A", "1", price("80.00"))
	require.NoError(t, err)

	_, err = svc.Purchase(ctx, t1.ID)
	require.NoError(t, err)

	all, err := svc.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	byMatch, err := svc.ByMatch(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, byMatch, 2)

	// Status filters are case-insensitive at the service boundary.
	sold, err := svc.ByStatus(ctx, "sold")
	require.NoError(t, err)
	require.Len(t, sold, 1)
	assert.Equal(t, t1.ID, sold[0].ID)

	freeInMatch1, err := svc.ByMatchAndStatus(ctx, 1, "free")
	require.NoError(t, err)
	assert.Len(t, freeInMatch1, 1)

	count, err := svc.CountByMatchAndStatus(ctx, 1, StatusSold)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	found, err := svc.BySeat(ctx, 2, "A", "1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), found.MatchID)

	_, err = svc.BySeat(ctx, 2, "Z", "99")
	assert.True(t, apperror.IsNotFound(err))
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, 1)

	ticket, err := svc.RegisterSeat(ctx, 1, "A", "12", price("50.00"))
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, ticket.ID))

	_, err = svc.GetByID(ctx, ticket.ID)
	assert.True(t, apperror.IsNotFound(err))

	// Deleting again reports not found.
	err = svc.Delete(ctx, ticket.ID)
	assert.True(t, apperror.IsNotFound(err))

	// The seat can be registered again after deletion.
	_, err = svc.RegisterSeat(ctx, 1, "A", "12", price("55.00"))
	assert.NoError(t, err)
}
