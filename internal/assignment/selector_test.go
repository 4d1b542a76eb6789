package assignment

import (
	"context"
	"errors"
	"testing"

	"fulfillment-be/internal/officer"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockDirectory struct {
	mock.Mock
}

func (m *MockDirectory) Get(ctx context.Context, userID string) (*officer.Officer, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*officer.Officer), args.Error(1)
}

func (m *MockDirectory) ListActive(ctx context.Context) ([]*officer.Officer, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*officer.Officer), args.Error(1)
}

func (m *MockDirectory) ListEligible(ctx context.Context, excludeID string) ([]*officer.Officer, error) {
	args := m.Called(ctx, excludeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*officer.Officer), args.Error(1)
}

type staticCounts map[string]int

func (c staticCounts) ActiveOrderCounts(context.Context) (map[string]int, error) {
	return c, nil
}

func available(id string) *officer.Officer {
	return &officer.Officer{UserID: id, Active: true, AvailabilityStatus: officer.Available, MaxActiveOrders: 5}
}

func TestPickOfficer(t *testing.T) {
	a, b, c := available("A"), available("B"), available("C")

	t.Run("Least busy wins and ties go to the lowest id", func(t *testing.T) {
		counts := map[string]int{"A": 2, "B": 2, "C": 4}
		for i := 0; i < 20; i++ {
			got := PickOfficer([]*officer.Officer{c, b, a}, counts, "", true)
			require.NotNil(t, got)
			assert.Equal(t, "A", got.Officer.UserID)
			assert.Equal(t, 2, got.ActiveOrders)
		}
	})

	t.Run("Exclusion", func(t *testing.T) {
		got := PickOfficer([]*officer.Officer{a, b, c}, map[string]int{"A": 2, "B": 2, "C": 4}, "A", true)
		require.NotNil(t, got)
		assert.Equal(t, "B", got.Officer.UserID)
	})

	t.Run("Capacity exhausted", func(t *testing.T) {
		got := PickOfficer([]*officer.Officer{a, b, c}, map[string]int{"A": 5, "B": 5, "C": 5}, "", true)
		assert.Nil(t, got)
	})

	t.Run("Unavailable and inactive officers are skipped", func(t *testing.T) {
		busy := &officer.Officer{UserID: "0", Active: true, AvailabilityStatus: officer.Busy, MaxActiveOrders: 5}
		inactive := &officer.Officer{UserID: "1", Active: false, AvailabilityStatus: officer.Available, MaxActiveOrders: 5}

		got := PickOfficer([]*officer.Officer{busy, inactive, c}, map[string]int{"C": 4}, "", true)
		require.NotNil(t, got)
		assert.Equal(t, "C", got.Officer.UserID)

		got = PickOfficer([]*officer.Officer{busy, inactive}, nil, "", false)
		require.NotNil(t, got)
		assert.Equal(t, "0", got.Officer.UserID)
	})

	t.Run("No officers", func(t *testing.T) {
		assert.Nil(t, PickOfficer(nil, nil, "", true))
	})
}

func TestSelector_Select(t *testing.T) {
	ctx := context.Background()

	t.Run("Strict policy returns nil when nobody is available", func(t *testing.T) {
		dir := new(MockDirectory)
		dir.On("ListEligible", ctx, "").Return([]*officer.Officer{}, nil)

		got, err := NewSelector(dir, staticCounts{}, false).Select(ctx, "")
		require.NoError(t, err)
		assert.Nil(t, got)
		dir.AssertNotCalled(t, "ListActive", mock.Anything)
	})

	t.Run("Fallback considers any active officer", func(t *testing.T) {
		busy := &officer.Officer{UserID: "B", Active: true, AvailabilityStatus: officer.Busy, MaxActiveOrders: 5}
		dir := new(MockDirectory)
		dir.On("ListEligible", ctx, "A").Return([]*officer.Officer{}, nil)
		dir.On("ListActive", ctx).Return([]*officer.Officer{available("A"), busy}, nil)

		got, err := NewSelector(dir, staticCounts{"B": 1}, true).Select(ctx, "A")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "B", got.Officer.UserID)
	})

	t.Run("Directory error", func(t *testing.T) {
		dir := new(MockDirectory)
		dir.On("ListEligible", ctx, "").Return(nil, errors.New("db down"))

		_, err := NewSelector(dir, staticCounts{}, false).Select(ctx, "")
		assert.Error(t, err)
	})
}
