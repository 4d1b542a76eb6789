package officer

import (
	"context"
	"testing"

	"fulfillment-be/internal/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Get(ctx context.Context, userID string) (*Officer, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Officer), args.Error(1)
}

func (m *MockRepository) ListActive(ctx context.Context) ([]*Officer, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*Officer), args.Error(1)
}

func (m *MockRepository) ListEligible(ctx context.Context, excludeID string) ([]*Officer, error) {
	args := m.Called(ctx, excludeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*Officer), args.Error(1)
}

func (m *MockRepository) UpdateAvailability(ctx context.Context, userID string, status AvailabilityStatus, maxActiveOrders *int) (*Officer, error) {
	args := m.Called(ctx, userID, status, maxActiveOrders)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Officer), args.Error(1)
}

func TestService_UpdateAvailability(t *testing.T) {
	ctx := context.Background()

	t.Run("Becoming available fires hooks", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo)

		var fired []string
		svc.OnAvailable(func(_ context.Context, id string) { fired = append(fired, id) })

		repo.On("Get", ctx, "officer-1").Return(&Officer{UserID: "officer-1", Active: true, AvailabilityStatus: Unavailable, MaxActiveOrders: 5}, nil)
		repo.On("UpdateAvailability", ctx, "officer-1", Available, (*int)(nil)).
			Return(&Officer{UserID: "officer-1", Active: true, AvailabilityStatus: Available, MaxActiveOrders: 5}, nil)

		o, err := svc.UpdateAvailability(ctx, "officer-1", Available, nil)
		require.NoError(t, err)
		assert.Equal(t, Available, o.AvailabilityStatus)
		assert.Equal(t, []string{"officer-1"}, fired)
		repo.AssertExpectations(t)
	})

	t.Run("Raising capacity while available fires hooks", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo)

		fired := 0
		svc.OnAvailable(func(context.Context, string) { fired++ })

		capacity := 7
		repo.On("Get", ctx, "officer-1").Return(&Officer{UserID: "officer-1", AvailabilityStatus: Available, MaxActiveOrders: 5}, nil)
		repo.On("UpdateAvailability", ctx, "officer-1", Available, &capacity).
			Return(&Officer{UserID: "officer-1", AvailabilityStatus: Available, MaxActiveOrders: 7}, nil)

		_, err := svc.UpdateAvailability(ctx, "officer-1", Available, &capacity)
		require.NoError(t, err)
		assert.Equal(t, 1, fired)
	})

	t.Run("Going unavailable does not fire hooks", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo)

		fired := 0
		svc.OnAvailable(func(context.Context, string) { fired++ })

		repo.On("Get", ctx, "officer-1").Return(&Officer{UserID: "officer-1", AvailabilityStatus: Available, MaxActiveOrders: 5}, nil)
		repo.On("UpdateAvailability", ctx, "officer-1", OnLeave, (*int)(nil)).
			Return(&Officer{UserID: "officer-1", AvailabilityStatus: OnLeave, MaxActiveOrders: 5}, nil)

		_, err := svc.UpdateAvailability(ctx, "officer-1", OnLeave, nil)
		require.NoError(t, err)
		assert.Zero(t, fired)
	})

	t.Run("Invalid status", func(t *testing.T) {
		repo := new(MockRepository)
		_, err := NewService(repo).UpdateAvailability(ctx, "officer-1", "SLEEPING", nil)
		assert.ErrorIs(t, err, apperr.ErrValidation)
		repo.AssertNotCalled(t, "UpdateAvailability", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Invalid capacity", func(t *testing.T) {
		zero := 0
		_, err := NewService(new(MockRepository)).UpdateAvailability(ctx, "officer-1", Available, &zero)
		assert.ErrorIs(t, err, apperr.ErrValidation)
	})

	t.Run("Unknown officer", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("Get", ctx, "ghost").Return(nil, ErrOfficerNotFound)

		_, err := NewService(repo).UpdateAvailability(ctx, "ghost", Available, nil)
		assert.ErrorIs(t, err, apperr.ErrNotFound)
	})
}
