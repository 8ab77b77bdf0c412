package shared

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubEvent struct {
	BaseDomainEvent
}

func TestNewBaseAggregateRoot(t *testing.T) {
	a := NewBaseAggregateRoot()

	assert.NotEqual(t, uuid.Nil, a.ID)
	assert.Equal(t, 1, a.GetVersion())
	assert.Equal(t, a.CreatedAt, a.UpdatedAt)
	assert.Empty(t, a.GetDomainEvents())
}

func TestBaseAggregateRoot_Touch(t *testing.T) {
	a := NewBaseAggregateRoot()
	at := a.CreatedAt.Add(time.Minute)

	a.Touch(at)
	a.Touch(at)

	assert.Equal(t, 3, a.Version)
	assert.Equal(t, at, a.UpdatedAt)
}

func TestBaseAggregateRoot_PullDomainEvents(t *testing.T) {
	a := NewBaseAggregateRoot()
	a.AddDomainEvent(&stubEvent{NewBaseDomainEvent("LandedCostVoucherCreated", "LandedCostVoucher", a.ID)})
	a.AddDomainEvent(&stubEvent{NewBaseDomainEvent("LandedCostVoucherRevised", "LandedCostVoucher", a.ID)})

	events := a.PullDomainEvents()
	require.Len(t, events, 2)
	assert.Equal(t, "LandedCostVoucherCreated", events[0].EventType())
	assert.Equal(t, a.ID, events[1].AggregateID())
	assert.Empty(t, a.PullDomainEvents())
}

func TestFilter_Paging(t *testing.T) {
	f := DefaultFilter()
	assert.True(t, f.Paged())
	assert.Equal(t, 0, f.Offset())

	f.Page = 3
	assert.Equal(t, 40, f.Offset())

	f.PageSize = 500
	assert.Equal(t, MaxPageSize, f.Limit())
	assert.Equal(t, 200, f.Offset())

	assert.False(t, Filter{}.Paged())
	assert.Equal(t, 0, Filter{Page: -1, PageSize: 10}.Offset())
}

func TestNewPaginated_TotalPages(t *testing.T) {
	tests := []struct {
		total    int64
		pageSize int
		want     int
	}{
		{0, 20, 0},
		{1, 20, 1},
		{20, 20, 1},
		{21, 20, 2},
		{5, 0, 0},
	}
	for _, tt := range tests {
		p := NewPaginated([]string{}, tt.total, 1, tt.pageSize)
		assert.Equal(t, tt.want, p.TotalPages, "total=%d size=%d", tt.total, tt.pageSize)
	}
}
