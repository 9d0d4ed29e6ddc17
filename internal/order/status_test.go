package order

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/MikeMC777/decor-ecom/internal/module"
)

func TestStatuses_PerModule(t *testing.T) {
	assert.Equal(t, []Status{"processing", "confirmed", "shipped", "delivered", "cancelled"}, Statuses(module.Shop))
	assert.Equal(t, []Status{"processing", "confirmed", "service_scheduled", "service_in_progress", "service_completed", "cancelled"}, Statuses(module.Service))
	assert.Nil(t, Statuses("venue"))
}

func TestTransition(t *testing.T) {
	cases := []struct {
		m        module.Module
		from, to Status
		want     error
	}{
		{module.Shop, StatusProcessing, StatusConfirmed, nil},
		{module.Shop, StatusConfirmed, StatusShipped, nil},
		{module.Shop, StatusProcessing, StatusShipped, ErrIllegalTransition},
		{module.Shop, StatusShipped, StatusConfirmed, ErrIllegalTransition},
		{module.Shop, StatusShipped, StatusCancelled, nil},
		{module.Shop, StatusDelivered, StatusCancelled, ErrIllegalTransition},
		{module.Shop, StatusCancelled, StatusProcessing, ErrIllegalTransition},
		{module.Shop, StatusProcessing, StatusServiceScheduled, ErrUnknownStatus},
		{module.Service, StatusConfirmed, StatusServiceScheduled, nil},
		{module.Service, StatusServiceInProgress, StatusServiceCompleted, nil},
		{module.Service, StatusConfirmed, StatusShipped, ErrUnknownStatus},
		{module.Service, StatusServiceCompleted, StatusCancelled, ErrIllegalTransition},
	}
	for _, tc := range cases {
		err := Transition(tc.m, tc.from, tc.to)
		if tc.want == nil {
			assert.NoError(t, err, "%s %s->%s", tc.m, tc.from, tc.to)
		} else {
			assert.ErrorIs(t, err, tc.want, "%s %s->%s", tc.m, tc.from, tc.to)
		}
	}
}
