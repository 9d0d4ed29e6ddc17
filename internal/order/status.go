package order

import (
	"errors"
	"fmt"
	"slices"

	"github.com/MikeMC777/decor-ecom/internal/module"
)

type Status string

const (
	StatusProcessing        Status = "processing"
	StatusConfirmed         Status = "confirmed"
	StatusShipped           Status = "shipped"
	StatusDelivered         Status = "delivered"
	StatusServiceScheduled  Status = "service_scheduled"
	StatusServiceInProgress Status = "service_in_progress"
	StatusServiceCompleted  Status = "service_completed"
	StatusCancelled         Status = "cancelled"
)

var (
	ErrUnknownStatus     = errors.New("unknown order status")
	ErrIllegalTransition = errors.New("illegal status transition")
)

var chains = map[module.Module][]Status{
	module.Shop:    {StatusProcessing, StatusConfirmed, StatusShipped, StatusDelivered},
	module.Service: {StatusProcessing, StatusConfirmed, StatusServiceScheduled, StatusServiceInProgress, StatusServiceCompleted},
}

// Statuses lists every status an order of module m can hold, in chain order
// with cancelled last.
func Statuses(m module.Module) []Status {
	chain := chains[m]
	if chain == nil {
		return nil
	}
	return append(slices.Clone(chain), StatusCancelled)
}

func Known(m module.Module, s Status) bool {
	return slices.Contains(Statuses(m), s)
}

// Terminal reports whether no further transition is possible from s.
func Terminal(m module.Module, s Status) bool {
	chain := chains[m]
	return s == StatusCancelled || (len(chain) > 0 && s == chain[len(chain)-1])
}

// Transition allows moving to the next state of the chain, or to cancelled
// from any non-terminal state.
func Transition(m module.Module, from, to Status) error {
	if !Known(m, to) {
		return fmt.Errorf("%w %q for %s orders", ErrUnknownStatus, to, m)
	}
	if Terminal(m, from) {
		return fmt.Errorf("%w: order is already %s", ErrIllegalTransition, from)
	}
	if to == StatusCancelled {
		return nil
	}
	chain := chains[m]
	i := slices.Index(chain, from)
	if i < 0 || i+1 >= len(chain) || chain[i+1] != to {
		return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, from, to)
	}
	return nil
}
