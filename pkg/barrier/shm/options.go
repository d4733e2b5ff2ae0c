package shm

// DefaultSpinBudget is the number of relaxed polls a waiter performs before
// it starts yielding the processor between polls.
const DefaultSpinBudget = 1 << 10

type options struct {
	spinBudget int
}

// Option configures a shared-memory barrier.
type Option func(*options)

// WithSpinBudget sets how many polls a waiter spins with a CPU pause hint
// before yielding between polls. Zero yields on every poll, which trades
// wake-up latency for CPU when participants outnumber processors.
func WithSpinBudget(budget int) Option {
	return func(o *options) {
		if budget < 0 {
			budget = 0
		}
		o.spinBudget = budget
	}
}

func newOptions(opts ...Option) options {
	o := options{spinBudget: DefaultSpinBudget}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
