package ocall

import (
	"github.com/joeycumines/go-ocall-gateway/telemetry"
	"github.com/joeycumines/go-ocall-gateway/xbl"
)

const (
	// DefaultStackSize is the untrusted stack's default size (spec.md §3:
	// "typical size 2 MiB").
	DefaultStackSize = 2 * 1024 * 1024

	// DefaultLargeBufThreshold is MAX_UNTRUSTED_STACK_BUF, spec.md §4.5
	// step 4: THREAD_STACK_SIZE / 4.
	DefaultLargeBufThreshold = DefaultStackSize / 4

	// DefaultQueueCapacity sizes the exitless queue built by
	// Gateway.NewExitlessQueue when WithQueueCapacity is not given.
	DefaultQueueCapacity = 256
)

type gatewayConfig struct {
	stackSize         int
	largeBufThreshold int
	queueCapacity     int
	spinIterations    int
	logger            telemetry.Logger
	metrics           *telemetry.Metrics
}

func defaultGatewayConfig() gatewayConfig {
	return gatewayConfig{
		stackSize:         DefaultStackSize,
		largeBufThreshold: DefaultLargeBufThreshold,
		queueCapacity:     DefaultQueueCapacity,
		spinIterations:    xbl.DefaultSpinIterations,
		logger:            telemetry.NoOpLogger{},
		metrics:           telemetry.NewMetrics(),
	}
}

// Option configures a Gateway at construction time.
type Option func(*gatewayConfig)

// WithStackSize overrides the per-goroutine untrusted stack size.
func WithStackSize(n int) Option {
	return func(c *gatewayConfig) {
		if n > 0 {
			c.stackSize = n
		}
	}
}

// WithLargeBufThreshold overrides MAX_UNTRUSTED_STACK_BUF.
func WithLargeBufThreshold(n int) Option {
	return func(c *gatewayConfig) {
		if n > 0 {
			c.largeBufThreshold = n
		}
	}
}

// WithQueueCapacity sets the capacity used if InitExitlessQueue's caller
// asks the Gateway to build the queue (see NewExitlessQueue).
func WithQueueCapacity(n int) Option {
	return func(c *gatewayConfig) {
		if n > 0 {
			c.queueCapacity = n
		}
	}
}

// WithSpinIterations overrides RPC_SPINLOCK_TIMEOUT for every XBL this
// Gateway creates.
func WithSpinIterations(n int) Option {
	return func(c *gatewayConfig) {
		if n > 0 {
			c.spinIterations = n
		}
	}
}

// WithLogger attaches a structured logger; the default discards everything.
func WithLogger(l telemetry.Logger) Option {
	return func(c *gatewayConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithMetrics attaches a metrics collector; the default is a private,
// unshared instance.
func WithMetrics(m *telemetry.Metrics) Option {
	return func(c *gatewayConfig) {
		if m != nil {
			c.metrics = m
		}
	}
}
