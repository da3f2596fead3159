package clock

import "go.uber.org/fx"

// Module provides the system clock to the fx graph.
var Module = fx.Module("clock",
	fx.Provide(func() Clock {
		return SystemClock{}
	}),
)
