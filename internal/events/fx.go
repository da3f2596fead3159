package events

import "go.uber.org/fx"

// Module provides the shipping event outbox to the fx graph.
var Module = fx.Module("events.outbox",
	fx.Provide(NewOutbox),
)
