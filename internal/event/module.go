package event

import (
	"context"

	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

// OptionsGroup is the fx value group collecting BusOptions.
const OptionsGroup = "event_bus_options"

// Params are the dependencies of the bus inside an fx application.
type Params struct {
	fx.In

	Logger  zerolog.Logger
	Options []BusOption `group:"event_bus_options"`
}

// Module returns the fx module providing *Bus. The bus is closed when the
// application stops.
func Module() fx.Option {
	return fx.Module("event",
		fx.Provide(ProvideBus),
		fx.Invoke(registerLifecycle),
	)
}

// ProvideBus builds a bus from fx-supplied options.
func ProvideBus(p Params) *Bus {
	opts := append([]BusOption{WithLogger(p.Logger)}, p.Options...)
	return NewBus(opts...)
}

func registerLifecycle(lc fx.Lifecycle, bus *Bus) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return bus.Close(ctx)
		},
	})
}

// ProvideOption wraps a constructor returning a BusOption so its result joins
// the options group.
func ProvideOption(constructor any) fx.Option {
	return fx.Provide(fx.Annotate(constructor, fx.ResultTags(`group:"`+OptionsGroup+`"`)))
}
