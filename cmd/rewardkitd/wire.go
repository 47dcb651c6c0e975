//go:build wireinject
// +build wireinject

package main

import (
	"context"

	"github.com/google/wire"
)

// BuildApp wires the daemon components using Google Wire.
func BuildApp(ctx context.Context) (*App, error) {
	wire.Build(
		provideConfig,
		provideLogger,
		provideHub,
		provideActions,
		provideBackend,
		provideService,
		provideBoard,
		provideServer,
		wire.Struct(new(App), "*"),
	)
	return nil, nil
}
