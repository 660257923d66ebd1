//go:build wireinject
// +build wireinject

package app

import (
	"github.com/google/wire"

	"voicenotes/internal/app/repository"
	"voicenotes/internal/config"
)

// InitializeApp builds every component from cfg. The returned cleanup
// stops the orchestrator and closes the store.
func InitializeApp(cfg *config.Config) (*App, func(), error) {
	wire.Build(provideLogger, storeSet, summarySet, newApp)
	return &App{}, nil, nil
}

// InitializeStore opens only the record store, for commands that never
// talk to the remote service.
func InitializeStore(cfg *config.Config) (repository.RecordStore, func(), error) {
	wire.Build(provideLogger, provideRecordStore)
	return nil, nil, nil
}
