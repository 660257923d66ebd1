// Package cli holds state and helpers shared by the vnote subcommands.
package cli

import (
	"context"
	"fmt"
	"strconv"

	"voicenotes/internal/app"
	"voicenotes/internal/app/repository"
	"voicenotes/internal/app/summarizer"
	"voicenotes/internal/config"
)

var (
	ConfigPath string
	Verbose    bool
)

// LoadConfig reads .env, the config file and the environment. Verbose
// switches to the development logger.
func LoadConfig() (*config.Config, error) {
	cfg, err := config.InitializeConfig(ConfigPath)
	if err != nil {
		return nil, err
	}
	if Verbose {
		cfg.Log.Development = true
	}
	return cfg, nil
}

// InitApp builds the full application.
func InitApp() (*app.App, func(), error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, nil, err
	}
	return app.InitializeApp(cfg)
}

// InitStore opens only the record store.
func InitStore() (repository.RecordStore, func(), error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, nil, err
	}
	return app.InitializeStore(cfg)
}

// ParseID parses a positive record or note id argument.
func ParseID(s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}

// WaitTerminal consumes changes until every id in ids has reached a
// terminal status, calling onTerminal for each. It returns early with
// ctx's error.
func WaitTerminal(ctx context.Context, changes <-chan summarizer.Change, ids map[int]struct{}, onTerminal func(summarizer.Change)) error {
	remaining := make(map[int]struct{}, len(ids))
	for id := range ids {
		remaining[id] = struct{}{}
	}

	for len(remaining) > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case change, ok := <-changes:
			if !ok {
				return fmt.Errorf("orchestrator stopped with %d records pending", len(remaining))
			}
			if !change.Terminal() {
				continue
			}
			if _, ok := remaining[change.Record.ID]; !ok {
				continue
			}
			delete(remaining, change.Record.ID)
			if onTerminal != nil {
				onTerminal(change)
			}
		}
	}
	return nil
}
