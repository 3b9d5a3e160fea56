// Package worker hosts the asynq task handlers run by the background
// worker process.
package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/hibiken/asynq"
	log "github.com/sirupsen/logrus"

	"github.com/rajramo61/aem-core-wcm-components/internal/clientlibs"
	"github.com/rajramo61/aem-core-wcm-components/internal/services"
	"github.com/rajramo61/aem-core-wcm-components/internal/store"
	"github.com/rajramo61/aem-core-wcm-components/internal/tasks"
)

// RebuildDeps carries the dependencies of the library rebuild handler.
type RebuildDeps struct {
	Manager    *clientlibs.Manager
	Libraries  store.LibraryStore
	Aggregator *services.AggregatorService
}

// RegisterHandlers registers all task handlers on the mux.
func RegisterHandlers(mux *asynq.ServeMux, deps RebuildDeps) {
	mux.HandleFunc(tasks.TypeLibraryRebuild, HandleLibraryRebuild(deps))
}

// HandleLibraryRebuild drops cached output for the payload's categories and
// rewarms it by aggregating both kinds once. An empty payload rebuilds
// everything: the whole cache is dropped and every category any registered
// library declares gets rewarmed. Rewarming reuses the aggregator's
// soft-failure semantics, so a broken library does not fail the task.
func HandleLibraryRebuild(deps RebuildDeps) func(context.Context, *asynq.Task) error {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload tasks.LibraryRebuildPayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return fmt.Errorf("library rebuild: decode payload: %w: %w", err, asynq.SkipRetry)
		}

		log.Infof("Rebuilding client library output for categories %v.", payload.Categories)
		deps.Manager.Invalidate(ctx, payload.Categories...)

		categories := payload.Categories
		if len(categories) == 0 {
			all, err := registeredCategories(ctx, deps.Libraries)
			if err != nil {
				return fmt.Errorf("library rebuild: %w", err)
			}
			categories = all
		}
		if len(categories) == 0 {
			return nil
		}

		csv := strings.Join(categories, ",")
		deps.Aggregator.GetClientLibOutput(ctx, csv, "css")
		deps.Aggregator.GetClientLibOutput(ctx, csv, "js")
		return nil
	}
}

// registeredCategories pages through the library store and collects every
// declared category once, preserving first-seen order.
func registeredCategories(ctx context.Context, libraries store.LibraryStore) ([]string, error) {
	const pageSize = 100
	seen := make(map[string]bool)
	var categories []string
	for offset := 0; ; offset += pageSize {
		libs, err := libraries.ListLibraries(ctx, pageSize, offset)
		if err != nil {
			return nil, fmt.Errorf("list libraries: %w", err)
		}
		for _, lib := range libs {
			for _, c := range lib.Categories {
				if seen[c] {
					continue
				}
				seen[c] = true
				categories = append(categories, c)
			}
		}
		if len(libs) < pageSize {
			return categories, nil
		}
	}
}
