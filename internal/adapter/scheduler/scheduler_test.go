package scheduler_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/titanshop/storefront/internal/adapter/scheduler"
	"github.com/titanshop/storefront/internal/core/domain"
)

type countingSyncer struct {
	calls atomic.Int32
	err   error
}

func (c *countingSyncer) Sync(context.Context) (domain.LoadStats, error) {
	c.calls.Add(1)
	if c.err != nil {
		return domain.LoadStats{}, c.err
	}
	return domain.LoadStats{Total: 3}, nil
}

func TestCatalogScheduler(t *testing.T) {
	t.Run("RunSyncsImmediately", func(t *testing.T) {
		syncer := new(countingSyncer)
		s, err := scheduler.NewCatalogScheduler(t.Context(), syncer, time.Hour)
		require.NoError(t, err)

		s.Run()
		assert.EqualValues(t, 1, syncer.calls.Load())
		s.Close(t.Context())
	})

	t.Run("SyncFailureDoesNotStopScheduler", func(t *testing.T) {
		syncer := &countingSyncer{err: errors.New("feed unavailable")}
		s, err := scheduler.NewCatalogScheduler(t.Context(), syncer, time.Hour)
		require.NoError(t, err)

		s.Run()
		assert.EqualValues(t, 1, syncer.calls.Load())
		s.Close(t.Context())
	})
}
