package logging_test

import (
	"context"
	"testing"

	"github.com/agentstation/poolmatch/pkg/logging"
	"github.com/stretchr/testify/assert"
)

func TestContextFunctions(t *testing.T) {
	t.Run("WithSource adds source to context", func(t *testing.T) {
		ctx := context.Background()
		ctx = logging.WithSource(ctx, "results-2024")

		// Extract logger and verify it has the source field
		logger := logging.FromContext(ctx)
		assert.NotNil(t, logger)
	})

	t.Run("WithRecord adds record to context", func(t *testing.T) {
		ctx := context.Background()
		ctx = logging.WithRecord(ctx, 42)

		logger := logging.FromContext(ctx)
		assert.NotNil(t, logger)
	})

	t.Run("WithOperation adds operation to context", func(t *testing.T) {
		ctx := context.Background()
		ctx = logging.WithOperation(ctx, "match_pass")

		logger := logging.FromContext(ctx)
		assert.NotNil(t, logger)
	})

	t.Run("WithFields adds custom fields to context", func(t *testing.T) {
		ctx := context.Background()
		fields := map[string]interface{}{
			"pool_size": 128,
			"floor":     3,
		}
		ctx = logging.WithFields(ctx, fields)

		logger := logging.FromContext(ctx)
		assert.NotNil(t, logger)
	})

	t.Run("FromContext returns logger from context", func(t *testing.T) {
		ctx := context.Background()

		// First call should create a new logger
		logger1 := logging.FromContext(ctx)
		assert.NotNil(t, logger1)

		// Add source and get logger again
		ctx = logging.WithSource(ctx, "registration-roster")
		logger2 := logging.FromContext(ctx)
		assert.NotNil(t, logger2)
	})

	t.Run("Ctx extracts logger from context", func(t *testing.T) {
		ctx := context.Background()
		ctx = logging.WithSource(ctx, "directory")

		logger := logging.Ctx(ctx)
		assert.NotNil(t, logger)
	})

	t.Run("WithRunID threads the run ID", func(t *testing.T) {
		ctx := context.Background()
		ctx = logging.WithRunID(ctx, "run-abc")

		assert.Equal(t, "run-abc", logging.RunID(ctx))
		assert.NotNil(t, logging.FromContext(ctx))
	})

	t.Run("RunID empty without run", func(t *testing.T) {
		assert.Empty(t, logging.RunID(context.Background()))
	})

	t.Run("chaining context functions", func(t *testing.T) {
		ctx := context.Background()
		ctx = logging.WithSource(ctx, "results-2024")
		ctx = logging.WithOperation(ctx, "dedupe")
		ctx = logging.WithRecord(ctx, 7)

		logger := logging.FromContext(ctx)
		assert.NotNil(t, logger)
	})
}
