package telemetry_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/logihub/logihub/internal/telemetry"
)

func TestInit_Disabled(t *testing.T) {
	ctx := context.Background()

	provider, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    "test-service",
		ServiceVersion: "1.0.0",
		OTLPEndpoint:   "localhost:4317",
		Enabled:        false,
	})

	require.NoError(t, err)
	assert.NotNil(t, provider)
	assert.NotNil(t, provider.Tracer)
	assert.Nil(t, provider.TracerProvider)

	assert.NoError(t, provider.Shutdown(ctx))
}

func TestProvider_Shutdown_NilProvider(t *testing.T) {
	provider := &telemetry.Provider{}
	assert.NoError(t, provider.Shutdown(context.Background()))
}
