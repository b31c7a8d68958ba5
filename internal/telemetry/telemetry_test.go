package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/briefd/internal/config"
)

func TestNew_DisabledIsNoop(t *testing.T) {
	tel, err := New(context.Background(), NewDefaultConfig())
	require.NoError(t, err)
	require.NotNil(t, tel)

	assert.False(t, tel.IsEnabled())
	assert.False(t, tel.Degraded())

	// Tracer and Meter must still be usable.
	tracer := tel.Tracer("briefd.test")
	_, span := tracer.Start(context.Background(), "noop")
	span.End()

	assert.NoError(t, tel.Shutdown(context.Background()))
}

func TestNew_NilConfigUsesDefaults(t *testing.T) {
	tel, err := New(context.Background(), nil)
	require.NoError(t, err)
	assert.False(t, tel.IsEnabled())
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:    "disabled skips validation",
			mutate:  func(c *Config) { c.Endpoint = "" },
			wantErr: false,
		},
		{
			name: "enabled without endpoint",
			mutate: func(c *Config) {
				c.Enabled = true
				c.Endpoint = ""
			},
			wantErr: true,
		},
		{
			name: "insecure remote endpoint rejected",
			mutate: func(c *Config) {
				c.Enabled = true
				c.Endpoint = "collector.example.com:4317"
				c.Insecure = true
			},
			wantErr: true,
		},
		{
			name: "secure remote endpoint allowed",
			mutate: func(c *Config) {
				c.Enabled = true
				c.Endpoint = "collector.example.com:4317"
				c.Insecure = false
			},
			wantErr: false,
		},
		{
			name: "bad protocol",
			mutate: func(c *Config) {
				c.Enabled = true
				c.Protocol = "thrift"
			},
			wantErr: true,
		},
		{
			name: "sampling rate out of range",
			mutate: func(c *Config) {
				c.Enabled = true
				c.SamplingRate = 2.0
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewDefaultConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestFromObservability(t *testing.T) {
	cfg := FromObservability(config.ObservabilityConfig{
		Enabled:        true,
		Endpoint:       "localhost:4318",
		Protocol:       "http/protobuf",
		ServiceName:    "briefd-test",
		SamplingRate:   0.25,
		ExportInterval: config.Duration(30 * time.Second),
		Insecure:       true,
	})

	assert.True(t, cfg.Enabled)
	assert.Equal(t, "localhost:4318", cfg.Endpoint)
	assert.Equal(t, "http/protobuf", cfg.Protocol)
	assert.Equal(t, "briefd-test", cfg.ServiceName)
	assert.Equal(t, 0.25, cfg.SamplingRate)
	assert.Equal(t, 30*time.Second, cfg.ExportInterval)
	// Version falls back to the default when unset.
	assert.Equal(t, "0.1.0", cfg.ServiceVersion)
}

func TestIsLocalEndpoint(t *testing.T) {
	local := []string{"localhost:4317", "127.0.0.1:4317", "[::1]:4317", "127.0.0.5:9999"}
	for _, ep := range local {
		c := &Config{Endpoint: ep}
		assert.True(t, c.isLocalEndpoint(), ep)
	}

	remote := []string{"collector.example.com:4317", "10.0.0.5:4317"}
	for _, ep := range remote {
		c := &Config{Endpoint: ep}
		assert.False(t, c.isLocalEndpoint(), ep)
	}
}
