package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/misty-step/heartbeat-sub001/pkg/config"
)

// Each test declares its own config type: Load caches per type, so sharing
// one struct across tests would leak state between them.

func TestLoad(t *testing.T) {
	t.Run("applies defaults", func(t *testing.T) {
		type defaultsConfig struct {
			Addr    string `env:"LOADER_TEST_ADDR" envDefault:":8080"`
			Debug   bool   `env:"LOADER_TEST_DEBUG" envDefault:"false"`
			Retries int    `env:"LOADER_TEST_RETRIES" envDefault:"3"`
		}

		var cfg defaultsConfig
		require.NoError(t, config.Load(&cfg))
		assert.Equal(t, ":8080", cfg.Addr)
		assert.False(t, cfg.Debug)
		assert.Equal(t, 3, cfg.Retries)
	})

	t.Run("environment overrides defaults", func(t *testing.T) {
		type overrideConfig struct {
			Addr string `env:"LOADER_TEST_OVERRIDE_ADDR" envDefault:":8080"`
		}
		t.Setenv("LOADER_TEST_OVERRIDE_ADDR", ":9090")

		var cfg overrideConfig
		require.NoError(t, config.Load(&cfg))
		assert.Equal(t, ":9090", cfg.Addr)
	})

	t.Run("same type is parsed once and cached", func(t *testing.T) {
		type cachedConfig struct {
			Value string `env:"LOADER_TEST_CACHED" envDefault:"first"`
		}
		t.Setenv("LOADER_TEST_CACHED", "first")

		var a cachedConfig
		require.NoError(t, config.Load(&a))
		assert.Equal(t, "first", a.Value)

		// Later environment changes must not produce a diverging config.
		t.Setenv("LOADER_TEST_CACHED", "second")
		var b cachedConfig
		require.NoError(t, config.Load(&b))
		assert.Equal(t, "first", b.Value)
	})

	t.Run("missing required variable fails", func(t *testing.T) {
		type requiredConfig struct {
			Secret string `env:"LOADER_TEST_REQUIRED_SECRET,required"`
		}

		var cfg requiredConfig
		err := config.Load(&cfg)
		assert.ErrorIs(t, err, config.ErrParsingConfig)
	})

	t.Run("nil pointer is rejected", func(t *testing.T) {
		type nilConfig struct {
			Addr string `env:"LOADER_TEST_NIL_ADDR"`
		}

		var cfg *nilConfig
		assert.ErrorIs(t, config.Load(cfg), config.ErrNilPointer)
	})
}

func TestMustLoad(t *testing.T) {
	t.Run("returns the parsed config", func(t *testing.T) {
		type mustConfig struct {
			Addr string `env:"LOADER_TEST_MUST_ADDR" envDefault:":8080"`
		}

		var cfg mustConfig
		assert.NotPanics(t, func() { config.MustLoad(&cfg) })
		assert.Equal(t, ":8080", cfg.Addr)
	})

	t.Run("panics when parsing fails", func(t *testing.T) {
		type mustFailConfig struct {
			Secret string `env:"LOADER_TEST_MUST_SECRET,required"`
		}

		var cfg mustFailConfig
		assert.Panics(t, func() { config.MustLoad(&cfg) })
	})
}
