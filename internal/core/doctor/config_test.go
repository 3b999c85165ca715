package doctor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hay-kot/steward/internal/core/config"
)

func TestConfigCheck(t *testing.T) {
	t.Run("valid config passes", func(t *testing.T) {
		cfg := config.DefaultConfig()
		cfg.Workspace = t.TempDir()

		result := NewConfigCheck(&cfg, "").Run(context.Background())

		require.Len(t, result.Items, 1)
		assert.Equal(t, StatusPass, result.Items[0].Status)
		assert.Equal(t, "defaults", result.Items[0].Label)
	})

	t.Run("field errors become failing items", func(t *testing.T) {
		cfg := config.DefaultConfig()
		cfg.Workspace = t.TempDir()
		cfg.Executors.Payment = "pay {{ .Amount"

		result := NewConfigCheck(&cfg, "").Run(context.Background())

		require.NotEmpty(t, result.Items)
		assert.Equal(t, StatusFail, result.Items[0].Status)
		assert.Equal(t, "executors.payment", result.Items[0].Label)
	})
}
