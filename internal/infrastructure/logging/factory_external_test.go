package multilog_test

import (
	"testing"

	config "github.com/kodflow/testjig/internal/domain/logconfig"
	"github.com/kodflow/testjig/internal/infrastructure/logging"
	"github.com/stretchr/testify/assert"
)

func TestBuildLogger(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		cfg     config.LoggingConfig
		baseDir string
		wantErr bool
	}{
		{
			name:    "default config",
			cfg:     config.LoggingConfig{},
			baseDir: t.TempDir(),
			wantErr: false,
		},
		{
			name: "console writer",
			cfg: config.LoggingConfig{
				Writers: []config.WriterConfig{
					{Type: "console", Level: "info"},
				},
			},
			baseDir: t.TempDir(),
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			logger, err := multilog.BuildLogger(tt.cfg, tt.baseDir)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, logger)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, logger)
				if logger != nil {
					_ = logger.Close()
				}
			}
		})
	}
}

func TestDefaultLogger(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
	}{
		{name: "create default logger"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			logger := multilog.DefaultLogger()
			assert.NotNil(t, logger)
			_ = logger.Close()
		})
	}
}

