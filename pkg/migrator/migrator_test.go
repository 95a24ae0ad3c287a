package migrator

import (
	"context"
	"testing"
	"testing/fstest"

	"github.com/ghuser/bizdir/pkg/config"
	"github.com/ghuser/bizdir/pkg/logger"
)

func TestUp_NilDatabase(t *testing.T) {
	files := fstest.MapFS{
		"00001_init.sql": {Data: []byte("-- +goose Up\nSELECT 1;\n")},
	}
	err := Up(context.Background(), nil, files, logger.New(&config.Config{LogLevel: "error"}))
	if err == nil {
		t.Fatal("expected error for nil database")
	}
}
