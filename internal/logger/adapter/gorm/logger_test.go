package gorm_test

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	adapter "github.com/GoPowerDNS-Admin/GoRoles-Admin/internal/logger/adapter/gorm"
)

func statement() (string, int64) {
	return "SELECT * FROM roles", 3
}

func TestTrace(t *testing.T) {
	tests := []struct {
		name       string
		logQueries bool
		err        error
		wantEmpty  bool
		wantLevel  string
	}{
		{name: "statements hidden by default", wantEmpty: true},
		{name: "statements logged at debug", logQueries: true, wantLevel: `"level":"debug"`},
		{name: "errors always logged", err: errors.New("boom"), wantLevel: `"level":"error"`}, //nolint:goerr113
		{name: "record not found is silent", err: gorm.ErrRecordNotFound, wantEmpty: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer

			l := adapter.New(zerolog.New(&buf).Level(zerolog.TraceLevel), tc.logQueries)
			l.Trace(context.Background(), time.Now(), statement, tc.err)

			if tc.wantEmpty {
				assert.Empty(t, buf.String())

				return
			}

			assert.Contains(t, buf.String(), tc.wantLevel)
			assert.Contains(t, buf.String(), "SELECT * FROM roles")
			assert.Contains(t, buf.String(), `"rows":3`)
		})
	}
}

func TestLogMode(t *testing.T) {
	var buf bytes.Buffer

	l := adapter.New(zerolog.New(&buf), true)
	silent := l.LogMode(gormlogger.Silent)

	silent.Trace(context.Background(), time.Now(), statement, errors.New("boom")) //nolint:goerr113
	silent.Error(context.Background(), "hidden")
	assert.Empty(t, buf.String())

	l.Warn(context.Background(), "visible %s", "warning")
	assert.Contains(t, buf.String(), "visible")
}
