package telemetry

import (
	"context"
	"testing"

	"github.com/hazchem/backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type tracedRow struct {
	ID   int `gorm:"primaryKey"`
	Name string
}

func TestDBTracingPlugin_Disabled(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	plugin := NewDBTracingPlugin(DBTracingConfig{Enabled: false}, zap.NewNop())
	require.NoError(t, plugin.Register(db))
	_, registered := db.Config.Plugins["otelgorm"]
	assert.False(t, registered)
}

func TestDBTracingPlugin_RecordsQueries(t *testing.T) {
	recorder := recordSpans(t)
	db := testutil.NewSQLiteDB(t, &tracedRow{})

	plugin := NewDBTracingPlugin(DBTracingConfig{Enabled: true, DBSystem: "sqlite"}, zap.NewNop())
	require.NoError(t, plugin.Register(db))

	ctx, span := StartSpan(context.Background(), "test")
	require.NoError(t, db.WithContext(ctx).Create(&tracedRow{ID: 1, Name: "a"}).Error)
	var rows []tracedRow
	require.NoError(t, db.WithContext(ctx).Find(&rows).Error)
	End(span, nil)

	ended := recorder.Ended()
	require.GreaterOrEqual(t, len(ended), 3)
	parent := ended[len(ended)-1]
	for _, s := range ended[:len(ended)-1] {
		assert.Equal(t, parent.SpanContext().TraceID(), s.SpanContext().TraceID())
	}
}
