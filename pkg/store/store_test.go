package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/planningalerts-scrapers/horizon-xml/pkg/record"
)

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), Config{Driver: "postgres"})
	assert.True(t, errors.Is(err, ErrUnknownDriver))
}

func TestOpen_SQLite(t *testing.T) {
	sink, err := Open(context.Background(), Config{Driver: DriverSQLite, SQLitePath: ":memory:"})
	require.NoError(t, err)
	defer sink.Close()

	_, ok := sink.(*SQLite)
	assert.True(t, ok)
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, DriverSQLite, cfg.Driver)
	assert.Equal(t, "data.sqlite", cfg.SQLitePath)
}

func TestJSONL_Upsert(t *testing.T) {
	var buf bytes.Buffer
	sink := NewJSONL(&buf)

	ctx := context.Background()
	require.NoError(t, sink.Upsert(ctx, record.Record{CouncilReference: record.String("DA1"), DateReceived: "2023-03-15"}))
	require.NoError(t, sink.Upsert(ctx, record.Record{CouncilReference: record.String("DA2")}))
	require.NoError(t, sink.Close())

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)

	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &got))
	assert.Equal(t, "DA1", got["council_reference"])
	assert.Equal(t, "2023-03-15", got["date_received"])
	assert.Nil(t, got["address"])
}
