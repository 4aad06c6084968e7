package sheet

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryValuesIncludesHeader(t *testing.T) {
	ctx := context.Background()
	m := NewMemory("a", "b").Seed("1", "2")

	values, err := m.Values(ctx)
	require.NoError(t, err)
	require.Len(t, values, 2)
	assert.Equal(t, []string{"a", "b"}, values[0])
	assert.Equal(t, []string{"1", "2"}, values[1])
}

func TestMemoryRecordsPadShortRows(t *testing.T) {
	ctx := context.Background()
	m := NewMemory("a", "b", "c").Seed("1")

	records, err := m.Records(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "1", records[0]["a"])
	assert.Equal(t, "", records[0]["b"])
	assert.Equal(t, "", records[0]["c"])
}

func TestMemoryAppendAndUpdateCell(t *testing.T) {
	ctx := context.Background()
	m := NewMemory("a", "b")

	require.NoError(t, m.Append(ctx, []string{"1", "2"}))
	require.NoError(t, m.UpdateCell(ctx, 2, 2, "x"))

	values, err := m.Values(ctx)
	require.NoError(t, err)
	assert.Equal(t, "x", values[1][1])
}

func TestMemoryUpdateCellBounds(t *testing.T) {
	ctx := context.Background()
	m := NewMemory("a").Seed("1")

	assert.Error(t, m.UpdateCell(ctx, 1, 1, "x"), "header row is not writable")
	assert.Error(t, m.UpdateCell(ctx, 3, 1, "x"))
	assert.Error(t, m.UpdateCell(ctx, 2, 2, "x"))
}
