package audit

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/jpay/wallet/internal/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuditLogger(t *testing.T) {
	now := time.Date(2024, 4, 1, 8, 0, 0, 0, time.UTC)
	var lines []string
	logger := NewAuditLogger(clock.NewFixed(now)).WithSink(func(line string) { lines = append(lines, line) })

	logger.LogTransfer("JPTXN-1", "2024202424", "3030303030", 500000, "SUCCESS")
	logger.LogError("JPTXN-2", "2024202424", errors.New("insufficient funds"))

	require.Len(t, lines, 2)

	var transfer AuditEvent
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &transfer))
	assert.Equal(t, "TRANSFER", transfer.EventType)
	assert.Equal(t, int64(500000), transfer.Amount)
	assert.True(t, now.Equal(transfer.Timestamp))

	var failure map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &failure))
	assert.Equal(t, "FAILED", failure["status"])
	assert.Equal(t, "insufficient funds", failure["details"].(map[string]any)["error"])
}
