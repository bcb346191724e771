package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const jsonRecords = `[
  {
    "id": "r1",
    "timestamp": "2026-05-04T08:00:00Z",
    "content": "talked about the move",
    "participants": [{"id": "alice", "role": "primary"}]
  }
]`

const yamlRecords = `records:
  - id: r1
    timestamp: 2026-05-04T08:00:00Z
    content: talked about the move
    participants:
      - id: alice
        role: primary
  - id: r2
    timestamp: 2026-05-05T08:00:00Z
    content: follow up
    participants:
      - id: alice
        role: primary
`

func writeTemp(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestReadRecordsFile(t *testing.T) {
	t.Run("json list", func(t *testing.T) {
		records, err := readRecordsFile(writeTemp(t, "records.json", jsonRecords))
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, "r1", records[0].ID)
		assert.Equal(t, "alice", records[0].Participants[0].ID)
		assert.True(t, records[0].Timestamp.Equal(time.Date(2026, 5, 4, 8, 0, 0, 0, time.UTC)))
	})

	t.Run("json document", func(t *testing.T) {
		records, err := readRecordsFile(writeTemp(t, "records.json", `{"records": `+jsonRecords+`}`))
		require.NoError(t, err)
		assert.Len(t, records, 1)
	})

	t.Run("yaml document", func(t *testing.T) {
		records, err := readRecordsFile(writeTemp(t, "records.yaml", yamlRecords))
		require.NoError(t, err)
		require.Len(t, records, 2)
		assert.Equal(t, "r2", records[1].ID)
		assert.Equal(t, "follow up", records[1].Content)
	})

	t.Run("yaml list", func(t *testing.T) {
		records, err := readRecordsFile(writeTemp(t, "records.yml", "- id: r1\n  content: hi\n"))
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, "hi", records[0].Content)
	})

	t.Run("unsupported extension", func(t *testing.T) {
		_, err := readRecordsFile(writeTemp(t, "records.txt", jsonRecords))
		assert.Error(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := readRecordsFile(filepath.Join(t.TempDir(), "none.json"))
		assert.Error(t, err)
	})
}
