package csvlog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewWriter_CreatesFileWithBannerAndHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "people_count_log.csv")

	_, err := NewWriter(path)
	require.NoError(t, err)

	content, err := os.ReadFile(path)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(string(content), "\n"), "\n")
	require.True(t, strings.HasPrefix(lines[0], commentMarker))
	require.Contains(t, string(content), Header)
	// Session marker is appended on every start.
	require.Contains(t, string(content), "session")
}

func TestNewWriter_PreservesExistingData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "people_count_log.csv")

	w, err := NewWriter(path)
	require.NoError(t, err)
	require.NoError(t, w.Append(Record{
		Timestamp:   time.Date(2026, 8, 25, 10, 0, 0, 0, time.Local),
		MinuteKey:   100,
		Count:       2,
		TotalUnique: 2,
	}))

	// A restart must not rewrite the file, only add a session marker.
	before, err := os.ReadFile(path)
	require.NoError(t, err)

	_, err = NewWriter(path)
	require.NoError(t, err)

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(after), string(before)))
	require.Equal(t, 1, strings.Count(string(after), Header))
}

func TestWriter_AppendThenReadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "people_count_log.csv")

	w, err := NewWriter(path)
	require.NoError(t, err)

	recs := []Record{
		{Timestamp: time.Date(2026, 8, 25, 10, 0, 0, 0, time.Local), MinuteKey: 29788200, Count: 2, TotalUnique: 2},
		{Timestamp: time.Date(2026, 8, 25, 10, 1, 0, 0, time.Local), MinuteKey: 29788201, Count: 1, TotalUnique: 3},
	}
	for _, rec := range recs {
		require.NoError(t, w.Append(rec))
	}

	got, err := NewReader(path).ReadAll()
	require.NoError(t, err)
	require.Len(t, got, 2)
	for i := range recs {
		require.Equal(t, recs[i].MinuteKey, got[i].MinuteKey)
		require.Equal(t, recs[i].Count, got[i].Count)
		require.Equal(t, recs[i].TotalUnique, got[i].TotalUnique)
		require.True(t, recs[i].Timestamp.Equal(got[i].Timestamp))
	}
}

func TestWriter_AppendRejectsNegativeCount(t *testing.T) {
	path := filepath.Join(t.TempDir(), "people_count_log.csv")

	w, err := NewWriter(path)
	require.NoError(t, err)
	require.Error(t, w.Append(Record{Timestamp: time.Now(), MinuteKey: 1, Count: -1}))
}
