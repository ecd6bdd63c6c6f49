package export

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/retroenv/nanddecode/internal/results"
	"github.com/retroenv/retrogolib/log"
	"github.com/rs/xid"
	"github.com/stretchr/testify/require"
)

func testResults() *results.Results {
	res := results.New()
	res.AddFrame(results.Frame{Kind: results.Command, Start: 29, End: 32, Payload: 0x85})
	res.AddFrame(results.Frame{Kind: results.Data, Start: 57, End: 61, Payload: 0xaa})
	res.AddMarker(results.Marker{Channel: 4, Sample: 57, Kind: results.MarkerRising})
	res.AddFrame(results.Frame{Kind: results.Envelope, Start: 20, End: 69})
	res.CommitPacket()
	res.AddFrame(results.Frame{Kind: results.Command, Start: 99, End: 102, Payload: 0xff})
	res.AddFrame(results.Frame{Kind: results.Envelope, Start: 90, End: 111})
	res.CommitPacket()
	return res
}

func countRows(t *testing.T, db *sql.DB, query string, args ...any) int {
	t.Helper()

	var count int
	require.NoError(t, db.QueryRow(query, args...).Scan(&count))
	return count
}

func TestSQLiteWriter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "decode.sqlite3")
	runID := xid.New()

	w := NewSQLiteWriter(log.NewTestLogger(t), path, runID)
	require.NoError(t, w.Init("capture.csv", 133))
	require.NoError(t, w.WriteResults(testResults()))
	require.NoError(t, w.Close())
	require.NoError(t, w.Flush())

	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	defer func() { require.NoError(t, db.Close()) }()

	run := w.RunID()
	require.Equal(t, runID.String(), run)
	require.Equal(t, 1, countRows(t, db, `SELECT COUNT(*) FROM runs WHERE run_id = ? AND sample_count = 133`, run))
	require.Equal(t, 2, countRows(t, db, `SELECT COUNT(*) FROM packets WHERE run_id = ?`, run))
	require.Equal(t, 5, countRows(t, db, `SELECT COUNT(*) FROM frames WHERE run_id = ?`, run))
	require.Equal(t, 2, countRows(t, db, `SELECT COUNT(*) FROM frames WHERE kind = 'envelope'`))
	require.Equal(t, 1, countRows(t, db, `SELECT COUNT(*) FROM markers WHERE kind = 'rising' AND channel = 4`))

	var kind string
	var start, end int64
	var payload int
	err = db.QueryRow(`SELECT kind, start_sample, end_sample, payload FROM frames
		WHERE packet_id = 0 ORDER BY start_sample DESC LIMIT 1`).Scan(&kind, &start, &end, &payload)
	require.NoError(t, err)
	require.Equal(t, "data", kind)
	require.Equal(t, int64(57), start)
	require.Equal(t, int64(61), end)
	require.Equal(t, 0xaa, payload)
}

func TestSQLiteWriterBatches(t *testing.T) {
	path := filepath.Join(t.TempDir(), "batch.sqlite3")

	w := NewSQLiteWriter(log.NewTestLogger(t), path, xid.New())
	w.batchSize = 2
	require.NoError(t, w.Init("", 10))

	res := testResults()
	packet := res.Packets()[0]
	require.NoError(t, w.WritePacket(packet, res.PacketFrames(packet)))

	// the batch limit was reached, the rows are already written
	require.Equal(t, 3, countRows(t, w.DB, `SELECT COUNT(*) FROM frames`))
	require.NoError(t, w.Close())
}

func TestSQLiteWriterExistingDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "existing.sqlite3")

	first := NewSQLiteWriter(log.NewTestLogger(t), path, xid.New())
	require.NoError(t, first.Init("", 1))
	require.NoError(t, first.Close())

	second := NewSQLiteWriter(log.NewTestLogger(t), path, xid.New())
	require.ErrorContains(t, second.Init("", 1), "already exists")
}

func TestSQLiteWriterDefaultPath(t *testing.T) {
	w := NewSQLiteWriter(log.NewTestLogger(t), "", xid.New())
	t.Chdir(t.TempDir())

	require.NoError(t, w.Init("", 1))
	require.Equal(t, "nanddecode_"+w.RunID()+".sqlite3", w.Path())
	require.NoError(t, w.Close())
}

func TestSQLiteWriterInitFailureClosesDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "decode.sqlite3")

	w := NewSQLiteWriter(log.NewTestLogger(t), path, xid.New())
	require.ErrorContains(t, w.Init("", 1), "creating tables")
	require.Nil(t, w.DB)
	require.NoError(t, w.Close())
}
