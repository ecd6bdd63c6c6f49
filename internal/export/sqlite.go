package export

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	// Need to use SQLite connections.
	_ "github.com/mattn/go-sqlite3"

	"github.com/retroenv/nanddecode/internal/results"
	"github.com/retroenv/retrogolib/log"
	"github.com/rs/xid"
	"github.com/tebeka/atexit"
)

const defaultBatchSize = 10000

// SQLiteWriter stores the results of decode runs in a SQLite database. Rows are buffered and
// written in batches, buffered rows are flushed when the program exits through atexit.
type SQLiteWriter struct {
	*sql.DB

	logger    *log.Logger
	path      string
	runID     xid.ID
	batchSize int

	frameStatement  *sql.Stmt
	packetStatement *sql.Stmt
	markerStatement *sql.Stmt

	mu      sync.Mutex
	frames  []frameRow
	packets []results.Packet
	markers []results.Marker
}

type frameRow struct {
	packetID uint64
	frame    results.Frame
}

// NewSQLiteWriter creates a new SQLiteWriter that stores rows for the given run. If path is
// empty, a database name is generated from the run id.
func NewSQLiteWriter(logger *log.Logger, path string, runID xid.ID) *SQLiteWriter {
	w := &SQLiteWriter{
		logger:    logger,
		path:      path,
		runID:     runID,
		batchSize: defaultBatchSize,
	}

	atexit.Register(func() {
		if err := w.Flush(); err != nil {
			w.logger.Error("Flushing database failed", log.Err(err))
		}
	})

	return w
}

// RunID returns the id of the run that rows are written for.
func (w *SQLiteWriter) RunID() string {
	return w.runID.String()
}

// Path returns the database file name.
func (w *SQLiteWriter) Path() string {
	return w.path
}

// Init creates the database and its tables and records the run.
// An existing database file is not overwritten. On error the database is closed again.
func (w *SQLiteWriter) Init(source string, sampleCount uint64) error {
	if w.path == "" {
		w.path = "nanddecode_" + w.runID.String() + ".sqlite3"
	}
	if _, err := os.Stat(w.path); err == nil {
		return fmt.Errorf("database file %s already exists", w.path)
	}

	db, err := sql.Open("sqlite3", w.path)
	if err != nil {
		return fmt.Errorf("opening database %s: %w", w.path, err)
	}
	w.DB = db

	if err := w.setup(source, sampleCount); err != nil {
		return errors.Join(err, w.Close())
	}

	w.logger.Debug("Database created", log.String("path", w.path), log.String("run", w.runID.String()))
	return nil
}

func (w *SQLiteWriter) setup(source string, sampleCount uint64) error {
	if err := w.createTables(); err != nil {
		return err
	}
	if err := w.prepareStatements(); err != nil {
		return err
	}

	_, err := w.Exec(`INSERT INTO runs (run_id, source, sample_count, created) VALUES (?, ?, ?, ?)`,
		w.runID.String(), source, int64(sampleCount), w.runID.Time().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("recording run: %w", err)
	}
	return nil
}

func (w *SQLiteWriter) createTables() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs
		(
			run_id       VARCHAR(20) NOT NULL PRIMARY KEY,
			source       TEXT,
			sample_count INTEGER NOT NULL,
			created      TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS packets
		(
			run_id       VARCHAR(20) NOT NULL,
			packet_id    INTEGER NOT NULL,
			first_frame  INTEGER NOT NULL,
			last_frame   INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS frames
		(
			run_id       VARCHAR(20) NOT NULL,
			packet_id    INTEGER NOT NULL,
			kind         VARCHAR(10) NOT NULL,
			start_sample INTEGER NOT NULL,
			end_sample   INTEGER NOT NULL,
			payload      INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS frames_start_index ON frames (start_sample);`,
		`CREATE INDEX IF NOT EXISTS frames_kind_index ON frames (kind);`,
		`CREATE TABLE IF NOT EXISTS markers
		(
			run_id  VARCHAR(20) NOT NULL,
			channel INTEGER NOT NULL,
			sample  INTEGER NOT NULL,
			kind    VARCHAR(10) NOT NULL
		);`,
	}

	for _, statement := range statements {
		if _, err := w.Exec(statement); err != nil {
			return fmt.Errorf("creating tables: %w", err)
		}
	}
	return nil
}

func (w *SQLiteWriter) prepareStatements() error {
	statements := []struct {
		query     string
		statement **sql.Stmt
	}{
		{`INSERT INTO frames (run_id, packet_id, kind, start_sample, end_sample, payload) VALUES (?, ?, ?, ?, ?, ?)`,
			&w.frameStatement},
		{`INSERT INTO packets (run_id, packet_id, first_frame, last_frame) VALUES (?, ?, ?, ?)`,
			&w.packetStatement},
		{`INSERT INTO markers (run_id, channel, sample, kind) VALUES (?, ?, ?, ?)`,
			&w.markerStatement},
	}

	for _, s := range statements {
		stmt, err := w.Prepare(s.query)
		if err != nil {
			return fmt.Errorf("preparing statement: %w", err)
		}
		*s.statement = stmt
	}
	return nil
}

// WritePacket buffers a packet and its frames.
func (w *SQLiteWriter) WritePacket(packet results.Packet, frames []results.Frame) error {
	w.mu.Lock()
	w.packets = append(w.packets, packet)
	for _, frame := range frames {
		w.frames = append(w.frames, frameRow{packetID: packet.ID, frame: frame})
	}
	full := len(w.frames) >= w.batchSize
	w.mu.Unlock()

	if full {
		return w.Flush()
	}
	return nil
}

// WriteMarker buffers a marker.
func (w *SQLiteWriter) WriteMarker(marker results.Marker) error {
	w.mu.Lock()
	w.markers = append(w.markers, marker)
	full := len(w.markers) >= w.batchSize
	w.mu.Unlock()

	if full {
		return w.Flush()
	}
	return nil
}

// WriteResults buffers all committed packets, frames and markers of a result set and
// flushes them to the database.
func (w *SQLiteWriter) WriteResults(res *results.Results) error {
	for _, packet := range res.Packets() {
		if err := w.WritePacket(packet, res.PacketFrames(packet)); err != nil {
			return err
		}
	}
	for _, marker := range res.Markers() {
		if err := w.WriteMarker(marker); err != nil {
			return err
		}
	}
	return w.Flush()
}

// Flush writes all buffered rows to the database in one transaction.
func (w *SQLiteWriter) Flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.DB == nil || len(w.frames)+len(w.packets)+len(w.markers) == 0 {
		return nil
	}

	tx, err := w.Begin()
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	if err := w.insertRows(tx); err != nil {
		return errors.Join(err, tx.Rollback())
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	w.frames = nil
	w.packets = nil
	w.markers = nil
	return nil
}

func (w *SQLiteWriter) insertRows(tx *sql.Tx) error {
	run := w.runID.String()

	packetStatement := tx.Stmt(w.packetStatement)
	for _, packet := range w.packets {
		if _, err := packetStatement.Exec(run, int64(packet.ID), packet.FirstFrame, packet.LastFrame); err != nil {
			return fmt.Errorf("inserting packet %d: %w", packet.ID, err)
		}
	}

	frameStatement := tx.Stmt(w.frameStatement)
	for _, row := range w.frames {
		frame := row.frame
		_, err := frameStatement.Exec(run, int64(row.packetID), frame.Kind.String(),
			int64(frame.Start), int64(frame.End), int(frame.Payload))
		if err != nil {
			return fmt.Errorf("inserting frame at sample %d: %w", frame.Start, err)
		}
	}

	markerStatement := tx.Stmt(w.markerStatement)
	for _, marker := range w.markers {
		_, err := markerStatement.Exec(run, int(marker.Channel), int64(marker.Sample), marker.Kind.String())
		if err != nil {
			return fmt.Errorf("inserting marker at sample %d: %w", marker.Sample, err)
		}
	}
	return nil
}

// Close flushes the buffered rows and closes the database.
func (w *SQLiteWriter) Close() error {
	if w.DB == nil {
		return nil
	}
	flushErr := w.Flush()

	w.mu.Lock()
	defer w.mu.Unlock()

	errs := []error{flushErr}
	for _, stmt := range []*sql.Stmt{w.frameStatement, w.packetStatement, w.markerStatement} {
		if stmt != nil {
			errs = append(errs, stmt.Close())
		}
	}
	errs = append(errs, w.DB.Close())
	w.DB = nil
	w.frameStatement, w.packetStatement, w.markerStatement = nil, nil, nil
	return errors.Join(errs...)
}
