// Package store persists alignments in a SQLite database.
package store

import (
	"database/sql"
	"encoding/binary"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rusteomics/mzalign/internal/alignment"
	"github.com/rusteomics/mzalign/internal/chemistry"
	"github.com/rusteomics/mzalign/internal/sequence"
)

// Date format for AlignmentTable (ISO 8601)
const creationDateFormat = time.RFC3339

// ErrNotFound is returned when no alignment has the requested id.
var ErrNotFound = errors.New("alignment not found")

// Store reads and writes alignments.
type Store struct {
	db            *sql.DB
	alignmentStmt *sql.Stmt
	placementStmt *sql.Stmt
	mods          *chemistry.ModDatabase
}

// Summary describes a stored alignment without loading its placements.
type Summary struct {
	ID        int64
	Type      string
	Score     int
	ShortPath string
	Sequences int
	Created   time.Time
}

// Open opens or creates the database at path. ":memory:" gives a private
// in-memory database. Named modifications are resolved against mods when
// loading, a nil mods means chemistry.DefaultModDatabase.
func Open(path string, mods *chemistry.ModDatabase) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// An in-memory database lives in a single connection.
	db.SetMaxOpenConns(1)

	if mods == nil {
		mods = chemistry.DefaultModDatabase()
	}
	s := &Store{db: db, mods: mods}

	if err := s.createTables(); err != nil {
		db.Close()
		return nil, err
	}

	if err := s.prepareStatements(); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

// createTables creates the required database schema
func (s *Store) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS AlignmentTable (
		AlignmentId INTEGER PRIMARY KEY AUTOINCREMENT,
		Type TEXT NOT NULL,
		Score INTEGER NOT NULL,
		MaxStep INTEGER NOT NULL,
		ShortPath TEXT NOT NULL,
		blobPath BLOB,
		CreationDate TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS PlacementTable (
		PlacementId INTEGER PRIMARY KEY AUTOINCREMENT,
		AlignmentId INTEGER NOT NULL REFERENCES AlignmentTable(AlignmentId) ON DELETE CASCADE,
		Ordinal INTEGER NOT NULL,
		PeptideId TEXT,
		Sequence TEXT NOT NULL,
		Start INTEGER NOT NULL,
		Score INTEGER NOT NULL,
		NormalisedScore REAL NOT NULL,
		blobPath BLOB
	);

	CREATE INDEX IF NOT EXISTS PlacementByAlignment ON PlacementTable (AlignmentId, Ordinal);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}
	return nil
}

// prepareStatements prepares the insert statements
func (s *Store) prepareStatements() error {
	var err error

	s.alignmentStmt, err = s.db.Prepare(`
		INSERT INTO AlignmentTable (Type, Score, MaxStep, ShortPath, blobPath, CreationDate)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare alignment statement: %w", err)
	}

	s.placementStmt, err = s.db.Prepare(`
		INSERT INTO PlacementTable (
			AlignmentId, Ordinal, PeptideId, Sequence, Start, Score, NormalisedScore, blobPath
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare placement statement: %w", err)
	}

	return nil
}

// Save writes an alignment and its placements in one transaction and
// returns its id.
func (s *Store) Save(msa *alignment.MultipleSequenceAlignment) (int64, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Stmt(s.alignmentStmt).Exec(
		msa.Type.String(),
		msa.Score,
		msa.MaxStep,
		msa.ShortPath(),
		encodePieces(msa.Path),
		time.Now().UTC().Format(creationDateFormat),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert alignment: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read alignment id: %w", err)
	}

	placementStmt := tx.Stmt(s.placementStmt)
	for i, p := range msa.Sequences {
		_, err := placementStmt.Exec(
			id,
			i,
			p.Sequence.ID,
			peptideText(p.Sequence),
			p.Start,
			p.Score,
			p.NormalisedScore,
			encodePositions(p.Path),
		)
		if err != nil {
			return 0, fmt.Errorf("failed to insert placement %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit alignment: %w", err)
	}
	return id, nil
}

// Load reads the alignment with the given id.
func (s *Store) Load(id int64) (*alignment.MultipleSequenceAlignment, error) {
	var (
		typeName string
		blob     []byte
	)
	msa := &alignment.MultipleSequenceAlignment{}
	err := s.db.QueryRow(
		`SELECT Type, Score, MaxStep, blobPath FROM AlignmentTable WHERE AlignmentId = ?`, id,
	).Scan(&typeName, &msa.Score, &msa.MaxStep, &blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("alignment %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query alignment: %w", err)
	}

	if msa.Type, err = alignment.ParseAlignType(typeName); err != nil {
		return nil, err
	}
	if msa.Path, err = decodePieces(blob); err != nil {
		return nil, err
	}

	rows, err := s.db.Query(`
		SELECT PeptideId, Sequence, Start, Score, NormalisedScore, blobPath
		FROM PlacementTable WHERE AlignmentId = ? ORDER BY Ordinal`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query placements: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			peptideID, definition string
			p                     alignment.MSAPlacement
		)
		if err := rows.Scan(&peptideID, &definition, &p.Start, &p.Score, &p.NormalisedScore, &blob); err != nil {
			return nil, fmt.Errorf("failed to read placement: %w", err)
		}
		if p.Sequence, err = sequence.Parse(definition, s.mods); err != nil {
			return nil, fmt.Errorf("failed to parse stored peptide: %w", err)
		}
		p.Sequence.ID = peptideID
		if p.Path, err = decodePositions(blob); err != nil {
			return nil, err
		}
		msa.Sequences = append(msa.Sequences, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read placements: %w", err)
	}
	return msa, nil
}

// List returns a summary of every stored alignment, oldest first.
func (s *Store) List() ([]Summary, error) {
	rows, err := s.db.Query(`
		SELECT a.AlignmentId, a.Type, a.Score, a.ShortPath, a.CreationDate, COUNT(p.PlacementId)
		FROM AlignmentTable a LEFT JOIN PlacementTable p ON p.AlignmentId = a.AlignmentId
		GROUP BY a.AlignmentId ORDER BY a.AlignmentId`)
	if err != nil {
		return nil, fmt.Errorf("failed to list alignments: %w", err)
	}
	defer rows.Close()

	summaries := make([]Summary, 0)
	for rows.Next() {
		var (
			sum     Summary
			created string
		)
		if err := rows.Scan(&sum.ID, &sum.Type, &sum.Score, &sum.ShortPath, &created, &sum.Sequences); err != nil {
			return nil, fmt.Errorf("failed to read alignment: %w", err)
		}
		if sum.Created, err = time.Parse(creationDateFormat, created); err != nil {
			return nil, fmt.Errorf("invalid creation date '%s': %w", created, err)
		}
		summaries = append(summaries, sum)
	}
	return summaries, rows.Err()
}

// Delete removes an alignment and its placements.
func (s *Store) Delete(id int64) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM PlacementTable WHERE AlignmentId = ?`, id); err != nil {
		return fmt.Errorf("failed to delete placements: %w", err)
	}
	res, err := tx.Exec(`DELETE FROM AlignmentTable WHERE AlignmentId = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete alignment: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to count deleted alignments: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("alignment %d: %w", id, ErrNotFound)
	}
	return tx.Commit()
}

// Close releases the statements and the database.
func (s *Store) Close() error {
	if s.alignmentStmt != nil {
		s.alignmentStmt.Close()
	}
	if s.placementStmt != nil {
		s.placementStmt.Close()
	}
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	return nil
}

// peptideText writes the bracket notation with full precision mass shifts.
func peptideText(p *sequence.Peptide) string {
	var b strings.Builder
	for _, r := range p.Residues {
		b.WriteRune(rune(r.AminoAcid))
		for _, m := range r.Modifications {
			b.WriteByte('[')
			if m.Name != "" {
				b.WriteString(m.Name)
			} else {
				if m.Delta >= 0 {
					b.WriteByte('+')
				}
				b.WriteString(strconv.FormatFloat(m.Delta, 'g', -1, 64))
			}
			b.WriteByte(']')
		}
	}
	return b.String()
}

// Pieces are stored as little-endian records: score int32, local score
// int32, match type byte, step A uint16, step B uint16.
const pieceSize = 13

func encodePieces(path []alignment.Piece) []byte {
	buf := make([]byte, len(path)*pieceSize)
	for i, p := range path {
		rec := buf[i*pieceSize:]
		binary.LittleEndian.PutUint32(rec, uint32(int32(p.Score)))
		binary.LittleEndian.PutUint32(rec[4:], uint32(int32(p.LocalScore)))
		rec[8] = byte(p.MatchType)
		binary.LittleEndian.PutUint16(rec[9:], p.StepA)
		binary.LittleEndian.PutUint16(rec[11:], p.StepB)
	}
	return buf
}

func decodePieces(buf []byte) ([]alignment.Piece, error) {
	if len(buf)%pieceSize != 0 {
		return nil, fmt.Errorf("corrupt path blob of %d bytes", len(buf))
	}
	path := make([]alignment.Piece, len(buf)/pieceSize)
	for i := range path {
		rec := buf[i*pieceSize:]
		path[i] = alignment.Piece{
			Score:      int(int32(binary.LittleEndian.Uint32(rec))),
			LocalScore: int(int32(binary.LittleEndian.Uint32(rec[4:]))),
			MatchType:  alignment.MatchType(rec[8]),
			StepA:      binary.LittleEndian.Uint16(rec[9:]),
			StepB:      binary.LittleEndian.Uint16(rec[11:]),
		}
	}
	return path, nil
}

// Positions are stored as: placed byte, match type byte, consumed uint32,
// width uint32.
const positionSize = 10

func encodePositions(path []alignment.MSAPosition) []byte {
	buf := make([]byte, len(path)*positionSize)
	for i, p := range path {
		rec := buf[i*positionSize:]
		if p.Placed {
			rec[0] = 1
		}
		rec[1] = byte(p.Type)
		binary.LittleEndian.PutUint32(rec[2:], uint32(p.Consumed))
		binary.LittleEndian.PutUint32(rec[6:], uint32(p.Width))
	}
	return buf
}

func decodePositions(buf []byte) ([]alignment.MSAPosition, error) {
	if len(buf)%positionSize != 0 {
		return nil, fmt.Errorf("corrupt placement blob of %d bytes", len(buf))
	}
	path := make([]alignment.MSAPosition, len(buf)/positionSize)
	for i := range path {
		rec := buf[i*positionSize:]
		path[i] = alignment.MSAPosition{
			Placed:   rec[0] == 1,
			Type:     alignment.MatchType(rec[1]),
			Consumed: int(binary.LittleEndian.Uint32(rec[2:])),
			Width:    int(binary.LittleEndian.Uint32(rec[6:])),
		}
	}
	return path, nil
}
