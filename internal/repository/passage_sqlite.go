package repository

import (
	"context"
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/markaz/report-assistant/internal/entity"
	_ "github.com/mattn/go-sqlite3"
)

// indexedPassage is one row of the index held in memory for search.
type indexedPassage struct {
	text        string
	document    string
	title       string
	pageNumbers string
	embedding   []float32
}

// PassageSQLite serves nearest-neighbor search over report passages stored
// in a single SQLite file. The embedding column holds little-endian float32
// blobs. The whole index is loaded into a read-mostly in-memory snapshot at
// startup; queries rank it by cosine similarity without touching the DB.
type PassageSQLite struct {
	db *sql.DB

	mu       sync.RWMutex
	snapshot []indexedPassage
}

func NewPassageSQLite(db *sql.DB) *PassageSQLite {
	return &PassageSQLite{db: db}
}

// OpenDatabase opens (creating if needed) the passage database at path.
func OpenDatabase(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open passage database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping passage database: %w", err)
	}

	return db, nil
}

// LoadIndex reads all passages into the in-memory snapshot. An empty table
// is not an error; search over an empty snapshot returns no passages.
func (r *PassageSQLite) LoadIndex(ctx context.Context) error {
	rows, err := r.db.QueryContext(ctx, `
		SELECT text, document, title, page_numbers, embedding
		FROM passages
		ORDER BY document, chunk_index`)
	if err != nil {
		return fmt.Errorf("%w: %v", entity.ErrIndexUnavailable, err)
	}
	defer rows.Close()

	var snapshot []indexedPassage
	for rows.Next() {
		var p indexedPassage
		var blob []byte
		if err := rows.Scan(&p.text, &p.document, &p.title, &p.pageNumbers, &blob); err != nil {
			return fmt.Errorf("scan passage row: %w", err)
		}
		p.embedding, err = decodeVector(blob)
		if err != nil {
			return fmt.Errorf("decode embedding for %q: %w", p.document, err)
		}
		snapshot = append(snapshot, p)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate passage rows: %w", err)
	}

	r.mu.Lock()
	r.snapshot = snapshot
	r.mu.Unlock()

	return nil
}

// Count returns the number of indexed passages.
func (r *PassageSQLite) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.snapshot)
}

// SearchSimilar returns up to limit passages ordered by descending cosine
// similarity to the query vector. Scores are clamped to [0,1]. An empty
// index yields an empty result, never an error.
func (r *PassageSQLite) SearchSimilar(_ context.Context, query []float32, limit int) ([]entity.Passage, error) {
	if limit <= 0 {
		limit = 5
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	results := make([]entity.Passage, 0, limit)
	for _, p := range r.snapshot {
		score, ok := cosineSimilarity(query, p.embedding)
		if !ok {
			continue
		}
		results = append(results, entity.Passage{
			Text:        p.text,
			Score:       score,
			Source:      p.document,
			Title:       p.title,
			PageNumbers: p.pageNumbers,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// InsertPassage persists a passage and adds it to the live snapshot. The
// ingestion pipeline that populates DB_PATH in bulk lives outside this
// service; this path exists for seeding and tests.
func (r *PassageSQLite) InsertPassage(ctx context.Context, text, document, title, pageNumbers string, chunkIndex int, embedding []float32) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO passages (text, document, title, page_numbers, chunk_index, embedding)
		VALUES (?, ?, ?, ?, ?, ?)`,
		text, document, title, pageNumbers, chunkIndex, encodeVector(embedding))
	if err != nil {
		return fmt.Errorf("insert passage: %w", err)
	}

	r.mu.Lock()
	r.snapshot = append(r.snapshot, indexedPassage{
		text:        text,
		document:    document,
		title:       title,
		pageNumbers: pageNumbers,
		embedding:   embedding,
	})
	r.mu.Unlock()

	return nil
}

// cosineSimilarity returns the similarity of a and b clamped to [0,1].
// It reports false on dimension mismatch or zero vectors.
func cosineSimilarity(a, b []float32) (float64, bool) {
	if len(a) == 0 || len(a) != len(b) {
		return 0, false
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0, false
	}

	cos := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	if cos < 0 {
		cos = 0
	} else if cos > 1 {
		cos = 1
	}
	return cos, true
}

// encodeVector packs a float32 vector into a little-endian blob.
func encodeVector(v []float32) []byte {
	buf := make([]byte, 4*len(v))
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// decodeVector unpacks a little-endian blob into a float32 vector.
func decodeVector(blob []byte) ([]float32, error) {
	if len(blob)%4 != 0 {
		return nil, fmt.Errorf("embedding blob length %d is not a multiple of 4", len(blob))
	}
	v := make([]float32, len(blob)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(blob[i*4:]))
	}
	return v, nil
}
