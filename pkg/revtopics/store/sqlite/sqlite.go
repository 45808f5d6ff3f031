package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite"

	"github.com/cognicore/revtopics/pkg/revtopics/aggregate"
	"github.com/cognicore/revtopics/pkg/revtopics/internalerr"
	"github.com/cognicore/revtopics/pkg/revtopics/lda"
	"github.com/cognicore/revtopics/pkg/revtopics/lexicon"
	"github.com/cognicore/revtopics/pkg/revtopics/sentiment"
	"github.com/cognicore/revtopics/pkg/revtopics/store"
)

// timeLayout is fixed-width so created_at sorts as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// sqliteStore implements the Store interface using SQLite
type sqliteStore struct {
	db     *sql.DB
	closed atomic.Bool
}

// OpenSQLite opens a SQLite database with WAL mode enabled and creates the
// report tables if they do not exist.
func OpenSQLite(ctx context.Context, path string) (store.Store, error) {
	db, err := sql.Open("sqlite", dsn(path))
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, err
	}

	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &sqliteStore{db: db}, nil
}

// dsn applies the per-connection pragmas to every pooled connection:
// foreign keys for the cascading deletes and a busy timeout so concurrent
// writers wait instead of failing.
func dsn(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}

// Close closes the database connection
func (s *sqliteStore) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	return s.db.Close()
}

// initSchema creates tables if they don't exist
func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS reports (
	id TEXT PRIMARY KEY,
	created_at TEXT NOT NULL,
	documents INTEGER NOT NULL,
	vocabulary INTEGER NOT NULL,
	tokens INTEGER NOT NULL,
	topics INTEGER NOT NULL,
	topic_config TEXT NOT NULL,
	log_likelihood REAL NOT NULL,
	dominant_topics TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS reports_created_at ON reports(created_at);

CREATE TABLE IF NOT EXISTS report_terms (
	report_id TEXT NOT NULL,
	rank INTEGER NOT NULL,
	term_id INTEGER NOT NULL,
	token TEXT NOT NULL,
	count INTEGER NOT NULL,
	PRIMARY KEY(report_id, rank),
	FOREIGN KEY(report_id) REFERENCES reports(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS report_sentiment (
	report_id TEXT NOT NULL,
	category TEXT NOT NULL,
	count INTEGER NOT NULL,
	share REAL NOT NULL,
	PRIMARY KEY(report_id, category),
	FOREIGN KEY(report_id) REFERENCES reports(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS report_topic_terms (
	report_id TEXT NOT NULL,
	topic INTEGER NOT NULL,
	rank INTEGER NOT NULL,
	term_id INTEGER NOT NULL,
	token TEXT NOT NULL,
	prob REAL NOT NULL,
	PRIMARY KEY(report_id, topic, rank),
	FOREIGN KEY(report_id) REFERENCES reports(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS report_ratings (
	report_id TEXT NOT NULL,
	entity TEXT NOT NULL,
	mean REAL NOT NULL,
	n INTEGER NOT NULL,
	PRIMARY KEY(report_id, entity),
	FOREIGN KEY(report_id) REFERENCES reports(id) ON DELETE CASCADE
);
`

	_, err := db.ExecContext(ctx, schema)
	return err
}

// SaveReport inserts or replaces a report and all of its rows
func (s *sqliteStore) SaveReport(ctx context.Context, r store.Report) error {
	if s.closed.Load() {
		return internalerr.ErrStoreUnavailable
	}
	if r.ID == "" {
		return fmt.Errorf("report without id: %w", internalerr.ErrInvalidInput)
	}

	cfgJSON, err := json.Marshal(r.TopicConfig)
	if err != nil {
		return err
	}
	dominantJSON, err := json.Marshal(r.DominantTopics)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// Replacing the parent row cascades to the old child rows
	if _, err := tx.ExecContext(ctx, `DELETE FROM reports WHERE id=?`, r.ID); err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `
INSERT INTO reports (id, created_at, documents, vocabulary, tokens, topics, topic_config, log_likelihood, dominant_topics)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?);
`,
		r.ID,
		r.CreatedAt.UTC().Format(timeLayout),
		r.Documents,
		r.Vocabulary,
		r.Tokens,
		len(r.Topics),
		string(cfgJSON),
		r.LogLikelihood,
		string(dominantJSON),
	)
	if err != nil {
		return err
	}

	if err := insertTerms(ctx, tx, r.ID, r.Terms); err != nil {
		return err
	}
	if err := insertSentiment(ctx, tx, r.ID, r.Sentiment); err != nil {
		return err
	}
	if err := insertTopics(ctx, tx, r.ID, r.Topics); err != nil {
		return err
	}
	if err := insertRatings(ctx, tx, r.ID, r.Ratings); err != nil {
		return err
	}

	return tx.Commit()
}

func insertTerms(ctx context.Context, tx *sql.Tx, id string, terms []aggregate.TermCount) error {
	if len(terms) == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO report_terms (report_id, rank, term_id, token, count) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for rank, tc := range terms {
		if _, err := stmt.ExecContext(ctx, id, rank, tc.ID, tc.Token, tc.Count); err != nil {
			return err
		}
	}
	return nil
}

func insertSentiment(ctx context.Context, tx *sql.Tx, id string, shares []sentiment.CategoryShare) error {
	if len(shares) == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO report_sentiment (report_id, category, count, share) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, cs := range shares {
		if _, err := stmt.ExecContext(ctx, id, string(cs.Category), cs.Count, cs.Share); err != nil {
			return err
		}
	}
	return nil
}

func insertTopics(ctx context.Context, tx *sql.Tx, id string, topics []lda.Topic) error {
	if len(topics) == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO report_topic_terms (report_id, topic, rank, term_id, token, prob) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, topic := range topics {
		for rank, tw := range topic.Terms {
			if _, err := stmt.ExecContext(ctx, id, topic.ID, rank, tw.Term, tw.Token, tw.Prob); err != nil {
				return err
			}
		}
	}
	return nil
}

func insertRatings(ctx context.Context, tx *sql.Tx, id string, ratings []aggregate.EntityMean) error {
	if len(ratings) == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO report_ratings (report_id, entity, mean, n) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, em := range ratings {
		if _, err := stmt.ExecContext(ctx, id, em.Key, em.Mean, em.N); err != nil {
			return err
		}
	}
	return nil
}

// GetReport retrieves a report by id
func (s *sqliteStore) GetReport(ctx context.Context, id string) (store.Report, error) {
	if s.closed.Load() {
		return store.Report{}, internalerr.ErrStoreUnavailable
	}

	var (
		r            store.Report
		createdAt    string
		numTopics    int
		cfgJSON      string
		dominantJSON string
	)
	err := s.db.QueryRowContext(ctx, `
SELECT id, created_at, documents, vocabulary, tokens, topics, topic_config, log_likelihood, dominant_topics
FROM reports
WHERE id = ?;
`, id).Scan(&r.ID, &createdAt, &r.Documents, &r.Vocabulary, &r.Tokens, &numTopics, &cfgJSON, &r.LogLikelihood, &dominantJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return store.Report{}, fmt.Errorf("report %s: %w", id, internalerr.ErrNotFound)
	}
	if err != nil {
		return store.Report{}, err
	}

	if r.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
		return store.Report{}, fmt.Errorf("report %s created_at: %w", id, err)
	}
	if err := json.Unmarshal([]byte(cfgJSON), &r.TopicConfig); err != nil {
		return store.Report{}, fmt.Errorf("report %s topic_config: %w", id, err)
	}
	if err := json.Unmarshal([]byte(dominantJSON), &r.DominantTopics); err != nil {
		return store.Report{}, fmt.Errorf("report %s dominant_topics: %w", id, err)
	}

	if r.Terms, err = s.loadTerms(ctx, id); err != nil {
		return store.Report{}, err
	}
	if r.Sentiment, err = s.loadSentiment(ctx, id); err != nil {
		return store.Report{}, err
	}
	if r.Topics, err = s.loadTopics(ctx, id, numTopics); err != nil {
		return store.Report{}, err
	}
	if r.Ratings, err = s.loadRatings(ctx, id); err != nil {
		return store.Report{}, err
	}
	return r, nil
}

func (s *sqliteStore) loadTerms(ctx context.Context, id string) ([]aggregate.TermCount, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT term_id, token, count FROM report_terms
WHERE report_id = ?
ORDER BY rank;
`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var terms []aggregate.TermCount
	for rows.Next() {
		var tc aggregate.TermCount
		if err := rows.Scan(&tc.ID, &tc.Token, &tc.Count); err != nil {
			return nil, err
		}
		terms = append(terms, tc)
	}
	return terms, rows.Err()
}

// loadSentiment returns the stored shares in canonical category order
func (s *sqliteStore) loadSentiment(ctx context.Context, id string) ([]sentiment.CategoryShare, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT category, count, share FROM report_sentiment
WHERE report_id = ?;
`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byCat := make(map[lexicon.Category]sentiment.CategoryShare)
	for rows.Next() {
		var (
			cs  sentiment.CategoryShare
			cat string
		)
		if err := rows.Scan(&cat, &cs.Count, &cs.Share); err != nil {
			return nil, err
		}
		cs.Category = lexicon.Category(cat)
		byCat[cs.Category] = cs
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(byCat) == 0 {
		return nil, nil
	}

	shares := make([]sentiment.CategoryShare, 0, len(byCat))
	for _, c := range lexicon.Categories {
		if cs, ok := byCat[c]; ok {
			shares = append(shares, cs)
		}
	}
	return shares, nil
}

func (s *sqliteStore) loadTopics(ctx context.Context, id string, numTopics int) ([]lda.Topic, error) {
	if numTopics == 0 {
		return nil, nil
	}
	topics := make([]lda.Topic, numTopics)
	for k := range topics {
		topics[k].ID = k
	}

	rows, err := s.db.QueryContext(ctx, `
SELECT topic, term_id, token, prob FROM report_topic_terms
WHERE report_id = ?
ORDER BY topic, rank;
`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			k  int
			tw lda.TermWeight
		)
		if err := rows.Scan(&k, &tw.Term, &tw.Token, &tw.Prob); err != nil {
			return nil, err
		}
		if k < 0 || k >= numTopics {
			return nil, fmt.Errorf("report %s: topic %d out of range [0, %d)", id, k, numTopics)
		}
		topics[k].Terms = append(topics[k].Terms, tw)
	}
	return topics, rows.Err()
}

func (s *sqliteStore) loadRatings(ctx context.Context, id string) ([]aggregate.EntityMean, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT entity, mean, n FROM report_ratings
WHERE report_id = ?
ORDER BY entity;
`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ratings []aggregate.EntityMean
	for rows.Next() {
		var em aggregate.EntityMean
		if err := rows.Scan(&em.Key, &em.Mean, &em.N); err != nil {
			return nil, err
		}
		ratings = append(ratings, em)
	}
	return ratings, rows.Err()
}

// ListReports returns up to limit reports, newest first. limit <= 0
// returns all of them.
func (s *sqliteStore) ListReports(ctx context.Context, limit int) ([]store.Summary, error) {
	if s.closed.Load() {
		return nil, internalerr.ErrStoreUnavailable
	}
	if limit <= 0 {
		limit = -1 // no limit in SQLite
	}

	rows, err := s.db.QueryContext(ctx, `
SELECT id, created_at, documents, vocabulary, tokens
FROM reports
ORDER BY created_at DESC, id DESC
LIMIT ?;
`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []store.Summary
	for rows.Next() {
		var (
			sum       store.Summary
			createdAt string
		)
		if err := rows.Scan(&sum.ID, &createdAt, &sum.Documents, &sum.Vocabulary, &sum.Tokens); err != nil {
			return nil, err
		}
		if sum.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
			return nil, fmt.Errorf("report %s created_at: %w", sum.ID, err)
		}
		out = append(out, sum)
	}
	return out, rows.Err()
}
