package ingestion

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/Adithya-Monish-Kumar-K/ngram-search/internal/document"
)

// Querier is satisfied by *sql.DB and *sql.Tx.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// PostgresSource reads every row of a documents table ordered by id. A NULL
// author is read as empty.
type PostgresSource struct {
	db    Querier
	table string
}

func NewPostgresSource(db Querier, table string) *PostgresSource {
	if table == "" {
		table = "documents"
	}
	return &PostgresSource{db: db, table: table}
}

func (s *PostgresSource) query() string {
	return fmt.Sprintf(
		"SELECT id, title, COALESCE(author, ''), content FROM %s ORDER BY id",
		pq.QuoteIdentifier(s.table),
	)
}

func (s *PostgresSource) Load(ctx context.Context) ([]document.RawDocument, error) {
	rows, err := s.db.QueryContext(ctx, s.query())
	if err != nil {
		return nil, fmt.Errorf("querying %s: %w", s.table, err)
	}
	defer rows.Close()

	docs := []document.RawDocument{}
	for rows.Next() {
		var d document.RawDocument
		if err := rows.Scan(&d.ID, &d.Title, &d.Author, &d.Content); err != nil {
			return nil, fmt.Errorf("scanning %s row: %w", s.table, err)
		}
		docs = append(docs, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating %s: %w", s.table, err)
	}
	return docs, nil
}
