package catalog

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/lib/pq"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

//go:embed data/products.json
var embeddedCatalog []byte

// Source supplies the product catalog once at startup.
type Source interface {
	Load(ctx context.Context) ([]Product, error)
}

type SourceKind string

const (
	SourceEmbedded SourceKind = "embedded"
	SourceFile     SourceKind = "file"
	SourcePostgres SourceKind = "postgres"
)

// SourceOptions carries the settings the individual sources need.
type SourceOptions struct {
	FilePath string
	DB       *sql.DB
	Logger   zerolog.Logger
}

// NewSource picks a catalog source by kind.
func NewSource(kind SourceKind, opts SourceOptions) (Source, error) {
	switch kind {
	case SourceEmbedded, "":
		return &EmbeddedSource{log: opts.Logger}, nil
	case SourceFile:
		if opts.FilePath == "" {
			return nil, fmt.Errorf("file catalog source: path is required")
		}
		return NewFileSource(opts.FilePath, opts.Logger), nil
	case SourcePostgres:
		if opts.DB == nil {
			return nil, fmt.Errorf("postgres catalog source: database is required")
		}
		return NewPostgresSource(opts.DB, opts.Logger), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownSource, kind)
	}
}

// EmbeddedSource serves the catalog compiled into the binary.
type EmbeddedSource struct {
	log zerolog.Logger
}

func (s *EmbeddedSource) Load(ctx context.Context) ([]Product, error) {
	var records []Record
	if err := json.Unmarshal(embeddedCatalog, &records); err != nil {
		return nil, fmt.Errorf("decoding embedded catalog: %w", err)
	}
	return fromRecords(records, s.log), nil
}

// FileSource reads a JSON or YAML catalog from disk.
type FileSource struct {
	path string
	log  zerolog.Logger
}

func NewFileSource(path string, log zerolog.Logger) *FileSource {
	return &FileSource{path: path, log: log}
}

func (s *FileSource) Load(ctx context.Context) ([]Product, error) {
	b, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog %s: %w", s.path, err)
	}
	var records []Record
	switch strings.ToLower(filepath.Ext(s.path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(b, &records)
	default:
		err = json.Unmarshal(b, &records)
	}
	if err != nil {
		return nil, fmt.Errorf("decoding catalog %s: %w", s.path, err)
	}
	return fromRecords(records, s.log), nil
}

// PostgresSource reads the products table.
type PostgresSource struct {
	db  *sql.DB
	log zerolog.Logger
}

func NewPostgresSource(db *sql.DB, log zerolog.Logger) *PostgresSource {
	return &PostgresSource{db: db, log: log}
}

const selectProducts = `
		SELECT id, name, category, price, rating, images, features, description
		FROM products
		ORDER BY id
	`

func (s *PostgresSource) Load(ctx context.Context) ([]Product, error) {
	rows, err := s.db.QueryContext(ctx, selectProducts)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var (
			r           Record
			name, cat   sql.NullString
			price, rate sql.NullFloat64
			desc        sql.NullString
		)
		if err := rows.Scan(&r.ID, &name, &cat, &price, &rate, pq.Array(&r.Images), pq.Array(&r.Features), &desc); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		if name.Valid {
			r.Name = &name.String
		}
		if cat.Valid {
			r.Category = &cat.String
		}
		if price.Valid {
			r.Price = &price.Float64
		}
		if rate.Valid {
			r.Rating = &rate.Float64
		}
		r.Description = desc.String
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read products: %w", err)
	}
	return fromRecords(records, s.log), nil
}

// fromRecords drops records that cannot become products and keeps the rest in order.
func fromRecords(records []Record, log zerolog.Logger) []Product {
	out := make([]Product, 0, len(records))
	for _, r := range records {
		p, err := r.Product()
		if err != nil {
			log.Warn().Err(err).Int("id", r.ID).Msg("skipping catalog record")
			continue
		}
		out = append(out, p)
	}
	return out
}
