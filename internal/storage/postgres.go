package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Basic-PDF-Manager/Document-Service/internal/models"
	_ "github.com/lib/pq"
)

// PostgresStore mirrors the document set into relational tables, one row
// per record. Versions and metadata entries live in child tables keyed by
// document id.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore connects, verifies the connection and creates the
// schema if it does not exist yet.
func NewPostgresStore(connectionString string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping PostgreSQL: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	p := &PostgresStore{db: db}
	if err := p.createTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return p, nil
}

func (p *PostgresStore) createTables() error {
	query := `
    CREATE TABLE IF NOT EXISTS pdf_documents (
        id VARCHAR(255) PRIMARY KEY,
        filename VARCHAR(255) NOT NULL,
        description TEXT,
        original_filename VARCHAR(255),
        stored_filename VARCHAR(255),
        file_url VARCHAR(500),
        size BIGINT,
        uploaded_by VARCHAR(255),
        uploaded_at VARCHAR(255),
        folder_id INTEGER,
        version_number INTEGER DEFAULT 1,
        seq SERIAL
    );

    CREATE TABLE IF NOT EXISTS pdf_versions (
        id SERIAL PRIMARY KEY,
        pdf_id VARCHAR(255) NOT NULL REFERENCES pdf_documents(id) ON DELETE CASCADE,
        version_number INTEGER NOT NULL,
        stored_filename VARCHAR(255) NOT NULL,
        file_size BIGINT NOT NULL,
        description TEXT,
        created_at VARCHAR(255) NOT NULL,
        created_by VARCHAR(255) NOT NULL
    );

    CREATE TABLE IF NOT EXISTS pdf_metadata (
        id SERIAL PRIMARY KEY,
        pdf_id VARCHAR(255) NOT NULL REFERENCES pdf_documents(id) ON DELETE CASCADE,
        key VARCHAR(100) NOT NULL,
        value TEXT,
        created_at VARCHAR(255) NOT NULL,
        updated_at VARCHAR(255) NOT NULL,
        UNIQUE (pdf_id, key)
    );

    CREATE INDEX IF NOT EXISTS idx_pdf_documents_folder_id ON pdf_documents(folder_id);
    `
	_, err := p.db.Exec(query)
	return err
}

func (p *PostgresStore) LoadAll(ctx context.Context) ([]models.Document, error) {
	rows, err := p.db.QueryContext(ctx, `
    SELECT id, filename, description, original_filename, stored_filename,
           file_url, size, uploaded_by, uploaded_at, folder_id, version_number
    FROM pdf_documents ORDER BY seq
    `)
	if err != nil {
		return nil, fmt.Errorf("failed to query documents: %w", err)
	}
	defer rows.Close()

	var docs []models.Document
	index := make(map[string]int)
	for rows.Next() {
		var d models.Document
		if err := rows.Scan(
			&d.ID, &d.Filename, &d.Description, &d.OriginalFilename,
			&d.StoredFilename, &d.FileURL, &d.Size, &d.UploadedBy,
			&d.UploadedAt, &d.FolderID, &d.VersionNumber,
		); err != nil {
			return nil, fmt.Errorf("failed to scan document row: %w", err)
		}
		index[d.ID] = len(docs)
		docs = append(docs, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := p.loadVersions(ctx, docs, index); err != nil {
		return nil, err
	}
	if err := p.loadMetadata(ctx, docs, index); err != nil {
		return nil, err
	}
	if docs == nil {
		docs = []models.Document{}
	}
	return docs, nil
}

func (p *PostgresStore) loadVersions(ctx context.Context, docs []models.Document, index map[string]int) error {
	rows, err := p.db.QueryContext(ctx, `
    SELECT pdf_id, version_number, stored_filename, file_size, description, created_at, created_by
    FROM pdf_versions ORDER BY pdf_id, version_number
    `)
	if err != nil {
		return fmt.Errorf("failed to query versions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var pdfID string
		var v models.Version
		if err := rows.Scan(&pdfID, &v.VersionNumber, &v.StoredFilename, &v.FileSize, &v.Description, &v.CreatedAt, &v.CreatedBy); err != nil {
			return fmt.Errorf("failed to scan version row: %w", err)
		}
		if i, ok := index[pdfID]; ok {
			docs[i].Versions = append(docs[i].Versions, v)
		}
	}
	return rows.Err()
}

func (p *PostgresStore) loadMetadata(ctx context.Context, docs []models.Document, index map[string]int) error {
	rows, err := p.db.QueryContext(ctx, `
    SELECT pdf_id, key, value, created_at, updated_at
    FROM pdf_metadata ORDER BY pdf_id, id
    `)
	if err != nil {
		return fmt.Errorf("failed to query metadata: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var pdfID string
		var m models.MetadataEntry
		if err := rows.Scan(&pdfID, &m.Key, &m.Value, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return fmt.Errorf("failed to scan metadata row: %w", err)
		}
		if i, ok := index[pdfID]; ok {
			docs[i].Metadata = append(docs[i].Metadata, m)
		}
	}
	return rows.Err()
}

func (p *PostgresStore) CreateDocument(ctx context.Context, doc models.Document, _ []models.Document) error {
	return p.upsert(ctx, doc)
}

func (p *PostgresStore) UpdateDocument(ctx context.Context, doc models.Document, _ []models.Document) error {
	return p.upsert(ctx, doc)
}

func (p *PostgresStore) upsert(ctx context.Context, doc models.Document) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
    INSERT INTO pdf_documents (id, filename, description, original_filename, stored_filename,
                               file_url, size, uploaded_by, uploaded_at, folder_id, version_number)
    VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
    ON CONFLICT (id) DO UPDATE SET
        filename = EXCLUDED.filename,
        description = EXCLUDED.description,
        stored_filename = EXCLUDED.stored_filename,
        file_url = EXCLUDED.file_url,
        size = EXCLUDED.size,
        version_number = EXCLUDED.version_number
    `,
		doc.ID, doc.Filename, doc.Description, doc.OriginalFilename, doc.StoredFilename,
		doc.FileURL, doc.Size, doc.UploadedBy, doc.UploadedAt, doc.FolderID, doc.VersionNumber,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert document: %w", err)
	}

	// Child rows are replaced wholesale; the in-memory record is the truth.
	if _, err := tx.ExecContext(ctx, `DELETE FROM pdf_versions WHERE pdf_id = $1`, doc.ID); err != nil {
		return fmt.Errorf("failed to clear versions: %w", err)
	}
	for _, v := range doc.Versions {
		if _, err := tx.ExecContext(ctx, `
        INSERT INTO pdf_versions (pdf_id, version_number, stored_filename, file_size, description, created_at, created_by)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        `, doc.ID, v.VersionNumber, v.StoredFilename, v.FileSize, v.Description, v.CreatedAt, v.CreatedBy); err != nil {
			return fmt.Errorf("failed to insert version: %w", err)
		}
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM pdf_metadata WHERE pdf_id = $1`, doc.ID); err != nil {
		return fmt.Errorf("failed to clear metadata: %w", err)
	}
	for _, m := range doc.Metadata {
		if _, err := tx.ExecContext(ctx, `
        INSERT INTO pdf_metadata (pdf_id, key, value, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5)
        `, doc.ID, m.Key, m.Value, m.CreatedAt, m.UpdatedAt); err != nil {
			return fmt.Errorf("failed to insert metadata: %w", err)
		}
	}

	return tx.Commit()
}

func (p *PostgresStore) DeleteDocument(ctx context.Context, id string, _ []models.Document) error {
	_, err := p.db.ExecContext(ctx, `DELETE FROM pdf_documents WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	return nil
}

// Flush is a no-op: every mutation is already written per record.
func (p *PostgresStore) Flush(ctx context.Context, _ []models.Document) error {
	return nil
}

func (p *PostgresStore) Close() error {
	return p.db.Close()
}
