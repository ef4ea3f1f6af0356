package storage

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"strconv"
	"strings"
	"time"
)

//go:embed schema/*.sql
var schemaFS embed.FS

// Store is the persistence gateway for chat turns and documents. It is safe
// for concurrent use; every call borrows a pooled connection for its own
// duration only.
type Store struct {
	db      *sql.DB
	dialect dialect
	onClose func() // releases the pgx pool behind db, if any
}

type dialect string

const (
	dialectSQLite   dialect = "sqlite"
	dialectPostgres dialect = "postgres"
)

// Close closes the underlying connection pool.
func (s *Store) Close() error {
	err := s.db.Close()
	if s.onClose != nil {
		s.onClose()
	}
	return err
}

// Driver names the SQL dialect in use.
func (s *Store) Driver() string {
	return string(s.dialect)
}

// Ping checks that the store is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return wrap("ping", s.db.PingContext(ctx))
}

// EnsureSchema creates the tables and indexes if they do not exist. It is
// idempotent and runs on every Open.
func (s *Store) EnsureSchema(ctx context.Context) error {
	content, err := schemaFS.ReadFile("schema/" + string(s.dialect) + ".sql")
	if err != nil {
		return wrap("ensure schema", fmt.Errorf("reading schema: %w", err))
	}
	for _, stmt := range strings.Split(string(content), ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return wrap("ensure schema", err)
		}
	}
	return nil
}

// rebind rewrites ? placeholders to $n for PostgreSQL.
func (s *Store) rebind(query string) string {
	if s.dialect != dialectPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// now is the timestamp source, truncated to what both dialects store.
var now = func() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

// --- Chat history ---

// SaveChatTurn appends a chat turn and returns it with its assigned id and
// timestamp.
func (s *Store) SaveChatTurn(ctx context.Context, userID *int64, message, response string) (ChatTurn, error) {
	turn := ChatTurn{
		UserID:    userID,
		Message:   message,
		Response:  response,
		Timestamp: now(),
	}
	var uid sql.NullInt64
	if userID != nil {
		uid = sql.NullInt64{Int64: *userID, Valid: true}
	}
	err := s.db.QueryRowContext(ctx, s.rebind(`
		INSERT INTO chat_history (user_id, message, response, ts)
		VALUES (?, ?, ?, ?)
		RETURNING id`),
		uid, message, response, turn.Timestamp,
	).Scan(&turn.ID)
	if err != nil {
		return ChatTurn{}, wrap("save chat turn", err)
	}
	return turn, nil
}

// ListChatTurns returns up to limit chat turns, most recent (highest id)
// first.
func (s *Store) ListChatTurns(ctx context.Context, limit int) ([]ChatTurn, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(`
		SELECT id, user_id, message, response, ts
		FROM chat_history ORDER BY id DESC LIMIT ?`), limit,
	)
	if err != nil {
		return nil, wrap("list chat turns", err)
	}
	defer rows.Close()

	var results []ChatTurn
	for rows.Next() {
		var t ChatTurn
		var uid sql.NullInt64
		if err := rows.Scan(&t.ID, &uid, &t.Message, &t.Response, timeScanner{&t.Timestamp}); err != nil {
			return nil, wrap("list chat turns", err)
		}
		if uid.Valid {
			v := uid.Int64
			t.UserID = &v
		}
		results = append(results, t)
	}
	return results, wrap("list chat turns", rows.Err())
}

// --- Documents ---

// SaveDocument appends a document and returns it with its assigned id and
// upload time.
func (s *Store) SaveDocument(ctx context.Context, filename, content string) (Document, error) {
	doc := Document{
		Filename:   filename,
		Content:    content,
		UploadedAt: now(),
	}
	err := s.db.QueryRowContext(ctx, s.rebind(`
		INSERT INTO documents (filename, content, uploaded_at)
		VALUES (?, ?, ?)
		RETURNING id`),
		filename, content, doc.UploadedAt,
	).Scan(&doc.ID)
	if err != nil {
		return Document{}, wrap("save document", err)
	}
	return doc, nil
}

// ListDocuments returns up to limit documents, most recent first.
func (s *Store) ListDocuments(ctx context.Context, limit int) ([]Document, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(`
		SELECT id, filename, content, uploaded_at
		FROM documents ORDER BY id DESC LIMIT ?`), limit,
	)
	if err != nil {
		return nil, wrap("list documents", err)
	}
	defer rows.Close()

	var results []Document
	for rows.Next() {
		var d Document
		if err := rows.Scan(&d.ID, &d.Filename, &d.Content, timeScanner{&d.UploadedAt}); err != nil {
			return nil, wrap("list documents", err)
		}
		results = append(results, d)
	}
	return results, wrap("list documents", rows.Err())
}

// timeScanner reads a timestamp column whether the driver hands back a
// time.Time (pgx) or its text form (sqlite).
type timeScanner struct {
	t *time.Time
}

var timeLayouts = []string{
	"2006-01-02 15:04:05.999999999-07:00",
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
}

func (s timeScanner) Scan(src any) error {
	switch v := src.(type) {
	case time.Time:
		*s.t = v.UTC()
		return nil
	case string:
		return s.parse(v)
	case []byte:
		return s.parse(string(v))
	case nil:
		*s.t = time.Time{}
		return nil
	default:
		return fmt.Errorf("unsupported timestamp type %T", src)
	}
}

func (s timeScanner) parse(v string) error {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			*s.t = t.UTC()
			return nil
		}
	}
	return fmt.Errorf("parsing timestamp %q", v)
}
