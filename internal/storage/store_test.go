package storage

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/url"
	"strings"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := OpenSQLite(":memory:")
	if err != nil {
		t.Fatalf("OpenSQLite(:memory:) failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestEnsureSchemaIdempotent(t *testing.T) {
	dir := t.TempDir()

	s1, err := OpenSQLite(dir)
	if err != nil {
		t.Fatalf("first Open failed: %v", err)
	}
	if _, err := s1.SaveChatTurn(context.Background(), nil, "hi", "there"); err != nil {
		t.Fatalf("SaveChatTurn: %v", err)
	}
	s1.Close()

	s2, err := OpenSQLite(dir)
	if err != nil {
		t.Fatalf("second Open failed: %v", err)
	}
	defer s2.Close()
	if err := s2.EnsureSchema(context.Background()); err != nil {
		t.Fatalf("EnsureSchema again: %v", err)
	}

	turns, err := s2.ListChatTurns(context.Background(), 10)
	if err != nil {
		t.Fatalf("ListChatTurns: %v", err)
	}
	if len(turns) != 1 {
		t.Fatalf("expected existing row to survive, got %d rows", len(turns))
	}
}

func TestSaveChatTurn(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	uid := int64(7)
	before := time.Now().UTC().Add(-time.Second)
	turn, err := s.SaveChatTurn(ctx, &uid, "hi", "Dummy response: hi")
	if err != nil {
		t.Fatalf("SaveChatTurn: %v", err)
	}
	if turn.ID == 0 {
		t.Error("expected assigned id")
	}
	if turn.Timestamp.Before(before) {
		t.Errorf("timestamp %v before test start", turn.Timestamp)
	}

	got, err := s.ListChatTurns(ctx, 10)
	if err != nil {
		t.Fatalf("ListChatTurns: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d turns, want 1", len(got))
	}
	if got[0].UserID == nil || *got[0].UserID != 7 {
		t.Errorf("UserID = %v, want 7", got[0].UserID)
	}
	if got[0].Message != "hi" || got[0].Response != "Dummy response: hi" {
		t.Errorf("unexpected turn: %+v", got[0])
	}
	if !got[0].Timestamp.Equal(turn.Timestamp) {
		t.Errorf("Timestamp = %v, want %v", got[0].Timestamp, turn.Timestamp)
	}
}

func TestSaveChatTurnNullUser(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if _, err := s.SaveChatTurn(ctx, nil, "m", "r"); err != nil {
		t.Fatalf("SaveChatTurn: %v", err)
	}
	got, err := s.ListChatTurns(ctx, 1)
	if err != nil {
		t.Fatalf("ListChatTurns: %v", err)
	}
	if got[0].UserID != nil {
		t.Errorf("UserID = %d, want nil", *got[0].UserID)
	}
}

func TestListChatTurnsMostRecentFirst(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for _, m := range []string{"A", "B", "C"} {
		if _, err := s.SaveChatTurn(ctx, nil, m, "r"+m); err != nil {
			t.Fatalf("SaveChatTurn(%s): %v", m, err)
		}
	}

	got, err := s.ListChatTurns(ctx, 2)
	if err != nil {
		t.Fatalf("ListChatTurns: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d turns, want 2", len(got))
	}
	if got[0].Message != "C" || got[1].Message != "B" {
		t.Errorf("order = [%s %s], want [C B]", got[0].Message, got[1].Message)
	}
	if got[0].ID <= got[1].ID {
		t.Errorf("ids not descending: %d, %d", got[0].ID, got[1].ID)
	}
}

func TestListChatTurnsEmpty(t *testing.T) {
	s := openTestStore(t)
	got, err := s.ListChatTurns(context.Background(), 50)
	if err != nil {
		t.Fatalf("ListChatTurns: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected no turns, got %d", len(got))
	}
}

func TestSaveDocument(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	long := strings.Repeat("x", 10000)
	doc, err := s.SaveDocument(ctx, "notes.txt", long)
	if err != nil {
		t.Fatalf("SaveDocument: %v", err)
	}
	if doc.ID == 0 {
		t.Error("expected assigned id")
	}
	if _, err := s.SaveDocument(ctx, "scan.bin", "[binary file]"); err != nil {
		t.Fatalf("SaveDocument: %v", err)
	}

	docs, err := s.ListDocuments(ctx, 10)
	if err != nil {
		t.Fatalf("ListDocuments: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("got %d documents, want 2", len(docs))
	}
	if docs[0].Filename != "scan.bin" || docs[0].Content != "[binary file]" {
		t.Errorf("unexpected first document: %+v", docs[0])
	}
	if len(docs[1].Content) != 10000 {
		t.Errorf("content length = %d, want 10000", len(docs[1].Content))
	}
}

func TestClosedStoreReturnsStorageError(t *testing.T) {
	s, err := OpenSQLite(":memory:")
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	s.Close()

	_, err = s.SaveChatTurn(context.Background(), nil, "m", "r")
	var se *Error
	if !errors.As(err, &se) {
		t.Fatalf("expected *storage.Error, got %v", err)
	}
	if se.Op != "save chat turn" {
		t.Errorf("Op = %q", se.Op)
	}
}

func TestOpenUnsupportedDriver(t *testing.T) {
	_, err := Open(context.Background(), Options{Driver: "oracle"}, nil)
	if err == nil {
		t.Fatal("expected error for unsupported driver")
	}
}

func TestRebind(t *testing.T) {
	pg := &Store{dialect: dialectPostgres}
	got := pg.rebind("INSERT INTO t (a, b) VALUES (?, ?)")
	if got != "INSERT INTO t (a, b) VALUES ($1, $2)" {
		t.Errorf("rebind = %q", got)
	}

	lite := &Store{dialect: dialectSQLite}
	if q := lite.rebind("SELECT ?"); q != "SELECT ?" {
		t.Errorf("sqlite rebind = %q", q)
	}
}

func TestPostgresDSN(t *testing.T) {
	dsn := postgresDSN(Options{User: "app", Password: "p@ss/word", Name: "chat"}, "db.internal")
	u, err := url.Parse(dsn)
	if err != nil {
		t.Fatalf("parse dsn: %v", err)
	}
	if u.Host != "db.internal:5432" {
		t.Errorf("host = %q", u.Host)
	}
	if pw, _ := u.User.Password(); pw != "p@ss/word" {
		t.Errorf("password = %q", pw)
	}
	if u.Path != "/chat" {
		t.Errorf("path = %q", u.Path)
	}
}

func TestResolveHost(t *testing.T) {
	orig := lookupHost
	t.Cleanup(func() { lookupHost = orig })
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	lookupHost = func(string) ([]string, error) { return nil, errors.New("no such host") }
	if got := resolveHost("mysql", "127.0.0.1", logger); got != "127.0.0.1" {
		t.Errorf("unresolvable host: got %q, want fallback", got)
	}

	lookupHost = func(string) ([]string, error) { return []string{"10.0.0.5"}, nil }
	if got := resolveHost("db", "127.0.0.1", logger); got != "db" {
		t.Errorf("resolvable host: got %q, want db", got)
	}

	if got := resolveHost("10.1.2.3", "127.0.0.1", logger); got != "10.1.2.3" {
		t.Errorf("ip literal: got %q", got)
	}
	if got := resolveHost("", "127.0.0.1", logger); got != "127.0.0.1" {
		t.Errorf("empty host: got %q", got)
	}
}

func TestTimeScanner(t *testing.T) {
	var ts time.Time
	sc := timeScanner{&ts}
	for _, in := range []any{
		"2024-03-01 10:20:30.123456+00:00",
		"2024-03-01T10:20:30.123456Z",
		[]byte("2024-03-01 10:20:30.123456"),
		time.Date(2024, 3, 1, 10, 20, 30, 123456000, time.UTC),
	} {
		if err := sc.Scan(in); err != nil {
			t.Errorf("Scan(%v): %v", in, err)
			continue
		}
		if ts.Year() != 2024 || ts.Second() != 30 {
			t.Errorf("Scan(%v) = %v", in, ts)
		}
	}
	if err := sc.Scan(42); err == nil {
		t.Error("expected error for int input")
	}
}
