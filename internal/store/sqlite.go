package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	sqlite3 "github.com/mutecomm/go-sqlcipher/v4"

	"github.com/notefold/notefold/internal/errs"
)

const (
	// DriverName is the project-specific SQLCipher driver registration.
	DriverName = "sqlite3_notefold"

	// MaxOpenConns is kept low: SQLite is single-writer and the engines
	// issue one logical operation per call.
	MaxOpenConns = 2

	// MaxIdleConns is the maximum idle connections for the notes database.
	MaxIdleConns = 1
)

func init() {
	sql.Register(DriverName, &sqlite3.SQLiteDriver{})
}

// SQLite implements Store on a single SQLite database file, optionally
// encrypted with SQLCipher.
type SQLite struct {
	db *sql.DB
}

var _ Store = (*SQLite)(nil)

// Open opens (creating if needed) the notes database at path. keyHex, when
// non-empty, must be 64 hex characters and enables SQLCipher encryption.
func Open(path, keyHex string) (*SQLite, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	dsn := path
	if keyHex != "" {
		if len(keyHex) != 64 {
			return nil, fmt.Errorf("database key must be 64 hex characters, got %d", len(keyHex))
		}
		dsn = fmt.Sprintf("%s?_pragma_key=x'%s'&_pragma_cipher_page_size=4096", path, keyHex)
	}
	dsn = appendSQLiteParams(dsn, sqliteCommonParams())

	return OpenDSN(dsn)
}

// OpenDSN opens a store on a raw DSN. Used directly by tests for in-memory
// databases.
func OpenDSN(dsn string) (*SQLite, error) {
	db, err := sql.Open(DriverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open notes database: %w", err)
	}

	db.SetMaxOpenConns(MaxOpenConns)
	db.SetMaxIdleConns(MaxIdleConns)

	// A plain query verifies both the connection and, when encrypted, the key.
	var sqliteVersion string
	if err := db.QueryRow("SELECT sqlite_version()").Scan(&sqliteVersion); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to verify notes database: %w", err)
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLite{db: db}, nil
}

// DB returns the underlying sql.DB for direct access when needed.
func (s *SQLite) DB() *sql.DB {
	return s.db
}

// Close closes the database connection.
func (s *SQLite) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func sqliteCommonParams() string {
	return "_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000&_foreign_keys=on"
}

func appendSQLiteParams(dsn, params string) string {
	if strings.Contains(dsn, "?") {
		return dsn + "&" + params
	}
	return dsn + "?" + params
}

func storeErr(op string, err error) error {
	return errs.Wrap(errs.Unavailable, "note store unavailable", fmt.Errorf("%s: %w", op, err))
}

// ---- Folders ----

func (s *SQLite) ListFolders(ctx context.Context) ([]Folder, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, COALESCE(parent_id, '') FROM folders ORDER BY name COLLATE NOCASE, id`)
	if err != nil {
		return nil, storeErr("list folders", err)
	}
	defer rows.Close()

	var folders []Folder
	for rows.Next() {
		var f Folder
		if err := rows.Scan(&f.ID, &f.Name, &f.ParentID); err != nil {
			return nil, storeErr("scan folder", err)
		}
		folders = append(folders, f)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("iterate folders", err)
	}
	return folders, nil
}

func (s *SQLite) FindFolderByID(ctx context.Context, id string) (*Folder, error) {
	var f Folder
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, COALESCE(parent_id, '') FROM folders WHERE id = ?`, id).
		Scan(&f.ID, &f.Name, &f.ParentID)
	if err == sql.ErrNoRows {
		return nil, errs.New(errs.NotFound, "folder not found")
	}
	if err != nil {
		return nil, storeErr("find folder", err)
	}
	return &f, nil
}

func (s *SQLite) AddFolder(ctx context.Context, f *Folder) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO folders (id, name, parent_id) VALUES (?, ?, ?)`,
		f.ID, f.Name, nullableID(f.ParentID))
	if err != nil {
		return storeErr("add folder", err)
	}
	return nil
}

func (s *SQLite) UpdateFolder(ctx context.Context, f *Folder) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE folders SET name = ?, parent_id = ? WHERE id = ?`,
		f.Name, nullableID(f.ParentID), f.ID)
	if err != nil {
		return storeErr("update folder", err)
	}
	return requireRow(res, "folder not found")
}

func (s *SQLite) RemoveFolder(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM folders WHERE id = ?`, id)
	if err != nil {
		return storeErr("remove folder", err)
	}
	return requireRow(res, "folder not found")
}

// ---- Notes ----

const noteColumns = `id, title, content, type, folder_id, created_at, updated_at`

func (s *SQLite) ListNotesInFolder(ctx context.Context, folderID string) ([]Note, error) {
	return s.listNotes(ctx,
		`SELECT `+noteColumns+` FROM notes WHERE folder_id = ? ORDER BY created_at, id`, folderID)
}

func (s *SQLite) ListAllNotes(ctx context.Context) ([]Note, error) {
	return s.listNotes(ctx,
		`SELECT `+noteColumns+` FROM notes ORDER BY created_at, id`)
}

func (s *SQLite) listNotes(ctx context.Context, query string, args ...any) ([]Note, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storeErr("list notes", err)
	}
	defer rows.Close()

	var notes []Note
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, err
		}
		notes = append(notes, *n)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("iterate notes", err)
	}

	for i := range notes {
		if err := s.resolveNote(ctx, &notes[i]); err != nil {
			return nil, err
		}
	}
	return notes, nil
}

func (s *SQLite) FindNoteByID(ctx context.Context, id string) (*Note, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+noteColumns+` FROM notes WHERE id = ?`, id)
	n, err := scanNote(row)
	if err != nil {
		return nil, err
	}
	if err := s.resolveNote(ctx, n); err != nil {
		return nil, err
	}
	return n, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanNote(row rowScanner) (*Note, error) {
	var n Note
	var typ int64
	var createdAt, updatedAt int64
	err := row.Scan(&n.ID, &n.Title, &n.Content, &typ, &n.FolderID, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, errs.New(errs.NotFound, "note not found")
	}
	if err != nil {
		return nil, storeErr("scan note", err)
	}
	n.Type = NoteType(typ)
	n.CreatedAt = time.Unix(createdAt, 0).UTC()
	n.UpdatedAt = time.Unix(updatedAt, 0).UTC()
	return &n, nil
}

// resolveNote loads the note's tags and checklist items.
func (s *SQLite) resolveNote(ctx context.Context, n *Note) error {
	tagRows, err := s.db.QueryContext(ctx, `
		SELECT t.id, t.name
		FROM tags t
		JOIN note_tags nt ON nt.tag_id = t.id
		WHERE nt.note_id = ?
		ORDER BY t.name COLLATE NOCASE, t.id
	`, n.ID)
	if err != nil {
		return storeErr("list note tags", err)
	}
	defer tagRows.Close()

	n.Tags = nil
	for tagRows.Next() {
		var t Tag
		if err := tagRows.Scan(&t.ID, &t.Name); err != nil {
			return storeErr("scan note tag", err)
		}
		n.Tags = append(n.Tags, t)
	}
	if err := tagRows.Err(); err != nil {
		return storeErr("iterate note tags", err)
	}

	itemRows, err := s.db.QueryContext(ctx, `
		SELECT id, note_id, text, checked
		FROM checklist_items
		WHERE note_id = ?
		ORDER BY position, id
	`, n.ID)
	if err != nil {
		return storeErr("list checklist items", err)
	}
	defer itemRows.Close()

	n.Items = nil
	for itemRows.Next() {
		var item ChecklistItem
		var checked int64
		if err := itemRows.Scan(&item.ID, &item.NoteID, &item.Text, &checked); err != nil {
			return storeErr("scan checklist item", err)
		}
		item.Checked = checked != 0
		n.Items = append(n.Items, item)
	}
	if err := itemRows.Err(); err != nil {
		return storeErr("iterate checklist items", err)
	}
	return nil
}

func (s *SQLite) AddNote(ctx context.Context, n *Note) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO notes (id, title, content, type, folder_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, n.ID, n.Title, n.Content, int64(n.Type), n.FolderID, n.CreatedAt.Unix(), n.UpdatedAt.Unix())
	if err != nil {
		return storeErr("add note", err)
	}
	return nil
}

func (s *SQLite) UpdateNote(ctx context.Context, n *Note) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE notes SET title = ?, content = ?, type = ?, folder_id = ?, updated_at = ?
		WHERE id = ?
	`, n.Title, n.Content, int64(n.Type), n.FolderID, n.UpdatedAt.Unix(), n.ID)
	if err != nil {
		return storeErr("update note", err)
	}
	return requireRow(res, "note not found")
}

func (s *SQLite) RemoveNote(ctx context.Context, id string) error {
	// Checklist items and note_tags rows cascade with the note.
	res, err := s.db.ExecContext(ctx, `DELETE FROM notes WHERE id = ?`, id)
	if err != nil {
		return storeErr("remove note", err)
	}
	return requireRow(res, "note not found")
}

// ---- Tags ----

func (s *SQLite) ListAllTags(ctx context.Context) ([]Tag, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name FROM tags ORDER BY name COLLATE NOCASE, id`)
	if err != nil {
		return nil, storeErr("list tags", err)
	}
	defer rows.Close()

	var tags []Tag
	for rows.Next() {
		var t Tag
		if err := rows.Scan(&t.ID, &t.Name); err != nil {
			return nil, storeErr("scan tag", err)
		}
		tags = append(tags, t)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("iterate tags", err)
	}
	return tags, nil
}

func (s *SQLite) FindTagByName(ctx context.Context, name string) (*Tag, error) {
	var t Tag
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name FROM tags WHERE name = ? COLLATE NOCASE`, name).
		Scan(&t.ID, &t.Name)
	if err == sql.ErrNoRows {
		return nil, errs.New(errs.NotFound, "tag not found")
	}
	if err != nil {
		return nil, storeErr("find tag", err)
	}
	return &t, nil
}

func (s *SQLite) AddTag(ctx context.Context, t *Tag) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO tags (id, name) VALUES (?, ?)`, t.ID, t.Name)
	if err != nil {
		return storeErr("add tag", err)
	}
	return nil
}

func (s *SQLite) RemoveTag(ctx context.Context, id string) error {
	// Join rows cascade, so no note keeps a reference to the deleted tag.
	res, err := s.db.ExecContext(ctx, `DELETE FROM tags WHERE id = ?`, id)
	if err != nil {
		return storeErr("remove tag", err)
	}
	return requireRow(res, "tag not found")
}

func (s *SQLite) ReplaceNoteTags(ctx context.Context, noteID string, tagIDs []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return storeErr("begin replace tags", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM note_tags WHERE note_id = ?`, noteID); err != nil {
		return storeErr("clear note tags", err)
	}
	for _, tagID := range tagIDs {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO note_tags (note_id, tag_id) VALUES (?, ?)`, noteID, tagID); err != nil {
			return storeErr("associate tag", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return storeErr("commit replace tags", err)
	}
	return nil
}

// ---- Checklist items ----

func (s *SQLite) AddChecklistItem(ctx context.Context, item *ChecklistItem) error {
	var position int64
	err := s.db.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(position), -1) + 1 FROM checklist_items WHERE note_id = ?`,
		item.NoteID).Scan(&position)
	if err != nil {
		return storeErr("next item position", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO checklist_items (id, note_id, text, checked, position)
		VALUES (?, ?, ?, ?, ?)
	`, item.ID, item.NoteID, item.Text, boolToInt(item.Checked), position)
	if err != nil {
		return storeErr("add checklist item", err)
	}
	return nil
}

func (s *SQLite) RemoveChecklistItemsForNote(ctx context.Context, noteID string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM checklist_items WHERE note_id = ?`, noteID)
	if err != nil {
		return storeErr("remove checklist items", err)
	}
	return nil
}

// ---- helpers ----

func nullableID(id string) any {
	if id == "" {
		return nil
	}
	return id
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

func requireRow(res sql.Result, notFoundMsg string) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return storeErr("rows affected", err)
	}
	if affected == 0 {
		return errs.New(errs.NotFound, notFoundMsg)
	}
	return nil
}
