package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	mysqldrv "github.com/go-sql-driver/mysql"

	"propsite/internal/domain"
)

const errDuplicateEntry = 1062

func draftEntry(stamp string) string   { return "data-v" + stamp + ".json" }
func archiveEntry(stamp string) string { return "data-archive-v" + stamp + ".json" }

// Repo is a RecordBackend over one MySQL table. Promote runs in a single transaction,
// so readers see either the old or the new published row.
type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

func decode(id string, body []byte) (*domain.Property, error) {
	var p domain.Property
	if err := json.Unmarshal(body, &p); err != nil {
		if errors.Is(err, domain.ErrInvalidData) {
			return nil, fmt.Errorf("property %s: %w", id, err)
		}
		return nil, fmt.Errorf("%w: property %s: %v", domain.ErrInvalidData, id, err)
	}
	if p.ID == "" {
		p.ID = id
	}
	return &p, nil
}

func (r *Repo) ListIDs(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, listIDsSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *Repo) ReadPublished(ctx context.Context, id string) (*domain.Property, error) {
	var body []byte
	err := r.db.QueryRowContext(ctx, readPublishedSQL, id).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return decode(id, body)
}

func (r *Repo) DraftStamps(ctx context.Context, id string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, draftStampsSQL, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var stamps []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		stamps = append(stamps, s)
	}
	return stamps, rows.Err()
}

func (r *Repo) ReadDraft(ctx context.Context, id, stamp string) (*domain.Property, error) {
	var body []byte
	err := r.db.QueryRowContext(ctx, readDraftSQL, id, stamp).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("draft %s@%s: %w", id, stamp, domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return decode(id, body)
}

func (r *Repo) WriteDraft(ctx context.Context, p domain.Property) error {
	body, err := json.Marshal(p)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, insertRecordSQL, p.ID, "draft", p.Version, draftEntry(p.Version), string(body))
	var me *mysqldrv.MySQLError
	if errors.As(err, &me) && me.Number == errDuplicateEntry {
		return fmt.Errorf("draft %s@%s: %w", p.ID, p.Version, domain.ErrStampTaken)
	}
	return err
}

func (r *Repo) DeleteDraft(ctx context.Context, id, stamp string) error {
	res, err := r.db.ExecContext(ctx, deleteDraftSQL, id, stamp)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("draft %s@%s: %w", id, stamp, domain.ErrNotFound)
	}
	return nil
}

func (r *Repo) Promote(ctx context.Context, id, stamp string) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	// 1) the draft being promoted
	var body []byte
	if err = tx.QueryRowContext(ctx, lockDraftSQL, id, stamp).Scan(&body); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("draft %s@%s: %w", id, stamp, domain.ErrNotFound)
		}
		return err
	}
	next, err := decode(id, body)
	if err != nil {
		return err
	}
	next.IsPublished = true
	pubBody, err := json.Marshal(next)
	if err != nil {
		return err
	}

	// 2) archive the old published row
	var oldRow int64
	var oldStamp string
	err = tx.QueryRowContext(ctx, lockPublishedSQL, id).Scan(&oldRow, &oldStamp)
	switch {
	case err == nil:
		name, nerr := uniqueEntry(ctx, tx, id, archiveEntry(oldStamp))
		if nerr != nil {
			return nerr
		}
		if _, err = tx.ExecContext(ctx, archiveRowSQL, name, oldRow); err != nil {
			return err
		}
	case errors.Is(err, sql.ErrNoRows):
		err = nil
	default:
		return err
	}

	// 3) archive every draft, then fill the published slot
	type draftRow struct {
		id    int64
		entry string
	}
	rows, err := tx.QueryContext(ctx, lockDraftsSQL, id)
	if err != nil {
		return err
	}
	var drafts []draftRow
	for rows.Next() {
		var d draftRow
		if err = rows.Scan(&d.id, &d.entry); err != nil {
			rows.Close()
			return err
		}
		drafts = append(drafts, d)
	}
	rows.Close()
	if err = rows.Err(); err != nil {
		return err
	}
	for _, d := range drafts {
		name, nerr := uniqueEntry(ctx, tx, id, d.entry)
		if nerr != nil {
			return nerr
		}
		if _, err = tx.ExecContext(ctx, archiveRowSQL, name, d.id); err != nil {
			return err
		}
	}
	if _, err = tx.ExecContext(ctx, insertRecordSQL, id, "published", next.Version, "data.json", string(pubBody)); err != nil {
		return err
	}
	return tx.Commit()
}

// uniqueEntry mirrors the file store's "~N" suffix for archive name clashes.
func uniqueEntry(ctx context.Context, tx *sql.Tx, id, name string) (string, error) {
	base := strings.TrimSuffix(name, ".json")
	candidate := name
	for i := 1; ; i++ {
		var n int
		if err := tx.QueryRowContext(ctx, archiveEntryExistsSQL, id, candidate).Scan(&n); err != nil {
			return "", err
		}
		if n == 0 {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s~%d.json", base, i)
	}
}

func (r *Repo) ArchiveEntries(ctx context.Context, id string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, archiveEntriesSQL, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var names []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		names = append(names, n)
	}
	return names, rows.Err()
}
