package sheet

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/jmoiron/sqlx"
)

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Postgres adapts a relational table to the Table contract. Each backed
// table carries a hidden bigserial `rn` column that preserves append
// order, so row indexes stay stable the way a spreadsheet keeps them.
type Postgres struct {
	db      *sqlx.DB
	name    string
	columns []string
}

// NewPostgres wires a Table over an existing relational table. The
// column list doubles as the header row and must match the migration.
func NewPostgres(db *sqlx.DB, name string, columns []string) (*Postgres, error) {
	if !identRe.MatchString(name) {
		return nil, fmt.Errorf("sheet: invalid table name %q", name)
	}
	for _, col := range columns {
		if !identRe.MatchString(col) {
			return nil, fmt.Errorf("sheet: invalid column name %q", col)
		}
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("sheet: table %s has no columns", name)
	}
	return &Postgres{db: db, name: name, columns: append([]string(nil), columns...)}, nil
}

func (t *Postgres) selectList() string {
	quoted := make([]string, len(t.columns))
	for i, col := range t.columns {
		quoted[i] = `"` + col + `"`
	}
	return strings.Join(quoted, ", ")
}

func (t *Postgres) Records(ctx context.Context) ([]Record, error) {
	rows, err := t.rawRows(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Record, 0, len(rows))
	for _, row := range rows {
		rec := make(Record, len(t.columns))
		for i, key := range t.columns {
			rec[key] = row[i]
		}
		out = append(out, rec)
	}
	return out, nil
}

func (t *Postgres) Values(ctx context.Context) ([][]string, error) {
	rows, err := t.rawRows(ctx)
	if err != nil {
		return nil, err
	}
	out := make([][]string, 0, len(rows)+1)
	out = append(out, append([]string(nil), t.columns...))
	out = append(out, rows...)
	return out, nil
}

func (t *Postgres) Header(ctx context.Context) ([]string, error) {
	return append([]string(nil), t.columns...), nil
}

func (t *Postgres) Append(ctx context.Context, row []string) error {
	placeholders := make([]string, len(t.columns))
	args := make([]interface{}, len(t.columns))
	for i := range t.columns {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		if i < len(row) {
			args[i] = row[i]
		} else {
			args[i] = ""
		}
	}
	query := fmt.Sprintf(
		`INSERT INTO %q (%s) VALUES (%s)`,
		t.name, t.selectList(), strings.Join(placeholders, ", "),
	)
	if _, err := t.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("sheet: append to %s: %w", t.name, err)
	}
	return nil
}

func (t *Postgres) UpdateCell(ctx context.Context, row, col int, value string) error {
	if row < 2 {
		return fmt.Errorf("sheet: row %d out of range", row)
	}
	if col < 1 || col > len(t.columns) {
		return fmt.Errorf("sheet: column %d out of range", col)
	}
	query := fmt.Sprintf(
		`UPDATE %q SET %q = $1 WHERE rn = (SELECT rn FROM %q ORDER BY rn OFFSET $2 LIMIT 1)`,
		t.name, t.columns[col-1], t.name,
	)
	res, err := t.db.ExecContext(ctx, query, value, row-2)
	if err != nil {
		return fmt.Errorf("sheet: update cell in %s: %w", t.name, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("sheet: row %d out of range", row)
	}
	return nil
}

func (t *Postgres) rawRows(ctx context.Context) ([][]string, error) {
	query := fmt.Sprintf(`SELECT %s FROM %q ORDER BY rn`, t.selectList(), t.name)
	rows, err := t.db.QueryxContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("sheet: read %s: %w", t.name, err)
	}
	defer rows.Close()

	var out [][]string
	for rows.Next() {
		raw, err := rows.SliceScan()
		if err != nil {
			return nil, fmt.Errorf("sheet: scan %s: %w", t.name, err)
		}
		row := make([]string, len(raw))
		for i, v := range raw {
			row[i] = cellString(v)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sheet: read %s: %w", t.name, err)
	}
	return out, nil
}

func cellString(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case []byte:
		return string(val)
	default:
		return fmt.Sprint(val)
	}
}
