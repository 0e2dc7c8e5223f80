package repository

import (
	"context"
	"fmt"
	"reflect"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// --- Fake connection ---

type call struct {
	sql  string
	args []any
	tx   bool
}

// fakeDB records every statement and answers queries from canned rows keyed
// by SQL text. Exec failures are keyed by the 0-based index of the Exec call.
type fakeDB struct {
	calls    []call
	results  map[string][][]any
	queryErr map[string]error
	execErr  map[int]error
	execs    int

	begins    int
	commits   int
	rollbacks int
}

func newFakeDB() *fakeDB {
	return &fakeDB{
		results:  make(map[string][][]any),
		queryErr: make(map[string]error),
		execErr:  make(map[int]error),
	}
}

func (f *fakeDB) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return f.exec(sql, args, false)
}

func (f *fakeDB) Query(_ context.Context, sql string, args ...any) (pgx.Rows, error) {
	return f.query(sql, args, false)
}

func (f *fakeDB) Begin(_ context.Context) (pgx.Tx, error) {
	f.begins++
	return &fakeTx{db: f}, nil
}

func (f *fakeDB) exec(sql string, args []any, tx bool) (pgconn.CommandTag, error) {
	f.calls = append(f.calls, call{sql: sql, args: args, tx: tx})
	i := f.execs
	f.execs++
	if err, ok := f.execErr[i]; ok {
		return pgconn.CommandTag{}, err
	}
	return pgconn.NewCommandTag("OK"), nil
}

func (f *fakeDB) query(sql string, args []any, tx bool) (pgx.Rows, error) {
	f.calls = append(f.calls, call{sql: sql, args: args, tx: tx})
	if err, ok := f.queryErr[sql]; ok {
		return nil, err
	}
	return &fakeRows{data: f.results[sql]}, nil
}

func (f *fakeDB) sqls() []string {
	out := make([]string, len(f.calls))
	for i, c := range f.calls {
		out[i] = c.sql
	}
	return out
}

// fakeTx forwards statements to its fakeDB. Methods the repositories never
// call are left to the embedded nil interface.
type fakeTx struct {
	pgx.Tx
	db   *fakeDB
	done bool
}

func (t *fakeTx) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return t.db.exec(sql, args, true)
}

func (t *fakeTx) Query(_ context.Context, sql string, args ...any) (pgx.Rows, error) {
	return t.db.query(sql, args, true)
}

func (t *fakeTx) Begin(_ context.Context) (pgx.Tx, error) {
	return nil, fmt.Errorf("nested transactions are not supported by fakeTx")
}

func (t *fakeTx) Commit(_ context.Context) error {
	if t.done {
		return pgx.ErrTxClosed
	}
	t.done = true
	t.db.commits++
	return nil
}

func (t *fakeTx) Rollback(_ context.Context) error {
	if t.done {
		return pgx.ErrTxClosed
	}
	t.done = true
	t.db.rollbacks++
	return nil
}

// --- Fake rows ---

type fakeRows struct {
	data   [][]any
	i      int
	closed bool
}

func (r *fakeRows) Close()                                       { r.closed = true }
func (r *fakeRows) Err() error                                   { return nil }
func (r *fakeRows) CommandTag() pgconn.CommandTag                { return pgconn.NewCommandTag("SELECT") }
func (r *fakeRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *fakeRows) RawValues() [][]byte                          { return nil }
func (r *fakeRows) Conn() *pgx.Conn                              { return nil }

func (r *fakeRows) Next() bool {
	if r.closed || r.i >= len(r.data) {
		return false
	}
	r.i++
	return true
}

func (r *fakeRows) Values() ([]any, error) {
	return r.data[r.i-1], nil
}

func (r *fakeRows) Scan(dest ...any) error {
	row := r.data[r.i-1]
	if len(dest) != len(row) {
		return fmt.Errorf("scan: %d destinations for %d columns", len(dest), len(row))
	}
	for i, d := range dest {
		if err := assign(d, row[i]); err != nil {
			return fmt.Errorf("scan column %d: %w", i, err)
		}
	}
	return nil
}

// assign stores v into the pointer dest. A nil v zeroes dest; a value of
// type T stored into **T allocates.
func assign(dest, v any) error {
	dv := reflect.ValueOf(dest).Elem()
	if v == nil {
		dv.Set(reflect.Zero(dv.Type()))
		return nil
	}
	vv := reflect.ValueOf(v)
	if dv.Kind() == reflect.Pointer && vv.Type() == dv.Type().Elem() {
		p := reflect.New(vv.Type())
		p.Elem().Set(vv)
		dv.Set(p)
		return nil
	}
	if !vv.Type().AssignableTo(dv.Type()) {
		return fmt.Errorf("cannot assign %T to %s", v, dv.Type())
	}
	dv.Set(vv)
	return nil
}
