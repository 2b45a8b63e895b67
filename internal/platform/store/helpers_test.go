package store

import (
	"context"
	"errors"
	"testing"

	perr "biokb/internal/platform/errors"
)

// fakeRows feeds canned scan values through the Rows contract
type fakeRows struct {
	data [][]any
	pos  int
	err  error
}

func (f *fakeRows) Next() bool { f.pos++; return f.pos <= len(f.data) }
func (f *fakeRows) Scan(dest ...any) error {
	row := f.data[f.pos-1]
	for i, d := range dest {
		switch p := d.(type) {
		case *int64:
			*p = row[i].(int64)
		case *string:
			*p = row[i].(string)
		default:
			return errors.New("unsupported scan target")
		}
	}
	return nil
}
func (f *fakeRows) Err() error        { return f.err }
func (f *fakeRows) Close()            {}
func (f *fakeRows) Columns() []string { return nil }

type fakeQuerier struct{ rows *fakeRows }

func (f fakeQuerier) Exec(context.Context, string, ...any) (CommandTag, error) { return nil, nil }
func (f fakeQuerier) Query(context.Context, string, ...any) (Rows, error)      { return f.rows, nil }
func (f fakeQuerier) QueryRow(context.Context, string, ...any) Row {
	f.rows.Next()
	return &rowFromRows{rows: f.rows}
}

func scanPair(r Row) (struct {
	name string
	id   int64
}, error) {
	var out struct {
		name string
		id   int64
	}
	err := r.Scan(&out.name, &out.id)
	return out, err
}

func TestScalar(t *testing.T) {
	q := fakeQuerier{rows: &fakeRows{data: [][]any{{int64(42)}}}}
	got, err := Scalar[int64](context.Background(), q, "SELECT last_insert_rowid()")
	if err != nil || got != 42 {
		t.Fatalf("Scalar = %d, %v", got, err)
	}
}

func TestOne_SingleRow(t *testing.T) {
	q := fakeQuerier{rows: &fakeRows{data: [][]any{{"entrez_id", int64(3)}}}}
	got, err := One(context.Background(), q, scanPair, "SELECT name, id FROM namespace WHERE name = ?", "entrez_id")
	if err != nil || got.name != "entrez_id" || got.id != 3 {
		t.Fatalf("One = %+v, %v", got, err)
	}
}

func TestOne_MissingRowIsNotFound(t *testing.T) {
	q := fakeQuerier{rows: &fakeRows{}}
	_, err := One(context.Background(), q, scanPair, "SELECT name, id FROM namespace WHERE name = ?", "absent")
	if !errors.Is(err, perr.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestOne_ExtraRowFails(t *testing.T) {
	q := fakeQuerier{rows: &fakeRows{data: [][]any{{"a", int64(1)}, {"b", int64(2)}}}}
	if _, err := One(context.Background(), q, scanPair, "SELECT name, id FROM namespace"); err == nil {
		t.Fatal("expected error for multi-row result")
	}
}

func TestMany(t *testing.T) {
	q := fakeQuerier{rows: &fakeRows{data: [][]any{{"go_id", int64(1)}, {"symbol", int64(2)}}}}
	got, err := Many(context.Background(), q, scanPair, "SELECT name, id FROM namespace")
	if err != nil || len(got) != 2 || got[1].id != 2 {
		t.Fatalf("Many = %+v, %v", got, err)
	}
}
