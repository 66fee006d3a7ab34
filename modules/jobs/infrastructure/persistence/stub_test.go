package persistence

import (
	"context"
	"errors"
	"fmt"
	"reflect"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/iota-uz/fieldops/pkg/constants"
)

type stubTx struct {
	queryFunc    func(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	queryRowFunc func(ctx context.Context, sql string, args ...any) pgx.Row
	execFunc     func(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

func (s *stubTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, errors.New("copy not implemented")
}

func (s *stubTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults {
	var results pgx.BatchResults
	return results
}

func (s *stubTx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	if s.execFunc == nil {
		return pgconn.CommandTag{}, errors.New("exec not implemented")
	}
	return s.execFunc(ctx, sql, arguments...)
}

func (s *stubTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if s.queryFunc == nil {
		return nil, errors.New("query not implemented")
	}
	return s.queryFunc(ctx, sql, args...)
}

func (s *stubTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if s.queryRowFunc == nil {
		return stubRow{scan: func(dest ...any) error { return errors.New("query row not implemented") }}
	}
	return s.queryRowFunc(ctx, sql, args...)
}

func withStubTx(tx *stubTx) context.Context {
	return context.WithValue(context.Background(), constants.TxKey, tx)
}

// assign copies src into the pointer dest; a nil src zeroes the target.
func assign(dest, src any) error {
	target := reflect.ValueOf(dest)
	if target.Kind() != reflect.Pointer || target.IsNil() {
		return fmt.Errorf("scan target %T is not a pointer", dest)
	}
	elem := target.Elem()
	if src == nil {
		elem.Set(reflect.Zero(elem.Type()))
		return nil
	}
	value := reflect.ValueOf(src)
	if !value.Type().AssignableTo(elem.Type()) {
		return fmt.Errorf("cannot scan %T into %T", src, dest)
	}
	elem.Set(value)
	return nil
}

type stubRows struct {
	data [][]any
	idx  int
	err  error
}

func (r *stubRows) Next() bool {
	if r.idx >= len(r.data) {
		return false
	}
	r.idx++
	return true
}

func (r *stubRows) Scan(dest ...any) error {
	if r.idx == 0 || r.idx > len(r.data) {
		return errors.New("no current row to scan")
	}
	row := r.data[r.idx-1]
	if len(dest) != len(row) {
		return fmt.Errorf("destination length %d does not match row length %d", len(dest), len(row))
	}
	for i, target := range dest {
		if err := assign(target, row[i]); err != nil {
			return err
		}
	}
	return nil
}

func (r *stubRows) Values() ([]any, error) {
	if r.idx == 0 || r.idx > len(r.data) {
		return nil, errors.New("no current row")
	}
	return r.data[r.idx-1], nil
}

func (r *stubRows) RawValues() [][]byte { return nil }
func (r *stubRows) Err() error          { return r.err }
func (r *stubRows) Close()              {}
func (r *stubRows) CommandTag() pgconn.CommandTag {
	return pgconn.CommandTag{}
}
func (r *stubRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *stubRows) Conn() *pgx.Conn                              { return nil }

type stubRow struct {
	scan func(dest ...any) error
}

func (r stubRow) Scan(dest ...any) error {
	if r.scan == nil {
		return errors.New("scan not implemented")
	}
	return r.scan(dest...)
}

func rowOf(values ...any) stubRow {
	return stubRow{scan: func(dest ...any) error {
		if len(dest) != len(values) {
			return fmt.Errorf("destination length %d does not match row length %d", len(dest), len(values))
		}
		for i := range dest {
			if err := assign(dest[i], values[i]); err != nil {
				return err
			}
		}
		return nil
	}}
}

func errRow(err error) stubRow {
	return stubRow{scan: func(...any) error { return err }}
}
