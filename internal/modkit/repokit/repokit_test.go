package repokit

import (
	"context"
	"errors"
	"testing"

	"biokb/internal/platform/store"
	"biokb/internal/platform/testkit"
)

// fakeTx satisfies TxRunner without touching a real database
type fakeTx struct {
	calls int
}

func (f *fakeTx) Exec(context.Context, string, ...any) (store.CommandTag, error) { return nil, nil }
func (f *fakeTx) Query(context.Context, string, ...any) (store.Rows, error)      { return nil, nil }
func (f *fakeTx) QueryRow(context.Context, string, ...any) store.Row             { return nil }
func (f *fakeTx) Tx(ctx context.Context, fn func(q store.RowQuerier) error) error {
	f.calls++
	return fn(f)
}

func TestWithTx_DelegatesToRunner(t *testing.T) {
	tx := &fakeTx{}
	ran := false
	err := WithTx(context.Background(), tx, func(q Queryer) error {
		ran = true
		if q == nil {
			t.Fatal("expected a tx-bound queryer")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("WithTx: %v", err)
	}
	if !ran || tx.calls != 1 {
		t.Fatalf("expected exactly one transaction, got calls=%d ran=%v", tx.calls, ran)
	}
}

func TestRunMidHooks_RunsInOrderAndStopsOnError(t *testing.T) {
	var order []int
	boom := errors.New("boom")

	err := RunMidHooks(context.Background(), &fakeTx{},
		func(context.Context, Queryer) error { order = append(order, 1); return nil },
		nil,
		func(context.Context, Queryer) error { order = append(order, 2); return boom },
		func(context.Context, Queryer) error { order = append(order, 3); return nil },
	)
	if !errors.Is(err, boom) {
		t.Fatalf("got err %v, want %v", err, boom)
	}
	if len(order) != 2 || order[0] != 1 || order[1] != 2 {
		t.Fatalf("hooks ran out of order or past the failure: %v", order)
	}
}

type fakeGuarder struct{ err error }

func (g fakeGuarder) Guard(context.Context) error { return g.err }

func TestMustGuard_PassesHealthyStore(t *testing.T) {
	testkit.MustNotPanic(t, func() {
		MustGuard(context.Background(), fakeGuarder{})
	})
}

func TestMustGuard_PanicsOnDeadStore(t *testing.T) {
	testkit.MustPanic(t, func() {
		MustGuard(context.Background(), fakeGuarder{err: errors.New("unreachable")})
	})
}

func TestMustGuard_PanicsOnNilStore(t *testing.T) {
	testkit.MustPanic(t, func() {
		MustGuard(context.Background(), nil)
	})
}
