package repokit

import "context"

// MidHook is a reconciliation step run explicitly inside an open transaction
// with the tx-bound Queryer. The bulk-update envelope models its post-load
// rebuilders (region zones, SNP roles, group regions) as a MidHook chain
type MidHook func(ctx context.Context, q Queryer) error

// RunMidHooks runs hooks in order against q, stopping at the first error so
// a failed rebuild aborts the enclosing transaction before commit
func RunMidHooks(ctx context.Context, q Queryer, hooks ...MidHook) error {
	for _, hk := range hooks {
		if hk == nil {
			continue
		}
		if err := hk(ctx, q); err != nil {
			return err
		}
	}
	return nil
}
