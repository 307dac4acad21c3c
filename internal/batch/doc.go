// Package batch fans one operation out over many targets concurrently.
//
// Every target gets its own goroutine and is always attempted, whatever
// happens to the others. Outcomes are reported from a single goroutine as
// they complete, so output lines never interleave:
//   - success: the target, then any payload lines, on Reporter.Out
//   - failure: an error log line with the target, and "target: error" on
//     Reporter.Err when set
//
// Run returns ErrBatchFailed when any target failed, together with one
// Outcome per target:
//
//	_, err := batch.Run(ctx, rep, ids, func(ctx context.Context, id string) (struct{}, error) {
//	    return struct{}{}, eng.Start(ctx, id)
//	}, nil)
//	if errors.Is(err, batch.ErrBatchFailed) {
//	    ...
//	}
package batch
