package logsync

import (
	"context"
	stderrors "errors"

	"github.com/input-output-hk/catalyst-forge-libs/logsync/errors"
	"github.com/input-output-hk/catalyst-forge-libs/logsync/logtypes"
)

var errClosed = errors.New(errors.CodeInvalidInput, "client is closed")

// Sync downloads objects created after the local watermark into new
// per-date sequence files.
//
// The watermark is the newest DD-MM-YYYY-S<n>.json file in the output
// directory. Objects whose creation date is on or before the watermark date
// are never downloaded. New objects are grouped by date and numbered from 0
// in creation order; each is written trimmed and byte-for-byte to its own
// file, which is never overwritten.
//
// Returns:
//   - *SyncResult: files written, skipped objects and per-object errors
//   - error: only for whole-run failures (listing, output directory)
//
// Example:
//
//	result, err := client.Sync(ctx)
//	if err != nil {
//	    return fmt.Errorf("sync failed: %w", err)
//	}
//	for _, e := range result.Errors {
//	    log.Printf("object %s: %v", e.Key, e.Err)
//	}
func (c *Client) Sync(ctx context.Context) (*logtypes.SyncResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, errClosed
	}

	result, err := c.syncer.Run(ctx)
	if err != nil {
		return result, wrapRunError("sync", err)
	}
	return result, nil
}

// AggregateToday rebuilds the combined file from every JSON object whose key
// contains today's UTC YYYY/MM/DD fragment.
//
// Each object's values are written one compact JSON value per line, in
// object creation order. When no object matches, the existing combined file
// is left untouched and the result reports Written == false.
//
// Returns:
//   - *AggregateResult: entry counts, skipped objects and per-object errors
//   - error: only for whole-run failures (listing, opening or closing the file)
func (c *Client) AggregateToday(ctx context.Context) (*logtypes.AggregateResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, errClosed
	}

	result, err := c.aggregator.Run(ctx)
	if err != nil {
		return result, wrapRunError("aggregate", err)
	}
	return result, nil
}

func wrapRunError(op string, err error) error {
	var e *errors.Error
	if stderrors.As(err, &e) {
		return err
	}
	return errors.NewError(op, err)
}
