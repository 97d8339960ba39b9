// Package logsync mirrors JSON log objects from an object-storage bucket to
// local files.
//
// It offers two independent operations:
//   - Sync downloads objects created after the newest local sequence file
//     into per-date files named DD-MM-YYYY-S<n>.json
//   - AggregateToday rebuilds a single line-delimited JSON file from every
//     object whose key contains today's UTC YYYY/MM/DD path
//
// The local directory is the only state: the sync position is recovered from
// sequence file names on every run.
//
// Example usage:
//
//	client, err := logsync.New(ctx,
//	    logsync.WithBucket("my-logs"),
//	    logsync.WithPrefix("app/"),
//	    logsync.WithOutputDir("/var/lib/logsync"),
//	)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	result, err := client.Sync(ctx)
//	if err != nil {
//	    return err
//	}
//	fmt.Printf("wrote %d files\n", len(result.Written))
package logsync
