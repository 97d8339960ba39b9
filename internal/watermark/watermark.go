// Package watermark derives the incremental sync position from the names of
// previously written sequence files. The file names are the only state:
// "DD-MM-YYYY-S<n>.json", where n restarts at 0 for every date.
package watermark

import (
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/input-output-hk/catalyst-forge-libs/logsync/fs"
	"github.com/input-output-hk/catalyst-forge-libs/logsync/internal/datepath"
	"github.com/input-output-hk/catalyst-forge-libs/logsync/logtypes"
)

var namePattern = regexp.MustCompile(`^(\d{2})-(\d{2})-(\d{4})-S(\d+)\.json$`)

// FileName returns the sequence file name for a compact date and index.
func FileName(date string, seq int) string {
	return fmt.Sprintf("%s-S%d.json", date, seq)
}

// ParseName parses a sequence file name. Names outside the grammar and
// names carrying an impossible calendar date are rejected.
func ParseName(name string, loc *time.Location) (logtypes.Watermark, bool) {
	m := namePattern.FindStringSubmatch(name)
	if m == nil {
		return logtypes.Watermark{}, false
	}

	date, err := datepath.ParseCompactDate(m[1]+"-"+m[2]+"-"+m[3], loc)
	if err != nil {
		return logtypes.Watermark{}, false
	}
	seq, err := strconv.Atoi(m[4])
	if err != nil {
		return logtypes.Watermark{}, false
	}
	return logtypes.Watermark{Date: date, Sequence: seq}, true
}

// Resolve returns the greatest (date, sequence) among names. It reports false
// when no name matched.
func Resolve(names []string, loc *time.Location) (logtypes.Watermark, bool) {
	var (
		best  logtypes.Watermark
		found bool
	)
	for _, name := range names {
		w, ok := ParseName(name, loc)
		if !ok {
			continue
		}
		if !found || w.After(best) {
			best = w
			found = true
		}
	}
	return best, found
}

// ResolveDir resolves the watermark over the regular files in dir.
// A missing directory has no watermark.
func ResolveDir(fsys fs.Filesystem, dir string, loc *time.Location) (logtypes.Watermark, bool, error) {
	exists, err := fsys.Exists(dir)
	if err != nil {
		return logtypes.Watermark{}, false, err
	}
	if !exists {
		return logtypes.Watermark{}, false, nil
	}

	entries, err := fsys.ReadDir(dir)
	if err != nil {
		return logtypes.Watermark{}, false, err
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		names = append(names, entry.Name())
	}

	w, ok := Resolve(names, loc)
	return w, ok, nil
}
