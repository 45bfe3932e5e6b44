// Package sync reconciles the local entry collection with a remote NDJSON
// export using last-writer-wins at whole-entry granularity, and drives the
// pull-merge-overwrite protocol against a remote file store.
//
// The export wire shape is the same NDJSON the manual export/import commands
// use, so a backup file and the sync file are interchangeable.
package sync

import (
	"encoding/json"
	"strings"

	"github.com/keirinjingle/mofu/internal/types"
)

// RemoteFileName is the fixed per-user sync file name inside the remote
// application-data area.
const RemoteFileName = "mofu_entries.ndjson"

// MergeResult is the outcome of merging a remote export into a local
// collection.
type MergeResult struct {
	Entries  []types.Entry
	Changed  bool
	Added    int
	Replaced int
	Skipped  int // malformed or id-less lines
}

// Merge applies a remote NDJSON export to the local collection. Unknown ids
// are appended; known ids are replaced only when the remote timestamp is
// strictly greater (string comparison over RFC 3339 timestamps). Malformed
// lines are skipped individually. Local entries are never deleted.
func Merge(local []types.Entry, remoteNDJSON string) MergeResult {
	res := MergeResult{Entries: append([]types.Entry{}, local...)}

	index := make(map[string]int, len(res.Entries))
	for i, e := range res.Entries {
		index[e.ID] = i
	}

	for _, line := range strings.Split(remoteNDJSON, "\n") {
		line = strings.TrimRight(line, "\r")
		if line == "" {
			continue
		}
		var remote types.Entry
		if err := json.Unmarshal([]byte(line), &remote); err != nil || remote.ID == "" {
			res.Skipped++
			continue
		}

		i, ok := index[remote.ID]
		if !ok {
			index[remote.ID] = len(res.Entries)
			res.Entries = append(res.Entries, remote)
			res.Added++
			res.Changed = true
			continue
		}
		if remote.At > res.Entries[i].At {
			res.Entries[i] = remote
			res.Replaced++
			res.Changed = true
		}
	}
	return res
}

// Export serializes entries as NDJSON, one object per line, in the order
// given (store insertion order, not display order).
func Export(entries []types.Entry) (string, error) {
	var b strings.Builder
	for i := range entries {
		data, err := json.Marshal(&entries[i])
		if err != nil {
			return "", err
		}
		if i > 0 {
			b.WriteByte('\n')
		}
		b.Write(data)
	}
	return b.String(), nil
}
