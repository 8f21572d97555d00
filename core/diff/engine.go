package diff

import "sort"

// Compare diffs a local item set against a remote item set.
// It indexes both sides by key, walks the union of keys, and returns a result
// per key plus aggregate counts. Results are sorted by key for deterministic
// output. Compare never mutates either side.
func Compare(adapter Adapter, local []LocalItem, remote []RemoteItem) ([]Result, Summary) {
	localIndex := make(map[string]LocalItem, len(local))
	for _, item := range local {
		localIndex[adapter.LocalKey(item)] = item
	}
	remoteIndex := make(map[string]RemoteItem, len(remote))
	for _, item := range remote {
		remoteIndex[adapter.RemoteKey(item)] = item
	}

	union := make(map[string]struct{}, len(localIndex)+len(remoteIndex))
	for key := range localIndex {
		union[key] = struct{}{}
	}
	for key := range remoteIndex {
		union[key] = struct{}{}
	}

	results := make([]Result, 0, len(union))
	var summary Summary
	summary.Total = len(union)

	for key := range union {
		localItem, localPresent := localIndex[key]
		remoteItem, remotePresent := remoteIndex[key]

		result := Result{
			ID:            key,
			LocalPresent:  localPresent,
			RemotePresent: remotePresent,
			Mismatch:      []string{},
		}

		var localArg LocalItem
		var remoteArg RemoteItem
		if localPresent {
			localArg = localItem
		}
		if remotePresent {
			remoteArg = remoteItem
		}
		result.Name = adapter.ResolveName(localArg, remoteArg)

		switch {
		case localPresent && remotePresent:
			result.Mismatch = adapter.CompareFields(localItem, remoteItem)
			if len(result.Mismatch) > 0 {
				summary.Mismatches++
			}
		case remotePresent:
			summary.MissingLocal++
		default:
			summary.MissingRemote++
		}

		results = append(results, result)
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].ID < results[j].ID
	})

	return results, summary
}
