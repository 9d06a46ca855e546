package metrics

import "sort"

// StatusBucket is the failure count for one protocol and failure class.
type StatusBucket struct {
	Protocol string `json:"protocol" yaml:"protocol"`
	Code     string `json:"code" yaml:"code"`
	Count    int    `json:"count" yaml:"count"`
}

// FlattenStatusBuckets converts a nested protocol->class map into sorted rows.
// Rows are sorted by descending count, then by protocol/code for stability.
func FlattenStatusBuckets(buckets map[string]map[string]int) []StatusBucket {
	if len(buckets) == 0 {
		return nil
	}
	rows := make([]StatusBucket, 0)
	for protocol, codes := range buckets {
		for code, count := range codes {
			rows = append(rows, StatusBucket{Protocol: protocol, Code: code, Count: count})
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Count == rows[j].Count {
			if rows[i].Protocol == rows[j].Protocol {
				return rows[i].Code < rows[j].Code
			}
			return rows[i].Protocol < rows[j].Protocol
		}
		return rows[i].Count > rows[j].Count
	})
	return rows
}
