package probes

import "sort"

// ExecMap holds accumulated records keyed by ExecClassData.Key.
// Values are never modified in place.
type ExecMap map[int64]ExecClassData

// Group reduces records sharing a key by successive merge, keeping the first
// record's metadata. Keys are returned in first-seen order.
func Group(records []ExecClassData) (ExecMap, []int64) {
	grouped := make(ExecMap, len(records))
	var order []int64
	for _, r := range records {
		k := r.Key()
		if prev, ok := grouped[k]; ok {
			grouped[k] = prev.WithProbes(prev.Probes.Merge(r.Probes))
			continue
		}
		grouped[k] = r
		order = append(order, k)
	}
	return grouped, order
}

// MergeAll folds records into existing and returns the result as a new map.
// existing is never modified. With no records the same map is returned.
func MergeAll(existing ExecMap, records []ExecClassData) ExecMap {
	if len(records) == 0 {
		return existing
	}
	incoming, _ := Group(records)

	out := make(ExecMap, len(existing)+len(incoming))
	for k, v := range existing {
		out[k] = v
	}
	for k, v := range incoming {
		if prev, ok := out[k]; ok {
			out[k] = prev.WithProbes(prev.Probes.Merge(v.Probes))
			continue
		}
		out[k] = v
	}
	return out
}

// IntersectAll keeps the coverage present in both existing and records.
// records are merged by key first; keys missing on either side are dropped, as
// are keys whose intersection has no true bit.
func IntersectAll(existing ExecMap, records []ExecClassData) ExecMap {
	if len(existing) == 0 || len(records) == 0 {
		return ExecMap{}
	}
	other, _ := Group(records)

	out := make(ExecMap)
	for k, v := range existing {
		o, ok := other[k]
		if !ok {
			continue
		}
		p := v.Probes.Intersect(o.Probes)
		if !p.Any() {
			continue
		}
		out[k] = v.WithProbes(p)
	}
	return out
}

// CommonCoverage returns the coverage present in every one of the given runs.
func CommonCoverage(runs ...[]ExecClassData) ExecMap {
	if len(runs) == 0 {
		return ExecMap{}
	}
	acc := MergeAll(ExecMap{}, runs[0])
	for _, run := range runs[1:] {
		acc = IntersectAll(acc, run)
		if len(acc) == 0 {
			break
		}
	}
	return acc
}

// Records returns the map values ordered by class name then key.
func (m ExecMap) Records() []ExecClassData {
	out := make([]ExecClassData, 0, len(m))
	for _, v := range m {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ClassName != out[j].ClassName {
			return out[i].ClassName < out[j].ClassName
		}
		return out[i].Key() < out[j].Key()
	})
	return out
}
