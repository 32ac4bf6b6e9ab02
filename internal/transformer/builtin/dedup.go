package builtin

import (
	"strconv"
	"strings"

	"github.com/zeebo/xxh3"

	"salesetl/internal/bitmap"
	"salesetl/pkg/records"
)

// DeDup collapses records sharing a business key and keeps one winner per
// key according to Policy:
//
//   - "keep-first"   : earliest occurrence in input order (default)
//   - "keep-last"    : latest occurrence
//   - "most-complete": most non-null fields; ties keep the earliest
//
// Keys are hashed with xxh3; records whose hashes collide are still compared
// field by field, so a collision never merges distinct keys. Winners are
// emitted in the input order of the winning record, which makes the result
// deterministic for a given input order.
//
// Records lacking one of the key fields entirely are passed through after the
// winners. A nil key value is a regular key value.
type DeDup struct {
	// Keys are the field names that form the business key, e.g. ["OrderId"].
	Keys []string

	// Policy selects the winner among duplicates.
	Policy string

	// OnDrop, when set, is called for every record that loses to another
	// record with the same key.
	OnDrop func(records.Record)
}

type slot struct {
	key   string
	index int
	score int
}

// Apply returns the winning record for each key.
func (d DeDup) Apply(in []records.Record) []records.Record {
	if len(in) == 0 || len(d.Keys) == 0 {
		return in
	}
	policy := strings.ToLower(strings.TrimSpace(d.Policy))

	var (
		buckets = make(map[uint64][]int, len(in)) // hash -> indexes into slots
		slots   = make([]slot, 0, len(in))
		passing []int
		buf     []byte
	)
	for i, r := range in {
		var ok bool
		buf, ok = d.appendKey(buf[:0], r)
		if !ok {
			passing = append(passing, i)
			continue
		}
		h := xxh3.Hash(buf)

		found := -1
		for _, si := range buckets[h] {
			if slots[si].key == string(buf) {
				found = si
				break
			}
		}
		if found < 0 {
			s := slot{key: string(buf), index: i}
			if policy == "most-complete" {
				s.score = completeness(r)
			}
			buckets[h] = append(buckets[h], len(slots))
			slots = append(slots, s)
			continue
		}

		cur := &slots[found]
		switch policy {
		case "keep-last":
			d.drop(in[cur.index])
			cur.index = i
		case "most-complete":
			if sc := completeness(r); sc > cur.score {
				d.drop(in[cur.index])
				cur.index, cur.score = i, sc
			} else {
				d.drop(r)
			}
		default: // keep-first
			d.drop(r)
		}
	}

	win := bitmap.New(len(in))
	for _, s := range slots {
		win.Set(s.index)
	}
	out := make([]records.Record, 0, len(slots)+len(passing))
	for i, r := range in {
		if win.Has(i) {
			out = append(out, r)
		}
	}
	for _, i := range passing {
		out = append(out, in[i])
	}
	return out
}

func (d DeDup) drop(r records.Record) {
	if d.OnDrop != nil {
		d.OnDrop(r)
	}
}

// appendKey encodes the key fields of r with a type tag per value so that
// int64(1) and "1" stay distinct. It reports false when a key field is absent.
func (d DeDup) appendKey(b []byte, r records.Record) ([]byte, bool) {
	for _, k := range d.Keys {
		v, ok := r[k]
		if !ok {
			return b, false
		}
		switch t := v.(type) {
		case nil:
			b = append(b, 'n')
		case string:
			b = append(b, 's')
			b = append(b, t...)
		case int64:
			b = append(b, 'i')
			b = strconv.AppendInt(b, t, 10)
		case int:
			b = append(b, 'i')
			b = strconv.AppendInt(b, int64(t), 10)
		case float64:
			b = append(b, 'f')
			b = strconv.AppendFloat(b, t, 'g', -1, 64)
		default:
			b = append(b, 'x')
			b = append(b, asString(t)...)
		}
		b = append(b, 0x1f)
	}
	return b, true
}

// completeness counts non-null fields.
func completeness(r records.Record) int {
	n := 0
	for k := range r {
		if !r.IsNull(k) {
			n++
		}
	}
	return n
}
