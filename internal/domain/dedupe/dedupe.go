// Package dedupe collapses codeshare listings of the same physical flight.
//
// Feeds list one physical flight once per marketing carrier. Two records are
// treated as the same flight when any of these holds:
//   - one names the other as its operating flight (OperatedBy) at the same
//     scheduled minute
//   - they share the flight number and scheduled minute (a repeated row)
//   - they share direction, scheduled minute and a non-empty route, their
//     registrations do not conflict, and at least one is a declared
//     marketing codeshare
//
// Matching is a heuristic: without an operating-carrier hint two airlines
// landing from the same origin in the same minute stay separate.
package dedupe

import (
	"strings"
	"time"

	"github.com/okian/curbcast/internal/domain/model"
)

// Codeshares returns raw with codeshare duplicates removed. For each group of
// records describing one physical flight it keeps the first operating-carrier
// record, or the first-seen record when no record claims to operate. Survivor
// order matches input order. The function is pure and idempotent.
func Codeshares(raw []model.RawFlight) []model.RawFlight {
	if len(raw) < 2 {
		return append([]model.RawFlight(nil), raw...)
	}

	groups := newUnionFind(len(raw))
	byNumber := make(map[string][]int, len(raw))
	for i, r := range raw {
		if k := flightNumber(r.Number); k != "" {
			byNumber[k] = append(byNumber[k], i)
		}
	}

	for i := range raw {
		if op := flightNumber(raw[i].OperatedBy); op != "" {
			for _, j := range byNumber[op] {
				if j != i && raw[j].Direction == raw[i].Direction && sameMinute(raw[i].Scheduled, raw[j].Scheduled) {
					groups.union(i, j)
				}
			}
		}
		for j := i + 1; j < len(raw); j++ {
			if sameFlight(raw[i], raw[j]) {
				groups.union(i, j)
			}
		}
	}

	// Pick a representative per group: first operating record, else first seen.
	rep := make(map[int]int, len(raw))
	for i, r := range raw {
		root := groups.find(i)
		cur, ok := rep[root]
		if !ok {
			rep[root] = i
			continue
		}
		if raw[cur].Role != model.RoleOperating && r.Role == model.RoleOperating {
			rep[root] = i
		}
	}

	out := make([]model.RawFlight, 0, len(rep))
	for i, r := range raw {
		if rep[groups.find(i)] == i {
			out = append(out, r)
		}
	}
	return out
}

func sameFlight(a, b model.RawFlight) bool {
	if a.Direction != b.Direction || !sameMinute(a.Scheduled, b.Scheduled) {
		return false
	}
	if na := flightNumber(a.Number); na != "" && na == flightNumber(b.Number) {
		return true
	}
	if a.Route == "" || !strings.EqualFold(a.Route, b.Route) {
		return false
	}
	if a.Registration != "" && b.Registration != "" && !strings.EqualFold(a.Registration, b.Registration) {
		return false
	}
	return a.Role == model.RoleMarketing || b.Role == model.RoleMarketing
}

func sameMinute(a, b time.Time) bool {
	if a.IsZero() || b.IsZero() {
		return false
	}
	return a.Truncate(time.Minute).Equal(b.Truncate(time.Minute))
}

// flightNumber canonicalizes "as 2345", "AS2345" and "AS 02345" to "AS2345".
func flightNumber(s string) string {
	s = strings.ToUpper(strings.Join(strings.Fields(s), ""))
	if len(s) < 3 {
		return s
	}
	// IATA designators are two characters; strip leading zeros from the number.
	prefix, digits := s[:2], strings.TrimLeft(s[2:], "0")
	if digits == "" {
		digits = "0"
	}
	return prefix + digits
}

type unionFind struct {
	parent []int
}

func newUnionFind(n int) *unionFind {
	p := make([]int, n)
	for i := range p {
		p[i] = i
	}
	return &unionFind{parent: p}
}

func (u *unionFind) find(i int) int {
	for u.parent[i] != i {
		u.parent[i] = u.parent[u.parent[i]]
		i = u.parent[i]
	}
	return i
}

// union keeps the smaller index as root so roots are always first-seen.
func (u *unionFind) union(a, b int) {
	ra, rb := u.find(a), u.find(b)
	if ra == rb {
		return
	}
	if rb < ra {
		ra, rb = rb, ra
	}
	u.parent[rb] = ra
}
