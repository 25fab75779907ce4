package autoarima

import (
	"math"

	"github.com/sartorproj/pricearima/arima"
)

// Candidate is one point of the search space. The differencing orders are
// fixed for a whole search and are not part of it.
type Candidate struct {
	P, Q      int
	SP, SQ    int
	Intercept bool
}

func (c Candidate) order(d, sd, m int) arima.Order {
	if m <= 1 {
		return arima.Order{P: c.P, D: d, Q: c.Q}
	}
	return arima.Order{P: c.P, D: d, Q: c.Q, SP: c.SP, SD: sd, SQ: c.SQ, M: m}
}

func (c Candidate) complexity() int {
	return c.P + c.Q + c.SP + c.SQ
}

// scored is a successfully fitted candidate and its criterion value.
type scored struct {
	cand  Candidate
	model *arima.Model
	score float64
}

// better reports whether a ranks strictly ahead of b. The order is total:
// criterion value, then p+q+P+Q, then p, then P, then no intercept before
// intercept, then q. NaN scores rank last.
func better(a, b *scored) bool {
	if b == nil {
		return true
	}
	an, bn := math.IsNaN(a.score), math.IsNaN(b.score)
	switch {
	case an && !bn:
		return false
	case bn && !an:
		return true
	case !an && a.score != b.score:
		return a.score < b.score
	}
	if a.cand.complexity() != b.cand.complexity() {
		return a.cand.complexity() < b.cand.complexity()
	}
	if a.cand.P != b.cand.P {
		return a.cand.P < b.cand.P
	}
	if a.cand.SP != b.cand.SP {
		return a.cand.SP < b.cand.SP
	}
	if a.cand.Intercept != b.cand.Intercept {
		return !a.cand.Intercept
	}
	return a.cand.Q < b.cand.Q
}

// space bounds the candidates of one search.
type space struct {
	maxP, maxQ   int
	maxSP, maxSQ int
	seasonal     bool
	intercept    bool // whether d+D allows an intercept
}

func (s space) contains(c Candidate) bool {
	if c.P < 0 || c.Q < 0 || c.P > s.maxP || c.Q > s.maxQ {
		return false
	}
	if c.Intercept && !s.intercept {
		return false
	}
	if !s.seasonal {
		return c.SP == 0 && c.SQ == 0
	}
	return c.SP >= 0 && c.SQ >= 0 && c.SP <= s.maxSP && c.SQ <= s.maxSQ
}

// seeds returns the starting models of a stepwise search: (2,2), (0,0),
// (1,0) and (0,1) with an intercept when allowed, and (0,0) without. The
// seasonal parts are (1,1), (0,0), (1,0) and (0,1). Orders are clipped to
// the bounds and duplicates dropped.
func (s space) seeds() []Candidate {
	base := [][4]int{{2, 2, 1, 1}, {0, 0, 0, 0}, {1, 0, 1, 0}, {0, 1, 0, 1}}
	out := make([]Candidate, 0, len(base)+1)
	seen := make(map[Candidate]bool)
	add := func(c Candidate) {
		if !s.seasonal {
			c.SP, c.SQ = 0, 0
		}
		c.P, c.Q = min(c.P, s.maxP), min(c.Q, s.maxQ)
		c.SP, c.SQ = min(c.SP, s.maxSP), min(c.SQ, s.maxSQ)
		if seen[c] || !s.contains(c) {
			return
		}
		seen[c] = true
		out = append(out, c)
	}
	for _, b := range base {
		add(Candidate{P: b[0], Q: b[1], SP: b[2], SQ: b[3], Intercept: s.intercept})
	}
	add(Candidate{})
	return out
}

// neighbors returns the in-bounds candidates one step away from c.
func (s space) neighbors(c Candidate) []Candidate {
	moves := []Candidate{
		{P: c.P - 1, Q: c.Q},
		{P: c.P + 1, Q: c.Q},
		{P: c.P, Q: c.Q - 1},
		{P: c.P, Q: c.Q + 1},
		{P: c.P - 1, Q: c.Q - 1},
		{P: c.P + 1, Q: c.Q + 1},
		{P: c.P - 1, Q: c.Q + 1},
		{P: c.P + 1, Q: c.Q - 1},
	}
	for i := range moves {
		moves[i].SP, moves[i].SQ, moves[i].Intercept = c.SP, c.SQ, c.Intercept
	}
	if s.seasonal {
		for _, delta := range [][2]int{{-1, 0}, {1, 0}, {0, -1}, {0, 1}} {
			moves = append(moves, Candidate{
				P: c.P, Q: c.Q,
				SP: c.SP + delta[0], SQ: c.SQ + delta[1],
				Intercept: c.Intercept,
			})
		}
	}
	toggled := c
	toggled.Intercept = !c.Intercept
	moves = append(moves, toggled)

	out := moves[:0]
	for _, m := range moves {
		if s.contains(m) {
			out = append(out, m)
		}
	}
	return out
}

// grid returns every candidate in the space in lexicographic order.
func (s space) grid() []Candidate {
	maxSP, maxSQ := 0, 0
	if s.seasonal {
		maxSP, maxSQ = s.maxSP, s.maxSQ
	}
	intercepts := []bool{false}
	if s.intercept {
		intercepts = append(intercepts, true)
	}

	var out []Candidate
	for p := 0; p <= s.maxP; p++ {
		for q := 0; q <= s.maxQ; q++ {
			for sp := 0; sp <= maxSP; sp++ {
				for sq := 0; sq <= maxSQ; sq++ {
					for _, ic := range intercepts {
						out = append(out, Candidate{P: p, Q: q, SP: sp, SQ: sq, Intercept: ic})
					}
				}
			}
		}
	}
	return out
}
