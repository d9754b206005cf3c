package scheduler

import (
	"encoding/binary"

	"github.com/noah-isme/intelliplan-api/internal/models"
)

// Options tunes a single Generate call.
type Options struct {
	// Memoize remembers subproblems with no conflict-free completion so that later
	// prefixes reaching the same subproblem skip it. A subproblem is the course index plus
	// the occupied cells that the remaining courses could still collide with.
	Memoize bool
}

// Stats describes the work performed by a Generate call.
type Stats struct {
	NodesVisited int `json:"nodes_visited"`
	MemoHits     int `json:"memo_hits"`
	MemoEntries  int `json:"memo_entries"`
}

// Generate enumerates every conflict-free assignment of one slot per requested course.
// Results follow depth-first order: request order across courses, catalog order within a
// course. Preferred slot numbers narrow a course's candidates only when at least one of
// its slots matches; otherwise every slot stays a candidate.
func Generate(catalog models.Catalog, courseCodes []string, preferred map[string][]string, opts Options) ([]models.Schedule, Stats, error) {
	for _, code := range courseCodes {
		if _, ok := catalog[code]; !ok {
			return nil, Stats{}, &CourseNotFoundError{Code: code}
		}
	}
	if len(courseCodes) == 0 {
		return []models.Schedule{}, Stats{}, nil
	}

	codes := make([]string, len(courseCodes))
	copy(codes, courseCodes)
	options := make([][]models.Slot, len(codes))
	for i, code := range codes {
		options[i] = SlotOptions(catalog[code], preferred[code])
	}

	s := &search{codes: codes, options: options}
	if opts.Memoize {
		s.indexCells()
		s.dead = make(map[string]struct{})
		s.prune(0, make([]models.Slot, 0, len(codes)), make(cellSet, len(s.reach[0])))
		s.stats.MemoEntries = len(s.dead)
	} else {
		s.backtrack(0, make([]models.Slot, 0, len(codes)))
	}
	if s.results == nil {
		s.results = []models.Schedule{}
	}
	return s.results, s.stats, nil
}

// SlotOptions narrows slots to the preferred slot numbers, falling back to all slots
// when the preference matches nothing.
func SlotOptions(slots []models.Slot, preferred []string) []models.Slot {
	if len(preferred) == 0 {
		return slots
	}
	wanted := make(map[string]struct{}, len(preferred))
	for _, number := range preferred {
		wanted[number] = struct{}{}
	}
	filtered := make([]models.Slot, 0, len(slots))
	for _, slot := range slots {
		if _, ok := wanted[slot.SlotNumber]; ok {
			filtered = append(filtered, slot)
		}
	}
	if len(filtered) == 0 {
		return slots
	}
	return filtered
}

type search struct {
	codes   []string
	options [][]models.Slot
	results []models.Schedule
	stats   Stats

	// memoized search only
	masks [][]cellSet
	reach []cellSet
	dead  map[string]struct{}
}

func (s *search) backtrack(index int, chosen []models.Slot) {
	s.stats.NodesVisited++
	if index == len(s.codes) {
		s.results = append(s.results, s.schedule(chosen))
		return
	}
	for _, candidate := range s.options[index] {
		if conflictsWithAny(candidate, chosen) {
			continue
		}
		s.backtrack(index+1, append(chosen, candidate))
	}
}

// indexCells numbers every cell the candidates use and records, per course index, the
// cells that course or any later one can occupy.
func (s *search) indexCells() {
	bits := make(map[models.Cell]int)
	for _, slots := range s.options {
		for _, slot := range slots {
			for _, block := range slot.TimeBlocks {
				if _, ok := bits[block.Cell()]; !ok {
					bits[block.Cell()] = len(bits)
				}
			}
		}
	}
	words := (len(bits) + 63) / 64

	s.masks = make([][]cellSet, len(s.options))
	for i, slots := range s.options {
		s.masks[i] = make([]cellSet, len(slots))
		for j, slot := range slots {
			mask := make(cellSet, words)
			for _, block := range slot.TimeBlocks {
				mask.add(bits[block.Cell()])
			}
			s.masks[i][j] = mask
		}
	}

	s.reach = make([]cellSet, len(s.options)+1)
	s.reach[len(s.options)] = make(cellSet, words)
	for i := len(s.options) - 1; i >= 0; i-- {
		reach := make(cellSet, words)
		copy(reach, s.reach[i+1])
		for _, mask := range s.masks[i] {
			reach.union(mask)
		}
		s.reach[i] = reach
	}
}

// prune walks the same tree as backtrack, in the same order, and reports whether the
// subtree produced any schedule. Subtrees without one are remembered in s.dead.
func (s *search) prune(index int, chosen []models.Slot, occupied cellSet) bool {
	if index == len(s.codes) {
		s.stats.NodesVisited++
		s.results = append(s.results, s.schedule(chosen))
		return true
	}
	key := occupied.key(index, s.reach[index])
	if _, ok := s.dead[key]; ok {
		s.stats.MemoHits++
		return false
	}
	s.stats.NodesVisited++

	found := false
	next := make(cellSet, len(occupied))
	for i, candidate := range s.options[index] {
		mask := s.masks[index][i]
		if mask.intersects(occupied) {
			continue
		}
		copy(next, occupied)
		next.union(mask)
		if s.prune(index+1, append(chosen, candidate), next) {
			found = true
		}
	}
	if !found {
		s.dead[key] = struct{}{}
	}
	return found
}

func (s *search) schedule(chosen []models.Slot) models.Schedule {
	slots := make([]models.Slot, len(chosen))
	copy(slots, chosen)
	codes := make([]string, len(s.codes))
	copy(codes, s.codes)
	credits := 0
	for _, slot := range slots {
		credits += slot.Credits
	}
	return models.Schedule{Slots: slots, CourseCodes: codes, TotalCredits: credits}
}

// cellSet is a bitset over the cells numbered by indexCells.
type cellSet []uint64

func (c cellSet) add(bit int) {
	c[bit/64] |= 1 << (bit % 64)
}

func (c cellSet) union(other cellSet) {
	for i := range c {
		c[i] |= other[i]
	}
}

func (c cellSet) intersects(other cellSet) bool {
	for i := range c {
		if c[i]&other[i] != 0 {
			return true
		}
	}
	return false
}

// key encodes index and the part of c inside within.
func (c cellSet) key(index int, within cellSet) string {
	buf := make([]byte, 0, 4+8*len(c))
	buf = binary.LittleEndian.AppendUint32(buf, uint32(index))
	for i, word := range c {
		buf = binary.LittleEndian.AppendUint64(buf, word&within[i])
	}
	return string(buf)
}
