// Package scheduler enumerates conflict-free timetables over a course catalog and ranks them.
package scheduler

import "github.com/noah-isme/intelliplan-api/internal/models"

// ConflictPair names two slots sharing a (day, start) cell.
type ConflictPair struct {
	First  models.Slot `json:"first"`
	Second models.Slot `json:"second"`
}

// Conflicts reports whether two slots share any (day, start time) cell.
// Only exact start-time equality counts; overlapping intervals with different
// start times are not treated as conflicts.
func Conflicts(a, b models.Slot) bool {
	if len(a.TimeBlocks) == 0 || len(b.TimeBlocks) == 0 {
		return false
	}
	cells := make(map[models.Cell]struct{}, len(a.TimeBlocks))
	for _, block := range a.TimeBlocks {
		cells[block.Cell()] = struct{}{}
	}
	for _, block := range b.TimeBlocks {
		if _, ok := cells[block.Cell()]; ok {
			return true
		}
	}
	return false
}

// FindConflict returns the first conflicting pair in i < j order.
func FindConflict(slots []models.Slot) (bool, *ConflictPair) {
	for i := 0; i < len(slots); i++ {
		for j := i + 1; j < len(slots); j++ {
			if Conflicts(slots[i], slots[j]) {
				return true, &ConflictPair{First: slots[i], Second: slots[j]}
			}
		}
	}
	return false, nil
}

func conflictsWithAny(candidate models.Slot, chosen []models.Slot) bool {
	for _, slot := range chosen {
		if Conflicts(candidate, slot) {
			return true
		}
	}
	return false
}
