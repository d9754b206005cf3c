package models

import (
	"strconv"
	"strings"
)

// Weekday is one of the seven canonical day names used in timings.
type Weekday string

const (
	Monday    Weekday = "Monday"
	Tuesday   Weekday = "Tuesday"
	Wednesday Weekday = "Wednesday"
	Thursday  Weekday = "Thursday"
	Friday    Weekday = "Friday"
	Saturday  Weekday = "Saturday"
	Sunday    Weekday = "Sunday"
)

// Weekdays lists the canonical days in calendar order.
var Weekdays = []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

// Valid reports whether d is a canonical day name.
func (d Weekday) Valid() bool {
	return d.Index() > 0
}

// Index returns 1 for Monday through 7 for Sunday, or 0 for unknown names.
func (d Weekday) Index() int {
	for i, day := range Weekdays {
		if day == d {
			return i + 1
		}
	}
	return 0
}

// TimeBlock is a single weekly meeting of a slot. Start and End use zero-padded "HH:MM".
type TimeBlock struct {
	Day   Weekday `json:"day"`
	Start string  `json:"start_time"`
	End   string  `json:"end_time"`
}

// StartHour returns the hour component of Start.
func (b TimeBlock) StartHour() int {
	return ClockHour(b.Start)
}

// Cell is the (day, start) pair used for conflict detection.
func (b TimeBlock) Cell() Cell {
	return Cell{Day: b.Day, Start: b.Start}
}

// Cell identifies a weekly (day, start time) position.
type Cell struct {
	Day   Weekday
	Start string
}

// String renders the cell as "Monday@08:00".
func (c Cell) String() string {
	return string(c.Day) + "@" + c.Start
}

// Slot is one offered section of a course.
type Slot struct {
	CourseCode  string      `json:"course_code"`
	CourseName  string      `json:"course_name"`
	FacultyName string      `json:"faculty_name"`
	SlotNumber  string      `json:"slot_number"`
	Credits     int         `json:"credits"`
	TimeBlocks  []TimeBlock `json:"time_blocks"`
}

// SlotKey identifies a slot within a catalog.
type SlotKey struct {
	CourseCode string
	SlotNumber string
}

// Key returns the slot identity.
func (s Slot) Key() SlotKey {
	return SlotKey{CourseCode: s.CourseCode, SlotNumber: s.SlotNumber}
}

// String renders the key as "CODE-SLOT".
func (k SlotKey) String() string {
	return k.CourseCode + "-" + k.SlotNumber
}

// Catalog maps a course code to its offered slots.
type Catalog map[string][]Slot

// Codes returns the catalog course codes in ascending order.
func (c Catalog) Codes() []string {
	codes := make([]string, 0, len(c))
	for code := range c {
		codes = append(codes, code)
	}
	sortStrings(codes)
	return codes
}

// SlotCount returns the total number of slots across all courses.
func (c Catalog) SlotCount() int {
	total := 0
	for _, slots := range c {
		total += len(slots)
	}
	return total
}

// Schedule is one complete, conflict-free selection of a slot per requested course.
type Schedule struct {
	Slots        []Slot   `json:"slots"`
	CourseCodes  []string `json:"course_codes"`
	TotalCredits int      `json:"total_credits"`
}

// Blocks returns every time block of every slot in the schedule.
func (s Schedule) Blocks() []TimeBlock {
	var blocks []TimeBlock
	for _, slot := range s.Slots {
		blocks = append(blocks, slot.TimeBlocks...)
	}
	return blocks
}

// StartTimesByDay groups the sorted distinct start times of the schedule per day.
func (s Schedule) StartTimesByDay() map[Weekday][]string {
	seen := make(map[Cell]bool)
	result := make(map[Weekday][]string)
	for _, block := range s.Blocks() {
		cell := block.Cell()
		if seen[cell] {
			continue
		}
		seen[cell] = true
		result[block.Day] = append(result[block.Day], block.Start)
	}
	for day := range result {
		sortStrings(result[day])
	}
	return result
}

// ClockHour returns the hour component of an "HH:MM" value, or 0 when malformed.
func ClockHour(value string) int {
	hour, _, _ := strings.Cut(value, ":")
	n, err := strconv.Atoi(hour)
	if err != nil {
		return 0
	}
	return n
}
