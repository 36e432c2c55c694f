package memutils

import "math"

// Statistics holds word counts for one or more arenas. All sizes are in words.
type Statistics struct {
	ArenaCount      int
	AllocationCount int
	ArenaWords      int
	AllocationWords int
}

// Clear zeroes every count
func (s *Statistics) Clear() {
	*s = Statistics{}
}

// AddStatistics sums the counts of other into s
func (s *Statistics) AddStatistics(other *Statistics) {
	s.ArenaCount += other.ArenaCount
	s.AllocationCount += other.AllocationCount
	s.ArenaWords += other.ArenaWords
	s.AllocationWords += other.AllocationWords
}

// FreeWords is the number of words that are not part of any allocation
func (s *Statistics) FreeWords() int {
	return s.ArenaWords - s.AllocationWords
}

// DetailedStatistics extends Statistics with hole counts and size extremes.
// Call Clear before accumulating into it so the minimums start at math.MaxInt.
type DetailedStatistics struct {
	Statistics
	HoleCount         int
	AllocationSizeMin int
	AllocationSizeMax int
	HoleSizeMin       int
	HoleSizeMax       int
}

// Clear zeroes every count and resets the size extremes
func (s *DetailedStatistics) Clear() {
	*s = DetailedStatistics{
		AllocationSizeMin: math.MaxInt,
		HoleSizeMin:       math.MaxInt,
	}
}

// AddHole records a single hole of size words
func (s *DetailedStatistics) AddHole(size int) {
	s.HoleCount++
	widen(&s.HoleSizeMin, &s.HoleSizeMax, size, size)
}

// AddAllocation records a single live allocation of size words
func (s *DetailedStatistics) AddAllocation(size int) {
	s.AllocationCount++
	s.AllocationWords += size
	widen(&s.AllocationSizeMin, &s.AllocationSizeMax, size, size)
}

// AddDetailedStatistics merges other into s
func (s *DetailedStatistics) AddDetailedStatistics(other *DetailedStatistics) {
	s.Statistics.AddStatistics(&other.Statistics)
	s.HoleCount += other.HoleCount
	widen(&s.HoleSizeMin, &s.HoleSizeMax, other.HoleSizeMin, other.HoleSizeMax)
	widen(&s.AllocationSizeMin, &s.AllocationSizeMax, other.AllocationSizeMin, other.AllocationSizeMax)
}

func widen(rangeMin, rangeMax *int, lower, upper int) {
	if lower < *rangeMin {
		*rangeMin = lower
	}
	if upper > *rangeMax {
		*rangeMax = upper
	}
}
