package arena

import (
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
	"github.com/vkngwrapper/wordarena/memutils"
)

// AddStatistics sums the arena's allocation statistics into stats. It does nothing if the
// manager is not initialized.
func (m *Manager) AddStatistics(stats *memutils.Statistics) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	if !m.ready {
		return
	}
	m.blocks.AddStatistics(stats)
}

// AddDetailedStatistics sums the arena's allocation statistics into stats. It does nothing if
// the manager is not initialized.
func (m *Manager) AddDetailedStatistics(stats *memutils.DetailedStatistics) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	if !m.ready {
		return
	}
	m.blocks.AddDetailedStatistics(stats)
}

// BuildStatsString returns a json document describing the manager and its arena. When
// detailed is true, every block in the arena is listed as well.
func (m *Manager) BuildStatsString(detailed bool) string {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	writer := jwriter.NewWriter()
	obj := writer.Object()

	obj.Name("WordSize").Int(m.wordSize)
	obj.Name("Strategy").String(strategyName(m.strategy))
	obj.Name("Ready").Bool(m.ready)

	if m.ready {
		var stats memutils.DetailedStatistics
		stats.Clear()
		m.blocks.AddDetailedStatistics(&stats)

		totalObj := obj.Name("Total").Object()
		printStatistics(&totalObj, &stats)
		totalObj.End()

		arenaObj := obj.Name("Arena").Object()
		m.blocks.BlockJsonData(&arenaObj)
		if detailed {
			regions := arenaObj.Name("Regions").Array()
			m.blocks.RegionsJsonData(&regions)
			regions.End()
		}
		arenaObj.End()
	}

	obj.End()
	return string(writer.Bytes())
}

func printStatistics(json *jwriter.ObjectState, stats *memutils.DetailedStatistics) {
	json.Name("ArenaCount").Int(stats.ArenaCount)
	json.Name("AllocationCount").Int(stats.AllocationCount)
	json.Name("HoleCount").Int(stats.HoleCount)
	json.Name("ArenaWords").Int(stats.ArenaWords)
	json.Name("AllocationWords").Int(stats.AllocationWords)

	if stats.AllocationCount > 0 {
		json.Name("AllocationSizeMin").Int(stats.AllocationSizeMin)
		json.Name("AllocationSizeMax").Int(stats.AllocationSizeMax)
	}
	if stats.HoleCount > 0 {
		json.Name("HoleSizeMin").Int(stats.HoleSizeMin)
		json.Name("HoleSizeMax").Int(stats.HoleSizeMax)
	}
}
