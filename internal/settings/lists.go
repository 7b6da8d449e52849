package settings

// DashboardEntities returns pinned entities in insertion order.
func (s *Settings) DashboardEntities() []DashboardEntity {
	var entities []DashboardEntity
	if !s.getJSON(KeyDashboard, &entities) {
		return nil
	}
	return entities
}

// IsInDashboard reports whether entityID is pinned.
func (s *Settings) IsInDashboard(entityID string) bool {
	for _, e := range s.DashboardEntities() {
		if e.EntityID == entityID {
			return true
		}
	}
	return false
}

// AddToDashboard pins entityID. Pinning twice is a no-op.
func (s *Settings) AddToDashboard(entityID string) error {
	entities := s.DashboardEntities()
	for _, e := range entities {
		if e.EntityID == entityID {
			return nil
		}
	}
	return s.setJSON(KeyDashboard, append(entities, DashboardEntity{EntityID: entityID}))
}

// RemoveFromDashboard unpins entityID. Removing an unpinned id is a no-op.
func (s *Settings) RemoveFromDashboard(entityID string) error {
	entities := s.DashboardEntities()
	kept := make([]DashboardEntity, 0, len(entities))
	for _, e := range entities {
		if e.EntityID != entityID {
			kept = append(kept, e)
		}
	}
	if len(kept) == len(entities) {
		return nil
	}
	return s.setJSON(KeyDashboard, kept)
}

// MenuBarSensors returns the status-line sensors in display order. When the
// list was never written, a legacy single sensor seeds it.
func (s *Settings) MenuBarSensors() []string {
	var ids []string
	if _, ok := s.store.Get(KeyMenuBarSensors); !ok {
		if legacy := s.getString(KeyMenuBarEntity); legacy != "" {
			return []string{legacy}
		}
		return nil
	}
	if !s.getJSON(KeyMenuBarSensors, &ids) {
		return nil
	}
	return dedupe(ids, MaxMenuBarSensors)
}

// AddMenuBarSensor appends entityID. Duplicates and additions past the
// maximum are no-ops; the return reports whether the list changed.
func (s *Settings) AddMenuBarSensor(entityID string) (bool, error) {
	ids := s.MenuBarSensors()
	if entityID == "" || len(ids) >= MaxMenuBarSensors {
		return false, nil
	}
	for _, id := range ids {
		if id == entityID {
			return false, nil
		}
	}
	return true, s.setJSON(KeyMenuBarSensors, append(ids, entityID))
}

// RemoveMenuBarSensor drops entityID from the list.
func (s *Settings) RemoveMenuBarSensor(entityID string) (bool, error) {
	ids := s.MenuBarSensors()
	kept := make([]string, 0, len(ids))
	for _, id := range ids {
		if id != entityID {
			kept = append(kept, id)
		}
	}
	if len(kept) == len(ids) {
		return false, nil
	}
	return true, s.setJSON(KeyMenuBarSensors, kept)
}

// MoveMenuBarSensorUp swaps the sensor at index with its left neighbour.
// Out-of-range indexes and the first element are no-ops.
func (s *Settings) MoveMenuBarSensorUp(index int) (bool, error) {
	return s.swapMenuBarSensors(index, index-1)
}

// MoveMenuBarSensorDown swaps the sensor at index with its right neighbour.
// Out-of-range indexes and the last element are no-ops.
func (s *Settings) MoveMenuBarSensorDown(index int) (bool, error) {
	return s.swapMenuBarSensors(index, index+1)
}

func (s *Settings) swapMenuBarSensors(i, j int) (bool, error) {
	ids := s.MenuBarSensors()
	if i < 0 || j < 0 || i >= len(ids) || j >= len(ids) {
		return false, nil
	}
	ids[i], ids[j] = ids[j], ids[i]
	return true, s.setJSON(KeyMenuBarSensors, ids)
}

func dedupe(ids []string, limit int) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
		if len(out) == limit {
			break
		}
	}
	return out
}
