package services

import (
	"github.com/citypulse/backend/internal/logger"
	"github.com/citypulse/backend/internal/models"
	"github.com/citypulse/backend/internal/repository"
)

// DuplicateResolver decides whether a new report is covered by an existing
// active complaint for the same department and place.
type DuplicateResolver struct {
	store repository.Store
}

func NewDuplicateResolver(store repository.Store) *DuplicateResolver {
	return &DuplicateResolver{store: store}
}

// FindActiveDuplicate returns the active complaint covering the given
// department and location, or nil when there is none. A RESOLVED complaint
// never blocks a fresh report.
//
// At most one active complaint should exist per (department, location) key.
// If storage returns more than one anyway, the oldest wins so the answer
// stays deterministic.
func (r *DuplicateResolver) FindActiveDuplicate(department models.Department, location string) (*models.Complaint, error) {
	key := models.NormalizeLocation(location)
	if key == "" {
		return nil, nil
	}

	matches, err := r.store.FindActiveByLocation(department, key)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, nil
	}
	if len(matches) > 1 {
		logger.Warn("Multiple active complaints for one location key", map[string]interface{}{
			"department":   department,
			"location_key": key,
			"count":        len(matches),
			"picked_id":    matches[0].ID,
		})
	}
	return &matches[0], nil
}
