package services

import (
	"fmt"
	"log"
	"strings"

	"smartgov-backend/models"

	"gorm.io/gorm"
)

// MatcherService filters the scheme catalog against a user profile.
// Matching is deliberately simple string policy: case-insensitive substring
// over the comma-separated state/occupation fields, inclusive optional age
// bounds. No ranking beyond the catalog's creation-descending order.
type MatcherService struct {
	db      *gorm.DB
	history *HistoryService
}

func NewMatcherService(db *gorm.DB, history *HistoryService) *MatcherService {
	return &MatcherService{db: db, history: history}
}

// escapeLike neutralizes LIKE wildcards in user-supplied filter text so a
// profile value like "%" cannot match every row.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	return strings.ReplaceAll(s, `_`, `\_`)
}

// MatchSchemes returns every scheme the user is eligible for and records a
// "viewed" history event per match (get-or-create, so repeat personalization
// calls never duplicate the event).
func (s *MatcherService) MatchSchemes(user *models.User) ([]models.Scheme, error) {
	if !user.HasCompleteProfile() {
		return nil, fmt.Errorf("%w: age, occupation and state are required", ErrIncompleteProfile)
	}

	statePattern := "%" + escapeLike(strings.ToLower(*user.State)) + "%"
	occupationPattern := "%" + escapeLike(strings.ToLower(*user.Occupation)) + "%"

	var schemes []models.Scheme
	err := s.db.
		Where(`LOWER(applicable_states) LIKE ? ESCAPE '\'`, statePattern).
		Where("(age_min IS NULL OR age_min <= ?)", *user.Age).
		Where("(age_max IS NULL OR age_max >= ?)", *user.Age).
		Where(`(applicable_occupations IS NULL OR LOWER(applicable_occupations) LIKE ? ESCAPE '\')`, occupationPattern).
		Order("created_at DESC").
		Find(&schemes).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query schemes: %w", err)
	}

	// Track every match as viewed
	for _, scheme := range schemes {
		if err := s.history.RecordViewedOnce(user.ID, scheme.ID); err != nil {
			log.Printf("[Matcher] Failed to record view for scheme %d: %v", scheme.ID, err)
		}
	}

	return schemes, nil
}
