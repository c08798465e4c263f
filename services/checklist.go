package services

import (
	"fmt"
	"strings"

	"smartgov-backend/models"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// baseChecklistDocuments is the fixed set every checklist starts from,
// regardless of scheme. Scheme-specific documents are layered on top.
var baseChecklistDocuments = []string{
	"identity_proof",
	"address_proof",
	"age_proof",
	"income_certificate",
	"occupation_certificate",
	"state_residency_proof",
	"bank_account_details",
	"aadhar_card",
	"application_form",
	"supporting_documents",
}

// documentKey normalizes a free-text document name into a map key.
// "Income Certificate" -> "income_certificate".
func documentKey(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "_")
}

// ChecklistService generates and updates per (user, scheme) document checklists.
type ChecklistService struct {
	db *gorm.DB
}

func NewChecklistService(db *gorm.DB) *ChecklistService {
	return &ChecklistService{db: db}
}

// Generate builds the document checklist for a user and scheme. An existing
// checklist for the pair is fully replaced: fields overwritten, completion
// reset to zero. Returns created=false when a prior checklist was replaced.
func (s *ChecklistService) Generate(user *models.User, schemeID uint) (*models.DocumentChecklist, bool, error) {
	var scheme models.Scheme
	if err := s.db.First(&scheme, schemeID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, false, fmt.Errorf("%w: scheme %d", ErrNotFound, schemeID)
		}
		return nil, false, err
	}

	documents := datatypes.JSONMap{}
	for _, key := range baseChecklistDocuments {
		documents[key] = false
	}
	for _, doc := range strings.Split(scheme.Documents, ",") {
		if key := documentKey(doc); key != "" {
			documents[key] = false
		}
	}

	age := 0
	if user.Age != nil {
		age = *user.Age
	}
	occupation := ""
	if user.Occupation != nil {
		occupation = *user.Occupation
	}
	state := ""
	if user.State != nil {
		state = *user.State
	}

	var checklist models.DocumentChecklist
	created := false

	err := s.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Where("user_id = ? AND scheme_id = ?", user.ID, schemeID).First(&checklist).Error
		switch {
		case err == gorm.ErrRecordNotFound:
			checklist = models.DocumentChecklist{
				UserID:               user.ID,
				SchemeID:             schemeID,
				Documents:            documents,
				Age:                  age,
				Occupation:           occupation,
				State:                state,
				CompletionPercentage: 0,
			}
			created = true
			return tx.Create(&checklist).Error
		case err != nil:
			return err
		default:
			checklist.Documents = documents
			checklist.Age = age
			checklist.Occupation = occupation
			checklist.State = state
			checklist.CompletionPercentage = 0
			return tx.Save(&checklist).Error
		}
	})
	if err != nil {
		return nil, false, fmt.Errorf("failed to persist checklist: %w", err)
	}

	return &checklist, created, nil
}

// List returns all checklists belonging to the user.
func (s *ChecklistService) List(userID uint) ([]models.DocumentChecklist, error) {
	var checklists []models.DocumentChecklist
	if err := s.db.Where("user_id = ?", userID).Find(&checklists).Error; err != nil {
		return nil, fmt.Errorf("failed to list checklists: %w", err)
	}
	return checklists, nil
}

// Update overwrites the document map wholesale and recomputes the completion
// percentage in the same transaction.
func (s *ChecklistService) Update(userID, checklistID uint, documents map[string]bool) (*models.DocumentChecklist, error) {
	var checklist models.DocumentChecklist

	err := s.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Where("id = ? AND user_id = ?", checklistID, userID).First(&checklist).Error
		if err == gorm.ErrRecordNotFound {
			return fmt.Errorf("%w: checklist %d", ErrNotFound, checklistID)
		}
		if err != nil {
			return err
		}

		docMap := datatypes.JSONMap{}
		for key, done := range documents {
			docMap[key] = done
		}
		checklist.Documents = docMap
		checklist.CompletionPercentage = calculateCompletion(docMap)
		return tx.Save(&checklist).Error
	})
	if err != nil {
		return nil, err
	}

	return &checklist, nil
}

// calculateCompletion returns 100*completed/total; an empty map is 0, not an error.
func calculateCompletion(documents datatypes.JSONMap) int {
	total := len(documents)
	if total == 0 {
		return 0
	}
	completed := 0
	for _, v := range documents {
		if done, ok := v.(bool); ok && done {
			completed++
		}
	}
	return completed * 100 / total
}
