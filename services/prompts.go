package services

import (
	"fmt"

	"smartgov-backend/models"

	"gorm.io/gorm"
)

// PromptTemplateService resolves controlled prompt templates. Templates are
// administrative reference data; at most one is expected per category.
type PromptTemplateService struct {
	db *gorm.DB
}

func NewPromptTemplateService(db *gorm.DB) *PromptTemplateService {
	return &PromptTemplateService{db: db}
}

// GetByCategory returns the template for an exact category match.
func (s *PromptTemplateService) GetByCategory(category string) (*models.PromptTemplate, error) {
	if category == "" {
		return nil, fmt.Errorf("%w: category is required", ErrValidation)
	}

	var template models.PromptTemplate
	err := s.db.Where("category = ?", category).First(&template).Error
	if err == gorm.ErrRecordNotFound {
		return nil, fmt.Errorf("%w: no template for category '%s'", ErrNotFound, category)
	}
	if err != nil {
		return nil, err
	}
	return &template, nil
}

// BuildSystemMessage concatenates the template's system instructions (if any)
// with the fixed user-context block the assistant is grounded on.
func BuildSystemMessage(template *models.PromptTemplate, user *models.User) string {
	systemMsg := ""
	if template != nil {
		systemMsg = template.SystemInstructions
	}

	age := "N/A"
	if user.Age != nil {
		age = fmt.Sprintf("%d", *user.Age)
	}
	occupation := "N/A"
	if user.Occupation != nil && *user.Occupation != "" {
		occupation = *user.Occupation
	}
	state := "N/A"
	if user.State != nil && *user.State != "" {
		state = *user.State
	}

	context := fmt.Sprintf(`
You are a helpful AI assistant for government schemes in India.
User Profile:
- Age: %s
- Occupation: %s
- State: %s
- Aadhar Verified: %t

Provide accurate, clear, and helpful information about government schemes.
`, age, occupation, state, user.AadharVerified)

	return systemMsg + context
}
