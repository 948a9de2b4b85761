package auth

import "time"

// User represents an authenticated account.
type User struct {
	ID           int64
	Email        string
	Name         string
	CompanyName  string
	PasswordHash string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Registration carries a founder signup, including the fundraising rounds
// declared in the onboarding questionnaire.
type Registration struct {
	Email               string
	Name                string
	CompanyName         string
	Password            string
	QuestionnaireRounds []string
}
