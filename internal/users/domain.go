package users

import "time"

// User represents a founder or admin account.
type User struct {
	ID               int64     `json:"id"`
	Email            string    `json:"email"`
	Name             string    `json:"name"`
	CompanyName      string    `json:"company_name"`
	Industry         string    `json:"industry,omitempty"`
	Website          string    `json:"website,omitempty"`
	CurrentValuation float64   `json:"current_valuation"`
	IsActive         bool      `json:"is_active"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// Profile is the founder dashboard projection combining the account with
// derived fundraising state.
type Profile struct {
	User                 User     `json:"user"`
	QuestionnaireRounds  []string `json:"questionnaire_rounds"`
	TotalSharesAvailable float64  `json:"total_shares_available"`
	NextRound            *string  `json:"next_round"`
}
