package api

// UserCredits is the account balance as returned by GET /billing/balance.
// All amounts are in cents.
type UserCredits struct {
	UserID           string `json:"user_id"`
	Balance          int64  `json:"balance"`
	TotalDeposited   int64  `json:"total_deposited"`
	TotalSpent       int64  `json:"total_spent"`
	StripeCustomerID string `json:"stripe_customer_id,omitempty"`
	LastUpdated      string `json:"last_updated"`
}

// PricingInfo is the per-minute sandbox pricing.
type PricingInfo struct {
	CostPerMinuteCents   int64   `json:"cost_per_minute_cents"`
	CostPerMinuteDollars float64 `json:"cost_per_minute_dollars"`
}

// DepositRequest creates a Stripe checkout session.
type DepositRequest struct {
	AmountCents int64  `json:"amount_cents"`
	Currency    string `json:"currency"`
}

// DepositResponse carries the checkout URL the user must visit.
type DepositResponse struct {
	CheckoutURL string `json:"checkout_url"`
	AmountCents int64  `json:"amount_cents"`
	Currency    string `json:"currency"`
}

// UsageTransaction is a single ledger entry: a deposit, a session's
// metered usage, or a refund.
type UsageTransaction struct {
	ID              string  `json:"id"`
	Type            string  `json:"type"` // "deposit", "session_usage", "refund"
	AmountCents     int64   `json:"amount_cents"`
	Description     string  `json:"description"`
	CreatedAt       string  `json:"created_at"`
	SessionID       string  `json:"session_id,omitempty"`
	DurationMinutes float64 `json:"duration_minutes,omitempty"`
}

// UsageSummary aggregates session statistics for the usage page.
type UsageSummary struct {
	TotalSessions                 int     `json:"total_sessions"`
	AverageSessionCostCents       int64   `json:"average_session_cost_cents"`
	TotalSessionDurationMinutes   float64 `json:"total_session_duration_minutes"`
	AverageSessionDurationMinutes float64 `json:"average_session_duration_minutes"`
}

// UsageHistory is the response of GET /billing/usage.
type UsageHistory struct {
	CurrentBalanceCents int64              `json:"current_balance_cents"`
	TotalDepositsCents  int64              `json:"total_deposits_cents"`
	TotalUsageCents     int64              `json:"total_usage_cents"`
	Transactions        []UsageTransaction `json:"transactions"`
	Summary             UsageSummary       `json:"summary"`
}

// Dataset is a catalog entry from GET /datasets.
type Dataset struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	SampleCount int    `json:"sample_count,omitempty"`
	CreatedAt   string `json:"created_at,omitempty"`
}

// Sample is an evaluation task inside a dataset. Patch and test-name
// fields are consumed for display only.
type Sample struct {
	SampleID         string   `json:"sample_id"`
	Dataset          string   `json:"dataset"`
	Language         string   `json:"language"`
	Version          string   `json:"version,omitempty"`
	Description      string   `json:"description,omitempty"`
	ProblemStatement string   `json:"problem_statement,omitempty"`
	Repo             string   `json:"repo,omitempty"`
	BaseCommit       string   `json:"base_commit,omitempty"`
	Verifier         string   `json:"verifier,omitempty"`
	Latest           bool     `json:"latest,omitempty"`
	CreatedAt        string   `json:"created_at,omitempty"`
	Patch            string   `json:"patch,omitempty"`
	NonCodePatch     string   `json:"non_code_patch,omitempty"`
	TestPatch        string   `json:"test_patch,omitempty"`
	HintsText        string   `json:"hints_text,omitempty"`
	FailToPass       []string `json:"fail_to_pass,omitempty"`
	PassToPass       []string `json:"pass_to_pass,omitempty"`
	FailToFail       []string `json:"fail_to_fail,omitempty"`
}

// SamplePage is the paginated response of GET /samples.
type SamplePage struct {
	Samples    []Sample `json:"samples"`
	TotalCount int      `json:"total_count"`
	Page       int      `json:"page"`
	PageSize   int      `json:"page_size"`
	HasMore    bool     `json:"has_more"`
}
