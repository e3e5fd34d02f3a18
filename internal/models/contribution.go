package models

// Contribution is one row of the contributions table.
// The table carries RLS so every row is only visible to its owner:
// contributions (id uuid default uuid_generate_v4() primary key, user_id uuid,
// project text, link text, program text, date date, type text, description text,
// tech text, screenshot_url text, created_at timestamp default now())
type Contribution struct {
	ID            string  `json:"id"`
	UserID        string  `json:"user_id"`
	Project       string  `json:"project"`
	Link          string  `json:"link"`
	Program       string  `json:"program"`
	Date          *string `json:"date"`
	Type          string  `json:"type"`
	Description   string  `json:"description"`
	Tech          string  `json:"tech"`
	ScreenshotURL string  `json:"screenshot_url"`
	CreatedAt     string  `json:"created_at"`
}

// NewContribution is the insert payload. ID and CreatedAt are assigned
// by the database, so they are deliberately absent here.
type NewContribution struct {
	UserID        string  `json:"user_id"`
	Project       string  `json:"project"`
	Link          string  `json:"link"`
	Program       string  `json:"program"`
	Date          *string `json:"date"`
	Type          string  `json:"type"`
	Description   string  `json:"description"`
	Tech          string  `json:"tech"`
	ScreenshotURL string  `json:"screenshot_url"`
}
