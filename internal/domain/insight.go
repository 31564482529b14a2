package domain

import "time"

// Insight is an AI-generated observation about the user's finances.
type Insight struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Body        string    `json:"body"`
	Category    string    `json:"category"`
	GeneratedAt time.Time `json:"generatedAt"`
}

// StockExplanation is a plain-language description of a stock, keyed by
// normalized symbol.
type StockExplanation struct {
	Symbol      string    `json:"symbol"`
	Explanation string    `json:"explanation"`
	GeneratedAt time.Time `json:"generatedAt"`
}

// InvestingTip is near-static editorial content.
type InvestingTip struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Body  string `json:"body"`
}
