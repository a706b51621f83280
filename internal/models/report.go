package models

import "time"

// Digest is the assembled per-run market summary handed to the prompt
// builder: one line per registered instrument plus a headline section
type Digest struct {
	Lines    []string   `json:"lines"`
	News     []NewsItem `json:"news"`
	Rendered string     `json:"rendered"`
}

// RolePrompt is one role-specific analysis prompt. Prompts are independent
// of each other and contain the full digest verbatim.
type RolePrompt struct {
	Role   string `json:"role"`
	Prompt string `json:"prompt"`
}

// RoleSection is the generated analysis for one role
type RoleSection struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

// Report is the final assembled document for one run
type Report struct {
	RunID       string        `json:"run_id"`
	GeneratedAt time.Time     `json:"generated_at"`
	Title       string        `json:"title"`
	Digest      Digest        `json:"digest"`
	Sections    []RoleSection `json:"sections"`
	Document    string        `json:"document"`
}
