package model

// ScopeGlobal marks a workshop visible to every club. Any other scope value
// is a club join code, restricting the workshop to that club.
const ScopeGlobal = "global"

// Workshop is one themed station in the passport. Workshops ship as seed
// data — there is no user-facing authoring flow.
type Workshop struct {
	ID          string `json:"id"          db:"id"`
	Slug        string `json:"slug"        db:"slug"` // URL-friendly name, e.g. "glaze"
	Title       string `json:"title"       db:"title"`
	Emoji       string `json:"emoji"       db:"emoji"`
	Description string `json:"description" db:"description"`
	Scope       string `json:"scope"       db:"scope"` // ScopeGlobal or a club join code
}

// PassportEntry is a workshop merged with the caller's own submission (nil
// when they haven't submitted yet). This is what GET /api/workshops returns.
type PassportEntry struct {
	Workshop
	Submission *Submission `json:"submission"`
}
