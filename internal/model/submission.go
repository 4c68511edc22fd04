package model

import "time"

// Submission records that a user completed a workshop. Identity is the
// (UserID, WorkshopID) pair — re-submitting overwrites the previous row
// rather than creating a new one, so there is no attempt history.
//
// EventCode is opaque free text: nothing validates it against a registry
// of real events. Admins use it for manual verification.
type Submission struct {
	UserID      string    `json:"userId"      db:"user_id"`
	WorkshopID  string    `json:"workshopId"  db:"workshop_id"`
	Completed   bool      `json:"completed"   db:"completed"`
	SubmittedAt time.Time `json:"submittedAt" db:"submitted_at"`
	EventCode   string    `json:"eventCode"   db:"event_code"`
	PhotoRef    string    `json:"photoRef"    db:"photo_ref"` // key into the photo store
	Notes       string    `json:"notes"       db:"notes"`
}

// SubmissionRecord is a submission joined with the display data the admin
// dashboard needs: who submitted, for which workshop, from which club.
// Filtering happens client-side over the full set, so this carries
// everything the table renders.
type SubmissionRecord struct {
	Submission
	UserName      string `json:"userName"`
	UserSlackID   string `json:"userSlackId"`
	WorkshopSlug  string `json:"workshopSlug"`
	WorkshopTitle string `json:"workshopTitle"`
	WorkshopEmoji string `json:"workshopEmoji"`
	ClubName      string `json:"clubName"` // empty if the user has no club
}
