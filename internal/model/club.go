package model

import "time"

// Club is a Hack Club chapter. The JoinCode is the human-shareable string
// members type in to attach themselves to an existing club without leader
// action — short and uppercase so it survives being read out loud.
type Club struct {
	ID          string    `json:"id"          db:"id"`
	Name        string    `json:"name"        db:"name"`
	JoinCode    string    `json:"joinCode"    db:"join_code"`
	Location    string    `json:"location"    db:"location"`
	Description string    `json:"description" db:"description"`
	CreatedAt   time.Time `json:"createdAt"   db:"created_at"`
}

// ClubRecord is a club with the denormalized display fields the admin
// dashboard renders: the leader's name and how many members joined.
type ClubRecord struct {
	Club
	LeaderName  string `json:"leaderName"`
	MemberCount int    `json:"memberCount"`
}
