// Package entity defines the JSON shapes shared by the web layer.
package entity

// Msg is the standard API response envelope.
type Msg struct {
	Success bool   `json:"success"`
	Msg     string `json:"msg"`
	Obj     any    `json:"obj"`
}

// Reaction is the wire contract of the comment reaction endpoint. The
// counts are always freshly counted from the ledger and UserReaction is
// "like", "dislike" or null.
type Reaction struct {
	Ok           bool    `json:"ok"`
	Likes        int     `json:"likes"`
	Dislikes     int     `json:"dislikes"`
	UserReaction *string `json:"user_reaction"`
}

// ReactionError is the failure shape of the reaction endpoint.
type ReactionError struct {
	Ok    bool   `json:"ok"`
	Error string `json:"error"`
}

// Pin is a map marker for trips that have coordinates.
type Pin struct {
	Id    int     `json:"id"`
	Title string  `json:"title"`
	Lat   float64 `json:"lat"`
	Lon   float64 `json:"lon"`
}

// BatchResult reports per-file outcomes of a multi-file upload. A bad file
// is skipped, never fatal to the surrounding request.
type BatchResult struct {
	Saved   int `json:"saved"`
	Skipped int `json:"skipped"`
}
