// Package model defines the database models for the homehub portal.
package model

import "time"

// User is an account with three independently combinable capabilities.
// Capabilities are plain booleans, not a role hierarchy.
type User struct {
	Id              int       `json:"id" gorm:"primaryKey;autoIncrement"`
	Username        string    `json:"username" gorm:"uniqueIndex;not null"`
	Password        string    `json:"-" gorm:"not null"` // bcrypt hash
	CanTravelEdit   bool      `json:"canTravelEdit" gorm:"not null;default:false"`
	CanApproveUsers bool      `json:"canApproveUsers" gorm:"not null;default:false"`
	IsAdmin         bool      `json:"isAdmin" gorm:"not null;default:false"`
	CreatedAt       time.Time `json:"createdAt"`
}

// RegistrationRequest statuses. A decided request is immutable.
const (
	RequestPending  = "pending"
	RequestApproved = "approved"
	RequestDenied   = "denied"
)

type RegistrationRequest struct {
	Id              int        `json:"id" gorm:"primaryKey;autoIncrement"`
	Username        string     `json:"username" gorm:"index;not null"`
	Password        string     `json:"-" gorm:"not null"` // hashed at submission
	Reason          string     `json:"reason"`
	Status          string     `json:"status" gorm:"index;not null;default:pending"`
	CreatedAt       time.Time  `json:"createdAt"`
	DecidedAt       *time.Time `json:"decidedAt"`
	DecidedByUserId *int       `json:"decidedByUserId"`
}

type HomeCard struct {
	Id          int    `json:"id" gorm:"primaryKey;autoIncrement"`
	Key         string `json:"key" gorm:"uniqueIndex"`
	Title       string `json:"title" gorm:"not null"`
	Description string `json:"description"`
	ImagePath   string `json:"imagePath"` // relative path served via /u/
	Url         string `json:"url" gorm:"not null"`
	SortOrder   int    `json:"sortOrder" gorm:"default:0"`
}

// Item is a media tracker entry. Chapter fields only apply to serial media
// (books, manga, manhwa); CoverPath and SourcePath are singleton assets.
type Item struct {
	Id             int       `json:"id" gorm:"primaryKey;autoIncrement"`
	Title          string    `json:"title" gorm:"index;not null"`
	MediaType      string    `json:"mediaType" gorm:"index;not null"`
	Status         string    `json:"status" gorm:"index;not null"`
	Score          *int      `json:"score"`
	Tags           string    `json:"tags"`
	Notes          string    `json:"notes"`
	ChapterCurrent *int      `json:"chapterCurrent"`
	ChapterTotal   *int      `json:"chapterTotal"`
	CoverPath      string    `json:"coverPath"`
	SourcePath     string    `json:"sourcePath"`
	AddedAt        time.Time `json:"addedAt"`
}

type Trip struct {
	Id        int       `json:"id" gorm:"primaryKey;autoIncrement"`
	Title     string    `json:"title" gorm:"index;not null"`
	Address   string    `json:"address" gorm:"not null"`
	Notes     string    `json:"notes"`
	Lat       *float64  `json:"lat"`
	Lon       *float64  `json:"lon"`
	CreatedAt time.Time `json:"createdAt"`
}

type Photo struct {
	Id           int       `json:"id" gorm:"primaryKey;autoIncrement"`
	TripId       int       `json:"tripId" gorm:"index;not null"`
	StoredPath   string    `json:"storedPath" gorm:"not null"`
	ThumbPath    string    `json:"thumbPath"`
	OriginalName string    `json:"originalName"`
	MimeType     string    `json:"mimeType"`
	SizeBytes    int64     `json:"sizeBytes"`
	UploadedAt   time.Time `json:"uploadedAt"`
}

// Comment is a trip-scoped comment; ItemComment is tracker-scoped. Both are
// owned by their parent and removed with it.
type Comment struct {
	Id        int       `json:"id" gorm:"primaryKey;autoIncrement"`
	TripId    int       `json:"tripId" gorm:"index;not null"`
	UserId    int       `json:"userId" gorm:"index;not null"`
	Author    string    `json:"author" gorm:"not null"`
	Body      string    `json:"body" gorm:"not null"`
	CreatedAt time.Time `json:"createdAt"`
}

type ItemComment struct {
	Id        int       `json:"id" gorm:"primaryKey;autoIncrement"`
	ItemId    int       `json:"itemId" gorm:"index;not null"`
	UserId    int       `json:"userId" gorm:"index;not null"`
	Author    string    `json:"author" gorm:"not null"`
	Body      string    `json:"body" gorm:"not null"`
	CreatedAt time.Time `json:"createdAt"`
}

// Reaction kind discriminators. Both comment tables share one reaction
// table, so the kind tag keeps their numeric ids from colliding.
const (
	KindTrip = "trip"
	KindItem = "item"
)

// Reaction values.
const (
	ReactionLike    = 1
	ReactionDislike = -1
)

// CommentReaction holds at most one row per (kind, comment, user), enforced
// by the composite unique index rather than application logic alone.
type CommentReaction struct {
	Id        int       `json:"id" gorm:"primaryKey;autoIncrement"`
	Kind      string    `json:"kind" gorm:"size:10;not null;uniqueIndex:uq_reaction_one_per_user,priority:1"`
	CommentId int       `json:"commentId" gorm:"not null;uniqueIndex:uq_reaction_one_per_user,priority:2"`
	UserId    int       `json:"userId" gorm:"not null;uniqueIndex:uq_reaction_one_per_user,priority:3"`
	Value     int       `json:"value" gorm:"not null"` // 1=like, -1=dislike
	CreatedAt time.Time `json:"createdAt"`
}

// WeddingItem is an entry on one of the wedding planning panels. Boards can
// carry an image; links carry a URL; the rest are text entries.
type WeddingItem struct {
	Id        int       `json:"id" gorm:"primaryKey;autoIncrement"`
	Section   string    `json:"section" gorm:"index;not null"`
	Sub       string    `json:"sub" gorm:"index"`
	Title     string    `json:"title" gorm:"not null"`
	Note      string    `json:"note"`
	Url       string    `json:"url"`
	ImagePath string    `json:"imagePath"`
	ThumbPath string    `json:"thumbPath"`
	SortOrder int       `json:"sortOrder" gorm:"default:0"`
	CreatedAt time.Time `json:"createdAt"`
}

// WeddingTable is a seating table with two named photos (table shot and
// seating layout) that are replaced in place on re-upload.
type WeddingTable struct {
	Id         int       `json:"id" gorm:"primaryKey;autoIncrement"`
	Name       string    `json:"name" gorm:"not null"`
	Seats      int       `json:"seats" gorm:"default:0"`
	Notes      string    `json:"notes"`
	PhotoPath  string    `json:"photoPath"`
	LayoutPath string    `json:"layoutPath"`
	CreatedAt  time.Time `json:"createdAt"`
}
