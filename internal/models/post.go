package models

import "time"

// Post is a feed entry, optionally attached to a movie from the catalog.
type Post struct {
	ID          int64     `json:"id"`
	Author      string    `json:"author"`
	Handle      string    `json:"handle"`
	Avatar      string    `json:"avatar"`
	Text        string    `json:"text"`
	MovieID     string    `json:"movieId,omitempty"`
	MovieTitle  string    `json:"movieTitle,omitempty"`
	MoviePoster string    `json:"moviePoster,omitempty"`
	Rating      int       `json:"rating"`
	Likes       int       `json:"likes"`
	LikedBy     []string  `json:"likedBy"`
	SavedBy     []string  `json:"savedBy"`
	Comments    []Comment `json:"comments,omitempty"`
	CreatedAt   time.Time `json:"timestamp"`
}

// Comment belongs to a single post.
type Comment struct {
	ID        int64     `json:"id"`
	PostID    int64     `json:"post_id"`
	Author    string    `json:"author"`
	Handle    string    `json:"handle"`
	Avatar    string    `json:"avatar"`
	Text      string    `json:"text"`
	Likes     int       `json:"likes"`
	LikedBy   []string  `json:"likedBy"`
	CreatedAt time.Time `json:"timestamp"`
}

// Pagination describes a page of feed results.
type Pagination struct {
	CurrentPage int   `json:"currentPage"`
	TotalPages  int   `json:"totalPages"`
	TotalPosts  int64 `json:"totalPosts"`
	HasMore     bool  `json:"hasMore"`
}

// DefaultAvatar is used when a client does not supply one.
const DefaultAvatar = "imagens/avatar-01.svg"
