package model

import "time"

// Bookmark is a saved article. (UserID, ArticleID) is unique.
type Bookmark struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	ArticleID   string    `json:"articleId"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	URL         string    `json:"url"`
	PublishedAt time.Time `json:"publishedAt"`
	Tags        []string  `json:"tags"`
	CoverImage  *string   `json:"coverImage"`
	Author      string    `json:"author"`
	CreatedAt   time.Time `json:"createdAt"`
}
