package model

// Article mirrors an entry of the upstream feed
type Article struct {
	ID          int64         `json:"id"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	URL         string        `json:"url"`
	PublishedAt string        `json:"published_at"`
	TagList     []string      `json:"tag_list"`
	CoverImage  *string       `json:"cover_image"`
	User        ArticleAuthor `json:"user"`
}

// ArticleAuthor is the author block of a feed article
type ArticleAuthor struct {
	Name         string `json:"name"`
	Username     string `json:"username"`
	ProfileImage string `json:"profile_image"`
}
