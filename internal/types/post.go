package types

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

// AuthorSummary is the denormalized author attached to every returned post.
type AuthorSummary struct {
	ID       uuid.UUID `json:"_id"`
	Name     string    `json:"name"`
	ImageURL string    `json:"imageUrl"`
}

type Post struct {
	ID        uuid.UUID     `json:"_id"`
	Author    AuthorSummary `json:"author"`
	Text      string        `json:"text"`
	ImageURL  string        `json:"imageUrl"`
	Likes     []uuid.UUID   `json:"likes"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

// LikedBy reports whether userID is in the like set.
func (p *Post) LikedBy(userID uuid.UUID) bool {
	return slices.Contains(p.Likes, userID)
}

// CreatePostParams is the input of a new post. Image is optional.
type CreatePostParams struct {
	Text  string
	Image *Blob
}

// EditPostParams distinguishes an omitted text (nil) from an explicit "".
type EditPostParams struct {
	Text  *string
	Image *Blob
}

// LikeResult is the response of a like toggle.
type LikeResult struct {
	Post  *Post `json:"post"`
	Liked bool  `json:"liked"`
}

// FilterByAuthor keeps the posts written by authorID, preserving order.
func FilterByAuthor(posts []Post, authorID uuid.UUID) []Post {
	out := make([]Post, 0, len(posts))
	for _, p := range posts {
		if p.Author.ID == authorID {
			out = append(out, p)
		}
	}
	return out
}
