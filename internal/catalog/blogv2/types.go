// Package blogv2 holds the second version of the blog entity types.
// Posts moved to the articles table and gained comments.
package blogv2

import (
	"time"

	"github.com/google/uuid"
)

type Author struct {
	Id   uuid.UUID
	Name string
	Bio  *string
}

type Post struct {
	Id          uuid.UUID
	Title       string
	Content     string
	Slug        string
	AuthorId    uuid.UUID
	PublishedAt *time.Time
	Views       int64
	Tags        []Tag `rel:"table=post_tags"`
}

func (Post) TableName() string { return "articles" }

type Tag struct {
	Id    uuid.UUID
	Name  string
	Posts []Post
}

type Comment struct {
	Id        uuid.UUID
	PostId    uuid.UUID
	AuthorId  *uuid.UUID
	Body      string
	CreatedAt time.Time
}
