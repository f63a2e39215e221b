// Package blogv1 holds the first version of the blog entity types
package blogv1

import (
	"time"

	"github.com/google/uuid"
)

type Author struct {
	Id    uuid.UUID
	Name  string
	Email string
}

type Post struct {
	Id          uuid.UUID
	Title       string
	Body        string
	AuthorId    uuid.UUID
	PublishedAt *time.Time
	Tags        []Tag `rel:"table=post_tags"`
}

type Tag struct {
	Id    uuid.UUID
	Name  string
	Posts []Post
}
