package catalog

import (
	"github.com/conduit-lang/entitymodel/internal/catalog/blogv1"
	"github.com/conduit-lang/entitymodel/internal/catalog/blogv2"
)

func buildBlogV1(b *builder) {
	author := entity[blogv1.Author](b)
	post := entity[blogv1.Post](b)
	entity[blogv1.Tag](b)

	b.alternateKey(author, "Email")
	b.foreignKey(post, author, "AuthorId")
	b.index(post, false, "PublishedAt")
}

func buildBlogV2(b *builder) {
	author := entity[blogv2.Author](b)
	post := entity[blogv2.Post](b)
	tag := entity[blogv2.Tag](b)
	comment := entity[blogv2.Comment](b)

	b.renamedTable(post, "Post")
	b.renamedColumn(post, "Content", "Body")
	b.alternateKey(post, "Slug")
	b.foreignKey(post, author, "AuthorId")
	b.index(post, false, "PublishedAt")
	b.index(tag, true, "Name")

	b.foreignKey(comment, post, "PostId")
	b.foreignKey(comment, author, "AuthorId")
	b.index(comment, false, "PostId", "CreatedAt")
}
