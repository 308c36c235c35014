package sqlrepo

import (
	"context"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/jmoiron/sqlx"

	"salemre/backend/internal/models"
	"salemre/backend/internal/query"
	"salemre/backend/internal/repository"
)

const blogTagsTable = "blog_post_tags"

var blogTable = table{
	name: "blog_posts",
	columns: []any{
		"id", "title", "slug", "excerpt", "content", "category", "cover_image", "status", "featured",
		"views", "author_id", "published_at", "created_at", "updated_at",
	},
	sets: map[string]setJoin{
		"tags": {table: blogTagsTable, fk: "post_id", valueCol: "tag"},
	},
}

// BlogRepository implements repository.BlogRepository. Tags live in a join table.
type BlogRepository struct {
	*base
}

var _ repository.BlogRepository = (*BlogRepository)(nil)

func blogRecord(p *models.BlogPost) goqu.Record {
	return goqu.Record{
		"title":        p.Title,
		"slug":         p.Slug,
		"excerpt":      p.Excerpt,
		"content":      p.Content,
		"category":     p.Category,
		"cover_image":  p.CoverImage,
		"status":       string(p.Status),
		"featured":     p.Featured,
		"author_id":    p.AuthorID,
		"published_at": p.PublishedAt,
		"updated_at":   p.UpdatedAt,
	}
}

func (r *BlogRepository) List(ctx context.Context, q query.Query) ([]models.BlogPost, int64, error) {
	posts, count, err := listPage[models.BlogPost](ctx, r.base, blogTable, q)
	if err != nil {
		return nil, 0, err
	}
	if err := r.loadTags(ctx, posts); err != nil {
		return nil, 0, err
	}
	return posts, count, nil
}

func (r *BlogRepository) GetByID(ctx context.Context, id int64) (*models.BlogPost, error) {
	return r.getWithTags(ctx, goqu.C("id").Eq(id))
}

func (r *BlogRepository) GetBySlug(ctx context.Context, slug string) (*models.BlogPost, error) {
	return r.getWithTags(ctx, goqu.C("slug").Eq(slug))
}

func (r *BlogRepository) getWithTags(ctx context.Context, where exp.Expression) (*models.BlogPost, error) {
	post, err := getOne[models.BlogPost](ctx, r.base, blogTable, where)
	if err != nil {
		return nil, err
	}
	posts := []models.BlogPost{*post}
	if err := r.loadTags(ctx, posts); err != nil {
		return nil, err
	}
	return &posts[0], nil
}

func (r *BlogRepository) IncrementViews(ctx context.Context, id int64) (*models.BlogPost, error) {
	if err := r.incrementViews(ctx, blogTable.name, id); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func (r *BlogRepository) Create(ctx context.Context, p *models.BlogPost) error {
	return r.inTx(ctx, func(tx *sqlx.Tx) error {
		rec := blogRecord(p)
		rec["views"] = p.Views
		rec["created_at"] = p.CreatedAt
		id, err := r.insert(ctx, tx, blogTable.name, rec)
		if err != nil {
			return fmt.Errorf("inserting blog post: %w", err)
		}
		if err := r.replaceTags(ctx, tx, id, p.Tags); err != nil {
			return err
		}
		p.ID = id
		return nil
	})
}

func (r *BlogRepository) Update(ctx context.Context, p *models.BlogPost) error {
	return r.inTx(ctx, func(tx *sqlx.Tx) error {
		if err := r.updateByID(ctx, tx, blogTable.name, p.ID, blogRecord(p)); err != nil {
			return fmt.Errorf("updating blog post %d: %w", p.ID, err)
		}
		return r.replaceTags(ctx, tx, p.ID, p.Tags)
	})
}

func (r *BlogRepository) Delete(ctx context.Context, id int64) error {
	return r.inTx(ctx, func(tx *sqlx.Tx) error {
		if err := r.deleteTags(ctx, tx, id); err != nil {
			return err
		}
		sqlStr, args, err := r.dialect.Delete(blogTable.name).Where(goqu.C("id").Eq(id)).Prepared(true).ToSQL()
		if err != nil {
			return fmt.Errorf("building blog post delete: %w", err)
		}
		if err := r.exec(ctx, tx, sqlStr, args); err != nil {
			return fmt.Errorf("deleting blog post %d: %w", id, err)
		}
		return nil
	})
}

func (r *BlogRepository) PublishedTags(ctx context.Context) ([]string, error) {
	sqlStr, args, err := r.dialect.From(goqu.T(blogTagsTable).As("t")).
		Join(goqu.T(blogTable.name).As("p"), goqu.On(goqu.I("p.id").Eq(goqu.I("t.post_id")))).
		Where(goqu.I("p.status").Eq(string(models.BlogStatusPublished))).
		Select(goqu.I("t.tag")).
		Distinct().
		Order(goqu.I("t.tag").Asc()).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("building tag list: %w", err)
	}
	tags := []string{}
	if err := r.db.SelectContext(ctx, &tags, sqlStr, args...); err != nil {
		return nil, fmt.Errorf("listing tags: %w", err)
	}
	return tags, nil
}

type postTag struct {
	PostID int64  `db:"post_id"`
	Tag    string `db:"tag"`
}

func (r *BlogRepository) loadTags(ctx context.Context, posts []models.BlogPost) error {
	if len(posts) == 0 {
		return nil
	}
	ids := make([]int64, len(posts))
	byID := make(map[int64]int, len(posts))
	for i := range posts {
		ids[i] = posts[i].ID
		byID[posts[i].ID] = i
		posts[i].Tags = models.StringList{}
	}
	sqlStr, args, err := r.dialect.From(blogTagsTable).
		Select("post_id", "tag").
		Where(goqu.C("post_id").In(ids)).
		Order(goqu.C("post_id").Asc(), goqu.C("tag").Asc()).
		Prepared(true).
		ToSQL()
	if err != nil {
		return fmt.Errorf("building tag lookup: %w", err)
	}
	var rows []postTag
	if err := r.db.SelectContext(ctx, &rows, sqlStr, args...); err != nil {
		return fmt.Errorf("loading tags: %w", err)
	}
	for _, row := range rows {
		if i, ok := byID[row.PostID]; ok {
			posts[i].Tags = append(posts[i].Tags, row.Tag)
		}
	}
	return nil
}

func (r *BlogRepository) deleteTags(ctx context.Context, tx *sqlx.Tx, postID int64) error {
	sqlStr, args, err := r.dialect.Delete(blogTagsTable).Where(goqu.C("post_id").Eq(postID)).Prepared(true).ToSQL()
	if err != nil {
		return fmt.Errorf("building tag delete: %w", err)
	}
	if _, err := tx.ExecContext(ctx, sqlStr, args...); err != nil {
		return fmt.Errorf("deleting tags of post %d: %w", postID, err)
	}
	return nil
}

func (r *BlogRepository) replaceTags(ctx context.Context, tx *sqlx.Tx, postID int64, tags models.StringList) error {
	if err := r.deleteTags(ctx, tx, postID); err != nil {
		return err
	}
	if len(tags) == 0 {
		return nil
	}
	rows := make([]any, 0, len(tags))
	for _, tag := range tags {
		rows = append(rows, goqu.Record{"post_id": postID, "tag": tag})
	}
	sqlStr, args, err := r.dialect.Insert(blogTagsTable).Rows(rows...).Prepared(true).ToSQL()
	if err != nil {
		return fmt.Errorf("building tag insert: %w", err)
	}
	if _, err := tx.ExecContext(ctx, sqlStr, args...); err != nil {
		return fmt.Errorf("inserting tags of post %d: %w", postID, mapErr(err))
	}
	return nil
}

func (r *BlogRepository) inTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}
