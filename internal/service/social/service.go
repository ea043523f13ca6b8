package social

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/eliswilliam/CINEHOME/internal/models"
)

var (
	ErrPostNotFound    = errors.New("post not found")
	ErrCommentNotFound = errors.New("comment not found")
	ErrNotOwner        = errors.New("not allowed")
)

const (
	maxPostLength    = 1000
	maxCommentLength = 500
	defaultPageSize  = 20
)

// Service implements the feed: posts, comments, likes and saves.
type Service struct {
	db *sql.DB
}

// NewService builds a feed service over the shared database handle.
func NewService(db *sql.DB) *Service {
	return &Service{db: db}
}

// PostInput carries the client-supplied fields of a new post.
type PostInput struct {
	Author      string
	Handle      string
	Avatar      string
	Text        string
	MovieID     string
	MovieTitle  string
	MoviePoster string
	Rating      int
}

// CreatePost stores a new feed entry.
func (s *Service) CreatePost(ctx context.Context, in PostInput) (*models.Post, error) {
	in.Author = strings.TrimSpace(in.Author)
	in.Handle = strings.TrimSpace(in.Handle)
	in.Text = strings.TrimSpace(in.Text)
	if in.Author == "" || in.Handle == "" || in.Text == "" {
		return nil, errors.New("author, handle and text are required")
	}
	if len(in.Text) > maxPostLength {
		return nil, fmt.Errorf("text exceeds %d characters", maxPostLength)
	}
	if in.Avatar == "" {
		in.Avatar = models.DefaultAvatar
	}
	if in.Rating < 0 || in.Rating > 5 {
		return nil, errors.New("rating must be between 0 and 5")
	}

	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO posts (author, handle, avatar, text, movie_id, movie_title, movie_poster, rating, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		in.Author, in.Handle, in.Avatar, in.Text, in.MovieID, in.MovieTitle, in.MoviePoster, in.Rating, now,
	)
	if err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("post id: %w", err)
	}
	return &models.Post{
		ID:          id,
		Author:      in.Author,
		Handle:      in.Handle,
		Avatar:      in.Avatar,
		Text:        in.Text,
		MovieID:     in.MovieID,
		MovieTitle:  in.MovieTitle,
		MoviePoster: in.MoviePoster,
		Rating:      in.Rating,
		LikedBy:     []string{},
		SavedBy:     []string{},
		CreatedAt:   now,
	}, nil
}

// ListPosts returns one page of the feed, newest first.
func (s *Service) ListPosts(ctx context.Context, page, limit int) ([]*models.Post, *models.Pagination, error) {
	return s.listPage(ctx, page, limit,
		`SELECT id, author, handle, avatar, text, movie_id, movie_title, movie_poster, rating, created_at
		 FROM posts ORDER BY created_at DESC LIMIT ? OFFSET ?`,
		`SELECT COUNT(*) FROM posts`,
	)
}

// ListPostsByHandle returns one page of a user's posts.
func (s *Service) ListPostsByHandle(ctx context.Context, handle string, page, limit int) ([]*models.Post, *models.Pagination, error) {
	return s.listPage(ctx, page, limit,
		`SELECT id, author, handle, avatar, text, movie_id, movie_title, movie_poster, rating, created_at
		 FROM posts WHERE handle = ? ORDER BY created_at DESC LIMIT ? OFFSET ?`,
		`SELECT COUNT(*) FROM posts WHERE handle = ?`,
		handle,
	)
}

// ListSavedPosts returns one page of the posts a user saved.
func (s *Service) ListSavedPosts(ctx context.Context, handle string, page, limit int) ([]*models.Post, *models.Pagination, error) {
	return s.listPage(ctx, page, limit,
		`SELECT p.id, p.author, p.handle, p.avatar, p.text, p.movie_id, p.movie_title, p.movie_poster, p.rating, p.created_at
		 FROM posts p JOIN post_saves ps ON ps.post_id = p.id
		 WHERE ps.handle = ? ORDER BY p.created_at DESC LIMIT ? OFFSET ?`,
		`SELECT COUNT(*) FROM post_saves WHERE handle = ?`,
		handle,
	)
}

func (s *Service) listPage(ctx context.Context, page, limit int, listQuery, countQuery string, args ...interface{}) ([]*models.Post, *models.Pagination, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = defaultPageSize
	}
	offset := (page - 1) * limit

	var total int64
	if err := s.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, nil, fmt.Errorf("count posts: %w", err)
	}

	listArgs := append(append([]interface{}{}, args...), limit, offset)
	rows, err := s.db.QueryContext(ctx, listQuery, listArgs...)
	if err != nil {
		return nil, nil, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()

	posts := make([]*models.Post, 0, limit)
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, nil, err
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}
	if err := s.loadRelations(ctx, posts); err != nil {
		return nil, nil, err
	}

	totalPages := int((total + int64(limit) - 1) / int64(limit))
	pagination := &models.Pagination{
		CurrentPage: page,
		TotalPages:  totalPages,
		TotalPosts:  total,
		HasMore:     int64(offset+len(posts)) < total,
	}
	return posts, pagination, nil
}

// GetPost returns one post with its comments.
func (s *Service) GetPost(ctx context.Context, id int64) (*models.Post, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, author, handle, avatar, text, movie_id, movie_title, movie_poster, rating, created_at
		 FROM posts WHERE id = ?`, id)
	p, err := scanPost(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	if err := s.loadRelations(ctx, []*models.Post{p}); err != nil {
		return nil, err
	}
	comments, err := s.listComments(ctx, id)
	if err != nil {
		return nil, err
	}
	p.Comments = comments
	return p, nil
}

// DeletePost removes a post; only its author may do so.
func (s *Service) DeletePost(ctx context.Context, id int64, handle string) error {
	var owner string
	err := s.db.QueryRowContext(ctx, `SELECT handle FROM posts WHERE id = ?`, id).Scan(&owner)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrPostNotFound
		}
		return fmt.Errorf("get post: %w", err)
	}
	if owner != handle {
		return ErrNotOwner
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM posts WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	return nil
}

// ToggleLike likes or unlikes the post for the handle, returning the new
// state and count.
func (s *Service) ToggleLike(ctx context.Context, postID int64, handle string) (bool, int, error) {
	return s.toggleMark(ctx, "post_likes", postID, handle)
}

// ToggleSave saves or unsaves the post for the handle.
func (s *Service) ToggleSave(ctx context.Context, postID int64, handle string) (bool, int, error) {
	return s.toggleMark(ctx, "post_saves", postID, handle)
}

func (s *Service) toggleMark(ctx context.Context, table string, postID int64, handle string) (bool, int, error) {
	if handle == "" {
		return false, 0, errors.New("handle is required")
	}
	var exists bool
	if err := s.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM posts WHERE id = ?)`, postID).Scan(&exists); err != nil {
		return false, 0, fmt.Errorf("verify post: %w", err)
	}
	if !exists {
		return false, 0, ErrPostNotFound
	}

	var marked bool
	query := fmt.Sprintf(`SELECT EXISTS(SELECT 1 FROM %s WHERE post_id = ? AND handle = ?)`, table)
	if err := s.db.QueryRowContext(ctx, query, postID, handle).Scan(&marked); err != nil {
		return false, 0, fmt.Errorf("check mark: %w", err)
	}
	if marked {
		_, err := s.db.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE post_id = ? AND handle = ?`, table), postID, handle)
		if err != nil {
			return false, 0, fmt.Errorf("remove mark: %w", err)
		}
	} else {
		_, err := s.db.ExecContext(ctx, fmt.Sprintf(`INSERT INTO %s (post_id, handle) VALUES (?, ?)`, table), postID, handle)
		if err != nil {
			return false, 0, fmt.Errorf("add mark: %w", err)
		}
	}

	var count int
	if err := s.db.QueryRowContext(ctx, fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE post_id = ?`, table), postID).Scan(&count); err != nil {
		return false, 0, fmt.Errorf("count marks: %w", err)
	}
	return !marked, count, nil
}

// AddComment appends a comment to the post.
func (s *Service) AddComment(ctx context.Context, postID int64, author, handle, avatar, text string) (*models.Comment, error) {
	author = strings.TrimSpace(author)
	handle = strings.TrimSpace(handle)
	text = strings.TrimSpace(text)
	if author == "" || handle == "" || text == "" {
		return nil, errors.New("author, handle and text are required")
	}
	if len(text) > maxCommentLength {
		return nil, fmt.Errorf("text exceeds %d characters", maxCommentLength)
	}
	if avatar == "" {
		avatar = models.DefaultAvatar
	}

	var exists bool
	if err := s.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM posts WHERE id = ?)`, postID).Scan(&exists); err != nil {
		return nil, fmt.Errorf("verify post: %w", err)
	}
	if !exists {
		return nil, ErrPostNotFound
	}

	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO comments (post_id, author, handle, avatar, text, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		postID, author, handle, avatar, text, now,
	)
	if err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("comment id: %w", err)
	}
	return &models.Comment{
		ID:        id,
		PostID:    postID,
		Author:    author,
		Handle:    handle,
		Avatar:    avatar,
		Text:      text,
		LikedBy:   []string{},
		CreatedAt: now,
	}, nil
}

// ToggleCommentLike likes or unlikes a comment.
func (s *Service) ToggleCommentLike(ctx context.Context, postID, commentID int64, handle string) (bool, int, error) {
	if handle == "" {
		return false, 0, errors.New("handle is required")
	}
	var exists bool
	if err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM comments WHERE id = ? AND post_id = ?)`, commentID, postID,
	).Scan(&exists); err != nil {
		return false, 0, fmt.Errorf("verify comment: %w", err)
	}
	if !exists {
		return false, 0, ErrCommentNotFound
	}

	var liked bool
	if err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM comment_likes WHERE comment_id = ? AND handle = ?)`, commentID, handle,
	).Scan(&liked); err != nil {
		return false, 0, fmt.Errorf("check like: %w", err)
	}
	if liked {
		if _, err := s.db.ExecContext(ctx, `DELETE FROM comment_likes WHERE comment_id = ? AND handle = ?`, commentID, handle); err != nil {
			return false, 0, fmt.Errorf("remove like: %w", err)
		}
	} else {
		if _, err := s.db.ExecContext(ctx, `INSERT INTO comment_likes (comment_id, handle) VALUES (?, ?)`, commentID, handle); err != nil {
			return false, 0, fmt.Errorf("add like: %w", err)
		}
	}

	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM comment_likes WHERE comment_id = ?`, commentID).Scan(&count); err != nil {
		return false, 0, fmt.Errorf("count likes: %w", err)
	}
	return !liked, count, nil
}

// DeleteComment removes a comment; allowed for the comment author or
// the post author.
func (s *Service) DeleteComment(ctx context.Context, postID, commentID int64, handle string) error {
	var postOwner string
	err := s.db.QueryRowContext(ctx, `SELECT handle FROM posts WHERE id = ?`, postID).Scan(&postOwner)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrPostNotFound
		}
		return fmt.Errorf("get post: %w", err)
	}
	var commentOwner string
	err = s.db.QueryRowContext(ctx, `SELECT handle FROM comments WHERE id = ? AND post_id = ?`, commentID, postID).Scan(&commentOwner)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrCommentNotFound
		}
		return fmt.Errorf("get comment: %w", err)
	}
	if commentOwner != handle && postOwner != handle {
		return ErrNotOwner
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM comments WHERE id = ?`, commentID); err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanPost(row rowScanner) (*models.Post, error) {
	var p models.Post
	var movieID, movieTitle, moviePoster sql.NullString
	err := row.Scan(&p.ID, &p.Author, &p.Handle, &p.Avatar, &p.Text,
		&movieID, &movieTitle, &moviePoster, &p.Rating, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	p.MovieID = movieID.String
	p.MovieTitle = movieTitle.String
	p.MoviePoster = moviePoster.String
	p.LikedBy = []string{}
	p.SavedBy = []string{}
	return &p, nil
}

// loadRelations fills likedBy/savedBy for the given posts.
func (s *Service) loadRelations(ctx context.Context, posts []*models.Post) error {
	byID := make(map[int64]*models.Post, len(posts))
	for _, p := range posts {
		byID[p.ID] = p
	}
	if len(byID) == 0 {
		return nil
	}
	for table, assign := range map[string]func(*models.Post, string){
		"post_likes": func(p *models.Post, h string) { p.LikedBy = append(p.LikedBy, h); p.Likes = len(p.LikedBy) },
		"post_saves": func(p *models.Post, h string) { p.SavedBy = append(p.SavedBy, h) },
	} {
		rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`SELECT post_id, handle FROM %s ORDER BY post_id`, table))
		if err != nil {
			return fmt.Errorf("load %s: %w", table, err)
		}
		for rows.Next() {
			var postID int64
			var handle string
			if err := rows.Scan(&postID, &handle); err != nil {
				rows.Close()
				return fmt.Errorf("scan %s: %w", table, err)
			}
			if p, ok := byID[postID]; ok {
				assign(p, handle)
			}
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return err
		}
		rows.Close()
	}
	return nil
}

func (s *Service) listComments(ctx context.Context, postID int64) ([]models.Comment, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, post_id, author, handle, avatar, text, created_at
		 FROM comments WHERE post_id = ? ORDER BY created_at ASC`, postID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()

	var comments []models.Comment
	for rows.Next() {
		var c models.Comment
		if err := rows.Scan(&c.ID, &c.PostID, &c.Author, &c.Handle, &c.Avatar, &c.Text, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		c.LikedBy = []string{}
		comments = append(comments, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range comments {
		likeRows, err := s.db.QueryContext(ctx, `SELECT handle FROM comment_likes WHERE comment_id = ?`, comments[i].ID)
		if err != nil {
			return nil, fmt.Errorf("load comment likes: %w", err)
		}
		for likeRows.Next() {
			var handle string
			if err := likeRows.Scan(&handle); err != nil {
				likeRows.Close()
				return nil, fmt.Errorf("scan comment like: %w", err)
			}
			comments[i].LikedBy = append(comments[i].LikedBy, handle)
		}
		if err := likeRows.Err(); err != nil {
			likeRows.Close()
			return nil, err
		}
		likeRows.Close()
		comments[i].Likes = len(comments[i].LikedBy)
	}
	return comments, nil
}
