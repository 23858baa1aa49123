package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/luoyiti/web-video-player/internal/models"
	"github.com/luoyiti/web-video-player/internal/shared"
)

const videoColumns = "id, title, src, tags, is_local, created_at, updated_at"

// VideoRepository persists [models.Video] rows.
type VideoRepository struct {
	db *sql.DB
}

// NewVideoRepository creates a new [VideoRepository] with the given database connection
func NewVideoRepository(db *sql.DB) *VideoRepository {
	return &VideoRepository{db: db}
}

// List returns every video, newest first.
func (r *VideoRepository) List(ctx context.Context) ([]models.Video, error) {
	query := `SELECT ` + videoColumns + ` FROM videos ORDER BY id DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query videos: %w", err)
	}
	defer rows.Close()

	videos := []models.Video{}
	for rows.Next() {
		video, err := scanVideo(rows)
		if err != nil {
			return nil, err
		}
		videos = append(videos, *video)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating videos: %w", err)
	}

	return videos, nil
}

// Get retrieves a video by ID
func (r *VideoRepository) Get(ctx context.Context, id int64) (*models.Video, error) {
	query := `SELECT ` + videoColumns + ` FROM videos WHERE id = ?`

	video, err := scanVideo(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: video %d", shared.ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return video, nil
}

// Create validates and inserts the video, defaulting a blank title, and sets its ID.
func (r *VideoRepository) Create(ctx context.Context, video *models.Video) (int64, error) {
	if err := video.Validate(); err != nil {
		return 0, err
	}

	video.Src = strings.TrimSpace(video.Src)
	video.Title = strings.TrimSpace(video.Title)
	if video.Title == "" {
		video.Title = models.DefaultVideoTitle
	}

	tags, err := encodeTags(video.Tags)
	if err != nil {
		return 0, err
	}

	now := time.Now().UTC()
	query := `
		INSERT INTO videos (title, src, tags, is_local, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query, video.Title, video.Src, tags, video.IsLocal, now, now)
	if err != nil {
		return 0, fmt.Errorf("failed to insert video: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read inserted id: %w", err)
	}

	video.ID = id
	video.CreatedAt = now
	video.UpdatedAt = now
	return id, nil
}

// UpdateTags replaces the tag list of a video.
//
// Returns an error wrapping [shared.ErrNotFound] when no row has the id.
func (r *VideoRepository) UpdateTags(ctx context.Context, id int64, tags []string) error {
	encoded, err := encodeTags(tags)
	if err != nil {
		return err
	}

	result, err := r.db.ExecContext(ctx,
		`UPDATE videos SET tags = ?, updated_at = ? WHERE id = ?`,
		encoded, time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to update tags: %w", err)
	}
	return requireAffected(result, id)
}

// Delete removes a video by ID
//
// Returns an error wrapping [shared.ErrNotFound] when no row has the id.
func (r *VideoRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM videos WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete video: %w", err)
	}
	return requireAffected(result, id)
}

// Count returns the number of stored videos.
func (r *VideoRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM videos`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count videos: %w", err)
	}
	return n, nil
}

func requireAffected(result sql.Result, id int64) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: video %d", shared.ErrNotFound, id)
	}
	return nil
}

func scanVideo(row rowScanner) (*models.Video, error) {
	var (
		video     models.Video
		tags      sql.NullString
		isLocal   sql.NullBool
		createdAt sql.NullTime
		updatedAt sql.NullTime
	)

	err := row.Scan(&video.ID, &video.Title, &video.Src, &tags, &isLocal, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan video: %w", err)
	}

	video.Tags = decodeTags(tags.String)
	video.IsLocal = isLocal.Bool
	if createdAt.Valid {
		video.CreatedAt = createdAt.Time
	}
	if updatedAt.Valid {
		video.UpdatedAt = updatedAt.Time
	}

	return &video, nil
}
