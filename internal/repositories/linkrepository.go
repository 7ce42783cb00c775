package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/takore/linkcut/internal/database"
	"github.com/takore/linkcut/internal/model"
)

// Код ошибки PostgreSQL для нарушения уникального ограничения.
const uniqueViolationCode = "23505"

// LinkRepositoryInterface определяет методы репозитория ссылок.
type LinkRepositoryInterface interface {
	GetByCode(ctx context.Context, code string) (*model.Link, error)
	SearchByOriginPrefix(ctx context.Context, prefix string) ([]*model.Link, error)
	Insert(ctx context.Context, link *model.Link) error
	Update(ctx context.Context, link *model.Link) error
	Delete(ctx context.Context, id uuid.UUID) error
	IncrementClick(ctx context.Context, id uuid.UUID, now time.Time) error
	CodeExists(ctx context.Context, code string) (bool, error)
	Ping(ctx context.Context) error
}

// LinkRepository реализует LinkRepositoryInterface поверх PostgreSQL.
type LinkRepository struct {
	db *database.DB
}

// NewLinkRepository создаёт новый экземпляр LinkRepository.
func NewLinkRepository(db *database.DB) *LinkRepository {
	return &LinkRepository{db: db}
}

const linkColumns = `id, original_url, short_code, owner_id, created_at, updated_at, expires_at, is_active, click_count, last_used_at`

func scanLink(row pgx.Row) (*model.Link, error) {
	link := &model.Link{}
	err := row.Scan(
		&link.ID, &link.OriginalURL, &link.ShortCode, &link.OwnerID,
		&link.CreatedAt, &link.UpdatedAt, &link.ExpiresAt, &link.IsActive,
		&link.ClickCount, &link.LastUsedAt,
	)
	if err != nil {
		return nil, err
	}
	return link, nil
}

// GetByCode извлекает ссылку по короткому коду.
func (r *LinkRepository) GetByCode(ctx context.Context, code string) (*model.Link, error) {
	query := `SELECT ` + linkColumns + ` FROM links WHERE short_code = $1`
	link, err := scanLink(r.db.Pool.QueryRow(ctx, query, code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return link, nil
}

// Метасимволы LIKE в пользовательском запросе трактуются буквально.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// SearchByOriginPrefix возвращает ссылки, оригинальный URL которых начинается
// с prefix (без учёта регистра). Пустой результат — не ошибка.
func (r *LinkRepository) SearchByOriginPrefix(ctx context.Context, prefix string) ([]*model.Link, error) {
	query := `SELECT ` + linkColumns + ` FROM links
              WHERE lower(original_url) LIKE $1 || '%'
              ORDER BY created_at`
	rows, err := r.db.Pool.Query(ctx, query, likeEscaper.Replace(prefix))
	if err != nil {
		return nil, fmt.Errorf("failed to query links by prefix: %w", err)
	}
	defer rows.Close()

	var results []*model.Link
	for rows.Next() {
		link, err := scanLink(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		results = append(results, link)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return results, nil
}

// Insert сохраняет новую ссылку. Уникальность short_code обеспечивает
// уникальный индекс: при конфликте возвращается ErrDuplicateCode.
func (r *LinkRepository) Insert(ctx context.Context, link *model.Link) error {
	query := `INSERT INTO links (` + linkColumns + `)
              VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.db.Pool.Exec(ctx, query,
		link.ID, link.OriginalURL, link.ShortCode, link.OwnerID,
		link.CreatedAt, link.UpdatedAt, link.ExpiresAt, link.IsActive,
		link.ClickCount, link.LastUsedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateCode
		}
		return fmt.Errorf("database insert error: %w", err)
	}
	return nil
}

// Update перезаписывает изменяемые поля ссылки по её id.
func (r *LinkRepository) Update(ctx context.Context, link *model.Link) error {
	query := `UPDATE links
              SET original_url = $2, short_code = $3, expires_at = $4,
                  is_active = $5, updated_at = $6
              WHERE id = $1`
	tag, err := r.db.Pool.Exec(ctx, query,
		link.ID, link.OriginalURL, link.ShortCode, link.ExpiresAt,
		link.IsActive, link.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateCode
		}
		return fmt.Errorf("database update error: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete удаляет ссылку по id.
func (r *LinkRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM links WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("database delete error: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// IncrementClick атомарно увеличивает счётчик переходов и отмечает время
// последнего использования. Один UPDATE, без read-modify-write в приложении:
// конкурентные редиректы одного кода не теряют инкременты.
func (r *LinkRepository) IncrementClick(ctx context.Context, id uuid.UUID, now time.Time) error {
	query := `UPDATE links
              SET click_count = click_count + 1, last_used_at = $2
              WHERE id = $1`
	tag, err := r.db.Pool.Exec(ctx, query, id, now)
	if err != nil {
		return fmt.Errorf("database increment error: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// CodeExists сообщает, занят ли короткий код. Используется генератором как
// оптимистичная предварительная проверка; финальную уникальность гарантирует
// индекс при вставке.
func (r *LinkRepository) CodeExists(ctx context.Context, code string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM links WHERE short_code = $1)`
	if err := r.db.Pool.QueryRow(ctx, query, code).Scan(&exists); err != nil {
		return false, fmt.Errorf("database query error: %w", err)
	}
	return exists, nil
}

// Ping проверяет доступность базы данных.
func (r *LinkRepository) Ping(ctx context.Context) error {
	return r.db.Ping(ctx)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}
