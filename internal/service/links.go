package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/takore/linkcut/internal/auth"
	"github.com/takore/linkcut/internal/model"
	"github.com/takore/linkcut/internal/repositories"
	"github.com/takore/linkcut/internal/util"
	"go.uber.org/zap"
)

// Repository определяет методы хранилища ссылок, нужные сервису.
type Repository interface {
	GetByCode(ctx context.Context, code string) (*model.Link, error)
	SearchByOriginPrefix(ctx context.Context, prefix string) ([]*model.Link, error)
	Insert(ctx context.Context, link *model.Link) error
	Update(ctx context.Context, link *model.Link) error
	Delete(ctx context.Context, id uuid.UUID) error
	IncrementClick(ctx context.Context, id uuid.UUID, now time.Time) error
	CodeExists(ctx context.Context, code string) (bool, error)
	Ping(ctx context.Context) error
}

// RedirectCache определяет методы кэша горячих редиректов.
type RedirectCache interface {
	Get(ctx context.Context, code string) (*model.CacheEntry, error)
	Set(ctx context.Context, code string, entry *model.CacheEntry) error
	Invalidate(ctx context.Context, codes ...string) error
}

// LinkService реализует бизнес-логику сервиса коротких ссылок.
type LinkService struct {
	repo       Repository
	cache      RedirectCache // может быть nil, тогда кэш выключен
	gen        *util.Generator
	logger     *zap.Logger
	baseURL    string
	codeLength int
}

// NewLinkService создаёт сервис ссылок.
func NewLinkService(repo Repository, cache RedirectCache, gen *util.Generator, logger *zap.Logger, baseURL string, codeLength int) *LinkService {
	return &LinkService{
		repo:       repo,
		cache:      cache,
		gen:        gen,
		logger:     logger,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		codeLength: codeLength,
	}
}

// Create создаёт ссылку. Алиас, если задан, валидируется и проверяется на
// занятость; иначе код генерируется. Гонку двух конкурентных созданий с
// одинаковым кодом разрешает уникальный индекс: для сгенерированного кода
// выполняется одна повторная генерация, для алиаса сразу ErrAliasTaken.
func (s *LinkService) Create(ctx context.Context, req model.ShortenRequest, principal *auth.Principal) (*model.LinkInfo, error) {
	if err := validateOriginal(req.OriginalURL); err != nil {
		return nil, err
	}

	var code string
	custom := req.CustomAlias != ""
	if custom {
		if !util.ValidCode(req.CustomAlias) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidAlias, req.CustomAlias)
		}
		taken, err := s.repo.CodeExists(ctx, req.CustomAlias)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, ErrAliasTaken
		}
		code = req.CustomAlias
	} else {
		generated, err := s.gen.Unique(ctx, s.codeLength)
		if err != nil {
			return nil, err
		}
		code = generated
	}

	now := time.Now().UTC()
	link := &model.Link{
		ID:          uuid.New(),
		OriginalURL: req.OriginalURL,
		ShortCode:   code,
		CreatedAt:   now,
		UpdatedAt:   now,
		ExpiresAt:   req.ExpiresAt,
		IsActive:    true,
	}
	if principal != nil {
		owner := principal.ID
		link.OwnerID = &owner
	}

	err := s.repo.Insert(ctx, link)
	if errors.Is(err, repositories.ErrDuplicateCode) {
		if custom {
			return nil, ErrAliasTaken
		}
		// Кто-то успел занять сгенерированный код между проверкой и вставкой.
		regenerated, genErr := s.gen.Unique(ctx, s.codeLength)
		if genErr != nil {
			return nil, genErr
		}
		link.ShortCode = regenerated
		err = s.repo.Insert(ctx, link)
		if errors.Is(err, repositories.ErrDuplicateCode) {
			return nil, ErrGenerationExhausted
		}
	}
	if err != nil {
		return nil, err
	}

	info := s.view(link)
	return &info, nil
}

// Resolve возвращает оригинальный URL по коду и учитывает переход.
// Срок действия проверяется на каждый запрос; истёкшая ссылка отклоняется
// как ErrExpired без инкремента счётчика.
func (s *LinkService) Resolve(ctx context.Context, code string) (string, error) {
	now := time.Now().UTC()

	if s.cache != nil {
		entry, err := s.cache.Get(ctx, code)
		if err != nil {
			s.logger.Warn("redirect cache read failed", zap.Error(err))
		} else if entry != nil {
			err := s.repo.IncrementClick(ctx, entry.ID, now)
			if err == nil {
				return entry.OriginalURL, nil
			}
			if !errors.Is(err, repositories.ErrNotFound) {
				return "", err
			}
			// Запись исчезла из БД, кэш отстал.
			s.invalidate(ctx, code)
		}
	}

	link, err := s.repo.GetByCode(ctx, code)
	if err != nil {
		return "", err
	}
	if link.ExpiresAt != nil && link.ExpiresAt.Before(now) {
		return "", ErrExpired
	}
	if err := s.repo.IncrementClick(ctx, link.ID, now); err != nil {
		return "", err
	}

	// Кэшируются только бессрочные ссылки: для них попадание в кэш не может
	// обойти проверку срока действия.
	if s.cache != nil && link.ExpiresAt == nil {
		entry := &model.CacheEntry{ID: link.ID, OriginalURL: link.OriginalURL}
		if err := s.cache.Set(ctx, code, entry); err != nil {
			s.logger.Warn("redirect cache write failed", zap.Error(err))
		}
	}

	return link.OriginalURL, nil
}

// Delete удаляет ссылку после проверки владения.
func (s *LinkService) Delete(ctx context.Context, code string, principal *auth.Principal) error {
	link, err := s.repo.GetByCode(ctx, code)
	if err != nil {
		return err
	}
	if err := canMutate(link, principal); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, link.ID); err != nil {
		return err
	}
	s.invalidate(ctx, code)
	return nil
}

// Update применяет частичное обновление после проверки владения.
func (s *LinkService) Update(ctx context.Context, code string, patch model.UpdateRequest, principal *auth.Principal) (*model.LinkInfo, error) {
	link, err := s.repo.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if err := canMutate(link, principal); err != nil {
		return nil, err
	}

	if patch.OriginalURL != nil {
		if err := validateOriginal(*patch.OriginalURL); err != nil {
			return nil, err
		}
		link.OriginalURL = *patch.OriginalURL
	}
	if patch.CustomAlias != nil && *patch.CustomAlias != link.ShortCode {
		alias := *patch.CustomAlias
		if !util.ValidCode(alias) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidAlias, alias)
		}
		taken, err := s.repo.CodeExists(ctx, alias)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, ErrAliasTaken
		}
		link.ShortCode = alias
	}
	if patch.ExpiresSet {
		link.ExpiresAt = patch.ExpiresAt
	}
	link.UpdatedAt = time.Now().UTC()

	err = s.repo.Update(ctx, link)
	if errors.Is(err, repositories.ErrDuplicateCode) {
		// Проиграли гонку за алиас другой вставке.
		return nil, ErrAliasTaken
	}
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, code, link.ShortCode)

	info := s.view(link)
	return &info, nil
}

// Search возвращает ссылки, оригинальный URL которых начинается с запроса.
// Запрос нормализуется: хвостовой слэш отрезается, регистр опускается.
// Пустой результат — это пустой список, а не ошибка.
func (s *LinkService) Search(ctx context.Context, original string) ([]model.LinkInfo, error) {
	prefix := strings.ToLower(strings.TrimRight(original, "/"))

	links, err := s.repo.SearchByOriginPrefix(ctx, prefix)
	if err != nil {
		return nil, err
	}

	results := make([]model.LinkInfo, 0, len(links))
	for _, link := range links {
		results = append(results, s.view(link))
	}
	return results, nil
}

// Stats возвращает статистику ссылки. Статистика ссылки с владельцем
// доступна только владельцу; статистика анонимной ссылки открыта.
func (s *LinkService) Stats(ctx context.Context, code string, principal *auth.Principal) (*model.LinkStats, error) {
	link, err := s.repo.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if link.OwnerID != nil && (principal == nil || principal.ID != *link.OwnerID) {
		return nil, fmt.Errorf("%w: not enough permissions", ErrForbidden)
	}

	return &model.LinkStats{
		IsActive:    link.IsActive,
		OriginalURL: link.OriginalURL,
		CreatedAt:   link.CreatedAt,
		ExpiresAt:   link.ExpiresAt,
		ClickCount:  link.ClickCount,
		LastUsedAt:  link.LastUsedAt,
	}, nil
}

// Ping проверяет доступность хранилища.
func (s *LinkService) Ping(ctx context.Context) error {
	return s.repo.Ping(ctx)
}

func (s *LinkService) view(link *model.Link) model.LinkInfo {
	return model.LinkInfo{
		ShortURL:    s.baseURL + "/" + link.ShortCode,
		OriginalURL: link.OriginalURL,
		ExpiresAt:   link.ExpiresAt,
	}
}

func (s *LinkService) invalidate(ctx context.Context, codes ...string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, codes...); err != nil {
		s.logger.Warn("redirect cache invalidation failed", zap.Error(err))
	}
}

// canMutate проверяет право на изменение или удаление ссылки: анонимные
// ссылки не меняет никто, остальные — только владелец.
func canMutate(link *model.Link, principal *auth.Principal) error {
	if link.OwnerID == nil {
		return fmt.Errorf("%w: anonymous links cannot be modified", ErrForbidden)
	}
	if principal == nil || principal.ID != *link.OwnerID {
		return fmt.Errorf("%w: you are not the owner of this link", ErrForbidden)
	}
	return nil
}

func validateOriginal(original string) error {
	parsed, err := url.ParseRequestURI(original)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("%w: %q", ErrInvalidURL, original)
	}
	return nil
}
