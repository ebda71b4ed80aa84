package match

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/ignatzorin/lostfound-backend/internal/domain/entity"
	"github.com/ignatzorin/lostfound-backend/internal/domain/repository"
	"github.com/ignatzorin/lostfound-backend/internal/logger"
	"github.com/ignatzorin/lostfound-backend/internal/pkg/apperror"
	"github.com/ignatzorin/lostfound-backend/internal/validation"
)

const (
	DefaultMaxCandidates    = 50
	DefaultDescriptionLimit = 300
)

// ranker общая часть обоих сценариев: выборка кандидатов, вызов модели и фильтрация ответа.
type ranker struct {
	itemRepo         repository.ItemRepository
	matcher          repository.Matcher
	maxCandidates    int
	descriptionLimit int
}

func newRanker(itemRepo repository.ItemRepository, matcher repository.Matcher, maxCandidates, descriptionLimit int) ranker {
	if maxCandidates <= 0 {
		maxCandidates = DefaultMaxCandidates
	}
	if descriptionLimit <= 0 {
		descriptionLimit = DefaultDescriptionLimit
	}
	return ranker{
		itemRepo:         itemRepo,
		matcher:          matcher,
		maxCandidates:    maxCandidates,
		descriptionLimit: descriptionLimit,
	}
}

func (r ranker) rank(ctx context.Context, query repository.MatchQuery, excludeOwnerID *uuid.UUID) ([]*entity.Item, error) {
	if r.matcher == nil {
		return []*entity.Item{}, nil
	}

	candidates, err := r.itemRepo.FindMatchCandidates(ctx, query.Category, excludeOwnerID, r.maxCandidates)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return []*entity.Item{}, nil
	}

	byID := make(map[string]*entity.Item, len(candidates))
	prompt := make([]*entity.Item, len(candidates))
	for i, c := range candidates {
		byID[c.ID.String()] = c
		prompt[i] = r.truncated(c)
	}

	ids, err := r.matcher.RankFoundItems(ctx, query, prompt)
	if err != nil {
		logger.Log.WithError(err).WithField("candidates", len(candidates)).Warn("match: модель не вернула результат")
		return []*entity.Item{}, nil
	}

	result := make([]*entity.Item, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		id = strings.ToLower(id)
		item, ok := byID[id]
		if !ok {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		result = append(result, item)
	}
	return result, nil
}

// truncated возвращает копию вещи с укороченными описанием и приметами.
func (r ranker) truncated(item *entity.Item) *entity.Item {
	cp := *item
	cp.Description = truncateRunes(cp.Description, r.descriptionLimit)
	if cp.DistinguishingMarks != nil {
		marks := truncateRunes(*cp.DistinguishingMarks, r.descriptionLimit)
		cp.DistinguishingMarks = &marks
	}
	return &cp
}

func truncateRunes(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	return string([]rune(s)[:limit])
}

// SuggestMatchesUseCase подбирает найденные вещи для потерянной вещи владельца.
type SuggestMatchesUseCase struct {
	itemRepo repository.ItemRepository
	ranker   ranker
}

func NewSuggestMatchesUseCase(itemRepo repository.ItemRepository, matcher repository.Matcher, maxCandidates, descriptionLimit int) *SuggestMatchesUseCase {
	return &SuggestMatchesUseCase{
		itemRepo: itemRepo,
		ranker:   newRanker(itemRepo, matcher, maxCandidates, descriptionLimit),
	}
}

func (uc *SuggestMatchesUseCase) Execute(ctx context.Context, itemID, userID uuid.UUID) ([]*entity.Item, error) {
	item, err := uc.itemRepo.FindByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if !item.IsOwnedBy(userID) {
		return nil, apperror.ErrForbidden
	}
	if !item.IsLost() {
		return nil, apperror.New(apperror.ErrCodeBadRequest, "подбор доступен только для потерянных вещей")
	}
	if item.IsResolved() {
		return nil, apperror.ErrItemResolved
	}

	query := repository.MatchQuery{
		Name:        item.Name,
		Category:    item.Category,
		Description: item.Description,
		Location:    item.Location,
		Date:        item.Date.Format("2006-01-02"),
	}
	if item.DistinguishingMarks != nil {
		query.DistinguishingMarks = *item.DistinguishingMarks
	}

	return uc.ranker.rank(ctx, query, &userID)
}

// SearchInput описание потерянной вещи в свободной форме.
type SearchInput struct {
	Name        string
	Category    string
	Description string
	Location    string
}

// SearchMatchesUseCase ранжирует каталог найденных вещей по текстовому описанию без создания объявления.
type SearchMatchesUseCase struct {
	ranker ranker
}

func NewSearchMatchesUseCase(itemRepo repository.ItemRepository, matcher repository.Matcher, maxCandidates, descriptionLimit int) *SearchMatchesUseCase {
	return &SearchMatchesUseCase{ranker: newRanker(itemRepo, matcher, maxCandidates, descriptionLimit)}
}

func (uc *SearchMatchesUseCase) Execute(ctx context.Context, userID *uuid.UUID, input SearchInput) ([]*entity.Item, error) {
	description := strings.TrimSpace(input.Description)
	if err := validation.ValidateLength("описание", description, validation.MinItemDescriptionLength, validation.MaxItemDescriptionLength); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidateLength("место", strings.TrimSpace(input.Location), 0, validation.MaxLocationLength); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}

	query := repository.MatchQuery{
		Name:        strings.TrimSpace(input.Name),
		Category:    strings.TrimSpace(input.Category),
		Description: description,
		Location:    strings.TrimSpace(input.Location),
	}
	return uc.ranker.rank(ctx, query, userID)
}
