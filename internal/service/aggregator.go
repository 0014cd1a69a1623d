// Package service содержит бизнес-логику сервиса: объединение пользователей
// и изображений питомцев в итоговый список.
package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/InQaaaaGit/userpet_api.git/internal/metrics"
	"github.com/InQaaaaGit/userpet_api.git/internal/models"
)

// ErrAggregation возвращается при внутренней ошибке объединения данных.
// Это единственная ошибка агрегатора, которую HTTP слой превращает в ответ 5xx.
var ErrAggregation = errors.New("failed to aggregate users with pet images")

// UserFetcher загружает пользователей
type UserFetcher interface {
	Fetch(ctx context.Context, count int, nationality string) ([]models.UserWithPet, error)
}

// ImageFetcher загружает адреса изображений питомцев
type ImageFetcher interface {
	Fetch(ctx context.Context, count int) ([]string, error)
}

// CountLimits задает допустимый диапазон количества записей и значение по умолчанию
type CountLimits struct {
	Min     int
	Max     int
	Default int
}

// Normalize приводит запрошенное количество к допустимому диапазону:
// меньше минимума дает значение по умолчанию, больше максимума дает максимум.
func (l CountLimits) Normalize(count int) int {
	if count < l.Min {
		return l.Default
	}
	if count > l.Max {
		return l.Max
	}
	return count
}

// Aggregator объединяет пользователей с изображениями питомцев
type Aggregator struct {
	users   UserFetcher
	images  ImageFetcher
	limits  CountLimits
	logger  *zap.Logger
	metrics *metrics.Metrics
}

// NewAggregator создает агрегатор. metrics может быть nil.
func NewAggregator(users UserFetcher, images ImageFetcher, limits CountLimits, logger *zap.Logger, m *metrics.Metrics) *Aggregator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Aggregator{
		users:   users,
		images:  images,
		limits:  limits,
		logger:  logger,
		metrics: m,
	}
}

// Aggregate загружает пользователей и изображения и объединяет их попарно.
// Ошибки внешних источников не возвращаются: источник просто считается пустым.
// Ошибка возвращается только при сбое объединения и оборачивает ErrAggregation.
func (a *Aggregator) Aggregate(ctx context.Context, count int, nationality string) ([]models.UserWithPet, error) {
	normalized := a.limits.Normalize(count)
	if normalized != count {
		a.logger.Warn("Requested count is out of range, normalized",
			zap.Int("requested", count),
			zap.Int("normalized", normalized),
			zap.Int("min", a.limits.Min),
			zap.Int("max", a.limits.Max))
	}

	var (
		users  []models.UserWithPet
		images []string
	)

	// Оба запроса независимы, поэтому выполняются параллельно.
	// Ошибки источников не отменяют соседний запрос.
	var g errgroup.Group
	g.Go(func() error {
		var err error
		users, err = a.users.Fetch(ctx, normalized, nationality)
		if err != nil {
			a.logger.Warn("User source failed, continuing with no users", zap.Error(err))
			users = nil
		}
		return nil
	})
	g.Go(func() error {
		var err error
		images, err = a.images.Fetch(ctx, normalized)
		if err != nil {
			a.logger.Warn("Pet image source failed, continuing with no images", zap.Error(err))
			images = nil
		}
		return nil
	})
	_ = g.Wait()

	a.logger.Debug("Fetched sources",
		zap.Int("count", normalized),
		zap.String("nationality", nationality),
		zap.Int("users", len(users)),
		zap.Int("images", len(images)))

	result, err := pair(users, images)
	if err != nil {
		a.metrics.IncAggregationFailure()
		a.logger.Error("Error during user-pet aggregation", zap.Error(err))
		return nil, err
	}

	a.metrics.AddAggregated(len(result))
	return result, nil
}

// pair объединяет users[i] с images[i] для i < min(len(users), len(images)).
// Исходные срезы не изменяются.
func pair(users []models.UserWithPet, images []string) (result []models.UserWithPet, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = fmt.Errorf("%w: %v", ErrAggregation, r)
		}
	}()

	n := min(len(users), len(images))
	result = make([]models.UserWithPet, 0, n)
	for i := 0; i < n; i++ {
		u := users[i].WithPetImage(images[i])
		if u.PetImage == "" {
			return nil, fmt.Errorf("%w: user %q paired with empty image at index %d", ErrAggregation, u.ID, i)
		}
		result = append(result, u)
	}
	return result, nil
}
