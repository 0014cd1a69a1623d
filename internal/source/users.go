// Package source содержит клиенты внешних источников данных:
// API случайных пользователей и API изображений собак.
//
// Источники работают по принципу best-effort: при любой ошибке они
// возвращают пустой (не nil) срез и типизированную ошибку из пакета upstream.
package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/InQaaaaGit/userpet_api.git/internal/models"
	"github.com/InQaaaaGit/userpet_api.git/internal/upstream"
)

// Метки источников для логов и метрик
const (
	UsersSourceName  = "users"
	ImagesSourceName = "images"
)

// Getter выполняет GET запрос к внешнему API. Реализуется upstream.Client.
type Getter interface {
	Get(ctx context.Context, source, url string) ([]byte, error)
}

// randomUserResponse описывает ответ API случайных пользователей
type randomUserResponse struct {
	Results []json.RawMessage `json:"results"`
}

type randomUser struct {
	ID struct {
		Value string `json:"value"`
	} `json:"id"`
	Gender string `json:"gender"`
	Nat    string `json:"nat"`
	Name   struct {
		First string `json:"first"`
		Last  string `json:"last"`
	} `json:"name"`
	Email string `json:"email"`
	DOB   struct {
		Date string `json:"date"`
		Age  int    `json:"age"`
	} `json:"dob"`
	Phone string `json:"phone"`
}

// UserSource загружает пользователей из API случайных пользователей
type UserSource struct {
	client  Getter
	baseURL string
	seed    string
	logger  *zap.Logger
}

// NewUserSource создает источник пользователей.
// seed передается во внешний API, чтобы одинаковые запросы давали одинаковый набор данных.
func NewUserSource(client Getter, baseURL, seed string, logger *zap.Logger) *UserSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserSource{
		client:  client,
		baseURL: baseURL,
		seed:    seed,
		logger:  logger,
	}
}

// Fetch загружает count пользователей, при непустом nationality только указанной национальности.
// Невалидные записи отбрасываются. Ошибка возвращается вместе с пустым срезом.
func (s *UserSource) Fetch(ctx context.Context, count int, nationality string) ([]models.UserWithPet, error) {
	users := []models.UserWithPet{}

	requestURL, err := s.buildURL(count, nationality)
	if err != nil {
		return users, err
	}

	body, err := s.client.Get(ctx, UsersSourceName, requestURL)
	if err != nil {
		return users, fmt.Errorf("fetch users: %w", err)
	}

	var resp randomUserResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return users, fmt.Errorf("%w: decode users: %v", upstream.ErrMalformedPayload, err)
	}
	if resp.Results == nil {
		return users, fmt.Errorf("%w: users response has no results", upstream.ErrMalformedPayload)
	}

	for i, raw := range resp.Results {
		user, err := mapUser(raw)
		if err != nil {
			s.logger.Warn("Skipping malformed user record", zap.Int("index", i), zap.Error(err))
			continue
		}
		if !user.Valid() {
			s.logger.Debug("Skipping invalid user record", zap.Int("index", i), zap.String("id", user.ID))
			continue
		}
		users = append(users, user)
	}

	s.logger.Debug("Fetched users",
		zap.Int("requested", count),
		zap.Int("received", len(resp.Results)),
		zap.Int("valid", len(users)))
	return users, nil
}

// buildURL формирует адрес запроса вида <base>?results=N&seed=S[&nat=NAT]
func (s *UserSource) buildURL(count int, nationality string) (string, error) {
	u, err := url.Parse(s.baseURL)
	if err != nil {
		return "", fmt.Errorf("%w: invalid users base URL: %v", upstream.ErrUpstreamUnavailable, err)
	}

	q := u.Query()
	q.Set("results", strconv.Itoa(count))
	if s.seed != "" {
		q.Set("seed", s.seed)
	}
	if nat := strings.TrimSpace(nationality); nat != "" {
		q.Set("nat", strings.ToUpper(nat))
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func mapUser(raw json.RawMessage) (models.UserWithPet, error) {
	var ru randomUser
	if err := json.Unmarshal(raw, &ru); err != nil {
		return models.UserWithPet{}, err
	}
	return models.UserWithPet{
		ID:      strings.TrimSpace(ru.ID.Value),
		Gender:  ru.Gender,
		Country: ru.Nat,
		Name:    models.FullName(ru.Name.First, ru.Name.Last),
		Email:   ru.Email,
		DOB: models.DOB{
			Date: ru.DOB.Date,
			Age:  ru.DOB.Age,
		},
		Phone: ru.Phone,
	}, nil
}
