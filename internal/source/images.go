package source

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/InQaaaaGit/userpet_api.git/internal/upstream"
)

// PetImageSource загружает адреса изображений из API случайных собак
type PetImageSource struct {
	client  Getter
	baseURL string
	logger  *zap.Logger
}

// NewPetImageSource создает источник изображений
func NewPetImageSource(client Getter, baseURL string, logger *zap.Logger) *PetImageSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PetImageSource{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger,
	}
}

// Fetch запрашивает count изображений. Внешний API может вернуть меньше.
// Поле message допускается как строкой, так и массивом строк.
func (s *PetImageSource) Fetch(ctx context.Context, count int) ([]string, error) {
	images := []string{}

	body, err := s.client.Get(ctx, ImagesSourceName, s.baseURL+"/"+strconv.Itoa(count))
	if err != nil {
		return images, fmt.Errorf("fetch images: %w", err)
	}

	if !gjson.ValidBytes(body) {
		return images, fmt.Errorf("%w: images response is not valid JSON", upstream.ErrMalformedPayload)
	}

	message := gjson.GetBytes(body, "message")
	switch {
	case message.IsArray():
		for _, item := range message.Array() {
			if item.Type != gjson.String || strings.TrimSpace(item.Str) == "" {
				continue
			}
			images = append(images, item.Str)
		}
	case message.Type == gjson.String:
		if strings.TrimSpace(message.Str) != "" {
			images = append(images, message.Str)
		}
	default:
		return images, fmt.Errorf("%w: unexpected images message %q", upstream.ErrMalformedPayload, message.Type.String())
	}

	s.logger.Debug("Fetched pet images", zap.Int("requested", count), zap.Int("received", len(images)))
	return images, nil
}
