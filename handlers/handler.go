package handler

import (
	"context"

	"github.com/google/uuid"
	"github.com/krishkalaria12/imagehost/logger"
	"github.com/krishkalaria12/imagehost/metrics"
	"github.com/krishkalaria12/imagehost/models"
	"github.com/krishkalaria12/imagehost/storage"
	"github.com/krishkalaria12/imagehost/transform"
)

type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type ImageStore interface {
	Create(ctx context.Context, image *models.Image) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Image, error)
	ListByOwner(ctx context.Context, owner uuid.UUID, page, limit int) (*models.ImagePage, error)
	UpdateTransformation(ctx context.Context, image *models.Image) error
}

type TokenIssuer interface {
	Issue(userID string) (string, error)
}

type Transformer interface {
	Apply(src []byte, req transform.Request) (*transform.Result, error)
}

type Options struct {
	Users       UserStore
	Images      ImageStore
	Blobs       storage.Store
	Tokens      TokenIssuer
	Transformer Transformer
	Logger      *logger.Logger
	Metrics     *metrics.Metrics
	Environment string
}

// Handler serves the HTTP API. Each request works on its own copies of
// records so handlers share nothing but the injected stores.
type Handler struct {
	users       UserStore
	images      ImageStore
	blobs       storage.Store
	tokens      TokenIssuer
	transformer Transformer
	log         *logger.Logger
	metrics     *metrics.Metrics
	environment string
}

func New(opts Options) *Handler {
	log := opts.Logger
	if log == nil {
		log = logger.Discard()
	}
	transformer := opts.Transformer
	if transformer == nil {
		transformer = transform.NewPipeline()
	}

	return &Handler{
		users:       opts.Users,
		images:      opts.Images,
		blobs:       opts.Blobs,
		tokens:      opts.Tokens,
		transformer: transformer,
		log:         log,
		metrics:     opts.Metrics,
		environment: opts.Environment,
	}
}
