package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/intelliplan-api/internal/catalog"
	"github.com/noah-isme/intelliplan-api/internal/dto"
	"github.com/noah-isme/intelliplan-api/internal/models"
	appErrors "github.com/noah-isme/intelliplan-api/pkg/errors"
	"github.com/noah-isme/intelliplan-api/pkg/jobs"
	"github.com/noah-isme/intelliplan-api/pkg/storage"
)

const (
	reloadTriggerFile   = "file"
	reloadTriggerUpload = "upload"
	defaultCoursePage   = 20
)

type catalogLoader interface {
	LoadFile(path string) (models.Catalog, error)
}

type uploadStorage interface {
	SaveStream(filename string, r io.Reader, limit int64) (string, error)
	Delete(filename string) error
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

type backgroundQueue interface {
	Enqueue(job jobs.Job) error
}

// CatalogConfig locates the catalog file and bounds uploads.
type CatalogConfig struct {
	Path            string
	MaxUploadSize   int64
	UploadRetention time.Duration
}

// CatalogService loads, replaces and queries the course catalog.
type CatalogService struct {
	store      *catalog.Store
	loader     catalogLoader
	uploads    uploadStorage
	cache      *CacheService
	metrics    *MetricsService
	validator  *validator.Validate
	logger     *zap.Logger
	cfg        CatalogConfig
	background backgroundQueue
}

// NewCatalogService constructs a CatalogService.
func NewCatalogService(store *catalog.Store, loader catalogLoader, uploads uploadStorage, cache *CacheService, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger, cfg CatalogConfig) *CatalogService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogService{
		store:     store,
		loader:    loader,
		uploads:   uploads,
		cache:     cache,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		cfg:       cfg,
	}
}

// RunInBackground moves upload housekeeping onto q. Without a queue it runs inline.
func (s *CatalogService) RunInBackground(q backgroundQueue) {
	s.background = q
}

// Ready reports whether a catalog has been published.
func (s *CatalogService) Ready() bool {
	return s.store.Current() != nil
}

// Reload rebuilds the catalog from the configured path.
func (s *CatalogService) Reload(ctx context.Context) (*catalog.Snapshot, error) {
	if s.cfg.Path == "" {
		return nil, appErrors.Clone(appErrors.ErrCatalogUnavailable, "no catalog path configured")
	}
	parsed, err := s.loader.LoadFile(s.cfg.Path)
	if err != nil {
		s.metrics.RecordCatalogReload(reloadTriggerFile, err, 0)
		return nil, translateLoadError(err)
	}
	return s.publish(ctx, parsed, s.cfg.Path, reloadTriggerFile), nil
}

// Upload stores an uploaded catalog file and publishes it when it parses.
func (s *CatalogService) Upload(ctx context.Context, filename string, size int64, body io.Reader) (*dto.CatalogReloadResponse, error) {
	format, err := catalog.FormatFromFilename(filename)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnsupportedMedia.Code, appErrors.ErrUnsupportedMedia.Status, "only .csv and .xlsx catalogs are accepted")
	}
	if s.cfg.MaxUploadSize > 0 && size > s.cfg.MaxUploadSize {
		return nil, appErrors.Clone(appErrors.ErrPayloadTooLarge, fmt.Sprintf("catalog exceeds %d bytes", s.cfg.MaxUploadSize))
	}

	name := fmt.Sprintf("%s-%s", uuid.NewString(), sanitizeFilename(filename))
	path, err := s.uploads.SaveStream(name, body, s.cfg.MaxUploadSize)
	if err != nil {
		if errors.Is(err, storage.ErrTooLarge) {
			return nil, appErrors.Clone(appErrors.ErrPayloadTooLarge, fmt.Sprintf("catalog exceeds %d bytes", s.cfg.MaxUploadSize))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store catalog upload")
	}

	parsed, err := s.loader.LoadFile(path)
	if err != nil {
		s.metrics.RecordCatalogReload(reloadTriggerUpload, err, 0)
		if delErr := s.uploads.Delete(name); delErr != nil {
			s.logger.Warn("failed to remove rejected upload", zap.String("file", name), zap.Error(delErr))
		}
		return nil, translateLoadError(err)
	}

	snapshot := s.publish(ctx, parsed, filename, reloadTriggerUpload)
	s.schedulePrune()
	return &dto.CatalogReloadResponse{CatalogStats: snapshot.Stats(), Format: string(format)}, nil
}

// Stats describes the active catalog.
func (s *CatalogService) Stats(ctx context.Context) (models.CatalogStats, error) {
	snapshot := s.store.Current()
	if snapshot == nil {
		return models.CatalogStats{}, appErrors.ErrCatalogUnavailable
	}
	return snapshot.Stats(), nil
}

// ListCourses pages through course summaries sorted by code.
func (s *CatalogService) ListCourses(ctx context.Context, query dto.CourseListQuery) ([]models.CourseSummary, *models.Pagination, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, nil, appErrors.Invalid(err, "invalid course query")
	}
	snapshot := s.store.Current()
	if snapshot == nil {
		return nil, nil, appErrors.ErrCatalogUnavailable
	}

	page, limit := query.Page, query.Limit
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = defaultCoursePage
	}

	courses := snapshot.Courses(query.Search)
	total := len(courses)
	start := min((page-1)*limit, total)
	end := min(start+limit, total)

	return courses[start:end], &models.Pagination{Page: page, PageSize: limit, TotalCount: total}, nil
}

// GetCourse returns one course with its slots.
func (s *CatalogService) GetCourse(ctx context.Context, code string) (*models.CourseSummary, error) {
	snapshot := s.store.Current()
	if snapshot == nil {
		return nil, appErrors.ErrCatalogUnavailable
	}
	course, ok := snapshot.Course(strings.TrimSpace(code))
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("course %s not found", code))
	}
	return &course, nil
}

func (s *CatalogService) publish(ctx context.Context, parsed models.Catalog, source, trigger string) *catalog.Snapshot {
	previous := s.store.Current()
	snapshot := s.store.Replace(parsed, source)
	s.metrics.RecordCatalogReload(trigger, nil, len(parsed))
	if previous != nil {
		_ = s.cache.Invalidate(ctx, generateCachePrefix+":"+previous.Version+":*")
	}
	s.logger.Info("catalog published",
		zap.String("source", source),
		zap.String("trigger", trigger),
		zap.String("version", snapshot.Version),
		zap.Int("courses", len(parsed)),
		zap.Int("slots", parsed.SlotCount()),
	)
	return snapshot
}

func (s *CatalogService) schedulePrune() {
	if s.cfg.UploadRetention <= 0 {
		return
	}
	if s.background == nil {
		if err := s.pruneUploads(context.Background()); err != nil {
			s.logger.Warn("upload cleanup failed", zap.Error(err))
		}
		return
	}
	if err := s.background.Enqueue(jobs.Job{Name: "prune-catalog-uploads", Run: s.pruneUploads}); err != nil {
		s.logger.Warn("upload cleanup not scheduled", zap.Error(err))
	}
}

func (s *CatalogService) pruneUploads(ctx context.Context) error {
	deleted, err := s.uploads.CleanupOlderThan(s.cfg.UploadRetention)
	if err != nil {
		return fmt.Errorf("prune catalog uploads: %w", err)
	}
	if len(deleted) > 0 {
		s.logger.Info("old catalog uploads removed", zap.Strings("files", deleted))
	}
	return nil
}

func translateLoadError(err error) error {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return appErrors.Wrap(err, appErrors.ErrCatalogUnavailable.Code, appErrors.ErrCatalogUnavailable.Status, "catalog file not found")
	case errors.Is(err, catalog.ErrUnsupportedFormat):
		return appErrors.Wrap(err, appErrors.ErrUnsupportedMedia.Code, appErrors.ErrUnsupportedMedia.Status, "only .csv and .xlsx catalogs are accepted")
	case errors.Is(err, catalog.ErrMissingColumns), errors.Is(err, catalog.ErrNoHeader):
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
	default:
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "catalog file could not be parsed")
	}
}

func sanitizeFilename(name string) string {
	base := filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, base)
}
