package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/intelliplan-api/internal/catalog"
	"github.com/noah-isme/intelliplan-api/internal/constraint"
	"github.com/noah-isme/intelliplan-api/internal/dto"
	"github.com/noah-isme/intelliplan-api/internal/models"
	"github.com/noah-isme/intelliplan-api/internal/scheduler"
	appErrors "github.com/noah-isme/intelliplan-api/pkg/errors"
)

const generateCachePrefix = "timetables:generate"

type catalogSnapshotter interface {
	Current() *catalog.Snapshot
}

// TimetableConfig bounds generation and result retention.
type TimetableConfig struct {
	MaxCourses int
	Memoize    bool
	ResultTTL  time.Duration
	CacheTTL   time.Duration
}

// TimetableService generates, ranks and filters timetables against the active catalog.
type TimetableService struct {
	catalogs  catalogSnapshotter
	cache     *CacheService
	metrics   *MetricsService
	results   *resultStore
	validator *validator.Validate
	logger    *zap.Logger
	cfg       TimetableConfig
}

// cachedGeneration is the Redis payload for one generate request.
type cachedGeneration struct {
	Schedules []models.Schedule `json:"schedules"`
	Stats     scheduler.Stats   `json:"stats"`
}

// NewTimetableService wires timetable dependencies.
func NewTimetableService(catalogs catalogSnapshotter, cache *CacheService, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger, cfg TimetableConfig) *TimetableService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxCourses <= 0 {
		cfg.MaxCourses = 8
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 30 * time.Minute
	}
	return &TimetableService{
		catalogs:  catalogs,
		cache:     cache,
		metrics:   metrics,
		results:   newResultStore(cfg.ResultTTL),
		validator: validate,
		logger:    logger,
		cfg:       cfg,
	}
}

// Generate enumerates every conflict-free timetable for the requested courses and keeps
// the result set for later filtering.
func (s *TimetableService) Generate(ctx context.Context, req dto.GenerateTimetableRequest) (*dto.GenerateTimetableResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Invalid(err, "invalid timetable generation payload")
	}
	if len(req.CourseCodes) > s.cfg.MaxCourses {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("at most %d courses can be scheduled at once", s.cfg.MaxCourses))
	}
	snapshot := s.catalogs.Current()
	if snapshot == nil {
		return nil, appErrors.ErrCatalogUnavailable
	}

	start := time.Now()
	generation, cached, err := s.search(ctx, snapshot, req)
	if err != nil {
		return nil, err
	}
	duration := time.Since(start)

	schedules := generation.Schedules
	rankOpts := scheduler.RankOptions{PreferMorning: req.PreferMorning}
	if req.Rank {
		schedules = scheduler.Rank(schedules, rankOpts)
	}
	set := s.results.Save(snapshot.Version, schedules)

	visible := schedules
	if req.Limit > 0 && len(visible) > req.Limit {
		visible = visible[:req.Limit]
	}
	scored := make([]dto.ScoredSchedule, 0, len(visible))
	for _, schedule := range visible {
		item := dto.ScoredSchedule{Schedule: schedule}
		if req.Rank {
			breakdown := scheduler.Score(schedule, rankOpts)
			item.Score = &breakdown
		}
		scored = append(scored, item)
	}

	s.logger.Info("timetables generated",
		zap.Strings("course_codes", req.CourseCodes),
		zap.Int("count", len(schedules)),
		zap.Bool("cached", cached),
		zap.Int("nodes_visited", generation.Stats.NodesVisited),
		zap.Int("memo_hits", generation.Stats.MemoHits),
		zap.Duration("duration", duration),
	)

	return &dto.GenerateTimetableResponse{
		ResultID:       set.ID,
		CatalogVersion: snapshot.Version,
		Count:          len(schedules),
		Ranked:         req.Rank,
		Cached:         cached,
		Schedules:      scored,
		Stats: dto.SearchStats{
			NodesVisited: generation.Stats.NodesVisited,
			MemoHits:     generation.Stats.MemoHits,
			MemoEntries:  generation.Stats.MemoEntries,
			DurationMs:   float64(duration.Microseconds()) / 1000,
		},
		ExpiresAt: set.ExpiresAt,
	}, nil
}

// search runs the backtracking scheduler, consulting the cache keyed by catalog version.
func (s *TimetableService) search(ctx context.Context, snapshot *catalog.Snapshot, req dto.GenerateTimetableRequest) (cachedGeneration, bool, error) {
	key, err := HashKey(generateCachePrefix+":"+snapshot.Version, struct {
		Codes       []string            `json:"codes"`
		Preferences map[string][]string `json:"preferences"`
	}{req.CourseCodes, req.SlotPreferences})
	if err != nil {
		return cachedGeneration{}, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to build cache key")
	}

	var generation cachedGeneration
	if s.cache.Get(ctx, key, &generation) {
		return generation, true, nil
	}

	start := time.Now()
	schedules, stats, err := scheduler.Generate(snapshot.Catalog, req.CourseCodes, req.SlotPreferences, scheduler.Options{Memoize: s.cfg.Memoize})
	if err != nil {
		var notFound *scheduler.CourseNotFoundError
		if errors.As(err, &notFound) {
			return cachedGeneration{}, false, appErrors.Wrap(err, appErrors.ErrCourseNotFound.Code, appErrors.ErrCourseNotFound.Status,
				fmt.Sprintf("course %s not found in catalog", notFound.Code))
		}
		return cachedGeneration{}, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to generate timetables")
	}
	s.metrics.ObserveSearch(time.Since(start), stats, len(schedules))

	generation = cachedGeneration{Schedules: schedules, Stats: stats}
	_ = s.cache.Set(ctx, key, generation, s.cfg.CacheTTL)
	return generation, false, nil
}

// Filter applies the constraints detected in the request text to a stored result set or
// to the schedules supplied inline. Blank text keeps every schedule.
func (s *TimetableService) Filter(ctx context.Context, req dto.FilterTimetablesRequest) (*dto.FilterTimetablesResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Invalid(err, "invalid filter payload")
	}

	if req.ResultID == "" && len(req.Schedules) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "result_id or at least one timetable must be provided")
	}

	schedules := req.Schedules
	if req.ResultID != "" {
		set, ok := s.results.Get(req.ResultID)
		if !ok {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "result set not found or expired")
		}
		schedules = set.Schedules
	}
	constraints := []models.Constraint{}
	filtered := schedules
	if strings.TrimSpace(req.ConstraintText) != "" {
		constraints = constraint.Detect(req.ConstraintText)
		filtered = constraint.Apply(schedules, constraints)
	}
	s.metrics.ObserveFilter(len(schedules), len(filtered))

	s.logger.Debug("timetables filtered",
		zap.String("result_id", req.ResultID),
		zap.Int("before", len(schedules)),
		zap.Int("after", len(filtered)),
		zap.Int("constraints", len(constraints)),
	)

	count := len(filtered)
	if req.Limit > 0 && len(filtered) > req.Limit {
		filtered = filtered[:req.Limit]
	}
	return &dto.FilterTimetablesResponse{
		Schedules:          filtered,
		ConstraintsApplied: constraints,
		Count:              count,
		TotalBefore:        len(schedules),
	}, nil
}

// Detect interprets free text without filtering anything.
func (s *TimetableService) Detect(ctx context.Context, req dto.DetectConstraintsRequest) ([]models.Constraint, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Invalid(err, "invalid constraint text")
	}
	return constraint.Detect(req.Text), nil
}
