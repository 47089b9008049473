package worksheet

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/neumathe/kousuan/catalog"
	"github.com/neumathe/kousuan/engine"
	"github.com/neumathe/kousuan/internal/platform/logger"
)

// Service 组卷并保存练习卷
type Service struct {
	eng      *engine.Engine
	cat      *catalog.Catalog
	store    Store
	log      *logger.Logger
	salt     string
	maxCount int

	now   func() time.Time
	newID func() string
}

type Options struct {
	// SeedSalt 与请求 seed 一起派生随机源
	SeedSalt string
	// MaxCount 单卷题量上限，<= 0 表示不限
	MaxCount int
}

func NewService(eng *engine.Engine, cat *catalog.Catalog, store Store, log *logger.Logger, opts Options) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		eng:      eng,
		cat:      cat,
		store:    store,
		log:      log.With("service", "worksheet"),
		salt:     opts.SeedSalt,
		maxCount: opts.MaxCount,
		now:      time.Now,
		newID:    func() string { return uuid.New().String() },
	}
}

// Create 校验请求、出题并保存，返回保存后的练习卷
func (s *Service) Create(ctx context.Context, req Request) (*Worksheet, error) {
	req, grade, err := s.normalize(req)
	if err != nil {
		return nil, err
	}

	eng := s.eng
	if req.Seed != "" {
		eng = eng.WithSource(engine.SeededSource(req.Seed, s.salt))
	}

	var (
		alloc []engine.AllocationEntry
		qs    []engine.Question
	)
	if req.Smart {
		res, err := eng.SmartMix(req.GradeKey, req.Count)
		if err != nil {
			return nil, err
		}
		alloc, qs = res.Allocation, res.Questions
	} else {
		alloc, qs, err = s.manual(eng, grade, req)
		if err != nil {
			return nil, err
		}
	}

	ws := &Worksheet{
		ID:          s.newID(),
		Title:       req.Title,
		GradeKey:    grade.Key,
		GradeName:   grade.Name,
		Columns:     req.Columns,
		ShowAnswers: req.ShowAnswers,
		Seed:        req.Seed,
		CreatedAt:   s.now().UTC(),
		Requested:   req.Count,
		Shortfall:   req.Count - len(qs),
		Allocation:  alloc,
		Questions:   qs,
	}
	if err := s.store.Save(ctx, ws); err != nil {
		return nil, fmt.Errorf("save worksheet: %w", err)
	}
	if ws.Shortfall > 0 {
		s.log.Warn("worksheet short", "id", ws.ID, "grade", ws.GradeKey, "requested", ws.Requested, "shortfall", ws.Shortfall)
	}
	s.log.Debug("worksheet created", "id", ws.ID, "grade", ws.GradeKey, "questions", len(ws.Questions))
	return ws, nil
}

// Get 按 ID 取回练习卷
func (s *Service) Get(ctx context.Context, id string) (*Worksheet, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return s.store.Get(ctx, id)
}

func (s *Service) normalize(req Request) (Request, catalog.Grade, error) {
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		req.Title = DefaultTitle
	}
	if req.Columns == 0 {
		req.Columns = DefaultColumns
	}
	if req.Columns < MinColumns || req.Columns > MaxColumns {
		return req, catalog.Grade{}, fmt.Errorf("%w: columns must be between %d and %d", ErrInvalidRequest, MinColumns, MaxColumns)
	}
	if req.Count <= 0 {
		return req, catalog.Grade{}, fmt.Errorf("%w: count must be positive", ErrInvalidRequest)
	}
	if s.maxCount > 0 && req.Count > s.maxCount {
		return req, catalog.Grade{}, fmt.Errorf("%w: count %d exceeds limit %d", ErrInvalidRequest, req.Count, s.maxCount)
	}
	grade, ok := s.cat.Grade(req.GradeKey)
	if !ok {
		return req, catalog.Grade{}, fmt.Errorf("%w: %s", engine.ErrCategoryNotFound, req.GradeKey)
	}
	if !req.Smart && len(req.Categories) == 0 {
		return req, catalog.Grade{}, fmt.Errorf("%w: categories are required unless smart is set", ErrInvalidRequest)
	}
	return req, grade, nil
}

// manual 在所选题型间平均分配题量，余数给靠前的题型，拼接后整体打乱
func (s *Service) manual(eng *engine.Engine, grade catalog.Grade, req Request) ([]engine.AllocationEntry, []engine.Question, error) {
	k := len(req.Categories)
	per, extra := req.Count/k, req.Count%k
	alloc := make([]engine.AllocationEntry, 0, k)
	qs := make([]engine.Question, 0, req.Count)
	for i, id := range req.Categories {
		cat, ok := s.cat.Category(grade.Key, id)
		if !ok {
			return nil, nil, fmt.Errorf("%w: %s/%s", engine.ErrCategoryNotFound, grade.Key, id)
		}
		n := per
		if i < extra {
			n++
		}
		alloc = append(alloc, engine.AllocationEntry{
			CategoryID:   cat.ID,
			CategoryName: cat.Name,
			Count:        n,
			Weight:       cat.EffectiveWeight(),
		})
		if n == 0 {
			continue
		}
		batch, err := eng.GenerateQuestions(grade.Key, id, n)
		if err != nil {
			return nil, nil, err
		}
		qs = append(qs, batch...)
	}
	eng.ShuffleQuestions(qs)
	return alloc, qs, nil
}
