package application

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/AdityaShome/Secondhome-sub002/internal/domain/entity"
	repo "github.com/AdityaShome/Secondhome-sub002/internal/domain/repository"
	"github.com/AdityaShome/Secondhome-sub002/pkg/ai"
	"github.com/AdityaShome/Secondhome-sub002/pkg/storage"
)

const messCachePrefix = "messes"

type MessService struct {
	ListingDeps
	Repo repo.MessRepository
}

func NewMessService(r repo.MessRepository, deps ListingDeps) *MessService {
	return &MessService{ListingDeps: deps, Repo: r}
}

type MessInput struct {
	Name         string
	Description  string
	Address      string
	City         string
	Location     *entity.Location
	MonthlyPrice int64
	MealsPerDay  int
	MealTypes    string
	Menu         []entity.MenuDay
	Images       []string
}

type MessPatch struct {
	Name         *string
	Description  *string
	Address      *string
	City         *string
	Location     *entity.Location
	MonthlyPrice *int64
	MealsPerDay  *int
	MealTypes    *string
	Menu         []entity.MenuDay
}

func messDocument(m *entity.Mess) repo.ListingDocument {
	return repo.ListingDocument{
		ID:          m.ID.Hex(),
		Kind:        entity.KindMess,
		OwnerID:     m.OwnerID.Hex(),
		Title:       m.Name,
		Description: m.Description,
		City:        m.City,
		Address:     m.Address,
		Price:       m.MonthlyPrice,
		Status:      string(m.Status),
		Amenities:   []string{m.MealTypes},
		Location:    m.Location,
		UpdatedAt:   m.UpdatedAt.Format(time.RFC3339Nano),
	}
}

func messReviewInput(m *entity.Mess) ai.ListingInput {
	return ai.ListingInput{
		Kind:        string(entity.KindMess),
		Title:       m.Name,
		Description: m.Description,
		Address:     m.Address,
		City:        m.City,
		Price:       float64(m.MonthlyPrice),
		Amenities:   []string{m.MealTypes},
		ImageCount:  len(m.Images),
	}
}

func validMealTypes(v string) bool {
	return v == "veg" || v == "nonveg" || v == "both"
}

func (s *MessService) Create(ctx context.Context, actor Actor, in MessInput, meta RequestMeta) (*entity.Mess, error) {
	owner, err := parseID(actor.ID)
	if err != nil {
		return nil, ErrForbidden
	}
	if in.MonthlyPrice <= 0 {
		return nil, invalid("monthly_price must be positive")
	}
	if !validMealTypes(in.MealTypes) {
		return nil, invalid("meal_types must be veg, nonveg or both")
	}
	if in.MealsPerDay < 1 || in.MealsPerDay > 5 {
		return nil, invalid("meals_per_day must be between 1 and 5")
	}
	if len(in.Images) > storage.MaxListingImages {
		return nil, ErrTooManyImages
	}
	m := &entity.Mess{
		OwnerID:      owner,
		Name:         strings.TrimSpace(in.Name),
		Description:  strings.TrimSpace(in.Description),
		Address:      strings.TrimSpace(in.Address),
		City:         strings.TrimSpace(in.City),
		MonthlyPrice: in.MonthlyPrice,
		MealsPerDay:  in.MealsPerDay,
		MealTypes:    in.MealTypes,
		Menu:         in.Menu,
		Images:       in.Images,
		Status:       entity.ListingPending,
	}
	if in.Location != nil && !in.Location.IsZero() {
		m.Location = *in.Location
	} else {
		m.Location = s.geocode(ctx, m.Address, m.City)
	}
	if err := s.Repo.Create(ctx, m); err != nil {
		return nil, err
	}

	if s.Cfg.AIReviewEnabled {
		if rev := s.review(ctx, messReviewInput(m)); rev != nil {
			if err := s.Repo.SetAIReview(ctx, m.ID, *rev); err != nil {
				s.Logger.WithError(err).WithField("mess_id", m.ID.Hex()).Warn("store ai review failed")
			} else {
				m.AIReview = rev
			}
		}
	}
	s.index(ctx, messDocument(m))
	s.invalidate(ctx, messCachePrefix)
	s.notifyAdmins(ctx, m.Ref())
	s.Audit.Record(ctx, actor.ID, "mess.create", "mess:"+m.ID.Hex(), meta, nil)
	return m, nil
}

func (s *MessService) List(ctx context.Context, f repo.ListingFilter) (ListPage[entity.Mess], error) {
	f.Status = entity.ListingApproved
	f.OwnerID = nil
	return cachedList(ctx, &s.ListingDeps, messCachePrefix, f, func() ([]entity.Mess, int64, error) {
		return s.Repo.List(ctx, f)
	})
}

func (s *MessService) ListByStatus(ctx context.Context, status entity.ListingStatus, page repo.Page) ([]entity.Mess, int64, error) {
	return s.Repo.List(ctx, repo.ListingFilter{Status: status, Sort: repo.SortNewest, Page: page})
}

func (s *MessService) Mine(ctx context.Context, actor Actor, page repo.Page) ([]entity.Mess, int64, error) {
	owner, err := parseID(actor.ID)
	if err != nil {
		return nil, 0, ErrForbidden
	}
	return s.Repo.List(ctx, repo.ListingFilter{OwnerID: &owner, Sort: repo.SortNewest, Page: page})
}

func (s *MessService) Nearby(ctx context.Context, q NearbyQuery) ([]entity.Nearby[entity.Mess], error) {
	q, err := q.Normalize()
	if err != nil {
		return nil, err
	}
	items, err := s.Repo.ListInBox(ctx, q.Box(), entity.ListingApproved)
	if err != nil {
		return nil, err
	}
	return withinRadius(items, func(m entity.Mess) entity.Location { return m.Location }, q), nil
}

func (s *MessService) Search(ctx context.Context, q string, page repo.Page) ([]entity.Mess, int64, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, 0, invalid("q is required")
	}
	fallback := func() ([]entity.Mess, int64, error) {
		return s.Repo.List(ctx, repo.ListingFilter{Status: entity.ListingApproved, Q: q, Page: page})
	}
	if s.Index == nil {
		return fallback()
	}
	ids, total, err := s.Index.Search(ctx, entity.KindMess, q, page)
	if err != nil {
		s.Logger.WithError(err).WithField("q", q).Warn("search index query failed, using database")
		return fallback()
	}
	out := make([]entity.Mess, 0, len(ids))
	for _, id := range ids {
		oid, err := primitive.ObjectIDFromHex(id)
		if err != nil {
			continue
		}
		m, err := s.Repo.GetByID(ctx, oid)
		if err != nil || m.Status != entity.ListingApproved {
			continue
		}
		out = append(out, *m)
	}
	return out, total, nil
}

func (s *MessService) Get(ctx context.Context, id string, viewer *Actor) (*entity.Mess, error) {
	m, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.canView(viewer, m.Status, m.OwnerID) {
		return nil, ErrNotFound
	}
	return m, nil
}

func (s *MessService) load(ctx context.Context, id string) (*entity.Mess, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	m, err := s.Repo.GetByID(ctx, oid)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrNotFound
	}
	return m, err
}

func (s *MessService) loadManaged(ctx context.Context, actor Actor, id string) (*entity.Mess, error) {
	m, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.canManage(actor, m.OwnerID) {
		return nil, ErrForbidden
	}
	return m, nil
}

func (s *MessService) Update(ctx context.Context, actor Actor, id string, patch MessPatch, meta RequestMeta) (*entity.Mess, error) {
	m, err := s.loadManaged(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	c := repo.MessChanges{
		Name:         trimmed(patch.Name),
		Description:  trimmed(patch.Description),
		Address:      trimmed(patch.Address),
		City:         trimmed(patch.City),
		MonthlyPrice: patch.MonthlyPrice,
		MealsPerDay:  patch.MealsPerDay,
		MealTypes:    patch.MealTypes,
		Menu:         patch.Menu,
		Resubmit:     !actor.IsAdmin(),
	}
	if c.MonthlyPrice != nil && *c.MonthlyPrice <= 0 {
		return nil, invalid("monthly_price must be positive")
	}
	if c.MealsPerDay != nil && (*c.MealsPerDay < 1 || *c.MealsPerDay > 5) {
		return nil, invalid("meals_per_day must be between 1 and 5")
	}
	if c.MealTypes != nil && !validMealTypes(*c.MealTypes) {
		return nil, invalid("meal_types must be veg, nonveg or both")
	}
	switch {
	case patch.Location != nil && !patch.Location.IsZero():
		c.Location = patch.Location
	case changed(c.Address, m.Address) || changed(c.City, m.City):
		loc := s.geocode(ctx, valueOr(c.Address, m.Address), valueOr(c.City, m.City))
		c.Location = &loc
	}

	updated, err := s.Repo.Update(ctx, m.ID, c)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	s.index(ctx, messDocument(updated))
	s.invalidate(ctx, messCachePrefix)
	s.Audit.Record(ctx, actor.ID, "mess.update", "mess:"+updated.ID.Hex(), meta, map[string]any{"status": string(updated.Status)})
	return updated, nil
}

func (s *MessService) Delete(ctx context.Context, actor Actor, id string, meta RequestMeta) error {
	m, err := s.loadManaged(ctx, actor, id)
	if err != nil {
		return err
	}
	if err := s.ensureNoActiveBookings(ctx, m.ID); err != nil {
		return err
	}
	if err := s.Repo.Delete(ctx, m.ID); err != nil {
		return err
	}
	s.unindex(ctx, entity.KindMess, m.ID.Hex())
	s.invalidate(ctx, messCachePrefix)
	s.Audit.Record(ctx, actor.ID, "mess.delete", "mess:"+m.ID.Hex(), meta, nil)
	return nil
}

func (s *MessService) AddImages(ctx context.Context, actor Actor, id string, imgs []*storage.Image) ([]string, error) {
	m, err := s.loadManaged(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	urls, err := s.uploadImages(ctx, "messes", m.ID.Hex(), len(m.Images), imgs)
	if err != nil {
		return nil, err
	}
	if err := s.Repo.AddImages(ctx, m.ID, urls); err != nil {
		return nil, err
	}
	s.invalidate(ctx, messCachePrefix)
	return append(m.Images, urls...), nil
}

func (s *MessService) Moderate(ctx context.Context, actor Actor, id string, mod Moderation, meta RequestMeta) (*entity.Mess, error) {
	m, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	status, reason := entity.ListingApproved, ""
	if !mod.Approve {
		status, reason = entity.ListingRejected, strings.TrimSpace(mod.Reason)
		if reason == "" {
			return nil, invalid("reason is required")
		}
	}
	if err := s.Repo.SetStatus(ctx, m.ID, status, reason); err != nil {
		return nil, err
	}
	m.Status, m.RejectionReason = status, reason
	m.UpdatedAt = time.Now().UTC()

	s.index(ctx, messDocument(m))
	s.invalidate(ctx, messCachePrefix)
	s.notifyModeration(ctx, m.Ref(), reason)
	s.Audit.Record(ctx, actor.ID, "mess."+string(status), "mess:"+m.ID.Hex(), meta, map[string]any{"reason": reason})
	return m, nil
}

func (s *MessService) RunAIReview(ctx context.Context, id string) (*entity.AIReview, error) {
	m, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	rev := s.review(ctx, messReviewInput(m))
	if rev == nil {
		return nil, errors.New("ai review unavailable")
	}
	if err := s.Repo.SetAIReview(ctx, m.ID, *rev); err != nil {
		return nil, err
	}
	return rev, nil
}
