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

const propertyCachePrefix = "properties"

type PropertyService struct {
	ListingDeps
	Repo repo.PropertyRepository
}

func NewPropertyService(r repo.PropertyRepository, deps ListingDeps) *PropertyService {
	return &PropertyService{ListingDeps: deps, Repo: r}
}

type PropertyInput struct {
	Title          string
	Description    string
	Type           entity.PropertyType
	Gender         string
	Address        string
	City           string
	State          string
	Pincode        string
	Location       *entity.Location
	Price          int64
	Deposit        int64
	Amenities      []string
	Images         []string
	RoomsAvailable int
}

// PropertyPatch holds the fields of a partial update. Nil means unchanged.
type PropertyPatch struct {
	Title          *string
	Description    *string
	Type           *entity.PropertyType
	Gender         *string
	Address        *string
	City           *string
	State          *string
	Pincode        *string
	Location       *entity.Location
	Price          *int64
	Deposit        *int64
	Amenities      []string
	RoomsAvailable *int
}

func propertyDocument(p *entity.Property) repo.ListingDocument {
	return repo.ListingDocument{
		ID:          p.ID.Hex(),
		Kind:        entity.KindProperty,
		OwnerID:     p.OwnerID.Hex(),
		Title:       p.Title,
		Description: p.Description,
		City:        p.City,
		Address:     p.Address,
		Price:       p.Price,
		Status:      string(p.Status),
		Amenities:   p.Amenities,
		Location:    p.Location,
		UpdatedAt:   p.UpdatedAt.Format(time.RFC3339Nano),
	}
}

func propertyReviewInput(p *entity.Property) ai.ListingInput {
	return ai.ListingInput{
		Kind:        string(entity.KindProperty),
		Title:       p.Title,
		Description: p.Description,
		Address:     p.Address,
		City:        p.City,
		Price:       float64(p.Price),
		Amenities:   p.Amenities,
		ImageCount:  len(p.Images),
	}
}

func (s *PropertyService) Create(ctx context.Context, actor Actor, in PropertyInput, meta RequestMeta) (*entity.Property, error) {
	owner, err := parseID(actor.ID)
	if err != nil {
		return nil, ErrForbidden
	}
	if in.Price <= 0 {
		return nil, invalid("price must be positive")
	}
	if in.Deposit < 0 || in.RoomsAvailable < 0 {
		return nil, invalid("deposit and rooms must not be negative")
	}
	if len(in.Images) > storage.MaxListingImages {
		return nil, ErrTooManyImages
	}
	p := &entity.Property{
		OwnerID:        owner,
		Title:          strings.TrimSpace(in.Title),
		Description:    strings.TrimSpace(in.Description),
		Type:           in.Type,
		Gender:         in.Gender,
		Address:        strings.TrimSpace(in.Address),
		City:           strings.TrimSpace(in.City),
		State:          strings.TrimSpace(in.State),
		Pincode:        strings.TrimSpace(in.Pincode),
		Price:          in.Price,
		Deposit:        in.Deposit,
		Amenities:      cleanList(in.Amenities),
		Images:         in.Images,
		RoomsAvailable: in.RoomsAvailable,
		Status:         entity.ListingPending,
	}
	if in.Location != nil && !in.Location.IsZero() {
		p.Location = *in.Location
	} else {
		p.Location = s.geocode(ctx, p.Address, p.City, p.State, p.Pincode)
	}
	if err := s.Repo.Create(ctx, p); err != nil {
		return nil, err
	}

	if s.Cfg.AIReviewEnabled {
		if rev := s.review(ctx, propertyReviewInput(p)); rev != nil {
			if err := s.Repo.SetAIReview(ctx, p.ID, *rev); err != nil {
				s.Logger.WithError(err).WithField("property_id", p.ID.Hex()).Warn("store ai review failed")
			} else {
				p.AIReview = rev
			}
		}
	}
	s.index(ctx, propertyDocument(p))
	s.invalidate(ctx, propertyCachePrefix)
	s.notifyAdmins(ctx, p.Ref())
	s.Audit.Record(ctx, actor.ID, "property.create", "property:"+p.ID.Hex(), meta, nil)
	return p, nil
}

// List returns approved properties matching f.
func (s *PropertyService) List(ctx context.Context, f repo.ListingFilter) (ListPage[entity.Property], error) {
	f.Status = entity.ListingApproved
	f.OwnerID = nil
	return cachedList(ctx, &s.ListingDeps, propertyCachePrefix, f, func() ([]entity.Property, int64, error) {
		return s.Repo.List(ctx, f)
	})
}

// ListByStatus is the moderation queue view. It bypasses the cache.
func (s *PropertyService) ListByStatus(ctx context.Context, status entity.ListingStatus, page repo.Page) ([]entity.Property, int64, error) {
	return s.Repo.List(ctx, repo.ListingFilter{Status: status, Sort: repo.SortNewest, Page: page})
}

func (s *PropertyService) Mine(ctx context.Context, actor Actor, page repo.Page) ([]entity.Property, int64, error) {
	owner, err := parseID(actor.ID)
	if err != nil {
		return nil, 0, ErrForbidden
	}
	return s.Repo.List(ctx, repo.ListingFilter{OwnerID: &owner, Sort: repo.SortNewest, Page: page})
}

func (s *PropertyService) Nearby(ctx context.Context, q NearbyQuery) ([]entity.Nearby[entity.Property], error) {
	q, err := q.Normalize()
	if err != nil {
		return nil, err
	}
	items, err := s.Repo.ListInBox(ctx, q.Box(), entity.ListingApproved)
	if err != nil {
		return nil, err
	}
	return withinRadius(items, func(p entity.Property) entity.Location { return p.Location }, q), nil
}

// Search uses the search index when configured and the Mongo text filter otherwise.
func (s *PropertyService) Search(ctx context.Context, q string, page repo.Page) ([]entity.Property, int64, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, 0, invalid("q is required")
	}
	fallback := func() ([]entity.Property, int64, error) {
		return s.Repo.List(ctx, repo.ListingFilter{Status: entity.ListingApproved, Q: q, Page: page})
	}
	if s.Index == nil {
		return fallback()
	}
	ids, total, err := s.Index.Search(ctx, entity.KindProperty, q, page)
	if err != nil {
		s.Logger.WithError(err).WithField("q", q).Warn("search index query failed, using database")
		return fallback()
	}
	out := make([]entity.Property, 0, len(ids))
	for _, id := range ids {
		oid, err := primitive.ObjectIDFromHex(id)
		if err != nil {
			continue
		}
		p, err := s.Repo.GetByID(ctx, oid)
		if err != nil || p.Status != entity.ListingApproved {
			continue
		}
		out = append(out, *p)
	}
	return out, total, nil
}

func (s *PropertyService) Get(ctx context.Context, id string, viewer *Actor) (*entity.Property, error) {
	p, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.canView(viewer, p.Status, p.OwnerID) {
		return nil, ErrNotFound
	}
	return p, nil
}

func (s *PropertyService) load(ctx context.Context, id string) (*entity.Property, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	p, err := s.Repo.GetByID(ctx, oid)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrNotFound
	}
	return p, err
}

func (s *PropertyService) loadManaged(ctx context.Context, actor Actor, id string) (*entity.Property, error) {
	p, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.canManage(actor, p.OwnerID) {
		return nil, ErrForbidden
	}
	return p, nil
}

// Update applies patch. An owner editing an approved listing sends it back to review.
func (s *PropertyService) Update(ctx context.Context, actor Actor, id string, patch PropertyPatch, meta RequestMeta) (*entity.Property, error) {
	p, err := s.loadManaged(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	c := repo.PropertyChanges{
		Title:       trimmed(patch.Title),
		Description: trimmed(patch.Description),
		Type:        patch.Type,
		Gender:      trimmed(patch.Gender),
		Address:     trimmed(patch.Address),
		City:        trimmed(patch.City),
		State:       trimmed(patch.State),
		Pincode:     trimmed(patch.Pincode),
		Price:       patch.Price,
		Deposit:     patch.Deposit,
		Resubmit:    !actor.IsAdmin(),
	}
	if c.Price != nil && *c.Price <= 0 {
		return nil, invalid("price must be positive")
	}
	if c.Deposit != nil && *c.Deposit < 0 {
		return nil, invalid("deposit must not be negative")
	}
	if patch.RoomsAvailable != nil {
		if *patch.RoomsAvailable < 0 {
			return nil, invalid("rooms must not be negative")
		}
		c.RoomsAvailable = patch.RoomsAvailable
	}
	if patch.Amenities != nil {
		c.Amenities = cleanList(patch.Amenities)
	}
	addressChanged := changed(c.Address, p.Address) || changed(c.City, p.City) ||
		changed(c.State, p.State) || changed(c.Pincode, p.Pincode)
	switch {
	case patch.Location != nil && !patch.Location.IsZero():
		c.Location = patch.Location
	case addressChanged:
		loc := s.geocode(ctx, valueOr(c.Address, p.Address), valueOr(c.City, p.City), valueOr(c.State, p.State), valueOr(c.Pincode, p.Pincode))
		c.Location = &loc
	}

	updated, err := s.Repo.Update(ctx, p.ID, c)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	s.index(ctx, propertyDocument(updated))
	s.invalidate(ctx, propertyCachePrefix)
	s.Audit.Record(ctx, actor.ID, "property.update", "property:"+updated.ID.Hex(), meta, map[string]any{"status": string(updated.Status)})
	return updated, nil
}

func (s *PropertyService) Delete(ctx context.Context, actor Actor, id string, meta RequestMeta) error {
	p, err := s.loadManaged(ctx, actor, id)
	if err != nil {
		return err
	}
	if err := s.ensureNoActiveBookings(ctx, p.ID); err != nil {
		return err
	}
	if err := s.Repo.Delete(ctx, p.ID); err != nil {
		return err
	}
	s.unindex(ctx, entity.KindProperty, p.ID.Hex())
	s.invalidate(ctx, propertyCachePrefix)
	s.Audit.Record(ctx, actor.ID, "property.delete", "property:"+p.ID.Hex(), meta, nil)
	return nil
}

func (s *PropertyService) AddImages(ctx context.Context, actor Actor, id string, imgs []*storage.Image) ([]string, error) {
	p, err := s.loadManaged(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	urls, err := s.uploadImages(ctx, "properties", p.ID.Hex(), len(p.Images), imgs)
	if err != nil {
		return nil, err
	}
	if err := s.Repo.AddImages(ctx, p.ID, urls); err != nil {
		return nil, err
	}
	s.invalidate(ctx, propertyCachePrefix)
	return append(p.Images, urls...), nil
}

// Moderate approves or rejects a property and tells the owner.
func (s *PropertyService) Moderate(ctx context.Context, actor Actor, id string, m Moderation, meta RequestMeta) (*entity.Property, error) {
	p, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	status, reason := entity.ListingApproved, ""
	if !m.Approve {
		status, reason = entity.ListingRejected, strings.TrimSpace(m.Reason)
		if reason == "" {
			return nil, invalid("reason is required")
		}
	}
	if err := s.Repo.SetStatus(ctx, p.ID, status, reason); err != nil {
		return nil, err
	}
	p.Status, p.RejectionReason = status, reason
	p.UpdatedAt = time.Now().UTC()

	s.index(ctx, propertyDocument(p))
	s.invalidate(ctx, propertyCachePrefix)
	s.notifyModeration(ctx, p.Ref(), reason)
	s.Audit.Record(ctx, actor.ID, "property."+string(status), "property:"+p.ID.Hex(), meta, map[string]any{"reason": reason})
	return p, nil
}

// RunAIReview reviews a property on demand and stores the result.
func (s *PropertyService) RunAIReview(ctx context.Context, id string) (*entity.AIReview, error) {
	p, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	rev := s.review(ctx, propertyReviewInput(p))
	if rev == nil {
		return nil, errors.New("ai review unavailable")
	}
	if err := s.Repo.SetAIReview(ctx, p.ID, *rev); err != nil {
		return nil, err
	}
	return rev, nil
}
