package application

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/AdityaShome/Secondhome-sub002/config"
	"github.com/AdityaShome/Secondhome-sub002/internal/domain/entity"
	repo "github.com/AdityaShome/Secondhome-sub002/internal/domain/repository"
	"github.com/AdityaShome/Secondhome-sub002/pkg/ai"
	"github.com/AdityaShome/Secondhome-sub002/pkg/geo"
	"github.com/AdityaShome/Secondhome-sub002/pkg/storage"
)

const (
	DefaultRadiusKm = 5.0
	MaxRadiusKm     = 50.0
)

// ListingDeps are the collaborators shared by the property and mess services.
// Index, Cache and Geocoder are optional.
type ListingDeps struct {
	Users    repo.UserRepository
	Bookings repo.BookingRepository
	Index    repo.ListingIndex
	Cache    ListCache
	Geocoder geo.Geocoder
	Reviewer ai.Reviewer
	Store    storage.Store
	Notifier Notifier
	Audit    *Auditor
	Cfg      *config.Config
	Logger   *logrus.Logger
}

// ListPage is one page of listings as cached and returned to clients.
type ListPage[T any] struct {
	Items []T   `json:"items"`
	Total int64 `json:"total"`
}

// Moderation is an admin decision on a pending listing.
type Moderation struct {
	Approve bool
	Reason  string
}

func (d *ListingDeps) canManage(actor Actor, ownerID primitive.ObjectID) bool {
	return actor.IsAdmin() || (actor.ID != "" && actor.ID == ownerID.Hex())
}

// canView hides listings that are not approved from everyone but the owner and admins.
func (d *ListingDeps) canView(viewer *Actor, status entity.ListingStatus, ownerID primitive.ObjectID) bool {
	if status == entity.ListingApproved {
		return true
	}
	return viewer != nil && d.canManage(*viewer, ownerID)
}

// geocode resolves an address. Failures leave the location empty.
func (d *ListingDeps) geocode(ctx context.Context, parts ...string) entity.Location {
	if d.Geocoder == nil {
		return entity.Location{}
	}
	var nonEmpty []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			nonEmpty = append(nonEmpty, p)
		}
	}
	if len(nonEmpty) == 0 {
		return entity.Location{}
	}
	address := strings.Join(nonEmpty, ", ")
	lat, lng, err := d.Geocoder.Geocode(ctx, address)
	if err != nil {
		d.Logger.WithError(err).WithField("address", address).Warn("geocode failed")
		return entity.Location{}
	}
	return entity.Location{Lat: lat, Lng: lng}
}

// review runs the AI reviewer. It returns nil when the reviewer errors.
func (d *ListingDeps) review(ctx context.Context, in ai.ListingInput) *entity.AIReview {
	if d.Reviewer == nil {
		return nil
	}
	res, err := d.Reviewer.Review(ctx, in)
	if err != nil {
		d.Logger.WithError(err).WithField("title", in.Title).Warn("ai review failed")
		return nil
	}
	return &entity.AIReview{
		Verdict:    res.Verdict,
		Score:      res.Score,
		Reasons:    res.Reasons,
		ReviewedAt: time.Now().UTC(),
	}
}

func (d *ListingDeps) index(ctx context.Context, doc repo.ListingDocument) {
	if d.Index == nil {
		return
	}
	if err := d.Index.Index(ctx, doc); err != nil {
		d.Logger.WithError(err).WithFields(logrus.Fields{"kind": doc.Kind, "id": doc.ID}).Warn("search index failed")
	}
}

func (d *ListingDeps) unindex(ctx context.Context, kind entity.ListingKind, id string) {
	if d.Index == nil {
		return
	}
	if err := d.Index.Remove(ctx, kind, id); err != nil {
		d.Logger.WithError(err).WithFields(logrus.Fields{"kind": kind, "id": id}).Warn("search remove failed")
	}
}

func (d *ListingDeps) invalidate(ctx context.Context, prefix string) {
	if d.Cache == nil {
		return
	}
	if err := d.Cache.Invalidate(ctx, prefix); err != nil {
		d.Logger.WithError(err).WithField("prefix", prefix).Warn("cache invalidate failed")
	}
}

// notifyAdmins tells every admin a listing is waiting for moderation.
func (d *ListingDeps) notifyAdmins(ctx context.Context, ref entity.ListingRef) {
	if d.Notifier == nil {
		return
	}
	ids, err := d.Users.ListIDsByRole(ctx, entity.RoleAdmin)
	if err != nil {
		d.Logger.WithError(err).Warn("list admins failed")
		return
	}
	for _, id := range ids {
		_ = d.Notifier.Notify(ctx, NotifyInput{
			UserID:  id,
			Type:    entity.NotifyListingSubmitted,
			Title:   "New listing awaiting review",
			Message: fmt.Sprintf("%s %q was submitted for approval.", titleKind(ref.Kind), ref.Title),
			Link:    "/admin/listings/pending",
			Data:    map[string]string{"listing_id": ref.ID, "listing_type": string(ref.Kind)},
		})
	}
}

// notifyModeration tells the owner about an approval or rejection.
func (d *ListingDeps) notifyModeration(ctx context.Context, ref entity.ListingRef, reason string) {
	if d.Notifier == nil {
		return
	}
	owner, err := parseID(ref.OwnerID)
	if err != nil {
		return
	}
	in := NotifyInput{
		UserID: owner,
		Link:   "/listings/" + string(ref.Kind) + "/" + ref.ID,
		Data:   map[string]string{"listing_id": ref.ID, "listing_type": string(ref.Kind), "listing_title": ref.Title, "status": string(ref.Status)},
		Email:  true,
	}
	if ref.Status == entity.ListingApproved {
		in.Type = entity.NotifyListingApproved
		in.Title = "Listing approved"
		in.Message = fmt.Sprintf("Your listing %q is now live.", ref.Title)
	} else {
		in.Type = entity.NotifyListingRejected
		in.Title = "Listing rejected"
		in.Message = fmt.Sprintf("Your listing %q was rejected.", ref.Title)
		if reason != "" {
			in.Message += " Reason: " + reason
			in.Data["reason"] = reason
		}
	}
	if err := d.Notifier.Notify(ctx, in); err != nil {
		d.Logger.WithError(err).WithField("listing_id", ref.ID).Warn("moderation notify failed")
	}
}

// ensureNoActiveBookings blocks deletes while bookings are pending or confirmed.
func (d *ListingDeps) ensureNoActiveBookings(ctx context.Context, id primitive.ObjectID) error {
	if d.Bookings == nil {
		return nil
	}
	n, err := d.Bookings.CountActiveForListing(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return ErrActiveBookings
	}
	return nil
}

// uploadImages checks the per-listing limit and stores each image.
func (d *ListingDeps) uploadImages(ctx context.Context, prefix, listingID string, existing int, imgs []*storage.Image) ([]string, error) {
	if len(imgs) == 0 {
		return nil, invalid("no images")
	}
	if existing+len(imgs) > storage.MaxListingImages {
		return nil, fmt.Errorf("%w: at most %d per listing", ErrTooManyImages, storage.MaxListingImages)
	}
	if d.Store == nil {
		return nil, errors.New("storage not configured")
	}
	urls := make([]string, 0, len(imgs))
	for _, img := range imgs {
		url, err := d.Store.Upload(ctx, storage.ObjectKey(prefix, listingID, img.ContentType), img.ContentType, img.Reader())
		if err != nil {
			return nil, fmt.Errorf("upload image: %w", err)
		}
		urls = append(urls, url)
	}
	return urls, nil
}

// cachedList serves approved list pages from the cache and fills it on miss.
func cachedList[T any](ctx context.Context, d *ListingDeps, prefix string, f repo.ListingFilter, load func() ([]T, int64, error)) (ListPage[T], error) {
	var key string
	if d.Cache != nil {
		key = d.Cache.Key(prefix, filterParams(f))
		var page ListPage[T]
		if ok, err := d.Cache.Get(ctx, key, &page); err == nil && ok {
			return page, nil
		} else if err != nil {
			d.Logger.WithError(err).WithField("key", key).Warn("cache read failed")
		}
	}
	items, total, err := load()
	if err != nil {
		return ListPage[T]{}, err
	}
	if items == nil {
		items = []T{}
	}
	page := ListPage[T]{Items: items, Total: total}
	if d.Cache != nil {
		if err := d.Cache.Set(ctx, key, page); err != nil {
			d.Logger.WithError(err).WithField("key", key).Warn("cache write failed")
		}
	}
	return page, nil
}

func filterParams(f repo.ListingFilter) map[string]string {
	p := f.Page.Normalize()
	amen := append([]string(nil), f.Amenities...)
	sort.Strings(amen)
	m := map[string]string{
		"status":     string(f.Status),
		"city":       strings.ToLower(strings.TrimSpace(f.City)),
		"type":       f.Type,
		"gender":     f.Gender,
		"meal_types": f.MealTypes,
		"amenities":  strings.Join(amen, ","),
		"q":          strings.TrimSpace(f.Q),
		"sort":       f.Sort,
		"page":       strconv.Itoa(p.Page),
		"limit":      strconv.Itoa(p.Limit),
	}
	if f.PriceMin > 0 {
		m["price_min"] = strconv.FormatInt(f.PriceMin, 10)
	}
	if f.PriceMax > 0 {
		m["price_max"] = strconv.FormatInt(f.PriceMax, 10)
	}
	if f.OwnerID != nil {
		m["owner_id"] = f.OwnerID.Hex()
	}
	return m
}

// NearbyQuery is a point and radius in kilometres.
type NearbyQuery struct {
	Lat      float64
	Lng      float64
	RadiusKm float64
}

// Normalize validates coordinates and clamps the radius.
func (q NearbyQuery) Normalize() (NearbyQuery, error) {
	if q.Lat < -90 || q.Lat > 90 || q.Lng < -180 || q.Lng > 180 {
		return q, invalid("lat/lng out of range")
	}
	if q.RadiusKm <= 0 {
		q.RadiusKm = DefaultRadiusKm
	}
	if q.RadiusKm > MaxRadiusKm {
		q.RadiusKm = MaxRadiusKm
	}
	return q, nil
}

func (q NearbyQuery) Box() repo.Box {
	minLat, maxLat, minLng, maxLng := geo.BoundingBox(q.Lat, q.Lng, q.RadiusKm)
	return repo.Box{MinLat: minLat, MaxLat: maxLat, MinLng: minLng, MaxLng: maxLng}
}

// withinRadius keeps the items inside the radius, nearest first.
func withinRadius[T any](items []T, loc func(T) entity.Location, q NearbyQuery) []entity.Nearby[T] {
	out := make([]entity.Nearby[T], 0, len(items))
	for _, it := range items {
		l := loc(it)
		if l.IsZero() {
			continue
		}
		d := geo.DistanceKm(q.Lat, q.Lng, l.Lat, l.Lng)
		if d > q.RadiusKm {
			continue
		}
		out = append(out, entity.Nearby[T]{Listing: it, DistanceKm: geo.Round2(d)})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].DistanceKm < out[j].DistanceKm })
	return out
}

func titleKind(k entity.ListingKind) string {
	if k == entity.KindMess {
		return "Mess"
	}
	return "Property"
}

func cleanList(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, s := range in {
		s = strings.ToLower(strings.TrimSpace(s))
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

func trimmed(v *string) *string {
	if v == nil {
		return nil
	}
	t := strings.TrimSpace(*v)
	return &t
}

// changed reports whether a patched value differs from the stored one.
func changed(v *string, cur string) bool { return v != nil && *v != cur }

func valueOr(v *string, cur string) string {
	if v == nil {
		return cur
	}
	return *v
}
