package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/AdityaShome/Secondhome-sub002/config"
	"github.com/AdityaShome/Secondhome-sub002/internal/domain/entity"
	repo "github.com/AdityaShome/Secondhome-sub002/internal/domain/repository"
	"github.com/AdityaShome/Secondhome-sub002/pkg/helpers"
	"github.com/AdityaShome/Secondhome-sub002/pkg/mailer"
	mailtpl "github.com/AdityaShome/Secondhome-sub002/pkg/mailer/templates"
)

const maxSlugSuffix = 50

type BlogService struct {
	Repo   repo.BlogRepository
	Audit  *Auditor
	Logger *logrus.Logger
}

type BlogInput struct {
	Title      string
	Excerpt    string
	Content    string
	CoverImage string
	Tags       []string
	Published  bool
}

type BlogPatch struct {
	Title      *string
	Excerpt    *string
	Content    *string
	CoverImage *string
	Tags       []string
	Published  *bool
}

// uniqueSlug derives a slug from title, appending -2, -3, ... on collision.
func (s *BlogService) uniqueSlug(ctx context.Context, title string) (string, error) {
	base := helpers.Slugify(title)
	if base == "" {
		base = "post"
	}
	slug := base
	for i := 2; ; i++ {
		taken, err := s.Repo.SlugExists(ctx, slug)
		if err != nil {
			return "", err
		}
		if !taken {
			return slug, nil
		}
		if i > maxSlugSuffix {
			tok, err := helpers.GenToken(3)
			if err != nil {
				return "", err
			}
			return base + "-" + tok, nil
		}
		slug = fmt.Sprintf("%s-%d", base, i)
	}
}

func (s *BlogService) Create(ctx context.Context, actor Actor, in BlogInput, meta RequestMeta) (*entity.BlogPost, error) {
	author, err := parseID(actor.ID)
	if err != nil {
		return nil, ErrForbidden
	}
	slug, err := s.uniqueSlug(ctx, in.Title)
	if err != nil {
		return nil, err
	}
	p := &entity.BlogPost{
		AuthorID:   author,
		Title:      strings.TrimSpace(in.Title),
		Slug:       slug,
		Excerpt:    strings.TrimSpace(in.Excerpt),
		Content:    in.Content,
		CoverImage: in.CoverImage,
		Tags:       cleanList(in.Tags),
		Published:  in.Published,
	}
	if p.Published {
		t := time.Now().UTC()
		p.PublishedAt = &t
	}
	if err := s.Repo.Create(ctx, p); err != nil {
		return nil, err
	}
	s.Audit.Record(ctx, actor.ID, "blog.create", "blog:"+p.ID.Hex(), meta, map[string]any{"slug": p.Slug})
	return p, nil
}

// Update keeps the slug stable. PublishedAt is set the first time a post is published.
func (s *BlogService) Update(ctx context.Context, actor Actor, id string, patch BlogPatch, meta RequestMeta) (*entity.BlogPost, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	p, err := s.Repo.GetByID(ctx, oid)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if patch.Title != nil {
		p.Title = strings.TrimSpace(*patch.Title)
	}
	if patch.Excerpt != nil {
		p.Excerpt = strings.TrimSpace(*patch.Excerpt)
	}
	if patch.Content != nil {
		p.Content = *patch.Content
	}
	if patch.CoverImage != nil {
		p.CoverImage = *patch.CoverImage
	}
	if patch.Tags != nil {
		p.Tags = cleanList(patch.Tags)
	}
	if patch.Published != nil {
		p.Published = *patch.Published
		if p.Published && p.PublishedAt == nil {
			t := time.Now().UTC()
			p.PublishedAt = &t
		}
	}
	if err := s.Repo.Update(ctx, p); err != nil {
		return nil, err
	}
	s.Audit.Record(ctx, actor.ID, "blog.update", "blog:"+p.ID.Hex(), meta, nil)
	return p, nil
}

func (s *BlogService) Delete(ctx context.Context, actor Actor, id string, meta RequestMeta) error {
	oid, err := parseID(id)
	if err != nil {
		return err
	}
	if err := s.Repo.Delete(ctx, oid); errors.Is(err, repo.ErrNotFound) {
		return ErrNotFound
	} else if err != nil {
		return err
	}
	s.Audit.Record(ctx, actor.ID, "blog.delete", "blog:"+id, meta, nil)
	return nil
}

// List returns published posts, newest first.
func (s *BlogService) List(ctx context.Context, tag string, page repo.Page) ([]entity.BlogPost, int64, error) {
	return s.Repo.List(ctx, repo.BlogFilter{Tag: strings.ToLower(strings.TrimSpace(tag)), PublishedOnly: true, Page: page})
}

// GetBySlug hides drafts.
func (s *BlogService) GetBySlug(ctx context.Context, slug string) (*entity.BlogPost, error) {
	p, err := s.Repo.GetBySlug(ctx, slug)
	if errors.Is(err, repo.ErrNotFound) || (err == nil && !p.Published) {
		return nil, ErrNotFound
	}
	return p, err
}

type NewsletterService struct {
	Repo   repo.NewsletterRepository
	Outbox Outbox
	Audit  *Auditor
	Cfg    *config.Config
	Logger *logrus.Logger
}

// Subscribe is idempotent and reactivates unsubscribed addresses.
func (s *NewsletterService) Subscribe(ctx context.Context, email string) (*entity.Newsletter, error) {
	email = normalizeEmail(email)
	n, err := s.Repo.GetByEmail(ctx, email)
	switch {
	case err == nil:
		if n.Status != entity.Subscribed {
			if err := s.Repo.SetStatus(ctx, n.ID, entity.Subscribed); err != nil {
				return nil, err
			}
			n.Status = entity.Subscribed
		}
		return n, nil
	case !errors.Is(err, repo.ErrNotFound):
		return nil, err
	}

	tok, err := helpers.GenToken(16)
	if err != nil {
		return nil, err
	}
	n = &entity.Newsletter{Email: email, Status: entity.Subscribed, Token: tok}
	if err := s.Repo.Create(ctx, n); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return s.Repo.GetByEmail(ctx, email)
		}
		return nil, err
	}
	return n, nil
}

func (s *NewsletterService) Unsubscribe(ctx context.Context, token string) error {
	if strings.TrimSpace(token) == "" {
		return invalid("token is required")
	}
	n, err := s.Repo.GetByToken(ctx, token)
	if errors.Is(err, repo.ErrNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if n.Status == entity.Unsubscribed {
		return nil
	}
	return s.Repo.SetStatus(ctx, n.ID, entity.Unsubscribed)
}

type BroadcastInput struct {
	Subject string
	HTML    string
	Text    string
}

func (s *NewsletterService) unsubscribeURL(token string) string {
	sep := "?"
	if strings.Contains(s.Cfg.UnsubscribeURL, "?") {
		sep = "&"
	}
	return s.Cfg.UnsubscribeURL + sep + "token=" + token
}

// Broadcast queues one email per subscribed address and returns how many
// were queued. Plain text goes through the newsletter template; raw HTML is
// sent as is with an unsubscribe footer.
func (s *NewsletterService) Broadcast(ctx context.Context, actor Actor, in BroadcastInput, meta RequestMeta) (int, error) {
	if strings.TrimSpace(in.Subject) == "" || (strings.TrimSpace(in.HTML) == "" && strings.TrimSpace(in.Text) == "") {
		return 0, invalid("subject and html or text are required")
	}
	count := 0
	err := s.Repo.EachSubscribed(ctx, func(n entity.Newsletter) error {
		unsub := s.unsubscribeURL(n.Token)
		job := mailer.EmailJob{To: n.Email, Subject: in.Subject}
		if in.HTML != "" {
			job.HTML = in.HTML + fmt.Sprintf(`<p style="font-size:12px;color:#6b7280;"><a href="%s">Unsubscribe</a></p>`, unsub)
			job.Text = in.Text
			if job.Text != "" {
				job.Text += "\n\nUnsubscribe: " + unsub
			}
		} else {
			job.Template = mailtpl.Newsletter
			job.Data = mailtpl.NewNewsletterData(s.Cfg, n.Email, in.Subject, in.Text, unsub)
		}
		if err := s.Outbox.EnqueueEmail(ctx, job); err != nil {
			return err
		}
		count++
		return nil
	})
	if err != nil {
		s.Logger.WithError(err).WithField("queued", count).Error("newsletter broadcast interrupted")
		return count, err
	}
	s.Audit.Record(ctx, actor.ID, "newsletter.broadcast", "newsletter", meta, map[string]any{"subject": in.Subject, "count": count})
	return count, nil
}
