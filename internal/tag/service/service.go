package service

import (
	"context"
	"errors"
	"unicode/utf8"

	"github.com/helperkit/tagstore/internal/tag"
	"github.com/helperkit/tagstore/internal/tag/repository"
	"github.com/helperkit/tagstore/pkg/metrics"
)

// Field bounds mirror the chat-platform form limits.
const (
	NameMaxLen        = 100
	DescriptionMaxLen = 2000
	SuggestLimit      = 25
	PageSize          = 10
)

var (
	ErrNotFound           = repository.ErrNotFound
	ErrAlreadyExists      = repository.ErrAlreadyExists
	ErrInvalidName        = errors.New("tag name must be 1-100 characters")
	ErrInvalidDescription = errors.New("tag description must be 1-2000 characters")
)

// Service wraps a tag repository with validation and instrumentation.
type Service struct {
	repo repository.Repository
}

func New(repo repository.Repository) *Service {
	return &Service{repo: repo}
}

// NewMemory returns a Service backed by the in-memory repository.
func NewMemory() *Service {
	return New(repository.NewMemoryRepo())
}

// Bounds count characters, not bytes, matching the chat-platform form limits.
func validName(name string) bool {
	n := utf8.RuneCountInString(name)
	return n >= 1 && n <= NameMaxLen
}

func validDescription(desc string) bool {
	n := utf8.RuneCountInString(desc)
	return n >= 1 && n <= DescriptionMaxLen
}

func (s *Service) Create(ctx context.Context, name, authorID, description string) (*tag.Tag, error) {
	if !validName(name) {
		return nil, ErrInvalidName
	}
	if !validDescription(description) {
		return nil, ErrInvalidDescription
	}
	t := &tag.Tag{Name: name, AuthorID: authorID, Description: description}
	_, err := s.repo.Create(ctx, t)
	metrics.ObserveTagOp("create", err)
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (s *Service) Get(ctx context.Context, name string) (*tag.Tag, error) {
	t, err := s.repo.GetByName(ctx, name)
	metrics.ObserveTagOp("get", err)
	return t, err
}

func (s *Service) GetByID(ctx context.Context, id string) (*tag.Tag, error) {
	t, err := s.repo.GetByID(ctx, id)
	metrics.ObserveTagOp("get", err)
	return t, err
}

func (s *Service) List(ctx context.Context) ([]*tag.Tag, error) {
	list, err := s.repo.List(ctx)
	metrics.ObserveTagOp("list", err)
	return list, err
}

func (s *Service) Search(ctx context.Context, query string, limit int) ([]*tag.Tag, error) {
	hits, err := s.repo.Search(ctx, query, limit)
	metrics.ObserveTagOp("search", err)
	return hits, err
}

func (s *Service) Exists(ctx context.Context, name string) (bool, error) {
	return s.repo.Exists(ctx, name)
}

// Update edits a tag by id. Nil arguments leave the field unchanged.
func (s *Service) Update(ctx context.Context, id string, name, description *string) (*tag.Tag, error) {
	if name != nil && !validName(*name) {
		return nil, ErrInvalidName
	}
	if description != nil && !validDescription(*description) {
		return nil, ErrInvalidDescription
	}
	t, err := s.repo.Update(ctx, id, name, description)
	metrics.ObserveTagOp("update", err)
	return t, err
}

// Delete removes a tag by name and reports whether a record was removed.
func (s *Service) Delete(ctx context.Context, name string) (bool, error) {
	removed, err := s.repo.Delete(ctx, name)
	metrics.ObserveTagOp("delete", err)
	return removed, err
}

// Suggest returns autocomplete choices for a partial name. An empty query
// yields the first SuggestLimit tags.
func (s *Service) Suggest(ctx context.Context, query string) ([]tag.Choice, error) {
	var (
		hits []*tag.Tag
		err  error
	)
	if query == "" {
		hits, err = s.repo.List(ctx)
	} else {
		hits, err = s.repo.Search(ctx, query, SuggestLimit)
	}
	if err != nil {
		return nil, err
	}
	if len(hits) > SuggestLimit {
		hits = hits[:SuggestLimit]
	}
	choices := make([]tag.Choice, 0, len(hits))
	for _, t := range hits {
		choices = append(choices, tag.Choice{Name: t.Name, Value: t.Name})
	}
	return choices, nil
}

// Pages chunks a tag listing into pages of PageSize for display.
func Pages(tags []*tag.Tag) [][]*tag.Tag {
	if len(tags) == 0 {
		return nil
	}
	pages := make([][]*tag.Tag, 0, (len(tags)+PageSize-1)/PageSize)
	for start := 0; start < len(tags); start += PageSize {
		end := start + PageSize
		if end > len(tags) {
			end = len(tags)
		}
		pages = append(pages, tags[start:end])
	}
	return pages
}
