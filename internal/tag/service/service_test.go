package service

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/helperkit/tagstore/internal/tag"
	"github.com/stretchr/testify/require"
)

func TestCreateAndGetRoundtrip(t *testing.T) {
	svc := NewMemory()
	ctx := context.Background()

	created, err := svc.Create(ctx, "d.py cogs", "1234", "cogs are modules")
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	got, err := svc.Get(ctx, "d.py cogs")
	require.NoError(t, err)
	require.Equal(t, created.Name, got.Name)
	require.Equal(t, created.Description, got.Description)
	require.Equal(t, created.AuthorID, got.AuthorID)
}

func TestCreateDuplicate(t *testing.T) {
	svc := NewMemory()
	ctx := context.Background()

	_, err := svc.Create(ctx, "faq", "1", "first")
	require.NoError(t, err)
	_, err = svc.Create(ctx, "faq", "2", "second")
	require.ErrorIs(t, err, ErrAlreadyExists)
}

func TestCreateValidation(t *testing.T) {
	svc := NewMemory()
	ctx := context.Background()

	_, err := svc.Create(ctx, "", "1", "desc")
	require.ErrorIs(t, err, ErrInvalidName)

	_, err = svc.Create(ctx, strings.Repeat("n", NameMaxLen+1), "1", "desc")
	require.ErrorIs(t, err, ErrInvalidName)

	_, err = svc.Create(ctx, "ok", "1", "")
	require.ErrorIs(t, err, ErrInvalidDescription)

	_, err = svc.Create(ctx, "ok", "1", strings.Repeat("d", DescriptionMaxLen+1))
	require.ErrorIs(t, err, ErrInvalidDescription)

	// boundary lengths are accepted
	_, err = svc.Create(ctx, strings.Repeat("n", NameMaxLen), "1", strings.Repeat("d", DescriptionMaxLen))
	require.NoError(t, err)

	// bounds count characters, not bytes
	_, err = svc.Create(ctx, strings.Repeat("é", NameMaxLen), "1", strings.Repeat("ü", DescriptionMaxLen))
	require.NoError(t, err)

	_, err = svc.Create(ctx, strings.Repeat("é", NameMaxLen+1), "1", "desc")
	require.ErrorIs(t, err, ErrInvalidName)
}

func TestUpdateSetsLastEditedAt(t *testing.T) {
	svc := NewMemory()
	ctx := context.Background()

	created, err := svc.Create(ctx, "faq", "1", "old")
	require.NoError(t, err)
	createdAt := created.CreatedAt

	newDesc := "new"
	updated, err := svc.Update(ctx, created.ID, nil, &newDesc)
	require.NoError(t, err)
	require.NotNil(t, updated.LastEditedAt)
	require.Equal(t, createdAt, updated.CreatedAt)
	require.Equal(t, "1", updated.AuthorID)
}

func TestUpdateMissing(t *testing.T) {
	svc := NewMemory()
	desc := "x"
	_, err := svc.Update(context.Background(), "missing-id", nil, &desc)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteThenGet(t *testing.T) {
	svc := NewMemory()
	ctx := context.Background()

	_, err := svc.Create(ctx, "faq", "1", "body")
	require.NoError(t, err)

	removed, err := svc.Delete(ctx, "faq")
	require.NoError(t, err)
	require.True(t, removed)

	_, err = svc.Get(ctx, "faq")
	require.ErrorIs(t, err, ErrNotFound)

	removed, err = svc.Delete(ctx, "faq")
	require.NoError(t, err)
	require.False(t, removed)
}

func TestSuggest(t *testing.T) {
	svc := NewMemory()
	ctx := context.Background()

	_, err := svc.Create(ctx, "d.py cogs", "1", "a")
	require.NoError(t, err)
	_, err = svc.Create(ctx, "other", "1", "b")
	require.NoError(t, err)

	choices, err := svc.Suggest(ctx, "d.py")
	require.NoError(t, err)
	require.Len(t, choices, 1)
	require.Equal(t, "d.py cogs", choices[0].Name)
	require.Equal(t, "d.py cogs", choices[0].Value)

	// empty query returns everything up to the limit
	choices, err = svc.Suggest(ctx, "")
	require.NoError(t, err)
	require.Len(t, choices, 2)
}

func TestSuggestCapped(t *testing.T) {
	svc := NewMemory()
	ctx := context.Background()

	for i := 0; i < SuggestLimit+5; i++ {
		_, err := svc.Create(ctx, fmt.Sprintf("tag-%02d", i), "1", "x")
		require.NoError(t, err)
	}

	choices, err := svc.Suggest(ctx, "")
	require.NoError(t, err)
	require.Len(t, choices, SuggestLimit)

	choices, err = svc.Suggest(ctx, "tag-")
	require.NoError(t, err)
	require.Len(t, choices, SuggestLimit)
}

func TestPages(t *testing.T) {
	require.Nil(t, Pages(nil))

	tags := make([]*tag.Tag, 25)
	for i := range tags {
		tags[i] = &tag.Tag{Name: fmt.Sprintf("t%d", i)}
	}
	pages := Pages(tags)
	require.Len(t, pages, 3)
	require.Len(t, pages[0], PageSize)
	require.Len(t, pages[1], PageSize)
	require.Len(t, pages[2], 5)
	require.Equal(t, "t0", pages[0][0].Name)
	require.Equal(t, "t24", pages[2][4].Name)
}
