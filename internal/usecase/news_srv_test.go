package usecase

import (
	"context"
	"testing"

	"travel-agency/internal/data/entity"
	"travel-agency/internal/data/repository"
	"travel-agency/internal/dto/request"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeNews keeps articles in memory and remembers the last listing query.
type fakeNews struct {
	repository.NewsRepository
	items      map[uuid.UUID]*entity.News
	lastFilter entity.NewsFilter
	lastOrder  repository.NewsOrder
	lastLimit  int
}

func (f *fakeNews) Create(_ context.Context, n *entity.News) error {
	cp := *n
	f.items[n.ID] = &cp
	return nil
}

func (f *fakeNews) FindByID(_ context.Context, id uuid.UUID) (*entity.News, error) {
	n, ok := f.items[id]
	if !ok {
		return nil, nil
	}
	cp := *n
	return &cp, nil
}

func (f *fakeNews) FindAll(_ context.Context, filter entity.NewsFilter, order repository.NewsOrder, limit, _ int) ([]*entity.News, error) {
	f.lastFilter, f.lastOrder, f.lastLimit = filter, order, limit
	out := lo.Filter(lo.Values(f.items), func(n *entity.News, _ int) bool {
		if filter.Category != "" && n.Category != filter.Category {
			return false
		}
		if n.ID == filter.ExcludeID {
			return false
		}
		return filter.IncludeExclusive || !n.IsExclusive
	})
	return out, nil
}

func (f *fakeNews) Count(_ context.Context, filter entity.NewsFilter) (int64, error) {
	return int64(lo.CountBy(lo.Values(f.items), func(n *entity.News) bool {
		return filter.IncludeExclusive || !n.IsExclusive
	})), nil
}

func (f *fakeNews) IncrementViews(_ context.Context, id uuid.UUID) error {
	n, ok := f.items[id]
	if !ok {
		return repository.ErrNotFound
	}
	n.ViewsCount++
	return nil
}

func (f *fakeNews) ToggleFlag(_ context.Context, id uuid.UUID, flag repository.NewsFlag) (bool, error) {
	n, ok := f.items[id]
	if !ok {
		return false, repository.ErrNotFound
	}
	switch flag {
	case repository.NewsFlagFeatured:
		n.IsFeatured = !n.IsFeatured
		return n.IsFeatured, nil
	default:
		n.IsExclusive = !n.IsExclusive
		return n.IsExclusive, nil
	}
}

func (f *fakeNews) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := f.items[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.items, id)
	return nil
}

var firstPage = request.PaginatedRequest{Page: 1, PerPage: 10}

func newNewsFixture() (NewsService, *fakeNews) {
	news := &fakeNews{items: make(map[uuid.UUID]*entity.News)}
	return NewNewsService(&repository.Repository{News: news}, fixedClock, testLogger()), news
}

func TestNewsExclusiveAccess(t *testing.T) {
	ctx := context.Background()
	svc, _ := newNewsFixture()
	admin := Actor{UserID: uuid.New(), Role: entity.RoleAdmin}
	vip := Actor{UserID: uuid.New(), Role: entity.RoleVIP}
	client := Actor{UserID: uuid.New(), Role: entity.RoleClient}

	public, err := svc.CreateNews(ctx, admin, &request.CreateNewsRequest{
		Title:   "Summer deals",
		Content: "Cheaper flights to Bali all July.",
		Tags:    []string{" Beach ", "beach", "ASIA"},
	})
	require.NoError(t, err)
	assert.Equal(t, "general", public.Category)
	assert.Equal(t, []string{"beach", "asia"}, public.Tags)

	exclusive, err := svc.CreateNews(ctx, admin, &request.CreateNewsRequest{
		Title:       "Members-only cruise",
		Content:     "Early access for VIP members.",
		IsExclusive: true,
	})
	require.NoError(t, err)

	t.Run("clients do not see exclusive items", func(t *testing.T) {
		page, err := svc.ListNews(ctx, client, &request.NewsListRequest{PaginatedRequest: firstPage})
		require.NoError(t, err)
		assert.Equal(t, int64(1), page.Pagination.Total)
		assert.Empty(t, page.Data[0].Content, "listings only carry the preview")

		_, err = svc.GetNews(ctx, client, uuid.MustParse(exclusive.ID))
		require.ErrorIs(t, err, ErrUnauthorized)

		_, err = svc.GetNews(ctx, Actor{}, uuid.MustParse(exclusive.ID))
		require.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("vip reads exclusive items", func(t *testing.T) {
		page, err := svc.ListNews(ctx, vip, &request.NewsListRequest{PaginatedRequest: firstPage})
		require.NoError(t, err)
		assert.Equal(t, int64(2), page.Pagination.Total)

		got, err := svc.GetNews(ctx, vip, uuid.MustParse(exclusive.ID))
		require.NoError(t, err)
		assert.Equal(t, "Early access for VIP members.", got.Content)
	})

	t.Run("reading counts a view", func(t *testing.T) {
		first, err := svc.GetNews(ctx, client, uuid.MustParse(public.ID))
		require.NoError(t, err)
		second, err := svc.GetNews(ctx, client, uuid.MustParse(public.ID))
		require.NoError(t, err)
		assert.Equal(t, first.ViewsCount+1, second.ViewsCount)
	})
}

func TestNewsListings(t *testing.T) {
	ctx := context.Background()
	svc, repo := newNewsFixture()
	reader := Actor{UserID: uuid.New(), Role: entity.RoleClient}

	t.Run("limits are clamped", func(t *testing.T) {
		_, err := svc.PopularNews(ctx, reader, 500)
		require.NoError(t, err)
		assert.Equal(t, defaultNewsLimit, repo.lastLimit)
		assert.Equal(t, repository.NewsOrderPopular, repo.lastOrder)

		_, err = svc.RecentNews(ctx, reader, 20)
		require.NoError(t, err)
		assert.Equal(t, 20, repo.lastLimit)
		assert.Equal(t, repository.NewsOrderRecent, repo.lastOrder)
	})

	t.Run("featured filter", func(t *testing.T) {
		_, err := svc.FeaturedNews(ctx, reader, 0)
		require.NoError(t, err)
		assert.True(t, repo.lastFilter.FeaturedOnly)
		assert.False(t, repo.lastFilter.IncludeExclusive)
	})

	t.Run("search needs a query", func(t *testing.T) {
		_, err := svc.SearchNews(ctx, reader, &request.NewsListRequest{PaginatedRequest: firstPage, Search: "   "})
		require.ErrorIs(t, err, ErrValidation)

		_, err = svc.SearchNews(ctx, reader, &request.NewsListRequest{PaginatedRequest: firstPage, Search: " bali ", Tag: " Beach "})
		require.NoError(t, err)
		assert.Equal(t, "bali", repo.lastFilter.Search)
		assert.Equal(t, "beach", repo.lastFilter.Tag)
	})

	t.Run("delete unknown article", func(t *testing.T) {
		require.ErrorIs(t, svc.DeleteNews(ctx, uuid.New()), ErrNotFound)
	})
}

func TestNewsFlags(t *testing.T) {
	ctx := context.Background()
	svc, _ := newNewsFixture()
	admin := Actor{UserID: uuid.New(), Role: entity.RoleAdmin}
	client := Actor{UserID: uuid.New(), Role: entity.RoleClient}

	created, err := svc.CreateNews(ctx, admin, &request.CreateNewsRequest{
		Title:   "Winter in Lapland",
		Content: "Northern lights season opens.",
	})
	require.NoError(t, err)
	id := uuid.MustParse(created.ID)

	featured, err := svc.ToggleFeatured(ctx, id)
	require.NoError(t, err)
	assert.True(t, featured.IsFeatured)

	featured, err = svc.ToggleFeatured(ctx, id)
	require.NoError(t, err)
	assert.False(t, featured.IsFeatured)

	exclusive, err := svc.ToggleExclusive(ctx, id)
	require.NoError(t, err)
	assert.True(t, exclusive.IsExclusive)

	_, err = svc.GetNews(ctx, client, id)
	require.ErrorIs(t, err, ErrUnauthorized, "flipping exclusive hides the article from clients")

	_, err = svc.ToggleExclusive(ctx, uuid.New())
	require.ErrorIs(t, err, ErrNotFound)
}

func TestRelatedNews(t *testing.T) {
	ctx := context.Background()
	svc, repo := newNewsFixture()
	admin := Actor{UserID: uuid.New(), Role: entity.RoleAdmin}
	client := Actor{UserID: uuid.New(), Role: entity.RoleClient}

	create := func(title, category string, exclusive bool) uuid.UUID {
		n, err := svc.CreateNews(ctx, admin, &request.CreateNewsRequest{
			Title:       title,
			Content:     title + " body",
			Category:    category,
			IsExclusive: exclusive,
		})
		require.NoError(t, err)
		return uuid.MustParse(n.ID)
	}

	source := create("Bali on a budget", "asia", false)
	sibling := create("Hanoi street food", "asia", false)
	create("Tokyo for members", "asia", true)
	create("Lisbon trams", "europe", false)

	related, err := svc.RelatedNews(ctx, client, source, 0)
	require.NoError(t, err)
	assert.Equal(t, defaultRelatedLimit, repo.lastLimit)
	assert.Equal(t, "asia", repo.lastFilter.Category)
	assert.Equal(t, source, repo.lastFilter.ExcludeID)
	require.Len(t, related, 1)
	assert.Equal(t, sibling.String(), related[0].ID)

	t.Run("vip readers also get exclusive items", func(t *testing.T) {
		related, err := svc.RelatedNews(ctx, Actor{UserID: uuid.New(), Role: entity.RoleVIP}, source, 10)
		require.NoError(t, err)
		assert.Len(t, related, 2)
	})

	t.Run("unknown article", func(t *testing.T) {
		_, err := svc.RelatedNews(ctx, client, uuid.New(), 3)
		require.ErrorIs(t, err, ErrNotFound)
	})
}
