package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pageza/tastybytes/backend/internal/models"
	"github.com/pageza/tastybytes/backend/internal/service"
	"github.com/pageza/tastybytes/backend/internal/store"
	"github.com/pageza/tastybytes/backend/internal/testhelpers"
)

// flakyStore fails writes while failWrites is set.
type flakyStore struct {
	store.Store
	mu         sync.Mutex
	failWrites bool
	writes     int
}

func (f *flakyStore) Set(ctx context.Context, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWrites {
		return errors.New("quota exceeded")
	}
	f.writes++
	return f.Store.Set(ctx, key, value)
}

func (f *flakyStore) setFailing(v bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failWrites = v
}

func (f *flakyStore) writeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.writes
}

func newRepo(t *testing.T, s store.Store) *service.RecipeRepository {
	t.Helper()
	repo := service.NewRecipeRepository(s, testhelpers.FixedClock(), testhelpers.NewSequenceIDs("recipe"), zap.NewNop())
	require.NoError(t, repo.Initialize(context.Background()))
	return repo
}

func ids(list []models.Recipe) []string {
	out := make([]string, 0, len(list))
	for _, r := range list {
		out = append(out, r.ID)
	}
	return out
}

func TestInitializeSeedsEmptyStore(t *testing.T) {
	s := store.NewMemoryStore()
	repo := newRepo(t, s)

	list := repo.List()
	require.Len(t, list, 3)
	assert.Equal(t, []string{"Vegetable Stir Fry", "Grilled Chicken Breast", "Mushroom Risotto"},
		[]string{list[0].Title, list[1].Title, list[2].Title})
	assert.Equal(t, []string{"1", "2", "3"}, ids(list))
	assert.Equal(t, testhelpers.FixedClock().Now(), list[0].CreatedAt)

	raw, ok, err := s.Get(context.Background(), service.RecipesKey)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Contains(t, raw, `"title":"Mushroom Risotto"`)
}

func TestInitializeReseedsCorruptData(t *testing.T) {
	cases := map[string]string{
		"invalid json":  "{not json",
		"not an array":  `{"id":"1"}`,
		"null":          "null",
		"missing id":    `[{"title":"No id"}]`,
		"duplicate ids": `[{"id":"a","title":"x"},{"id":"a","title":"y"}]`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			s := store.NewMemoryStore()
			require.NoError(t, s.Set(context.Background(), service.RecipesKey, raw))

			repo := newRepo(t, s)
			assert.Equal(t, []string{"1", "2", "3"}, ids(repo.List()))

			stored, _, err := s.Get(context.Background(), service.RecipesKey)
			require.NoError(t, err)
			assert.NotEqual(t, raw, stored)
		})
	}
}

func TestInitializeKeepsEmptyList(t *testing.T) {
	s := store.NewMemoryStore()
	require.NoError(t, s.Set(context.Background(), service.RecipesKey, "[]"))

	repo := newRepo(t, s)
	assert.Empty(t, repo.List())
}

func TestInitializeReturnsReadErrors(t *testing.T) {
	s := &readFailStore{}
	repo := service.NewRecipeRepository(s, testhelpers.FixedClock(), testhelpers.NewSequenceIDs("recipe"), nil)
	err := repo.Initialize(context.Background())
	assert.Error(t, err)
	assert.Empty(t, repo.List())
}

type readFailStore struct{ store.MemoryStore }

func (*readFailStore) Get(context.Context, string) (string, bool, error) {
	return "", false, errors.New("storage disabled")
}

func TestAddAppendsRecipe(t *testing.T) {
	repo := newRepo(t, store.NewMemoryStore())
	user := testhelpers.Member("u1", "Alice")
	before := repo.List()

	recipe, err := repo.Add(context.Background(), testhelpers.Draft("Tacos", false), user)
	require.NoError(t, err)

	after := repo.List()
	require.Len(t, after, len(before)+1)
	assert.NotContains(t, ids(before), recipe.ID)
	assert.Equal(t, recipe, after[len(after)-1])
	assert.Equal(t, "u1", recipe.AuthorID)
	assert.Equal(t, "Alice", recipe.AuthorName)
	assert.Equal(t, models.DefaultImageURL, recipe.ImageURL)
	assert.Equal(t, testhelpers.FixedClock().Now(), recipe.CreatedAt)

	// the slice handed out earlier is untouched
	assert.Len(t, before, 3)
}

func TestAddNormalizesLines(t *testing.T) {
	repo := newRepo(t, store.NewMemoryStore())
	draft := testhelpers.Draft("  Soup  ", true)
	draft.Ingredients = []string{" water ", "", "  ", "salt"}
	draft.Instructions = []string{"boil", "\t"}

	recipe, err := repo.Add(context.Background(), draft, testhelpers.Member("u1", "Alice"))
	require.NoError(t, err)
	assert.Equal(t, "Soup", recipe.Title)
	assert.Equal(t, []string{"water", "salt"}, recipe.Ingredients)
	assert.Equal(t, []string{"boil"}, recipe.Instructions)
}

func TestAddRequiresUser(t *testing.T) {
	repo := newRepo(t, store.NewMemoryStore())

	_, err := repo.Add(context.Background(), testhelpers.Draft("Tacos", false), nil)
	assert.ErrorIs(t, err, service.ErrAuthRequired)
	assert.Len(t, repo.List(), 3)
}

func TestAddValidation(t *testing.T) {
	repo := newRepo(t, store.NewMemoryStore())
	user := testhelpers.Member("u1", "Alice")

	t.Run("empty title", func(t *testing.T) {
		draft := testhelpers.Draft("", false)
		_, err := repo.Add(context.Background(), draft, user)

		var verr *service.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.True(t, verr.Has("title"))
		assert.Len(t, repo.List(), 3)
	})

	t.Run("every failing field is listed", func(t *testing.T) {
		draft := models.RecipeDraft{
			Ingredients:  []string{"   "},
			PrepTime:     -1,
			ImageURL:     "not a url",
			Instructions: nil,
		}
		_, err := repo.Add(context.Background(), draft, user)

		var verr *service.ValidationError
		require.ErrorAs(t, err, &verr)
		for _, field := range []string{"title", "description", "ingredients", "instructions", "prepTime", "servings", "imageUrl"} {
			assert.True(t, verr.Has(field), field)
		}
		assert.False(t, verr.Has("cookTime"))
		assert.Len(t, repo.List(), 3)
	})
}

func TestScenarioTacosForbidden(t *testing.T) {
	repo := newRepo(t, store.NewMemoryStore())
	user1 := testhelpers.Member("u1", "Alice")
	user2 := testhelpers.Member("u2", "Bob")

	tacos, err := repo.Add(context.Background(), testhelpers.Draft("Tacos", false), user1)
	require.NoError(t, err)

	list := repo.List()
	require.Len(t, list, 4)
	assert.Equal(t, "Alice", list[3].AuthorName)

	err = repo.Delete(context.Background(), tacos.ID, user2)
	assert.ErrorIs(t, err, service.ErrForbidden)
	assert.Len(t, repo.List(), 4)
}

func TestUpdate(t *testing.T) {
	repo := newRepo(t, store.NewMemoryStore())
	author := testhelpers.Member("u1", "Alice")
	created, err := repo.Add(context.Background(), testhelpers.Draft("Tacos", false), author)
	require.NoError(t, err)

	title := "Fish Tacos"
	servings := 4
	ingredients := []string{"fish", "tortillas"}
	updated, err := repo.Update(context.Background(), created.ID, models.RecipePatch{
		Title:       &title,
		Servings:    &servings,
		Ingredients: &ingredients,
	}, author)
	require.NoError(t, err)

	want := created
	want.Title = title
	want.Servings = servings
	want.Ingredients = ingredients
	if diff := cmp.Diff(want, updated); diff != "" {
		t.Errorf("updated recipe mismatch (-want +got):\n%s", diff)
	}

	got, err := repo.Get(created.ID)
	require.NoError(t, err)
	assert.Equal(t, updated, got)
	assert.Equal(t, created.CreatedAt, got.CreatedAt)
	assert.Equal(t, created.AuthorID, got.AuthorID)
}

func TestUpdateErrors(t *testing.T) {
	repo := newRepo(t, store.NewMemoryStore())
	author := testhelpers.Member("u1", "Alice")
	created, err := repo.Add(context.Background(), testhelpers.Draft("Tacos", false), author)
	require.NoError(t, err)

	title := "Stolen Tacos"
	patch := models.RecipePatch{Title: &title}

	_, err = repo.Update(context.Background(), created.ID, patch, nil)
	assert.ErrorIs(t, err, service.ErrAuthRequired)

	_, err = repo.Update(context.Background(), "missing", patch, author)
	assert.ErrorIs(t, err, service.ErrNotFound)

	_, err = repo.Update(context.Background(), created.ID, patch, testhelpers.Member("u2", "Bob"))
	assert.ErrorIs(t, err, service.ErrForbidden)

	empty := ""
	_, err = repo.Update(context.Background(), created.ID, models.RecipePatch{Title: &empty}, author)
	var verr *service.ValidationError
	assert.ErrorAs(t, err, &verr)

	got, err := repo.Get(created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)
}

func TestAdminMayModifyAnyRecipe(t *testing.T) {
	repo := newRepo(t, store.NewMemoryStore())
	admin := testhelpers.Admin()

	title := "Better Stir Fry"
	updated, err := repo.Update(context.Background(), "1", models.RecipePatch{Title: &title}, admin)
	require.NoError(t, err)
	assert.Equal(t, "Demo User", updated.AuthorName)

	require.NoError(t, repo.Delete(context.Background(), "3", admin))
	assert.Equal(t, []string{"1", "2"}, ids(repo.List()))
}

func TestDelete(t *testing.T) {
	repo := newRepo(t, store.NewMemoryStore())
	author := testhelpers.Member("2", "Jane Smith")

	require.NoError(t, repo.Delete(context.Background(), "3", author))
	assert.Equal(t, []string{"1", "2"}, ids(repo.List()))

	err := repo.Delete(context.Background(), "3", author)
	assert.ErrorIs(t, err, service.ErrNotFound)

	err = repo.Delete(context.Background(), "1", nil)
	assert.ErrorIs(t, err, service.ErrAuthRequired)

	_, err = repo.Get("3")
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestPersistReloadRoundTrip(t *testing.T) {
	s := store.NewMemoryStore()
	repo := newRepo(t, s)
	_, err := repo.Add(context.Background(), testhelpers.Draft("Tacos", false), testhelpers.Member("u1", "Alice"))
	require.NoError(t, err)
	require.NoError(t, repo.Delete(context.Background(), "2", testhelpers.Member("1", "Demo User")))

	reloaded := newRepo(t, s)
	if diff := cmp.Diff(repo.List(), reloaded.List()); diff != "" {
		t.Errorf("reloaded list mismatch (-before +after):\n%s", diff)
	}
}

func TestOneWritePerMutation(t *testing.T) {
	s := &flakyStore{Store: store.NewMemoryStore()}
	repo := newRepo(t, s)
	require.Equal(t, 1, s.writeCount())

	created, err := repo.Add(context.Background(), testhelpers.Draft("Tacos", false), testhelpers.Member("u1", "Alice"))
	require.NoError(t, err)
	assert.Equal(t, 2, s.writeCount())

	require.NoError(t, repo.Delete(context.Background(), created.ID, testhelpers.Member("u1", "Alice")))
	assert.Equal(t, 3, s.writeCount())

	// rejected operations write nothing
	_, _ = repo.Add(context.Background(), testhelpers.Draft("", false), testhelpers.Member("u1", "Alice"))
	_ = repo.Delete(context.Background(), "1", testhelpers.Member("u2", "Bob"))
	assert.Equal(t, 3, s.writeCount())
}

func TestStorageFailureLeavesStateUnchanged(t *testing.T) {
	s := &flakyStore{Store: store.NewMemoryStore()}
	repo := newRepo(t, s)
	user := testhelpers.Member("1", "Demo User")

	var events []service.RecipeEvent
	repo.Subscribe(func(e service.RecipeEvent) { events = append(events, e) })

	before := repo.List()
	s.setFailing(true)

	_, err := repo.Add(context.Background(), testhelpers.Draft("Tacos", false), user)
	assert.ErrorIs(t, err, service.ErrPersistence)

	title := "Renamed"
	_, err = repo.Update(context.Background(), "1", models.RecipePatch{Title: &title}, user)
	assert.ErrorIs(t, err, service.ErrPersistence)

	err = repo.Delete(context.Background(), "1", user)
	assert.ErrorIs(t, err, service.ErrPersistence)

	assert.Equal(t, before, repo.List())
	assert.Empty(t, events)

	// the next successful write still contains only committed changes
	s.setFailing(false)
	_, err = repo.Add(context.Background(), testhelpers.Draft("Tacos", false), user)
	require.NoError(t, err)
	reloaded := newRepo(t, s)
	assert.Len(t, reloaded.List(), 4)
	assert.Equal(t, "Vegetable Stir Fry", reloaded.List()[0].Title)
}

func TestSubscribeNotifiesAfterMutations(t *testing.T) {
	repo := service.NewRecipeRepository(store.NewMemoryStore(), testhelpers.FixedClock(), testhelpers.NewSequenceIDs("recipe"), nil)

	var events []service.RecipeEvent
	var sizes []int
	unsubscribe := repo.Subscribe(func(e service.RecipeEvent) {
		events = append(events, e)
		// callbacks may read the repository
		sizes = append(sizes, len(repo.List()))
	})

	ctx := context.Background()
	require.NoError(t, repo.Initialize(ctx))
	user := testhelpers.Member("u1", "Alice")
	created, err := repo.Add(ctx, testhelpers.Draft("Tacos", false), user)
	require.NoError(t, err)
	title := "Fish Tacos"
	_, err = repo.Update(ctx, created.ID, models.RecipePatch{Title: &title}, user)
	require.NoError(t, err)
	require.NoError(t, repo.Delete(ctx, created.ID, user))

	unsubscribe()
	unsubscribe()
	require.NoError(t, repo.Reset(ctx))

	assert.Equal(t, []service.RecipeEvent{
		{Kind: service.EventInitialized},
		{Kind: service.EventAdded, RecipeID: created.ID},
		{Kind: service.EventUpdated, RecipeID: created.ID},
		{Kind: service.EventDeleted, RecipeID: created.ID},
	}, events)
	assert.Equal(t, []int{3, 4, 4, 3}, sizes)
}

func TestReset(t *testing.T) {
	s := store.NewMemoryStore()
	clock := testhelpers.FixedClock()
	repo := service.NewRecipeRepository(s, clock, testhelpers.NewSequenceIDs("recipe"), nil)
	require.NoError(t, repo.Initialize(context.Background()))
	require.NoError(t, repo.Delete(context.Background(), "1", testhelpers.Member("1", "Demo User")))

	clock.Advance(time.Hour)
	require.NoError(t, repo.Reset(context.Background()))
	list := repo.List()
	assert.Equal(t, []string{"1", "2", "3"}, ids(list))
	assert.Equal(t, clock.Now(), list[0].CreatedAt)
}

func TestConcurrentAdds(t *testing.T) {
	repo := service.NewRecipeRepository(store.NewMemoryStore(), service.SystemClock{}, service.UUIDGenerator{}, nil)
	require.NoError(t, repo.Initialize(context.Background()))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.Add(context.Background(), testhelpers.Draft("Tacos", false), testhelpers.Member("u1", "Alice"))
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	list := repo.List()
	assert.Len(t, list, 23)
	seen := map[string]bool{}
	for _, r := range list {
		assert.False(t, seen[r.ID], "duplicate id %s", r.ID)
		seen[r.ID] = true
	}
}
