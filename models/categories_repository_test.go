package models_test

import (
	"context"
	"strings"
	"testing"

	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veo1/catalog-api/models"
)

func newCategoriesRepo(t *testing.T) (*models.CategoriesRepository, *models.ProductsRepository) {
	t.Helper()
	db := newTestDB(t)
	log, _ := logtest.NewNullLogger()
	return models.NewCategoriesRepository(db, log), models.NewProductsRepository(db, log)
}

func TestCreateCategory(t *testing.T) {
	testCases := []struct {
		name        string
		input       models.CategoryInput
		expectField string
	}{
		{name: "Valid name", input: models.CategoryInput{Name: "Tools"}},
		{name: "Empty name", input: models.CategoryInput{Name: ""}, expectField: "name"},
		{name: "Blank name", input: models.CategoryInput{Name: "   "}, expectField: "name"},
		{name: "Name at limit", input: models.CategoryInput{Name: strings.Repeat("a", 255)}},
		{name: "Name too long", input: models.CategoryInput{Name: strings.Repeat("a", 256)}, expectField: "name"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// Arrange
			repo, _ := newCategoriesRepo(t)

			// Act
			category, err := repo.CreateCategory(context.Background(), tc.input)

			// Assert
			if tc.expectField != "" {
				var verr *models.ValidationError
				require.ErrorAs(t, err, &verr)
				assert.True(t, verr.Has(tc.expectField))
				assert.Nil(t, category)
				return
			}
			require.NoError(t, err)
			assert.NotZero(t, category.ID)
			assert.Equal(t, tc.input.Name, category.Name)
		})
	}
}

func TestGetCategory(t *testing.T) {
	repo, _ := newCategoriesRepo(t)
	ctx := context.Background()

	created, err := repo.CreateCategory(ctx, models.CategoryInput{Name: "Garden"})
	require.NoError(t, err)

	got, err := repo.GetCategory(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Garden", got.Name)

	_, err = repo.GetCategory(ctx, created.ID+100)
	assert.ErrorIs(t, err, models.ErrCategoryNotFound)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestUpdateCategory(t *testing.T) {
	repo, _ := newCategoriesRepo(t)
	ctx := context.Background()

	created, err := repo.CreateCategory(ctx, models.CategoryInput{Name: "Kitchen"})
	require.NoError(t, err)

	t.Run("Renames the category", func(t *testing.T) {
		updated, err := repo.UpdateCategory(ctx, created.ID, models.CategoryInput{Name: "Cookware"})
		require.NoError(t, err)
		assert.Equal(t, "Cookware", updated.Name)

		got, err := repo.GetCategory(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "Cookware", got.Name)
	})

	t.Run("Invalid name", func(t *testing.T) {
		_, err := repo.UpdateCategory(ctx, created.ID, models.CategoryInput{Name: ""})
		var verr *models.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, []string{"The name field is required."}, verr.Fields["name"])
	})

	t.Run("Missing category", func(t *testing.T) {
		_, err := repo.UpdateCategory(ctx, created.ID+100, models.CategoryInput{Name: "Nope"})
		assert.ErrorIs(t, err, models.ErrCategoryNotFound)
	})
}

func TestDeleteCategoryDetachesProducts(t *testing.T) {
	// Arrange
	categories, products := newCategoriesRepo(t)
	ctx := context.Background()

	tools, err := categories.CreateCategory(ctx, models.CategoryInput{Name: "Tools"})
	require.NoError(t, err)
	garden, err := categories.CreateCategory(ctx, models.CategoryInput{Name: "Garden"})
	require.NoError(t, err)

	product, err := products.CreateProduct(ctx, models.ProductInput{
		Name:        "Shovel",
		Price:       price("19.90"),
		Stock:       stock(12),
		CategoryIDs: []uint{tools.ID, garden.ID},
	})
	require.NoError(t, err)
	require.Len(t, product.Categories, 2)

	// Act
	require.NoError(t, categories.DeleteCategory(ctx, tools.ID))

	// Assert
	_, err = categories.GetCategory(ctx, tools.ID)
	assert.ErrorIs(t, err, models.ErrCategoryNotFound)

	got, err := products.GetByID(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{garden.ID}, got.CategoryIDs())

	err = categories.DeleteCategory(ctx, tools.ID)
	assert.ErrorIs(t, err, models.ErrCategoryNotFound)
}

func TestListCategories(t *testing.T) {
	repo, _ := newCategoriesRepo(t)
	ctx := context.Background()

	names := []string{"A", "B", "C", "D", "E", "F", "G", "H", "I", "J", "K", "L"}
	for _, n := range names {
		_, err := repo.CreateCategory(ctx, models.CategoryInput{Name: n})
		require.NoError(t, err)
	}

	testCases := []struct {
		name          string
		pagination    models.Pagination
		expectNames   []string
		expectPage    int
		expectPerPage int
	}{
		{
			name:          "Default page size",
			pagination:    models.Pagination{},
			expectNames:   names[:10],
			expectPage:    1,
			expectPerPage: 10,
		},
		{
			name:          "Second page",
			pagination:    models.Pagination{Page: 2},
			expectNames:   names[10:],
			expectPage:    2,
			expectPerPage: 10,
		},
		{
			name:          "Custom page size",
			pagination:    models.Pagination{Page: 3, PageSize: 5},
			expectNames:   names[10:],
			expectPage:    3,
			expectPerPage: 5,
		},
		{
			name:          "Past the last page",
			pagination:    models.Pagination{Page: 9},
			expectNames:   nil,
			expectPage:    9,
			expectPerPage: 10,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			page, err := repo.ListCategories(ctx, tc.pagination)
			require.NoError(t, err)

			got := make([]string, 0, len(page.Items))
			for _, c := range page.Items {
				got = append(got, c.Name)
			}
			if tc.expectNames == nil {
				assert.Empty(t, got)
			} else {
				assert.Equal(t, tc.expectNames, got)
			}
			assert.EqualValues(t, len(names), page.Total)
			assert.Equal(t, tc.expectPage, page.CurrentPage)
			assert.Equal(t, tc.expectPerPage, page.PerPage)
		})
	}
}
