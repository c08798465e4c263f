package services

import (
	"testing"

	"smartgov-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogList(t *testing.T) {
	db := newTestDB(t)
	svc := NewCatalogService(db)

	newTestScheme(t, db, &models.Scheme{Name: "Kisan Support", Category: "agriculture", ApplicableStates: "Punjab,Haryana"})
	newTestScheme(t, db, &models.Scheme{Name: "Student Scholarship", Category: "education", ApplicableStates: "Delhi"})

	t.Run("no filters", func(t *testing.T) {
		schemes, err := svc.List("", "")
		require.NoError(t, err)
		assert.Len(t, schemes, 2)
	})

	t.Run("category filter is exact", func(t *testing.T) {
		schemes, err := svc.List("agriculture", "")
		require.NoError(t, err)
		require.Len(t, schemes, 1)
		assert.Equal(t, "Kisan Support", schemes[0].Name)

		schemes, err = svc.List("agri", "")
		require.NoError(t, err)
		assert.Empty(t, schemes)
	})

	t.Run("state filter is a case-insensitive substring", func(t *testing.T) {
		schemes, err := svc.List("", "haryana")
		require.NoError(t, err)
		require.Len(t, schemes, 1)
		assert.Equal(t, "Kisan Support", schemes[0].Name)
	})

	t.Run("state filter wildcards are literal", func(t *testing.T) {
		schemes, err := svc.List("", "%")
		require.NoError(t, err)
		assert.Empty(t, schemes)
	})
}

func TestCatalogGet(t *testing.T) {
	db := newTestDB(t)
	svc := NewCatalogService(db)

	scheme := newTestScheme(t, db, &models.Scheme{Name: "Kisan Support"})

	got, err := svc.Get(scheme.ID)
	require.NoError(t, err)
	assert.Equal(t, scheme.Name, got.Name)

	_, err = svc.Get(999)
	assert.ErrorIs(t, err, ErrNotFound)
}
