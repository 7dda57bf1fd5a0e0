package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"roster-server-go/models"
)

func sample() []models.Student {
	return []models.Student{
		{ID: "a", Name: "Ana", Class: "1st"},
		{ID: "b", Name: "Ravi Kumar", Class: "10th"},
		{ID: "c", Name: "Banana Joe", Class: "2nd"},
	}
}

func TestFilter_EmptyTermIsIdentity(t *testing.T) {
	students := sample()
	assert.Equal(t, students, Filter(students, FieldName, ""))
	assert.Equal(t, students, Filter(students, FieldClass, ""))
}

func TestFilter_CaseInsensitiveName(t *testing.T) {
	got := Filter([]models.Student{{Name: "Ana"}}, FieldName, "ana")
	require.Len(t, got, 1)
	assert.Equal(t, "Ana", got[0].Name)

	got = Filter(sample(), FieldName, "ANA")
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].ID)
	assert.Equal(t, "c", got[1].ID)
}

func TestFilter_ByClass(t *testing.T) {
	got := Filter(sample(), FieldClass, "1")
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].ID)
	assert.Equal(t, "b", got[1].ID)

	// class search must not look at names
	assert.Empty(t, Filter(sample(), FieldClass, "ravi"))
}

func TestFilter_DoesNotMutateInput(t *testing.T) {
	students := sample()
	_ = Filter(students, FieldName, "ravi")
	assert.Equal(t, sample(), students)
}

func TestParseField(t *testing.T) {
	f, err := ParseField("class")
	require.NoError(t, err)
	assert.Equal(t, FieldClass, f)

	f, err = ParseField("")
	require.NoError(t, err)
	assert.Equal(t, FieldName, f)

	_, err = ParseField("Phone")
	assert.Error(t, err)
}
