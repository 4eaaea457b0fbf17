package errors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorBuilder(t *testing.T) {
	err := Newf("line store unavailable: %s", "lines.db").
		Component("atomicdata").
		Category(CategoryDatabase).
		Context("path", "lines.db").
		Build()

	var ee *EnhancedError
	require.True(t, As(err, &ee))
	assert.Equal(t, "atomicdata", ee.Component)
	assert.Equal(t, CategoryDatabase, ee.Category)
	assert.Equal(t, "lines.db", ee.GetContext()["path"])
	assert.Contains(t, err.Error(), "lines.db")
}

func TestCategoryMatching(t *testing.T) {
	err := Newf("grid mismatch").Category(CategoryDataset).Build()
	target := &EnhancedError{Category: CategoryDataset}
	assert.True(t, Is(err, target))

	other := &EnhancedError{Category: CategoryValidation}
	assert.False(t, Is(err, other))
}

func TestDefaultsApplied(t *testing.T) {
	err := Newf("plain").Build()
	var ee *EnhancedError
	require.True(t, As(err, &ee))
	assert.Equal(t, ComponentUnknown, ee.Component)
	assert.Equal(t, CategoryGeneric, ee.Category)
	assert.False(t, ee.Timestamp.IsZero())
}

func TestContextIsCopied(t *testing.T) {
	err := Newf("ctx").Context("k", 1).Build()
	var ee *EnhancedError
	require.True(t, As(err, &ee))
	c := ee.GetContext()
	c["k"] = 2
	assert.Equal(t, 1, ee.GetContext()["k"])
}
