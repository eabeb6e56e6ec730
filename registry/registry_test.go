package registry

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dummyEntry() Entry {
	return Entry{
		Schema: Schema{},
		New:    func(bc BuildContext, p Params) (any, error) { return "component", nil },
	}
}

func TestRegistry_RegisterAndLookup(t *testing.T) {
	r := New()

	require.NoError(t, r.Register(CategoryModel, "TransE", dummyEntry()))

	e, err := r.Lookup(CategoryModel, "TransE")
	require.NoError(t, err)
	v, err := e.New(BuildContext{}, nil)
	require.NoError(t, err)
	assert.Equal(t, "component", v)
}

func TestRegistry_UnknownComponent(t *testing.T) {
	r := New()
	require.NoError(t, r.Register(CategoryModel, "TransE", dummyEntry()))

	_, err := r.Lookup(CategoryModel, "ComplEx")
	var unknown *UnknownComponentError
	require.True(t, errors.As(err, &unknown))
	assert.Equal(t, CategoryModel, unknown.Category)
	assert.Equal(t, "ComplEx", unknown.Name)
	assert.Contains(t, unknown.Error(), "ComplEx")

	// Same name under a different category is still unknown.
	_, err = r.Lookup(CategoryLoss, "TransE")
	assert.True(t, errors.As(err, &unknown))
}

func TestRegistry_CaseSensitive(t *testing.T) {
	r := New()
	require.NoError(t, r.Register(CategoryModel, "TransE", dummyEntry()))

	_, err := r.Lookup(CategoryModel, "transe")
	var unknown *UnknownComponentError
	assert.True(t, errors.As(err, &unknown))
}

func TestRegistry_DuplicateAndNilFactory(t *testing.T) {
	r := New()
	require.NoError(t, r.Register(CategoryLoss, "hinge", dummyEntry()))
	assert.Error(t, r.Register(CategoryLoss, "hinge", dummyEntry()))

	assert.Error(t, r.Register(CategoryLoss, "empty", Entry{}))

	assert.Panics(t, func() {
		r.MustRegister(CategoryLoss, "hinge", dummyEntry())
	})
}

func TestRegistry_Names(t *testing.T) {
	r := New()
	require.NoError(t, r.Register(CategoryModel, "b", dummyEntry()))
	require.NoError(t, r.Register(CategoryModel, "a", dummyEntry()))

	assert.Equal(t, []string{"a", "b"}, r.Names(CategoryModel))
	assert.Empty(t, r.Names(CategoryOptimizer))
}

func TestBuiltin_CoversEveryCategory(t *testing.T) {
	r := Builtin()

	assert.ElementsMatch(t, []string{"synthetic"}, r.Names(CategoryDataset))
	assert.ElementsMatch(t, []string{"TransE", "DistMult", "MuRE"}, r.Names(CategoryModel))
	assert.ElementsMatch(t, []string{"SGD", "Adam", "Adagrad"}, r.Names(CategoryOptimizer))
	assert.ElementsMatch(t, []string{"MarginRankingLoss", "SoftplusLoss", "BCEWithLogitsLoss"}, r.Names(CategoryLoss))
	assert.ElementsMatch(t, []string{"basic", "bernoulli"}, r.Names(CategoryNegativeSampler))
	assert.ElementsMatch(t, []string{"none", "lp"}, r.Names(CategoryRegularizer))
	assert.ElementsMatch(t, []string{"rankbased"}, r.Names(CategoryEvaluator))
	assert.ElementsMatch(t, []string{"slcwa"}, r.Names(CategoryTrainingLoop))
	assert.ElementsMatch(t, []string{"early"}, r.Names(CategoryStopper))
}
