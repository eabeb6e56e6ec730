package registry

import (
	"fmt"

	"github.com/kgelab/embark/dataset"
	"github.com/kgelab/embark/evaluation"
	"github.com/kgelab/embark/loss"
	"github.com/kgelab/embark/model"
	"github.com/kgelab/embark/optimizer"
	"github.com/kgelab/embark/regularizer"
	"github.com/kgelab/embark/sampling"
	"github.com/kgelab/embark/stopper"
)

// Builtin returns a registry populated with every built-in component.
func Builtin() *Registry {
	r := New()
	registerDatasets(r)
	registerModels(r)
	registerOptimizers(r)
	registerLosses(r)
	registerSamplers(r)
	registerRegularizers(r)
	registerEvaluators(r)
	registerTrainingLoops(r)
	registerStoppers(r)
	return r
}

func registerDatasets(r *Registry) {
	r.MustRegister(CategoryDataset, "synthetic", Entry{
		Schema: Schema{
			"num_entities":        {Kind: KindInt, Positive: true, Default: dataset.DefaultSyntheticOptions.NumEntities},
			"num_relations":       {Kind: KindInt, Positive: true, Default: dataset.DefaultSyntheticOptions.NumRelations},
			"num_triples":         {Kind: KindInt, Positive: true, Default: dataset.DefaultSyntheticOptions.NumTriples},
			"seed":                {Kind: KindInt},
			"validation_fraction": {Kind: KindFloat},
			"test_fraction":       {Kind: KindFloat},
		},
		New: func(bc BuildContext, p Params) (any, error) {
			return dataset.NewSynthetic(dataset.SyntheticOptions{
				NumEntities:        p.Int("num_entities", dataset.DefaultSyntheticOptions.NumEntities),
				NumRelations:       p.Int("num_relations", dataset.DefaultSyntheticOptions.NumRelations),
				NumTriples:         p.Int("num_triples", dataset.DefaultSyntheticOptions.NumTriples),
				Seed:               p.Int64("seed", bc.Seed),
				ValidationFraction: p.Float("validation_fraction", dataset.DefaultSyntheticOptions.ValidationFraction),
				TestFraction:       p.Float("test_fraction", dataset.DefaultSyntheticOptions.TestFraction),
			})
		},
	})
}

func registerModels(r *Registry) {
	r.MustRegister(CategoryModel, "TransE", Entry{
		Schema: Schema{
			"embedding_dim":        {Kind: KindInt, Required: true, Positive: true},
			"scoring_fct_norm":     {Kind: KindInt, Positive: true, Default: 2},
			"seed":                 {Kind: KindInt},
			"entity_initializer":   {Kind: KindString},
			"relation_initializer": {Kind: KindString},
		},
		New: func(bc BuildContext, p Params) (any, error) {
			entInit, relInit, err := initializers(p)
			if err != nil {
				return nil, err
			}
			return model.NewTransE(bc.Dataset.NumEntities(), bc.Dataset.NumRelations(), model.TransEOptions{
				EmbeddingDim:        p.Int("embedding_dim", 0),
				ScoringFctNorm:      p.Int("scoring_fct_norm", 2),
				Seed:                p.Int64("seed", bc.Seed),
				EntityInitializer:   entInit,
				RelationInitializer: relInit,
			})
		},
	})

	r.MustRegister(CategoryModel, "DistMult", Entry{
		Schema: Schema{
			"embedding_dim":        {Kind: KindInt, Required: true, Positive: true},
			"seed":                 {Kind: KindInt},
			"entity_initializer":   {Kind: KindString},
			"relation_initializer": {Kind: KindString},
		},
		New: func(bc BuildContext, p Params) (any, error) {
			entInit, relInit, err := initializers(p)
			if err != nil {
				return nil, err
			}
			return model.NewDistMult(bc.Dataset.NumEntities(), bc.Dataset.NumRelations(), model.DistMultOptions{
				EmbeddingDim:        p.Int("embedding_dim", 0),
				Seed:                p.Int64("seed", bc.Seed),
				EntityInitializer:   entInit,
				RelationInitializer: relInit,
			})
		},
	})

	r.MustRegister(CategoryModel, "MuRE", Entry{
		Schema: Schema{
			"embedding_dim": {Kind: KindInt, Required: true, Positive: true},
			"p":             {Kind: KindInt, Positive: true, Default: 2},
			"seed":          {Kind: KindInt},
		},
		New: func(bc BuildContext, p Params) (any, error) {
			return model.NewMuRE(bc.Dataset.NumEntities(), bc.Dataset.NumRelations(), model.MuREOptions{
				EmbeddingDim: p.Int("embedding_dim", 0),
				P:            p.Int("p", 2),
				Seed:         p.Int64("seed", bc.Seed),
			})
		},
	})
}

func initializers(p Params) (ent, rel model.Initializer, err error) {
	if name := p.String("entity_initializer", ""); name != "" {
		if ent, err = model.InitializerByName(name); err != nil {
			return nil, nil, err
		}
	}
	if name := p.String("relation_initializer", ""); name != "" {
		if rel, err = model.InitializerByName(name); err != nil {
			return nil, nil, err
		}
	}
	return ent, rel, nil
}

func registerOptimizers(r *Registry) {
	r.MustRegister(CategoryOptimizer, "SGD", Entry{
		Schema: Schema{
			"lr":           {Kind: KindFloat, Required: true, Positive: true},
			"momentum":     {Kind: KindFloat},
			"dampening":    {Kind: KindFloat},
			"weight_decay": {Kind: KindFloat},
			"nesterov":     {Kind: KindBool},
		},
		New: func(bc BuildContext, p Params) (any, error) {
			return optimizer.NewSGD(optimizer.SGDOptions{
				LR:          p.Float("lr", 0),
				Momentum:    p.Float("momentum", 0),
				Dampening:   p.Float("dampening", 0),
				WeightDecay: p.Float("weight_decay", 0),
				Nesterov:    p.Bool("nesterov", false),
			})
		},
	})

	r.MustRegister(CategoryOptimizer, "Adam", Entry{
		Schema: Schema{
			"lr":           {Kind: KindFloat, Required: true, Positive: true},
			"beta1":        {Kind: KindFloat, Positive: true},
			"beta2":        {Kind: KindFloat, Positive: true},
			"epsilon":      {Kind: KindFloat, Positive: true},
			"weight_decay": {Kind: KindFloat},
		},
		New: func(bc BuildContext, p Params) (any, error) {
			return optimizer.NewAdam(optimizer.AdamOptions{
				LR:          p.Float("lr", 0),
				Beta1:       p.Float("beta1", 0),
				Beta2:       p.Float("beta2", 0),
				Epsilon:     p.Float("epsilon", 0),
				WeightDecay: p.Float("weight_decay", 0),
			})
		},
	})

	r.MustRegister(CategoryOptimizer, "Adagrad", Entry{
		Schema: Schema{
			"lr":      {Kind: KindFloat, Required: true, Positive: true},
			"epsilon": {Kind: KindFloat, Positive: true},
		},
		New: func(bc BuildContext, p Params) (any, error) {
			return optimizer.NewAdagrad(optimizer.AdagradOptions{
				LR:      p.Float("lr", 0),
				Epsilon: p.Float("epsilon", 0),
			})
		},
	})
}

func registerLosses(r *Registry) {
	r.MustRegister(CategoryLoss, "MarginRankingLoss", Entry{
		Schema: Schema{
			"margin":    {Kind: KindFloat, Required: true, Positive: true},
			"reduction": {Kind: KindString, Default: "mean"},
		},
		New: func(bc BuildContext, p Params) (any, error) {
			if red := p.String("reduction", "mean"); red != "mean" {
				return nil, fmt.Errorf("unsupported reduction %q (only \"mean\")", red)
			}
			return loss.NewMarginRanking(p.Float("margin", 0))
		},
	})

	r.MustRegister(CategoryLoss, "SoftplusLoss", Entry{
		Schema: Schema{},
		New: func(bc BuildContext, p Params) (any, error) {
			return loss.NewSoftplus(), nil
		},
	})

	r.MustRegister(CategoryLoss, "BCEWithLogitsLoss", Entry{
		Schema: Schema{},
		New: func(bc BuildContext, p Params) (any, error) {
			return loss.NewBCEWithLogits(), nil
		},
	})
}

func registerSamplers(r *Registry) {
	r.MustRegister(CategoryNegativeSampler, "basic", Entry{
		Schema: Schema{
			"num_negs_per_pos": {Kind: KindInt, Positive: true, Default: 1},
			"seed":             {Kind: KindInt},
			"corruption_rate":  {Kind: KindFloat, Positive: true},
		},
		New: func(bc BuildContext, p Params) (any, error) {
			return sampling.NewBasic(bc.Dataset, sampling.BasicOptions{
				NumNegsPerPos:  p.Int("num_negs_per_pos", 1),
				Seed:           p.Int64("seed", bc.Seed),
				CorruptionRate: p.Float("corruption_rate", 0),
			})
		},
	})

	r.MustRegister(CategoryNegativeSampler, "bernoulli", Entry{
		Schema: Schema{
			"num_negs_per_pos": {Kind: KindInt, Positive: true, Default: 1},
			"seed":             {Kind: KindInt},
		},
		New: func(bc BuildContext, p Params) (any, error) {
			return sampling.NewBernoulli(bc.Dataset, sampling.BernoulliOptions{
				NumNegsPerPos: p.Int("num_negs_per_pos", 1),
				Seed:          p.Int64("seed", bc.Seed),
			})
		},
	})
}

func registerRegularizers(r *Registry) {
	r.MustRegister(CategoryRegularizer, "none", Entry{
		Schema: Schema{},
		New: func(bc BuildContext, p Params) (any, error) {
			return regularizer.NewNone(), nil
		},
	})

	r.MustRegister(CategoryRegularizer, "lp", Entry{
		Schema: Schema{
			"weight":          {Kind: KindFloat, Required: true, Positive: true},
			"p":               {Kind: KindInt, Positive: true, Default: 2},
			"apply_only_once": {Kind: KindBool},
		},
		New: func(bc BuildContext, p Params) (any, error) {
			return regularizer.NewLp(regularizer.LpOptions{
				Weight:        p.Float("weight", 0),
				P:             p.Int("p", 2),
				ApplyOnlyOnce: p.Bool("apply_only_once", false),
			})
		},
	})
}

func registerEvaluators(r *Registry) {
	r.MustRegister(CategoryEvaluator, "rankbased", Entry{
		Schema: Schema{
			"filtered": {Kind: KindBool},
			"ks":       {Kind: KindIntList},
		},
		New: func(bc BuildContext, p Params) (any, error) {
			return evaluation.NewRankBased(bc.Dataset, evaluation.Options{
				Filtered: p.Bool("filtered", false),
				Ks:       p.Ints("ks", nil),
			})
		},
	})
}

func registerTrainingLoops(r *Registry) {
	// The stochastic local-closed-world-assumption loop is the only built-in;
	// it is realized by the pipeline runner, so the factory only acknowledges
	// the identifier.
	r.MustRegister(CategoryTrainingLoop, "slcwa", Entry{
		Schema: Schema{},
		New: func(bc BuildContext, p Params) (any, error) {
			return "slcwa", nil
		},
	})
}

func registerStoppers(r *Registry) {
	r.MustRegister(CategoryStopper, "early", Entry{
		Schema: Schema{
			"frequency":        {Kind: KindInt, Positive: true, Default: 1},
			"patience":         {Kind: KindInt, Positive: true, Default: 2},
			"relative_delta":   {Kind: KindFloat},
			"larger_is_better": {Kind: KindBool},
		},
		New: func(bc BuildContext, p Params) (any, error) {
			return stopper.NewEarly(stopper.EarlyOptions{
				Frequency:      p.Int("frequency", 1),
				Patience:       p.Int("patience", 2),
				RelativeDelta:  p.Float("relative_delta", 0),
				LargerIsBetter: p.Bool("larger_is_better", false),
			}), nil
		},
	})
}
