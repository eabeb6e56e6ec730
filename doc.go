// Package embark is a configuration-driven experiment runner for
// knowledge-graph-embedding models.
//
// An experiment is a declarative YAML document naming a dataset, a model, an
// optimizer, a loss, a negative sampler, a training loop and an evaluator,
// each with keyword arguments. Embark validates the document against a
// component registry, assembles the referenced components into a pipeline,
// trains it, evaluates it, and appends the metrics together with the
// originating configuration to an append-only reproducibility log.
//
// # Quick Start
//
//	cfg, _ := config.Load("experiment.yaml")
//	res, err := embark.Run(ctx, cfg)
//	fmt.Println(res.Metrics["test"].MeanRank)
//
// With an explicit registry and a persistent results log:
//
//	store, _ := results.NewLocalStore("./runs", results.WithCompression(results.CompressionGzip))
//	res, err := embark.Run(ctx, cfg,
//	    embark.WithRegistry(registry.Builtin()),
//	    embark.WithResultStore(store),
//	    embark.WithSeed(42),
//	)
//
// # Extension
//
// External components register into a registry before assembly:
//
//	reg := registry.Builtin()
//	reg.MustRegister(registry.CategoryModel, "RotatE", registry.Entry{
//	    Schema: registry.Schema{"embedding_dim": {Kind: registry.KindInt, Required: true, Positive: true}},
//	    New:    newRotatE,
//	})
//
// Registration after a pipeline was assembled has no effect on that
// pipeline.
//
// # Error taxonomy
//
//   - ConfigError: malformed or out-of-range configuration; the run never starts.
//   - UnknownComponentError: an unregistered component id; surfaced immediately.
//   - AssemblyError: an unsatisfiable dependency between components; surfaced
//     before training starts.
//   - TrainingError: numerical instability during training; batch-local
//     occurrences are skipped and logged, fatal ones end the run with its
//     last-known metrics recorded.
package embark
