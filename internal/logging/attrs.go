package logging

// Attribute keys used across training logs. Keeping them in one place lets
// log queries filter on e.g. ml.operation=fit regardless of the emitter.
const (
	ModelNameKey = "model.name"
	OperationKey = "ml.operation"
	RunIDKey     = "run.id"

	SamplesKey  = "data.samples"
	FeaturesKey = "data.features"
	TargetsKey  = "data.targets"

	CandidateKey = "cv.candidate"
	FoldKey      = "cv.fold"
	ScoreKey     = "cv.score"
	ParamsKey    = "cv.params"

	DurationMsKey = "perf.duration_ms"
	ErrorKey      = "error"
)
