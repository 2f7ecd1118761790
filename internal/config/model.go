package config

// Top-level configuration namespaces. Every key in a configuration file or
// CLI override must live under one of these (or be the seed itself).
const (
	KeySeed = "seed_everything"

	NamespaceModel = "model"

	NamespaceRegression    = "regression_metric"
	NamespaceReferenceless = "referenceless_regression_metric"
	NamespaceRanking       = "ranking_metric"
	NamespaceUniTE         = "unite_metric"
	NamespaceCSPEC         = "cspec_metric"

	NamespaceEarlyStopping   = "early_stopping"
	NamespaceModelCheckpoint = "model_checkpoint"
	NamespaceTrainer         = "trainer"
)

// VariantNamespaces lists the model variant namespaces in selection priority
// order. The order is load-bearing: when more than one variant is configured,
// the earliest present entry wins.
var VariantNamespaces = []string{
	NamespaceRegression,
	NamespaceReferenceless,
	NamespaceRanking,
	NamespaceUniTE,
	NamespaceCSPEC,
}

// TrainingConfig is the resolved configuration tree. It is constructed once
// per process invocation and treated as immutable afterwards.
type TrainingConfig struct {
	// Seed seeds all random state for the run.
	Seed int64

	// ModelBase holds the shared --model.* arguments merged into every
	// variant's init_args as defaults.
	ModelBase map[string]any

	// Variants maps a variant namespace to its init_args. A namespace absent
	// from the input configuration has no entry here.
	Variants map[string]map[string]any

	// EarlyStopping and ModelCheckpoint hold the init_args for the
	// corresponding callbacks.
	EarlyStopping   map[string]any
	ModelCheckpoint map[string]any

	// Trainer holds the option mapping handed to the training-loop driver.
	Trainer map[string]any
}

// VariantArgs returns the init_args for a variant namespace and whether that
// namespace was present in the input configuration.
func (c *TrainingConfig) VariantArgs(namespace string) (map[string]any, bool) {
	args, ok := c.Variants[namespace]
	return args, ok
}
