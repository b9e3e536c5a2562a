package featureflag

// Flag names a toggleable behavior.
type Flag string

const (
	// Recreate spatial trees on every frame that saw movement instead
	// of patching them point by point. Useful to rule out staleness
	// from the incremental path when debugging query results.
	FlagForceRecreate Flag = "force-recreate"
)

// FeatureFlag is a lookup set for enabled features.
type FeatureFlag map[Flag]struct{}

// New returns feature flags initialized from a list of flag names.
func New(flags []string) FeatureFlag {
	featureFlag := make(FeatureFlag, len(flags))
	for _, f := range flags {
		featureFlag[Flag(f)] = struct{}{}
	}
	return featureFlag
}

// IsSet reports whether the flag is enabled.
func (f FeatureFlag) IsSet(flag Flag) bool {
	_, ok := f[flag]
	return ok
}

// IfSet runs do when the flag is enabled.
func (f FeatureFlag) IfSet(flag Flag, do func()) {
	if f.IsSet(flag) {
		do()
	}
}
