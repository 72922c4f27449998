package models

// ChangeReason labels why a document's slug changed.
type ChangeReason string

const (
	ReasonMove       ChangeReason = "move"
	ReasonRename     ChangeReason = "rename"
	ReasonRegenerate ChangeReason = "regenerate"
	ReasonRestore    ChangeReason = "restore"
	ReasonManual     ChangeReason = "manual"
)

// WritePolicy carries the slug-handling flags for a single write down the call
// chain. It replaces an ambient per-request context bag: every decision the
// slug builder and cascade propagator make is visible in the signature.
type WritePolicy struct {
	// ForceRegenerate recomputes the slug even when the stability rule would
	// keep the stored value.
	ForceRegenerate bool

	// SkipGeneration leaves the document untouched by the slug builder.
	// Used by restore, which sets the slug directly.
	SkipGeneration bool

	// Cascading marks a write issued from inside a cascade. A cascading write
	// never triggers another cascade.
	Cascading bool

	// ChangeReason is recorded in the history entry when the slug changes.
	// Empty defaults to "manual".
	ChangeReason ChangeReason
}

// Reason returns the change reason, defaulting to manual.
func (p WritePolicy) Reason() ChangeReason {
	if p.ChangeReason == "" {
		return ReasonManual
	}
	return p.ChangeReason
}
