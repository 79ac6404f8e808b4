package traversal

// Evaluation is an evaluator's verdict on a branch: whether its path is
// returned to the consumer and whether the traversal descends below it.
type Evaluation uint8

const (
	IncludeAndContinue Evaluation = iota
	IncludeAndPrune
	ExcludeAndContinue
	ExcludeAndPrune
)

// Of builds the evaluation for the given include and continue decisions.
func Of(include, cont bool) Evaluation {
	switch {
	case include && cont:
		return IncludeAndContinue
	case include:
		return IncludeAndPrune
	case cont:
		return ExcludeAndContinue
	default:
		return ExcludeAndPrune
	}
}

// Includes reports whether the branch's path is yielded.
func (e Evaluation) Includes() bool {
	return e == IncludeAndContinue || e == IncludeAndPrune
}

// Continues reports whether the branch is expanded further.
func (e Evaluation) Continues() bool {
	return e == IncludeAndContinue || e == ExcludeAndContinue
}

func (e Evaluation) String() string {
	switch e {
	case IncludeAndContinue:
		return "include_and_continue"
	case IncludeAndPrune:
		return "include_and_prune"
	case ExcludeAndContinue:
		return "exclude_and_continue"
	case ExcludeAndPrune:
		return "exclude_and_prune"
	default:
		return "unknown"
	}
}
