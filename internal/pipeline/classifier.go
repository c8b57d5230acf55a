package pipeline

// Update is a progress observation derived from one output line.
type Update struct {
	Ordinal int
	Label   string
}

// Classifier maps subprocess output lines to stage progress. It only
// observes; monotonicity is enforced where the job is mutated.
type Classifier interface {
	Classify(line string) (Update, bool)
}

// RuleClassifier matches lines against the stage contract's progress
// patterns. First match wins.
type RuleClassifier struct {
	stages []Stage
}

// NewRuleClassifier builds a classifier over the given stages.
func NewRuleClassifier(stages []Stage) *RuleClassifier {
	return &RuleClassifier{stages: stages}
}

func (c *RuleClassifier) Classify(line string) (Update, bool) {
	for _, stage := range c.stages {
		if stage.Progress != nil && stage.Progress.MatchString(line) {
			return Update{Ordinal: stage.Ordinal, Label: stage.Label}, true
		}
	}
	return Update{}, false
}
