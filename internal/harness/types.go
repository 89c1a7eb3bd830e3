package harness

// ExpectSyntaxError is the only accepted value of Case.Error.
const ExpectSyntaxError = "syntax"

// Suite is a named list of translation cases.
type Suite struct {
	// Name identifies the suite and names its golden file.
	Name string `yaml:"name" json:"name"`

	// Description explains what the suite covers.
	Description string `yaml:"description" json:"description"`

	Cases []Case `yaml:"cases" json:"cases"`
}

// Case is one input and its expected outcome.
type Case struct {
	Name  string `yaml:"name" json:"name"`
	Input string `yaml:"input" json:"input"`

	// Expect is the exact expected output. A nil Expect means the case
	// expects an error instead.
	Expect *string `yaml:"expect,omitempty" json:"expect,omitempty"`

	// Error is ExpectSyntaxError when translation must fail.
	Error string `yaml:"error,omitempty" json:"error,omitempty"`
}

// CaseResult is the outcome of one case.
type CaseResult struct {
	Name   string `json:"name"`
	Input  string `json:"input"`
	Output string `json:"output"`
	Error  string `json:"error,omitempty"`
	Pass   bool   `json:"pass"`
}

// Result is the outcome of running a suite.
type Result struct {
	// Pass is true if every case passed.
	Pass bool `json:"pass"`

	// Cases holds one result per case, in suite order.
	Cases []CaseResult `json:"cases"`

	// Errors contains one message per failed case.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Cases:  []CaseResult{},
		Errors: []string{},
	}
}

// AddError adds a failure message and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// Passed returns the number of passing cases.
func (r *Result) Passed() int {
	n := 0
	for _, c := range r.Cases {
		if c.Pass {
			n++
		}
	}
	return n
}
