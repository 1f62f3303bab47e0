package validate

import "fmt"

// NoProblemsDetected is shown when validation produced no findings. The
// checks cover references and structure only, so a package can still fail
// in an LMS.
const NoProblemsDetected = "No problems detected. This is not a guarantee that the package is correct."

// Summary counts findings per severity.
type Summary struct {
	Errors   int `json:"errors"`
	Warnings int `json:"warnings"`
	Infos    int `json:"infos"`
}

// Summarize counts findings by severity.
func Summarize(findings []Finding) Summary {
	var s Summary
	for _, f := range findings {
		switch f.Severity {
		case SeverityError:
			s.Errors++
		case SeverityWarning:
			s.Warnings++
		default:
			s.Infos++
		}
	}
	return s
}

// Count returns the number of findings with severity sev.
func (s Summary) Count(sev Severity) int {
	switch sev {
	case SeverityError:
		return s.Errors
	case SeverityWarning:
		return s.Warnings
	}
	return s.Infos
}

// Total returns the number of findings.
func (s Summary) Total() int { return s.Errors + s.Warnings + s.Infos }

// Verdict is the one-line result shown to users.
func (s Summary) Verdict() string {
	if s.Total() == 0 {
		return NoProblemsDetected
	}
	return fmt.Sprintf("%d error(s), %d warning(s), %d info", s.Errors, s.Warnings, s.Infos)
}

// Filter returns the findings with severity sev, in order.
func Filter(findings []Finding, sev Severity) []Finding {
	var out []Finding
	for _, f := range findings {
		if f.Severity == sev {
			out = append(out, f)
		}
	}
	return out
}
