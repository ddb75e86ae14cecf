package search

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/soundprediction/recall/pkg/errs"
)

// DateFilterOptions holds the recognized time-window filters. Each value
// is either an ISO-8601 date/time or a relative expression like "7d",
// "3m", "1y", "24h". Absent values contribute nothing to the predicate.
type DateFilterOptions struct {
	CreatedAfter  string `json:"createdAfter,omitempty"`
	CreatedBefore string `json:"createdBefore,omitempty"`
	ModifiedSince string `json:"modifiedSince,omitempty"`
	AccessedSince string `json:"accessedSince,omitempty"`
}

// Empty reports whether no filter keys are set.
func (o DateFilterOptions) Empty() bool {
	return o.CreatedAfter == "" && o.CreatedBefore == "" &&
		o.ModifiedSince == "" && o.AccessedSince == ""
}

// DateFilterResult is a store-level range predicate with its bound
// parameters. The predicate conjoins one comparison per present key, in a
// fixed order; parameters map 1:1 to placeholders.
type DateFilterResult struct {
	Predicate string
	Params    map[string]any
}

var relativePattern = regexp.MustCompile(`(?i)^(\d+)([hdmy])$`)

// ProcessDateFilters translates the options into a predicate over memory
// timestamp fields, resolving relative expressions against now.
func ProcessDateFilters(options DateFilterOptions, now time.Time) (*DateFilterResult, error) {
	result := &DateFilterResult{Params: map[string]any{}}
	var clauses []string

	// The clause order is fixed so the generated query text is stable.
	fields := []struct {
		value  string
		column string
		op     string
		param  string
	}{
		{options.CreatedAfter, "m.created_at", ">=", "created_after"},
		{options.CreatedBefore, "m.created_at", "<=", "created_before"},
		{options.ModifiedSince, "m.modified_at", ">=", "modified_since"},
		{options.AccessedSince, "m.last_accessed", ">=", "accessed_since"},
	}

	for _, f := range fields {
		if f.value == "" {
			continue
		}
		ts, err := resolveDateValue(f.value, now)
		if err != nil {
			return nil, err
		}
		clauses = append(clauses, fmt.Sprintf("%s %s $%s", f.column, f.op, f.param))
		result.Params[f.param] = ts
	}

	result.Predicate = strings.Join(clauses, " AND ")
	return result, nil
}

// ValidateDateFilters checks every present value and rejects a window
// whose createdAfter is later than its createdBefore.
func ValidateDateFilters(options DateFilterOptions, now time.Time) error {
	var createdAfter, createdBefore time.Time
	var err error

	if options.CreatedAfter != "" {
		if createdAfter, err = resolveDateValue(options.CreatedAfter, now); err != nil {
			return err
		}
	}
	if options.CreatedBefore != "" {
		if createdBefore, err = resolveDateValue(options.CreatedBefore, now); err != nil {
			return err
		}
	}
	if options.ModifiedSince != "" {
		if _, err = resolveDateValue(options.ModifiedSince, now); err != nil {
			return err
		}
	}
	if options.AccessedSince != "" {
		if _, err = resolveDateValue(options.AccessedSince, now); err != nil {
			return err
		}
	}

	if !createdAfter.IsZero() && !createdBefore.IsZero() && createdAfter.After(createdBefore) {
		return errs.Validation("createdAfter must not be later than createdBefore")
	}
	return nil
}

// resolveDateValue parses an ISO date/time or a relative expression
// resolved against now. Months and years use calendar arithmetic.
func resolveDateValue(value string, now time.Time) (time.Time, error) {
	if m := relativePattern.FindStringSubmatch(strings.TrimSpace(value)); m != nil {
		amount, err := strconv.Atoi(m[1])
		if err != nil {
			return time.Time{}, errs.Validation("Invalid date format: %s", value)
		}
		switch strings.ToLower(m[2]) {
		case "h":
			return now.Add(-time.Duration(amount) * time.Hour), nil
		case "d":
			return now.AddDate(0, 0, -amount), nil
		case "m":
			return now.AddDate(0, -amount, 0), nil
		case "y":
			return now.AddDate(-amount, 0, 0), nil
		}
	}

	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if ts, err := time.Parse(layout, strings.TrimSpace(value)); err == nil {
			return ts, nil
		}
	}

	return time.Time{}, errs.Validation("Invalid date format: %s", value)
}
