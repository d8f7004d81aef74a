// Package binding resolves `${form.<form>.<field>}` references inside action
// payload templates against the values a user entered while walking a flow.
//
// Only strings that are exactly one reference are substituted; other strings
// and non-string values pass through unchanged. Resolve never mutates its
// input, so the same template can be re-evaluated after a field changes.
package binding
