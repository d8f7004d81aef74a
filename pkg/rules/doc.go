// Package rules lints flow documents. Validate runs every check against a
// parsed document and returns all findings; nothing short-circuits, so the
// caller can present every problem at once. Checks are pure: validating the
// same document twice yields the same ordered findings.
//
// The rule set is data. Which codes run at which strictness level, their
// severity, the expected schema version, the screen id pattern and the list
// of standard component tags all live in a Ruleset that can be loaded from
// YAML (see the embedded presets). The prompt revisions that shaped these
// rules disagree with each other, Text versus TextBody being the usual
// example, and presets are how both opinions are expressed.
//
// CheckRaw complements Validate with a JSON Schema pass over the raw text.
package rules
