package binding

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/goliatone/go-waflow/pkg/flow"
)

// CodeUnresolvedBinding is the warning code for references with no value.
const CodeUnresolvedBinding = "UnresolvedBinding"

var refPattern = regexp.MustCompile(`^\$\{form\.([A-Za-z0-9_\-]+)\.([A-Za-z0-9_\-]+)\}$`)

// FieldRef addresses one field of one form.
type FieldRef struct {
	Form  string
	Field string
}

func (r FieldRef) String() string {
	return "${form." + r.Form + "." + r.Field + "}"
}

// ParseRef reports whether s is exactly one form reference.
func ParseRef(s string) (FieldRef, bool) {
	match := refPattern.FindStringSubmatch(strings.TrimSpace(s))
	if match == nil {
		return FieldRef{}, false
	}
	return FieldRef{Form: match[1], Field: match[2]}, true
}

// Warning is a non-fatal binding problem.
type Warning struct {
	Code    string   `json:"code"`
	Ref     FieldRef `json:"-"`
	Path    string   `json:"path"`
	Message string   `json:"message"`
}

// Resolve returns a copy of template with every reference replaced by its
// value. Missing values become "" and produce an UnresolvedBinding warning.
func Resolve(template any, values Values) (any, []Warning) {
	r := resolver{values: values}
	out := r.walk(template, "")
	return out, r.warnings
}

// ResolvePayload is Resolve for the object payloads carried by actions.
func ResolvePayload(payload map[string]any, values Values) (map[string]any, []Warning) {
	if payload == nil {
		return nil, nil
	}
	out, warnings := Resolve(payload, values)
	resolved, _ := out.(map[string]any)
	return resolved, warnings
}

type resolver struct {
	values   Values
	warnings []Warning
}

func (r *resolver) walk(node any, path string) any {
	switch typed := node.(type) {
	case map[string]any:
		out := make(map[string]any, len(typed))
		for _, key := range sortedKeys(typed) {
			out[key] = r.walk(typed[key], joinKey(path, key))
		}
		return out
	case []any:
		out := make([]any, len(typed))
		for idx, item := range typed {
			out[idx] = r.walk(item, path+"["+strconv.Itoa(idx)+"]")
		}
		return out
	case string:
		ref, ok := ParseRef(typed)
		if !ok {
			return typed
		}
		if value, found := r.values.Get(ref); found {
			return flow.CloneValue(value)
		}
		r.warnings = append(r.warnings, Warning{
			Code:    CodeUnresolvedBinding,
			Ref:     ref,
			Path:    path,
			Message: fmt.Sprintf("no value for %s", ref),
		})
		return ""
	default:
		return typed
	}
}

// Reference is one occurrence of a reference inside a template.
type Reference struct {
	Ref  FieldRef
	Path string
	// Depth is 1 for a top-level payload key, deeper for nested values.
	Depth int
}

// Refs lists every reference in template in deterministic order.
func Refs(template any) []Reference {
	var out []Reference
	collectRefs(template, "", 0, &out)
	return out
}

func collectRefs(node any, path string, depth int, out *[]Reference) {
	switch typed := node.(type) {
	case map[string]any:
		for _, key := range sortedKeys(typed) {
			collectRefs(typed[key], joinKey(path, key), depth+1, out)
		}
	case []any:
		for idx, item := range typed {
			collectRefs(item, path+"["+strconv.Itoa(idx)+"]", depth+1, out)
		}
	case string:
		if ref, ok := ParseRef(typed); ok {
			*out = append(*out, Reference{Ref: ref, Path: path, Depth: depth})
		}
	}
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func joinKey(parent, key string) string {
	if parent == "" {
		return key
	}
	return parent + "." + key
}
