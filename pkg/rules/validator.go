package rules

import (
	"fmt"
	"sort"
	"strings"

	"github.com/goliatone/go-waflow/pkg/binding"
	"github.com/goliatone/go-waflow/pkg/flow"
)

// Validate checks doc against the default ruleset at level.
func Validate(doc *flow.Document, level Level) []Finding {
	return ValidateWith(doc, DefaultRuleset().WithLevel(level))
}

// ValidateWith checks doc against rs. Findings are ordered by rule, then by
// document position.
func ValidateWith(doc *flow.Document, rs *Ruleset) []Finding {
	if rs == nil {
		rs = DefaultRuleset()
	}
	if doc == nil {
		doc = &flow.Document{}
	}
	v := &validator{doc: doc, rs: rs, media: mediaFields(doc)}
	for _, rule := range defaultRules {
		if _, ok := rs.Active(rule.Code); !ok {
			continue
		}
		if check := checks[rule.Code]; check != nil {
			check(v)
		}
	}
	return v.findings
}

type validator struct {
	doc      *flow.Document
	rs       *Ruleset
	media    map[binding.FieldRef]struct{}
	findings []Finding
}

func (v *validator) report(code Code, path, screenID, format string, args ...any) {
	severity, ok := v.rs.Active(code)
	if !ok {
		return
	}
	v.findings = append(v.findings, Finding{
		Severity: severity,
		Code:     code,
		Message:  fmt.Sprintf(format, args...),
		Path:     path,
		ScreenID: screenID,
	})
}

// eachScreen calls fn with every screen and its root path.
func (v *validator) eachScreen(fn func(idx int, screen flow.Screen, root string)) {
	for idx, screen := range v.doc.Screens {
		fn(idx, screen, screenPath(idx))
	}
}

// eachComponent walks every component of every screen.
func (v *validator) eachComponent(fn func(screen flow.Screen, visit flow.Visit, path string)) {
	v.eachScreen(func(_ int, screen flow.Screen, root string) {
		screen.Walk(func(visit flow.Visit) {
			fn(screen, visit, root+"."+visit.Path)
		})
	})
}

// eachAction visits inline actions of every screen, then the legacy table.
func (v *validator) eachAction(fn func(action flow.Action, path, screenID string)) {
	v.eachScreen(func(_ int, screen flow.Screen, root string) {
		for _, located := range screen.Actions() {
			fn(located.Action, root+"."+located.Path, screen.ID)
		}
	})
	for idx, action := range v.doc.Actions {
		root := fmt.Sprintf("actions[%d]", idx)
		fn(action, root, "")
		if action.Success != nil {
			fn(*action.Success, root+".success", "")
		}
		if action.Error != nil {
			fn(*action.Error, root+".error", "")
		}
	}
}

func screenPath(idx int) string {
	return fmt.Sprintf("screens[%d]", idx)
}

var checks = map[Code]func(*validator){
	CodeVersionMismatch:        checkVersion,
	CodeEmptyScreens:           checkEmptyScreens,
	CodeMissingScreenID:        checkMissingScreenIDs,
	CodeDuplicateScreenID:      checkDuplicateScreenIDs,
	CodeInvalidScreenID:        checkScreenIDPattern,
	CodeUnknownScreenReference: checkScreenReferences,
	CodeDanglingActionID:       checkActionIDs,
	CodeMissingDataSourceTitle: checkDataSourceEntries,
	CodeDuplicateDataSourceID:  checkDataSourceIDs,
	CodeInputOutsideForm:       checkInputPlacement,
	CodeMissingFieldName:       checkFieldNames,
	CodeNestedForm:             checkNestedForms,
	CodeDuplicateFormName:      checkFormNames,
	CodeFooterNotLast:          checkFooterPlacement,
	CodeMultipleMediaPickers:   checkMediaPickerCount,
	CodeInvalidMediaBounds:     checkMediaBounds,
	CodeMediaInNavigatePayload: checkNavigatePayloads,
	CodeNestedMediaPayload:     checkNestedMediaPayloads,
	CodeUnknownComponentType:   checkUnknownComponents,
	CodeNonStandardComponent:   checkStandardComponents,
	CodeNoTerminalScreen:       checkTerminalScreen,
	CodeMissingRoutingModel:    checkRoutingModelPresence,
}

func checkVersion(v *validator) {
	if v.rs.Version == "" || v.doc.Version == v.rs.Version {
		return
	}
	v.report(CodeVersionMismatch, "version", "",
		"version %q does not match the %s ruleset (%q)", v.doc.Version, v.rs.Name, v.rs.Version)
}

func checkEmptyScreens(v *validator) {
	if len(v.doc.Screens) == 0 {
		v.report(CodeEmptyScreens, "screens", "", "the document declares no screens")
	}
}

func checkMissingScreenIDs(v *validator) {
	v.eachScreen(func(_ int, screen flow.Screen, root string) {
		if strings.TrimSpace(screen.ID) == "" {
			v.report(CodeMissingScreenID, root+".id", "", "screen has no id")
		}
	})
}

func checkDuplicateScreenIDs(v *validator) {
	seen := make(map[string]int)
	v.eachScreen(func(idx int, screen flow.Screen, root string) {
		if strings.TrimSpace(screen.ID) == "" {
			return
		}
		if first, ok := seen[screen.ID]; ok {
			v.report(CodeDuplicateScreenID, root+".id", screen.ID,
				"screen id %q is already used by screens[%d]", screen.ID, first)
			return
		}
		seen[screen.ID] = idx
	})
}

func checkScreenIDPattern(v *validator) {
	pattern := v.rs.ScreenIDPattern
	if pattern == nil {
		return
	}
	v.eachScreen(func(_ int, screen flow.Screen, root string) {
		if strings.TrimSpace(screen.ID) != "" && !pattern.MatchString(screen.ID) {
			v.report(CodeInvalidScreenID, root+".id", screen.ID,
				"screen id %q does not match %s", screen.ID, pattern.String())
		}
	})
}

func checkScreenReferences(v *validator) {
	v.eachAction(func(action flow.Action, path, screenID string) {
		if action.Kind != flow.ActionNavigate {
			return
		}
		if strings.TrimSpace(action.Target) == "" {
			v.report(CodeUnknownScreenReference, path, screenID, "navigate action has no target screen")
			return
		}
		if v.doc.ScreenIndex(action.Target) < 0 {
			v.report(CodeUnknownScreenReference, path, screenID,
				"navigate target %q is not a screen of this document", action.Target)
		}
	})

	if len(v.doc.RoutingModel) == 0 {
		return
	}
	sources := make([]string, 0, len(v.doc.RoutingModel))
	for from := range v.doc.RoutingModel {
		sources = append(sources, from)
	}
	sort.Strings(sources)
	for _, from := range sources {
		path := "routing_model." + from
		if v.doc.ScreenIndex(from) < 0 {
			v.report(CodeUnknownScreenReference, path, "",
				"routing model entry %q is not a screen of this document", from)
		}
		for idx, to := range v.doc.RoutingModel[from] {
			if v.doc.ScreenIndex(to) < 0 {
				v.report(CodeUnknownScreenReference, fmt.Sprintf("%s[%d]", path, idx), "",
					"routing model target %q is not a screen of this document", to)
			}
		}
	}
}

func checkActionIDs(v *validator) {
	v.eachComponent(func(screen flow.Screen, visit flow.Visit, path string) {
		id := visit.Component.ActionID
		if id == "" {
			return
		}
		if _, ok := v.doc.Action(id); !ok {
			v.report(CodeDanglingActionID, path, screen.ID,
				"action_id %q does not match any entry of the actions table", id)
		}
	})
}

func checkDataSourceEntries(v *validator) {
	v.eachComponent(func(screen flow.Screen, visit flow.Visit, path string) {
		for idx, item := range visit.Component.DataSource {
			itemPath := fmt.Sprintf("%s.data-source[%d]", path, idx)
			switch {
			case strings.TrimSpace(item.ID) == "":
				v.report(CodeMissingDataSourceTitle, itemPath, screen.ID,
					"data-source entry of %q has no id", visit.Component.Name)
			case strings.TrimSpace(item.Title) == "":
				v.report(CodeMissingDataSourceTitle, itemPath, screen.ID,
					"data-source entry %q of %q has no title; every option needs a user-visible title", item.ID, visit.Component.Name)
			}
		}
	})
}

func checkDataSourceIDs(v *validator) {
	v.eachComponent(func(screen flow.Screen, visit flow.Visit, path string) {
		seen := make(map[string]struct{}, len(visit.Component.DataSource))
		for idx, item := range visit.Component.DataSource {
			if item.ID == "" {
				continue
			}
			if _, dup := seen[item.ID]; dup {
				v.report(CodeDuplicateDataSourceID, fmt.Sprintf("%s.data-source[%d]", path, idx), screen.ID,
					"data-source id %q appears more than once in %q", item.ID, visit.Component.Name)
				continue
			}
			seen[item.ID] = struct{}{}
		}
	})
}

func checkInputPlacement(v *validator) {
	v.eachComponent(func(screen flow.Screen, visit flow.Visit, path string) {
		if visit.Component.Kind.IsInput() && visit.FormDepth == 0 {
			v.report(CodeInputOutsideForm, path, screen.ID,
				"%s %q must be inside a Form", visit.Component.Type, visit.Component.Name)
		}
	})
}

func checkFieldNames(v *validator) {
	v.eachComponent(func(screen flow.Screen, visit flow.Visit, path string) {
		c := visit.Component
		if (c.Kind.IsInput() || c.Kind == flow.KindForm) && strings.TrimSpace(c.Name) == "" {
			v.report(CodeMissingFieldName, path, screen.ID, "%s has no name", c.Type)
		}
	})
}

func checkNestedForms(v *validator) {
	v.eachComponent(func(screen flow.Screen, visit flow.Visit, path string) {
		if visit.Component.Kind == flow.KindForm && visit.FormDepth > 0 {
			v.report(CodeNestedForm, path, screen.ID,
				"form %q is nested inside form %q", visit.Component.Name, visit.Form)
		}
	})
}

func checkFormNames(v *validator) {
	v.eachScreen(func(_ int, screen flow.Screen, root string) {
		seen := make(map[string]struct{})
		screen.Walk(func(visit flow.Visit) {
			c := visit.Component
			if c.Kind != flow.KindForm || c.Name == "" {
				return
			}
			if _, dup := seen[c.Name]; dup {
				v.report(CodeDuplicateFormName, root+"."+visit.Path, screen.ID,
					"form name %q is used more than once on screen %q", c.Name, screen.ID)
				return
			}
			seen[c.Name] = struct{}{}
		})
	})
}

func checkFooterPlacement(v *validator) {
	v.eachComponent(func(screen flow.Screen, visit flow.Visit, path string) {
		c := visit.Component
		if c.Kind != flow.KindFooter || c.OnClickAction == nil || visit.FormDepth == 0 {
			return
		}
		if visit.Index != visit.Siblings-1 {
			v.report(CodeFooterNotLast, path, screen.ID,
				"the submitting Footer of form %q must be its last child", visit.Form)
		}
	})
}

func checkMediaPickerCount(v *validator) {
	v.eachScreen(func(_ int, screen flow.Screen, root string) {
		var pickers []flow.Visit
		screen.Walk(func(visit flow.Visit) {
			if visit.Component.Kind.IsMediaPicker() {
				pickers = append(pickers, visit)
			}
		})
		if len(pickers) < 2 {
			return
		}
		tags := make([]string, 0, len(pickers))
		for _, picker := range pickers {
			tags = append(tags, picker.Component.Type)
		}
		v.report(CodeMultipleMediaPickers, root+"."+pickers[1].Path, screen.ID,
			"screen %q has %d media pickers (%s); at most one PhotoPicker or DocumentPicker is allowed",
			screen.ID, len(pickers), strings.Join(tags, ", "))
	})
}

func checkMediaBounds(v *validator) {
	v.eachComponent(func(screen flow.Screen, visit flow.Visit, path string) {
		c := visit.Component
		if !c.Kind.IsMediaPicker() {
			return
		}
		if c.MinCount != nil && *c.MinCount < 0 {
			v.report(CodeInvalidMediaBounds, path, screen.ID, "%s %q has a negative minimum", c.Type, c.Name)
		}
		if c.MinCount != nil && c.MaxCount != nil && *c.MinCount > *c.MaxCount {
			v.report(CodeInvalidMediaBounds, path, screen.ID,
				"%s %q minimum %d exceeds maximum %d", c.Type, c.Name, *c.MinCount, *c.MaxCount)
		}
	})
}

func checkNavigatePayloads(v *validator) {
	v.eachAction(func(action flow.Action, path, screenID string) {
		if action.Kind != flow.ActionNavigate {
			return
		}
		for _, ref := range binding.Refs(action.Payload) {
			if _, ok := v.media[ref.Ref]; ok {
				v.report(CodeMediaInNavigatePayload, path+".payload."+ref.Path, screenID,
					"media field %s cannot be passed through a navigate action; use complete or data_exchange", ref.Ref)
			}
		}
	})
}

func checkNestedMediaPayloads(v *validator) {
	v.eachAction(func(action flow.Action, path, screenID string) {
		if action.Kind != flow.ActionComplete && action.Kind != flow.ActionDataExchange {
			return
		}
		for _, ref := range binding.Refs(action.Payload) {
			if _, ok := v.media[ref.Ref]; ok && ref.Depth > 1 {
				v.report(CodeNestedMediaPayload, path+".payload."+ref.Path, screenID,
					"media field %s must be a top-level payload key", ref.Ref)
			}
		}
	})
}

func checkUnknownComponents(v *validator) {
	v.eachComponent(func(screen flow.Screen, visit flow.Visit, path string) {
		if visit.Component.Kind.Known() {
			return
		}
		tag := visit.Component.Type
		if tag == "" {
			tag = "(missing type)"
		}
		v.report(CodeUnknownComponentType, path, screen.ID, "component type %q is not recognised", tag)
	})
}

func checkStandardComponents(v *validator) {
	v.eachComponent(func(screen flow.Screen, visit flow.Visit, path string) {
		c := visit.Component
		if !c.Kind.Known() || v.rs.IsStandard(c.Type) {
			return
		}
		v.report(CodeNonStandardComponent, path, screen.ID,
			"component type %q is not standard in the %s ruleset", c.Type, v.rs.Name)
	})
}

func checkTerminalScreen(v *validator) {
	if len(v.doc.Screens) == 0 {
		return
	}
	for _, screen := range v.doc.Screens {
		if screen.Terminal {
			return
		}
	}
	v.report(CodeNoTerminalScreen, "screens", "", "no screen is marked terminal")
}

func checkRoutingModelPresence(v *validator) {
	hasAPI := strings.TrimSpace(v.doc.DataAPIVersion) != ""
	hasRouting := v.doc.RoutingModel != nil
	switch {
	case hasAPI && !hasRouting:
		v.report(CodeMissingRoutingModel, "routing_model", "", "data_api_version is set but routing_model is missing")
	case hasRouting && !hasAPI:
		v.report(CodeMissingRoutingModel, "data_api_version", "", "routing_model is set but data_api_version is missing")
	}
}

// mediaFields indexes every media picker by its form reference.
func mediaFields(doc *flow.Document) map[binding.FieldRef]struct{} {
	out := make(map[binding.FieldRef]struct{})
	for _, screen := range doc.Screens {
		screen.Walk(func(visit flow.Visit) {
			if visit.Component.Kind.IsMediaPicker() && visit.Component.Name != "" {
				out[binding.FieldRef{Form: visit.Form, Field: visit.Component.Name}] = struct{}{}
			}
		})
	}
	return out
}
