package flow

import "fmt"

// Visit describes one component reached by Screen.Walk.
type Visit struct {
	Component Component
	// Path is relative to the screen, e.g. `layout.children[1].children[0]`.
	Path string
	// Form is the name of the nearest enclosing Form, "" at layout level.
	Form string
	// FormDepth counts enclosing Form components.
	FormDepth int
	// Index is the position within the parent's children.
	Index int
	// Siblings is the number of children of the parent.
	Siblings int
}

// Walk visits every component of the screen depth-first in document order.
func (s Screen) Walk(fn func(Visit)) {
	walkComponents(s.Layout.Children, "layout.children", "", 0, fn)
}

func walkComponents(children []Component, path, form string, depth int, fn func(Visit)) {
	for idx, child := range children {
		childPath := fmt.Sprintf("%s[%d]", path, idx)
		fn(Visit{
			Component: child,
			Path:      childPath,
			Form:      form,
			FormDepth: depth,
			Index:     idx,
			Siblings:  len(children),
		})
		if child.Kind == KindForm {
			walkComponents(child.Children, childPath+".children", child.Name, depth+1, fn)
		}
	}
}

// Inputs returns the input-capable components of the screen with the name of
// their enclosing form.
func (s Screen) Inputs() []Visit {
	var out []Visit
	s.Walk(func(v Visit) {
		if v.Component.Kind.IsInput() {
			out = append(out, v)
		}
	})
	return out
}

// Footers returns every Footer of the screen in document order.
func (s Screen) Footers() []Visit {
	var out []Visit
	s.Walk(func(v Visit) {
		if v.Component.Kind == KindFooter {
			out = append(out, v)
		}
	})
	return out
}

// Clickables returns the components a user can press: footers carrying an
// action and buttons.
func (s Screen) Clickables() []Visit {
	var out []Visit
	s.Walk(func(v Visit) {
		switch v.Component.Kind {
		case KindFooter:
			if v.Component.OnClickAction != nil {
				out = append(out, v)
			}
		case KindButton:
			out = append(out, v)
		}
	})
	return out
}

// Actions returns every inline action of the screen, continuations included,
// paired with the path of the owning component.
func (s Screen) Actions() []LocatedAction {
	var out []LocatedAction
	s.Walk(func(v Visit) {
		if v.Component.OnClickAction == nil {
			return
		}
		collectActions(v.Component.OnClickAction, v.Path+".on-click-action", &out)
	})
	return out
}

// LocatedAction pairs an action with its location.
type LocatedAction struct {
	Action Action
	Path   string
}

func collectActions(action *Action, path string, out *[]LocatedAction) {
	if action == nil {
		return
	}
	*out = append(*out, LocatedAction{Action: *action, Path: path})
	collectActions(action.Success, path+".success", out)
	collectActions(action.Error, path+".error", out)
}
