package event

// TargetKind discriminates the closed set of event addressing modes.
type TargetKind string

const (
	KindAny           TargetKind = "Any"
	KindAnyLabel      TargetKind = "AnyLabel"
	KindApp           TargetKind = "App"
	KindWindow        TargetKind = "Window"
	KindWebview       TargetKind = "Webview"
	KindWebviewWindow TargetKind = "WebviewWindow"
)

// Target selects which context an event is addressed to or listened from.
// The zero value is not valid; use the constructors.
type Target struct {
	Kind  TargetKind `json:"kind"`
	Label string     `json:"label,omitempty"`
}

// TargetAny addresses every context.
func TargetAny() Target {
	return Target{Kind: KindAny}
}

// TargetLabel addresses any context carrying the given label. This is the
// sugar a bare string target resolves to.
func TargetLabel(label string) Target {
	return Target{Kind: KindAnyLabel, Label: label}
}

// TargetApp addresses the application itself.
func TargetApp() Target {
	return Target{Kind: KindApp}
}

// TargetWindow addresses the window with the given label.
func TargetWindow(label string) Target {
	return Target{Kind: KindWindow, Label: label}
}

// TargetWebview addresses the webview with the given label.
func TargetWebview(label string) Target {
	return Target{Kind: KindWebview, Label: label}
}

// TargetWebviewWindow addresses the webview-window with the given label.
func TargetWebviewWindow(label string) Target {
	return Target{Kind: KindWebviewWindow, Label: label}
}

// Matches reports whether an event addressed to emit reaches a listener
// registered with t. Any on either side matches everything; AnyLabel matches
// every labeled kind with the same label; otherwise kind and label must both
// agree.
func (t Target) Matches(emit Target) bool {
	if t.Kind == KindAny || emit.Kind == KindAny {
		return true
	}
	if t.Kind == KindAnyLabel || emit.Kind == KindAnyLabel {
		return labeled(t.Kind) && labeled(emit.Kind) && t.Label == emit.Label
	}
	return t.Kind == emit.Kind && t.Label == emit.Label
}

func labeled(k TargetKind) bool {
	switch k {
	case KindAnyLabel, KindWindow, KindWebview, KindWebviewWindow:
		return true
	}
	return false
}

// ParseTarget coerces the shapes a target can arrive as on the host side: a
// Target value (in-process), a decoded JSON object, or a bare string label.
func ParseTarget(v any) (Target, bool) {
	switch val := v.(type) {
	case Target:
		return val, val.Kind != ""
	case *Target:
		if val == nil {
			return Target{}, false
		}
		return *val, val.Kind != ""
	case string:
		return TargetLabel(val), true
	case map[string]any:
		kind, _ := val["kind"].(string)
		if kind == "" {
			return Target{}, false
		}
		label, _ := val["label"].(string)
		return Target{Kind: TargetKind(kind), Label: label}, true
	case nil:
		return TargetAny(), true
	default:
		return Target{}, false
	}
}
