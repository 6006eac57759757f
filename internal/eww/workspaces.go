package eww

import (
	"fmt"
	"slices"
	"strings"
)

// WorkspaceState is how a workspace button is drawn.
type WorkspaceState int

const (
	WorkspaceEmpty WorkspaceState = iota
	WorkspaceActive
	WorkspaceContains
)

// WorkspaceIcons are the glyphs for each WorkspaceState.
type WorkspaceIcons struct {
	Empty    string `mapstructure:"empty" yaml:"empty"`
	Active   string `mapstructure:"active" yaml:"active"`
	Contains string `mapstructure:"contains" yaml:"contains"`
}

func (i WorkspaceIcons) icon(s WorkspaceState) string {
	switch s {
	case WorkspaceActive:
		return i.Active
	case WorkspaceContains:
		return i.Contains
	default:
		return i.Empty
	}
}

// WorkspaceButton is one button of the workspace bar.
type WorkspaceButton struct {
	ID    int
	State WorkspaceState
}

// NewWorkspaceButton derives a button from a workspace's window count and
// the active workspace id.
func NewWorkspaceButton(id, windows, activeID int) WorkspaceButton {
	state := WorkspaceEmpty
	if windows > 0 {
		state = WorkspaceContains
	}
	if id == activeID {
		state = WorkspaceActive
	}
	return WorkspaceButton{ID: id, State: state}
}

// Workspaces is the rendered workspace bar. Its String method produces a
// yuck widget literal suitable for a literal variable.
type Workspaces struct {
	Buttons []WorkspaceButton
	Icons   WorkspaceIcons
}

// NewWorkspaces lays out workspaces 1..defaultSpaces. Workspaces that do not
// exist are drawn empty; ids outside the range are not shown.
func NewWorkspaces(existing []WorkspaceButton, defaultSpaces int, icons WorkspaceIcons) Workspaces {
	sorted := slices.Clone(existing)
	slices.SortFunc(sorted, func(a, b WorkspaceButton) int { return a.ID - b.ID })

	buttons := make([]WorkspaceButton, 0, defaultSpaces)
	for id := 1; id <= defaultSpaces; id++ {
		i, found := slices.BinarySearchFunc(sorted, id, func(b WorkspaceButton, id int) int { return b.ID - id })
		if found {
			buttons = append(buttons, sorted[i])
		} else {
			buttons = append(buttons, WorkspaceButton{ID: id, State: WorkspaceEmpty})
		}
	}
	return Workspaces{Buttons: buttons, Icons: icons}
}

func (w Workspaces) String() string {
	parts := make([]string, len(w.Buttons))
	for i, b := range w.Buttons {
		parts[i] = fmt.Sprintf(`(button :onclick "hyprctl dispatch workspace %d" :class "workspace" "%s")`, b.ID, w.Icons.icon(b.State))
	}
	return fmt.Sprintf(`(box :class "workspaces" :orientation "h" :space-evenly "false" %s )`, strings.Join(parts, " "))
}
