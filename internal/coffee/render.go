package coffee

import "github.com/d2verb/glue/internal/protocol"

// Icons are the glyphs shown for each coffee state.
type Icons struct {
	Coffee string
	Relax  string
}

// Response is the coffee widget value pushed to eww and printed by the CLI.
type Response struct {
	Inhibited bool   `json:"inhibited"`
	Icon      string `json:"icon"`
}

// Render builds the widget value for state.
func Render(state protocol.IdleState, icons Icons) Response {
	icon := icons.Relax
	if state.Inhibited {
		icon = icons.Coffee
	}
	return Response{Inhibited: state.Inhibited, Icon: icon}
}
