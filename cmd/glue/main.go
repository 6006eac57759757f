package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/alecthomas/kong"
	"github.com/posener/complete"
	"github.com/willabides/kongplete"
)

var (
	version = "dev"
	commit  = "none"
)

// Globals are flags shared by every command.
type Globals struct {
	Verbose    bool   `short:"v" help:"Log at debug level"`
	ConfigFile string `name:"config" short:"c" type:"path" help:"Configuration file (default: ~/.config/glue/config.yaml)" predictor:"config-file"`
}

type CLI struct {
	Globals

	Daemon       DaemonCmd       `cmd:"" help:"Run the daemon in the foreground"`
	Start        StartCmd        `cmd:"" help:"Start the daemon in the background"`
	Stop         StopCmd         `cmd:"" help:"Stop the daemon"`
	Status       StatusCmd       `cmd:"" help:"Show daemon status"`
	Coffee       CoffeeCmd       `cmd:"" help:"Control idle inhibition"`
	Notification NotificationCmd `cmd:"" help:"Send notifications through the daemon"`
	Workspace    WorkspaceCmd    `cmd:"" help:"Render the workspace widget"`
	Battery      BatteryCmd      `cmd:"" help:"Print the battery widget value"`
	Audio        AudioCmd        `cmd:"" help:"Read or change the output volume"`
	Mic          MicCmd          `cmd:"" help:"Read or mute the microphone"`
	Brightness   BrightnessCmd   `cmd:"" help:"Read or change the backlight"`
	Lock         LockCmd         `cmd:"" help:"Lock the session"`
	WakeUp       WakeUpCmd       `cmd:"" name:"wake-up" help:"Reopen the widget windows"`
	Logs         LogsCmd         `cmd:"" help:"Show daemon logs"`
	Config       ConfigCmd       `cmd:"" name:"config" help:"Manage the configuration file"`
	Version      VersionCmd      `cmd:"" help:"Show version"`

	InstallCompletions kongplete.InstallCompletions `cmd:"" help:"Install shell completions"`
}

func main() {
	cli := CLI{}
	parser := kong.Must(&cli,
		kong.Name("glue"),
		kong.Description("Desktop glue daemon for eww and hyprland"),
		kong.UsageOnError(),
	)
	kongplete.Complete(parser,
		kongplete.WithPredictor("coffee-action", newCoffeeActionPredictor()),
		kongplete.WithPredictor("audio-action", complete.PredictSet(audioActions...)),
		kongplete.WithPredictor("mic-action", complete.PredictSet(micActions...)),
		kongplete.WithPredictor("brightness-action", complete.PredictSet(brightnessActions...)),
		kongplete.WithPredictor("config-file", newConfigFilePredictor()),
	)

	ctx, err := parser.Parse(os.Args[1:])
	parser.FatalIfErrorf(err)

	os.Exit(exitCode(ctx.Run(&cli.Globals)))
}

// exitCode reports err on stderr and maps it to a process exit code.
func exitCode(err error) int {
	if err == nil {
		return exitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		if exitErr.Message != "" {
			fmt.Fprintln(os.Stderr, exitErr.Message)
		}
		return exitErr.Code
	}
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	return exitError
}
