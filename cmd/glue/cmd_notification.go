package main

import (
	"github.com/d2verb/glue/internal/client"
	"github.com/d2verb/glue/internal/protocol"
	"github.com/d2verb/glue/internal/ui"
)

type NotificationCmd struct {
	Test NotificationTestCmd `cmd:"" help:"Ask the daemon to show a test notification"`
}

type NotificationTestCmd struct {
	Text string `arg:"" optional:"" help:"Notification body"`
}

func (c *NotificationTestCmd) Run() error {
	paths, err := getPaths()
	if err != nil {
		return err
	}
	if _, err := client.Request(paths.Socket, protocol.TestNotification(c.Text), requestTimeout); err != nil {
		return mapClientError(err)
	}
	ui.PrintSuccess("Notification sent")
	return nil
}
