package ui

import (
	"fmt"
	"os/exec"
	"runtime"
)

// NotificationSender delivers a desktop notification
type NotificationSender interface {
	Send(title, message string) error
}

// LinuxNotificationSender sends notifications on Linux using notify-send
type LinuxNotificationSender struct{}

func (l *LinuxNotificationSender) Send(title, message string) error {
	return exec.Command("notify-send", title, message).Run()
}

// MacOSNotificationSender sends notifications on macOS using osascript
type MacOSNotificationSender struct{}

func (m *MacOSNotificationSender) Send(title, message string) error {
	script := fmt.Sprintf(`display notification %q with title %q`, message, title)
	return exec.Command("osascript", "-e", script).Run()
}

// Notifier prints a message to the console and mirrors it to the desktop
type Notifier struct {
	console *Console
	sender  NotificationSender
}

// NewNotifier picks a sender for the current platform. Platforms without
// one only get console output.
func NewNotifier(console *Console) *Notifier {
	var sender NotificationSender

	switch runtime.GOOS {
	case "linux":
		sender = &LinuxNotificationSender{}
	case "darwin":
		sender = &MacOSNotificationSender{}
	}

	return NewNotifierWithSender(console, sender)
}

// NewNotifierWithSender uses an explicit sender, which may be nil
func NewNotifierWithSender(console *Console, sender NotificationSender) *Notifier {
	return &Notifier{console: console, sender: sender}
}

// SendSuccess announces a finished run
func (n *Notifier) SendSuccess(title, message string) {
	fmt.Fprintf(n.console.Writer(), "\n%s: %s\n", n.console.Green(title), n.console.Green(message))
	n.send(title, message)
}

// SendError announces a failed run
func (n *Notifier) SendError(title, message string) {
	fmt.Fprintf(n.console.Writer(), "\n%s: %s\n", n.console.Red(title), n.console.Red(message))
	n.send(title, message)
}

func (n *Notifier) send(title, message string) {
	if n.sender != nil {
		// desktop notifications are best effort
		_ = n.sender.Send(title, message)
	}
}
