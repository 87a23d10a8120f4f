package main

import (
	"github.com/warrantly/expiry-notifier/internal/app"
	"go.uber.org/fx"
)

// main is the entry point for the background scan loop application.
func main() {
	fx.New(app.SchedulerModule).Run()
}
