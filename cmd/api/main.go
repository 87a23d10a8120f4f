package main

import (
	"github.com/warrantly/expiry-notifier/internal/app"
	"go.uber.org/fx"
)

// main is the entry point for the read API application.
func main() {
	fx.New(app.APIModule).Run()
}
