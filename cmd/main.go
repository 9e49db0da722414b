package main

import (
	"github.com/ordercloud/order/internal/app"
	"github.com/ordercloud/order/internal/config"
)

func main() {
	config.MustInit()
	app.MustNewApp().Run()
}
