package main

import (
	_ "github.com/joho/godotenv/autoload" // Autoload .env file.

	"github.com/bodegaapp/bodega-api/cmd/app"
)

// @contact.name   BodegaApp Support
// @contact.email  soporte@bodegaapp.pe
//
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Bearer token
func main() {
	if err := app.Start(); err != nil {
		panic(err)
	}
}
