/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>

*/
// @title           REMS Maintenance API
// @version         1.0
// @description     Maintenance order lifecycle API for the real estate management system
// @termsOfService  http://swagger.io/terms/

// @contact.name   API Support
// @contact.email  support@example.com

// @license.name  Apache 2.0
// @license.url   http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:8080
// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and a JWT
package main

import "github.com/aalbahar80/rems-ai-sub000/cmd"

func main() {
	cmd.Execute()
}
