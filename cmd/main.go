package main

// @title Ghost Net Tracker API
// @version 1.0
// @description Lifecycle of abandoned fishing net reports: from report to recovery or loss.
// @host localhost:8080
// @BasePath /api/v1
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key
func main() {
	Execute()
}
