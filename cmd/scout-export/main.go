// Scout Export exports scouting records as spreadsheets or as one
// consolidated JSON document.
//
// Usage:
//
//	# Export every team as CSV spreadsheets
//	scout-export export
//
//	# Export two teams into the consolidated JSON document
//	scout-export export 254 1678 --json
//
//	# Serve the HTTP API and run scheduled exports
//	scout-export serve --config /etc/scout-export.yaml
//
// @title Scout Export API
// @version 1.0
// @description Exports scouting records as spreadsheets or a consolidated JSON document.
// @host localhost:8080
// @BasePath /api/v1
package main

func main() {
	Execute()
}
