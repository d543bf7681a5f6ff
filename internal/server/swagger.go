package server

//go:generate swag init -g internal/server/server.go -o docs/swagger

// @title Vertex API
// @version 0.1
// @description Accessibility scans of web pages: scan, inspect, export and compare reports.
// @contact.name Vertex Maintainers
// @contact.url https://github.com/raysh454/vertex
// @BasePath /
