// Package backend provides the ConnectOS API server.

// This package contains the main application entry point. The actual API
// documentation is organized into subpackages:

// - internal/handlers: HTTP request handlers for all API endpoints
// - internal/feed: feed resolution, caching, ranking and pagination
// - internal/repository: follow edges and story/record data access
// - internal/models: Data models and database schemas
// - internal/auth: Authentication and authorization services
// - internal/database: Database connection and migrations
// - internal/middleware: HTTP middleware (rate limiting, metrics, tracing)
// - internal/stories: Background purge of deleted stories
// - internal/seed: Development data seeding
package backend
