package model

// Package model contains domain models/data structures.
// Keep it free of database-specific dependencies; types here are shared
// across the repository, service, and HTTP layers.
