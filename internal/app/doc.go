// Package app assembles the site: entity storage, the kernel with its
// HTML, JSON:API and canonical path components, the HTTP middleware
// stack and the server. Entity types and resource type names can be
// reloaded without a restart.
package app
