// Package sources registers the built-in source datasets with the core
// registry. Import this package to ensure all sources are registered.
package sources

// Each source file uses init() to register its dataset. Order values leave
// gaps so a manifest-free build can slot new sources between existing ones.
