// Package mediacat builds a catalog of media items from a category-organized
// listing site. It classifies listing entries as items or pointers to deeper
// listing pages, follows pagination and pointers to closure, and assembles
// the results into a timestamped catalog keyed by category.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., goquery/, sqlite/, rod/).
package mediacat
