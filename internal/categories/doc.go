// Package categories owns the ordered category table that maps file
// extensions to destination folders, including its JSON persistence.
package categories
