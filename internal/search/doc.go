// Package search narrows stored articles with a substring filter and
// re-ranks the survivors by embedding similarity to the query.
//
// The vector index is rebuilt from scratch for every query and covers
// exactly the substring matches, so its cost is bounded by the filter.
package search
