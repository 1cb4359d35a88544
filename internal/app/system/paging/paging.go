// internal/app/system/paging/paging.go
package paging

import (
	"math"
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// DefaultLimit is the page size used when the caller does not supply one.
const DefaultLimit = 10

// MaxLimit is the largest page size the API accepts. It is enforced by
// inputval at the request boundary, not by Resolve.
const MaxLimit = 100

// Params is the normalized paging and sorting for one list request.
type Params struct {
	Page  int
	Limit int
	Sort  bson.D // empty means storage-default order
}

// ParsePage extracts the 1-based page number.
// Returns 1 if empty, non-numeric or below 1.
func ParsePage(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// ParseLimit extracts the page size.
// Returns DefaultLimit if empty, non-numeric or not positive.
func ParseLimit(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return DefaultLimit
	}
	return n
}

// SortSpec builds a single-key sort. An empty sortBy yields an empty spec.
// The direction is descending only when order is "desc".
func SortSpec(sortBy, order string) bson.D {
	if sortBy == "" {
		return bson.D{}
	}
	dir := 1
	if order == "desc" {
		dir = -1
	}
	return bson.D{{Key: sortBy, Value: dir}}
}

// Resolve normalizes raw page, limit, sortBy and order values.
func Resolve(page, limit, sortBy, order string) Params {
	return Params{
		Page:  ParsePage(page),
		Limit: ParseLimit(limit),
		Sort:  SortSpec(sortBy, order),
	}
}

// Skip is the number of records before the requested page.
// It saturates at math.MaxInt64 for pages too far out to address.
func (p Params) Skip() int64 {
	if p.Page <= 1 || p.Limit <= 0 {
		return 0
	}
	pages, limit := int64(p.Page-1), int64(p.Limit)
	if pages > math.MaxInt64/limit {
		return math.MaxInt64
	}
	return pages * limit
}

// ApplyToFind configures FindOptions with sort, skip and limit.
func (p Params) ApplyToFind(find *options.FindOptions) *options.FindOptions {
	if len(p.Sort) > 0 {
		find.SetSort(p.Sort)
	}
	return find.SetSkip(p.Skip()).SetLimit(int64(p.Limit))
}

// Pages returns ceil(total/limit); 0 when total is 0.
func Pages(total int64, limit int) int64 {
	if total <= 0 || limit <= 0 {
		return 0
	}
	l := int64(limit)
	return (total + l - 1) / l
}
