package client

import (
	"github.com/mottag/flow-checker/stats"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

// The API returns single resources in one of two shapes: the resource object itself, or an
// envelope whose "data" property holds the resource (plus links and other metadata).
type resourceShape int

const (
	shapeUnknown resourceShape = iota
	shapeDirect
	shapeEnvelope
)

func classifyResource(body ldvalue.Value) resourceShape {
	if body.Type() != ldvalue.ObjectType {
		return shapeUnknown
	}
	if body.GetByKey("data").Type() == ldvalue.ObjectType {
		return shapeEnvelope
	}
	return shapeDirect
}

// ExtractID returns the identifier of the resource in a create, get, or update response. It
// returns false if the call failed or the body has no non-empty string "id" in either of the
// known shapes.
func ExtractID(outcome stats.RequestOutcome) (string, bool) {
	if !outcome.OK {
		return "", false
	}
	switch classifyResource(outcome.Payload) {
	case shapeEnvelope:
		return idOf(outcome.Payload.GetByKey("data"))
	case shapeDirect:
		return idOf(outcome.Payload)
	default:
		return "", false
	}
}

func idOf(resource ldvalue.Value) (string, bool) {
	id := resource.GetByKey("id")
	if !id.IsString() || id.StringValue() == "" {
		return "", false
	}
	return id.StringValue(), true
}

// Page is the decoded form of a list response.
type Page struct {
	IDs       []string
	Total     ldvalue.OptionalInt
	PageCount ldvalue.OptionalInt
}

// Contains returns true if the page listed a resource with the given identifier.
func (p Page) Contains(id string) bool {
	for _, pid := range p.IDs {
		if pid == id {
			return true
		}
	}
	return false
}

// PageCountFor returns the number of pages the server reported. If the response had no
// pageCount but did have a total, the count is derived from the total and the page size. The
// result is never less than 1.
func (p Page) PageCountFor(pageSize int) int {
	count := 1
	switch {
	case p.PageCount.IsDefined():
		count = p.PageCount.IntValue()
	case p.Total.IsDefined() && pageSize > 0:
		count = (p.Total.IntValue() + pageSize - 1) / pageSize
	}
	if count < 1 {
		return 1
	}
	return count
}

// ExtractPage decodes a list response. The items may be under "items" or, if that is missing or
// empty, under "data". Items that are not objects with a string "id" are ignored. It returns
// false if the call failed or the body is not an object.
func ExtractPage(outcome stats.RequestOutcome) (Page, bool) {
	if !outcome.OK || outcome.Payload.Type() != ldvalue.ObjectType {
		return Page{}, false
	}
	body := outcome.Payload
	items := body.GetByKey("items")
	if items.Type() != ldvalue.ArrayType || items.Count() == 0 {
		items = body.GetByKey("data")
	}
	var page Page
	if items.Type() == ldvalue.ArrayType {
		for i := 0; i < items.Count(); i++ {
			if id, ok := idOf(items.GetByIndex(i)); ok {
				page.IDs = append(page.IDs, id)
			}
		}
	}
	page.Total = optionalInt(body.GetByKey("total"))
	page.PageCount = optionalInt(body.GetByKey("pageCount"))
	return page, true
}

func optionalInt(v ldvalue.Value) ldvalue.OptionalInt {
	if !v.IsNumber() {
		return ldvalue.OptionalInt{}
	}
	return ldvalue.NewOptionalInt(v.IntValue())
}
