package flows

import (
	"github.com/mottag/flow-checker/client"
	"github.com/mottag/flow-checker/servicedef"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldlog"
)

const (
	cleanupPageSize = 50
	maxCleanupPages = 1000
)

// CleanupOrder is the order in which collections are emptied: tags first, then vehicles, then
// the yards the vehicles belong to.
var CleanupOrder = []string{servicedef.TagsPath, servicedef.MotosPath, servicedef.PatiosPath}

// CleanupReport describes what Cleanup did for each collection, in the order processed.
type CleanupReport struct {
	Collections []CollectionCleanup
}

type CollectionCleanup struct {
	Collection string
	Found      int
	Deleted    int
	Failed     int
	// ListFailed is true if listing stopped because a list call failed or returned something
	// other than a page object. Identifiers collected before that point are still deleted.
	ListFailed bool
}

// OK returns true if every discovered record was deleted and no list call failed.
func (r CleanupReport) OK() bool {
	for _, c := range r.Collections {
		if c.Failed > 0 || c.ListFailed {
			return false
		}
	}
	return true
}

// Cleanup deletes every existing tag, vehicle, and yard, in that order.
//
// For each collection it first lists every page and collects the identifiers, then deletes them
// one at a time. A failed delete is logged and the rest continue. Records created after a
// collection was listed are not seen.
func Cleanup(e *client.Executor, loggers ldlog.Loggers) CleanupReport {
	var report CleanupReport
	for _, collection := range CleanupOrder {
		ids, listOK := collectIDs(e, collection)
		c := CollectionCleanup{Collection: collection, Found: len(ids), ListFailed: !listOK}
		if !listOK {
			loggers.Warnf("Could not list all of %s; deleting the %d records found so far", collection, len(ids))
		}
		if len(ids) == 0 {
			loggers.Infof("No records in %s", collection)
		}
		for _, id := range ids {
			o := e.Delete(servicedef.ItemPath(collection, id))
			if o.OK {
				c.Deleted++
				loggers.Infof("DELETE %s/%s: OK", collection, id)
			} else {
				c.Failed++
				loggers.Warnf("DELETE %s/%s: FAIL(%d) %s", collection, id, o.StatusCode, o.ErrorMessage.StringValue())
			}
		}
		report.Collections = append(report.Collections, c)
	}
	return report
}

// collectIDs lists a collection page by page until the reported page count is reached. It
// returns false if it stopped early because of a failed list call.
func collectIDs(e *client.Executor, collection string) ([]string, bool) {
	var ids []string
	for page := 1; page <= maxCleanupPages; page++ {
		o := e.Get(collection, servicedef.ListQuery(page, cleanupPageSize))
		p, ok := client.ExtractPage(o)
		if !ok {
			return ids, false
		}
		ids = append(ids, p.IDs...)
		if page >= p.PageCountFor(cleanupPageSize) {
			break
		}
	}
	return ids, true
}
