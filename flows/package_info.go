// Package flows contains the API call sequences that exercise the mottag API: the cleanup of
// existing data, the create/read/update/list/delete flow for each resource type, and the chained
// yard → vehicle → tag scenario. RunSuite runs all of them as framework checks.
package flows
