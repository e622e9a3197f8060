package flows

import (
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/mottag/flow-checker/client"
	"github.com/mottag/flow-checker/servicedef"
	"github.com/mottag/flow-checker/stats"
)

// fakeAPI is an in-memory version of the mottag API with the same uniqueness and dependency rules
// as the real one, plus switches for injecting failures.
type fakeAPI struct {
	records map[string]map[string]map[string]interface{} // collection -> id -> record
	order   map[string][]string                          // collection -> ids in creation order
	lastID  int
	calls   []string

	// failCreate makes POST to a collection return 500.
	failCreate map[string]bool
	// omitID makes POST to a collection succeed without returning an identifier.
	omitID map[string]bool
	// failDelete makes DELETE in a collection return the given status.
	failDelete map[string]int
	// failList makes GET on a collection return 500 for the given page.
	failList map[string]int
	// withPageCount adds a pageCount property to list responses.
	withPageCount bool
	// keepDeleted makes deleted records still appear in list responses.
	keepDeleted bool
	// allowDuplicateSerials turns off the tag serial uniqueness rule.
	allowDuplicateSerials bool

	lock sync.Mutex
}

func newFakeAPI() *fakeAPI {
	f := &fakeAPI{
		records:    make(map[string]map[string]map[string]interface{}),
		order:      make(map[string][]string),
		failCreate: make(map[string]bool),
		omitID:     make(map[string]bool),
		failDelete: make(map[string]int),
		failList:   make(map[string]int),
	}
	for _, c := range []string{servicedef.PatiosPath, servicedef.MotosPath, servicedef.TagsPath} {
		f.records[c] = make(map[string]map[string]interface{})
	}
	return f
}

// start runs the fake API on a test server and returns an Executor pointed at it.
func (f *fakeAPI) start(t *testing.T) (*client.Executor, *stats.Accumulator) {
	server := httptest.NewServer(f)
	t.Cleanup(server.Close)
	acc := stats.NewAccumulator()
	return client.NewExecutor(server.URL, 0, acc), acc
}

// seed adds records directly, bypassing the HTTP interface.
func (f *fakeAPI) seed(collection string, count int, fields func(i int) map[string]interface{}) []string {
	f.lock.Lock()
	defer f.lock.Unlock()
	var ids []string
	for i := 0; i < count; i++ {
		rec := map[string]interface{}{}
		if fields != nil {
			rec = fields(i)
		}
		ids = append(ids, f.insert(collection, rec))
	}
	return ids
}

func (f *fakeAPI) insert(collection string, rec map[string]interface{}) string {
	f.lastID++
	id := fmt.Sprintf("%s-%d", strings.TrimPrefix(collection, "/api/v1/"), f.lastID)
	rec["id"] = id
	f.records[collection][id] = rec
	f.order[collection] = append(f.order[collection], id)
	return id
}

func (f *fakeAPI) count(collection string) int {
	f.lock.Lock()
	defer f.lock.Unlock()
	return len(f.records[collection])
}

func (f *fakeAPI) callLog() []string {
	f.lock.Lock()
	defer f.lock.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.calls = append(f.calls, r.Method+" "+r.URL.Path)

	collection, id := splitPath(r.URL.Path)
	if _, ok := f.records[collection]; !ok {
		writeProblem(w, http.StatusNotFound, "unknown path")
		return
	}
	switch {
	case r.Method == "GET" && id == "":
		f.list(w, r, collection)
	case r.Method == "GET":
		if rec, ok := f.records[collection][id]; ok {
			writeJSON(w, http.StatusOK, envelope(rec))
		} else {
			writeProblem(w, http.StatusNotFound, "not found")
		}
	case r.Method == "POST" && id == "":
		f.create(w, r, collection)
	case r.Method == "PUT" && id != "":
		f.update(w, r, collection, id)
	case r.Method == "DELETE" && id != "":
		f.delete(w, collection, id)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (f *fakeAPI) list(w http.ResponseWriter, r *http.Request, collection string) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("pageSize"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}
	if failPage, ok := f.failList[collection]; ok && failPage == page {
		writeProblem(w, http.StatusInternalServerError, "list failed")
		return
	}
	patioFilter := r.URL.Query().Get("patioId")
	var matching []map[string]interface{}
	for _, id := range f.order[collection] {
		rec, ok := f.records[collection][id]
		if !ok {
			if !f.keepDeleted {
				continue
			}
			rec = map[string]interface{}{"id": id}
		}
		if patioFilter != "" && rec["patioId"] != patioFilter {
			continue
		}
		matching = append(matching, rec)
	}
	items := []interface{}{}
	for i := (page - 1) * pageSize; i < len(matching) && i < page*pageSize; i++ {
		items = append(items, matching[i])
	}
	body := map[string]interface{}{
		"items":    items,
		"total":    len(matching),
		"page":     page,
		"pageSize": pageSize,
	}
	if f.withPageCount {
		body["pageCount"] = (len(matching) + pageSize - 1) / pageSize
		delete(body, "total")
	}
	writeJSON(w, http.StatusOK, body)
}

func (f *fakeAPI) create(w http.ResponseWriter, r *http.Request, collection string) {
	if f.failCreate[collection] {
		writeProblem(w, http.StatusInternalServerError, "create failed")
		return
	}
	rec, ok := readBody(w, r)
	if !ok {
		return
	}
	switch collection {
	case servicedef.TagsPath:
		if !f.allowDuplicateSerials && f.exists(collection, "serial", rec["serial"], "") {
			writeProblem(w, http.StatusConflict, fmt.Sprintf("Tag com serial '%v' já existe.", rec["serial"]))
			return
		}
	case servicedef.MotosPath:
		if _, ok := f.records[servicedef.PatiosPath][fmt.Sprint(rec["patioId"])]; !ok {
			writeProblem(w, http.StatusNotFound, "Pátio não encontrado")
			return
		}
		if f.exists(collection, "placa", rec["placa"], "") {
			writeProblem(w, http.StatusConflict, "placa already exists")
			return
		}
	case servicedef.PatiosPath:
		if f.exists(collection, "nome", rec["nome"], "") {
			writeProblem(w, http.StatusConflict, "nome already exists")
			return
		}
	}
	f.insert(collection, rec)
	if f.omitID[collection] {
		writeJSON(w, http.StatusCreated, map[string]interface{}{"links": []interface{}{}})
		return
	}
	writeJSON(w, http.StatusCreated, envelope(rec))
}

func (f *fakeAPI) update(w http.ResponseWriter, r *http.Request, collection, id string) {
	existing, ok := f.records[collection][id]
	if !ok {
		writeProblem(w, http.StatusNotFound, "not found")
		return
	}
	rec, ok := readBody(w, r)
	if !ok {
		return
	}
	for k, v := range rec {
		if k != "id" {
			existing[k] = v
		}
	}
	writeJSON(w, http.StatusOK, envelope(existing))
}

func (f *fakeAPI) delete(w http.ResponseWriter, collection, id string) {
	if status := f.failDelete[collection]; status != 0 {
		writeProblem(w, status, "delete failed")
		return
	}
	if collection == servicedef.PatiosPath && f.exists(servicedef.MotosPath, "patioId", id, "") {
		writeProblem(w, http.StatusInternalServerError, "yard still has vehicles")
		return
	}
	delete(f.records[collection], id)
	w.WriteHeader(http.StatusNoContent)
}

func (f *fakeAPI) exists(collection, field string, value interface{}, exceptID string) bool {
	for id, rec := range f.records[collection] {
		if id != exceptID && rec[field] == value {
			return true
		}
	}
	return false
}

func splitPath(path string) (collection, id string) {
	for _, c := range []string{servicedef.PatiosPath, servicedef.MotosPath, servicedef.TagsPath} {
		if path == c {
			return c, ""
		}
		if strings.HasPrefix(path, c+"/") {
			return c, strings.TrimPrefix(path, c+"/")
		}
	}
	return path, ""
}

func envelope(rec map[string]interface{}) map[string]interface{} {
	return map[string]interface{}{"data": rec, "links": []interface{}{}}
}

func readBody(w http.ResponseWriter, r *http.Request) (map[string]interface{}, bool) {
	data, _ := ioutil.ReadAll(r.Body)
	var rec map[string]interface{}
	if err := json.Unmarshal(data, &rec); err != nil || rec == nil {
		writeProblem(w, http.StatusBadRequest, "invalid body")
		return nil, false
	}
	return rec, true
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	data, _ := json.Marshal(body)
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

func writeProblem(w http.ResponseWriter, status int, detail string) {
	data, _ := json.Marshal(map[string]interface{}{"status": status, "title": http.StatusText(status), "detail": detail})
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// collectionOf maps a logged call such as "DELETE /api/v1/tags/tags-3" to its collection.
func collectionOf(call string) string {
	parts := strings.SplitN(call, " ", 2)
	c, _ := splitPath(parts[len(parts)-1])
	return c
}

func callsWithMethod(calls []string, method string) []string {
	var ret []string
	for _, c := range calls {
		if strings.HasPrefix(c, method+" ") {
			ret = append(ret, c)
		}
	}
	return ret
}
