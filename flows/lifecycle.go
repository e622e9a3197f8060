package flows

import (
	"net/url"

	"github.com/mottag/flow-checker/client"
	"github.com/mottag/flow-checker/servicedef"
	"github.com/mottag/flow-checker/stats"
)

const lifecycleListPageSize = 5

// LifecycleSpec describes the CRUD sequence for one resource type.
type LifecycleSpec struct {
	// Name is used in log titles, e.g. "Patio".
	Name string
	// Collection is the collection path, e.g. servicedef.PatiosPath.
	Collection string
	// Create and Update are the request bodies.
	Create interface{}
	Update interface{}
	// ListFilter holds extra query parameters for the list calls, such as a parent identifier.
	ListFilter url.Values
}

// LifecycleStep names a step of the CRUD sequence.
type LifecycleStep string

const (
	StepCreate          LifecycleStep = "create"
	StepRead            LifecycleStep = "read"
	StepUpdate          LifecycleStep = "update"
	StepList            LifecycleStep = "list"
	StepDelete          LifecycleStep = "delete"
	StepListAfterDelete LifecycleStep = "list after delete"
)

var gatingLifecycleSteps = []LifecycleStep{StepCreate, StepRead, StepUpdate, StepDelete}

// LifecycleResult records what happened in one run of a LifecycleSpec.
type LifecycleResult struct {
	Name string
	// ID is the identifier extracted from the create response; empty if there was none, in
	// which case no other step was attempted.
	ID       string
	Outcomes map[LifecycleStep]stats.RequestOutcome
	// StillListed is true if the list call after the delete still included ID. It is reported
	// but does not affect OK.
	StillListed bool
}

// OK returns true if create, read, update and delete all succeeded. The list calls do not count.
func (r LifecycleResult) OK() bool {
	return len(r.FailedSteps()) == 0
}

// FailedSteps returns the gating steps that did not succeed, in sequence order. A create that
// returned no identifier counts as failed even if its status was 2xx.
func (r LifecycleResult) FailedSteps() []LifecycleStep {
	var ret []LifecycleStep
	for _, step := range gatingLifecycleSteps {
		o, ok := r.Outcomes[step]
		if !ok || !o.OK || (step == StepCreate && r.ID == "") {
			ret = append(ret, step)
		}
	}
	return ret
}

// RunLifecycle runs create, read, update, list, delete, and list again, in that order. If the
// create response does not yield an identifier, nothing else is attempted.
func RunLifecycle(e *client.Executor, spec LifecycleSpec) LifecycleResult {
	logger := e.Logger()
	result := LifecycleResult{Name: spec.Name, Outcomes: make(map[LifecycleStep]stats.RequestOutcome)}

	record := func(step LifecycleStep, title string, o stats.RequestOutcome) stats.RequestOutcome {
		result.Outcomes[step] = o
		logStep(logger, title, o)
		return o
	}

	created := record(StepCreate, "Create "+spec.Name, e.Post(spec.Collection, spec.Create))
	id, ok := client.ExtractID(created)
	if !ok {
		logger.Printf("No identifier in create response for %s; skipping the rest of the flow", spec.Name)
		return result
	}
	result.ID = id
	itemPath := servicedef.ItemPath(spec.Collection, id)

	record(StepRead, "Get "+spec.Name, e.Get(itemPath, nil))
	record(StepUpdate, "Update "+spec.Name, e.Put(itemPath, spec.Update))
	record(StepList, "List "+spec.Name, e.Get(spec.Collection, listQuery(spec.ListFilter)))
	record(StepDelete, "Delete "+spec.Name, e.Delete(itemPath))
	after := record(StepListAfterDelete, "List "+spec.Name+" After Delete",
		e.Get(spec.Collection, listQuery(spec.ListFilter)))
	if page, ok := client.ExtractPage(after); ok && page.Contains(id) {
		result.StillListed = true
		logger.Printf("%s %s is still listed after it was deleted", spec.Name, id)
	}
	return result
}

func listQuery(filter url.Values) url.Values {
	q := servicedef.ListQuery(1, lifecycleListPageSize)
	for k, vs := range filter {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	return q
}

// PatioLifecycle is the CRUD sequence for yards.
func PatioLifecycle() LifecycleSpec {
	return LifecycleSpec{
		Name:       "Patio",
		Collection: servicedef.PatiosPath,
		Create: servicedef.PatioParams{
			Nome: "Patio Fluxo", Cidade: "Campinas", Estado: "SP", Pais: "BR", AreaM2: 500,
		},
		Update: servicedef.PatioParams{
			Nome: "Patio Fluxo Atualizado", Cidade: "Campinas", Estado: "SP", Pais: "BR", AreaM2: 750,
		},
	}
}

// MotoLifecycle is the CRUD sequence for a vehicle in the given yard. The list calls are
// filtered by that yard.
func MotoLifecycle(patioID string) LifecycleSpec {
	filter := make(url.Values)
	filter.Set("patioId", patioID)
	return LifecycleSpec{
		Name:       "Moto",
		Collection: servicedef.MotosPath,
		Create: servicedef.MotoParams{
			PatioID: patioID, Placa: "AAA1B23", Modelo: "CB 300", Status: servicedef.MotoDisponivel,
		},
		Update: servicedef.MotoParams{
			PatioID: patioID, Placa: "AAA1B23", Modelo: "CB 300F", Status: servicedef.MotoDisponivel,
		},
		ListFilter: filter,
	}
}

// TagLifecycle is the CRUD sequence for tracking tags.
func TagLifecycle() LifecycleSpec {
	return LifecycleSpec{
		Name:       "Tag",
		Collection: servicedef.TagsPath,
		Create:     servicedef.TagParams{Serial: "TAG-SINGLE-1", Tipo: servicedef.TagV1, BateriaPct: 70},
		Update:     servicedef.TagParams{Serial: "TAG-SINGLE-1", Tipo: servicedef.TagV1, BateriaPct: 65},
	}
}

// RunMotoLifecycleInNewPatio creates a yard to hold the vehicle, runs the vehicle CRUD sequence
// in it, and deletes the yard afterward. If the yard cannot be created, no vehicle call is made
// and the result is a failure.
func RunMotoLifecycleInNewPatio(e *client.Executor) LifecycleResult {
	logger := e.Logger()
	patio := e.Post(servicedef.PatiosPath, servicedef.PatioParams{
		Nome: "Patio Para Moto", Cidade: "Curitiba", Estado: "PR", Pais: "BR", AreaM2: 333,
	})
	logStep(logger, "Create Patio for Moto CRUD", patio)
	patioID, ok := client.ExtractID(patio)
	if !ok {
		logger.Printf("No identifier for the vehicle's yard; skipping the vehicle flow")
		return LifecycleResult{Name: "Moto"}
	}
	result := RunLifecycle(e, MotoLifecycle(patioID))
	logStep(logger, "Delete Patio for Moto CRUD", e.Delete(servicedef.ItemPath(servicedef.PatiosPath, patioID)))
	return result
}
