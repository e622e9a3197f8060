package flows

import (
	"net/http"

	"github.com/mottag/flow-checker/client"
	"github.com/mottag/flow-checker/servicedef"
	"github.com/mottag/flow-checker/stats"
)

// ChainStep is a step of the chained yard → vehicle → tag scenario, in execution order.
type ChainStep int

const (
	YardCreated ChainStep = iota
	VehicleCreated
	TagCreated
	VehicleUpdated
	DuplicateTagAttempted
	TagDeleted
	VehicleDeleted
	YardDeleted
	chainStepCount
)

// AllChainSteps lists the steps in execution order.
var AllChainSteps = []ChainStep{
	YardCreated, VehicleCreated, TagCreated, VehicleUpdated,
	DuplicateTagAttempted, TagDeleted, VehicleDeleted, YardDeleted,
}

func (s ChainStep) String() string {
	switch s {
	case YardCreated:
		return "YardCreated"
	case VehicleCreated:
		return "VehicleCreated"
	case TagCreated:
		return "TagCreated"
	case VehicleUpdated:
		return "VehicleUpdated"
	case DuplicateTagAttempted:
		return "DuplicateTagAttempted"
	case TagDeleted:
		return "TagDeleted"
	case VehicleDeleted:
		return "VehicleDeleted"
	case YardDeleted:
		return "YardDeleted"
	default:
		return "unknown"
	}
}

type StepStatus int

const (
	StepSkipped StepStatus = iota
	StepDone
	StepFailed
)

func (s StepStatus) String() string {
	switch s {
	case StepDone:
		return "done"
	case StepFailed:
		return "failed"
	default:
		return "skipped"
	}
}

// DuplicateSerial is the tag serial used by the chained scenario, submitted twice.
const DuplicateSerial = "TAG-INT-1"

// ChainResult records the chained scenario.
type ChainResult struct {
	PatioID string
	MotoID  string
	TagID   string

	// DuplicateStatus is the HTTP status of the duplicate tag attempt, or 0 if it was not made
	// or failed at the transport level. DuplicateRejected is true if it was a 409.
	DuplicateStatus   int
	DuplicateRejected bool

	statuses [chainStepCount]StepStatus
	executed []ChainStep
}

// Status returns the status of a step.
func (r ChainResult) Status(step ChainStep) StepStatus {
	if step < 0 || step >= chainStepCount {
		return StepSkipped
	}
	return r.statuses[step]
}

// Executed returns the steps that were attempted, in the order they ran.
func (r ChainResult) Executed() []ChainStep {
	return append([]ChainStep(nil), r.executed...)
}

// OK returns true if every step other than the duplicate attempt was done. The duplicate attempt
// is expected to fail and never affects this.
func (r ChainResult) OK() bool {
	for _, step := range AllChainSteps {
		if step != DuplicateTagAttempted && r.statuses[step] != StepDone {
			return false
		}
	}
	return true
}

func (r *ChainResult) mark(step ChainStep, done bool) {
	r.executed = append(r.executed, step)
	if done {
		r.statuses[step] = StepDone
	} else {
		r.statuses[step] = StepFailed
	}
}

// RunChain creates a yard, a vehicle in that yard, and a tag; updates the vehicle; tries to create
// a second tag with the same serial; and then deletes the tag, the vehicle, and the yard.
//
// A step that needs an identifier which an earlier step failed to obtain is skipped. Deletes are
// made for every identifier that was obtained, always in tag, vehicle, yard order.
func RunChain(e *client.Executor) ChainResult {
	logger := e.Logger()
	var r ChainResult

	patio := e.Post(servicedef.PatiosPath, servicedef.PatioParams{
		Nome: "Patio Encadeado", Cidade: "São Paulo", Estado: "SP", Pais: "BR", AreaM2: 999,
	})
	logStep(logger, "Create Patio", patio)
	patioID, hasPatio := client.ExtractID(patio)
	r.mark(YardCreated, hasPatio)
	if !hasPatio {
		return r
	}
	r.PatioID = patioID

	moto := e.Post(servicedef.MotosPath, servicedef.MotoParams{
		PatioID: patioID, Placa: "XYZ1A23", Modelo: "CG 160", Status: servicedef.MotoDisponivel,
	})
	logStep(logger, "Create Moto", moto)
	motoID, hasMoto := client.ExtractID(moto)
	r.mark(VehicleCreated, hasMoto)
	r.MotoID = motoID

	tag := e.Post(servicedef.TagsPath, servicedef.TagParams{Serial: DuplicateSerial, Tipo: servicedef.TagV1, BateriaPct: 80})
	logStep(logger, "Create Tag", tag)
	tagID, hasTag := client.ExtractID(tag)
	r.mark(TagCreated, hasTag)
	r.TagID = tagID

	if hasMoto {
		upd := e.Put(servicedef.ItemPath(servicedef.MotosPath, motoID), servicedef.MotoParams{
			PatioID: patioID, Placa: "XYZ1A23", Modelo: "CG 160 Premium", Status: servicedef.MotoDisponivel,
		})
		logStep(logger, "Update Moto", upd)
		r.mark(VehicleUpdated, upd.OK)
	}

	var strayTagID string
	if hasTag {
		dup := e.Post(servicedef.TagsPath, servicedef.TagParams{Serial: DuplicateSerial, Tipo: servicedef.TagV1, BateriaPct: 85})
		logStep(logger, "Duplicate Tag Expect 409", dup)
		r.DuplicateStatus = dup.StatusCode
		r.DuplicateRejected = dup.StatusCode == http.StatusConflict
		r.mark(DuplicateTagAttempted, r.DuplicateRejected)
		if id, ok := client.ExtractID(dup); ok {
			strayTagID = id
			logger.Printf("Duplicate tag was accepted as %s; deleting it before the first tag", id)
		}
	}

	if strayTagID != "" {
		logStep(logger, "Delete Duplicate Tag", e.Delete(servicedef.ItemPath(servicedef.TagsPath, strayTagID)))
	}
	if hasTag {
		r.mark(TagDeleted, deleteStep(e, "Delete Tag", servicedef.TagsPath, tagID).OK)
	}
	if hasMoto {
		r.mark(VehicleDeleted, deleteStep(e, "Delete Moto", servicedef.MotosPath, motoID).OK)
	}
	r.mark(YardDeleted, deleteStep(e, "Delete Patio", servicedef.PatiosPath, patioID).OK)
	return r
}

func deleteStep(e *client.Executor, title, collection, id string) stats.RequestOutcome {
	o := e.Delete(servicedef.ItemPath(collection, id))
	logStep(e.Logger(), title, o)
	return o
}
